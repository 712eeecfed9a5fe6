package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

const indexFile = "index.html"

// handleStatic serves the front-end for unmatched GET requests, falling back
// to index.html. Unmatched /api paths always get a JSON 404.
func (s *Server) handleStatic(c *gin.Context) {
	reqPath := c.Request.URL.Path
	if s.deps.StaticDir == "" || strings.HasPrefix(reqPath, "/api/") || c.Request.Method != http.MethodGet {
		abortError(c, http.StatusNotFound, "not found")
		return
	}
	clean := path.Clean("/" + reqPath)
	target := filepath.Join(s.deps.StaticDir, filepath.FromSlash(clean))
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		c.File(target)
		return
	}
	index := filepath.Join(s.deps.StaticDir, indexFile)
	if _, err := os.Stat(index); err != nil {
		abortError(c, http.StatusNotFound, "not found")
		return
	}
	c.File(index)
}
