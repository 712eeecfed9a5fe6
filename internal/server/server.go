package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"recitebot/internal/gateway"
	"recitebot/internal/library"
	"recitebot/internal/logging"
	"recitebot/internal/review"
)

const shutdownTimeout = 5 * time.Second

// Dependencies are the collaborators the handlers use.
type Dependencies struct {
	Processor gateway.Processor
	Library   *library.Library
	Reviews   *review.Store
	Logger    *slog.Logger

	// Token, when set, is required as a bearer credential on /api routes.
	Token string
	// StaticDir, when set, is served for paths no route matches.
	StaticDir string
	// Now overrides the clock used for due filtering.
	Now func() time.Time
	// ProcessLimiter, when set, gates /api/process.
	ProcessLimiter *rate.Limiter
}

// Server is the HTTP API.
type Server struct {
	deps   Dependencies
	logger *slog.Logger
	engine *gin.Engine
}

// New builds the router.
func New(deps Dependencies) (*Server, error) {
	if deps.Processor == nil || deps.Library == nil || deps.Reviews == nil {
		return nil, errors.New("server requires processor, library and review store")
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	deps.Token = strings.TrimSpace(deps.Token)
	deps.StaticDir = strings.TrimSpace(deps.StaticDir)

	s := &Server{
		deps:   deps,
		logger: logging.NewComponentLogger(deps.Logger, "server"),
	}
	s.engine = s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(requestID(), accessLog(s.logger), gin.CustomRecovery(s.recover), cors())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api", bearerAuth(s.deps.Token))
	api.POST("/process", rateLimit(s.deps.ProcessLimiter, msgTooManyRequests), s.handleProcess)
	api.POST("/save-book", s.handleSaveBook)
	api.GET("/books", s.handleBooks)
	api.GET("/books/:filename", s.handleBook)
	api.GET("/chapters", s.handleChapters)

	api.GET("/recite-list", s.handleReciteList)
	api.POST("/recite-list/add", s.handleReciteAdd)
	api.POST("/recite-list/remove", s.handleReciteRemove)
	api.POST("/recite-list/memorize", s.handleReciteMemorize)
	api.POST("/recite-list/strategy", s.handleReciteStrategy)
	api.GET("/reciting-chapters", s.handleRecitingChapters)
	api.GET("/reciting-chapters/all", s.handleAllRecitingChapters)
	api.GET("/review-strategies", s.handleStrategies)

	r.NoRoute(s.handleStatic)
	return r
}

// Serve accepts connections on listener until ctx is done, then shuts down,
// giving in-flight requests a few seconds to finish.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()
	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.WarnWithContext(s.logger, "api server shutdown incomplete", "server_shutdown",
			logging.Error(err),
			logging.String(logging.FieldImpact, "in-flight requests were cut off"),
		)
		_ = srv.Close()
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	s.logger.Info("api server stopped")
	return nil
}

func (s *Server) recover(c *gin.Context, recovered any) {
	logging.ErrorWithContext(logging.WithContext(c.Request.Context(), s.logger), "handler panic", "handler_panic",
		logging.Any("panic", recovered),
		logging.String("path", c.Request.URL.Path),
	)
	abortError(c, http.StatusInternalServerError, "internal server error")
}

func (s *Server) requestLogger(c *gin.Context) *slog.Logger {
	return logging.WithContext(c.Request.Context(), s.logger)
}

func abortError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
