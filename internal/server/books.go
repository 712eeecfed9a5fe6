package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"recitebot/internal/gateway"
	"recitebot/internal/library"
	"recitebot/internal/logging"
	"recitebot/internal/studyset"
	"recitebot/internal/textutil"
)

const (
	msgMissingText     = "missing text"
	msgEmptyText       = "text cannot be empty"
	msgProcessTimeout  = "processing timed out, try again later"
	msgBadModelOutput  = "model output is not valid chapter JSON"
	msgMissingBookData = "missing book name or chapters"
	msgEmptyBookName   = "book name cannot be empty"
	msgBadChapters     = "chapters must be a non-empty list"
	msgBadChapter      = "every chapter needs a Title and Content"
	msgTooManyRequests = "too many processing requests, try again later"
)

type processRequest struct {
	Text *string `json:"text"`
}

func (s *Server) handleProcess(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == nil {
		abortError(c, http.StatusBadRequest, msgMissingText)
		return
	}
	if strings.TrimSpace(*req.Text) == "" {
		abortError(c, http.StatusBadRequest, msgEmptyText)
		return
	}

	logger := s.requestLogger(c)
	out, err := s.deps.Processor.Process(c.Request.Context(), *req.Text)
	var exitErr *gateway.ExitError
	if errors.As(err, &exitErr) {
		if chapters, parseErr := studyset.ParseChapters([]byte(out)); parseErr == nil {
			logging.WarnWithContext(logger, "text processor exited with an error but produced chapters", "process_exit_nonzero",
				logging.Int("exit_code", exitErr.Code),
				logging.String("stderr", textutil.FirstLine(exitErr.Stderr, 200)),
				logging.String(logging.FieldImpact, "chapters were returned anyway"),
			)
			c.JSON(http.StatusOK, chapters)
			return
		}
	}
	if err != nil {
		switch {
		case errors.Is(err, gateway.ErrTimeout):
			logging.WarnWithContext(logger, "text processing timed out", "process_timeout", logging.Error(err))
			abortError(c, http.StatusInternalServerError, msgProcessTimeout)
		case errors.As(err, &exitErr):
			logging.WarnWithContext(logger, "text processor failed", "process_failed",
				logging.Int("exit_code", exitErr.Code),
				logging.String("stderr", textutil.FirstLine(exitErr.Stderr, 200)),
			)
			abortError(c, http.StatusInternalServerError, "processing failed: "+strings.TrimSpace(exitErr.Stderr))
		default:
			logging.WarnWithContext(logger, "text processor failed", "process_failed", logging.Error(err))
			abortError(c, http.StatusInternalServerError, "processing failed: "+err.Error())
		}
		return
	}

	chapters, err := studyset.ParseChapters([]byte(out))
	if err != nil {
		logging.WarnWithContext(logger, "text processor returned unusable output", "process_output_invalid",
			logging.Error(err),
			logging.String("output", textutil.FirstLine(out, 200)),
		)
		abortError(c, http.StatusInternalServerError, msgBadModelOutput)
		return
	}
	logger.Info("text processed", logging.Int("chapters", len(chapters)))
	c.JSON(http.StatusOK, chapters)
}

type saveBookRequest struct {
	BookName *string        `json:"bookName"`
	Chapters json.RawMessage `json:"chapters"`
}

func (s *Server) handleSaveBook(c *gin.Context) {
	var req saveBookRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.BookName == nil || len(req.Chapters) == 0 {
		abortError(c, http.StatusBadRequest, msgMissingBookData)
		return
	}
	if strings.TrimSpace(*req.BookName) == "" {
		abortError(c, http.StatusBadRequest, msgEmptyBookName)
		return
	}
	chapters, msg := decodeSubmittedChapters(req.Chapters)
	if msg != "" {
		abortError(c, http.StatusBadRequest, msg)
		return
	}

	filename, err := s.deps.Library.Save(strings.TrimSpace(*req.BookName), chapters)
	if err != nil {
		logging.ErrorWithContext(s.requestLogger(c), "save book failed", "book_save_failed",
			logging.String(logging.FieldBook, *req.BookName),
			logging.Error(err),
		)
		abortError(c, http.StatusInternalServerError, "save failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("book saved as %s", filename),
	})
}

// decodeSubmittedChapters requires a non-empty array of objects that each
// carry Title and Content keys. It returns a client-facing message on failure.
func decodeSubmittedChapters(raw json.RawMessage) ([]studyset.Chapter, string) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, msgBadChapters
	}
	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, msgBadChapter
	}
	if len(entries) == 0 {
		return nil, msgBadChapters
	}
	chapters := make([]studyset.Chapter, 0, len(entries))
	for _, entry := range entries {
		title, hasTitle := entry["Title"]
		content, hasContent := entry["Content"]
		if entry == nil || !hasTitle || !hasContent {
			return nil, msgBadChapter
		}
		var ch studyset.Chapter
		if json.Unmarshal(title, &ch.Title) != nil || json.Unmarshal(content, &ch.Content) != nil {
			return nil, msgBadChapter
		}
		chapters = append(chapters, ch)
	}
	return chapters, ""
}

func (s *Server) handleBooks(c *gin.Context) {
	books, err := s.deps.Library.List()
	if err != nil {
		logging.ErrorWithContext(s.requestLogger(c), "list books failed", "book_list_failed", logging.Error(err))
		abortError(c, http.StatusInternalServerError, "failed to list books")
		return
	}
	c.JSON(http.StatusOK, books)
}

func (s *Server) handleBook(c *gin.Context) {
	book, err := s.deps.Library.Load(c.Param("filename"))
	switch {
	case err == nil:
		if book.Chapters == nil {
			book.Chapters = []studyset.Chapter{}
		}
		c.JSON(http.StatusOK, book)
	case errors.Is(err, library.ErrInvalidFilename):
		abortError(c, http.StatusBadRequest, "invalid file name")
	case errors.Is(err, library.ErrNotFound):
		abortError(c, http.StatusNotFound, "book not found")
	case errors.Is(err, library.ErrCorrupt):
		abortError(c, http.StatusInternalServerError, "book file is corrupt")
	default:
		logging.ErrorWithContext(s.requestLogger(c), "load book failed", "book_load_failed", logging.Error(err))
		abortError(c, http.StatusInternalServerError, "failed to load book")
	}
}

func (s *Server) handleChapters(c *gin.Context) {
	all, err := s.deps.Library.All()
	if err != nil {
		logging.ErrorWithContext(s.requestLogger(c), "list chapters failed", "chapter_list_failed", logging.Error(err))
		abortError(c, http.StatusInternalServerError, "failed to list chapters")
		return
	}
	c.JSON(http.StatusOK, all)
}
