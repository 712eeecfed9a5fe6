package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"recitebot/internal/logging"
	"recitebot/internal/review"
)

const (
	msgMissingItem     = "missing book_name or chapter_title"
	msgEmptyItem       = "book_name and chapter_title cannot be empty"
	msgMissingParams   = "missing required parameters"
	msgEmptyParams     = "parameters cannot be empty"
	msgItemNotFound    = "chapter not found in recite list"
	msgUnknownStrategy = "unknown review strategy"
)

type itemRequest struct {
	BookName     *string `json:"book_name"`
	ChapterTitle *string `json:"chapter_title"`
	Strategy     *string `json:"strategy"`
}

func (r itemRequest) book() string     { return strings.TrimSpace(deref(r.BookName)) }
func (r itemRequest) chapter() string  { return strings.TrimSpace(deref(r.ChapterTitle)) }
func (r itemRequest) strategy() string { return strings.TrimSpace(deref(r.Strategy)) }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// bindItem decodes an item request and writes the 400 reply itself when the
// book or chapter is missing.
func bindItem(c *gin.Context) (itemRequest, bool) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.BookName == nil || req.ChapterTitle == nil {
		abortError(c, http.StatusBadRequest, msgMissingItem)
		return req, false
	}
	if req.book() == "" || req.chapter() == "" {
		abortError(c, http.StatusBadRequest, msgEmptyItem)
		return req, false
	}
	return req, true
}

func (s *Server) handleReciteList(c *gin.Context) {
	items, err := s.deps.Reviews.List(c.Request.Context())
	if err != nil {
		s.storeFailure(c, "list recite items failed", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) handleReciteAdd(c *gin.Context) {
	req, ok := bindItem(c)
	if !ok {
		return
	}
	item, created, err := s.deps.Reviews.Add(c.Request.Context(), req.book(), req.chapter(), req.strategy())
	if err != nil {
		if errors.Is(err, review.ErrUnknownStrategy) {
			abortError(c, http.StatusBadRequest, msgUnknownStrategy)
			return
		}
		s.storeFailure(c, "add recite item failed", err)
		return
	}
	if !created {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "chapter already in recite list"})
		return
	}
	strategy := review.Lookup(item.Strategy)
	c.JSON(http.StatusOK, gin.H{
		"success":              true,
		"message":              "added to recite list",
		"strategy":             strategy.Name,
		"strategy_description": strategy.Description,
		"review_cycle_days":    strategy.CycleDays,
	})
}

func (s *Server) handleReciteRemove(c *gin.Context) {
	req, ok := bindItem(c)
	if !ok {
		return
	}
	if _, err := s.deps.Reviews.Remove(c.Request.Context(), req.book(), req.chapter()); err != nil {
		s.storeFailure(c, "remove recite item failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "removed from recite list"})
}

func (s *Server) handleReciteMemorize(c *gin.Context) {
	req, ok := bindItem(c)
	if !ok {
		return
	}
	item, err := s.deps.Reviews.MarkMemorized(c.Request.Context(), req.book(), req.chapter())
	if err != nil {
		if errors.Is(err, review.ErrNotFound) {
			abortError(c, http.StatusNotFound, msgItemNotFound)
			return
		}
		s.storeFailure(c, "mark memorized failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":                true,
		"message":                "marked as memorized, next review scheduled",
		"next_review_at":         item.NextReviewAt,
		"review_count":           item.ReviewCount,
		"strategy":               item.Strategy,
		"completion":             review.Completion(item.ReviewCount, item.Strategy),
		"time_until_next_review": review.Until(item.NextReviewAt, s.deps.Now()),
	})
}

func (s *Server) handleReciteStrategy(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.BookName == nil || req.ChapterTitle == nil || req.Strategy == nil {
		abortError(c, http.StatusBadRequest, msgMissingParams)
		return
	}
	if req.book() == "" || req.chapter() == "" || req.strategy() == "" {
		abortError(c, http.StatusBadRequest, msgEmptyParams)
		return
	}
	item, old, err := s.deps.Reviews.ChangeStrategy(c.Request.Context(), req.book(), req.chapter(), req.strategy())
	switch {
	case errors.Is(err, review.ErrUnknownStrategy):
		abortError(c, http.StatusBadRequest, msgUnknownStrategy)
		return
	case errors.Is(err, review.ErrNotFound):
		abortError(c, http.StatusNotFound, msgItemNotFound)
		return
	case err != nil:
		s.storeFailure(c, "change strategy failed", err)
		return
	}
	strategy := review.Lookup(item.Strategy)
	c.JSON(http.StatusOK, gin.H{
		"success":              true,
		"message":              fmt.Sprintf("changed review strategy from %s to %s", old, item.Strategy),
		"book_name":            item.BookName,
		"chapter_title":        item.ChapterTitle,
		"old_strategy":         old,
		"new_strategy":         item.Strategy,
		"strategy_description": strategy.Description,
		"next_review_at":       item.NextReviewAt,
		"review_cycle_days":    strategy.CycleDays,
	})
}

func (s *Server) handleRecitingChapters(c *gin.Context) {
	s.writeGroups(c, review.DueFilter(s.deps.Now()))
}

func (s *Server) handleAllRecitingChapters(c *gin.Context) {
	s.writeGroups(c, nil)
}

func (s *Server) writeGroups(c *gin.Context, filter func(review.Item) bool) {
	items, err := s.deps.Reviews.List(c.Request.Context())
	if err != nil {
		s.storeFailure(c, "list recite items failed", err)
		return
	}
	c.JSON(http.StatusOK, review.Collect(items, s.deps.Library, filter))
}

type strategyView struct {
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	CycleDays    int       `json:"cycle_days"`
	Intervals    []float64 `json:"intervals"`
	TotalReviews int       `json:"total_reviews"`
}

func (s *Server) handleStrategies(c *gin.Context) {
	list := review.Strategies()
	views := make([]strategyView, 0, len(list))
	for _, st := range list {
		views = append(views, strategyView{
			Name:         st.Name,
			Description:  st.Description,
			CycleDays:    st.CycleDays,
			Intervals:    st.Intervals,
			TotalReviews: st.TotalReviews(),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"strategies":       views,
		"default_strategy": review.DefaultStrategy,
	})
}

func (s *Server) storeFailure(c *gin.Context, msg string, err error) {
	if errors.Is(err, review.ErrInvalidItem) {
		abortError(c, http.StatusBadRequest, msgEmptyItem)
		return
	}
	logging.ErrorWithContext(s.requestLogger(c), msg, "recite_store_failed", logging.Error(err))
	abortError(c, http.StatusInternalServerError, msg)
}
