package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"recitebot/internal/logging"
)

const segmentationSystemPrompt = "You are an assistant that organizes study materials."

const segmentationTemplate = `Please split the following text into chapters.

For each chapter provide:
- Title
- Detailed Content

Return JSON in the form:

{"chapters": [{"Title": "...", "Content": "..."}]}

Text:
`

// SegmentationPrompt returns the user prompt sent to the model for text.
func SegmentationPrompt(text string) string {
	return segmentationTemplate + text
}

// Completer is the slice of the LLM client the in-process backend needs.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// LLM segments text by calling a chat completion API directly.
type LLM struct {
	completer Completer
	logger    *slog.Logger
}

// NewLLM returns an in-process backend over completer.
func NewLLM(completer Completer, logger *slog.Logger) *LLM {
	return &LLM{completer: completer, logger: logging.NewComponentLogger(logger, "gateway")}
}

// Process sends text to the model and returns its JSON reply.
func (l *LLM) Process(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.New("segment text: input is empty")
	}
	started := time.Now()
	out, err := l.completer.CompleteJSON(ctx, segmentationSystemPrompt, SegmentationPrompt(text))
	if err != nil {
		return "", fmt.Errorf("segment text: %w", err)
	}
	logging.WithContext(ctx, l.logger).Info("segmentation completed",
		logging.Int("input_bytes", len(text)),
		logging.Int("output_bytes", len(out)),
		logging.Duration("duration", time.Since(started)),
	)
	return out, nil
}
