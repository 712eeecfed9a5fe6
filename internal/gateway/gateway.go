package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrTimeout reports that a processing call exceeded its time bound.
var ErrTimeout = errors.New("text processing timed out")

// Processor turns raw study text into the backend's output, normally a JSON
// chapter list.
type Processor interface {
	Process(ctx context.Context, text string) (string, error)
}

// ProcessorFunc adapts a plain function to Processor.
type ProcessorFunc func(ctx context.Context, text string) (string, error)

// Process calls f.
func (f ProcessorFunc) Process(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

// ExitError reports a subprocess that exited non-zero.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("processor exited with code %d", e.Code)
	}
	return fmt.Sprintf("processor exited with code %d: %s", e.Code, msg)
}

// WithTimeout bounds every call to p by d. A call that runs out of time
// returns an error matching ErrTimeout; cancellation by the caller is
// passed through unchanged.
func WithTimeout(p Processor, d time.Duration) Processor {
	return ProcessorFunc(func(ctx context.Context, text string) (string, error) {
		callCtx, cancel := context.WithTimeout(ctx, d)
		defer cancel()

		out, err := p.Process(callCtx, text)
		if err != nil && ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return out, fmt.Errorf("%w after %s", ErrTimeout, d)
		}
		return out, err
	})
}
