package gateway

import (
	"context"
	"fmt"
)

// Outcome is the single value a Task hands back.
type Outcome struct {
	Output string
	Err    error
}

// Task is a processing call running on its own goroutine. The worker never
// touches caller state; the caller collects the Outcome through Wait or
// Result once Done is closed.
type Task struct {
	done    chan struct{}
	outcome Outcome
}

// Go starts p.Process(ctx, text) on a new goroutine. Cancel ctx to abandon
// the call; the goroutine still finishes and closes Done.
func Go(ctx context.Context, p Processor, text string) *Task {
	t := &Task{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		defer func() {
			if r := recover(); r != nil {
				t.outcome = Outcome{Err: fmt.Errorf("processor panic: %v", r)}
			}
		}()
		out, err := p.Process(ctx, text)
		t.outcome = Outcome{Output: out, Err: err}
	}()
	return t
}

// Done is closed when the call has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the call finishes or ctx ends.
func (t *Task) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-t.done:
		return t.outcome, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// Result returns the outcome without blocking; ok is false while running.
func (t *Task) Result() (Outcome, bool) {
	select {
	case <-t.done:
		return t.outcome, true
	default:
		return Outcome{}, false
	}
}
