package gateway

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"

	"recitebot/internal/config"
	"recitebot/internal/logging"
)

func TestWithTimeoutPassesThroughFastCalls(t *testing.T) {
	p := WithTimeout(ProcessorFunc(func(ctx context.Context, text string) (string, error) {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("expected a deadline on the call context")
		}
		return strings.ToUpper(text), nil
	}), time.Second)

	out, err := p.Process(context.Background(), "abc")
	if err != nil || out != "ABC" {
		t.Fatalf("Process = %q, %v", out, err)
	}
}

func TestWithTimeoutKeepsCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := WithTimeout(ProcessorFunc(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}), time.Minute)

	_, err := p.Process(ctx, "x")
	if errors.Is(err, ErrTimeout) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestTaskHandsBackResult(t *testing.T) {
	defer goleak.VerifyNone(t)

	release := make(chan struct{})
	task := Go(context.Background(), ProcessorFunc(func(ctx context.Context, text string) (string, error) {
		<-release
		return "[" + text + "]", nil
	}), "chapters")

	if _, ok := task.Result(); ok {
		t.Fatal("expected task to be running")
	}
	close(release)

	outcome, err := task.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if outcome.Output != "[chapters]" || outcome.Err != nil {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if again, ok := task.Result(); !ok || again != outcome {
		t.Fatalf("Result after completion = %+v, %v", again, ok)
	}
}

func TestTaskCarriesError(t *testing.T) {
	defer goleak.VerifyNone(t)

	boom := errors.New("boom")
	task := Go(context.Background(), ProcessorFunc(func(context.Context, string) (string, error) {
		return "", boom
	}), "x")
	<-task.Done()
	outcome, _ := task.Result()
	if !errors.Is(outcome.Err, boom) {
		t.Fatalf("expected boom, got %v", outcome.Err)
	}
}

func TestTaskRecoversPanic(t *testing.T) {
	defer goleak.VerifyNone(t)

	task := Go(context.Background(), ProcessorFunc(func(context.Context, string) (string, error) {
		panic("bad script")
	}), "x")
	outcome, err := task.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if outcome.Err == nil || !strings.Contains(outcome.Err.Error(), "bad script") {
		t.Fatalf("expected panic to surface as error, got %v", outcome.Err)
	}
}

func TestTaskWaitHonoursContextAndWorkerStillFinishes(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	task := Go(ctx, ProcessorFunc(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}), "x")

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer waitCancel()
	if _, err := task.Wait(waitCtx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected wait deadline, got %v", err)
	}

	cancel()
	<-task.Done()
	outcome, _ := task.Result()
	if !errors.Is(outcome.Err, context.Canceled) {
		t.Fatalf("expected canceled outcome, got %v", outcome.Err)
	}
}

type fakeCompleter struct {
	system, user string
	reply        string
	err          error
}

func (f *fakeCompleter) CompleteJSON(_ context.Context, system, user string) (string, error) {
	f.system, f.user = system, user
	return f.reply, f.err
}

func TestLLMProcessBuildsSegmentationPrompt(t *testing.T) {
	fake := &fakeCompleter{reply: `{"chapters":[{"Title":"A","Content":"a"}]}`}
	out, err := NewLLM(fake, logging.NewNop()).Process(context.Background(), "Cells are small.")
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if out != fake.reply {
		t.Fatalf("unexpected output %q", out)
	}
	if fake.system != "You are an assistant that organizes study materials." {
		t.Fatalf("unexpected system prompt %q", fake.system)
	}
	if !strings.HasSuffix(fake.user, "Text:\nCells are small.") || !strings.Contains(fake.user, "Detailed Content") {
		t.Fatalf("unexpected user prompt %q", fake.user)
	}
}

func TestLLMProcessRejectsBlankAndWrapsErrors(t *testing.T) {
	fake := &fakeCompleter{err: errors.New("http 500")}
	p := NewLLM(fake, nil)
	if _, err := p.Process(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank text")
	}
	if _, err := p.Process(context.Background(), "text"); err == nil || !strings.Contains(err.Error(), "http 500") {
		t.Fatalf("expected wrapped completer error, got %v", err)
	}
}

func TestNewSelectsBackend(t *testing.T) {
	for _, backend := range []string{config.BackendCommand, config.BackendLLM, config.BackendRemote} {
		cfg := config.Default()
		cfg.Gateway.Backend = backend
		cfg.Server.URL = "http://127.0.0.1:9178"
		if _, err := New(&cfg, logging.NewNop()); err != nil {
			t.Fatalf("New(%s) returned error: %v", backend, err)
		}
	}

	cfg := config.Default()
	cfg.Gateway.Backend = "smoke-signals"
	if _, err := New(&cfg, nil); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	cfg = config.Default()
	cfg.Gateway.TimeoutSeconds = 0
	if _, err := New(&cfg, nil); err == nil {
		t.Fatal("expected error for non-positive timeout")
	}
	if _, err := New(nil, nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}
