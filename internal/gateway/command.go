package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"recitebot/internal/logging"
	"recitebot/internal/textutil"
)

var commandContext = exec.CommandContext

// outputGrace bounds how long Wait keeps collecting output after the
// process exits or is killed, for descendants still holding the pipes.
const outputGrace = 2 * time.Second

// Result captures one finished subprocess call.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Command runs an external program per call, feeding the text on stdin and
// reading the output from stdout.
type Command struct {
	name   string
	args   []string
	dir    string
	env    []string
	logger *slog.Logger
}

// CommandOption customizes a Command.
type CommandOption func(*Command)

// WithDir sets the working directory of the subprocess.
func WithDir(dir string) CommandOption {
	return func(c *Command) {
		c.dir = strings.TrimSpace(dir)
	}
}

// WithEnv appends environment entries (KEY=value) to the inherited environment.
func WithEnv(env ...string) CommandOption {
	return func(c *Command) {
		c.env = append(c.env, env...)
	}
}

// WithCommandLogger attaches a logger.
func WithCommandLogger(logger *slog.Logger) CommandOption {
	return func(c *Command) {
		c.logger = logger
	}
}

// NewCommand returns a subprocess backend for name and args.
func NewCommand(name string, args []string, opts ...CommandOption) *Command {
	c := &Command{
		name: strings.TrimSpace(name),
		args: append([]string(nil), args...),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "gateway")
	return c
}

// Run executes the command once. Stdin is written from a goroutine while
// the output is collected, so neither side blocks on a full pipe. The
// command runs in its own process group, and cancellation kills the whole
// group. A non-zero exit is reported through Result.ExitCode, not as an
// error.
func (c *Command) Run(ctx context.Context, text string) (Result, error) {
	if c.name == "" {
		return Result{}, errors.New("run processor: command is required")
	}
	logger := logging.WithContext(ctx, c.logger)
	started := time.Now()

	var outBuf, errBuf bytes.Buffer
	cmd := commandContext(ctx, c.name, c.args...) //nolint:gosec
	cmd.Dir = c.dir
	if len(c.env) > 0 {
		cmd.Env = append(os.Environ(), c.env...)
	}
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	cmd.WaitDelay = outputGrace
	setProcessGroup(cmd)
	cmd.Cancel = func() error { return killProcessGroup(cmd) }

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return Result{}, fmt.Errorf("run processor: stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("run processor: start %s: %w", c.name, err)
	}
	logger.Debug("processor started",
		logging.String("command", c.name),
		logging.Int("pid", cmd.Process.Pid),
		logging.Int("input_bytes", len(text)),
	)

	var group errgroup.Group
	group.Go(func() error {
		_, err := io.WriteString(stdin, text)
		closeErr := stdin.Close()
		if err == nil {
			err = closeErr
		}
		if brokenPipe(err) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("write stdin: %w", err)
		}
		return nil
	})
	// Wait closes the stdin pipe once the child exits, which releases a
	// writer stuck on a child that never read its input.
	waitErr := cmd.Wait()
	ioErr := group.Wait()
	if errors.Is(waitErr, exec.ErrWaitDelay) && ctx.Err() == nil {
		logging.WarnWithContext(logger, "processor left output pipes open", "gateway_orphan_output",
			logging.String("command", c.name),
			logging.Duration("grace", outputGrace),
			logging.String(logging.FieldImpact, "output written after the processor exited was dropped"),
		)
		_ = killProcessGroup(cmd)
		waitErr = nil
	}

	result := Result{
		Stdout:   outBuf.String(),
		Stderr:   errBuf.String(),
		Duration: time.Since(started),
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}
	if msg := strings.TrimSpace(result.Stderr); msg != "" {
		logging.WarnWithContext(logger, "processor wrote to stderr", "gateway_stderr",
			logging.String("command", c.name),
			logging.String("stderr", textutil.FirstLine(msg, 300)),
			logging.String(logging.FieldErrorHint, "check the processing script and its API credentials"),
			logging.String(logging.FieldImpact, "output is still used when present"),
		)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, fmt.Errorf("run processor: %w", ctxErr)
	}
	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		return result, fmt.Errorf("run processor: wait: %w", waitErr)
	}
	if ioErr != nil {
		return result, fmt.Errorf("run processor: %w", ioErr)
	}
	logger.Info("processor finished",
		logging.String("command", c.name),
		logging.Int("exit_code", result.ExitCode),
		logging.Int("output_bytes", len(result.Stdout)),
		logging.Duration("duration", result.Duration),
	)
	return result, nil
}

// Process runs the command and returns its stdout. A non-zero exit yields an
// *ExitError together with whatever stdout was produced.
func (c *Command) Process(ctx context.Context, text string) (string, error) {
	result, err := c.Run(ctx, text)
	if err != nil {
		return result.Stdout, err
	}
	if result.ExitCode != 0 {
		return result.Stdout, &ExitError{Code: result.ExitCode, Stderr: result.Stderr}
	}
	return result.Stdout, nil
}

// brokenPipe reports stdin write errors caused by a child that stopped
// reading; its exit status tells the real story.
func brokenPipe(err error) bool {
	return err != nil && (errors.Is(err, syscall.EPIPE) || errors.Is(err, os.ErrClosed))
}
