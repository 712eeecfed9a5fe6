package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/time/rate"

	"recitebot/internal/config"
	"recitebot/internal/gateway"
	"recitebot/internal/library"
	"recitebot/internal/logging"
	"recitebot/internal/preflight"
	"recitebot/internal/review"
	"recitebot/internal/server"
)

// ErrAlreadyRunning reports that another server holds the instance lock.
var ErrAlreadyRunning = errors.New("another recitebot server is already running")

// Options configures the server runtime.
type Options struct {
	// Logger replaces the logger built from configuration.
	Logger *slog.Logger
	// Processor replaces the configured gateway backend.
	Processor gateway.Processor
	// OnListen is called with the bound address once the server accepts
	// connections.
	OnListen func(addr string)
}

// Run starts the API server and blocks until ctx is canceled or the process
// receives SIGINT or SIGTERM.
func Run(ctx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	if cfg.Gateway.Backend == config.BackendRemote && opts.Processor == nil {
		return errors.New("gateway.backend \"remote\" cannot be used by the server itself")
	}

	signalCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		built, err := logging.NewFromConfig(cfg)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logger = built
	}

	for _, result := range preflight.Failed(preflight.RunLocal(cfg)) {
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldImpact, "requests that depend on it will fail"),
		)
	}

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return ErrAlreadyRunning
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release server lock", logging.Error(err))
		}
	}()

	lib, err := library.Open(cfg.Paths.BooksDir, logger)
	if err != nil {
		return err
	}
	reviews, err := review.Open(cfg.ReviewDBPath(),
		review.WithLogger(logger),
		review.WithDefaultStrategy(cfg.Review.DefaultStrategy),
	)
	if err != nil {
		logger.Error("open review store", logging.Error(err))
		return err
	}
	defer reviews.Close()

	processor := opts.Processor
	if processor == nil {
		processor, err = gateway.New(cfg, logger)
		if err != nil {
			return err
		}
	}

	srv, err := server.New(server.Dependencies{
		Processor: processor,
		Library:   lib,
		Reviews:   reviews,
		Logger:    logger,
		Token:     cfg.Server.Token,
		StaticDir: cfg.Paths.StaticDir,

		ProcessLimiter: processLimiter(cfg.Server.ProcessPerMinute),
	})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	listener, err := net.Listen("tcp", cfg.Server.Bind)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Server.Bind, err)
	}
	logger.Info("recitebot server started",
		logging.String("address", listener.Addr().String()),
		logging.String("backend", cfg.Gateway.Backend),
		logging.String("books_dir", cfg.Paths.BooksDir),
		logging.String("lock", cfg.LockPath()),
	)
	if opts.OnListen != nil {
		opts.OnListen(listener.Addr().String())
	}

	if err := srv.Serve(signalCtx, listener); err != nil {
		return err
	}
	logger.Info("recitebot server shutting down")
	return nil
}

// processLimiter allows perMinute calls per minute with bursts of the same
// size. Zero means no limit.
func processLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
}
