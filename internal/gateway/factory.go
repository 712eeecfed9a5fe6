package gateway

import (
	"errors"
	"fmt"
	"log/slog"

	"recitebot/internal/client"
	"recitebot/internal/config"
	"recitebot/internal/llm"
)

// New builds the configured backend, bounded by gateway.timeout_seconds.
func New(cfg *config.Config, logger *slog.Logger) (Processor, error) {
	if cfg == nil {
		return nil, errors.New("build gateway: config is required")
	}
	var backend Processor
	switch cfg.Gateway.Backend {
	case config.BackendCommand:
		backend = NewCommand(cfg.Gateway.Command, cfg.Gateway.Args,
			WithDir(cfg.Gateway.WorkDir),
			WithCommandLogger(logger),
		)
	case config.BackendLLM:
		completer := llm.NewClient(llm.Config{
			APIKey:         cfg.LLM.APIKey,
			BaseURL:        cfg.LLM.BaseURL,
			Model:          cfg.LLM.Model,
			MaxTokens:      cfg.LLM.MaxTokens,
			Temperature:    cfg.LLM.Temperature,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		})
		backend = NewLLM(completer, logger)
	case config.BackendRemote:
		backend = client.New(cfg.Server.URL, client.WithToken(cfg.Server.Token))
	default:
		return nil, fmt.Errorf("build gateway: unsupported backend %q", cfg.Gateway.Backend)
	}
	timeout := cfg.GatewayTimeout()
	if timeout <= 0 {
		return nil, errors.New("build gateway: timeout must be positive")
	}
	return WithTimeout(backend, timeout), nil
}
