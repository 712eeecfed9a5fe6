package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateGateway(); err != nil {
		return err
	}
	if c.Server.ProcessPerMinute < 0 {
		return errors.New("server.process_per_minute must not be negative")
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateReview(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateGateway() error {
	switch c.Gateway.Backend {
	case BackendCommand:
		if c.Gateway.Command == "" {
			return errors.New("gateway.command must be set when gateway.backend is \"command\"")
		}
	case BackendLLM, BackendRemote:
	default:
		return fmt.Errorf("gateway.backend: unsupported value %q (want command, llm or remote)", c.Gateway.Backend)
	}
	if c.Gateway.TimeoutSeconds <= 0 {
		return errors.New("gateway.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.Gateway.Backend == BackendLLM && c.LLM.APIKey == "" {
		path, err := DefaultConfigPath()
		if err != nil {
			path = defaultConfigPath
		}
		return fmt.Errorf("llm.api_key is required for the llm backend. Set API_KEY or DEEPSEEK_API_KEY, or edit %s (create with 'recitebot config init')", path)
	}
	if c.LLM.MaxTokens <= 0 {
		return errors.New("llm.max_tokens must be positive")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be between 0 and 2")
	}
	if c.LLM.TimeoutSeconds <= 0 {
		return errors.New("llm.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateReview() error {
	if !slices.Contains(knownStrategies, c.Review.DefaultStrategy) {
		return fmt.Errorf("review.default_strategy: unsupported value %q (want %s)", c.Review.DefaultStrategy, strings.Join(knownStrategies, ", "))
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
