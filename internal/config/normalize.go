package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeServer()
	if err := c.normalizeGateway(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeReview()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(strings.TrimSpace(c.Paths.DataDir)); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}

	derived := []struct {
		key      string
		value    *string
		fallback string
	}{
		{"paths.books_dir", &c.Paths.BooksDir, filepath.Join(c.Paths.DataDir, defaultBooksSubdir)},
		{"paths.log_dir", &c.Paths.LogDir, filepath.Join(c.Paths.DataDir, defaultLogsSubdir)},
		{"paths.document", &c.Paths.Document, filepath.Join(c.Paths.DataDir, defaultDocumentName)},
	}
	for _, field := range derived {
		trimmed := strings.TrimSpace(*field.value)
		if trimmed == "" {
			trimmed = field.fallback
		}
		if *field.value, err = expandPath(trimmed); err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
	}

	if c.Paths.StaticDir, err = expandPath(strings.TrimSpace(c.Paths.StaticDir)); err != nil {
		return fmt.Errorf("paths.static_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultBind
	}
	c.Server.Token = strings.TrimSpace(c.Server.Token)
	if c.Server.Token == "" {
		c.Server.Token = strings.TrimSpace(os.Getenv(envServerToken))
	}
	c.Server.URL = strings.TrimRight(strings.TrimSpace(c.Server.URL), "/")
	if c.Server.URL == "" {
		c.Server.URL = "http://" + c.Server.Bind
	}
}

func (c *Config) normalizeGateway() error {
	c.Gateway.Backend = strings.ToLower(strings.TrimSpace(c.Gateway.Backend))
	if c.Gateway.Backend == "" {
		c.Gateway.Backend = defaultGatewayBackend
	}
	c.Gateway.Command = strings.TrimSpace(c.Gateway.Command)
	if c.Gateway.TimeoutSeconds == 0 {
		c.Gateway.TimeoutSeconds = defaultGatewayTimeout
	}
	var err error
	if c.Gateway.WorkDir, err = expandPath(strings.TrimSpace(c.Gateway.WorkDir)); err != nil {
		return fmt.Errorf("gateway.work_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	for _, key := range []string{envAPIKey, envDeepSeekAPIKey} {
		if c.LLM.APIKey != "" {
			break
		}
		c.LLM.APIKey = strings.TrimSpace(os.Getenv(key))
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = strings.TrimSpace(os.Getenv(envBaseURL))
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = DefaultLLMBaseURL
	}
	c.LLM.BaseURL = strings.TrimRight(c.LLM.BaseURL, "/")
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = defaultLLMMaxTokens
	}
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeout
	}
}

func (c *Config) normalizeReview() {
	c.Review.DefaultStrategy = strings.ToLower(strings.TrimSpace(c.Review.DefaultStrategy))
	if c.Review.DefaultStrategy == "" {
		c.Review.DefaultStrategy = defaultReviewStrategy
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
