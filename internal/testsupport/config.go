package testsupport

import (
	"path/filepath"
	"testing"

	"recitebot/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.BooksDir = filepath.Join(base, "data", "books")
	cfgVal.Paths.LogDir = filepath.Join(base, "data", "logs")
	cfgVal.Paths.Document = filepath.Join(base, "data", "document.json")
	cfgVal.Server.Bind = "127.0.0.1:0"
	cfgVal.Server.URL = "http://127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithToken sets the server bearer token.
func WithToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Server.Token = token
	}
}

// WithStaticDir points the server at a front-end directory.
func WithStaticDir(dir string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.StaticDir = dir
	}
}

// WithGatewayCommand configures the command backend.
func WithGatewayCommand(command string, args ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Gateway.Backend = config.BackendCommand
		b.cfg.Gateway.Command = command
		b.cfg.Gateway.Args = args
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
