package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"recitebot/internal/config"
	"recitebot/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

type envOption func(*config.Config)

func withServerURL(url string) envOption {
	return func(cfg *config.Config) {
		cfg.Server.URL = url
	}
}

func setupCLITestEnv(t *testing.T, opts ...envOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, testsupport.WithGatewayCommand("cat", "-"))
	cfg.Gateway.TimeoutSeconds = 5
	for _, opt := range opts {
		opt(cfg)
	}
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("RECITEBOT_TOKEN", "")

	configPath := filepath.Join(homeDir, ".config", "recitebot", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func (e *cliTestEnv) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	return runCLI(t, args, e.configPath, stdin)
}

func runCLI(t *testing.T, args []string, configPath, stdin string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	var b strings.Builder
	fmt.Fprintf(&b, "[paths]\ndata_dir = %q\nbooks_dir = %q\nlog_dir = %q\ndocument = %q\n\n",
		cfg.Paths.DataDir, cfg.Paths.BooksDir, cfg.Paths.LogDir, cfg.Paths.Document)
	fmt.Fprintf(&b, "[server]\nbind = %q\nurl = %q\n\n", cfg.Server.Bind, cfg.Server.URL)
	fmt.Fprintf(&b, "[gateway]\nbackend = %q\ncommand = %q\nargs = [", cfg.Gateway.Backend, cfg.Gateway.Command)
	for i, arg := range cfg.Gateway.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q", arg)
	}
	fmt.Fprintf(&b, "]\ntimeout_seconds = %d\n\n", cfg.Gateway.TimeoutSeconds)
	b.WriteString("[logging]\nlevel = \"debug\"\n")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("expected output to contain %q, got:\n%s", want, output)
	}
}
