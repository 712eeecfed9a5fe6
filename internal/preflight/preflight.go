package preflight

import (
	"context"

	"recitebot/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// RunLocal executes the checks that need no network access: data
// directories, the static front-end and the command backend.
func RunLocal(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Books directory", cfg.Paths.BooksDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	if cfg.Paths.StaticDir != "" {
		results = append(results, CheckStaticDir(cfg.Paths.StaticDir))
	}
	if cfg.Gateway.Backend == config.BackendCommand {
		results = append(results, CheckCommand(cfg.Gateway.Command, cfg.Gateway.WorkDir))
	}
	return results
}

// RunAll executes the local checks plus the network probe for the
// configured backend.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := RunLocal(cfg)
	switch cfg.Gateway.Backend {
	case config.BackendLLM:
		results = append(results, CheckLLM(ctx, cfg.LLM))
	case config.BackendRemote:
		results = append(results, CheckServer(ctx, cfg.Server.URL))
	}
	return results
}
