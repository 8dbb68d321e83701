package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/serenichron/openclaw-memory-mem0/internal/config"
	"github.com/serenichron/openclaw-memory-mem0/internal/mem0"
	"github.com/serenichron/openclaw-memory-mem0/internal/plugin"
	"github.com/serenichron/openclaw-memory-mem0/internal/tools"
	"github.com/serenichron/openclaw-memory-mem0/internal/tracing/otelexport"
)

// loadConfig loads the resolved config file.
func loadConfig() (string, *config.Config, error) {
	path := resolveConfigPath()
	cfg, err := config.Load(path)
	if err != nil {
		return path, nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return path, cfg, nil
}

// newHost builds a plugin host for cfg. The tool rate limiter is shared
// across reloads so a config change does not reset anyone's budget; idle
// keys are pruned every minute until ctx ends.
func newHost(ctx context.Context, cfg *config.Config, exp *otelexport.Exporter) (*plugin.Host, error) {
	var opts []plugin.HostOption
	if n := cfg.Server.ToolCallsPerMinute; n > 0 {
		rl := tools.NewToolRateLimiter(n, time.Minute)
		go pruneLoop(ctx, rl)
		opts = append(opts, plugin.WithToolRateLimiter(rl))
	}
	if exp != nil {
		opts = append(opts, plugin.WithClientOptions(mem0.WithTracerProvider(exp.TracerProvider())))
	}
	host := plugin.NewHost(slog.Default(), opts...)
	if _, err := host.LoadConfig(cfg); err != nil {
		return nil, err
	}
	return host, nil
}

// watchConfig reloads host whenever the config file changes. The returned
// stop func is a no-op if the watcher could not start.
func watchConfig(path string, current *config.Config, host *plugin.Host) (stop func()) {
	w, err := config.NewWatcher(path, current)
	if err != nil {
		slog.Warn("config watcher unavailable", "error", err)
		return func() {}
	}
	w.OnChange(func(cfg *config.Config) {
		if _, err := host.LoadConfig(cfg); err != nil {
			slog.Error("plugin reload failed, keeping previous", "error", err)
		}
	})
	if err := w.Start(); err != nil {
		slog.Warn("config watcher failed to start", "path", path, "error", err)
		return func() {}
	}
	return w.Stop
}

func pruneLoop(ctx context.Context, rl *tools.ToolRateLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Cleanup()
		}
	}
}
