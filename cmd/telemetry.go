package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/serenichron/openclaw-memory-mem0/internal/config"
	"github.com/serenichron/openclaw-memory-mem0/internal/tracing/otelexport"
)

// initTelemetry installs the OTLP exporter when telemetry is enabled. A
// failure is logged and the process carries on without export.
func initTelemetry(ctx context.Context, cfg *config.Config) *otelexport.Exporter {
	if !cfg.Telemetry.Enabled {
		slog.Debug("otel export available but not enabled (set telemetry.enabled + telemetry.endpoint)")
		return nil
	}
	exp, err := otelexport.Setup(ctx, cfg.Telemetry, Version)
	if err != nil {
		slog.Warn("failed to create otel exporter", "error", err)
		return nil
	}
	return exp
}

// shutdownTelemetry flushes pending spans, bounded to five seconds.
func shutdownTelemetry(exp *otelexport.Exporter) {
	if exp == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := exp.Shutdown(ctx); err != nil {
		slog.Warn("otel shutdown", "error", err)
	}
}
