package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mem0http "github.com/serenichron/openclaw-memory-mem0/internal/http"
)

func serveCmd() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the sidecar HTTP server for an OpenClaw gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, cfg, err := loadConfig()
			if err != nil {
				return err
			}
			loaded := *cfg
			if listen != "" {
				cfg.Server.Listen = listen
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			exp := initTelemetry(ctx, cfg)
			defer shutdownTelemetry(exp)

			host, err := newHost(ctx, cfg, exp)
			if err != nil {
				return err
			}
			stopWatch := watchConfig(path, &loaded, host)
			defer stopWatch()

			host.Plugin().Client().EnsureHealthy(ctx)

			slog.Info("openclaw-mem0 sidecar starting", "version", Version, "config", path)
			return mem0http.NewServer(host, cfg.Server).ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides server.listen)")
	return cmd
}
