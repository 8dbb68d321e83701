package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/serenichron/openclaw-memory-mem0/internal/mcp"
)

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the memory tools over MCP on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			exp := initTelemetry(ctx, cfg)
			defer shutdownTelemetry(exp)

			host, err := newHost(ctx, cfg, exp)
			if err != nil {
				return err
			}
			stopWatch := watchConfig(path, cfg, host)
			defer stopWatch()

			srv, err := mcp.NewServer(host, Version)
			if err != nil {
				return err
			}
			return srv.ServeStdio()
		},
	}
}
