// Package plugin is the memory-slot plugin entry point. Register wires the
// Mem0 client into whatever host implements API; Host is the in-repo host
// used by the sidecar, the MCP server and the CLI.
package plugin

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/serenichron/openclaw-memory-mem0/internal/config"
	"github.com/serenichron/openclaw-memory-mem0/internal/hooks"
	"github.com/serenichron/openclaw-memory-mem0/internal/mem0"
	"github.com/serenichron/openclaw-memory-mem0/internal/tools"
	"github.com/serenichron/openclaw-memory-mem0/pkg/protocol"
)

const (
	ID          = "memory-mem0"
	Name        = "Memory (Mem0)"
	Kind        = "memory"
	Description = "Long-term memory backed by a self-hosted Mem0 server"
)

// API is what a host hands the plugin at registration time.
type API interface {
	// PluginConfig returns the host's opaque config object for this plugin.
	PluginConfig() map[string]interface{}
	Logger() *slog.Logger
	RegisterTool(t tools.Tool)
	On(event string, h hooks.Handler)
	RegisterCLI(cmd *cobra.Command)
}

// Plugin is a registered instance: one config, one client.
type Plugin struct {
	cfg    *config.Config
	client *mem0.Client
}

// Config returns the resolved configuration.
func (p *Plugin) Config() *config.Config { return p.cfg }

// Client returns the Mem0 client the tools and hooks share.
func (p *Plugin) Client() *mem0.Client { return p.client }

// Register decodes the host config, builds the client and registers the
// three memory tools, the enabled lifecycle hooks and the mem0 command.
// An invalid config is the only error; nothing is registered in that case.
func Register(api API, opts ...mem0.Option) (*Plugin, error) {
	logger := api.Logger()
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := config.FromMap(api.PluginConfig())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ID, err)
	}

	client := mem0.NewClient(cfg, append([]mem0.Option{mem0.WithLogger(logger)}, opts...)...)

	for _, t := range tools.MemoryTools(client) {
		api.RegisterTool(t)
	}
	if cfg.AutoRecall {
		recaller := hooks.NewRecaller(client, cfg.RecallLimit, cfg.RecallThreshold, logger)
		api.On(protocol.HookBeforeAgentStart, hooks.BeforeAgentStart(recaller.Handle))
	}
	if cfg.AutoCapture {
		capturer := hooks.NewCapturer(client, logger)
		api.On(protocol.HookAgentEnd, hooks.AgentEnd(capturer.Handle))
	}
	api.RegisterCLI(NewCommand(client))

	logger.Info("memory plugin registered",
		"plugin", ID,
		"base_url", cfg.BaseURL,
		"user_id", cfg.UserID,
		"auto_recall", cfg.AutoRecall,
		"auto_capture", cfg.AutoCapture,
	)

	return &Plugin{cfg: cfg, client: client}, nil
}
