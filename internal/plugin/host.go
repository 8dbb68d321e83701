package plugin

import (
	"context"
	"log/slog"
	"sync"

	"github.com/spf13/cobra"

	"github.com/serenichron/openclaw-memory-mem0/internal/config"
	"github.com/serenichron/openclaw-memory-mem0/internal/hooks"
	"github.com/serenichron/openclaw-memory-mem0/internal/mem0"
	"github.com/serenichron/openclaw-memory-mem0/internal/tools"
	"github.com/serenichron/openclaw-memory-mem0/pkg/protocol"
)

// Host is a minimal in-process host. Each Load builds a fresh registry,
// dispatcher and command set through Register and swaps them in; callers
// already holding the old ones finish on them.
type Host struct {
	mu  sync.RWMutex
	cur *runtime

	logger      *slog.Logger
	rateLimiter *tools.ToolRateLimiter
	clientOpts  []mem0.Option
}

type runtime struct {
	plugin     *Plugin
	registry   *tools.Registry
	dispatcher *hooks.Dispatcher
	commands   []*cobra.Command
}

// HostOption customises a Host.
type HostOption func(*Host)

// WithToolRateLimiter limits tool calls per agent id.
func WithToolRateLimiter(rl *tools.ToolRateLimiter) HostOption {
	return func(h *Host) { h.rateLimiter = rl }
}

// WithClientOptions passes options through to every Mem0 client the host builds.
func WithClientOptions(opts ...mem0.Option) HostOption {
	return func(h *Host) { h.clientOpts = append(h.clientOpts, opts...) }
}

func NewHost(logger *slog.Logger, opts ...HostOption) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Host{logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	h.cur = h.newRuntime()
	return h
}

func (h *Host) newRuntime() *runtime {
	reg := tools.NewRegistry()
	reg.SetLogger(h.logger)
	// Memory text is user data; redaction is opt-in per config.
	reg.SetScrubbing(false)
	if h.rateLimiter != nil {
		reg.SetRateLimiter(h.rateLimiter)
	}
	return &runtime{
		registry:   reg,
		dispatcher: hooks.NewDispatcher(h.logger),
	}
}

// Load registers the plugin with raw as its config object. On error the
// previously loaded plugin stays active.
func (h *Host) Load(raw map[string]interface{}) (*Plugin, error) {
	rt := h.newRuntime()
	p, err := Register(&registrar{host: h, raw: raw, rt: rt}, h.clientOpts...)
	if err != nil {
		return nil, err
	}
	rt.plugin = p
	rt.registry.SetScrubbing(p.Config().ScrubToolOutput)

	h.mu.Lock()
	h.cur = rt
	h.mu.Unlock()
	h.logger.Debug("plugin runtime swapped",
		"tools", rt.registry.Count(),
		"recall_hooks", rt.dispatcher.Handlers(protocol.HookBeforeAgentStart),
		"capture_hooks", rt.dispatcher.Handlers(protocol.HookAgentEnd),
	)
	return p, nil
}

// LoadConfig loads the plugin from an already resolved config.
func (h *Host) LoadConfig(cfg *config.Config) (*Plugin, error) {
	return h.Load(cfg.ToMap())
}

func (h *Host) current() *runtime {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cur
}

// Plugin returns the active plugin, or nil before the first Load.
func (h *Host) Plugin() *Plugin { return h.current().plugin }

// Registry returns the active tool registry.
func (h *Host) Registry() *tools.Registry { return h.current().registry }

// Dispatcher returns the active hook dispatcher.
func (h *Host) Dispatcher() *hooks.Dispatcher { return h.current().dispatcher }

// Commands returns the CLI commands the plugin registered, for a host that
// mounts them under its own root. The openclaw-mem0 binary does not: its
// mem0 command must exist before --config is parsed, so it builds the same
// tree with NewCommand over a lazily loaded client.
func (h *Host) Commands() []*cobra.Command { return h.current().commands }

// Invoke runs a tool on behalf of agentID.
func (h *Host) Invoke(ctx context.Context, tool string, args map[string]interface{}, agentID string) *tools.Result {
	return h.Registry().ExecuteAs(ctx, tool, args, agentID)
}

// Dispatch fires a lifecycle event.
func (h *Host) Dispatch(ctx context.Context, event string, payload interface{}) (*hooks.Outcome, error) {
	return h.Dispatcher().Dispatch(ctx, event, payload)
}

// registrar is the API a single Load hands to Register.
type registrar struct {
	host *Host
	raw  map[string]interface{}
	rt   *runtime
}

func (r *registrar) PluginConfig() map[string]interface{} { return r.raw }
func (r *registrar) Logger() *slog.Logger                  { return r.host.logger }
func (r *registrar) RegisterTool(t tools.Tool)             { r.rt.registry.Register(t) }
func (r *registrar) On(event string, h hooks.Handler)      { r.rt.dispatcher.On(event, h) }
func (r *registrar) RegisterCLI(cmd *cobra.Command) {
	r.rt.commands = append(r.rt.commands, cmd)
}
