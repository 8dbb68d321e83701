package tools

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Registry manages tool registration and execution.
type Registry struct {
	tools       map[string]Tool
	mu          sync.RWMutex
	rateLimiter *ToolRateLimiter // nil = no rate limiting
	scrubbing   bool             // scrub credentials from output (default true)
	logger      *slog.Logger
}

func NewRegistry() *Registry {
	return &Registry{
		tools:     make(map[string]Tool),
		scrubbing: true,
		logger:    slog.Default(),
	}
}

// SetRateLimiter enables per-agent tool rate limiting.
func (r *Registry) SetRateLimiter(rl *ToolRateLimiter) {
	r.rateLimiter = rl
}

// SetScrubbing enables or disables credential scrubbing on tool output.
func (r *Registry) SetScrubbing(enabled bool) {
	r.scrubbing = enabled
}

// SetLogger replaces the logger used for execution records.
func (r *Registry) SetLogger(l *slog.Logger) {
	if l != nil {
		r.logger = l
	}
}

// Register adds a tool, replacing any tool with the same name.
func (r *Registry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name()] = tool
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Unregister removes a tool by name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tools, name)
}

// Execute runs a tool by name with no agent context.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]interface{}) *Result {
	return r.ExecuteAs(ctx, name, args, "")
}

// ExecuteAs runs a tool on behalf of agentID. The id is placed in ctx for the
// tool and used as the rate-limit key; "" skips both.
func (r *Registry) ExecuteAs(ctx context.Context, name string, args map[string]interface{}, agentID string) *Result {
	r.mu.RLock()
	tool, ok := r.tools[name]
	r.mu.RUnlock()

	if !ok {
		return ErrorResult("unknown tool: " + name)
	}
	if args == nil {
		args = map[string]interface{}{}
	}

	if agentID != "" {
		ctx = WithAgentID(ctx, agentID)
		if r.rateLimiter != nil {
			if err := r.rateLimiter.Allow(agentID); err != nil {
				return ErrorResult(err.Error())
			}
		}
	}

	start := time.Now()
	result := tool.Execute(ctx, args)
	duration := time.Since(start)

	if result == nil {
		result = ErrorResult("tool returned no result: " + name)
	}

	if r.scrubbing {
		result.ForLLM = ScrubCredentials(result.ForLLM)
		result.ForUser = ScrubCredentials(result.ForUser)
	}

	r.logger.Debug("tool executed",
		"tool", name,
		"agent_id", agentID,
		"caller", CallerFromCtx(ctx),
		"duration_ms", duration.Milliseconds(),
		"is_error", result.IsError,
	)

	return result
}

// Definitions returns tool definitions sorted by name.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]Definition, 0, len(r.tools))
	for _, tool := range r.tools {
		defs = append(defs, ToDefinition(tool))
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// List returns all registered tool names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}
