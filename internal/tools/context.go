package tools

import "context"

type contextKey string

const (
	agentIDKey contextKey = "mem0_tool_agent_id"
	callerKey  contextKey = "mem0_tool_caller"
)

// WithAgentID returns a context carrying the id of the agent running the tool.
func WithAgentID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, agentIDKey, id)
}

// AgentIDFromCtx returns the agent id, or "" if not set.
func AgentIDFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(agentIDKey).(string); ok {
		return v
	}
	return ""
}

// WithCaller records which surface invoked the tool (http, mcp, cli).
func WithCaller(ctx context.Context, caller string) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// CallerFromCtx returns the invoking surface, or "" if not set.
func CallerFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(callerKey).(string); ok {
		return v
	}
	return ""
}
