package tools

import (
	"context"
	"testing"
)

func TestToolContextKeys_AgentID(t *testing.T) {
	ctx := context.Background()
	if v := AgentIDFromCtx(ctx); v != "" {
		t.Errorf("expected empty, got %q", v)
	}

	ctx = WithAgentID(ctx, "coder")
	if v := AgentIDFromCtx(ctx); v != "coder" {
		t.Errorf("expected coder, got %q", v)
	}
}

func TestToolContextKeys_Caller(t *testing.T) {
	ctx := context.Background()
	if v := CallerFromCtx(ctx); v != "" {
		t.Errorf("expected empty, got %q", v)
	}

	ctx = WithCaller(ctx, "mcp")
	if v := CallerFromCtx(ctx); v != "mcp" {
		t.Errorf("expected mcp, got %q", v)
	}
}
