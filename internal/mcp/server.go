// Package mcp publishes the plugin's tools over the Model Context Protocol
// so MCP-capable agents can use Mem0 memory without the gateway.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/serenichron/openclaw-memory-mem0/internal/tools"
)

const serverName = "openclaw-memory-mem0"

// agentID keys the tool rate limiter for every MCP session. A stdio server
// has one client, so one shared budget.
const agentID = "mcp"

const instructions = `Long-term memory backed by Mem0.
Use memory_recall before answering questions about earlier work or the user's preferences.
Use memory_store for durable facts worth keeping across conversations.
Use memory_forget with an id returned by memory_recall to delete a memory.`

// Backend supplies the registry. It is read on every call so a config
// reload is picked up without restarting the MCP session.
type Backend interface {
	Registry() *tools.Registry
}

// Server wraps an mcp-go server exposing every registered tool.
type Server struct {
	backend Backend
	mcp     *server.MCPServer
}

// NewServer publishes the tools currently in backend's registry.
func NewServer(backend Backend, version string) (*Server, error) {
	s := &Server{backend: backend}
	s.mcp = server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	for _, def := range backend.Registry().Definitions() {
		schema, err := json.Marshal(def.Parameters)
		if err != nil {
			return nil, fmt.Errorf("tool %s schema: %w", def.Name, err)
		}
		s.mcp.AddTool(mcpgo.NewToolWithRawSchema(def.Name, def.Description, schema), s.handler(def.Name))
	}
	return s, nil
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcp }

// ServeStdio serves MCP over stdin/stdout until EOF or a signal.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) handler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
		ctx = tools.WithCaller(ctx, "mcp")
		result := s.backend.Registry().ExecuteAs(ctx, name, req.GetArguments(), agentID)
		if result.IsError {
			slog.Debug("mcp tool error", "tool", name, "error", result.ForLLM)
			return mcpgo.NewToolResultError(result.ForLLM), nil
		}
		return mcpgo.NewToolResultText(result.ForLLM), nil
	}
}
