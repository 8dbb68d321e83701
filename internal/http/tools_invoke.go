package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/serenichron/openclaw-memory-mem0/internal/tools"
	"github.com/serenichron/openclaw-memory-mem0/pkg/protocol"
)

// handleToolsInvoke serves POST /v1/tools/invoke.
func (s *Server) handleToolsInvoke(w http.ResponseWriter, r *http.Request) {
	var req protocol.ToolInvokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, protocol.ErrInvalidRequest, fmt.Sprintf("invalid JSON body: %v", err))
		return
	}
	if req.Tool == "" {
		writeError(w, http.StatusBadRequest, protocol.ErrInvalidRequest, "tool is required")
		return
	}

	agentID := req.AgentID
	if agentID == "" {
		agentID = r.Header.Get("X-OpenClaw-Agent-Id")
	}
	if agentID != "" && !isValidAgentID(agentID) {
		writeError(w, http.StatusBadRequest, protocol.ErrInvalidRequest, "invalid agentId")
		return
	}

	registry := s.backend.Registry()
	tool, ok := registry.Get(req.Tool)
	if !ok {
		writeError(w, http.StatusNotFound, protocol.ErrNotFound, fmt.Sprintf("tool %q not found", req.Tool))
		return
	}

	slog.Info("tools invoke request", "tool", req.Tool, "agent_id", agentID, "dry_run", req.DryRun)

	if req.DryRun {
		writeJSON(w, http.StatusOK, protocol.ToolInvokeResponse{
			Tool:       tool.Name(),
			DryRun:     true,
			Parameters: tool.Parameters(),
		})
		return
	}

	ctx := tools.WithCaller(r.Context(), "http")
	result := registry.ExecuteAs(ctx, req.Tool, req.Args, agentID)
	if result.IsError {
		writeError(w, http.StatusBadRequest, protocol.ErrToolFailed, result.ForLLM)
		return
	}

	writeJSON(w, http.StatusOK, protocol.ToolInvokeResponse{
		Result: &protocol.ToolOutput{
			Output:  result.ForLLM,
			ForUser: result.ForUser,
		},
	})
}

// handleToolsList serves GET /v1/tools.
func (s *Server) handleToolsList(w http.ResponseWriter, r *http.Request) {
	defs := s.backend.Registry().Definitions()
	resp := protocol.ToolListResponse{Tools: make([]protocol.ToolDefinition, 0, len(defs))}
	for _, d := range defs {
		resp.Tools = append(resp.Tools, protocol.ToolDefinition{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  d.Parameters,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, protocol.NewErrorResponse(code, message))
}
