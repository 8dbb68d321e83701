package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/serenichron/openclaw-memory-mem0/internal/hooks"
	"github.com/serenichron/openclaw-memory-mem0/pkg/protocol"
)

// handleHook serves POST /v1/hooks/{event}. The body is the event payload
// as the gateway would pass it to an in-process plugin.
func (s *Server) handleHook(w http.ResponseWriter, r *http.Request) {
	event := chi.URLParam(r, "event")
	if !protocol.KnownHook(event) {
		writeError(w, http.StatusNotFound, protocol.ErrNotFound, "unknown hook event: "+event)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, protocol.ErrInvalidRequest, "read body: "+err.Error())
		return
	}

	out, err := s.backend.Dispatch(r.Context(), event, body)
	if err != nil {
		if errors.Is(err, hooks.ErrUnknownEvent) {
			writeError(w, http.StatusNotFound, protocol.ErrNotFound, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, protocol.ErrInvalidRequest, err.Error())
		return
	}

	resp := protocol.HookResponse{}
	if out != nil {
		resp.PrependContext = out.PrependContext
	}
	slog.Debug("hook dispatched", "event", event, "prepend_len", len(resp.PrependContext))
	writeJSON(w, http.StatusOK, resp)
}
