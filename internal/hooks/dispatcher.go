package hooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/serenichron/openclaw-memory-mem0/pkg/protocol"
)

// ErrUnknownEvent is returned by Dispatch for an event name the plugin does
// not define.
var ErrUnknownEvent = errors.New("unknown hook event")

// Handler receives a raw JSON payload and returns an optional outcome.
type Handler func(ctx context.Context, payload json.RawMessage) (*Outcome, error)

// BeforeAgentStart adapts a typed before_agent_start handler.
func BeforeAgentStart(fn func(ctx context.Context, ev *BeforeAgentStartEvent) *Outcome) Handler {
	return func(ctx context.Context, payload json.RawMessage) (*Outcome, error) {
		var ev BeforeAgentStartEvent
		if err := decodePayload(payload, &ev); err != nil {
			return nil, err
		}
		return fn(ctx, &ev), nil
	}
}

// AgentEnd adapts a typed agent_end handler.
func AgentEnd(fn func(ctx context.Context, ev *AgentEndEvent)) Handler {
	return func(ctx context.Context, payload json.RawMessage) (*Outcome, error) {
		var ev AgentEndEvent
		if err := decodePayload(payload, &ev); err != nil {
			return nil, err
		}
		fn(ctx, &ev)
		return nil, nil
	}
}

func decodePayload(payload json.RawMessage, out interface{}) error {
	if len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode hook payload: %w", err)
	}
	return nil
}

// Dispatcher routes lifecycle events to handlers in registration order.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *slog.Logger
}

func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// On registers a handler for event.
func (d *Dispatcher) On(event string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[event] = append(d.handlers[event], h)
}

// Handlers returns the number of handlers registered for event.
func (d *Dispatcher) Handlers(event string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.handlers[event])
}

// Dispatch runs every handler for event. payload may be a json.RawMessage,
// []byte, or any value that marshals to the event's JSON shape. Prepend
// contexts from several handlers are joined with a blank line. A failing
// handler does not stop the ones after it; all errors are returned joined.
func (d *Dispatcher) Dispatch(ctx context.Context, event string, payload interface{}) (*Outcome, error) {
	if !protocol.KnownHook(event) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, event)
	}

	raw, err := toRaw(payload)
	if err != nil {
		return nil, err
	}

	d.mu.RLock()
	handlers := append([]Handler(nil), d.handlers[event]...)
	d.mu.RUnlock()

	var (
		contexts []string
		errs     []error
	)
	for _, h := range handlers {
		out, err := h(ctx, raw)
		if err != nil {
			d.logger.Warn("hook handler failed", "event", event, "error", err)
			errs = append(errs, err)
			continue
		}
		if out != nil && out.PrependContext != "" {
			contexts = append(contexts, out.PrependContext)
		}
	}

	return &Outcome{PrependContext: strings.Join(contexts, "\n\n")}, errors.Join(errs...)
}

func toRaw(payload interface{}) (json.RawMessage, error) {
	switch p := payload.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return p, nil
	case []byte:
		return json.RawMessage(p), nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode hook payload: %w", err)
	}
	return data, nil
}
