package hooks

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/serenichron/openclaw-memory-mem0/internal/mem0"
)

// MinCaptureLength is the shortest message text, in characters, worth
// sending for fact extraction.
const MinCaptureLength = 50

// Adder is the part of the Mem0 client capture needs.
type Adder interface {
	Add(ctx context.Context, content, agentID string) (mem0.AddResult, bool)
}

// CaptureReport counts what one agent_end capture did.
type CaptureReport struct {
	Considered int `json:"considered"`
	Stored     int `json:"stored"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

// Capturer stores qualifying conversation messages after an agent run.
type Capturer struct {
	client Adder
	logger *slog.Logger
}

func NewCapturer(client Adder, logger *slog.Logger) *Capturer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Capturer{client: client, logger: logger}
}

// Handle is the agent_end handler.
func (c *Capturer) Handle(ctx context.Context, ev *AgentEndEvent) {
	report := c.Capture(ctx, ev.Messages, ev.AgentID)
	if report.Considered == 0 {
		return
	}
	c.logger.Info("mem0: captured conversation",
		"agent_id", ev.AgentID,
		"considered", report.Considered,
		"stored", report.Stored,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)
}

// Capture stores each user/assistant message that passes ShouldCapture,
// one at a time. A failed store is counted and the loop moves on.
func (c *Capturer) Capture(ctx context.Context, messages []Message, agentID string) CaptureReport {
	var report CaptureReport
	for _, msg := range messages {
		if msg.Role != "user" && msg.Role != "assistant" {
			continue
		}
		report.Considered++

		text := msg.Text()
		if !ShouldCapture(text) {
			report.Skipped++
			continue
		}

		res, ok := c.client.Add(ctx, text, agentID)
		if !ok || !res.Success {
			report.Failed++
			continue
		}
		report.Stored++
	}
	return report
}

// ShouldCapture reports whether text is long enough and is not an injected
// recall block.
func ShouldCapture(text string) bool {
	if utf8.RuneCountInString(text) < MinCaptureLength {
		return false
	}
	return !strings.Contains(text, RecallMarker)
}
