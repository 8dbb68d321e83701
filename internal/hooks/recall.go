package hooks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/serenichron/openclaw-memory-mem0/internal/mem0"
)

// RecallMarker opens every injected context block. Capture skips any
// message containing it so recalled memories are never stored again.
const RecallMarker = "<relevant-memories>"

const (
	recallClose  = "</relevant-memories>"
	recallHeader = "The following memories may be relevant to this conversation:"
)

// Searcher is the part of the Mem0 client recall needs.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]mem0.Memory, bool)
}

// Recaller injects relevant memories before an agent run.
type Recaller struct {
	client    Searcher
	limit     int
	threshold float64
	logger    *slog.Logger
}

func NewRecaller(client Searcher, limit int, threshold float64, logger *slog.Logger) *Recaller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recaller{client: client, limit: limit, threshold: threshold, logger: logger}
}

// Handle is the before_agent_start handler. It returns nil when nothing
// qualifies.
func (r *Recaller) Handle(ctx context.Context, ev *BeforeAgentStartEvent) *Outcome {
	block := r.Recall(ctx, ev.Prompt)
	if block == "" {
		return nil
	}
	return &Outcome{PrependContext: block}
}

// Recall searches with prompt and returns the context block for results
// at or above the threshold, or "" when the prompt is blank or nothing
// qualifies.
func (r *Recaller) Recall(ctx context.Context, prompt string) string {
	if strings.TrimSpace(prompt) == "" {
		return ""
	}
	memories, ok := r.client.Search(ctx, prompt, r.limit)
	if !ok {
		return ""
	}
	relevant := FilterByThreshold(memories, r.threshold)
	if len(relevant) == 0 {
		r.logger.Debug("mem0: no memories above threshold", "results", len(memories), "threshold", r.threshold)
		return ""
	}
	r.logger.Info("mem0: injecting memories", "count", len(relevant))
	return FormatContext(relevant)
}

// FilterByThreshold keeps memories whose score is at least threshold, in
// input order. Memories without a score never qualify.
func FilterByThreshold(memories []mem0.Memory, threshold float64) []mem0.Memory {
	var out []mem0.Memory
	for _, m := range memories {
		if m.HasScore() && m.ScoreValue() >= threshold {
			out = append(out, m)
		}
	}
	return out
}

// FormatContext renders the block prepended to the agent's context.
func FormatContext(memories []mem0.Memory) string {
	var sb strings.Builder
	sb.WriteString(RecallMarker)
	sb.WriteString("\n")
	sb.WriteString(recallHeader)
	sb.WriteString("\n")
	for _, m := range memories {
		fmt.Fprintf(&sb, "- %s (%.0f%%)\n", m.Memory, m.ScoreValue()*100)
	}
	sb.WriteString(recallClose)
	return sb.String()
}
