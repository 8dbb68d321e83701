package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/serenichron/openclaw-memory-mem0/internal/mem0"
)

// Bounds on an explicit recall limit, shared with the mem0 search command.
const (
	MinRecallLimit = 1
	MaxRecallLimit = 20
)

// MemoryClient is the part of the Mem0 client the memory tools use.
type MemoryClient interface {
	Search(ctx context.Context, query string, limit int) ([]mem0.Memory, bool)
	Add(ctx context.Context, content, agentID string) (mem0.AddResult, bool)
	Delete(ctx context.Context, id string) bool
}

// decodeArgs maps loosely typed tool arguments onto a typed struct.
// JSON numbers arrive as float64; weak typing lets "5" and 5.0 both fill an int.
func decodeArgs(args map[string]interface{}, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(args)
}

// ---- memory_recall ----

type recallArgs struct {
	Query string `json:"query"`
	Limit *int   `json:"limit"`
}

// MemoryRecallTool searches long-term memory.
type MemoryRecallTool struct {
	client MemoryClient
}

func NewMemoryRecallTool(client MemoryClient) *MemoryRecallTool {
	return &MemoryRecallTool{client: client}
}

func (t *MemoryRecallTool) Name() string { return "memory_recall" }

func (t *MemoryRecallTool) Description() string {
	return "Search long-term memory for facts, preferences and decisions from earlier conversations. Use before answering questions about prior work or the user's preferences."
}

func (t *MemoryRecallTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Natural language search query",
			},
			"limit": map[string]interface{}{
				"type":        "number",
				"description": "Maximum number of memories to return (1-20, default: configured recall limit)",
				"minimum":     MinRecallLimit,
				"maximum":     MaxRecallLimit,
			},
		},
		"required": []string{"query"},
	}
}

func (t *MemoryRecallTool) Execute(ctx context.Context, args map[string]interface{}) *Result {
	var in recallArgs
	if err := decodeArgs(args, &in); err != nil {
		return ErrorResult(fmt.Sprintf("invalid arguments: %v", err))
	}
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return ErrorResult("query parameter is required")
	}
	limit := 0
	if in.Limit != nil {
		limit = *in.Limit
		if limit < MinRecallLimit || limit > MaxRecallLimit {
			return ErrorResult(fmt.Sprintf("limit must be between %d and %d", MinRecallLimit, MaxRecallLimit))
		}
	}

	// An unreachable server reads as "nothing found"; the client already warned.
	memories, _ := t.client.Search(ctx, query, limit)
	return NewResult(FormatMemoryList(memories))
}

// FormatMemoryList renders search results as a numbered list.
func FormatMemoryList(memories []mem0.Memory) string {
	if len(memories) == 0 {
		return "No relevant memories found."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d memories:\n", len(memories))
	for i, m := range memories {
		fmt.Fprintf(&sb, "\n%d. %s", i+1, m.Memory)
		if m.HasScore() {
			fmt.Fprintf(&sb, " (relevance: %.2f)", m.ScoreValue())
		}
	}
	return sb.String()
}

// ---- memory_store ----

type storeArgs struct {
	Content string `json:"content"`
	AgentID string `json:"agentId"`
}

// MemoryStoreTool saves text to long-term memory. The server extracts facts
// from it, so one call may yield several stored memories or none.
type MemoryStoreTool struct {
	client MemoryClient
}

func NewMemoryStoreTool(client MemoryClient) *MemoryStoreTool {
	return &MemoryStoreTool{client: client}
}

func (t *MemoryStoreTool) Name() string { return "memory_store" }

func (t *MemoryStoreTool) Description() string {
	return "Save important information to long-term memory: user preferences, decisions, facts worth remembering across conversations."
}

func (t *MemoryStoreTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"content": map[string]interface{}{
				"type":        "string",
				"description": "The information to remember",
			},
			"agentId": map[string]interface{}{
				"type":        "string",
				"description": "Optional agent identifier to tag the memory with",
			},
		},
		"required": []string{"content"},
	}
}

func (t *MemoryStoreTool) Execute(ctx context.Context, args map[string]interface{}) *Result {
	var in storeArgs
	if err := decodeArgs(args, &in); err != nil {
		return ErrorResult(fmt.Sprintf("invalid arguments: %v", err))
	}
	if strings.TrimSpace(in.Content) == "" {
		return ErrorResult("content parameter is required")
	}
	// Only an explicit agentId tags the memory; the calling agent's id in ctx
	// is for rate limiting and logs.
	res, ok := t.client.Add(ctx, in.Content, in.AgentID)
	if !ok || !res.Success {
		return UserResult("Failed to store memory.")
	}
	return UserResult("Stored in memory: " + storedText(res, in.Content))
}

func storedText(res mem0.AddResult, fallback string) string {
	texts := make([]string, 0, len(res.Results))
	for _, r := range res.Results {
		if r.Memory != "" {
			texts = append(texts, r.Memory)
		}
	}
	if len(texts) == 0 {
		return fallback
	}
	return strings.Join(texts, "; ")
}

// ---- memory_forget ----

type forgetArgs struct {
	MemoryID string `json:"memoryId"`
}

// MemoryForgetTool deletes one memory by id.
type MemoryForgetTool struct {
	client MemoryClient
}

func NewMemoryForgetTool(client MemoryClient) *MemoryForgetTool {
	return &MemoryForgetTool{client: client}
}

func (t *MemoryForgetTool) Name() string { return "memory_forget" }

func (t *MemoryForgetTool) Description() string {
	return "Delete a memory by its id. Use memory_recall first to find the id."
}

func (t *MemoryForgetTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"memoryId": map[string]interface{}{
				"type":        "string",
				"description": "Id of the memory to delete",
			},
		},
		"required": []string{"memoryId"},
	}
}

func (t *MemoryForgetTool) Execute(ctx context.Context, args map[string]interface{}) *Result {
	var in forgetArgs
	if err := decodeArgs(args, &in); err != nil {
		return ErrorResult(fmt.Sprintf("invalid arguments: %v", err))
	}
	id := strings.TrimSpace(in.MemoryID)
	if id == "" {
		return ErrorResult("memoryId parameter is required")
	}
	if !t.client.Delete(ctx, id) {
		return UserResult(fmt.Sprintf("Failed to forget memory %s.", id))
	}
	return UserResult(fmt.Sprintf("Memory %s forgotten.", id))
}

// MemoryTools returns the three memory tools bound to client.
func MemoryTools(client MemoryClient) []Tool {
	return []Tool{
		NewMemoryRecallTool(client),
		NewMemoryStoreTool(client),
		NewMemoryForgetTool(client),
	}
}
