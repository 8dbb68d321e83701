package tools

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/serenichron/openclaw-memory-mem0/internal/config"
	"github.com/serenichron/openclaw-memory-mem0/internal/mem0"
)

type fakeMemoryClient struct {
	mu sync.Mutex

	searchResult []mem0.Memory
	searchOK     bool
	addResult    mem0.AddResult
	addOK        bool
	deleteOK     bool

	searchLimits []int
	addCalls     [][2]string // content, agentID
	deleted      []string
}

func (f *fakeMemoryClient) Search(ctx context.Context, query string, limit int) ([]mem0.Memory, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchLimits = append(f.searchLimits, limit)
	return f.searchResult, f.searchOK
}

func (f *fakeMemoryClient) Add(ctx context.Context, content, agentID string) (mem0.AddResult, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addCalls = append(f.addCalls, [2]string{content, agentID})
	return f.addResult, f.addOK
}

func (f *fakeMemoryClient) Delete(ctx context.Context, id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.deleteOK
}

func score(v float64) *float64 { return &v }

func TestMemoryRecall_FormatsNumberedList(t *testing.T) {
	fc := &fakeMemoryClient{
		searchOK: true,
		searchResult: []mem0.Memory{
			{ID: "a", Memory: "prefers dark mode", Score: score(0.8734)},
			{ID: "b", Memory: "works in Go", Score: score(0.5)},
			{ID: "c", Memory: "no score here"},
		},
	}
	result := NewMemoryRecallTool(fc).Execute(context.Background(), map[string]interface{}{"query": "ui"})
	if result.IsError {
		t.Fatalf("unexpected error: %s", result.ForLLM)
	}
	want := "Found 3 memories:\n\n1. prefers dark mode (relevance: 0.87)\n2. works in Go (relevance: 0.50)\n3. no score here"
	if result.ForLLM != want {
		t.Errorf("got:\n%s\nwant:\n%s", result.ForLLM, want)
	}
	if fc.searchLimits[0] != 0 {
		t.Errorf("unset limit should pass 0 (client default), got %d", fc.searchLimits[0])
	}
}

func TestMemoryRecall_EmptyAndUnreachable(t *testing.T) {
	for _, fc := range []*fakeMemoryClient{
		{searchOK: true},
		{searchOK: false},
	} {
		result := NewMemoryRecallTool(fc).Execute(context.Background(), map[string]interface{}{"query": "x"})
		if result.IsError || result.ForLLM != "No relevant memories found." {
			t.Errorf("got %+v", result)
		}
	}
}

func TestMemoryRecall_Validation(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]interface{}
		wantErr bool
		limit   int
	}{
		{"missing query", map[string]interface{}{}, true, 0},
		{"blank query", map[string]interface{}{"query": "   "}, true, 0},
		{"limit zero", map[string]interface{}{"query": "q", "limit": float64(0)}, true, 0},
		{"limit too high", map[string]interface{}{"query": "q", "limit": float64(21)}, true, 0},
		{"limit min", map[string]interface{}{"query": "q", "limit": float64(1)}, false, 1},
		{"limit max", map[string]interface{}{"query": "q", "limit": float64(20)}, false, 20},
		{"limit as string", map[string]interface{}{"query": "q", "limit": "7"}, false, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeMemoryClient{searchOK: true}
			result := NewMemoryRecallTool(fc).Execute(context.Background(), tt.args)
			if result.IsError != tt.wantErr {
				t.Fatalf("IsError = %v, want %v (%s)", result.IsError, tt.wantErr, result.ForLLM)
			}
			if tt.wantErr {
				if len(fc.searchLimits) != 0 {
					t.Error("invalid input must not reach the client")
				}
				return
			}
			if fc.searchLimits[0] != tt.limit {
				t.Errorf("limit = %d, want %d", fc.searchLimits[0], tt.limit)
			}
		})
	}
}

func TestMemoryStore(t *testing.T) {
	tests := []struct {
		name string
		fc   *fakeMemoryClient
		want string
	}{
		{
			name: "single result",
			fc: &fakeMemoryClient{addOK: true, addResult: mem0.AddResult{
				Success: true, Results: []mem0.AddedMemory{{ID: "1", Memory: "Uses a monorepo", Event: "ADD"}},
			}},
			want: "Stored in memory: Uses a monorepo",
		},
		{
			name: "several results",
			fc: &fakeMemoryClient{addOK: true, addResult: mem0.AddResult{
				Success: true, Results: []mem0.AddedMemory{{Memory: "A"}, {Memory: "B"}},
			}},
			want: "Stored in memory: A; B",
		},
		{
			name: "nothing extracted",
			fc:   &fakeMemoryClient{addOK: true, addResult: mem0.AddResult{Success: true}},
			want: "Stored in memory: remember this",
		},
		{
			name: "server reported failure",
			fc:   &fakeMemoryClient{addOK: true, addResult: mem0.AddResult{Success: false}},
			want: "Failed to store memory.",
		},
		{
			name: "unreachable",
			fc:   &fakeMemoryClient{addOK: false},
			want: "Failed to store memory.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewMemoryStoreTool(tt.fc).Execute(context.Background(), map[string]interface{}{"content": "remember this"})
			if result.IsError {
				t.Fatalf("unexpected error: %s", result.ForLLM)
			}
			if result.ForLLM != tt.want {
				t.Errorf("got %q, want %q", result.ForLLM, tt.want)
			}
		})
	}
}

func TestMemoryStore_AgentID(t *testing.T) {
	fc := &fakeMemoryClient{addOK: true, addResult: mem0.AddResult{Success: true}}
	tool := NewMemoryStoreTool(fc)

	tool.Execute(context.Background(), map[string]interface{}{"content": "c1", "agentId": "explicit"})
	tool.Execute(WithAgentID(context.Background(), "from-ctx"), map[string]interface{}{"content": "c2"})
	tool.Execute(context.Background(), map[string]interface{}{"content": "c3"})

	// The calling agent's id in ctx never tags the memory.
	want := []string{"explicit", "", ""}
	for i, w := range want {
		if fc.addCalls[i][1] != w {
			t.Errorf("call %d agent = %q, want %q", i, fc.addCalls[i][1], w)
		}
	}

	if r := tool.Execute(context.Background(), map[string]interface{}{"content": ""}); !r.IsError {
		t.Error("empty content should be an error")
	}
}

func TestMemoryForget(t *testing.T) {
	ok := &fakeMemoryClient{deleteOK: true}
	r := NewMemoryForgetTool(ok).Execute(context.Background(), map[string]interface{}{"memoryId": "m-42"})
	if r.ForLLM != "Memory m-42 forgotten." {
		t.Errorf("got %q", r.ForLLM)
	}
	if ok.deleted[0] != "m-42" {
		t.Errorf("deleted %v", ok.deleted)
	}

	failed := &fakeMemoryClient{deleteOK: false}
	r = NewMemoryForgetTool(failed).Execute(context.Background(), map[string]interface{}{"memoryId": "m-42"})
	if r.IsError || r.ForLLM != "Failed to forget memory m-42." {
		t.Errorf("got %+v", r)
	}

	r = NewMemoryForgetTool(ok).Execute(context.Background(), map[string]interface{}{})
	if !r.IsError {
		t.Error("missing memoryId should be an error")
	}
}

// End to end through the registry and a real client against a fake server.
func TestMemoryStore_EndToEnd(t *testing.T) {
	var mu sync.Mutex
	var posts []map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/health":
			w.Write([]byte(`{"status":"ok"}`))
		case r.URL.Path == "/memories" && r.Method == http.MethodPost:
			data, _ := io.ReadAll(r.Body)
			var body map[string]interface{}
			json.Unmarshal(data, &body)
			mu.Lock()
			posts = append(posts, body)
			mu.Unlock()
			w.Write([]byte(`{"success":true,"result":{"results":[{"id":"x1","memory":"The build uses a monorepo","event":"ADD"}]}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.BaseURL = srv.URL
	client := mem0.NewClient(cfg, mem0.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	reg := NewRegistry()
	for _, tool := range MemoryTools(client) {
		reg.Register(tool)
	}

	result := reg.Execute(context.Background(), "memory_store", map[string]interface{}{
		"content": "Remember: the build uses a monorepo",
	})
	if result.ForLLM != "Stored in memory: The build uses a monorepo" {
		t.Errorf("got %q", result.ForLLM)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(posts) != 1 {
		t.Fatalf("expected 1 POST, got %d", len(posts))
	}
	if posts[0]["user_id"] != config.DefaultUserID {
		t.Errorf("user_id = %v", posts[0]["user_id"])
	}
	if posts[0]["content"] != "Remember: the build uses a monorepo" {
		t.Errorf("content = %v", posts[0]["content"])
	}
	if _, ok := posts[0]["metadata"]; ok {
		t.Error("metadata must be absent without an agent id")
	}
}
