package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/serenichron/openclaw-memory-mem0/internal/config"
	"github.com/serenichron/openclaw-memory-mem0/internal/plugin"
	"github.com/serenichron/openclaw-memory-mem0/pkg/protocol"
)

func newMem0Stub(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("/memories/search", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"memories":[{"id":"m1","memory":"User prefers TypeScript","score":0.87},{"id":"m2","memory":"noise","score":0.1}]}`))
	})
	mux.HandleFunc("/memories", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"result":{"results":[{"id":"n1","memory":"Build uses a monorepo","event":"ADD"}]}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T, scfg config.ServerConfig) *httptest.Server {
	t.Helper()
	stub := newMem0Stub(t)
	host := plugin.NewHost(slog.New(slog.NewTextHandler(io.Discard, nil)))
	if _, err := host.Load(map[string]interface{}{"baseUrl": stub.URL}); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(NewServer(host, scfg).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, token string, body interface{}) *http.Response {
	t.Helper()
	data, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, config.ServerConfig{Token: "secret"})
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	var body protocol.HealthResponse
	decode(t, resp, &body)
	if resp.StatusCode != http.StatusOK || body.Status != "ok" {
		t.Errorf("status %d body %+v", resp.StatusCode, body)
	}
}

func TestHealthz_UnavailableBeforeLoad(t *testing.T) {
	host := plugin.NewHost(slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(NewServer(host, config.ServerConfig{}).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	var body protocol.ErrorResponse
	decode(t, resp, &body)
	if resp.StatusCode != http.StatusServiceUnavailable || body.Error.Code != protocol.ErrUnavailable {
		t.Errorf("status %d body %+v", resp.StatusCode, body)
	}
}

func TestRecoverer_PanicIsInternalError(t *testing.T) {
	h := recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/tools", nil))

	var body protocol.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Code != http.StatusInternalServerError || body.Error.Code != protocol.ErrInternal {
		t.Errorf("status %d body %+v", rec.Code, body)
	}
}

func TestAuth(t *testing.T) {
	srv := newTestServer(t, config.ServerConfig{Token: "secret"})

	resp := post(t, srv.URL+"/v1/tools/invoke", "", protocol.ToolInvokeRequest{Tool: "memory_recall"})
	var errBody protocol.ErrorResponse
	decode(t, resp, &errBody)
	if resp.StatusCode != http.StatusUnauthorized || errBody.Error.Code != protocol.ErrUnauthorized {
		t.Errorf("no token: %d %+v", resp.StatusCode, errBody)
	}

	resp = post(t, srv.URL+"/v1/tools/invoke", "wrong", protocol.ToolInvokeRequest{Tool: "memory_recall"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong token: %d", resp.StatusCode)
	}

	resp = post(t, srv.URL+"/v1/tools/invoke", "secret", protocol.ToolInvokeRequest{
		Tool: "memory_recall", Args: map[string]interface{}{"query": "lang"},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("right token: %d", resp.StatusCode)
	}
}

func TestToolsInvoke(t *testing.T) {
	srv := newTestServer(t, config.ServerConfig{})

	resp := post(t, srv.URL+"/v1/tools/invoke", "", protocol.ToolInvokeRequest{
		Tool: "memory_store", Args: map[string]interface{}{"content": "Remember: the build uses a monorepo"},
	})
	var body protocol.ToolInvokeResponse
	decode(t, resp, &body)
	if resp.StatusCode != http.StatusOK || body.Result == nil {
		t.Fatalf("status %d body %+v", resp.StatusCode, body)
	}
	if body.Result.Output != "Stored in memory: Build uses a monorepo" {
		t.Errorf("output = %q", body.Result.Output)
	}
}

func TestToolsInvoke_AgentHeaderDoesNotTagMemory(t *testing.T) {
	var posted []map[string]interface{}
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/memories" && r.Method == http.MethodPost {
			var body map[string]interface{}
			json.NewDecoder(r.Body).Decode(&body)
			posted = append(posted, body)
			w.Write([]byte(`{"success":true,"result":{"results":[]}}`))
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer stub.Close()

	host := plugin.NewHost(slog.New(slog.NewTextHandler(io.Discard, nil)))
	if _, err := host.Load(map[string]interface{}{"baseUrl": stub.URL}); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(NewServer(host, config.ServerConfig{}).Handler())
	defer srv.Close()

	send := func(args map[string]interface{}) {
		data, _ := json.Marshal(protocol.ToolInvokeRequest{Tool: "memory_store", Args: args})
		req, _ := http.NewRequest(http.MethodPost, srv.URL+"/v1/tools/invoke", bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-OpenClaw-Agent-Id", "main")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d", resp.StatusCode)
		}
	}

	send(map[string]interface{}{"content": "Remember: the build uses a monorepo"})
	send(map[string]interface{}{"content": "tagged", "agentId": "worker"})

	if len(posted) != 2 {
		t.Fatalf("posts = %d, want 2", len(posted))
	}
	if _, ok := posted[0]["metadata"]; ok {
		t.Errorf("metadata sent without an agentId argument: %v", posted[0])
	}
	meta, _ := posted[1]["metadata"].(map[string]interface{})
	if meta["agent_id"] != "worker" {
		t.Errorf("metadata = %v, want agent_id worker", posted[1]["metadata"])
	}
}

func TestToolsInvoke_Errors(t *testing.T) {
	srv := newTestServer(t, config.ServerConfig{})

	tests := []struct {
		name   string
		req    protocol.ToolInvokeRequest
		status int
		code   string
	}{
		{"missing tool", protocol.ToolInvokeRequest{}, http.StatusBadRequest, protocol.ErrInvalidRequest},
		{"unknown tool", protocol.ToolInvokeRequest{Tool: "web_search"}, http.StatusNotFound, protocol.ErrNotFound},
		{"tool validation", protocol.ToolInvokeRequest{Tool: "memory_recall", Args: map[string]interface{}{"query": "q", "limit": 50}}, http.StatusBadRequest, protocol.ErrToolFailed},
		{"bad agent id", protocol.ToolInvokeRequest{Tool: "memory_recall", AgentID: "../etc"}, http.StatusBadRequest, protocol.ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv.URL+"/v1/tools/invoke", "", tt.req)
			var body protocol.ErrorResponse
			decode(t, resp, &body)
			if resp.StatusCode != tt.status || body.Error.Code != tt.code {
				t.Errorf("got %d %+v, want %d %s", resp.StatusCode, body, tt.status, tt.code)
			}
		})
	}
}

func TestToolsInvoke_DryRun(t *testing.T) {
	srv := newTestServer(t, config.ServerConfig{})
	resp := post(t, srv.URL+"/v1/tools/invoke", "", protocol.ToolInvokeRequest{Tool: "memory_forget", DryRun: true})
	var body protocol.ToolInvokeResponse
	decode(t, resp, &body)
	if !body.DryRun || body.Tool != "memory_forget" || body.Parameters["type"] != "object" || body.Result != nil {
		t.Errorf("body %+v", body)
	}
}

func TestToolsList(t *testing.T) {
	srv := newTestServer(t, config.ServerConfig{})
	resp, err := http.Get(srv.URL + "/v1/tools")
	if err != nil {
		t.Fatal(err)
	}
	var body protocol.ToolListResponse
	decode(t, resp, &body)
	if len(body.Tools) != 3 || body.Tools[0].Name != "memory_forget" {
		t.Errorf("tools %+v", body.Tools)
	}
}

func TestHooks(t *testing.T) {
	srv := newTestServer(t, config.ServerConfig{})

	resp := post(t, srv.URL+"/v1/hooks/"+protocol.HookBeforeAgentStart, "", map[string]string{"prompt": "which language?"})
	var out protocol.HookResponse
	decode(t, resp, &out)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if !strings.Contains(out.PrependContext, "- User prefers TypeScript (87%)") || strings.Contains(out.PrependContext, "noise") {
		t.Errorf("prependContext = %q", out.PrependContext)
	}

	resp = post(t, srv.URL+"/v1/hooks/"+protocol.HookAgentEnd, "", map[string]interface{}{
		"agentId":  "main",
		"messages": []map[string]interface{}{{"role": "user", "content": strings.Repeat("a", 60)}},
	})
	out = protocol.HookResponse{}
	decode(t, resp, &out)
	if resp.StatusCode != http.StatusOK || out.PrependContext != "" {
		t.Errorf("agent_end: %d %+v", resp.StatusCode, out)
	}

	resp = post(t, srv.URL+"/v1/hooks/on_message", "", map[string]string{})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown hook: %d", resp.StatusCode)
	}
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, config.ServerConfig{RateLimitRPM: 60, RateLimitBurst: 2})
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := http.Get(srv.URL + "/v1/tools")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v", codes)
	}

	// healthz is never limited
	resp, _ := http.Get(srv.URL + "/healthz")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz: %d", resp.StatusCode)
	}
}

func TestServe_ShutdownOnCancel(t *testing.T) {
	host := plugin.NewHost(slog.New(slog.NewTextHandler(io.Discard, nil)))
	s := NewServer(host, config.ServerConfig{Listen: "127.0.0.1:0"})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()
	cancel()
	if err := <-done; err != nil {
		t.Errorf("serve: %v", err)
	}
}

func TestTokenMatch(t *testing.T) {
	if !tokenMatch("", "") || !tokenMatch("x", "") {
		t.Error("empty expected token disables auth")
	}
	if tokenMatch("", "x") || tokenMatch("y", "x") || !tokenMatch("x", "x") {
		t.Error("token comparison wrong")
	}
}

func TestIsValidAgentID(t *testing.T) {
	for id, want := range map[string]bool{
		"main": true, "agent-7": true, "team:planner.v2": true,
		"": false, "-x": false, "a b": false, "../etc": false,
	} {
		if got := isValidAgentID(id); got != want {
			t.Errorf("isValidAgentID(%q) = %v, want %v", id, got, want)
		}
	}
}
