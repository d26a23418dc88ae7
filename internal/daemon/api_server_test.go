package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mangatl/internal/api"
	"mangatl/internal/commands"
	"mangatl/internal/config"
	"mangatl/internal/events"
	"mangatl/internal/services"
	"mangatl/internal/services/remote"
	"mangatl/internal/testsupport"
)

func newTestDaemon(t *testing.T, cfg *config.Config) (*Daemon, *events.Hub) {
	t.Helper()
	registry := commands.NewRegistry(nil)
	registry.Register("echo", func(_ context.Context, args json.RawMessage) (any, error) {
		var v any
		if len(args) > 0 {
			if err := json.Unmarshal(args, &v); err != nil {
				return nil, err
			}
		}
		return v, nil
	})
	registry.Register("missing", func(context.Context, json.RawMessage) (any, error) {
		return nil, services.Wrap(services.ErrNotFound, "test", "lookup", "nothing here", nil)
	})
	registry.Register("upstream", func(context.Context, json.RawMessage) (any, error) {
		return nil, &remote.APIError{StatusCode: 500, Status: "500 Internal Server Error", Body: "boom"}
	})
	hub := events.NewHub(16)
	d, err := New(cfg, registry, hub, nil, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d, hub
}

func serve(t *testing.T, engine http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeCommand(t *testing.T, w *httptest.ResponseRecorder) api.CommandResponse {
	t.Helper()
	var resp api.CommandResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestAPIInvokeReturnsData(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, _ := newTestDaemon(t, cfg)
	srv := newAPIServer(cfg, d, nil)

	w := serve(t, srv.engine, http.MethodPost, "/api/commands/echo", `{"a":1}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeCommand(t, w)
	if resp.Error != "" || resp.Data.(map[string]any)["a"] != float64(1) {
		t.Fatalf("unexpected response %+v", resp)
	}
	if w.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected a generated request id header")
	}

	w = serve(t, srv.engine, http.MethodPost, "/api/commands/echo", "", nil)
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != `{"data":null}` {
		t.Fatalf("unexpected empty-body response %d %s", w.Code, w.Body.String())
	}
}

func TestAPIInvokeMapsErrors(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, _ := newTestDaemon(t, cfg)
	srv := newAPIServer(cfg, d, nil)

	cases := []struct {
		name   string
		status int
		text   string
	}{
		{"missing", http.StatusNotFound, "nothing here"},
		{"upstream", http.StatusBadGateway, "API Error: Status 500 Internal Server Error, Body: boom"},
		{"nonexistent", http.StatusBadRequest, "unknown command"},
	}
	for _, tc := range cases {
		w := serve(t, srv.engine, http.MethodPost, "/api/commands/"+tc.name, "{}", nil)
		if w.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.status, w.Code)
		}
		if resp := decodeCommand(t, w); !strings.Contains(resp.Error, tc.text) {
			t.Fatalf("%s: unexpected error %q", tc.name, resp.Error)
		}
	}
}

func TestAPIInvokeRejectsInvalidJSON(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, _ := newTestDaemon(t, cfg)
	srv := newAPIServer(cfg, d, nil)

	w := serve(t, srv.engine, http.MethodPost, "/api/commands/echo", `{"a":`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestAPIRequiresBearerToken(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithAPIToken("secret"))
	d, _ := newTestDaemon(t, cfg)
	srv := newAPIServer(cfg, d, nil)

	if w := serve(t, srv.engine, http.MethodGet, "/api/commands", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
	if w := serve(t, srv.engine, http.MethodGet, "/api/commands", "", map[string]string{"Authorization": "Bearer wrong"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", w.Code)
	}
	w := serve(t, srv.engine, http.MethodGet, "/api/commands", "", map[string]string{"Authorization": "Bearer secret"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", w.Code)
	}
	var list api.CommandList
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if strings.Join(list.Commands, ",") != "echo,missing,upstream" {
		t.Fatalf("unexpected commands %v", list.Commands)
	}
}

func TestAPICORSPreflight(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithAPIToken("secret"))
	d, _ := newTestDaemon(t, cfg)
	srv := newAPIServer(cfg, d, nil)

	w := serve(t, srv.engine, http.MethodOptions, "/api/commands/echo", "", map[string]string{
		"Origin":                        "tauri://localhost",
		"Access-Control-Request-Method": http.MethodPost,
	})
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "tauri://localhost" {
		t.Fatalf("unexpected allow-origin %q", got)
	}
}

func TestAPIStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, hub := newTestDaemon(t, cfg)
	hub.Publish("llm-stream", map[string]any{"id": "x", "done": true})
	srv := newAPIServer(cfg, d, nil)

	w := serve(t, srv.engine, http.MethodGet, "/api/status", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var status api.DaemonStatus
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatal(err)
	}
	if status.Commands != 3 || status.LastEventSeq != 1 || status.LockFilePath != cfg.LockPath() {
		t.Fatalf("unexpected status %+v", status)
	}
	if len(status.Dependencies) == 0 {
		t.Fatal("expected dependency report")
	}
}

func TestAPIRecentEvents(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, hub := newTestDaemon(t, cfg)
	hub.Publish("llm-stream", map[string]any{"id": "a", "delta": "x", "done": false})
	hub.Publish("backend-log", map[string]any{"msg": "warn"})
	hub.Publish("llm-stream", map[string]any{"id": "a", "done": true})
	srv := newAPIServer(cfg, d, nil)

	w := serve(t, srv.engine, http.MethodGet, "/api/events/recent?since=1&name=llm-stream", "", nil)
	var resp api.EventsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Events) != 1 || resp.Events[0].Sequence != 3 || resp.Next != 3 {
		t.Fatalf("unexpected events %+v", resp)
	}
}

func TestAPIEventStream(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, hub := newTestDaemon(t, cfg)
	hub.Publish("backend-log", map[string]any{"msg": "skip me"})
	hub.Publish("llm-stream", map[string]any{"id": "s", "delta": "Hi", "done": false})
	srv := newAPIServer(cfg, d, nil)

	server := httptest.NewServer(srv.engine)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/events?name=llm-stream", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET events: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("unexpected content type %q", ct)
	}

	go func() {
		time.Sleep(50 * time.Millisecond)
		hub.Publish("llm-stream", map[string]any{"id": "s", "done": true})
	}()

	var frames []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() && len(frames) < 2 {
		line := scanner.Text()
		if strings.HasPrefix(line, "data: ") {
			frames = append(frames, strings.TrimPrefix(line, "data: "))
		}
		if strings.HasPrefix(line, "event: ") && line != "event: llm-stream" {
			t.Fatalf("unexpected event line %q", line)
		}
	}
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %v", frames)
	}
	if frames[0] != `{"delta":"Hi","done":false,"id":"s"}` || frames[1] != `{"done":true,"id":"s"}` {
		t.Fatalf("unexpected frames %v", frames)
	}
}
