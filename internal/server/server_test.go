package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Makepad-fr/verbalist/internal/audio"
	"github.com/Makepad-fr/verbalist/internal/config"
	"github.com/Makepad-fr/verbalist/internal/model"
	"github.com/Makepad-fr/verbalist/internal/pipeline"
	"github.com/Makepad-fr/verbalist/internal/store"
)

type stubAI struct {
	items    []string
	title    string
	err      error
	gotMIME  string
	gotTitle string
}

func (a *stubAI) ExtractItems(_ context.Context, memo audio.Payload) ([]string, error) {
	a.gotMIME = memo.MIMEType
	return a.items, a.err
}

func (a *stubAI) GenerateTitle(_ context.Context, content string) (string, error) {
	a.gotTitle = content
	return a.title, a.err
}

type env struct {
	ai    *stubAI
	store *store.Store
	srv   *httptest.Server
}

func newEnv(t *testing.T, rateLimit int) *env {
	t.Helper()
	e := &env{ai: &stubAI{items: []string{"Eggs (12)", "Milk"}, title: "Groceries"}, store: store.New()}
	cfg := config.Default().Server
	cfg.RateLimit = rateLimit
	p := pipeline.New(pipeline.Deps{Extractor: e.ai, Titler: e.ai, Store: e.store})
	s := New(Options{Config: cfg, Pipeline: p, Extractor: e.ai, Titler: e.ai, Store: e.store})
	e.srv = httptest.NewServer(s.Handler())
	t.Cleanup(e.srv.Close)
	return e
}

func (e *env) do(t *testing.T, method, path, body string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, e.srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, string(b)
}

func memoBody() string {
	p := audio.Payload{MIMEType: "audio/webm;codecs=opus", Data: []byte("fake-webm")}
	return `{"audioDataUri":"` + p.DataURI() + `"}`
}

func TestPing(t *testing.T) {
	e := newEnv(t, 0)
	resp, body := e.do(t, http.MethodGet, "/ping", "")
	if resp.StatusCode != http.StatusOK || body != "pong" {
		t.Fatalf("ping = %d %q", resp.StatusCode, body)
	}
}

func TestVoiceMemo(t *testing.T) {
	e := newEnv(t, 0)
	resp, body := e.do(t, http.MethodPost, "/api/voice-memo", memoBody())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d body = %s", resp.StatusCode, body)
	}
	var out struct{ ListItems []string }
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.ListItems) != 2 || out.ListItems[0] != "Eggs (12)" {
		t.Fatalf("listItems = %q", out.ListItems)
	}
	if e.ai.gotMIME != "audio/webm;codecs=opus" {
		t.Fatalf("MIME = %q", e.ai.gotMIME)
	}

	e.ai.items = nil
	_, body = e.do(t, http.MethodPost, "/api/voice-memo", memoBody())
	if !strings.Contains(body, `"listItems":[]`) {
		t.Fatalf("empty result body = %s", body)
	}
}

func TestVoiceMemoBadInput(t *testing.T) {
	e := newEnv(t, 0)
	tests := []string{
		`not json`,
		`{"audioDataUri":"data:text/plain;base64,aGk="}`,
		`{"audioDataUri":"https://example.com/a.wav"}`,
	}
	for _, body := range tests {
		if resp, _ := e.do(t, http.MethodPost, "/api/voice-memo", body); resp.StatusCode != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, resp.StatusCode)
		}
	}
}

func TestListTitle(t *testing.T) {
	e := newEnv(t, 0)
	resp, body := e.do(t, http.MethodPost, "/api/list-title", `{"listContent":"Eggs (12), Milk"}`)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"title":"Groceries"`) {
		t.Fatalf("status = %d body = %s", resp.StatusCode, body)
	}
	if e.ai.gotTitle != "Eggs (12), Milk" {
		t.Fatalf("content = %q", e.ai.gotTitle)
	}
	if resp, _ := e.do(t, http.MethodPost, "/api/list-title", `{"listContent":"  "}`); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("blank content status = %d", resp.StatusCode)
	}
	e.ai.err = errors.New("quota")
	if resp, _ := e.do(t, http.MethodPost, "/api/list-title", `{"listContent":"Milk"}`); resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("failure status = %d", resp.StatusCode)
	}
}

func TestCreateListOutcomes(t *testing.T) {
	e := newEnv(t, 0)

	resp, body := e.do(t, http.MethodPost, "/api/lists", memoBody())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d body = %s", resp.StatusCode, body)
	}
	var l model.ToDoList
	if err := json.Unmarshal([]byte(body), &l); err != nil {
		t.Fatal(err)
	}
	if l.Title != "Groceries" || len(l.Items) != 2 || l.ID == "" {
		t.Fatalf("list = %+v", l)
	}

	e.ai.items = []string{}
	resp, body = e.do(t, http.MethodPost, "/api/lists", memoBody())
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"status":"empty"`) || !strings.Contains(body, "No items found") {
		t.Fatalf("empty: %d %s", resp.StatusCode, body)
	}

	e.ai.err = errors.New("boom")
	resp, body = e.do(t, http.MethodPost, "/api/lists", memoBody())
	if resp.StatusCode != http.StatusBadGateway || !strings.Contains(body, "An Error Occurred") {
		t.Fatalf("failed: %d %s", resp.StatusCode, body)
	}
	if e.store.Len() != 1 {
		t.Fatalf("store has %d lists, want 1", e.store.Len())
	}
}

func TestListCRUD(t *testing.T) {
	e := newEnv(t, 0)
	l := e.store.Create("Chores", []string{"Dishes"})

	_, body := e.do(t, http.MethodGet, "/api/lists", "")
	var lists []model.ToDoList
	if err := json.Unmarshal([]byte(body), &lists); err != nil || len(lists) != 1 {
		t.Fatalf("lists = %s (%v)", body, err)
	}

	resp, body := e.do(t, http.MethodPost, "/api/lists/"+l.ID+"/items", "")
	if resp.StatusCode != http.StatusCreated || !strings.Contains(body, `"text":"New item"`) {
		t.Fatalf("add item: %d %s", resp.StatusCode, body)
	}

	l.Title = "House chores"
	l.Items[0].Completed = true
	b, _ := json.Marshal(l)
	resp, body = e.do(t, http.MethodPut, "/api/lists/"+l.ID, string(b))
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "House chores") {
		t.Fatalf("update: %d %s", resp.StatusCode, body)
	}
	got, _ := e.store.Get(l.ID)
	if got.Title != "House chores" || !got.Items[0].Completed || len(got.Items) != 1 {
		t.Fatalf("stored = %+v", got)
	}

	if resp, _ := e.do(t, http.MethodPut, "/api/lists/other", string(b)); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("mismatch status = %d", resp.StatusCode)
	}
	if resp, _ := e.do(t, http.MethodPut, "/api/lists/missing", `{"title":"x"}`); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown status = %d", resp.StatusCode)
	}
	if resp, _ := e.do(t, http.MethodPost, "/api/lists/missing/items", ""); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("add to unknown status = %d", resp.StatusCode)
	}

	for range 2 {
		if resp, _ := e.do(t, http.MethodDelete, "/api/lists/"+l.ID, ""); resp.StatusCode != http.StatusNoContent {
			t.Fatalf("delete status = %d", resp.StatusCode)
		}
	}
	if e.store.Len() != 0 {
		t.Fatal("list not deleted")
	}
}

func TestUpdateListKeepsInvariants(t *testing.T) {
	e := newEnv(t, 0)
	l := e.store.Create("Chores", []string{"Dishes", "Laundry"})
	a, b := l.Items[0].ID, l.Items[1].ID

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"blank title", `{"title":"  ","items":[{"id":"` + a + `","text":"Dishes"}]}`, http.StatusBadRequest},
		{"duplicate item ids", `{"title":"Chores","items":[{"id":"` + a + `","text":"A"},{"id":"` + a + `","text":"B"}]}`, http.StatusBadRequest},
		{"item without id", `{"title":"Chores","items":[{"id":"","text":"A"}]}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		resp, body := e.do(t, http.MethodPut, "/api/lists/"+l.ID, tt.body)
		if resp.StatusCode != tt.wantStatus {
			t.Errorf("%s: status = %d, want %d (%s)", tt.name, resp.StatusCode, tt.wantStatus, body)
		}
	}
	if got, _ := e.store.Get(l.ID); got.Title != "Chores" || len(got.Items) != 2 {
		t.Fatalf("rejected update changed the store: %+v", got)
	}

	// no createdAt, padded title, one blank item
	body := `{"title":" House chores ","items":[{"id":"` + a + `","text":"Dishes"},{"id":"` + b + `","text":"   "}]}`
	resp, out := e.do(t, http.MethodPut, "/api/lists/"+l.ID, body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: %d %s", resp.StatusCode, out)
	}
	got, _ := e.store.Get(l.ID)
	if got.Title != "House chores" {
		t.Fatalf("title = %q", got.Title)
	}
	if !got.CreatedAt.Equal(l.CreatedAt) {
		t.Fatalf("CreatedAt = %v, want %v", got.CreatedAt, l.CreatedAt)
	}
	if len(got.Items) != 1 || got.Items[0].ID != a {
		t.Fatalf("items = %+v, want the blank one dropped", got.Items)
	}
}

func TestRateLimit(t *testing.T) {
	e := newEnv(t, 1)
	e.do(t, http.MethodPost, "/api/list-title", `{"listContent":"Milk"}`)
	resp, _ := e.do(t, http.MethodPost, "/api/list-title", `{"listContent":"Milk"}`)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
	if resp, _ := e.do(t, http.MethodGet, "/api/lists", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("store routes should not be limited, got %d", resp.StatusCode)
	}
}

func TestCORS(t *testing.T) {
	e := newEnv(t, 0)
	req, _ := http.NewRequest(http.MethodOptions, e.srv.URL+"/api/lists", nil)
	req.Header.Set("Origin", "http://localhost:9002")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("Allow-Origin = %q", got)
	}
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	cfg := config.Default().Server
	cfg.Address = "127.0.0.1:0"
	s := New(Options{Config: cfg, Store: store.New()})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("ListenAndServe: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
