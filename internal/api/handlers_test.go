package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/bilgisen/newsdigest/internal/cache"
	"github.com/bilgisen/newsdigest/internal/cycle"
	"github.com/bilgisen/newsdigest/internal/middleware"
	"github.com/bilgisen/newsdigest/internal/models"
	"github.com/bilgisen/newsdigest/internal/session"
	"github.com/bilgisen/newsdigest/internal/storage"
	"github.com/gofiber/fiber/v2"
)

const adminKey = "admin-secret"

var testFeeds = []string{"https://www.a.example/rss"}

type stubRunner struct {
	release  chan struct{}
	articles []models.SummarizedArticle
	err      error
}

func (r *stubRunner) Run(context.Context, []string) ([]models.SummarizedArticle, error) {
	<-r.release
	return r.articles, r.err
}

type testServer struct {
	app     *fiber.App
	manager *session.Manager
	cookie  *http.Cookie
}

func newTestServer(t *testing.T, runner session.Runner, archive storage.Archive) *testServer {
	t.Helper()

	manager := session.NewManager(session.Options{
		Store:        cache.NewMemoryStore(),
		Runner:       runner,
		Archive:      archive,
		DefaultFeeds: testFeeds,
		TTL:          time.Hour,
	})

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	SetupRoutes(app, NewHandlers(manager, archive), RouteConfig{
		AdminKey: adminKey,
		Static: http.FS(fstest.MapFS{
			"index.html": {Data: []byte("<h1>News Digest</h1>")},
		}),
	})

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = manager.Wait(ctx)
	})

	return &testServer{app: app, manager: manager}
}

// do sends a request, carrying the session cookie between calls.
func (s *testServer) do(t *testing.T, method, target, body string, headers ...string) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}

	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test(%s %s) error = %v", method, target, err)
	}
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookie {
			s.cookie = c
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var decoded map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), fiber.MIMEApplicationJSON) {
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("decode %s %s: %v", method, target, err)
		}
	}
	return resp, decoded
}

func (s *testServer) wait(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.manager.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
}

func feedsOf(t *testing.T, body map[string]any) []string {
	t.Helper()
	raw, ok := body["feeds"].([]any)
	if !ok {
		t.Fatalf("response has no feeds: %v", body)
	}
	out := make([]string, len(raw))
	for i, v := range raw {
		out[i], _ = v.(string)
	}
	return out
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t, &stubRunner{release: make(chan struct{})}, nil)

	resp, body := s.do(t, http.MethodGet, "/api/v1/health", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body["status"] != "ok" || body["version"] != Version {
		t.Errorf("body = %v", body)
	}
}

func TestIndexPage(t *testing.T) {
	s := newTestServer(t, &stubRunner{release: make(chan struct{})}, nil)

	resp, _ := s.do(t, http.MethodGet, "/", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	resp, _ = s.do(t, http.MethodGet, "/api/v1/unknown", "")
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("unknown route status = %d, want 404", resp.StatusCode)
	}
}

func TestGetSessionStartsIdle(t *testing.T) {
	s := newTestServer(t, &stubRunner{release: make(chan struct{})}, nil)

	resp, body := s.do(t, http.MethodGet, "/api/v1/session", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if s.cookie == nil {
		t.Fatal("no session cookie issued")
	}
	if body["state"] != string(cycle.KindIdle) || body["busy"] != false {
		t.Errorf("body = %v", body)
	}
	if got := feedsOf(t, body); len(got) != 1 || got[0] != testFeeds[0] {
		t.Errorf("feeds = %v, want %v", got, testFeeds)
	}
}

func TestFeedEditing(t *testing.T) {
	s := newTestServer(t, &stubRunner{release: make(chan struct{})}, nil)

	resp, body := s.do(t, http.MethodPost, "/api/v1/feeds", `{"url":"https://b.example/rss"}`)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("add status = %d, body = %v", resp.StatusCode, body)
	}
	if got := feedsOf(t, body); len(got) != 2 || got[1] != "https://b.example/rss" {
		t.Errorf("feeds after add = %v", got)
	}

	tests := []struct {
		name      string
		body      string
		wantError string
	}{
		{"missing url", `{}`, session.ErrEmptyURL.Message},
		{"blank url", `{"url":"   "}`, session.ErrEmptyURL.Message},
		{"invalid url", `{"url":"not a url"}`, session.ErrInvalidURL.Message},
		{"duplicate url", `{"url":"https://b.example/rss"}`, session.ErrDuplicateFeed.Message},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := s.do(t, http.MethodPost, "/api/v1/feeds", tt.body)
			if resp.StatusCode != fiber.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422", resp.StatusCode)
			}
			if body["error"] != tt.wantError {
				t.Errorf("error = %v, want %q", body["error"], tt.wantError)
			}
		})
	}

	resp, body = s.do(t, http.MethodDelete, "/api/v1/feeds?url="+url.QueryEscape(testFeeds[0]), "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("remove status = %d", resp.StatusCode)
	}
	if got := feedsOf(t, body); len(got) != 1 || got[0] != "https://b.example/rss" {
		t.Errorf("feeds after remove = %v", got)
	}

	resp, _ = s.do(t, http.MethodDelete, "/api/v1/feeds", "")
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("remove without url status = %d, want 400", resp.StatusCode)
	}
}

func TestCycleLifecycle(t *testing.T) {
	runner := &stubRunner{
		release: make(chan struct{}),
		articles: []models.SummarizedArticle{{
			ID:            "https://www.a.example/rss-0",
			Title:         "Headline",
			Summary:       "Short summary.",
			Link:          "https://www.a.example/story",
			PublishedTime: "8:15:00 AM",
			FeedURL:       "https://www.a.example/rss",
		}},
	}
	s := newTestServer(t, runner, nil)

	resp, body := s.do(t, http.MethodPost, "/api/v1/cycles", "")
	if resp.StatusCode != fiber.StatusAccepted {
		t.Fatalf("start status = %d, body = %v", resp.StatusCode, body)
	}
	if body["state"] != string(cycle.KindFetching) || body["busy"] != true {
		t.Errorf("start body = %v", body)
	}

	resp, body = s.do(t, http.MethodPost, "/api/v1/cycles", "")
	if resp.StatusCode != fiber.StatusConflict {
		t.Errorf("second start status = %d, want 409", resp.StatusCode)
	}
	if _, ok := body["session"]; !ok {
		t.Errorf("conflict body has no session: %v", body)
	}

	resp, _ = s.do(t, http.MethodPost, "/api/v1/feeds", `{"url":"https://b.example/rss"}`)
	if resp.StatusCode != fiber.StatusConflict {
		t.Errorf("add feed while fetching status = %d, want 409", resp.StatusCode)
	}

	close(runner.release)
	s.wait(t)

	resp, body = s.do(t, http.MethodGet, "/api/v1/session", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("session status = %d", resp.StatusCode)
	}
	if body["state"] != string(cycle.KindSucceeded) {
		t.Fatalf("state = %v, want succeeded", body["state"])
	}
	cards, _ := body["cards"].([]any)
	if len(cards) != 1 {
		t.Fatalf("cards = %v", body["cards"])
	}
	card, _ := cards[0].(map[string]any)
	want := map[string]string{
		"source":  "a.example",
		"time":    "8:15:00 AM",
		"title":   "Headline",
		"summary": "Short summary.",
		"link":    "https://www.a.example/story",
	}
	for k, v := range want {
		if card[k] != v {
			t.Errorf("card[%s] = %v, want %q", k, card[k], v)
		}
	}
}

func TestCycleFailureShowsReason(t *testing.T) {
	runner := &stubRunner{release: make(chan struct{}), err: cycle.ErrNoArticles}
	close(runner.release)
	s := newTestServer(t, runner, nil)

	resp, _ := s.do(t, http.MethodPost, "/api/v1/cycles", "")
	if resp.StatusCode != fiber.StatusAccepted {
		t.Fatalf("start status = %d", resp.StatusCode)
	}
	s.wait(t)

	_, body := s.do(t, http.MethodGet, "/api/v1/session", "")
	if body["state"] != string(cycle.KindFailed) || body["reason"] != cycle.MsgNoArticles {
		t.Errorf("body = %v", body)
	}
}

func TestAdminRoutes(t *testing.T) {
	archive, err := storage.NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewStorage() error = %v", err)
	}
	runner := &stubRunner{
		release:  make(chan struct{}),
		articles: []models.SummarizedArticle{{ID: "x-0", FeedURL: "https://www.a.example/rss"}},
	}
	close(runner.release)
	s := newTestServer(t, runner, archive)

	resp, _ := s.do(t, http.MethodGet, "/api/v1/admin/cycles", "")
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("no key status = %d, want 401", resp.StatusCode)
	}

	s.do(t, http.MethodPost, "/api/v1/cycles", "")
	s.wait(t)

	resp, body := s.do(t, http.MethodGet, "/api/v1/admin/cycles?page=1&page_size=5", "", "X-API-Key", adminKey)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("list status = %d, body = %v", resp.StatusCode, body)
	}
	if body["total"] != float64(1) {
		t.Errorf("total = %v, want 1", body["total"])
	}

	s.do(t, http.MethodPost, "/api/v1/feeds", `{"url":"https://b.example/rss"}`)

	resp, _ = s.do(t, http.MethodDelete, "/api/v1/admin/sessions", "", "X-API-Key", adminKey)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("clear status = %d", resp.StatusCode)
	}

	_, body = s.do(t, http.MethodGet, "/api/v1/session", "")
	if got := feedsOf(t, body); len(got) != 1 {
		t.Errorf("feeds after clear = %v, want defaults", got)
	}
}

func TestListCyclesWithoutArchive(t *testing.T) {
	s := newTestServer(t, &stubRunner{release: make(chan struct{})}, nil)

	resp, _ := s.do(t, http.MethodGet, "/api/v1/admin/cycles", "", "X-API-Key", adminKey)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
