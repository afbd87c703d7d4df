package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGeminiClientSummarize(t *testing.T) {
	var gotPath, gotKey, gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")

		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Contents) == 1 && len(req.Contents[0].Parts) == 1 {
			gotPrompt = req.Contents[0].Parts[0].Text
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"A short summary."}]}}]}`))
	}))
	defer srv.Close()

	client := NewGeminiClient("secret", "gemini-2.5-flash", srv.URL, 5*time.Second)
	summary, err := client.Summarize(context.Background(), "The article body.")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	if summary != "A short summary." {
		t.Errorf("Unexpected summary %q", summary)
	}
	if gotPath != "/gemini-2.5-flash:generateContent" {
		t.Errorf("Unexpected path %q", gotPath)
	}
	if gotKey != "secret" {
		t.Errorf("Expected API key in query, got %q", gotKey)
	}
	if !strings.HasPrefix(gotPrompt, "Please summarize the following news article") {
		t.Errorf("Unexpected prompt %q", gotPrompt)
	}
	if !strings.HasSuffix(gotPrompt, "Article:\n\nThe article body.") {
		t.Errorf("Prompt does not end with the article body: %q", gotPrompt)
	}
}

func TestGeminiClientErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"api error object", http.StatusBadRequest, `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`, "API key not valid"},
		{"bare failure status", http.StatusServiceUnavailable, `{}`, "503"},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, "no content in response"},
		{"malformed", http.StatusOK, `not json`, "API request failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewGeminiClient("k", "m", srv.URL, 5*time.Second)
			_, err := client.Summarize(context.Background(), "text")
			if err == nil {
				t.Fatal("Expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
