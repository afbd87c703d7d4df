package feed

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

// FetchError is returned when a feed cannot be retrieved or parsed.
// A failed feed contributes no articles to a cycle.
type FetchError struct {
	URL        string
	StatusCode int
	Status     string
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to fetch feed %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("failed to fetch feed %s: %s", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type Fetcher struct {
	client *resty.Client
	proxy  string
}

// NewFetcher returns a fetcher that routes every request through proxy,
// a relay prefix ending in "?url=" or similar. An empty proxy fetches directly.
func NewFetcher(proxy string) *Fetcher {
	return &Fetcher{
		client: resty.New().
			SetTimeout(30*time.Second).
			SetHeader("User-Agent", "newsdigest/1.0"),
		proxy: proxy,
	}
}

// RequestURL returns the URL actually requested for feedURL.
func (f *Fetcher) RequestURL(feedURL string) string {
	if f.proxy == "" {
		return feedURL
	}
	return f.proxy + url.QueryEscape(feedURL)
}

// Fetch retrieves the raw feed document. Non-2xx responses fail with a
// *FetchError carrying the response status.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) ([]byte, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/rss+xml, application/xml, text/xml").
		Get(f.RequestURL(feedURL))
	if err != nil {
		return nil, &FetchError{URL: feedURL, Err: err}
	}

	if !resp.IsSuccess() {
		return nil, &FetchError{
			URL:        feedURL,
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
		}
	}

	return resp.Body(), nil
}
