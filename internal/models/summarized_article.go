package models

import (
	"net/url"
	"strings"
	"time"
)

// SummarizedArticle represents the display record produced by a cycle
type SummarizedArticle struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Summary       string    `json:"summary"`
	Link          string    `json:"link"`
	PublishedAt   time.Time `json:"published_at"`
	PublishedTime string    `json:"published_time"`
	FeedURL       string    `json:"feed_url"`
}

// NewSummarizedArticle copies the identifying fields of raw and attaches summary.
func NewSummarizedArticle(raw RawArticle, summary string) SummarizedArticle {
	return SummarizedArticle{
		ID:            raw.ID,
		Title:         raw.Title,
		Summary:       summary,
		Link:          raw.Link,
		PublishedAt:   raw.PublishedAt,
		PublishedTime: raw.PublishedTime,
		FeedURL:       raw.FeedURL,
	}
}

// Card is what the web page renders for one article.
type Card struct {
	ID      string `json:"id"`
	Source  string `json:"source"`
	Time    string `json:"time"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Link    string `json:"link"`
}

// Card builds the card view of the article.
func (a SummarizedArticle) Card() Card {
	return Card{
		ID:      a.ID,
		Source:  SourceHost(a.FeedURL),
		Time:    a.PublishedTime,
		Title:   a.Title,
		Summary: a.Summary,
		Link:    a.Link,
	}
}

// SourceHost returns the feed's hostname without a leading "www.".
// Unparseable URLs are returned unchanged.
func SourceHost(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil || u.Hostname() == "" {
		return feedURL
	}
	return strings.Replace(u.Hostname(), "www.", "", 1)
}
