package models

import "time"

// RawArticle is one extracted feed item, cleaned and ready to summarize.
// ID is "<feed url>-<position>" and is only stable within one cycle.
type RawArticle struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Link          string    `json:"link"`
	Content       string    `json:"content"`
	PublishedAt   time.Time `json:"published_at"`
	PublishedTime string    `json:"published_time"`
	FeedURL       string    `json:"feed_url"`
}
