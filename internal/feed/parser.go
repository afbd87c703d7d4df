package feed

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/bilgisen/newsdigest/internal/models"
	"github.com/mmcdole/gofeed"
)

const (
	// DefaultMaxItems is how many items per feed are extracted.
	DefaultMaxItems = 10
	// NoTitle stands in for items without a title.
	NoTitle = "No Title"
	// TimeOfDayLayout renders publish times; the date is not shown.
	TimeOfDayLayout = "3:04:05 PM"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>?`)

// CleanHTML removes HTML tags, decodes entities and collapses whitespace.
func CleanHTML(input string) string {
	cleaned := htmlTagRegex.ReplaceAllString(input, " ")
	cleaned = html.UnescapeString(cleaned)
	return strings.Join(strings.Fields(cleaned), " ")
}

// Parser turns raw feed documents into cleaned articles.
type Parser struct {
	libParser *gofeed.Parser
	maxItems  int
	loc       *time.Location
	now       func() time.Time
}

func NewParser(maxItems int, loc *time.Location) *Parser {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	if loc == nil {
		loc = time.Local
	}
	return &Parser{
		libParser: gofeed.NewParser(),
		maxItems:  maxItems,
		loc:       loc,
		now:       time.Now,
	}
}

// Parse parses an RSS (or Atom) document.
func (p *Parser) Parse(feedURL string, body []byte) (*gofeed.Feed, error) {
	parsed, err := p.libParser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, &FetchError{URL: feedURL, Err: fmt.Errorf("parse feed: %w", err)}
	}
	return parsed, nil
}

// Extract returns cleaned articles for the first maxItems items of parsed,
// in document order. Items left without a link or content are dropped.
func (p *Parser) Extract(parsed *gofeed.Feed, feedURL string) []models.RawArticle {
	items := parsed.Items
	if len(items) > p.maxItems {
		items = items[:p.maxItems]
	}

	articles := make([]models.RawArticle, 0, len(items))
	for i, item := range items {
		if item == nil {
			continue
		}
		article, ok := p.extractItem(item, feedURL, i)
		if !ok {
			continue
		}
		articles = append(articles, article)
	}
	return articles
}

func (p *Parser) extractItem(item *gofeed.Item, feedURL string, index int) (models.RawArticle, bool) {
	link := strings.TrimSpace(item.Link)

	body := encodedContent(item)
	if body == "" {
		body = item.Description
	}
	content := CleanHTML(body)

	if link == "" || content == "" {
		return models.RawArticle{}, false
	}

	title := item.Title
	if title == "" {
		title = NoTitle
	}

	published := p.now()
	if item.PublishedParsed != nil {
		published = *item.PublishedParsed
	}

	return models.RawArticle{
		ID:            fmt.Sprintf("%s-%d", feedURL, index),
		Title:         title,
		Link:          link,
		Content:       content,
		PublishedAt:   published,
		PublishedTime: published.In(p.loc).Format(TimeOfDayLayout),
		FeedURL:       feedURL,
	}, true
}

// encodedContent returns the item's "encoded" element in any namespace.
// gofeed maps content:encoded onto Content; other prefixes land in Extensions.
func encodedContent(item *gofeed.Item) string {
	if item.Content != "" {
		return item.Content
	}
	for _, elements := range item.Extensions {
		for _, ext := range elements["encoded"] {
			if ext.Value != "" {
				return ext.Value
			}
		}
	}
	return ""
}
