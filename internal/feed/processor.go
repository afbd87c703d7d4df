package feed

import (
	"context"
	"sync"
	"time"

	"github.com/bilgisen/newsdigest/internal/logger"
	"github.com/bilgisen/newsdigest/internal/models"
)

type Processor struct {
	fetcher *Fetcher
	parser  *Parser
}

func NewProcessor(fetcher *Fetcher, parser *Parser) *Processor {
	return &Processor{
		fetcher: fetcher,
		parser:  parser,
	}
}

// ProcessFeed fetches, parses and extracts a single feed.
func (p *Processor) ProcessFeed(ctx context.Context, feedURL string) ([]models.RawArticle, error) {
	body, err := p.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	parsed, err := p.parser.Parse(feedURL, body)
	if err != nil {
		return nil, err
	}

	return p.parser.Extract(parsed, feedURL), nil
}

// ProcessFeeds processes every feed concurrently and returns all articles,
// flattened in feed-list order. A feed that fails contributes nothing.
func (p *Processor) ProcessFeeds(ctx context.Context, feedURLs []string) []models.RawArticle {
	log := logger.Get()
	start := time.Now()

	results := make([][]models.RawArticle, len(feedURLs))
	var wg sync.WaitGroup

	for i, feedURL := range feedURLs {
		i, feedURL := i, feedURL
		wg.Add(1)
		go func() {
			defer wg.Done()

			articles, err := p.ProcessFeed(ctx, feedURL)
			if err != nil {
				log.Error().
					Err(err).
					Str("feed_url", feedURL).
					Msg("Error processing feed")
				return
			}

			log.Debug().
				Str("feed_url", feedURL).
				Int("articles", len(articles)).
				Msg("Extracted feed articles")
			results[i] = articles
		}()
	}
	wg.Wait()

	var all []models.RawArticle
	for _, articles := range results {
		all = append(all, articles...)
	}

	log.Info().
		Int("feeds", len(feedURLs)).
		Int("articles", len(all)).
		Dur("duration", time.Since(start)).
		Msg("Fetched feeds")

	return all
}
