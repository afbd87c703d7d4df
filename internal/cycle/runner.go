package cycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bilgisen/newsdigest/internal/ai"
	"github.com/bilgisen/newsdigest/internal/logger"
	"github.com/bilgisen/newsdigest/internal/models"
)

var (
	ErrNoArticles = errors.New("no articles found in the provided feeds")
	ErrUnexpected = errors.New("unexpected error while summarizing articles")
)

// Banner texts shown for a failed cycle.
const (
	MsgNoArticles = "No articles found in the provided feeds."
	MsgUnexpected = "An unexpected error occurred while summarizing articles."
)

// FeedProcessor fetches and extracts every feed, absorbing per-feed failures.
type FeedProcessor interface {
	ProcessFeeds(ctx context.Context, feedURLs []string) []models.RawArticle
}

// Runner executes one fetch-extract-summarize pass.
type Runner struct {
	feeds      FeedProcessor
	summarizer ai.Summarizer
	post       *ai.PostProcessor
}

func NewRunner(feeds FeedProcessor, summarizer ai.Summarizer) *Runner {
	return &Runner{
		feeds:      feeds,
		summarizer: summarizer,
		post:       ai.NewPostProcessor(),
	}
}

// Run fetches every feed, then summarizes every extracted article. Both
// phases fan out fully and are joined before moving on. The result keeps
// feed-list order, then document order within a feed.
func (r *Runner) Run(ctx context.Context, feedURLs []string) ([]models.SummarizedArticle, error) {
	log := logger.Get()
	start := time.Now()

	raw := r.feeds.ProcessFeeds(ctx, feedURLs)
	if len(raw) == 0 {
		log.Warn().
			Int("feeds", len(feedURLs)).
			Msg("No articles found in the provided feeds")
		return nil, ErrNoArticles
	}

	articles, err := r.summarizeAll(ctx, raw)
	if err != nil {
		log.Error().
			Err(err).
			Int("articles", len(raw)).
			Msg("Summarization phase failed")
		return nil, err
	}

	log.Info().
		Int("feeds", len(feedURLs)).
		Int("articles", len(articles)).
		Dur("duration", time.Since(start)).
		Msg("Finished cycle")

	return articles, nil
}

func (r *Runner) summarizeAll(ctx context.Context, raw []models.RawArticle) ([]models.SummarizedArticle, error) {
	results := make([]models.SummarizedArticle, len(raw))
	panics := make([]any, len(raw))
	var wg sync.WaitGroup

	for i, article := range raw {
		i, article := i, article
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					panics[i] = rec
				}
			}()

			summary := ai.SummarizeOrFallback(ctx, r.summarizer, r.post, article.ID, article.Content)
			results[i] = models.NewSummarizedArticle(article, summary)
		}()
	}
	wg.Wait()

	for i, rec := range panics {
		if rec != nil {
			return nil, fmt.Errorf("%w: article %s: %v", ErrUnexpected, raw[i].ID, rec)
		}
	}
	return results, nil
}
