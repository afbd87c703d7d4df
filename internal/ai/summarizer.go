package ai

import (
	"context"
	"errors"

	"github.com/bilgisen/newsdigest/internal/logger"
)

// FallbackSummary is shown in place of a summary that could not be generated.
const FallbackSummary = "Couldn't summarize this article due to an API error."

// Summarizer produces a short summary of cleaned article text.
type Summarizer interface {
	Summarize(ctx context.Context, articleText string) (string, error)
}

var errEmptySummary = errors.New("empty summary")

// SummarizeOrFallback never fails: any error from s, or an empty result,
// yields FallbackSummary.
func SummarizeOrFallback(ctx context.Context, s Summarizer, post *PostProcessor, articleID, articleText string) string {
	summary, err := s.Summarize(ctx, articleText)
	if err == nil {
		summary = post.CleanSummary(summary)
		if summary == "" {
			err = errEmptySummary
		}
	}
	if err != nil {
		logger.Get().Error().
			Err(err).
			Str("article_id", articleID).
			Msg("Error summarizing article")
		return FallbackSummary
	}
	return summary
}
