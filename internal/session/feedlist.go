package session

import (
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationError is shown inline next to the feed input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	ErrEmptyURL      = &ValidationError{Message: "URL cannot be empty."}
	ErrInvalidURL    = &ValidationError{Message: "Please enter a valid URL."}
	ErrDuplicateFeed = &ValidationError{Message: "This feed URL has already been added."}
)

// AddFeed returns feeds with candidate appended. On error feeds is
// returned unchanged.
func AddFeed(feeds []string, candidate string) ([]string, error) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return feeds, ErrEmptyURL
	}
	if err := validate.Var(candidate, "url"); err != nil {
		return feeds, ErrInvalidURL
	}
	if slices.Contains(feeds, candidate) {
		return feeds, ErrDuplicateFeed
	}

	out := make([]string, 0, len(feeds)+1)
	out = append(out, feeds...)
	return append(out, candidate), nil
}

// RemoveFeed returns feeds without any entry equal to target.
func RemoveFeed(feeds []string, target string) []string {
	out := make([]string, 0, len(feeds))
	for _, feed := range feeds {
		if feed != target {
			out = append(out, feed)
		}
	}
	return out
}
