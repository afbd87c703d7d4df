package session

import (
	"time"

	"github.com/bilgisen/newsdigest/internal/cycle"
	"github.com/bilgisen/newsdigest/internal/models"
)

// Session is everything one browser session sees: its feed list and the
// state of its latest cycle.
type Session struct {
	ID        string      `json:"id"`
	Feeds     []string    `json:"feeds"`
	Cycle     cycle.State `json:"cycle"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func newSession(id string, feeds []string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Feeds:     append([]string{}, feeds...),
		Cycle:     cycle.Idle(),
		UpdatedAt: now,
	}
}

// AddFeed appends url unless a cycle is running or validation fails.
func (s *Session) AddFeed(url string) error {
	if s.Cycle.Busy() {
		return cycle.ErrCycleInProgress
	}
	feeds, err := AddFeed(s.Feeds, url)
	if err != nil {
		return err
	}
	s.Feeds = feeds
	return nil
}

// RemoveFeed drops url unless a cycle is running.
func (s *Session) RemoveFeed(url string) error {
	if s.Cycle.Busy() {
		return cycle.ErrCycleInProgress
	}
	s.Feeds = RemoveFeed(s.Feeds, url)
	return nil
}

// Cards returns the card views of the latest successful cycle.
func (s *Session) Cards() []models.Card {
	cards := make([]models.Card, 0, len(s.Cycle.Articles))
	for _, article := range s.Cycle.Articles {
		cards = append(cards, article.Card())
	}
	return cards
}
