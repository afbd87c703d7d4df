package cycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/bilgisen/newsdigest/internal/models"
)

// Kind tags the variant held by a State.
type Kind string

const (
	KindIdle      Kind = "idle"
	KindFetching  Kind = "fetching"
	KindSucceeded Kind = "succeeded"
	KindFailed    Kind = "failed"
)

var (
	// ErrCycleInProgress rejects anything that would disturb a running cycle.
	ErrCycleInProgress = errors.New("a fetch cycle is already in progress")
	ErrNotFetching     = errors.New("no fetch cycle is in progress")
)

// State is the cycle state of one session. Articles is only set when
// Kind is succeeded, Reason only when Kind is failed.
type State struct {
	Kind       Kind                       `json:"kind"`
	ID         string                     `json:"id,omitempty"`
	Articles   []models.SummarizedArticle `json:"articles,omitempty"`
	Reason     string                     `json:"reason,omitempty"`
	StartedAt  time.Time                  `json:"started_at,omitzero"`
	FinishedAt time.Time                  `json:"finished_at,omitzero"`
}

func Idle() State {
	return State{Kind: KindIdle}
}

// Busy reports whether a cycle is running.
func (s State) Busy() bool {
	return s.Kind == KindFetching
}

// Start moves any settled state to fetching. Previous results are dropped.
func (s State) Start(id string, now time.Time) (State, error) {
	if s.Busy() {
		return s, ErrCycleInProgress
	}
	return State{Kind: KindFetching, ID: id, StartedAt: now}, nil
}

// Succeed replaces the results wholesale.
func (s State) Succeed(articles []models.SummarizedArticle, now time.Time) (State, error) {
	if !s.Busy() {
		return s, ErrNotFetching
	}
	if articles == nil {
		articles = []models.SummarizedArticle{}
	}
	return State{Kind: KindSucceeded, ID: s.ID, Articles: articles, StartedAt: s.StartedAt, FinishedAt: now}, nil
}

func (s State) Fail(reason string, now time.Time) (State, error) {
	if !s.Busy() {
		return s, ErrNotFetching
	}
	return State{Kind: KindFailed, ID: s.ID, Reason: reason, StartedAt: s.StartedAt, FinishedAt: now}, nil
}

// Finish settles a fetching state from the outcome of Runner.Run.
func (s State) Finish(articles []models.SummarizedArticle, runErr error, now time.Time) (State, error) {
	if runErr != nil {
		return s.Fail(UserMessage(runErr), now)
	}
	return s.Succeed(articles, now)
}

// UserMessage maps a cycle error to the banner text shown to the user.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoArticles):
		return MsgNoArticles
	default:
		return MsgUnexpected
	}
}

func (s State) String() string {
	switch s.Kind {
	case KindSucceeded:
		return fmt.Sprintf("succeeded(%d articles)", len(s.Articles))
	case KindFailed:
		return fmt.Sprintf("failed(%s)", s.Reason)
	default:
		return string(s.Kind)
	}
}
