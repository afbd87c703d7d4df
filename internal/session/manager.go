package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bilgisen/newsdigest/internal/cache"
	"github.com/bilgisen/newsdigest/internal/cycle"
	"github.com/bilgisen/newsdigest/internal/logger"
	"github.com/bilgisen/newsdigest/internal/models"
	"github.com/bilgisen/newsdigest/internal/utils"
	"github.com/google/uuid"
)

// Runner executes a single cycle over a feed list.
type Runner interface {
	Run(ctx context.Context, feedURLs []string) ([]models.SummarizedArticle, error)
}

// Archiver receives snapshots of successful cycles.
type Archiver interface {
	SaveCycle(ctx context.Context, snapshot *models.CycleSnapshot) error
}

var ErrInvalidSessionID = errors.New("invalid session id")

// Manager owns session state. All reads and writes of a session go through
// it so that a running cycle cannot be disturbed.
type Manager struct {
	store    cache.Store
	runner   Runner
	archive  Archiver
	defaults []string
	ttl      time.Duration

	mu      sync.Mutex
	running map[string]struct{}
	wg      sync.WaitGroup

	now   func() time.Time
	newID func() string
}

type Options struct {
	Store        cache.Store
	Runner       Runner
	Archive      Archiver // optional
	DefaultFeeds []string
	TTL          time.Duration
}

func NewManager(opts Options) *Manager {
	return &Manager{
		store:    opts.Store,
		runner:   opts.Runner,
		archive:  opts.Archive,
		defaults: append([]string{}, opts.DefaultFeeds...),
		ttl:      opts.TTL,
		running:  make(map[string]struct{}),
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
}

// ValidSessionID reports whether id looks like one we issued.
func ValidSessionID(id string) bool {
	return uuid.Validate(id) == nil
}

// Get returns the session, creating it with the default feeds if unknown.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.loadLocked(ctx, id)
}

// AddFeed validates and appends url to the session's feed list.
func (m *Manager) AddFeed(ctx context.Context, id, url string) (*Session, error) {
	return m.update(ctx, id, func(s *Session) error {
		return s.AddFeed(url)
	})
}

// RemoveFeed removes url from the session's feed list.
func (m *Manager) RemoveFeed(ctx context.Context, id, url string) (*Session, error) {
	return m.update(ctx, id, func(s *Session) error {
		return s.RemoveFeed(url)
	})
}

// StartCycle moves the session to fetching and runs the cycle in the
// background. The cycle is not tied to ctx and cannot be cancelled.
func (m *Manager) StartCycle(ctx context.Context, id string) (*Session, error) {
	cycleID := m.newID()

	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.loadLocked(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := sess.Cycle.Start(cycleID, m.now())
	if err != nil {
		return sess, err
	}
	sess.Cycle = next
	if err := m.saveLocked(ctx, sess); err != nil {
		return nil, err
	}
	m.running[cycleID] = struct{}{}

	feeds := append([]string{}, sess.Feeds...)
	m.wg.Add(1)
	go m.runCycle(context.WithoutCancel(ctx), id, cycleID, feeds)

	return sess, nil
}

func (m *Manager) runCycle(ctx context.Context, sessionID, cycleID string, feeds []string) {
	defer m.wg.Done()

	log := logger.Component("session").With().
		Str("cycle_id", cycleID).
		Int("feeds", len(feeds)).
		Logger()
	log.Info().Msg("Starting cycle")

	articles, runErr := m.runner.Run(ctx, feeds)

	m.mu.Lock()
	defer m.mu.Unlock()
	// Still registered while reloading, or the load would settle it as orphaned.
	defer delete(m.running, cycleID)

	sess, err := m.loadLocked(ctx, sessionID)
	if err != nil {
		log.Error().Err(err).Msg("Error loading session to record cycle result")
		return
	}
	if sess.Cycle.ID != cycleID || !sess.Cycle.Busy() {
		log.Warn().Str("state", sess.Cycle.String()).Msg("Session moved on, dropping cycle result")
		return
	}

	next, err := sess.Cycle.Finish(articles, runErr, m.now())
	if err != nil {
		log.Error().Err(err).Msg("Error settling cycle state")
		return
	}
	sess.Cycle = next

	if err := m.saveLocked(ctx, sess); err != nil {
		log.Error().Err(err).Msg("Error saving cycle result")
		return
	}

	log.Info().Str("state", next.String()).Msg("Cycle finished")

	if next.Kind == cycle.KindSucceeded && m.archive != nil {
		snapshot := &models.CycleSnapshot{
			CycleID:     cycleID,
			SessionHash: utils.ShortHash(sessionID, 16),
			Feeds:       feeds,
			Articles:    next.Articles,
			StartedAt:   next.StartedAt,
			FinishedAt:  next.FinishedAt,
		}
		if err := m.archive.SaveCycle(ctx, snapshot); err != nil {
			log.Error().Err(err).Msg("Error archiving cycle")
		}
	}
}

// Clear drops every session.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.store.Clear(ctx)
}

// Wait blocks until all running cycles finish or ctx is done.
func (m *Manager) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) update(ctx context.Context, id string, mutate func(*Session) error) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.loadLocked(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(sess); err != nil {
		return sess, err
	}
	if err := m.saveLocked(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (m *Manager) loadLocked(ctx context.Context, id string) (*Session, error) {
	if !ValidSessionID(id) {
		return nil, ErrInvalidSessionID
	}

	data, ok, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error loading session: %w", err)
	}
	if !ok {
		sess := newSession(id, m.defaults, m.now())
		if err := m.saveLocked(ctx, sess); err != nil {
			return nil, err
		}
		return sess, nil
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("error decoding session: %w", err)
	}

	// A fetching state whose cycle this process is not running was left
	// behind by a restart; it would otherwise lock the session forever.
	if sess.Cycle.Busy() {
		if _, running := m.running[sess.Cycle.ID]; !running {
			next, _ := sess.Cycle.Fail(cycle.MsgUnexpected, m.now())
			sess.Cycle = next
		}
	}

	return &sess, nil
}

func (m *Manager) saveLocked(ctx context.Context, sess *Session) error {
	sess.UpdatedAt = m.now()
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("error encoding session: %w", err)
	}
	if err := m.store.Set(ctx, sess.ID, data, m.ttl); err != nil {
		return fmt.Errorf("error saving session: %w", err)
	}
	return nil
}
