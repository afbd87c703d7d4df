package api

import (
	"errors"
	"time"

	"github.com/bilgisen/newsdigest/internal/cycle"
	"github.com/bilgisen/newsdigest/internal/logger"
	"github.com/bilgisen/newsdigest/internal/middleware"
	"github.com/bilgisen/newsdigest/internal/models"
	"github.com/bilgisen/newsdigest/internal/session"
	"github.com/bilgisen/newsdigest/internal/storage"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const Version = "1.0.0"

type Handlers struct {
	sessions *session.Manager
	archive  storage.Archive // nil when archiving is off
}

func NewHandlers(sessions *session.Manager, archive storage.Archive) *Handlers {
	return &Handlers{
		sessions: sessions,
		archive:  archive,
	}
}

// AddFeedRequest is the body of POST /api/v1/feeds.
type AddFeedRequest struct {
	URL string `json:"url" validate:"required"`
}

func (AddFeedRequest) FieldMessage(validator.FieldError) string {
	return session.ErrEmptyURL.Message
}

// SessionResponse is what the page renders from.
type SessionResponse struct {
	Feeds      []string      `json:"feeds"`
	State      cycle.Kind    `json:"state"`
	Busy       bool          `json:"busy"`
	Reason     string        `json:"reason,omitempty"`
	Cards      []models.Card `json:"cards"`
	StartedAt  time.Time     `json:"started_at,omitzero"`
	FinishedAt time.Time     `json:"finished_at,omitzero"`
}

func newSessionResponse(s *session.Session) SessionResponse {
	return SessionResponse{
		Feeds:      s.Feeds,
		State:      s.Cycle.Kind,
		Busy:       s.Cycle.Busy(),
		Reason:     s.Cycle.Reason,
		Cards:      s.Cards(),
		StartedAt:  s.Cycle.StartedAt,
		FinishedAt: s.Cycle.FinishedAt,
	}
}

// HealthCheck handles GET /api/v1/health
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": Version,
		"time":    time.Now().Format(time.RFC3339),
	})
}

// GetSession handles GET /api/v1/session
func (h *Handlers) GetSession(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return h.sessionError(c, sess, err)
	}
	return c.JSON(newSessionResponse(sess))
}

// AddFeed handles POST /api/v1/feeds
func (h *Handlers) AddFeed(c *fiber.Ctx) error {
	req := middleware.Body[AddFeedRequest](c)

	sess, err := h.sessions.AddFeed(c.UserContext(), middleware.SessionID(c), req.URL)
	if err != nil {
		return h.sessionError(c, sess, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newSessionResponse(sess))
}

// RemoveFeed handles DELETE /api/v1/feeds?url=
func (h *Handlers) RemoveFeed(c *fiber.Ctx) error {
	url := c.Query("url")
	if url == "" {
		return fiber.NewError(fiber.StatusBadRequest, "url query parameter is required")
	}

	sess, err := h.sessions.RemoveFeed(c.UserContext(), middleware.SessionID(c), url)
	if err != nil {
		return h.sessionError(c, sess, err)
	}
	return c.JSON(newSessionResponse(sess))
}

// StartCycle handles POST /api/v1/cycles
func (h *Handlers) StartCycle(c *fiber.Ctx) error {
	sess, err := h.sessions.StartCycle(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return h.sessionError(c, sess, err)
	}

	logger.Get().Info().
		Str("cycle_id", sess.Cycle.ID).
		Int("feeds", len(sess.Feeds)).
		Msg("Cycle accepted")

	return c.Status(fiber.StatusAccepted).JSON(newSessionResponse(sess))
}

// ClearSessions handles DELETE /api/v1/admin/sessions
func (h *Handlers) ClearSessions(c *fiber.Ctx) error {
	if err := h.sessions.Clear(c.UserContext()); err != nil {
		logger.Get().Error().Err(err).Msg("Error clearing sessions")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to clear sessions",
		})
	}

	return c.JSON(fiber.Map{
		"status":  "cleared",
		"message": "All sessions cleared",
	})
}

// ListCycles handles GET /api/v1/admin/cycles
func (h *Handlers) ListCycles(c *fiber.Ctx) error {
	if h.archive == nil {
		return fiber.NewError(fiber.StatusNotFound, "Cycle archive is disabled")
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	pageSize := c.QueryInt("page_size", 20)
	switch {
	case pageSize > 100:
		pageSize = 100
	case pageSize <= 0:
		pageSize = 20
	}

	cycles, err := h.archive.ListCycles(c.UserContext(), page, pageSize)
	if err != nil {
		logger.Get().Error().Err(err).Msg("Error listing archived cycles")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list cycles",
		})
	}

	return c.JSON(fiber.Map{
		"page":      page,
		"page_size": pageSize,
		"total":     len(cycles),
		"items":     cycles,
	})
}

// sessionError maps Manager errors onto responses. Conflicts carry the
// current session so the page can resync.
func (h *Handlers) sessionError(c *fiber.Ctx, sess *session.Session, err error) error {
	var verr *session.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": verr.Message,
		})
	case errors.Is(err, cycle.ErrCycleInProgress):
		body := fiber.Map{"error": "A fetch cycle is already in progress."}
		if sess != nil {
			body["session"] = newSessionResponse(sess)
		}
		return c.Status(fiber.StatusConflict).JSON(body)
	case errors.Is(err, session.ErrInvalidSessionID):
		return fiber.NewError(fiber.StatusBadRequest, "Invalid session")
	default:
		return err
	}
}
