package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	SessionCookie = "newsdigest_session"
	sessionKey    = "session_id"
)

// SessionConfig defines the config for the session cookie middleware
type SessionConfig struct {
	// TTL is the cookie lifetime, refreshed on every request.
	TTL time.Duration

	// Secure marks the cookie HTTPS only.
	Secure bool
}

// Session makes sure every request carries a session id, issuing a new
// cookie when the browser has none or sends one we did not issue.
func Session(cfg SessionConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Cookies(SessionCookie)
		if uuid.Validate(id) != nil {
			id = uuid.NewString()
		}

		cookie := &fiber.Cookie{
			Name:     SessionCookie,
			Value:    id,
			Path:     "/",
			HTTPOnly: true,
			Secure:   cfg.Secure,
			SameSite: fiber.CookieSameSiteLaxMode,
		}
		if cfg.TTL > 0 {
			cookie.Expires = time.Now().Add(cfg.TTL)
		}
		c.Cookie(cookie)

		c.Locals(sessionKey, id)
		return c.Next()
	}
}

// SessionID returns the id set by Session.
func SessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(sessionKey).(string)
	return id
}
