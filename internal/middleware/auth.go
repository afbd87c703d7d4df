package middleware

import (
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/bilgisen/newsdigest/internal/logger"
	"github.com/gofiber/fiber/v2"
)

// AuthConfig defines the config for the auth middleware
type AuthConfig struct {
	// Next defines a function to skip middleware.
	// Optional. Default: nil
	Next func(c *fiber.Ctx) bool

	// Validator is a function to validate the API key.
	// Required.
	Validator func(key string) (bool, error)

	// ErrorHandler defines a function which is executed for an invalid API key.
	// Optional. Default: 401 Invalid or missing API Key
	ErrorHandler fiber.ErrorHandler

	// Header is the header key where to get the API key from.
	// Optional. Default: "X-API-Key"
	Header string
}

var (
	errMissingKey = errors.New("missing API key")
	errInvalidKey = errors.New("invalid API key")
)

// ConfigDefault is the default config
var ConfigDefault = AuthConfig{
	ErrorHandler: func(c *fiber.Ctx, err error) error {
		logger.Get().Warn().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("ip", c.IP()).
			Err(err).
			Msg("Authentication failed")

		status := fiber.StatusForbidden
		if errors.Is(err, errMissingKey) {
			status = fiber.StatusUnauthorized
		}
		return c.Status(status).JSON(fiber.Map{
			"error": "Invalid or missing API Key",
		})
	},
	Header: "X-API-Key",
}

// NewAuth creates a new API key middleware handler
func NewAuth(config AuthConfig) fiber.Handler {
	cfg := config
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = ConfigDefault.ErrorHandler
	}
	if cfg.Header == "" {
		cfg.Header = ConfigDefault.Header
	}

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		authHeader := c.Get(cfg.Header)
		if authHeader == "" {
			return cfg.ErrorHandler(c, errMissingKey)
		}

		// For "Bearer " prefixed tokens
		token := strings.TrimPrefix(authHeader, "Bearer ")

		valid, err := cfg.Validator(token)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}
		if !valid {
			return cfg.ErrorHandler(c, errInvalidKey)
		}

		return c.Next()
	}
}

// AdminOnly guards the admin routes with a single shared key.
func AdminOnly(adminKey string) fiber.Handler {
	want := []byte(adminKey)
	return NewAuth(AuthConfig{
		Validator: func(key string) (bool, error) {
			if len(want) == 0 {
				return false, nil
			}
			return subtle.ConstantTimeCompare([]byte(key), want) == 1, nil
		},
	})
}
