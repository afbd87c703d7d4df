package middleware

import (
    "strings"
    "time"

    "github.com/bilgisen/newsdigest/internal/logger"
    "github.com/gofiber/fiber/v2"
    "github.com/rs/zerolog"
)

// LoggerConfig defines the config for the logger middleware
type LoggerConfig struct {
    // Next defines a function to skip middleware.
    // Optional. Default: nil
    Next func(c *fiber.Ctx) bool

    // Logger is the zerolog logger instance to use.
    // If not provided, the default logger will be used.
    Logger *zerolog.Logger

    // Fields to include in the logs
    Fields []string
}

// DefaultLoggerConfig is the default config
var DefaultLoggerConfig = LoggerConfig{
    Fields: []string{"latency", "status", "method", "path", "ip", "user_agent"},
}

// NewLogger creates a new request logging middleware. 5xx responses are
// logged at error level, 4xx at warn, everything else at info.
func NewLogger(config ...LoggerConfig) fiber.Handler {
    cfg := DefaultLoggerConfig
    if len(config) > 0 {
        cfg = config[0]
        if len(cfg.Fields) == 0 {
            cfg.Fields = DefaultLoggerConfig.Fields
        }
    }

    fields := make(map[string]bool, len(cfg.Fields))
    for _, f := range cfg.Fields {
        fields[f] = true
    }

    return func(c *fiber.Ctx) error {
        if cfg.Next != nil && cfg.Next(c) {
            return c.Next()
        }

        start := time.Now()
        err := c.Next()
        latency := time.Since(start)

        log := cfg.Logger
        if log == nil {
            // Resolved per request so a logger initialised after route setup is used.
            log = logger.Get()
        }

        status := c.Response().StatusCode()
        var event *zerolog.Event
        switch {
        case err != nil || status >= fiber.StatusInternalServerError:
            event = log.Error()
        case status >= fiber.StatusBadRequest:
            event = log.Warn()
        default:
            event = log.Info()
        }

        if fields["method"] {
            event = event.Str("method", c.Method())
        }
        if fields["path"] {
            event = event.Str("path", c.Path())
        }
        if fields["status"] {
            event = event.Int("status", status)
        }
        if fields["ip"] {
            event = event.Str("ip", c.IP())
        }
        if fields["user_agent"] {
            event = event.Str("user_agent", c.Get("User-Agent"))
        }
        if fields["latency"] {
            event = event.Dur("latency", latency)
        }
        if err != nil {
            event = event.Err(err)
        }

        event.Msg("request")
        return err
    }
}

// RequestLogger logs API traffic. Static assets and health probes are skipped.
func RequestLogger() fiber.Handler {
    return NewLogger(LoggerConfig{
        Next: func(c *fiber.Ctx) bool {
            path := c.Path()
            return !strings.HasPrefix(path, "/api/") || path == "/api/v1/health"
        },
        Fields: []string{"latency", "status", "method", "path", "ip"},
    })
}
