package middleware

import (
    "errors"
    "net/http"

    "github.com/bilgisen/newsdigest/internal/logger"
    "github.com/go-playground/validator/v10"
    "github.com/gofiber/fiber/v2"
)

const bodyKey = "validated"

// Validator is a struct that holds the validator instance
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate validates the request body against the provided struct
func (v *Validator) Validate(s any) error {
	return v.validate.Struct(s)
}

// FieldMessenger lets a request type turn a failed rule into the message
// shown to the user.
type FieldMessenger interface {
	FieldMessage(fe validator.FieldError) string
}

// ValidateBody parses the JSON body into a fresh T and validates it. The
// result is available to the handler through Body.
func ValidateBody[T any]() fiber.Handler {
	v := NewValidator()

	return func(c *fiber.Ctx) error {
		body := new(T)
		if err := c.BodyParser(body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
				"msg":   err.Error(),
			})
		}

		if err := v.Validate(body); err != nil {
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				return err
			}

			fields := make(map[string]string, len(verrs))
			message := "Validation failed"
			for i, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
				if m, ok := any(body).(FieldMessenger); ok && i == 0 {
					message = m.FieldMessage(fe)
				}
			}

			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":  message,
				"fields": fields,
			})
		}

		c.Locals(bodyKey, body)
		return c.Next()
	}
}

// Body returns the value stored by ValidateBody.
func Body[T any](c *fiber.Ctx) *T {
	body, _ := c.Locals(bodyKey).(*T)
	return body
}

// ErrorHandler is the app-wide fiber error handler
func ErrorHandler(c *fiber.Ctx, err error) error {
    code := fiber.StatusInternalServerError

    var e *fiber.Error
    if errors.As(err, &e) {
        code = e.Code
    }

    event := logger.Get().Error()
    if code < fiber.StatusInternalServerError {
        event = logger.Get().Debug()
    }
    event.
        Err(err).
        Str("method", c.Method()).
        Str("path", c.Path()).
        Int("status", code).
        Msg("HTTP error")

    message := http.StatusText(code)
    if e != nil && code < fiber.StatusInternalServerError {
        message = e.Message
    }

    return c.Status(code).JSON(fiber.Map{
        "error": message,
    })
}
