package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/NeuralTrust/XSSGuard/pkg/xss"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type xssGuardMiddleware struct {
	guard *xss.Guard
}

func NewXSSGuardMiddleware(guard *xss.Guard) Middleware {
	return &xssGuardMiddleware{
		guard: guard,
	}
}

func (m *xssGuardMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// OriginalURL aliases the request buffer, which SetRequestURI overwrites.
		original := strings.Clone(c.OriginalURL())

		outcome, err := m.guard.Inspect(original)
		blocked := errors.Is(err, xss.ErrBlocked)
		if outcome.Matched {
			m.guard.Notify(c.UserContext(), newDetection(c, original, outcome, blocked))
		}
		if blocked {
			return fiber.ErrBadRequest
		}

		if outcome.URL != original {
			c.Request().SetRequestURI(outcome.URL)
			c.Path(string(c.Request().URI().PathOriginal()))
		}
		return c.Next()
	}
}

func newDetection(c *fiber.Ctx, original string, outcome xss.Outcome, blocked bool) xss.Detection {
	return xss.Detection{
		ID:           uuid.NewString(),
		Time:         time.Now().UTC(),
		Method:       strings.Clone(c.Method()),
		OriginalURL:  original,
		SanitizedURL: outcome.URL,
		Stripped:     outcome.Stripped,
		Blocked:      blocked,
		ClientIP:     strings.Clone(c.IP()),
		UserAgent:    strings.Clone(c.Get(fiber.HeaderUserAgent)),
	}
}
