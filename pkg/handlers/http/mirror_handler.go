package http

import (
	"github.com/gofiber/fiber/v2"
)

type mirrorHandler struct{}

// NewMirrorHandler answers with the request line as the guard passed it on. It stands in
// for an upstream when none is configured.
func NewMirrorHandler() Handler {
	return &mirrorHandler{}
}

func (h *mirrorHandler) Handle(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"method": c.Method(),
		"url":    c.OriginalURL(),
		"path":   c.Path(),
		"query":  c.Queries(),
	})
}
