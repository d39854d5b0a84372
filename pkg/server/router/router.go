package router

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

var ErrMissingForwardedHandler = errors.New("router: forwarded handler is required")

type ServerRouter interface {
	BuildRoutes(router *fiber.App) error
}
