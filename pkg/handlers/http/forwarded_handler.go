package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/proxy"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

type forwardedHandler struct {
	logger   *logrus.Logger
	upstream string
	client   *fasthttp.Client
}

// NewForwardedHandler proxies requests, with their already sanitized URI, to upstream.
func NewForwardedHandler(logger *logrus.Logger, upstream string) Handler {
	return &forwardedHandler{
		logger:   logger,
		upstream: strings.TrimRight(upstream, "/"),
		client: &fasthttp.Client{
			ReadTimeout:                   60 * time.Second,
			WriteTimeout:                  60 * time.Second,
			MaxIdleConnDuration:           120 * time.Second,
			NoDefaultUserAgentHeader:      true,
			DisableHeaderNamesNormalizing: true,
			DisablePathNormalizing:        true,
		},
	}
}

func (h *forwardedHandler) Handle(c *fiber.Ctx) error {
	target := h.upstream + c.OriginalURL()
	if err := proxy.Do(c, target, h.client); err != nil {
		h.logger.WithError(err).WithField("upstream", h.upstream).Error("failed to forward request")
		return fiber.ErrBadGateway
	}
	c.Response().Header.Del(fiber.HeaderServer)
	return nil
}
