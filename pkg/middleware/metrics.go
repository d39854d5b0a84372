package middleware

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/NeuralTrust/XSSGuard/pkg/infra/prometheus"
	"github.com/gofiber/fiber/v2"
)

type metricsMiddleware struct{}

func NewMetricsMiddleware() Middleware {
	return &metricsMiddleware{}
}

func (m *metricsMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		method := strings.Clone(c.Method())

		err := c.Next()

		statusCode := c.Response().StatusCode()
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &fiberErr):
			statusCode = fiberErr.Code
		case err != nil:
			statusCode = fiber.StatusInternalServerError
		}

		prometheus.RequestTotal.WithLabelValues(method, GetStatusClass(strconv.Itoa(statusCode))).Inc()
		if prometheus.Config.EnableLatency {
			prometheus.RequestLatency.WithLabelValues(method).
				Observe(float64(time.Since(start).Microseconds()) / 1000)
		}
		return err
	}
}

// GetStatusClass returns the class of a status code (e.g. "2xx").
func GetStatusClass(status string) string {
	code, err := strconv.Atoi(status)
	if err != nil {
		return "5xx"
	}
	return fmt.Sprintf("%dxx", code/100)
}
