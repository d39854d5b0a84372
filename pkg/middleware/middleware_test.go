package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NeuralTrust/XSSGuard/pkg/infra/prometheus"
	"github.com/NeuralTrust/XSSGuard/pkg/middleware"
	"github.com/NeuralTrust/XSSGuard/pkg/xss"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPanicRecoverMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.NewPanicRecoverMiddleware(logrus.New()).Middleware())
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("boom")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/panic", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestMetricsMiddleware_CountsBlockedRequests(t *testing.T) {
	guard, err := xss.NewGuard(xss.Config{Block: true})
	require.NoError(t, err)

	transport := middleware.Transport{
		MetricsMiddleware:  middleware.NewMetricsMiddleware(),
		XSSGuardMiddleware: middleware.NewXSSGuardMiddleware(guard),
	}
	app := fiber.New()
	app.Use(transport.GetMiddlewares()...)
	app.Delete("/*", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	before4xx := testutil.ToFloat64(prometheus.RequestTotal.WithLabelValues(http.MethodDelete, "4xx"))
	before2xx := testutil.ToFloat64(prometheus.RequestTotal.WithLabelValues(http.MethodDelete, "2xx"))

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/items?id=%3Ciframe", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/items?id=7", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	assert.Equal(t, before4xx+1, testutil.ToFloat64(prometheus.RequestTotal.WithLabelValues(http.MethodDelete, "4xx")))
	assert.Equal(t, before2xx+1, testutil.ToFloat64(prometheus.RequestTotal.WithLabelValues(http.MethodDelete, "2xx")))
}

func TestGetStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", middleware.GetStatusClass("204"))
	assert.Equal(t, "4xx", middleware.GetStatusClass("400"))
	assert.Equal(t, "5xx", middleware.GetStatusClass("oops"))
}

func TestTransport_SkipsNilMiddlewares(t *testing.T) {
	transport := middleware.Transport{MetricsMiddleware: middleware.NewMetricsMiddleware()}
	assert.Len(t, transport.GetMiddlewares(), 1)
}
