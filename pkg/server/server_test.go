package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NeuralTrust/XSSGuard/pkg/config"
	handlers "github.com/NeuralTrust/XSSGuard/pkg/handlers/http"
	"github.com/NeuralTrust/XSSGuard/pkg/middleware"
	"github.com/NeuralTrust/XSSGuard/pkg/version"
	"github.com/NeuralTrust/XSSGuard/pkg/xss"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, guardCfg xss.Config, metricsEnabled bool) *GuardServer {
	t.Helper()
	guard, err := xss.NewGuard(guardCfg)
	require.NoError(t, err)

	cfg := &config.Config{
		Server:  config.ServerConfig{Port: 8080, MetricsPort: 9090},
		Metrics: config.MetricsConfig{Enabled: metricsEnabled},
		Guard:   config.GuardConfig{MaxPasses: 1},
	}
	logger := logrus.New()
	return NewGuardServer(GuardServerDI{
		Config: cfg,
		Logger: logger,
		MiddlewareTransport: middleware.Transport{
			PanicRecoverMiddleware: middleware.NewPanicRecoverMiddleware(logger),
			MetricsMiddleware:      middleware.NewMetricsMiddleware(),
			XSSGuardMiddleware:     middleware.NewXSSGuardMiddleware(guard),
		},
		HandlerTransport: handlers.HandlerTransport{
			ForwardedHandler: handlers.NewMirrorHandler(),
		},
	})
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestGuardServer_SystemRoutesBypassGuard(t *testing.T) {
	s := newTestServer(t, xss.Config{Block: true}, false)

	resp, err := s.Router.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	health := decode(t, resp)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, version.Version, health["version"])

	resp, err = s.Router.Test(httptest.NewRequest(http.MethodGet, "/__/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, "pong", decode(t, resp)["message"])
}

func TestGuardServer_ForwardsSanitizedURL(t *testing.T) {
	s := newTestServer(t, xss.Config{}, false)

	resp, err := s.Router.Test(httptest.NewRequest(http.MethodGet, "/search?q=%3Ciframe%20src=x", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/search?q=%20x", decode(t, resp)["url"])
}

func TestGuardServer_BlockedRequestRendersError(t *testing.T) {
	s := newTestServer(t, xss.Config{Block: true}, false)

	resp, err := s.Router.Test(httptest.NewRequest(http.MethodGet, "/search?q=%3Cscript", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Bad Request", decode(t, resp)["error"])
}

func TestGuardServer_MetricsEndpoint(t *testing.T) {
	s := newTestServer(t, xss.Config{}, true)
	require.NotNil(t, s.Metrics)

	_, err := s.Router.Test(httptest.NewRequest(http.MethodGet, "/books", nil))
	require.NoError(t, err)

	resp, err := s.Metrics.Test(httptest.NewRequest(http.MethodGet, MetricsPath, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "xssguard_requests_total")
}

func TestGuardServer_MetricsDisabled(t *testing.T) {
	s := newTestServer(t, xss.Config{}, false)
	assert.Nil(t, s.Metrics)
}

func TestErrorHandler_UnknownError(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Get("/", func(c *fiber.Ctx) error {
		return io.ErrUnexpectedEOF
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "internal server error", decode(t, resp)["error"])
}
