package server

import (
	"fmt"

	"github.com/NeuralTrust/XSSGuard/pkg/config"
	handlers "github.com/NeuralTrust/XSSGuard/pkg/handlers/http"
	"github.com/NeuralTrust/XSSGuard/pkg/infra/prometheus"
	"github.com/NeuralTrust/XSSGuard/pkg/middleware"
	"github.com/NeuralTrust/XSSGuard/pkg/server/router"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type (
	GuardServerDI struct {
		Config              *config.Config
		Logger              *logrus.Logger
		MiddlewareTransport middleware.Transport
		HandlerTransport    handlers.HandlerTransport
	}
	GuardServer struct {
		*BaseServer
	}
)

func NewGuardServer(di GuardServerDI) *GuardServer {
	prometheus.Initialize(prometheus.MetricsConfig{
		EnableLatency: di.Config.Metrics.EnableLatency,
	})

	s := &GuardServer{
		BaseServer: NewBaseServer(di.Config, di.Logger),
	}
	s.WithRouters(router.NewGuardRouter(&di.MiddlewareTransport, di.HandlerTransport))
	return s
}

// Run blocks until both listeners stop. Either one failing stops Run with its error.
func (s *GuardServer) Run() error {
	var g errgroup.Group

	addr := fmt.Sprintf(":%d", s.Config.Server.Port)
	g.Go(func() error {
		s.Logger.WithField("addr", addr).Info("starting guard server")
		return s.Router.Listen(addr)
	})

	if s.Metrics != nil {
		g.Go(func() error {
			s.Logger.WithField("addr", s.metricsAddr()).Info("starting metrics server")
			return s.Metrics.Listen(s.metricsAddr())
		})
	}
	return g.Wait()
}

func (s *GuardServer) Shutdown() error {
	if s.Metrics != nil {
		if err := s.Metrics.Shutdown(); err != nil {
			s.Logger.WithError(err).Warn("failed to stop metrics server")
		}
	}
	return s.Router.Shutdown()
}
