package events

import (
	"context"

	"github.com/NeuralTrust/XSSGuard/pkg/xss"
	"github.com/sirupsen/logrus"
)

const maxLoggedURL = 100

type logObserver struct {
	logger *logrus.Logger
}

func NewLogObserver(logger *logrus.Logger) xss.Observer {
	return &logObserver{logger: logger}
}

func (o *logObserver) Observe(_ context.Context, d xss.Detection) {
	action := "sanitize"
	if d.Blocked {
		action = "block"
	}
	o.logger.WithFields(logrus.Fields{
		"detection_id": d.ID,
		"action":       action,
		"method":       d.Method,
		"url":          truncate(d.OriginalURL),
		"stripped":     len(d.Stripped),
		"client_ip":    d.ClientIP,
	}).Warn("threat detected")
}

func truncate(s string) string {
	if len(s) > maxLoggedURL {
		return s[:maxLoggedURL-3] + "..."
	}
	return s
}
