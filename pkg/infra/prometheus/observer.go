package prometheus

import (
	"context"

	"github.com/NeuralTrust/XSSGuard/pkg/xss"
)

const (
	ActionBlocked   = "blocked"
	ActionSanitized = "sanitized"
)

type metricsObserver struct{}

// NewMetricsObserver counts detections and the signatures they stripped.
func NewMetricsObserver() xss.Observer {
	return &metricsObserver{}
}

func (o *metricsObserver) Observe(_ context.Context, d xss.Detection) {
	action := ActionSanitized
	if d.Blocked {
		action = ActionBlocked
	}
	DetectionsTotal.WithLabelValues(action).Inc()
	for _, m := range d.Stripped {
		StrippedTotal.WithLabelValues(m.Pattern).Inc()
	}
}
