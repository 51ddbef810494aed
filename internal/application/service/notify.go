package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Alexrusso3108/cura-doctors-portal/pkg/events"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/metrics"
)

// notifier publishes domain events after the change is committed. Delivery
// failures are logged and counted, never returned.
type notifier struct {
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func (n notifier) publish(ctx context.Context, e events.Event) {
	if n.publisher == nil {
		return
	}
	outcome := "ok"
	if err := n.publisher.Publish(ctx, e); err != nil {
		outcome = "error"
		n.logger.Warn("event publish failed",
			zap.String("event_type", e.Type),
			zap.String("key", e.Key),
			zap.Error(err))
	}
	if n.metrics != nil {
		n.metrics.EventsPublished.WithLabelValues(e.Type, outcome).Inc()
	}
}
