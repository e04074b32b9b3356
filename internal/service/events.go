package service

import (
	"context"

	"blogapi/internal/logging"
	"blogapi/internal/queue"
)

// publish sends an activity event after commit. Failures are logged and
// never fail the request.
func publish(ctx context.Context, p queue.Publisher, event queue.ActivityEvent) {
	if p == nil {
		return
	}
	if _, err := p.Publish(ctx, queue.StreamActivity, event); err != nil {
		logging.Component("events").WithError(err).WithField("type", event.Type).
			Warn("Failed to publish activity event")
	}
}
