package notify

import (
	"context"

	"github.com/m-mizutani/autonope/pkg/domain/interfaces"
	"github.com/m-mizutani/ctxlog"
)

// Channel is a single notification back-end
type Channel interface {
	Name() string
	Send(ctx context.Context, title, body string) error
}

type notifier struct {
	channels []Channel
}

// New aggregates notification channels into one Notifier. With no channels
// it degrades to a no-op.
func New(channels ...Channel) interfaces.Notifier {
	return &notifier{channels: channels}
}

// Notify fans out to every channel. Delivery is fire-and-forget: a failing
// channel is logged and never aborts the caller's cycle, and one broken
// channel does not stop the others.
func (x *notifier) Notify(ctx context.Context, title, body string) {
	logger := ctxlog.From(ctx)

	for _, ch := range x.channels {
		if err := ch.Send(ctx, title, body); err != nil {
			logger.Warn("Failed to deliver notification",
				"channel", ch.Name(),
				"title", title,
				"error", err,
			)
			continue
		}
		logger.Debug("Notification delivered", "channel", ch.Name(), "title", title)
	}
}
