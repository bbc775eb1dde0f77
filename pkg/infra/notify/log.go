package notify

import (
	"context"

	"github.com/m-mizutani/ctxlog"
)

type logChannel struct{}

// NewLog creates a channel that only writes notifications to the logger.
// Useful as a default when no delivery channel is configured.
func NewLog() Channel {
	return &logChannel{}
}

func (x *logChannel) Name() string { return "log" }

func (x *logChannel) Send(ctx context.Context, title, body string) error {
	ctxlog.From(ctx).Warn(title, "body", body)
	return nil
}
