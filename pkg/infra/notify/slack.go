package notify

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

type slackChannel struct {
	webhookURL string
}

// NewSlack creates a Slack channel posting to an incoming webhook URL
func NewSlack(webhookURL string) Channel {
	return &slackChannel{webhookURL: webhookURL}
}

func (x *slackChannel) Name() string { return "slack" }

func (x *slackChannel) Send(ctx context.Context, title, body string) error {
	msg := &slack.WebhookMessage{
		Text: "*" + title + "*\n" + body,
	}
	if err := slack.PostWebhookContext(ctx, x.webhookURL, msg); err != nil {
		return goerr.Wrap(err, "failed to post slack webhook")
	}
	return nil
}
