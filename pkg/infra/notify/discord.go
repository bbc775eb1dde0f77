package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

type discordChannel struct {
	webhookURL string
	httpClient *http.Client
}

// NewDiscord creates a Discord channel posting to a webhook URL
func NewDiscord(webhookURL string) Channel {
	return &discordChannel{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (x *discordChannel) Name() string { return "discord" }

func (x *discordChannel) Send(ctx context.Context, title, body string) error {
	payload, err := json.Marshal(map[string]string{
		"content": "**" + title + "**\n" + body,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to marshal discord payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return goerr.Wrap(err, "failed to create discord request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "failed to post discord webhook")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return goerr.New("unexpected discord response", goerr.V("status", resp.StatusCode))
	}
	return nil
}
