package notify

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

const pushoverEndpoint = "https://api.pushover.net/1/messages.json"

type pushoverChannel struct {
	token      string
	user       string
	endpoint   string
	httpClient *http.Client
}

// NewPushover creates a Pushover channel with an application token and
// user key
func NewPushover(token, user string) Channel {
	return &pushoverChannel{
		token:    token,
		user:     user,
		endpoint: pushoverEndpoint,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (x *pushoverChannel) Name() string { return "pushover" }

func (x *pushoverChannel) Send(ctx context.Context, title, body string) error {
	form := url.Values{
		"token":   {x.token},
		"user":    {x.user},
		"title":   {title},
		"message": {body},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return goerr.Wrap(err, "failed to create pushover request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "failed to post pushover message")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return goerr.New("unexpected pushover response", goerr.V("status", resp.StatusCode))
	}
	return nil
}
