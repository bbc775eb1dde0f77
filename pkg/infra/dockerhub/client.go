package dockerhub

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/m-mizutani/autonope/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
)

const defaultBaseURL = "https://hub.docker.com"

type client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes the Docker Hub client
type Option func(*client)

// WithBaseURL overrides the Docker Hub API base URL, mainly for tests
func WithBaseURL(baseURL string) Option {
	return func(c *client) {
		c.baseURL = baseURL
	}
}

// NewClient creates a Docker Hub registry client for anonymous repository
// metadata lookups
func NewClient(opts ...Option) interfaces.RegistryClient {
	c := &client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type repositoryResponse struct {
	SourceRepository *struct {
		Provider string `json:"provider"`
		FullName string `json:"full_name"`
	} `json:"source_repository"`
}

// SourceRepository returns the declared source repository for a Docker Hub
// repository when its provider is GitHub
func (c *client) SourceRepository(ctx context.Context, namespace, image string) (string, bool, error) {
	url := c.baseURL + "/v2/repositories/" + namespace + "/" + image + "/"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false, goerr.Wrap(err, "failed to create request", goerr.V("url", url))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", false, goerr.Wrap(err, "failed to query docker hub", goerr.V("url", url))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false, goerr.New("unexpected docker hub response",
			goerr.V("url", url),
			goerr.V("status", resp.StatusCode),
		)
	}

	var body repositoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", false, goerr.Wrap(err, "failed to decode docker hub response", goerr.V("url", url))
	}

	if body.SourceRepository == nil || body.SourceRepository.Provider != "github" {
		return "", false, nil
	}
	if body.SourceRepository.FullName == "" {
		return "", false, nil
	}

	return body.SourceRepository.FullName, true, nil
}
