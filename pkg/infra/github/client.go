package github

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/autonope/pkg/domain/interfaces"
	"github.com/m-mizutani/autonope/pkg/domain/model"
	"github.com/m-mizutani/autonope/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type client struct {
	githubClient *github.Client
}

// Option customizes the GitHub client
type Option func(*github.Client) *github.Client

// WithToken authenticates requests with a personal access token
func WithToken(token string) Option {
	return func(c *github.Client) *github.Client {
		if token == "" {
			return c
		}
		return c.WithAuthToken(token)
	}
}

// WithBaseURL overrides the API base URL, mainly for tests
func WithBaseURL(baseURL string) Option {
	return func(c *github.Client) *github.Client {
		u, err := c.BaseURL.Parse(baseURL)
		if err != nil {
			return c
		}
		c.BaseURL = u
		return c
	}
}

// NewClient creates a new GitHub API client. Without options it performs
// unauthenticated requests, which is enough for public release lists.
func NewClient(opts ...Option) interfaces.GitHubClient {
	githubClient := github.NewClient(&http.Client{
		Timeout: 20 * time.Second,
	})
	for _, opt := range opts {
		githubClient = opt(githubClient)
	}

	return &client{
		githubClient: githubClient,
	}
}

// ListReleases returns the first page of releases, newest first per the
// API's default ordering
func (c *client) ListReleases(ctx context.Context, owner, repo string) ([]*model.Release, error) {
	releases, _, err := c.githubClient.Repositories.ListReleases(ctx, owner, repo, &github.ListOptions{
		PerPage: 30,
	})
	if err != nil {
		return nil, wrapAPIError(err, "failed to list releases", owner, repo)
	}

	result := make([]*model.Release, 0, len(releases))
	for _, rel := range releases {
		result = append(result, &model.Release{
			ID:    rel.GetID(),
			Title: rel.GetName(),
			Body:  rel.GetBody(),
			URL:   rel.GetHTMLURL(),
		})
	}

	return result, nil
}

// RepoExists probes whether a repository exists. A 404 means a clean
// negative, not an error.
func (c *client) RepoExists(ctx context.Context, owner, repo string) (bool, error) {
	_, resp, err := c.githubClient.Repositories.Get(ctx, owner, repo)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, wrapAPIError(err, "failed to get repository", owner, repo)
	}
	return true, nil
}

// SearchRepository returns the top-ranked repository owned by owner whose
// name contains name
func (c *client) SearchRepository(ctx context.Context, owner, name string) (string, bool, error) {
	query := name + " in:name user:" + owner
	result, _, err := c.githubClient.Search.Repositories(ctx, query, &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: 1},
	})
	if err != nil {
		return "", false, wrapAPIError(err, "failed to search repositories", owner, name)
	}

	if len(result.Repositories) == 0 {
		return "", false, nil
	}

	return result.Repositories[0].GetFullName(), true, nil
}

// wrapAPIError tags the error so callers can distinguish identity misses
// (404, 401/403) from transient failures
func wrapAPIError(err error, msg, owner, repo string) error {
	options := []goerr.Option{
		goerr.V("owner", owner),
		goerr.V("repo", repo),
	}

	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		options = append(options, goerr.V("status", errResp.Response.StatusCode))
		switch errResp.Response.StatusCode {
		case http.StatusNotFound:
			options = append(options, goerr.T(types.ErrTagNotFound))
		case http.StatusUnauthorized, http.StatusForbidden:
			options = append(options, goerr.T(types.ErrTagUnauthorized))
		}
	}

	return goerr.Wrap(err, msg, options...)
}
