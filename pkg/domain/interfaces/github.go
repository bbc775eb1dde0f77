package interfaces

import (
	"context"

	"github.com/m-mizutani/autonope/pkg/domain/model"
)

// GitHubClient defines operations for interacting with the GitHub API
type GitHubClient interface {
	// ListReleases returns the first page of releases for a repository,
	// newest first. Identity misses are tagged with types.ErrTagNotFound
	// or types.ErrTagUnauthorized.
	ListReleases(ctx context.Context, owner, repo string) ([]*model.Release, error)

	// RepoExists checks whether a repository exists. A clean 404 is
	// (false, nil), not an error.
	RepoExists(ctx context.Context, owner, repo string) (bool, error)

	// SearchRepository searches repositories owned by owner whose name
	// contains name, returning the top-ranked full name if any.
	SearchRepository(ctx context.Context, owner, name string) (string, bool, error)
}
