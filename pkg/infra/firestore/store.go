package firestore

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/autonope/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const collection = "watermarks"

type store struct {
	client *firestore.Client
}

type watermarkDoc struct {
	Repo          string    `firestore:"repo"`
	LastReleaseID int64     `firestore:"last_release_id"`
	UpdatedAt     time.Time `firestore:"updated_at"`
}

// New creates a Firestore-backed watermark store for deployments that run
// without a local disk
func New(ctx context.Context, projectID string, opts ...option.ClientOption) (interfaces.WatermarkStore, error) {
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client", goerr.V("project", projectID))
	}
	return &store{client: client}, nil
}

// docID maps a repository identity to a Firestore document ID. Document
// IDs cannot contain "/".
func docID(repo string) string {
	return strings.ReplaceAll(repo, "/", ":")
}

func (s *store) Get(ctx context.Context, repo string) (int64, bool, error) {
	snap, err := s.client.Collection(collection).Doc(docID(repo)).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, goerr.Wrap(err, "failed to read watermark", goerr.V("repo", repo))
	}

	var doc watermarkDoc
	if err := snap.DataTo(&doc); err != nil {
		return 0, false, goerr.Wrap(err, "failed to decode watermark", goerr.V("repo", repo))
	}

	return doc.LastReleaseID, true, nil
}

func (s *store) Set(ctx context.Context, repo string, releaseID int64) error {
	_, err := s.client.Collection(collection).Doc(docID(repo)).Set(ctx, &watermarkDoc{
		Repo:          repo,
		LastReleaseID: releaseID,
		UpdatedAt:     time.Now(),
	})
	if err != nil {
		return goerr.Wrap(err, "failed to write watermark",
			goerr.V("repo", repo),
			goerr.V("release_id", releaseID),
		)
	}
	return nil
}

func (s *store) Close() error {
	return s.client.Close()
}
