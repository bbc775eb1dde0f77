package interfaces

import "context"

// WatermarkStore is a durable mapping from repository identity to the last
// observed release ordinal. A missing entry is equivalent to ordinal 0.
// Set is an atomic upsert: it either fully commits or leaves the prior
// value intact.
type WatermarkStore interface {
	Get(ctx context.Context, repo string) (int64, bool, error)
	Set(ctx context.Context, repo string, releaseID int64) error
	Close() error
}

// ImageInspector reads metadata labels of a locally present container image
type ImageInspector interface {
	Labels(ctx context.Context, imageRef string) (map[string]string, error)
}

// RegistryClient queries the public container registry for repository
// provenance metadata
type RegistryClient interface {
	// SourceRepository returns the declared source repository full name
	// when the registry exposes one backed by GitHub.
	SourceRepository(ctx context.Context, namespace, image string) (string, bool, error)
}

// Notifier delivers a notification through zero or more channels.
// Delivery is best effort; per-channel failures are swallowed.
type Notifier interface {
	Notify(ctx context.Context, title, body string)
}

// Gate reports whether monitoring is enabled for this deployment
type Gate interface {
	Enabled(ctx context.Context) bool
}
