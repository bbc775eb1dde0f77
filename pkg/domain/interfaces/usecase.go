package interfaces

import (
	"context"

	"github.com/m-mizutani/autonope/pkg/domain/model"
)

// CheckUseCase runs one watch cycle for one target
type CheckUseCase interface {
	// RunCycle executes a single check cycle: read watermark, fetch
	// releases (resolving the repository identity on demand), scan for
	// breaking keywords, notify at most once, and commit the watermark.
	// Errors are local to the cycle; no state is mutated on failure.
	RunCycle(ctx context.Context, target *model.WatchTarget) error
}

// RepoResolver maps an opaque container image reference to a canonical
// owner/repo identity
type RepoResolver interface {
	// Resolve returns the resolved identity and true, or ("", false) when
	// no stage of the fallback chain found a match. Normal
	// failure-to-resolve is not an error.
	Resolve(ctx context.Context, imageRef string) (string, bool)
}
