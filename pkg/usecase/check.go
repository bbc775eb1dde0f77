package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/m-mizutani/autonope/pkg/domain/interfaces"
	"github.com/m-mizutani/autonope/pkg/domain/model"
	"github.com/m-mizutani/autonope/pkg/domain/types"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// cycleState enumerates the per-cycle state machine. Keeping the
// transitions explicit avoids double commits or skipped commits hiding in
// error-handling branches.
type cycleState int

const (
	cycleStart cycleState = iota
	cycleFetching
	cycleScanning
	cycleNotifying
	cycleCommitting
	cycleDone
)

// cycle holds the data carried between states of a single run
type cycle struct {
	target   *model.WatchTarget
	lastSeen int64
	releases []*model.Release
	matched  *model.Release
}

type checker struct {
	store    interfaces.WatermarkStore
	github   interfaces.GitHubClient
	resolver interfaces.RepoResolver
	notifier interfaces.Notifier
	gate     interfaces.Gate
}

// NewChecker creates the change detector. It orchestrates one watch cycle
// per call: watermark read, release fetch with lazy identity resolution,
// keyword scan, at most one notification, and a single watermark commit.
func NewChecker(
	store interfaces.WatermarkStore,
	github interfaces.GitHubClient,
	resolver interfaces.RepoResolver,
	notifier interfaces.Notifier,
	gate interfaces.Gate,
) interfaces.CheckUseCase {
	return &checker{
		store:    store,
		github:   github,
		resolver: resolver,
		notifier: notifier,
		gate:     gate,
	}
}

// RunCycle runs exactly one watch cycle for one target. A returned error
// means the cycle failed without mutating any state; the next scheduled
// cycle starts over. When resolution succeeds mid-cycle the target's
// identity is corrected in place so later cycles reuse it.
func (x *checker) RunCycle(ctx context.Context, target *model.WatchTarget) error {
	logger := ctxlog.From(ctx).With(
		slog.String("cycle_id", uuid.NewString()),
		slog.String("target", target.Name),
	)
	ctx = ctxlog.With(ctx, logger)

	c := &cycle{target: target}

	for state := cycleStart; state != cycleDone; {
		next, err := x.step(ctx, state, c)
		if err != nil {
			return goerr.Wrap(err, "watch cycle failed",
				goerr.V("target", target.Name),
				goerr.V("repo", target.Repo),
			)
		}
		state = next
	}

	return nil
}

func (x *checker) step(ctx context.Context, state cycleState, c *cycle) (cycleState, error) {
	switch state {
	case cycleStart:
		return x.readWatermark(ctx, c)
	case cycleFetching:
		return x.fetch(ctx, c)
	case cycleScanning:
		return x.scan(ctx, c)
	case cycleNotifying:
		return x.notify(ctx, c)
	case cycleCommitting:
		return x.commit(ctx, c)
	default:
		return cycleDone, goerr.New("invalid cycle state", goerr.V("state", int(state)))
	}
}

func (x *checker) readWatermark(ctx context.Context, c *cycle) (cycleState, error) {
	lastSeen, found, err := x.store.Get(ctx, c.target.Repo)
	if err != nil {
		return cycleDone, goerr.Wrap(err, "failed to read watermark")
	}
	if !found {
		lastSeen = 0
	}
	c.lastSeen = lastSeen

	return cycleFetching, nil
}

// fetch requests the release list for the current identity. An identity
// miss (not found or unauthorized) triggers one resolution attempt on the
// original reference and one fetch retry; any further failure aborts the
// cycle.
func (x *checker) fetch(ctx context.Context, c *cycle) (cycleState, error) {
	logger := ctxlog.From(ctx)

	releases, err := x.listReleases(ctx, c.target.Repo)
	if err == nil {
		c.releases = releases
		return cycleScanning, nil
	}
	if !types.IsIdentityMiss(err) {
		return cycleDone, err
	}

	logger.Info("Release fetch missed, resolving repository",
		"repo", c.target.Repo,
		"ref", c.target.Ref,
		"error", err,
	)

	resolved, ok := x.resolver.Resolve(ctx, c.target.Ref)
	if !ok {
		return cycleDone, goerr.Wrap(err, "failed to resolve repository", goerr.V("ref", c.target.Ref))
	}

	// Adopt the corrected identity. The new key starts a fresh watermark
	// history, so re-read under it.
	c.target.Repo = resolved
	if next, err := x.readWatermark(ctx, c); err != nil {
		return next, err
	}

	releases, err = x.listReleases(ctx, resolved)
	if err != nil {
		return cycleDone, err
	}

	c.releases = releases
	return cycleScanning, nil
}

func (x *checker) listReleases(ctx context.Context, repo string) ([]*model.Release, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return nil, goerr.New("malformed repository identity",
			goerr.V("repo", repo),
			goerr.T(types.ErrTagNotFound),
		)
	}
	return x.github.ListReleases(ctx, owner, name)
}

// scan walks the release list newest first. Once an already-seen ordinal
// shows up everything older has been processed, so the scan stops. The
// first (newest) keyword match ends the scan too, bounding notifications
// to one per cycle no matter how many qualifying releases accumulated.
func (x *checker) scan(ctx context.Context, c *cycle) (cycleState, error) {
	logger := ctxlog.From(ctx)

	if len(c.releases) == 0 {
		logger.Debug("No releases found, leaving watermark untouched", "repo", c.target.Repo)
		return cycleDone, nil
	}

	for _, rel := range c.releases {
		if rel.ID <= c.lastSeen {
			break
		}

		kw, matched := rel.MatchKeyword(c.target.Keywords)
		if !matched {
			continue
		}

		logger.Info("Breaking release detected",
			"repo", c.target.Repo,
			"release_id", rel.ID,
			"keyword", kw,
			"url", rel.URL,
		)
		c.matched = rel

		if !x.gate.Enabled(ctx) {
			logger.Info("Monitoring not enabled for this deployment, skipping notification")
			return cycleCommitting, nil
		}
		return cycleNotifying, nil
	}

	return cycleCommitting, nil
}

func (x *checker) notify(ctx context.Context, c *cycle) (cycleState, error) {
	title := "AutoNope: breaking change in " + c.target.Name

	// Delivery is best effort; the notifier swallows per-channel failures
	// and the cycle commits regardless.
	x.notifier.Notify(ctx, title, c.matched.URL)

	return cycleCommitting, nil
}

// commit writes the newest observed ordinal exactly once per successful
// cycle, whether or not a keyword matched
func (x *checker) commit(ctx context.Context, c *cycle) (cycleState, error) {
	newest := c.releases[0].ID
	if err := x.store.Set(ctx, c.target.Repo, newest); err != nil {
		return cycleDone, goerr.Wrap(err, "failed to commit watermark")
	}

	ctxlog.From(ctx).Debug("Watermark committed",
		"repo", c.target.Repo,
		"release_id", newest,
	)

	return cycleDone, nil
}
