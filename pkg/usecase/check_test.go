package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/autonope/pkg/domain/interfaces"
	"github.com/m-mizutani/autonope/pkg/domain/model"
	"github.com/m-mizutani/autonope/pkg/domain/types"
	"github.com/m-mizutani/autonope/pkg/infra/memory"
	"github.com/m-mizutani/autonope/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

// mockGitHub is a hand-written stub for the GitHub client
type mockGitHub struct {
	listFunc   func(ctx context.Context, owner, repo string) ([]*model.Release, error)
	listCalls  []string
	existsFunc func(ctx context.Context, owner, repo string) (bool, error)
	searchFunc func(ctx context.Context, owner, name string) (string, bool, error)
}

func (m *mockGitHub) ListReleases(ctx context.Context, owner, repo string) ([]*model.Release, error) {
	m.listCalls = append(m.listCalls, owner+"/"+repo)
	if m.listFunc != nil {
		return m.listFunc(ctx, owner, repo)
	}
	return nil, errors.New("mock not configured")
}

func (m *mockGitHub) RepoExists(ctx context.Context, owner, repo string) (bool, error) {
	if m.existsFunc != nil {
		return m.existsFunc(ctx, owner, repo)
	}
	return false, nil
}

func (m *mockGitHub) SearchRepository(ctx context.Context, owner, name string) (string, bool, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, owner, name)
	}
	return "", false, nil
}

type mockNotifier struct {
	titles []string
	bodies []string
}

func (m *mockNotifier) Notify(_ context.Context, title, body string) {
	m.titles = append(m.titles, title)
	m.bodies = append(m.bodies, body)
}

type mockResolver struct {
	repo  string
	found bool
	calls int
}

func (m *mockResolver) Resolve(_ context.Context, _ string) (string, bool) {
	m.calls++
	return m.repo, m.found
}

type staticGate bool

func (g staticGate) Enabled(context.Context) bool { return bool(g) }

func notFoundErr() error {
	return goerr.New("repository not found", goerr.T(types.ErrTagNotFound))
}

func newTarget(keywords ...string) *model.WatchTarget {
	return model.NewWatchTarget("Grafana", "grafana/grafana", keywords, 0)
}

func mustGet(t *testing.T, store interfaces.WatermarkStore, repo string) (int64, bool) {
	t.Helper()
	id, found, err := store.Get(context.Background(), repo)
	gt.NoError(t, err)
	return id, found
}

func TestRunCycle_BreakingReleaseNotifiesAndCommits(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	notifier := &mockNotifier{}
	github := &mockGitHub{
		listFunc: func(ctx context.Context, owner, repo string) ([]*model.Release, error) {
			return []*model.Release{
				{ID: 5, Body: "BREAKING: removes flag", URL: "https://example.com/r/5"},
				{ID: 4, Body: "fix"},
			}, nil
		},
	}

	uc := usecase.NewChecker(store, github, &mockResolver{}, notifier, staticGate(true))
	target := newTarget("breaking")

	gt.NoError(t, uc.RunCycle(ctx, target))

	gt.Number(t, len(notifier.titles)).Equal(1)
	gt.String(t, notifier.titles[0]).Contains("Grafana")
	gt.Value(t, notifier.bodies[0]).Equal("https://example.com/r/5")

	id, found := mustGet(t, store, "grafana/grafana")
	gt.Value(t, found).Equal(true)
	gt.Value(t, id).Equal(int64(5))
}

func TestRunCycle_EmptyReleaseListLeavesWatermarkUntouched(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	notifier := &mockNotifier{}
	github := &mockGitHub{
		listFunc: func(ctx context.Context, owner, repo string) ([]*model.Release, error) {
			return []*model.Release{}, nil
		},
	}

	uc := usecase.NewChecker(store, github, &mockResolver{}, notifier, staticGate(true))

	gt.NoError(t, uc.RunCycle(ctx, newTarget("breaking")))

	gt.Number(t, len(notifier.titles)).Equal(0)
	_, found := mustGet(t, store, "grafana/grafana")
	gt.Value(t, found).Equal(false)
}

func TestRunCycle_CommitsNewestEvenWithoutMatch(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	notifier := &mockNotifier{}
	github := &mockGitHub{
		listFunc: func(ctx context.Context, owner, repo string) ([]*model.Release, error) {
			return []*model.Release{
				{ID: 12, Body: "routine maintenance"},
				{ID: 11, Body: "fix typo"},
			}, nil
		},
	}

	uc := usecase.NewChecker(store, github, &mockResolver{}, notifier, staticGate(true))

	gt.NoError(t, uc.RunCycle(ctx, newTarget("breaking")))

	gt.Number(t, len(notifier.titles)).Equal(0)
	id, found := mustGet(t, store, "grafana/grafana")
	gt.Value(t, found).Equal(true)
	gt.Value(t, id).Equal(int64(12))
}

func TestRunCycle_AtMostOneNotificationPerCycle(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	notifier := &mockNotifier{}
	github := &mockGitHub{
		listFunc: func(ctx context.Context, owner, repo string) ([]*model.Release, error) {
			return []*model.Release{
				{ID: 9, Body: "breaking change in API", URL: "https://example.com/r/9"},
				{ID: 8, Body: "another breaking change", URL: "https://example.com/r/8"},
				{ID: 7, Body: "breaking again", URL: "https://example.com/r/7"},
			}, nil
		},
	}

	uc := usecase.NewChecker(store, github, &mockResolver{}, notifier, staticGate(true))

	gt.NoError(t, uc.RunCycle(ctx, newTarget("breaking")))

	// Only the newest matching release is reported
	gt.Number(t, len(notifier.titles)).Equal(1)
	gt.Value(t, notifier.bodies[0]).Equal("https://example.com/r/9")

	id, _ := mustGet(t, store, "grafana/grafana")
	gt.Value(t, id).Equal(int64(9))
}

func TestRunCycle_Idempotence(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	notifier := &mockNotifier{}
	github := &mockGitHub{
		listFunc: func(ctx context.Context, owner, repo string) ([]*model.Release, error) {
			return []*model.Release{
				{ID: 5, Body: "BREAKING: removes flag", URL: "https://example.com/r/5"},
				{ID: 4, Body: "fix"},
			}, nil
		},
	}

	uc := usecase.NewChecker(store, github, &mockResolver{}, notifier, staticGate(true))
	target := newTarget("breaking")

	gt.NoError(t, uc.RunCycle(ctx, target))
	gt.NoError(t, uc.RunCycle(ctx, target))

	// Second cycle with no new releases: same watermark, no second notification
	gt.Number(t, len(notifier.titles)).Equal(1)
	id, _ := mustGet(t, store, "grafana/grafana")
	gt.Value(t, id).Equal(int64(5))
}

func TestRunCycle_ScanStopsAtWatermark(t *testing.T) {
	ctx := context.Background()
	releases := []*model.Release{
		{ID: 5, Body: "BREAKING: removes flag", URL: "https://example.com/r/5"},
		{ID: 4, Body: "fix"},
	}
	github := &mockGitHub{
		listFunc: func(ctx context.Context, owner, repo string) ([]*model.Release, error) {
			return releases, nil
		},
	}

	t.Run("watermark below match", func(t *testing.T) {
		store := memory.New()
		gt.NoError(t, store.Set(ctx, "grafana/grafana", 4))
		notifier := &mockNotifier{}

		uc := usecase.NewChecker(store, github, &mockResolver{}, notifier, staticGate(true))
		gt.NoError(t, uc.RunCycle(ctx, newTarget("breaking")))

		gt.Number(t, len(notifier.titles)).Equal(1)
		id, _ := mustGet(t, store, "grafana/grafana")
		gt.Value(t, id).Equal(int64(5))
	})

	t.Run("watermark at newest", func(t *testing.T) {
		store := memory.New()
		gt.NoError(t, store.Set(ctx, "grafana/grafana", 5))
		notifier := &mockNotifier{}

		uc := usecase.NewChecker(store, github, &mockResolver{}, notifier, staticGate(true))
		gt.NoError(t, uc.RunCycle(ctx, newTarget("breaking")))

		gt.Number(t, len(notifier.titles)).Equal(0)
		id, _ := mustGet(t, store, "grafana/grafana")
		gt.Value(t, id).Equal(int64(5))
	})
}

func TestRunCycle_GateDisabledSkipsNotificationButCommits(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	notifier := &mockNotifier{}
	github := &mockGitHub{
		listFunc: func(ctx context.Context, owner, repo string) ([]*model.Release, error) {
			return []*model.Release{
				{ID: 5, Body: "breaking change", URL: "https://example.com/r/5"},
			}, nil
		},
	}

	uc := usecase.NewChecker(store, github, &mockResolver{}, notifier, staticGate(false))

	gt.NoError(t, uc.RunCycle(ctx, newTarget("breaking")))

	gt.Number(t, len(notifier.titles)).Equal(0)
	id, _ := mustGet(t, store, "grafana/grafana")
	gt.Value(t, id).Equal(int64(5))
}

func TestRunCycle_NotFoundTriggersResolverAndCommitsUnderNewKey(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	notifier := &mockNotifier{}
	resolver := &mockResolver{repo: "grafana/grafana-oss", found: true}
	github := &mockGitHub{
		listFunc: func(ctx context.Context, owner, repo string) ([]*model.Release, error) {
			if repo == "grafana" {
				return nil, notFoundErr()
			}
			return []*model.Release{
				{ID: 21, Body: "breaking change", URL: "https://example.com/r/21"},
			}, nil
		},
	}

	uc := usecase.NewChecker(store, github, resolver, notifier, staticGate(true))
	target := newTarget("breaking")

	gt.NoError(t, uc.RunCycle(ctx, target))

	gt.Number(t, resolver.calls).Equal(1)
	gt.Value(t, target.Repo).Equal("grafana/grafana-oss")

	// Watermark lands under the resolved identity, not the original reference
	id, found := mustGet(t, store, "grafana/grafana-oss")
	gt.Value(t, found).Equal(true)
	gt.Value(t, id).Equal(int64(21))

	_, foundOld := mustGet(t, store, "grafana/grafana")
	gt.Value(t, foundOld).Equal(false)
}

func TestRunCycle_ResolutionFailureAbortsWithoutCommit(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	notifier := &mockNotifier{}
	github := &mockGitHub{
		listFunc: func(ctx context.Context, owner, repo string) ([]*model.Release, error) {
			return nil, notFoundErr()
		},
	}

	uc := usecase.NewChecker(store, github, &mockResolver{found: false}, notifier, staticGate(true))

	gt.Error(t, uc.RunCycle(ctx, newTarget("breaking")))

	gt.Number(t, len(notifier.titles)).Equal(0)
	_, found := mustGet(t, store, "grafana/grafana")
	gt.Value(t, found).Equal(false)
}

func TestRunCycle_TransientErrorDoesNotResolve(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	resolver := &mockResolver{repo: "grafana/grafana-oss", found: true}
	github := &mockGitHub{
		listFunc: func(ctx context.Context, owner, repo string) ([]*model.Release, error) {
			return nil, errors.New("connection reset")
		},
	}

	uc := usecase.NewChecker(store, github, resolver, &mockNotifier{}, staticGate(true))
	target := newTarget("breaking")

	gt.Error(t, uc.RunCycle(ctx, target))

	// Transient failures abort the cycle without touching the identity
	gt.Number(t, resolver.calls).Equal(0)
	gt.Value(t, target.Repo).Equal("grafana/grafana")
	_, found := mustGet(t, store, "grafana/grafana")
	gt.Value(t, found).Equal(false)
}

func TestRunCycle_KeywordMatchIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	notifier := &mockNotifier{}
	github := &mockGitHub{
		listFunc: func(ctx context.Context, owner, repo string) ([]*model.Release, error) {
			return []*model.Release{
				{ID: 3, Title: "v2.0.0", Body: "This release contains a BREAKING Change", URL: "https://example.com/r/3"},
			}, nil
		},
	}

	uc := usecase.NewChecker(store, github, &mockResolver{}, notifier, staticGate(true))

	gt.NoError(t, uc.RunCycle(ctx, newTarget("breaking change")))

	gt.Number(t, len(notifier.titles)).Equal(1)
}
