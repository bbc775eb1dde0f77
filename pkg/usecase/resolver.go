package usecase

import (
	"context"
	"regexp"
	"strings"

	"github.com/m-mizutani/autonope/pkg/domain/interfaces"
	"github.com/m-mizutani/ctxlog"
)

// labelKeys are the image config labels consulted for upstream provenance,
// in priority order
var labelKeys = []string{
	"org.opencontainers.image.source",
	"org.label-schema.vcs-url",
	"org.opencontainers.image.url",
}

var githubRepoPattern = regexp.MustCompile(`github\.com[:/]([^/\s]+)/([^/.\s]+)`)

type resolver struct {
	inspector interfaces.ImageInspector
	registry  interfaces.RegistryClient
	github    interfaces.GitHubClient
}

// NewResolver creates a RepoResolver that maps a container image reference
// to its upstream GitHub repository via an ordered fallback chain: local
// image labels, registry provenance, heuristic name variants, then
// repository search.
func NewResolver(inspector interfaces.ImageInspector, registry interfaces.RegistryClient, github interfaces.GitHubClient) interfaces.RepoResolver {
	return &resolver{
		inspector: inspector,
		registry:  registry,
		github:    github,
	}
}

type resolveStage struct {
	name string
	fn   func(ctx context.Context, namespace, image, imageRef string) (string, bool)
}

// Resolve tries each stage in order and short-circuits on the first match.
// Stage errors are swallowed: a stage that cannot answer is treated as "no
// match" so the chain can proceed. Failure to resolve is a normal outcome,
// not an error.
func (x *resolver) Resolve(ctx context.Context, imageRef string) (string, bool) {
	logger := ctxlog.From(ctx)

	namespace, image, ok := strings.Cut(imageRef, "/")
	if !ok || namespace == "" || image == "" {
		return "", false
	}

	stages := []resolveStage{
		{name: "image_labels", fn: x.fromLabels},
		{name: "registry_provenance", fn: x.fromRegistry},
		{name: "name_variants", fn: x.fromNameVariants},
		{name: "repository_search", fn: x.fromSearch},
	}

	for _, stage := range stages {
		repo, found := stage.fn(ctx, namespace, image, imageRef)
		if found {
			logger.Info("Resolved image to repository",
				"image", imageRef,
				"repo", repo,
				"stage", stage.name,
			)
			return repo, true
		}
		logger.Debug("Resolution stage found no match",
			"image", imageRef,
			"stage", stage.name,
		)
	}

	return "", false
}

// fromLabels inspects the locally present image for provenance labels.
// Inability to inspect (image not pulled, daemon unavailable) is a stage
// failure, not a fatal error.
func (x *resolver) fromLabels(ctx context.Context, _, _, imageRef string) (string, bool) {
	labels, err := x.inspector.Labels(ctx, imageRef)
	if err != nil {
		ctxlog.From(ctx).Debug("Image label inspection failed", "image", imageRef, "error", err)
		return "", false
	}

	for _, key := range labelKeys {
		if repo, ok := extractGitHubRepo(labels[key]); ok {
			return repo, true
		}
	}
	return "", false
}

// fromRegistry asks the public registry for a declared source repository
func (x *resolver) fromRegistry(ctx context.Context, namespace, image, _ string) (string, bool) {
	repo, found, err := x.registry.SourceRepository(ctx, namespace, image)
	if err != nil {
		ctxlog.From(ctx).Debug("Registry provenance lookup failed",
			"namespace", namespace,
			"image", image,
			"error", err,
		)
		return "", false
	}
	return repo, found
}

// fromNameVariants probes a small set of likely repository names under the
// same namespace: the image name as-is, with a "docker-" wrapper prefix,
// and with "-" and "_" interchanged.
func (x *resolver) fromNameVariants(ctx context.Context, namespace, image, _ string) (string, bool) {
	for _, candidate := range nameVariants(image) {
		exists, err := x.github.RepoExists(ctx, namespace, candidate)
		if err != nil {
			ctxlog.From(ctx).Debug("Repository existence probe failed",
				"owner", namespace,
				"repo", candidate,
				"error", err,
			)
			continue
		}
		if exists {
			return namespace + "/" + candidate, true
		}
	}
	return "", false
}

// fromSearch is the last resort: search repositories owned by the
// namespace whose name contains the image name, taking the top result
func (x *resolver) fromSearch(ctx context.Context, namespace, image, _ string) (string, bool) {
	repo, found, err := x.github.SearchRepository(ctx, namespace, image)
	if err != nil {
		ctxlog.From(ctx).Debug("Repository search failed",
			"owner", namespace,
			"image", image,
			"error", err,
		)
		return "", false
	}
	return repo, found
}

// extractGitHubRepo pulls owner/repo out of any github.com URL form,
// including SSH style (github.com:owner/repo.git)
func extractGitHubRepo(value string) (string, bool) {
	m := githubRepoPattern.FindStringSubmatch(value)
	if m == nil {
		return "", false
	}
	return m[1] + "/" + m[2], true
}

// nameVariants returns deduplicated candidate repository names in a
// deterministic order
func nameVariants(image string) []string {
	candidates := []string{image, "docker-" + image}
	if strings.Contains(image, "-") {
		candidates = append(candidates, strings.ReplaceAll(image, "-", "_"))
	}
	if strings.Contains(image, "_") {
		candidates = append(candidates, strings.ReplaceAll(image, "_", "-"))
	}

	seen := make(map[string]struct{}, len(candidates))
	variants := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		variants = append(variants, c)
	}
	return variants
}
