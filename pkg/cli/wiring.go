package cli

import (
	"github.com/m-mizutani/autonope/pkg/cli/config"
	"github.com/m-mizutani/autonope/pkg/domain/interfaces"
	"github.com/m-mizutani/autonope/pkg/infra/docker"
	"github.com/m-mizutani/autonope/pkg/infra/dockerhub"
	ghinfra "github.com/m-mizutani/autonope/pkg/infra/github"
	"github.com/m-mizutani/autonope/pkg/infra/notify"
	"github.com/m-mizutani/autonope/pkg/usecase"
)

// buildResolver assembles the image-to-repository resolver with its real
// backends: local daemon inspection, Docker Hub provenance, and GitHub
func buildResolver(githubClient interfaces.GitHubClient) interfaces.RepoResolver {
	return usecase.NewResolver(
		docker.NewInspector(),
		dockerhub.NewClient(),
		githubClient,
	)
}

// buildNotifier turns configured notification destinations into a fan-out
// notifier. Without any destination it falls back to the log channel so
// detections remain visible.
func buildNotifier(settings config.NotifySettings) interfaces.Notifier {
	var channels []notify.Channel
	for _, ch := range settings.Slack {
		channels = append(channels, notify.NewSlack(ch.WebhookURL))
	}
	for _, ch := range settings.Discord {
		channels = append(channels, notify.NewDiscord(ch.WebhookURL))
	}
	for _, ch := range settings.Pushover {
		channels = append(channels, notify.NewPushover(ch.Token, ch.User))
	}

	if len(channels) == 0 {
		channels = append(channels, notify.NewLog())
	}

	return notify.New(channels...)
}

// buildChecker wires the change detector from configuration
func buildChecker(store interfaces.WatermarkStore, watchConfig *config.WatchConfig, githubCfg config.GitHub, gate interfaces.Gate) interfaces.CheckUseCase {
	githubClient := ghinfra.NewClient(ghinfra.WithToken(githubCfg.Token))

	return usecase.NewChecker(
		store,
		githubClient,
		buildResolver(githubClient),
		buildNotifier(watchConfig.Notify),
		gate,
	)
}
