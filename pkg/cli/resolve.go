package cli

import (
	"context"

	"github.com/fatih/color"
	"github.com/m-mizutani/autonope/pkg/cli/config"
	ghinfra "github.com/m-mizutani/autonope/pkg/infra/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdResolve() *cli.Command {
	var githubCfg config.GitHub

	return &cli.Command{
		Name:      "resolve",
		Usage:     "Resolve a container image reference to its upstream GitHub repository",
		ArgsUsage: "<namespace/image>",
		Flags:     githubCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return goerr.New("exactly one image reference is required")
			}
			imageRef := c.Args().First()

			githubClient := ghinfra.NewClient(ghinfra.WithToken(githubCfg.Token))
			resolver := buildResolver(githubClient)

			repo, found := resolver.Resolve(ctx, imageRef)
			if !found {
				color.New(color.FgRed).Printf("✗ %s: no upstream repository found\n", imageRef)
				return goerr.New("failed to resolve image", goerr.V("image", imageRef))
			}

			color.New(color.FgGreen).Printf("✓ %s → github.com/%s\n", imageRef, repo)
			return nil
		},
	}
}
