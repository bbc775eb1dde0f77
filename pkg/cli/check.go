package cli

import (
	"context"
	"log/slog"

	"github.com/fatih/color"
	"github.com/m-mizutani/autonope/pkg/cli/config"
	"github.com/m-mizutani/autonope/pkg/infra/compose"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdCheck() *cli.Command {
	var (
		watchCfg   config.Watch
		dbCfg      config.Database
		githubCfg  config.GitHub
		monitorCfg config.Monitor
	)

	flags := watchCfg.Flags()
	flags = append(flags, dbCfg.Flags()...)
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, monitorCfg.Flags()...)

	return &cli.Command{
		Name:  "check",
		Usage: "Run one check cycle for every configured target and exit",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			watchConfig, err := watchCfg.Load()
			if err != nil {
				return err
			}
			if len(watchConfig.Targets) == 0 {
				return goerr.New("no watch targets configured", goerr.V("config", watchCfg.Path))
			}

			store, err := dbCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					logger.Warn("Failed to close watermark store", slog.Any("error", err))
				}
			}()

			checkUC := buildChecker(store, watchConfig, githubCfg, compose.NewGate(monitorCfg.ComposeFiles...))

			ok := color.New(color.FgGreen)
			ng := color.New(color.FgRed)

			var failed int
			for _, target := range watchConfig.Targets {
				if err := checkUC.RunCycle(ctx, target); err != nil {
					ng.Printf("✗ %s (%s): %v\n", target.Name, target.Repo, err)
					failed++
					continue
				}
				ok.Printf("✓ %s (%s)\n", target.Name, target.Repo)
			}

			if failed > 0 {
				return goerr.New("some targets failed", goerr.V("failed", failed))
			}
			return nil
		},
	}
}
