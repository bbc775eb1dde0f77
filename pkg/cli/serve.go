package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/autonope/pkg/cli/config"
	controller "github.com/m-mizutani/autonope/pkg/controller/http"
	"github.com/m-mizutani/autonope/pkg/controller/scheduler"
	"github.com/m-mizutani/autonope/pkg/infra/compose"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		watchCfg   config.Watch
		dbCfg      config.Database
		serverCfg  config.Server
		githubCfg  config.GitHub
		sentryCfg  config.Sentry
		monitorCfg config.Monitor
	)

	flags := watchCfg.Flags()
	flags = append(flags, dbCfg.Flags()...)
	flags = append(flags, serverCfg.Flags()...)
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)
	flags = append(flags, monitorCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Run the release watcher daemon",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			watchConfig, err := watchCfg.Load()
			if err != nil {
				return err
			}
			if len(watchConfig.Targets) == 0 {
				return goerr.New("no watch targets configured", goerr.V("config", watchCfg.Path))
			}

			sentryEnabled, err := sentryCfg.Configure()
			if err != nil {
				return err
			}
			if sentryEnabled {
				defer sentry.Flush(2 * time.Second)
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

			schedulerOpts := []scheduler.Option{
				scheduler.WithCheckOnStart(monitorCfg.CheckOnStart),
			}
			if sentryEnabled {
				schedulerOpts = append(schedulerOpts, scheduler.WithErrorHook(func(err error) {
					sentry.CaptureException(err)
				}))
			}
			sched := scheduler.New(checkUC, watchConfig.Targets, schedulerOpts...)

			logger.Info("Starting autonope",
				slog.Int("targets", len(watchConfig.Targets)),
				slog.String("addr", serverCfg.Addr),
			)

			runCtx, cancel := context.WithCancel(ctx)
			defer cancel()

			var server *controller.Server
			if serverCfg.Addr != "" {
				server, err = controller.NewServer(runCtx,
					controller.WithAddr(serverCfg.Addr),
					controller.WithTargetCount(len(watchConfig.Targets)),
				)
				if err != nil {
					return goerr.Wrap(err, "failed to create HTTP server")
				}

				go func() {
					logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
					if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						logger.Error("HTTP server error", slog.Any("error", err))
					}
				}()
			}

			schedDone := make(chan struct{})
			go func() {
				sched.Run(runCtx)
				close(schedDone)
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			cancel()
			<-schedDone

			if server != nil {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer shutdownCancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
			}

			logger.Info("Shutdown complete")
			return nil
		},
	}
}
