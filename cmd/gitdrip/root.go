package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gitdrip/gitdrip/internal/config"
)

// NewRootCommand builds the gitdrip command. Flag defaults reflect the
// environment at construction time, so precedence is defaults, then
// GITDRIP_* variables, then the config file, then explicit flags.
func NewRootCommand(versionInfo config.VersionInfo) *cobra.Command {
	cfg := config.New()
	cfg.VersionInfo = versionInfo
	cfg.LoadFromEnvironment()

	cmd := &cobra.Command{
		Use:   "gitdrip",
		Short: "Periodic micro-commit agent for git repositories",
		Long: `gitdrip appends a small generated note to a file in a git repository
on a fixed cadence, commits it, and optionally pushes. It keeps a branch
visibly active with low-noise micro-commits until interrupted.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.FinishFlags(cmd.Flags()); err != nil {
				return err
			}

			app := NewApp(AppOptions{
				Config: cfg,
				Stdout: cmd.OutOrStdout(),
				Stderr: cmd.ErrOrStderr(),
			})
			return runWithSignals(cmd.Context(), app)
		},
	}

	cfg.SetupFlags(cmd.Flags())
	return cmd
}

// runWithSignals runs the app under a context that is canceled on SIGINT,
// SIGTERM, or SIGHUP, so the loop stops at the next wait boundary.
func runWithSignals(parent context.Context, app *App) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			_, _ = fmt.Fprintf(app.Stdout, "\nReceived signal %v, stopping gitdrip...\n", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return app.Run(ctx)
}
