package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/gitdrip/gitdrip/internal/agent"
	"github.com/gitdrip/gitdrip/internal/config"
	internalErrors "github.com/gitdrip/gitdrip/internal/errors"
	"github.com/gitdrip/gitdrip/internal/git"
	"github.com/gitdrip/gitdrip/internal/lock"
	"github.com/gitdrip/gitdrip/internal/logger"
)

// Dripper drives the commit loop
type Dripper interface {
	PrintSummary()
	Run(ctx context.Context) error
}

// Locker manages file locking
type Locker interface {
	Acquire() error
	Release() error
}

// AppOptions contains app configuration and dependencies
type AppOptions struct {
	// Required
	Config *config.Config

	// Optional components
	Logger  logger.Logger
	Locker  Locker
	Dripper Dripper

	// I/O dependencies
	Stdout io.Writer
	Stderr io.Writer

	// System dependencies
	ExecLookPath func(file string) (string, error)
	IsRepository func(ctx context.Context, path string) bool
}

// App is the main gitdrip application
type App struct {
	Config  *config.Config
	Logger  logger.Logger
	Locker  Locker
	Dripper Dripper

	// I/O streams
	Stdout io.Writer
	Stderr io.Writer

	// System dependencies
	execLookPath func(file string) (string, error)
	isRepository func(ctx context.Context, path string) bool
}

// NewApp creates an App with custom dependencies
func NewApp(opts AppOptions) *App {
	if opts.Config == nil {
		panic("Config is required in AppOptions")
	}

	app := &App{
		Config:       opts.Config,
		Logger:       opts.Logger,
		Locker:       opts.Locker,
		Dripper:      opts.Dripper,
		Stdout:       opts.Stdout,
		Stderr:       opts.Stderr,
		execLookPath: opts.ExecLookPath,
		isRepository: opts.IsRepository,
	}

	// Set defaults for nil dependencies
	if app.Stdout == nil {
		app.Stdout = os.Stdout
	}
	if app.Stderr == nil {
		app.Stderr = os.Stderr
	}
	if app.execLookPath == nil {
		app.execLookPath = exec.LookPath
	}
	if app.isRepository == nil {
		app.isRepository = git.IsRepository
	}

	return app
}

// Initialize sets up components not provided during construction
func (a *App) Initialize() error {
	if err := a.Config.Finalize(); err != nil {
		if internalErrors.Is(err, internalErrors.ErrInvalidConfiguration) {
			return err
		}
		return internalErrors.Wrap(internalErrors.ErrInvalidConfiguration, err.Error())
	}

	if a.Logger == nil {
		log := logger.NewWithOutput(a.Config.Debug, a.Config.LogFile, !a.Config.Quiet, a.Stdout, a.Stderr)
		a.Logger = log
	}

	if a.Locker == nil {
		locker, err := lock.New(a.Config.RepoPath)
		if err != nil {
			return internalErrors.Wrap(err, "failed to initialize lock")
		}
		a.Locker = locker
	}

	if a.Dripper == nil {
		dripper, err := agent.New(agent.Config{
			RepoPath:        a.Config.RepoPath,
			FilePath:        a.Config.FilePath,
			IntervalSeconds: a.Config.IntervalSeconds,
			Randomize:       a.Config.Randomize,
			Schedule:        a.Config.Schedule,
			Push:            a.Config.Push,
			Branch:          a.Config.Branch,
			Message:         a.Config.Message,
			SkipHooks:       a.Config.SkipHooks,
			TemplatesFile:   a.Config.TemplatesFile,
			Prefix:          a.Config.Prefix,
		}, a.Logger)
		if err != nil {
			return fmt.Errorf("failed to create agent: %w", err)
		}
		a.Dripper = dripper
	}

	return nil
}

// Run executes the application with the given context
// Handles special flags and runs the commit loop
func (a *App) Run(ctx context.Context) error {
	if err := a.Initialize(); err != nil {
		return err
	}

	// Handle special flags first
	if a.Config.Version {
		a.ShowVersion()
		return nil
	}

	// Ensure we always clean up logger / lock, even on early error paths
	defer func() {
		if err := a.Close(); err != nil {
			_, _ = fmt.Fprintf(a.Stderr, "❌ Error during cleanup: %v\n", err)
		}
	}()

	// Verify prerequisites
	if err := a.checkRequiredCommands(); err != nil {
		_, _ = fmt.Fprintf(a.Stderr, "❌ Error: %v. Please install it and try again.\n", err)
		return err
	}

	if !a.isRepository(ctx, a.Config.RepoPath) {
		return internalErrors.Wrapf(internalErrors.ErrNotGitRepository, "%s", a.Config.RepoPath)
	}
	a.Logger.Info("Git repository verified: %s", a.Config.RepoPath)

	// Acquire resource lock
	if err := a.Locker.Acquire(); err != nil {
		if internalErrors.Is(err, internalErrors.ErrAlreadyRunning) {
			return err
		}
		return internalErrors.Wrap(internalErrors.ErrLockAcquisitionFailure, err.Error())
	}

	// Run main commit loop
	err := a.Dripper.Run(ctx)

	// A clean stop (nil or context cancellation) still gets a summary
	if err == nil || errors.Is(err, context.Canceled) {
		a.Dripper.PrintSummary()
	}
	return err
}

// ShowVersion displays version information
func (a *App) ShowVersion() {
	_, _ = fmt.Fprintf(a.Stdout, "gitdrip %s (%s) built on %s\n",
		a.Config.VersionInfo.Version,
		a.Config.VersionInfo.Commit,
		a.Config.VersionInfo.Date)
}

// checkRequiredCommands verifies git is available in PATH
func (a *App) checkRequiredCommands() error {
	_, err := a.execLookPath("git")
	if err != nil {
		return fmt.Errorf("git is not found in PATH")
	}
	return nil
}

// Close releases resources held by the App
func (a *App) Close() error {
	var errs []error

	if a.Locker != nil {
		if err := a.Locker.Release(); err != nil {
			if a.Logger != nil {
				a.Logger.Error("Failed to release lock during cleanup: %v", err)
			} else {
				_, _ = fmt.Fprintf(a.Stderr, "❌ Failed to release lock during cleanup: %v\n", err)
			}
			errs = append(errs, err)
		}
	}

	if a.Logger != nil {
		if err := a.Logger.Close(); err != nil {
			_, _ = fmt.Fprintf(a.Stderr, "❌ Failed to close logger: %v\n", err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
