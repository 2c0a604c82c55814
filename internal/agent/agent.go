package agent

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/gitdrip/gitdrip/internal/entry"
	"github.com/gitdrip/gitdrip/internal/errors"
	"github.com/gitdrip/gitdrip/internal/git"
	"github.com/gitdrip/gitdrip/internal/journal"
	"github.com/gitdrip/gitdrip/internal/logger"
)

const (
	// minDelay is the floor for jittered delays, preventing runaway tight loops
	minDelay = 10 * time.Second

	// jitterFraction is the symmetric jitter applied when randomize is enabled
	jitterFraction = 0.2

	// backoffSteps is the number of one-second waits after an unexpected
	// cycle error
	backoffSteps = 5
)

// Config contains the settings the agent needs for one run.
type Config struct {
	RepoPath string
	FilePath string

	IntervalSeconds int
	Randomize       bool
	Schedule        string

	Push      bool
	Branch    string
	Message   string
	SkipHooks bool

	TemplatesFile string
	Prefix        string
}

// GitClient is the narrow version-control interface the loop consumes.
type GitClient interface {
	CurrentBranch(ctx context.Context) (string, error)
	Checkout(ctx context.Context, branch string) error
	CheckoutNew(ctx context.Context, branch string) error
	Stage(ctx context.Context, relPath string) error
	Commit(ctx context.Context, message string, noVerify bool) error
	Push(ctx context.Context) error
}

// Outcome is the transient record of one cycle, used for the single report
// line and the session summary.
type Outcome struct {
	Committed bool
	NoOp      bool
	Pushed    *bool
	Err       error
}

// Agent drives the commit loop: generate an entry, append it, commit,
// optionally push, report, wait, repeat.
type Agent struct {
	config  Config
	logger  logger.Logger
	git     GitClient
	journal *journal.Journal
	gen     *entry.Generator

	rng      *rand.Rand
	now      func() time.Time
	schedule cron.Schedule

	startTime      time.Time
	originalBranch string
	cycles         int
	commits        int
	pushes         int
}

// New creates an Agent with default dependencies. The template pool is
// resolved here: an unreadable or empty custom source logs a warning and
// falls back to the built-in pool.
func New(cfg Config, log logger.Logger) (*Agent, error) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	pool := entry.DefaultPool()
	if cfg.TemplatesFile != "" {
		custom, err := entry.LoadPool(cfg.TemplatesFile)
		if err != nil {
			log.Warning("Could not load templates from %s: %v - using built-in templates", cfg.TemplatesFile, err)
			log.WarningToUser("Could not load templates from %s, using built-in templates", cfg.TemplatesFile)
		} else {
			pool = custom
		}
	}

	gen := entry.NewGeneratorWithSource(pool, cfg.Prefix, rng, time.Now)
	j := journal.New(cfg.TargetPath())
	client := git.NewClient(cfg.RepoPath)

	return NewWithDeps(cfg, log, client, j, gen, rng, time.Now)
}

// NewWithDeps creates an Agent with explicit dependencies. Tests use it to
// pin the git client, the random source, and the clock.
func NewWithDeps(cfg Config, log logger.Logger, gitClient GitClient, j *journal.Journal, gen *entry.Generator, rng *rand.Rand, now func() time.Time) (*Agent, error) {
	var schedule cron.Schedule
	if cfg.Schedule != "" {
		parsed, err := cron.ParseStandard(cfg.Schedule)
		if err != nil {
			return nil, errors.NewConfigError("schedule", cfg.Schedule,
				errors.Wrap(errors.ErrInvalidConfiguration, err.Error()))
		}
		schedule = parsed
	}

	return &Agent{
		config:   cfg,
		logger:   log,
		git:      gitClient,
		journal:  j,
		gen:      gen,
		rng:      rng,
		now:      now,
		schedule: schedule,
	}, nil
}

// TargetPath returns the absolute path of the target file.
func (c Config) TargetPath() string {
	return filepath.Join(c.RepoPath, c.FilePath)
}

// Run performs startup validation and then drives the loop until ctx is
// canceled. It returns nil on a clean stop; startup failures are returned
// as errors.
func (a *Agent) Run(ctx context.Context) error {
	a.startTime = a.now()

	if err := a.initialize(ctx); err != nil {
		return err
	}

	return a.loop(ctx)
}

// initialize performs the one-time startup contract: branch detection and
// setup, target file bootstrap, startup banner.
func (a *Agent) initialize(ctx context.Context) error {
	branch, err := a.git.CurrentBranch(ctx)
	if err != nil {
		a.logger.Error("Failed to get current branch: %v", err)
		if errors.Is(err, errors.ErrGitOperationFailed) {
			return err
		}
		return errors.Wrap(errors.ErrGitOperationFailed, "failed to get current branch")
	}
	a.originalBranch = branch

	if a.config.Branch != "" {
		if err := a.setupBranch(ctx); err != nil {
			return err
		}
	}

	if err := a.journal.Ensure(); err != nil {
		return err
	}

	a.displayStartupInfo()
	return nil
}

// setupBranch switches to the configured branch, creating it when it does
// not exist yet. Failure of both is fatal.
func (a *Agent) setupBranch(ctx context.Context) error {
	if err := a.git.Checkout(ctx, a.config.Branch); err == nil {
		a.logger.StatusMessage("🌿 Switched to branch: %s", a.config.Branch)
		return nil
	}

	if err := a.git.CheckoutNew(ctx, a.config.Branch); err != nil {
		a.logger.Error("Failed to switch to or create branch %s: %v", a.config.Branch, err)
		return errors.Wrapf(errors.ErrBranchSetup, "branch %s", a.config.Branch)
	}

	a.logger.StatusMessage("🌿 Created and switched to new branch: %s", a.config.Branch)
	return nil
}

// displayStartupInfo outputs the active configuration to the user.
func (a *Agent) displayStartupInfo() {
	a.logger.StatusMessage("🔄 gitdrip started at %s", a.startTime.Format("2006-01-02 15:04:05"))
	a.logger.StatusMessage("📂 Repository: %s", a.config.RepoPath)
	a.logger.StatusMessage("📝 Target file: %s", a.config.FilePath)
	if a.schedule != nil {
		a.logger.StatusMessage("⏱️  Schedule: %s", a.config.Schedule)
	} else {
		a.logger.StatusMessage("⏱️  Interval: %ds (jitter: %t)", a.config.IntervalSeconds, a.config.Randomize)
	}
	a.logger.StatusMessage("🚀 Push: %t  Branch: %s", a.config.Push, a.branchLabel())
	a.logger.StatusMessage("❓ Press Ctrl+C to stop and view session summary")
}

func (a *Agent) branchLabel() string {
	if a.config.Branch != "" {
		return a.config.Branch
	}
	if a.originalBranch != "" {
		return a.originalBranch + " (current)"
	}
	return "(current)"
}

// loop runs cycles until the context is canceled. A single cycle's failure
// never terminates the loop.
func (a *Agent) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			a.logger.StatusMessage("Stopping — exited cleanly.")
			return nil
		default:
		}

		// The delay is fixed before the work so the post-work wait uses it.
		delay := a.nextDelay()

		outcome, err := a.runCycle(ctx)
		a.cycles++
		a.report(outcome, err)

		if err != nil {
			// Unexpected work-phase failure: short fixed backoff, then
			// straight into the next cycle without the interval wait.
			if !a.backoff(ctx) {
				a.logger.StatusMessage("Stopping — exited cleanly.")
				return nil
			}
			continue
		}

		if !a.wait(ctx, delay) {
			a.logger.StatusMessage("Stopping — exited cleanly.")
			return nil
		}
	}
}

// RunOnce executes a single cycle without waiting. Used by tests and for
// one-shot invocations.
func (a *Agent) RunOnce(ctx context.Context) (Outcome, error) {
	outcome, err := a.runCycle(ctx)
	a.cycles++
	a.report(outcome, err)
	return outcome, err
}

// runCycle performs one unit of work: generate, append, stage, commit,
// optionally push. The returned error is non-nil only for unexpected
// failures that warrant the loop-level backoff; commit no-ops and commit or
// push failures are folded into the Outcome.
func (a *Agent) runCycle(ctx context.Context) (Outcome, error) {
	line := a.gen.Line()
	if err := a.journal.Append(line); err != nil {
		return Outcome{Err: err}, err
	}

	message := fmt.Sprintf("%s — %s", a.config.Message, entry.Timestamp(a.now()))

	if err := a.git.Stage(ctx, a.config.FilePath); err != nil {
		return Outcome{Err: err}, nil
	}

	if err := a.git.Commit(ctx, message, a.config.SkipHooks); err != nil {
		if errors.Is(err, errors.ErrNothingToCommit) {
			return Outcome{NoOp: true}, nil
		}
		return Outcome{Err: err}, nil
	}
	a.commits++

	outcome := Outcome{Committed: true}
	if a.config.Push {
		pushed := true
		if err := a.git.Push(ctx); err != nil {
			pushed = false
			outcome.Err = err
		} else {
			a.pushes++
		}
		outcome.Pushed = &pushed
	}

	return outcome, nil
}

// report prints exactly one timestamped line describing the cycle outcome.
func (a *Agent) report(o Outcome, cycleErr error) {
	ts := a.now().Format("2006-01-02 15:04:05")

	switch {
	case cycleErr != nil:
		a.logger.Error("[%s] Cycle error: %v", ts, cycleErr)
	case o.NoOp:
		a.logger.InfoToUser("[%s] No commit created (nothing to commit)", ts)
	case !o.Committed:
		a.logger.WarningToUser("[%s] Commit failed: %v", ts, o.Err)
	case o.Pushed != nil && !*o.Pushed:
		a.logger.WarningToUser("[%s] Committed, but push failed: %v", ts, o.Err)
	case o.Pushed != nil:
		a.logger.Success("[%s] Committed and pushed", ts)
	default:
		a.logger.Success("[%s] Committed", ts)
	}
}

// nextDelay computes the effective delay for the upcoming wait. With a cron
// schedule the delay runs to the next activation; otherwise the base
// interval, optionally jittered by ±20% and clamped to the floor.
func (a *Agent) nextDelay() time.Duration {
	if a.schedule != nil {
		now := a.now()
		return a.schedule.Next(now).Sub(now)
	}

	base := time.Duration(a.config.IntervalSeconds) * time.Second
	if !a.config.Randomize {
		return base
	}

	offset := (a.rng.Float64()*2 - 1) * jitterFraction
	delay := time.Duration(float64(base) * (1 + offset))
	if delay < minDelay {
		delay = minDelay
	}
	return delay
}

// wait blocks for the given delay. It returns false when the context was
// canceled before the delay elapsed, so a stop request cuts the wait short.
func (a *Agent) wait(ctx context.Context, delay time.Duration) bool {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// backoff performs the post-error pause: a handful of one-second waits,
// each interruptible. Returns false when the context was canceled.
func (a *Agent) backoff(ctx context.Context) bool {
	for i := 0; i < backoffSteps; i++ {
		if !a.wait(ctx, time.Second) {
			return false
		}
	}
	return true
}

// PrintSummary prints a summary of the session.
func (a *Agent) PrintSummary() {
	duration := time.Since(a.startTime)
	hours := int(duration.Hours())
	minutes := int(duration.Minutes()) % 60
	seconds := int(duration.Seconds()) % 60

	a.logger.StatusMessage("")
	a.logger.StatusMessage("---------------------------------------------")
	a.logger.StatusMessage("📊 gitdrip Session Summary")
	a.logger.StatusMessage("---------------------------------------------")
	a.logger.StatusMessage("🔁 Cycles run: %d", a.cycles)
	a.logger.StatusMessage("✅ Commits made: %d", a.commits)
	if a.config.Push {
		a.logger.StatusMessage("🚀 Pushes: %d", a.pushes)
	}
	a.logger.StatusMessage("⏱️  Session duration: %dh %dm %ds", hours, minutes, seconds)
	a.logger.StatusMessage("🌿 Working branch: %s", a.branchLabel())
	a.logger.StatusMessage("---------------------------------------------")
	a.logger.StatusMessage("🛑 gitdrip terminated at %s", time.Now().Format("2006-01-02 15:04:05"))
}
