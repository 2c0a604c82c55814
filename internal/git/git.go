package git

import (
	"context"
	"os/exec"
	"strings"

	"github.com/gitdrip/gitdrip/internal/errors"
)

// Client wraps the narrow set of git operations the agent consumes. Every
// operation is a synchronous, blocking subprocess call against the configured
// repository; the loop depends only on the success / failure / no-op outcomes,
// never on invocation mechanics. A started git command always runs to
// completion: stop requests are honored between operations, at the loop's
// wait points, never by killing an in-flight command.
type Client struct {
	repoPath string
	executor CommandExecutor
}

// NewClient creates a Client for the given repository path using the default
// subprocess executor.
func NewClient(repoPath string) *Client {
	return NewClientWithExecutor(repoPath, NewExecExecutor())
}

// NewClientWithExecutor creates a Client with a custom executor. Used by tests
// to record and fake git invocations.
func NewClientWithExecutor(repoPath string, executor CommandExecutor) *Client {
	return &Client{
		repoPath: repoPath,
		executor: executor,
	}
}

// RepoPath returns the repository path this client operates on.
func (c *Client) RepoPath() string {
	return c.repoPath
}

// IsRepository reports whether the client's repository path is inside a git
// working tree.
func (c *Client) IsRepository(ctx context.Context) bool {
	out, err := c.runWithOutput(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// IsRepository reports whether path is inside a git working tree.
func IsRepository(ctx context.Context, path string) bool {
	return NewClient(path).IsRepository(ctx)
}

// CurrentBranch returns the name of the checked-out branch.
func (c *Client) CurrentBranch(ctx context.Context) (string, error) {
	out, err := c.runWithOutput(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Checkout switches to an existing branch.
func (c *Client) Checkout(ctx context.Context, branch string) error {
	return c.run(ctx, "checkout", branch)
}

// CheckoutNew creates a branch and switches to it.
func (c *Client) CheckoutNew(ctx context.Context, branch string) error {
	return c.run(ctx, "checkout", "-b", branch)
}

// Stage adds the given path (relative to the repository root) to the index.
func (c *Client) Stage(ctx context.Context, relPath string) error {
	return c.run(ctx, "add", "--", relPath)
}

// Commit records the staged changes with the given message. A clean index is
// reported as errors.ErrNothingToCommit, distinguishable from hard failures
// with errors.Is. noVerify bypasses commit hooks.
func (c *Client) Commit(ctx context.Context, message string, noVerify bool) error {
	args := []string{"commit"}
	if noVerify {
		args = append(args, "--no-verify")
	}
	args = append(args, "-m", message)

	_, err := c.runWithOutput(ctx, args...)
	if err != nil {
		if isNothingToCommit(err) {
			return errors.Wrap(errors.ErrNothingToCommit, "commit skipped")
		}
		return err
	}
	return nil
}

// Push updates the remote with the current branch.
func (c *Client) Push(ctx context.Context) error {
	return c.run(ctx, "push")
}

// run executes a git subcommand in the repository, discarding output.
func (c *Client) run(_ context.Context, args ...string) error {
	return c.executor.Execute(c.command(args...))
}

// runWithOutput executes a git subcommand in the repository and returns stdout.
func (c *Client) runWithOutput(_ context.Context, args ...string) (string, error) {
	return c.executor.ExecuteWithOutput(c.command(args...))
}

// command prepares a git invocation against the repository. The command is
// not bound to a context: once started it always runs to completion, so a
// stop request arriving mid-command cannot abort a half-finished commit or
// leave the index lock behind.
func (c *Client) command(args ...string) *exec.Cmd {
	baseArgs := []string{"-C", c.repoPath}
	cmd := exec.Command("git", append(baseArgs, args...)...)
	cmd.Dir = c.repoPath
	return cmd
}

// isNothingToCommit classifies a commit failure as the benign clean-index
// outcome by inspecting the captured command output. git phrases this a few
// different ways depending on version and state.
func isNothingToCommit(err error) bool {
	var gitErr *errors.GitError
	if !errors.As(err, &gitErr) {
		return false
	}
	output := strings.ToLower(gitErr.Output)
	return strings.Contains(output, "nothing to commit") ||
		strings.Contains(output, "no changes added to commit") ||
		strings.Contains(output, "nothing added to commit")
}
