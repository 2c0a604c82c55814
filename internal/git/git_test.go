package git

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitdrip/gitdrip/internal/errors"
)

func failingExecutor(output string) *MockCommandExecutor {
	m := NewMockCommandExecutor()
	m.ExecuteWithOutputFn = func(cmd *exec.Cmd) (string, error) {
		op, args := splitArgs(cmd)
		wrapped := errors.Wrap(errors.ErrGitOperationFailed, "exit status 1")
		return "", errors.NewGitError(op, args, wrapped, output)
	}
	m.ExecuteFn = func(cmd *exec.Cmd) error {
		op, args := splitArgs(cmd)
		wrapped := errors.Wrap(errors.ErrGitOperationFailed, "exit status 1")
		return errors.NewGitError(op, args, wrapped, output)
	}
	return m
}

func TestCurrentBranchTrimsOutput(t *testing.T) {
	mock := NewMockCommandExecutor()
	mock.Output = "main\n"
	client := NewClientWithExecutor("/repo", mock)

	branch, err := client.CurrentBranch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "main", branch)
	assert.Equal(t, []string{"rev-parse", "--abbrev-ref", "HEAD"}, subcommand(mock.LastCmd))
}

func TestStageUsesPathspecSeparator(t *testing.T) {
	mock := NewMockCommandExecutor()
	client := NewClientWithExecutor("/repo", mock)

	require.NoError(t, client.Stage(context.Background(), "notes/TODO.md"))
	assert.Equal(t, []string{"add", "--", "notes/TODO.md"}, subcommand(mock.LastCmd))
}

func TestCommitArguments(t *testing.T) {
	tests := []struct {
		name     string
		noVerify bool
		want     []string
	}{
		{
			name: "hooks enabled",
			want: []string{"commit", "-m", "chore: micro update — 2025-01-02T03:04:05Z"},
		},
		{
			name:     "hooks bypassed",
			noVerify: true,
			want:     []string{"commit", "--no-verify", "-m", "chore: micro update — 2025-01-02T03:04:05Z"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockCommandExecutor()
			client := NewClientWithExecutor("/repo", mock)

			err := client.Commit(context.Background(), "chore: micro update — 2025-01-02T03:04:05Z", tt.noVerify)
			require.NoError(t, err)
			assert.Equal(t, tt.want, subcommand(mock.LastCmd))
		})
	}
}

func TestCommitCleanIndexIsNoOp(t *testing.T) {
	outputs := []string{
		"On branch main\nnothing to commit, working tree clean",
		"no changes added to commit (use \"git add\")",
		"nothing added to commit but untracked files present",
	}

	for _, output := range outputs {
		client := NewClientWithExecutor("/repo", failingExecutor(output))

		err := client.Commit(context.Background(), "msg", false)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrNothingToCommit), "output %q should classify as no-op", output)
		assert.False(t, errors.Is(err, errors.ErrGitOperationFailed))
	}
}

func TestCommitHardFailureIsNotNoOp(t *testing.T) {
	client := NewClientWithExecutor("/repo", failingExecutor("fatal: Unable to create index.lock: File exists"))

	err := client.Commit(context.Background(), "msg", false)
	require.Error(t, err)
	assert.False(t, errors.Is(err, errors.ErrNothingToCommit))
	assert.True(t, errors.Is(err, errors.ErrGitOperationFailed))
}

func TestCheckoutFallbackSequence(t *testing.T) {
	mock := NewMockCommandExecutor()
	client := NewClientWithExecutor("/repo", mock)
	ctx := context.Background()

	require.NoError(t, client.Checkout(ctx, "drip"))
	assert.Equal(t, []string{"checkout", "drip"}, subcommand(mock.LastCmd))

	require.NoError(t, client.CheckoutNew(ctx, "drip"))
	assert.Equal(t, []string{"checkout", "-b", "drip"}, subcommand(mock.LastCmd))
}

func TestPush(t *testing.T) {
	mock := NewMockCommandExecutor()
	client := NewClientWithExecutor("/repo", mock)

	require.NoError(t, client.Push(context.Background()))
	assert.Equal(t, []string{"push"}, subcommand(mock.LastCmd))
}

func TestPushFailurePropagates(t *testing.T) {
	client := NewClientWithExecutor("/repo", failingExecutor("fatal: could not read from remote repository"))

	err := client.Push(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrGitOperationFailed))
}

func TestIsRepositoryUsesExecutor(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   bool
	}{
		{name: "inside work tree", output: "true\n", want: true},
		{name: "bare repository", output: "false\n", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockCommandExecutor()
			mock.Output = tt.output
			client := NewClientWithExecutor("/repo", mock)

			assert.Equal(t, tt.want, client.IsRepository(context.Background()))
			assert.Equal(t, []string{"rev-parse", "--is-inside-work-tree"}, subcommand(mock.LastCmd))
		})
	}

	t.Run("command failure", func(t *testing.T) {
		client := NewClientWithExecutor("/repo", failingExecutor("fatal: not a git repository"))
		assert.False(t, client.IsRepository(context.Background()))
	})
}

func TestCanceledContextDoesNotKillCommand(t *testing.T) {
	mock := NewMockCommandExecutor()
	client := NewClientWithExecutor("/repo", mock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, client.Commit(ctx, "msg", false))
	require.NotNil(t, mock.LastCmd)
	// A command bound to a context carries a Cancel func that kills the
	// process when the context ends; git invocations must never have one.
	assert.Nil(t, mock.LastCmd.Cancel, "git commands must run to completion once started")

	require.NoError(t, client.Push(ctx))
	assert.Nil(t, mock.LastCmd.Cancel)
}

func TestCommandTargetsRepository(t *testing.T) {
	mock := NewMockCommandExecutor()
	client := NewClientWithExecutor("/some/repo", mock)

	require.NoError(t, client.Push(context.Background()))
	require.GreaterOrEqual(t, len(mock.LastCmd.Args), 3)
	assert.Equal(t, "-C", mock.LastCmd.Args[1])
	assert.Equal(t, "/some/repo", mock.LastCmd.Args[2])
	assert.Equal(t, "/some/repo", mock.LastCmd.Dir)
}

func TestSplitArgs(t *testing.T) {
	cmd := exec.Command("git", "-C", "/repo", "commit", "-m", "msg")
	op, args := splitArgs(cmd)
	assert.Equal(t, "commit", op)
	assert.Equal(t, []string{"-m", "msg"}, args)
}
