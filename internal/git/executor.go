package git

import (
	"bytes"
	"os/exec"
	"strings"

	"github.com/gitdrip/gitdrip/internal/errors"
)

// CommandExecutor abstracts subprocess execution so tests can substitute a
// mock and record invocations instead of running git.
type CommandExecutor interface {
	// Execute runs a command, discarding its output.
	Execute(cmd *exec.Cmd) error

	// ExecuteWithOutput runs a command and returns its stdout.
	ExecuteWithOutput(cmd *exec.Cmd) (string, error)
}

// ExecExecutor is the default CommandExecutor backed by os/exec.
type ExecExecutor struct{}

// NewExecExecutor creates a new ExecExecutor.
func NewExecExecutor() *ExecExecutor {
	return &ExecExecutor{}
}

// Execute implements CommandExecutor.Execute.
func (e *ExecExecutor) Execute(cmd *exec.Cmd) error {
	var stderr bytes.Buffer
	if cmd.Stderr == nil {
		cmd.Stderr = &stderr
	}

	if err := cmd.Run(); err != nil {
		op, args := splitArgs(cmd)
		wrapped := errors.Wrap(errors.ErrGitOperationFailed, err.Error())
		return errors.NewGitError(op, args, wrapped, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// ExecuteWithOutput implements CommandExecutor.ExecuteWithOutput.
func (e *ExecExecutor) ExecuteWithOutput(cmd *exec.Cmd) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		op, args := splitArgs(cmd)
		wrapped := errors.Wrap(errors.ErrGitOperationFailed, err.Error())
		// git reports "nothing to commit" on stdout, so keep both streams
		// available to callers classifying the failure.
		output := strings.TrimSpace(stderr.String() + stdout.String())
		return stdout.String(), errors.NewGitError(op, args, wrapped, output)
	}

	return stdout.String(), nil
}

// splitArgs extracts the git subcommand and its arguments from a prepared
// command for error reporting. The leading "git -C <path>" prefix is elided.
func splitArgs(cmd *exec.Cmd) (string, []string) {
	args := cmd.Args
	if len(args) >= 3 && args[1] == "-C" {
		args = args[3:]
	} else if len(args) >= 1 {
		args = args[1:]
	}
	if len(args) == 0 {
		return "", nil
	}
	return args[0], args[1:]
}
