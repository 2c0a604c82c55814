// Package git provides the version-control backend consumed by the commit
// loop: working-tree detection, branch query and switching, staging, commits
// with a distinguishable "nothing to commit" outcome, and pushes.
//
// All operations shell out to the git binary via a CommandExecutor interface,
// so tests can substitute a mock executor and exercise the surrounding logic
// without a repository. No timeouts are imposed on individual commands; a hung
// git invocation blocks the caller.
package git
