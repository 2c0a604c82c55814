// Package lock provides a per-repository mutual exclusion mechanism so that
// only one gitdrip instance appends and commits to a given repository at a
// time.
//
// The lock is a pidfile in the system temp directory, named after a hash of
// the repository path and protected with a non-blocking flock. Stale locks
// left behind by crashed processes are detected by probing the recorded PID
// and are reclaimed automatically. A lock held by a live process surfaces as
// errors.ErrAlreadyRunning, which the application treats as a fatal startup
// failure.
package lock
