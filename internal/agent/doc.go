// Package agent implements the scheduler / loop controller at the heart of
// gitdrip.
//
// The agent owns the run loop: it computes the next delay (base interval,
// optional ±20% jitter clamped to a 10s floor, or a cron schedule), performs
// one unit of work (generate entry → append → stage → commit → optionally
// push), reports the outcome as a single timestamped line, and then performs
// an interruptible wait before repeating.
//
// Cancellation is cooperative: the context is checked at safe points (cycle
// boundaries and during waits), never preempting an in-flight git command.
// A commit that finds nothing to commit is a distinguishable no-op, not an
// error. Commit and push failures are confined to their cycle; an unexpected
// work-phase failure triggers a short fixed backoff before the next cycle.
// The loop exits only through context cancellation or a fatal startup
// failure.
package agent
