package lock

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"

	"github.com/gitdrip/gitdrip/internal/errors"
)

// Locker prevents concurrent gitdrip instances from appending to the same
// repository. The lock is a flock-ed pidfile in the temp directory, keyed on
// a hash of the repository path.
type Locker struct {
	lockFile string
	lockFd   *os.File
	pid      int
	acquired bool
}

// New creates a Locker for the specified repository path.
func New(repoPath string) (*Locker, error) {
	if runtime.GOOS == "windows" {
		return nil, errors.NewLockError("", 0,
			errors.Wrap(errors.ErrLockAcquisitionFailure,
				"gitdrip currently only supports Unix-like operating systems"))
	}

	repoHash := fmt.Sprintf("%x", sha256.Sum256([]byte(repoPath)))[:16]
	lockFile := filepath.Join(os.TempDir(), fmt.Sprintf("gitdrip-%s.lock", repoHash))

	return &Locker{
		lockFile: lockFile,
		pid:      os.Getpid(),
	}, nil
}

// LockFile returns the path of the lock file.
func (l *Locker) LockFile() string {
	return l.lockFile
}

// Acquire tries to take the lock, recovering stale locks left behind by dead
// processes. Returns errors.ErrAlreadyRunning when a live instance holds it.
func (l *Locker) Acquire() error {
	err := l.createAndLock(os.O_CREATE | os.O_EXCL | os.O_RDWR)
	if err == nil {
		return nil
	}
	if os.IsExist(err) {
		return l.acquireExisting()
	}
	return err
}

// createAndLock opens the lock file with the given flags, flocks it, and
// writes our PID.
func (l *Locker) createAndLock(flags int) error {
	var err error
	l.lockFd, err = os.OpenFile(l.lockFile, flags, 0o666)
	if err != nil {
		if os.IsExist(err) {
			return err
		}
		return errors.NewLockError(l.lockFile, 0, errors.Wrap(err, "failed to create lock file"))
	}

	if err = l.flock(); err != nil {
		l.closeFd()
		return errors.NewLockError(l.lockFile, 0, errors.Wrap(err, "failed to lock newly created lock file"))
	}

	if err = l.writePid(); err != nil {
		_ = l.Release()
		return err
	}

	l.acquired = true
	return nil
}

// acquireExisting locks a pre-existing lock file, handling the case where a
// live or dead process owns it.
func (l *Locker) acquireExisting() error {
	var err error
	l.lockFd, err = os.OpenFile(l.lockFile, os.O_RDWR, 0o666)
	if err != nil {
		return errors.NewLockError(l.lockFile, 0, errors.Wrap(err, "failed to open existing lock file"))
	}

	if err = l.flock(); err != nil {
		l.closeFd()

		// Older Unix systems report EWOULDBLOCK as a code distinct from
		// EAGAIN; treat both as "the lock is held".
		if errors.Is(err, syscall.EWOULDBLOCK) || errors.Is(err, syscall.EAGAIN) {
			return l.handleHeldLock()
		}
		return errors.NewLockError(l.lockFile, 0, errors.Wrap(err, "failed to acquire lock"))
	}

	if err = l.lockFd.Truncate(0); err != nil {
		_ = l.Release()
		return errors.NewLockError(l.lockFile, l.pid, errors.Wrap(err, "failed to truncate lock file"))
	}
	if err = l.writePid(); err != nil {
		_ = l.Release()
		return err
	}

	l.acquired = true
	return nil
}

// handleHeldLock inspects the pidfile of a held lock and steals it if the
// owning process is gone.
func (l *Locker) handleHeldLock() error {
	otherPid, err := l.readPid()
	if err != nil {
		return errors.NewLockError(l.lockFile, 0,
			errors.Wrap(err, "another gitdrip instance is running, but couldn't identify its PID"))
	}

	if isProcessRunning(otherPid) {
		return errors.NewLockError(l.lockFile, otherPid, errors.ErrAlreadyRunning)
	}

	// Stale lock from a dead process
	if err := os.Remove(l.lockFile); err != nil {
		return errors.NewLockError(l.lockFile, otherPid,
			errors.Wrapf(err, "found stale lock file from PID %d, but failed to remove it", otherPid))
	}
	return l.createAndLock(os.O_CREATE | os.O_EXCL | os.O_RDWR)
}

// Release unlocks, closes, and removes the lock file.
func (l *Locker) Release() error {
	if l.lockFd == nil {
		return nil
	}

	var err error
	if flockErr := syscall.Flock(int(l.lockFd.Fd()), syscall.LOCK_UN); flockErr != nil {
		err = errors.NewLockError(l.lockFile, l.pid, errors.Wrap(flockErr, "failed to release lock"))
	}

	if closeErr := l.lockFd.Close(); closeErr != nil && err == nil {
		err = errors.NewLockError(l.lockFile, l.pid, errors.Wrap(closeErr, "failed to close lock file"))
	}
	l.lockFd = nil
	l.acquired = false

	if removeErr := os.Remove(l.lockFile); removeErr != nil && !os.IsNotExist(removeErr) && err == nil {
		err = errors.NewLockError(l.lockFile, l.pid, errors.Wrap(removeErr, "failed to remove lock file"))
	}

	return err
}

func (l *Locker) flock() error {
	return syscall.Flock(int(l.lockFd.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
}

func (l *Locker) writePid() error {
	if _, err := l.lockFd.WriteAt([]byte(strconv.Itoa(l.pid)), 0); err != nil {
		return errors.NewLockError(l.lockFile, l.pid, errors.Wrap(err, "failed to write PID to lock file"))
	}
	return nil
}

func (l *Locker) readPid() (int, error) {
	data, err := os.ReadFile(l.lockFile)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read lock file")
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, errors.Wrap(err, "invalid PID in lock file")
	}
	return pid, nil
}

func (l *Locker) closeFd() {
	if l.lockFd != nil {
		_ = l.lockFd.Close()
		l.lockFd = nil
	}
}

// isProcessRunning checks process existence using signal 0.
func isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
