package store

import (
	"fmt"
	"os"
	"syscall"

	"github.com/Iron-Ham/gantry/internal/errors"
)

// projectLock is an flock(2) held on a project's lock file. Several gantry
// processes may share one data directory.
type projectLock struct {
	file *os.File
}

// acquireLock takes an exclusive lock on path, creating the file if needed.
// With wait unset it fails with ErrProjectLocked instead of blocking.
func acquireLock(path string, wait bool) (*projectLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	how := syscall.LOCK_EX
	if !wait {
		how |= syscall.LOCK_NB
	}
	if err := syscall.Flock(int(f.Fd()), how); err != nil {
		_ = f.Close()
		if err == syscall.EWOULDBLOCK {
			return nil, errors.ErrProjectLocked
		}
		return nil, fmt.Errorf("flock: %w", err)
	}
	return &projectLock{file: f}, nil
}

// release unlocks and closes the lock file. Calling it twice is a no-op.
func (l *projectLock) release() error {
	if l == nil || l.file == nil {
		return nil
	}
	f := l.file
	l.file = nil

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_UN); err != nil {
		_ = f.Close()
		return fmt.Errorf("funlock: %w", err)
	}
	return f.Close()
}
