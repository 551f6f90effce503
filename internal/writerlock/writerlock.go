// Package writerlock guards the invariant that only one indexing
// invocation writes to a tree's index at a time. status and search are
// read-only and never take it.
package writerlock

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	raerrors "github.com/Aman-CERP/ra/internal/errors"
)

// fileName is the advisory lock file created alongside an index directory.
const fileName = ".writer.lock"

// Lock is an advisory, cross-process exclusive lock held for the duration
// of one index-writer session.
type Lock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// New returns a Lock for the index directory dir. The lock file itself
// lives at <dir>/.writer.lock.
func New(dir string) *Lock {
	path := filepath.Join(dir, fileName)
	return &Lock{path: path, flock: flock.New(path)}
}

// TryLock attempts to acquire the lock without blocking. It returns
// ErrCodeWriterLocked if another process already holds it.
func (l *Lock) TryLock() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return raerrors.IOError("failed to create index directory for writer lock", err)
	}

	acquired, err := l.flock.TryLock()
	if err != nil {
		return raerrors.IOError("failed to acquire writer lock", err)
	}
	if !acquired {
		return raerrors.New(raerrors.ErrCodeWriterLocked, "another process is already indexing this tree", nil).
			WithDetail("lock_path", l.path).
			WithSuggestion("wait for the other indexing run to finish, or remove " + l.path + " if it is stale")
	}

	l.locked = true
	return nil
}

// Unlock releases the lock. Safe to call on an unlocked Lock.
func (l *Lock) Unlock() error {
	if !l.locked {
		return nil
	}
	if err := l.flock.Unlock(); err != nil {
		return raerrors.IOError("failed to release writer lock", err)
	}
	l.locked = false
	return nil
}

// Path returns the lock file's path.
func (l *Lock) Path() string {
	return l.path
}

// Locked reports whether this Lock instance currently holds the lock.
func (l *Lock) Locked() bool {
	return l.locked
}
