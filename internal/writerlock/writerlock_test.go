package writerlock

import (
	"os"
	"path/filepath"
	"testing"

	raerrors "github.com/Aman-CERP/ra/internal/errors"
)

func TestTryLockSucceedsAndCreatesFile(t *testing.T) {
	dir := t.TempDir()
	l := New(dir)

	if err := l.TryLock(); err != nil {
		t.Fatalf("TryLock() failed: %v", err)
	}
	if _, err := os.Stat(l.Path()); os.IsNotExist(err) {
		t.Error("lock file was not created")
	}
	if !l.Locked() {
		t.Error("Locked() should be true after TryLock()")
	}
	if err := l.Unlock(); err != nil {
		t.Fatalf("Unlock() failed: %v", err)
	}
}

func TestUnlockWithoutLockDoesNotError(t *testing.T) {
	l := New(t.TempDir())
	if err := l.Unlock(); err != nil {
		t.Errorf("Unlock() without TryLock() should not error: %v", err)
	}
}

func TestDoubleUnlockDoesNotError(t *testing.T) {
	l := New(t.TempDir())
	if err := l.TryLock(); err != nil {
		t.Fatalf("TryLock() failed: %v", err)
	}
	if err := l.Unlock(); err != nil {
		t.Fatalf("first Unlock() failed: %v", err)
	}
	if err := l.Unlock(); err != nil {
		t.Errorf("second Unlock() should not error: %v", err)
	}
}

func TestTryLockFailsWhenAlreadyHeld(t *testing.T) {
	dir := t.TempDir()

	l1 := New(dir)
	if err := l1.TryLock(); err != nil {
		t.Fatalf("TryLock() failed: %v", err)
	}
	defer func() { _ = l1.Unlock() }()

	l2 := New(dir)
	err := l2.TryLock()
	if err == nil {
		t.Fatal("expected TryLock() to fail while another lock is held")
	}
	if raerrors.GetCode(err) != raerrors.ErrCodeWriterLocked {
		t.Errorf("expected ErrCodeWriterLocked, got %v", raerrors.GetCode(err))
	}
	if l2.Locked() {
		t.Error("failed TryLock() should not mark the lock as held")
	}
}

func TestPathIsWriterLockFileUnderDir(t *testing.T) {
	dir := "/some/dir"
	l := New(dir)
	expected := filepath.Join(dir, ".writer.lock")
	if l.Path() != expected {
		t.Errorf("Path() = %q, want %q", l.Path(), expected)
	}
}

func TestTryLockCreatesNestedDirectory(t *testing.T) {
	base := t.TempDir()
	nested := filepath.Join(base, "nested", "index", "dir")
	l := New(nested)

	if err := l.TryLock(); err != nil {
		t.Fatalf("TryLock() failed to create nested directory: %v", err)
	}
	defer func() { _ = l.Unlock() }()

	if _, err := os.Stat(nested); os.IsNotExist(err) {
		t.Error("TryLock() did not create the nested directory")
	}
}
