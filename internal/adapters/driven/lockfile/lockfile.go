// Package lockfile implements advisory locking with exclusive lock files.
package lockfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/custodia-labs/geosync-cli/internal/core/domain"
	"github.com/custodia-labs/geosync-cli/internal/core/ports/driven"
)

// Locker creates fail-fast lock files inside the data directory. Locks
// are advisory: they guard cooperating geosync processes, nothing else.
// Each lock file holds the PID of its owner; a lock whose owner no
// longer runs is treated as stale and reclaimed.
type Locker struct {
	dir string
}

var _ driven.Locker = (*Locker)(nil)

// New creates a locker placing lock files in dir.
func New(dir string) *Locker {
	return &Locker{dir: dir}
}

// Acquire takes the named lock by creating <name>.lock exclusively.
// Returns domain.ErrLockHeld if a live process holds the lock.
func (l *Locker) Acquire(name string) (func() error, error) {
	if err := os.MkdirAll(l.dir, 0700); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}

	path := filepath.Join(l.dir, name+".lock")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if os.IsExist(err) {
		if !staleLock(path) {
			return nil, fmt.Errorf("%s lock at %s: %w", name, path, domain.ErrLockHeld)
		}
		os.Remove(path)
		f, err = os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
		if os.IsExist(err) {
			return nil, fmt.Errorf("%s lock at %s: %w", name, path, domain.ErrLockHeld)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("creating lock file: %w", err)
	}

	if _, err := f.WriteString(strconv.Itoa(os.Getpid()) + "\n"); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("writing lock file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("closing lock file: %w", err)
	}

	return func() error {
		return os.Remove(path)
	}, nil
}

// staleLock reports whether the lock file's recorded owner is gone. An
// unreadable or malformed file is left alone, the operator decides.
func staleLock(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return false
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return true
	}
	// Signal 0 probes for existence without touching the process.
	return proc.Signal(syscall.Signal(0)) != nil
}
