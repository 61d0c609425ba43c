// Package filelock serializes writers of one file across processes with a
// sibling ".lock" file holding the owner's PID.
package filelock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// Suffix is appended to the locked path to name the lock file.
const Suffix = ".lock"

// PollInterval is how long Acquire waits before checking a held lock again.
var PollInterval = 100 * time.Millisecond

// UnreadableGrace is how long a lock without a readable PID is respected
// before it is considered abandoned.
var UnreadableGrace = 2 * time.Second

// Acquire takes the lock for target, waiting while another live process
// holds it. A lock left behind by a dead process is removed, as is one
// without a readable PID once it is older than UnreadableGrace. The
// returned function releases the lock.
func Acquire(ctx context.Context, target string) (func() error, error) {
	lockFile := target + Suffix
	if err := os.MkdirAll(filepath.Dir(lockFile), 0755); err != nil {
		return nil, fmt.Errorf("failed to create parent dir for lock: %w", err)
	}

	for {
		ok, err := tryCreate(lockFile)
		if err != nil {
			return nil, err
		}
		if ok {
			return func() error { return os.Remove(lockFile) }, nil
		}

		fi, err := os.Stat(lockFile)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		held := true
		if pid, ok := owner(lockFile); ok {
			held = isPidAlive(pid)
		} else if err == nil {
			held = time.Since(fi.ModTime()) < UnreadableGrace
		}

		if held {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("waiting for %s: %w", lockFile, ctx.Err())
			case <-time.After(PollInterval):
			}
			continue
		}
		// Only remove the file we judged; a waiter may have replaced it.
		if cur, err := os.Stat(lockFile); err == nil && os.SameFile(cur, fi) {
			os.Remove(lockFile)
		}
	}
}

// tryCreate writes the owner line to a private file and links it into
// place, so the lock file never exists without its content.
func tryCreate(lockFile string) (bool, error) {
	tmp, err := os.CreateTemp(filepath.Dir(lockFile), filepath.Base(lockFile)+".*.tmp")
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer os.Remove(tmp.Name())

	_, err = fmt.Fprintf(tmp, "%s %d", time.Now().Format(time.RFC3339), os.Getpid())
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return false, fmt.Errorf("failed to write to lock file: %w", err)
	}

	err = os.Link(tmp.Name(), lockFile)
	if errors.Is(err, os.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	return true, nil
}

// owner reads the PID from the last field of the lock file.
func owner(lockFile string) (int, bool) {
	content, err := os.ReadFile(lockFile)
	if err != nil {
		return 0, false
	}
	fields := strings.Fields(string(content))
	if len(fields) < 2 {
		return 0, false
	}
	pid, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return 0, false
	}
	return pid, true
}

func isPidAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	if errors.Is(err, syscall.ESRCH) || errors.Is(err, os.ErrProcessDone) {
		return false
	}
	// EPERM: it exists but belongs to someone else.
	return true
}
