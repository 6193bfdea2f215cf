// Package singleinstance enforces the process-scope guard spec.md §5
// requires: at most one winpacman core may mutate the cache at a time.
// A PID file records the owning process; on contention, gopsutil
// confirms whether that PID is genuinely still this program before
// refusing to start, rather than trusting a stale lock file left behind
// by a crash.
package singleinstance

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/winpacman/core/internal/logging"
)

// processName is substring-matched against the lock-holder's process
// name so a stale lock is detected even if the PID has been recycled by
// an unrelated process.
const processName = "winpacman"

// Guard holds an acquired lock; Release removes the PID file.
type Guard struct {
	path string
}

// Acquire takes the single-instance lock at path, stealing it from a
// dead or unrelated process if the recorded PID is no longer this
// program.
func Acquire(path string) (*Guard, error) {
	log := logging.Component("singleinstance")

	if data, err := os.ReadFile(path); err == nil {
		if pid, perr := strconv.Atoi(strings.TrimSpace(string(data))); perr == nil {
			if held, herr := heldByLiveInstance(pid); herr == nil && held {
				return nil, fmt.Errorf("another winpacman instance is already running (pid %d)", pid)
			}
			log.Warn("discarding stale single-instance lock", "pid", pid)
		}
	}

	pid := os.Getpid()
	if err := os.WriteFile(path, []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return nil, fmt.Errorf("writing lock file: %w", err)
	}
	return &Guard{path: path}, nil
}

// Release removes the lock file. Safe to call more than once.
func (g *Guard) Release() {
	_ = os.Remove(g.path)
}

func heldByLiveInstance(pid int) (bool, error) {
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		// No such process: the lock is stale.
		return false, nil
	}
	running, err := proc.IsRunning()
	if err != nil || !running {
		return false, nil
	}
	name, err := proc.Name()
	if err != nil {
		return false, err
	}
	return strings.Contains(strings.ToLower(name), processName), nil
}
