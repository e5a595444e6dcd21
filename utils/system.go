package utils

import (
	"log/slog"

	"github.com/shirou/gopsutil/v3/process"
)

// ProcessAlive reports whether a process with the given pid is still
// running. A pid <= 0 is never alive.
func ProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	alive, err := process.PidExists(int32(pid))
	if err != nil {
		slog.Warn("could not check process state", "pid", pid, "err", err)
		return false
	}
	if !alive {
		return false
	}
	// a zombie still has a pid but no longer holds any resources
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return false
	}
	status, err := p.Status()
	if err != nil {
		return true
	}
	for _, s := range status {
		if s == process.Zombie {
			return false
		}
	}
	return true
}
