//go:build !windows

package process

import "syscall"

// KillTree sends SIGKILL to the process group led by pid. Non-positive
// pids are ignored so the caller's own group is never targeted.
func KillTree(pid int) {
	if pid <= 0 {
		return
	}
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
