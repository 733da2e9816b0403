package airride

import (
	"fmt"
	"syscall"
)

// Reap drains every exited child currently collectible without blocking
// (spec §4.E). It is the single caller of wait4 in the process: one-shot
// launches never wait on their own pid directly, instead registering with
// the table and blocking on the channel Reap signals (REDESIGN FLAG R2),
// so there is exactly one place a zombie is ever consumed.
func (o *Orchestrator) Reap() {
	for {
		var status syscall.WaitStatus
		pid, err := syscall.Wait4(-1, &status, syscall.WNOHANG, nil)
		if err != nil || pid <= 0 {
			return
		}
		o.reapOne(pid, status)
	}
}

func (o *Orchestrator) reapOne(pid int, status syscall.WaitStatus) {
	success := status.Exited() && status.ExitStatus() == 0

	if o.table.NotifyOneShot(pid, success) {
		// A one-shot launch is waiting on this exact pid; it applies its
		// own ApplyExit transition. Nothing further to do here.
		return
	}

	svc, found := o.table.FindByPID(pid)
	if !found {
		// Unrelated orphan re-parented to process one; discard silently
		// (spec §4.E, invariant: "process one accepts and discards exit
		// statuses for processes not in the service table").
		return
	}

	name := svc.Name
	restartOnFailure := svc.RestartOnFailure
	restartDelay := svc.RestartDelay

	// owned is false when a concurrent Stop already moved this service out
	// of Running (e.g. to Stopping) before the reaper got here; Stop's own
	// poll loop, not the reaper, then owns the final transition for this
	// exit, and the failure/restart fuse below must not fire for it.
	owned := o.table.ReapExit(name, pid, success)

	if success {
		o.log.Info("service exited", "service", name, "pid", pid, "status", "ok")
		o.history.Record(name, "exited", fmt.Sprintf("pid=%d status=ok", pid))
		return
	}

	o.log.Warn("service exited non-zero", "service", name, "pid", pid, "status", statusString(status))
	o.history.Record(name, "exited", fmt.Sprintf("pid=%d status=%s", pid, statusString(status)))

	if !owned || !restartOnFailure {
		return
	}
	count := o.table.IncrementFailure(name)
	if count > maxAutoRestarts {
		o.log.Warn("restart fuse blown, giving up", "service", name, "failures", count)
		return
	}
	o.log.Info("scheduling restart", "service", name, "delay_seconds", restartDelay, "attempt", count)
	o.scheduleRestart(name, restartDelay)
}

func statusString(status syscall.WaitStatus) string {
	switch {
	case status.Exited():
		return fmt.Sprintf("exit=%d", status.ExitStatus())
	case status.Signaled():
		return fmt.Sprintf("signal=%s", status.Signal())
	default:
		return "unknown"
	}
}
