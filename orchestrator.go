package airride

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// afterWaitTimeout and afterWaitPoll bound the best-effort wait on a soft
// `after` dependency (spec §4.D).
const (
	afterWaitTimeout = 10 * time.Second
	afterWaitPoll    = 100 * time.Millisecond
)

// stopGraceTimeout and stopPoll bound the graceful-stop wait before
// escalating to SIGKILL (spec §4.F).
const (
	stopGraceTimeout = 5 * time.Second
	stopPoll         = 100 * time.Millisecond
)

// maxAutoRestarts is the restart fuse (spec §4.F, testable property 10).
const maxAutoRestarts = 10

// restartGraceDelay is the fixed pause between stop and start in a manual
// restart (spec §4.F).
const restartGraceDelay = 500 * time.Millisecond

// autostartSettleDelay is the pause between the parallel/sequential phases
// and the terminal phase (spec §4.F step 3).
const autostartSettleDelay = 500 * time.Millisecond

// Orchestrator composes the service table, launcher, and dependency/phase
// ordering into the public Start/Stop/Restart surface and the autostart
// sequence (spec §4.F).
type Orchestrator struct {
	table   *ServiceTable
	log     *slog.Logger
	cfg     Config
	tracer  trace.Tracer
	labeler *runLabeler
	history *HistoryStore
}

// NewOrchestrator wires a table to its supporting subsystems.
func NewOrchestrator(table *ServiceTable, log *slog.Logger, cfg Config, tracer trace.Tracer, history *HistoryStore) *Orchestrator {
	return &Orchestrator{
		table:   table,
		log:     log,
		cfg:     cfg,
		tracer:  tracer,
		labeler: newRunLabeler(1),
		history: history,
	}
}

// Start launches a service, recursively satisfying its `requires` first
// (spec §4.D). A service already Starting or Running is a no-op success
// (testable property 7).
func (o *Orchestrator) Start(name string) error {
	return o.startRec(context.Background(), name, make(map[string]bool))
}

func (o *Orchestrator) startRec(ctx context.Context, name string, visiting map[string]bool) error {
	if visiting[name] {
		return fmt.Errorf("%w: %s", ErrDependencyCycle, name)
	}
	visiting[name] = true
	defer delete(visiting, name)

	ctx, span := o.tracer.Start(ctx, "service.start", trace.WithAttributes(attribute.String("service.name", name)))
	defer span.End()

	svc, err := o.table.BeginStart(name)
	if errors.Is(err, ErrAlreadyRunning) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, dep := range svc.Requires {
		if err := o.startRec(ctx, dep, visiting); err != nil {
			o.table.SetFailed(name)
			o.history.Record(name, "failed", fmt.Sprintf("requires %s: %v", dep, err))
			return fmt.Errorf("%w: %s: requires %s: %v", ErrStartFailed, name, dep, err)
		}
	}
	for _, dep := range svc.After {
		o.waitAfter(dep)
	}

	label := o.labeler.next()
	cmd, err := spawnProcess(svc, o.cfg.LogDir)
	if err != nil {
		o.table.SetFailed(name)
		o.history.Record(name, "failed", err.Error())
		o.log.Error("start failed", "service", name, "label", label, "error", err)
		return err
	}
	pid := cmd.Process.Pid
	o.log.Info("service started", "service", name, "label", label, "pid", pid, "kind", svc.Kind.String())

	if svc.Kind == KindOneShot {
		ch := o.table.AwaitOneShot(pid)
		o.table.SetRunning(name, pid)
		success := <-ch
		o.table.ApplyExit(name, success)
		if !success {
			o.history.Record(name, "oneshot-failed", fmt.Sprintf("pid=%d label=%s", pid, label))
			return fmt.Errorf("%w: %s: exited non-zero", ErrStartFailed, name)
		}
		o.history.Record(name, "oneshot-ok", fmt.Sprintf("pid=%d label=%s", pid, label))
		return nil
	}

	o.table.SetRunning(name, pid)
	o.history.Record(name, "started", fmt.Sprintf("pid=%d label=%s", pid, label))
	return nil
}

// waitAfter best-effort waits up to afterWaitTimeout for dep to settle into
// Running, Failed, or Stopped (spec §4.D); it never fails the caller.
func (o *Orchestrator) waitAfter(dep string) {
	deadline := time.Now().Add(afterWaitTimeout)
	for time.Now().Before(deadline) {
		snap, ok := o.table.Snapshot(dep)
		if !ok {
			return
		}
		switch snap.State {
		case StateRunning, StateFailed, StateStopped:
			return
		}
		time.Sleep(afterWaitPoll)
	}
}

// Stop halts a running service (spec §4.F). Not running is a no-op success
// (testable property 8).
func (o *Orchestrator) Stop(name string) error {
	ctx, span := o.tracer.Start(context.Background(), "service.stop", trace.WithAttributes(attribute.String("service.name", name)))
	defer span.End()
	_ = ctx

	pid, alreadyStopped, err := o.table.BeginStop(name)
	if err != nil {
		return err
	}
	if alreadyStopped {
		return nil
	}

	signalProcess(pid, syscall.SIGTERM)

	deadline := time.Now().Add(stopGraceTimeout)
	for time.Now().Before(deadline) && processAlive(pid) {
		time.Sleep(stopPoll)
	}
	if processAlive(pid) {
		o.log.Warn("stop timed out, escalating to SIGKILL", "service", name, "pid", pid)
		signalProcess(pid, syscall.SIGKILL)
		for processAlive(pid) {
			time.Sleep(stopPoll)
		}
	}

	o.table.FinishStop(name)
	o.history.Record(name, "stopped", fmt.Sprintf("pid=%d", pid))
	return nil
}

// Restart stops then, after a fixed grace delay, starts a service again
// (spec §4.F).
func (o *Orchestrator) Restart(name string) error {
	if err := o.Stop(name); err != nil {
		return err
	}
	time.Sleep(restartGraceDelay)
	return o.Start(name)
}

// scheduleRestart is invoked by the reaper after a supervised, restartable
// failure. It runs as a detached task holding no locks during the sleep
// (spec §4.F "Delayed restart").
func (o *Orchestrator) scheduleRestart(name string, delaySeconds int) {
	go func() {
		time.Sleep(time.Duration(delaySeconds) * time.Second)
		if err := o.Start(name); err != nil {
			o.log.Warn("scheduled restart failed", "service", name, "error", err)
		}
	}()
}

// Autostart runs the boot-time launch sequence (spec §4.F): parallel and
// sequential groups concurrently (parallel truly concurrent, sequential one
// by one), a settling sleep, then the terminal group (or the built-in
// shell if that group is empty).
func (o *Orchestrator) Autostart() {
	terminal, parallel, sequential := o.partitionAutostart()
	o.log.Info("autostart phase beginning",
		"terminal", len(terminal), "parallel", len(parallel), "sequential", len(sequential))

	var g errgroup.Group
	for _, name := range parallel {
		name := name
		g.Go(func() error {
			if err := o.Start(name); err != nil {
				o.log.Warn("autostart parallel service failed", "service", name, "error", err)
			}
			return nil
		})
	}
	for _, name := range sequential {
		if err := o.Start(name); err != nil {
			o.log.Warn("autostart sequential service failed", "service", name, "error", err)
		}
	}
	_ = g.Wait()

	time.Sleep(autostartSettleDelay)
	clearConsole()

	if len(terminal) == 0 {
		terminal = []string{"shell"}
	}
	for _, name := range terminal {
		if err := o.Start(name); err != nil {
			o.log.Warn("autostart terminal service failed", "service", name, "error", err)
		}
	}
}

// partitionAutostart classifies every autostart service in one pass (spec
// §4.F step 1).
func (o *Orchestrator) partitionAutostart() (terminal, parallel, sequential []string) {
	for _, svc := range o.table.All() {
		if !svc.Autostart {
			continue
		}
		switch {
		case svc.TerminalTarget():
			terminal = append(terminal, svc.Name)
		case svc.Parallel:
			parallel = append(parallel, svc.Name)
		default:
			sequential = append(sequential, svc.Name)
		}
	}
	return terminal, parallel, sequential
}

func signalProcess(pid int, sig syscall.Signal) {
	if pid <= 0 {
		return
	}
	_ = syscall.Kill(pid, sig)
}

// processAlive probes liveness with signal 0, the conventional
// kill(2)-without-killing existence check.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	return syscall.Kill(pid, syscall.Signal(0)) == nil
}

// clearConsole writes the ANSI clear-and-home sequence to the system
// console ahead of the terminal autostart group (spec §4.F step 4). Best
// effort: a missing console in test mode is not an error.
func clearConsole() {
	f, err := os.OpenFile(systemConsole, os.O_WRONLY, 0)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = f.WriteString("\x1b[2J\x1b[H")
}
