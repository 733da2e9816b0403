package airride

import (
	"fmt"
	"sort"
	"sync"
)

// ServiceTable is the mutable collection of services and their runtime
// state (spec §3). Declaration fields (name, exec line, requires/after,
// policy flags) are written once by the loader before any other goroutine
// can observe the table and are never mutated again, so they are safe to
// read without holding mu. Runtime fields (State, PID, FailureCount) mutate
// for the life of the process and are only ever touched while mu is held.
type ServiceTable struct {
	mu       sync.Mutex
	services map[string]*Service

	// oneShotWaiters holds, per pid, the channel a one-shot launch is
	// blocked on. Rather than have the launcher perform its own wait4 on a
	// specific pid concurrently with the reaper's wildcard wait4(-1), only
	// the reaper ever calls wait4; it signals the waiting launcher through
	// this channel once it has reaped the pid. This is the design notes'
	// preferred fix for the one-shot double-reap race (REDESIGN FLAG R2),
	// over having the launcher wait independently.
	oneShotWaiters map[int]chan bool
}

// NewServiceTable returns an empty table.
func NewServiceTable() *ServiceTable {
	return &ServiceTable{
		services:       make(map[string]*Service),
		oneShotWaiters: make(map[int]chan bool),
	}
}

// Add inserts a fully-populated service. It is only ever called by the
// loader, before the table is shared with other goroutines. Returns false
// if a service by that name already exists (first declaration wins).
func (t *ServiceTable) Add(svc *Service) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.services[svc.Name]; exists {
		return false
	}
	t.services[svc.Name] = svc
	return true
}

// Lookup returns the live service pointer. Safe to read declaration fields
// off the result without locking; runtime fields must go through the
// ServiceTable methods below.
func (t *ServiceTable) Lookup(name string) (*Service, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	svc, ok := t.services[name]
	return svc, ok
}

// Names returns all service names, sorted, for deterministic iteration.
func (t *ServiceTable) Names() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	names := make([]string, 0, len(t.services))
	for name := range t.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a value copy of the named service with runtime fields
// consistent as of a single instant, suitable for status/list/history
// formatting.
func (t *ServiceTable) Snapshot(name string) (Service, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	svc, ok := t.services[name]
	if !ok {
		return Service{}, false
	}
	return svc.Clone(), true
}

// All returns a value copy of every service, sorted by name.
func (t *ServiceTable) All() []Service {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Service, 0, len(t.services))
	for _, svc := range t.services {
		out = append(out, svc.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// BeginStart enforces the launcher's precondition (spec §4.D): the service
// must exist and not already be Starting or Running. On success it
// transitions the service to Starting and returns it. ErrAlreadyRunning
// means the caller should treat the call as a successful no-op (spec §8,
// property 7); ErrServiceNotFound means the name is unknown.
func (t *ServiceTable) BeginStart(name string) (*Service, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	svc, ok := t.services[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, name)
	}
	if svc.State == StateStarting || svc.State == StateRunning {
		return svc, ErrAlreadyRunning
	}
	svc.State = StateStarting
	return svc, nil
}

// SetRunning records a newly-forked child and transitions to Running
// (spec §4.D, "in the parent, under lock").
func (t *ServiceTable) SetRunning(name string, pid int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if svc, ok := t.services[name]; ok {
		svc.PID = pid
		svc.State = StateRunning
	}
}

// SetFailed transitions a service to Failed and zeroes its pid.
func (t *ServiceTable) SetFailed(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if svc, ok := t.services[name]; ok {
		svc.PID = 0
		svc.State = StateFailed
	}
}

// ApplyExit zeroes a service's pid and transitions it to Stopped on success
// or Failed otherwise. Used for one-shot post-processing (spec §4.D); the
// reaper's generic exit handling (spec §4.E) goes through ReapExit instead,
// which applies the same transition only while the service still holds pid.
func (t *ServiceTable) ApplyExit(name string, success bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	svc, ok := t.services[name]
	if !ok {
		return
	}
	svc.PID = 0
	if success {
		svc.State = StateStopped
	} else {
		svc.State = StateFailed
	}
}

// ReapExit applies the reaper's generic exit transition for pid, but only if
// the service is still Running and still holds pid. BeginStop transitions a
// service to Stopping while its pid is still live so Stop's SIGTERM/poll
// loop can observe the exit; the reaper's independent wait4 loop can observe
// the very same exit concurrently. Without this guard the reaper would apply
// its own Stopped/Failed transition (and, on a SIGTERM-induced non-zero
// status, the restart-on-failure fuse) on top of a service Stop already owns.
// Returns false when the service has moved on — Stop (or an earlier reap)
// already claimed this exit — meaning the caller must not apply any further
// failure/restart transition.
func (t *ServiceTable) ReapExit(name string, pid int, success bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	svc, ok := t.services[name]
	if !ok || svc.PID != pid || svc.State != StateRunning {
		return false
	}
	svc.PID = 0
	if success {
		svc.State = StateStopped
	} else {
		svc.State = StateFailed
	}
	return true
}

// BeginStop enforces the Stop precondition (spec §4.F): if the service is
// not Running, the call is a no-op success. Otherwise it transitions to
// Stopping and returns the pid to signal outside the lock.
func (t *ServiceTable) BeginStop(name string) (pid int, alreadyStopped bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	svc, ok := t.services[name]
	if !ok {
		return 0, false, fmt.Errorf("%w: %s", ErrServiceNotFound, name)
	}
	if svc.State != StateRunning {
		return 0, true, nil
	}
	svc.State = StateStopping
	return svc.PID, false, nil
}

// FinishStop clears the pid and transitions to Stopped once the child has
// exited (spec §4.F: "under lock, clear the identifier and set state
// Stopped").
func (t *ServiceTable) FinishStop(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if svc, ok := t.services[name]; ok {
		svc.PID = 0
		svc.State = StateStopped
	}
}

// FindByPID locates the service currently holding pid, if any (used by the
// reaper to classify a collected child as supervised vs orphan).
func (t *ServiceTable) FindByPID(pid int) (*Service, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, svc := range t.services {
		if svc.PID == pid && svc.PID != 0 {
			return svc, true
		}
	}
	return nil, false
}

// IncrementFailure increments and returns a service's cumulative failure
// count (spec §3 runtime field; the counter is monotonic per §13's
// decision on the open question of manual-restart reset).
func (t *ServiceTable) IncrementFailure(name string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	svc, ok := t.services[name]
	if !ok {
		return 0
	}
	svc.FailureCount++
	return svc.FailureCount
}

// AwaitOneShot registers pid as a one-shot launch waiting on the reaper and
// returns the channel it will receive the exit outcome on (true = exit
// status zero). Must be called before the reaper's loop can possibly
// observe the pid, i.e. immediately after the child is forked.
func (t *ServiceTable) AwaitOneShot(pid int) chan bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	ch := make(chan bool, 1)
	t.oneShotWaiters[pid] = ch
	return ch
}

// NotifyOneShot delivers a reaped pid's outcome to a registered one-shot
// waiter, if any, and reports whether one was found. Called by the reaper
// instead of applying the normal Running->{Stopped,Failed} transition
// itself for that pid; the waiting launcher applies ApplyExit.
func (t *ServiceTable) NotifyOneShot(pid int, success bool) bool {
	t.mu.Lock()
	ch, ok := t.oneShotWaiters[pid]
	if ok {
		delete(t.oneShotWaiters, pid)
	}
	t.mu.Unlock()
	if ok {
		ch <- success
	}
	return ok
}
