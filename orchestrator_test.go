package airride

import (
	"testing"
	"time"

	"go.opentelemetry.io/otel"
)

func testOrchestrator(t *testing.T) (*Orchestrator, *ServiceTable) {
	t.Helper()
	table := NewServiceTable()
	cfg := Config{LogDir: t.TempDir()}
	history, err := OpenHistoryStore("")
	if err != nil {
		t.Fatalf("OpenHistoryStore: %v", err)
	}
	orch := NewOrchestrator(table, discardLogger(), cfg, otel.Tracer("test"), history)
	startTestReaper(t, orch)
	return orch, table
}

// startTestReaper stands in for Supervisor's reap loop for the duration of a
// test: Stop waits for its child to disappear, and an exited child stays
// visible to kill(pid, 0) until Reap collects it.
func startTestReaper(t *testing.T, orch *Orchestrator) {
	t.Helper()
	stop := make(chan struct{})
	t.Cleanup(func() { close(stop) })
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				orch.Reap()
				time.Sleep(10 * time.Millisecond)
			}
		}
	}()
}

func waitForState(t *testing.T, table *ServiceTable, name string, want State, timeout time.Duration) Service {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		snap, ok := table.Snapshot(name)
		if !ok {
			t.Fatalf("service %q vanished from table", name)
		}
		if snap.State == want {
			return snap
		}
		time.Sleep(10 * time.Millisecond)
	}
	snap, _ := table.Snapshot(name)
	t.Fatalf("service %q never reached state %v, stuck at %v", name, want, snap.State)
	return Service{}
}

func TestStartStopSimpleService(t *testing.T) {
	orch, table := testOrchestrator(t)
	table.Add(&Service{Name: "sleeper", ExecStart: "/bin/sleep 30", Kind: KindSimple})

	if err := orch.Start("sleeper"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	snap := waitForState(t, table, "sleeper", StateRunning, time.Second)
	if snap.PID == 0 {
		t.Fatal("running service should have a nonzero pid")
	}

	if err := orch.Stop("sleeper"); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	snap, _ = table.Snapshot("sleeper")
	if snap.State != StateStopped || snap.PID != 0 {
		t.Fatalf("after Stop: %+v", snap)
	}
}

func TestStartAlreadyRunningIsNoop(t *testing.T) {
	orch, table := testOrchestrator(t)
	table.Add(&Service{Name: "sleeper", ExecStart: "/bin/sleep 30", Kind: KindSimple})

	if err := orch.Start("sleeper"); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	waitForState(t, table, "sleeper", StateRunning, time.Second)

	if err := orch.Start("sleeper"); err != nil {
		t.Fatalf("second Start on running service should be a no-op success: %v", err)
	}
	orch.Stop("sleeper")
}

func TestStopNotRunningIsNoop(t *testing.T) {
	orch, table := testOrchestrator(t)
	table.Add(&Service{Name: "idle", ExecStart: "/bin/true"})

	if err := orch.Stop("idle"); err != nil {
		t.Fatalf("Stop on stopped service should be a no-op success: %v", err)
	}
}

func TestStartUnknownServiceFails(t *testing.T) {
	orch, _ := testOrchestrator(t)
	if err := orch.Start("ghost"); err == nil {
		t.Fatal("expected an error starting an unknown service")
	}
}

func TestOneShotSuccessNotifiesViaReaper(t *testing.T) {
	orch, table := testOrchestrator(t)
	table.Add(&Service{Name: "once", ExecStart: "/bin/true", Kind: KindOneShot})

	done := make(chan error, 1)
	go func() { done <- orch.Start("once") }()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		orch.Reap()
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("Start of one-shot: %v", err)
			}
			snap, _ := table.Snapshot("once")
			if snap.State != StateStopped {
				t.Fatalf("one-shot success should end Stopped, got %v", snap.State)
			}
			return
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatal("one-shot Start never completed")
}

func TestOneShotFailureNotifiesViaReaper(t *testing.T) {
	orch, table := testOrchestrator(t)
	table.Add(&Service{Name: "once", ExecStart: "/bin/false", Kind: KindOneShot})

	done := make(chan error, 1)
	go func() { done <- orch.Start("once") }()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		orch.Reap()
		select {
		case err := <-done:
			if err == nil {
				t.Fatal("expected an error from a failing one-shot")
			}
			snap, _ := table.Snapshot("once")
			if snap.State != StateFailed {
				t.Fatalf("one-shot failure should end Failed, got %v", snap.State)
			}
			return
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatal("one-shot Start never completed")
}

func TestStartDependencyChain(t *testing.T) {
	orch, table := testOrchestrator(t)
	table.Add(&Service{Name: "base", ExecStart: "/bin/sleep 30"})
	table.Add(&Service{Name: "dependent", ExecStart: "/bin/sleep 30", Requires: []string{"base"}})

	if err := orch.Start("dependent"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitForState(t, table, "base", StateRunning, time.Second)
	waitForState(t, table, "dependent", StateRunning, time.Second)

	orch.Stop("dependent")
	orch.Stop("base")
}

func TestStartDependencyCycleDetected(t *testing.T) {
	orch, table := testOrchestrator(t)
	table.Add(&Service{Name: "a", ExecStart: "/bin/true", Requires: []string{"b"}})
	table.Add(&Service{Name: "b", ExecStart: "/bin/true", Requires: []string{"a"}})

	err := orch.Start("a")
	if err == nil {
		t.Fatal("expected a dependency cycle error")
	}
}

func TestPartitionAutostart(t *testing.T) {
	orch, table := testOrchestrator(t)
	table.Add(&Service{Name: "term", Autostart: true, Foreground: true})
	table.Add(&Service{Name: "par", Autostart: true, Parallel: true})
	table.Add(&Service{Name: "seq", Autostart: true})
	table.Add(&Service{Name: "off"})

	terminal, parallel, sequential := orch.partitionAutostart()
	if len(terminal) != 1 || terminal[0] != "term" {
		t.Errorf("terminal = %v", terminal)
	}
	if len(parallel) != 1 || parallel[0] != "par" {
		t.Errorf("parallel = %v", parallel)
	}
	if len(sequential) != 1 || sequential[0] != "seq" {
		t.Errorf("sequential = %v", sequential)
	}
}
