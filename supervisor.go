package airride

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"
)

// tickInterval is the supervisor loop's steady-state period (spec §4.H).
const tickInterval = 100 * time.Millisecond

// Supervisor wires the service table, orchestrator, control endpoint, and
// history store together (spec §2, H). Run polls the control endpoint on
// one tick loop and reaps exited children on a second, concurrent one.
// Platform bootstrap is not part of it: cmd/airride runs Bootstrap before
// NewSupervisor.
type Supervisor struct {
	Table   *ServiceTable
	Orch    *Orchestrator
	Control *ControlEndpoint
	History *HistoryStore

	log *slog.Logger
	cfg Config
}

// NewSupervisor assembles a Supervisor from config: it loads service
// declarations, opens the optional audit and tracing subsystems, and binds
// the control endpoint. Endpoint bind failure is logged and the supervisor
// still runs with Control == nil (spec §7, EndpointUnavailable).
func NewSupervisor(ctx context.Context, cfg Config, log *slog.Logger) (*Supervisor, func(context.Context) error, error) {
	// Ensure SIGCHLD keeps its kernel-default disposition so the reaper's
	// non-blocking wait4 reliably observes exited children (spec §4.H).
	signal.Reset(syscall.SIGCHLD)

	tracer, shutdownTracer, err := NewTracer(ctx, cfg.OTLPEndpoint)
	if err != nil {
		log.Warn("tracing disabled", "error", err)
		tracer, shutdownTracer, _ = NewTracer(ctx, "")
	}

	history, err := OpenHistoryStore(cfg.HistoryDB)
	if err != nil {
		log.Warn("history store disabled", "error", err)
		history = &HistoryStore{}
	}

	table := LoadServices(log, cfg.ServicesDir)
	orch := NewOrchestrator(table, log, cfg, tracer, history)

	auth := newControlAuth(cfg.ControlTokenFile)
	endpoint, err := OpenControlEndpoint(cfg.SocketPath, auth, log)
	if err != nil {
		log.Warn("control endpoint unavailable, continuing without it", "error", err)
		endpoint = nil
	}

	sup := &Supervisor{
		Table:   table,
		Orch:    orch,
		Control: endpoint,
		History: history,
		log:     log,
		cfg:     cfg,
	}
	return sup, shutdownTracer, nil
}

// Run executes the autostart phases once, then loops forever servicing one
// control request per tick (spec §4.H). Reaping runs on its own concurrent
// tick loop rather than interleaved into the same iteration: a one-shot
// Start blocks its caller on the reaper's signal (REDESIGN FLAG R2), and a
// single-goroutine "poll then reap" loop would never reach the reap step
// while that caller is blocked inside PollOnce. The reap loop is started
// before Autostart so one-shot services launched at boot are covered too.
// Run never returns in normal operation; the process is terminated by the
// kernel (PID1) or by the caller's context in test mode.
func (s *Supervisor) Run(ctx context.Context) {
	reapDone := make(chan struct{})
	go func() {
		defer close(reapDone)
		s.reapLoop(ctx)
	}()

	s.Orch.Autostart()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			<-reapDone
			return
		case <-ticker.C:
			s.Control.PollOnce(s.Orch)
		}
	}
}

// reapLoop drains exited children on its own tick, concurrently with the
// control-request loop.
func (s *Supervisor) reapLoop(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Orch.Reap()
		}
	}
}

// Close releases the control endpoint and history store.
func (s *Supervisor) Close() {
	if s.Control != nil {
		_ = s.Control.Close()
	}
	_ = s.History.Close()
}
