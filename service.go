package airride

import "fmt"

// State is a service's runtime position in the supervisor's state machine.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Kind selects how the launcher treats a service's start command.
type Kind int

const (
	KindSimple Kind = iota
	KindForking
	KindOneShot
)

func (k Kind) String() string {
	switch k {
	case KindSimple:
		return "simple"
	case KindForking:
		return "forking"
	case KindOneShot:
		return "oneshot"
	default:
		return "simple"
	}
}

// parseKind maps a declaration's "type" value to a Kind, defaulting to
// KindSimple for anything unrecognized (spec §4.B).
func parseKind(s string) Kind {
	switch s {
	case "forking":
		return KindForking
	case "oneshot":
		return KindOneShot
	default:
		return KindSimple
	}
}

// Service is the declarative configuration plus runtime state for one
// supervised unit (spec §3).
type Service struct {
	// Identity
	Name        string
	Description string

	// Execution
	ExecStart string
	ExecStop  string
	Kind      Kind

	// Placement
	TTY        string
	Foreground bool

	// Ordering
	Requires []string
	After    []string

	// Policy
	Autostart        bool
	Parallel         bool
	RestartOnFailure bool
	RestartDelay     int // whole seconds
	ClearScreen      bool

	// Runtime (mutated only under the owning ServiceTable's mutex)
	State        State
	PID          int
	FailureCount int
}

// Background reports whether the service has neither an explicit tty nor the
// foreground flag, meaning its output is redirected to a log file (§3).
func (s *Service) Background() bool {
	return s.TTY == "" && !s.Foreground
}

// TerminalTarget reports whether autostart should place this service in the
// terminal group (§4.F): an explicit tty or the foreground flag.
func (s *Service) TerminalTarget() bool {
	return s.TTY != "" || s.Foreground
}

// Clone returns a value copy of the service, safe to read outside the lock
// once taken (used by status/list/history formatting).
func (s *Service) Clone() Service {
	cp := *s
	cp.Requires = append([]string(nil), s.Requires...)
	cp.After = append([]string(nil), s.After...)
	return cp
}

// builtinShell is injected by the loader ahead of any declaration files
// (spec §4.B, invariant 4).
func builtinShell() *Service {
	return &Service{
		Name:        "shell",
		Description: "emergency shell",
		ExecStart:   "/bin/sh",
		Kind:        KindSimple,
		Foreground:  true,
		State:       StateStopped,
	}
}

func (s *Service) String() string {
	return fmt.Sprintf("Service{%s state=%s pid=%d}", s.Name, s.State, s.PID)
}
