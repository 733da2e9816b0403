package airride

import "errors"

// Sentinel errors returned by the orchestrator and control endpoint. Callers
// should compare with errors.Is rather than matching strings.
var (
	// ErrServiceNotFound is returned when an operation names a service that
	// is not present in the table.
	ErrServiceNotFound = errors.New("airride: service not found")

	// ErrDependencyCycle is returned when a requires graph loops back on a
	// service that is still resolving (REDESIGN FLAG R1).
	ErrDependencyCycle = errors.New("airride: dependency cycle")

	// ErrAlreadyRunning is the (non-error, success-carrying) result of
	// calling Start on a service already Starting or Running. It is never
	// surfaced to a control-endpoint caller as FAILED.
	ErrAlreadyRunning = errors.New("airride: service already running")

	// ErrStartFailed wraps fork/exec/dependency failures that leave a
	// service in StateFailed.
	ErrStartFailed = errors.New("airride: start failed")

	// ErrEndpointUnavailable indicates the control socket could not be
	// bound; the supervisor continues running without it.
	ErrEndpointUnavailable = errors.New("airride: control endpoint unavailable")
)
