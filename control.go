package airride

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"time"
)

// maxRequestBytes bounds a single control request (spec §4.G: "read up to
// ~1 KiB of request bytes synchronously").
const maxRequestBytes = 1024

// controlDeadline bounds the whole read-then-write exchange of a single
// accepted connection: one deadline is set right after accept and covers
// both the read and the write (spec §9's "time-bound the read/write"
// resolution of the slow-client hazard, decided in favor over a separate
// servicing goroutine so the supervisor loop's tick timing stays simple and
// single-threaded).
const controlDeadline = 1 * time.Second

// ControlEndpoint is the filesystem-named stream socket clients connect to
// (spec §4.G). Bind failures disable it without stopping the supervisor
// (ErrEndpointUnavailable, spec §7).
type ControlEndpoint struct {
	listener *net.UnixListener
	auth     *controlAuth
	log      *slog.Logger
}

// OpenControlEndpoint removes any stale socket file, binds a new one, and
// places it in listening mode. A bind/listen failure is returned wrapped in
// ErrEndpointUnavailable; the caller should log it and continue without a
// control surface, per spec §7 (grounded on the teacher's
// startDaemonServer: os.Remove(old) then net.Listen("unix", path)).
func OpenControlEndpoint(path string, auth *controlAuth, log *slog.Logger) (*ControlEndpoint, error) {
	_ = os.Remove(path)

	addr, err := net.ResolveUnixAddr("unix", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEndpointUnavailable, err)
	}
	listener, err := net.ListenUnix("unix", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEndpointUnavailable, err)
	}
	return &ControlEndpoint{listener: listener, auth: auth, log: log}, nil
}

// Close releases the listener and removes the socket file.
func (c *ControlEndpoint) Close() error {
	if c == nil || c.listener == nil {
		return nil
	}
	path := c.listener.Addr().String()
	err := c.listener.Close()
	_ = os.Remove(path)
	return err
}

// PollOnce attempts a single non-blocking accept and, if a client connected,
// services exactly one request/reply exchange before closing it (spec
// §4.G, §4.H: "at each tick, attempt one non-blocking accept").
func (c *ControlEndpoint) PollOnce(o *Orchestrator) {
	if c == nil || c.listener == nil {
		return
	}
	_ = c.listener.SetDeadline(time.Now())
	conn, err := c.listener.Accept()
	if err != nil {
		return // no pending client this tick (timeout), or a transient error
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(controlDeadline))
	buf := make([]byte, maxRequestBytes)
	n, err := conn.Read(buf)
	if err != nil && n == 0 {
		return
	}

	reply := c.dispatch(o, string(buf[:n]))
	_, _ = conn.Write([]byte(reply))
}

// dispatch parses one request line and produces the reply text (spec
// §4.G protocol table).
func (c *ControlEndpoint) dispatch(o *Orchestrator, request string) string {
	line := firstLine(request)
	verb, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	if c.auth.enabled() {
		token, remainder, _ := strings.Cut(rest, " ")
		if token == "" || !c.auth.check(token) {
			return "Unknown command\n"
		}
		rest = strings.TrimSpace(remainder)
	}

	switch verb {
	case "start":
		return okOrFailed(o.Start(rest))
	case "stop":
		return okOrFailed(o.Stop(rest))
	case "restart":
		return okOrFailed(o.Restart(rest))
	case "status":
		return formatStatus(o.table, rest)
	case "list":
		return formatList(o.table)
	case "history":
		return formatHistory(o.history, rest)
	default:
		return "Unknown command\n"
	}
}

func firstLine(s string) string {
	if idx := strings.IndexAny(s, "\r\n"); idx >= 0 {
		return s[:idx]
	}
	return s
}

func okOrFailed(err error) string {
	if err != nil {
		return "FAILED\n"
	}
	return "OK\n"
}

// formatStatus implements the spec §6 status reply format.
func formatStatus(table *ServiceTable, name string) string {
	snap, ok := table.Snapshot(name)
	if !ok {
		return "Service not found\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Service: %s\n", snap.Name)
	fmt.Fprintf(&b, "Description: %s\n", snap.Description)
	fmt.Fprintf(&b, "State: %s\n", snap.State)
	if snap.PID != 0 {
		fmt.Fprintf(&b, "PID: %d\n", snap.PID)
	}
	if snap.TTY != "" {
		fmt.Fprintf(&b, "TTY: %s\n", snap.TTY)
	}
	return b.String()
}

// formatList implements the spec §6 list reply format.
func formatList(table *ServiceTable) string {
	var b strings.Builder
	b.WriteString("Services:\n")
	for _, svc := range table.All() {
		fmt.Fprintf(&b, "  %s - %s", svc.Name, svc.State)
		if svc.Autostart {
			b.WriteString(" [auto]")
		}
		if svc.TTY != "" {
			fmt.Fprintf(&b, " [%s]", svc.TTY)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// formatHistory renders recent audit events for a `history` request — an
// addition beyond the core control protocol (§14.3), following the same
// plain-text, one-record-per-line convention as status/list.
func formatHistory(history *HistoryStore, name string) string {
	events, err := history.Recent(name, 20)
	if err != nil {
		return "FAILED\n"
	}
	if len(events) == 0 {
		return "History:\n"
	}
	var b strings.Builder
	b.WriteString("History:\n")
	for _, e := range events {
		fmt.Fprintf(&b, "  %s %s %s %s\n", e.OccurredAt, e.Service, e.Kind, e.Detail)
	}
	return b.String()
}

// bufferedReadLine is kept for callers (e.g. tests) that want to read a
// single newline-terminated reply from a raw net.Conn.
func bufferedReadLine(conn net.Conn) (string, error) {
	r := bufio.NewReader(conn)
	return r.ReadString('\n')
}
