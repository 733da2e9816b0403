package airride

import (
	"net"
	"path/filepath"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"golang.org/x/crypto/bcrypt"
)

func testEndpoint(t *testing.T) (*ControlEndpoint, *Orchestrator, *ServiceTable) {
	t.Helper()
	table := NewServiceTable()
	table.Add(&Service{Name: "svc", ExecStart: "/bin/sleep 30", Description: "test service"})
	history, _ := OpenHistoryStore("")
	orch := NewOrchestrator(table, discardLogger(), Config{LogDir: t.TempDir()}, otel.Tracer("test"), history)
	startTestReaper(t, orch)

	sockPath := filepath.Join(t.TempDir(), "airride.sock")
	endpoint, err := OpenControlEndpoint(sockPath, newControlAuth(""), discardLogger())
	if err != nil {
		t.Fatalf("OpenControlEndpoint: %v", err)
	}
	t.Cleanup(func() { endpoint.Close() })
	return endpoint, orch, table
}

func roundTrip(t *testing.T, endpoint *ControlEndpoint, orch *Orchestrator, request string) string {
	t.Helper()
	sockPath := endpoint.listener.Addr().String()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				endpoint.PollOnce(orch)
			}
		}
	}()

	conn, err := net.Dial("unix", sockPath)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()
	if _, err := conn.Write([]byte(request)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(time.Second))

	buf := make([]byte, maxRequestBytes)
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return string(buf[:n])
}

func TestControlUnknownVerb(t *testing.T) {
	endpoint, orch, _ := testEndpoint(t)
	reply := roundTrip(t, endpoint, orch, "bogus\n")
	if reply != "Unknown command\n" {
		t.Errorf("reply = %q, want Unknown command", reply)
	}
}

func TestControlStatusNotFound(t *testing.T) {
	endpoint, orch, _ := testEndpoint(t)
	reply := roundTrip(t, endpoint, orch, "status ghost\n")
	if reply != "Service not found\n" {
		t.Errorf("reply = %q", reply)
	}
}

func TestControlStatusFormat(t *testing.T) {
	endpoint, orch, _ := testEndpoint(t)
	reply := roundTrip(t, endpoint, orch, "status svc\n")
	want := "Service: svc\nDescription: test service\nState: stopped\n"
	if reply != want {
		t.Errorf("reply = %q, want %q", reply, want)
	}
}

func TestControlListFormat(t *testing.T) {
	endpoint, orch, _ := testEndpoint(t)
	reply := roundTrip(t, endpoint, orch, "list\n")
	want := "Services:\n  svc - stopped\n"
	if reply != want {
		t.Errorf("reply = %q, want %q", reply, want)
	}
}

func TestControlStartStop(t *testing.T) {
	endpoint, orch, table := testEndpoint(t)

	reply := roundTrip(t, endpoint, orch, "start svc\n")
	if reply != "OK\n" {
		t.Fatalf("start reply = %q", reply)
	}
	waitForState(t, table, "svc", StateRunning, time.Second)

	reply = roundTrip(t, endpoint, orch, "stop svc\n")
	if reply != "OK\n" {
		t.Fatalf("stop reply = %q", reply)
	}
}

func TestDispatchAuthRequiresToken(t *testing.T) {
	hash := mustBcryptHash(t, "s3cret")
	tokenPath := filepath.Join(t.TempDir(), "token")
	writeFile(t, tokenPath, string(hash))

	table := NewServiceTable()
	table.Add(&Service{Name: "svc"})
	history, _ := OpenHistoryStore("")
	orch := NewOrchestrator(table, discardLogger(), Config{LogDir: t.TempDir()}, otel.Tracer("test"), history)

	endpoint := &ControlEndpoint{auth: newControlAuth(tokenPath), log: discardLogger()}

	if got := endpoint.dispatch(orch, "status s3cret svc\n"); got == "Unknown command\n" {
		t.Errorf("correct token should be accepted, got %q", got)
	}
	if got := endpoint.dispatch(orch, "status wrong svc\n"); got != "Unknown command\n" {
		t.Errorf("wrong token should be rejected, got %q", got)
	}
	if got := endpoint.dispatch(orch, "status svc\n"); got != "Unknown command\n" {
		t.Errorf("missing token should be rejected, got %q", got)
	}
}

func mustBcryptHash(t *testing.T, secret string) []byte {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return hash
}
