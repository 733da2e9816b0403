package airride

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
)

const (
	nullDevice    = "/dev/null"
	systemConsole = "/dev/console"
)

// terminalTarget resolves the controlling-terminal device path for a
// service per spec §4.D step 2: an explicit tty wins, otherwise the system
// console if foreground is set, otherwise empty (background).
func terminalTarget(svc *Service) string {
	if svc.TTY != "" {
		return svc.TTY
	}
	if svc.Foreground {
		return systemConsole
	}
	return ""
}

// buildCommand tokenizes a start/stop command line by whitespace (spec
// §4.B/§4.D) and resolves it with path lookup. When the binary cannot be
// found, the lookup is deferred into a shell child: Go's runtime surfaces
// exec(2) failures to the parent before any child exists (it intercepts
// them over a pipe during fork), so a literal "child exits 127" outcome
// needs a real process to report it. A thin `sh -c` wrapper gives us that
// child and shell's own command-not-found convention already exits 127.
func buildCommand(line string) *exec.Cmd {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		fields = []string{"/bin/false"}
	}
	cmd := exec.Command(fields[0], fields[1:]...)
	if _, err := exec.LookPath(fields[0]); err != nil {
		args := append([]string{"--"}, fields...)
		cmd = exec.Command("/bin/sh", append([]string{"-c", `exec "$@"`}, args...)...)
	}
	return cmd
}

// spawnProcess forks and execs a service's start command, attaching it
// either to a terminal device as a new session leader with a controlling
// terminal, or to a background log file (spec §4.D). The returned Cmd has
// already been started; the caller reads Cmd.Process.Pid and leaves the
// wait to the shared reaper (REDESIGN FLAG R2) rather than calling Cmd.Wait
// itself.
func spawnProcess(svc *Service, logDir string) (*exec.Cmd, error) {
	cmd := buildCommand(svc.ExecStart)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	target := terminalTarget(svc)
	if target != "" {
		tty, err := os.OpenFile(target, os.O_RDWR, 0)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: open terminal %s: %v", ErrStartFailed, svc.Name, target, err)
		}
		defer tty.Close()
		cmd.Stdin = tty
		cmd.Stdout = tty
		cmd.Stderr = tty
		cmd.SysProcAttr.Setctty = true
		cmd.SysProcAttr.Ctty = 0
	} else {
		null, err := os.OpenFile(nullDevice, os.O_RDWR, 0)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: open null device: %v", ErrStartFailed, svc.Name, err)
		}
		defer null.Close()
		cmd.Stdin = null

		logPath := fmt.Sprintf("%s/%s.log", logDir, svc.Name)
		logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			cmd.Stdout = null
			cmd.Stderr = null
		} else {
			defer logFile.Close()
			cmd.Stdout = logFile
			cmd.Stderr = logFile
		}
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStartFailed, svc.Name, err)
	}
	return cmd, nil
}
