package main

import (
	"bufio"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

// handleSignals waits for a termination signal and powers the machine off
// when running as process one; in test mode (not PID1) it just exits, since
// there is no kernel to hand control back to (spec §15, grounded on the
// pid1 bootstrap example's handleSignals/reapZombies pattern).
func handleSignals(log *slog.Logger, pid1 bool) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("received signal", "signal", sig.String(), "pid1", pid1)

	if !pid1 {
		os.Exit(0)
	}
	if err := syscall.Reboot(syscall.LINUX_REBOOT_CMD_POWER_OFF); err != nil {
		log.Error("reboot syscall failed", "error", err)
	}
}

// cmdlineValue scans /proc/cmdline for a "key=value" field (spec §15:
// "Read a single line ... /proc/cmdline key scan", grounded on the same
// helper in the pid1 bootstrap example).
func cmdlineValue(key string) string {
	f, err := os.Open("/proc/cmdline")
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		for _, field := range strings.Fields(scanner.Text()) {
			if strings.HasPrefix(field, key+"=") {
				return strings.TrimPrefix(field, key+"=")
			}
		}
	}
	return ""
}
