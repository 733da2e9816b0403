// Command airride is a minimal process-one supervisor for a Linux
// userland: it mounts virtual filesystems, creates device nodes, loads
// service declarations, starts and supervises them, and exposes a local
// control socket.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/airride/airride"
)

func main() {
	pid1 := airride.IsPID1()

	cfg, err := airride.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "airride: config load failed, continuing on defaults: %v\n", err)
	}

	// Precedence lowest to highest: daemon config, boot parameter,
	// environment variable (§12, §15).
	logLevel := cfg.LogLevel
	if v := cmdlineValue("airride.loglevel"); v != "" {
		logLevel = v
	}
	if v := os.Getenv("AIRRIDE_LOGLEVEL"); v != "" {
		logLevel = v
	}
	log := airride.NewSupervisorLogger(cfg.LogDir+"/supervisor.log", logLevel)

	if pid1 {
		airride.Bootstrap(log)
	} else {
		log.Info("not process one, skipping bootstrap (test mode)")
	}

	ctx := context.Background()
	sup, shutdownTracer, err := airride.NewSupervisor(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "airride: fatal: %v\n", err)
		os.Exit(1)
	}
	defer sup.Close()
	defer shutdownTracer(ctx)

	go handleSignals(log, pid1)

	sup.Run(ctx)
}
