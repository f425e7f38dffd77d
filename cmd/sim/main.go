// Command sim fights a scenario many times and prints the JSON summary.
//
//	sim -scenario scenarios/example.yaml -n 1000 -seed 42
//	sim -scenario scenarios/example.yaml -remote http://localhost:8080
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/pefman/fleet-sim/internal/api"
	"github.com/pefman/fleet-sim/internal/defs"
	"github.com/pefman/fleet-sim/internal/logging"
	"github.com/pefman/fleet-sim/internal/scenario"
	"github.com/pefman/fleet-sim/internal/sim"
)

func main() {
	path := flag.String("scenario", "", "scenario file (YAML or JSON)")
	n := flag.Int("n", 1000, "number of battles")
	seed := flag.Int64("seed", 0, "random seed; 0 picks one from the clock")
	defsPath := flag.String("defs", "", "battle definitions file; embedded defaults when empty")
	remote := flag.String("remote", "", "base URL of a fleet-sim API to run on instead of locally")
	verbose := flag.Bool("v", false, "log every attack")
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "sim: -scenario is required")
		flag.Usage()
		os.Exit(2)
	}
	level := "info"
	if *verbose {
		level = "debug"
	}
	log, err := logging.New(level, "console")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(log, *path, *n, *seed, *defsPath, *remote); err != nil {
		log.Error("sim failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(log *zap.Logger, path string, n int, seed int64, defsPath, remote string) error {
	sc, err := scenario.Load(path)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var summary *sim.Summary
	if remote != "" {
		log.Info("running remotely", zap.String("api", remote))
		summary, err = api.NewClient(remote).Simulate(ctx, sc, n, seed)
	} else {
		d, derr := defs.LoadOrDefault(defsPath)
		if derr != nil {
			return derr
		}
		summary, err = sim.NewRunner(d, log).Run(ctx, sc, n, seed)
	}
	// An interrupted local run still prints what it finished.
	if summary == nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(summary); encErr != nil {
		return encErr
	}
	return err
}
