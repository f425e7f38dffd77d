package stats

import "github.com/pefman/fleet-sim/internal/sim"

// Reset helpers for tests and dev use.

// ResetDaily clears the per-day heaviest hits.
func ResetDaily() {
	statsMu.Lock()
	defer statsMu.Unlock()
	for k := range dailyMax {
		delete(dailyMax, k)
	}
}

// ResetRuns clears the run store.
func ResetRuns() {
	statsMu.Lock()
	defer statsMu.Unlock()
	runs = make(map[string]*sim.Summary)
	runOrder = nil
}
