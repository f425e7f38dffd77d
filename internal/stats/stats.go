package stats

import (
	"sort"
	"sync"
	"time"

	"github.com/pefman/fleet-sim/internal/sim"
)

// MaxRuns bounds the run store; the oldest run is dropped first.
const MaxRuns = 256

// Run summaries by id, plus the heaviest single hit per UTC day. In memory
// only.
var (
	statsMu  sync.Mutex
	runs     = make(map[string]*sim.Summary)
	runOrder []string
	dailyMax = make(map[string]sim.Hit)
)

func SaveRun(s *sim.Summary) {
	if s == nil || s.ID == "" {
		return
	}
	statsMu.Lock()
	defer statsMu.Unlock()
	if _, ok := runs[s.ID]; !ok {
		runOrder = append(runOrder, s.ID)
	}
	runs[s.ID] = s
	for len(runOrder) > MaxRuns {
		delete(runs, runOrder[0])
		runOrder = runOrder[1:]
	}
}

func GetRun(id string) (*sim.Summary, bool) {
	statsMu.Lock()
	defer statsMu.Unlock()
	s, ok := runs[id]
	return s, ok
}

// RunIDs lists the stored runs, oldest first.
func RunIDs() []string {
	statsMu.Lock()
	defer statsMu.Unlock()
	return append([]string(nil), runOrder...)
}

func dateKey(t time.Time) string { return t.UTC().Format("2006-01-02") }

// SaveGlobalMaxHit keeps the hit if it beats the day's heaviest. Ties go to
// the earlier hit. A zero At is stamped with the current time.
func SaveGlobalMaxHit(h sim.Hit) {
	if h.At.IsZero() {
		h.At = time.Now().UTC()
	}
	key := dateKey(h.At)
	statsMu.Lock()
	defer statsMu.Unlock()
	if cur, ok := dailyMax[key]; ok && cur.Damage >= h.Damage {
		return
	}
	dailyMax[key] = h
}

func GetGlobalMaxHitToday() (sim.Hit, bool) {
	statsMu.Lock()
	defer statsMu.Unlock()
	h, ok := dailyMax[dateKey(time.Now())]
	return h, ok
}

// Days lists the dates with a recorded hit, most recent first.
func Days() []string {
	statsMu.Lock()
	defer statsMu.Unlock()
	out := make([]string, 0, len(dailyMax))
	for k := range dailyMax {
		out = append(out, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out
}
