package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pefman/fleet-sim/internal/analysis"
	"github.com/pefman/fleet-sim/internal/game"
	"github.com/pefman/fleet-sim/internal/models"
	"github.com/pefman/fleet-sim/internal/scenario"
	"github.com/pefman/fleet-sim/internal/sim"
	"github.com/pefman/fleet-sim/internal/stats"
)

// maxBody caps request bodies; scenarios are small.
const maxBody = 1 << 20

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleDefinitions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.defs)
}

// POST /api/analyze/shelling and /api/analyze/night
// Body: analysis.Matchup
func (s *Server) analyze(report func(game.Context, game.Combatant, game.Combatant) analysis.Report) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var m analysis.Matchup
		if !decode(w, r, &m) {
			return
		}
		ctx, att, tgt, err := m.Resolve(s.defs)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, report(ctx, att, tgt))
	}
}

func (s *Server) handleAnalyzeShelling(w http.ResponseWriter, r *http.Request) {
	s.analyze(analysis.Shelling)(w, r)
}

func (s *Server) handleAnalyzeNight(w http.ResponseWriter, r *http.Request) {
	s.analyze(analysis.Night)(w, r)
}

// POST /api/analyze/anti-air
// Body: { side: models.Side }
func (s *Server) handleAnalyzeAntiAir(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Side *models.Side `json:"side"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Side == nil || req.Side.Main.Len() == 0 {
		writeError(w, http.StatusBadRequest, "side with a main fleet required")
		return
	}
	for _, m := range req.Side.Members(models.ScopeBoth) {
		if m.Ship == nil {
			writeError(w, http.StatusBadRequest, "side has an empty ship slot")
			return
		}
		m.Ship.FillDefaults()
	}
	writeJSON(w, analysis.AntiAir(s.defs, req.Side))
}

// SimRequest is the body of POST /api/sim.
type SimRequest struct {
	Scenario json.RawMessage `json:"scenario"`
	Trials   int             `json:"trials"`
	Seed     int64           `json:"seed,omitempty"`
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req SimRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.Scenario) == 0 {
		writeError(w, http.StatusBadRequest, "missing scenario")
		return
	}
	sc, err := scenario.Parse(req.Scenario)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.simTimeout)
	defer cancel()
	summary, err := s.runner.Run(ctx, sc, req.Trials, req.Seed)
	switch {
	case errors.Is(err, sim.ErrBadTrials), errors.Is(err, scenario.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		// Partial runs are still stored; the caller learns how far it got.
		s.log.Warn("simulation cut short", zap.Error(err))
	case err != nil:
		s.log.Error("simulation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.record(summary)
	writeJSON(w, summary)
}

func (s *Server) record(summary *sim.Summary) {
	stats.SaveRun(summary)
	if summary.MaxHit != nil && summary.MaxHit.Damage > 0 {
		stats.SaveGlobalMaxHit(*summary.MaxHit)
	}
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"runs": stats.RunIDs()})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	summary, ok := stats.GetRun(id)
	if !ok {
		writeError(w, http.StatusNotFound, "run not found: "+id)
		return
	}
	writeJSON(w, summary)
}

// GET /api/stats/max-damage/today
// An empty object when nothing was recorded today.
func (s *Server) handleMaxDamageToday(w http.ResponseWriter, r *http.Request) {
	h, ok := stats.GetGlobalMaxHitToday()
	if !ok {
		writeJSON(w, map[string]any{})
		return
	}
	writeJSON(w, h)
}
