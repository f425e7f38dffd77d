package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/pefman/fleet-sim/internal/battle"
	"github.com/pefman/fleet-sim/internal/engine"
	"github.com/pefman/fleet-sim/internal/models"
	"github.com/pefman/fleet-sim/internal/scenario"
	"github.com/pefman/fleet-sim/internal/sim"
	"github.com/pefman/fleet-sim/internal/stats"
)

// wsMsg is every websocket frame in both directions.
//
// Client: {"type": "battle", "data": {"scenario": {...}, "seed": 1}}
// Server: "event" per battle event, then "result"; "error" on bad input.
type wsMsg struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type clientIn struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type battleRequest struct {
	Scenario json.RawMessage `json:"scenario"`
	Seed     int64           `json:"seed,omitempty"`
}

// BattleResult closes a streamed battle.
type BattleResult struct {
	ID         string            `json:"id"`
	Seed       int64             `json:"seed"`
	Engagement models.Engagement `json:"engagement"`
	AirState   models.AirState   `json:"air_state"`
	Phases     []battle.Phase    `json:"phases"`
	Player     *models.Side      `json:"player"`
	Enemy      *models.Side      `json:"enemy"`
	Events     int               `json:"events"`
}

// handleBattleWS fights one battle per "battle" message until the client
// disconnects. Frames are written from this goroutine only.
func (s *Server) handleBattleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("ws upgrade", zap.Error(err))
		return
	}
	defer conn.Close()
	log := s.log.With(zap.String("remote", r.RemoteAddr))
	log.Info("ws connected")

	send := func(m wsMsg) bool {
		if err := conn.WriteJSON(m); err != nil {
			log.Warn("ws write", zap.Error(err))
			return false
		}
		return true
	}

	for {
		var in clientIn
		if err := conn.ReadJSON(&in); err != nil {
			log.Info("ws closed", zap.Error(err))
			return
		}
		if in.Type != "battle" {
			if !send(wsMsg{Type: "error", Data: "unknown message type: " + in.Type}) {
				return
			}
			continue
		}
		var req battleRequest
		if err := json.Unmarshal(in.Data, &req); err != nil || len(req.Scenario) == 0 {
			if !send(wsMsg{Type: "error", Data: "battle needs a scenario"}) {
				return
			}
			continue
		}
		if !s.streamBattle(req, send, log) {
			return
		}
	}
}

// streamBattle reports false once the connection is unusable.
func (s *Server) streamBattle(req battleRequest, send func(wsMsg) bool, log *zap.Logger) bool {
	sc, err := scenario.Parse(req.Scenario)
	if err != nil {
		return send(wsMsg{Type: "error", Data: err.Error()})
	}
	seed := req.Seed
	if seed == 0 {
		seed = engine.NewRNG(0).Int63()
	}
	player, enemy := sc.Sides()
	alive := true
	var best *sim.Hit
	b := battle.New(battle.Config{
		Defs:    s.defs,
		Player:  player,
		Enemy:   enemy,
		Rand:    engine.NewRNG(seed),
		Logger:  log,
		Options: sc.Options,
		Observer: func(e battle.Event) {
			if e.Kind == battle.EventAttack && (best == nil || e.Damage > best.Damage) {
				best = &sim.Hit{Attacker: e.Attacker, Target: e.Target, Phase: e.Phase, Special: e.Special, Damage: e.Damage}
			}
			if alive {
				alive = send(wsMsg{Type: "event", Data: e})
			}
		},
	})
	if err := b.TryBattle(); err != nil {
		return alive && send(wsMsg{Type: "error", Data: err.Error()})
	}
	if best != nil && best.Damage > 0 {
		stats.SaveGlobalMaxHit(*best)
	}
	if !alive {
		return false
	}
	return send(wsMsg{Type: "result", Data: BattleResult{
		ID:         b.ID,
		Seed:       seed,
		Engagement: b.Engagement(),
		AirState:   b.AirState(),
		Phases:     b.Phases(),
		Player:     b.Player(),
		Enemy:      b.Enemy(),
		Events:     len(b.Events()),
	}})
}
