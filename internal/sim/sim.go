// Package sim fights a scenario many times with one seeded generator and
// aggregates how the ships ended up.
package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pefman/fleet-sim/internal/attack"
	"github.com/pefman/fleet-sim/internal/battle"
	"github.com/pefman/fleet-sim/internal/defs"
	"github.com/pefman/fleet-sim/internal/engine"
	"github.com/pefman/fleet-sim/internal/models"
	"github.com/pefman/fleet-sim/internal/scenario"
)

// MaxTrials bounds one run.
const MaxTrials = 100000

var ErrBadTrials = errors.New("trial count out of range")

// Hit is one attack of a run, kept when it is the heaviest so far.
type Hit struct {
	Attacker string       `json:"attacker"`
	Target   string       `json:"target"`
	Phase    battle.Phase `json:"phase"`
	Special  string       `json:"special,omitempty"`
	Damage   int          `json:"damage"`
	At       time.Time    `json:"at"`
}

// ShipSummary is where one ship ended up over all trials.
type ShipSummary struct {
	Name         string                            `json:"name"`
	Role         models.FleetRole                  `json:"role"`
	Index        int                               `json:"index"`
	MeanHP       float64                           `json:"mean_hp"`
	DamageStates attack.NumMap[models.DamageState] `json:"damage_states"`
}

// Summary aggregates a run. Rates are fractions of the completed trials.
type Summary struct {
	ID        string        `json:"id"`
	Scenario  string        `json:"scenario,omitempty"`
	Seed      int64         `json:"seed"`
	Requested int           `json:"requested"`
	Trials    int           `json:"trials"`
	Player    []ShipSummary `json:"player"`
	Enemy     []ShipSummary `json:"enemy"`
	// EnemyFlagshipSunk counts trials where the enemy main flagship sank.
	EnemyFlagshipSunk float64 `json:"enemy_flagship_sunk"`
	AllEnemiesSunk    float64 `json:"all_enemies_sunk"`
	// PlayerLoss counts trials where a player ship ended in taiha. Player
	// ships never sink, so taiha is the worst outcome they can reach.
	PlayerLoss float64       `json:"player_loss"`
	MaxHit     *Hit          `json:"max_hit,omitempty"`
	Elapsed    time.Duration `json:"elapsed"`
}

type Runner struct {
	defs *defs.Definitions
	log  *zap.Logger
}

// NewRunner returns a runner; nil arguments take the embedded definitions
// and a no-op logger.
func NewRunner(d *defs.Definitions, log *zap.Logger) *Runner {
	if d == nil {
		d = defs.MustDefault()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{defs: d, log: log}
}

func newShipSummaries(side *models.Side) []ShipSummary {
	members := side.Members(models.ScopeBoth)
	out := make([]ShipSummary, len(members))
	for i, m := range members {
		out[i] = ShipSummary{Name: m.Ship.Name, Role: m.Role, Index: m.Index, DamageStates: attack.NumMap[models.DamageState]{}}
	}
	return out
}

// Run fights sc n times. A zero seed is replaced by the clock and reported
// in the summary so the run can be replayed. On cancellation the summary
// of the completed trials is returned with the context error.
func (r *Runner) Run(ctx context.Context, sc *scenario.Scenario, n int, seed int64) (*Summary, error) {
	if n <= 0 || n > MaxTrials {
		return nil, fmt.Errorf("%w: %d (1..%d)", ErrBadTrials, n, MaxTrials)
	}
	if sc == nil {
		return nil, fmt.Errorf("%w: no scenario", scenario.ErrInvalid)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	start := time.Now()
	rng := engine.NewRNG(seed)
	s := &Summary{
		ID:        uuid.NewString(),
		Scenario:  sc.Name,
		Seed:      seed,
		Requested: n,
		Player:    newShipSummaries(sc.Player),
		Enemy:     newShipSummaries(sc.Enemy),
	}
	log := r.log.With(zap.String("run", s.ID))
	log.Info("run started", zap.String("scenario", sc.Name), zap.Int("trials", n), zap.Int64("seed", seed))

	var flagship, wiped, loss int
	var runErr error
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			runErr = fmt.Errorf("run stopped after %d trials: %w", i, err)
			break
		}
		player, enemy := sc.Sides()
		b := battle.New(battle.Config{
			Defs:    r.defs,
			Player:  player,
			Enemy:   enemy,
			Rand:    rng,
			Logger:  log,
			Options: sc.Options,
			Observer: func(e battle.Event) {
				if e.Kind != battle.EventAttack || (s.MaxHit != nil && e.Damage <= s.MaxHit.Damage) {
					return
				}
				s.MaxHit = &Hit{Attacker: e.Attacker, Target: e.Target, Phase: e.Phase, Special: e.Special, Damage: e.Damage, At: time.Now().UTC()}
			},
		})
		if err := b.TryBattle(); err != nil {
			return nil, fmt.Errorf("trial %d: %w", i, err)
		}
		s.Trials++

		if record(s.Player, player) {
			loss++
		}
		record(s.Enemy, enemy)
		if enemy.Main.Flagship().IsSunk() {
			flagship++
		}
		if allSunk(enemy) {
			wiped++
		}
	}

	if s.Trials > 0 {
		t := float64(s.Trials)
		for _, ships := range [][]ShipSummary{s.Player, s.Enemy} {
			for i := range ships {
				ships[i].MeanHP /= t
				ships[i].DamageStates = ships[i].DamageStates.Scaled(1 / t)
			}
		}
		s.EnemyFlagshipSunk = float64(flagship) / t
		s.AllEnemiesSunk = float64(wiped) / t
		s.PlayerLoss = float64(loss) / t
	}
	s.Elapsed = time.Since(start)
	log.Info("run finished",
		zap.Int("trials", s.Trials),
		zap.Float64("enemy_flagship_sunk", s.EnemyFlagshipSunk),
		zap.Float64("all_enemies_sunk", s.AllEnemiesSunk),
		zap.Float64("player_loss", s.PlayerLoss),
		zap.Duration("elapsed", s.Elapsed))
	return s, runErr
}

// record adds the end state of side to the running sums and reports
// whether any of its ships ended in taiha or worse.
func record(ships []ShipSummary, side *models.Side) bool {
	heavy := false
	for i, m := range side.Members(models.ScopeBoth) {
		st := m.Ship.DamageState()
		ships[i].DamageStates.Add(st, 1)
		ships[i].MeanHP += float64(m.Ship.CurrentHP)
		if st >= models.DamageTaiha {
			heavy = true
		}
	}
	return heavy
}

func allSunk(side *models.Side) bool {
	for _, m := range side.Members(models.ScopeBoth) {
		if !m.Ship.IsSunk() {
			return false
		}
	}
	return true
}
