// Package battle fights one battle between two sides. A table keyed by the
// two organization shapes fixes the day phases; a looplab/fsm sequencer
// walks them in order, and each phase orders its attackers, picks targets,
// resolves the attack style (rolling a cutin where one applies) and applies
// damage to the ships in place.
package battle

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/pefman/fleet-sim/internal/attack"
	"github.com/pefman/fleet-sim/internal/defs"
	"github.com/pefman/fleet-sim/internal/engine"
	"github.com/pefman/fleet-sim/internal/game"
	"github.com/pefman/fleet-sim/internal/models"
)

var (
	// ErrMalformedSide reports a side that breaks the shape contract: an
	// empty main fleet, a combined side without escort, a bad HP value.
	ErrMalformedSide = errors.New("malformed side")
	ErrAlreadyFought = errors.New("battle already fought")
)

// Options switches the optional phases on and may fix the engagement.
type Options struct {
	// Engagement is drawn from the definitions' weights when nil.
	Engagement     *models.Engagement `json:"engagement,omitempty" yaml:"engagement,omitempty"`
	AirBattle      bool               `json:"air_battle" yaml:"air_battle"`
	Support        bool               `json:"support" yaml:"support"`
	OpeningASW     bool               `json:"opening_asw" yaml:"opening_asw"`
	OpeningTorpedo bool               `json:"opening_torpedo" yaml:"opening_torpedo"`
	Night          bool               `json:"night" yaml:"night"`
}

// DefaultOptions fights every phase.
func DefaultOptions() Options {
	return Options{AirBattle: true, Support: true, OpeningASW: true, OpeningTorpedo: true, Night: true}
}

// Config builds a Battle. Defs, Rand and Logger have defaults.
type Config struct {
	Defs     *defs.Definitions
	Player   *models.Side
	Enemy    *models.Side
	Rand     *rand.Rand
	Logger   *zap.Logger
	Observer func(Event)
	Options  Options
}

// Battle is one battle. The sides are mutated in place.
type Battle struct {
	ID string

	player   *models.Side
	enemy    *models.Side
	d        *defs.Definitions
	opts     Options
	rng      *rand.Rand
	log      *zap.Logger
	observer func(Event)

	phases     []Phase
	engagement models.Engagement
	airState   models.AirState
	fleetCutin map[bool]bool
	events     []Event
	done       bool
}

func New(cfg Config) *Battle {
	b := &Battle{
		ID:         uuid.NewString(),
		player:     cfg.Player,
		enemy:      cfg.Enemy,
		d:          cfg.Defs,
		opts:       cfg.Options,
		rng:        cfg.Rand,
		log:        cfg.Logger,
		observer:   cfg.Observer,
		fleetCutin: map[bool]bool{},
	}
	if b.d == nil {
		b.d = defs.MustDefault()
	}
	if b.rng == nil {
		b.rng = engine.NewRNG(0)
	}
	if b.log == nil {
		b.log = zap.NewNop()
	}
	b.log = b.log.With(zap.String("battle", b.ID))
	return b
}

func (b *Battle) Player() *models.Side          { return b.player }
func (b *Battle) Enemy() *models.Side           { return b.enemy }
func (b *Battle) Phases() []Phase               { return b.phases }
func (b *Battle) Engagement() models.Engagement { return b.engagement }

// AirState is the air state seen from the player side.
func (b *Battle) AirState() models.AirState { return b.airState }

// Events returns everything that happened, in order.
func (b *Battle) Events() []Event { return b.events }

const (
	stateStart   = "start"
	stateEnd     = "end"
	eventAdvance = "advance"
)

// newSequencer chains start -> phases... -> end on a single advance event.
func newSequencer(phases []Phase, onEnter fsm.Callback) *fsm.FSM {
	states := make([]string, 0, len(phases)+2)
	states = append(states, stateStart)
	for _, p := range phases {
		states = append(states, string(p))
	}
	states = append(states, stateEnd)

	events := make(fsm.Events, 0, len(states)-1)
	for i := 0; i+1 < len(states); i++ {
		events = append(events, fsm.EventDesc{Name: eventAdvance, Src: []string{states[i]}, Dst: states[i+1]})
	}
	return fsm.NewFSM(stateStart, events, fsm.Callbacks{"enter_state": onEnter})
}

// TryBattle validates both sides and fights every phase in table order.
func (b *Battle) TryBattle() error {
	if b.done {
		return ErrAlreadyFought
	}
	if err := validateSide("player", b.player); err != nil {
		return err
	}
	if err := validateSide("enemy", b.enemy); err != nil {
		return err
	}
	day, err := DayTable(b.player.Shape, b.enemy.Shape)
	if err != nil {
		return err
	}
	b.player.Player = true
	b.enemy.Player = false
	b.phases = b.opts.sequence(day)
	b.engagement = b.pickEngagement()
	b.airState = game.ResolveAirState(sideFighterPower(b.player), sideFighterPower(b.enemy))
	b.log.Debug("battle start",
		zap.Stringer("engagement", b.engagement),
		zap.Stringer("air_state", b.airState),
		zap.Int("phases", len(b.phases)))

	ctx := context.Background()
	seq := newSequencer(b.phases, b.enterPhase)
	for seq.Can(eventAdvance) {
		if err := seq.Event(ctx, eventAdvance); err != nil {
			return fmt.Errorf("advance from %s: %w", seq.Current(), err)
		}
		if cur := seq.Current(); cur != stateEnd {
			b.runPhase(Phase(cur))
		}
	}
	b.done = true
	b.emit(Event{Kind: EventEnd, Message: fmt.Sprintf("Battle over: %s", b.tally())})
	return nil
}

func (b *Battle) enterPhase(_ context.Context, e *fsm.Event) {
	if e.Dst == stateEnd {
		return
	}
	b.log.Debug("phase", zap.String("from", e.Src), zap.String("to", e.Dst))
	b.emit(Event{Kind: EventPhase, Phase: Phase(e.Dst), Message: fmt.Sprintf("Phase: %s", e.Dst)})
}

func (b *Battle) runPhase(p Phase) {
	switch {
	case p == PhaseAirBattle:
		b.airBattle()
	case p == PhaseSupport:
		b.supportPhase()
	case p == PhaseOpeningASW:
		b.openingASW()
	case p == PhaseOpeningTorpedo || p == PhaseTorpedo:
		b.torpedoPhase(p)
	case isShelling(p):
		b.shellingPhase(p)
	case p == PhaseNight:
		b.nightPhase()
	}
}

func (b *Battle) pickEngagement() models.Engagement {
	if b.opts.Engagement != nil {
		return *b.opts.Engagement
	}
	return models.Engagements[engine.Categorical(b.rng, b.d.EngagementWeightList())]
}

func validateSide(name string, s *models.Side) error {
	if s == nil {
		return fmt.Errorf("%w: %s side missing", ErrMalformedSide, name)
	}
	if s.Main.Len() == 0 {
		return fmt.Errorf("%w: %s main fleet is empty", ErrMalformedSide, name)
	}
	if s.Shape.IsCombined() != (s.Escort.Len() > 0) {
		return fmt.Errorf("%w: %s shape %s with %d escort ships", ErrMalformedSide, name, s.Shape, s.Escort.Len())
	}
	for _, f := range []*models.Fleet{s.Main, s.Escort, s.Support} {
		if f == nil {
			continue
		}
		for i, ship := range f.Ships {
			if ship == nil {
				return fmt.Errorf("%w: %s slot %d is empty", ErrMalformedSide, name, i)
			}
			if ship.MaxHP <= 0 || ship.CurrentHP < 0 || ship.CurrentHP > ship.MaxHP {
				return fmt.Errorf("%w: %s %q has HP %d/%d", ErrMalformedSide, name, ship.Name, ship.CurrentHP, ship.MaxHP)
			}
		}
	}
	return nil
}

func sideFighterPower(s *models.Side) float64 {
	return game.FighterPower(s.Main) + game.FighterPower(s.Escort)
}

func (b *Battle) opponent(s *models.Side) *models.Side {
	if s == b.player {
		return b.enemy
	}
	return b.player
}

// context is the attack context of the given side.
func (b *Battle) context(player bool) game.Context {
	as := b.airState
	if !player {
		as = as.Inverse()
	}
	return game.Context{Defs: b.d, Engagement: b.engagement, AirState: as}
}

func (b *Battle) emit(e Event) {
	e.Seq = len(b.events) + 1
	b.events = append(b.events, e)
	if b.observer != nil {
		b.observer(e)
	}
}

// strike rolls the attack, applies it to the target and records it.
func (b *Battle) strike(p Phase, att, tgt game.Combatant, params attack.AttackParams, style game.Style, special *game.Special, protected bool) {
	out, ok := params.Apply(b.rng, tgt.Ship)
	if !ok {
		return
	}
	tag := ""
	if special != nil {
		tag = special.Tag
	}
	hits := hitSummary(out)
	b.log.Debug("attack",
		zap.String("phase", string(p)),
		zap.String("attacker", att.Ship.Name),
		zap.String("target", tgt.Ship.Name),
		zap.String("style", string(style)),
		zap.String("special", tag),
		zap.String("hit", hits),
		zap.Int("damage", out.Total),
		zap.Int("hp", tgt.Ship.CurrentHP))

	msg := fmt.Sprintf("%s -> %s (%s", att.Ship.Name, tgt.Ship.Name, style)
	if tag != "" {
		msg += ", " + tag
	}
	msg += fmt.Sprintf("): %s for %d, HP %d/%d", hits, out.Total, tgt.Ship.CurrentHP, tgt.Ship.MaxHP)
	if protected {
		msg += " [protected flagship]"
	}
	if tgt.Ship.IsSunk() {
		msg += " [sunk]"
	}
	b.emit(Event{
		Kind:      EventAttack,
		Phase:     p,
		Side:      sideName(att.Side.Player),
		Attacker:  att.Ship.Name,
		Target:    tgt.Ship.Name,
		Style:     style,
		Special:   tag,
		Protected: protected,
		Hits:      out.Hits,
		Damage:    out.Total,
		TargetHP:  tgt.Ship.CurrentHP,
		Message:   msg,
	})
}

func hitSummary(out attack.Outcome) string {
	parts := make([]string, len(out.Hits))
	for i, h := range out.Hits {
		parts[i] = h.Hit.String()
	}
	return strings.Join(parts, "+")
}

// tally counts the survivors of both sides.
func (b *Battle) tally() string {
	count := func(s *models.Side) (alive, total int) {
		for _, m := range s.Members(models.ScopeBoth) {
			total++
			if !m.Ship.IsSunk() {
				alive++
			}
		}
		return
	}
	pa, pt := count(b.player)
	ea, et := count(b.enemy)
	return fmt.Sprintf("player %d/%d afloat, enemy %d/%d afloat", pa, pt, ea, et)
}
