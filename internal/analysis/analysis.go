// Package analysis reports the full probability picture of an attack
// instead of rolling it: each attack variant the attacker may use, its
// chance, power, hit rate and damage histograms, and the weighted total.
// Whenever an inner calculation has no answer the report carries what it
// could compute and a note, never an error.
package analysis

import (
	"errors"
	"fmt"

	"github.com/pefman/fleet-sim/internal/attack"
	"github.com/pefman/fleet-sim/internal/cutin"
	"github.com/pefman/fleet-sim/internal/defs"
	"github.com/pefman/fleet-sim/internal/game"
	"github.com/pefman/fleet-sim/internal/models"
)

var ErrBadMatchup = errors.New("bad matchup")

// Variant is one way the attack can go: the plain attack (empty tag) or a
// cutin.
type Variant struct {
	Tag            string                            `json:"tag"`
	Rate           float64                           `json:"rate"`
	Available      bool                              `json:"available"`
	AttackPower    *attack.AttackPower               `json:"attack_power,omitempty"`
	HitRate        *attack.HitRate                   `json:"hit_rate,omitempty"`
	Hits           float64                           `json:"hits,omitempty"`
	ExpectedDamage float64                           `json:"expected_damage"`
	Damage         attack.NumMap[int]                `json:"damage,omitempty"`
	DamageStates   attack.NumMap[models.DamageState] `json:"damage_states,omitempty"`
}

// Report covers one attacker against one target. Coverage is the
// probability mass of the variants that could be computed; the totals are
// weighted by it and sum to less than 1 when it is below 1.
type Report struct {
	Style          game.Style                        `json:"style,omitempty"`
	Variants       []Variant                         `json:"variants"`
	Coverage       float64                           `json:"coverage"`
	ExpectedDamage float64                           `json:"expected_damage"`
	Damage         attack.NumMap[int]                `json:"damage"`
	DamageStates   attack.NumMap[models.DamageState] `json:"damage_states"`
	Notes          []string                          `json:"notes,omitempty"`
}

func (r *Report) note(format string, args ...any) {
	r.Notes = append(r.Notes, fmt.Sprintf(format, args...))
}

func (r *Report) add(v Variant) {
	r.Variants = append(r.Variants, v)
	if !v.Available {
		return
	}
	r.Coverage += v.Rate
	r.ExpectedDamage += v.Rate * v.ExpectedDamage
	r.Damage.Merge(v.Damage.Scaled(v.Rate))
	r.DamageStates.Merge(v.DamageStates.Scaled(v.Rate))
}

func newReport(style game.Style) Report {
	return Report{Style: style, Damage: attack.NumMap[int]{}, DamageStates: attack.NumMap[models.DamageState]{}}
}

func variant(tag string, rate float64, p attack.AttackParams, ok bool) Variant {
	v := Variant{Tag: tag, Rate: rate}
	if !ok {
		return v
	}
	dmg, ok := p.DamageDistribution()
	if !ok {
		return v
	}
	states, _ := p.DamageStateDistribution()
	v.Available = true
	v.AttackPower, v.HitRate, v.Hits = p.AttackPower, p.HitRate, p.Hits
	v.Damage, v.DamageStates = dmg, states
	v.ExpectedDamage = attack.Mean(dmg)
	return v
}

// Shelling reports the day attack of att on tgt, one variant per day cutin
// the attacker may roll.
func Shelling(ctx game.Context, att, tgt game.Combatant) Report {
	style, ok := game.DayStyle(att.Ship, tgt.Ship)
	r := newReport(style)
	if !ok {
		r.note("%s cannot attack %s by day", att.Ship.Name, tgt.Ship.Name)
		return r
	}
	if style == game.StyleASW {
		p, ok := game.ASW(ctx, att, tgt)
		r.add(variant("", 1, p, ok))
		r.noteMissing(att, tgt)
		return r
	}

	dist, ok := cutin.DayDistribution(ctx.Defs, att.Ship, cutin.DayContext{
		AirState:   ctx.AirState,
		Fleet:      att.Side.Fleet(att.Role),
		IsFlagship: att.IsFlagship(),
	})
	if !ok {
		r.note("no cutin data: fleet or ship LoS or luck unknown")
		dist = cutin.None[cutin.DayTag]()
	}
	for _, o := range dist {
		c := ctx
		c.Special = nil
		if o.Tag != cutin.DayNone {
			def, ok := ctx.Defs.DayCutin(string(o.Tag))
			if !ok {
				r.note("no definition for day cutin %s", o.Tag)
				continue
			}
			c.Special = game.SpecialFromCutin(def)
		}
		p, ok := game.Shelling(c, att, tgt)
		r.add(variant(string(o.Tag), o.Rate, p, ok))
	}
	r.noteMissing(att, tgt)
	return r
}

// Night reports the night attack of att on tgt. ctx.Night carries the
// searchlight and star shell flags; the flagship flag comes from att.
func Night(ctx game.Context, att, tgt game.Combatant) Report {
	style, ok := game.NightStyle(att.Ship, tgt.Ship)
	r := newReport(style)
	if !ok {
		r.note("%s cannot attack %s at night", att.Ship.Name, tgt.Ship.Name)
		return r
	}
	ctx.Night.IsFlagship = att.IsFlagship()
	if style == game.StyleASW {
		p, ok := game.ASW(ctx, att, tgt)
		r.add(variant("", 1, p, ok))
		r.noteMissing(att, tgt)
		return r
	}

	dist, ok := cutin.NightDistribution(ctx.Defs, att.Ship, ctx.Night)
	if !ok {
		r.note("no cutin data: luck unknown")
		dist = cutin.None[cutin.NightTag]()
	}
	for _, o := range dist {
		c := ctx
		c.Special = nil
		if o.Tag != cutin.NightNone {
			def, ok := ctx.Defs.NightCutin(string(o.Tag))
			if !ok {
				r.note("no definition for night cutin %s", o.Tag)
				continue
			}
			c.Special = game.SpecialFromCutin(def)
		}
		p, ok := game.Night(c, att, tgt)
		r.add(variant(string(o.Tag), o.Rate, p, ok))
	}
	r.noteMissing(att, tgt)
	return r
}

func (r *Report) noteMissing(att, tgt game.Combatant) {
	if r.Coverage == 0 {
		r.note("no attack data: a stat of %s or %s needed here is unknown", att.Ship.Name, tgt.Ship.Name)
	}
}

// Matchup is a one-on-one setup built outside a battle, as the HTTP API
// receives it. The attacker is Fleet[AttackerIndex].
type Matchup struct {
	Fleet             []*models.Ship     `json:"fleet"`
	AttackerIndex     int                `json:"attacker_index"`
	Target            *models.Ship       `json:"target"`
	AttackerFormation models.Formation   `json:"attacker_formation"`
	TargetFormation   models.Formation   `json:"target_formation"`
	Engagement        models.Engagement  `json:"engagement"`
	AirState          models.AirState    `json:"air_state"`
	Night             cutin.NightContext `json:"night"`
	// PlayerTarget puts the target on the player side, where it cannot sink.
	PlayerTarget bool `json:"player_target"`
}

// Resolve builds the attack context and both combatants. Ships that leave
// out current HP or morale get the same defaults as in a scenario.
func (m Matchup) Resolve(d *defs.Definitions) (game.Context, game.Combatant, game.Combatant, error) {
	if m.AttackerIndex < 0 || m.AttackerIndex >= len(m.Fleet) || m.Fleet[m.AttackerIndex] == nil {
		return game.Context{}, game.Combatant{}, game.Combatant{}, fmt.Errorf("%w: no attacker at index %d", ErrBadMatchup, m.AttackerIndex)
	}
	if m.Target == nil {
		return game.Context{}, game.Combatant{}, game.Combatant{}, fmt.Errorf("%w: target missing", ErrBadMatchup)
	}
	for i, s := range m.Fleet {
		if s == nil || s.MaxHP <= 0 {
			return game.Context{}, game.Combatant{}, game.Combatant{}, fmt.Errorf("%w: fleet slot %d has no ship", ErrBadMatchup, i)
		}
	}
	if m.Target.MaxHP <= 0 {
		return game.Context{}, game.Combatant{}, game.Combatant{}, fmt.Errorf("%w: target needs max_hp", ErrBadMatchup)
	}
	for _, s := range append([]*models.Ship{m.Target}, m.Fleet...) {
		s.FillDefaults()
		if s.CurrentHP < 0 || s.CurrentHP > s.MaxHP {
			return game.Context{}, game.Combatant{}, game.Combatant{}, fmt.Errorf("%w: %q has hp %d of %d", ErrBadMatchup, s.Name, s.CurrentHP, s.MaxHP)
		}
	}

	own := &models.Side{Player: !m.PlayerTarget, Formation: m.AttackerFormation, Main: &models.Fleet{Ships: m.Fleet}}
	other := &models.Side{Player: m.PlayerTarget, Formation: m.TargetFormation, Main: &models.Fleet{Ships: []*models.Ship{m.Target}}}
	att := game.NewCombatant(own, models.Member{Ship: m.Fleet[m.AttackerIndex], Role: models.RoleMain, Index: m.AttackerIndex, FleetLen: len(m.Fleet)})
	tgt := game.NewCombatant(other, models.Member{Ship: m.Target, Role: models.RoleMain, Index: 0, FleetLen: 1})
	ctx := game.Context{Defs: d, Engagement: m.Engagement, AirState: m.AirState, Night: m.Night}
	return ctx, att, tgt, nil
}
