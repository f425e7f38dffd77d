// Package game holds the per-family attack calculators. Each one is a pure
// function of (context, attacker, target) returning the attack.AttackParams
// for one attack, or false when the attack cannot happen or an input it
// needs is unknown.
package game

import (
	"math"

	"github.com/pefman/fleet-sim/internal/attack"
	"github.com/pefman/fleet-sim/internal/cutin"
	"github.com/pefman/fleet-sim/internal/defs"
	"github.com/pefman/fleet-sim/internal/models"
)

// Combatant is a ship together with its place in a side.
type Combatant struct {
	Ship     *models.Ship
	Side     *models.Side
	Role     models.FleetRole
	Index    int
	FleetLen int
}

// NewCombatant wraps a side member.
func NewCombatant(side *models.Side, m models.Member) Combatant {
	return Combatant{Ship: m.Ship, Side: side, Role: m.Role, Index: m.Index, FleetLen: m.FleetLen}
}

// SupportCombatant wraps a ship of the side's support fleet.
func SupportCombatant(side *models.Side, index int) Combatant {
	return Combatant{Ship: side.Support.Ships[index], Side: side, Role: models.RoleMain, Index: index, FleetLen: side.Support.Len()}
}

func (c Combatant) IsFlagship() bool { return c.Index == 0 }

func (c Combatant) Half() models.FleetHalf { return c.Side.Formation.HalfOf(c.Index, c.FleetLen) }

func (c Combatant) Formation(d *defs.Definitions, f defs.Family) defs.FormationMods {
	return d.FormationMods(c.Side.Formation, c.Half(), f)
}

// Special is a chosen special attack: its power and accuracy multipliers
// and hit count.
type Special struct {
	Tag      string  `json:"tag"`
	Power    float64 `json:"power"`
	Accuracy float64 `json:"accuracy"`
	Hits     float64 `json:"hits"`
}

// SpecialFromCutin turns a day or night cutin definition into a Special.
func SpecialFromCutin(def defs.CutinDef) *Special {
	return &Special{Tag: def.Tag, Power: def.Power, Accuracy: def.Accuracy, Hits: def.HitCount()}
}

// SpecialFromFleetCutin is the special attack of the n-th shot of a fleet
// cutin.
func SpecialFromFleetCutin(def defs.FleetCutinDef, n int) *Special {
	return &Special{Tag: def.Tag, Power: def.Power[n], Accuracy: def.Accuracy, Hits: 1}
}

func (s *Special) power() float64 {
	if s == nil || s.Power == 0 {
		return 1
	}
	return s.Power
}

func (s *Special) accuracy() float64 {
	if s == nil || s.Accuracy == 0 {
		return 1
	}
	return s.Accuracy
}

func (s *Special) hits() float64 {
	if s == nil || s.Hits <= 0 {
		return 1
	}
	return s.Hits
}

// Context is everything outside the two ships that shapes an attack.
type Context struct {
	Defs       *defs.Definitions
	Engagement models.Engagement
	// AirState is seen from the attacker's side.
	AirState models.AirState
	Special  *Special
	Night    cutin.NightContext
	// TorpedoBomberMod scales torpedo bomber strikes; 0 means 1.
	TorpedoBomberMod float64
}

// ========================= Shared terms =========================

// basicAccuracy is 2*sqrt(level) + 1.5*sqrt(luck).
func basicAccuracy(s *models.Ship) (float64, bool) {
	luck, ok := s.Luck()
	if !ok {
		return 0, false
	}
	return 2*math.Sqrt(float64(s.Level)) + 1.5*math.Sqrt(float64(luck)), true
}

func gearAccuracy(s *models.Ship) float64 {
	return float64(s.Accuracy()) + s.SumBy((*models.Gear).ImprovementAccuracy)
}

// accuracyTerm applies the formation, morale and special multipliers to
// the raw accuracy sum and floors the result. The formation modifier drops
// out for ineffective formation pairs.
func accuracyTerm(ctx Context, family defs.Family, att, tgt Combatant, raw float64) float64 {
	formation := att.Formation(ctx.Defs, family).Accuracy
	if ctx.Defs.IsIneffective(att.Side.Formation, tgt.Side.Formation) {
		formation = 1
	}
	v := raw * formation * att.Ship.MoraleState().AccuracyMod() * ctx.Special.accuracy()
	return math.Floor(v)
}

// evasionTerm soft-caps the target's formation-adjusted evasion.
func evasionTerm(ctx Context, family defs.Family, tgt Combatant) (float64, bool) {
	ev, ok := tgt.Ship.Evasion()
	if !ok {
		return 0, false
	}
	base := float64(ev) * tgt.Formation(ctx.Defs, family).Evasion
	switch {
	case base >= 65:
		return math.Floor(55 + 2*math.Sqrt(base-65)), true
	case base >= 40:
		return math.Floor(40 + 3*math.Sqrt(base-40)), true
	}
	return math.Floor(base), true
}

func hitRate(ctx Context, family defs.Family, tgt Combatant, accuracy float64) (*attack.HitRate, bool) {
	evasion, ok := evasionTerm(ctx, family, tgt)
	if !ok {
		return nil, false
	}
	h := attack.HitRateParams{
		AccuracyTerm:         accuracy,
		EvasionTerm:          evasion,
		MoraleMod:            tgt.Ship.MoraleState().HitMod(),
		CriticalRateConstant: ctx.Defs.CriticalRate(family),
	}.Calc()
	return &h, true
}

// defense describes the target. Player ships never sink; a lethal hit on
// one is rerolled to a partial value.
func defense(tgt Combatant) *attack.DefenseParams {
	s := tgt.Ship
	return &attack.DefenseParams{
		Armor:              float64(s.Armor()),
		CurrentHP:          s.CurrentHP,
		MaxHP:              s.MaxHP,
		Sinkable:           !tgt.Side.Player,
		OverkillProtection: tgt.Side.Player,
	}
}

// withSpecialEnemy adds the target-specific modifiers, if any.
func withSpecialEnemy(d *defs.Definitions, p *attack.AttackPowerParams, tgt *models.Ship) {
	if se, ok := d.SpecialEnemy(tgt); ok {
		p.SpecialEnemyPrecapMod = se.Precap
		p.SpecialEnemyPostcapMod = se.Postcap
	}
}

// damageStateMod returns the attacker's damage-state power multiplier,
// false when it is zero and the ship cannot attack.
func damageStateMod(d *defs.Definitions, family defs.Family, s *models.Ship) (float64, bool) {
	m := d.DamageStateMod(family, s.DamageState())
	return m, m > 0
}

func assemble(power attack.AttackPowerParams, hit *attack.HitRate, tgt Combatant, hits float64) attack.AttackParams {
	ap := power.Calc()
	return attack.AttackParams{AttackPower: &ap, HitRate: hit, Defense: defense(tgt), Hits: hits}
}
