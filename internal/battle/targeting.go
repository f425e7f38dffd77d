package battle

import (
	"sort"

	"github.com/pefman/fleet-sim/internal/engine"
	"github.com/pefman/fleet-sim/internal/game"
	"github.com/pefman/fleet-sim/internal/models"
)

// canTarget reports whether an attacker may pick a target at all.
type canTarget func(att, tgt *models.Ship) bool

func canDay(att, tgt *models.Ship) bool {
	_, ok := game.DayStyle(att, tgt)
	return ok
}

func canNight(att, tgt *models.Ship) bool {
	_, ok := game.NightStyle(att, tgt)
	return ok
}

func canTorpedo(_, tgt *models.Ship) bool { return !tgt.IsSubmarine() && !tgt.IsInstallation() }

func canShell(_, tgt *models.Ship) bool { return !tgt.IsSubmarine() }

func isSubmarine(_, tgt *models.Ship) bool { return tgt.IsSubmarine() }

func scopeOf(r models.FleetRole) models.Scope {
	if r == models.RoleEscort {
		return models.ScopeEscort
	}
	return models.ScopeMain
}

// afloat lists the surviving members of side in scope, in fleet order.
func afloat(side *models.Side, scope models.Scope) []game.Combatant {
	var out []game.Combatant
	for _, m := range side.Members(scope) {
		if !m.Ship.IsSunk() {
			out = append(out, game.NewCombatant(side, m))
		}
	}
	return out
}

// byRange orders a side's attackers by range, longest first, in random
// order within a range.
func (b *Battle) byRange(side *models.Side, scope models.Scope) []game.Combatant {
	out := afloat(side, scope)
	engine.Shuffle(b.rng, out)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Ship.Range() > out[j].Ship.Range() })
	return out
}

// interleave alternates the two orderings, first one first.
func interleave(first, second []game.Combatant) []game.Combatant {
	out := make([]game.Combatant, 0, len(first)+len(second))
	for i := 0; i < max(len(first), len(second)); i++ {
		if i < len(first) {
			out = append(out, first[i])
		}
		if i < len(second) {
			out = append(out, second[i])
		}
	}
	return out
}

func candidates(att *models.Ship, side *models.Side, scope models.Scope, can canTarget) []game.Combatant {
	var out []game.Combatant
	for _, c := range afloat(side, scope) {
		if can(att, c.Ship) {
			out = append(out, c)
		}
	}
	return out
}

// pickTarget draws a target uniformly. When the draw lands on a flagship,
// another ship in a fit state takes the hit with the defending formation's
// protection rate.
func (b *Battle) pickTarget(cands []game.Combatant) (tgt game.Combatant, protected, ok bool) {
	tgt, ok = engine.Pick(b.rng, cands)
	if !ok || !tgt.IsFlagship() {
		return tgt, false, ok
	}
	var guards []game.Combatant
	for _, c := range cands {
		if !c.IsFlagship() && c.Ship.DamageState() < models.DamageTaiha {
			guards = append(guards, c)
		}
	}
	if len(guards) == 0 || !engine.Chance(b.rng, b.d.ProtectionRate(tgt.Side.Formation)) {
		return tgt, false, true
	}
	guard, _ := engine.Pick(b.rng, guards)
	return guard, true, true
}
