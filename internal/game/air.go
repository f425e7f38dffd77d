package game

import (
	"math"

	"github.com/pefman/fleet-sim/internal/attack"
	"github.com/pefman/fleet-sim/internal/defs"
	"github.com/pefman/fleet-sim/internal/models"
)

// FighterPower sums floor(anti-air * sqrt(slot)) over every combat plane
// still aloft in the fleet.
func FighterPower(f *models.Fleet) float64 {
	total := 0.0
	for _, s := range f.Alive() {
		s.EachGear(func(g *models.Gear, slot int) {
			if slot <= 0 || !(g.HasAttr(models.AttrFighter) || g.IsAttacker()) {
				return
			}
			total += math.Floor(float64(g.AntiAir) * math.Sqrt(float64(slot)))
		})
	}
	return total
}

// ResolveAirState compares the fighter power of two sides, seen from own.
func ResolveAirState(own, enemy float64) models.AirState {
	switch {
	case own == 0 && enemy == 0:
		return models.AirParity
	case own >= 3*enemy:
		return models.AirSupremacy
	case 2*own >= 3*enemy:
		return models.AirSuperiority
	case 3*own > 2*enemy:
		return models.AirParity
	case 3*own > enemy:
		return models.AirDenial
	}
	return models.AirIncapability
}

// AdjustedAntiAir weights each gear's anti-air by its kind; the heaviest
// weight among a gear's attributes applies.
func AdjustedAntiAir(d *defs.Definitions, s *models.Ship) float64 {
	v := float64(s.BaseAntiAir)
	s.EachGear(func(g *models.Gear, _ int) {
		w := 0.0
		for _, a := range g.Attrs {
			w = max(w, d.AntiAir.GearWeights[a])
		}
		v += w * float64(g.AntiAir)
	})
	return v
}

// Airstrike builds the strike of the plane squadron in the given gear slot.
// Torpedo bombers cannot strike installations, and nothing strikes
// submarines.
func Airstrike(ctx Context, att Combatant, slot int, tgt Combatant) (attack.AttackParams, bool) {
	d := ctx.Defs
	s := att.Ship
	if slot < 0 || slot >= len(s.Gears) || slot >= len(s.Slots) {
		return attack.AttackParams{}, false
	}
	g, count := s.Gears[slot], s.Slots[slot]
	if g == nil || count <= 0 || !g.IsAttacker() || tgt.Ship.IsSubmarine() {
		return attack.AttackParams{}, false
	}
	torpedoBomber := g.HasAttr(models.AttrTorpedoBomber)
	if torpedoBomber && tgt.Ship.IsInstallation() {
		return attack.AttackParams{}, false
	}

	var basic, mod float64
	if torpedoBomber {
		basic = float64(g.Torpedo)*math.Sqrt(float64(count)) + 25
		mod = ctx.TorpedoBomberMod
		if mod == 0 {
			mod = 1
		}
	} else {
		basic = float64(g.Bombing)*math.Sqrt(float64(count)) + 25
		mod = d.Airstrike.DiveBomberMod
	}
	p := attack.NewAttackPowerParams(basic, d.Cap(defs.Airstrike))
	p.PostcapMod = attack.NewModifier(mod, 0)
	p.ProficiencyCriticalMod = g.ProficiencyCriticalMod()
	withSpecialEnemy(d, &p, tgt.Ship)

	accuracy := math.Floor(d.Accuracy(defs.Airstrike) + float64(g.Accuracy))
	hit, ok := hitRate(ctx, defs.Airstrike, tgt, accuracy)
	if !ok {
		return attack.AttackParams{}, false
	}
	return assemble(p, hit, tgt, 1), true
}
