package game

import (
	"github.com/pefman/fleet-sim/internal/attack"
	"github.com/pefman/fleet-sim/internal/defs"
	"github.com/pefman/fleet-sim/internal/models"
)

// CanNightAttack reports whether the ship has a night attack. Carriers need
// night planes aloft.
func CanNightAttack(s *models.Ship) bool {
	if s.IsCarrier() {
		return s.CountPlanes(models.AttrNightPlane) > 0
	}
	return s.Firepower()+s.Torpedo() > 0
}

func nightBasic(att, tgt *models.Ship) float64 {
	if att.IsCarrier() {
		total := float64(att.Firepower())
		att.EachGear(func(g *models.Gear, slot int) {
			if slot > 0 && g.HasAttr(models.AttrNightPlane) {
				total += float64(g.Torpedo + g.Bombing)
			}
		})
		return total
	}
	basic := firepowerWithImprovement(att)
	if !tgt.IsInstallation() {
		basic += float64(att.Torpedo()) + att.SumBy((*models.Gear).ImprovementTorpedo)
	}
	return basic
}

// Night builds a night battle attack. Night cutins multiply power before
// the cap.
func Night(ctx Context, att, tgt Combatant) (attack.AttackParams, bool) {
	d := ctx.Defs
	s := att.Ship
	if tgt.Ship.IsSubmarine() || !CanNightAttack(s) {
		return attack.AttackParams{}, false
	}
	dmg, ok := damageStateMod(d, defs.Night, s)
	if !ok {
		return attack.AttackParams{}, false
	}
	formation := att.Formation(d, defs.Night)
	p := attack.NewAttackPowerParams(nightBasic(s, tgt.Ship), d.Cap(defs.Night))
	p.PrecapMod = attack.NewModifier(formation.Power*dmg, 0)
	p.CustomPrecapMod = attack.NewModifier(ctx.Special.power(), 0)
	withSpecialEnemy(d, &p, tgt.Ship)

	acc, ok := basicAccuracy(s)
	if !ok {
		return attack.AttackParams{}, false
	}
	accuracy := accuracyTerm(ctx, defs.Night, att, tgt, d.Accuracy(defs.Night)+acc+gearAccuracy(s))
	hit, ok := hitRate(ctx, defs.Night, tgt, accuracy)
	if !ok {
		return attack.AttackParams{}, false
	}
	return assemble(p, hit, tgt, ctx.Special.hits()), true
}
