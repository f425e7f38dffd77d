package game

import (
	"math"

	"github.com/pefman/fleet-sim/internal/attack"
	"github.com/pefman/fleet-sim/internal/defs"
	"github.com/pefman/fleet-sim/internal/models"
)

// ========================= Day shelling =========================

func firepowerWithImprovement(s *models.Ship) float64 {
	return float64(s.Firepower()) + s.SumBy((*models.Gear).ImprovementFirepower)
}

// apShellMod applies against heavy targets when the attacker carries both a
// main gun and an AP shell.
func apShellMod(d *defs.Definitions, att, tgt *models.Ship) *float64 {
	if !tgt.IsHeavy() || !att.HasGearAttr(models.AttrMainGun) || !att.HasGearAttr(models.AttrAPShell) {
		return nil
	}
	second := att.HasGearAttr(models.AttrSecondaryGun)
	radar := att.HasGearAttr(models.AttrSurfaceRadar) || att.HasGearAttr(models.AttrAirRadar)
	m := d.APShell.MainOnly
	switch {
	case second && radar:
		m = d.APShell.WithBoth
	case second:
		m = d.APShell.WithSecondary
	case radar:
		m = d.APShell.WithRadar
	}
	return attack.Float64Ptr(m)
}

// CanCarrierShell reports whether a carrier still has attack planes aloft
// and is healthy enough to launch them.
func CanCarrierShell(s *models.Ship) bool {
	if s.DamageState() >= models.DamageChuuha {
		return false
	}
	n := 0
	s.EachGear(func(g *models.Gear, slot int) {
		if slot > 0 && g.IsAttacker() {
			n++
		}
	})
	return n > 0
}

// Shelling builds a day shelling attack. Carriers shell with their planes;
// a special attack multiplies power after the cap.
func Shelling(ctx Context, att, tgt Combatant) (attack.AttackParams, bool) {
	d := ctx.Defs
	s := att.Ship
	if tgt.Ship.IsSubmarine() {
		return attack.AttackParams{}, false
	}
	if s.IsCarrier() && (!CanCarrierShell(s) || tgt.Ship.IsInstallation() && s.CountPlanes(models.AttrDiveBomber) == 0) {
		return attack.AttackParams{}, false
	}
	dmg, ok := damageStateMod(d, defs.Shelling, s)
	if !ok {
		return attack.AttackParams{}, false
	}

	formation := att.Formation(d, defs.Shelling)
	basic := firepowerWithImprovement(s) + 5 + d.CombinedBonus(att.Side.Shape, att.Role)
	p := attack.NewAttackPowerParams(basic, d.Cap(defs.Shelling))
	p.PrecapMod = attack.NewModifier(formation.Power*d.Engagement(ctx.Engagement)*dmg, 0)
	withSpecialEnemy(d, &p, tgt.Ship)
	if s.IsCarrier() {
		// Planes fold into the basic value first; formation, engagement and
		// damage then scale the whole aerial sum.
		aerial := float64(s.GearTorpedo()) + math.Floor(d.Carrier.BomberFactor*float64(s.GearBombing())) + d.Carrier.AerialBonus
		p.AerialPower = attack.Float64Ptr(aerial)
		p.CustomPrecapMod = p.PrecapMod
		p.PrecapMod = attack.Identity
	}
	p.PostcapMod = attack.NewModifier(ctx.Special.power(), 0)
	p.APShellMod = apShellMod(d, s, tgt.Ship)

	acc, ok := basicAccuracy(s)
	if !ok {
		return attack.AttackParams{}, false
	}
	accuracy := accuracyTerm(ctx, defs.Shelling, att, tgt, d.Accuracy(defs.Shelling)+acc+gearAccuracy(s))
	hit, ok := hitRate(ctx, defs.Shelling, tgt, accuracy)
	if !ok {
		return attack.AttackParams{}, false
	}
	return assemble(p, hit, tgt, ctx.Special.hits()), true
}

// ========================= Support shelling =========================

// SupportShelling builds one attack of a support expedition ship. Support
// ships do not take part in the battle, so their damage state never
// applies.
func SupportShelling(ctx Context, att, tgt Combatant) (attack.AttackParams, bool) {
	d := ctx.Defs
	s := att.Ship
	if tgt.Ship.IsSubmarine() || s.IsSubmarine() {
		return attack.AttackParams{}, false
	}
	formation := att.Formation(d, defs.Support)
	p := attack.NewAttackPowerParams(float64(s.Firepower())+4, d.Cap(defs.Support))
	p.PrecapMod = attack.NewModifier(formation.Power*d.Engagement(ctx.Engagement), 0)
	withSpecialEnemy(d, &p, tgt.Ship)

	acc, ok := basicAccuracy(s)
	if !ok {
		return attack.AttackParams{}, false
	}
	accuracy := accuracyTerm(ctx, defs.Support, att, tgt, d.Accuracy(defs.Support)+acc+gearAccuracy(s))
	hit, ok := hitRate(ctx, defs.Support, tgt, accuracy)
	if !ok {
		return attack.AttackParams{}, false
	}
	return assemble(p, hit, tgt, 1), true
}
