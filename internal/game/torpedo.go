package game

import (
	"math"

	"github.com/pefman/fleet-sim/internal/attack"
	"github.com/pefman/fleet-sim/internal/defs"
	"github.com/pefman/fleet-sim/internal/models"
)

// CanTorpedo reports whether the ship carries any torpedo power.
func CanTorpedo(s *models.Ship) bool { return s.Torpedo() > 0 && !s.IsCarrier() }

// Torpedo builds a torpedo attack. Submarines and installations cannot be
// torpedoed.
func Torpedo(ctx Context, att, tgt Combatant) (attack.AttackParams, bool) {
	d := ctx.Defs
	s := att.Ship
	if !CanTorpedo(s) || tgt.Ship.IsSubmarine() || tgt.Ship.IsInstallation() {
		return attack.AttackParams{}, false
	}
	dmg, ok := damageStateMod(d, defs.Torpedo, s)
	if !ok {
		return attack.AttackParams{}, false
	}
	formation := att.Formation(d, defs.Torpedo)
	basic := float64(s.Torpedo()) + s.SumBy((*models.Gear).ImprovementTorpedo) + 5
	p := attack.NewAttackPowerParams(basic, d.Cap(defs.Torpedo))
	p.PrecapMod = attack.NewModifier(formation.Power*d.Engagement(ctx.Engagement)*dmg, 0)
	withSpecialEnemy(d, &p, tgt.Ship)

	acc, ok := basicAccuracy(s)
	if !ok {
		return attack.AttackParams{}, false
	}
	raw := d.Accuracy(defs.Torpedo) + acc + gearAccuracy(s) + math.Floor(float64(s.Torpedo())/5)
	hit, ok := hitRate(ctx, defs.Torpedo, tgt, accuracyTerm(ctx, defs.Torpedo, att, tgt, raw))
	if !ok {
		return attack.AttackParams{}, false
	}
	return assemble(p, hit, tgt, 1), true
}

// ========================= Anti-submarine =========================

// CanASW reports whether the ship can attack submarines at all. Carriers
// additionally need a plane with ASW power aloft.
func CanASW(s *models.Ship) bool {
	naked, ok := s.NakedASW()
	if !ok || naked <= 0 || s.IsSubmarine() {
		return false
	}
	if !s.IsCarrier() {
		return true
	}
	planes := 0
	s.EachGear(func(g *models.Gear, slot int) {
		if slot > 0 && g.IsAttacker() && g.ASW > 0 {
			planes++
		}
	})
	return planes > 0
}

func aswSynergy(d *defs.Definitions, s *models.Ship) float64 {
	sonar := s.HasGearAttr(models.AttrSonar)
	projector := s.HasGearAttr(models.AttrDepthChargeProjector)
	charge := s.HasGearAttr(models.AttrDepthCharge)
	m := 1.0
	if sonar && projector {
		m *= d.ASW.SonarProjectorSynergy
	}
	if projector && charge {
		m *= d.ASW.ProjectorChargeSynergy
	}
	return m
}

// ASW builds an anti-submarine attack against a submarine target.
func ASW(ctx Context, att, tgt Combatant) (attack.AttackParams, bool) {
	d := ctx.Defs
	s := att.Ship
	if !tgt.Ship.IsSubmarine() || !CanASW(s) {
		return attack.AttackParams{}, false
	}
	naked, _ := s.NakedASW()
	dmg, ok := damageStateMod(d, defs.ASW, s)
	if !ok {
		return attack.AttackParams{}, false
	}
	basic := 2*math.Sqrt(float64(naked)) + 1.5*float64(s.GearASW()) +
		s.SumBy((*models.Gear).ImprovementASW) + d.ASW.TypeConstant(s.Type)
	formation := att.Formation(d, defs.ASW)
	p := attack.NewAttackPowerParams(basic, d.Cap(defs.ASW))
	p.PrecapMod = attack.NewModifier(formation.Power*d.Engagement(ctx.Engagement)*dmg*aswSynergy(d, s), 0)

	acc, ok := basicAccuracy(s)
	if !ok {
		return attack.AttackParams{}, false
	}
	sonarASW := s.SumBy(func(g *models.Gear) float64 {
		if g.HasAttr(models.AttrSonar) {
			return float64(g.ASW)
		}
		return 0
	})
	raw := d.Accuracy(defs.ASW) + acc + 2*sonarASW
	hit, ok := hitRate(ctx, defs.ASW, tgt, accuracyTerm(ctx, defs.ASW, att, tgt, raw))
	if !ok {
		return attack.AttackParams{}, false
	}
	return assemble(p, hit, tgt, 1), true
}
