package battle

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/pefman/fleet-sim/internal/cutin"
	"github.com/pefman/fleet-sim/internal/defs"
	"github.com/pefman/fleet-sim/internal/engine"
	"github.com/pefman/fleet-sim/internal/game"
	"github.com/pefman/fleet-sim/internal/models"
)

// ========================= Air battle =========================

type sortie struct {
	att  game.Combatant
	slot int
}

// airBattle runs both sides' strikes. Each side's bomber squadrons first
// pass the defenders' anti-air fire; the survivors of both sides then
// strike, launched before any bomb lands.
func (b *Battle) airBattle() {
	var sorties []sortie
	for _, side := range []*models.Side{b.player, b.enemy} {
		other := b.opponent(side)
		var aaci *defs.AntiAirCutinDef
		for _, att := range afloat(side, models.ScopeBoth) {
			for i, g := range att.Ship.Gears {
				if g == nil || !g.IsAttacker() || i >= len(att.Ship.Slots) || att.Ship.Slots[i] <= 0 {
					continue
				}
				if aaci == nil {
					aaci = b.rollFleetAntiAir(other)
				}
				b.antiAirFire(att, i, other, aaci)
				if att.Ship.Slots[i] > 0 {
					sorties = append(sorties, sortie{att: att, slot: i})
				}
			}
		}
	}
	for _, s := range sorties {
		b.airstrike(s)
	}
}

var noCutin = &defs.AntiAirCutinDef{}

// rollFleetAntiAir draws the defending fleet's anti-air cutin once per
// raid. It never returns nil; ID 0 means no cutin.
func (b *Battle) rollFleetAntiAir(side *models.Side) *defs.AntiAirCutinDef {
	var dists []cutin.Distribution[int]
	for _, c := range afloat(side, models.ScopeBoth) {
		if d, ok := cutin.AntiAirDistribution(b.d, c.Ship); ok {
			dists = append(dists, d)
		}
	}
	id := cutin.FleetAntiAir(dists).Roll(b.rng)
	if id == 0 {
		return noCutin
	}
	def, ok := b.d.AntiAirCutin(id)
	if !ok {
		return noCutin
	}
	b.log.Debug("anti-air cutin", zap.String("side", sideName(side.Player)), zap.Int("id", def.ID))
	b.emit(Event{
		Kind:    EventAntiAir,
		Phase:   PhaseAirBattle,
		Side:    sideName(side.Player),
		Special: def.Name,
		Message: fmt.Sprintf("%s anti-air cutin %d (%s)", sideName(side.Player), def.ID, def.Name),
	})
	return &def
}

// shootdown is the number of planes one defending ship downs from a
// squadron of n. The proportional and fixed parts each land half the time;
// an anti-air cutin scales the fixed part and guarantees its minimum.
func (b *Battle) shootdown(shooter *models.Ship, defender *models.Side, n int, aaci *defs.AntiAirCutinDef) int {
	aa := game.AdjustedAntiAir(b.d, shooter)
	shot := 0
	if engine.Chance(b.rng, 0.5) {
		shot += int(math.Floor(float64(n) * aa * b.d.AntiAir.ProportionalCoef))
	}
	if engine.Chance(b.rng, 0.5) {
		mult := aaci.Multiplier
		if mult == 0 {
			mult = 1
		}
		fixed := int(math.Floor(aa*b.d.AntiAir.FixedCoef*mult)) + aaci.FixedBonus
		if defender.Player {
			fixed += int(b.d.AntiAir.PlayerFixedBonus)
		}
		shot += fixed
	}
	return min(max(shot, aaci.MinimumBonus), n)
}

func (b *Battle) antiAirFire(att game.Combatant, slot int, defender *models.Side, aaci *defs.AntiAirCutinDef) {
	shooter, ok := engine.Pick(b.rng, afloat(defender, models.ScopeBoth))
	if !ok {
		return
	}
	s := att.Ship
	shot := b.shootdown(shooter.Ship, defender, s.Slots[slot], aaci)
	if shot <= 0 {
		return
	}
	s.Slots[slot] -= shot
	b.emit(Event{
		Kind:     EventShootdown,
		Phase:    PhaseAirBattle,
		Side:     sideName(defender.Player),
		Attacker: shooter.Ship.Name,
		Target:   s.Name,
		Shot:     shot,
		Message:  fmt.Sprintf("%s shoots down %d of %s's %s, %d left", shooter.Ship.Name, shot, s.Name, s.Gears[slot].Name, s.Slots[slot]),
	})
}

func (b *Battle) airstrike(s sortie) {
	other := b.opponent(s.att.Side)
	torpedoBomber := s.att.Ship.Gears[s.slot].HasAttr(models.AttrTorpedoBomber)
	cands := candidates(s.att.Ship, other, models.ScopeBoth, func(_, tgt *models.Ship) bool {
		return !tgt.IsSubmarine() && !(torpedoBomber && tgt.IsInstallation())
	})
	tgt, ok := engine.Pick(b.rng, cands)
	if !ok {
		return
	}
	ctx := b.context(s.att.Side.Player)
	if torpedoBomber {
		ctx.TorpedoBomberMod, _ = engine.Pick(b.rng, b.d.Airstrike.TorpedoBomberMods)
	}
	params, ok := game.Airstrike(ctx, s.att, s.slot, tgt)
	if !ok {
		return
	}
	b.strike(PhaseAirBattle, s.att, tgt, params, game.StyleAirstrike, nil, false)
}
