package battle

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/pefman/fleet-sim/internal/cutin"
	"github.com/pefman/fleet-sim/internal/game"
	"github.com/pefman/fleet-sim/internal/models"
)

// ========================= Day shelling =========================

func (b *Battle) shellingPhase(p Phase) {
	if p == PhaseMain2 && !b.secondRound() {
		b.log.Debug("second shelling round skipped")
		return
	}
	ps := shellingScope(p, b.player, b.enemy)
	es := shellingScope(p, b.enemy, b.player)
	turns := interleave(b.byRange(b.player, ps), b.byRange(b.enemy, es))
	for _, att := range turns {
		if att.Ship.IsSunk() {
			continue
		}
		other, scope := b.enemy, es
		if !att.Side.Player {
			other, scope = b.player, ps
		}
		if p == PhaseMain1 && att.Role == models.RoleMain && att.IsFlagship() && b.fleetAttack(p, att, other, scope) {
			continue
		}
		b.dayAttack(p, att, other, scope)
	}
}

// secondRound reports whether the second main shelling round happens: always
// when a combined fleet is present, otherwise only with a battleship or an
// installation afloat.
func (b *Battle) secondRound() bool {
	if b.player.Shape.IsCombined() || b.enemy.Shape.IsCombined() {
		return true
	}
	for _, side := range []*models.Side{b.player, b.enemy} {
		for _, c := range afloat(side, models.ScopeBoth) {
			if c.Ship.IsBattleship() || c.Ship.IsInstallation() {
				return true
			}
		}
	}
	return false
}

func (b *Battle) dayAttack(p Phase, att game.Combatant, other *models.Side, scope models.Scope) {
	tgt, protected, ok := b.pickTarget(candidates(att.Ship, other, scope, canDay))
	if !ok {
		return
	}
	ctx := b.context(att.Side.Player)
	if style, _ := game.DayStyle(att.Ship, tgt.Ship); style != game.StyleASW {
		ctx.Special = b.rollDayCutin(ctx, att)
	}
	params, style, ok := game.DayAttack(ctx, att, tgt)
	if !ok {
		return
	}
	b.strike(p, att, tgt, params, style, ctx.Special, protected)
}

// rollDayCutin draws once from the ship's day cutin distribution.
func (b *Battle) rollDayCutin(ctx game.Context, att game.Combatant) *game.Special {
	dist, ok := cutin.DayDistribution(b.d, att.Ship, cutin.DayContext{
		AirState:   ctx.AirState,
		Fleet:      att.Side.Fleet(att.Role),
		IsFlagship: att.IsFlagship(),
	})
	if !ok {
		return nil
	}
	tag := dist.Roll(b.rng)
	if tag == cutin.DayNone {
		return nil
	}
	def, ok := b.d.DayCutin(string(tag))
	if !ok {
		return nil
	}
	return game.SpecialFromCutin(def)
}

// fleetAttack rolls the side's fleet cutin on its flagship's first turn. It
// is rolled at most once per side per battle. It reports whether the cutin
// fired and replaced the flagship's attack.
func (b *Battle) fleetAttack(p Phase, flag game.Combatant, other *models.Side, scope models.Scope) bool {
	side := flag.Side
	if b.fleetCutin[side.Player] {
		return false
	}
	b.fleetCutin[side.Player] = true

	tag := cutin.FleetDistribution(b.d, side.Main, side.Formation).Roll(b.rng)
	if tag == cutin.FleetNone {
		return false
	}
	def, ok := b.d.FleetCutin(string(tag))
	if !ok {
		return false
	}
	b.log.Debug("fleet cutin", zap.String("side", sideName(side.Player)), zap.String("cutin", def.Tag))
	b.emit(Event{
		Kind:     EventFleetCutin,
		Phase:    p,
		Side:     sideName(side.Player),
		Attacker: flag.Ship.Name,
		Special:  def.Tag,
		Message:  fmt.Sprintf("%s leads %s", flag.Ship.Name, def.Tag),
	})

	ctx := b.context(side.Player)
	n := side.Main.Len()
	for shot, idx := range def.Attackers {
		if idx >= n || side.Main.Ships[idx].IsSunk() {
			continue
		}
		att := game.NewCombatant(side, models.Member{Ship: side.Main.Ships[idx], Role: models.RoleMain, Index: idx, FleetLen: n})
		tgt, protected, ok := b.pickTarget(candidates(att.Ship, other, scope, canShell))
		if !ok {
			continue
		}
		ctx.Special = game.SpecialFromFleetCutin(def, shot)
		params, ok := game.Shelling(ctx, att, tgt)
		if !ok {
			continue
		}
		b.strike(p, att, tgt, params, game.StyleShelling, ctx.Special, protected)
	}
	return true
}

// ========================= Night battle =========================

func (b *Battle) nightPhase() {
	if len(afloat(b.player, models.ScopeBoth)) == 0 || len(afloat(b.enemy, models.ScopeBoth)) == 0 {
		b.log.Debug("night battle skipped")
		return
	}
	ps := scopeOf(b.player.NightFleet())
	es := scopeOf(b.enemy.NightFleet())
	turns := interleave(afloat(b.player, ps), afloat(b.enemy, es))
	for _, att := range turns {
		if att.Ship.IsSunk() {
			continue
		}
		other, scope := b.enemy, es
		if !att.Side.Player {
			other, scope = b.player, ps
		}
		tgt, protected, ok := b.pickTarget(candidates(att.Ship, other, scope, canNight))
		if !ok {
			continue
		}
		ctx := b.context(att.Side.Player)
		ctx.Night = b.nightContext(att)
		if style, _ := game.NightStyle(att.Ship, tgt.Ship); style == game.StyleNight {
			ctx.Special = b.rollNightCutin(ctx, att)
		}
		params, style, ok := game.NightAttack(ctx, att, tgt)
		if !ok {
			continue
		}
		b.strike(PhaseNight, att, tgt, params, style, ctx.Special, protected)
	}
}

func (b *Battle) nightContext(att game.Combatant) cutin.NightContext {
	sl, ss := nightAids(att.Side)
	esl, ess := nightAids(b.opponent(att.Side))
	return cutin.NightContext{
		IsFlagship:       att.IsFlagship(),
		Searchlight:      sl,
		StarShell:        ss,
		EnemySearchlight: esl,
		EnemyStarShell:   ess,
	}
}

// nightAids reports whether a surviving ship of the night fleet carries a
// searchlight or star shells.
func nightAids(side *models.Side) (searchlight, starShell bool) {
	for _, c := range afloat(side, scopeOf(side.NightFleet())) {
		searchlight = searchlight || c.Ship.HasGearAttr(models.AttrSearchlight)
		starShell = starShell || c.Ship.HasGearAttr(models.AttrStarShell)
	}
	return
}

func (b *Battle) rollNightCutin(ctx game.Context, att game.Combatant) *game.Special {
	dist, ok := cutin.NightDistribution(b.d, att.Ship, ctx.Night)
	if !ok {
		return nil
	}
	tag := dist.Roll(b.rng)
	if tag == cutin.NightNone {
		return nil
	}
	def, ok := b.d.NightCutin(string(tag))
	if !ok {
		return nil
	}
	return game.SpecialFromCutin(def)
}
