package battle

import (
	"github.com/pefman/fleet-sim/internal/attack"
	"github.com/pefman/fleet-sim/internal/game"
	"github.com/pefman/fleet-sim/internal/models"
)

// ========================= Torpedo =========================

type salvo struct {
	att       game.Combatant
	tgt       game.Combatant
	params    attack.AttackParams
	protected bool
}

// canOpeningTorpedo: submarines from level 10 and ships carrying a midget
// submarine.
func canOpeningTorpedo(s *models.Ship) bool {
	return s.HasGearAttr(models.AttrMidgetSubmarine) || s.IsSubmarine() && s.Level >= 10
}

// torpedoPhase fires every torpedo of both torpedo fleets. Torpedoes are
// launched together, so attackers and their attacks are fixed before any
// damage lands.
func (b *Battle) torpedoPhase(p Phase) {
	var salvos []salvo
	for _, side := range []*models.Side{b.player, b.enemy} {
		other := b.opponent(side)
		ctx := b.context(side.Player)
		for _, att := range afloat(side, scopeOf(side.TorpedoFleet())) {
			if !game.CanTorpedo(att.Ship) || p == PhaseOpeningTorpedo && !canOpeningTorpedo(att.Ship) {
				continue
			}
			tgt, protected, ok := b.pickTarget(candidates(att.Ship, other, models.ScopeBoth, canTorpedo))
			if !ok {
				continue
			}
			params, ok := game.Torpedo(ctx, att, tgt)
			if !ok {
				continue
			}
			salvos = append(salvos, salvo{att: att, tgt: tgt, params: params, protected: protected})
		}
	}
	for _, s := range salvos {
		if s.tgt.Ship.IsSunk() {
			continue
		}
		b.strike(p, s.att, s.tgt, s.params, game.StyleTorpedo, nil, s.protected)
	}
}

// ========================= Opening ASW =========================

func (b *Battle) canOpeningASW(s *models.Ship) bool {
	if !game.CanASW(s) || !s.HasGearAttr(models.AttrSonar) {
		return false
	}
	asw, ok := s.ASW()
	return ok && asw >= b.d.ASW.OpeningMinASW
}

func (b *Battle) openingASW() {
	eligible := func(side *models.Side) []game.Combatant {
		var out []game.Combatant
		for _, c := range afloat(side, models.ScopeBoth) {
			if b.canOpeningASW(c.Ship) {
				out = append(out, c)
			}
		}
		return out
	}
	for _, att := range interleave(eligible(b.player), eligible(b.enemy)) {
		if att.Ship.IsSunk() {
			continue
		}
		tgt, protected, ok := b.pickTarget(candidates(att.Ship, b.opponent(att.Side), models.ScopeBoth, isSubmarine))
		if !ok {
			continue
		}
		params, ok := game.ASW(b.context(att.Side.Player), att, tgt)
		if !ok {
			continue
		}
		b.strike(PhaseOpeningASW, att, tgt, params, game.StyleASW, nil, protected)
	}
}

// ========================= Support =========================

// supportPhase lets each ship of a side's support fleet fire once.
func (b *Battle) supportPhase() {
	for _, side := range []*models.Side{b.player, b.enemy} {
		if side.Support.Len() == 0 {
			continue
		}
		other := b.opponent(side)
		ctx := b.context(side.Player)
		for i, s := range side.Support.Ships {
			if s.IsSunk() {
				continue
			}
			att := game.SupportCombatant(side, i)
			tgt, protected, ok := b.pickTarget(candidates(s, other, models.ScopeBoth, canShell))
			if !ok {
				continue
			}
			params, ok := game.SupportShelling(ctx, att, tgt)
			if !ok {
				continue
			}
			b.strike(PhaseSupport, att, tgt, params, game.StyleSupport, nil, protected)
		}
	}
}
