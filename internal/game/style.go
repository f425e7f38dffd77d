package game

import (
	"github.com/pefman/fleet-sim/internal/attack"
	"github.com/pefman/fleet-sim/internal/models"
)

// Style names the calculator an attack goes through.
type Style string

const (
	StyleShelling        Style = "shelling"
	StyleCarrierShelling Style = "carrier_shelling"
	StyleASW             Style = "asw"
	StyleTorpedo         Style = "torpedo"
	StyleNight           Style = "night"
	StyleSupport         Style = "support"
	StyleAirstrike       Style = "airstrike"
)

// DayStyle picks the day attack of att against tgt: ASW on submarines,
// plane shelling for carriers and gunfire otherwise.
func DayStyle(att, tgt *models.Ship) (Style, bool) {
	switch {
	case tgt.IsSubmarine():
		return StyleASW, CanASW(att)
	case att.IsSubmarine():
		return "", false
	case att.IsCarrier():
		ok := CanCarrierShell(att) && (!tgt.IsInstallation() || att.CountPlanes(models.AttrDiveBomber) > 0)
		return StyleCarrierShelling, ok
	}
	return StyleShelling, true
}

// NightStyle picks the night attack of att against tgt.
func NightStyle(att, tgt *models.Ship) (Style, bool) {
	if tgt.IsSubmarine() {
		return StyleASW, CanASW(att)
	}
	return StyleNight, CanNightAttack(att)
}

// DayAttack resolves the day style and builds the attack.
func DayAttack(ctx Context, att, tgt Combatant) (attack.AttackParams, Style, bool) {
	style, ok := DayStyle(att.Ship, tgt.Ship)
	if !ok {
		return attack.AttackParams{}, style, false
	}
	var p attack.AttackParams
	if style == StyleASW {
		p, ok = ASW(ctx, att, tgt)
	} else {
		p, ok = Shelling(ctx, att, tgt)
	}
	return p, style, ok
}

// NightAttack resolves the night style and builds the attack.
func NightAttack(ctx Context, att, tgt Combatant) (attack.AttackParams, Style, bool) {
	style, ok := NightStyle(att.Ship, tgt.Ship)
	if !ok {
		return attack.AttackParams{}, style, false
	}
	var p attack.AttackParams
	if style == StyleASW {
		p, ok = ASW(ctx, att, tgt)
	} else {
		p, ok = Night(ctx, att, tgt)
	}
	return p, style, ok
}
