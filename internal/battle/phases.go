package battle

import (
	"fmt"

	"github.com/pefman/fleet-sim/internal/models"
)

// Phase is one step of a battle.
type Phase string

const (
	PhaseAirBattle      Phase = "air_battle"
	PhaseSupport        Phase = "support"
	PhaseOpeningASW     Phase = "opening_asw"
	PhaseOpeningTorpedo Phase = "opening_torpedo"
	PhaseMain1          Phase = "main1"
	PhaseMain2          Phase = "main2"
	PhaseEscort         Phase = "escort"
	PhaseTorpedo        Phase = "torpedo"
	PhaseNight          Phase = "night"
)

var (
	singleVsSingle     = []Phase{PhaseMain1, PhaseMain2, PhaseTorpedo}
	escortFirst        = []Phase{PhaseEscort, PhaseTorpedo, PhaseMain1, PhaseMain2}
	mainFirst          = []Phase{PhaseMain1, PhaseMain2, PhaseEscort, PhaseTorpedo}
	combinedVsCombined = []Phase{PhaseMain1, PhaseEscort, PhaseTorpedo, PhaseMain2}
)

// DayTable returns the day combat phases for a pair of organization shapes.
// The player side is single or one of the three task forces; the enemy side
// is single or combined.
func DayTable(player, enemy models.OrgShape) ([]Phase, error) {
	if player == models.Combined {
		return nil, fmt.Errorf("%w: player shape %s", ErrMalformedSide, player)
	}
	if enemy != models.Single && enemy != models.Combined {
		return nil, fmt.Errorf("%w: enemy shape %s", ErrMalformedSide, enemy)
	}
	var t []Phase
	switch player {
	case models.Single:
		if enemy == models.Single {
			t = singleVsSingle
		} else {
			t = escortFirst
		}
	case models.SurfaceTaskForce:
		t = mainFirst
	default:
		if enemy == models.Single {
			t = escortFirst
		} else {
			t = combinedVsCombined
		}
	}
	return append([]Phase(nil), t...), nil
}

// shellingScope is the part of a side that shells in a day phase. Its
// opponent's scope is the set of targets.
func shellingScope(p Phase, own *models.Side, other *models.Side) models.Scope {
	switch p {
	case PhaseEscort:
		if own.Shape.IsCombined() {
			return models.ScopeEscort
		}
	case PhaseMain2:
		if own.Shape.IsCombined() && (!own.Player || other.Shape.IsCombined()) {
			return models.ScopeBoth
		}
	}
	return models.ScopeMain
}

// isShelling reports whether p is a day shelling round.
func isShelling(p Phase) bool {
	return p == PhaseMain1 || p == PhaseMain2 || p == PhaseEscort
}

func (o Options) sequence(day []Phase) []Phase {
	var out []Phase
	if o.AirBattle {
		out = append(out, PhaseAirBattle)
	}
	if o.Support {
		out = append(out, PhaseSupport)
	}
	if o.OpeningASW {
		out = append(out, PhaseOpeningASW)
	}
	if o.OpeningTorpedo {
		out = append(out, PhaseOpeningTorpedo)
	}
	out = append(out, day...)
	if o.Night {
		out = append(out, PhaseNight)
	}
	return out
}
