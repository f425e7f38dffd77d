package battle

import (
	"github.com/pefman/fleet-sim/internal/attack"
	"github.com/pefman/fleet-sim/internal/game"
)

// EventKind classifies battle events.
type EventKind string

const (
	EventPhase      EventKind = "phase"
	EventAttack     EventKind = "attack"
	EventFleetCutin EventKind = "fleet_cutin"
	EventAntiAir    EventKind = "anti_air"
	EventShootdown  EventKind = "shootdown"
	EventEnd        EventKind = "end"
)

// Event is one observable step of a battle, in the order it happened.
type Event struct {
	Seq       int                `json:"seq"`
	Kind      EventKind          `json:"kind"`
	Phase     Phase              `json:"phase,omitempty"`
	Side      string             `json:"side,omitempty"`
	Attacker  string             `json:"attacker,omitempty"`
	Target    string             `json:"target,omitempty"`
	Style     game.Style         `json:"style,omitempty"`
	Special   string             `json:"special,omitempty"`
	Protected bool               `json:"protected,omitempty"`
	Hits      []attack.HitResult `json:"hits,omitempty"`
	Damage    int                `json:"damage"`
	TargetHP  int                `json:"target_hp"`
	Shot      int                `json:"shot,omitempty"`
	Message   string             `json:"message"`
}

func sideName(player bool) string {
	if player {
		return "player"
	}
	return "enemy"
}
