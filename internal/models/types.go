package models

import (
	"fmt"
	"strings"
)

// ========================= Enums =========================
// Every enum marshals to its snake_case name so scenarios and definitions
// can be written by hand in YAML or JSON.

func parseEnum[T ~int](names []string, kind, s string) (T, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range names {
		if n == s {
			return T(i), nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", kind, s)
}

func enumName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("invalid(%d)", i)
	}
	return names[i]
}

// DamageState is the HP-threshold bucket of a ship.
type DamageState int

const (
	DamageNormal DamageState = iota
	DamageShouha
	DamageChuuha
	DamageTaiha
	DamageSunk
)

var damageStateNames = []string{"normal", "shouha", "chuuha", "taiha", "sunk"}

// DamageStates lists every bucket from healthiest to sunk.
var DamageStates = []DamageState{DamageNormal, DamageShouha, DamageChuuha, DamageTaiha, DamageSunk}

func (d DamageState) String() string { return enumName(damageStateNames, int(d)) }

func (d DamageState) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *DamageState) UnmarshalText(b []byte) error {
	v, err := parseEnum[DamageState](damageStateNames, "damage state", string(b))
	*d = v
	return err
}

// DamageStateOf buckets hp against maxHP at 3/4, 1/2 and 1/4.
// The boundary value belongs to the more damaged bucket.
func DamageStateOf(hp, maxHP int) DamageState {
	switch {
	case hp <= 0:
		return DamageSunk
	case 4*hp <= maxHP:
		return DamageTaiha
	case 2*hp <= maxHP:
		return DamageChuuha
	case 4*hp <= 3*maxHP:
		return DamageShouha
	default:
		return DamageNormal
	}
}

// MoraleState buckets the morale (condition) value.
type MoraleState int

const (
	MoraleNormal MoraleState = iota
	MoraleSparkle
	MoraleOrange
	MoraleRed
)

var moraleStateNames = []string{"normal", "sparkle", "orange", "red"}

func (m MoraleState) String() string { return enumName(moraleStateNames, int(m)) }

func MoraleStateOf(morale int) MoraleState {
	switch {
	case morale >= 50:
		return MoraleSparkle
	case morale >= 30:
		return MoraleNormal
	case morale >= 20:
		return MoraleOrange
	default:
		return MoraleRed
	}
}

// AccuracyMod applies to the attacker's accuracy term.
func (m MoraleState) AccuracyMod() float64 {
	switch m {
	case MoraleSparkle:
		return 1.2
	case MoraleOrange:
		return 0.8
	case MoraleRed:
		return 0.5
	}
	return 1.0
}

// HitMod applies to the hit basis when this ship is the target.
func (m MoraleState) HitMod() float64 {
	switch m {
	case MoraleSparkle:
		return 0.7
	case MoraleOrange:
		return 1.2
	case MoraleRed:
		return 1.4
	}
	return 1.0
}

// Formation is the fleet arrangement. The cruising formations are the
// combined-fleet variants.
type Formation int

const (
	LineAhead Formation = iota
	DoubleLine
	Diamond
	Echelon
	LineAbreast
	Vanguard
	Cruising1
	Cruising2
	Cruising3
	Cruising4
)

var formationNames = []string{
	"line_ahead", "double_line", "diamond", "echelon", "line_abreast", "vanguard",
	"cruising1", "cruising2", "cruising3", "cruising4",
}

func (f Formation) String() string { return enumName(formationNames, int(f)) }

func (f Formation) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *Formation) UnmarshalText(b []byte) error {
	v, err := parseEnum[Formation](formationNames, "formation", string(b))
	*f = v
	return err
}

func ParseFormation(s string) (Formation, error) {
	return parseEnum[Formation](formationNames, "formation", s)
}

func (f Formation) IsCombined() bool { return f >= Cruising1 }

// FleetHalf distinguishes the two halves of a vanguard formation.
type FleetHalf int

const (
	HalfNone FleetHalf = iota
	HalfTop
	HalfBottom
)

// HalfOf reports which vanguard half the ship at index belongs to.
func (f Formation) HalfOf(index, fleetLen int) FleetHalf {
	if f != Vanguard {
		return HalfNone
	}
	if index < fleetLen/2 {
		return HalfTop
	}
	return HalfBottom
}

// Engagement scales attack power for the whole battle.
type Engagement int

const (
	Parallel Engagement = iota
	HeadOn
	GreenT
	RedT
)

var engagementNames = []string{"parallel", "head_on", "green_t", "red_t"}

// Engagements lists every engagement in declaration order.
var Engagements = []Engagement{Parallel, HeadOn, GreenT, RedT}

func (e Engagement) String() string { return enumName(engagementNames, int(e)) }

func (e Engagement) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

func (e *Engagement) UnmarshalText(b []byte) error {
	v, err := parseEnum[Engagement](engagementNames, "engagement", string(b))
	*e = v
	return err
}

// AirState is the result of the air superiority contest from the point of
// view of one side.
type AirState int

const (
	AirNone AirState = iota
	AirSupremacy
	AirSuperiority
	AirParity
	AirDenial
	AirIncapability
)

var airStateNames = []string{"none", "air_supremacy", "air_superiority", "air_parity", "air_denial", "air_incapability"}

func (a AirState) String() string { return enumName(airStateNames, int(a)) }

func (a AirState) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *AirState) UnmarshalText(b []byte) error {
	v, err := parseEnum[AirState](airStateNames, "air state", string(b))
	*a = v
	return err
}

// Inverse is the same contest seen from the other side.
func (a AirState) Inverse() AirState {
	switch a {
	case AirSupremacy:
		return AirIncapability
	case AirSuperiority:
		return AirDenial
	case AirDenial:
		return AirSuperiority
	case AirIncapability:
		return AirSupremacy
	}
	return a
}

// OrgShape is the organization of one side. Combined is the shape used for
// enemy combined fleets; the three task forces are player combined fleets.
type OrgShape int

const (
	Single OrgShape = iota
	CarrierTaskForce
	SurfaceTaskForce
	TransportEscort
	Combined
)

var orgShapeNames = []string{"single", "carrier_task_force", "surface_task_force", "transport_escort", "combined"}

func (o OrgShape) String() string { return enumName(orgShapeNames, int(o)) }

func (o OrgShape) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *OrgShape) UnmarshalText(b []byte) error {
	v, err := parseEnum[OrgShape](orgShapeNames, "org shape", string(b))
	*o = v
	return err
}

func (o OrgShape) IsCombined() bool { return o != Single }

// FleetRole is a fleet's role inside its side.
type FleetRole int

const (
	RoleMain FleetRole = iota
	RoleEscort
)

func (r FleetRole) String() string {
	if r == RoleEscort {
		return "escort"
	}
	return "main"
}

func (r FleetRole) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *FleetRole) UnmarshalText(b []byte) error {
	switch string(b) {
	case "main":
		*r = RoleMain
	case "escort":
		*r = RoleEscort
	default:
		return fmt.Errorf("unknown fleet role %q", b)
	}
	return nil
}

// Scope restricts which fleets of a side take part in a step.
type Scope int

const (
	ScopeMain Scope = iota
	ScopeEscort
	ScopeBoth
)

func (s Scope) String() string { return enumName([]string{"main", "escort", "both"}, int(s)) }

func (s Scope) Includes(r FleetRole) bool {
	switch s {
	case ScopeBoth:
		return true
	case ScopeEscort:
		return r == RoleEscort
	}
	return r == RoleMain
}
