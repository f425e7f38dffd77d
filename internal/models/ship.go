package models

import (
	"slices"
)

// Ship attributes.
const (
	ShipAttrInstallation = "Installation"
	ShipAttrAbyssal      = "Abyssal"
	ShipAttrPTImp        = "PTImp"
)

// Ship is one combatant. Naked stats exclude equipment; the accessor
// methods add the equipment contribution. ASW, evasion, LoS and luck may
// be unknown (typically for abyssal ships) and are nil in that case.
type Ship struct {
	ID        string   `json:"id,omitempty" yaml:"id,omitempty"`
	Name      string   `json:"name" yaml:"name"`
	Type      string   `json:"type" yaml:"type"`   // DD, CL, CA, BB, CV, CVL, SS, ...
	Class     string   `json:"class,omitempty" yaml:"class,omitempty"`
	Attrs     []string `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	Level     int      `json:"level" yaml:"level"`
	MaxHP     int      `json:"max_hp" yaml:"max_hp"`
	CurrentHP int      `json:"hp" yaml:"hp"`
	Morale    int      `json:"morale" yaml:"morale"`

	BaseFirepower int  `json:"firepower" yaml:"firepower"`
	BaseTorpedo   int  `json:"torpedo" yaml:"torpedo"`
	BaseArmor     int  `json:"armor" yaml:"armor"`
	BaseAntiAir   int  `json:"anti_air" yaml:"anti_air"`
	BaseASW       *int `json:"asw,omitempty" yaml:"asw,omitempty"`
	BaseEvasion   *int `json:"evasion,omitempty" yaml:"evasion,omitempty"`
	BaseLoS       *int `json:"los,omitempty" yaml:"los,omitempty"`
	BaseLuck      *int `json:"luck,omitempty" yaml:"luck,omitempty"`
	BaseRange     int  `json:"range" yaml:"range"`

	Gears []*Gear `json:"gears,omitempty" yaml:"gears,omitempty"`
	Slots []int   `json:"slots,omitempty" yaml:"slots,omitempty"` // aircraft per gear slot
}

func (s *Ship) DamageState() DamageState { return DamageStateOf(s.CurrentHP, s.MaxHP) }

func (s *Ship) MoraleState() MoraleState { return MoraleStateOf(s.Morale) }

// DefaultMorale is the morale of a ship that does not state one.
const DefaultMorale = 49

// FillDefaults reads a zero current HP as full HP and a zero morale as
// DefaultMorale, which is how hand-written fleets leave them out.
func (s *Ship) FillDefaults() {
	if s.CurrentHP == 0 {
		s.CurrentHP = s.MaxHP
	}
	if s.Morale == 0 {
		s.Morale = DefaultMorale
	}
}

func (s *Ship) IsSunk() bool { return s.CurrentHP <= 0 }

// TakeDamage subtracts dmg from the current HP without going below zero and
// returns the HP actually removed.
func (s *Ship) TakeDamage(dmg int) int {
	if dmg <= 0 {
		return 0
	}
	if dmg > s.CurrentHP {
		dmg = s.CurrentHP
	}
	s.CurrentHP -= dmg
	return dmg
}

func (s *Ship) HasAttr(attr string) bool { return slices.Contains(s.Attrs, attr) }

func (s *Ship) IsType(types ...string) bool { return slices.Contains(types, s.Type) }

func (s *Ship) IsSubmarine() bool    { return s.IsType("SS", "SSV") }
func (s *Ship) IsInstallation() bool { return s.HasAttr(ShipAttrInstallation) }
func (s *Ship) IsCarrier() bool      { return s.IsType("CV", "CVL", "CVB") }
func (s *Ship) IsBattleship() bool   { return s.IsType("BB", "FBB", "BBV") }
func (s *Ship) IsDestroyer() bool    { return s.IsType("DD") }

// IsHeavy reports whether AP shells get their bonus against this ship.
func (s *Ship) IsHeavy() bool {
	return s.IsType("CA", "CAV", "BB", "FBB", "BBV", "CV", "CVB", "CVL")
}

// ========================= Gear aggregates =========================

// EachGear calls fn for every equipped gear with its slot size.
func (s *Ship) EachGear(fn func(g *Gear, slot int)) {
	for i, g := range s.Gears {
		if g == nil {
			continue
		}
		slot := 0
		if i < len(s.Slots) {
			slot = s.Slots[i]
		}
		fn(g, slot)
	}
}

// SumBy adds fn over every equipped gear.
func (s *Ship) SumBy(fn func(g *Gear) float64) float64 {
	total := 0.0
	s.EachGear(func(g *Gear, _ int) { total += fn(g) })
	return total
}

// CountAttr counts equipped gears carrying attr.
func (s *Ship) CountAttr(attr string) int {
	n := 0
	s.EachGear(func(g *Gear, _ int) {
		if g.HasAttr(attr) {
			n++
		}
	})
	return n
}

// CountPlanes counts plane gears carrying attr that still have aircraft.
func (s *Ship) CountPlanes(attr string) int {
	n := 0
	s.EachGear(func(g *Gear, slot int) {
		if slot > 0 && g.HasAttr(attr) {
			n++
		}
	})
	return n
}

func (s *Ship) HasGearAttr(attr string) bool { return s.CountAttr(attr) > 0 }

func sumInt(s *Ship, fn func(g *Gear) int) int {
	return int(s.SumBy(func(g *Gear) float64 { return float64(fn(g)) }))
}

// ========================= Stats =========================

func (s *Ship) Firepower() int {
	return s.BaseFirepower + sumInt(s, func(g *Gear) int { return g.Firepower })
}

func (s *Ship) Torpedo() int {
	return s.BaseTorpedo + sumInt(s, func(g *Gear) int { return g.Torpedo })
}

func (s *Ship) Armor() int {
	return s.BaseArmor + sumInt(s, func(g *Gear) int { return g.Armor })
}

func (s *Ship) AntiAir() int {
	return s.BaseAntiAir + sumInt(s, func(g *Gear) int { return g.AntiAir })
}

// GearTorpedo and GearBombing only count equipment.
func (s *Ship) GearTorpedo() int { return sumInt(s, func(g *Gear) int { return g.Torpedo }) }
func (s *Ship) GearBombing() int { return sumInt(s, func(g *Gear) int { return g.Bombing }) }
func (s *Ship) GearASW() int     { return sumInt(s, func(g *Gear) int { return g.ASW }) }
func (s *Ship) Accuracy() int    { return sumInt(s, func(g *Gear) int { return g.Accuracy }) }

func (s *Ship) NakedASW() (int, bool) {
	if s.BaseASW == nil {
		return 0, false
	}
	return *s.BaseASW, true
}

func (s *Ship) ASW() (int, bool) {
	v, ok := s.NakedASW()
	if !ok {
		return 0, false
	}
	return v + s.GearASW(), true
}

func (s *Ship) Evasion() (int, bool) {
	if s.BaseEvasion == nil {
		return 0, false
	}
	return *s.BaseEvasion + sumInt(s, func(g *Gear) int { return g.Evasion }), true
}

func (s *Ship) LoS() (int, bool) {
	if s.BaseLoS == nil {
		return 0, false
	}
	return *s.BaseLoS + sumInt(s, func(g *Gear) int { return g.LoS }), true
}

func (s *Ship) Luck() (int, bool) {
	if s.BaseLuck == nil {
		return 0, false
	}
	return *s.BaseLuck, true
}

// Range is the longest of the ship's own range and its equipment ranges.
func (s *Ship) Range() int {
	r := s.BaseRange
	s.EachGear(func(g *Gear, _ int) { r = max(r, g.Range) })
	return r
}

// Clone deep-copies the mutable parts of the ship. Gears are shared since
// they are never mutated.
func (s *Ship) Clone() *Ship {
	c := *s
	c.Attrs = slices.Clone(s.Attrs)
	c.Gears = slices.Clone(s.Gears)
	c.Slots = slices.Clone(s.Slots)
	return &c
}

// IntPtr is a helper for building ships with optional stats.
func IntPtr(v int) *int { return &v }
