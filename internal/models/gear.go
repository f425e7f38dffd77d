package models

import (
	"math"
	"slices"
)

// Gear attributes queried by the rule engines.
const (
	AttrMainGun              = "MainGun"
	AttrLargeMainGun         = "LargeMainGun"
	AttrSecondaryGun         = "SecondaryGun"
	AttrAPShell              = "APShell"
	AttrAAShell              = "AAShell"
	AttrSurfaceRadar         = "SurfaceRadar"
	AttrAirRadar             = "AirRadar"
	AttrObservationSeaplane  = "ObservationSeaplane"
	AttrTorpedo              = "Torpedo"
	AttrLateModelTorpedo     = "LateModelTorpedo"
	AttrSubmarineEquipment   = "SubmarineEquipment"
	AttrMidgetSubmarine      = "MidgetSubmarine"
	AttrSonar                = "Sonar"
	AttrDepthCharge          = "DepthCharge"
	AttrDepthChargeProjector = "DepthChargeProjector"
	AttrAntiSubWeapon        = "AntiSubWeapon"
	AttrSearchlight          = "Searchlight"
	AttrStarShell            = "StarShell"
	AttrSkilledLookouts      = "SkilledLookouts"
	AttrHighAngleMount       = "HighAngleMount"
	AttrHighAngleWithAAFD    = "HighAngleWithAAFD"
	AttrAAFD                 = "AAFD"
	AttrAAGun                = "AAGun"
	AttrCDMG                 = "CDMG"
	AttrFighter              = "Fighter"
	AttrDiveBomber           = "DiveBomber"
	AttrTorpedoBomber        = "TorpedoBomber"
	AttrNightPlane           = "NightPlane"
)

// Gear is an immutable equipment record.
type Gear struct {
	ID          int      `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string   `json:"name" yaml:"name"`
	Attrs       []string `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	Firepower   int      `json:"firepower,omitempty" yaml:"firepower,omitempty"`
	Torpedo     int      `json:"torpedo,omitempty" yaml:"torpedo,omitempty"`
	Bombing     int      `json:"bombing,omitempty" yaml:"bombing,omitempty"`
	AntiAir     int      `json:"anti_air,omitempty" yaml:"anti_air,omitempty"`
	ASW         int      `json:"asw,omitempty" yaml:"asw,omitempty"`
	LoS         int      `json:"los,omitempty" yaml:"los,omitempty"`
	Accuracy    int      `json:"accuracy,omitempty" yaml:"accuracy,omitempty"`
	Evasion     int      `json:"evasion,omitempty" yaml:"evasion,omitempty"`
	Armor       int      `json:"armor,omitempty" yaml:"armor,omitempty"`
	Range       int      `json:"range,omitempty" yaml:"range,omitempty"`
	Stars       int      `json:"stars,omitempty" yaml:"stars,omitempty"`             // improvement level 0-10
	Proficiency int      `json:"proficiency,omitempty" yaml:"proficiency,omitempty"` // 0-7, planes only
}

func (g *Gear) HasAttr(attr string) bool {
	return g != nil && slices.Contains(g.Attrs, attr)
}

// IsPlane reports whether the gear occupies aircraft in its slot.
func (g *Gear) IsPlane() bool {
	return g.HasAttr(AttrFighter) || g.HasAttr(AttrDiveBomber) || g.HasAttr(AttrTorpedoBomber) ||
		g.HasAttr(AttrObservationSeaplane) || g.HasAttr(AttrNightPlane)
}

// IsAttacker reports whether the plane takes part in airstrikes.
func (g *Gear) IsAttacker() bool {
	return g.HasAttr(AttrDiveBomber) || g.HasAttr(AttrTorpedoBomber)
}

// ImprovementFirepower is the shelling bonus granted by improvement stars.
func (g *Gear) ImprovementFirepower() float64 {
	if g == nil || g.Stars <= 0 {
		return 0
	}
	switch {
	case g.HasAttr(AttrLargeMainGun):
		return 1.5 * math.Sqrt(float64(g.Stars))
	case g.HasAttr(AttrMainGun), g.HasAttr(AttrSecondaryGun), g.HasAttr(AttrHighAngleMount), g.HasAttr(AttrAPShell):
		return math.Sqrt(float64(g.Stars))
	}
	return 0
}

func (g *Gear) ImprovementTorpedo() float64 {
	if g == nil || g.Stars <= 0 || !g.HasAttr(AttrTorpedo) {
		return 0
	}
	return 1.2 * math.Sqrt(float64(g.Stars))
}

func (g *Gear) ImprovementASW() float64 {
	if g == nil || g.Stars <= 0 {
		return 0
	}
	if g.HasAttr(AttrSonar) || g.HasAttr(AttrDepthCharge) || g.HasAttr(AttrDepthChargeProjector) {
		return math.Sqrt(float64(g.Stars))
	}
	return 0
}

func (g *Gear) ImprovementAccuracy() float64 {
	if g == nil || g.Stars <= 0 {
		return 0
	}
	if g.HasAttr(AttrSurfaceRadar) || g.HasAttr(AttrAirRadar) {
		return 1.7 * math.Sqrt(float64(g.Stars))
	}
	return 0
}

// ProficiencyCriticalMod is the critical multiplier contributed by a
// plane's proficiency rank.
func (g *Gear) ProficiencyCriticalMod() float64 {
	bonus := []float64{0, 1, 2, 3, 4, 5, 7, 10}
	if g == nil || g.Proficiency <= 0 {
		return 1
	}
	p := min(g.Proficiency, len(bonus)-1)
	return 1 + bonus[p]/100
}
