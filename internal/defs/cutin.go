package defs

import (
	"math"
	"slices"

	"github.com/pefman/fleet-sim/internal/models"
)

// CutinDef is a day or night special attack.
type CutinDef struct {
	Tag         string   `json:"tag" yaml:"tag"`
	Denominator float64  `json:"denominator,omitempty" yaml:"denominator,omitempty"`
	FixedRate   *float64 `json:"fixed_rate,omitempty" yaml:"fixed_rate,omitempty"`
	Power       float64  `json:"power" yaml:"power"`
	Accuracy    float64  `json:"accuracy" yaml:"accuracy"`
	Hits        float64  `json:"hits" yaml:"hits"`
}

// Rate is the raw activation rate for a cutin term, min(term/denominator, 1),
// or the fixed rate when the cutin has one.
func (c CutinDef) Rate(term float64) (float64, bool) {
	if c.FixedRate != nil {
		return *c.FixedRate, true
	}
	if c.Denominator <= 0 || math.IsNaN(term) {
		return 0, false
	}
	return math.Max(math.Min(term/c.Denominator, 1), 0), true
}

// HitCount defaults to a single hit.
func (c CutinDef) HitCount() float64 {
	if c.Hits <= 0 {
		return 1
	}
	return c.Hits
}

// FleetCutinDef is a fleet-wide special attack: several ships fire in turn
// with their own power multipliers. Attackers holds fleet indices.
type FleetCutinDef struct {
	Tag        string    `json:"tag" yaml:"tag"`
	Chance     *float64  `json:"chance,omitempty" yaml:"chance,omitempty"`
	Formations []string  `json:"formations" yaml:"formations"`
	Attackers  []int     `json:"attackers" yaml:"attackers"`
	Power      []float64 `json:"power" yaml:"power"`
	Accuracy   float64   `json:"accuracy" yaml:"accuracy"`
}

func (c FleetCutinDef) Rate() (float64, bool) {
	if c.Chance == nil {
		return 0, false
	}
	return *c.Chance, true
}

func (c FleetCutinDef) AllowsFormation(f models.Formation) bool {
	return slices.Contains(c.Formations, f.String())
}

// AntiAirCutinDef is one anti-air cutin kind.
type AntiAirCutinDef struct {
	ID           int     `json:"id" yaml:"id"`
	Name         string  `json:"name" yaml:"name"`
	Chance       float64 `json:"chance" yaml:"chance"`
	Multiplier   float64 `json:"multiplier" yaml:"multiplier"`
	FixedBonus   int     `json:"fixed_bonus" yaml:"fixed_bonus"`
	MinimumBonus int     `json:"minimum_bonus" yaml:"minimum_bonus"`
	// Sequential kinds each take a share of the remaining probability;
	// the others share one threshold scale.
	Sequential bool `json:"sequential,omitempty" yaml:"sequential,omitempty"`
}

func (c AntiAirCutinDef) Rate() (float64, bool) {
	if c.Chance <= 0 {
		return 0, false
	}
	return math.Min(c.Chance, 1), true
}
