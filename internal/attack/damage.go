package attack

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pefman/fleet-sim/internal/engine"
)

// HitType is the outcome of the accuracy roll.
type HitType int

const (
	Miss HitType = iota
	NormalHit
	CriticalHit
)

func (h HitType) String() string {
	switch h {
	case NormalHit:
		return "normal"
	case CriticalHit:
		return "critical"
	}
	return "miss"
}

func (h HitType) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

func (h *HitType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "miss":
		*h = Miss
	case "normal":
		*h = NormalHit
	case "critical":
		*h = CriticalHit
	default:
		return fmt.Errorf("unknown hit type %q", b)
	}
	return nil
}

// DamageType is the regime a damage value was produced in.
type DamageType int

const (
	DamageTypeNormal DamageType = iota
	DamageTypeScratch
	DamageTypeOverkill
	DamageTypeProtected
)

func (d DamageType) String() string {
	switch d {
	case DamageTypeScratch:
		return "scratch"
	case DamageTypeOverkill:
		return "overkill"
	case DamageTypeProtected:
		return "protected"
	}
	return "normal"
}

// DefenseParams describes the target for one attack resolution.
type DefenseParams struct {
	Armor              float64 `json:"armor"`
	CurrentHP          int     `json:"current_hp"`
	MaxHP              int     `json:"max_hp"`
	Sinkable           bool    `json:"sinkable"`
	OverkillProtection bool    `json:"overkill_protection"`
}

// damageModel resolves one hit with a fixed attack term.
type damageModel struct {
	attackTerm       float64
	armorPenetration float64
	ammoMod          float64
	defense          DefenseParams
}

// defenseCount is the number of discrete defense draws.
func (d damageModel) defenseCount() int {
	return max(int(math.Floor(d.defense.Armor)), 1)
}

func (d damageModel) raw(i int) int {
	def := d.defense.Armor*0.7 + float64(i)*0.6
	eff := math.Max(def-d.armorPenetration, 1)
	v := math.Floor((d.attackTerm - eff) * d.ammoMod)
	return max(int(v), 0)
}

func scratchValue(hp, i int) int    { return int(math.Floor(float64(hp)*0.06 + float64(i)*0.08)) }
func protectionValue(hp, i int) int { return int(math.Floor(float64(hp)*0.5 + float64(i)*0.3)) }

// regime classifies a raw value against hp.
func (d damageModel) regime(raw, hp int) DamageType {
	switch {
	case raw <= 0:
		return DamageTypeScratch
	case raw >= hp && d.defense.Sinkable:
		return DamageTypeOverkill
	case raw >= hp && d.defense.OverkillProtection:
		return DamageTypeProtected
	case raw >= hp:
		return DamageTypeOverkill
	}
	return DamageTypeNormal
}

// roll draws one damage value against a target at hp.
func (d damageModel) roll(r *rand.Rand, hp int) (int, DamageType) {
	if hp <= 0 {
		return 0, DamageTypeNormal
	}
	raw := d.raw(r.Intn(d.defenseCount()))
	switch t := d.regime(raw, hp); t {
	case DamageTypeScratch:
		return scratchValue(hp, r.Intn(hp)), t
	case DamageTypeProtected:
		return protectionValue(hp, r.Intn(hp)), t
	case DamageTypeOverkill:
		if d.defense.Sinkable {
			return raw, t
		}
		return hp - 1, t
	default:
		return raw, t
	}
}

// distribution enumerates every defense draw against a target at hp.
func (d damageModel) distribution(hp int) NumMap[int] {
	out := NumMap[int]{}
	if hp <= 0 {
		out.Add(0, 1)
		return out
	}
	n := d.defenseCount()
	pDef := 1 / float64(n)
	for i := 0; i < n; i++ {
		raw := d.raw(i)
		switch d.regime(raw, hp) {
		case DamageTypeScratch:
			for j := 0; j < hp; j++ {
				out.Add(scratchValue(hp, j), pDef/float64(hp))
			}
		case DamageTypeProtected:
			for j := 0; j < hp; j++ {
				out.Add(protectionValue(hp, j), pDef/float64(hp))
			}
		case DamageTypeOverkill:
			if d.defense.Sinkable {
				out.Add(raw, pDef)
			} else {
				out.Add(hp-1, pDef)
			}
		default:
			out.Add(raw, pDef)
		}
	}
	return out
}

// rollHitType draws Miss, NormalHit or CriticalHit from a hit rate.
func rollHitType(r *rand.Rand, h HitRate) HitType {
	return HitType(engine.Categorical(r, []float64{h.Miss(), h.Normal, h.Critical}))
}
