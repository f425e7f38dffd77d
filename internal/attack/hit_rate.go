package attack

import "math"

// HitRateParams collects the accuracy inputs of one attack.
type HitRateParams struct {
	AccuracyTerm            float64 `json:"accuracy_term"`
	EvasionTerm             float64 `json:"evasion_term"`
	MoraleMod               float64 `json:"morale_mod"`
	CriticalRateConstant    float64 `json:"critical_rate_constant"`
	HitPercentageBonus      float64 `json:"hit_percentage_bonus"`
	CriticalPercentageBonus float64 `json:"critical_percentage_bonus"`
}

// HitRate splits the total hit chance into normal and critical hits.
type HitRate struct {
	Normal   float64 `json:"normal"`
	Critical float64 `json:"critical"`
	Total    float64 `json:"total"`
}

func (h HitRate) Miss() float64 { return 1 - h.Total }

const (
	minHitBasis = 10
	maxHitBasis = 96
)

func (p HitRateParams) Calc() HitRate {
	morale := p.MoraleMod
	if morale == 0 {
		morale = 1
	}
	basis := (p.AccuracyTerm - p.EvasionTerm) * morale
	basis = math.Min(math.Max(basis, minHitBasis), maxHitBasis)

	critPct := math.Floor(math.Sqrt(basis)*p.CriticalRateConstant + 1 + p.CriticalPercentageBonus)
	hitPct := math.Max(math.Floor(basis+1+p.HitPercentageBonus), critPct)

	total := clamp(hitPct/100, 0, 1)
	critical := clamp(critPct/100, 0, total)
	return HitRate{Normal: total - critical, Critical: critical, Total: total}
}

func clamp(v, lo, hi float64) float64 { return math.Min(math.Max(v, lo), hi) }
