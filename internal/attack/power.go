package attack

import "math"

// AttackPowerParams collects the inputs of one attack power computation.
// Build it with NewAttackPowerParams so the modifiers start at identity.
//
// Stage order matters: floors are interleaved with the modifier stages and
// do not commute with composition, so each stage is applied on its own.
type AttackPowerParams struct {
	Basic float64 `json:"basic"`
	Cap   float64 `json:"cap"`

	PrecapMod             Modifier `json:"precap_mod"`
	SpecialEnemyPrecapMod Modifier `json:"special_enemy_precap_mod"`
	CustomPrecapMod       Modifier `json:"custom_precap_mod"`

	PostcapMod             Modifier `json:"postcap_mod"`
	SpecialEnemyPostcapMod Modifier `json:"special_enemy_postcap_mod"`
	CustomPostcapMod       Modifier `json:"custom_postcap_mod"`

	APShellMod             *float64 `json:"ap_shell_mod,omitempty"`
	AerialPower            *float64 `json:"aerial_power,omitempty"`
	ProficiencyCriticalMod float64  `json:"proficiency_critical_mod"`
	ArmorPenetration       float64  `json:"armor_penetration"`
	RemainingAmmoMod       float64  `json:"remaining_ammo_mod"`
}

func NewAttackPowerParams(basic, cap float64) AttackPowerParams {
	return AttackPowerParams{
		Basic:                  basic,
		Cap:                    cap,
		PrecapMod:              Identity,
		SpecialEnemyPrecapMod:  Identity,
		CustomPrecapMod:        Identity,
		PostcapMod:             Identity,
		SpecialEnemyPostcapMod: Identity,
		CustomPostcapMod:       Identity,
		ProficiencyCriticalMod: 1,
		RemainingAmmoMod:       1,
	}
}

// AttackPower is the result of AttackPowerParams.Calc.
type AttackPower struct {
	Precap           float64 `json:"precap"`
	IsCapped         bool    `json:"is_capped"`
	Capped           float64 `json:"capped"`
	Normal           float64 `json:"normal"`
	Critical         float64 `json:"critical"`
	ArmorPenetration float64 `json:"armor_penetration"`
	RemainingAmmoMod float64 `json:"remaining_ammo_mod"`
}

func (p AttackPowerParams) precap() float64 {
	v := p.PrecapMod.Apply(p.Basic)
	v = p.SpecialEnemyPrecapMod.Apply(v)
	if p.AerialPower != nil {
		v = math.Floor((v+*p.AerialPower)*1.5) + 25
	}
	return p.CustomPrecapMod.Apply(v)
}

func (p AttackPowerParams) postcap(capped float64) float64 {
	v := math.Floor(capped)
	v = math.Floor(p.SpecialEnemyPostcapMod.Apply(v))
	v = p.PostcapMod.Apply(v)
	if p.APShellMod != nil {
		v = math.Floor(v * *p.APShellMod)
	}
	return p.CustomPostcapMod.Apply(v)
}

func (p AttackPowerParams) Calc() AttackPower {
	precap := p.precap()
	isCapped := precap > p.Cap
	capped := precap
	if isCapped {
		capped = p.Cap + math.Sqrt(precap-p.Cap)
	}
	normal := p.postcap(capped)
	prof := p.ProficiencyCriticalMod
	if prof == 0 {
		prof = 1
	}
	ammo := p.RemainingAmmoMod
	if ammo == 0 {
		ammo = 1
	}
	return AttackPower{
		Precap:           precap,
		IsCapped:         isCapped,
		Capped:           capped,
		Normal:           normal,
		Critical:         math.Floor(normal * 1.5 * prof),
		ArmorPenetration: p.ArmorPenetration,
		RemainingAmmoMod: ammo,
	}
}

// Float64Ptr is a helper for the optional multipliers.
func Float64Ptr(v float64) *float64 { return &v }
