package attack

import (
	"math"
	"math/rand"

	"github.com/pefman/fleet-sim/internal/engine"
	"github.com/pefman/fleet-sim/internal/models"
)

// AttackParams is everything needed to resolve one attack. Any nil part
// makes the attack unresolvable.
type AttackParams struct {
	AttackPower *AttackPower   `json:"attack_power,omitempty"`
	HitRate     *HitRate       `json:"hit_rate,omitempty"`
	Defense     *DefenseParams `json:"defense,omitempty"`
	// Hits may be fractional: 1.5 means one or two hits with equal weight.
	Hits float64 `json:"hits"`
}

func (p AttackParams) complete() bool {
	return p.AttackPower != nil && p.HitRate != nil && p.Defense != nil
}

func (p AttackParams) hits() float64 {
	if p.Hits <= 0 {
		return 1
	}
	return p.Hits
}

func (p AttackParams) model(h HitType) damageModel {
	term := p.AttackPower.Normal
	if h == CriticalHit {
		term = p.AttackPower.Critical
	}
	return damageModel{
		attackTerm:       term,
		armorPenetration: p.AttackPower.ArmorPenetration,
		ammoMod:          p.AttackPower.RemainingAmmoMod,
		defense:          *p.Defense,
	}
}

// SingleHitDistribution is the damage histogram of one hit against a target
// at hp, misses included as damage 0.
func (p AttackParams) SingleHitDistribution(hp int) (NumMap[int], bool) {
	if !p.complete() {
		return nil, false
	}
	out := NumMap[int]{}
	out.Add(0, p.HitRate.Miss())
	out.Merge(p.model(NormalHit).distribution(hp).Scaled(p.HitRate.Normal))
	out.Merge(p.model(CriticalHit).distribution(hp).Scaled(p.HitRate.Critical))
	return out, true
}

// RemainingHPDistribution convolves the single-hit histogram over the hit
// count. Each step re-keys on the HP left by the previous hits, so later
// hits see the damaged target. A fractional hit count blends the last two
// steps by its fractional part.
func (p AttackParams) RemainingHPDistribution() (NumMap[int], bool) {
	if !p.complete() {
		return nil, false
	}
	hits := p.hits()
	steps := int(math.Ceil(hits))

	cur := NumMap[int]{p.Defense.CurrentHP: 1}
	prev := cur
	for i := 0; i < steps; i++ {
		prev = cur
		next := NumMap[int]{}
		for _, hp := range cur.Keys() {
			single, _ := p.SingleHitDistribution(hp)
			for dmg, q := range single {
				next.Add(hp-dmg, cur[hp]*q)
			}
		}
		cur = next
	}

	frac := hits - math.Floor(hits)
	if frac == 0 {
		return cur, true
	}
	out := prev.Scaled(1 - frac)
	out.Merge(cur.Scaled(frac))
	return out, true
}

// DamageDistribution is the histogram of total damage dealt. Overkill on
// sinkable targets keeps its raw value, so keys may exceed the current HP.
func (p AttackParams) DamageDistribution() (NumMap[int], bool) {
	if p.complete() && p.hits() == 1 {
		return p.SingleHitDistribution(p.Defense.CurrentHP)
	}
	rem, ok := p.RemainingHPDistribution()
	if !ok {
		return nil, false
	}
	hp := p.Defense.CurrentHP
	return Rekey(rem, func(r int) int { return hp - r }), true
}

// DamageStateDistribution buckets the remaining HP by damage state.
func (p AttackParams) DamageStateDistribution() (NumMap[models.DamageState], bool) {
	rem, ok := p.RemainingHPDistribution()
	if !ok {
		return nil, false
	}
	maxHP := p.Defense.MaxHP
	return Rekey(rem, func(r int) models.DamageState { return models.DamageStateOf(r, maxHP) }), true
}

// HitResult is one rolled hit.
type HitResult struct {
	Hit    HitType    `json:"hit"`
	Damage int        `json:"damage"`
	Type   DamageType `json:"-"`
}

// Outcome is a rolled attack.
type Outcome struct {
	Hits  []HitResult `json:"hits"`
	Total int         `json:"total"`
}

// Roll samples the attack once. The hit count is floor(Hits) plus one more
// with probability fract(Hits); each hit sees the HP left by the previous.
func (p AttackParams) Roll(r *rand.Rand) (Outcome, bool) {
	if !p.complete() {
		return Outcome{}, false
	}
	hits := p.hits()
	n := int(math.Floor(hits))
	if engine.Chance(r, hits-math.Floor(hits)) {
		n++
	}
	hp := p.Defense.CurrentHP
	var out Outcome
	for i := 0; i < n; i++ {
		h := rollHitType(r, *p.HitRate)
		res := HitResult{Hit: h}
		if h != Miss {
			res.Damage, res.Type = p.model(h).roll(r, hp)
		}
		hp -= min(res.Damage, max(hp, 0))
		out.Total += res.Damage
		out.Hits = append(out.Hits, res)
	}
	return out, true
}

// Apply rolls the attack against ship and subtracts the damage from it.
func (p AttackParams) Apply(r *rand.Rand, ship *models.Ship) (Outcome, bool) {
	if p.Defense != nil {
		d := *p.Defense
		d.CurrentHP = ship.CurrentHP
		p.Defense = &d
	}
	out, ok := p.Roll(r)
	if !ok {
		return out, false
	}
	for _, h := range out.Hits {
		ship.TakeDamage(h.Damage)
	}
	return out, true
}
