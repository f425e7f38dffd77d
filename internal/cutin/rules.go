// Package cutin decides which special attacks a ship or fleet may attempt
// and how likely each one is. Eligibility is a declarative table of
// (predicate, tag) rules evaluated in order; the probability engines turn
// the eligible tags into a distribution whose zero tag means "no special
// attack".
package cutin

import (
	"math/rand"
	"slices"

	"github.com/pefman/fleet-sim/internal/models"
)

// Rule unlocks Tag when When holds for the ship.
type Rule[T comparable] struct {
	Tag  T
	When func(s *models.Ship) bool
}

// Eligible evaluates rules in order and returns every unlocked tag,
// preserving rule order.
func Eligible[T comparable](rules []Rule[T], s *models.Ship) []T {
	var out []T
	for _, r := range rules {
		if r.When(s) && !slices.Contains(out, r.Tag) {
			out = append(out, r.Tag)
		}
	}
	return out
}

// Outcome is one entry of a cutin distribution. The zero Tag is "none".
type Outcome[T comparable] struct {
	Tag  T       `json:"tag"`
	Rate float64 `json:"rate"`
}

// Distribution lists the outcomes, "none" first.
type Distribution[T comparable] []Outcome[T]

// None is the distribution of a ship with nothing to attempt.
func None[T comparable]() Distribution[T] {
	var zero T
	return Distribution[T]{{Tag: zero, Rate: 1}}
}

// Cumulative allocates mutually exclusive rates in priority order: each
// tag takes its raw rate out of the probability that is still unclaimed.
// Tags whose rate is unknown are skipped.
func Cumulative[T comparable](tags []T, rate func(T) (float64, bool)) Distribution[T] {
	total := 0.0
	var specials []Outcome[T]
	for _, t := range tags {
		raw, ok := rate(t)
		if !ok {
			continue
		}
		p := (1 - total) * raw
		total += p
		specials = append(specials, Outcome[T]{Tag: t, Rate: p})
	}
	var zero T
	return append(Distribution[T]{{Tag: zero, Rate: 1 - total}}, specials...)
}

// Rate returns the probability of tag, 0 when absent.
func (d Distribution[T]) Rate(tag T) float64 {
	for _, o := range d {
		if o.Tag == tag {
			return o.Rate
		}
	}
	return 0
}

// Special is the total probability of any special attack.
func (d Distribution[T]) Special() float64 {
	var zero T
	total := 0.0
	for _, o := range d {
		if o.Tag != zero {
			total += o.Rate
		}
	}
	return total
}

// Roll draws one uniform number and walks the special outcomes in order;
// the first whose cumulative threshold exceeds the draw wins. Falling past
// every threshold yields the zero tag.
func (d Distribution[T]) Roll(r *rand.Rand) T {
	var zero T
	u := r.Float64()
	acc := 0.0
	for _, o := range d {
		if o.Tag == zero {
			continue
		}
		acc += o.Rate
		if u < acc {
			return o.Tag
		}
	}
	return zero
}

// ========================= Shared predicates =========================

func count(s *models.Ship, attr string) int { return s.CountAttr(attr) }

func highAngle(s *models.Ship) int {
	return count(s, models.AttrHighAngleMount) + count(s, models.AttrHighAngleWithAAFD)
}

func mainGuns(s *models.Ship) int { return count(s, models.AttrMainGun) }

func secondaryGuns(s *models.Ship) int { return count(s, models.AttrSecondaryGun) }

func torpedoes(s *models.Ship) int { return count(s, models.AttrTorpedo) }

func radars(s *models.Ship) int {
	return count(s, models.AttrSurfaceRadar) + count(s, models.AttrAirRadar)
}
