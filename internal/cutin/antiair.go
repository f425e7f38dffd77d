package cutin

import (
	"slices"
	"sort"

	"github.com/pefman/fleet-sim/internal/defs"
	"github.com/pefman/fleet-sim/internal/models"
)

func akizuki(s *models.Ship) bool { return s.Class == "Akizuki" }
func maya(s *models.Ship) bool    { return s.Class == "Maya" }

func airRadar(s *models.Ship) bool { return count(s, models.AttrAirRadar) >= 1 }

func aafd(s *models.Ship) int { return count(s, models.AttrAAFD) }

// antiAirRules are keyed by anti-air cutin id. Tag 0 is "none".
var antiAirRules = []Rule[int]{
	{1, func(s *models.Ship) bool { return akizuki(s) && highAngle(s) >= 2 && airRadar(s) }},
	{2, func(s *models.Ship) bool { return akizuki(s) && highAngle(s) >= 1 && airRadar(s) }},
	{3, func(s *models.Ship) bool { return akizuki(s) && highAngle(s) >= 2 }},
	{4, func(s *models.Ship) bool {
		return count(s, models.AttrLargeMainGun) >= 1 && count(s, models.AttrAAShell) >= 1 && aafd(s) >= 1 && airRadar(s)
	}},
	{5, func(s *models.Ship) bool { return count(s, models.AttrHighAngleWithAAFD) >= 2 && airRadar(s) }},
	{6, func(s *models.Ship) bool {
		return count(s, models.AttrLargeMainGun) >= 1 && count(s, models.AttrAAShell) >= 1 && aafd(s) >= 1
	}},
	{7, func(s *models.Ship) bool { return highAngle(s) >= 1 && aafd(s) >= 1 && airRadar(s) }},
	{8, func(s *models.Ship) bool { return count(s, models.AttrHighAngleWithAAFD) >= 1 && airRadar(s) }},
	{9, func(s *models.Ship) bool { return highAngle(s) >= 1 && aafd(s) >= 1 }},
	{10, func(s *models.Ship) bool { return maya(s) && highAngle(s) >= 1 && count(s, models.AttrCDMG) >= 1 && airRadar(s) }},
	{11, func(s *models.Ship) bool { return maya(s) && highAngle(s) >= 1 && count(s, models.AttrCDMG) >= 1 }},
	{12, func(s *models.Ship) bool {
		return count(s, models.AttrCDMG) >= 1 && count(s, models.AttrAAGun) >= 2 && airRadar(s)
	}},
}

// AntiAirEligible returns the definitions of every anti-air cutin the ship
// can trigger, in rule order.
func AntiAirEligible(d *defs.Definitions, s *models.Ship) []defs.AntiAirCutinDef {
	if s == nil || s.IsSunk() {
		return nil
	}
	var out []defs.AntiAirCutinDef
	for _, id := range Eligible(antiAirRules, s) {
		if def, ok := d.AntiAirCutin(id); ok {
			out = append(out, def)
		}
	}
	return out
}

// AntiAirAllocate turns eligible definitions into a distribution over ids.
//
// Sequential kinds are allocated like Cumulative. The normal kinds share a
// threshold scale: sorted by ascending raw rate, each takes the increment
// over the previous raw rate, scaled by what the sequential kinds left.
// Kinds sharing a raw rate add nothing after the first, and the normal
// total never exceeds the highest raw rate whatever order they come in.
func AntiAirAllocate(eligible []defs.AntiAirCutinDef) Distribution[int] {
	var seq, normal []defs.AntiAirCutinDef
	for _, def := range eligible {
		if def.Sequential {
			seq = append(seq, def)
		} else {
			normal = append(normal, def)
		}
	}

	rate := func(def defs.AntiAirCutinDef) float64 {
		r, _ := def.Rate()
		return r
	}

	var out Distribution[int]
	seqTotal := 0.0
	for _, def := range seq {
		raw, ok := def.Rate()
		if !ok {
			continue
		}
		p := (1 - seqTotal) * raw
		seqTotal += p
		out = append(out, Outcome[int]{Tag: def.ID, Rate: p})
	}

	normal = slices.Clone(normal)
	sort.SliceStable(normal, func(i, j int) bool { return rate(normal[i]) < rate(normal[j]) })
	total := seqTotal
	prev := 0.0
	for _, def := range normal {
		raw, ok := def.Rate()
		if !ok {
			continue
		}
		p := (raw - prev) * (1 - seqTotal)
		total += p
		prev = raw
		out = append(out, Outcome[int]{Tag: def.ID, Rate: p})
	}
	return append(Distribution[int]{{Tag: 0, Rate: 1 - total}}, out...)
}

// AntiAirDistribution is the per-ship anti-air cutin distribution.
func AntiAirDistribution(d *defs.Definitions, s *models.Ship) (Distribution[int], bool) {
	if s == nil {
		return nil, false
	}
	return AntiAirAllocate(AntiAirEligible(d, s)), true
}

// FleetAntiAir combines per-ship distributions into the fleet's. Ids are
// walked from highest to lowest; for each id t the chance that at least one
// ship rolls an id >= t is 1 - prod(1 - P_ship(>= t)), and the mass already
// given to higher ids is subtracted.
func FleetAntiAir(ships []Distribution[int]) Distribution[int] {
	var ids []int
	for _, d := range ships {
		for _, o := range d {
			if o.Tag != 0 && !slices.Contains(ids, o.Tag) {
				ids = append(ids, o.Tag)
			}
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ids)))

	var out Distribution[int]
	covered := 0.0
	for _, t := range ids {
		miss := 1.0
		for _, d := range ships {
			atLeast := 0.0
			for _, o := range d {
				if o.Tag >= t {
					atLeast += o.Rate
				}
			}
			miss *= 1 - atLeast
		}
		ge := 1 - miss
		p := max(ge-covered, 0)
		covered = max(covered, ge)
		out = append(out, Outcome[int]{Tag: t, Rate: p})
	}
	return append(Distribution[int]{{Tag: 0, Rate: 1 - covered}}, out...)
}
