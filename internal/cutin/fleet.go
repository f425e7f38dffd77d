package cutin

import (
	"github.com/pefman/fleet-sim/internal/defs"
	"github.com/pefman/fleet-sim/internal/models"
)

// FleetTag names a fleet-wide special attack.
type FleetTag string

const (
	FleetNone   FleetTag = ""
	NelsonTouch FleetTag = "nelson_touch"
	NagatoCutin FleetTag = "nagato_cutin"
	MutsuCutin  FleetTag = "mutsu_cutin"
)

// FleetRule unlocks Tag when When holds for the fleet.
type FleetRule struct {
	Tag  FleetTag
	When func(f *models.Fleet) bool
}

// canPartner reports whether the ship at index i can join a fleet cutin.
func canPartner(f *models.Fleet, i int) bool {
	if i >= f.Len() {
		return false
	}
	s := f.Ships[i]
	return !s.IsSunk() && !s.IsSubmarine() && s.DamageState() < models.DamageChuuha
}

func fullFleet(f *models.Fleet) bool {
	return f.Len() >= 6 && f.Flagship().DamageState() < models.DamageChuuha
}

var fleetRules = []FleetRule{
	{NelsonTouch, func(f *models.Fleet) bool {
		return fullFleet(f) && f.Flagship().Class == "Nelson" &&
			canPartner(f, 2) && canPartner(f, 4) && !f.Ships[2].IsCarrier() && !f.Ships[4].IsCarrier()
	}},
	{NagatoCutin, func(f *models.Fleet) bool {
		return fullFleet(f) && f.Flagship().Name == "Nagato" && canPartner(f, 1) && f.Ships[1].IsBattleship()
	}},
	{MutsuCutin, func(f *models.Fleet) bool {
		return fullFleet(f) && f.Flagship().Name == "Mutsu" && canPartner(f, 1) && f.Ships[1].IsBattleship()
	}},
}

// FleetEligible lists the fleet cutins the fleet may attempt in formation.
func FleetEligible(d *defs.Definitions, f *models.Fleet, formation models.Formation) []FleetTag {
	var out []FleetTag
	for _, r := range fleetRules {
		def, ok := d.FleetCutin(string(r.Tag))
		if ok && def.AllowsFormation(formation) && r.When(f) {
			out = append(out, r.Tag)
		}
	}
	return out
}

// FleetDistribution is the probability of each fleet cutin.
func FleetDistribution(d *defs.Definitions, f *models.Fleet, formation models.Formation) Distribution[FleetTag] {
	tags := FleetEligible(d, f, formation)
	return Cumulative(tags, func(t FleetTag) (float64, bool) {
		def, _ := d.FleetCutin(string(t))
		return def.Rate()
	})
}
