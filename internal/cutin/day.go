package cutin

import (
	"math"

	"github.com/pefman/fleet-sim/internal/defs"
	"github.com/pefman/fleet-sim/internal/models"
)

// DayTag names a day shelling special attack.
type DayTag string

const (
	DayNone      DayTag = ""
	MainMain     DayTag = "main_main"
	MainAPShell  DayTag = "main_ap_shell"
	MainRadar    DayTag = "main_radar"
	MainSecond   DayTag = "main_second"
	DoubleAttack DayTag = "double_attack"
	CarrierFBA   DayTag = "carrier_fba"
	CarrierBBA   DayTag = "carrier_bba"
	CarrierBA    DayTag = "carrier_ba"
)

// gunshipDayRules apply to ships spotting with an observation seaplane.
var gunshipDayRules = []Rule[DayTag]{
	{MainMain, func(s *models.Ship) bool { return mainGuns(s) >= 2 && count(s, models.AttrAPShell) >= 1 }},
	{MainAPShell, func(s *models.Ship) bool {
		return mainGuns(s) >= 1 && secondaryGuns(s) >= 1 && count(s, models.AttrAPShell) >= 1
	}},
	{MainRadar, func(s *models.Ship) bool { return mainGuns(s) >= 1 && secondaryGuns(s) >= 1 && radars(s) >= 1 }},
	{MainSecond, func(s *models.Ship) bool { return mainGuns(s) >= 1 && secondaryGuns(s) >= 1 }},
	{DoubleAttack, func(s *models.Ship) bool { return mainGuns(s) >= 2 }},
}

var carrierDayRules = []Rule[DayTag]{
	{CarrierFBA, func(s *models.Ship) bool {
		return s.CountPlanes(models.AttrFighter) >= 1 && s.CountPlanes(models.AttrDiveBomber) >= 1 &&
			s.CountPlanes(models.AttrTorpedoBomber) >= 1
	}},
	{CarrierBBA, func(s *models.Ship) bool { return s.CountPlanes(models.AttrDiveBomber) >= 2 }},
	{CarrierBA, func(s *models.Ship) bool {
		return s.CountPlanes(models.AttrDiveBomber) >= 1 && s.CountPlanes(models.AttrTorpedoBomber) >= 1
	}},
}

// DayContext is what the day cutin engine needs beyond the ship itself.
type DayContext struct {
	AirState   models.AirState
	Fleet      *models.Fleet
	IsFlagship bool
}

func (c DayContext) hasAirControl() bool {
	return c.AirState == models.AirSupremacy || c.AirState == models.AirSuperiority
}

// DayEligible lists the day cutins the ship may attempt, in priority order.
func DayEligible(s *models.Ship, ctx DayContext) []DayTag {
	if !ctx.hasAirControl() || s.DamageState() >= models.DamageTaiha {
		return nil
	}
	if s.IsCarrier() {
		return Eligible(carrierDayRules, s)
	}
	if s.CountPlanes(models.AttrObservationSeaplane) == 0 {
		return nil
	}
	return Eligible(gunshipDayRules, s)
}

// reconLoS weights each observation seaplane's LoS by its slot size.
func reconLoS(s *models.Ship) float64 {
	total := 0.0
	s.EachGear(func(g *models.Gear, slot int) {
		if slot > 0 && g.HasAttr(models.AttrObservationSeaplane) {
			total += float64(g.LoS) * math.Floor(math.Sqrt(float64(slot)))
		}
	})
	return total
}

// DayTerm is the observation term that day cutin rates are divided by.
// Unknown luck or fleet LoS makes it unknown.
func DayTerm(s *models.Ship, ctx DayContext) (float64, bool) {
	luck, ok := s.Luck()
	if !ok {
		return 0, false
	}
	fleetLoS, ok := ctx.Fleet.LoS()
	if !ok {
		return 0, false
	}
	luckTerm := math.Floor(math.Sqrt(float64(luck)) + 10)
	recon := reconLoS(s)

	var term float64
	switch ctx.AirState {
	case models.AirSupremacy:
		term = math.Floor(luckTerm + 10 + 0.7*(fleetLoS+1.6*recon))
	case models.AirSuperiority:
		term = math.Floor(luckTerm + 0.6*(fleetLoS+1.2*recon))
	default:
		return 0, false
	}
	if ctx.IsFlagship {
		term += 15
	}
	return term, true
}

// DayDistribution is the probability of each day cutin for the ship. A ship
// with nothing to attempt gets the "none only" distribution; an unknown
// term makes the whole distribution unknown.
func DayDistribution(d *defs.Definitions, s *models.Ship, ctx DayContext) (Distribution[DayTag], bool) {
	tags := DayEligible(s, ctx)
	if len(tags) == 0 {
		return None[DayTag](), true
	}
	term, ok := DayTerm(s, ctx)
	if !ok {
		return nil, false
	}
	return Cumulative(tags, func(t DayTag) (float64, bool) {
		def, ok := d.DayCutin(string(t))
		if !ok {
			return 0, false
		}
		return def.Rate(term)
	}), true
}
