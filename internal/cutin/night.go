package cutin

import (
	"math"

	"github.com/pefman/fleet-sim/internal/defs"
	"github.com/pefman/fleet-sim/internal/models"
)

// NightTag names a night battle special attack.
type NightTag string

const (
	NightNone                 NightTag = ""
	DestroyerMainTorpRadar    NightTag = "destroyer_main_torp_radar"
	DestroyerTorpLookoutRadar NightTag = "destroyer_torp_lookout_radar"
	LateModelTorpRadar        NightTag = "late_model_torp_radar"
	LateModelTorpTorp         NightTag = "late_model_torp_torp"
	CarrierNight              NightTag = "carrier_night"
	MainMainMain              NightTag = "main_main_main"
	MainMainSecond            NightTag = "main_main_second"
	TorpTorp                  NightTag = "torp_torp"
	MainTorp                  NightTag = "main_torp"
	NightDoubleAttack         NightTag = "double_attack"
)

var nightRules = []Rule[NightTag]{
	{DestroyerMainTorpRadar, func(s *models.Ship) bool {
		return s.IsDestroyer() && mainGuns(s) >= 1 && torpedoes(s) >= 1 && count(s, models.AttrSurfaceRadar) >= 1
	}},
	{DestroyerTorpLookoutRadar, func(s *models.Ship) bool {
		return s.IsDestroyer() && torpedoes(s) >= 1 && count(s, models.AttrSkilledLookouts) >= 1 &&
			count(s, models.AttrSurfaceRadar) >= 1
	}},
	{LateModelTorpRadar, func(s *models.Ship) bool {
		return s.IsSubmarine() && count(s, models.AttrLateModelTorpedo) >= 1 && count(s, models.AttrSubmarineEquipment) >= 1
	}},
	{LateModelTorpTorp, func(s *models.Ship) bool {
		return s.IsSubmarine() && count(s, models.AttrLateModelTorpedo) >= 2
	}},
	{CarrierNight, func(s *models.Ship) bool { return s.IsCarrier() && s.CountPlanes(models.AttrNightPlane) >= 1 }},
	{MainMainMain, func(s *models.Ship) bool { return mainGuns(s) >= 3 }},
	{MainMainSecond, func(s *models.Ship) bool { return mainGuns(s) == 2 && secondaryGuns(s) >= 1 }},
	{TorpTorp, func(s *models.Ship) bool { return torpedoes(s) >= 2 }},
	{MainTorp, func(s *models.Ship) bool { return mainGuns(s) >= 1 && torpedoes(s) >= 1 }},
	{NightDoubleAttack, func(s *models.Ship) bool {
		m, sec := mainGuns(s), secondaryGuns(s)
		return m >= 2 || (m == 1 && sec >= 1) || sec >= 2
	}},
}

// NightContext carries the night battle flags both fleets contribute.
type NightContext struct {
	IsFlagship       bool
	Searchlight      bool
	StarShell        bool
	EnemySearchlight bool
	EnemyStarShell   bool
}

// NightEligible lists the night cutins the ship may attempt, in priority
// order. The double attack is always evaluated last.
func NightEligible(s *models.Ship) []NightTag {
	if s.DamageState() >= models.DamageTaiha {
		return nil
	}
	return Eligible(nightRules, s)
}

// NightTerm is the night cutin term. Unknown luck makes it unknown.
func NightTerm(s *models.Ship, ctx NightContext) (float64, bool) {
	luck, ok := s.Luck()
	if !ok {
		return 0, false
	}
	lv := math.Sqrt(float64(s.Level))
	var term float64
	if luck < 50 {
		term = 15 + float64(luck) + 0.75*lv
	} else {
		term = 65 + math.Floor(math.Sqrt(float64(luck-50))) + 0.8*lv
	}
	term = math.Floor(term)

	if ctx.IsFlagship {
		term += 15
	}
	if s.DamageState() == models.DamageChuuha {
		term += 18
	}
	if ctx.Searchlight {
		term += 7
	}
	if ctx.StarShell {
		term += 4
	}
	if ctx.EnemySearchlight {
		term -= 5
	}
	if ctx.EnemyStarShell {
		term -= 10
	}
	if s.HasGearAttr(models.AttrSkilledLookouts) {
		term += 5
	}
	return term, true
}

// NightDistribution is the probability of each night cutin for the ship.
func NightDistribution(d *defs.Definitions, s *models.Ship, ctx NightContext) (Distribution[NightTag], bool) {
	tags := NightEligible(s)
	if len(tags) == 0 {
		return None[NightTag](), true
	}
	term, ok := NightTerm(s, ctx)
	if !ok {
		return nil, false
	}
	return Cumulative(tags, func(t NightTag) (float64, bool) {
		def, ok := d.NightCutin(string(t))
		if !ok {
			return 0, false
		}
		return def.Rate(term)
	}), true
}
