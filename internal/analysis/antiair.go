package analysis

import (
	"github.com/pefman/fleet-sim/internal/cutin"
	"github.com/pefman/fleet-sim/internal/defs"
	"github.com/pefman/fleet-sim/internal/game"
	"github.com/pefman/fleet-sim/internal/models"
)

type AntiAirChance struct {
	ID   int     `json:"id"`
	Name string  `json:"name"`
	Rate float64 `json:"rate"`
}

type ShipAntiAir struct {
	Name            string          `json:"name"`
	AdjustedAntiAir float64         `json:"adjusted_anti_air"`
	Cutins          []AntiAirChance `json:"cutins"`
	Total           float64         `json:"total"`
}

// AntiAirReport gives each ship's anti-air cutin chances and the fleet's,
// where at most one cutin fires per raid.
type AntiAirReport struct {
	Ships []ShipAntiAir   `json:"ships"`
	Fleet []AntiAirChance `json:"fleet"`
	Total float64         `json:"total"`
}

func chances(d *defs.Definitions, dist cutin.Distribution[int]) []AntiAirChance {
	out := []AntiAirChance{}
	for _, o := range dist {
		if o.Tag == 0 || o.Rate == 0 {
			continue
		}
		def, _ := d.AntiAirCutin(o.Tag)
		out = append(out, AntiAirChance{ID: o.Tag, Name: def.Name, Rate: o.Rate})
	}
	return out
}

// AntiAir reports the anti-air cutins of every surviving ship of the side.
func AntiAir(d *defs.Definitions, side *models.Side) AntiAirReport {
	r := AntiAirReport{Ships: []ShipAntiAir{}, Fleet: []AntiAirChance{}}
	if side == nil {
		return r
	}
	var dists []cutin.Distribution[int]
	for _, m := range side.Members(models.ScopeBoth) {
		if m.Ship.IsSunk() {
			continue
		}
		dist, ok := cutin.AntiAirDistribution(d, m.Ship)
		if !ok {
			continue
		}
		dists = append(dists, dist)
		r.Ships = append(r.Ships, ShipAntiAir{
			Name:            m.Ship.Name,
			AdjustedAntiAir: game.AdjustedAntiAir(d, m.Ship),
			Cutins:          chances(d, dist),
			Total:           dist.Special(),
		})
	}
	fleet := cutin.FleetAntiAir(dists)
	r.Fleet = chances(d, fleet)
	r.Total = fleet.Special()
	return r
}
