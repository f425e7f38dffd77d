package cutin

import (
	"math"
	"math/rand"
	"slices"
	"testing"

	"github.com/pefman/fleet-sim/internal/defs"
	"github.com/pefman/fleet-sim/internal/models"
)

var testDefs = defs.MustDefault()

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func gear(attrs ...string) *models.Gear { return &models.Gear{Name: attrs[0], Attrs: attrs} }

func ship(typ string, gears ...*models.Gear) *models.Ship {
	slots := make([]int, len(gears))
	for i, g := range gears {
		if g.IsPlane() {
			slots[i] = 4
		}
	}
	return &models.Ship{Name: typ, Type: typ, Level: 99, MaxHP: 40, CurrentHP: 40,
		BaseLuck: models.IntPtr(16), BaseLoS: models.IntPtr(20), Gears: gears, Slots: slots}
}

func TestCumulativeAllocation(t *testing.T) {
	rates := map[string]float64{"a": 0.5, "b": 0.3}
	d := Cumulative([]string{"a", "b", "unknown"}, func(tag string) (float64, bool) {
		r, ok := rates[tag]
		return r, ok
	})
	if len(d) != 3 || d[0].Tag != "" {
		t.Fatalf("expected none first and unknown skipped, got %+v", d)
	}
	if d.Rate("a") != 0.5 || d.Rate("b") != 0.15 || !approx(d.Rate(""), 0.35) {
		t.Fatalf("unexpected allocation %+v", d)
	}
}

func TestSequentialAntiAirAllocation(t *testing.T) {
	d := AntiAirAllocate([]defs.AntiAirCutinDef{
		{ID: 1, Chance: 0.5, Sequential: true},
		{ID: 2, Chance: 0.3, Sequential: true},
	})
	if d.Rate(1) != 0.5 || d.Rate(2) != 0.15 {
		t.Fatalf("unexpected sequential rates %+v", d)
	}
	if !approx(d.Special(), 0.65) || !approx(d.Rate(0), 0.35) {
		t.Fatalf("expected 0.65 special and 0.35 none, got %+v", d)
	}
}

func TestNormalAntiAirAllocation(t *testing.T) {
	d := AntiAirAllocate([]defs.AntiAirCutinDef{
		{ID: 5, Chance: 0.55},
		{ID: 9, Chance: 0.4},
	})
	if !approx(d.Rate(9), 0.4) || !approx(d.Rate(5), 0.15) || !approx(d.Rate(0), 0.45) {
		t.Fatalf("unexpected normal rates %+v", d)
	}

	mixed := AntiAirAllocate([]defs.AntiAirCutinDef{
		{ID: 5, Chance: 0.55},
		{ID: 1, Chance: 0.5, Sequential: true},
		{ID: 9, Chance: 0.4},
	})
	if mixed[1].Tag != 1 {
		t.Fatalf("sequential kinds come first, got %+v", mixed)
	}
	if !approx(mixed.Rate(9), 0.2) || !approx(mixed.Rate(5), 0.075) || !approx(mixed.Rate(0), 0.225) {
		t.Fatalf("unexpected mixed rates %+v", mixed)
	}
}

func TestNormalAntiAirOrderDoesNotMatter(t *testing.T) {
	desc := AntiAirAllocate([]defs.AntiAirCutinDef{{ID: 4, Chance: 0.6}, {ID: 8, Chance: 0.5}, {ID: 9, Chance: 0.4}})
	asc := AntiAirAllocate([]defs.AntiAirCutinDef{{ID: 9, Chance: 0.4}, {ID: 8, Chance: 0.5}, {ID: 4, Chance: 0.6}})
	for _, id := range []int{0, 4, 8, 9} {
		if desc.Rate(id) < 0 || !approx(desc.Rate(id), asc.Rate(id)) {
			t.Fatalf("id %d: %v listed high first, %v listed low first", id, desc.Rate(id), asc.Rate(id))
		}
	}
	if !approx(desc.Special(), 0.6) || !approx(desc.Rate(4), 0.1) || !approx(desc.Rate(9), 0.4) {
		t.Fatalf("unexpected rates %+v", desc)
	}
}

func TestEqualNormalRatesContributeNothingTwice(t *testing.T) {
	d := AntiAirAllocate([]defs.AntiAirCutinDef{{ID: 7, Chance: 0.45}, {ID: 12, Chance: 0.45}})
	if !approx(d.Special(), 0.45) {
		t.Fatalf("equal rates should not stack, got %+v", d)
	}
	for _, o := range d {
		if o.Rate < 0 {
			t.Fatalf("negative rate %+v", d)
		}
	}
}

func TestFleetAntiAir(t *testing.T) {
	same := FleetAntiAir([]Distribution[int]{
		{{0, 0.5}, {5, 0.5}},
		{{0, 0.5}, {5, 0.5}},
	})
	if !approx(same.Rate(5), 0.75) || !approx(same.Rate(0), 0.25) {
		t.Fatalf("unexpected aggregate %+v", same)
	}
	mixed := FleetAntiAir([]Distribution[int]{
		{{0, 0.6}, {7, 0.4}},
		{{0, 0.5}, {5, 0.5}},
	})
	if mixed[1].Tag != 7 || !approx(mixed.Rate(7), 0.4) || !approx(mixed.Rate(5), 0.3) || !approx(mixed.Rate(0), 0.3) {
		t.Fatalf("unexpected aggregate %+v", mixed)
	}
	if empty := FleetAntiAir(nil); len(empty) != 1 || empty.Rate(0) != 1 {
		t.Fatalf("no ships should give none only, got %+v", empty)
	}
}

func TestAntiAirEligible(t *testing.T) {
	s := ship("DD", gear(models.AttrHighAngleWithAAFD), gear(models.AttrHighAngleWithAAFD), gear(models.AttrAirRadar))
	var ids []int
	for _, def := range AntiAirEligible(testDefs, s) {
		ids = append(ids, def.ID)
	}
	if !slices.Equal(ids, []int{5, 8}) {
		t.Fatalf("expected [5 8], got %v", ids)
	}
	d, ok := AntiAirDistribution(testDefs, s)
	if !ok || !approx(d.Rate(8), 0.5) || !approx(d.Rate(5), 0.05) {
		t.Fatalf("unexpected distribution %+v", d)
	}
	s.Class = "Akizuki"
	if ids := AntiAirEligible(testDefs, s); ids[0].ID != 1 {
		t.Fatalf("akizuki should unlock id 1 first, got %+v", ids)
	}
}

func gunship() *models.Ship {
	return ship("BB",
		gear(models.AttrMainGun, models.AttrLargeMainGun),
		gear(models.AttrMainGun, models.AttrLargeMainGun),
		gear(models.AttrAPShell),
		&models.Gear{Name: "Zuiun", Attrs: []string{models.AttrObservationSeaplane}, LoS: 5},
	)
}

func TestDayEligible(t *testing.T) {
	s := gunship()
	ctx := DayContext{AirState: models.AirSuperiority, Fleet: &models.Fleet{Ships: []*models.Ship{s}}}
	if got := DayEligible(s, ctx); !slices.Equal(got, []DayTag{MainMain, DoubleAttack}) {
		t.Fatalf("unexpected tags %v", got)
	}
	ctx.AirState = models.AirParity
	if got := DayEligible(s, ctx); got != nil {
		t.Fatalf("no cutins without air control, got %v", got)
	}
	ctx.AirState = models.AirSupremacy
	s.Slots[3] = 0
	if got := DayEligible(s, ctx); got != nil {
		t.Fatalf("no cutins without a seaplane, got %v", got)
	}
}

func TestDayTerm(t *testing.T) {
	s := gunship()
	fleet := &models.Fleet{Ships: []*models.Ship{s}}
	term, ok := DayTerm(s, DayContext{AirState: models.AirSuperiority, Fleet: fleet, IsFlagship: true})
	if !ok || term != 51 {
		t.Fatalf("expected 51, got %v %v", term, ok)
	}
	term, _ = DayTerm(s, DayContext{AirState: models.AirSupremacy, Fleet: fleet})
	if term != 52 {
		t.Fatalf("expected 52, got %v", term)
	}
	s.BaseLuck = nil
	if _, ok := DayTerm(s, DayContext{AirState: models.AirSupremacy, Fleet: fleet}); ok {
		t.Fatal("unknown luck should make the term unknown")
	}
	if _, ok := DayDistribution(testDefs, s, DayContext{AirState: models.AirSupremacy, Fleet: fleet}); ok {
		t.Fatal("unknown term should make the distribution unknown")
	}
}

func TestDayDistribution(t *testing.T) {
	s := gunship()
	fleet := &models.Fleet{Ships: []*models.Ship{s}}
	d, ok := DayDistribution(testDefs, s, DayContext{AirState: models.AirSuperiority, Fleet: fleet, IsFlagship: true})
	if !ok {
		t.Fatal("expected distribution")
	}
	mm := 51.0 / 150
	da := (1 - mm) * 51.0 / 130
	if !approx(d.Rate(MainMain), mm) || !approx(d.Rate(DoubleAttack), da) || !approx(d.Rate(DayNone), 1-mm-da) {
		t.Fatalf("unexpected distribution %+v", d)
	}
	plain := ship("DD")
	if d, ok := DayDistribution(testDefs, plain, DayContext{AirState: models.AirSupremacy, Fleet: fleet}); !ok || len(d) != 1 {
		t.Fatalf("ship without cutins should get none only, got %+v", d)
	}
}

func TestNightTerm(t *testing.T) {
	s := ship("DD")
	s.BaseLuck = models.IntPtr(10)
	term, ok := NightTerm(s, NightContext{IsFlagship: true, Searchlight: true, EnemyStarShell: true})
	if !ok || term != 44 {
		t.Fatalf("expected 44, got %v", term)
	}
	s.BaseLuck = models.IntPtr(60)
	s.Level = 100
	if term, _ := NightTerm(s, NightContext{}); term != 76 {
		t.Fatalf("expected 76, got %v", term)
	}
	s.CurrentHP = 15
	if term, _ := NightTerm(s, NightContext{}); term != 94 {
		t.Fatalf("chuuha should add 18, got %v", term)
	}
}

func TestNightEligible(t *testing.T) {
	dd := ship("DD", gear(models.AttrMainGun), gear(models.AttrTorpedo), gear(models.AttrSurfaceRadar))
	if got := NightEligible(dd); !slices.Equal(got, []NightTag{DestroyerMainTorpRadar, MainTorp}) {
		t.Fatalf("unexpected destroyer tags %v", got)
	}
	ss := ship("SS",
		gear(models.AttrTorpedo, models.AttrLateModelTorpedo),
		gear(models.AttrTorpedo, models.AttrLateModelTorpedo))
	if got := NightEligible(ss); !slices.Equal(got, []NightTag{LateModelTorpTorp, TorpTorp}) {
		t.Fatalf("unexpected submarine tags %v", got)
	}
	ca := ship("CA", gear(models.AttrMainGun), gear(models.AttrMainGun))
	d, ok := NightDistribution(testDefs, ca, NightContext{})
	if !ok || !approx(d.Rate(NightDoubleAttack), 0.99) {
		t.Fatalf("double attack should use its fixed rate, got %+v", d)
	}
	ca.CurrentHP = 5
	if got := NightEligible(ca); got != nil {
		t.Fatalf("heavily damaged ships cannot cutin, got %v", got)
	}
}

func nagatoFleet() *models.Fleet {
	f := &models.Fleet{}
	for i := 0; i < 6; i++ {
		f.Ships = append(f.Ships, ship("DD"))
	}
	f.Ships[0].Name, f.Ships[0].Type = "Nagato", "BB"
	f.Ships[1].Type = "BB"
	return f
}

func TestFleetCutin(t *testing.T) {
	f := nagatoFleet()
	if got := FleetEligible(testDefs, f, models.Echelon); !slices.Equal(got, []FleetTag{NagatoCutin}) {
		t.Fatalf("unexpected fleet tags %v", got)
	}
	d := FleetDistribution(testDefs, f, models.Echelon)
	if !approx(d.Rate(NagatoCutin), 0.6) || !approx(d.Rate(FleetNone), 0.4) {
		t.Fatalf("unexpected fleet distribution %+v", d)
	}
	if got := FleetEligible(testDefs, f, models.LineAhead); got != nil {
		t.Fatalf("wrong formation should not trigger, got %v", got)
	}
	f.Ships[0].CurrentHP = 10
	if got := FleetEligible(testDefs, f, models.Echelon); got != nil {
		t.Fatalf("damaged flagship should not trigger, got %v", got)
	}
}

func TestRoll(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	always := Distribution[string]{{"", 0}, {"a", 1}}
	never := None[string]()
	for i := 0; i < 100; i++ {
		if always.Roll(r) != "a" || never.Roll(r) != "" {
			t.Fatal("degenerate distributions should be deterministic")
		}
	}
	d := Distribution[string]{{"", 0.5}, {"a", 0.3}, {"b", 0.2}}
	counts := map[string]int{}
	const n = 20000
	for i := 0; i < n; i++ {
		counts[d.Roll(r)]++
	}
	for _, o := range d {
		got := float64(counts[o.Tag]) / n
		if math.Abs(got-o.Rate) > 0.02 {
			t.Fatalf("tag %q: observed %v, want %v", o.Tag, got, o.Rate)
		}
	}
}
