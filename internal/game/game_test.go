package game

import (
	"math"
	"testing"

	"github.com/pefman/fleet-sim/internal/defs"
	"github.com/pefman/fleet-sim/internal/models"
)

var testDefs = defs.MustDefault()

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func newShip(typ string, fp, torp int, gears ...*models.Gear) *models.Ship {
	slots := make([]int, len(gears))
	for i, g := range gears {
		if g.IsPlane() {
			slots[i] = 16
		}
	}
	return &models.Ship{
		Name: typ, Type: typ, Level: 99, MaxHP: 50, CurrentHP: 50, Morale: 49,
		BaseFirepower: fp, BaseTorpedo: torp, BaseArmor: 40,
		BaseEvasion: models.IntPtr(40), BaseLuck: models.IntPtr(16), BaseLoS: models.IntPtr(10),
		Gears: gears, Slots: slots,
	}
}

func combatant(s *models.Ship, player bool, formation models.Formation) Combatant {
	side := &models.Side{Player: player, Formation: formation, Main: &models.Fleet{Ships: []*models.Ship{s}}}
	return NewCombatant(side, side.Members(models.ScopeMain)[0])
}

func mainGun(fp int) *models.Gear {
	return &models.Gear{Name: "main", Attrs: []string{models.AttrMainGun}, Firepower: fp}
}

func ctx() Context { return Context{Defs: testDefs, Engagement: models.Parallel, AirState: models.AirParity} }

func TestShellingBasic(t *testing.T) {
	att := combatant(newShip("BB", 90, 0, mainGun(10)), true, models.LineAhead)
	tgt := combatant(newShip("DD", 10, 10), false, models.LineAhead)
	p, ok := Shelling(ctx(), att, tgt)
	if !ok {
		t.Fatal("expected an attack")
	}
	if p.AttackPower.Normal != 105 || p.AttackPower.Critical != 157 {
		t.Fatalf("unexpected power %+v", p.AttackPower)
	}
	if !approx(p.HitRate.Total, 0.76) || !approx(p.HitRate.Critical, 0.12) {
		t.Fatalf("unexpected hit rate %+v", p.HitRate)
	}
	if !p.Defense.Sinkable || p.Defense.OverkillProtection || p.Hits != 1 {
		t.Fatalf("enemy target should be sinkable, got %+v", p.Defense)
	}

	c := ctx()
	c.Engagement = models.RedT
	if p, _ := Shelling(c, att, tgt); p.AttackPower.Normal != 63 {
		t.Fatalf("red T should scale power to 63, got %v", p.AttackPower.Normal)
	}
}

func TestShellingSpecialAndDamage(t *testing.T) {
	att := combatant(newShip("BB", 90, 0, mainGun(10)), true, models.LineAhead)
	tgt := combatant(newShip("DD", 10, 10), true, models.LineAhead)
	c := ctx()
	c.Special = &Special{Tag: "main_main", Power: 1.5, Accuracy: 1.2, Hits: 2}
	p, _ := Shelling(c, att, tgt)
	if p.AttackPower.Normal != 157.5 || p.Hits != 2 {
		t.Fatalf("special should multiply after the cap without flooring, got %+v", p.AttackPower)
	}
	if p.Defense.Sinkable || !p.Defense.OverkillProtection {
		t.Fatal("player target should be protected")
	}
	att.Ship.CurrentHP = 20
	if p, _ := Shelling(ctx(), att, tgt); p.AttackPower.Normal != 73 {
		t.Fatalf("chuuha should scale power to 73, got %v", p.AttackPower.Normal)
	}
	att.Ship.BaseLuck = nil
	if _, ok := Shelling(ctx(), att, tgt); ok {
		t.Fatal("unknown luck should suppress the attack")
	}
}

func TestAPShell(t *testing.T) {
	att := combatant(newShip("BB", 90, 0, mainGun(10), &models.Gear{Name: "ap", Attrs: []string{models.AttrAPShell}}), true, models.LineAhead)
	heavy := combatant(newShip("CA", 10, 10), false, models.LineAhead)
	p, _ := Shelling(ctx(), att, heavy)
	if p.AttackPower.Normal != 113 {
		t.Fatalf("expected floor(105*1.08)=113, got %v", p.AttackPower.Normal)
	}
	light := combatant(newShip("DD", 10, 10), false, models.LineAhead)
	if p, _ := Shelling(ctx(), att, light); p.AttackPower.Normal != 105 {
		t.Fatalf("AP shell should not apply to light targets, got %v", p.AttackPower.Normal)
	}
}

func TestCarrierShelling(t *testing.T) {
	cv := newShip("CV", 50, 0,
		&models.Gear{Name: "db", Attrs: []string{models.AttrDiveBomber}, Bombing: 10},
		&models.Gear{Name: "tb", Attrs: []string{models.AttrTorpedoBomber}, Torpedo: 12},
	)
	att := combatant(cv, true, models.LineAhead)
	tgt := combatant(newShip("DD", 10, 10), false, models.LineAhead)
	// floor(1.5*(50+12+floor(1.3*10))) + 55
	p, _, ok := DayAttack(ctx(), att, tgt)
	if !ok || p.AttackPower.Normal != 167 {
		t.Fatalf("expected carrier power 167, got %+v %v", p.AttackPower, ok)
	}
	c := ctx()
	c.Engagement = models.HeadOn
	if p, _, _ := DayAttack(c, att, tgt); !approx(p.AttackPower.Precap, 167*0.8) || p.AttackPower.Normal != 133 {
		t.Fatalf("head-on should scale the whole carrier sum to 133, got %+v", p.AttackPower)
	}
	cv.CurrentHP = 20
	if _, _, ok := DayAttack(ctx(), att, tgt); ok {
		t.Fatal("damaged carrier cannot launch")
	}
}

func TestDayAttackStyles(t *testing.T) {
	dd := newShip("DD", 10, 10)
	dd.BaseASW = models.IntPtr(40)
	sub := combatant(newShip("SS", 0, 20), false, models.LineAhead)
	if _, style, ok := DayAttack(ctx(), combatant(dd, true, models.LineAhead), sub); !ok || style != StyleASW {
		t.Fatalf("destroyer should ASW a submarine, got %v %v", style, ok)
	}
	bb := combatant(newShip("BB", 90, 0), true, models.LineAhead)
	if _, _, ok := DayAttack(ctx(), bb, sub); ok {
		t.Fatal("battleship cannot attack a submarine")
	}
	if _, ok := Shelling(ctx(), bb, sub); ok {
		t.Fatal("shelling a submarine should be absent")
	}
}

func TestFormationAccuracy(t *testing.T) {
	tgtLine := combatant(newShip("DD", 10, 10), false, models.LineAhead)
	tgtEchelon := combatant(newShip("DD", 10, 10), false, models.Echelon)
	att := combatant(newShip("BB", 90, 0, mainGun(10)), true, models.DoubleLine)
	acc := func(tgt Combatant) float64 {
		base, _ := basicAccuracy(att.Ship)
		return accuracyTerm(ctx(), defs.Shelling, att, tgt, testDefs.Accuracy(defs.Shelling)+base)
	}
	if acc(tgtLine) != 139 {
		t.Fatalf("double line should boost accuracy to 139, got %v", acc(tgtLine))
	}
	if acc(tgtEchelon) != 115 {
		t.Fatalf("ineffective pair should drop the bonus, got %v", acc(tgtEchelon))
	}
}

func TestVanguardHalves(t *testing.T) {
	side := &models.Side{Formation: models.Vanguard, Main: &models.Fleet{}}
	for i := 0; i < 6; i++ {
		side.Main.Ships = append(side.Main.Ships, newShip("DD", 90, 0, mainGun(10)))
	}
	members := side.Members(models.ScopeMain)
	top, bottom := NewCombatant(side, members[0]), NewCombatant(side, members[5])
	tgt := combatant(newShip("DD", 10, 10), false, models.LineAhead)
	pt, _ := Shelling(ctx(), top, tgt)
	pb, _ := Shelling(ctx(), bottom, tgt)
	if pt.AttackPower.Normal != 52 || pb.AttackPower.Normal != 105 {
		t.Fatalf("unexpected vanguard powers %v / %v", pt.AttackPower.Normal, pb.AttackPower.Normal)
	}
}

func TestTorpedo(t *testing.T) {
	att := combatant(newShip("DD", 10, 80, &models.Gear{Name: "t", Attrs: []string{models.AttrTorpedo}, Torpedo: 10}), true, models.LineAhead)
	tgt := combatant(newShip("DD", 10, 10), false, models.LineAhead)
	p, ok := Torpedo(ctx(), att, tgt)
	if !ok || p.AttackPower.Normal != 95 {
		t.Fatalf("expected torpedo power 95, got %+v %v", p.AttackPower, ok)
	}
	inst := newShip("DD", 10, 10)
	inst.Attrs = []string{models.ShipAttrInstallation}
	if _, ok := Torpedo(ctx(), att, combatant(inst, false, models.LineAhead)); ok {
		t.Fatal("installations cannot be torpedoed")
	}
	att.Ship.CurrentHP = 10
	if _, ok := Torpedo(ctx(), att, tgt); ok {
		t.Fatal("taiha ships cannot torpedo")
	}
}

func TestASW(t *testing.T) {
	dd := newShip("DD", 10, 10,
		&models.Gear{Name: "sonar", Attrs: []string{models.AttrSonar}, ASW: 10},
		&models.Gear{Name: "projector", Attrs: []string{models.AttrDepthChargeProjector}, ASW: 10},
	)
	dd.BaseASW = models.IntPtr(64)
	sub := combatant(newShip("SS", 0, 20), false, models.LineAhead)
	p, ok := ASW(ctx(), combatant(dd, true, models.LineAhead), sub)
	if !ok || p.AttackPower.Normal != 40 {
		t.Fatalf("expected asw power 40, got %+v %v", p.AttackPower, ok)
	}
	if _, ok := ASW(ctx(), combatant(dd, true, models.LineAhead), combatant(newShip("DD", 1, 1), false, models.LineAhead)); ok {
		t.Fatal("asw only applies to submarines")
	}
}

func TestNight(t *testing.T) {
	att := combatant(newShip("CA", 60, 20), true, models.LineAhead)
	tgt := combatant(newShip("DD", 10, 10), false, models.LineAhead)
	c := ctx()
	c.Special = &Special{Power: 2}
	p, ok := Night(c, att, tgt)
	if !ok || p.AttackPower.Normal != 160 {
		t.Fatalf("expected night power 160, got %+v %v", p.AttackPower, ok)
	}
	inst := newShip("DD", 10, 10)
	inst.Attrs = []string{models.ShipAttrInstallation}
	if p, _ := Night(ctx(), att, combatant(inst, false, models.LineAhead)); p.AttackPower.Normal != 60 {
		t.Fatalf("torpedo should not count against installations, got %v", p.AttackPower.Normal)
	}
	cv := combatant(newShip("CV", 50, 0), true, models.LineAhead)
	if _, _, ok := NightAttack(ctx(), cv, tgt); ok {
		t.Fatal("carrier without night planes cannot attack at night")
	}
}

func TestAirstrike(t *testing.T) {
	cv := newShip("CV", 50, 0,
		&models.Gear{Name: "db", Attrs: []string{models.AttrDiveBomber}, Bombing: 10, Proficiency: 7},
		&models.Gear{Name: "tb", Attrs: []string{models.AttrTorpedoBomber}, Torpedo: 12},
	)
	cv.Slots = []int{16, 9}
	att := combatant(cv, true, models.LineAhead)
	tgt := combatant(newShip("DD", 10, 10), false, models.LineAhead)
	p, ok := Airstrike(ctx(), att, 0, tgt)
	if !ok || p.AttackPower.Normal != 65 || p.AttackPower.Critical != 107 {
		t.Fatalf("unexpected dive bomber strike %+v %v", p.AttackPower, ok)
	}
	c := ctx()
	c.TorpedoBomberMod = 1.5
	if p, _ := Airstrike(c, att, 1, tgt); p.AttackPower.Normal != 91.5 {
		t.Fatalf("unexpected torpedo bomber strike %v", p.AttackPower.Normal)
	}
	inst := newShip("DD", 10, 10)
	inst.Attrs = []string{models.ShipAttrInstallation}
	if _, ok := Airstrike(c, att, 1, combatant(inst, false, models.LineAhead)); ok {
		t.Fatal("torpedo bombers cannot strike installations")
	}
	if _, ok := Airstrike(c, att, 5, tgt); ok {
		t.Fatal("out of range slot should be absent")
	}
}

func TestAirState(t *testing.T) {
	f := &models.Fleet{Ships: []*models.Ship{newShip("CV", 0, 0, &models.Gear{Name: "f", Attrs: []string{models.AttrFighter}, AntiAir: 10})}}
	if fp := FighterPower(f); fp != 40 {
		t.Fatalf("expected fighter power 40, got %v", fp)
	}
	cases := []struct {
		own, enemy float64
		want       models.AirState
	}{
		{40, 0, models.AirSupremacy},
		{0, 40, models.AirIncapability},
		{30, 20, models.AirSuperiority},
		{20, 20, models.AirParity},
		{10, 20, models.AirDenial},
		{5, 20, models.AirIncapability},
		{0, 0, models.AirParity},
	}
	for _, c := range cases {
		if got := ResolveAirState(c.own, c.enemy); got != c.want {
			t.Errorf("ResolveAirState(%v, %v) = %v, want %v", c.own, c.enemy, got, c.want)
		}
	}
}
