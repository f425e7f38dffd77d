package defs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pefman/fleet-sim/internal/models"
)

func TestDefaultParses(t *testing.T) {
	d, err := Default()
	if err != nil {
		t.Fatalf("default definitions: %v", err)
	}
	if d.Cap(Shelling) != 220 || d.Cap(Night) != 360 {
		t.Fatalf("unexpected caps %v", d.Caps)
	}
	if d.CriticalRate(ASW) != 1.1 {
		t.Fatalf("unexpected asw critical constant %v", d.CriticalRate(ASW))
	}
	if len(d.AntiAirCutins) != 12 {
		t.Fatalf("expected 12 anti-air cutins, got %d", len(d.AntiAirCutins))
	}
}

func TestFormationLookup(t *testing.T) {
	d := MustDefault()
	if m := d.FormationMods(models.DoubleLine, models.HalfNone, Shelling); m.Power != 0.8 || m.Accuracy != 1.2 {
		t.Fatalf("unexpected double line mods %+v", m)
	}
	if m := d.FormationMods(models.Vanguard, models.HalfTop, Shelling); m.Power != 0.5 {
		t.Fatalf("unexpected vanguard top mods %+v", m)
	}
	if m := d.FormationMods(models.Vanguard, models.HalfBottom, ASW); m.Power != 0.6 || m.Evasion != 1.1 {
		t.Fatalf("unexpected vanguard bottom mods %+v", m)
	}
	// support falls back to the shelling row
	if d.FormationMods(models.Diamond, models.HalfNone, Support) != d.FormationMods(models.Diamond, models.HalfNone, Shelling) {
		t.Fatal("support should use shelling formation mods")
	}
	if d.ProtectionRate(models.Diamond) != 0.75 || d.ProtectionRate(models.LineAhead) != 0.45 {
		t.Fatal("unexpected protection rates")
	}
}

func TestEngagementAndIneffective(t *testing.T) {
	d := MustDefault()
	if d.Engagement(models.RedT) != 0.6 || d.Engagement(models.GreenT) != 1.2 {
		t.Fatal("unexpected engagement mods")
	}
	if !d.IsIneffective(models.DoubleLine, models.Echelon) {
		t.Fatal("double line vs echelon should be ineffective")
	}
	if d.IsIneffective(models.Echelon, models.DoubleLine) {
		t.Fatal("the relation is directed")
	}
	total := 0.0
	for _, w := range d.EngagementWeightList() {
		total += w
	}
	if total < 0.999 || total > 1.001 {
		t.Fatalf("engagement weights sum to %v", total)
	}
}

func TestDamageStateMods(t *testing.T) {
	d := MustDefault()
	if d.DamageStateMod(Torpedo, models.DamageTaiha) != 0 {
		t.Fatal("taiha ships should not torpedo")
	}
	if d.DamageStateMod(Shelling, models.DamageChuuha) != 0.7 {
		t.Fatal("unexpected chuuha shelling mod")
	}
	if d.DamageStateMod(Shelling, models.DamageShouha) != 1 {
		t.Fatal("light damage should not reduce power")
	}
}

func TestCutinRate(t *testing.T) {
	d := MustDefault()
	mm, ok := d.DayCutin("main_main")
	if !ok {
		t.Fatal("main_main missing")
	}
	if r, ok := mm.Rate(75); !ok || r != 0.5 {
		t.Fatalf("expected 0.5, got %v %v", r, ok)
	}
	if r, _ := mm.Rate(1000); r != 1 {
		t.Fatalf("rate should cap at 1, got %v", r)
	}
	if r, _ := mm.Rate(-3); r != 0 {
		t.Fatalf("rate should floor at 0, got %v", r)
	}
	da, _ := d.NightCutin("double_attack")
	if r, ok := da.Rate(0); !ok || r != 0.99 {
		t.Fatalf("night double attack should use its fixed rate, got %v", r)
	}
	if da.HitCount() != 2 {
		t.Fatal("night double attack hits twice")
	}
	if _, ok := d.DayCutin("nope"); ok {
		t.Fatal("unknown tag should be absent")
	}
	nt, ok := d.FleetCutin("nelson_touch")
	if !ok || !nt.AllowsFormation(models.DoubleLine) || nt.AllowsFormation(models.LineAhead) {
		t.Fatal("unexpected nelson touch formations")
	}
	aa, ok := d.AntiAirCutin(5)
	if r, _ := aa.Rate(); !ok || r != 0.55 || aa.Sequential {
		t.Fatalf("unexpected aaci 5 %+v", aa)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"missing caps":      "critical_rates: {shelling: 1}",
		"not yaml":          "caps: [",
		"unknown formation": "caps: {shelling: 1, torpedo: 1, asw: 1, night: 1, support: 1, airstrike: 1}\ncritical_rates: {shelling: 1, torpedo: 1, asw: 1, night: 1, support: 1, airstrike: 1}\nformations: {zigzag: {}}\n",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); !errors.Is(err, ErrInvalid) {
			t.Fatalf("%s: expected ErrInvalid, got %v", name, err)
		}
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defs.yaml")
	if err := os.WriteFile(path, defaultsYAML, 0o644); err != nil {
		t.Fatal(err)
	}
	d, err := LoadOrDefault(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if d.Carrier.AerialBonus != 15 {
		t.Fatalf("unexpected carrier bonus %v", d.Carrier.AerialBonus)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
