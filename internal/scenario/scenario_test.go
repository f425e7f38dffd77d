package scenario

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pefman/fleet-sim/internal/models"
)

const minimal = `
name: duel
options:
  night: true
  engagement: green_t
player:
  shape: single
  formation: double_line
  main:
    ships:
      - { name: Fubuki, type: DD, level: 50, max_hp: 30, firepower: 20, armor: 15, evasion: 50, luck: 17 }
enemy:
  shape: single
  formation: line_ahead
  main:
    ships:
      - { name: I-class, type: DD, max_hp: 20, hp: 12, morale: 30, firepower: 10, armor: 5, evasion: 30, luck: 5 }
`

func TestParseYAML(t *testing.T) {
	s, err := Parse([]byte(minimal))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.Name != "duel" || !s.Options.Night || s.Options.AirBattle {
		t.Fatalf("unexpected options %+v", s.Options)
	}
	if s.Options.Engagement == nil || *s.Options.Engagement != models.GreenT {
		t.Fatalf("engagement not decoded: %v", s.Options.Engagement)
	}
	if s.Player.Formation != models.DoubleLine || !s.Player.Player || s.Enemy.Player {
		t.Fatalf("unexpected sides %+v / %+v", s.Player, s.Enemy)
	}
	fubuki := s.Player.Main.Ships[0]
	if fubuki.CurrentHP != 30 || fubuki.Morale != DefaultMorale {
		t.Fatalf("defaults not applied: hp %d morale %d", fubuki.CurrentHP, fubuki.Morale)
	}
	if luck, ok := fubuki.Luck(); !ok || luck != 17 {
		t.Fatalf("luck %d %v", luck, ok)
	}
	enemy := s.Enemy.Main.Ships[0]
	if enemy.CurrentHP != 12 || enemy.Morale != 30 {
		t.Fatalf("explicit values overwritten: hp %d morale %d", enemy.CurrentHP, enemy.Morale)
	}
	if _, ok := enemy.ASW(); ok {
		t.Fatal("missing ASW should stay unknown")
	}
}

func TestParseJSON(t *testing.T) {
	doc := `{"player": {"shape": "single", "formation": "echelon", "main": {"ships": [{"name": "a", "type": "DD", "max_hp": 10}]}},
	         "enemy": {"shape": "combined", "formation": "cruising4",
	                   "main": {"ships": [{"name": "b", "type": "BB", "max_hp": 90}]},
	                   "escort": {"ships": [{"name": "c", "type": "DD", "max_hp": 20}]}}}`
	s, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.Enemy.Shape != models.Combined || s.Enemy.Escort.Len() != 1 || s.Player.Formation != models.Echelon {
		t.Fatalf("unexpected scenario %+v", s.Enemy)
	}
}

func TestParseInvalid(t *testing.T) {
	cases := map[string]string{
		"syntax":        "player: [",
		"missing enemy": "player: { shape: single, main: { ships: [ { name: a, max_hp: 10 } ] } }",
		"unknown shape": "player: { shape: huge }",
		"bad formation": "player: { formation: circle }",
		"enemy taskforce": `
player: { shape: single, main: { ships: [ { name: a, max_hp: 10 } ] } }
enemy: { shape: carrier_task_force, main: { ships: [ { name: b, max_hp: 10 } ] }, escort: { ships: [ { name: c, max_hp: 10 } ] } }`,
		"escort without combined": `
player: { shape: single, main: { ships: [ { name: a, max_hp: 10 } ] }, escort: { ships: [ { name: x, max_hp: 10 } ] } }
enemy: { shape: single, main: { ships: [ { name: b, max_hp: 10 } ] } }`,
		"no max hp": `
player: { shape: single, main: { ships: [ { name: a } ] } }
enemy: { shape: single, main: { ships: [ { name: b, max_hp: 10 } ] } }`,
		"hp above max": `
player: { shape: single, main: { ships: [ { name: a, max_hp: 10, hp: 11 } ] } }
enemy: { shape: single, main: { ships: [ { name: b, max_hp: 10 } ] } }`,
		"empty main": `
player: { shape: single, main: { ships: [] } }
enemy: { shape: single, main: { ships: [ { name: b, max_hp: 10 } ] } }`,
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); !errors.Is(err, ErrInvalid) {
			t.Fatalf("%s: expected ErrInvalid, got %v", name, err)
		}
	}
}

func TestLoadExample(t *testing.T) {
	s, err := Load(filepath.Join("..", "..", "scenarios", "example.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Player.Main.Len() != 4 || s.Enemy.Main.Len() != 4 {
		t.Fatalf("unexpected fleets %d / %d", s.Player.Main.Len(), s.Enemy.Main.Len())
	}
	if !s.Enemy.Main.Ships[3].IsSubmarine() {
		t.Fatal("expected the last enemy to be a submarine")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil || errors.Is(err, ErrInvalid) {
		t.Fatalf("expected a read error, got %v", err)
	}
}

func TestLoadReportsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("player: {}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestSidesAreIndependent(t *testing.T) {
	s, err := Parse([]byte(minimal))
	if err != nil {
		t.Fatal(err)
	}
	p, _ := s.Sides()
	p.Main.Ships[0].TakeDamage(10)
	if s.Player.Main.Ships[0].CurrentHP != 30 {
		t.Fatal("clone shares ship state with the scenario")
	}
}
