// Package scenario reads battle scenarios: two sides and the battle
// options, written by hand in YAML or JSON.
package scenario

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pefman/fleet-sim/internal/battle"
	"github.com/pefman/fleet-sim/internal/models"
)

var ErrInvalid = errors.New("invalid scenario")

// DefaultMorale is the morale of a ship whose scenario entry leaves it out.
const DefaultMorale = models.DefaultMorale

type Scenario struct {
	Name    string         `json:"name,omitempty" yaml:"name,omitempty"`
	Player  *models.Side   `json:"player" yaml:"player"`
	Enemy   *models.Side   `json:"enemy" yaml:"enemy"`
	Options battle.Options `json:"options" yaml:"options"`
}

// Parse decodes a YAML or JSON document (JSON when it starts with a brace),
// fills defaults and validates it.
func Parse(b []byte) (*Scenario, error) {
	var s Scenario
	var err error
	if trimmed := bytes.TrimSpace(b); len(trimmed) > 0 && trimmed[0] == '{' {
		err = json.Unmarshal(b, &s)
	} else {
		err = yaml.Unmarshal(b, &s)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	s.Normalize()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads a scenario file.
func Load(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	s, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Normalize fills what a hand-written scenario usually leaves out: current
// HP defaults to max HP and morale to DefaultMorale. The player flags are
// set from the side's position.
func (s *Scenario) Normalize() {
	for _, side := range []*models.Side{s.Player, s.Enemy} {
		if side == nil {
			continue
		}
		for _, m := range side.Members(models.ScopeBoth) {
			normalizeShip(m.Ship)
		}
		if side.Support != nil {
			for _, ship := range side.Support.Ships {
				normalizeShip(ship)
			}
		}
	}
	if s.Player != nil {
		s.Player.Player = true
	}
	if s.Enemy != nil {
		s.Enemy.Player = false
	}
}

func normalizeShip(ship *models.Ship) {
	if ship != nil {
		ship.FillDefaults()
	}
}

// Validate checks the sides against the battle's shape rules.
func (s *Scenario) Validate() error {
	if s.Player == nil || s.Enemy == nil {
		return fmt.Errorf("%w: both player and enemy are required", ErrInvalid)
	}
	if _, err := battle.DayTable(s.Player.Shape, s.Enemy.Shape); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	for _, side := range []*models.Side{s.Player, s.Enemy} {
		name := "enemy"
		if side.Player {
			name = "player"
		}
		if side.Main.Len() == 0 {
			return fmt.Errorf("%w: %s main fleet is empty", ErrInvalid, name)
		}
		if side.Shape.IsCombined() && side.Escort.Len() == 0 {
			return fmt.Errorf("%w: %s is %s but has no escort fleet", ErrInvalid, name, side.Shape)
		}
		if !side.Shape.IsCombined() && side.Escort.Len() > 0 {
			return fmt.Errorf("%w: %s is single but has an escort fleet", ErrInvalid, name)
		}
		for _, m := range side.Members(models.ScopeBoth) {
			if err := validateShip(name, m.Ship); err != nil {
				return err
			}
		}
		if side.Support != nil {
			for _, ship := range side.Support.Ships {
				if err := validateShip(name+" support", ship); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func validateShip(where string, ship *models.Ship) error {
	switch {
	case ship == nil:
		return fmt.Errorf("%w: %s has an empty ship slot", ErrInvalid, where)
	case ship.Name == "":
		return fmt.Errorf("%w: %s has a ship without a name", ErrInvalid, where)
	case ship.MaxHP <= 0:
		return fmt.Errorf("%w: %s %q needs max_hp", ErrInvalid, where, ship.Name)
	case ship.CurrentHP < 0 || ship.CurrentHP > ship.MaxHP:
		return fmt.Errorf("%w: %s %q has hp %d of %d", ErrInvalid, where, ship.Name, ship.CurrentHP, ship.MaxHP)
	case len(ship.Slots) > len(ship.Gears):
		return fmt.Errorf("%w: %s %q has more slots than gears", ErrInvalid, where, ship.Name)
	}
	return nil
}

// Sides returns fresh copies of both sides for one battle.
func (s *Scenario) Sides() (player, enemy *models.Side) {
	return s.Player.Clone(), s.Enemy.Clone()
}
