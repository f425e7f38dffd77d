package defs

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/pefman/fleet-sim/internal/attack"
	"github.com/pefman/fleet-sim/internal/models"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Family is an attack category. Caps, critical constants and formation
// modifiers are all keyed by it.
type Family string

const (
	Shelling  Family = "shelling"
	Torpedo   Family = "torpedo"
	ASW       Family = "asw"
	Night     Family = "night"
	Support   Family = "support"
	Airstrike Family = "airstrike"
)

// Families lists every attack category.
var Families = []Family{Shelling, Torpedo, ASW, Night, Support, Airstrike}

// ErrInvalid wraps every validation failure of a definitions document.
var ErrInvalid = errors.New("invalid battle definitions")

// FormationMods scales one attack family for one formation.
type FormationMods struct {
	Power    float64 `json:"power" yaml:"power"`
	Accuracy float64 `json:"accuracy" yaml:"accuracy"`
	Evasion  float64 `json:"evasion" yaml:"evasion"`
}

var neutralFormation = FormationMods{Power: 1, Accuracy: 1, Evasion: 1}

// FormationTable is the per-family table of one formation or one half of it.
type FormationTable struct {
	Shelling FormationMods `json:"shelling" yaml:"shelling"`
	Torpedo  FormationMods `json:"torpedo" yaml:"torpedo"`
	ASW      FormationMods `json:"asw" yaml:"asw"`
	Night    FormationMods `json:"night" yaml:"night"`
}

func (t FormationTable) of(f Family) FormationMods {
	var m FormationMods
	switch f {
	case Torpedo:
		m = t.Torpedo
	case ASW:
		m = t.ASW
	case Night:
		m = t.Night
	default:
		// support and airstrike targets evade like shelling
		m = t.Shelling
	}
	if m == (FormationMods{}) {
		return neutralFormation
	}
	return m
}

// FormationDef is a formation with optional vanguard halves.
type FormationDef struct {
	FormationTable `yaml:",inline"`
	ProtectionRate float64         `json:"protection_rate" yaml:"protection_rate"`
	Top            *FormationTable `json:"vanguard_top,omitempty" yaml:"vanguard_top,omitempty"`
	Bottom         *FormationTable `json:"vanguard_bottom,omitempty" yaml:"vanguard_bottom,omitempty"`
}

// SpecialEnemyDef applies extra modifiers against targets carrying Attr.
type SpecialEnemyDef struct {
	Attr    string          `json:"attr" yaml:"attr"`
	Precap  attack.Modifier `json:"precap" yaml:"precap"`
	Postcap attack.Modifier `json:"postcap" yaml:"postcap"`
}

type CarrierDefs struct {
	AerialBonus  float64 `json:"aerial_bonus" yaml:"aerial_bonus"`
	BomberFactor float64 `json:"bomber_factor" yaml:"bomber_factor"`
}

// ASWDefs holds the ASW constants. OpeningMinASW is the ASW total a
// sonar-equipped ship needs to attack in the opening ASW phase.
type ASWDefs struct {
	TypeConstants          map[string]float64 `json:"type_constants" yaml:"type_constants"`
	SonarProjectorSynergy  float64            `json:"sonar_projector_synergy" yaml:"sonar_projector_synergy"`
	ProjectorChargeSynergy float64            `json:"projector_charge_synergy" yaml:"projector_charge_synergy"`
	OpeningMinASW          int                `json:"opening_min_asw" yaml:"opening_min_asw"`
}

// TypeConstant is the ASW constant of a ship type, falling back to "default".
func (a ASWDefs) TypeConstant(shipType string) float64 {
	if v, ok := a.TypeConstants[shipType]; ok {
		return v
	}
	return a.TypeConstants["default"]
}

type AirstrikeDefs struct {
	DiveBomberMod     float64   `json:"dive_bomber_mod" yaml:"dive_bomber_mod"`
	TorpedoBomberMods []float64 `json:"torpedo_bomber_mods" yaml:"torpedo_bomber_mods"`
}

// APShellDefs holds the AP shell multipliers by companion equipment.
type APShellDefs struct {
	MainOnly      float64 `json:"main_only" yaml:"main_only"`
	WithSecondary float64 `json:"with_secondary" yaml:"with_secondary"`
	WithRadar     float64 `json:"with_radar" yaml:"with_radar"`
	WithBoth      float64 `json:"with_both" yaml:"with_both"`
}

type AntiAirDefs struct {
	GearWeights      map[string]float64 `json:"gear_weights" yaml:"gear_weights"`
	ProportionalCoef float64            `json:"proportional_coef" yaml:"proportional_coef"`
	FixedCoef        float64            `json:"fixed_coef" yaml:"fixed_coef"`
	PlayerFixedBonus float64            `json:"player_fixed_bonus" yaml:"player_fixed_bonus"`
}

// Definitions is the immutable battle-definitions document. Build it with
// Parse, Load or Default and pass it down explicitly; nothing mutates it
// after validation.
type Definitions struct {
	Caps                  map[Family]float64            `json:"caps" yaml:"caps"`
	CriticalRates         map[Family]float64            `json:"critical_rates" yaml:"critical_rates"`
	BaseAccuracy          map[Family]float64            `json:"base_accuracy" yaml:"base_accuracy"`
	DamageStateMods       map[Family]map[string]float64 `json:"damage_state_mods" yaml:"damage_state_mods"`
	Engagements           map[string]float64            `json:"engagements" yaml:"engagements"`
	EngagementWeights     map[string]float64            `json:"engagement_weights" yaml:"engagement_weights"`
	IneffectiveFormations [][2]string                   `json:"ineffective_formations" yaml:"ineffective_formations"`
	Formations            map[string]FormationDef       `json:"formations" yaml:"formations"`
	CombinedShellingBonus map[string]map[string]float64 `json:"combined_shelling_bonus" yaml:"combined_shelling_bonus"`
	SpecialEnemies        []SpecialEnemyDef             `json:"special_enemies" yaml:"special_enemies"`
	Carrier               CarrierDefs                   `json:"carrier" yaml:"carrier"`
	ASW                   ASWDefs                       `json:"asw" yaml:"asw"`
	Airstrike             AirstrikeDefs                 `json:"airstrike" yaml:"airstrike"`
	APShell               APShellDefs                   `json:"ap_shell" yaml:"ap_shell"`
	DayCutins             []CutinDef                    `json:"day_cutins" yaml:"day_cutins"`
	NightCutins           []CutinDef                    `json:"night_cutins" yaml:"night_cutins"`
	FleetCutins           []FleetCutinDef               `json:"fleet_cutins" yaml:"fleet_cutins"`
	AntiAirCutins         []AntiAirCutinDef             `json:"anti_air_cutins" yaml:"anti_air_cutins"`
	AntiAir               AntiAirDefs                   `json:"anti_air" yaml:"anti_air"`
}

// Parse decodes and validates a YAML (or JSON) definitions document.
func Parse(b []byte) (*Definitions, error) {
	var d Definitions
	if err := yaml.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Load reads a definitions file from disk.
func Load(path string) (*Definitions, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definitions: %w", err)
	}
	return Parse(b)
}

// LoadOrDefault loads path, or returns the embedded defaults when path is
// empty.
func LoadOrDefault(path string) (*Definitions, error) {
	if path == "" {
		return Default()
	}
	return Load(path)
}

// Default returns the embedded definitions.
func Default() (*Definitions, error) { return Parse(defaultsYAML) }

// MustDefault is Default for tests and package-level initialisation.
func MustDefault() *Definitions {
	d, err := Default()
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Definitions) validate() error {
	for _, f := range Families {
		if _, ok := d.Caps[f]; !ok {
			return fmt.Errorf("%w: missing cap for %s", ErrInvalid, f)
		}
		if _, ok := d.CriticalRates[f]; !ok {
			return fmt.Errorf("%w: missing critical rate for %s", ErrInvalid, f)
		}
	}
	for name := range d.Formations {
		if _, err := models.ParseFormation(name); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	for _, pair := range d.IneffectiveFormations {
		for _, name := range pair {
			if _, err := models.ParseFormation(name); err != nil {
				return fmt.Errorf("%w: ineffective pair: %v", ErrInvalid, err)
			}
		}
	}
	for name := range d.Engagements {
		var e models.Engagement
		if err := e.UnmarshalText([]byte(name)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	seen := map[int]bool{}
	for _, c := range append(slices.Clone(d.DayCutins), d.NightCutins...) {
		if c.Tag == "" {
			return fmt.Errorf("%w: cutin without tag", ErrInvalid)
		}
		if c.FixedRate == nil && c.Denominator <= 0 {
			return fmt.Errorf("%w: cutin %s needs a denominator or a fixed rate", ErrInvalid, c.Tag)
		}
	}
	for _, c := range d.FleetCutins {
		if len(c.Power) != len(c.Attackers) {
			return fmt.Errorf("%w: fleet cutin %s: %d attackers but %d power mods",
				ErrInvalid, c.Tag, len(c.Attackers), len(c.Power))
		}
	}
	for _, c := range d.AntiAirCutins {
		if c.ID <= 0 || seen[c.ID] {
			return fmt.Errorf("%w: anti-air cutin id %d is not positive or repeats", ErrInvalid, c.ID)
		}
		seen[c.ID] = true
	}
	return nil
}

// ========================= Lookups =========================

// Cap is the soft cap of a family.
func (d *Definitions) Cap(f Family) float64 {
	if v, ok := d.Caps[f]; ok {
		return v
	}
	return math.Inf(1)
}

func (d *Definitions) CriticalRate(f Family) float64 { return d.CriticalRates[f] }

// Accuracy is the family's base accuracy constant.
func (d *Definitions) Accuracy(f Family) float64 { return d.BaseAccuracy[f] }

// DamageStateMod is the attacker's power multiplier for its damage state.
// Zero means the ship cannot attack in that family.
func (d *Definitions) DamageStateMod(f Family, s models.DamageState) float64 {
	if v, ok := d.DamageStateMods[f][s.String()]; ok {
		return v
	}
	return 1
}

// FormationMods looks up the modifiers for a formation, half and family.
// Unknown formations are neutral.
func (d *Definitions) FormationMods(f models.Formation, half models.FleetHalf, family Family) FormationMods {
	def, ok := d.Formations[f.String()]
	if !ok {
		return neutralFormation
	}
	switch {
	case half == models.HalfTop && def.Top != nil:
		return def.Top.of(family)
	case half == models.HalfBottom && def.Bottom != nil:
		return def.Bottom.of(family)
	}
	return def.of(family)
}

// Engagement is the power multiplier of an engagement form.
func (d *Definitions) Engagement(e models.Engagement) float64 {
	if v, ok := d.Engagements[e.String()]; ok {
		return v
	}
	return 1
}

// EngagementWeightList returns the draw weights in models.Engagements order.
func (d *Definitions) EngagementWeightList() []float64 {
	out := make([]float64, len(models.Engagements))
	for i, e := range models.Engagements {
		out[i] = d.EngagementWeights[e.String()]
	}
	return out
}

// IsIneffective reports whether the attacker's formation accuracy modifier
// is dropped against the target's formation.
func (d *Definitions) IsIneffective(attacker, target models.Formation) bool {
	for _, p := range d.IneffectiveFormations {
		if p[0] == attacker.String() && p[1] == target.String() {
			return true
		}
	}
	return false
}

// ProtectionRate is the chance that a hit aimed at the flagship is taken by
// an escort ship instead.
func (d *Definitions) ProtectionRate(f models.Formation) float64 {
	return d.Formations[f.String()].ProtectionRate
}

// CombinedBonus is the additive shelling bonus for an attacker of
// the given shape and role.
func (d *Definitions) CombinedBonus(shape models.OrgShape, role models.FleetRole) float64 {
	return d.CombinedShellingBonus[shape.String()][role.String()]
}

// SpecialEnemy returns the special-enemy modifiers that apply to target.
func (d *Definitions) SpecialEnemy(target *models.Ship) (SpecialEnemyDef, bool) {
	for _, s := range d.SpecialEnemies {
		if target.HasAttr(s.Attr) {
			return s, true
		}
	}
	return SpecialEnemyDef{}, false
}

func findTag(list []CutinDef, tag string) (CutinDef, bool) {
	for _, c := range list {
		if c.Tag == tag {
			return c, true
		}
	}
	return CutinDef{}, false
}

func (d *Definitions) DayCutin(tag string) (CutinDef, bool)   { return findTag(d.DayCutins, tag) }
func (d *Definitions) NightCutin(tag string) (CutinDef, bool) { return findTag(d.NightCutins, tag) }

func (d *Definitions) FleetCutin(tag string) (FleetCutinDef, bool) {
	for _, c := range d.FleetCutins {
		if c.Tag == tag {
			return c, true
		}
	}
	return FleetCutinDef{}, false
}

func (d *Definitions) AntiAirCutin(id int) (AntiAirCutinDef, bool) {
	for _, c := range d.AntiAirCutins {
		if c.ID == id {
			return c, true
		}
	}
	return AntiAirCutinDef{}, false
}
