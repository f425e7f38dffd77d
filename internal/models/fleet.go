package models

// Fleet is an ordered group of ships; index 0 is the flagship.
type Fleet struct {
	Ships []*Ship `json:"ships" yaml:"ships"`
}

func (f *Fleet) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Ships)
}

func (f *Fleet) Flagship() *Ship {
	if f.Len() == 0 {
		return nil
	}
	return f.Ships[0]
}

// Alive returns the ships that are not sunk, in fleet order.
func (f *Fleet) Alive() []*Ship {
	if f == nil {
		return nil
	}
	out := make([]*Ship, 0, len(f.Ships))
	for _, s := range f.Ships {
		if !s.IsSunk() {
			out = append(out, s)
		}
	}
	return out
}

// LoS sums the LoS of every surviving ship. Unknown when any of them is.
func (f *Fleet) LoS() (float64, bool) {
	total := 0.0
	for _, s := range f.Alive() {
		v, ok := s.LoS()
		if !ok {
			return 0, false
		}
		total += float64(v)
	}
	return total, true
}

func (f *Fleet) Clone() *Fleet {
	if f == nil {
		return nil
	}
	c := &Fleet{Ships: make([]*Ship, len(f.Ships))}
	for i, s := range f.Ships {
		c.Ships[i] = s.Clone()
	}
	return c
}

// Member locates a ship inside its side.
type Member struct {
	Ship     *Ship
	Role     FleetRole
	Index    int
	FleetLen int
}

func (m Member) IsFlagship() bool { return m.Index == 0 }

// Side is everything one party brings to a battle.
type Side struct {
	Player    bool      `json:"player" yaml:"player"`
	Shape     OrgShape  `json:"shape" yaml:"shape"`
	Formation Formation `json:"formation" yaml:"formation"`
	Main      *Fleet    `json:"main" yaml:"main"`
	Escort    *Fleet    `json:"escort,omitempty" yaml:"escort,omitempty"`
	Support   *Fleet    `json:"support,omitempty" yaml:"support,omitempty"`
}

func (s *Side) Fleet(role FleetRole) *Fleet {
	if role == RoleEscort {
		return s.Escort
	}
	return s.Main
}

// Members lists every ship in scope, main fleet first.
func (s *Side) Members(scope Scope) []Member {
	var out []Member
	for _, role := range []FleetRole{RoleMain, RoleEscort} {
		if !scope.Includes(role) {
			continue
		}
		f := s.Fleet(role)
		for i, ship := range f.shipsOrNil() {
			out = append(out, Member{Ship: ship, Role: role, Index: i, FleetLen: f.Len()})
		}
	}
	return out
}

// Locate finds the member record of ship.
func (s *Side) Locate(ship *Ship) (Member, bool) {
	for _, m := range s.Members(ScopeBoth) {
		if m.Ship == ship {
			return m, true
		}
	}
	return Member{}, false
}

// TorpedoFleet is the fleet that fires torpedoes: the escort of a combined
// side, otherwise the main fleet.
func (s *Side) TorpedoFleet() FleetRole {
	if s.Shape.IsCombined() && s.Escort.Len() > 0 {
		return RoleEscort
	}
	return RoleMain
}

// NightFleet fights the night battle; same rule as torpedoes.
func (s *Side) NightFleet() FleetRole { return s.TorpedoFleet() }

func (s *Side) Clone() *Side {
	c := *s
	c.Main = s.Main.Clone()
	c.Escort = s.Escort.Clone()
	c.Support = s.Support.Clone()
	return &c
}

func (f *Fleet) shipsOrNil() []*Ship {
	if f == nil {
		return nil
	}
	return f.Ships
}
