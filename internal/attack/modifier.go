package attack

// Modifier is the affine map x -> A*x + B used by every power and accuracy
// formula.
type Modifier struct {
	A float64 `json:"a" yaml:"a"`
	B float64 `json:"b" yaml:"b"`
}

// Identity leaves its input unchanged.
var Identity = Modifier{A: 1}

func NewModifier(a, b float64) Modifier { return Modifier{A: a, B: b} }

func (m Modifier) Apply(x float64) float64 { return m.A*x + m.B }

// Compose returns outer after inner: (a1,b1)∘(a2,b2) = (a1·a2, a1·b2+b1).
// Not commutative.
func Compose(outer, inner Modifier) Modifier {
	return Modifier{A: outer.A * inner.A, B: outer.A*inner.B + outer.B}
}

// Mul multiplies the output of m by k.
func (m Modifier) Mul(k float64) Modifier { return Compose(Modifier{A: k}, m) }

// Add adds k to the output of m.
func (m Modifier) Add(k float64) Modifier { return Compose(Modifier{A: 1, B: k}, m) }
