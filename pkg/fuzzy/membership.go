package fuzzy

import (
	"fmt"
	"math"
	"strings"
)

// Kind identifies a membership function shape.
type Kind int

const (
	Triangular Kind = iota + 1
	Trapezoidal
	Gaussian
)

var kindNames = map[Kind]string{
	Triangular:  "triangular",
	Trapezoidal: "trapezoidal",
	Gaussian:    "gaussian",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind resolves a shape name as written in configuration files.
// Short aliases "tri", "trap" and "gauss" are accepted.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "triangular", "tri", "trimf":
		return Triangular, nil
	case "trapezoidal", "trap", "trapmf":
		return Trapezoidal, nil
	case "gaussian", "gauss", "gaussmf":
		return Gaussian, nil
	}
	return 0, fmt.Errorf("%w: unknown shape kind %q", ErrInvalidShape, s)
}

// Shape is a membership function. The zero value is not usable; build one
// with NewTriangular, NewTrapezoidal, NewGaussian or NewShape.
type Shape struct {
	kind Kind
	p    [4]float64
}

// NewTriangular returns a triangle rising from a to a peak at b and falling to c.
func NewTriangular(a, b, c float64) (Shape, error) {
	if err := finite(a, b, c); err != nil {
		return Shape{}, err
	}
	if !(a <= b && b <= c) {
		return Shape{}, fmt.Errorf("%w: triangular needs a <= b <= c, got (%g, %g, %g)", ErrInvalidShape, a, b, c)
	}
	return Shape{kind: Triangular, p: [4]float64{a, b, c}}, nil
}

// NewTrapezoidal returns a trapezoid rising on [a,b], flat at 1 on [b,c]
// and falling on [c,d].
func NewTrapezoidal(a, b, c, d float64) (Shape, error) {
	if err := finite(a, b, c, d); err != nil {
		return Shape{}, err
	}
	if !(a <= b && b <= c && c <= d) {
		return Shape{}, fmt.Errorf("%w: trapezoidal needs a <= b <= c <= d, got (%g, %g, %g, %g)", ErrInvalidShape, a, b, c, d)
	}
	return Shape{kind: Trapezoidal, p: [4]float64{a, b, c, d}}, nil
}

// NewGaussian returns exp(-(x-mean)^2 / (2 sigma^2)).
func NewGaussian(mean, sigma float64) (Shape, error) {
	if err := finite(mean, sigma); err != nil {
		return Shape{}, err
	}
	if sigma <= 0 {
		return Shape{}, fmt.Errorf("%w: gaussian sigma must be > 0, got %g", ErrInvalidShape, sigma)
	}
	return Shape{kind: Gaussian, p: [4]float64{mean, sigma}}, nil
}

// NewShape builds a shape from a kind and its parameter list, as loaded from
// configuration.
func NewShape(kind Kind, params ...float64) (Shape, error) {
	want := map[Kind]int{Triangular: 3, Trapezoidal: 4, Gaussian: 2}[kind]
	if want == 0 {
		return Shape{}, fmt.Errorf("%w: unknown shape kind %d", ErrInvalidShape, int(kind))
	}
	if len(params) != want {
		return Shape{}, fmt.Errorf("%w: %s takes %d parameters, got %d", ErrInvalidShape, kind, want, len(params))
	}
	switch kind {
	case Triangular:
		return NewTriangular(params[0], params[1], params[2])
	case Trapezoidal:
		return NewTrapezoidal(params[0], params[1], params[2], params[3])
	default:
		return NewGaussian(params[0], params[1])
	}
}

func finite(vals ...float64) error {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: parameter %g is not finite", ErrInvalidShape, v)
		}
	}
	return nil
}

// Kind returns the shape's variant.
func (s Shape) Kind() Kind { return s.kind }

// Params returns a copy of the shape's parameters in constructor order.
func (s Shape) Params() []float64 {
	switch s.kind {
	case Triangular:
		return []float64{s.p[0], s.p[1], s.p[2]}
	case Trapezoidal:
		return []float64{s.p[0], s.p[1], s.p[2], s.p[3]}
	case Gaussian:
		return []float64{s.p[0], s.p[1]}
	}
	return nil
}

// Evaluate returns the degree of membership of x, always within [0,1].
// Zero-width edges are instantaneous steps. NaN evaluates to 0.
func (s Shape) Evaluate(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	switch s.kind {
	case Triangular:
		return trapezoid(x, s.p[0], s.p[1], s.p[1], s.p[2])
	case Trapezoidal:
		return trapezoid(x, s.p[0], s.p[1], s.p[2], s.p[3])
	case Gaussian:
		d := x - s.p[0]
		return math.Exp(-(d * d) / (2 * s.p[1] * s.p[1]))
	}
	return 0
}

// trapezoid is shared by both piecewise-linear kinds; a triangle is a
// trapezoid with b == c. Each ratio is only reached when its denominator is
// strictly positive.
func trapezoid(x, a, b, c, d float64) float64 {
	switch {
	case x < a || x > d:
		return 0
	case x >= b && x <= c:
		return 1
	case x < b:
		return (x - a) / (b - a)
	default:
		return (d - x) / (d - c)
	}
}

// Support returns the interval outside which the shape is 0. A Gaussian
// never reaches 0; its support is reported as mean ± 4 sigma.
func (s Shape) Support() (lo, hi float64) {
	switch s.kind {
	case Triangular:
		return s.p[0], s.p[2]
	case Trapezoidal:
		return s.p[0], s.p[3]
	case Gaussian:
		return s.p[0] - 4*s.p[1], s.p[0] + 4*s.p[1]
	}
	return 0, 0
}

// Peak returns a point where the shape reaches 1: the apex of a triangle,
// the middle of a trapezoid's plateau, the mean of a Gaussian.
func (s Shape) Peak() float64 {
	switch s.kind {
	case Triangular:
		return s.p[1]
	case Trapezoidal:
		return (s.p[1] + s.p[2]) / 2
	default:
		return s.p[0]
	}
}

func (s Shape) String() string {
	params := s.Params()
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprintf("%g", p)
	}
	return fmt.Sprintf("%s(%s)", s.kind, strings.Join(parts, ", "))
}
