// Package spectral holds the spectral-Galerkin bases: quadrature, Vandermonde
// matrices, fast and reference transforms between point values and modal
// coefficients, and off-grid evaluation.
package spectral

import (
	"fmt"
	"math"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gospectral/kernels"
	"github.com/notargets/gospectral/quadrature"
)

type Family uint8

const (
	FourierComplex Family = iota
	FourierReal
	Chebyshev
	Legendre
)

var familyNames = map[Family]string{
	FourierComplex: "fourier-complex",
	FourierReal:    "fourier-real",
	Chebyshev:      "chebyshev",
	Legendre:       "legendre",
}

func (f Family) String() string {
	if name, ok := familyNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Family(%d)", uint8(f))
}

// IsFourier is true for both periodic families.
func (f Family) IsFourier() bool { return f == FourierComplex || f == FourierReal }

func ParseFamily(s string) (Family, error) {
	label := strings.ToLower(strings.TrimSpace(s))
	switch label {
	case "c2c", "fourier":
		return FourierComplex, nil
	case "r2c":
		return FourierReal, nil
	}
	for f, name := range familyNames {
		if name == label {
			return f, nil
		}
	}
	return 0, fmt.Errorf("family %q: %w", s, ErrUnsupportedFamily)
}

// Domain is [Low, High] for polynomial bases and the period [Low, High) for
// Fourier bases.
type Domain struct {
	Low, High float64
}

func (d Domain) Length() float64 { return d.High - d.Low }

type BCKind uint8

const (
	NoBC BCKind = iota
	Dirichlet
)

// BoundaryCondition prescribes u(domain.Low) = Low and u(domain.High) = High
// when Kind is Dirichlet.
type BoundaryCondition struct {
	Kind      BCKind
	Low, High float64
}

func (bc BoundaryCondition) String() string {
	if bc.Kind == Dirichlet {
		return fmt.Sprintf("dirichlet(%g, %g)", bc.Low, bc.High)
	}
	return "none"
}

// Basis is the transform contract shared by every family. Coordinates taken by
// Vandermonde and DerivativeVandermonde are reference coordinates ([-1,1] or
// [0,2pi)); Eval and Mesh work in the physical domain.
type Basis interface {
	Family() Family
	N() int
	// Dim is the number of modal coefficients a Function carries.
	Dim() int
	Domain() Domain
	Boundary() BoundaryCondition
	Quadrature() quadrature.Type
	Kernels() *kernels.Table
	// Parent is the orthogonal basis this one is built from, itself for
	// bases without boundary conditions.
	Parent() Basis

	PointsAndWeights() (points, weights []float64)
	Mesh() []float64
	// DomainFactor maps reference derivatives to physical ones.
	DomainFactor() float64

	Vandermonde(x []float64) *mat.CDense
	// QuadratureVandermonde is Vandermonde at the quadrature points, cached.
	// Callers must not modify it.
	QuadratureVandermonde() *mat.CDense
	// DerivativeVandermonde returns the d-th reference derivative of every
	// basis function, given V, the Vandermonde of Parent() at the points.
	// Like the gonum mat operations it panics with ErrShapeMismatch when V
	// does not have one column per parent mode or d < 0.
	DerivativeVandermonde(V *mat.CDense, d int) *mat.CDense
	// Lift is the d-th reference derivative of the boundary lifting function
	// at reference points x, nil when the basis has no lifting.
	Lift(x []float64, d int) []float64

	Forward(u *Array, out *Function) (*Function, error)
	Backward(uh *Function, out *Array) (*Array, error)
	ForwardReference(u *Array, out *Function) (*Function, error)
	BackwardReference(uh *Function, out *Array) (*Array, error)
	ScalarProduct(u *Array, out *Function, fast bool) (*Function, error)
	ApplyInverseMass(uh *Function) (*Function, error)
	Eval(x []float64, uh *Function) ([]complex128, error)
	// Differentiate returns the d-th physical derivative as a Function of
	// Parent().
	Differentiate(uh *Function, d int) (*Function, error)
}

type options struct {
	bc      BoundaryCondition
	domain  *Domain
	quad    quadrature.Type
	kernels *kernels.Table
}

type Option func(*options)

// WithBoundary prescribes Dirichlet values at the low and high domain ends.
func WithBoundary(low, high float64) Option {
	return func(o *options) {
		o.bc = BoundaryCondition{Kind: Dirichlet, Low: low, High: high}
	}
}

// WithBoundaryCondition sets bc as is, NoBC included.
func WithBoundaryCondition(bc BoundaryCondition) Option {
	return func(o *options) { o.bc = bc }
}

func WithDomain(low, high float64) Option {
	return func(o *options) {
		o.domain = &Domain{Low: low, High: high}
	}
}

func WithQuadrature(q quadrature.Type) Option {
	return func(o *options) { o.quad = q }
}

// WithKernels overrides the process wide kernel table for this basis.
func WithKernels(t *kernels.Table) Option {
	return func(o *options) { o.kernels = t }
}

// New constructs a basis of N quadrature points.
func New(N int, family Family, opts ...Option) (b Basis, err error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.kernels == nil {
		o.kernels = kernels.Default()
	}
	dom := Domain{Low: -1, High: 1}
	if family.IsFourier() {
		dom = Domain{Low: 0, High: 2 * math.Pi}
	}
	if o.domain != nil {
		dom = *o.domain
	}
	if !(dom.High > dom.Low) || math.IsInf(dom.Length(), 0) || math.IsNaN(dom.Length()) {
		return nil, fmt.Errorf("domain [%g, %g]: %w", dom.Low, dom.High, ErrInvalidBasis)
	}
	if N < 1 {
		return nil, fmt.Errorf("N = %d: %w", N, ErrInvalidBasis)
	}
	switch family {
	case FourierComplex, FourierReal:
		if o.bc.Kind != NoBC {
			return nil, fmt.Errorf("%s with %s boundary: %w", family, o.bc, ErrUnsupportedFamily)
		}
		if o.quad != "" && o.quad != quadrature.UN {
			return nil, fmt.Errorf("%s with quadrature %s: %w", family, o.quad, ErrInvalidBasis)
		}
		if family == FourierReal && N < 2 {
			return nil, fmt.Errorf("%s needs N >= 2, have %d: %w", family, N, ErrInvalidBasis)
		}
		b = newFourier(N, family == FourierReal, dom, o.kernels)
	case Chebyshev, Legendre:
		var parent orthogonal
		if parent, err = newOrthogonal(N, family, dom, o.quad, o.kernels); err != nil {
			return
		}
		if o.bc.Kind == NoBC {
			b = parent
			break
		}
		if N < 3 {
			return nil, fmt.Errorf("%s with %s needs N >= 3, have %d: %w", family, o.bc, N, ErrInvalidBasis)
		}
		b = newShenDirichlet(parent, o.bc)
	default:
		return nil, fmt.Errorf("%s: %w", family, ErrUnsupportedFamily)
	}
	log.WithFields(log.Fields{
		"family": family, "N": N, "dim": b.Dim(), "bc": b.Boundary(), "quad": b.Quadrature(),
	}).Debug("basis constructed")
	return
}

// base carries the state every family shares.
type base struct {
	family Family
	n      int
	domain Domain
	quad   quadrature.Type
	kt     *kernels.Table

	ruleOnce sync.Once
	rule     quadrature.Rule
	ruleFn   func(N int) quadrature.Rule

	vOnce sync.Once
	v     *mat.CDense
}

func (b *base) Family() Family              { return b.family }
func (b *base) N() int                      { return b.n }
func (b *base) Domain() Domain              { return b.domain }
func (b *base) Boundary() BoundaryCondition { return BoundaryCondition{} }
func (b *base) Quadrature() quadrature.Type { return b.quad }
func (b *base) Kernels() *kernels.Table     { return b.kt }
func (b *base) Lift([]float64, int) []float64 {
	return nil
}

func (b *base) quadratureRule() quadrature.Rule {
	b.ruleOnce.Do(func() {
		b.rule = b.ruleFn(b.n)
		log.WithFields(log.Fields{"family": b.family, "N": b.n, "quad": b.quad}).
			Debug("quadrature computed")
	})
	return b.rule
}

// PointsAndWeights returns copies of the reference quadrature rule.
func (b *base) PointsAndWeights() (points, weights []float64) {
	r := b.quadratureRule()
	points = append([]float64(nil), r.Points...)
	weights = append([]float64(nil), r.Weights...)
	return
}

func (b *base) cachedVandermonde(build func(x []float64) *mat.CDense) *mat.CDense {
	b.vOnce.Do(func() {
		b.v = build(b.quadratureRule().Points)
	})
	return b.v
}

func (b *base) realMesh(toPhysical func(X float64) float64) (x []float64) {
	r := b.quadratureRule()
	x = make([]float64, len(r.Points))
	for i, X := range r.Points {
		x[i] = toPhysical(X)
	}
	return
}

func checkDerivativeOrder(d int) error {
	if d < 0 {
		return fmt.Errorf("derivative order %d: %w", d, ErrShapeMismatch)
	}
	return nil
}
