package spectral

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gospectral/kernels"
	"github.com/notargets/gospectral/quadrature"
	"github.com/notargets/gospectral/utils"
)

// ShenDirichlet is the composite basis phi_k = P_k - P_{k+2}, k < N-2, of a
// Chebyshev or Legendre parent. Every phi_k vanishes at both ends; the
// prescribed values are carried by the fixed lifting function
// a(1-X)/2 + b(1+X)/2, added by Backward and Eval and removed by Forward.
type ShenDirichlet struct {
	parent orthogonal
	bc     BoundaryCondition

	vOnce sync.Once
	v     *mat.CDense

	massOnce sync.Once
	massOp   utils.Stride2Tridiag
}

func newShenDirichlet(parent orthogonal, bc BoundaryCondition) *ShenDirichlet {
	return &ShenDirichlet{parent: parent, bc: bc}
}

func (s *ShenDirichlet) Family() Family                     { return s.parent.Family() }
func (s *ShenDirichlet) N() int                             { return s.parent.N() }
func (s *ShenDirichlet) Dim() int                           { return s.parent.N() - 2 }
func (s *ShenDirichlet) Domain() Domain                     { return s.parent.Domain() }
func (s *ShenDirichlet) Boundary() BoundaryCondition        { return s.bc }
func (s *ShenDirichlet) Quadrature() quadrature.Type        { return s.parent.Quadrature() }
func (s *ShenDirichlet) Kernels() *kernels.Table            { return s.parent.Kernels() }
func (s *ShenDirichlet) Parent() Basis                      { return s.parent }
func (s *ShenDirichlet) Mesh() []float64                    { return s.parent.Mesh() }
func (s *ShenDirichlet) DomainFactor() float64              { return s.parent.DomainFactor() }
func (s *ShenDirichlet) PointsAndWeights() (x, w []float64) { return s.parent.PointsAndWeights() }

// stencil maps parent columns to composite columns, V[:,k] - V[:,k+2].
func (s *ShenDirichlet) stencil(V *mat.CDense) (R *mat.CDense) {
	nr, nc := V.Dims()
	if nc != s.N() {
		panic(fmt.Errorf("stencil of %d columns, parent has %d: %w", nc, s.N(), ErrShapeMismatch))
	}
	R = mat.NewCDense(nr, s.Dim(), nil)
	var (
		src = V.RawCMatrix()
		dst = R.RawCMatrix()
	)
	for j := 0; j < nr; j++ {
		for k := 0; k < s.Dim(); k++ {
			dst.Data[j*dst.Stride+k] = src.Data[j*src.Stride+k] - src.Data[j*src.Stride+k+2]
		}
	}
	return
}

func (s *ShenDirichlet) Vandermonde(x []float64) *mat.CDense {
	return s.stencil(s.parent.Vandermonde(x))
}

func (s *ShenDirichlet) QuadratureVandermonde() *mat.CDense {
	s.vOnce.Do(func() {
		s.v = s.stencil(s.parent.QuadratureVandermonde())
	})
	return s.v
}

// DerivativeVandermonde takes the parent Vandermonde, as for every basis.
func (s *ShenDirichlet) DerivativeVandermonde(V *mat.CDense, d int) *mat.CDense {
	return s.stencil(s.parent.DerivativeVandermonde(V, d))
}

func (s *ShenDirichlet) Lift(x []float64, d int) (l []float64) {
	var (
		a, b = s.bc.Low, s.bc.High
	)
	l = make([]float64, len(x))
	for i, X := range x {
		switch d {
		case 0:
			l[i] = a*(1-X)/2 + b*(1+X)/2
		case 1:
			l[i] = (b - a) / 2
		}
	}
	return
}

func (s *ShenDirichlet) liftedArray(u *Array) []complex128 {
	var (
		x, _ = s.PointsAndWeights()
		l    = s.Lift(x, 0)
		v    = make([]complex128, len(u.Data))
	)
	for j := range v {
		v[j] = u.Data[j] - complex(l[j], 0)
	}
	return v
}

// ScalarProduct computes (u, phi_k)_w, without removing the lifting.
func (s *ShenDirichlet) ScalarProduct(u *Array, out *Function, fast bool) (*Function, error) {
	if err := checkArray(s, u); err != nil {
		return nil, err
	}
	out, err := functionOut(s, out)
	if err != nil {
		return nil, err
	}
	s.scalarProduct(u.Data, out.Data, fast)
	return out, nil
}

func (s *ShenDirichlet) scalarProduct(u, out []complex128, fast bool) {
	if !fast {
		_, w := s.PointsAndWeights()
		s.Kernels().ScalarProduct(s.QuadratureVandermonde(), w, u, out)
		return
	}
	tmp := make([]complex128, s.N())
	s.parent.fastScalarProduct(u, tmp)
	for k := range out {
		out[k] = tmp[k] - tmp[k+2]
	}
}

// mass is the pentadiagonal (phi_l, phi_k)_w with offsets -2, 0, 2, built
// from the discrete parent norms.
func (s *ShenDirichlet) mass() utils.Stride2Tridiag {
	s.massOnce.Do(func() {
		var (
			g                  = s.parent.norms()
			n                  = s.Dim()
			lower, diag, upper = make([]float64, n), make([]float64, n), make([]float64, n)
		)
		for k := 0; k < n; k++ {
			diag[k] = g[k] + g[k+2]
			if k+2 < n {
				upper[k] = -g[k+2]
			}
			if k >= 2 {
				lower[k] = -g[k]
			}
		}
		s.massOp = utils.NewStride2Tridiag(lower, diag, upper)
	})
	return s.massOp
}

func (s *ShenDirichlet) ApplyInverseMass(uh *Function) (*Function, error) {
	if err := checkFunction(s, uh); err != nil {
		return nil, err
	}
	if err := s.mass().SolveTo(uh.Data); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrSingularOperator)
	}
	return uh, nil
}

func (s *ShenDirichlet) Forward(u *Array, out *Function) (*Function, error) {
	if err := checkArray(s, u); err != nil {
		return nil, err
	}
	out, err := functionOut(s, out)
	if err != nil {
		return nil, err
	}
	s.scalarProduct(s.liftedArray(u), out.Data, true)
	return s.ApplyInverseMass(out)
}

// ForwardReference assembles the dense mass matrix from the Vandermonde
// matrix and solves it directly.
func (s *ShenDirichlet) ForwardReference(u *Array, out *Function) (*Function, error) {
	if err := checkArray(s, u); err != nil {
		return nil, err
	}
	out, err := functionOut(s, out)
	if err != nil {
		return nil, err
	}
	var (
		n    = s.Dim()
		V    = s.QuadratureVandermonde()
		_, w = s.PointsAndWeights()
		M    = mat.NewCDense(n, n, nil)
		rhs  = mat.NewDense(n, 2, nil)
		A    = mat.NewDense(n, n, nil)
		x    mat.Dense
	)
	s.scalarProduct(s.liftedArray(u), out.Data, false)
	s.Kernels().Contract(V, V, w, M)
	for k := 0; k < n; k++ {
		for l := 0; l < n; l++ {
			A.Set(k, l, real(M.At(k, l)))
		}
		rhs.Set(k, 0, real(out.Data[k]))
		rhs.Set(k, 1, imag(out.Data[k]))
	}
	if err = x.Solve(A, rhs); err != nil {
		return nil, fmt.Errorf("dense mass solve: %v: %w", err, ErrSingularOperator)
	}
	for k := 0; k < n; k++ {
		out.Data[k] = complex(x.At(k, 0), x.At(k, 1))
	}
	return out, nil
}

// ExpandToParent returns the orthogonal coefficients of the full expansion,
// lifting included. The lifting is (a+b)/2 P_0 + (b-a)/2 P_1.
func (s *ShenDirichlet) ExpandToParent(uh *Function) (*Function, error) {
	if err := checkFunction(s, uh); err != nil {
		return nil, err
	}
	c := make([]complex128, s.N())
	for k, v := range uh.Data {
		c[k] += v
		c[k+2] -= v
	}
	c[0] += complex((s.bc.Low+s.bc.High)/2, 0)
	c[1] += complex((s.bc.High-s.bc.Low)/2, 0)
	return NewFunction(s.parent, c), nil
}

func (s *ShenDirichlet) Backward(uh *Function, out *Array) (*Array, error) {
	full, err := s.ExpandToParent(uh)
	if err != nil {
		return nil, err
	}
	if out, err = arrayOut(s, out); err != nil {
		return nil, err
	}
	s.parent.fastBackward(full.Data, out.Data)
	return out, nil
}

func (s *ShenDirichlet) BackwardReference(uh *Function, out *Array) (*Array, error) {
	if err := checkFunction(s, uh); err != nil {
		return nil, err
	}
	out, err := arrayOut(s, out)
	if err != nil {
		return nil, err
	}
	x, _ := s.PointsAndWeights()
	s.Kernels().Evaluate(s.QuadratureVandermonde(), uh.Data, out.Data)
	for j, l := range s.Lift(x, 0) {
		out.Data[j] += complex(l, 0)
	}
	return out, nil
}

// Eval evaluates the expansion, lifting included, at physical points x.
func (s *ShenDirichlet) Eval(x []float64, uh *Function) (vals []complex128, err error) {
	if err = checkFunction(s, uh); err != nil {
		return
	}
	vals = make([]complex128, len(x))
	if len(x) == 0 {
		return
	}
	X := s.toReference(x)
	s.Kernels().Evaluate(s.Vandermonde(X), uh.Data, vals)
	for i, l := range s.Lift(X, 0) {
		vals[i] += complex(l, 0)
	}
	return
}

func (s *ShenDirichlet) toReference(x []float64) (X []float64) {
	var (
		dom = s.Domain()
		fac = s.DomainFactor()
	)
	X = make([]float64, len(x))
	for i, xi := range x {
		X[i] = (xi-dom.Low)*fac - 1
	}
	return
}

// Differentiate returns the derivative of the full expansion in the parent.
func (s *ShenDirichlet) Differentiate(uh *Function, d int) (*Function, error) {
	full, err := s.ExpandToParent(uh)
	if err != nil {
		return nil, err
	}
	return s.parent.Differentiate(full, d)
}
