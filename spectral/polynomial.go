package spectral

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gospectral/kernels"
	"github.com/notargets/gospectral/quadrature"
	"github.com/notargets/gospectral/utils"
)

// orthogonal is a polynomial basis with a diagonal discrete mass matrix. The
// Dirichlet bases are composed from one.
type orthogonal interface {
	Basis
	norms() []float64
	fastScalarProduct(u, out []complex128)
	fastBackward(c, out []complex128)
}

// polynomial implements the parts of the contract shared by Chebyshev and
// Legendre. Family specific pieces are the function fields.
type polynomial struct {
	base
	self orthogonal

	series     func(x float64, P []float64)
	diffMatrix func(N int) utils.Matrix
	fastSP     func(u, out []complex128)
	fastBW     func(c, out []complex128)

	diffOnce sync.Once
	diff     utils.Matrix

	normsOnce sync.Once
	gamma     []float64
}

func newOrthogonal(N int, family Family, dom Domain, q quadrature.Type, kt *kernels.Table) (orthogonal, error) {
	switch family {
	case Chebyshev:
		if q != "" && q != quadrature.GL {
			return nil, fmt.Errorf("%s with quadrature %s: %w", family, q, ErrInvalidBasis)
		}
		if N < 2 {
			return nil, fmt.Errorf("%s needs N >= 2, have %d: %w", family, N, ErrInvalidBasis)
		}
		return newChebyshev(N, dom, kt), nil
	case Legendre:
		if q == "" {
			q = quadrature.LG
		}
		if q != quadrature.LG && q != quadrature.GL {
			return nil, fmt.Errorf("%s with quadrature %s: %w", family, q, ErrInvalidBasis)
		}
		if q == quadrature.GL && N < 2 {
			return nil, fmt.Errorf("%s %s needs N >= 2, have %d: %w", family, q, N, ErrInvalidBasis)
		}
		return newLegendre(N, q, dom, kt), nil
	}
	return nil, fmt.Errorf("%s: %w", family, ErrUnsupportedFamily)
}

func (p *polynomial) Dim() int { return p.n }

func (p *polynomial) Parent() Basis { return p.self }

func (p *polynomial) DomainFactor() float64 { return 2 / p.domain.Length() }

func (p *polynomial) Mesh() []float64 {
	L := p.domain.Length()
	return p.realMesh(func(X float64) float64 { return p.domain.Low + (X+1)*L/2 })
}

func (p *polynomial) toReference(x []float64) (X []float64) {
	X = make([]float64, len(x))
	fac := p.DomainFactor()
	for i, xi := range x {
		X[i] = (xi-p.domain.Low)*fac - 1
	}
	return
}

func (p *polynomial) Vandermonde(x []float64) (V *mat.CDense) {
	V = mat.NewCDense(len(x), p.n, nil)
	var (
		raw = V.RawCMatrix()
		P   = make([]float64, p.n)
	)
	for j, xj := range x {
		p.series(xj, P)
		for k, v := range P {
			raw.Data[j*raw.Stride+k] = complex(v, 0)
		}
	}
	return
}

func (p *polynomial) QuadratureVandermonde() *mat.CDense {
	return p.cachedVandermonde(p.Vandermonde)
}

// differentiation returns the coefficient space derivative matrix, c' = D c.
func (p *polynomial) differentiation() utils.Matrix {
	p.diffOnce.Do(func() {
		p.diff = p.diffMatrix(p.n)
		p.diff.SetReadOnly("differentiation")
	})
	return p.diff
}

// DerivativeVandermonde returns V D^d.
func (p *polynomial) DerivativeVandermonde(V *mat.CDense, d int) *mat.CDense {
	if _, nc := V.Dims(); nc != p.n || d < 0 {
		panic(ErrShapeMismatch)
	}
	return mulReal(V, p.differentiation().Power(d))
}

// mulReal returns V A for a complex V and real A.
func mulReal(V *mat.CDense, A utils.Matrix) (R *mat.CDense) {
	var (
		nr, nk = V.Dims()
		ak, nc = A.Dims()
	)
	if nk != ak {
		panic(fmt.Errorf("mulReal dimension mismatch: %d x %d times %d x %d: %w", nr, nk, ak, nc, ErrShapeMismatch))
	}
	R = mat.NewCDense(nr, nc, nil)
	var (
		src = V.RawCMatrix()
		dst = R.RawCMatrix()
	)
	for i := 0; i < nr; i++ {
		row := dst.Data[i*dst.Stride : i*dst.Stride+nc]
		for k := 0; k < nk; k++ {
			v := src.Data[i*src.Stride+k]
			if v == 0 {
				continue
			}
			aRow := A.DataP[k*nc : (k+1)*nc]
			for l, a := range aRow {
				if a != 0 {
					row[l] += v * complex(a, 0)
				}
			}
		}
	}
	return
}

// applyReal returns A c.
func applyReal(A utils.Matrix, c []complex128) (r []complex128) {
	nr, nc := A.Dims()
	r = make([]complex128, nr)
	for i := 0; i < nr; i++ {
		var sum complex128
		for k, a := range A.DataP[i*nc : (i+1)*nc] {
			if a != 0 {
				sum += complex(a, 0) * c[k]
			}
		}
		r[i] = sum
	}
	return
}

// norms are the discrete squared norms (P_k, P_k)_w, the diagonal of the
// mass matrix under the basis' own quadrature.
func (p *polynomial) norms() []float64 {
	p.normsOnce.Do(func() {
		var (
			V    = p.QuadratureVandermonde().RawCMatrix()
			_, w = p.PointsAndWeights()
		)
		p.gamma = make([]float64, p.n)
		for j, wj := range w {
			for k := 0; k < p.n; k++ {
				v := real(V.Data[j*V.Stride+k])
				p.gamma[k] += wj * v * v
			}
		}
	})
	return p.gamma
}

func (p *polynomial) fastScalarProduct(u, out []complex128) { p.fastSP(u, out) }

func (p *polynomial) fastBackward(c, out []complex128) { p.fastBW(c, out) }

func (p *polynomial) ScalarProduct(u *Array, out *Function, fast bool) (*Function, error) {
	if err := checkArray(p.self, u); err != nil {
		return nil, err
	}
	out, err := functionOut(p.self, out)
	if err != nil {
		return nil, err
	}
	if fast {
		p.fastSP(u.Data, out.Data)
		return out, nil
	}
	_, w := p.PointsAndWeights()
	p.kt.ScalarProduct(p.QuadratureVandermonde(), w, u.Data, out.Data)
	return out, nil
}

func (p *polynomial) ApplyInverseMass(uh *Function) (*Function, error) {
	if err := checkFunction(p.self, uh); err != nil {
		return nil, err
	}
	for k, g := range p.norms() {
		uh.Data[k] /= complex(g, 0)
	}
	return uh, nil
}

func (p *polynomial) Forward(u *Array, out *Function) (*Function, error) {
	out, err := p.ScalarProduct(u, out, true)
	if err != nil {
		return nil, err
	}
	return p.ApplyInverseMass(out)
}

func (p *polynomial) ForwardReference(u *Array, out *Function) (*Function, error) {
	out, err := p.ScalarProduct(u, out, false)
	if err != nil {
		return nil, err
	}
	return p.ApplyInverseMass(out)
}

func (p *polynomial) Backward(uh *Function, out *Array) (*Array, error) {
	if err := checkFunction(p.self, uh); err != nil {
		return nil, err
	}
	out, err := arrayOut(p.self, out)
	if err != nil {
		return nil, err
	}
	p.fastBW(uh.Data, out.Data)
	return out, nil
}

func (p *polynomial) BackwardReference(uh *Function, out *Array) (*Array, error) {
	if err := checkFunction(p.self, uh); err != nil {
		return nil, err
	}
	out, err := arrayOut(p.self, out)
	if err != nil {
		return nil, err
	}
	p.kt.Evaluate(p.QuadratureVandermonde(), uh.Data, out.Data)
	return out, nil
}

func (p *polynomial) Eval(x []float64, uh *Function) (vals []complex128, err error) {
	if err = checkFunction(p.self, uh); err != nil {
		return
	}
	vals = make([]complex128, len(x))
	if len(x) == 0 {
		return
	}
	p.kt.Evaluate(p.Vandermonde(p.toReference(x)), uh.Data, vals)
	return
}

func (p *polynomial) Differentiate(uh *Function, d int) (*Function, error) {
	if err := checkFunction(p.self, uh); err != nil {
		return nil, err
	}
	if err := checkDerivativeOrder(d); err != nil {
		return nil, err
	}
	var (
		D   = p.differentiation()
		c   = append([]complex128(nil), uh.Data...)
		fac = complex(p.DomainFactor(), 0)
	)
	for i := 0; i < d; i++ {
		c = applyReal(D, c)
		for k := range c {
			c[k] *= fac
		}
	}
	return NewFunction(p.self, c), nil
}
