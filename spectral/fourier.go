package spectral

import (
	"math"
	"math/cmplx"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gospectral/kernels"
	"github.com/notargets/gospectral/quadrature"
)

// Fourier is the periodic basis e^{ikx} on N uniform points. The real variant
// stores only the N/2+1 non-negative wavenumbers of a Hermitian spectrum.
type Fourier struct {
	base
	real  bool
	k     []float64
	plans sync.Pool
}

func newFourier(N int, real bool, dom Domain, kt *kernels.Table) (f *Fourier) {
	family := FourierComplex
	if real {
		family = FourierReal
	}
	f = &Fourier{
		base: base{
			family: family,
			n:      N,
			domain: dom,
			quad:   quadrature.UN,
			kt:     kt,
			ruleFn: quadrature.FourierUniform,
		},
		real: real,
		k:    wavenumbers(N, real),
	}
	if real {
		f.plans.New = func() any { return fourier.NewFFT(N) }
	} else {
		f.plans.New = func() any { return fourier.NewCmplxFFT(N) }
	}
	return
}

// wavenumbers follows the usual fftfreq / rfftfreq ordering.
func wavenumbers(N int, real bool) (k []float64) {
	if real {
		k = make([]float64, N/2+1)
		for i := range k {
			k[i] = float64(i)
		}
		return
	}
	k = make([]float64, N)
	for i := range k {
		if i < (N+1)/2 {
			k[i] = float64(i)
		} else {
			k[i] = float64(i - N)
		}
	}
	return
}

func (f *Fourier) Dim() int { return len(f.k) }

func (f *Fourier) Parent() Basis { return f }

// Wavenumbers returns the integer wavenumber of each stored mode.
func (f *Fourier) Wavenumbers() []float64 { return append([]float64(nil), f.k...) }

func (f *Fourier) DomainFactor() float64 { return 2 * math.Pi / f.domain.Length() }

func (f *Fourier) Mesh() []float64 {
	L := f.domain.Length()
	return f.realMesh(func(X float64) float64 { return f.domain.Low + X*L/(2*math.Pi) })
}

func (f *Fourier) toReference(x []float64) (X []float64) {
	X = make([]float64, len(x))
	fac := f.DomainFactor()
	for i, xi := range x {
		X[i] = (xi - f.domain.Low) * fac
	}
	return
}

func (f *Fourier) Vandermonde(x []float64) (V *mat.CDense) {
	V = mat.NewCDense(len(x), len(f.k), nil)
	raw := V.RawCMatrix()
	for j, xj := range x {
		for l, k := range f.k {
			raw.Data[j*raw.Stride+l] = cmplx.Exp(complex(0, k*xj))
		}
	}
	return
}

func (f *Fourier) QuadratureVandermonde() *mat.CDense {
	return f.cachedVandermonde(f.Vandermonde)
}

func ikPow(k float64, d int) (s complex128) {
	s = 1
	for i := 0; i < d; i++ {
		s *= complex(0, k)
	}
	return
}

// DerivativeVandermonde scales column k by (ik)^d.
func (f *Fourier) DerivativeVandermonde(V *mat.CDense, d int) (dV *mat.CDense) {
	nr, nc := V.Dims()
	if nc != len(f.k) || d < 0 {
		panic(ErrShapeMismatch)
	}
	dV = mat.NewCDense(nr, nc, nil)
	var (
		src = V.RawCMatrix()
		dst = dV.RawCMatrix()
	)
	for l, k := range f.k {
		s := ikPow(k, d)
		for j := 0; j < nr; j++ {
			dst.Data[j*dst.Stride+l] = s * src.Data[j*src.Stride+l]
		}
	}
	return
}

func (f *Fourier) Forward(u *Array, out *Function) (*Function, error) {
	out, err := f.ScalarProduct(u, out, true)
	if err != nil {
		return nil, err
	}
	return f.ApplyInverseMass(out)
}

func (f *Fourier) ForwardReference(u *Array, out *Function) (*Function, error) {
	out, err := f.ScalarProduct(u, out, false)
	if err != nil {
		return nil, err
	}
	return f.ApplyInverseMass(out)
}

// ScalarProduct computes (u, e^{ikx})_w. The real variant uses the real part
// of u on both paths.
func (f *Fourier) ScalarProduct(u *Array, out *Function, fast bool) (*Function, error) {
	if err := checkArray(f, u); err != nil {
		return nil, err
	}
	out, err := functionOut(f, out)
	if err != nil {
		return nil, err
	}
	if !fast {
		_, w := f.PointsAndWeights()
		src := u.Data
		if f.real {
			src = realPart(u.Data)
		}
		f.kt.ScalarProduct(f.QuadratureVandermonde(), w, src, out.Data)
		return out, nil
	}
	scale := complex(2*math.Pi/float64(f.n), 0)
	if f.real {
		plan := f.plans.Get().(*fourier.FFT)
		defer f.plans.Put(plan)
		plan.Coefficients(out.Data, u.Real())
	} else {
		plan := f.plans.Get().(*fourier.CmplxFFT)
		defer f.plans.Put(plan)
		plan.Coefficients(out.Data, u.Data)
	}
	for i := range out.Data {
		out.Data[i] *= scale
	}
	return out, nil
}

// ApplyInverseMass scales by 1/(2pi), the mass of every mode.
func (f *Fourier) ApplyInverseMass(uh *Function) (*Function, error) {
	if err := checkFunction(f, uh); err != nil {
		return nil, err
	}
	for i := range uh.Data {
		uh.Data[i] *= complex(0.5/math.Pi, 0)
	}
	return uh, nil
}

func (f *Fourier) Backward(uh *Function, out *Array) (*Array, error) {
	if err := checkFunction(f, uh); err != nil {
		return nil, err
	}
	out, err := arrayOut(f, out)
	if err != nil {
		return nil, err
	}
	if f.real {
		plan := f.plans.Get().(*fourier.FFT)
		defer f.plans.Put(plan)
		seq := plan.Sequence(nil, uh.Data)
		for j, v := range seq {
			out.Data[j] = complex(v, 0)
		}
		return out, nil
	}
	plan := f.plans.Get().(*fourier.CmplxFFT)
	defer f.plans.Put(plan)
	plan.Sequence(out.Data, uh.Data)
	return out, nil
}

func (f *Fourier) BackwardReference(uh *Function, out *Array) (*Array, error) {
	if err := checkFunction(f, uh); err != nil {
		return nil, err
	}
	out, err := arrayOut(f, out)
	if err != nil {
		return nil, err
	}
	f.evaluate(f.QuadratureVandermonde(), uh.Data, out.Data)
	return out, nil
}

// evaluate computes out = V c and, for the real variant, adds the conjugate
// half of the spectrum that is not stored: conj(V[:,1:m] c[1:m]), where m
// excludes the Nyquist mode for even N.
func (f *Fourier) evaluate(V *mat.CDense, c, out []complex128) {
	f.kt.Evaluate(V, c, out)
	if !f.real {
		return
	}
	hi := len(f.k)
	if f.n%2 == 0 {
		hi--
	}
	inner := make([]complex128, len(c))
	copy(inner[1:hi], c[1:hi])
	conjPart := make([]complex128, len(out))
	f.kt.Evaluate(V, inner, conjPart)
	for j, v := range conjPart {
		out[j] += cmplx.Conj(v)
	}
}

// Eval evaluates the expansion at physical points x.
func (f *Fourier) Eval(x []float64, uh *Function) (vals []complex128, err error) {
	if err = checkFunction(f, uh); err != nil {
		return
	}
	vals = make([]complex128, len(x))
	if len(x) == 0 {
		return
	}
	f.evaluate(f.Vandermonde(f.toReference(x)), uh.Data, vals)
	return
}

func (f *Fourier) Differentiate(uh *Function, d int) (*Function, error) {
	if err := checkFunction(f, uh); err != nil {
		return nil, err
	}
	if err := checkDerivativeOrder(d); err != nil {
		return nil, err
	}
	out := uh.Copy()
	out.Basis = f
	fac := f.DomainFactor()
	for l, k := range f.k {
		out.Data[l] *= ikPow(k*fac, d)
	}
	return out, nil
}

func realPart(v []complex128) (r []complex128) {
	r = make([]complex128, len(v))
	for i, c := range v {
		r[i] = complex(real(c), 0)
	}
	return
}
