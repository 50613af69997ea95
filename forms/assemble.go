package forms

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gospectral/spectral"
	"github.com/notargets/gospectral/utils"
)

// Inner assembles the bilinear form (trial, test)_w into an operator with one
// row per test mode and one column per trial mode. The arguments may come in
// either order. Derivatives are taken literally, no integration by parts:
// Inner(v, Div(Grad(u))) is (u”, v) and Inner(Grad(v), Grad(u)) is (u', v').
func Inner(a, b Expr) (op *Operator, err error) {
	if err = a.validate(); err != nil {
		return
	}
	if err = b.validate(); err != nil {
		return
	}
	test, trial := a, b
	if !test.IsTest() {
		test, trial = b, a
	}
	if !test.IsTest() || trial.IsTest() {
		return nil, fmt.Errorf("inner(%s, %s) needs one test and one trial function: %w", a, b, ErrInvalidForm)
	}
	if err = spectral.SameGrid(test.basis, trial.basis); err != nil {
		return
	}
	var (
		bv, bu  = test.basis, trial.basis
		kt      = bv.Kernels()
		x, w    = bv.PointsAndWeights()
		A       = scaledDerivative(bv, test.order)
		B       = scaledDerivative(bu, trial.order)
		nr, nc  = bv.Dim(), bu.Dim()
		M       = mat.NewCDense(nr, nc, nil)
		scale   = test.scale * trial.scale
		liftCol []complex128
	)
	kt.Contract(A, B, w, M)

	if l := bu.Lift(x, trial.order); l != nil {
		fac := math.Pow(bu.DomainFactor(), float64(trial.order))
		lc := make([]complex128, len(l))
		for j, v := range l {
			lc[j] = complex(v*fac, 0)
		}
		liftCol = make([]complex128, nr)
		kt.ScalarProduct(A, w, lc, liftCol)
		for i := range liftCol {
			liftCol[i] *= scale
		}
	}

	raw := M.RawCMatrix()
	var maxAbs float64
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			v := raw.Data[i*raw.Stride+j] * scale
			raw.Data[i*raw.Stride+j] = v
			maxAbs = math.Max(maxAbs, math.Max(math.Abs(real(v)), math.Abs(imag(v))))
		}
	}
	op = newOperator(bv, bu, M, maxAbs*utils.DROPTOL, liftCol)
	log.WithFields(log.Fields{
		"form": fmt.Sprintf("(%s, %s)", trial, test), "family": bu.Family(),
		"dims": fmt.Sprintf("%dx%d", nr, nc), "nnz": op.NNZ(),
	}).Debug("operator assembled")
	return
}

// InnerArray assembles the linear form (u, test)_w for values u at the
// quadrature points.
func InnerArray(test Expr, u *spectral.Array, out *spectral.Function) (*spectral.Function, error) {
	if err := test.validate(); err != nil {
		return nil, err
	}
	if !test.IsTest() {
		return nil, fmt.Errorf("linear form over %s needs a test function: %w", test, ErrInvalidForm)
	}
	bv := test.basis
	if u == nil || len(u.Data) != bv.N() {
		return nil, fmt.Errorf("array does not match %s with %d points: %w", bv.Family(), bv.N(), spectral.ErrShapeMismatch)
	}
	if u.Basis != nil {
		if err := spectral.SameGrid(bv, u.Basis); err != nil {
			return nil, err
		}
	}
	if test.order == 0 && test.scale == 1 {
		view := &spectral.Array{Basis: bv, Data: u.Data}
		return bv.ScalarProduct(view, out, true)
	}
	if out == nil {
		out = spectral.NewFunction(bv)
	} else if len(out.Data) != bv.Dim() {
		return nil, fmt.Errorf("output of length %d for %d modes: %w", len(out.Data), bv.Dim(), spectral.ErrShapeMismatch)
	}
	var (
		_, w = bv.PointsAndWeights()
		src  = u.Data
	)
	if bv.Family() == spectral.FourierReal {
		src = make([]complex128, len(u.Data))
		for j, v := range u.Data {
			src[j] = complex(real(v), 0)
		}
	}
	bv.Kernels().ScalarProduct(scaledDerivative(bv, test.order), w, src, out.Data)
	for k := range out.Data {
		out.Data[k] *= test.scale
	}
	return out, nil
}

// scaledDerivative is the d-th physical derivative Vandermonde at the
// quadrature points.
func scaledDerivative(b spectral.Basis, d int) *mat.CDense {
	var (
		V   = b.DerivativeVandermonde(b.Parent().QuadratureVandermonde(), d)
		fac = complex(math.Pow(b.DomainFactor(), float64(d)), 0)
	)
	if d == 0 {
		return V
	}
	raw := V.RawCMatrix()
	for i := 0; i < raw.Rows; i++ {
		row := raw.Data[i*raw.Stride : i*raw.Stride+raw.Cols]
		for k := range row {
			row[k] *= fac
		}
	}
	return V
}
