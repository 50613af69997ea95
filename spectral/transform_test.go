package spectral

import (
	"errors"
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gospectral/kernels"
	"github.com/notargets/gospectral/quadrature"
	"github.com/notargets/gospectral/utils"
)

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, N := range []int{4, 5, 8, 17, 32, 64} {
		for _, c := range allBases(t, N) {
			uh := randomFunction(rng, c.b)
			u, err := c.b.Backward(uh, nil)
			require.NoError(t, err)
			uh2, err := c.b.Forward(u, nil)
			require.NoError(t, err)
			assert.Truef(t, relErr(uh2.Data, uh.Data) < 1e-10,
				"%s N = %d: forward(backward(c)) error %g", c.name, N, relErr(uh2.Data, uh.Data))

			u2, err := c.b.Backward(uh2, nil)
			require.NoError(t, err)
			assert.Truef(t, relErr(u2.Data, u.Data) < 1e-10,
				"%s N = %d: backward(forward(u)) error %g", c.name, N, relErr(u2.Data, u.Data))
		}
	}
}

func TestRoundTripOfPointValues(t *testing.T) {
	// Bases without boundary conditions span every grid function
	rng := rand.New(rand.NewSource(2))
	for _, N := range []int{4, 7, 16} {
		for _, c := range allBases(t, N) {
			if c.b.Boundary().Kind == Dirichlet {
				continue
			}
			u := randomArray(rng, c.b)
			uh, err := u.Forward(nil)
			require.NoError(t, err)
			u2, err := uh.Backward(nil)
			require.NoError(t, err)
			assert.Truef(t, relErr(u2.Data, u.Data) < 1e-10, "%s N = %d", c.name, N)
		}
	}
}

func TestFastAgreesWithReference(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, N := range []int{4, 6, 11, 16, 33, 64} {
		for _, c := range allBases(t, N) {
			u := randomArray(rng, c.b)
			fast, err := c.b.Forward(u, nil)
			require.NoError(t, err)
			ref, err := c.b.ForwardReference(u, nil)
			require.NoError(t, err)
			assert.Truef(t, relErr(fast.Data, ref.Data) < 1e-10,
				"%s N = %d forward: %g", c.name, N, relErr(fast.Data, ref.Data))

			spFast, err := c.b.ScalarProduct(u, nil, true)
			require.NoError(t, err)
			spRef, err := c.b.ScalarProduct(u, nil, false)
			require.NoError(t, err)
			assert.Truef(t, relErr(spFast.Data, spRef.Data) < 1e-10,
				"%s N = %d scalar product: %g", c.name, N, relErr(spFast.Data, spRef.Data))

			uh := randomFunction(rng, c.b)
			bFast, err := c.b.Backward(uh, nil)
			require.NoError(t, err)
			bRef, err := c.b.BackwardReference(uh, nil)
			require.NoError(t, err)
			assert.Truef(t, relErr(bFast.Data, bRef.Data) < 1e-10,
				"%s N = %d backward: %g", c.name, N, relErr(bFast.Data, bRef.Data))
		}
	}
}

func TestReferenceIndependentOfKernelBackend(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for _, backend := range []string{"generic", "gonum", "parallel", "not-built"} {
		tab := kernels.Resolve(kernels.Config{Backend: backend, Threads: 3})
		for _, c := range allBases(t, 12, WithKernels(tab)) {
			def := mustNew(t, 12, c.b.Family(), WithQuadrature(c.b.Quadrature()),
				WithBoundaryCondition(c.b.Boundary()), WithDomain(c.b.Domain().Low, c.b.Domain().High))
			u := randomArray(rng, c.b)
			a, err := c.b.ForwardReference(u, nil)
			require.NoError(t, err)
			u.Basis = def
			b, err := def.ForwardReference(u, nil)
			require.NoError(t, err)
			assert.Truef(t, relErr(a.Data, b.Data) < 1e-12, "%s on %s", c.name, backend)
		}
	}
}

func TestApplyInverseMassInPlace(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for _, c := range allBases(t, 9) {
		uh := randomFunction(rng, c.b)
		data := uh.Data
		out, err := c.b.ApplyInverseMass(uh)
		require.NoError(t, err)
		assert.Same(t, uh, out, c.name)
		assert.Same(t, &data[0], &out.Data[0], c.name)

		u := randomArray(rng, c.b)
		target := NewFunction(c.b)
		got, err := c.b.Forward(u, target)
		require.NoError(t, err)
		assert.Same(t, target, got, c.name)
	}
}

func TestFourierMass(t *testing.T) {
	b := mustNew(t, 8, FourierComplex)
	uh := NewFunction(b)
	for k := range uh.Data {
		uh.Data[k] = 2 * math.Pi
	}
	_, err := b.ApplyInverseMass(uh)
	require.NoError(t, err)
	for _, v := range uh.Data {
		assert.InDelta(t, 1, real(v), 1e-15)
	}
}

func TestR2CHermitianReconstruction(t *testing.T) {
	f := func(x float64) float64 { return 0.5 + math.Sin(x) + math.Cos(3*x) - 0.25*math.Sin(2*x) }
	for _, N := range []int{8, 9} {
		var (
			b = mustNew(t, N, FourierReal)
			u = NewArrayFunc(b, func(x []float64) (v []float64) {
				for _, xi := range x {
					v = append(v, f(xi))
				}
				return
			})
		)
		uh, err := b.Forward(u, nil)
		require.NoError(t, err)
		assert.InDelta(t, 0.5, real(uh.Data[0]), 1e-14)
		assert.InDelta(t, 0.5, real(uh.Data[3]), 1e-14)
		assert.InDelta(t, -0.5, imag(uh.Data[1]), 1e-14)

		pts := []float64{0.1, 1.3, 2.9, 5.5}
		vals, err := b.Eval(pts, uh)
		require.NoError(t, err)
		for i, x := range pts {
			assert.InDeltaf(t, f(x), real(vals[i]), 1e-12, "N = %d, x = %g", N, x)
			assert.InDeltaf(t, 0, imag(vals[i]), 1e-12, "N = %d, x = %g", N, x)
		}

		// Dropping the conjugate half loses the negative wavenumbers
		direct := make([]complex128, len(pts))
		b.Kernels().Evaluate(b.Vandermonde(pts), uh.Data, direct)
		assert.Greater(t, cmplx.Abs(direct[1]-complex(f(pts[1]), 0)), 1e-3)
	}
}

func TestR2CLastModeForOddN(t *testing.T) {
	// For odd N the last stored mode is not a Nyquist mode and has a partner
	const N = 7
	b := mustNew(t, N, FourierReal)
	uh := NewFunction(b)
	uh.Data[3] = 0.5
	u, err := b.BackwardReference(uh, nil)
	require.NoError(t, err)
	uf, err := b.Backward(uh, nil)
	require.NoError(t, err)
	x, _ := b.PointsAndWeights()
	for j, xj := range x {
		assert.InDelta(t, math.Cos(3*xj), real(u.Data[j]), 1e-14)
		assert.InDelta(t, math.Cos(3*xj), real(uf.Data[j]), 1e-14)
	}
}

func TestEvalMatchesBackwardOnGrid(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	for _, c := range allBases(t, 10) {
		uh := randomFunction(rng, c.b)
		u, err := c.b.Backward(uh, nil)
		require.NoError(t, err)
		vals, err := uh.Eval(c.b.Mesh())
		require.NoError(t, err)
		assert.Truef(t, relErr(vals, u.Data) < 1e-12, "%s", c.name)
		empty, err := c.b.Eval(nil, uh)
		require.NoError(t, err)
		assert.Len(t, empty, 0)
	}
}

func TestDirichletBoundaryExact(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, N := range []int{3, 8, 20, 41} {
		for _, family := range []Family{Chebyshev, Legendre} {
			b := mustNew(t, N, family, WithBoundary(-1.5, 2.25), WithDomain(-2, 3))
			uh := randomFunction(rng, b)
			vals, err := b.Eval([]float64{-2, 3}, uh)
			require.NoError(t, err)
			assert.InDeltaf(t, -1.5, real(vals[0]), 1e-12, "%s N = %d", family, N)
			assert.InDeltaf(t, 2.25, real(vals[1]), 1e-12, "%s N = %d", family, N)
		}
	}
}

func TestExpandToParent(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	b := mustNew(t, 12, Legendre, WithBoundary(2, -1))
	d := b.(*ShenDirichlet)
	uh := randomFunction(rng, b)
	full, err := d.ExpandToParent(uh)
	require.NoError(t, err)
	assert.Same(t, b.Parent(), full.Basis)
	assert.Len(t, full.Data, 12)
	pts := []float64{-0.7, 0.1, 0.2, 0.95}
	want, err := b.Eval(pts, uh)
	require.NoError(t, err)
	got, err := full.Eval(pts)
	require.NoError(t, err)
	assert.True(t, relErr(got, want) < 1e-12)
}

func TestDerivativeVandermonde(t *testing.T) {
	x := []float64{-0.9, -0.31, 0.05, 0.44, 0.87}
	t.Run("fourier", func(t *testing.T) {
		b := mustNew(t, 6, FourierComplex).(*Fourier)
		V := b.Vandermonde(x)
		for _, d := range []int{0, 1, 2, 3} {
			dV := b.DerivativeVandermonde(V, d)
			for j, xj := range x {
				for l, k := range b.Wavenumbers() {
					want := ikPow(k, d) * cmplx.Exp(complex(0, k*xj))
					assert.InDelta(t, 0, cmplx.Abs(want-dV.At(j, l)), 1e-12)
				}
			}
		}
	})
	t.Run("legendre", func(t *testing.T) {
		const N = 9
		b := mustNew(t, N, Legendre)
		V := b.Vandermonde(x)
		for _, d := range []int{1, 2, 3} {
			dV := b.DerivativeVandermonde(V, d)
			for k := 0; k < N; k++ {
				norm := math.Sqrt((2*float64(k) + 1) / 2)
				want := quadrature.JacobiPDerivative(utils.NewVector(len(x), x), 0, 0, k, d)
				for j := range x {
					assert.InDeltaf(t, want[j]/norm, real(dV.At(j, k)), 1e-9, "d = %d, k = %d", d, k)
				}
			}
		}
	})
	t.Run("chebyshev", func(t *testing.T) {
		const N = 9
		b := mustNew(t, N, Chebyshev)
		dV := b.DerivativeVandermonde(b.Vandermonde(x), 1)
		for j, xj := range x {
			theta := math.Acos(xj)
			for k := 0; k < N; k++ {
				want := float64(k) * math.Sin(float64(k)*theta) / math.Sin(theta)
				assert.InDeltaf(t, want, real(dV.At(j, k)), 1e-10, "T'_%d(%g)", k, xj)
			}
		}
	})
	t.Run("dirichlet", func(t *testing.T) {
		const N = 8
		b := mustNew(t, N, Legendre, WithBoundary(0, 0))
		p := b.Parent()
		Vp := p.Vandermonde(x)
		dVp := p.DerivativeVandermonde(Vp, 2)
		dV := b.DerivativeVandermonde(Vp, 2)
		c, nc := dV.Dims()
		assert.Equal(t, len(x), c)
		assert.Equal(t, N-2, nc)
		for j := range x {
			for k := 0; k < N-2; k++ {
				assert.InDelta(t, real(dVp.At(j, k)-dVp.At(j, k+2)), real(dV.At(j, k)), 1e-12)
			}
		}
		V0 := b.DerivativeVandermonde(Vp, 0)
		V := b.Vandermonde(x)
		for j := range x {
			for k := 0; k < N-2; k++ {
				assert.Equal(t, V.At(j, k), V0.At(j, k))
			}
		}
	})
}

func TestDifferentiate(t *testing.T) {
	t.Run("legendre on [0,2]", func(t *testing.T) {
		b := mustNew(t, 8, Legendre, WithDomain(0, 2))
		u := NewArrayFunc(b, func(x []float64) (v []float64) {
			for _, xi := range x {
				v = append(v, xi*xi*xi)
			}
			return
		})
		uh, err := u.Forward(nil)
		require.NoError(t, err)
		d1, err := b.Differentiate(uh, 1)
		require.NoError(t, err)
		d2, err := b.Differentiate(uh, 2)
		require.NoError(t, err)
		pts := []float64{0.3, 1.1, 1.9}
		v1, err := d1.Eval(pts)
		require.NoError(t, err)
		v2, err := d2.Eval(pts)
		require.NoError(t, err)
		for i, x := range pts {
			assert.InDelta(t, 3*x*x, real(v1[i]), 1e-11)
			assert.InDelta(t, 6*x, real(v2[i]), 1e-10)
		}
	})
	t.Run("fourier on [0,1)", func(t *testing.T) {
		b := mustNew(t, 16, FourierComplex, WithDomain(0, 1))
		u := NewArrayFunc(b, func(x []float64) (v []float64) {
			for _, xi := range x {
				v = append(v, math.Sin(6*math.Pi*xi))
			}
			return
		})
		uh, err := u.Forward(nil)
		require.NoError(t, err)
		du, err := b.Differentiate(uh, 1)
		require.NoError(t, err)
		vals, err := du.Eval([]float64{0.1, 0.77})
		require.NoError(t, err)
		for i, x := range []float64{0.1, 0.77} {
			assert.InDelta(t, 6*math.Pi*math.Cos(6*math.Pi*x), real(vals[i]), 1e-10)
		}
	})
	t.Run("chebyshev dirichlet", func(t *testing.T) {
		b := mustNew(t, 10, Chebyshev, WithBoundary(1, 3))
		// u = 2 + x + (1 - x^2) lies in the span with u(-1) = 1, u(1) = 3
		u := NewArrayFunc(b, func(x []float64) (v []float64) {
			for _, xi := range x {
				v = append(v, 2+xi+1-xi*xi)
			}
			return
		})
		uh, err := u.Forward(nil)
		require.NoError(t, err)
		du, err := b.Differentiate(uh, 1)
		require.NoError(t, err)
		assert.Same(t, b.Parent(), du.Basis)
		vals, err := du.Eval([]float64{-0.5, 0.25})
		require.NoError(t, err)
		assert.InDelta(t, 2, real(vals[0]), 1e-12)
		assert.InDelta(t, 0.5, real(vals[1]), 1e-12)
	})
	b := mustNew(t, 6, Legendre)
	_, err := b.Differentiate(NewFunction(b), -1)
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestShapeErrors(t *testing.T) {
	leg := mustNew(t, 8, Legendre)
	cheb := mustNew(t, 8, Chebyshev)
	dir := mustNew(t, 8, Legendre, WithBoundary(0, 1))

	_, err := leg.Forward(NewArray(leg, make([]complex128, 7)), nil)
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	_, err = leg.Forward(nil, nil)
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	_, err = leg.Forward(NewArray(cheb), nil)
	assert.True(t, errors.Is(err, ErrUnsupportedFamily))

	_, err = dir.Backward(NewFunction(leg), nil)
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	_, err = dir.Forward(NewArray(dir), NewFunction(leg))
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	_, err = leg.Eval([]float64{0}, NewFunction(dir))
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	r2c := mustNew(t, 8, FourierReal)
	_, err = r2c.ApplyInverseMass(NewFunction(r2c, make([]complex128, 8)))
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	_, err = r2c.Backward(NewFunction(cheb), nil)
	assert.True(t, errors.Is(err, ErrUnsupportedFamily))

	assert.Panics(t, func() { leg.DerivativeVandermonde(dir.QuadratureVandermonde(), 1) })
	assert.PanicsWithValue(t, ErrShapeMismatch, func() { leg.DerivativeVandermonde(leg.QuadratureVandermonde(), -1) })
	assert.PanicsWithValue(t, ErrShapeMismatch, func() { r2c.DerivativeVandermonde(leg.QuadratureVandermonde(), 1) })
}

func TestForeignBasisRejected(t *testing.T) {
	var (
		leg    = mustNew(t, 8, Legendre)
		legGL  = mustNew(t, 8, Legendre, WithQuadrature(quadrature.GL))
		dir10  = mustNew(t, 10, Legendre, WithBoundary(0, 0))
		dirA   = mustNew(t, 10, Legendre, WithBoundary(1, 2))
		dirB   = mustNew(t, 10, Legendre, WithBoundary(1, 2), WithDomain(0, 1))
		shared = mustNew(t, 10, Legendre, WithBoundary(1, 2))
	)
	// same family and length, different point count
	uh := NewFunction(dir10)
	_, err := leg.Backward(uh, nil)
	assert.True(t, errors.Is(err, ErrUnsupportedFamily))
	_, err = leg.Eval([]float64{0.3}, uh)
	assert.True(t, errors.Is(err, ErrUnsupportedFamily))

	_, err = dirA.Backward(NewFunction(dir10), nil)
	assert.True(t, errors.Is(err, ErrUnsupportedFamily))
	_, err = dirA.Backward(NewFunction(dirB), nil)
	assert.True(t, errors.Is(err, ErrUnsupportedFamily))
	_, err = legGL.Forward(NewArray(leg), nil)
	assert.True(t, errors.Is(err, ErrUnsupportedFamily))
	_, err = leg.ApplyInverseMass(NewFunction(legGL))
	assert.True(t, errors.Is(err, ErrUnsupportedFamily))

	// separately built but identical bases interoperate, arrays ignore boundaries
	_, err = dirA.Backward(NewFunction(shared), nil)
	assert.NoError(t, err)
	_, err = dirA.Forward(NewArray(dir10.Parent()), nil)
	assert.NoError(t, err)
	assert.NoError(t, SameGrid(dirA, dir10))
	assert.True(t, errors.Is(SameSpace(dirA, dir10), ErrUnsupportedFamily))
}

func TestConcurrentTransforms(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	for _, c := range allBases(t, 16) {
		uh := randomFunction(rng, c.b)
		want, err := c.b.Backward(uh, nil)
		require.NoError(t, err)
		done := make(chan []complex128)
		for g := 0; g < 8; g++ {
			go func() {
				u, _ := c.b.Backward(uh, nil)
				v, _ := c.b.Forward(u, nil)
				w, _ := c.b.Backward(v, nil)
				done <- w.Data
			}()
		}
		for g := 0; g < 8; g++ {
			assert.True(t, relErr(<-done, want.Data) < 1e-10, c.name)
		}
	}
}

func TestDirichletMassMatchesQuadrature(t *testing.T) {
	for _, N := range []int{3, 4, 9, 16} {
		for _, family := range []Family{Chebyshev, Legendre} {
			var (
				b    = mustNew(t, N, family, WithBoundary(0, 0), WithDomain(0, 2))
				d    = b.(*ShenDirichlet)
				V    = d.QuadratureVandermonde()
				_, w = b.PointsAndWeights()
				M    = d.mass()
			)
			for i := 0; i < b.Dim(); i++ {
				for j := 0; j < b.Dim(); j++ {
					var want float64
					for q, wq := range w {
						want += wq * real(V.At(q, i)) * real(V.At(q, j))
					}
					assert.InDeltaf(t, want, M.At(i, j), 1e-12, "%s N = %d (%d,%d)", family, N, i, j)
				}
			}
		}
	}
}
