package spectral

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/notargets/gospectral/kernels"
	"github.com/notargets/gospectral/quadrature"
	"github.com/notargets/gospectral/utils"
)

// ChebyshevBasis is the T_k basis on Gauss-Lobatto points, transformed with a
// type I DCT.
type ChebyshevBasis struct {
	polynomial
	plans sync.Pool
}

func newChebyshev(N int, dom Domain, kt *kernels.Table) (c *ChebyshevBasis) {
	c = &ChebyshevBasis{
		polynomial: polynomial{
			base: base{
				family: Chebyshev,
				n:      N,
				domain: dom,
				quad:   quadrature.GL,
				kt:     kt,
				ruleFn: quadrature.ChebyshevGaussLobatto,
			},
			series:     quadrature.ChebyshevSeries,
			diffMatrix: chebyshevDifferentiation,
		},
	}
	c.self, c.fastSP, c.fastBW = c, c.dctScalarProduct, c.dctBackward
	c.plans.New = func() any { return fourier.NewDCT(N) }
	return
}

// chebyshevDifferentiation: c'_k = (2/c_k) sum_{p>k, p+k odd} p c_p, c_0 = 2.
func chebyshevDifferentiation(N int) (D utils.Matrix) {
	D = utils.NewMatrix(N, N)
	for k := 0; k < N; k++ {
		ck := 1.
		if k == 0 {
			ck = 2
		}
		for p := k + 1; p < N; p += 2 {
			D.Set(k, p, 2*float64(p)/ck)
		}
	}
	return
}

// dct applies the unnormalized DCT-I to the real and imaginary parts of src.
func (c *ChebyshevBasis) dct(src, dst []complex128) {
	plan := c.plans.Get().(*fourier.DCT)
	defer c.plans.Put(plan)
	var (
		re = make([]float64, len(src))
		im = make([]float64, len(src))
	)
	for i, v := range src {
		re[i], im[i] = real(v), imag(v)
	}
	re = plan.Transform(re, re)
	im = plan.Transform(im, im)
	for i := range dst {
		dst[i] = complex(re[i], im[i])
	}
}

// With Y_k = u_0 + (-1)^k u_{N-1} + 2 sum u_j cos(pi jk/(N-1)), the
// Gauss-Lobatto scalar product is pi/(2(N-1)) Y.
func (c *ChebyshevBasis) dctScalarProduct(u, out []complex128) {
	c.dct(u, out)
	s := complex(math.Pi/(2*float64(c.n-1)), 0)
	for k := range out {
		out[k] *= s
	}
}

// u_j = sum_k c_k cos(pi jk/(N-1)) is half the DCT of c with both end
// coefficients doubled.
func (c *ChebyshevBasis) dctBackward(coef, out []complex128) {
	y := append([]complex128(nil), coef...)
	y[0] *= 2
	y[len(y)-1] *= 2
	c.dct(y, out)
	for j := range out {
		out[j] *= 0.5
	}
}
