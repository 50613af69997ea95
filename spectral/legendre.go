package spectral

import (
	"github.com/notargets/gospectral/kernels"
	"github.com/notargets/gospectral/quadrature"
	"github.com/notargets/gospectral/utils"
)

// LegendreBasis is the L_k basis on Legendre-Gauss or Gauss-Lobatto points. There
// is no FFT for it; the fast paths run the three term recurrence point by
// point and never form the Vandermonde matrix.
type LegendreBasis struct {
	polynomial
}

func newLegendre(N int, q quadrature.Type, dom Domain, kt *kernels.Table) (l *LegendreBasis) {
	rule := quadrature.LegendreGauss
	if q == quadrature.GL {
		rule = quadrature.LegendreGaussLobatto
	}
	l = &LegendreBasis{
		polynomial: polynomial{
			base: base{
				family: Legendre,
				n:      N,
				domain: dom,
				quad:   q,
				kt:     kt,
				ruleFn: rule,
			},
			series:     quadrature.LegendreSeries,
			diffMatrix: legendreDifferentiation,
		},
	}
	l.self, l.fastSP, l.fastBW = l, l.recurrenceScalarProduct, l.clenshawBackward
	return
}

// legendreDifferentiation: c'_k = (2k+1) sum_{p>k, p+k odd} c_p.
func legendreDifferentiation(N int) (D utils.Matrix) {
	D = utils.NewMatrix(N, N)
	for k := 0; k < N; k++ {
		for p := k + 1; p < N; p += 2 {
			D.Set(k, p, float64(2*k+1))
		}
	}
	return
}

func (l *LegendreBasis) recurrenceScalarProduct(u, out []complex128) {
	var (
		r = l.quadratureRule()
		n = len(out)
	)
	for k := range out {
		out[k] = 0
	}
	for j, x := range r.Points {
		var (
			wu     = complex(r.Weights[j], 0) * u[j]
			pm1, p = 1., x
		)
		out[0] += wu
		if n > 1 {
			out[1] += wu * complex(x, 0)
		}
		for k := 1; k < n-1; k++ {
			fk := float64(k)
			pm1, p = p, ((2*fk+1)*x*p-fk*pm1)/(fk+1)
			out[k+1] += wu * complex(p, 0)
		}
	}
}

// clenshawBackward sums c_k L_k(x_j) backwards with
// b_k = c_k + (2k+1)x/(k+1) b_{k+1} - (k+1)/(k+2) b_{k+2}.
func (l *LegendreBasis) clenshawBackward(c, out []complex128) {
	var (
		r = l.quadratureRule()
		n = len(c)
	)
	for j, x := range r.Points {
		var b1, b2 complex128
		for k := n - 1; k >= 1; k-- {
			fk := float64(k)
			alpha := complex((2*fk+1)*x/(fk+1), 0)
			beta := complex(-(fk+1)/(fk+2), 0)
			b1, b2 = c[k]+alpha*b1+beta*b2, b1
		}
		// u = c_0 + x b_1 - b_2/2
		out[j] = c[0] + complex(x, 0)*b1 - 0.5*b2
	}
}
