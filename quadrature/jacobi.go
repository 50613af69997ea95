package quadrature

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gospectral/utils"
)

// JacobiGL returns the N+1 Gauss-Lobatto points for the Jacobi weight
// (1-x)^alpha (1+x)^beta, endpoints included. Weights are family specific
// and are computed by the callers.
func JacobiGL(alpha, beta float64, N int) (X utils.Vector) {
	var (
		x    = make([]float64, N+1)
		xint utils.Vector
	)
	if N == 1 {
		x[0] = -1
		x[1] = 1
		X = utils.NewVector(N+1, x)
		return
	}
	xint, _ = JacobiGQ(alpha+1, beta+1, N-2)
	x[0] = -1
	x[N] = 1
	copy(x[1:N], xint.DataP)
	X = utils.NewVector(len(x), x)
	return
}

// JacobiGQ computes the N+1 point Gauss quadrature for the Jacobi weight by
// Golub-Welsch, eigenvalues of the symmetric Jacobi matrix.
func JacobiGQ(alpha, beta float64, N int) (X, W utils.Vector) {
	var (
		x, w       []float64
		fac        float64
		h1, d0, d1 []float64
		VVr        *mat.Dense
	)
	if N == 0 {
		x = []float64{-(alpha - beta) / (alpha + beta + 2.)}
		w = []float64{gamma0(alpha, beta)}
		return utils.NewVector(len(x), x), utils.NewVector(len(w), w)
	}

	h1 = make([]float64, N+1)
	for i := 0; i < N+1; i++ {
		h1[i] = 2*float64(i) + alpha + beta
	}

	// main diagonal: -(alpha^2-beta^2)./(h1+2)./h1
	d0 = make([]float64, N+1)
	fac = -(alpha*alpha - beta*beta)
	for i := 0; i < N+1; i++ {
		val := h1[i]
		d0[i] = fac / (val * (val + 2.))
	}
	// Handle division by zero
	eps := 1.e-16
	if alpha+beta < 10*eps {
		d0[0] = 0.
	}

	// 1st upper diagonal: diag(2./(h1(1:N)+2).*sqrt((1:N).*((1:N)+alpha+beta) .* ((1:N)+alpha).*((1:N)+beta)./(h1(1:N)+1)./(h1(1:N)+3)),1);
	var ip1 float64
	d1 = make([]float64, N)
	for i := 0; i < N; i++ {
		ip1 = float64(i + 1)
		val := h1[i]
		d1[i] = 2. / (val + 2.)
		d1[i] *= math.Sqrt(ip1 * (ip1 + alpha + beta) * (ip1 + alpha) * (ip1 + beta) / ((val + 1.) * (val + 3.)))
	}

	JJ := utils.NewSymTriDiagonal(d0, d1)

	var eig mat.EigenSym
	ok := eig.Factorize(JJ, true)
	if !ok {
		panic("eigenvalue decomposition failed")
	}
	x = eig.Values(nil)
	X = utils.NewVector(N+1, x)

	VVr = mat.NewDense(len(x), len(x), nil)
	eig.VectorsTo(VVr)
	w = make([]float64, len(x))
	copy(w, VVr.RawRowView(0))
	W = utils.NewVector(len(x), w).POW(2).Scale(gamma0(alpha, beta))
	return X, W
}

// JacobiP evaluates the orthonormal Jacobi polynomial of degree N at r.
func JacobiP(r utils.Vector, alpha, beta float64, N int) (p []float64) {
	var (
		Nc = r.Len()
	)
	rg := 1. / math.Sqrt(gamma0(alpha, beta))
	if N == 0 {
		p = utils.ConstArray(Nc, rg)
		return
	}
	var (
		pm1 = utils.ConstArray(Nc, rg)
		pc  = make([]float64, Nc)
		ab  = alpha + beta
		rg1 = 1. / math.Sqrt(gamma1(alpha, beta))
	)
	for i, x := range r.DataP {
		pc[i] = rg1 * ((ab+2.0)*x/2.0 + (alpha-beta)/2.0)
	}
	if N == 1 {
		p = pc
		return
	}

	a1 := alpha + 1.
	b1 := beta + 1.
	ab1 := ab + 1.
	aold := 2.0 * math.Sqrt(a1*b1/(ab+3.0)) / (ab + 2.0)
	for i := 0; i < N-1; i++ {
		ip1 := float64(i + 1)
		ip2 := float64(ip1 + 1)
		h1 := 2.0*ip1 + ab
		anew := 2.0 / (h1 + 2.0) * math.Sqrt(ip2*(ip1+ab1)*(ip1+a1)*(ip1+b1)/(h1+1.0)/(h1+3.0))
		bnew := -(alpha*alpha - beta*beta) / h1 / (h1 + 2.0)
		pn := make([]float64, Nc)
		for j, x := range r.DataP {
			pn[j] = (-aold*pm1[j] + (x-bnew)*pc[j]) / anew
		}
		pm1, pc = pc, pn
		aold = anew
	}
	p = pc
	return
}

func GradJacobiP(r utils.Vector, alpha, beta float64, N int) (p []float64) {
	return JacobiPDerivative(r, alpha, beta, N, 1)
}

// JacobiPDerivative evaluates the d-th derivative of the orthonormal Jacobi
// polynomial of degree N, using d/dx P_n^(a,b) = sqrt(n(n+a+b+1)) P_n-1^(a+1,b+1).
func JacobiPDerivative(r utils.Vector, alpha, beta float64, N, d int) (p []float64) {
	if d == 0 {
		return JacobiP(r, alpha, beta, N)
	}
	if N < d {
		p = make([]float64, r.Len())
		return
	}
	fac := 1.
	for i := 0; i < d; i++ {
		fN, fi := float64(N), float64(i)
		fac *= math.Sqrt((fN - fi) * (fN + fi + alpha + beta + 1))
	}
	p = JacobiP(r, alpha+float64(d), beta+float64(d), N-d)
	for i := range p {
		p[i] *= fac
	}
	return
}

func gamma0(alpha, beta float64) float64 {
	ab1 := alpha + beta + 1.
	a1 := alpha + 1.
	b1 := beta + 1.
	return math.Gamma(a1) * math.Gamma(b1) * math.Pow(2, ab1) / ab1 / math.Gamma(ab1)
}

func gamma1(alpha, beta float64) float64 {
	ab := alpha + beta
	a1 := alpha + 1.
	b1 := beta + 1.
	return a1 * b1 * gamma0(alpha, beta) / (ab + 3.0)
}
