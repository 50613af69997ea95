package quadrature

import (
	"fmt"
	"math"
)

// Type selects the point set of a polynomial rule.
type Type string

const (
	LG Type = "LG" // Legendre-Gauss
	GL Type = "GL" // Gauss-Lobatto
	GC Type = "GC" // Chebyshev-Gauss
	UN Type = "UN" // uniform, periodic
)

func (q Type) String() string { return string(q) }

// Rule is an ordered set of points on the reference interval with matching
// weights.
type Rule struct {
	Points  []float64
	Weights []float64
}

func (r Rule) N() int { return len(r.Points) }

// WeightSum is the discrete measure of the reference interval.
func (r Rule) WeightSum() (sum float64) {
	for _, w := range r.Weights {
		sum += w
	}
	return
}

// Integrate sums f over the rule's points against the weights.
func (r Rule) Integrate(f func(x float64) float64) (sum float64) {
	for i, x := range r.Points {
		sum += r.Weights[i] * f(x)
	}
	return
}

// FourierUniform returns N equispaced points on [0, 2pi), weight 2pi/N.
func FourierUniform(N int) (r Rule) {
	r = Rule{
		Points:  make([]float64, N),
		Weights: make([]float64, N),
	}
	dx := 2 * math.Pi / float64(N)
	for j := 0; j < N; j++ {
		r.Points[j] = float64(j) * dx
		r.Weights[j] = dx
	}
	return
}

// ChebyshevGaussLobatto returns x_j = cos(pi j/(N-1)), j=0..N-1, running from
// +1 to -1. Weights pi/(N-1), halved at both ends, sum to pi.
func ChebyshevGaussLobatto(N int) (r Rule) {
	if N < 2 {
		panic(fmt.Errorf("Chebyshev Gauss-Lobatto needs N >= 2, have %d", N))
	}
	r = Rule{
		Points:  make([]float64, N),
		Weights: make([]float64, N),
	}
	h := math.Pi / float64(N-1)
	for j := 0; j < N; j++ {
		r.Points[j] = math.Cos(float64(j) * h)
		r.Weights[j] = h
	}
	r.Weights[0] *= 0.5
	r.Weights[N-1] *= 0.5
	return
}

// LegendreGauss returns the N point Gauss rule, exact to degree 2N-1.
func LegendreGauss(N int) (r Rule) {
	X, W := JacobiGQ(0, 0, N-1)
	return Rule{Points: X.DataP, Weights: W.DataP}
}

// LegendreGaussLobatto returns the N point Lobatto rule, exact to degree 2N-3.
// w_j = 2/(n(n+1) L_n(x_j)^2) with n = N-1.
func LegendreGaussLobatto(N int) (r Rule) {
	if N < 2 {
		panic(fmt.Errorf("Legendre Gauss-Lobatto needs N >= 2, have %d", N))
	}
	var (
		n = N - 1
		X = JacobiGL(0, 0, n)
		w = make([]float64, N)
	)
	fn := float64(n)
	for j, x := range X.DataP {
		L := LegendreP(n, x)
		w[j] = 2. / (fn * (fn + 1) * L * L)
	}
	return Rule{Points: X.DataP, Weights: w}
}

// LegendreP evaluates the classical (unnormalized) Legendre polynomial L_n
// at x by the three term recurrence.
func LegendreP(n int, x float64) float64 {
	var (
		pm1, p = 1., x
	)
	if n == 0 {
		return pm1
	}
	for k := 1; k < n; k++ {
		fk := float64(k)
		pm1, p = p, ((2*fk+1)*x*p-fk*pm1)/(fk+1)
	}
	return p
}

// LegendreSeries fills L[k] = L_k(x) for k = 0..len(L)-1.
func LegendreSeries(x float64, L []float64) {
	if len(L) == 0 {
		return
	}
	L[0] = 1
	if len(L) == 1 {
		return
	}
	L[1] = x
	for k := 1; k < len(L)-1; k++ {
		fk := float64(k)
		L[k+1] = ((2*fk+1)*x*L[k] - fk*L[k-1]) / (fk + 1)
	}
}

// ChebyshevSeries fills T[k] = T_k(x) = cos(k arccos x) by recurrence.
func ChebyshevSeries(x float64, T []float64) {
	if len(T) == 0 {
		return
	}
	T[0] = 1
	if len(T) == 1 {
		return
	}
	T[1] = x
	for k := 1; k < len(T)-1; k++ {
		T[k+1] = 2*x*T[k] - T[k-1]
	}
}
