package utils

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Stride2Tridiag is a pentadiagonal matrix whose only off diagonals sit at
// offsets -2 and +2. Even and odd rows decouple into two gonum tridiagonal
// systems, Parts[0] holds the even rows and Parts[1] the odd rows.
type Stride2Tridiag struct {
	N     int
	Parts [2]*mat.Tridiag
}

// NewStride2Tridiag builds the matrix from full length diagonals. lower[i]
// multiplies x[i-2] and upper[i] multiplies x[i+2]; entries that fall outside
// the matrix are ignored.
func NewStride2Tridiag(lower, diag, upper []float64) (S Stride2Tridiag) {
	var (
		n = len(diag)
	)
	if len(lower) != n || len(upper) != n {
		panic(fmt.Errorf("stride 2 tridiagonal dimension mismatch: len(l,d,u) = %d,%d,%d",
			len(lower), len(diag), len(upper)))
	}
	S.N = n
	for start := 0; start < 2 && start < n; start++ {
		var (
			m      = (n - start + 1) / 2
			dl, du = make([]float64, m-1), make([]float64, m-1)
			d      = make([]float64, m)
		)
		for k := 0; k < m; k++ {
			i := start + 2*k
			d[k] = diag[i]
			if k > 0 {
				dl[k-1] = lower[i]
			}
			if k < m-1 {
				du[k] = upper[i]
			}
		}
		S.Parts[start] = mat.NewTridiag(m, dl, d, du)
	}
	return
}

// At returns the (i, j) entry of the full pentadiagonal matrix.
func (S Stride2Tridiag) At(i, j int) float64 {
	if (i-j)%2 != 0 || S.Parts[i%2] == nil {
		return 0
	}
	return S.Parts[i%2].At(i/2, j/2)
}

// SolveTo solves S x = rhs in place. The real and imaginary parts of each
// half are solved together as two right hand side columns.
func (S Stride2Tridiag) SolveTo(rhs []complex128) (err error) {
	if len(rhs) != S.N {
		return fmt.Errorf("stride 2 tridiagonal solve: len(rhs) = %d, want %d", len(rhs), S.N)
	}
	for start, T := range S.Parts {
		if T == nil {
			continue
		}
		var (
			m, _ = T.Dims()
			B    = mat.NewDense(m, 2, nil)
		)
		for k := 0; k < m; k++ {
			v := rhs[start+2*k]
			B.Set(k, 0, real(v))
			B.Set(k, 1, imag(v))
		}
		if err = T.SolveTo(B, false, B); err != nil {
			return fmt.Errorf("stride 2 tridiagonal solve, rows %d mod 2: %w", start, err)
		}
		for k := 0; k < m; k++ {
			rhs[start+2*k] = complex(B.At(k, 0), B.At(k, 1))
		}
	}
	return
}
