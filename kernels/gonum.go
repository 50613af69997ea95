package kernels

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/gonum"
	"gonum.org/v1/gonum/mat"
)

// zblas is the part of blas.Complex128 the BLAS backed kernels need.
type zblas interface {
	Zgemv(tA blas.Transpose, m, n int, alpha complex128, a []complex128, lda int,
		x []complex128, incX int, beta complex128, y []complex128, incY int)
	Zgemm(tA, tB blas.Transpose, m, n, k int, alpha complex128, a []complex128, lda int,
		b []complex128, ldb int, beta complex128, c []complex128, ldc int)
}

func newGonum() *Backend {
	return newBLAS("gonum", gonum.Implementation{})
}

// newBLAS wraps any level 2/3 complex BLAS into the kernel contracts.
func newBLAS(name string, impl zblas) *Backend {
	return &Backend{
		Name: name,
		Evaluate: func(V *mat.CDense, c, out []complex128) {
			checkEvaluate(V, c, out)
			raw := V.RawCMatrix()
			if raw.Rows == 0 || raw.Cols == 0 {
				zero(out)
				return
			}
			impl.Zgemv(blas.NoTrans, raw.Rows, raw.Cols, 1, raw.Data, raw.Stride, c, 1, 0, out, 1)
		},
		ScalarProduct: func(V *mat.CDense, w []float64, u, out []complex128) {
			checkScalarProduct(V, w, u, out)
			raw := V.RawCMatrix()
			if raw.Rows == 0 || raw.Cols == 0 {
				zero(out)
				return
			}
			wu := make([]complex128, len(u))
			for j := range u {
				wu[j] = complex(w[j], 0) * u[j]
			}
			impl.Zgemv(blas.ConjTrans, raw.Rows, raw.Cols, 1, raw.Data, raw.Stride, wu, 1, 0, out, 1)
		},
		Contract: func(A, B *mat.CDense, w []float64, out *mat.CDense) {
			checkContract(A, B, w, out)
			var (
				ra = A.RawCMatrix()
				rb = B.RawCMatrix()
				ro = out.RawCMatrix()
			)
			if ra.Rows == 0 || ra.Cols == 0 || rb.Cols == 0 {
				for i := 0; i < ro.Rows; i++ {
					zero(ro.Data[i*ro.Stride : i*ro.Stride+ro.Cols])
				}
				return
			}
			wb := make([]complex128, rb.Rows*rb.Cols)
			for j := 0; j < rb.Rows; j++ {
				wj := complex(w[j], 0)
				for l := 0; l < rb.Cols; l++ {
					wb[j*rb.Cols+l] = wj * rb.Data[j*rb.Stride+l]
				}
			}
			impl.Zgemm(blas.ConjTrans, blas.NoTrans, ra.Cols, rb.Cols, ra.Rows,
				1, ra.Data, ra.Stride, wb, rb.Cols, 0, ro.Data, ro.Stride)
		},
	}
}

func zero(out []complex128) {
	for i := range out {
		out[i] = 0
	}
}
