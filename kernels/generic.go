package kernels

import (
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

func newGeneric() *Backend {
	return &Backend{
		Name:          GenericBackend,
		Evaluate:      genericEvaluate,
		ScalarProduct: genericScalarProduct,
		Contract:      genericContract,
	}
}

func checkEvaluate(V *mat.CDense, c, out []complex128) {
	nr, nc := V.Dims()
	checkDims(Evaluate, len(c) == nc && len(out) == nr,
		"V is %d x %d, len(c) = %d, len(out) = %d", nr, nc, len(c), len(out))
}

func checkScalarProduct(V *mat.CDense, w []float64, u, out []complex128) {
	nr, nc := V.Dims()
	checkDims(ScalarProduct, len(w) == nr && len(u) == nr && len(out) == nc,
		"V is %d x %d, len(w) = %d, len(u) = %d, len(out) = %d", nr, nc, len(w), len(u), len(out))
}

func checkContract(A, B *mat.CDense, w []float64, out *mat.CDense) {
	var (
		ra, ca = A.Dims()
		rb, cb = B.Dims()
		ro, co = out.Dims()
	)
	checkDims(Contract, ra == rb && len(w) == ra && ro == ca && co == cb,
		"A is %d x %d, B is %d x %d, len(w) = %d, out is %d x %d", ra, ca, rb, cb, len(w), ro, co)
}

func genericEvaluate(V *mat.CDense, c, out []complex128) {
	checkEvaluate(V, c, out)
	evaluateRows(V, c, out, 0, len(out))
}

func evaluateRows(V *mat.CDense, c, out []complex128, iMin, iMax int) {
	raw := V.RawCMatrix()
	for i := iMin; i < iMax; i++ {
		var (
			sum complex128
			row = raw.Data[i*raw.Stride : i*raw.Stride+raw.Cols]
		)
		for k, v := range row {
			sum += v * c[k]
		}
		out[i] = sum
	}
}

func genericScalarProduct(V *mat.CDense, w []float64, u, out []complex128) {
	checkScalarProduct(V, w, u, out)
	scalarProductCols(V, w, u, out, 0, len(out))
}

func scalarProductCols(V *mat.CDense, w []float64, u, out []complex128, kMin, kMax int) {
	raw := V.RawCMatrix()
	for k := kMin; k < kMax; k++ {
		out[k] = 0
	}
	for j := 0; j < raw.Rows; j++ {
		wu := complex(w[j], 0) * u[j]
		row := raw.Data[j*raw.Stride:]
		for k := kMin; k < kMax; k++ {
			out[k] += cmplx.Conj(row[k]) * wu
		}
	}
}

func genericContract(A, B *mat.CDense, w []float64, out *mat.CDense) {
	checkContract(A, B, w, out)
	_, ca := A.Dims()
	contractRows(A, B, w, out, 0, ca)
}

func contractRows(A, B *mat.CDense, w []float64, out *mat.CDense, iMin, iMax int) {
	var (
		ra  = A.RawCMatrix()
		rb  = B.RawCMatrix()
		ro  = out.RawCMatrix()
		row = make([]complex128, rb.Cols)
	)
	for i := iMin; i < iMax; i++ {
		for l := range row {
			row[l] = 0
		}
		for j := 0; j < ra.Rows; j++ {
			a := cmplx.Conj(ra.Data[j*ra.Stride+i]) * complex(w[j], 0)
			if a == 0 {
				continue
			}
			bRow := rb.Data[j*rb.Stride : j*rb.Stride+rb.Cols]
			for l, b := range bRow {
				row[l] += a * b
			}
		}
		copy(ro.Data[i*ro.Stride:i*ro.Stride+ro.Cols], row)
	}
}
