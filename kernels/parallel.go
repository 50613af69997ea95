package kernels

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gospectral/utils"
)

// newParallel splits the generic loops over output indices across
// cfg.Threads goroutines.
func newParallel(cfg Config) (*Backend, error) {
	if cfg.Threads < 1 {
		return nil, fmt.Errorf("parallel backend needs at least one thread, have %d", cfg.Threads)
	}
	np := cfg.Threads
	return &Backend{
		Name: "parallel",
		Evaluate: func(V *mat.CDense, c, out []complex128) {
			checkEvaluate(V, c, out)
			utils.NewPartitionMap(np, len(out)).Run(func(iMin, iMax int) {
				evaluateRows(V, c, out, iMin, iMax)
			})
		},
		ScalarProduct: func(V *mat.CDense, w []float64, u, out []complex128) {
			checkScalarProduct(V, w, u, out)
			utils.NewPartitionMap(np, len(out)).Run(func(kMin, kMax int) {
				scalarProductCols(V, w, u, out, kMin, kMax)
			})
		},
		Contract: func(A, B *mat.CDense, w []float64, out *mat.CDense) {
			checkContract(A, B, w, out)
			_, ca := A.Dims()
			utils.NewPartitionMap(np, ca).Run(func(iMin, iMax int) {
				contractRows(A, B, w, out, iMin, iMax)
			})
		},
	}, nil
}
