//go:build netlib
// +build netlib

package kernels

/*
#cgo LDFLAGS: -lopenblas -lgfortran -lm -lpthread
*/
import "C"

import (
	netblas "gonum.org/v1/netlib/blas/netlib"
)

func init() {
	Register("netlib", func(Config) (*Backend, error) {
		return newBLAS("netlib", netblas.Implementation{}), nil
	})
}
