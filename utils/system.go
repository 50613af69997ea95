package utils

import (
	"math"
	"math/cmplx"
)

// IsFinite reports false when any element of A is NaN or infinite. A is a
// float64, a complex128 or a slice of either.
func IsFinite(A any) bool {
	switch v := A.(type) {
	case float64:
		return !math.IsNaN(v) && !math.IsInf(v, 0)
	case complex128:
		return !cmplx.IsNaN(v) && !cmplx.IsInf(v)
	case []float64:
		for _, f := range v {
			if !IsFinite(f) {
				return false
			}
		}
	case []complex128:
		for _, f := range v {
			if !IsFinite(f) {
				return false
			}
		}
	}
	return true
}
