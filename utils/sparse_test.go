package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDOKToCSR(t *testing.T) {
	D := NewDOK(3, 4)
	D.Set(0, 0, 4).Set(0, 2, -1).Set(1, 1, 2).Set(2, 3, 5).Set(2, 1, 1)
	D.SetReadOnly("D")
	assert.Panics(t, func() { D.Set(0, 1, 1) })

	C := D.ToCSR()
	nr, nc := C.Dims()
	assert.Equal(t, 3, nr)
	assert.Equal(t, 4, nc)
	assert.Equal(t, 5, C.NNZ())
	assert.Equal(t, "D", C.Name())
	assert.Equal(t, -1., C.At(0, 2))
	assert.Equal(t, 0., C.At(1, 0))

	dst := make([]float64, 3)
	C.MulVec(dst, []float64{1, 2, 3, 4})
	assert.Equal(t, []float64{1, 4, 22}, dst)
	assert.Panics(t, func() { C.MulVec(dst, []float64{1}) })

	assert.Equal(t, map[int][]float64{
		0:  {4, 2},
		1:  {5},
		2:  {-1},
		-1: {1},
	}, C.Diagonals())

	var sum float64
	C.DoNonZero(func(i, j int, v float64) { sum += v })
	assert.Equal(t, 11., sum)
}
