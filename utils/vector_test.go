package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVector(t *testing.T) {
	N := 3
	v1 := NewVector(N)
	require.Equal(t, 0., v1.V.RawVector().Data[N-1])
	assert.Equal(t, N, v1.Len())
	r, c := v1.Dims()
	assert.Equal(t, []int{N, 1}, []int{r, c})

	// Chained changes write through to the shared storage
	v2 := NewVector(3, []float64{1, -2, 3})
	v2.POW(2).Scale(0.5)
	assert.Equal(t, []float64{0.5, 2, 4.5}, v2.DataP)
	assert.Equal(t, 2., v2.V.AtVec(1))
	assert.Equal(t, 4.5, v2.At(2, 0))

	assert.Panics(t, func() { NewVector(2, []float64{1}) })
}

func TestPOW(t *testing.T) {
	for p := -10; p <= 10; p++ {
		assert.InDeltaf(t, math.Pow(1.3, float64(p)), POW(1.3, p), 1e-12, "p = %d", p)
	}
	assert.Equal(t, []float64{2, 2, 2}, ConstArray(3, 2))
}

func TestIsFinite(t *testing.T) {
	assert.True(t, IsFinite([]float64{1, 2}))
	assert.False(t, IsFinite([]float64{1, math.NaN()}))
	assert.False(t, IsFinite([]complex128{complex(0, math.Inf(1))}))
	assert.True(t, IsFinite(complex(1, 2)))
	assert.False(t, IsFinite(math.Inf(-1)))
	assert.True(t, IsFinite(NewMatrix(2, 2).DataP))
}
