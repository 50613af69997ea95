package InputParameters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gospectral/quadrature"
	"github.com/notargets/gospectral/spectral"
)

func TestParse1D(t *testing.T) {
	fileInput := []byte(`
Title: Poisson Case
NumPoints: 24
Family: legendre
Quadrature: gl
Domain: [0., 2.]
BC:
  Low: -1.
  High: 3.5
Backend: generic
Threads: 2
`)
	var input InputParameters1D
	require.NoError(t, input.Parse(fileInput))
	input.Print()
	assert.Equal(t, "Poisson Case", input.Title)
	assert.Equal(t, 24, input.NumPoints)
	assert.Equal(t, []float64{0, 2}, input.Domain)
	require.NotNil(t, input.BC)
	assert.Equal(t, -1., input.BC.Low)
	assert.Equal(t, 3.5, input.BC.High)

	cfg := input.KernelConfig()
	assert.Equal(t, "generic", cfg.Backend)
	assert.Equal(t, 2, cfg.Threads)

	b, err := input.NewBasis()
	require.NoError(t, err)
	assert.Equal(t, spectral.Legendre, b.Family())
	assert.Equal(t, quadrature.GL, b.Quadrature())
	assert.Equal(t, 22, b.Dim())
	assert.Equal(t, spectral.Domain{Low: 0, High: 2}, b.Domain())
	assert.Equal(t, spectral.Dirichlet, b.Boundary().Kind)
	assert.Equal(t, "generic", b.Kernels().Source("contract"))
}

func TestParse1DDefaults(t *testing.T) {
	var input InputParameters1D
	require.NoError(t, input.Parse([]byte("Title: periodic\nNumPoints: 16\nFamily: r2c\n")))
	assert.Nil(t, input.BC)
	b, err := input.NewBasis()
	require.NoError(t, err)
	assert.Equal(t, spectral.FourierReal, b.Family())
	assert.Equal(t, 9, b.Dim())
}

func TestParse1DErrors(t *testing.T) {
	var input InputParameters1D
	require.NoError(t, input.Parse([]byte("NumPoints: 16\nFamily: hermite\n")))
	_, err := input.NewBasis()
	assert.ErrorIs(t, err, spectral.ErrUnsupportedFamily)

	input = InputParameters1D{NumPoints: 16, Family: "chebyshev", Domain: []float64{1}}
	_, err = input.NewBasis()
	assert.Error(t, err)

	assert.Error(t, input.Parse([]byte("NumPoints: [1, 2")))
}
