package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gospectral/InputParameters"
	"github.com/notargets/gospectral/kernels"
	"github.com/notargets/gospectral/spectral"
)

func TestRunPoisson1D(t *testing.T) {
	for _, family := range []string{"chebyshev", "legendre"} {
		ip := &InputParameters.InputParameters1D{
			NumPoints: 32, Family: family,
			BC: &InputParameters.BoundaryValues{Low: -1, High: 1},
		}
		rep, err := RunPoisson1D(ip)
		require.NoError(t, err)
		rep.Print()
		assert.Equal(t, 30, rep.Dim)
		assert.Less(t, rep.GridError, 5e-10, family)
		assert.Less(t, rep.OffGridError, 5e-10, family)
		assert.Less(t, rep.BoundaryError, 1e-13, family)
	}
}

func TestRunPoisson1DMappedDomain(t *testing.T) {
	ip := &InputParameters.InputParameters1D{
		NumPoints: 40, Family: "legendre", Domain: []float64{0, 2},
		BC: &InputParameters.BoundaryValues{Low: 0.5, High: 2},
	}
	rep, err := RunPoisson1D(ip)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.1, 1.2}, roundAll(rep.OffGridPoints))
	assert.Less(t, rep.GridError, 1e-8)
	assert.Less(t, rep.OffGridError, 1e-8)
	assert.Less(t, rep.BoundaryError, 1e-13)
}

func TestRunPoisson1DErrors(t *testing.T) {
	_, err := RunPoisson1D(&InputParameters.InputParameters1D{NumPoints: 16, Family: "c2c"})
	assert.ErrorIs(t, err, spectral.ErrUnsupportedFamily)
	_, err = RunPoisson1D(&InputParameters.InputParameters1D{NumPoints: 16, Family: "legendre"})
	assert.ErrorIs(t, err, spectral.ErrUnsupportedFamily)
}

func TestPoissonInputFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "poisson.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
Title: From File
NumPoints: 24
Family: chebyshev
`), 0o644))
	require.NoError(t, PoissonCmd.Flags().Set("inputConditionsFile", file))
	defer func() { _ = PoissonCmd.Flags().Set("inputConditionsFile", "") }()
	ip, err := poissonInput(PoissonCmd)
	require.NoError(t, err)
	assert.Equal(t, "From File", ip.Title)
	assert.Equal(t, 24, ip.NumPoints)
	require.NotNil(t, ip.BC)
	assert.Equal(t, InputParameters.BoundaryValues{Low: -1, High: 1}, *ip.BC)
}

func TestRunTransform(t *testing.T) {
	for _, tc := range []struct {
		N      int
		family spectral.Family
		opts   []spectral.Option
	}{
		{32, spectral.FourierComplex, nil},
		{32, spectral.FourierReal, nil},
		{33, spectral.FourierReal, nil},
		{32, spectral.Chebyshev, nil},
		{32, spectral.Legendre, nil},
		{32, spectral.Legendre, []spectral.Option{spectral.WithBoundary(-1, 1)}},
		{32, spectral.Chebyshev, []spectral.Option{spectral.WithBoundary(2, 3)}},
	} {
		opts := append(tc.opts, spectral.WithKernels(kernels.Resolve(kernels.Config{Backend: "parallel", Threads: 3})))
		B, err := spectral.New(tc.N, tc.family, opts...)
		require.NoError(t, err)
		rep, err := RunTransform(B, 7)
		require.NoError(t, err)
		assert.Less(t, rep.RoundTrip, 1e-10, rep.Basis)
		assert.Less(t, rep.ForwardFast, 1e-10, rep.Basis)
		assert.Less(t, rep.BackwardFast, 1e-10, rep.Basis)
		assert.Less(t, rep.KernelAgree, 1e-12, rep.Basis)
		assert.Equal(t, "parallel", rep.Backend)
	}
}

func TestKernelsCommand(t *testing.T) {
	rootCmd.SetArgs([]string{"kernels", "-O", "generic"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, kernels.GenericBackend, kernels.Default().Source(kernels.Contract))
	rootCmd.SetArgs([]string{"kernels", "-O", kernels.DefaultBackend})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, kernels.DefaultBackend, kernels.Default().Source(kernels.Contract))
}

func roundAll(x []float64) (r []float64) {
	for _, v := range x {
		r = append(r, float64(int(v*1e6+0.5))/1e6)
	}
	return
}

func TestConvergenceStudy(t *testing.T) {
	cs, err := RunConvergence("chebyshev", 12, 36, 8)
	require.NoError(t, err)
	cs.Print()
	assert.Equal(t, []int{12, 20, 28, 36}, cs.NumPTS)
	for i := 1; i < len(cs.GridMAX); i++ {
		assert.Less(t, cs.GridMAX[i], cs.GridMAX[i-1])
	}
	for _, r := range cs.Rates() {
		assert.Greater(t, r, 0.)
	}

	var buf bytes.Buffer
	require.NoError(t, cs.WriteCSV(&buf))
	studies, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Contains(t, studies, "chebyshev")
	assert.Equal(t, cs.NumPTS, studies["chebyshev"].NumPTS)
	assert.Equal(t, cs.GridMAX, studies["chebyshev"].GridMAX)

	_, err = RunConvergence("chebyshev", 2, 8, 1)
	assert.Error(t, err)
	_, err = ReadCSV(strings.NewReader("Title,N\nx,1\n"))
	assert.Error(t, err)
}
