/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/notargets/gospectral/InputParameters"
	"github.com/notargets/gospectral/kernels"
	"github.com/notargets/gospectral/spectral"
)

// TransformCmd represents the transform command
var TransformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Round trip and agreement report for one basis",
	Long: `
Transforms random coefficients to point values and back, compares the fast
transforms with the Vandermonde reference, and compares the configured kernel
backend against the generic one.

gospectral transform --family chebyshev -N 64 -O parallel`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ip := &InputParameters.InputParameters1D{Title: "Transform"}
		ip.Family, _ = cmd.Flags().GetString("family")
		ip.NumPoints, _ = cmd.Flags().GetInt("N")
		ip.Quadrature, _ = cmd.Flags().GetString("quadrature")
		if bc, _ := cmd.Flags().GetBool("dirichlet"); bc {
			ip.BC = &InputParameters.BoundaryValues{Low: -1, High: 1}
		}
		ip.Print()
		var B spectral.Basis
		if B, err = ip.NewBasis(); err != nil {
			return
		}
		var rep TransformReport
		if rep, err = RunTransform(B, 1); err != nil {
			return
		}
		rep.Print()
		return
	},
}

func init() {
	rootCmd.AddCommand(TransformCmd)
	TransformCmd.Flags().StringP("family", "f", "chebyshev", "basis family: c2c, r2c, chebyshev or legendre")
	TransformCmd.Flags().IntP("N", "N", 32, "number of quadrature points")
	TransformCmd.Flags().StringP("quadrature", "q", "", "LG or GL for legendre, empty for the family default")
	TransformCmd.Flags().BoolP("dirichlet", "d", false, "use the Dirichlet basis with u(low) = -1, u(high) = 1")
}

type TransformReport struct {
	Basis        string
	RoundTrip    float64 // coefficients -> values -> coefficients
	ForwardFast  float64 // fast against reference forward
	BackwardFast float64
	KernelAgree  float64 // configured backend against generic
	Backend      string
	Forward      time.Duration
	Backward     time.Duration
	ForwardRef   time.Duration
	BackwardRef  time.Duration
}

func (rep TransformReport) Print() {
	fmt.Printf("%s\n", rep.Basis)
	fmt.Printf("%12.5e\t= round trip\n", rep.RoundTrip)
	fmt.Printf("%12.5e\t= forward fast vs reference\n", rep.ForwardFast)
	fmt.Printf("%12.5e\t= backward fast vs reference\n", rep.BackwardFast)
	fmt.Printf("%12.5e\t= %s vs generic kernels\n", rep.KernelAgree, rep.Backend)
	fmt.Printf("forward %v (reference %v), backward %v (reference %v)\n",
		rep.Forward, rep.ForwardRef, rep.Backward, rep.BackwardRef)
}

// RunTransform measures B on random coefficients drawn from seed. Errors are
// relative to the largest coefficient or value.
func RunTransform(B spectral.Basis, seed int64) (rep TransformReport, err error) {
	var (
		rng = rand.New(rand.NewSource(seed))
		uh  = spectral.NewFunction(B)
		t0  time.Time
	)
	for k := range uh.Data {
		uh.Data[k] = complex(rng.NormFloat64(), rng.NormFloat64())
	}
	if B.Family() == spectral.FourierReal {
		// mean and nyquist modes of a real signal are real
		uh.Data[0] = complex(real(uh.Data[0]), 0)
		if B.N()%2 == 0 {
			last := len(uh.Data) - 1
			uh.Data[last] = complex(real(uh.Data[last]), 0)
		}
	}
	rep.Basis = fmt.Sprintf("%s N = %d, %d modes, quadrature %s, %s", B.Family(), B.N(), B.Dim(),
		B.Quadrature(), B.Boundary())
	rep.Backend = B.Kernels().Config.Backend

	var u, uRef *spectral.Array
	t0 = time.Now()
	if u, err = B.Backward(uh, nil); err != nil {
		return
	}
	rep.Backward = time.Since(t0)
	t0 = time.Now()
	if uRef, err = B.BackwardReference(uh, nil); err != nil {
		return
	}
	rep.BackwardRef = time.Since(t0)
	rep.BackwardFast = maxRelDiff(u.Data, uRef.Data)

	var vh, vhRef *spectral.Function
	t0 = time.Now()
	if vh, err = B.Forward(u, nil); err != nil {
		return
	}
	rep.Forward = time.Since(t0)
	t0 = time.Now()
	if vhRef, err = B.ForwardReference(u, nil); err != nil {
		return
	}
	rep.ForwardRef = time.Since(t0)
	rep.RoundTrip = maxRelDiff(vh.Data, uh.Data)
	rep.ForwardFast = maxRelDiff(vh.Data, vhRef.Data)

	var (
		G    spectral.Basis
		opts = []spectral.Option{
			spectral.WithDomain(B.Domain().Low, B.Domain().High),
			spectral.WithKernels(kernels.Resolve(kernels.Config{Backend: kernels.GenericBackend})),
		}
	)
	if !B.Family().IsFourier() {
		opts = append(opts, spectral.WithQuadrature(B.Quadrature()), spectral.WithBoundaryCondition(B.Boundary()))
	}
	if G, err = spectral.New(B.N(), B.Family(), opts...); err != nil {
		return
	}
	var gRef *spectral.Array
	if gRef, err = G.BackwardReference(uh, nil); err != nil {
		return
	}
	rep.KernelAgree = maxRelDiff(uRef.Data, gRef.Data)
	return
}

func maxRelDiff(a, b []complex128) float64 {
	var diff, scale float64 = 0, 1
	for i := range b {
		diff = math.Max(diff, cmplx.Abs(a[i]-b[i]))
		scale = math.Max(scale, cmplx.Abs(b[i]))
	}
	return diff / scale
}
