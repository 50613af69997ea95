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
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gospectral/InputParameters"
	"github.com/notargets/gospectral/forms"
	"github.com/notargets/gospectral/spectral"
)

// PoissonCmd represents the poisson1d command
var PoissonCmd = &cobra.Command{
	Use:   "poisson1d",
	Short: "Dirichlet Poisson problem with a manufactured solution",
	Long: `
Solves u'' = f on a Chebyshev or Legendre Dirichlet basis, where
u = sin(4 pi X)(X^2 - 1) + a(1 - X)/2 + b(1 + X)/2 in reference coordinate X,
and reports the error on the mesh, off the mesh and at the boundary.
a is the value at the low end of the domain (--low) and b at the high end
(--high).

gospectral poisson1d --family legendre -N 32`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var ip *InputParameters.InputParameters1D
		if ip, err = poissonInput(cmd); err != nil {
			return
		}
		ip.Print()
		var rep PoissonReport
		if rep, err = RunPoisson1D(ip); err != nil {
			return
		}
		rep.Print()
		return
	},
}

func init() {
	rootCmd.AddCommand(PoissonCmd)
	PoissonCmd.Flags().StringP("family", "f", "legendre", "basis family: chebyshev or legendre")
	PoissonCmd.Flags().IntP("N", "N", 32, "number of quadrature points, the basis has N-2 modes")
	PoissonCmd.Flags().Float64("low", -1, "Dirichlet value at the low end of the domain")
	PoissonCmd.Flags().Float64("high", 1, "Dirichlet value at the high end of the domain")
	PoissonCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file of run parameters, overrides the flags")
}

func poissonInput(cmd *cobra.Command) (ip *InputParameters.InputParameters1D, err error) {
	ip = &InputParameters.InputParameters1D{Title: "Poisson 1D"}
	var file string
	if file, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
		return
	}
	if len(file) != 0 {
		var data []byte
		if data, err = os.ReadFile(file); err != nil {
			return
		}
		if err = ip.Parse(data); err != nil {
			return
		}
	} else {
		ip.Family, _ = cmd.Flags().GetString("family")
		ip.NumPoints, _ = cmd.Flags().GetInt("N")
		ip.BC = &InputParameters.BoundaryValues{}
		ip.BC.Low, _ = cmd.Flags().GetFloat64("low")
		ip.BC.High, _ = cmd.Flags().GetFloat64("high")
	}
	if ip.BC == nil {
		ip.BC = &InputParameters.BoundaryValues{Low: -1, High: 1}
	}
	return
}

type PoissonReport struct {
	Family        spectral.Family
	N, Dim        int
	GridError     float64 // max norm over the mesh
	OffGridError  float64 // max norm over OffGridPoints
	BoundaryError float64
	OffGridPoints []float64
}

func (rep PoissonReport) Print() {
	fmt.Printf("%s N = %d (%d modes)\n", rep.Family, rep.N, rep.Dim)
	fmt.Printf("%12.5e\t= max error on mesh\n", rep.GridError)
	fmt.Printf("%12.5e\t= max error at x = %v\n", rep.OffGridError, rep.OffGridPoints)
	fmt.Printf("%12.5e\t= max error at boundary\n", rep.BoundaryError)
}

// Manufactured returns u = sin(4 pi X)(X^2-1) + a(1-X)/2 + b(1+X)/2 with X
// the reference coordinate of x in dom, and its second derivative in x.
// u(dom.Low) = a and u(dom.High) = b, matching WithBoundary(low, high); a
// lifting written as a(X+1)/2 puts a at the high end instead.
func Manufactured(dom spectral.Domain, a, b float64) (u, d2u func(x float64) float64) {
	var (
		k   = 4 * math.Pi
		fac = 2 / dom.Length()
		X   = func(x float64) float64 { return fac*(x-dom.Low) - 1 }
	)
	u = func(x float64) float64 {
		r := X(x)
		return math.Sin(k*r)*(r*r-1) + a*(1-r)/2 + b*(1+r)/2
	}
	d2u = func(x float64) float64 {
		r := X(x)
		return fac * fac * (-k*k*math.Sin(k*r)*(r*r-1) + 4*k*r*math.Cos(k*r) + 2*math.Sin(k*r))
	}
	return
}

// RunPoisson1D assembles and solves the manufactured problem. Chebyshev uses
// the (u”, v) form, Legendre the (u', v') form with the sign of f flipped.
func RunPoisson1D(ip *InputParameters.InputParameters1D) (rep PoissonReport, err error) {
	var (
		B spectral.Basis
		A *forms.Operator
	)
	if B, err = ip.NewBasis(); err != nil {
		return
	}
	if B.Family().IsFourier() || B.Boundary().Kind != spectral.Dirichlet {
		err = fmt.Errorf("poisson1d needs a dirichlet chebyshev or legendre basis, have %s %s: %w",
			B.Family(), B.Boundary(), spectral.ErrUnsupportedFamily)
		return
	}
	var (
		dom    = B.Domain()
		bc     = B.Boundary()
		ue, fe = Manufactured(dom, bc.Low, bc.High)
		u      = forms.TrialFunction(B)
		v      = forms.TestFunction(B)
		fj     = spectral.NewArrayFunc(B, pointwise(fe))
	)
	fh, err := forms.InnerArray(v, fj, nil)
	if err != nil {
		return
	}
	switch B.Family() {
	case spectral.Chebyshev:
		A, err = forms.Inner(v, forms.Div(forms.Grad(u)))
	default:
		A, err = forms.Inner(forms.Grad(v), forms.Grad(u))
		fh.Scale(-1)
	}
	if err != nil {
		return
	}
	log.WithFields(log.Fields{"family": B.Family(), "nnz": A.NNZ()}).Debug("operator assembled")
	var uh *spectral.Function
	if uh, err = A.Solve(fh); err != nil {
		return
	}
	uj, err := uh.Backward(nil)
	if err != nil {
		return
	}
	mesh := B.Mesh()
	rep = PoissonReport{
		Family: B.Family(), N: B.N(), Dim: B.Dim(),
		GridError: floats.Distance(uj.Real(), pointwise(ue)(mesh), math.Inf(1)),
	}
	for _, X := range []float64{0.1, 0.2} {
		rep.OffGridPoints = append(rep.OffGridPoints, dom.Low+(X+1)*dom.Length()/2)
	}
	if rep.OffGridError, err = evalError(uh, rep.OffGridPoints, pointwise(ue)(rep.OffGridPoints)); err != nil {
		return
	}
	rep.BoundaryError, err = evalError(uh, []float64{dom.Low, dom.High}, []float64{bc.Low, bc.High})
	return
}

func evalError(uh *spectral.Function, x, want []float64) (e float64, err error) {
	var vals []complex128
	if vals, err = uh.Eval(x); err != nil {
		return
	}
	got := make([]float64, len(vals))
	for i, v := range vals {
		got[i] = real(v)
	}
	e = floats.Distance(got, want, math.Inf(1))
	return
}

func pointwise(f func(float64) float64) func([]float64) []float64 {
	return func(x []float64) (v []float64) {
		v = make([]float64, len(x))
		for i, xi := range x {
			v[i] = f(xi)
		}
		return
	}
}
