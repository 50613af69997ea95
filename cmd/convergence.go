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
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/notargets/gospectral/InputParameters"
)

// ConvergenceCmd represents the convergence command
var ConvergenceCmd = &cobra.Command{
	Use:   "convergence",
	Short: "Error against N for the Poisson problem",
	Long: `
Solves the poisson1d problem for a range of N, prints the max norm errors and
the exponential decay rate between successive N, optionally writing a CSV.

gospectral convergence --family chebyshev --nMin 8 --nMax 48 --step 8 --csvFile conv.csv`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			family, _ = cmd.Flags().GetString("family")
			nMin, _   = cmd.Flags().GetInt("nMin")
			nMax, _   = cmd.Flags().GetInt("nMax")
			step, _   = cmd.Flags().GetInt("step")
			file, _   = cmd.Flags().GetString("csvFile")
			cs        *ConvergenceStudy
		)
		if cs, err = RunConvergence(family, nMin, nMax, step); err != nil {
			return
		}
		cs.Print()
		if len(file) == 0 {
			return
		}
		var f *os.File
		if f, err = os.Create(file); err != nil {
			return
		}
		defer f.Close()
		return cs.WriteCSV(f)
	},
}

func init() {
	rootCmd.AddCommand(ConvergenceCmd)
	ConvergenceCmd.Flags().StringP("family", "f", "legendre", "basis family: chebyshev or legendre")
	ConvergenceCmd.Flags().Int("nMin", 8, "smallest N")
	ConvergenceCmd.Flags().Int("nMax", 40, "largest N")
	ConvergenceCmd.Flags().Int("step", 4, "increment of N")
	ConvergenceCmd.Flags().String("csvFile", "", "write the study to this CSV file")
}

type ConvergenceStudy struct {
	Title           string
	NumPTS          []int
	GridMAX, OffMAX []float64
	BoundaryMAX     []float64
}

func NewConvergenceStudy(title string) *ConvergenceStudy {
	return &ConvergenceStudy{Title: title}
}

func (cs *ConvergenceStudy) Add(rep PoissonReport) {
	cs.NumPTS = append(cs.NumPTS, rep.N)
	cs.GridMAX = append(cs.GridMAX, rep.GridError)
	cs.OffMAX = append(cs.OffMAX, rep.OffGridError)
	cs.BoundaryMAX = append(cs.BoundaryMAX, rep.BoundaryError)
}

// Rates returns -log(e[i+1]/e[i])/(N[i+1]-N[i]) of the mesh error, the
// exponent of spectral convergence e ~ exp(-rate N).
func (cs *ConvergenceStudy) Rates() (rates []float64) {
	for i := 1; i < len(cs.NumPTS); i++ {
		dn := float64(cs.NumPTS[i] - cs.NumPTS[i-1])
		rates = append(rates, -math.Log(cs.GridMAX[i]/cs.GridMAX[i-1])/dn)
	}
	return
}

func (cs *ConvergenceStudy) Print() {
	fmt.Printf("Title = %s\n", cs.Title)
	rates := cs.Rates()
	for i := range cs.NumPTS {
		rate := math.NaN()
		if i > 0 {
			rate = rates[i-1]
		}
		fmt.Printf("%d, %12.5e, %12.5e, %12.5e, %8.4f\n",
			cs.NumPTS[i], cs.GridMAX[i], cs.OffMAX[i], cs.BoundaryMAX[i], rate)
	}
}

func (cs *ConvergenceStudy) WriteCSV(w io.Writer) (err error) {
	cw := csv.NewWriter(w)
	if err = cw.Write([]string{"Title", "N", "GridMAX", "OffMAX", "BoundaryMAX"}); err != nil {
		return
	}
	for i, n := range cs.NumPTS {
		rec := []string{cs.Title, strconv.Itoa(n),
			strconv.FormatFloat(cs.GridMAX[i], 'e', -1, 64),
			strconv.FormatFloat(cs.OffMAX[i], 'e', -1, 64),
			strconv.FormatFloat(cs.BoundaryMAX[i], 'e', -1, 64),
		}
		if err = cw.Write(rec); err != nil {
			return
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads studies written by WriteCSV, keyed by title.
func ReadCSV(r io.Reader) (studies map[string]*ConvergenceStudy, err error) {
	var (
		records [][]string
		ok      bool
		cs      *ConvergenceStudy
	)
	studies = make(map[string]*ConvergenceStudy)
	if records, err = csv.NewReader(bufio.NewReader(r)).ReadAll(); err != nil {
		return
	}
	for i, rec := range records {
		if i == 0 {
			continue
		}
		if len(rec) != 5 {
			return nil, fmt.Errorf("record %d has %d fields, want 5", i, len(rec))
		}
		var (
			rep  PoissonReport
			vals [3]float64
		)
		if rep.N, err = strconv.Atoi(rec[1]); err != nil {
			return nil, err
		}
		for k := range vals {
			if vals[k], err = strconv.ParseFloat(rec[2+k], 64); err != nil {
				return nil, err
			}
		}
		rep.GridError, rep.OffGridError, rep.BoundaryError = vals[0], vals[1], vals[2]
		if cs, ok = studies[rec[0]]; !ok {
			cs = NewConvergenceStudy(rec[0])
			studies[rec[0]] = cs
		}
		cs.Add(rep)
	}
	return
}

// RunConvergence solves the manufactured problem for N = nMin, nMin+step, ...
func RunConvergence(family string, nMin, nMax, step int) (cs *ConvergenceStudy, err error) {
	if step < 1 || nMin < 3 || nMax < nMin {
		return nil, fmt.Errorf("need 3 <= nMin <= nMax and step >= 1, have %d, %d, %d", nMin, nMax, step)
	}
	cs = NewConvergenceStudy(family)
	for n := nMin; n <= nMax; n += step {
		var rep PoissonReport
		ip := &InputParameters.InputParameters1D{
			NumPoints: n, Family: family,
			BC: &InputParameters.BoundaryValues{Low: -1, High: 1},
		}
		if rep, err = RunPoisson1D(ip); err != nil {
			return nil, err
		}
		cs.Add(rep)
	}
	return
}
