package utils

import (
	"fmt"
	"sort"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// DOK is a dictionary-of-keys builder used while assembling an operator.
type DOK struct {
	M        *sparse.DOK
	readOnly bool
	name     string
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{
		M:    sparse.NewDOK(nr, nc),
		name: "unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// Dims and At minimally satisfy the read side of mat.Matrix.
func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix       { return m.M.T() }

func (m DOK) Set(i, j int, val float64) DOK { // Changes receiver
	m.checkWritable()
	m.M.Set(i, j, val)
	return m
}

func (m *DOK) SetReadOnly(name ...string) DOK {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

func (m DOK) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

func (m DOK) ToCSR() CSR {
	return CSR{
		M:    m.M.ToCSR(),
		name: m.name,
	}
}

// CSR is the compressed form an assembled operator is stored in. It is read
// only once built.
type CSR struct {
	M    *sparse.CSR
	name string
}

func (m CSR) Dims() (r, c int)    { return m.M.Dims() }
func (m CSR) At(i, j int) float64 { return m.M.At(i, j) }
func (m CSR) T() mat.Matrix       { return m.M.T() }
func (m CSR) NNZ() int            { return m.M.NNZ() }
func (m CSR) Name() string        { return m.name }

func (m CSR) DoNonZero(fn func(i, j int, v float64)) {
	m.M.DoNonZero(fn)
}

// MulVec computes dst = M x, dst is overwritten.
func (m CSR) MulVec(dst, x []float64) {
	var (
		nr, nc = m.Dims()
	)
	if len(dst) != nr || len(x) != nc {
		panic(fmt.Errorf("CSR MulVec dimension mismatch: %d x %d, len(dst) = %d, len(x) = %d",
			nr, nc, len(dst), len(x)))
	}
	for i := range dst {
		dst[i] = 0
	}
	m.M.DoNonZero(func(i, j int, v float64) {
		dst[i] += v * x[j]
	})
}

// Diagonals groups the non zeros of M by offset j-i, each diagonal ordered
// by row.
func (m CSR) Diagonals() (diags map[int][]float64) {
	type entry struct {
		i int
		v float64
	}
	var (
		byOffset = make(map[int][]entry)
	)
	m.M.DoNonZero(func(i, j int, v float64) {
		byOffset[j-i] = append(byOffset[j-i], entry{i, v})
	})
	diags = make(map[int][]float64, len(byOffset))
	for k, entries := range byOffset {
		sort.Slice(entries, func(a, b int) bool { return entries[a].i < entries[b].i })
		d := make([]float64, len(entries))
		for n, e := range entries {
			d[n] = e.v
		}
		diags[k] = d
	}
	return
}
