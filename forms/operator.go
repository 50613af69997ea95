package forms

import (
	"fmt"
	"math"
	"sort"

	spsolve "github.com/edp1096/sparse"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gospectral/spectral"
	"github.com/notargets/gospectral/utils"
)

// Operator is an assembled bilinear form. Rows follow the test basis and
// columns the trial basis; the real and imaginary parts are stored as
// separate CSR matrices. When the trial basis carries a lifting function,
// Lift holds the form applied to it.
type Operator struct {
	Test, Trial spectral.Basis
	re, im      utils.CSR
	lift        []complex128
}

func newOperator(test, trial spectral.Basis, M *mat.CDense, tol float64, lift []complex128) *Operator {
	var (
		nr, nc = M.Dims()
		re     = utils.NewDOK(nr, nc)
		im     = utils.NewDOK(nr, nc)
	)
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			v := M.At(i, j)
			if math.Abs(real(v)) > tol {
				re.Set(i, j, real(v))
			}
			if math.Abs(imag(v)) > tol {
				im.Set(i, j, imag(v))
			}
		}
	}
	re.SetReadOnly("operator real part")
	im.SetReadOnly("operator imaginary part")
	return &Operator{
		Test:  test,
		Trial: trial,
		re:    re.ToCSR(),
		im:    im.ToCSR(),
		lift:  lift,
	}
}

func (op *Operator) Dims() (r, c int) { return op.re.Dims() }

func (op *Operator) At(i, j int) complex128 {
	return complex(op.re.At(i, j), op.im.At(i, j))
}

// NNZ counts the structurally non zero entries.
func (op *Operator) NNZ() (n int) {
	op.nonZero(func(int, int, complex128) { n++ })
	return
}

// nonZero visits the union of the real and imaginary patterns.
func (op *Operator) nonZero(fn func(i, j int, v complex128)) {
	type key struct{ i, j int }
	var (
		entries = make(map[key]complex128)
	)
	op.re.DoNonZero(func(i, j int, v float64) { entries[key{i, j}] += complex(v, 0) })
	op.im.DoNonZero(func(i, j int, v float64) { entries[key{i, j}] += complex(0, v) })
	keys := make([]key, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].i != keys[b].i {
			return keys[a].i < keys[b].i
		}
		return keys[a].j < keys[b].j
	})
	for _, k := range keys {
		fn(k.i, k.j, entries[k])
	}
}

// Lift returns a copy of the lifting column, nil without one.
func (op *Operator) Lift() []complex128 {
	if op.lift == nil {
		return nil
	}
	return append([]complex128(nil), op.lift...)
}

// Dense expands the operator, used for printing and inspection.
func (op *Operator) Dense() *mat.CDense {
	nr, nc := op.Dims()
	D := mat.NewCDense(nr, nc, nil)
	op.nonZero(func(i, j int, v complex128) { D.Set(i, j, v) })
	return D
}

// Diagonals groups the entries by offset j-i, each ordered by row.
func (op *Operator) Diagonals() (diags map[int][]complex128) {
	diags = make(map[int][]complex128)
	op.nonZero(func(i, j int, v complex128) {
		diags[j-i] = append(diags[j-i], v)
	})
	return
}

// Matvec computes out = A c for c in the trial basis, out in the test basis.
func (op *Operator) Matvec(c *spectral.Function, out *spectral.Function) (*spectral.Function, error) {
	nr, nc := op.Dims()
	if c == nil || len(c.Data) != nc {
		return nil, fmt.Errorf("operator has %d columns: %w", nc, spectral.ErrShapeMismatch)
	}
	if c.Basis != nil {
		if err := spectral.SameSpace(c.Basis, op.Trial); err != nil {
			return nil, err
		}
	}
	if out == nil {
		out = spectral.NewFunction(op.Test)
	} else if len(out.Data) != nr {
		return nil, fmt.Errorf("operator has %d rows, output has %d: %w", nr, len(out.Data), spectral.ErrShapeMismatch)
	} else if out.Basis != nil {
		if err := spectral.SameGrid(out.Basis, op.Test); err != nil {
			return nil, err
		}
	}
	var (
		cr, ci = split(c.Data)
		rr     = make([]float64, nr)
		ri     = make([]float64, nr)
		ir     = make([]float64, nr)
		ii     = make([]float64, nr)
	)
	op.re.MulVec(rr, cr)
	op.re.MulVec(ri, ci)
	op.im.MulVec(ir, cr)
	op.im.MulVec(ii, ci)
	for i := range out.Data {
		out.Data[i] = complex(rr[i]-ii[i], ri[i]+ir[i])
	}
	return out, nil
}

// Apply is the full form applied to an expansion, A c plus the lifting column.
func (op *Operator) Apply(c *spectral.Function, out *spectral.Function) (*spectral.Function, error) {
	out, err := op.Matvec(c, out)
	if err != nil {
		return nil, err
	}
	for i, v := range op.lift {
		out.Data[i] += v
	}
	return out, nil
}

// Sum adds operators assembled over the same pair of bases, lifting columns
// included.
func Sum(ops ...*Operator) (*Operator, error) {
	if len(ops) == 0 {
		return nil, fmt.Errorf("sum of no operators: %w", ErrInvalidForm)
	}
	var (
		first  = ops[0]
		nr, nc = first.Dims()
		M      = mat.NewCDense(nr, nc, nil)
		lift   []complex128
	)
	for _, op := range ops {
		if err := spectral.SameGrid(first.Test, op.Test); err != nil {
			return nil, err
		}
		if err := spectral.SameSpace(first.Trial, op.Trial); err != nil {
			return nil, err
		}
		if r, c := op.Dims(); r != nr || c != nc {
			return nil, fmt.Errorf("sum of %d x %d and %d x %d: %w", nr, nc, r, c, spectral.ErrShapeMismatch)
		}
		op.nonZero(func(i, j int, v complex128) { M.Set(i, j, M.At(i, j)+v) })
		if op.lift != nil {
			if lift == nil {
				lift = make([]complex128, nr)
			}
			for i, v := range op.lift {
				lift[i] += v
			}
		}
	}
	var maxAbs float64
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			v := M.At(i, j)
			maxAbs = math.Max(maxAbs, math.Max(math.Abs(real(v)), math.Abs(imag(v))))
		}
	}
	return newOperator(first.Test, first.Trial, M, maxAbs*utils.DROPTOL, lift), nil
}

// Solve returns c in the trial basis with A c + lift = rhs. The system is
// factored with a sparse LU; complex operators are solved through the real
// equivalent system [[Re, -Im], [Im, Re]].
func (op *Operator) Solve(rhs *spectral.Function) (uh *spectral.Function, err error) {
	nr, nc := op.Dims()
	if nr != nc {
		return nil, fmt.Errorf("operator is %d x %d: %w", nr, nc, spectral.ErrSingularOperator)
	}
	if rhs == nil || len(rhs.Data) != nr {
		return nil, fmt.Errorf("operator has %d rows: %w", nr, spectral.ErrShapeMismatch)
	}
	if rhs.Basis != nil {
		if err = spectral.SameGrid(rhs.Basis, op.Test); err != nil {
			return
		}
	}
	if err = op.structurallyNonsingular(); err != nil {
		return
	}
	b := append([]complex128(nil), rhs.Data...)
	for i, v := range op.lift {
		b[i] -= v
	}
	var (
		isComplex = op.im.NNZ() > 0
		size      = nr
	)
	if isComplex {
		size = 2 * nr
	}
	config := &spsolve.Configuration{
		Real:                    true,
		Complex:                 false,
		SeparatedComplexVectors: false,
		Expandable:              true,
		Translate:               false,
		ModifiedNodal:           false,
		TiesMultiplier:          5,
		PrinterWidth:            140,
		Annotate:                0,
	}
	A, err := spsolve.Create(int64(size), config)
	if err != nil {
		return nil, fmt.Errorf("creating sparse system: %v", err)
	}
	defer A.Destroy()
	// 1-based indices
	op.re.DoNonZero(func(i, j int, v float64) {
		A.GetElement(int64(i+1), int64(j+1)).Real += v
		if isComplex {
			A.GetElement(int64(i+nr+1), int64(j+nr+1)).Real += v
		}
	})
	op.im.DoNonZero(func(i, j int, v float64) {
		A.GetElement(int64(i+1), int64(j+nr+1)).Real -= v
		A.GetElement(int64(i+nr+1), int64(j+1)).Real += v
	})
	if err = A.Factor(); err != nil {
		return nil, fmt.Errorf("factorization: %v: %w", err, spectral.ErrSingularOperator)
	}
	solve := func(r []float64) ([]float64, error) {
		rhs1 := make([]float64, size+1)
		copy(rhs1[1:], r)
		x, err := A.Solve(rhs1)
		if err != nil {
			return nil, fmt.Errorf("sparse solve: %v: %w", err, spectral.ErrSingularOperator)
		}
		return x[1 : size+1], nil
	}
	br, bi := split(b)
	uh = spectral.NewFunction(op.Trial)
	if isComplex {
		x, err := solve(append(br, bi...))
		if err != nil {
			return nil, err
		}
		for k := range uh.Data {
			uh.Data[k] = complex(x[k], x[k+nr])
		}
	} else {
		xr, err := solve(br)
		if err != nil {
			return nil, err
		}
		xi, err := solve(bi)
		if err != nil {
			return nil, err
		}
		for k := range uh.Data {
			uh.Data[k] = complex(xr[k], xi[k])
		}
	}
	if !utils.IsFinite(uh.Data) {
		return nil, fmt.Errorf("non finite solution: %w", spectral.ErrSingularOperator)
	}
	log.WithFields(log.Fields{"size": size, "complex": isComplex}).Debug("operator solved")
	return uh, nil
}

// structurallyNonsingular fails when a row or column has no entries.
func (op *Operator) structurallyNonsingular() error {
	nr, nc := op.Dims()
	var (
		rows = make([]bool, nr)
		cols = make([]bool, nc)
	)
	op.nonZero(func(i, j int, _ complex128) { rows[i], cols[j] = true, true })
	for i, ok := range rows {
		if !ok {
			return fmt.Errorf("row %d is empty: %w", i, spectral.ErrSingularOperator)
		}
	}
	for j, ok := range cols {
		if !ok {
			return fmt.Errorf("column %d is empty: %w", j, spectral.ErrSingularOperator)
		}
	}
	return nil
}

func split(c []complex128) (re, im []float64) {
	re, im = make([]float64, len(c)), make([]float64, len(c))
	for i, v := range c {
		re[i], im[i] = real(v), imag(v)
	}
	return
}
