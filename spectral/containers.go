package spectral

import (
	"fmt"
)

// Array holds values at the quadrature points of one basis.
type Array struct {
	Basis Basis
	Data  []complex128
}

// Function holds the modal coefficients of one basis, Basis.Dim() of them.
type Function struct {
	Basis Basis
	Data  []complex128
}

// NewArray binds data to b, allocating when no buffer is given.
func NewArray(b Basis, data ...[]complex128) (a *Array) {
	a = &Array{Basis: b}
	if len(data) != 0 {
		a.Data = data[0]
	} else {
		a.Data = make([]complex128, b.N())
	}
	return
}

// NewArrayFunc samples f at the physical quadrature points of b.
func NewArrayFunc(b Basis, f func(x []float64) []float64) (a *Array) {
	var (
		x    = b.Mesh()
		vals = f(x)
	)
	if len(vals) != len(x) {
		panic(fmt.Errorf("function returned %d values for %d points", len(vals), len(x)))
	}
	a = NewArray(b)
	for i, v := range vals {
		a.Data[i] = complex(v, 0)
	}
	return
}

func NewFunction(b Basis, data ...[]complex128) (f *Function) {
	f = &Function{Basis: b}
	if len(data) != 0 {
		f.Data = data[0]
	} else {
		f.Data = make([]complex128, b.Dim())
	}
	return
}

func (a *Array) Forward(out *Function) (*Function, error) { return a.Basis.Forward(a, out) }

// Real returns the real parts of the values.
func (a *Array) Real() (r []float64) {
	r = make([]float64, len(a.Data))
	for i, v := range a.Data {
		r[i] = real(v)
	}
	return
}

func (a *Array) Copy() *Array {
	return NewArray(a.Basis, append([]complex128(nil), a.Data...))
}

func (f *Function) Backward(out *Array) (*Array, error) { return f.Basis.Backward(f, out) }

func (f *Function) Eval(x []float64) ([]complex128, error) { return f.Basis.Eval(x, f) }

func (f *Function) Copy() *Function {
	return NewFunction(f.Basis, append([]complex128(nil), f.Data...))
}

// Scale multiplies every coefficient by s in place.
func (f *Function) Scale(s complex128) *Function {
	for i := range f.Data {
		f.Data[i] *= s
	}
	return f
}

// SameGrid fails unless a and b share one family, point count, quadrature
// and domain, so point values of one are point values of the other.
func SameGrid(a, b Basis) error {
	if a == b {
		return nil
	}
	if a.Family() != b.Family() || a.N() != b.N() || a.Quadrature() != b.Quadrature() || a.Domain() != b.Domain() {
		return fmt.Errorf("%s N=%d %s on %v and %s N=%d %s on %v: %w",
			a.Family(), a.N(), a.Quadrature(), a.Domain(),
			b.Family(), b.N(), b.Quadrature(), b.Domain(), ErrUnsupportedFamily)
	}
	return nil
}

// SameSpace is SameGrid plus an identical boundary condition, so expansion
// coefficients of one basis describe the same function in the other.
func SameSpace(a, b Basis) error {
	if err := SameGrid(a, b); err != nil {
		return err
	}
	if a.Boundary() != b.Boundary() {
		return fmt.Errorf("boundary %v and %v: %w", a.Boundary(), b.Boundary(), ErrUnsupportedFamily)
	}
	return nil
}

// checkArray fails fast on a nil array, a foreign grid or a wrong length.
func checkArray(b Basis, u *Array) error {
	if u == nil {
		return fmt.Errorf("nil array: %w", ErrShapeMismatch)
	}
	if u.Basis != nil && u.Basis.Family() != b.Family() {
		return fmt.Errorf("array of %s used with %s: %w", u.Basis.Family(), b.Family(), ErrUnsupportedFamily)
	}
	if len(u.Data) != b.N() {
		return fmt.Errorf("array length %d, basis has %d points: %w", len(u.Data), b.N(), ErrShapeMismatch)
	}
	if u.Basis != nil {
		return SameGrid(u.Basis, b)
	}
	return nil
}

func checkFunction(b Basis, uh *Function) error {
	if uh == nil {
		return fmt.Errorf("nil function: %w", ErrShapeMismatch)
	}
	if uh.Basis != nil && uh.Basis.Family() != b.Family() {
		return fmt.Errorf("function of %s used with %s: %w", uh.Basis.Family(), b.Family(), ErrUnsupportedFamily)
	}
	if len(uh.Data) != b.Dim() {
		return fmt.Errorf("function length %d, basis has %d modes: %w", len(uh.Data), b.Dim(), ErrShapeMismatch)
	}
	if uh.Basis != nil {
		return SameSpace(uh.Basis, b)
	}
	return nil
}

func arrayOut(b Basis, out *Array) (*Array, error) {
	if out == nil {
		return NewArray(b), nil
	}
	if err := checkArray(b, out); err != nil {
		return nil, err
	}
	return out, nil
}

func functionOut(b Basis, out *Function) (*Function, error) {
	if out == nil {
		return NewFunction(b), nil
	}
	if err := checkFunction(b, out); err != nil {
		return nil, err
	}
	return out, nil
}
