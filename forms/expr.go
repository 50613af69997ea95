// Package forms describes weak forms over spectral bases and assembles them
// into operators.
package forms

import (
	"errors"
	"fmt"

	"github.com/notargets/gospectral/spectral"
)

// ErrInvalidForm is returned for forms that are not one test function paired
// with one trial function.
var ErrInvalidForm = errors.New("invalid form")

type argKind uint8

const (
	testArg argKind = iota
	trialArg
)

// Expr is a test or trial function with a derivative order and a scalar
// multiplier. It carries no numeric data.
type Expr struct {
	basis spectral.Basis
	kind  argKind
	order int
	scale complex128
}

func TestFunction(b spectral.Basis) Expr {
	return Expr{basis: b, kind: testArg, scale: 1}
}

func TrialFunction(b spectral.Basis) Expr {
	return Expr{basis: b, kind: trialArg, scale: 1}
}

// Grad is d/dx in one dimension.
func Grad(e Expr) Expr { return Dx(e, 1) }

// Div is d/dx in one dimension, Div(Grad(u)) is u”.
func Div(e Expr) Expr { return Dx(e, 1) }

// Dx differentiates n more times.
func Dx(e Expr, n int) Expr {
	e.order += n
	return e
}

// Scale multiplies the form the expression takes part in by s.
func Scale(e Expr, s complex128) Expr {
	e.scale *= s
	return e
}

func (e Expr) Basis() spectral.Basis { return e.basis }
func (e Expr) Order() int            { return e.order }
func (e Expr) IsTest() bool          { return e.kind == testArg }

func (e Expr) String() string {
	name := "u"
	if e.kind == testArg {
		name = "v"
	}
	s := name
	for i := 0; i < e.order; i++ {
		s = "d(" + s + ")"
	}
	if e.scale != 1 {
		s = fmt.Sprintf("%v*%s", e.scale, s)
	}
	return s
}

func (e Expr) validate() error {
	if e.basis == nil {
		return fmt.Errorf("%s has no basis: %w", e, ErrInvalidForm)
	}
	if e.order < 0 {
		return fmt.Errorf("%s has negative derivative order: %w", e, ErrInvalidForm)
	}
	return nil
}
