// Package timeintegrator wraps hyperbolicmodule.Module.Step in the
// outer Runge-Kutta stage loop, grounded on
// original_source/source/time_integrator.h's TimeIntegrator (the
// CFLRecoveryStrategy/TimeSteppingScheme enums and step_ssprk_33's
// Butcher-tableau comment) and on Euler1D.(*EulerDFR).Run's hand-rolled
// SSPRK(3,3) stage arithmetic (teacher), generalized from gonum matrix ops
// to field.Vector-shaped [][]float64 state.
package timeintegrator

import (
	"errors"

	"github.com/notargets/idpfem/euler"
	"github.com/notargets/idpfem/hyperbolicmodule"
)

// CFLRecoveryStrategy mirrors the source's enum: none takes whatever dt
// Module.Step reports; bang_bang_control retries at half the offending dt
// whenever a restart is requested.
type CFLRecoveryStrategy int

const (
	None CFLRecoveryStrategy = iota
	BangBangControl
)

// Scheme mirrors the source's TimeSteppingScheme enum. Only SSPRK33 is
// implemented; the other two are named for interface completeness and
// return ErrUnsupportedScheme if selected, since the source itself only
// sketches their Butcher tableaux in a comment without a body.
type Scheme int

const (
	SSPRK33 Scheme = iota
	ERK33
	ERK43
)

// ErrUnsupportedScheme is returned by Step for a Scheme with no
// implementation.
var ErrUnsupportedScheme = errors.New("timeintegrator: scheme not implemented")

// Integrator drives a hyperbolicmodule.Module through one outer step.
type Integrator struct {
	Module   *hyperbolicmodule.Module
	Scheme   Scheme
	Recovery CFLRecoveryStrategy
}

// Step advances U by one outer time step and returns the dt taken.
func (ti *Integrator) Step(U [][]float64, onBoundary func(i int) (euler.BoundaryRule, euler.BoundaryData, []float64)) (float64, error) {
	switch ti.Scheme {
	case SSPRK33:
		return ti.stepSSPRK33(U, onBoundary)
	default:
		return 0, ErrUnsupportedScheme
	}
}

// stepSSPRK33 performs the three-stage, third-order strong-stability-
// preserving Runge-Kutta combination:
//
//	U1 = step(U)
//	U2 = 3/4 U + 1/4 step(U1)
//	U3 = 1/3 U + 2/3 step(U2)
//
// using Module.Step itself as each stage's nonlinear update (Module.Step
// already folds in its own dt selection and limiting, so stage blending
// here operates on whole updated states rather than on an explicit RHS
// evaluation — a direct consequence of Module.Step returning a fully
// limited next state instead of a bare right-hand side).
func (ti *Integrator) stepSSPRK33(U [][]float64, onBoundary func(i int) (euler.BoundaryRule, euler.BoundaryData, []float64)) (float64, error) {
	u0 := cloneState(U)

	// Stage 1: U1 = step(U).
	u1 := cloneState(U)
	dt, err := ti.stepWithRecovery(u1, onBoundary)
	if err != nil {
		return dt, err
	}

	// Stage 2: U2 = 3/4 U + 1/4 step(U1).
	stepped1 := cloneState(u1)
	if _, err := ti.stepWithRecovery(stepped1, onBoundary); err != nil {
		return dt, err
	}
	u2 := cloneState(u0)
	blend(u2, u0, stepped1, 0.75, 0.25)

	// Stage 3: U3 = 1/3 U + 2/3 step(U2).
	stepped2 := cloneState(u2)
	if _, err := ti.stepWithRecovery(stepped2, onBoundary); err != nil {
		return dt, err
	}
	u3 := cloneState(u0)
	blend(u3, u0, stepped2, 1.0/3.0, 2.0/3.0)

	for i := range U {
		copy(U[i], u3[i])
	}
	return dt, nil
}

// stepWithRecovery retries Module.Step at a halved CFL when a restart is
// requested and Recovery==BangBangControl, mirroring the source's
// bang_bang_control strategy name.
func (ti *Integrator) stepWithRecovery(U [][]float64, onBoundary func(i int) (euler.BoundaryRule, euler.BoundaryData, []float64)) (float64, error) {
	dt, err := ti.Module.Step(U, onBoundary)
	if err == nil || ti.Recovery != BangBangControl {
		return dt, err
	}
	original := ti.Module.Cfl
	ti.Module.Cfl = original / 2
	defer func() { ti.Module.Cfl = original }()
	return ti.Module.Step(U, onBoundary)
}

func cloneState(U [][]float64) [][]float64 {
	out := make([][]float64, len(U))
	for i, u := range U {
		out[i] = append([]float64{}, u...)
	}
	return out
}

// blend overwrites dst := a*wa + b*wb component-wise.
func blend(dst, a, b [][]float64, wa, wb float64) {
	for i := range dst {
		for c := range dst[i] {
			dst[i][c] = wa*a[i][c] + wb*b[i][c]
		}
	}
}
