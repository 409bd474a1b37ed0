// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package physfield implements the observable registry of spec.md §3/§4.8:
// named containers pairing a density field with its conjugate field.
package physfield

import (
	"github.com/cpmech/gosl/chk"
	"github.com/polyswift-go/scftcore/field"
	"github.com/polyswift-go/scftcore/psrand"
)

// PhysField pairs a density (observable) field φ with its conjugate field
// w (chemical potential, pressure, or electrostatic potential), plus the
// bookkeeping needed to reset and average it over a simulation run.
type PhysField struct {
	Name string

	dens *field.Field
	conj *field.Field

	// names of interactions, blocks, and solvents that contribute to this
	// field's density; purely bookkeeping for the domain build phase.
	Interactions []string
	Blocks       []string
	Solvents     []string

	densAvg   *field.Field
	avgCount  int
}

// New constructs a PhysField over the given density/conjugate field pair.
// Both must share the same decomposition.
func New(name string, dens, conj *field.Field) *PhysField {
	if len(dens.Data) != len(conj.Data) {
		chk.Panic("physfield %q: density and conjugate fields are non-conformant", name)
	}
	return &PhysField{Name: name, dens: dens, conj: conj, densAvg: dens.Clone()}
}

// Initialize seeds the conjugate field with a random fill and resets the
// running density average (spec.md §4.8 build-phase initialize call).
func (o *PhysField) Initialize(streams *psrand.Streams, lo, hi float64) {
	o.conj.FillUniform(streams, lo, hi)
	o.densAvg.Reset()
	o.avgCount = 0
}

// GetDensField returns the density (observable) field φ.
func (o *PhysField) GetDensField() *field.Field { return o.dens }

// GetConjgField returns the conjugate field w.
func (o *PhysField) GetConjgField() *field.Field { return o.conj }

// GetShiftedDensField returns φ - <φ> as a new field.
func (o *PhysField) GetShiftedDensField() *field.Field {
	shifted := o.dens.Clone()
	mean := o.dens.Mean()
	for i := range shifted.Data {
		shifted.Data[i] -= mean
	}
	return shifted
}

// CalcFieldProd returns φ·w elementwise as a new field.
func (o *PhysField) CalcFieldProd() *field.Field {
	prod := o.dens.Clone()
	prod.MulInPlace(o.conj)
	return prod
}

// AddToDensAverage accumulates the current density into the running
// average buffer; call once per recorded step.
func (o *PhysField) AddToDensAverage() {
	o.densAvg.AddInPlace(o.dens)
	o.avgCount++
}

// DensAverage returns the accumulated average (densAvg / avgCount), or the
// raw accumulator if no samples were recorded yet.
func (o *PhysField) DensAverage() *field.Field {
	if o.avgCount == 0 {
		return o.densAvg.Clone()
	}
	avg := o.densAvg.Clone()
	avg.Scale(1.0 / float64(o.avgCount))
	return avg
}

// ResetDensField zeros the density field, the first step of every
// simulation update (spec.md §2 control flow).
func (o *PhysField) ResetDensField() {
	o.dens.Reset()
}
