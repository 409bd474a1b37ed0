// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package interact

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/polyswift-go/scftcore/field"
)

// Flory implements the pairwise Flory-Huggins interaction of spec.md
// §4.4: ∂F/∂φ_A = χN·(φ_B - <φ_B>·(1-φ_wall)), and symmetrically for B,
// with local free energy χN·φ_A·φ_B minus an optional disorder term.
type Flory struct {
	NameStr  string
	FieldA   string
	FieldB   string
	PhiA     *field.Field
	PhiB     *field.Field
	PhiWall  *field.Field // nil if no constraint present
	ChiN     *field.Field // scalar field, uniform or spatially varying
	ChiFunc  fun.Func     // optional time/space ramp; mutually exclusive with a constant ChiN fill
	EffVol   float64      // Π N_i - V_constraint
}

var _ Interaction = (*Flory)(nil)

// NewFlory constructs a Flory interaction between two monomer density
// fields, with an optional constraint (wall) mask.
func NewFlory(name, fieldA, fieldB string, phiA, phiB, phiWall, chiN *field.Field, effVol float64) *Flory {
	if chiN == nil {
		chk.Panic("flory %q: chiN field must not be nil", name)
	}
	return &Flory{NameStr: name, FieldA: fieldA, FieldB: fieldB, PhiA: phiA, PhiB: phiB, PhiWall: phiWall, ChiN: chiN, EffVol: effVol}
}

func (o *Flory) Name() string     { return o.NameStr }
func (o *Flory) Fields() []string { return []string{o.FieldA, o.FieldB} }

// SetChiRamp installs a time/space ramp function; constant ChiN fills and
// a ramp function are mutually exclusive (spec.md §4.4).
func (o *Flory) SetChiRamp(f fun.Func) {
	o.ChiFunc = f
}

// EvalChiRamp refreshes ChiN from ChiFunc at time t, evaluated per cell.
// centers must supply the real-space coordinate of each local cell, in
// the same order as ChiN.Data.
func (o *Flory) EvalChiRamp(t float64, centers [][]float64) {
	if o.ChiFunc == nil {
		return
	}
	for i, x := range centers {
		o.ChiN.Data[i] = o.ChiFunc.F(t, x)
	}
}

func (o *Flory) wallMasked(dest []float64) {
	if o.PhiWall == nil {
		return
	}
	for i := range dest {
		dest[i] *= 1 - o.PhiWall.Data[i]
	}
}

// CalcDfD adds ∂F/∂φ into dest for fieldName ∈ {FieldA, FieldB}.
func (o *Flory) CalcDfD(fieldName string, dest *field.Field) {
	var other *field.Field
	switch fieldName {
	case o.FieldA:
		other = o.PhiB
	case o.FieldB:
		other = o.PhiA
	default:
		chk.Panic("flory %q: does not contain field %q", o.NameStr, fieldName)
	}
	meanOther := other.Mean()
	term := other.Clone()
	mean := make([]float64, len(term.Data))
	for i := range mean {
		mean[i] = meanOther
	}
	o.wallMasked(mean)
	for i := range term.Data {
		term.Data[i] -= mean[i]
	}
	term.MulInPlace(o.ChiN)
	term.Scale(1.0 / o.EffVol)
	dest.AddInPlace(term)
}

// CalcFe adds the local free-energy density χN·φ_A·φ_B (optionally minus
// the disorder subtraction term) into dest, scaled by 1/V_eff.
func (o *Flory) CalcFe(dest *field.Field, includeDisorder bool) {
	fe := o.PhiA.Clone()
	fe.MulInPlace(o.PhiB)
	fe.MulInPlace(o.ChiN)
	if includeDisorder {
		meanA := o.PhiA.Mean()
		meanB := o.PhiB.Mean()
		disorder := o.ChiN.Clone()
		disorder.Scale(meanA * meanB)
		if o.PhiWall != nil {
			for i, v := range o.PhiWall.Data {
				w := 1 - v
				disorder.Data[i] *= w * w
			}
		}
		fe.SubInPlace(disorder)
	}
	fe.Scale(1.0 / o.EffVol)
	dest.AddInPlace(fe)
}
