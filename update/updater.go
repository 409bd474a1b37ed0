// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package update implements the steepest-descent field relaxation step of
// spec.md §4.6: dH accumulation, 2/3-field chemical-potential update,
// Gaussian noise injection, and pressure renormalization.
package update

import (
	"github.com/cpmech/gosl/chk"
	"github.com/polyswift-go/scftcore/field"
	"github.com/polyswift-go/scftcore/interact"
	"github.com/polyswift-go/scftcore/psrand"
)

// Updater relaxes N_up ∈ {2,3} monomer PhysFields (conjugate fields W and
// density fields Phi) against a shared pressure field, under the listed
// interactions, per spec.md §4.6. Pressure normalization is only defined
// for 2 or 3 monomer species (spec.md §9b).
type Updater struct {
	FieldNames   []string // length N_up, matching W/Phi index order
	W            []*field.Field
	Phi          []*field.Field
	Pressure     *field.Field
	PhiWall      *field.Field // may be nil if no constraint is present
	Interactions []interact.Interaction
	Constraints  []interact.Interaction // wall-polymer χ-interactions

	Lambda0 float64 // primary relaxation step size
	Lambda1 float64 // cross relaxation step size
	Sigma   float64 // noise amplitude, 0 disables noise

	Streams *psrand.Streams
}

// Step performs one relaxation update in place.
func (o *Updater) Step() {
	n := len(o.W)
	if n != 2 && n != 3 {
		chk.Panic("update: pressure normalization only supports 2 or 3 monomer species, got %d", n)
	}

	dH := make([]*field.Field, n)
	for i := range dH {
		dH[i] = o.Pressure.Clone()
		dH[i].SubInPlace(o.W[i])
	}

	for _, it := range o.Interactions {
		for _, fname := range it.Fields() {
			idx := o.indexOf(fname)
			if idx < 0 {
				continue
			}
			it.CalcDfD(fname, dH[idx])
		}
	}

	switch n {
	case 2:
		w0 := dH[0].Clone()
		w0.Scale(o.Lambda0)
		w0.AddScaled(-o.Lambda1, dH[1])
		o.W[0].AddInPlace(w0)

		w1 := dH[1].Clone()
		w1.Scale(o.Lambda0)
		w1.AddScaled(-o.Lambda1, dH[0])
		o.W[1].AddInPlace(w1)
	case 3:
		for i := 0; i < 3; i++ {
			j, k := (i+1)%3, (i+2)%3
			upd := dH[i].Clone()
			upd.Scale(o.Lambda0)
			upd.AddScaled(-o.Lambda1, dH[j])
			upd.AddScaled(-o.Lambda1, dH[k])
			o.W[i].AddInPlace(upd)
		}
	}

	if o.Sigma > 0 {
		for _, w := range o.W {
			noise := w.Clone()
			noise.FillGaussian(o.Streams, 0, o.Sigma)
			if o.PhiWall != nil {
				for i := range noise.Data {
					noise.Data[i] *= 1 - o.PhiWall.Data[i]
				}
			}
			w.AddInPlace(noise)
		}
	}

	o.updatePressure(n)
}

func (o *Updater) indexOf(name string) int {
	for i, n := range o.FieldNames {
		if n == name {
			return i
		}
	}
	return -1
}

// updatePressure recomputes p = (1/Nup)*(Σ w_i + ΔP_polymer + ΔP_constraint)
// then subtracts p's spatial mean over the non-wall volume and reapplies
// the wall mask (spec.md §4.6 step 5).
func (o *Updater) updatePressure(n int) {
	p := o.Pressure
	p.Reset()
	for _, w := range o.W {
		p.AddInPlace(w)
	}

	for _, it := range o.Interactions {
		if flory, ok := it.(*interact.Flory); ok && o.PhiWall != nil {
			term := flory.ChiN.Clone()
			term.MulInPlace(o.PhiWall)
			p.AddInPlace(term)
		}
	}
	for _, it := range o.Constraints {
		if flory, ok := it.(*interact.Flory); ok && o.PhiWall != nil {
			term := flory.ChiN.Clone()
			term.MulInPlace(o.PhiWall)
			p.SubInPlace(term)
		}
	}

	p.Scale(1.0 / float64(n))

	mean := nonWallMean(p, o.PhiWall)
	for i := range p.Data {
		p.Data[i] -= mean
	}
	if o.PhiWall != nil {
		for i := range p.Data {
			p.Data[i] *= 1 - o.PhiWall.Data[i]
		}
	}
}

// nonWallMean returns the mean of f restricted to cells where phiWall is
// not saturating the cell (weighted by 1-phiWall), matching the
// "spatial mean over the non-constrained volume" invariant of spec.md §3.
func nonWallMean(f, phiWall *field.Field) float64 {
	if phiWall == nil {
		return f.Mean()
	}
	weighted := f.Clone()
	weight := phiWall.Clone()
	for i := range weighted.Data {
		w := 1 - phiWall.Data[i]
		weighted.Data[i] *= w
		weight.Data[i] = w
	}
	num := weighted.SumAll()
	den := weight.SumAll()
	if den == 0 {
		return 0
	}
	return num / den
}
