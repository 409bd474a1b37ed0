// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package interact

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/polyswift-go/scftcore/field"
	"github.com/polyswift-go/scftcore/grid"
)

// Poisson implements the electrostatic interaction of spec.md §4.5: the
// conjugate electric potential ψ(r) solves -∇²ψ = 4πℓ_B·ρ in reciprocal
// space, ψ̂(k) = (4πℓ_B/k²)·ρ̂(k), ψ̂(0)=0, with a per-cell relative-change
// cap to prevent oscillation.
type Poisson struct {
	NameStr     string
	ChargeField string
	Charge      *field.Field // ρ
	Psi         *field.Field // ψ, conjugate field — mutated in place by Solve
	BjerrumLen  float64       // ℓ_B
	G           *grid.Grid
	FFT         *grid.FFT
}

var _ Interaction = (*Poisson)(nil)

// NewPoisson constructs a Poisson interaction for the given charge-density
// PhysField and its conjugate potential field.
func NewPoisson(name, chargeField string, charge, psi *field.Field, bjerrumLen float64, g *grid.Grid, fft *grid.FFT) *Poisson {
	if bjerrumLen <= 0 {
		chk.Panic("poisson %q: Bjerrum length must be positive, got %g", name, bjerrumLen)
	}
	return &Poisson{NameStr: name, ChargeField: chargeField, Charge: charge, Psi: psi, BjerrumLen: bjerrumLen, G: g, FFT: fft}
}

func (o *Poisson) Name() string     { return o.NameStr }
func (o *Poisson) Fields() []string { return []string{o.ChargeField} }

// Solve updates Psi in place from the current Charge field.
func (o *Poisson) Solve() {
	mean := o.Charge.Mean()
	shifted := o.Charge.Clone()
	for i := range shifted.Data {
		shifted.Data[i] -= mean
	}

	global := o.FFT.CalcForwardFFT(shifted.Data)
	k2 := o.G.KSquaredGlobal()
	for i := range global {
		if k2[i] == 0 {
			global[i] = 0
			continue
		}
		factor := 4 * math.Pi * o.BjerrumLen / k2[i]
		global[i] *= complex(factor, 0)
	}
	newPsiLocal := o.FFT.CalcBackwardFFT(global)
	n := float64(o.FFT.TotalGlobal())
	for i := range newPsiLocal {
		newPsiLocal[i] /= n
	}

	for i, oldV := range o.Psi.Data {
		newV := newPsiLocal[i]
		if oldV != 0 {
			rel := math.Abs(newV-oldV) / math.Abs(oldV)
			if rel > 0.2 {
				newV = 1.2 * oldV
			}
		}
		o.Psi.Data[i] = newV
	}
}

// CalcDfD adds ∂F/∂ρ = ψ into dest (the functional derivative of the
// electrostatic free energy F = (1/2)∫ρψ with respect to the charge
// density).
func (o *Poisson) CalcDfD(fieldName string, dest *field.Field) {
	if fieldName != o.ChargeField {
		chk.Panic("poisson %q: does not contain field %q", o.NameStr, fieldName)
	}
	dest.AddInPlace(o.Psi)
}

// CalcFe adds the local electrostatic free-energy density (1/2)ρψ into
// dest. includeDisorder is unused for Poisson (no disorder term exists
// for this interaction) but kept to satisfy the Interaction contract.
func (o *Poisson) CalcFe(dest *field.Field, includeDisorder bool) {
	fe := o.Charge.Clone()
	fe.MulInPlace(o.Psi)
	fe.Scale(0.5)
	dest.AddInPlace(fe)
}
