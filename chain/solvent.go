// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chain

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/polyswift-go/scftcore/field"
)

// Solvent is a point-particle component with its own single-chain
// partition function computed from the Boltzmann factor of its conjugate
// field (spec.md §3).
type Solvent struct {
	Name    string
	VolFrac float64
	LogQ    float64
}

// Update computes LogQ = log( (1/V_eff) * Σ exp(-w(r)) ) and adds the
// solvent's density contribution φ(r) = volFrac * exp(-w(r)) / Q into
// density.
func (o *Solvent) Update(w *field.Field, density *field.Field, effVol float64) {
	boltz := w.Clone()
	for i, v := range boltz.Data {
		boltz.Data[i] = math.Exp(-v)
	}
	sum := boltz.SumAll()
	Q := sum / effVol
	if math.IsNaN(Q) || math.IsInf(Q, 0) || Q <= 0 {
		chk.Panic("solvent %q: partition function is not finite/positive (Q=%g)", o.Name, Q)
	}
	o.LogQ = math.Log(Q)
	boltz.Scale(o.VolFrac / Q)
	density.AddInPlace(boltz)
}
