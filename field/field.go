// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package field implements the dense tensor field container described in
// spec.md §3: elementwise arithmetic, reductions, and random fills over a
// grid's local decomposition.
package field

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
	"github.com/polyswift-go/scftcore/comm"
	"github.com/polyswift-go/scftcore/grid"
	"github.com/polyswift-go/scftcore/psrand"
)

// Field is a dense tensor over a rank's local decomposition. Comps is the
// number of components per cell: 1 for a scalar field, D for a vector
// field (spec.md §3).
type Field struct {
	D     *grid.Decomp
	Comm  *comm.Communicator
	Comps int
	Data  []float64 // [NumCellsLocal*Comps], zero-initialized at construction
}

// New allocates a zero-initialized field over the given decomposition.
func New(d *grid.Decomp, c *comm.Communicator, comps int) *Field {
	if comps < 1 {
		chk.Panic("field: comps must be >= 1, got %d", comps)
	}
	return &Field{D: d, Comm: c, Comps: comps, Data: make([]float64, d.NumCellsLocal()*comps)}
}

// Reset zeros every entry.
func (o *Field) Reset() {
	for i := range o.Data {
		o.Data[i] = 0
	}
}

// Clone returns an independent copy.
func (o *Field) Clone() *Field {
	n := &Field{D: o.D, Comm: o.Comm, Comps: o.Comps, Data: make([]float64, len(o.Data))}
	la.VecCopy(n.Data, 1, o.Data)
	return n
}

// AddInPlace performs Data += other.Data (+=).
func (o *Field) AddInPlace(other *Field) {
	o.checkConformant(other)
	la.VecAdd(o.Data, 1, o.Data, 1, other.Data)
}

// SubInPlace performs Data -= other.Data (-=).
func (o *Field) SubInPlace(other *Field) {
	o.checkConformant(other)
	la.VecAdd(o.Data, 1, o.Data, -1, other.Data)
}

// AddScaled performs Data += alpha*other.Data.
func (o *Field) AddScaled(alpha float64, other *Field) {
	o.checkConformant(other)
	la.VecAdd(o.Data, 1, o.Data, alpha, other.Data)
}

// MulInPlace performs elementwise Data *= other.Data.
func (o *Field) MulInPlace(other *Field) {
	o.checkConformant(other)
	for i := range o.Data {
		o.Data[i] *= other.Data[i]
	}
}

// Scale performs Data *= s (scalar *).
func (o *Field) Scale(s float64) {
	for i := range o.Data {
		o.Data[i] *= s
	}
}

// Fill sets every entry to v.
func (o *Field) Fill(v float64) {
	la.VecFill(o.Data, v)
}

// Exp replaces every entry with exp(entry).
func (o *Field) Exp() {
	for i, v := range o.Data {
		o.Data[i] = math.Exp(v)
	}
}

// ClipMax caps every entry to at most maxVal.
func (o *Field) ClipMax(maxVal float64) {
	for i, v := range o.Data {
		if v > maxVal {
			o.Data[i] = maxVal
		}
	}
}

// SumAll returns the global sum over every rank's local cells (collective).
func (o *Field) SumAll() float64 {
	local := 0.0
	for _, v := range o.Data {
		local += v
	}
	return o.Comm.SumFloat64(local)
}

// MaxVal returns the global maximum over every rank (collective).
func (o *Field) MaxVal() float64 {
	local := math.Inf(-1)
	for _, v := range o.Data {
		if v > local {
			local = v
		}
	}
	return o.Comm.MaxFloat64(local)
}

// MinVal returns the global minimum over every rank (collective).
func (o *Field) MinVal() float64 {
	local := math.Inf(1)
	for _, v := range o.Data {
		if v < local {
			local = v
		}
	}
	return o.Comm.MinFloat64(local)
}

// Mean returns SumAll / (Π N_i global cells * Comps).
func (o *Field) Mean() float64 {
	globalCount := o.D.G.NumCellsGlobal() * o.Comps
	return o.SumAll() / float64(globalCount)
}

// FillUniform fills every entry with a local-stream uniform draw in [lo,hi).
func (o *Field) FillUniform(streams *psrand.Streams, lo, hi float64) {
	for i := range o.Data {
		o.Data[i] = streams.UniformLocal(lo, hi)
	}
}

// FillGaussian fills every entry with a local-stream Gaussian draw.
func (o *Field) FillGaussian(streams *psrand.Streams, mean, stdev float64) {
	for i := range o.Data {
		o.Data[i] = streams.GaussianLocal(mean, stdev)
	}
}

// Norm returns the field's Euclidean norm restricted to this rank's local
// data (non-collective; used for diagnostics only).
func (o *Field) Norm() float64 {
	return la.VecNorm(o.Data)
}

func (o *Field) checkConformant(other *Field) {
	if len(o.Data) != len(other.Data) {
		chk.Panic("field: non-conformant fields, lengths %d != %d", len(o.Data), len(other.Data))
	}
}
