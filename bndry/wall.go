// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bndry

import (
	"github.com/polyswift-go/scftcore/field"
	"github.com/polyswift-go/scftcore/grid"
)

// Wall is a fixed boundary whose density field is loaded once, either
// from a time-independent spatial function or a raster file (spec.md
// §4.7).
type Wall struct {
	Idx       int
	Name      string
	Dens      *field.Field
	Threshold float64 // bndryFieldThreshold
	Saturate  bool    // policy flag: true => saturate to 1, false => saturate to 1-threshold
}

var _ Boundary = (*Wall)(nil)

func (o *Wall) GlobalIndex() int           { return o.Idx }
func (o *Wall) Center() []float64          { return nil }
func (o *Wall) Radius() float64            { return 0 }
func (o *Wall) DensityField() *field.Field { return o.Dens }

// NewWallFromFunc builds a wall from a time-independent spatial function
// sampled at each local cell center.
func NewWallFromFunc(idx int, name string, g *grid.Grid, d *grid.Decomp, dens *field.Field, fn func(x []float64) float64, threshold float64, saturate bool) *Wall {
	centers := localCellCenters(g, d)
	for i, x := range centers {
		dens.Data[i] = fn(x)
	}
	w := &Wall{Idx: idx, Name: name, Dens: dens, Threshold: threshold, Saturate: saturate}
	w.applyThreshold()
	return w
}

// NewWallFromRaster builds a wall from a raster file's global values,
// slicing out this rank's local slab.
func NewWallFromRaster(idx int, name string, d *grid.Decomp, dens *field.Field, globalValues []float64, threshold float64, saturate bool) *Wall {
	planeSize := 1
	for i := 1; i < d.G.Dim; i++ {
		planeSize *= d.G.N[i]
	}
	lo := d.Offset * planeSize
	hi := lo + d.LocalN0*planeSize
	copy(dens.Data, globalValues[lo:hi])
	w := &Wall{Idx: idx, Name: name, Dens: dens, Threshold: threshold, Saturate: saturate}
	w.applyThreshold()
	return w
}

// applyThreshold saturates values above 1-threshold and zeros values at
// or below Threshold, per spec.md §4.7.
func (o *Wall) applyThreshold() {
	for i, v := range o.Dens.Data {
		if v <= o.Threshold {
			o.Dens.Data[i] = 0
			continue
		}
		if v > 1-o.Threshold {
			if o.Saturate {
				o.Dens.Data[i] = 1
			} else {
				o.Dens.Data[i] = 1 - o.Threshold
			}
		}
	}
}

// localCellCenters returns the real-space center of every cell this rank
// owns, in the same linear order as a Field's Data.
func localCellCenters(g *grid.Grid, d *grid.Decomp) [][]float64 {
	ext := d.LocalExtents()
	total := d.NumCellsLocal()
	shifts := d.LocalToGlobalShifts()
	out := make([][]float64, total)
	idx := make([]int, g.Dim)
	for lin := 0; lin < total; lin++ {
		rem := lin
		for a := g.Dim - 1; a >= 0; a-- {
			idx[a] = rem % ext[a]
			rem /= ext[a]
		}
		x := make([]float64, g.Dim)
		for a := 0; a < g.Dim; a++ {
			gIdx := idx[a] + shifts[a]
			x[a] = (float64(gIdx) + 0.5) * g.Delta[a]
		}
		out[lin] = x
	}
	return out
}
