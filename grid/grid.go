// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package grid implements the periodic Cartesian mesh, its slab
// decomposition across ranks, and the paired real/k-space FFT plan that
// every pseudo-spectral operation in the engine is built on.
package grid

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/polyswift-go/scftcore/psrand"
)

// Grid is a D-dimensional (1 ≤ D ≤ 3) periodic Cartesian box with global
// extents N and cell sizes Delta.
type Grid struct {
	Dim   int       // spatial dimension, 1..3
	N     []int     // [Dim] global number of cells per axis
	Delta []float64 // [Dim] cell size per axis
}

// New validates and builds a Grid.
func New(n []int, delta []float64) *Grid {
	d := len(n)
	if d < 1 || d > 3 {
		chk.Panic("grid: dimension must be 1..3, got %d", d)
	}
	if len(delta) != d {
		chk.Panic("grid: delta length %d does not match dimension %d", len(delta), d)
	}
	for i, ni := range n {
		if ni <= 0 {
			chk.Panic("grid: N[%d]=%d must be positive", i, ni)
		}
		if delta[i] <= 0 {
			chk.Panic("grid: Delta[%d]=%g must be positive", i, delta[i])
		}
	}
	return &Grid{Dim: d, N: append([]int{}, n...), Delta: append([]float64{}, delta...)}
}

// NumCellsGlobal returns Π N_i.
func (g *Grid) NumCellsGlobal() int {
	total := 1
	for _, ni := range g.N {
		total *= ni
	}
	return total
}

// CellSizes returns a copy of Delta.
func (g *Grid) CellSizes() []float64 { return append([]float64{}, g.Delta...) }

// GlobalLengths returns N_i * Delta_i per axis.
func (g *Grid) GlobalLengths() []float64 {
	l := make([]float64, g.Dim)
	for i := range l {
		l[i] = float64(g.N[i]) * g.Delta[i]
	}
	return l
}

// GetCenterGlobal returns the box center in real units.
func (g *Grid) GetCenterGlobal() []float64 {
	c := make([]float64, g.Dim)
	for i := range c {
		c[i] = 0.5 * float64(g.N[i]) * g.Delta[i]
	}
	return c
}

// MapPointToGrid wraps a real-space point into the box [0, L_i) per axis.
func (g *Grid) MapPointToGrid(p []float64) []float64 {
	q := make([]float64, g.Dim)
	for i := range q {
		l := float64(g.N[i]) * g.Delta[i]
		x := math.Mod(p[i], l)
		if x < 0 {
			x += l
		}
		q[i] = x
	}
	return q
}

// MapDistToGrid returns the shortest-image displacement p-q under the
// periodic metric.
func (g *Grid) MapDistToGrid(p, q []float64) []float64 {
	d := make([]float64, g.Dim)
	for i := range d {
		l := float64(g.N[i]) * g.Delta[i]
		x := p[i] - q[i]
		x -= l * math.Round(x/l)
		d[i] = x
	}
	return d
}

// MapToLocalVec converts a global cell-index vector to the equivalent
// vector wrapped inside the box (identity for index space, distinct from
// MapPointToGrid which operates in real units); kept to mirror the
// original interface distinguishing index-space and real-space wrapping.
func (g *Grid) MapToLocalVec(globalIdx []int) []int {
	v := make([]int, g.Dim)
	for i := range v {
		m := ((globalIdx[i] % g.N[i]) + g.N[i]) % g.N[i]
		v[i] = m
	}
	return v
}

// MapToGlobalVec converts a local index vector plus an axis-0 offset into
// a global index vector.
func (g *Grid) MapToGlobalVec(localIdx []int, offset0 int) []int {
	v := append([]int{}, localIdx...)
	v[0] += offset0
	return v
}

// GetRandomGlobalPt draws a random real-space point uniformly over the box
// using the globally synchronized RNG, so every rank agrees on the draw.
func (g *Grid) GetRandomGlobalPt(streams *psrand.Streams) []float64 {
	p := make([]float64, g.Dim)
	for i := range p {
		l := float64(g.N[i]) * g.Delta[i]
		p[i] = streams.UniformGlobal(0, l)
	}
	return p
}

// LinearIndex flattens a local index vector (row-major, axis 0 slowest)
// given the local extents.
func LinearIndex(localN []int, idx []int) int {
	lin := 0
	for i := 0; i < len(localN); i++ {
		lin = lin*localN[i] + idx[i]
	}
	return lin
}
