// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grid

import "github.com/cpmech/gosl/chk"

// Decomp is a slab partition of a Grid along axis 0. Each rank owns the
// contiguous global index range [Offset, Offset+LocalN0). FFT gathers the
// full grid before transforming (see fft.go), so real- and k-space data
// share this same axis-0 order throughout a pseudo-spectral step.
type Decomp struct {
	G       *Grid
	NRanks  int
	Rank    int
	LocalN0 int // number of axis-0 planes owned by this rank
	Offset  int // global axis-0 index of the first owned plane
}

// NewDecomp builds the slab decomposition for the given grid, rank, and
// rank count. N[0] must be evenly divisible by nranks (spec.md §3
// invariant).
func NewDecomp(g *Grid, rank, nranks int) *Decomp {
	if nranks < 1 {
		chk.Panic("decomp: nranks must be >= 1, got %d", nranks)
	}
	if g.N[0]%nranks != 0 {
		chk.Panic("decomp: N[0]=%d not divisible by nranks=%d", g.N[0], nranks)
	}
	if rank < 0 || rank >= nranks {
		chk.Panic("decomp: rank %d out of range [0,%d)", rank, nranks)
	}
	local0 := g.N[0] / nranks
	return &Decomp{
		G:       g,
		NRanks:  nranks,
		Rank:    rank,
		LocalN0: local0,
		Offset:  rank * local0,
	}
}

// LocalExtents returns the local cell counts per axis: LocalN0 on axis 0,
// full N_i on the remaining axes (only axis 0 is slabbed).
func (o *Decomp) LocalExtents() []int {
	ext := append([]int{}, o.G.N...)
	ext[0] = o.LocalN0
	return ext
}

// NumCellsLocal returns the number of local cells owned by this rank.
func (o *Decomp) NumCellsLocal() int {
	total := o.LocalN0
	for i := 1; i < o.G.Dim; i++ {
		total *= o.G.N[i]
	}
	return total
}

// LocalToGlobalShifts returns the per-axis shift that converts a local
// index to a global index: Offset on axis 0, zero elsewhere.
func (o *Decomp) LocalToGlobalShifts() []int {
	shifts := make([]int, o.G.Dim)
	shifts[0] = o.Offset
	return shifts
}

// HasPosition reports whether the given global index vector's axis-0
// component falls inside this rank's owned range.
func (o *Decomp) HasPosition(globalPos []int) bool {
	i0 := ((globalPos[0] % o.G.N[0]) + o.G.N[0]) % o.G.N[0]
	return i0 >= o.Offset && i0 < o.Offset+o.LocalN0
}

// OwnerOf returns the rank owning a given global axis-0 index.
func (o *Decomp) OwnerOf(globalIdx0 int) int {
	i0 := ((globalIdx0 % o.G.N[0]) + o.G.N[0]) % o.G.N[0]
	return i0 / o.LocalN0
}

// Counts returns the number of cells owned by each rank (equal slabs by
// construction, but kept as a slice to match the collective AllGather/
// AllToAllV count-vector convention used by comm.Communicator).
func (o *Decomp) Counts(componentsPerCell int) []int {
	counts := make([]int, o.NRanks)
	perRank := o.NumCellsLocal() * componentsPerCell
	for i := range counts {
		counts[i] = perRank
	}
	return counts
}
