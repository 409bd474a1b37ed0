// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bndry

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/polyswift-go/scftcore/comm"
	"github.com/polyswift-go/scftcore/field"
	"github.com/polyswift-go/scftcore/grid"
	"github.com/polyswift-go/scftcore/psrand"
)

// NanoParticle is a mobile spherical boundary producing a tanh-profile
// cavity φ(r) = ½(1 - tanh((|r-r0|-R)/w)) (spec.md §3/§4.7).
type NanoParticle struct {
	Idx      int
	CenterPt []float64
	Rad      float64
	Width    float64

	g *grid.Grid
	d *grid.Decomp

	Dens *field.Field
}

var _ Boundary = (*NanoParticle)(nil)

func (o *NanoParticle) GlobalIndex() int           { return o.Idx }
func (o *NanoParticle) Center() []float64          { return o.CenterPt }
func (o *NanoParticle) Radius() float64            { return o.Rad }
func (o *NanoParticle) DensityField() *field.Field { return o.Dens }

// cavityProfile evaluates the tanh cavity density at a given shortest-
// image distance magnitude from the particle center.
func cavityProfile(dist, radius, width float64) float64 {
	return 0.5 * (1 - math.Tanh((dist-radius)/width))
}

// recompute fills Dens from the current CenterPt using the grid's
// shortest-image distance, the practical equivalent of "precompute at
// origin then shift by wrap" for a translation-invariant periodic field.
func (o *NanoParticle) recompute() {
	centers := localCellCenters(o.g, o.d)
	for i, x := range centers {
		d := o.g.MapDistToGrid(x, o.CenterPt)
		r := 0.0
		for _, v := range d {
			r += v * v
		}
		r = math.Sqrt(r)
		o.Dens.Data[i] = cavityProfile(r, o.Rad, o.Width)
	}
}

// InsertParticle draws a random unowned global center from the
// synchronized RNG (so every rank agrees), retrying on overlap against
// the registry up to maxAttempts times.
func InsertParticle(idx int, g *grid.Grid, d *grid.Decomp, c *comm.Communicator, dens *field.Field, reg *Registry, streams *psrand.Streams, radius, width float64, maxAttempts int) (*NanoParticle, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		center := g.GetRandomGlobalPt(streams)
		if !reg.Overlaps(g.MapDistToGrid, center, radius, -1) {
			p := &NanoParticle{Idx: idx, CenterPt: center, Rad: radius, Width: width, g: g, d: d, Dens: dens}
			p.recompute()
			return p, nil
		}
	}
	return nil, chk.Err("bndry: could not insert particle %d without overlap after %d attempts", idx, maxAttempts)
}

// Move applies a real-space displacement dr, converting it to an integer
// cell offset per axis (divide by Delta_i, round), then re-centers the
// cavity. Returns the previous center so the caller can roll back on
// overlap.
func (o *NanoParticle) Move(dr []float64) (prevCenter []float64) {
	prevCenter = append([]float64{}, o.CenterPt...)
	next := make([]float64, o.g.Dim)
	for a := range next {
		cells := math.Round(dr[a] / o.g.Delta[a])
		next[a] = o.CenterPt[a] + cells*o.g.Delta[a]
	}
	o.CenterPt = o.g.MapPointToGrid(next)
	o.recompute()
	return prevCenter
}

// Rollback restores a previous center (after a rejected move).
func (o *NanoParticle) Rollback(prevCenter []float64) {
	o.CenterPt = prevCenter
	o.recompute()
}

// SetState overwrites the particle's center and radius and refreshes its
// cavity field, used by restart restore (spec.md §4.7 "restart reads
// centers from the dump file").
func (o *NanoParticle) SetState(center []float64, radius float64) {
	o.CenterPt = center
	o.Rad = radius
	o.recompute()
}

// ParticleManager drives insertion cadence and the per-step Brownian
// update order for the mobile-particle population (spec.md §4.7).
type ParticleManager struct {
	Registry            *Registry
	MaxNumPtcls         int
	UpdateAddPeriod     int
	TstepBeforeFirstAdd int
	nextGlobalIdx       int
}

// ShouldAddAt reports whether a new particle should be inserted at the
// given simulation step.
func (o *ParticleManager) ShouldAddAt(step, currentCount int) bool {
	if currentCount >= o.MaxNumPtcls {
		return false
	}
	if step < o.TstepBeforeFirstAdd {
		return false
	}
	elapsed := step - o.TstepBeforeFirstAdd
	if o.UpdateAddPeriod <= 0 {
		return elapsed == 0
	}
	return elapsed%o.UpdateAddPeriod == 0
}
