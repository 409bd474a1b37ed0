// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package bndry implements the fixed-wall and mobile-nanoparticle
// boundary subsystem of spec.md §4.7: hard-region density deposition into
// the incompressibility constraint field, overlap detection, and
// force-driven Brownian particle motion.
package bndry

import (
	"github.com/cpmech/gosl/chk"
	"github.com/polyswift-go/scftcore/field"
)

// Boundary is either a Wall or a NanoParticle; every boundary carries a
// global index assigned on insertion and contributes a density field to
// the constraint PhysField (spec.md §3).
type Boundary interface {
	GlobalIndex() int
	Center() []float64 // real-space center, for overlap tests; walls return nil
	Radius() float64   // 0 for walls
	DensityField() *field.Field
}

// Registry is the process-wide list of all boundaries (spec.md §5
// "shared resources"), used for pairwise overlap detection. It must only
// be mutated during the boundary-update phase, symmetrically on every
// rank — there is no lock; mutual exclusion is provided by phase
// ordering.
type Registry struct {
	all []Boundary
}

// NewRegistry returns an empty boundary registry.
func NewRegistry() *Registry { return &Registry{} }

// All returns the current boundary list.
func (o *Registry) All() []Boundary { return append([]Boundary{}, o.all...) }

// Add appends a boundary; its global index is the one the caller took
// from NextIndex when constructing it.
func (o *Registry) Add(b Boundary) {
	o.all = append(o.all, b)
}

// Remove drops the boundary with the given global index.
func (o *Registry) Remove(globalIndex int) {
	out := o.all[:0]
	for _, b := range o.all {
		if b.GlobalIndex() != globalIndex {
			out = append(out, b)
		}
	}
	o.all = out
}

// NextIndex returns the global index the next inserted boundary should
// take.
func (o *Registry) NextIndex() int { return len(o.all) }

// Overlaps reports whether a candidate (center, radius) pair overlaps any
// existing particle boundary in the registry, using the grid's
// shortest-image distance. Walls (radius 0, nil center) never overlap.
func (o *Registry) Overlaps(dist func(a, b []float64) []float64, center []float64, radius float64, excludeIdx int) bool {
	for _, b := range o.all {
		if b.GlobalIndex() == excludeIdx || b.Center() == nil {
			continue
		}
		d := dist(center, b.Center())
		r2 := 0.0
		for _, v := range d {
			r2 += v * v
		}
		sep := radius + b.Radius()
		if r2 < sep*sep {
			return true
		}
	}
	return false
}

// DepositInto sums every boundary's density field into the constraint
// PhysField's density buffer and panics if the summed maximum exceeds
// 1+1e-6 (the constraint-bound invariant of spec.md §8; a genuine
// configuration problem: interfaces too sharp or overlapping hard
// regions). Values are not capped.
func (o *Registry) DepositInto(constraintDens *field.Field) {
	constraintDens.Reset()
	for _, b := range o.all {
		constraintDens.AddInPlace(b.DensityField())
	}
	maxV := constraintDens.MaxVal()
	if maxV > 1+1e-6 {
		chk.Panic("bndry: constraint density exceeds threshold (max=%g); interface too sharp or boundaries overlap", maxV)
	}
}
