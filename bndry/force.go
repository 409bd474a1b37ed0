// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bndry

import (
	"math"

	"github.com/polyswift-go/scftcore/grid"
	"github.com/polyswift-go/scftcore/psrand"
	"gonum.org/v1/gonum/mat"
)

// ForceField names a scalar field (pressure, or a χN-weighted density)
// that exerts a force on particles through the cavity gradient.
type ForceField struct {
	Values []float64 // local real-space buffer, same layout as a PhysField density
	Weight float64   // χN coefficient; 1 for the bare pressure term
}

// ParticleStepper drives the per-step Brownian update of every particle
// in a registry: force evaluation by FFT convolution with the cavity
// gradient, displacement integration with noise, rollback-on-overlap with
// rotational recovery, and capped removal (spec.md §4.7/§9c).
type ParticleStepper struct {
	G       *grid.Grid
	FFT     *grid.FFT
	Reg     *Registry
	Streams *psrand.Streams

	LambdaF float64 // mobility coefficient for the deterministic force term
	SigmaP  float64 // noise amplitude
	DrMax   float64 // per-axis displacement clip, in the same real-space units as the displacement

	kvec [][]float64 // cached KVectorGlobal()
}

// NewParticleStepper precomputes the k-vector field used for cavity
// gradients.
func NewParticleStepper(g *grid.Grid, fft *grid.FFT, reg *Registry, streams *psrand.Streams, lambdaF, sigmaP, drMax float64) *ParticleStepper {
	return &ParticleStepper{G: g, FFT: fft, Reg: reg, Streams: streams, LambdaF: lambdaF, SigmaP: sigmaP, DrMax: drMax, kvec: g.KVectorGlobal()}
}

// cavityGradient returns ∇_a φ_cavity for the given particle, computed as
// F^{-1}[i k_a F[φ_cavity]] via the FFT plan's imaginary-axis pairing.
func (o *ParticleStepper) cavityGradient(p *NanoParticle, axis int, out []float64) {
	o.FFT.ScaledFFTPairIm(p.Dens.Data, o.kvec[axis], out)
}

// Force computes the net force on a particle from the sum of weighted
// potential fields (pressure plus χN·φ_other cross terms): f_a =
// -Σ_field weight·∫ field·∇_a φ_cavity dV, reduced across ranks.
func (o *ParticleStepper) Force(p *NanoParticle, fields []ForceField) []float64 {
	cellVol := 1.0
	for _, d := range o.G.Delta {
		cellVol *= d
	}
	grad := make([]float64, len(p.Dens.Data))
	f := make([]float64, o.G.Dim)
	for a := 0; a < o.G.Dim; a++ {
		o.cavityGradient(p, a, grad)
		local := 0.0
		for _, ff := range fields {
			for i, g := range grad {
				local -= ff.Weight * ff.Values[i] * g * cellVol
			}
		}
		f[a] = p.Dens.Comm.SumFloat64(local)
	}
	return f
}

// integrate returns a proposed displacement λ_F·f + σ_p·η, clipped
// component-wise to ±DrMax. f is already an AllReduceSum'd, rank-agnostic
// quantity (see Force), so the noise draw must come from the global
// stream too: every rank calls Step in the same particle order and must
// derive the same displacement for the shared Registry to stay consistent
// across ranks (spec.md §4.7/§5).
func (o *ParticleStepper) integrate(f []float64) []float64 {
	dr := make([]float64, len(f))
	for a := range dr {
		noise := o.Streams.GaussianGlobal(0, o.SigmaP)
		dr[a] = o.LambdaF*f[a] + noise
		if dr[a] > o.DrMax {
			dr[a] = o.DrMax
		} else if dr[a] < -o.DrMax {
			dr[a] = -o.DrMax
		}
	}
	return dr
}

// rotations90 enumerates the ±90° axis rotations tried during overlap
// recovery: 6 in 3-D (about each of the 3 axes, both directions), 2 in
// 2-D (about z, both directions), per spec.md §9c.
func rotations90(dim int) []*mat.Dense {
	if dim == 2 {
		return []*mat.Dense{
			mat.NewDense(2, 2, []float64{0, -1, 1, 0}),
			mat.NewDense(2, 2, []float64{0, 1, -1, 0}),
		}
	}
	var out []*mat.Dense
	axes := [][3]int{{0, 1, 2}, {1, 2, 0}, {2, 0, 1}}
	for _, ax := range axes {
		i, j, k := ax[0], ax[1], ax[2]
		for _, sign := range []float64{1, -1} {
			r := mat.NewDense(3, 3, make([]float64, 9))
			r.Set(k, k, 1)
			r.Set(i, i, 0)
			r.Set(j, j, 0)
			r.Set(i, j, -sign)
			r.Set(j, i, sign)
			out = append(out, r)
		}
	}
	return out
}

// rotateDisplacement applies a rotation matrix to a displacement vector.
func rotateDisplacement(r *mat.Dense, dr []float64) []float64 {
	dim := len(dr)
	v := mat.NewVecDense(dim, dr)
	out := mat.NewVecDense(dim, nil)
	out.MulVec(r, v)
	res := make([]float64, dim)
	for i := 0; i < dim; i++ {
		res[i] = out.AtVec(i)
	}
	return res
}

// StepResult records what happened to one particle during a step, for
// logging and removal bookkeeping.
type StepResult struct {
	Idx     int
	Moved   bool
	Removed bool
}

// Step advances every particle in the registry by one Brownian move,
// processing particles in the given (reversed/shuffled) order. A move
// that would overlap another boundary is retried after each of the
// candidate 90° rotations; if none clears the overlap the particle is
// left in place, and at most one particle per call may be flagged for
// removal by removeIdx (or -1 for none).
func (o *ParticleStepper) Step(order []*NanoParticle, fieldsFor func(*NanoParticle) []ForceField, removeIdx int) []StepResult {
	results := make([]StepResult, 0, len(order))
	removed := false
	for _, p := range order {
		if removeIdx == p.Idx && !removed {
			o.Reg.Remove(p.Idx)
			results = append(results, StepResult{Idx: p.Idx, Removed: true})
			removed = true
			continue
		}
		f := o.Force(p, fieldsFor(p))
		dr := o.integrate(f)

		prev := p.Move(dr)
		if !o.Reg.Overlaps(o.G.MapDistToGrid, p.CenterPt, p.Rad, p.Idx) {
			results = append(results, StepResult{Idx: p.Idx, Moved: true})
			continue
		}
		p.Rollback(prev)

		moved := false
		for _, r := range rotations90(o.G.Dim) {
			rdr := rotateDisplacement(r, dr)
			prev2 := p.Move(rdr)
			if !o.Reg.Overlaps(o.G.MapDistToGrid, p.CenterPt, p.Rad, p.Idx) {
				moved = true
				break
			}
			p.Rollback(prev2)
		}
		results = append(results, StepResult{Idx: p.Idx, Moved: moved})
	}
	return results
}

// ShuffleOrder returns a pseudo-random permutation of particles using the
// global RNG stream, the "reversed/shuffled per-particle update order" of
// spec.md §9c. Every rank must process particles in the same order since
// Step mutates the shared Registry, so this draws from Global rather than
// Local.
func ShuffleOrder(particles []*NanoParticle, streams *psrand.Streams) []*NanoParticle {
	out := append([]*NanoParticle{}, particles...)
	for i := len(out) - 1; i > 0; i-- {
		j := int(math.Floor(streams.UniformGlobal(0, float64(i+1))))
		if j > i {
			j = i
		}
		out[i], out[j] = out[j], out[i]
	}
	return out
}
