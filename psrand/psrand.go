// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package psrand implements the two-RNG-stream model used throughout the
// engine: a per-rank stream for local fluctuations and a globally
// synchronized stream for decisions that must agree across ranks.
package psrand

import (
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// Streams holds the two independent random sources required by §5 of the
// domain spec. Local is seeded by (seed+rank) and differs per rank; Global
// is seeded by seed alone and is identical on every rank provided every
// rank calls it in the same order with the same number of draws.
type Streams struct {
	Seed   int64
	Rank   int
	local  *rand.Rand
	global *rand.Rand
}

// New builds the pair of streams for the given base seed and rank number.
func New(seed int64, rank int) *Streams {
	return &Streams{
		Seed:   seed,
		Rank:   rank,
		local:  rand.New(rand.NewSource(seed + int64(rank))),
		global: rand.New(rand.NewSource(seed)),
	}
}

// Local returns the per-rank generator. Use for noise-field fills and
// any other fluctuation that need not agree across ranks.
func (o *Streams) Local() *rand.Rand { return o.local }

// Global returns the cross-rank synchronized generator. Use only for
// decisions that every rank must observe identically: initial particle
// placement, shared random vectors. Never branch control flow on a value
// read from Local() when the branch affects collective calls.
func (o *Streams) Global() *rand.Rand { return o.global }

// UniformLocal draws a value uniformly in [lo, hi) from the local stream.
func (o *Streams) UniformLocal(lo, hi float64) float64 {
	return lo + o.local.Float64()*(hi-lo)
}

// UniformGlobal draws a value uniformly in [lo, hi) from the global stream.
func (o *Streams) UniformGlobal(lo, hi float64) float64 {
	return lo + o.global.Float64()*(hi-lo)
}

// GaussianLocal draws a N(mean,stdev) value from the local stream.
func (o *Streams) GaussianLocal(mean, stdev float64) float64 {
	d := distuv.Normal{Mu: mean, Sigma: stdev, Src: o.local}
	return d.Rand()
}

// GaussianGlobal draws a N(mean,stdev) value from the global stream.
func (o *Streams) GaussianGlobal(mean, stdev float64) float64 {
	d := distuv.Normal{Mu: mean, Sigma: stdev, Src: o.global}
	return d.Rand()
}

// IntGlobal draws an integer in [0, n) from the global stream.
func (o *Streams) IntGlobal(n int) int {
	return o.global.Intn(n)
}
