// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grid

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/polyswift-go/scftcore/comm"
	"gonum.org/v1/gonum/dsp/fourier"
)

// FFT is the paired forward/backward transform plan over a Grid's
// decomposition (spec.md §4.1). Real-space data lives in slab order (axis
// 0 distributed); the forward transform internally collects the global
// array, runs a separable N-dimensional complex DFT axis by axis with
// gonum's 1-D kernels, and scatters results back to each rank's local
// slab — the in-process stand-in for the collective transpose a native
// distributed FFT performs between ranks.
type FFT struct {
	G      *Grid
	D      *Decomp
	Comm   *comm.Communicator
	plans []*fourier.CmplxFFT // one 1-D complex FFT plan per axis
	total int                 // Π N_i
	dims  []int
}

// NewFFT builds FFT plans for every axis of the grid.
func NewFFT(g *Grid, d *Decomp, c *comm.Communicator) *FFT {
	plans := make([]*fourier.CmplxFFT, g.Dim)
	for i, n := range g.N {
		plans[i] = fourier.NewCmplxFFT(n)
	}
	return &FFT{G: g, D: d, Comm: c, plans: plans, total: g.NumCellsGlobal(), dims: append([]int{}, g.N...)}
}

// TotalGlobal returns Π N_i, the normalization divisor for a round trip.
func (o *FFT) TotalGlobal() int { return o.total }

// gatherGlobal assembles the full real-space array from every rank's
// local slab, in global axis-0 order.
func (o *FFT) gatherGlobal(localReal []float64) []float64 {
	if o.D.NRanks == 1 {
		return localReal
	}
	counts := o.D.Counts(1)
	return o.Comm.AllGather(localReal, counts)
}

// scatterGlobal extracts this rank's local slab out of a full global
// real-space array.
func (o *FFT) scatterGlobal(global []float64) []float64 {
	if o.D.NRanks == 1 {
		return global
	}
	planeSize := 1
	for i := 1; i < o.G.Dim; i++ {
		planeSize *= o.G.N[i]
	}
	lo := o.D.Offset * planeSize
	hi := lo + o.D.LocalN0*planeSize
	return append([]float64{}, global[lo:hi]...)
}

// forwardND runs the unnormalized forward complex DFT over every axis.
func (o *FFT) forwardND(data []complex128) {
	o.transformAllAxes(data, false)
}

// backwardND runs the unnormalized inverse complex DFT over every axis
// (caller must apply the 1/Π N_i scaling separately, per spec.md §4.1).
func (o *FFT) backwardND(data []complex128) {
	o.transformAllAxes(data, true)
}

// transformAllAxes applies the 1-D transform along each axis in turn,
// iterating over every line parallel to that axis (separable N-D DFT).
func (o *FFT) transformAllAxes(data []complex128, inverse bool) {
	dims := o.dims
	for axis := 0; axis < o.G.Dim; axis++ {
		n := dims[axis]
		stride := 1
		for i := axis + 1; i < len(dims); i++ {
			stride *= dims[i]
		}
		outerBlock := stride * n
		numBlocks := len(data) / outerBlock
		line := make([]complex128, n)
		out := make([]complex128, n)
		plan := o.plans[axis]
		for b := 0; b < numBlocks; b++ {
			base := b * outerBlock
			for s := 0; s < stride; s++ {
				for k := 0; k < n; k++ {
					line[k] = data[base+k*stride+s]
				}
				if inverse {
					plan.Inverse(out, line)
				} else {
					plan.Forward(out, line)
				}
				for k := 0; k < n; k++ {
					data[base+k*stride+s] = out[k]
				}
			}
		}
	}
}

func toComplex(real []float64) []complex128 {
	c := make([]complex128, len(real))
	for i, v := range real {
		c[i] = complex(v, 0)
	}
	return c
}

func toImagAxis(real []float64) []complex128 {
	c := make([]complex128, len(real))
	for i, v := range real {
		c[i] = complex(0, v)
	}
	return c
}

// calcForwardFFT computes the raw (unnormalized, un-scattered) forward
// transform of a local real-space buffer, returning the full global
// k-space complex array.
func (o *FFT) calcForwardFFT(localReal []float64) []complex128 {
	global := o.gatherGlobal(localReal)
	c := toComplex(global)
	o.forwardND(c)
	return c
}

// calcBackwardFFT computes the raw inverse transform of a full global
// k-space array, returning this rank's local real-space slab (unscaled —
// caller applies 1/Π N_i).
func (o *FFT) calcBackwardFFT(globalK []complex128) []float64 {
	o.backwardND(globalK)
	realGlobal := make([]float64, len(globalK))
	for i, v := range globalK {
		realGlobal[i] = real(v)
	}
	return o.scatterGlobal(realGlobal)
}

// CalcForwardFFT is the public raw forward transform (spec.md §4.1).
func (o *FFT) CalcForwardFFT(localReal []float64) []complex128 { return o.calcForwardFFT(localReal) }

// CalcBackwardFFT is the public raw inverse transform.
func (o *FFT) CalcBackwardFFT(globalK []complex128) []float64 { return o.calcBackwardFFT(globalK) }

// ForwardFFTAbs computes out[k] = |F[in][k]|^2 for every local cell,
// i.e. the forward transform's squared magnitude, redistributed back to
// slab order (out has the same local length as in).
func (o *FFT) ForwardFFTAbs(localReal, out []float64) {
	global := o.calcForwardFFT(localReal)
	mag := make([]float64, len(global))
	for i, v := range global {
		mag[i] = real(v)*real(v) + imag(v)*imag(v)
	}
	copy(out, o.scatterGlobal(mag))
}

// ConvolveRe computes out = Re(F^{-1}[F[a]·F[b]]), the real part of the
// spectral convolution of two local real-space fields.
func (o *FFT) ConvolveRe(a, b, out []float64) {
	fa := o.calcForwardFFT(a)
	fb := o.gatherGlobal(b)
	fbC := toComplex(fb)
	o.forwardND(fbC)
	prod := make([]complex128, len(fa))
	for i := range prod {
		prod[i] = fa[i] * fbC[i]
	}
	res := o.calcBackwardFFT(prod)
	n := float64(o.total)
	for i := range res {
		res[i] /= n
	}
	copy(out, res)
}

// ScaledFFTPair computes out = F^{-1}[kMul · F[in]] with kMul a real
// reciprocal-space multiplier given as a full global array (length
// Π N_i). The 1/Π N_i round-trip normalization is applied here, so kMul
// carries none.
func (o *FFT) ScaledFFTPair(localReal []float64, kMul []float64, out []float64) {
	o.scaledFFTPairGeneric(localReal, kMul, out, false)
}

// ScaledFFTPairIm is ScaledFFTPair but places the input on the imaginary
// axis before transforming, the form used by gradient operators (∇ ~ ik).
func (o *FFT) ScaledFFTPairIm(localReal []float64, kMul []float64, out []float64) {
	o.scaledFFTPairGeneric(localReal, kMul, out, true)
}

func (o *FFT) scaledFFTPairGeneric(localReal []float64, kMul []float64, out []float64, imagAxis bool) {
	if len(kMul) != o.total {
		chk.Panic("fft: kMul length %d does not match Π N_i=%d", len(kMul), o.total)
	}
	global := o.gatherGlobal(localReal)
	var c []complex128
	if imagAxis {
		c = toImagAxis(global)
	} else {
		c = toComplex(global)
	}
	o.forwardND(c)
	for i := range c {
		c[i] *= complex(kMul[i], 0)
	}
	res := o.calcBackwardFFT(c)
	n := float64(o.total)
	for i := range res {
		res[i] /= n
	}
	copy(out, res)
}

// KSquaredGlobal returns k²(i,j,k) over the full global grid using the
// folded-frequency convention of spec.md §4.1.
func (g *Grid) KSquaredGlobal() []float64 {
	dims := g.N
	total := 1
	for _, d := range dims {
		total *= d
	}
	out := make([]float64, total)
	idx := make([]int, g.Dim)
	for lin := 0; lin < total; lin++ {
		rem := lin
		for a := g.Dim - 1; a >= 0; a-- {
			idx[a] = rem % dims[a]
			rem /= dims[a]
		}
		k2 := 0.0
		for a := 0; a < g.Dim; a++ {
			ni := g.N[a]
			n := ni/2 - abs(idx[a]-ni/2)
			ki := 2.0 * math.Pi * float64(n) / (float64(ni) * g.Delta[a])
			k2 += ki * ki
		}
		out[lin] = k2
	}
	return out
}

// KVectorGlobal returns the signed k-vector field (one component slice per
// axis, each length Π N_i) used by gradient operators.
func (g *Grid) KVectorGlobal() [][]float64 {
	total := g.NumCellsGlobal()
	kv := make([][]float64, g.Dim)
	for a := range kv {
		kv[a] = make([]float64, total)
	}
	idx := make([]int, g.Dim)
	for lin := 0; lin < total; lin++ {
		rem := lin
		for a := g.Dim - 1; a >= 0; a-- {
			idx[a] = rem % g.N[a]
			rem /= g.N[a]
		}
		for a := 0; a < g.Dim; a++ {
			ni := g.N[a]
			n := ni/2 - abs(idx[a]-ni/2)
			ki := 2.0 * math.Pi * float64(n) / (float64(ni) * g.Delta[a])
			if idx[a] > ni/2 {
				ki = -ki
			}
			kv[a][lin] = ki
		}
	}
	return kv
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
