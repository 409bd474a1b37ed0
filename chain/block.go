// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package chain implements the block propagator solver and the
// polymer/solvent block-graph orchestration of spec.md §4.2/§4.3.
package chain

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/polyswift-go/scftcore/field"
	"github.com/polyswift-go/scftcore/grid"
)

// End identifies one of the two ends of a block.
type End int

const (
	Head End = iota
	Tail
)

func (e End) other() End {
	if e == Head {
		return Tail
	}
	return Head
}

// FreeEnd is the sentinel junction name meaning "this end is not joined to
// any other block" (spec.md §6).
const FreeEnd = "freeEnd"

// Block is a contiguous segment of a polymer chain (spec.md §3).
type Block struct {
	Name       string
	F          float64 // length fraction of total chain length
	Ds         float64 // contour step size
	Ns         int     // n_s = round(F*N/Ds)
	B          float64 // segment-length ratio relative to reference
	QuadWeight float64 // quadrature weight, 1.0 unless polydisperse

	HeadJoined []string // names of blocks (or FreeEnd) joined at the head
	TailJoined []string // names of blocks (or FreeEnd) joined at the tail

	Q    []*field.Field // contour-indexed propagator q[0..Ns]
	Qdag []*field.Field // contour-indexed propagator q†[0..Ns]

	QHeadInitial *field.Field
	QTailInitial *field.Field
	QHeadFinal   *field.Field
	QTailFinal   *field.Field

	qHeadJnts map[string]*field.Field // published final-q from neighbors joined at head
	qTailJnts map[string]*field.Field // published final-q from neighbors joined at tail

	headInitialSet bool
	tailInitialSet bool
	headFinalSet   bool
	tailFinalSet   bool

	// conjugate field of the owning monomer species, bound via SetWField;
	// Reset re-reads its current values.
	w *field.Field

	// precomputed pseudo-spectral operator coefficients, refreshed by
	// SetWField and at every Reset.
	wfac *field.Field // exp(-ds*w/2) in real space, local decomposition
	k2op []float64    // exp(-ds*B^2*k^2) in k-space, full global array

	g   *grid.Grid
	fft *grid.FFT
}

// NewBlock constructs a block with the given minimum contour-step
// requirement (spec.md §3: n_s must be at least 4, and f*N/ds must be integral
// to within 1e-4 unless forceBlockSteps).
func NewBlock(name string, f, ds, b float64, totalN float64, forceBlockSteps bool, headJoined, tailJoined []string) *Block {
	raw := f * totalN / ds
	ns := int(math.Round(raw))
	if !forceBlockSteps && math.Abs(raw-float64(ns)) > 1e-4 {
		chk.Panic("block %q: f*N/ds=%g is not integral within 1e-4 (got ns=%d)", name, raw, ns)
	}
	if ns < 4 {
		chk.Panic("block %q: step count %d is below the minimum of 4", name, ns)
	}
	return &Block{
		Name: name, F: f, Ds: ds, Ns: ns, B: b, QuadWeight: 1.0,
		HeadJoined: append([]string{}, headJoined...),
		TailJoined: append([]string{}, tailJoined...),
		qHeadJnts:  make(map[string]*field.Field),
		qTailJnts:  make(map[string]*field.Field),
	}
}

// Bind attaches the grid/FFT plan used to solve this block's propagator.
func (o *Block) Bind(g *grid.Grid, fft *grid.FFT) {
	o.g = g
	o.fft = fft
}

// SetWField sets the conjugate (chemical potential) field this block's
// monomer species is subject to, and recomputes the pseudo-spectral
// operator coefficients.
func (o *Block) SetWField(w *field.Field) {
	o.w = w
	o.wfac = w.Clone()
	for i, v := range o.wfac.Data {
		o.wfac.Data[i] = math.Exp(-o.Ds * v / 2)
	}
	k2 := o.g.KSquaredGlobal()
	o.k2op = make([]float64, len(k2))
	for i, v := range k2 {
		o.k2op[i] = math.Exp(-o.Ds * o.B * o.B * v)
	}
}

// Reset recomputes the operator coefficients from the bound w field,
// clears junction-set flags, zeros the initial slots, and sets a free
// end's initial value to 1 (spec.md §4.3 step 1).
func (o *Block) Reset(d *fieldDecomp) {
	if o.w != nil {
		o.SetWField(o.w)
	}
	o.headInitialSet = false
	o.tailInitialSet = false
	o.headFinalSet = false
	o.tailFinalSet = false
	o.qHeadJnts = make(map[string]*field.Field)
	o.qTailJnts = make(map[string]*field.Field)

	o.QHeadInitial = d.newField()
	o.QTailInitial = d.newField()
	o.QHeadFinal = d.newField()
	o.QTailFinal = d.newField()

	if o.isFree(Head) {
		o.QHeadInitial.Fill(1)
		o.headInitialSet = true
	}
	if o.isFree(Tail) {
		o.QTailInitial.Fill(1)
		o.tailInitialSet = true
	}

	o.Q = make([]*field.Field, o.Ns+1)
	o.Qdag = make([]*field.Field, o.Ns+1)
}

// fieldDecomp is the minimal factory a Block needs to allocate fields
// without importing comm/grid.Decomp directly in its exported surface.
type fieldDecomp struct {
	newField func() *field.Field
}

// NewFieldFactory builds the helper Reset needs from a live field to copy
// the decomposition/communicator/component-count from.
func NewFieldFactory(template *field.Field) *fieldDecomp {
	return &fieldDecomp{newField: func() *field.Field {
		return field.New(template.D, template.Comm, template.Comps)
	}}
}

func (o *Block) isFree(e End) bool {
	names := o.HeadJoined
	if e == Tail {
		names = o.TailJoined
	}
	for _, n := range names {
		if n == FreeEnd {
			return true
		}
	}
	return len(names) == 0
}

// InitialSet reports whether q at end e is ready to solve from: either
// the end is free, or every joined neighbor has published into the
// junction map for that end.
func (o *Block) InitialSet(e End) bool {
	if e == Head {
		return o.headInitialSet
	}
	return o.tailInitialSet
}

// FinalSet reports whether q has been solved through to the opposite end.
func (o *Block) FinalSet(e End) bool {
	if e == Head {
		return o.headFinalSet
	}
	return o.tailFinalSet
}

// CombineJunctions multiplies every published neighbor value at end e
// elementwise into the initial slot for that end (spec.md §4.2).
func (o *Block) CombineJunctions(e End) {
	jnts := o.qHeadJnts
	names := o.HeadJoined
	initial := o.QHeadInitial
	if e == Tail {
		jnts = o.qTailJnts
		names = o.TailJoined
		initial = o.QTailInitial
	}
	for _, n := range names {
		if n == FreeEnd {
			continue
		}
		if _, ok := jnts[n]; !ok {
			return // not every neighbor has published yet
		}
	}
	initial.Fill(1)
	for _, n := range names {
		if n == FreeEnd {
			continue
		}
		initial.MulInPlace(jnts[n])
	}
	if e == Head {
		o.headInitialSet = true
	} else {
		o.tailInitialSet = true
	}
}

// ReceiveJunction stores a neighbor's published final-q value into this
// block's junction map for end e, keyed by the neighbor's name.
func (o *Block) ReceiveJunction(e End, neighborName string, value *field.Field) {
	if e == Head {
		o.qHeadJnts[neighborName] = value
	} else {
		o.qTailJnts[neighborName] = value
	}
}

// SolveQ integrates the modified-diffusion equation from end e through to
// the opposite end, filling Q (if e==Head) or Qdag (if e==Tail), and marks
// the opposite end final-set.
//
//	q(r,s+ds) = e^{-(ds/2)w(r)} · F^{-1}[ e^{-ds*b^2*k^2} · F[ e^{-(ds/2)w(r)} · q(r,s) ] ]
func (o *Block) SolveQ(e End) {
	if !o.InitialSet(e) {
		chk.Panic("block %q: cannot SolveQ(%v): initial slot not set", o.Name, e)
	}
	seq := o.Q
	start := o.QHeadInitial
	if e == Tail {
		seq = o.Qdag
		start = o.QTailInitial
	}
	seq[0] = start.Clone()
	for s := 0; s < o.Ns; s++ {
		cur := seq[s]
		half := cur.Clone()
		half.MulInPlace(o.wfac)
		fftOut := field.New(cur.D, cur.Comm, cur.Comps)
		o.fft.ScaledFFTPair(half.Data, o.k2op, fftOut.Data)
		fftOut.MulInPlace(o.wfac)
		seq[s+1] = fftOut
		for _, v := range fftOut.Data {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				chk.Panic("block %q: propagator diverged at contour step %d", o.Name, s+1)
			}
		}
	}
	final := seq[o.Ns]
	if e == Head {
		o.QTailFinal = final
		o.tailFinalSet = true
	} else {
		o.QHeadFinal = final
		o.headFinalSet = true
	}
}

// FinalValue returns the stored terminal propagator at end e, to be
// published into neighbors' junction maps by the owning polymer.
func (o *Block) FinalValue(e End) *field.Field {
	if e == Head {
		return o.QHeadFinal
	}
	return o.QTailFinal
}

// CalcQQTIntegral computes ∫ q(r,s)·q†(r,n_s-s) ds via composite Simpson's
// rule (spec.md §4.2), normalized by 1/Q. If Ns+1 (the point count) is
// even, Simpson is applied to the first Ns-1 intervals and a trapezoidal
// step covers the last interval.
func (o *Block) CalcQQTIntegral(Q float64) *field.Field {
	if Q == 0 || math.IsNaN(Q) || math.IsInf(Q, 0) {
		chk.Panic("block %q: CalcQQTIntegral called with non-finite Q=%g", o.Name, Q)
	}
	npts := o.Ns + 1
	acc := field.New(o.Q[0].D, o.Q[0].Comm, o.Q[0].Comps)

	prod := func(s int) *field.Field {
		p := o.Q[s].Clone()
		p.MulInPlace(o.Qdag[o.Ns-s])
		return p
	}

	simpsonUpper := npts - 1 // last index covered by Simpson's rule (inclusive), before trapezoidal tail
	if npts%2 == 0 {
		simpsonUpper = npts - 2 // leave last interval [npts-2, npts-1] for trapezoidal
	}
	for s := 0; s <= simpsonUpper; s++ {
		w := 2.0
		if s == 0 || s == simpsonUpper {
			w = 1.0
		} else if s%2 == 1 {
			w = 4.0
		}
		acc.AddScaled(w*o.Ds/3.0, prod(s))
	}
	if npts%2 == 0 {
		a := prod(simpsonUpper)
		b := prod(simpsonUpper + 1)
		acc.AddScaled(o.Ds/2.0, a)
		acc.AddScaled(o.Ds/2.0, b)
	}
	acc.Scale(1.0 / Q)
	return acc
}

// CalcBigQ computes the single-chain partition function Q from this
// block's propagator at contour index sRef (conventionally 0, the head),
// normalized by the unmasked effective volume effVol = Π N_i - V_constraint.
func (o *Block) CalcBigQ(sRef int, effVol float64) float64 {
	p := o.Q[sRef].Clone()
	p.MulInPlace(o.Qdag[o.Ns-sRef])
	Q := p.SumAll() / effVol
	if math.IsNaN(Q) || math.IsInf(Q, 0) {
		chk.Panic("block %q: single-chain partition function is not finite (Q=%g)", o.Name, Q)
	}
	return Q
}

// DensityContribution returns this block's contribution to the owning
// PhysField's density: (v*f*QuadWeight*wDens/(Nchain/Nref)) * (∫q·q†ds)/Q.
func (o *Block) DensityContribution(volFrac, wDens, nChain, nRef, Q float64) *field.Field {
	integral := o.CalcQQTIntegral(Q)
	scale := volFrac * o.F * o.QuadWeight * wDens / (nChain / nRef)
	integral.Scale(scale)
	return integral
}
