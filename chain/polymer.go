// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chain

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/polyswift-go/scftcore/field"
)

// Polymer holds an ordered collection of blocks with a shared volume
// fraction, total scaled length, and derived log Q (spec.md §3).
type Polymer struct {
	Name      string
	VolFrac   float64
	N         float64 // total scaled chain length
	Blocks    []*Block
	blockByNm map[string]*Block

	LogQ float64 // single-chain partition function logarithm, set by Update
}

// NewPolymer builds the static block-name -> block map used to resolve
// junction neighbors during Update.
func NewPolymer(name string, volFrac, totalN float64, blocks []*Block) *Polymer {
	p := &Polymer{Name: name, VolFrac: volFrac, N: totalN, Blocks: blocks, blockByNm: make(map[string]*Block)}
	for _, b := range blocks {
		p.blockByNm[b.Name] = b
	}
	return p
}

// Block returns the block registered under the given name, or nil.
func (o *Polymer) Block(name string) *Block { return o.blockByNm[name] }

// Update performs one full propagator solve of the polymer's block graph
// (spec.md §4.3): reset every block, repeatedly combine junctions and
// solve ready ends until every block is updated, compute Q, then evaluate
// each block's density integral and feed it into densityTargets.
//
// densityTargets maps a block's name to the Field its contribution should
// be added into (the owning PhysField's density buffer); effVol is the
// unmasked volume Π N_i - V_constraint; nRef is the reference chain
// length used to normalize density weights.
func (o *Polymer) Update(densityTargets map[string]*field.Field, effVol, nRef float64) {
	for _, b := range o.Blocks {
		b.Reset(NewFieldFactory(o.anyFieldTemplate()))
	}

	remaining := len(o.Blocks) * 2 // two ends per block must become final-set
	for iter := 0; remaining > 0; iter++ {
		if iter > 4*len(o.Blocks)+16 {
			chk.Panic("polymer %q: block graph traversal did not converge; check for a cycle", o.Name)
		}
		progressed := false
		for _, b := range o.Blocks {
			for _, e := range []End{Head, Tail} {
				if !b.FinalSet(e.other()) {
					if !b.InitialSet(e) {
						b.CombineJunctions(e)
					}
					if b.InitialSet(e) && !b.FinalSet(e.other()) {
						b.SolveQ(e)
						progressed = true
						o.publish(b, e.other())
					}
				}
			}
		}
		remaining = 0
		for _, b := range o.Blocks {
			if !b.FinalSet(Head) {
				remaining++
			}
			if !b.FinalSet(Tail) {
				remaining++
			}
		}
		if !progressed && remaining > 0 {
			chk.Panic("polymer %q: block graph deadlocked; check junction connectivity for a cycle", o.Name)
		}
	}

	Q := o.Blocks[0].CalcBigQ(0, effVol)
	o.LogQ = math.Log(Q)

	for _, b := range o.Blocks {
		contrib := b.DensityContribution(o.VolFrac, 1.0, o.N, nRef, Q)
		target, ok := densityTargets[b.Name]
		if !ok {
			chk.Panic("polymer %q: no density target registered for block %q", o.Name, b.Name)
		}
		target.AddInPlace(contrib)
	}
}

// publish stores the block's newly solved final-q value into every
// neighbor joined at end e's junction map, keyed by this block's name.
func (o *Polymer) publish(b *Block, e End) {
	names := b.HeadJoined
	if e == Tail {
		names = b.TailJoined
	}
	value := b.FinalValue(e)
	for _, n := range names {
		if n == FreeEnd {
			continue
		}
		nb, ok := o.blockByNm[n]
		if !ok {
			chk.Panic("polymer %q: block %q joins unknown block %q", o.Name, b.Name, n)
		}
		oppositeEndOfNeighbor := opposingEndFor(nb, b.Name)
		nb.ReceiveJunction(oppositeEndOfNeighbor, b.Name, value)
	}
}

// opposingEndFor finds which end of nb lists myName as a neighbor, so the
// publication lands in the matching junction map.
func opposingEndFor(nb *Block, myName string) End {
	for _, n := range nb.HeadJoined {
		if n == myName {
			return Head
		}
	}
	return Tail
}

// anyFieldTemplate returns a representative Field to clone the
// decomposition/communicator/component layout from; every block of a
// polymer shares the same grid, so the first block's conjugate field
// suffices once bound.
func (o *Polymer) anyFieldTemplate() *field.Field {
	for _, b := range o.Blocks {
		if b.w != nil {
			return b.w
		}
	}
	chk.Panic("polymer %q: no block has a bound conjugate field; call SetWField before Update", o.Name)
	return nil
}
