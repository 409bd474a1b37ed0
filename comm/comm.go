// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package comm wraps github.com/cpmech/gosl/mpi behind a narrow interface
// so the rest of the engine never imports gosl/mpi directly, mirroring
// how gofem centralizes process topology access through fem.Domain.
package comm

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/mpi"
)

// Communicator is the collective reduction/broadcast interface consumed by
// the core (spec.md §1 item iii). All methods below are implicitly
// collective: every rank must call them in the same order.
type Communicator struct {
	distributed bool
}

// Start brings up the process-wide communicator. Call once at program
// start, before any other Communicator method.
func Start(distributed bool) *Communicator {
	if distributed {
		mpi.Start(false)
	}
	return &Communicator{distributed: distributed}
}

// Stop tears down the communicator.
func (o *Communicator) Stop() {
	if o.distributed {
		mpi.Stop(false)
	}
}

// Rank returns this process's rank, 0 in a non-distributed run.
func (o *Communicator) Rank() int {
	if o.distributed {
		return mpi.Rank()
	}
	return 0
}

// Size returns the number of ranks, 1 in a non-distributed run.
func (o *Communicator) Size() int {
	if o.distributed {
		return mpi.Size()
	}
	return 1
}

// IsRoot reports whether this rank is rank 0.
func (o *Communicator) IsRoot() bool { return o.Rank() == 0 }

// Barrier blocks until every rank has called Barrier.
func (o *Communicator) Barrier() {
	if o.distributed {
		mpi.Barrier()
	}
}

// AllReduceSum reduces dest in place (the sum over all ranks, collective).
func (o *Communicator) AllReduceSum(dest []float64) {
	if o.distributed {
		mpi.AllReduceSum(dest, make([]float64, len(dest)))
		return
	}
}

// AllReduceMax reduces dest in place to the per-element max over ranks.
func (o *Communicator) AllReduceMax(dest []float64) {
	if o.distributed {
		mpi.AllReduceMax(dest, make([]float64, len(dest)))
	}
}

// AllReduceMin reduces dest in place to the per-element min over ranks.
func (o *Communicator) AllReduceMin(dest []float64) {
	if o.distributed {
		mpi.AllReduceMin(dest, make([]float64, len(dest)))
	}
}

// SumFloat64 reduces a single scalar to its sum over all ranks.
func (o *Communicator) SumFloat64(v float64) float64 {
	if !o.distributed {
		return v
	}
	buf := []float64{v}
	o.AllReduceSum(buf)
	return buf[0]
}

// MaxFloat64 reduces a single scalar to its max over all ranks.
func (o *Communicator) MaxFloat64(v float64) float64 {
	if !o.distributed {
		return v
	}
	buf := []float64{v}
	o.AllReduceMax(buf)
	return buf[0]
}

// MinFloat64 reduces a single scalar to its min over all ranks.
func (o *Communicator) MinFloat64(v float64) float64 {
	if !o.distributed {
		return v
	}
	buf := []float64{v}
	o.AllReduceMin(buf)
	return buf[0]
}

// IntAllReduceMax reduces a single int to its max over all ranks.
func (o *Communicator) IntAllReduceMax(v int) int {
	if !o.distributed {
		return v
	}
	return mpi.IntAllReduceMax(v)
}

// BcastFromRoot broadcasts buf (already populated on rank 0) to all ranks.
func (o *Communicator) BcastFromRoot(buf []float64) {
	if o.distributed {
		mpi.BcastFromRoot(buf)
	}
}

// AllGather gathers each rank's local slice into a single global slice, in
// rank order, on every rank.
func (o *Communicator) AllGather(local []float64, counts []int) []float64 {
	if !o.distributed {
		return append([]float64{}, local...)
	}
	total := 0
	for _, c := range counts {
		total += c
	}
	global := make([]float64, total)
	ok := mpi.AllGather(global, local)
	if !ok {
		chk.Panic("comm: AllGather failed")
	}
	return global
}

// AllToAllV exchanges variable-length slices between every pair of ranks
// (spec.md §5). grid.FFT does not use it: the FFT gathers the full grid
// with AllGather.
func (o *Communicator) AllToAllV(send [][]float64) [][]float64 {
	if !o.distributed {
		return send
	}
	recv := make([][]float64, o.Size())
	mpi.AllToAllV(send, recv)
	return recv
}

// Distributed reports whether this communicator is backed by real MPI.
func (o *Communicator) Distributed() bool { return o.distributed }
