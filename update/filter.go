// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package update

import (
	"github.com/polyswift-go/scftcore/field"
	"github.com/polyswift-go/scftcore/grid"
)

// SpectralFilter damps low-amplitude k-modes of w in place, per spec.md
// §4.6: ŵ(0) is subtracted first, then modes with |ŵ(k)| below
// factor*max_k|ŵ| are multiplied by filterStrength. When regionCells is
// non-nil, the cutoff is computed per sub-region of k-space (partitioned
// into blocks of size N_i/regionCells[i]) instead of globally.
func SpectralFilter(w *field.Field, g *grid.Grid, fft *grid.FFT, factor, filterStrength float64, regionCells []int) {
	global := fft.CalcForwardFFT(w.Data)
	global[0] = 0 // subtract ŵ(0)

	mag := make([]float64, len(global))
	for i, v := range global {
		mag[i] = realPart(v)*realPart(v) + imagPart(v)*imagPart(v)
	}

	var cutoff []float64
	if regionCells == nil {
		m := 0.0
		for _, v := range mag {
			if v > m {
				m = v
			}
		}
		cutoff = make([]float64, len(mag))
		for i := range cutoff {
			cutoff[i] = factor * factor * m // compare against |w|^2 == mag
		}
	} else {
		cutoff = perRegionCutoff(g, mag, factor, regionCells)
	}

	for i, v := range global {
		if mag[i] < cutoff[i] {
			global[i] *= complex(filterStrength, 0)
		}
	}

	local := fft.CalcBackwardFFT(global)
	n := float64(fft.TotalGlobal())
	for i := range local {
		local[i] /= n
	}
	copy(w.Data, local)
}

func realPart(c complex128) float64 { return real(c) }
func imagPart(c complex128) float64 { return imag(c) }

// perRegionCutoff partitions k-space into blocks of size N_i/regionCells[i]
// per axis and computes factor^2 * max|w|^2 within each block, broadcast
// back to every cell of that block.
func perRegionCutoff(g *grid.Grid, mag []float64, factor float64, regionCells []int) []float64 {
	blockSize := make([]int, g.Dim)
	numBlocks := make([]int, g.Dim)
	for i := range blockSize {
		blockSize[i] = g.N[i] / regionCells[i]
		if blockSize[i] < 1 {
			blockSize[i] = 1
		}
		numBlocks[i] = (g.N[i] + blockSize[i] - 1) / blockSize[i]
	}
	totalBlocks := 1
	for _, nb := range numBlocks {
		totalBlocks *= nb
	}
	blockMax := make([]float64, totalBlocks)

	idx := make([]int, g.Dim)
	blockIdx := make([]int, g.Dim)
	for lin := 0; lin < len(mag); lin++ {
		rem := lin
		for a := g.Dim - 1; a >= 0; a-- {
			idx[a] = rem % g.N[a]
			rem /= g.N[a]
			blockIdx[a] = idx[a] / blockSize[a]
		}
		bLin := 0
		for a := 0; a < g.Dim; a++ {
			bLin = bLin*numBlocks[a] + blockIdx[a]
		}
		if mag[lin] > blockMax[bLin] {
			blockMax[bLin] = mag[lin]
		}
	}

	cutoff := make([]float64, len(mag))
	for lin := 0; lin < len(mag); lin++ {
		rem := lin
		for a := g.Dim - 1; a >= 0; a-- {
			idx[a] = rem % g.N[a]
			rem /= g.N[a]
			blockIdx[a] = idx[a] / blockSize[a]
		}
		bLin := 0
		for a := 0; a < g.Dim; a++ {
			bLin = bLin*numBlocks[a] + blockIdx[a]
		}
		cutoff[lin] = factor * factor * blockMax[bLin]
	}
	return cutoff
}
