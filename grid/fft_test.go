package grid

import (
	"math"
	"testing"

	"github.com/polyswift-go/scftcore/comm"
)

// TestFFTRoundTrip is scenario 3 of spec.md §8: fill x(r)=sin(2π i/32) on a
// 32×32×32 grid, apply ScaledFFTPair with kMul≡1 (ScaledFFTPair applies
// the 1/total round-trip normalization itself), and recover x to 1e-10.
func TestFFTRoundTrip(t *testing.T) {
	g := New([]int{32, 32, 32}, []float64{1, 1, 1})
	c := comm.Start(false)
	d := NewDecomp(g, 0, 1)
	f := NewFFT(g, d, c)

	total := g.NumCellsGlobal()
	x := make([]float64, total)
	idx := make([]int, 3)
	for lin := 0; lin < total; lin++ {
		rem := lin
		for a := 2; a >= 0; a-- {
			idx[a] = rem % g.N[a]
			rem /= g.N[a]
		}
		x[lin] = math.Sin(2 * math.Pi * float64(idx[0]) / 32.0)
	}

	kMul := make([]float64, total)
	for i := range kMul {
		kMul[i] = 1.0
	}
	y := make([]float64, total)
	f.ScaledFFTPair(x, kMul, y)

	var maxErr float64
	for i := range x {
		e := math.Abs(y[i] - x[i])
		if e > maxErr {
			maxErr = e
		}
	}
	if maxErr > 1e-10 {
		t.Fatalf("round trip error too large: %g", maxErr)
	}
}

func TestKSquaredFolding(t *testing.T) {
	g := New([]int{8}, []float64{1})
	k2 := g.KSquaredGlobal()
	if k2[0] != 0 {
		t.Fatalf("k^2 at origin must be zero, got %g", k2[0])
	}
	if len(k2) != 8 {
		t.Fatalf("expected 8 entries, got %d", len(k2))
	}
}
