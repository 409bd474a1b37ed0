package chain

import (
	"math"
	"testing"

	"github.com/polyswift-go/scftcore/comm"
	"github.com/polyswift-go/scftcore/field"
	"github.com/polyswift-go/scftcore/grid"
)

func newTestGrid(t *testing.T) (*grid.Grid, *grid.Decomp, *comm.Communicator, *grid.FFT) {
	t.Helper()
	g := grid.New([]int{8, 8, 8}, []float64{1, 1, 1})
	c := comm.Start(false)
	d := grid.NewDecomp(g, 0, 1)
	f := grid.NewFFT(g, d, c)
	return g, d, c, f
}

// TestFreeChainIsUnity is scenario 2 of spec.md §8: a free Gaussian chain
// with w≡0 must have q(r,s)=1 everywhere and Q=1.
func TestFreeChainIsUnity(t *testing.T) {
	g, d, c, fft := newTestGrid(t)
	w := field.New(d, c, 1)
	w.Fill(0)

	b := NewBlock("A", 1.0, 0.1, 1.0, 10.0, false, []string{FreeEnd}, []string{FreeEnd})
	b.Bind(g, fft)
	b.SetWField(w)
	b.Reset(NewFieldFactory(w))
	b.SolveQ(Head)
	b.SolveQ(Tail)

	for s := 0; s <= b.Ns; s++ {
		for _, v := range b.Q[s].Data {
			if math.Abs(v-1) > 1e-9 {
				t.Fatalf("q[%d] should be 1, got %g", s, v)
			}
		}
	}
	Q := b.CalcBigQ(0, float64(g.NumCellsGlobal()))
	if math.Abs(Q-1) > 1e-9 {
		t.Fatalf("Q should be 1, got %g", Q)
	}
}

func TestSchulzQuadratureSumsToOne(t *testing.T) {
	alpha := 2.0
	nG := 4
	fPoly := 0.5
	N := 100.0
	Nc := (1 - fPoly) * N
	fracs, raw := SchulzQuadrature(nG, alpha, fPoly, N, Nc)
	sum := 0.0
	for k := range fracs {
		sum += fracs[k] * DensityWeight(raw[k], alpha)
	}
	total := sum + (1 - fPoly)
	if math.Abs(total-1) > 1e-3 {
		t.Fatalf("quadrature length-weighted sum should be ~1, got %g", total)
	}
}
