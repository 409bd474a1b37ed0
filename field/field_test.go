package field

import (
	"math"
	"testing"

	"github.com/polyswift-go/scftcore/comm"
	"github.com/polyswift-go/scftcore/grid"
)

func newTestField(t *testing.T, comps int) (*Field, *grid.Decomp) {
	g := grid.New([]int{4, 4}, []float64{1, 1})
	c := comm.Start(false)
	d := grid.NewDecomp(g, 0, 1)
	return New(d, c, comps), d
}

func TestFillAndMean(t *testing.T) {
	f, _ := newTestField(t, 1)
	f.Fill(3.5)
	if mean := f.Mean(); math.Abs(mean-3.5) > 1e-12 {
		t.Fatalf("expected mean 3.5, got %g", mean)
	}
	if sum := f.SumAll(); math.Abs(sum-3.5*16) > 1e-9 {
		t.Fatalf("expected sum %g, got %g", 3.5*16, sum)
	}
}

func TestAddSubScaleInPlace(t *testing.T) {
	a, _ := newTestField(t, 1)
	b, _ := newTestField(t, 1)
	a.Fill(1)
	b.Fill(2)

	a.AddInPlace(b)
	for i, v := range a.Data {
		if v != 3 {
			t.Fatalf("cell %d: expected 3 after AddInPlace, got %g", i, v)
		}
	}

	a.SubInPlace(b)
	for i, v := range a.Data {
		if v != 1 {
			t.Fatalf("cell %d: expected 1 after SubInPlace, got %g", i, v)
		}
	}

	a.Scale(4)
	for i, v := range a.Data {
		if v != 4 {
			t.Fatalf("cell %d: expected 4 after Scale, got %g", i, v)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	a, _ := newTestField(t, 1)
	a.Fill(1)
	b := a.Clone()
	b.Fill(9)
	if a.Data[0] == b.Data[0] {
		t.Fatalf("Clone should be independent: a=%g b=%g", a.Data[0], b.Data[0])
	}
}

func TestClipMaxCapsAboveThreshold(t *testing.T) {
	f, _ := newTestField(t, 1)
	for i := range f.Data {
		f.Data[i] = float64(i)
	}
	f.ClipMax(5)
	for i, v := range f.Data {
		if v > 5 {
			t.Fatalf("cell %d: expected value capped at 5, got %g", i, v)
		}
	}
}

func TestNonConformantPanics(t *testing.T) {
	a, _ := newTestField(t, 1)
	g2 := grid.New([]int{2, 2}, []float64{1, 1})
	c2 := comm.Start(false)
	d2 := grid.NewDecomp(g2, 0, 1)
	b := New(d2, c2, 1)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected AddInPlace to panic on non-conformant fields")
		}
	}()
	a.AddInPlace(b)
}
