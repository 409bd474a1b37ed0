package physfield

import (
	"math"
	"testing"

	"github.com/polyswift-go/scftcore/comm"
	"github.com/polyswift-go/scftcore/field"
	"github.com/polyswift-go/scftcore/grid"
	"github.com/polyswift-go/scftcore/psrand"
)

func newTestPhysField(t *testing.T) *PhysField {
	g := grid.New([]int{4, 4}, []float64{1, 1})
	c := comm.Start(false)
	d := grid.NewDecomp(g, 0, 1)
	dens := field.New(d, c, 1)
	conj := field.New(d, c, 1)
	return New("A", dens, conj)
}

func TestInitializeFillsConjugateAndResetsAverage(t *testing.T) {
	pf := newTestPhysField(t)
	streams := psrand.New(1, 0)
	pf.Initialize(streams, -0.1, 0.1)

	for i, v := range pf.GetConjgField().Data {
		if v < -0.1 || v > 0.1 {
			t.Fatalf("cell %d: conjugate field value %g out of range [-0.1,0.1]", i, v)
		}
	}
	avg := pf.DensAverage()
	for i, v := range avg.Data {
		if v != 0 {
			t.Fatalf("cell %d: expected freshly-initialized average to be zero, got %g", i, v)
		}
	}
}

func TestAddToDensAverageAccumulates(t *testing.T) {
	pf := newTestPhysField(t)
	pf.GetDensField().Fill(2)
	pf.AddToDensAverage()
	pf.GetDensField().Fill(4)
	pf.AddToDensAverage()

	avg := pf.DensAverage()
	for i, v := range avg.Data {
		if math.Abs(v-3) > 1e-12 {
			t.Fatalf("cell %d: expected running average 3, got %g", i, v)
		}
	}
}

func TestResetDensFieldZeroesDensity(t *testing.T) {
	pf := newTestPhysField(t)
	pf.GetDensField().Fill(5)
	pf.ResetDensField()
	for i, v := range pf.GetDensField().Data {
		if v != 0 {
			t.Fatalf("cell %d: expected zero after ResetDensField, got %g", i, v)
		}
	}
}

func TestGetShiftedDensFieldSubtractsMean(t *testing.T) {
	pf := newTestPhysField(t)
	d := pf.GetDensField()
	for i := range d.Data {
		d.Data[i] = float64(i)
	}
	shifted := pf.GetShiftedDensField()
	if math.Abs(shifted.Mean()) > 1e-9 {
		t.Fatalf("expected zero-mean shifted field, got mean %g", shifted.Mean())
	}
}
