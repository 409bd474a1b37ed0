package interact

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/num"
	"github.com/polyswift-go/scftcore/comm"
	"github.com/polyswift-go/scftcore/field"
	"github.com/polyswift-go/scftcore/grid"
)

// TestFloryDfDMatchesFiniteDifference checks CalcDfD against a central
// finite difference of the local free-energy functional at one cell,
// holding every other cell fixed (spec.md §4.4, §8 scenario 3).
func TestFloryDfDMatchesFiniteDifference(t *testing.T) {
	g := grid.New([]int{4, 4}, []float64{1, 1})
	c := comm.Start(false)
	d := grid.NewDecomp(g, 0, 1)

	phiA := field.New(d, c, 1)
	phiB := field.New(d, c, 1)
	for i := range phiA.Data {
		phiA.Data[i] = 0.3 + 0.1*float64(i%4)
		phiB.Data[i] = 1 - phiA.Data[i]
	}
	chiN := field.New(d, c, 1)
	chiN.Fill(15)
	effVol := float64(g.NumCellsGlobal())

	fl := NewFlory("AB", "A", "B", phiA, phiB, nil, chiN, effVol)

	dest := field.New(d, c, 1)
	fl.CalcDfD("A", dest)

	cell := 0
	feAt := func(val float64, args ...interface{}) float64 {
		saved := phiA.Data[cell]
		phiA.Data[cell] = val
		fe := field.New(d, c, 1)
		fl.CalcFe(fe, true)
		total := fe.SumAll()
		phiA.Data[cell] = saved
		return total
	}
	fd, _ := num.DerivCentral(feAt, phiA.Data[cell], 1e-6)

	got := dest.Data[cell]
	if math.Abs(got-fd) > 1e-3 {
		t.Fatalf("CalcDfD mismatch at cell %d: analytic=%g finite-diff=%g", cell, got, fd)
	}
}

// TestFloryWallMaskRemovesMeanInsideHardRegion checks that a saturated
// wall density masks only the mean term of ∂F/∂φ_A = χN·(φ_B -
// <φ_B>·(1-φ_wall)), leaving χN·φ_B/V_eff inside a fully occupied cell.
func TestFloryWallMaskRemovesMeanInsideHardRegion(t *testing.T) {
	g := grid.New([]int{4, 4}, []float64{1, 1})
	c := comm.Start(false)
	d := grid.NewDecomp(g, 0, 1)

	phiA := field.New(d, c, 1)
	phiB := field.New(d, c, 1)
	phiA.Fill(0.4)
	phiB.Fill(0.6)
	wall := field.New(d, c, 1)
	wall.Data[0] = 1.0 // fully occupied cell

	chiN := field.New(d, c, 1)
	chiN.Fill(20)
	fl := NewFlory("AB", "A", "B", phiA, phiB, wall, chiN, float64(g.NumCellsGlobal()))

	dest := field.New(d, c, 1)
	fl.CalcDfD("A", dest)
	want := 20 * 0.6 / float64(g.NumCellsGlobal())
	if math.Abs(dest.Data[0]-want) > 1e-12 {
		t.Fatalf("expected χN·φ_B/V_eff=%g inside a fully saturated wall cell, got %g", want, dest.Data[0])
	}
}
