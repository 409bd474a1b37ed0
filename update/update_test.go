package update

import (
	"math"
	"testing"

	"github.com/polyswift-go/scftcore/comm"
	"github.com/polyswift-go/scftcore/field"
	"github.com/polyswift-go/scftcore/grid"
	"github.com/polyswift-go/scftcore/interact"
	"github.com/polyswift-go/scftcore/psrand"
)

// TestPressureMeanIsZero checks the §8 invariant: after updatePressure,
// <p(r)>_{1-φ_wall} = 0 within tolerance.
func TestPressureMeanIsZero(t *testing.T) {
	g := grid.New([]int{8, 8}, []float64{1, 1})
	c := comm.Start(false)
	d := grid.NewDecomp(g, 0, 1)

	wA := field.New(d, c, 1)
	wB := field.New(d, c, 1)
	streams := psrand.New(1, 0)
	wA.FillGaussian(streams, 0, 1)
	wB.FillGaussian(streams, 0, 1)

	phiA := field.New(d, c, 1)
	phiB := field.New(d, c, 1)
	phiA.Fill(0.5)
	phiB.Fill(0.5)

	chiN := field.New(d, c, 1)
	chiN.Fill(20)

	flory := interact.NewFlory("AB", "A", "B", phiA, phiB, nil, chiN, float64(g.NumCellsGlobal()))

	p := field.New(d, c, 1)
	u := &Updater{
		FieldNames:   []string{"A", "B"},
		W:            []*field.Field{wA, wB},
		Phi:          []*field.Field{phiA, phiB},
		Pressure:     p,
		Interactions: []interact.Interaction{flory},
		Lambda0:      0.01,
		Lambda1:      0.005,
		Streams:      streams,
	}
	u.Step()

	mean := nonWallMean(p, nil)
	if math.Abs(mean) > 1e-8 {
		t.Fatalf("pressure mean should be ~0, got %g", mean)
	}
}
