package bndry

import (
	"os"
	"testing"

	"github.com/polyswift-go/scftcore/comm"
	"github.com/polyswift-go/scftcore/field"
	"github.com/polyswift-go/scftcore/grid"
	"github.com/polyswift-go/scftcore/psrand"
)

// TestParticleInsertionNoOverlap is spec.md §8 scenario 5: 10 particles of
// radius 4 inserted into a 64^3 box must all succeed with pairwise
// shortest-image separation >= 2*radius.
func TestParticleInsertionNoOverlap(t *testing.T) {
	g := grid.New([]int{64, 64, 64}, []float64{1, 1, 1})
	c := comm.Start(false)
	d := grid.NewDecomp(g, 0, 1)
	streams := psrand.New(7, 0)
	reg := NewRegistry()

	const radius = 4.0
	var particles []*NanoParticle
	for i := 0; i < 10; i++ {
		dens := field.New(d, c, 1)
		p, err := InsertParticle(i, g, d, c, dens, reg, streams, radius, 1.0, 10000)
		if err != nil {
			t.Fatalf("particle %d: %v", i, err)
		}
		reg.Add(p)
		particles = append(particles, p)
	}

	for i := 0; i < len(particles); i++ {
		for j := i + 1; j < len(particles); j++ {
			diff := g.MapDistToGrid(particles[i].CenterPt, particles[j].CenterPt)
			r2 := 0.0
			for _, v := range diff {
				r2 += v * v
			}
			if r2 < (2*radius)*(2*radius)-1e-9 {
				t.Fatalf("particles %d,%d overlap: sep^2=%g want>=%g", i, j, r2, (2*radius)*(2*radius))
			}
		}
	}
}

// TestWallRasterRoundTrip exercises the spec.md §6 raster format.
func TestWallRasterRoundTrip(t *testing.T) {
	content := "header1\nheader2\nheader3\n2 2 1 junk\nskip\n" +
		"0 0 0 0.1\n1 0 0 0.2\n0 1 0 0.3\n1 1 0 0.4\n"
	f, err := os.CreateTemp("", "raster-*.txt")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	if _, err := f.WriteString(content); err != nil {
		t.Fatal(err)
	}
	f.Close()

	values, err := ReadRasterFile(f.Name(), []int{2, 2, 1})
	if err != nil {
		t.Fatalf("ReadRasterFile: %v", err)
	}
	want := []float64{0.1, 0.3, 0.2, 0.4}
	for i := range want {
		if values[i] != want[i] {
			t.Errorf("values[%d] = %g, want %g", i, values[i], want[i])
		}
	}
}
