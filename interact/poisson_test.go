package interact

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/num"
	"github.com/polyswift-go/scftcore/comm"
	"github.com/polyswift-go/scftcore/field"
	"github.com/polyswift-go/scftcore/grid"
)

// TestPoissonSolveMatchesFiniteDifferenceLaplacian is the §8 scenario: a
// single-mode, zero-mean charge distribution and ℓ_B=1 should produce a
// potential satisfying -∇²ψ ≈ 4πρ, checked with a central finite
// difference to 1e-3.
func TestPoissonSolveMatchesFiniteDifferenceLaplacian(t *testing.T) {
	n := 32
	g := grid.New([]int{n}, []float64{1})
	c := comm.Start(false)
	d := grid.NewDecomp(g, 0, 1)
	fft := grid.NewFFT(g, d, c)

	k := 2 * math.Pi / float64(n)
	amp := 0.01
	rho := field.New(d, c, 1)
	for i := range rho.Data {
		rho.Data[i] = amp * math.Cos(k*float64(i))
	}
	psi := field.New(d, c, 1)

	ps := NewPoisson("charge", "rho", rho, psi, 1.0, g, fft)
	ps.Solve()

	// psiAt periodically samples psi at an integer cell index; every x
	// num.DerivCentral below ever evaluates it at lands exactly on an
	// integer (h=0.5 composed with itself cancels to whole-cell steps),
	// so no interpolation between cells is needed.
	psiAt := func(x float64) float64 {
		idx := ((int(math.Round(x)) % n) + n) % n
		return psi.Data[idx]
	}
	h := 0.5
	for i := 0; i < n; i++ {
		lap, _ := num.DerivCentral(func(x float64, args ...interface{}) float64 {
			d1, _ := num.DerivCentral(func(xx float64, args ...interface{}) float64 {
				return psiAt(xx)
			}, x, h)
			return d1
		}, float64(i), h)
		got := -lap
		want := 4 * math.Pi * rho.Data[i]
		if math.Abs(got-want) > 1e-3 {
			t.Fatalf("cell %d: -laplacian(psi)=%g, want 4*pi*rho=%g", i, got, want)
		}
	}
}

// TestPoissonZeroMeanCharge checks that a uniform (zero-variation) charge
// field produces an identically zero potential, since the k=0 mode is
// dropped by construction (spec.md §4.5 "psi_hat(0)=0").
func TestPoissonZeroMeanCharge(t *testing.T) {
	n := 8
	g := grid.New([]int{n}, []float64{1})
	c := comm.Start(false)
	d := grid.NewDecomp(g, 0, 1)
	fft := grid.NewFFT(g, d, c)

	rho := field.New(d, c, 1)
	rho.Fill(0.5)
	psi := field.New(d, c, 1)

	ps := NewPoisson("charge", "rho", rho, psi, 1.0, g, fft)
	ps.Solve()

	for i, v := range psi.Data {
		if math.Abs(v) > 1e-9 {
			t.Fatalf("cell %d: expected zero potential for uniform charge, got %g", i, v)
		}
	}
}
