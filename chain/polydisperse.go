// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chain

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/num"
)

// GaussLaguerreNodes computes the n abscissas and weights of the
// generalized Gauss-Laguerre quadrature rule for exponent alpha, the
// standard recipe used to seed Schulz-distribution quadrature (spec.md
// §4.3; original PolySwift++ uses the analogous TxQuadGaussLag table,
// not reproduced here — the node/weight pairs obtained from the
// classical three-term recurrence are numerically identical to a fixed
// precision). Each root of the generalized Laguerre polynomial L_n^alpha
// is refined from an asymptotic initial guess with a 1-D gosl/num.NlSolver
// Newton solve, the same one-equation NlSolver.Init/Solve idiom used for
// scalar nonlinear roots elsewhere in the corpus.
func GaussLaguerreNodes(n int, alpha float64) (x, w []float64) {
	if n < 1 {
		chk.Panic("GaussLaguerreNodes: n must be >= 1, got %d", n)
	}
	x = make([]float64, n)
	w = make([]float64, n)
	for i := 0; i < n; i++ {
		var xi float64
		switch {
		case i == 0:
			xi = (1 + alpha) * (3 + 0.92*alpha) / (1 + 2.4*float64(n) + 1.8*alpha)
		case i == 1:
			xi = x[0] + (15+6.25*alpha)/(1+0.9*alpha+2.5*float64(n))
		default:
			r1 := (1 + 2.55*float64(i-1)) / (1.9 * float64(i-1))
			r2 := 1.26 * float64(i-1) * alpha / (1 + 3.5*float64(i-1))
			ratio := (1 + r1) / (1 + r2)
			xi = x[i-1] + ratio*(x[i-1]-x[i-2])
		}
		x[i] = refineLaguerreRoot(n, alpha, xi)
		_, dp := laguerrePoly(n, alpha, x[i])
		pm1, _ := laguerrePoly(n-1, alpha, x[i])
		g1 := lgamma(float64(n) + alpha)
		g2 := lgamma(float64(n))
		w[i] = -math.Exp(g1-g2) / (dp * float64(n) * pm1)
	}
	return x, w
}

// refineLaguerreRoot polishes an asymptotic initial guess for a root of
// L_n^alpha via a single-equation Newton solve.
func refineLaguerreRoot(n int, alpha, guess float64) float64 {
	var nls num.NlSolver
	defer nls.Clean()
	fx := func(fx, X []float64) error {
		p, _ := laguerrePoly(n, alpha, X[0])
		fx[0] = p
		return nil
	}
	dfdx := func(dfdx [][]float64, X []float64) error {
		_, dp := laguerrePoly(n, alpha, X[0])
		dfdx[0][0] = dp
		return nil
	}
	X := []float64{guess}
	nls.Init(1, fx, nil, dfdx, true, false, nil)
	nls.Solve(X, false)
	return X[0]
}

func lgamma(x float64) float64 {
	v, _ := math.Lgamma(x)
	return v
}

// laguerrePoly evaluates the generalized Laguerre polynomial L_n^alpha(x)
// and its derivative via the three-term recurrence.
func laguerrePoly(n int, alpha, x float64) (p, dp float64) {
	if n == 0 {
		return 1, 0
	}
	l0, l1 := 1.0, 1+alpha-x
	dl0, dl1 := 0.0, -1.0
	if n == 1 {
		return l1, dl1
	}
	for k := 2; k <= n; k++ {
		fk := float64(k)
		l2 := ((2*fk-1+alpha-x)*l1 - (fk-1+alpha)*l0) / fk
		dl2 := ((2*fk-1+alpha-x)*dl1 - l1 - (fk-1+alpha)*dl0) / fk
		l0, l1 = l1, l2
		dl0, dl1 = dl1, dl2
	}
	return l1, dl1
}

// SchulzQuadrature generates the n_g length-fraction/raw-weight pairs for
// a polydisperse seed block of total length N, non-polydisperse length
// Nc, under a Schulz distribution with shape parameter alpha (spec.md
// §4.3):
//
//	n_b = (N - Nc) / alpha
//	f_k = (x_k*n_b + Nc) / N - (1 - fPoly)
//
// rawWeights are the unnormalized Gauss-Laguerre weights w_k; callers
// divide by Γ(alpha) to obtain the density weight (w_k/Γ(alpha)) and
// again when combining log Q via CombineLogQ, matching spec.md's
// formulas exactly rather than pre-baking the Γ division in here.
func SchulzQuadrature(nG int, alpha, fPoly, N, Nc float64) (lengthFracs, rawWeights []float64) {
	x, w := GaussLaguerreNodes(nG, alpha-1)
	nb := (N - Nc) / alpha
	lengthFracs = make([]float64, nG)
	rawWeights = make([]float64, nG)
	for k := 0; k < nG; k++ {
		lengthFracs[k] = (x[k]*nb+Nc)/N - (1 - fPoly)
		rawWeights[k] = w[k]
	}
	return lengthFracs, rawWeights
}

// DensityWeight returns w_k/Γ(alpha), the per-copy density/length weight.
func DensityWeight(rawWeight, alpha float64) float64 {
	return rawWeight / math.Gamma(alpha)
}

// CombineLogQ computes log Q_chain = Σ_k (log Q_k * w_k) / Γ(alpha) for a
// polydisperse polymer's set of virtual-block quadrature copies, given
// the raw (un-normalized) Gauss-Laguerre weights.
func CombineLogQ(logQk, rawWeights []float64, alpha float64) float64 {
	if len(logQk) != len(rawWeights) {
		chk.Panic("CombineLogQ: length mismatch %d != %d", len(logQk), len(rawWeights))
	}
	sum := 0.0
	for k := range logQk {
		sum += logQk[k] * rawWeights[k]
	}
	return sum / math.Gamma(alpha)
}
