package biquad

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestResponse_PassthroughIsUnity(t *testing.T) {
	c := passthrough()
	for _, f := range []float64{1, 10, 60, 100} {
		h := c.Response(f, 256)
		if !almostEqual(cmplx.Abs(h), 1, eps) {
			t.Errorf("|H(%v)|: got %v, want 1", f, cmplx.Abs(h))
		}
	}
}

func TestMagnitudeSquared_MatchesResponse(t *testing.T) {
	c := Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04}
	for _, f := range []float64{0.5, 4, 13, 30, 100} {
		want := cmplx.Abs(c.Response(f, 256))
		got := math.Sqrt(c.MagnitudeSquared(f, 256))
		if !almostEqual(got, want, 1e-9) {
			t.Errorf("|H(%v)|: closed-form %v, response %v", f, got, want)
		}
	}
}

func TestChainMagnitudeDB_SumsSections(t *testing.T) {
	coeffs := []Coefficients{
		{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04},
		{B0: 0.5, B1: 0.5},
	}
	chain := NewChain(coeffs)

	f := 10.0
	sum := coeffs[0].MagnitudeDB(f, 256) + coeffs[1].MagnitudeDB(f, 256)
	got := chain.MagnitudeDB(f, 256)
	if !almostEqual(got, sum, 1e-9) {
		t.Fatalf("cascade magnitude: got %v dB, want %v dB", got, sum)
	}
}
