package biquad

import "testing"

func TestNewChain_SectionCount(t *testing.T) {
	coeffs := []Coefficients{passthrough(), passthrough(), passthrough()}
	c := NewChain(coeffs)
	if c.NumSections() != 3 {
		t.Fatalf("NumSections: got %d, want 3", c.NumSections())
	}
}

func TestChain_MatchesSequentialSections(t *testing.T) {
	coeffs := []Coefficients{
		{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04},
		{B0: 0.5, B1: 0.5},
	}

	s0 := NewSection(coeffs[0])
	s1 := NewSection(coeffs[1])
	chain := NewChain(coeffs)

	input := []float64{1, 0.5, -0.3, 0.7, 0, -1, 0.2, 0.8}
	for i, x := range input {
		want := s1.ProcessSample(s0.ProcessSample(x))
		got := chain.ProcessSample(x)
		if !almostEqual(got, want, eps) {
			t.Errorf("sample %d: got %v, want %v", i, got, want)
		}
	}
}

func TestChain_ResetClearsAllSections(t *testing.T) {
	coeffs := []Coefficients{
		{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04},
		{B0: 0.5, B1: 0.5},
	}
	c := NewChain(coeffs)
	c.ProcessSample(1)
	c.ProcessSample(-1)
	c.Reset()

	for i, st := range c.State() {
		if st != [2]float64{0, 0} {
			t.Fatalf("section %d state not cleared: %v", i, st)
		}
	}
}

func TestChain_StateRoundTrip(t *testing.T) {
	coeffs := []Coefficients{
		{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04},
		{B0: 0.5, B1: 0.5},
	}
	c := NewChain(coeffs)
	c.ProcessSample(1)
	saved := c.State()

	next := c.ProcessSample(0.25)

	c.SetState(saved)
	replay := c.ProcessSample(0.25)
	if !almostEqual(next, replay, eps) {
		t.Fatalf("replay after SetState: got %v, want %v", replay, next)
	}
}

func TestChain_ImpulseResponse_Passthrough(t *testing.T) {
	c := NewChain([]Coefficients{passthrough()})
	ir := c.ImpulseResponse(4)
	want := []float64{1, 0, 0, 0}
	for i := range want {
		if !almostEqual(ir[i], want[i], eps) {
			t.Errorf("ir[%d]: got %v, want %v", i, ir[i], want[i])
		}
	}
}

func TestChain_ImpulseResponse_PreservesState(t *testing.T) {
	coeffs := []Coefficients{{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04}}
	c := NewChain(coeffs)
	c.ProcessSample(1)
	before := c.State()
	c.ImpulseResponse(16)
	after := c.State()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("state disturbed by ImpulseResponse: %v != %v", before[i], after[i])
		}
	}
}
