package bandpower

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-eeg/stream"
)

func TestNew_Validation(t *testing.T) {
	bands := stream.DefaultBands()

	if _, err := New(0, 256, bands); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
	if _, err := New(256, 100, bands); err == nil {
		t.Fatal("expected error for non-power-of-two fft size")
	}
	if _, err := New(256, 256, nil); err == nil {
		t.Fatal("expected error for empty band set")
	}
}

func TestCompute_SinePeaksInItsBand(t *testing.T) {
	bands := stream.DefaultBands()
	a, err := New(256, 256, bands)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		freq     float64
		wantBand string
	}{
		{2, "Delta"},
		{6, "Theta"},
		{10, "Alpha"},
		{20, "Beta"},
	}

	for _, tc := range cases {
		samples := make([]float64, 256)
		for i := range samples {
			samples[i] = math.Sin(2 * math.Pi * tc.freq * float64(i) / 256)
		}

		dominant, err := a.Dominant(samples)
		if err != nil {
			t.Fatal(err)
		}
		if dominant.Name != tc.wantBand {
			t.Errorf("%g Hz sine: dominant band %s, want %s", tc.freq, dominant.Name, tc.wantBand)
		}
	}
}

func TestCompute_SentinelsTreatedAsZero(t *testing.T) {
	a, err := New(256, 256, stream.DefaultBands())
	if err != nil {
		t.Fatal(err)
	}

	// Half-filled window: leading NaN sentinels, then a 10 Hz sine.
	samples := make([]float64, 256)
	for i := 0; i < 128; i++ {
		samples[i] = math.NaN()
	}
	for i := 128; i < 256; i++ {
		samples[i] = math.Sin(2 * math.Pi * 10 * float64(i) / 256)
	}

	powers, err := a.Compute(samples)
	if err != nil {
		t.Fatal(err)
	}
	for bi, p := range powers {
		if math.IsNaN(p) {
			t.Fatalf("band %d power is NaN", bi)
		}
	}

	dominant, err := a.Dominant(samples)
	if err != nil {
		t.Fatal(err)
	}
	if dominant.Name != "Alpha" {
		t.Fatalf("dominant band %s, want Alpha", dominant.Name)
	}
}

func TestCompute_ShortInputZeroPadded(t *testing.T) {
	a, err := New(256, 256, stream.DefaultBands())
	if err != nil {
		t.Fatal(err)
	}

	samples := make([]float64, 64)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * 20 * float64(i) / 256)
	}

	if _, err := a.Compute(samples); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Compute(nil); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestCompute_Deterministic(t *testing.T) {
	a, err := New(256, 256, stream.DefaultBands())
	if err != nil {
		t.Fatal(err)
	}

	samples := make([]float64, 256)
	for i := range samples {
		samples[i] = math.Sin(2*math.Pi*6*float64(i)/256) + 0.25*math.Sin(2*math.Pi*25*float64(i)/256)
	}

	p1, err := a.Compute(samples)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := a.Compute(samples)
	if err != nil {
		t.Fatal(err)
	}
	for i := range p1 {
		if p1[i] != p2[i] {
			t.Fatalf("band %d: repeated analysis diverges: %v != %v", i, p1[i], p2[i])
		}
	}
}
