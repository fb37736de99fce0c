package stream

import (
	"context"
	"testing"
	"time"
)

func TestSineSource_TimestampsAdvanceBySamplePeriod(t *testing.T) {
	src := NewSineSource(256, []float64{10, 22}, 1, 0, false)

	var prev float64
	for i := 0; i < 10; i++ {
		s, err := src.Pull(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if len(s.Values) != 2 {
			t.Fatalf("sample has %d values, want 2", len(s.Values))
		}
		if i > 0 {
			dt := s.Timestamp - prev
			if dt < 1.0/256-1e-12 || dt > 1.0/256+1e-12 {
				t.Fatalf("timestamp step %v, want 1/256", dt)
			}
		}
		prev = s.Timestamp
	}
}

func TestSineSource_PacedPullHonorsCancellation(t *testing.T) {
	src := NewSineSource(1, []float64{1}, 1, 0, true) // 1 Hz: second pull waits ~1s

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := src.Pull(ctx); err != nil {
		t.Fatalf("first pull: %v", err)
	}

	start := time.Now()
	_, err := src.Pull(ctx)
	if err == nil {
		t.Fatal("expected context error from paced pull")
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Fatal("paced pull did not return promptly on cancellation")
	}
}
