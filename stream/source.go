package stream

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Source produces one multi-channel sample plus timestamp per call.
// Pull may block awaiting data; it must honor context cancellation.
// Discovery and connection handshakes live behind this interface.
type Source interface {
	Pull(ctx context.Context) (Sample, error)
	Connected() bool
}

// SineSource is a synthetic multi-channel signal generator for demos and
// tests. Each channel emits a sine at its own frequency plus optional
// white noise. With pacing enabled, Pull blocks so that samples are
// delivered at the configured rate; without it, samples are produced as
// fast as the caller asks.
type SineSource struct {
	sampleRate float64
	freqs      []float64
	amplitude  float64
	noise      float64
	paced      bool

	rng  *rand.Rand
	n    int64
	next time.Time
}

// NewSineSource returns a generator with one channel per entry in freqs.
func NewSineSource(sampleRate float64, freqs []float64, amplitude, noise float64, paced bool) *SineSource {
	return &SineSource{
		sampleRate: sampleRate,
		freqs:      append([]float64(nil), freqs...),
		amplitude:  amplitude,
		noise:      noise,
		paced:      paced,
		rng:        rand.New(rand.NewSource(1)),
	}
}

// Connected always reports true; a synthetic source cannot be lost.
func (s *SineSource) Connected() bool { return true }

// Pull produces the next sample. When pacing is enabled the call sleeps
// until the sample is due, returning early with the context error on
// cancellation.
func (s *SineSource) Pull(ctx context.Context) (Sample, error) {
	if s.paced {
		if s.next.IsZero() {
			s.next = time.Now()
		}
		if wait := time.Until(s.next); wait > 0 {
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				return Sample{}, ctx.Err()
			case <-t.C:
			}
		}
		s.next = s.next.Add(time.Duration(float64(time.Second) / s.sampleRate))
	} else if err := ctx.Err(); err != nil {
		return Sample{}, err
	}

	ts := float64(s.n) / s.sampleRate
	values := make([]float64, len(s.freqs))
	for i, f := range s.freqs {
		values[i] = s.amplitude * math.Sin(2*math.Pi*f*ts)
		if s.noise > 0 {
			values[i] += s.noise * s.rng.NormFloat64()
		}
	}
	s.n++

	return Sample{Values: values, Timestamp: ts}, nil
}
