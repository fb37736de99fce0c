// Package bandpass implements causal streaming Butterworth bandpass filters
// for band-limiting biosignal channels. A Filter consumes one sample per
// call and keeps its recursive state across calls, so it can run inside a
// real-time sampling loop without look-ahead or batching.
package bandpass

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-eeg/dsp/biquad"
)

// ErrInvalidBand reports a band definition that cannot be realized as a
// digital bandpass at the given sample rate.
var ErrInvalidBand = errors.New("bandpass: invalid band")

// Filter is a causal Butterworth-class bandpass filter with persistent
// recursive state. It is built as an order-n highpass at the low edge
// cascaded with an order-n lowpass at the high edge, all realized as
// Direct Form II Transposed biquad sections.
//
// A Filter instance owns its delay lines and must filter exactly one
// signal stream. Coefficient derivation is closed-form and deterministic
// for identical construction arguments.
type Filter struct {
	chain *biquad.Chain

	low, high  float64
	sampleRate float64
	order      int
}

// New constructs a bandpass filter for the band (low, high) Hz at the given
// sample rate. order is the Butterworth order applied at each band edge.
//
// The band is rejected with ErrInvalidBand when low >= high, either bound
// is not positive, or high reaches the Nyquist frequency (sampleRate/2).
// Unrepresentable filters fail here, never at filter time.
func New(low, high, sampleRate float64, order int) (*Filter, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %g Hz must be > 0", ErrInvalidBand, sampleRate)
	}
	if order < 1 {
		return nil, fmt.Errorf("%w: order %d must be >= 1", ErrInvalidBand, order)
	}
	if low <= 0 || high <= 0 {
		return nil, fmt.Errorf("%w: bounds (%g, %g) Hz must be > 0", ErrInvalidBand, low, high)
	}
	if low >= high {
		return nil, fmt.Errorf("%w: low %g Hz >= high %g Hz", ErrInvalidBand, low, high)
	}
	if nyquist := sampleRate / 2; high >= nyquist {
		return nil, fmt.Errorf("%w: high %g Hz >= Nyquist %g Hz", ErrInvalidBand, high, nyquist)
	}

	coeffs := butterworthHP(low, order, sampleRate)
	coeffs = append(coeffs, butterworthLP(high, order, sampleRate)...)

	return &Filter{
		chain:      biquad.NewChain(coeffs),
		low:        low,
		high:       high,
		sampleRate: sampleRate,
		order:      order,
	}, nil
}

// Apply feeds one input sample through the filter and returns the output
// sample aligned in time with the input. State size is fixed by the order
// and independent of how many samples have been filtered.
func (f *Filter) Apply(x float64) float64 {
	return f.chain.ProcessSample(x)
}

// Reset clears the recursive state. Not used during normal streaming
// operation; intended for reusing a filter on a new signal.
func (f *Filter) Reset() {
	f.chain.Reset()
}

// Low returns the low band edge in Hz.
func (f *Filter) Low() float64 { return f.low }

// High returns the high band edge in Hz.
func (f *Filter) High() float64 { return f.high }

// Order returns the per-edge Butterworth order.
func (f *Filter) Order() int { return f.order }

// NumSections returns the number of biquad sections in the cascade.
func (f *Filter) NumSections() int { return f.chain.NumSections() }

// MagnitudeDB returns the filter magnitude response in dB at freq Hz.
func (f *Filter) MagnitudeDB(freq float64) float64 {
	return f.chain.MagnitudeDB(freq, f.sampleRate)
}
