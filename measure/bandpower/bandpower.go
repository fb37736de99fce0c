// Package bandpower estimates per-band spectral power from window
// snapshots. It complements the streaming band filters with a
// frequency-domain view: a windowed periodogram over the most recent
// samples, integrated across each band's bin range.
package bandpower

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-eeg/stream"
)

// Analyzer computes relative band power over the trailing fftSize samples
// of a channel window. An Analyzer reuses its FFT plan and scratch
// buffers, so it is not safe for concurrent use.
type Analyzer struct {
	sampleRate float64
	fftSize    int
	bands      []stream.Band

	plan    *algofft.Plan[complex128]
	window  []float64
	in      []complex128
	out     []complex128
	re, im  []float64
	powBins []float64
}

// New returns an analyzer for the given sample rate, FFT size (a power of
// two) and band set.
func New(sampleRate float64, fftSize int, bands []stream.Band) (*Analyzer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("bandpower: sample rate %g Hz must be > 0", sampleRate)
	}
	if fftSize < 2 || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("bandpower: fft size %d must be a power of two >= 2", fftSize)
	}
	if len(bands) == 0 {
		return nil, fmt.Errorf("bandpower: at least one band required")
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("bandpower: fft plan: %w", err)
	}

	half := fftSize/2 + 1
	return &Analyzer{
		sampleRate: sampleRate,
		fftSize:    fftSize,
		bands:      append([]stream.Band(nil), bands...),
		plan:       plan,
		window:     hann(fftSize),
		in:         make([]complex128, fftSize),
		out:        make([]complex128, fftSize),
		re:         make([]float64, half),
		im:         make([]float64, half),
		powBins:    make([]float64, half),
	}, nil
}

// hann returns periodic Hann window coefficients.
func hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n)))
	}
	return w
}

// Bands returns the analyzed band set.
func (a *Analyzer) Bands() []stream.Band {
	return append([]stream.Band(nil), a.bands...)
}

// Compute returns one power value per band, in band order. The trailing
// fftSize samples of the input are analyzed; shorter inputs are
// zero-padded at the front and sentinel (NaN) slots are treated as zero,
// so a window that is still filling yields a usable, if muted, estimate.
func (a *Analyzer) Compute(samples []float64) ([]float64, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("bandpower: empty input")
	}

	if len(samples) > a.fftSize {
		samples = samples[len(samples)-a.fftSize:]
	}
	offset := a.fftSize - len(samples)
	for i := 0; i < offset; i++ {
		a.in[i] = 0
	}
	for i, v := range samples {
		if math.IsNaN(v) {
			v = 0
		}
		a.in[offset+i] = complex(v*a.window[offset+i], 0)
	}

	if err := a.plan.Forward(a.out, a.in); err != nil {
		return nil, fmt.Errorf("bandpower: fft: %w", err)
	}

	half := a.fftSize/2 + 1
	for k := 0; k < half; k++ {
		a.re[k] = real(a.out[k])
		a.im[k] = imag(a.out[k])
	}
	vecmath.Power(a.powBins, a.re, a.im)

	binHz := a.sampleRate / float64(a.fftSize)
	powers := make([]float64, len(a.bands))
	for bi, band := range a.bands {
		lo := int(math.Ceil(band.Low / binHz))
		hi := int(math.Floor(band.High / binHz))
		if lo < 0 {
			lo = 0
		}
		if hi >= half {
			hi = half - 1
		}
		var sum float64
		for k := lo; k <= hi; k++ {
			sum += a.powBins[k]
		}
		powers[bi] = sum
	}
	return powers, nil
}

// Dominant returns the band with the highest power for the given input.
func (a *Analyzer) Dominant(samples []float64) (stream.Band, error) {
	powers, err := a.Compute(samples)
	if err != nil {
		return stream.Band{}, err
	}
	best := 0
	for i, p := range powers {
		if p > powers[best] {
			best = i
		}
	}
	return a.bands[best], nil
}
