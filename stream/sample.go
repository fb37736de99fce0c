// Package stream implements the real-time biosignal processing pipeline:
// rolling per-channel windows of the raw signal, per-sample causal band
// filtering, time-gated persistence, and best-effort snapshot publishing.
package stream

// Sample is one multi-channel reading pulled from a signal source, with a
// monotonic timestamp in seconds. A Sample is immutable once read.
type Sample struct {
	Values    []float64
	Timestamp float64
}

// Band is a named frequency range in Hz. The band set is fixed at startup
// and immutable for the process lifetime.
type Band struct {
	Name string
	Low  float64
	High float64
}

// DefaultBands returns the standard EEG band set.
func DefaultBands() []Band {
	return []Band{
		{Name: "Delta", Low: 1, High: 4},
		{Name: "Theta", Low: 4, High: 8},
		{Name: "Alpha", Low: 8, High: 13},
		{Name: "Beta", Low: 13, High: 30},
	}
}
