// Package render carries window snapshots from the pipeline to whatever
// draws or forwards them. Sinks are best-effort: the sampling loop never
// waits on a slow renderer, and a dropped snapshot is acceptable where a
// dropped sample is not.
package render

// Snapshot maps window IDs to their contents, oldest value first. It is a
// point-in-time copy owned by the receiver.
type Snapshot map[string][]float64

// Sink receives snapshots. Publish may be called at the stream sample
// rate; implementations that cannot keep up should be wrapped in a
// Dispatcher rather than blocking the caller.
type Sink interface {
	Publish(snapshot Snapshot) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Snapshot) error

// Publish calls f.
func (f SinkFunc) Publish(snapshot Snapshot) error { return f(snapshot) }

// Nop returns a sink that discards every snapshot.
func Nop() Sink {
	return SinkFunc(func(Snapshot) error { return nil })
}
