package stream

import (
	"errors"
	"fmt"
)

// ErrInvalidCapacity reports a window capacity that is not positive.
var ErrInvalidCapacity = errors.New("stream: invalid window capacity")

// Window is a fixed-capacity rolling buffer of scalars for one channel.
// It is pre-filled with a sentinel value; each Push appends one value and
// evicts the oldest, so the length is always exactly the capacity. The
// buffer is a ring: Push is O(1) and the window is never resized.
type Window struct {
	values   []float64
	writePos int
	pushed   int
	sentinel float64
}

// NewWindow returns a window of the given capacity with every slot holding
// the sentinel value.
func NewWindow(capacity int, sentinel float64) (*Window, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}

	w := &Window{
		values:   make([]float64, capacity),
		sentinel: sentinel,
	}
	for i := range w.values {
		w.values[i] = sentinel
	}
	return w, nil
}

// Cap returns the fixed capacity.
func (w *Window) Cap() int {
	return len(w.values)
}

// Push appends one value, evicting the oldest slot.
func (w *Window) Push(v float64) {
	w.values[w.writePos] = v
	w.writePos++
	if w.writePos >= len(w.values) {
		w.writePos = 0
	}
	if w.pushed < len(w.values) {
		w.pushed++
	}
}

// Latest returns the most recently pushed value, or the sentinel if nothing
// has been pushed yet.
func (w *Window) Latest() float64 {
	if w.pushed == 0 {
		return w.sentinel
	}
	pos := w.writePos - 1
	if pos < 0 {
		pos = len(w.values) - 1
	}
	return w.values[pos]
}

// Values returns a copy of the window contents, oldest first. The copy has
// length Cap(); slots that have never been pushed hold the sentinel and
// lead the sequence.
func (w *Window) Values() []float64 {
	out := make([]float64, len(w.values))
	w.CopyValues(out)
	return out
}

// CopyValues writes the window contents oldest-first into dst, which must
// have length Cap(). It exists so snapshotting can reuse one allocation.
func (w *Window) CopyValues(dst []float64) {
	n := copy(dst, w.values[w.writePos:])
	copy(dst[n:], w.values[:w.writePos])
}
