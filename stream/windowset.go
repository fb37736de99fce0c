package stream

import (
	"fmt"
	"math"
)

// WindowSet owns one rolling window per raw channel and one per
// (band, channel) pair. It is the aggregate state the pipeline mutates on
// every tick; exactly one goroutine may write it.
//
// Windows are addressed by string IDs: "raw/<channel>" for raw windows and
// "<band>/<channel>" for filtered windows.
type WindowSet struct {
	channels []string
	bands    []Band

	raw      []*Window
	filtered [][]*Window // [band][channel]
	capacity int
}

// NewWindowSet builds the windows for the given channels and bands, each
// with the given capacity and pre-filled with NaN sentinels.
func NewWindowSet(channels []string, bands []Band, capacity int) (*WindowSet, error) {
	if len(channels) == 0 {
		return nil, fmt.Errorf("stream: window set needs at least one channel")
	}

	ws := &WindowSet{
		channels: append([]string(nil), channels...),
		bands:    append([]Band(nil), bands...),
		raw:      make([]*Window, len(channels)),
		filtered: make([][]*Window, len(bands)),
		capacity: capacity,
	}

	for i := range channels {
		w, err := NewWindow(capacity, math.NaN())
		if err != nil {
			return nil, err
		}
		ws.raw[i] = w
	}
	for b := range bands {
		ws.filtered[b] = make([]*Window, len(channels))
		for i := range channels {
			w, err := NewWindow(capacity, math.NaN())
			if err != nil {
				return nil, err
			}
			ws.filtered[b][i] = w
		}
	}
	return ws, nil
}

// Capacity returns the per-window capacity in samples.
func (ws *WindowSet) Capacity() int { return ws.capacity }

// Channels returns the channel names.
func (ws *WindowSet) Channels() []string {
	return append([]string(nil), ws.channels...)
}

// Bands returns the band definitions.
func (ws *WindowSet) Bands() []Band {
	return append([]Band(nil), ws.bands...)
}

// RawID returns the window ID of a raw channel window.
func RawID(channel string) string { return "raw/" + channel }

// BandID returns the window ID of a filtered (band, channel) window.
func BandID(band, channel string) string { return band + "/" + channel }

// UpdateRaw pushes sample.Values[i] into the raw window of channel i.
// The sample must carry exactly one value per channel.
func (ws *WindowSet) UpdateRaw(sample Sample) error {
	if len(sample.Values) != len(ws.channels) {
		return fmt.Errorf("stream: sample has %d values, window set has %d channels",
			len(sample.Values), len(ws.channels))
	}
	for i, v := range sample.Values {
		ws.raw[i].Push(v)
	}
	return nil
}

// UpdateFiltered pushes one filtered value into the (band, channel) window.
func (ws *WindowSet) UpdateFiltered(band, channel int, v float64) {
	ws.filtered[band][channel].Push(v)
}

// LatestRaw returns the most recent raw value of channel i.
func (ws *WindowSet) LatestRaw(i int) float64 {
	return ws.raw[i].Latest()
}

// LatestFiltered returns the most recent filtered value of (band, channel).
func (ws *WindowSet) LatestFiltered(band, channel int) float64 {
	return ws.filtered[band][channel].Latest()
}

// Snapshot returns a point-in-time deep copy of every window keyed by
// window ID. The copy is safe to hand to a concurrently running consumer;
// later pushes do not show through.
func (ws *WindowSet) Snapshot() map[string][]float64 {
	out := make(map[string][]float64, len(ws.raw)+len(ws.bands)*len(ws.channels))
	for i, ch := range ws.channels {
		out[RawID(ch)] = ws.raw[i].Values()
	}
	for b, band := range ws.bands {
		for i, ch := range ws.channels {
			out[BandID(band.Name, ch)] = ws.filtered[b][i].Values()
		}
	}
	return out
}
