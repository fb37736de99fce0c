package persist

import (
	"fmt"
	"io"
	"time"

	"github.com/OpenPSG/edf"
)

// Recorder receives every raw sample of the stream, independent of the
// interval-gated row sink. Implementations must be bounded-time; the
// sampling loop calls Record synchronously.
type Recorder interface {
	Record(timestamp float64, values []float64) error
}

// EDFRecorder archives the raw stream to an EDF (European Data Format)
// file, one data record per second. Samples are buffered per channel and a
// record is emitted whenever a full second has accumulated; a trailing
// partial second is dropped on Close so the file never ends in a partial
// record.
type EDFRecorder struct {
	w          *edf.Writer
	channels   int
	perRecord  int
	buffered   int
	signalBufs [][]float64
}

// EDFConfig describes the recording destination.
type EDFConfig struct {
	Channels    []string
	SampleRate  int
	PatientID   string
	RecordingID string
	StartTime   time.Time
	// PhysicalMin/Max bound the expected signal amplitude in microvolts.
	// Zero values default to ±1000 uV.
	PhysicalMin float64
	PhysicalMax float64
}

// NewEDFRecorder creates an EDF file on w and returns a recorder that
// appends to it.
func NewEDFRecorder(w io.WriteSeeker, cfg EDFConfig) (*EDFRecorder, error) {
	if len(cfg.Channels) == 0 {
		return nil, fmt.Errorf("persist: edf recorder needs at least one channel")
	}
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("persist: edf sample rate %d must be > 0", cfg.SampleRate)
	}

	physMin, physMax := cfg.PhysicalMin, cfg.PhysicalMax
	if physMin == 0 && physMax == 0 {
		physMin, physMax = -1000, 1000
	}
	start := cfg.StartTime
	if start.IsZero() {
		start = time.Now()
	}

	signals := make([]edf.SignalHeader, len(cfg.Channels))
	for i, ch := range cfg.Channels {
		signals[i] = edf.SignalHeader{
			Label:             ch,
			TransducerType:    "AgAgCl electrode",
			PhysicalDimension: "uV",
			PhysicalMin:       physMin,
			PhysicalMax:       physMax,
			DigitalMin:        -32768,
			DigitalMax:        32767,
			SamplesPerRecord:  cfg.SampleRate,
		}
	}

	hdr := edf.Header{
		Version:            edf.Version0,
		PatientID:          cfg.PatientID,
		RecordingID:        cfg.RecordingID,
		StartTime:          start,
		DataRecordDuration: time.Second,
		SignalCount:        len(signals),
		Signals:            signals,
	}

	ew, err := edf.Create(w, hdr)
	if err != nil {
		return nil, fmt.Errorf("persist: create edf: %w", err)
	}

	rec := &EDFRecorder{
		w:          ew,
		channels:   len(cfg.Channels),
		perRecord:  cfg.SampleRate,
		signalBufs: make([][]float64, len(cfg.Channels)),
	}
	for i := range rec.signalBufs {
		rec.signalBufs[i] = make([]float64, 0, cfg.SampleRate)
	}
	return rec, nil
}

// Record buffers one multi-channel sample, flushing a full data record
// once a second of samples has accumulated.
func (r *EDFRecorder) Record(_ float64, values []float64) error {
	if len(values) != r.channels {
		return fmt.Errorf("persist: edf sample has %d values, want %d", len(values), r.channels)
	}

	for i, v := range values {
		r.signalBufs[i] = append(r.signalBufs[i], v)
	}
	r.buffered++

	if r.buffered < r.perRecord {
		return nil
	}

	if err := r.w.WriteRecord(r.signalBufs); err != nil {
		return fmt.Errorf("persist: write edf record: %w", err)
	}
	for i := range r.signalBufs {
		r.signalBufs[i] = r.signalBufs[i][:0]
	}
	r.buffered = 0
	return nil
}

// Close finalizes the EDF header. Any buffered partial second is discarded.
func (r *EDFRecorder) Close() error {
	if err := r.w.Close(); err != nil {
		return fmt.Errorf("persist: close edf: %w", err)
	}
	return nil
}
