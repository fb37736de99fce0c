package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-eeg/dsp/bandpass"
	"github.com/cwbudde/algo-eeg/persist"
	"github.com/cwbudde/algo-eeg/render"
)

var (
	// ErrSourceUnavailable reports that the pipeline was started without a
	// connected signal source.
	ErrSourceUnavailable = errors.New("stream: source unavailable")

	// ErrSourceLost reports that the source failed mid-stream. The
	// pipeline stops; restarting is an explicit external decision.
	ErrSourceLost = errors.New("stream: source lost")

	// ErrPipelineDone reports a Run call on a pipeline that has already
	// run. A stopped pipeline cannot be restarted; construct a new one.
	ErrPipelineDone = errors.New("stream: pipeline already stopped")
)

// Pipeline lifecycle states.
const (
	stateIdle = iota
	stateRunning
	stateStopped
)

// Pipeline drives one tick per source sample: pull, update raw windows,
// band-filter each channel, update filtered windows, maybe persist a row,
// publish a window snapshot. A single goroutine (the Run caller) owns all
// pipeline state; per-(band,channel) filter states are independent, so no
// locking is needed anywhere in the hot path.
type Pipeline struct {
	cfg     Config
	source  Source
	windows *WindowSet
	filters [][]*bandpass.Filter // [band][channel]

	gate     *persist.Gate
	recorder persist.Recorder
	sink     render.Sink
	log      logrus.FieldLogger
	now      func() time.Time

	session string
	rowBuf  []float64

	mu    sync.Mutex
	state int
}

// PipelineOption configures optional pipeline collaborators.
type PipelineOption func(*Pipeline)

// WithRowSink attaches an interval-gated row sink; the interval comes from
// the pipeline config.
func WithRowSink(sink persist.RowSink) PipelineOption {
	return func(p *Pipeline) {
		if sink != nil {
			gate, err := persist.NewGate(p.cfg.PersistInterval, sink)
			if err == nil {
				p.gate = gate
			}
		}
	}
}

// WithRecorder attaches a continuous raw-sample recorder.
func WithRecorder(rec persist.Recorder) PipelineOption {
	return func(p *Pipeline) { p.recorder = rec }
}

// WithRenderSink attaches a snapshot sink. Wrap slow sinks in a
// render.Dispatcher; the pipeline calls Publish synchronously each tick.
func WithRenderSink(sink render.Sink) PipelineOption {
	return func(p *Pipeline) {
		if sink != nil {
			p.sink = sink
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(log logrus.FieldLogger) PipelineOption {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// WithClock overrides the persistence clock. Tests feed deterministic
// time sequences through this.
func WithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// NewPipeline validates the configuration, builds the window set and one
// independent band filter per (band, channel) pair, and leaves the
// pipeline Idle. Band definitions that cannot be realized at the sample
// rate fail here.
func NewPipeline(source Source, cfg Config, opts ...PipelineOption) (*Pipeline, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: nil source", ErrSourceUnavailable)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	windows, err := NewWindowSet(cfg.Channels, cfg.Bands, cfg.WindowCapacity())
	if err != nil {
		return nil, err
	}

	filters := make([][]*bandpass.Filter, len(cfg.Bands))
	for b, band := range cfg.Bands {
		filters[b] = make([]*bandpass.Filter, len(cfg.Channels))
		for i := range cfg.Channels {
			f, err := bandpass.New(band.Low, band.High, cfg.SampleRate, cfg.FilterOrder)
			if err != nil {
				return nil, fmt.Errorf("band %q: %w", band.Name, err)
			}
			filters[b][i] = f
		}
	}

	discard := logrus.New()
	discard.SetOutput(io.Discard)

	p := &Pipeline{
		cfg:     cfg,
		source:  source,
		windows: windows,
		filters: filters,
		sink:    render.Nop(),
		log:     discard,
		now:     time.Now,
		session: uuid.NewString(),
		rowBuf:  make([]float64, len(cfg.Channels)*(1+len(cfg.Bands))),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	p.log = p.log.WithField("session", p.session)
	return p, nil
}

// Session returns the unique ID of this pipeline run.
func (p *Pipeline) Session() string { return p.session }

// Windows exposes the window set for inspection after Run returns.
func (p *Pipeline) Windows() *WindowSet { return p.windows }

// Run executes the sampling loop until the context is cancelled or the
// source is lost. Cancellation is observed at the top of every iteration
// and inside the blocking pull, so shutdown latency is bounded by one
// sample period plus any in-flight row write. Run returns nil on clean
// cancellation; no final forced flush is attempted.
//
// Run may be called once. A pipeline that has stopped stays stopped.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.start(); err != nil {
		return err
	}
	defer p.stop()

	p.log.WithFields(logrus.Fields{
		"rate":     p.cfg.SampleRate,
		"channels": len(p.cfg.Channels),
		"bands":    len(p.cfg.Bands),
		"capacity": p.cfg.WindowCapacity(),
	}).Info("pipeline running")

	for {
		select {
		case <-ctx.Done():
			p.log.Info("pipeline cancelled")
			return nil
		default:
		}

		sample, err := p.source.Pull(ctx)
		if err != nil {
			if ctx.Err() != nil {
				p.log.Info("pipeline cancelled")
				return nil
			}
			p.log.WithError(err).Error("source lost")
			return fmt.Errorf("%w: %v", ErrSourceLost, err)
		}

		if err := p.tick(sample); err != nil {
			return err
		}
	}
}

// tick processes one sample through the whole pipeline.
func (p *Pipeline) tick(sample Sample) error {
	if err := p.windows.UpdateRaw(sample); err != nil {
		return fmt.Errorf("%w: %v", ErrSourceLost, err)
	}

	// Filter states are per-(band,channel), so iteration order is free.
	for b := range p.filters {
		for i := range p.filters[b] {
			v := p.filters[b][i].Apply(sample.Values[i])
			p.windows.UpdateFiltered(b, i, v)
		}
	}

	if p.gate != nil {
		flushed, err := p.gate.MaybeFlush(p.now(), p.buildRow(sample))
		if err != nil {
			// Recoverable: the timer did not advance, the next due tick
			// retries with the row current at that tick.
			p.log.WithError(err).Error("row flush failed")
		} else if flushed {
			p.log.WithField("timestamp", sample.Timestamp).Debug("row persisted")
		}
	}

	if p.recorder != nil {
		if err := p.recorder.Record(sample.Timestamp, sample.Values); err != nil {
			p.log.WithError(err).Error("recorder write failed")
		}
	}

	if err := p.sink.Publish(p.windows.Snapshot()); err != nil {
		p.log.WithError(err).Debug("snapshot publish failed")
	}

	return nil
}

// buildRow assembles the persisted row: timestamp, latest raw value per
// channel, then the latest filtered value per (band, channel).
func (p *Pipeline) buildRow(sample Sample) persist.Row {
	values := p.rowBuf[:0]
	for i := range p.cfg.Channels {
		values = append(values, p.windows.LatestRaw(i))
	}
	for b := range p.cfg.Bands {
		for i := range p.cfg.Channels {
			values = append(values, p.windows.LatestFiltered(b, i))
		}
	}
	return persist.Row{Timestamp: sample.Timestamp, Values: values}
}

func (p *Pipeline) start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case stateRunning:
		return fmt.Errorf("stream: pipeline already running")
	case stateStopped:
		return ErrPipelineDone
	}
	if !p.source.Connected() {
		p.state = stateStopped
		return ErrSourceUnavailable
	}
	p.state = stateRunning
	return nil
}

func (p *Pipeline) stop() {
	p.mu.Lock()
	p.state = stateStopped
	p.mu.Unlock()
	p.log.Info("pipeline stopped")
}
