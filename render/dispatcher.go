package render

import (
	"io"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Dispatcher decouples the sampling loop from a possibly slow sink.
// Publish hands the snapshot to a worker goroutine over a single-slot
// channel and returns immediately; if the worker is still busy with the
// previous snapshot, the new one is dropped and counted.
type Dispatcher struct {
	inner Sink
	log   logrus.FieldLogger

	ch      chan Snapshot
	dropped atomic.Uint64
	wg      sync.WaitGroup
	closed  atomic.Bool
}

// NewDispatcher starts the worker and returns the dispatcher. Close must
// be called to stop the worker and observe the drop count.
func NewDispatcher(inner Sink, log logrus.FieldLogger) *Dispatcher {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	d := &Dispatcher{
		inner: inner,
		log:   log,
		ch:    make(chan Snapshot, 1),
	}

	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for snapshot := range d.ch {
		if err := d.inner.Publish(snapshot); err != nil {
			d.log.WithError(err).Debug("render publish failed")
		}
	}
}

// Publish forwards the snapshot without blocking. It never returns an
// error; sink failures are logged by the worker.
func (d *Dispatcher) Publish(snapshot Snapshot) error {
	if d.closed.Load() {
		return nil
	}
	select {
	case d.ch <- snapshot:
	default:
		d.dropped.Add(1)
	}
	return nil
}

// Dropped returns the number of snapshots discarded because the sink was
// busy.
func (d *Dispatcher) Dropped() uint64 {
	return d.dropped.Load()
}

// Close stops accepting snapshots, drains the worker, and logs the drop
// count. It is safe to call once after the pipeline has stopped.
func (d *Dispatcher) Close() {
	if !d.closed.CompareAndSwap(false, true) {
		return
	}
	close(d.ch)
	d.wg.Wait()
	if n := d.Dropped(); n > 0 {
		d.log.WithField("dropped", n).Warn("render snapshots dropped")
	}
}
