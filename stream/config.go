package stream

import (
	"fmt"
	"time"
)

// Config defines the streaming pipeline settings.
type Config struct {
	SampleRate      float64
	Channels        []string
	WindowDuration  time.Duration
	Bands           []Band
	FilterOrder     int
	PersistInterval time.Duration
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the standard 4-channel EEG setup: 256 Hz, 5 second
// windows, the default band set, order-4 filters, 20 second persistence.
func DefaultConfig() Config {
	return Config{
		SampleRate:      256,
		Channels:        []string{"Channel 1", "Channel 2", "Channel 3", "Channel 4"},
		WindowDuration:  5 * time.Second,
		Bands:           DefaultBands(),
		FilterOrder:     4,
		PersistInterval: 20 * time.Second,
	}
}

// WithSampleRate sets the source sample rate in Hz.
func WithSampleRate(rate float64) Option {
	return func(cfg *Config) {
		if rate > 0 {
			cfg.SampleRate = rate
		}
	}
}

// WithChannels sets the channel names.
func WithChannels(names ...string) Option {
	return func(cfg *Config) {
		if len(names) > 0 {
			cfg.Channels = append([]string(nil), names...)
		}
	}
}

// WithWindowDuration sets the rolling window length in time; the window
// capacity in samples is rate times duration.
func WithWindowDuration(d time.Duration) Option {
	return func(cfg *Config) {
		if d > 0 {
			cfg.WindowDuration = d
		}
	}
}

// WithBands replaces the band set.
func WithBands(bands ...Band) Option {
	return func(cfg *Config) {
		if len(bands) > 0 {
			cfg.Bands = append([]Band(nil), bands...)
		}
	}
}

// WithFilterOrder sets the per-edge Butterworth order of the band filters.
func WithFilterOrder(order int) Option {
	return func(cfg *Config) {
		if order > 0 {
			cfg.FilterOrder = order
		}
	}
}

// WithPersistInterval sets the minimum time between persisted rows.
func WithPersistInterval(d time.Duration) Option {
	return func(cfg *Config) {
		if d > 0 {
			cfg.PersistInterval = d
		}
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WindowCapacity returns the rolling window capacity in samples.
func (cfg Config) WindowCapacity() int {
	return int(cfg.SampleRate * cfg.WindowDuration.Seconds())
}

// Validate checks the configuration before the pipeline enters its run
// loop. Band bounds are validated later against the sample rate by the
// filter constructors.
func (cfg Config) Validate() error {
	if cfg.SampleRate <= 0 {
		return fmt.Errorf("stream: sample rate %g Hz must be > 0", cfg.SampleRate)
	}
	if len(cfg.Channels) == 0 {
		return fmt.Errorf("stream: at least one channel required")
	}
	if cfg.WindowCapacity() <= 0 {
		return fmt.Errorf("stream: window duration %s too short for rate %g Hz",
			cfg.WindowDuration, cfg.SampleRate)
	}
	if len(cfg.Bands) == 0 {
		return fmt.Errorf("stream: at least one band required")
	}
	if cfg.FilterOrder < 1 {
		return fmt.Errorf("stream: filter order %d must be >= 1", cfg.FilterOrder)
	}
	if cfg.PersistInterval <= 0 {
		return fmt.Errorf("stream: persist interval %s must be > 0", cfg.PersistInterval)
	}
	return nil
}
