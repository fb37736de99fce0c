// Command eegstream runs the streaming biosignal pipeline against a
// synthetic multi-channel source and fans the windowed state out to the
// configured sinks.
//
// Usage:
//
//	eegstream [flags]
//
// Examples:
//
//	eegstream -duration 30s -csv eeg_data_live.csv
//	eegstream -rate 256 -channels 4 -window 5s -order 4 -interval 20s
//	eegstream -edf session.edf -mqtt tcp://localhost:1883 -topic eeg/windows
//	eegstream -ws ws://localhost:8080/eeg
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/eclipse/paho.golang/paho"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-eeg/measure/bandpower"
	"github.com/cwbudde/algo-eeg/persist"
	"github.com/cwbudde/algo-eeg/render"
	"github.com/cwbudde/algo-eeg/stream"
)

func main() {
	rate := flag.Float64("rate", 256, "sample rate in Hz")
	channels := flag.Int("channels", 4, "number of channels")
	window := flag.Duration("window", 5*time.Second, "rolling window duration")
	order := flag.Int("order", 4, "band filter order per edge")
	interval := flag.Duration("interval", 20*time.Second, "persistence interval")
	duration := flag.Duration("duration", 0, "how long to run (0 = until interrupted)")
	csvPath := flag.String("csv", "", "append persisted rows to this CSV file")
	edfPath := flag.String("edf", "", "record the raw stream to this EDF file")
	mqttAddr := flag.String("mqtt", "", "publish snapshots to this MQTT broker (tcp://host:port)")
	mqttTopic := flag.String("topic", "eeg/windows", "MQTT topic for snapshots")
	wsURL := flag.String("ws", "", "publish snapshots to this WebSocket endpoint (ws://...)")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if err := run(log, runConfig{
		rate:      *rate,
		channels:  *channels,
		window:    *window,
		order:     *order,
		interval:  *interval,
		duration:  *duration,
		csvPath:   *csvPath,
		edfPath:   *edfPath,
		mqttAddr:  *mqttAddr,
		mqttTopic: *mqttTopic,
		wsURL:     *wsURL,
	}); err != nil {
		log.WithError(err).Error("pipeline failed")
		os.Exit(1)
	}
}

type runConfig struct {
	rate      float64
	channels  int
	window    time.Duration
	order     int
	interval  time.Duration
	duration  time.Duration
	csvPath   string
	edfPath   string
	mqttAddr  string
	mqttTopic string
	wsURL     string
}

func run(log *logrus.Logger, rc runConfig) error {
	names := make([]string, rc.channels)
	for i := range names {
		names[i] = fmt.Sprintf("Channel %d", i+1)
	}

	cfg := stream.ApplyOptions(
		stream.WithSampleRate(rc.rate),
		stream.WithChannels(names...),
		stream.WithWindowDuration(rc.window),
		stream.WithFilterOrder(rc.order),
		stream.WithPersistInterval(rc.interval),
	)

	// Demo source: one sine per channel, cycling through the band centers.
	demoFreqs := []float64{2, 6, 10, 20}
	freqs := make([]float64, rc.channels)
	for i := range freqs {
		freqs[i] = demoFreqs[i%len(demoFreqs)]
	}
	source := stream.NewSineSource(cfg.SampleRate, freqs, 50, 5, true)

	opts := []stream.PipelineOption{stream.WithLogger(log)}

	if rc.csvPath != "" {
		bandNames := make([]string, len(cfg.Bands))
		for i, b := range cfg.Bands {
			bandNames[i] = b.Name
		}
		sink, err := persist.NewCSVSink(rc.csvPath, persist.CSVHeader(cfg.Channels, bandNames))
		if err != nil {
			return err
		}
		defer sink.Close()
		opts = append(opts, stream.WithRowSink(sink))
		log.WithField("path", rc.csvPath).Info("persisting rows to CSV")
	}

	if rc.edfPath != "" {
		f, err := os.OpenFile(rc.edfPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		rec, err := persist.NewEDFRecorder(f, persist.EDFConfig{
			Channels:    cfg.Channels,
			SampleRate:  int(cfg.SampleRate),
			RecordingID: uuid.NewString(),
			StartTime:   time.Now(),
		})
		if err != nil {
			return err
		}
		defer rec.Close()
		opts = append(opts, stream.WithRecorder(rec))
		log.WithField("path", rc.edfPath).Info("recording raw stream to EDF")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if rc.duration > 0 {
		ctx, cancel = context.WithTimeout(ctx, rc.duration)
		defer cancel()
	}

	sink, cleanup, err := buildRenderSink(ctx, log, rc)
	if err != nil {
		return err
	}
	dispatcher := render.NewDispatcher(sink, log)
	opts = append(opts, stream.WithRenderSink(dispatcher))

	p, err := stream.NewPipeline(source, cfg, opts...)
	if err != nil {
		return err
	}
	log.WithField("session", p.Session()).Info("starting stream")

	runErr := p.Run(ctx)

	dispatcher.Close()
	cleanup()

	printBandPower(log, cfg, p.Windows())
	return runErr
}

// buildRenderSink picks the configured snapshot transport. The returned
// cleanup tears the transport down after the dispatcher has drained.
func buildRenderSink(ctx context.Context, log *logrus.Logger, rc runConfig) (render.Sink, func(), error) {
	switch {
	case rc.mqttAddr != "":
		u, err := url.Parse(rc.mqttAddr)
		if err != nil {
			return nil, nil, fmt.Errorf("parse mqtt address: %w", err)
		}
		conn, err := net.Dial("tcp", u.Host)
		if err != nil {
			return nil, nil, fmt.Errorf("dial mqtt broker: %w", err)
		}
		client := paho.NewClient(paho.ClientConfig{Conn: conn})
		_, err = client.Connect(ctx, &paho.Connect{
			ClientID:   "eegstream-" + uuid.NewString()[:8],
			KeepAlive:  30,
			CleanStart: true,
		})
		if err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("mqtt connect: %w", err)
		}
		log.WithField("topic", rc.mqttTopic).Info("publishing snapshots over MQTT")
		cleanup := func() {
			_ = client.Disconnect(&paho.Disconnect{ReasonCode: 0})
		}
		return render.NewMQTTSink(client, rc.mqttTopic), cleanup, nil

	case rc.wsURL != "":
		sink, err := render.DialWebSocket(rc.wsURL)
		if err != nil {
			return nil, nil, err
		}
		log.WithField("url", rc.wsURL).Info("publishing snapshots over WebSocket")
		return sink, func() { _ = sink.Close() }, nil

	default:
		return render.Nop(), func() {}, nil
	}
}

// printBandPower summarizes the spectral power per channel and band from
// the final window contents.
func printBandPower(log *logrus.Logger, cfg stream.Config, windows *stream.WindowSet) {
	fftSize := 1
	for fftSize < cfg.WindowCapacity() && fftSize < 4096 {
		fftSize <<= 1
	}
	analyzer, err := bandpower.New(cfg.SampleRate, fftSize, cfg.Bands)
	if err != nil {
		log.WithError(err).Warn("band power analysis unavailable")
		return
	}

	snapshot := windows.Snapshot()

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(tw, "Channel")
	for _, b := range cfg.Bands {
		fmt.Fprintf(tw, "\t%s", b.Name)
	}
	fmt.Fprintln(tw)

	for _, ch := range cfg.Channels {
		powers, err := analyzer.Compute(snapshot[stream.RawID(ch)])
		if err != nil {
			continue
		}
		fmt.Fprint(tw, ch)
		for _, p := range powers {
			fmt.Fprintf(tw, "\t%.3g", p)
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		log.WithError(err).Warn("failed to print band power table")
	}
}
