package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tinyzimmer/go-gst/gst"

	videoflip "github.com/e7canasta/orion-care-sensor/modules/video-flip"
	"github.com/e7canasta/orion-care-sensor/modules/video-flip/graph"
	"github.com/e7canasta/orion-care-sensor/modules/video-flip/internal/config"
	"github.com/e7canasta/orion-care-sensor/modules/video-flip/internal/orientation"
	"github.com/e7canasta/orion-care-sensor/modules/video-flip/internal/throughput"
)

// Version information
const version = "v0.1.0"

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "", "YAML configuration file (optional)")
	method := flag.String("method", "", "Flip method nick: none, clockwise, rotate-180, counterclockwise, horizontal-flip, vertical-flip, upper-left-diagonal, upper-right-diagonal, automatic")
	width := flag.Int("width", 0, "Source width in pixels")
	height := flag.Int("height", 0, "Source height in pixels")
	framerate := flag.String("framerate", "", "Source framerate as N/D")
	par := flag.String("par", "", "Source pixel aspect ratio as N/D")
	tag := flag.String("tag", "", "image-orientation tag to inject (e.g. rotate-90)")
	sinkElement := flag.String("sink", "", "Video sink element (e.g. glimagesink, fakesink)")
	numBuffers := flag.Int("num-buffers", 0, "Frames to produce before EOS (-1 = unlimited)")
	cycle := flag.Duration("cycle", 0, "Switch to the next method at this interval (0 = never)")
	dryRun := flag.Bool("dry-run", false, "Negotiate on the in-memory model and print caps, without GStreamer")
	debug := flag.Bool("debug", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	// Show version
	if *showVersion {
		fmt.Printf("flip-preview %s\n", version)
		os.Exit(0)
	}

	// Load configuration, flags override file values
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "method":
			cfg.Method = *method
		case "width":
			cfg.Source.Width = *width
		case "height":
			cfg.Source.Height = *height
		case "framerate":
			cfg.Source.Framerate = *framerate
		case "par":
			cfg.Source.PixelAspectRatio = *par
		case "tag":
			cfg.Source.OrientationTag = *tag
		case "sink":
			cfg.Sink.Element = *sinkElement
		case "num-buffers":
			cfg.Source.NumBuffers = *numBuffers
		case "dry-run":
			cfg.DryRun = *dryRun
		case "debug":
			if *debug {
				cfg.LogLevel = "debug"
			}
		}
	})
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Set up logging
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Print banner
	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║          GL Video Flip Preview - Orion 2.0 Module         ║\n")
	fmt.Printf("║                      Version %s                       ║\n", version)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")
	fmt.Printf("Configuration:\n")
	fmt.Printf("  Method:        %s\n", cfg.Flip)
	fmt.Printf("  Source:        %dx%d @ %s (par %s, pattern %s)\n",
		cfg.Source.Width, cfg.Source.Height, cfg.Source.Framerate, cfg.Source.PixelAspectRatio, cfg.Source.Pattern)
	if cfg.Source.OrientationTag != "" {
		fmt.Printf("  Tag:           image-orientation=%s\n", cfg.Source.OrientationTag)
	} else {
		fmt.Printf("  Tag:           (none)\n")
	}
	if cfg.DryRun {
		fmt.Printf("  Mode:          dry run (in-memory negotiation)\n")
	} else {
		fmt.Printf("  Sink:          %s\n", cfg.Sink.Element)
	}
	fmt.Printf("\n")

	if cfg.DryRun {
		if err := runDry(cfg); err != nil {
			log.Fatalf("Dry run failed: %v", err)
		}
		return
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Printf("\n\nReceived interrupt signal, shutting down...\n")
		cancel()
	}()

	if err := runLive(ctx, cfg, *cycle); err != nil {
		slog.Error("Preview failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Preview completed successfully")
}

// runDry negotiates the configured source through the in-memory model and
// prints what each boundary sees.
func runDry(cfg *config.Config) error {
	in, err := cfg.GLCaps()
	if err != nil {
		return fmt.Errorf("source caps: %w", err)
	}

	flip := videoflip.New(videoflip.WithName("flip"), videoflip.WithMethod(cfg.Flip))
	if err := flip.Err(); err != nil {
		return err
	}
	src := graph.NewFakeSrc("source")
	sink := graph.NewFakeSink("sink")
	if err := graph.LinkMany(src, flip, sink); err != nil {
		return err
	}

	if cfg.Source.OrientationTag != "" {
		src.Push(graph.NewTagEvent(map[string]string{orientation.TagImageOrientation: cfg.Source.OrientationTag}))
	}
	if !src.Push(graph.NewCapsEvent(in)) {
		return fmt.Errorf("caps %s refused", in)
	}

	query := graph.NewCapsQuery()
	src.QueryDownstream(query)
	accept := graph.NewAcceptCapsQuery(in)
	src.QueryDownstream(accept)

	state := flip.State()
	fmt.Printf("╭─────────────────────────────────────────────────────────╮\n")
	fmt.Printf("│ Negotiation Result\n")
	fmt.Printf("├─────────────────────────────────────────────────────────┤\n")
	fmt.Printf("│ Method:        %s (active %s, tag %s)\n", state.User, state.Active, state.Tag)
	fmt.Printf("│ Input caps:    %s\n", in)
	fmt.Printf("│ Output caps:   %s\n", sink.CurrentCaps())
	fmt.Printf("│ Caps query:    %s\n", query.Result)
	fmt.Printf("│ Accept input:  %t\n", accept.Accepted)
	fmt.Printf("╰─────────────────────────────────────────────────────────╯\n")
	fmt.Printf("\n")
	return nil
}

// runLive plays videotestsrc through the GL flip bin until EOS, an error or
// cancellation. A non-zero cycle steps through every concrete method.
func runLive(ctx context.Context, cfg *config.Config, cycle time.Duration) error {
	gst.Init(nil)

	launch := fmt.Sprintf("videotestsrc pattern=%s num-buffers=%d is-live=true ! capsfilter caps=%q",
		cfg.Source.Pattern, cfg.Source.NumBuffers, cfg.SourceCaps())
	if cfg.Source.OrientationTag != "" {
		launch += fmt.Sprintf(" ! taginject tags=\"%s=%s\"", orientation.TagImageOrientation, cfg.Source.OrientationTag)
	}
	launch += " ! glupload ! glcolorconvert name=convert"

	pipeline, err := gst.NewPipelineFromString(launch)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	flip := videoflip.NewGL(videoflip.WithName("flip"), videoflip.WithMethod(cfg.Flip))
	if err := flip.Err(); err != nil {
		return err
	}
	meter := throughput.NewMeter(throughput.DefaultCapacity)
	if pad := flip.Element().GetStaticPad("src"); pad != nil {
		pad.AddProbe(gst.PadProbeTypeBuffer, func(*gst.Pad, *gst.PadProbeInfo) gst.PadProbeReturn {
			meter.Tick()
			return gst.PadProbeOK
		})
	}

	sink, err := gst.NewElement(cfg.Sink.Element)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", cfg.Sink.Element, err)
	}
	if err := sink.SetProperty("sync", cfg.Sink.Sync); err != nil {
		slog.Warn("flip-preview: sink has no sync property", "sink", cfg.Sink.Element, "error", err)
	}

	convert, err := pipeline.GetElementByName("convert")
	if err != nil {
		return fmt.Errorf("failed to find glcolorconvert: %w", err)
	}
	if err := pipeline.AddMany(flip.Element(), sink); err != nil {
		return fmt.Errorf("failed to add elements: %w", err)
	}
	if err := gst.ElementLinkMany(convert, flip.Element(), sink); err != nil {
		return fmt.Errorf("failed to link elements: %w", err)
	}

	if err := pipeline.SetState(gst.StatePlaying); err != nil {
		return fmt.Errorf("failed to start pipeline: %w", err)
	}
	defer func() {
		if err := pipeline.SetState(gst.StateNull); err != nil {
			slog.Warn("flip-preview: failed to stop pipeline", "error", err)
		}
	}()

	slog.Info("flip-preview: pipeline playing", "launch", launch, "method", flip.Method().String())

	var ticker <-chan time.Time
	if cycle > 0 {
		t := time.NewTicker(cycle)
		defer t.Stop()
		ticker = t.C
	}

	start := time.Now()
	switches := 0
	bus := pipeline.GetPipelineBus()
	err = func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker:
				next := nextMethod(flip.Method())
				if err := flip.SetMethod(next); err != nil {
					return err
				}
				switches++
				slog.Info("flip-preview: method switched", "method", next.String(), "active", flip.ActiveMethod().String())
			default:
			}

			msg := bus.TimedPop(50 * time.Millisecond)
			if msg == nil {
				continue
			}
			switch msg.Type() {
			case gst.MessageEOS:
				slog.Info("flip-preview: end of stream")
				return nil
			case gst.MessageError:
				gerr := msg.ParseError()
				slog.Error("flip-preview: pipeline error", "error", gerr.Error(), "debug", gerr.DebugString())
				return fmt.Errorf("pipeline error: %s", gerr.Error())
			}
		}
	}()

	state := flip.State()
	stats := meter.Stats()
	fmt.Printf("\n")
	fmt.Printf("═══════════════════════════════════════════════════════════\n")
	fmt.Printf("Final Statistics:\n")
	fmt.Printf("  Duration:       %s\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("  Method:         %s\n", state.User)
	fmt.Printf("  Tag method:     %s\n", state.Tag)
	fmt.Printf("  Active method:  %s\n", state.Active)
	fmt.Printf("  Method changes: %d\n", switches)
	fmt.Printf("  Frames flipped: %d\n", meter.Count())
	fmt.Printf("  Output FPS:     %.2f (min %.2f, max %.2f, stddev %.2f)\n",
		stats.FPSMean, stats.FPSMin, stats.FPSMax, stats.FPSStdDev)
	fmt.Printf("  Jitter:         mean %.2fms, max %.2fms\n", stats.JitterMean*1000, stats.JitterMax*1000)
	fmt.Printf("  Stable:         %t\n", stats.Stable)
	fmt.Printf("═══════════════════════════════════════════════════════════\n")
	fmt.Printf("\n")
	return err
}

// nextMethod steps through the concrete methods, wrapping back to identity.
func nextMethod(m videoflip.Method) videoflip.Method {
	next := m + 1
	if !next.Concrete() {
		return videoflip.MethodIdentity
	}
	return next
}
