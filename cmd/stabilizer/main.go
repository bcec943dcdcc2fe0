// Command stabilizer monitors GPIO inputs, debounces them, and publishes
// stable state changes to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sweeney/stabilizer"
	"github.com/sweeney/stabilizer/internal/gpio"
	"github.com/sweeney/stabilizer/internal/logic"
	"github.com/sweeney/stabilizer/internal/mqtt"
	"github.com/sweeney/stabilizer/internal/status"
	"github.com/sweeney/stabilizer/internal/web"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

type config struct {
	poll       time.Duration
	debounce   time.Duration
	heartbeat  time.Duration
	broker     string
	topic      string
	chip       string
	channels   string
	activeLow  bool
	printState bool
	httpAddr   string
}

func main() {
	var cfg config
	flag.DurationVar(&cfg.poll, "poll", 100*time.Millisecond, "GPIO polling interval")
	flag.DurationVar(&cfg.debounce, "debounce", 250*time.Millisecond, "Debounce duration")
	flag.StringVar(&cfg.broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	flag.StringVar(&cfg.topic, "topic", mqtt.DefaultTopic, "MQTT base topic")
	flag.DurationVar(&cfg.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	flag.StringVar(&cfg.chip, "chip", gpio.DefaultChip, "GPIO chip name")
	flag.StringVar(&cfg.channels, "channels", gpio.DefaultChannels, "Input lines as name=offset,...")
	flag.BoolVar(&cfg.activeLow, "active-low", false, "Treat a low line as ON")
	flag.BoolVar(&cfg.printState, "print-state", false, "Print debounced state and exit")
	flag.StringVar(&cfg.httpAddr, "http", ":80", "HTTP status address (empty to disable)")

	flag.Parse()

	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config) error {
	channels, err := gpio.ParseChannels(cfg.channels)
	if err != nil {
		return fmt.Errorf("parse channels: %w", err)
	}
	names := gpio.Names(channels)

	// Initialize GPIO
	gpioReader, err := gpio.NewRealReader(cfg.chip, channels, cfg.activeLow)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer gpioReader.Close()

	// Print state mode
	if cfg.printState {
		ticker := time.NewTicker(cfg.poll)
		defer ticker.Stop()
		samples := int(cfg.debounce/cfg.poll) + 1
		return printStates(os.Stdout, names, gpioReader.Lines(), cfg.debounce, time.Now(), ticker.C, samples)
	}

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(cfg.broker, cfg.topic)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(clockz.RealClock, status.Config{
		PollMs:      cfg.poll.Milliseconds(),
		DebounceMs:  cfg.debounce.Milliseconds(),
		HeartbeatMs: cfg.heartbeat.Milliseconds(),
		Broker:      cfg.broker,
		Topic:       cfg.topic,
		HTTPAddr:    cfg.httpAddr,
		Chip:        cfg.chip,
		Channels:    cfg.channels,
		ActiveLow:   cfg.activeLow,
	})
	tracker.Update(unknownStates(names), false, nil)
	tracker.SetMQTTConnected(publisher.IsConnected())

	unhook := hookSignals(tracker)
	defer unhook()
	defer capitan.Shutdown()

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if cfg.httpAddr != "" {
		srv := web.New(cfg.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.httpAddr)
	}

	log.Printf("started: chip=%s channels=%s poll=%v debounce=%v broker=%s topic=%s heartbeat=%v",
		cfg.chip, cfg.channels, cfg.poll, cfg.debounce, cfg.broker, cfg.topic, cfg.heartbeat)

	ticker := time.NewTicker(cfg.poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(gpioReader, publisher, publisher, tracker, names, cfg.debounce, cfg.heartbeat, time.Now, ticker.C, sigCh)
}

func runLoop(gpioReader gpio.Reader, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, names []string, debounce, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	ctx := context.Background()
	startTime := now()
	detector := logic.NewDetector(names, debounce, startTime)

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			levels, err := gpioReader.Read()
			if err != nil {
				logic.EmitReadError(ctx, err)
				continue
			}

			wasBaselined := detector.IsBaselined()
			events, err := detector.Process(logic.Input{Levels: levels, Time: t})
			if err != nil {
				log.Printf("process error: %v", err)
				continue
			}

			for _, event := range events {
				logic.EmitTransition(ctx, event)
				if err := publisher.Publish(event); err != nil {
					log.Printf("publish error: %v", err)
					// Don't crash on publish failure
				}
			}

			if !detector.IsBaselined() {
				// Still waiting for baseline
				updateTracker(tracker, detector, mqttStatus)
				continue
			}
			if !wasBaselined {
				log.Printf("baseline: %s", formatChannels(detector.CurrentState()))
				logic.EmitBaseline(ctx, detector)
			}

			// Check for heartbeat
			if hbData := detector.CheckHeartbeat(t, heartbeat); hbData != nil {
				log.Printf("heartbeat: uptime=%v counts=%s", hbData.Uptime, formatCounts(names, hbData.Counts))

				hbEvent := mqtt.SystemEvent{
					Timestamp: hbData.Timestamp,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					updateTracker(tracker, detector, mqttStatus)
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			// Update status tracker for HTTP consumers
			updateTracker(tracker, detector, mqttStatus)
		}
	}
}

// hookSignals logs detector signals and counts read failures on tracker,
// which may be nil. The returned func removes the hooks.
func hookSignals(tracker *status.Tracker) func() {
	listeners := []*capitan.Listener{
		capitan.Hook(logic.BaselineEstablished, func(_ context.Context, e *capitan.Event) {
			n, _ := logic.KeyChannels.From(e)
			d, _ := logic.KeyDebounce.From(e)
			log.Printf("baseline established: channels=%d debounce=%v", n, d)
		}),
		capitan.Hook(logic.ChannelTransitioned, func(_ context.Context, e *capitan.Event) {
			kind, _ := logic.KeyEvent.From(e)
			ch, _ := logic.KeyChannel.From(e)
			from, _ := logic.KeyOldState.From(e)
			to, _ := logic.KeyNewState.From(e)
			log.Printf("event: %s (%s %s -> %s)", kind, ch, status.StateOrUnknown(from), to)
		}),
		capitan.Hook(logic.InputReadFailed, func(_ context.Context, e *capitan.Event) {
			msg, _ := logic.KeyError.From(e)
			log.Printf("gpio read error: %s", msg)
			if tracker != nil {
				tracker.AddReadError()
			}
		}),
	}
	return func() {
		for _, l := range listeners {
			l.Close()
		}
	}
}

func updateTracker(tracker *status.Tracker, detector *logic.Detector, mqttStatus mqtt.ConnectionStatus) {
	if tracker == nil {
		return
	}
	tracker.Update(detector.CurrentState(), detector.IsBaselined(), detector.EventCountsSnapshot())
	if mqttStatus != nil {
		tracker.SetMQTTConnected(mqttStatus.IsConnected())
	}
}

func unknownStates(names []string) []logic.ChannelState {
	states := make([]logic.ChannelState, len(names))
	for i, name := range names {
		states[i] = logic.ChannelState{Name: name}
	}
	return states
}

// formatChannels renders channel states as "CH=ON HW=OFF".
func formatChannels(states []logic.ChannelState) string {
	parts := make([]string, len(states))
	for i, s := range states {
		parts[i] = strings.ToUpper(s.Name) + "=" + status.StateOrUnknown(string(s.State))
	}
	return strings.Join(parts, " ")
}

// formatCounts renders counts in channel order as "ch_on=1 ch_off=0 ...".
func formatCounts(names []string, counts logic.EventCounts) string {
	parts := make([]string, 0, 2*len(names))
	for _, name := range names {
		c := counts[name]
		parts = append(parts, fmt.Sprintf("%s_on=%d %s_off=%d", name, c.On, name, c.Off))
	}
	return strings.Join(parts, " ")
}

// sampleClock reports the time of the tick being sampled.
type sampleClock struct {
	now time.Time
}

func (c *sampleClock) Now() time.Time {
	return c.now
}

// printStates debounces every line over the given number of ticks and prints
// the stable levels as "CH: ON, HW: OFF". Each pin starts from its first
// sample, so a line that holds steady settles immediately.
func printStates(w io.Writer, names []string, lines gpio.Lines, debounce time.Duration, start time.Time, tick <-chan time.Time, samples int) error {
	if len(names) != len(lines) {
		return fmt.Errorf("got %d lines for %d channels", len(lines), len(names))
	}

	clock := &sampleClock{now: start}
	pins := make([]*stabilizer.DebouncedPin, len(lines))
	for i, l := range lines {
		pins[i] = stabilizer.NewDebouncedPin(l, debounce, stabilizer.WithClock(clock))
	}

	for n := 0; n < samples; n++ {
		clock.now = <-tick
		for _, p := range pins {
			p.Read()
		}
	}

	parts := make([]string, len(pins))
	for i, p := range pins {
		high, err := p.IsHigh()
		if err != nil {
			return fmt.Errorf("read %s: %w", names[i], err)
		}
		parts[i] = strings.ToUpper(names[i]) + ": " + string(stateOf(high))
	}
	_, err := fmt.Fprintln(w, strings.Join(parts, ", "))
	return err
}

func stateOf(on bool) logic.State {
	if on {
		return logic.StateOn
	}
	return logic.StateOff
}
