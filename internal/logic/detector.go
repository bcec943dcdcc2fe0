package logic

import (
	"fmt"
	"maps"
	"time"

	"github.com/sweeney/stabilizer"
)

type debouncer = stabilizer.TimedDebouncer[State, stabilizer.Unknown[State]]

type channel struct {
	name      string
	debouncer *debouncer
}

// sampleClock reports the time of the sample being processed, so every
// channel of one Input is judged against the same instant.
type sampleClock struct {
	now time.Time
}

func (c *sampleClock) Now() time.Time {
	return c.now
}

// Detector tracks debounced channel states and detects transitions.
type Detector struct {
	debounceDuration time.Duration
	channels         []channel
	clock            sampleClock
	baselined        bool
	startTime        time.Time
	eventCounts      EventCounts
	lastHeartbeat    time.Time
}

// NewDetector creates a transition detector for the named channels with the
// given debounce duration. The startTime is used for calculating uptime in
// heartbeat events.
func NewDetector(names []string, debounceDuration time.Duration, startTime time.Time) *Detector {
	d := &Detector{
		debounceDuration: debounceDuration,
		clock:            sampleClock{now: startTime},
		startTime:        startTime,
		lastHeartbeat:    startTime,
		eventCounts:      make(EventCounts, len(names)),
	}
	for _, name := range names {
		d.channels = append(d.channels, channel{
			name:      name,
			debouncer: stabilizer.NewUnknown[State](debounceDuration, stabilizer.WithClock(&d.clock)),
		})
		d.eventCounts[name] = Counts{}
	}
	return d
}

// Process takes a new input sample and returns any events that should be emitted.
// A channel baselines on its first stable state; events are only returned
// once every channel has baselined, and only for later transitions.
func (d *Detector) Process(input Input) ([]Event, error) {
	if len(input.Levels) != len(d.channels) {
		return nil, fmt.Errorf("got %d levels for %d channels", len(input.Levels), len(d.channels))
	}

	d.clock.now = input.Time

	type transition struct {
		channel  string
		to, from State
	}
	var transitions []transition

	for i, ch := range d.channels {
		st := ch.debouncer.Update(boolToState(input.Levels[i]))
		tr, ok := st.(stabilizer.Transitioned[State, stabilizer.Unknown[State]])
		if !ok {
			continue
		}
		from, known := tr.PreviousStable.Value()
		if !known {
			// first stable state is the channel's baseline, not an event
			continue
		}
		transitions = append(transitions, transition{channel: ch.name, to: tr.Stable, from: from})
	}

	if !d.baselined {
		d.baselined = d.allBaselined()
		return nil, nil // No events until baseline established
	}

	// Emit in channel order when several change on the same sample
	var events []Event
	if len(transitions) > 0 {
		current := d.CurrentState()
		for _, tr := range transitions {
			events = append(events, Event{
				Timestamp: input.Time,
				Type:      EventTypeFor(tr.channel, tr.to),
				Channel:   tr.channel,
				State:     tr.to,
				Previous:  tr.from,
				Channels:  current,
			})

			c := d.eventCounts[tr.channel]
			if tr.to == StateOn {
				c.On++
			} else {
				c.Off++
			}
			d.eventCounts[tr.channel] = c
		}
	}

	return events, nil
}

func (d *Detector) allBaselined() bool {
	for _, ch := range d.channels {
		if !ch.debouncer.ReadStable().IsKnown() {
			return false
		}
	}
	return true
}

func boolToState(b bool) State {
	if b {
		return StateOn
	}
	return StateOff
}

// IsBaselined returns whether every channel has established a baseline.
func (d *Detector) IsBaselined() bool {
	return d.baselined
}

// Channels returns the channel names in order.
func (d *Detector) Channels() []string {
	names := make([]string, len(d.channels))
	for i, ch := range d.channels {
		names[i] = ch.name
	}
	return names
}

// CurrentState returns the current stable state of every channel.
// Channels that have not baselined report an empty State.
func (d *Detector) CurrentState() []ChannelState {
	states := make([]ChannelState, len(d.channels))
	for i, ch := range d.channels {
		s, _ := ch.debouncer.ReadStable().Value()
		states[i] = ChannelState{Name: ch.name, State: s}
	}
	return states
}

// EventCountsSnapshot returns a copy of the per-channel event counts.
func (d *Detector) EventCountsSnapshot() EventCounts {
	return maps.Clone(d.eventCounts)
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if not yet baselined, if the
// interval has not elapsed, or if interval is <= 0 (disabled).
func (d *Detector) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if !d.baselined {
		return nil
	}

	if now.Sub(d.lastHeartbeat) < interval {
		return nil
	}

	d.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(d.startTime),
		Counts:    d.EventCountsSnapshot(),
	}
}
