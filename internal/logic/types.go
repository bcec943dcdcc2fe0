// Package logic contains the channel tracking logic of the monitor daemon.
// This package has NO GPIO, MQTT or OS dependencies (no time.Sleep either).
// Time is always injectable: every Input carries the time it was sampled.
package logic

import (
	"strings"
	"time"
)

// State represents the logical level of an input channel.
type State string

const (
	StateOn  State = "ON"
	StateOff State = "OFF"
)

// EventType names a channel transition, e.g. "CH_ON".
type EventType string

// EventTypeFor returns the event type for channel moving to state.
func EventTypeFor(channel string, state State) EventType {
	return EventType(strings.ToUpper(channel) + "_" + string(state))
}

// Event represents a debounced channel transition to be published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Channel   string
	State     State
	Previous  State
	// Channels holds the stable state of every channel after the transition.
	Channels []ChannelState
}

// ChannelState is the stable state of a single named channel.
// State is empty until the channel has baselined.
type ChannelState struct {
	Name  string
	State State
}

// Input represents a single sample of every channel, in channel order.
type Input struct {
	Levels []bool // true = ON
	Time   time.Time
}

// Counts tracks transitions of one channel.
type Counts struct {
	On  int
	Off int
}

// EventCounts tracks the number of transitions per channel since startup.
type EventCounts map[string]Counts

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    EventCounts
}
