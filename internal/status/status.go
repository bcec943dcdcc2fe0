// Package status provides a thread-safe status tracker for the monitor daemon.
// It is read by the HTTP handlers and folded into MQTT system events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/stabilizer/internal/logic"
	"github.com/zoobzio/clockz"
)

// Config contains daemon configuration for display.
type Config struct {
	PollMs      int64
	DebounceMs  int64
	HeartbeatMs int64
	Broker      string
	Topic       string
	HTTPAddr    string
	Chip        string
	Channels    string
	ActiveLow   bool
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Channels      []logic.ChannelState
	Baselined     bool
	Counts        logic.EventCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	ReadErrors    int
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	clock clockz.Clock

	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given clock and config. The start
// time is the clock's current time.
func NewTracker(clock clockz.Clock, cfg Config) *Tracker {
	return &Tracker{
		clock: clock,
		snap: Snapshot{
			StartTime: clock.Now(),
			Config:    cfg,
		},
	}
}

// Update sets channel states, baseline status, and event counts.
// Called from runLoop on every tick. The slices and maps passed in must not
// be modified afterwards.
func (t *Tracker) Update(channels []logic.ChannelState, baselined bool, counts logic.EventCounts) {
	t.mu.Lock()
	t.snap.Channels = channels
	t.snap.Baselined = baselined
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// AddReadError counts one failed read of the input lines.
func (t *Tracker) AddReadError() {
	t.mu.Lock()
	t.snap.ReadErrors++
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the clock's time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = t.clock.Now()
	return s
}
