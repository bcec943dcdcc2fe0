package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string                `json:"event,omitempty"`
	Reason        string                `json:"reason,omitempty"`
	Channels      map[string]string     `json:"channels"`
	Ready         bool                  `json:"ready"`
	UptimeSeconds int64                 `json:"uptime_seconds"`
	StartTime     string                `json:"start_time"`
	Timestamp     string                `json:"timestamp"`
	MQTT          MQTTStatus            `json:"mqtt"`
	Counts        map[string]CountsJSON `json:"event_counts"`
	ReadErrors    int                   `json:"read_errors"`
	Config        ConfigJSON            `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
	Topic     string `json:"topic"`
}

// CountsJSON is the JSON representation of one channel's event counts.
type CountsJSON struct {
	On  int `json:"on"`
	Off int `json:"off"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64  `json:"poll_ms"`
	DebounceMs  int64  `json:"debounce_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
	Chip        string `json:"chip"`
	Channels    string `json:"channels"`
	ActiveLow   bool   `json:"active_low"`
}

// StateOrUnknown returns s, or "UNKNOWN" before the channel has baselined.
func StateOrUnknown(s string) string {
	if s == "" {
		return "UNKNOWN"
	}
	return s
}

func buildInner(snap Snapshot) StatusInner {
	channels := make(map[string]string, len(snap.Channels))
	for _, c := range snap.Channels {
		channels[c.Name] = StateOrUnknown(string(c.State))
	}
	counts := make(map[string]CountsJSON, len(snap.Counts))
	for name, c := range snap.Counts {
		counts[name] = CountsJSON{On: c.On, Off: c.Off}
	}

	return StatusInner{
		Channels:      channels,
		Ready:         snap.Baselined,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT: MQTTStatus{
			Connected: snap.MQTTConnected,
			Broker:    snap.Config.Broker,
			Topic:     snap.Config.Topic,
		},
		Counts:     counts,
		ReadErrors: snap.ReadErrors,
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			DebounceMs:  snap.Config.DebounceMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			Chip:        snap.Config.Chip,
			Channels:    snap.Config.Channels,
			ActiveLow:   snap.Config.ActiveLow,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
