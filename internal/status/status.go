// Package status provides a thread-safe status tracker for the pedal-relay
// daemon. It is the one atomically-readable unit shared with the HTTP
// handlers: the tick loop writes a snapshot, concurrent readers copy it
// under the lock.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/pedal-relay/internal/logic"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	TickMs         int64
	MomentaryDelay int // ticks
	LatchingTime   int // ticks
	HeartbeatMs    int64
	Broker         string
	HTTPPort       string
	WSBroker       string // Websocket broker URL for browser MQTT (empty = disabled)
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Pedal         logic.State
	Mode          logic.Mode
	Pressed       bool
	PulsePending  bool
	Ticks         uint64
	Counts        logic.EventCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the pedal state, mode, flags, tick count, and event counts.
// Called from the tick loop.
func (t *Tracker) Update(pedal logic.State, mode logic.Mode, pressed, pulse bool, ticks uint64, counts logic.EventCounts) {
	t.mu.Lock()
	t.snap.Pedal = pedal
	t.snap.Mode = mode
	t.snap.Pressed = pressed
	t.snap.PulsePending = pulse
	t.snap.Ticks = ticks
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
