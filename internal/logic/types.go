// Package logic contains the pure footswitch state machine.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is modeled as an integer tick count driven by the caller.
package logic

// Default timing constants, in ticks. The reference configuration runs the
// controller at one tick per millisecond.
const (
	// DefaultMomentaryDelay is how long the switch must be held before the
	// engagement converts from latched to momentary (400 ms at 1 ms/tick).
	DefaultMomentaryDelay = 400

	// DefaultLatchingTime is the width of the pulse sent to the latching
	// relay (3 ms at 1 ms/tick).
	DefaultLatchingTime = 3
)

// Shimmer brightness bounds. The lower bound is deliberately above zero so
// the breathing animation never has a visually dead trough.
const (
	MinBrightness = 10
	MaxShimmer    = 254

	// FullBrightness is the steady LED level while latched on.
	FullBrightness = 255
)

// State represents the logical state of the pedal.
type State string

const (
	StateOn  State = "ON"
	StateOff State = "OFF"
)

// Mode describes how the pedal is (or was) engaged.
type Mode string

const (
	// ModeLatched: a tap flipped the pedal and it stays until the next tap.
	ModeLatched Mode = "LATCHED"
	// ModeMomentary: the pedal is held on only while the switch is pressed.
	ModeMomentary Mode = "MOMENTARY"
)

// EventType represents a pedal state transition.
type EventType string

const (
	// EventPedalOn fires when a tap toggles the pedal on.
	EventPedalOn EventType = "PEDAL_ON"
	// EventPedalOff fires when a tap toggles the pedal off.
	EventPedalOff EventType = "PEDAL_OFF"
	// EventMomentaryHold fires when a continuous hold crosses the momentary
	// threshold while the pedal is engaged.
	EventMomentaryHold EventType = "MOMENTARY_HOLD"
	// EventMomentaryOff fires when releasing a momentary hold disengages
	// the pedal.
	EventMomentaryOff EventType = "MOMENTARY_OFF"
)

// Event represents a transition to be published.
type Event struct {
	Tick  uint64
	Type  EventType
	State State
	Mode  Mode
}

// Frame is the rendered output levels for one tick. It is a value type:
// the pin driver consumes it without reaching back into the controller.
type Frame struct {
	// RelayHigh drives the active-high relay and the static LED.
	RelayHigh bool
	// RelayLow drives the active-low relay. Always the inverse of RelayHigh;
	// the two are the same logical signal wired to opposite-polarity pins.
	RelayLow bool
	// LatchPulse drives the latching relay pin for the pulse window.
	LatchPulse bool
	// Brightness is the PWM level for the shimmer LED (0-255).
	Brightness uint8
}

// Config holds the controller's timing knobs, expressed in ticks so the
// tick rate stays the caller's business.
type Config struct {
	// MomentaryDelay is the hold threshold in ticks.
	MomentaryDelay int
	// LatchingTime is the latch pulse width in ticks.
	LatchingTime int
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	PedalOn        int
	PedalOff       int
	MomentaryHolds int
	MomentaryOffs  int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Tick        uint64
	UptimeTicks uint64
	Counts      EventCounts
}
