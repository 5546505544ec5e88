package logic

// Controller is the footswitch state machine. It interprets a noisy
// mechanical switch into two mutually exclusive interaction modes:
//
//   - tap (shorter than the momentary threshold): toggles the pedal and
//     stays latched until the next tap
//   - hold (longer than the threshold): the pedal is on only while held,
//     and releasing disengages it
//
// Every toggle pulses the latching relay for a fixed window. Debouncing is
// structural: the switch is sampled once per fixed tick and transitions are
// edge-driven against the previous tick's sample, so contact bounce shorter
// than one tick never produces an edge.
//
// All fields are private and mutated only inside Step; Outputs and the
// accessors are read-only views. Not safe for concurrent use — the caller
// owns the tick loop.
type Controller struct {
	cfg Config

	tick uint64 // completed steps since creation

	pressed      bool // debounced sample from the current tick
	wasPressed   bool // debounced sample from the previous tick
	pedalOn      bool
	pulsePending bool
	holdExpired  bool // one-shot per continuous hold
	holdTicks    int
	pulseTicks   int

	brightness   uint8
	brightnessUp bool

	counts        EventCounts
	lastHeartbeat uint64
}

// NewController creates a controller in the Idle state. Zero or negative
// config values fall back to the reference defaults.
func NewController(cfg Config) *Controller {
	if cfg.MomentaryDelay <= 0 {
		cfg.MomentaryDelay = DefaultMomentaryDelay
	}
	if cfg.LatchingTime <= 0 {
		cfg.LatchingTime = DefaultLatchingTime
	}
	return &Controller{
		cfg:          cfg,
		brightness:   MinBrightness,
		brightnessUp: true,
	}
}

// Step advances the state machine by one tick with the given raw switch
// sample (true = pressed) and returns any transition events that fired.
// It must be called at a fixed cadence; all timing is counted in ticks.
func (c *Controller) Step(pressed bool) []Event {
	t := c.tick
	c.tick++

	var events []Event

	// Hold timer: runs only while the switch is down, expires one-shot at
	// the threshold, and resets on release. Once expired it stays expired
	// until the switch comes up, so a single hold cannot re-trigger.
	if pressed {
		c.holdTicks++
		if c.holdTicks >= c.cfg.MomentaryDelay {
			c.holdTicks = 0
			if !c.holdExpired {
				c.holdExpired = true
				if c.pedalOn {
					events = append(events, c.record(t, EventMomentaryHold, ModeMomentary))
				}
			}
		}
	} else {
		c.holdTicks = 0
	}

	// Snapshot last tick's sample for edge detection.
	c.wasPressed = c.pressed
	c.pressed = pressed

	if pressed {
		if !c.wasPressed {
			// Rising edge: a tap always flips the pedal and pulses the latch.
			if !c.pedalOn {
				c.pedalOn = true
				c.armPulse()
				// Fresh hold window for this engagement.
				c.holdTicks = 0
				c.holdExpired = false
				events = append(events, c.record(t, EventPedalOn, ModeLatched))
			} else {
				c.pedalOn = false
				c.armPulse()
				events = append(events, c.record(t, EventPedalOff, ModeLatched))
			}
		}
	} else if c.wasPressed && c.pedalOn && c.holdExpired {
		// Falling edge out of an expired hold: momentary disengage. A short
		// tap's release lands here with holdExpired false and is a no-op —
		// the toggle already happened on the press edge.
		c.pedalOn = false
		c.armPulse()
		events = append(events, c.record(t, EventMomentaryOff, ModeMomentary))
	}

	// Shimmer ramp: a continuous triangle wave. The phase advances every
	// tick regardless of pedal state, so engaging mid-ramp never jumps.
	if c.brightnessUp {
		c.brightness++
		if c.brightness >= MaxShimmer {
			c.brightnessUp = false
		}
	} else {
		c.brightness--
		if c.brightness <= MinBrightness {
			c.brightnessUp = true
		}
	}

	// Latch pulse countdown: pending holds for exactly LatchingTime ticks
	// after an arm, then auto-clears.
	if c.pulsePending {
		if c.pulseTicks >= c.cfg.LatchingTime {
			c.pulsePending = false
			c.pulseTicks = 0
		} else {
			c.pulseTicks++
		}
	}

	return events
}

// armPulse starts a latch pulse window. Arming while a pulse is already
// active restarts the window, so the latest commanded state always gets a
// full-width pulse.
func (c *Controller) armPulse() {
	c.pulsePending = true
	c.pulseTicks = 0
}

// Outputs renders the current state into physical output levels. Pure read;
// call it after Step so the frame is never older than one tick.
func (c *Controller) Outputs() Frame {
	f := Frame{LatchPulse: c.pulsePending}
	if c.pedalOn {
		f.RelayHigh = true
		if c.pressed {
			// Held: shimmer to show momentary mode is (or will be) active.
			f.Brightness = c.brightness
		} else {
			f.Brightness = FullBrightness
		}
	} else {
		f.RelayLow = true
	}
	return f
}

func (c *Controller) record(tick uint64, typ EventType, mode Mode) Event {
	switch typ {
	case EventPedalOn:
		c.counts.PedalOn++
	case EventPedalOff:
		c.counts.PedalOff++
	case EventMomentaryHold:
		c.counts.MomentaryHolds++
	case EventMomentaryOff:
		c.counts.MomentaryOffs++
	}
	return Event{Tick: tick, Type: typ, State: boolToState(c.pedalOn), Mode: mode}
}

func boolToState(on bool) State {
	if on {
		return StateOn
	}
	return StateOff
}

// PedalOn reports whether the relays/LED are currently engaged.
func (c *Controller) PedalOn() bool { return c.pedalOn }

// Pressed returns the debounced switch sample from the last Step.
func (c *Controller) Pressed() bool { return c.pressed }

// PulsePending reports whether a latch pulse window is active.
func (c *Controller) PulsePending() bool { return c.pulsePending }

// HoldExpired reports whether the current hold has crossed the momentary
// threshold.
func (c *Controller) HoldExpired() bool { return c.holdExpired }

// Brightness returns the current shimmer ramp level.
func (c *Controller) Brightness() uint8 { return c.brightness }

// CurrentState returns the pedal state as a State value.
func (c *Controller) CurrentState() State { return boolToState(c.pedalOn) }

// CurrentMode returns how the pedal is engaged, or "" when it is off.
func (c *Controller) CurrentMode() Mode {
	if !c.pedalOn {
		return ""
	}
	if c.holdExpired {
		return ModeMomentary
	}
	return ModeLatched
}

// Ticks returns the number of completed steps since creation.
func (c *Controller) Ticks() uint64 { return c.tick }

// EventCountsSnapshot returns a copy of the per-type event totals.
func (c *Controller) EventCountsSnapshot() EventCounts { return c.counts }

// CheckHeartbeat returns heartbeat data if at least interval ticks have
// elapsed since the last heartbeat (or startup). Returns nil if the
// interval has not elapsed or if interval is 0 (disabled).
func (c *Controller) CheckHeartbeat(interval uint64) *HeartbeatData {
	if interval == 0 {
		return nil
	}
	if c.tick-c.lastHeartbeat < interval {
		return nil
	}
	c.lastHeartbeat = c.tick
	return &HeartbeatData{
		Tick:        c.tick,
		UptimeTicks: c.tick,
		Counts:      c.counts,
	}
}
