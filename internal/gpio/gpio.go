// Package gpio provides the hardware boundary with real and fake
// implementations. The real implementation uses the Linux GPIO character
// device for the switch and relay lines and the sysfs PWM interface for the
// shimmer LED. The fakes allow testing without hardware.
package gpio

import "github.com/sweeney/pedal-relay/internal/logic"

// Switch reads the footswitch input.
type Switch interface {
	// Read returns the logical switch state (true = pressed). The line is
	// active-low with the internal pull-up, so the real implementation
	// inverts the raw value.
	Read() (bool, error)

	// Close releases the input line.
	Close() error
}

// Driver applies rendered output frames to the physical pins.
type Driver interface {
	// Apply drives the relay, latch, and LED outputs from one frame.
	Apply(f logic.Frame) error

	// Close parks the outputs safe (everything released) and frees them.
	Close() error
}

// Default pin assignments (BCM numbering).
const (
	DefaultPinSwitch    = 17 // footswitch, active-low with pull-up
	DefaultPinRelayHigh = 22 // active-high bypass relay
	DefaultPinRelayLow  = 27 // active-low bypass relay
	DefaultPinLatch     = 23 // latching relay, pulsed
	DefaultPinLED       = 24 // static indicator LED
)

// Default sysfs PWM channel for the shimmer LED (pwmchip0/pwm0 is GPIO18 on
// a Raspberry Pi with the pwm overlay enabled).
const (
	DefaultPWMChip    = 0
	DefaultPWMChannel = 0
)

// Pins bundles the output pin numbers for the real driver.
type Pins struct {
	RelayHigh  int
	RelayLow   int
	Latch      int
	LED        int
	PWMChip    int
	PWMChannel int
}

// DefaultPins returns the reference wiring.
func DefaultPins() Pins {
	return Pins{
		RelayHigh:  DefaultPinRelayHigh,
		RelayLow:   DefaultPinRelayLow,
		Latch:      DefaultPinLatch,
		LED:        DefaultPinLED,
		PWMChip:    DefaultPWMChip,
		PWMChannel: DefaultPWMChannel,
	}
}
