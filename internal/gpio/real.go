//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/pedal-relay/internal/logic"
)

// RealSwitch reads the footswitch from actual hardware using the Linux GPIO
// character device.
type RealSwitch struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealSwitch opens the footswitch input line. The switch shorts the line
// to ground, so it is requested with the internal pull-up and no external
// resistor is needed.
func NewRealSwitch(pin int) (*RealSwitch, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request switch pin %d: %w", pin, err)
	}

	return &RealSwitch{chip: chip, line: line}, nil
}

// Read returns the logical switch state. Raw low (0) = pressed.
func (s *RealSwitch) Read() (bool, error) {
	raw, err := s.line.Value()
	if err != nil {
		return false, fmt.Errorf("read switch pin: %w", err)
	}
	return raw == 0, nil
}

// Close releases the input line and chip.
func (s *RealSwitch) Close() error {
	var errs []error
	if s.line != nil {
		if err := s.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close switch pin: %w", err))
		}
	}
	if s.chip != nil {
		if err := s.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealDriver drives the relay and LED outputs on actual hardware.
type RealDriver struct {
	chip      *gpiocdev.Chip
	relayHigh *gpiocdev.Line
	relayLow  *gpiocdev.Line
	latch     *gpiocdev.Line
	led       *gpiocdev.Line
	pwm       *sysfsPWM

	last logic.Frame
	init bool
}

// NewRealDriver requests the output lines and opens the PWM channel for the
// shimmer LED. Outputs start in the released state (active-low relay
// driven, everything else off).
func NewRealDriver(pins Pins) (*RealDriver, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	d := &RealDriver{chip: chip}

	request := func(dst **gpiocdev.Line, pin, initial int, name string) error {
		line, err := chip.RequestLine(pin, gpiocdev.AsOutput(initial))
		if err != nil {
			return fmt.Errorf("request %s pin %d: %w", name, pin, err)
		}
		*dst = line
		return nil
	}

	if err := request(&d.relayHigh, pins.RelayHigh, 0, "relay-high"); err != nil {
		d.Close()
		return nil, err
	}
	// The active-low relay idles driven: pedal off is its engaged state.
	if err := request(&d.relayLow, pins.RelayLow, 1, "relay-low"); err != nil {
		d.Close()
		return nil, err
	}
	if err := request(&d.latch, pins.Latch, 0, "latch"); err != nil {
		d.Close()
		return nil, err
	}
	if err := request(&d.led, pins.LED, 0, "led"); err != nil {
		d.Close()
		return nil, err
	}

	pwm, err := openSysfsPWM(pins.PWMChip, pins.PWMChannel)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("open pwm: %w", err)
	}
	d.pwm = pwm

	return d, nil
}

// Apply drives the outputs from one rendered frame. Unchanged levels are
// not rewritten; the frame arrives every tick and most ticks change only
// the PWM duty.
func (d *RealDriver) Apply(f logic.Frame) error {
	if !d.init || f.RelayHigh != d.last.RelayHigh {
		if err := d.relayHigh.SetValue(boolToLevel(f.RelayHigh)); err != nil {
			return fmt.Errorf("set relay-high: %w", err)
		}
		if err := d.led.SetValue(boolToLevel(f.RelayHigh)); err != nil {
			return fmt.Errorf("set led: %w", err)
		}
	}
	if !d.init || f.RelayLow != d.last.RelayLow {
		if err := d.relayLow.SetValue(boolToLevel(f.RelayLow)); err != nil {
			return fmt.Errorf("set relay-low: %w", err)
		}
	}
	if !d.init || f.LatchPulse != d.last.LatchPulse {
		if err := d.latch.SetValue(boolToLevel(f.LatchPulse)); err != nil {
			return fmt.Errorf("set latch: %w", err)
		}
	}
	if !d.init || f.Brightness != d.last.Brightness {
		if err := d.pwm.SetBrightness(f.Brightness); err != nil {
			return fmt.Errorf("set brightness: %w", err)
		}
	}
	d.last = f
	d.init = true
	return nil
}

// Close parks the outputs in the released state, reconfigures the lines to
// inputs so nothing is driven across a restart, and frees them.
func (d *RealDriver) Close() error {
	var errs []error

	park := func(line *gpiocdev.Line, name string) {
		if line == nil {
			return
		}
		if err := line.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s: %w", name, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
	}

	park(d.relayHigh, "relay-high")
	park(d.relayLow, "relay-low")
	park(d.latch, "latch")
	park(d.led, "led")

	if d.pwm != nil {
		if err := d.pwm.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pwm: %w", err))
		}
	}
	if d.chip != nil {
		if err := d.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func boolToLevel(b bool) int {
	if b {
		return 1
	}
	return 0
}
