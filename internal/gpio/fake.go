package gpio

import (
	"errors"

	"github.com/sweeney/pedal-relay/internal/logic"
)

// FakeSwitch is a test double that returns scripted switch samples.
type FakeSwitch struct {
	// Samples contains scripted pressed values. Each call to Read()
	// consumes the next sample; once exhausted the last one repeats.
	Samples []bool

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeSwitch creates a FakeSwitch with the given samples.
func NewFakeSwitch(samples []bool) *FakeSwitch {
	return &FakeSwitch{Samples: samples}
}

// Read returns the next scripted sample.
func (f *FakeSwitch) Read() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}

	if len(f.Samples) == 0 {
		return false, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample, nil
}

// Close marks the switch as closed.
func (f *FakeSwitch) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the switch to the beginning of samples.
func (f *FakeSwitch) Reset() {
	f.index = 0
	f.Closed = false
}

// FakeDriver records every applied frame for test assertions.
type FakeDriver struct {
	// Frames contains all frames passed to Apply, in order.
	Frames []logic.Frame

	// ApplyError, if set, will be returned by Apply()
	ApplyError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeDriver creates an empty FakeDriver.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{}
}

// Apply records the frame.
func (f *FakeDriver) Apply(frame logic.Frame) error {
	if f.ApplyError != nil {
		return f.ApplyError
	}
	f.Frames = append(f.Frames, frame)
	return nil
}

// Close marks the driver as closed.
func (f *FakeDriver) Close() error {
	f.Closed = true
	return nil
}

// Last returns the most recently applied frame, or a zero frame if none.
func (f *FakeDriver) Last() logic.Frame {
	if len(f.Frames) == 0 {
		return logic.Frame{}
	}
	return f.Frames[len(f.Frames)-1]
}
