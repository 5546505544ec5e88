package gpio

import (
	"errors"
	"testing"

	"github.com/sweeney/pedal-relay/internal/logic"
)

func TestFakeSwitchRead(t *testing.T) {
	f := NewFakeSwitch([]bool{true, false, true})

	want := []bool{true, false, true, true} // last sample repeats
	for i, w := range want {
		got, err := f.Read()
		if err != nil {
			t.Fatalf("sample %d: unexpected error: %v", i, err)
		}
		if got != w {
			t.Errorf("sample %d: expected %v, got %v", i, w, got)
		}
	}
}

func TestFakeSwitchNoSamples(t *testing.T) {
	f := NewFakeSwitch(nil)

	_, err := f.Read()
	if err == nil {
		t.Error("expected error with no samples")
	}
}

func TestFakeSwitchError(t *testing.T) {
	f := NewFakeSwitch([]bool{true})
	f.ReadError = errors.New("simulated error")

	_, err := f.Read()
	if err == nil {
		t.Error("expected error to be returned")
	}
	if err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFakeSwitchReset(t *testing.T) {
	f := NewFakeSwitch([]bool{true, false})

	f.Read()
	f.Reset()

	got, _ := f.Read()
	if got != true {
		t.Errorf("after reset: expected true, got %v", got)
	}
}

func TestFakeSwitchClose(t *testing.T) {
	f := NewFakeSwitch([]bool{true})

	if f.Closed {
		t.Error("should not be closed initially")
	}
	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}
}

func TestFakeDriverRecordsFrames(t *testing.T) {
	d := NewFakeDriver()

	if got := d.Last(); got != (logic.Frame{}) {
		t.Errorf("empty driver: expected zero frame, got %+v", got)
	}

	frames := []logic.Frame{
		{RelayLow: true},
		{RelayHigh: true, LatchPulse: true, Brightness: 120},
		{RelayHigh: true, Brightness: 255},
	}
	for _, f := range frames {
		if err := d.Apply(f); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if len(d.Frames) != len(frames) {
		t.Fatalf("expected %d frames, got %d", len(frames), len(d.Frames))
	}
	if d.Last() != frames[len(frames)-1] {
		t.Errorf("Last: expected %+v, got %+v", frames[len(frames)-1], d.Last())
	}
}

func TestFakeDriverError(t *testing.T) {
	d := NewFakeDriver()
	d.ApplyError = errors.New("simulated error")

	if err := d.Apply(logic.Frame{}); err == nil {
		t.Error("expected error to be returned")
	}
	if len(d.Frames) != 0 {
		t.Error("failed Apply should not record a frame")
	}
}
