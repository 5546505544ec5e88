package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/pedal-relay/internal/logic"
)

func TestFormatPayload(t *testing.T) {
	event := logic.Event{
		Tick:  400,
		Type:  logic.EventMomentaryHold,
		State: logic.StateOn,
		Mode:  logic.ModeMomentary,
	}
	at := time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC)

	payload, err := FormatPayload(event, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Pedal.Timestamp != "2026-02-02T22:18:12Z" {
		t.Errorf("unexpected timestamp: %s", parsed.Pedal.Timestamp)
	}
	if parsed.Pedal.Tick != 400 {
		t.Errorf("unexpected tick: %d", parsed.Pedal.Tick)
	}
	if parsed.Pedal.Event != "MOMENTARY_HOLD" {
		t.Errorf("unexpected event: %s", parsed.Pedal.Event)
	}
	if parsed.Pedal.State != "ON" {
		t.Errorf("unexpected state: %s", parsed.Pedal.State)
	}
	if parsed.Pedal.Mode != "MOMENTARY" {
		t.Errorf("unexpected mode: %s", parsed.Pedal.Mode)
	}
}

func TestFormatPayloadAllEventTypes(t *testing.T) {
	tests := []struct {
		eventType logic.EventType
		state     logic.State
		mode      logic.Mode
		wantEvent string
		wantState string
		wantMode  string
	}{
		{logic.EventPedalOn, logic.StateOn, logic.ModeLatched, "PEDAL_ON", "ON", "LATCHED"},
		{logic.EventPedalOff, logic.StateOff, logic.ModeLatched, "PEDAL_OFF", "OFF", "LATCHED"},
		{logic.EventMomentaryHold, logic.StateOn, logic.ModeMomentary, "MOMENTARY_HOLD", "ON", "MOMENTARY"},
		{logic.EventMomentaryOff, logic.StateOff, logic.ModeMomentary, "MOMENTARY_OFF", "OFF", "MOMENTARY"},
	}

	for _, tt := range tests {
		t.Run(string(tt.eventType), func(t *testing.T) {
			event := logic.Event{
				Type:  tt.eventType,
				State: tt.state,
				Mode:  tt.mode,
			}

			payload, err := FormatPayload(event, time.Now())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			var parsed Payload
			if err := json.Unmarshal(payload, &parsed); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}

			if parsed.Pedal.Event != tt.wantEvent {
				t.Errorf("event: got %s, want %s", parsed.Pedal.Event, tt.wantEvent)
			}
			if parsed.Pedal.State != tt.wantState {
				t.Errorf("state: got %s, want %s", parsed.Pedal.State, tt.wantState)
			}
			if parsed.Pedal.Mode != tt.wantMode {
				t.Errorf("mode: got %s, want %s", parsed.Pedal.Mode, tt.wantMode)
			}
		})
	}
}

func TestFormatSystemPayload(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed SystemPayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.System.Timestamp != "2026-02-02T22:18:12Z" {
		t.Errorf("unexpected timestamp: %s", parsed.System.Timestamp)
	}
	if parsed.System.Event != "SHUTDOWN" {
		t.Errorf("unexpected event: %s", parsed.System.Event)
	}
	if parsed.System.Reason != "SIGTERM" {
		t.Errorf("unexpected reason: %s", parsed.System.Reason)
	}
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"status":{"custom":true}}`)
	event := SystemEvent{
		Timestamp:  time.Now(),
		Event:      "STARTUP",
		RawPayload: raw,
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("raw payload not passed through: %s", payload)
	}
}

func TestFormatSystemPayloadOmitsEmptyReason(t *testing.T) {
	payload, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "HEARTBEAT",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var generic map[string]map[string]interface{}
	if err := json.Unmarshal(payload, &generic); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, ok := generic["system"]["reason"]; ok {
		t.Error("empty reason should be omitted")
	}
}

func TestFakePublisherRecords(t *testing.T) {
	f := NewFakePublisher()

	event := logic.Event{Tick: 1, Type: logic.EventPedalOn, State: logic.StateOn, Mode: logic.ModeLatched}
	if err := f.Publish(event, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: "STARTUP"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.Events) != 1 || f.Events[0].Type != logic.EventPedalOn {
		t.Errorf("unexpected events: %v", f.Events)
	}
	if len(f.Payloads) != 1 {
		t.Errorf("expected 1 payload, got %d", len(f.Payloads))
	}
	if len(f.SystemEvents) != 1 || f.SystemEvents[0].Event != "STARTUP" {
		t.Errorf("unexpected system events: %v", f.SystemEvents)
	}
}

func TestFakePublisherErrors(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("boom")

	if err := f.Publish(logic.Event{}, time.Now()); err == nil {
		t.Error("expected publish error")
	}
	if len(f.Events) != 0 {
		t.Error("failed publish should not record")
	}
}
