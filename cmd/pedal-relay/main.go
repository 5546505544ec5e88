// Command pedal-relay drives guitar-pedal bypass relays from a footswitch.
// A short tap latches the pedal on or off; holding the switch past the
// momentary threshold keeps the pedal on only while held. State changes are
// published to MQTT and exposed on an HTTP status page.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/pedal-relay/internal/gpio"
	"github.com/sweeney/pedal-relay/internal/logic"
	"github.com/sweeney/pedal-relay/internal/mqtt"
	"github.com/sweeney/pedal-relay/internal/status"
	"github.com/sweeney/pedal-relay/internal/web"
)

func main() {
	tick := flag.Duration("tick", time.Millisecond, "Controller tick interval")
	momentary := flag.Duration("momentary-delay", 400*time.Millisecond, "Hold duration before momentary mode engages")
	latching := flag.Duration("latching-time", 3*time.Millisecond, "Latching relay pulse width")
	broker := flag.String("broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	heartbeat := flag.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	pinSwitch := flag.Int("pin-switch", gpio.DefaultPinSwitch, "BCM pin number for the footswitch")
	pinRelayHigh := flag.Int("pin-relay-high", gpio.DefaultPinRelayHigh, "BCM pin number for the active-high relay")
	pinRelayLow := flag.Int("pin-relay-low", gpio.DefaultPinRelayLow, "BCM pin number for the active-low relay")
	pinLatch := flag.Int("pin-latch", gpio.DefaultPinLatch, "BCM pin number for the latching relay")
	pinLED := flag.Int("pin-led", gpio.DefaultPinLED, "BCM pin number for the static LED")
	pwmChip := flag.Int("pwm-chip", gpio.DefaultPWMChip, "sysfs PWM chip for the shimmer LED")
	pwmChannel := flag.Int("pwm-channel", gpio.DefaultPWMChannel, "sysfs PWM channel for the shimmer LED")
	printState := flag.Bool("print-state", false, "Print current switch state and exit")
	httpAddr := flag.String("http", ":80", "HTTP status address (empty to disable)")
	wsBroker := flag.String("ws-broker", "=broker", `MQTT websocket URL for live UI ("=broker" derives from --broker, "off" disables)`)

	flag.Parse()

	pins := gpio.Pins{
		RelayHigh:  *pinRelayHigh,
		RelayLow:   *pinRelayLow,
		Latch:      *pinLatch,
		LED:        *pinLED,
		PWMChip:    *pwmChip,
		PWMChannel: *pwmChannel,
	}

	ws := resolveWSBroker(*wsBroker, *broker)
	if err := run(*tick, *momentary, *latching, *broker, *heartbeat, *pinSwitch, pins, *printState, *httpAddr, ws); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(tick, momentary, latching time.Duration, broker string, heartbeat time.Duration, pinSwitch int, pins gpio.Pins, printState bool, httpAddr, wsBroker string) error {
	cfg, heartbeatTicks, err := tickConfig(tick, momentary, latching, heartbeat)
	if err != nil {
		return err
	}

	// Initialize the switch input
	sw, err := gpio.NewRealSwitch(pinSwitch)
	if err != nil {
		return fmt.Errorf("init switch: %w", err)
	}
	defer sw.Close()

	// Print state mode
	if printState {
		pressed, err := sw.Read()
		if err != nil {
			return fmt.Errorf("read switch: %w", err)
		}
		fmt.Printf("switch: %s\n", stateString(pressed))
		return nil
	}

	// Initialize the output driver
	driver, err := gpio.NewRealDriver(pins)
	if err != nil {
		return fmt.Errorf("init outputs: %w", err)
	}
	defer driver.Close()

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(broker)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		TickMs:         tick.Milliseconds(),
		MomentaryDelay: cfg.MomentaryDelay,
		LatchingTime:   cfg.LatchingTime,
		HeartbeatMs:    heartbeat.Milliseconds(),
		Broker:         broker,
		HTTPPort:       httpAddr,
		WSBroker:       wsBroker,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if httpAddr != "" {
		srv := web.New(httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", httpAddr)
	}

	log.Printf("started: tick=%v momentary=%v (%d ticks) latching=%v (%d ticks) broker=%s heartbeat=%v",
		tick, momentary, cfg.MomentaryDelay, latching, cfg.LatchingTime, broker, heartbeat)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(sw, driver, publisher, publisher, tracker, cfg, heartbeatTicks, time.Now, ticker.C, sigCh)
}

// tickConfig converts the duration flags into tick counts for the controller.
func tickConfig(tick, momentary, latching, heartbeat time.Duration) (logic.Config, uint64, error) {
	if tick <= 0 {
		return logic.Config{}, 0, fmt.Errorf("tick interval must be positive, got %v", tick)
	}
	cfg := logic.Config{
		MomentaryDelay: int(momentary / tick),
		LatchingTime:   int(latching / tick),
	}
	if cfg.MomentaryDelay <= 0 {
		return logic.Config{}, 0, fmt.Errorf("momentary delay %v shorter than one tick %v", momentary, tick)
	}
	if cfg.LatchingTime <= 0 {
		return logic.Config{}, 0, fmt.Errorf("latching time %v shorter than one tick %v", latching, tick)
	}
	var heartbeatTicks uint64
	if heartbeat > 0 {
		heartbeatTicks = uint64(heartbeat / tick)
	}
	return cfg, heartbeatTicks, nil
}

func runLoop(sw gpio.Switch, driver gpio.Driver, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, cfg logic.Config, heartbeatTicks uint64, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	ctrl := logic.NewController(cfg)

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			pressed, err := sw.Read()
			if err != nil {
				log.Printf("switch read error: %v", err)
				continue
			}

			events := ctrl.Step(pressed)

			// Render in the same tick so the outputs never lag the state
			// machine by more than one sample.
			if err := driver.Apply(ctrl.Outputs()); err != nil {
				log.Printf("output apply error: %v", err)
			}

			for _, event := range events {
				log.Printf("event: %s (state=%s mode=%s tick=%d)", event.Type, event.State, event.Mode, event.Tick)
				if err := publisher.Publish(event, now()); err != nil {
					log.Printf("publish error: %v", err)
					// Don't crash on publish failure
				}
			}

			// Check for heartbeat
			if hbData := ctrl.CheckHeartbeat(heartbeatTicks); hbData != nil {
				log.Printf("heartbeat: ticks=%d pedal_on=%d pedal_off=%d holds=%d releases=%d",
					hbData.UptimeTicks, hbData.Counts.PedalOn, hbData.Counts.PedalOff,
					hbData.Counts.MomentaryHolds, hbData.Counts.MomentaryOffs)

				hbEvent := mqtt.SystemEvent{
					Timestamp: now(),
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					if mqttStatus != nil {
						tracker.SetMQTTConnected(mqttStatus.IsConnected())
					}
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					tracker.Update(ctrl.CurrentState(), ctrl.CurrentMode(), ctrl.Pressed(), ctrl.PulsePending(), ctrl.Ticks(), ctrl.EventCountsSnapshot())
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			// Update status tracker for HTTP consumers
			if tracker != nil {
				tracker.Update(ctrl.CurrentState(), ctrl.CurrentMode(), ctrl.Pressed(), ctrl.PulsePending(), ctrl.Ticks(), ctrl.EventCountsSnapshot())
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}
		}
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

func stateString(pressed bool) string {
	if pressed {
		return "PRESSED"
	}
	return "RELEASED"
}

// resolveWSBroker converts the --ws-broker flag value into a concrete URL.
// "=broker" derives ws://host:9001 from the TCP broker address; "off" disables.
func resolveWSBroker(ws, broker string) string {
	if ws == "off" {
		return ""
	}
	if ws != "=broker" {
		return ws
	}
	u, err := url.Parse(broker)
	if err != nil {
		log.Printf("ws-broker: cannot parse --broker %q: %v", broker, err)
		return ""
	}
	u.Scheme = "ws"
	u.Host = u.Hostname() + ":9001"
	return u.String()
}
