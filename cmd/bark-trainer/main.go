// Command bark-trainer runs the quiet-training device: it learns the RF
// remote, schedules treat rewards for quiet stretches, and reacts to bark
// notifications from MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/bark-trainer/internal/config"
	"github.com/sweeney/bark-trainer/internal/gpio"
	"github.com/sweeney/bark-trainer/internal/logic"
	"github.com/sweeney/bark-trainer/internal/mqtt"
	"github.com/sweeney/bark-trainer/internal/rf"
	"github.com/sweeney/bark-trainer/internal/status"
	"github.com/sweeney/bark-trainer/internal/store"
	"github.com/sweeney/bark-trainer/internal/web"
)

func main() {
	configPath := flag.String("config", "/etc/bark-trainer/config.yaml", "YAML config path")
	poll := flag.Duration("poll", 20*time.Millisecond, "Main loop tick interval")
	heartbeat := flag.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	broker := flag.String("broker", "", "MQTT broker address (overrides config)")
	httpAddr := flag.String("http", "", "HTTP status address (overrides config, \"off\" disables)")
	storePath := flag.String("store", "", "Progress database path (overrides config)")
	printStatus := flag.Bool("print-status", false, "Print persisted progress and exit")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	if *broker != "" {
		cfg.Broker = *broker
	}
	if *httpAddr == "off" {
		cfg.HTTPAddr = ""
	} else if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}
	if *storePath != "" {
		cfg.StorePath = *storePath
	}

	if *printStatus {
		if err := printProgress(cfg.StorePath); err != nil {
			log.Fatalf("fatal: %v", err)
		}
		return
	}

	if err := run(cfg, *poll, *heartbeat); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func printProgress(path string) error {
	db, err := store.OpenSQLite(path)
	if err != nil {
		return err
	}
	defer db.Close()

	p, err := db.Load()
	if err != nil {
		return err
	}
	fmt.Printf("level: %d\nsuccesses: %d\npattern_cursor: %d\n", p.Level, p.Successes, p.PatternCursor)
	return nil
}

func run(cfg config.Config, poll, heartbeat time.Duration) error {
	// Progress store: fall back to memory so a bad SD card does not
	// stop training, it just forgets progress across restarts.
	var progress logic.ProgressStore
	db, err := store.OpenSQLite(cfg.StorePath)
	if err != nil {
		log.Printf("progress store unavailable, using in-memory fallback: %v", err)
		progress = &store.Memory{}
	} else {
		defer db.Close()
		progress = db
	}

	// Monotonic millisecond clock for all logic timing.
	start := time.Now()
	nowMs := func() logic.Millis {
		return logic.Millis(time.Since(start).Milliseconds())
	}

	receiver, err := rf.NewRealReceiver(cfg.Pins.Receiver, cfg.Remote.MaxPulses, nowMs)
	if err != nil {
		return fmt.Errorf("init rf receiver: %w", err)
	}
	defer receiver.Close()

	bank, err := gpio.NewBank()
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer bank.Close()

	feeder, err := bank.Actuator(cfg.Pins.Feeder)
	if err != nil {
		return fmt.Errorf("init feeder: %w", err)
	}
	valve, err := bank.Actuator(cfg.Pins.Valve)
	if err != nil {
		return fmt.Errorf("init valve: %w", err)
	}
	vibration, err := bank.Actuator(cfg.Pins.Vibration)
	if err != nil {
		return fmt.Errorf("init vibration: %w", err)
	}
	led, err := bank.Actuator(cfg.Pins.LED)
	if err != nil {
		return fmt.Errorf("init led: %w", err)
	}

	// Bark notifications arrive over MQTT; a full channel just drops
	// the notification, the violation window would throttle it anyway.
	violations := make(chan struct{}, 8)
	publisher := mqtt.NewRealPublisher(cfg.Broker)
	publisher.SubscribeBark(func() {
		select {
		case violations <- struct{}{}:
		default:
		}
	})
	defer publisher.Close()

	tracker := status.NewTracker(start, status.Config{
		PollMs:      poll.Milliseconds(),
		HeartbeatMs: heartbeat.Milliseconds(),
		Broker:      cfg.Broker,
		HTTPPort:    cfg.HTTPAddr,
		StorePath:   cfg.StorePath,
		Levels:      len(cfg.Schedule.Levels),
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
	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTPAddr)
	}

	log.Printf("started: poll=%v broker=%s heartbeat=%v levels=%d store=%s",
		poll, cfg.Broker, heartbeat, len(cfg.Schedule.Levels), cfg.StorePath)

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(loopDeps{
		receiver:   receiver,
		feeder:     feeder,
		valve:      valve,
		vibration:  vibration,
		led:        led,
		publisher:  publisher,
		mqttStatus: publisher,
		tracker:    tracker,
		store:      progress,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
		cfg:        cfg,
		heartbeat:  heartbeat,
		now:        nowMs,
		wallNow:    time.Now,
		tick:       ticker.C,
		sig:        sigCh,
		violations: violations,
	})
}

// loopDeps bundles everything runLoop touches, so tests can swap in
// fakes and drive the channels directly.
type loopDeps struct {
	receiver   rf.Receiver
	feeder     gpio.Actuator
	valve      gpio.Actuator
	vibration  gpio.Actuator
	led        gpio.Actuator
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	store      logic.ProgressStore
	rnd        logic.Rand
	cfg        config.Config
	heartbeat  time.Duration
	now        func() logic.Millis
	wallNow    func() time.Time
	tick       <-chan time.Time
	sig        <-chan os.Signal
	violations <-chan struct{}
}

const (
	drainBatch  = 8
	ledPulseLen = 200 * time.Millisecond
)

func runLoop(deps loopDeps) error {
	classifier := logic.NewClassifier(deps.cfg.ClassifierConfig())
	scheduler := logic.NewScheduler(deps.cfg.SchedulerConfig(), deps.cfg.Levels(), deps.store, deps.rnd, deps.now())
	window := logic.NewViolationWindow(logic.Millis(deps.cfg.Schedule.ViolationWindowMs))
	paused := false

	publishEvent := func(eventType mqtt.EventType, rewardMs logic.Millis) {
		event := mqtt.Event{
			Timestamp: deps.wallNow(),
			Type:      eventType,
			Level:     scheduler.CurrentLevel(),
			Successes: scheduler.SuccessesAtLevel(),
			RewardMs:  uint32(rewardMs),
		}
		if err := deps.publisher.Publish(event); err != nil {
			log.Printf("publish error: %v", err)
			// Don't crash on publish failure
		}
	}

	dispenseTreat := func(rewardMs logic.Millis) {
		if err := deps.feeder.Pulse(time.Duration(rewardMs) * time.Millisecond); err != nil {
			log.Printf("feeder error: %v", err)
		}
		if err := deps.led.Pulse(ledPulseLen); err != nil {
			log.Printf("led error: %v", err)
		}
	}

	handleGesture := func(g logic.Gesture, t logic.Millis) {
		if g == logic.GestureNone {
			return
		}
		deps.tracker.CountGesture(g)

		switch g {
		case logic.GestureSingle:
			// Manual treat at the current level's portion size.
			rewardMs := scheduler.CurrentRewardMs()
			log.Printf("gesture: SINGLE, dispensing %dms treat", rewardMs)
			publishEvent(mqtt.EventGestureSingle, rewardMs)
			dispenseTreat(rewardMs)
			deps.tracker.CountReward()

		case logic.GestureDouble:
			publishEvent(mqtt.EventGestureDouble, 0)
			paused = !paused
			if paused {
				log.Printf("gesture: DOUBLE, training paused")
				publishEvent(mqtt.EventPaused, 0)
			} else {
				log.Printf("gesture: DOUBLE, training resumed")
				publishEvent(mqtt.EventResumed, 0)
			}

		case logic.GestureTriple:
			log.Printf("gesture: TRIPLE, resetting schedule to level 0")
			scheduler.ResetState(t)
			publishEvent(mqtt.EventGestureTriple, 0)
		}
	}

	updateTracker := func() {
		sig := classifier.SignatureSnapshot()
		deps.tracker.Update(
			status.SignatureInfo{
				Learned:   classifier.IsLearned(),
				MinPulses: sig.MinPulses,
				MaxPulses: sig.MaxPulses,
				AvgPulses: sig.AvgPulses,
				Samples:   sig.Samples,
			},
			status.ScheduleInfo{
				Level:         scheduler.CurrentLevel(),
				Successes:     scheduler.SuccessesAtLevel(),
				QuietTargetMs: uint32(scheduler.CurrentQuietTargetMs()),
				PatternCursor: scheduler.PatternCursor(),
				Paused:        paused,
			},
		)
		if deps.mqttStatus != nil {
			deps.tracker.SetMQTTConnected(deps.mqttStatus.IsConnected())
		}
	}

	lastHeartbeat := deps.wallNow()
	updateTracker()

	for {
		select {
		case s := <-deps.sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			updateTracker()
			snap := deps.tracker.Snapshot()
			event := mqtt.SystemEvent{
				Timestamp:  deps.wallNow(),
				Event:      "SHUTDOWN",
				Reason:     signalName,
				Retained:   true,
				RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", signalName),
			}
			if err := deps.publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-deps.violations:
			t := deps.now()
			if paused {
				log.Printf("bark detected while paused, ignoring")
				continue
			}
			if !window.ShouldTrigger(t) {
				continue
			}
			deps.tracker.CountViolation()
			levelBefore := scheduler.CurrentLevel()
			scheduler.OnViolation(t)
			log.Printf("violation: level %d -> %d, quiet timer reset", levelBefore, scheduler.CurrentLevel())
			publishEvent(mqtt.EventViolation, 0)
			if scheduler.CurrentLevel() < levelBefore {
				publishEvent(mqtt.EventLevelDown, 0)
			}
			if err := deps.valve.Pulse(time.Duration(deps.cfg.Punish.ValveMs) * time.Millisecond); err != nil {
				log.Printf("valve error: %v", err)
			}
			if err := deps.vibration.Pulse(time.Duration(deps.cfg.Punish.VibrationMs) * time.Millisecond); err != nil {
				log.Printf("vibration error: %v", err)
			}
			updateTracker()

		case <-deps.tick:
			t := deps.now()

			if burst, ok := rf.DrainLatest(deps.receiver, drainBatch, deps.cfg.Remote.MinPulses, deps.cfg.Remote.MaxPulses); ok {
				handleGesture(classifier.Ingest(burst.Pulses, burst.At), t)
			}
			handleGesture(classifier.Update(t), t)

			if !paused {
				levelBefore := scheduler.CurrentLevel()
				if scheduler.Tick(t) {
					rewardMs := scheduler.ConsumePendingRewardMs()
					log.Printf("reward: %dms treat (level %d, successes %d)",
						rewardMs, scheduler.CurrentLevel(), scheduler.SuccessesAtLevel())
					deps.tracker.CountReward()
					publishEvent(mqtt.EventReward, rewardMs)
					dispenseTreat(rewardMs)
				}
				if scheduler.CurrentLevel() > levelBefore {
					log.Printf("advanced to level %d", scheduler.CurrentLevel())
					publishEvent(mqtt.EventLevelUp, 0)
				}
			}

			// Heartbeat runs on the wall clock
			if deps.heartbeat > 0 {
				wall := deps.wallNow()
				if wall.Sub(lastHeartbeat) >= deps.heartbeat {
					lastHeartbeat = wall
					if net := readNetworkInfo(); net != nil {
						deps.tracker.SetNetwork(net)
					}
					updateTracker()
					snap := deps.tracker.Snapshot()
					hbEvent := mqtt.SystemEvent{
						Timestamp:  wall,
						Event:      "HEARTBEAT",
						RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
					}
					if err := deps.publisher.PublishSystem(hbEvent); err != nil {
						log.Printf("heartbeat publish error: %v", err)
					}
				}
			}

			updateTracker()
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
