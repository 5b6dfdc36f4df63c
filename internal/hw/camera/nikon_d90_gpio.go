package camera

import (
	"fmt"
	"time"

	"github.com/cjeanneret/photobooth/internal/booth"
	"github.com/cjeanneret/photobooth/internal/debug"
	"github.com/cjeanneret/photobooth/internal/hw/gpio"
)

// NikonD90GPIO is a booth camera for a Nikon D90
// controlled via the 3-pin remote connector:
// - GND: connected to Raspberry Pi ground
// - FOCUS: autofocus (activate by setting to LOW)
// - SHUTTER: trigger (activate by setting to LOW)
//
// Trigger sequence:
// 1. FOCUS to LOW (activates autofocus)
// 2. Wait for autofocus to complete
// 3. SHUTTER to LOW (triggers the shot)
// 4. Hold for a moment
// 5. Set SHUTTER and FOCUS back to HIGH
//
// The photo stays on the camera's card; the reported Image only identifies
// the shot. After a shot the camera is busy for the recovery time (card write).
type NikonD90GPIO struct {
	*device

	gpio         gpio.Driver
	focusPin     int
	shutterPin   int
	readyPin     int           // optional input, HIGH = camera on. 0 = not used.
	focusDelay   time.Duration // time for autofocus
	shutterDelay time.Duration // shutter hold time
	recovery     time.Duration // busy time after the shot
}

// NikonConfig holds the wiring and timing of a NikonD90GPIO.
type NikonConfig struct {
	FocusPin     int
	ShutterPin   int
	ReadyPin     int
	FocusDelay   time.Duration
	ShutterDelay time.Duration
	Recovery     time.Duration
}

// NewNikonD90GPIO creates a GPIO-controlled Nikon D90 and drives both
// remote lines to their inactive level.
func NewNikonD90GPIO(name string, typ booth.CameraType, g gpio.Driver, cfg NikonConfig) (*NikonD90GPIO, error) {
	// Configure pins as outputs
	for _, p := range []int{cfg.FocusPin, cfg.ShutterPin} {
		if err := g.SetupPin(p, gpio.Output); err != nil {
			return nil, fmt.Errorf("camera %s: setup pin %d: %w", name, p, err)
		}
	}
	if cfg.ReadyPin > 0 {
		if err := g.SetupPin(cfg.ReadyPin, gpio.Input); err != nil {
			return nil, fmt.Errorf("camera %s: setup ready pin %d: %w", name, cfg.ReadyPin, err)
		}
	}

	// By default, lines are HIGH (inactive)
	for _, p := range []int{cfg.FocusPin, cfg.ShutterPin} {
		if err := g.WritePin(p, gpio.High); err != nil {
			return nil, fmt.Errorf("camera %s: release pin %d: %w", name, p, err)
		}
	}

	return &NikonD90GPIO{
		device:       newDevice(name, typ),
		gpio:         g,
		focusPin:     cfg.FocusPin,
		shutterPin:   cfg.ShutterPin,
		readyPin:     cfg.ReadyPin,
		focusDelay:   cfg.FocusDelay,
		shutterDelay: cfg.ShutterDelay,
		recovery:     cfg.Recovery,
	}, nil
}

// IsReady reports whether the camera is idle and, when a ready pin is
// wired, powered on.
func (n *NikonD90GPIO) IsReady() bool {
	if !n.idle() {
		return false
	}
	if n.readyPin <= 0 {
		return true
	}
	lvl, err := n.gpio.ReadPin(n.readyPin)
	if err != nil {
		debug.Error(fmt.Errorf("camera %s: read ready pin: %w", n.name, err))
		return false
	}
	return lvl == gpio.High
}

// Capture starts the shutter sequence on its own goroutine and returns.
func (n *NikonD90GPIO) Capture() {
	n.start(func() {
		img := n.newImage()
		if err := n.shoot(); err != nil {
			n.report(booth.Image{}, fmt.Errorf("camera %s: %w", n.name, err))
			return
		}
		debug.Live("Camera %s: shot triggered", n.name)
		n.report(img, nil)
		n.sleep(n.recovery)
	})
}

// Shutdown waits for a running shot and releases both lines.
func (n *NikonD90GPIO) Shutdown() {
	if !n.close() {
		return
	}
	_ = n.gpio.WritePin(n.shutterPin, gpio.High)
	_ = n.gpio.WritePin(n.focusPin, gpio.High)
	debug.Info("Camera %s: shut down", n.name)
}

// shoot runs the remote sequence: FOCUS -> wait for AF -> SHUTTER -> hold -> release.
func (n *NikonD90GPIO) shoot() error {
	debug.Printf("Camera: triggering shot (focus=%d, shutter=%d)", n.focusPin, n.shutterPin)

	// 1. Activate FOCUS (autofocus)
	if err := n.gpio.WritePin(n.focusPin, gpio.Low); err != nil {
		return err
	}

	// 2. Wait for autofocus to complete
	if !n.sleep(n.focusDelay) {
		_ = n.gpio.WritePin(n.focusPin, gpio.High)
		return ErrShutdown
	}

	// 3. Activate SHUTTER (trigger)
	if err := n.gpio.WritePin(n.shutterPin, gpio.Low); err != nil {
		// Release FOCUS on error
		_ = n.gpio.WritePin(n.focusPin, gpio.High)
		return err
	}

	// 4. Hold shutter. The shot is already taken if shutdown interrupts here.
	n.sleep(n.shutterDelay)

	// 5. Release SHUTTER then FOCUS
	if err := n.gpio.WritePin(n.shutterPin, gpio.High); err != nil {
		return err
	}
	return n.gpio.WritePin(n.focusPin, gpio.High)
}
