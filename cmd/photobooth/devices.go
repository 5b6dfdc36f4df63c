package main

import (
	"fmt"

	"github.com/cjeanneret/photobooth/internal/booth"
	"github.com/cjeanneret/photobooth/internal/config"
	"github.com/cjeanneret/photobooth/internal/debug"
	"github.com/cjeanneret/photobooth/internal/display"
	"github.com/cjeanneret/photobooth/internal/hw/camera"
	"github.com/cjeanneret/photobooth/internal/hw/gpio"
	"github.com/cjeanneret/photobooth/internal/hw/trigger"
	"github.com/cjeanneret/photobooth/internal/mqtt"
	"github.com/cjeanneret/photobooth/internal/web"
)

// devices holds the shared resources device constructors draw on.
// bus is nil without an mqtt section; the web devices are nil unless
// configured, and outlive a Stop so the HTTP surface keeps its handles.
type devices struct {
	gpio       gpio.Driver
	bus        mqtt.Messenger
	webTrigger *web.Trigger
	webDisplay *web.Display
}

// webDevices creates the single web trigger and web display, if configured.
func webDevices(cfg *config.Config, b *web.StatusBroadcaster) (*web.Trigger, *web.Display) {
	var trig *web.Trigger
	var disp *web.Display
	for _, t := range cfg.Triggers {
		if t.Type == config.TriggerWeb {
			trig = web.NewTrigger(t.Name)
		}
	}
	for _, d := range cfg.Displays {
		if d.Type == config.DisplayWeb {
			disp = web.NewDisplay(d.Name, b)
		}
	}
	return trig, disp
}

// newBringUp returns the orchestrator bring-up: every configured device is
// built and registered on each Start, so Stop then Start rebuilds the booth.
func newBringUp(cfg *config.Config, d devices) booth.BringUpFunc {
	return func(o *booth.Orchestrator) error {
		debug.Section("Bring-up")
		for _, cc := range cfg.Cameras {
			cam, err := d.newCamera(cc)
			if err != nil {
				return err
			}
			if err := o.AddCamera(cam); err != nil {
				cam.Shutdown()
				return fmt.Errorf("register camera %s: %w", cc.Name, err)
			}
			debug.Info("Camera %s registered (%s, %s)", cc.Name, cc.Type, cam.Type())
		}
		for _, dc := range cfg.Displays {
			disp, err := d.newDisplay(dc)
			if err != nil {
				return err
			}
			if err := o.AddDisplay(disp); err != nil {
				return fmt.Errorf("register display %s: %w", dc.Name, err)
			}
			debug.Info("Display %s registered (%s)", dc.Name, dc.Type)
		}
		for _, tc := range cfg.Triggers {
			trig, err := d.newTrigger(tc)
			if err != nil {
				return err
			}
			if err := o.AddTrigger(trig); err != nil {
				return fmt.Errorf("register trigger %s: %w", tc.Name, err)
			}
			debug.Info("Trigger %s registered (%s)", tc.Name, tc.Type)
		}
		return nil
	}
}

func (d devices) newCamera(cc config.CameraConfig) (booth.Camera, error) {
	typ, err := booth.ParseCameraType(cc.Role)
	if err != nil {
		return nil, fmt.Errorf("camera %s: %w", cc.Name, err)
	}
	switch cc.Type {
	case config.CameraNikonD90GPIO:
		cam, err := camera.NewNikonD90GPIO(cc.Name, typ, d.gpio, camera.NikonConfig{
			FocusPin:     cc.FocusPin,
			ShutterPin:   cc.ShutterPin,
			ReadyPin:     cc.ReadyPin,
			FocusDelay:   cc.FocusDelay(),
			ShutterDelay: cc.ShutterDelay(),
			Recovery:     cc.Recovery(),
		})
		if err != nil {
			return nil, err
		}
		return cam, nil
	case config.CameraMock:
		return camera.NewMock(cc.Name, typ, cc.Latency(), cc.Fail), nil
	case config.CameraMQTT:
		if d.bus == nil {
			return nil, fmt.Errorf("camera %s: %w", cc.Name, mqtt.ErrNotConnected)
		}
		cam, err := mqtt.NewCamera(cc.Name, typ, d.bus, cc.Topic, cc.Timeout())
		if err != nil {
			return nil, err
		}
		return cam, nil
	default:
		return nil, fmt.Errorf("unsupported camera type: %s", cc.Type)
	}
}

func (d devices) newDisplay(dc config.DisplayConfig) (booth.Display, error) {
	switch dc.Type {
	case config.DisplayLog:
		return display.NewLog(dc.Name), nil
	case config.DisplayWeb:
		if d.webDisplay == nil {
			return nil, fmt.Errorf("display %s: web display not initialized", dc.Name)
		}
		return d.webDisplay, nil
	case config.DisplayMQTT:
		if d.bus == nil {
			return nil, fmt.Errorf("display %s: %w", dc.Name, mqtt.ErrNotConnected)
		}
		return mqtt.NewDisplay(dc.Name, dc.Topic, d.bus), nil
	default:
		return nil, fmt.Errorf("unsupported display type: %s", dc.Type)
	}
}

func (d devices) newTrigger(tc config.TriggerConfig) (booth.Trigger, error) {
	switch tc.Type {
	case config.TriggerGPIOButton:
		return trigger.NewButton(tc.Name, d.gpio, trigger.ButtonConfig{
			Pin:          tc.Pin,
			ActiveLow:    tc.IsActiveLow(),
			PollInterval: tc.PollInterval(),
			Debounce:     tc.Debounce(),
		}), nil
	case config.TriggerWeb:
		if d.webTrigger == nil {
			return nil, fmt.Errorf("trigger %s: web trigger not initialized", tc.Name)
		}
		return d.webTrigger, nil
	case config.TriggerMQTT:
		if d.bus == nil {
			return nil, fmt.Errorf("trigger %s: %w", tc.Name, mqtt.ErrNotConnected)
		}
		return mqtt.NewTrigger(tc.Name, tc.Topic, d.bus), nil
	default:
		return nil, fmt.Errorf("unsupported trigger type: %s", tc.Type)
	}
}
