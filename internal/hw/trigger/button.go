package trigger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cjeanneret/photobooth/internal/booth"
	"github.com/cjeanneret/photobooth/internal/debug"
	"github.com/cjeanneret/photobooth/internal/hw/gpio"
)

// ErrAlreadyEnabled is returned by Enable on an armed trigger.
var ErrAlreadyEnabled = errors.New("trigger: already enabled")

// ButtonConfig holds the wiring and timing of a push button.
type ButtonConfig struct {
	Pin          int
	ActiveLow    bool          // pressed = LOW: button to GND, internal pull-up
	PollInterval time.Duration // sampling period. 0 = 10ms
	Debounce     time.Duration // minimum time between two presses
}

// Button is a physical push button on a GPIO input.
// The pin is sampled every PollInterval; a press fires once on the
// released -> pressed edge, and presses closer than Debounce are ignored.
type Button struct {
	name string
	gpio gpio.Driver
	cfg  ButtonConfig

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewButton creates a disarmed button trigger.
func NewButton(name string, g gpio.Driver, cfg ButtonConfig) *Button {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 10 * time.Millisecond
	}
	return &Button{name: name, gpio: g, cfg: cfg}
}

func (b *Button) Name() string { return b.name }

// Enable configures the input and starts watching it.
func (b *Button) Enable(h booth.FireHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stop != nil {
		return ErrAlreadyEnabled
	}

	mode := gpio.Input
	if b.cfg.ActiveLow {
		mode = gpio.InputPullUp
	}
	if err := b.gpio.SetupPin(b.cfg.Pin, mode); err != nil {
		return fmt.Errorf("setup button pin %d: %w", b.cfg.Pin, err)
	}
	// A button held down while arming does not fire until released.
	held, err := b.pressed()
	if err != nil {
		return fmt.Errorf("read button pin %d: %w", b.cfg.Pin, err)
	}

	b.stop = make(chan struct{})
	b.done = make(chan struct{})
	go b.watch(h, held, b.stop, b.done)

	debug.Verbose("Button %s: armed on pin %d (active low=%v)", b.name, b.cfg.Pin, b.cfg.ActiveLow)
	return nil
}

// Disable stops watching the pin and waits for the watcher to exit.
func (b *Button) Disable() {
	b.mu.Lock()
	stop, done := b.stop, b.done
	b.stop, b.done = nil, nil
	b.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
	debug.Verbose("Button %s: disarmed", b.name)
}

func (b *Button) pressed() (bool, error) {
	lvl, err := b.gpio.ReadPin(b.cfg.Pin)
	if err != nil {
		return false, err
	}
	if b.cfg.ActiveLow {
		return lvl == gpio.Low, nil
	}
	return lvl == gpio.High, nil
}

// watch polls the pin until stop is closed. was is the level sampled by Enable.
func (b *Button) watch(h booth.FireHandler, was bool, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(b.cfg.PollInterval)
	defer ticker.Stop()

	var last time.Time

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		is, err := b.pressed()
		if err != nil {
			debug.Error(fmt.Errorf("button %s: read pin %d: %w", b.name, b.cfg.Pin, err))
			continue
		}
		if is && !was {
			now := time.Now()
			if last.IsZero() || now.Sub(last) >= b.cfg.Debounce {
				last = now
				debug.Live("Button %s pressed", b.name)
				h.TakePhoto()
			} else {
				debug.Trace("Button %s: bounce ignored", b.name)
			}
		}
		was = is
	}
}
