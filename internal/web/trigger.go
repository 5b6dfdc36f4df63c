package web

import (
	"errors"
	"sync"

	"github.com/cjeanneret/photobooth/internal/booth"
	"github.com/cjeanneret/photobooth/internal/debug"
)

var (
	// ErrDisarmed is returned by Fire while the trigger is not enabled.
	ErrDisarmed = errors.New("web: trigger disarmed")
	// ErrAlreadyEnabled is returned by Enable on an armed trigger.
	ErrAlreadyEnabled = errors.New("web: trigger already enabled")
)

// Trigger is the on-screen button of the status page. POST /trigger fires it.
type Trigger struct {
	name string

	mu      sync.Mutex
	handler booth.FireHandler
}

// NewTrigger creates a disarmed web trigger.
func NewTrigger(name string) *Trigger {
	return &Trigger{name: name}
}

func (t *Trigger) Name() string { return t.name }

func (t *Trigger) Enable(h booth.FireHandler) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.handler != nil {
		return ErrAlreadyEnabled
	}
	t.handler = h
	debug.Verbose("Web trigger %s: armed", t.name)
	return nil
}

func (t *Trigger) Disable() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.handler != nil {
		debug.Verbose("Web trigger %s: disarmed", t.name)
	}
	t.handler = nil
}

// Armed reports whether Fire would reach the booth.
func (t *Trigger) Armed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.handler != nil
}

// Fire takes a photo if the trigger is armed.
func (t *Trigger) Fire() error {
	t.mu.Lock()
	h := t.handler
	t.mu.Unlock()
	if h == nil {
		return ErrDisarmed
	}
	debug.Live("Web trigger %s fired", t.name)
	h.TakePhoto()
	return nil
}
