package booth

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/cjeanneret/photobooth/internal/debug"
)

// BringUpFunc registers the devices of a session. It runs once per
// transition to running, with the orchestrator it should register into.
// It must not call Start or Stop.
type BringUpFunc func(o *Orchestrator) error

// cameraEntry is a registered camera with the type it had when added.
type cameraEntry struct {
	cam Camera
	typ CameraType
}

// Orchestrator owns the device registries and coordinates a capture:
// triggers call TakePhoto, cameras report through ImageReady and
// CaptureFailed, displays receive the fan-out.
//
// Lifecycle: stopped -> running (Start) -> stopped (Stop) -> running ...
// Start and Stop are serialized and idempotent.
//
// Registry operations and callbacks are safe for concurrent use. Devices are
// always called without any orchestrator lock held, so a device may call
// back into the orchestrator from inside Capture, Enable or Shutdown.
type Orchestrator struct {
	bringUp BringUpFunc

	lifecycleMu sync.Mutex
	running     bool

	mu       sync.RWMutex
	cameras  []cameraEntry // sorted by type, stable by registration order
	displays []Display
	triggers []Trigger
}

// NewOrchestrator creates a stopped orchestrator. bringUp may be nil.
func NewOrchestrator(bringUp BringUpFunc) *Orchestrator {
	return &Orchestrator{bringUp: bringUp}
}

// Start transitions to running and performs bring-up exactly once.
// Calling Start while running does nothing. If bring-up fails, whatever it
// registered is torn down, the orchestrator stays stopped and the error is
// returned.
func (o *Orchestrator) Start() error {
	o.lifecycleMu.Lock()
	defer o.lifecycleMu.Unlock()

	if o.running {
		return nil
	}
	o.running = true
	debug.Info("Starting photobooth")

	if o.bringUp == nil {
		return nil
	}
	if err := o.bringUp(o); err != nil {
		o.teardown()
		o.running = false
		return fmt.Errorf("bring-up: %w", err)
	}
	return nil
}

// Stop transitions to stopped: every trigger is disabled, then every camera
// is shut down, and the trigger, camera and display registries are cleared
// in that order. Calling Stop while stopped does nothing.
func (o *Orchestrator) Stop() {
	o.lifecycleMu.Lock()
	defer o.lifecycleMu.Unlock()

	if !o.running {
		return
	}
	o.running = false
	debug.Info("Stopping photobooth")
	o.teardown()
}

// teardown detaches each registry before calling into its devices, so a
// device registered concurrently is either torn down here or left registered.
// Triggers go first: nothing may fire while cameras shut down.
func (o *Orchestrator) teardown() {
	o.mu.Lock()
	triggers := o.triggers
	o.triggers = nil
	o.mu.Unlock()
	for _, t := range triggers {
		t.Disable()
	}

	o.mu.Lock()
	cameras := o.cameras
	o.cameras = nil
	o.mu.Unlock()
	for _, e := range cameras {
		e.cam.Shutdown()
	}

	o.mu.Lock()
	o.displays = nil
	o.mu.Unlock()

	debug.Verbose("Teardown: %d trigger(s) disabled, %d camera(s) shut down", len(triggers), len(cameras))
}

// Running reports whether the orchestrator is started.
func (o *Orchestrator) Running() bool {
	o.lifecycleMu.Lock()
	defer o.lifecycleMu.Unlock()
	return o.running
}

// AddCamera registers c in its sorted position and makes the orchestrator
// its result handler. Adding a camera twice is a no-op.
func (o *Orchestrator) AddCamera(c Camera) error {
	if isNil(c) {
		return fmt.Errorf("%w: camera must not be nil", ErrInvalidArgument)
	}

	o.mu.Lock()
	if o.cameraIndex(c) >= 0 {
		o.mu.Unlock()
		return nil
	}
	o.cameras = append(o.cameras, cameraEntry{cam: c, typ: c.Type()})
	slices.SortStableFunc(o.cameras, func(a, b cameraEntry) int {
		return compareCameraTypes(a.typ, b.typ)
	})
	o.mu.Unlock()

	c.SetResultHandler(o)
	debug.Info("Camera added: %s (%s)", NameOf(c), c.Type())
	return nil
}

// RemoveCamera unregisters c. Removing an unknown camera is a no-op.
func (o *Orchestrator) RemoveCamera(c Camera) error {
	if isNil(c) {
		return fmt.Errorf("%w: camera must not be nil", ErrInvalidArgument)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if i := o.cameraIndex(c); i >= 0 {
		o.cameras = slices.Delete(o.cameras, i, i+1)
		debug.Info("Camera removed: %s", NameOf(c))
	}
	return nil
}

func (o *Orchestrator) cameraIndex(c Camera) int {
	return slices.IndexFunc(o.cameras, func(e cameraEntry) bool { return e.cam == c })
}

// AddDisplay registers d. Adding a display twice is a no-op.
func (o *Orchestrator) AddDisplay(d Display) error {
	if isNil(d) {
		return fmt.Errorf("%w: display must not be nil", ErrInvalidArgument)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if !slices.Contains(o.displays, d) {
		o.displays = append(o.displays, d)
		debug.Info("Display added: %s", NameOf(d))
	}
	return nil
}

// RemoveDisplay unregisters d. Removing an unknown display is a no-op.
func (o *Orchestrator) RemoveDisplay(d Display) error {
	if isNil(d) {
		return fmt.Errorf("%w: display must not be nil", ErrInvalidArgument)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if i := slices.Index(o.displays, d); i >= 0 {
		o.displays = slices.Delete(o.displays, i, i+1)
		debug.Info("Display removed: %s", NameOf(d))
	}
	return nil
}

// AddTrigger registers t and arms it with the orchestrator as fire handler.
// If arming fails the trigger is unregistered again and the error returned.
// Adding a trigger twice is a no-op.
func (o *Orchestrator) AddTrigger(t Trigger) error {
	if isNil(t) {
		return fmt.Errorf("%w: trigger must not be nil", ErrInvalidArgument)
	}

	o.mu.Lock()
	if slices.Contains(o.triggers, t) {
		o.mu.Unlock()
		return nil
	}
	o.triggers = append(o.triggers, t)
	o.mu.Unlock()

	if err := t.Enable(o); err != nil {
		o.mu.Lock()
		if i := slices.Index(o.triggers, t); i >= 0 {
			o.triggers = slices.Delete(o.triggers, i, i+1)
		}
		o.mu.Unlock()
		return fmt.Errorf("enable trigger %s: %w", NameOf(t), err)
	}
	debug.Info("Trigger added: %s", NameOf(t))
	return nil
}

// RemoveTrigger disarms t and unregisters it. t is disabled even when it was
// never registered.
func (o *Orchestrator) RemoveTrigger(t Trigger) error {
	if isNil(t) {
		return fmt.Errorf("%w: trigger must not be nil", ErrInvalidArgument)
	}

	t.Disable()

	o.mu.Lock()
	defer o.mu.Unlock()
	if i := slices.Index(o.triggers, t); i >= 0 {
		o.triggers = slices.Delete(o.triggers, i, i+1)
		debug.Info("Trigger removed: %s", NameOf(t))
	}
	return nil
}

// Cameras returns the registered cameras in dispatch order.
func (o *Orchestrator) Cameras() []Camera {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]Camera, len(o.cameras))
	for i, e := range o.cameras {
		out[i] = e.cam
	}
	return out
}

// Displays returns the registered displays.
func (o *Orchestrator) Displays() []Display {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return slices.Clone(o.displays)
}

// Triggers returns the registered triggers.
func (o *Orchestrator) Triggers() []Trigger {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return slices.Clone(o.triggers)
}

// isNil reports whether v is a nil interface or an interface holding a nil
// pointer, map, slice, func or channel.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
