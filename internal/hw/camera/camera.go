package camera

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cjeanneret/photobooth/internal/booth"
	"github.com/cjeanneret/photobooth/internal/debug"
)

var (
	// ErrBusy is reported when Capture is called while a shot is in progress.
	ErrBusy = errors.New("camera: busy")
	// ErrShutdown is reported when Capture is called after Shutdown.
	ErrShutdown = errors.New("camera: shut down")
)

// device holds what every camera implementation shares: identity, the
// result handler and the busy/closed state readiness is derived from.
// Each capture runs on its own goroutine; Shutdown waits for it.
type device struct {
	name string
	typ  booth.CameraType

	mu      sync.Mutex
	handler booth.ResultHandler
	busy    bool
	closed  bool
	done    chan struct{}
	wg      sync.WaitGroup
}

func newDevice(name string, typ booth.CameraType) *device {
	return &device{name: name, typ: typ, done: make(chan struct{})}
}

func (d *device) Name() string { return d.name }

func (d *device) Type() booth.CameraType { return d.typ }

func (d *device) SetResultHandler(h booth.ResultHandler) {
	d.mu.Lock()
	d.handler = h
	d.mu.Unlock()
}

// idle reports whether no shot is in progress and the camera is open.
func (d *device) idle() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.busy && !d.closed
}

// start claims the camera for one capture and runs fn on a new goroutine.
// If the camera is busy or closed the failure is reported instead.
func (d *device) start(fn func()) {
	d.mu.Lock()
	var err error
	switch {
	case d.closed:
		err = ErrShutdown
	case d.busy:
		err = ErrBusy
	default:
		d.busy = true
		d.wg.Add(1)
	}
	d.mu.Unlock()

	if err != nil {
		d.report(booth.Image{}, err)
		return
	}

	go func() {
		defer d.wg.Done()
		defer func() {
			d.mu.Lock()
			d.busy = false
			d.mu.Unlock()
		}()
		fn()
	}()
}

// sleep waits for dur, returning false early if the camera is shut down.
func (d *device) sleep(dur time.Duration) bool {
	if dur <= 0 {
		return true
	}
	t := time.NewTimer(dur)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-d.done:
		return false
	}
}

// report delivers a result to the registered handler, if any.
func (d *device) report(img booth.Image, err error) {
	d.mu.Lock()
	h := d.handler
	d.mu.Unlock()
	if h == nil {
		debug.Verbose("Camera %s: no result handler, dropping result", d.name)
		return
	}
	if err != nil {
		h.CaptureFailed(err)
		return
	}
	h.ImageReady(img)
}

// newImage describes a photo taken by this camera now.
func (d *device) newImage() booth.Image {
	return booth.Image{
		ID:      uuid.NewString(),
		Camera:  d.name,
		TakenAt: time.Now(),
	}
}

// close marks the camera closed, interrupts a running capture and waits
// for it. It returns false if the camera was already closed.
func (d *device) close() bool {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return false
	}
	d.closed = true
	close(d.done)
	d.mu.Unlock()

	d.wg.Wait()
	return true
}
