package booth

import (
	"errors"
	"fmt"
	"sync"
)

// eventLog records device calls in the order they happen, across devices.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(format string, args ...any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.events = append(l.events, fmt.Sprintf(format, args...))
	l.mu.Unlock()
}

func (l *eventLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

func (l *eventLog) index(event string) int {
	for i, e := range l.all() {
		if e == event {
			return i
		}
	}
	return -1
}

type fakeCamera struct {
	name string
	typ  CameraType
	log  *eventLog

	mu        sync.Mutex
	ready     bool
	captures  int
	shutdowns int
	handler   ResultHandler
}

func newCamera(name string, typ CameraType, ready bool, log *eventLog) *fakeCamera {
	return &fakeCamera{name: name, typ: typ, ready: ready, log: log}
}

func (c *fakeCamera) Name() string     { return c.name }
func (c *fakeCamera) Type() CameraType { return c.typ }

func (c *fakeCamera) IsReady() bool {
	c.log.add("ready?:%s", c.name)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

func (c *fakeCamera) Capture() {
	c.log.add("capture:%s", c.name)
	c.mu.Lock()
	c.captures++
	c.mu.Unlock()
}

func (c *fakeCamera) Shutdown() {
	c.log.add("shutdown:%s", c.name)
	c.mu.Lock()
	c.shutdowns++
	c.mu.Unlock()
}

func (c *fakeCamera) SetResultHandler(h ResultHandler) {
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
}

func (c *fakeCamera) captureCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.captures
}

func (c *fakeCamera) shutdownCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shutdowns
}

func (c *fakeCamera) resultHandler() ResultHandler {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handler
}

type fakeDisplay struct {
	name string
	log  *eventLog

	mu      sync.Mutex
	waiting int
	aborted int
	images  []Image
}

func newDisplay(name string, log *eventLog) *fakeDisplay {
	return &fakeDisplay{name: name, log: log}
}

func (d *fakeDisplay) Name() string { return d.name }

func (d *fakeDisplay) ShowWaiting() {
	d.log.add("wait:%s", d.name)
	d.mu.Lock()
	d.waiting++
	d.mu.Unlock()
}

func (d *fakeDisplay) DisplayImage(img Image) {
	d.log.add("image:%s", d.name)
	d.mu.Lock()
	d.images = append(d.images, img)
	d.mu.Unlock()
}

func (d *fakeDisplay) AbortWaiting() {
	d.log.add("abort:%s", d.name)
	d.mu.Lock()
	d.aborted++
	d.mu.Unlock()
}

func (d *fakeDisplay) counts() (waiting, images, aborted int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.waiting, len(d.images), d.aborted
}

var errArm = errors.New("arm failed")

type fakeTrigger struct {
	name      string
	log       *eventLog
	enableErr error

	mu       sync.Mutex
	handler  FireHandler
	enables  int
	disables int
}

func newTrigger(name string, log *eventLog) *fakeTrigger {
	return &fakeTrigger{name: name, log: log}
}

func (t *fakeTrigger) Name() string { return t.name }

func (t *fakeTrigger) Enable(h FireHandler) error {
	t.log.add("enable:%s", t.name)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enables++
	if t.enableErr != nil {
		return t.enableErr
	}
	t.handler = h
	return nil
}

func (t *fakeTrigger) Disable() {
	t.log.add("disable:%s", t.name)
	t.mu.Lock()
	t.disables++
	t.handler = nil
	t.mu.Unlock()
}

// fire simulates the hardware event.
func (t *fakeTrigger) fire() {
	t.mu.Lock()
	h := t.handler
	t.mu.Unlock()
	if h != nil {
		h.TakePhoto()
	}
}

func (t *fakeTrigger) counts() (enables, disables int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enables, t.disables
}
