package mqtt

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cjeanneret/photobooth/internal/booth"
	"github.com/cjeanneret/photobooth/internal/debug"
)

// CaptureRequest is published on <base>/capture.
type CaptureRequest struct {
	RequestID string `json:"request_id"`
	Camera    string `json:"camera"`
}

// CaptureResult is expected on <base>/result.
type CaptureResult struct {
	RequestID string `json:"request_id"`
	OK        bool   `json:"ok"`
	Path      string `json:"path,omitempty"`
	URL       string `json:"url,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Camera is a network camera (phone, second Pi, tethering box) driven over
// MQTT. One capture may be pending at a time; the camera is ready while
// the broker is reachable and nothing is pending.
type Camera struct {
	name    string
	typ     booth.CameraType
	base    string
	timeout time.Duration
	conn    Messenger

	mu      sync.Mutex
	handler booth.ResultHandler
	pending string // request ID, "" when idle
	timer   *time.Timer
	closed  bool
}

// NewCamera creates a network camera and subscribes to its result topic.
func NewCamera(name string, typ booth.CameraType, conn Messenger, base string, timeout time.Duration) (*Camera, error) {
	c := &Camera{
		name:    name,
		typ:     typ,
		base:    base,
		timeout: timeout,
		conn:    conn,
	}
	if err := conn.Subscribe(ResultTopic(base), c.handleResult); err != nil {
		return nil, fmt.Errorf("camera %s: subscribe results: %w", name, err)
	}
	return c, nil
}

func (c *Camera) Name() string { return c.name }

func (c *Camera) Type() booth.CameraType { return c.typ }

func (c *Camera) SetResultHandler(h booth.ResultHandler) {
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
}

func (c *Camera) IsReady() bool {
	c.mu.Lock()
	idle := !c.closed && c.pending == ""
	c.mu.Unlock()
	return idle && c.conn.IsConnected()
}

// Capture publishes a capture request. The outcome is reported later
// through the result handler: on reply, on timeout, or on publish failure.
func (c *Camera) Capture() {
	c.mu.Lock()
	var err error
	switch {
	case c.closed:
		err = ErrCameraShutdown
	case c.pending != "":
		err = ErrCameraBusy
	}
	if err != nil {
		c.mu.Unlock()
		c.report(booth.Image{}, fmt.Errorf("camera %s: %w", c.name, err))
		return
	}
	id := uuid.NewString()
	c.pending = id
	if c.timeout > 0 {
		c.timer = time.AfterFunc(c.timeout, func() {
			c.finish(id, booth.Image{}, fmt.Errorf("camera %s: %w after %v", c.name, ErrCaptureTimeout, c.timeout))
		})
	}
	c.mu.Unlock()

	payload, _ := json.Marshal(CaptureRequest{RequestID: id, Camera: c.name})
	if err := c.conn.Publish(CaptureTopic(c.base), payload, false); err != nil {
		c.finish(id, booth.Image{}, fmt.Errorf("camera %s: request capture: %w", c.name, err))
		return
	}
	debug.Verbose("Camera %s: capture %s requested", c.name, id)
}

func (c *Camera) handleResult(_ string, payload []byte) error {
	var res CaptureResult
	if err := json.Unmarshal(payload, &res); err != nil {
		return fmt.Errorf("camera %s: decode result: %w", c.name, err)
	}

	if !res.OK {
		reason := res.Error
		if reason == "" {
			reason = "no reason given"
		}
		c.finish(res.RequestID, booth.Image{}, fmt.Errorf("camera %s: %w: %s", c.name, ErrCaptureRejected, reason))
		return nil
	}
	c.finish(res.RequestID, booth.Image{
		ID:      res.RequestID,
		Camera:  c.name,
		TakenAt: time.Now(),
		Path:    res.Path,
		URL:     res.URL,
	}, nil)
	return nil
}

// finish completes the pending capture id. Late or unknown replies are ignored.
func (c *Camera) finish(id string, img booth.Image, err error) {
	c.mu.Lock()
	if id == "" || c.pending != id {
		c.mu.Unlock()
		debug.Trace("Camera %s: ignoring result for %q", c.name, id)
		return
	}
	c.pending = ""
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()

	if err == nil {
		debug.Live("Camera %s: photo %s received", c.name, img.ID)
	}
	c.report(img, err)
}

func (c *Camera) report(img booth.Image, err error) {
	c.mu.Lock()
	h := c.handler
	c.mu.Unlock()
	if h == nil {
		debug.Verbose("Camera %s: no result handler, dropping result", c.name)
		return
	}
	if err != nil {
		h.CaptureFailed(err)
		return
	}
	h.ImageReady(img)
}

// Shutdown stops listening for results. A capture still pending is
// reported as failed.
func (c *Camera) Shutdown() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	pending := c.pending
	c.mu.Unlock()

	if pending != "" {
		c.finish(pending, booth.Image{}, fmt.Errorf("camera %s: %w", c.name, ErrCameraShutdown))
	}
	if err := c.conn.Unsubscribe(ResultTopic(c.base)); err != nil {
		debug.Warn("Camera %s: unsubscribe results: %v", c.name, err)
	}
	debug.Info("Camera %s: shut down", c.name)
}
