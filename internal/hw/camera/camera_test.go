package camera

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cjeanneret/photobooth/internal/booth"
	"github.com/cjeanneret/photobooth/internal/hw/gpio"
)

// recordingDriver records GPIO calls for verification.
type recordingDriver struct {
	mu       sync.Mutex
	calls    []gpioCall
	inputs   map[int]gpio.Level
	setupErr map[int]error // per-pin SetupPin failures
}

type gpioCall struct {
	op    string
	pin   int
	level gpio.Level
}

func (d *recordingDriver) SetupPin(pin int, mode gpio.PinMode) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, gpioCall{op: "setup", pin: pin})
	return d.setupErr[pin]
}

func (d *recordingDriver) WritePin(pin int, level gpio.Level) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, gpioCall{op: "write", pin: pin, level: level})
	return nil
}

func (d *recordingDriver) ReadPin(pin int) (gpio.Level, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if lvl, ok := d.inputs[pin]; ok {
		return lvl, nil
	}
	return gpio.Low, nil
}

func (d *recordingDriver) Close() error { return nil }

func (d *recordingDriver) setInput(pin int, lvl gpio.Level) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.inputs == nil {
		d.inputs = make(map[int]gpio.Level)
	}
	d.inputs[pin] = lvl
}

func (d *recordingDriver) reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = nil
}

func (d *recordingDriver) writeCalls() []gpioCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	var result []gpioCall
	for _, c := range d.calls {
		if c.op == "write" {
			result = append(result, c)
		}
	}
	return result
}

// resultRecorder is a booth.ResultHandler delivering results on channels.
type resultRecorder struct {
	images chan booth.Image
	errs   chan error
}

func newResultRecorder() *resultRecorder {
	return &resultRecorder{images: make(chan booth.Image, 4), errs: make(chan error, 4)}
}

func (r *resultRecorder) ImageReady(img booth.Image) { r.images <- img }
func (r *resultRecorder) CaptureFailed(err error)    { r.errs <- err }

func (r *resultRecorder) waitImage(t *testing.T) booth.Image {
	t.Helper()
	select {
	case img := <-r.images:
		return img
	case err := <-r.errs:
		t.Fatalf("capture failed: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for image")
	}
	return booth.Image{}
}

func (r *resultRecorder) waitError(t *testing.T) error {
	t.Helper()
	select {
	case err := <-r.errs:
		return err
	case img := <-r.images:
		t.Fatalf("expected failure, got image %+v", img)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for failure")
	}
	return nil
}

var (
	_ booth.Camera = (*NikonD90GPIO)(nil)
	_ booth.Camera = (*Mock)(nil)
)

func newNikon(t *testing.T, name string, typ booth.CameraType, drv gpio.Driver, cfg NikonConfig) *NikonD90GPIO {
	t.Helper()
	cam, err := NewNikonD90GPIO(name, typ, drv, cfg)
	if err != nil {
		t.Fatalf("NewNikonD90GPIO: %v", err)
	}
	return cam
}

func fastNikon(t *testing.T, drv gpio.Driver, recovery time.Duration) *NikonD90GPIO {
	return newNikon(t, "d90", booth.Main, drv, NikonConfig{
		FocusPin:     24,
		ShutterPin:   25,
		FocusDelay:   time.Microsecond,
		ShutterDelay: time.Microsecond,
		Recovery:     recovery,
	})
}

// ---------- NikonD90GPIO ----------

func TestNikonD90GPIO_PinsInitializedHigh(t *testing.T) {
	drv := &recordingDriver{}
	fastNikon(t, drv, 0)

	focusHigh, shutterHigh := false, false
	for _, c := range drv.writeCalls() {
		if c.pin == 24 && c.level == gpio.High {
			focusHigh = true
		}
		if c.pin == 25 && c.level == gpio.High {
			shutterHigh = true
		}
	}
	if !focusHigh {
		t.Error("focus pin should be initialized to HIGH")
	}
	if !shutterHigh {
		t.Error("shutter pin should be initialized to HIGH")
	}
}

func TestNikonD90GPIO_CaptureSequence(t *testing.T) {
	drv := &recordingDriver{}
	cam := fastNikon(t, drv, 0)
	rec := newResultRecorder()
	cam.SetResultHandler(rec)
	drv.reset()

	cam.Capture()
	img := rec.waitImage(t)

	if img.Camera != "d90" || img.ID == "" {
		t.Errorf("image = %+v, want camera d90 and an ID", img)
	}

	expected := []struct {
		pin   int
		level gpio.Level
		desc  string
	}{
		{24, gpio.Low, "focus LOW (activate AF)"},
		{25, gpio.Low, "shutter LOW (trigger)"},
		{25, gpio.High, "shutter HIGH (release)"},
		{24, gpio.High, "focus HIGH (release)"},
	}
	writes := drv.writeCalls()
	if len(writes) != len(expected) {
		t.Fatalf("expected %d writes, got %d: %v", len(expected), len(writes), writes)
	}
	for i, exp := range expected {
		if writes[i].pin != exp.pin || writes[i].level != exp.level {
			t.Errorf("step %d (%s): pin=%d level=%v, want pin=%d level=%v",
				i, exp.desc, writes[i].pin, writes[i].level, exp.pin, exp.level)
		}
	}
}

func TestNikonD90GPIO_BusyDuringRecovery(t *testing.T) {
	drv := &recordingDriver{}
	cam := fastNikon(t, drv, time.Hour)
	rec := newResultRecorder()
	cam.SetResultHandler(rec)

	if !cam.IsReady() {
		t.Fatal("camera should be ready before the first shot")
	}
	cam.Capture()
	rec.waitImage(t)

	if cam.IsReady() {
		t.Error("camera should be busy while recovering")
	}

	// A second capture while busy reports ErrBusy.
	cam.Capture()
	if err := rec.waitError(t); !errors.Is(err, ErrBusy) {
		t.Errorf("error = %v, want ErrBusy", err)
	}

	// Shutdown interrupts the recovery wait.
	done := make(chan struct{})
	go func() {
		cam.Shutdown()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown did not interrupt recovery")
	}
}

func TestNikonD90GPIO_ReadyPin(t *testing.T) {
	drv := &recordingDriver{}
	cam := newNikon(t, "d90", booth.Main, drv, NikonConfig{FocusPin: 24, ShutterPin: 25, ReadyPin: 26})

	drv.setInput(26, gpio.Low)
	if cam.IsReady() {
		t.Error("camera should not be ready with ready pin LOW (powered off)")
	}
	drv.setInput(26, gpio.High)
	if !cam.IsReady() {
		t.Error("camera should be ready with ready pin HIGH")
	}
}

func TestNikonD90GPIO_CaptureAfterShutdown(t *testing.T) {
	drv := &recordingDriver{}
	cam := fastNikon(t, drv, 0)
	rec := newResultRecorder()
	cam.SetResultHandler(rec)

	cam.Shutdown()
	cam.Shutdown() // idempotent

	if cam.IsReady() {
		t.Error("shut down camera should not be ready")
	}
	cam.Capture()
	if err := rec.waitError(t); !errors.Is(err, ErrShutdown) {
		t.Errorf("error = %v, want ErrShutdown", err)
	}
}

func TestNikonD90GPIO_Identity(t *testing.T) {
	cam := newNikon(t, "left", booth.Backup, &recordingDriver{}, NikonConfig{FocusPin: 1, ShutterPin: 2})
	if cam.Name() != "left" || cam.Type() != booth.Backup {
		t.Errorf("identity = %s/%v, want left/backup", cam.Name(), cam.Type())
	}
}

func TestNikonD90GPIO_SetupError(t *testing.T) {
	for _, pin := range []int{24, 25, 26} {
		errPin := errors.New("pin busy")
		drv := &recordingDriver{setupErr: map[int]error{pin: errPin}}
		cam, err := NewNikonD90GPIO("d90", booth.Main, drv, NikonConfig{FocusPin: 24, ShutterPin: 25, ReadyPin: 26})
		if !errors.Is(err, errPin) || cam != nil {
			t.Errorf("pin %d: NewNikonD90GPIO = %v, %v, want nil and the setup error", pin, cam, err)
		}
	}
}

// ---------- Mock ----------

func TestMock_ReportsImage(t *testing.T) {
	cam := NewMock("sim", booth.Other, time.Millisecond, false)
	rec := newResultRecorder()
	cam.SetResultHandler(rec)

	cam.Capture()
	img := rec.waitImage(t)

	if img.Camera != "sim" || img.Path == "" {
		t.Errorf("image = %+v, want camera sim with a path", img)
	}
}

func TestMock_Fail(t *testing.T) {
	cam := NewMock("sim", booth.Other, time.Millisecond, true)
	rec := newResultRecorder()
	cam.SetResultHandler(rec)

	cam.Capture()
	if err := rec.waitError(t); !errors.Is(err, ErrSimulated) {
		t.Errorf("error = %v, want ErrSimulated", err)
	}
}

func TestMock_ShutdownDuringCapture(t *testing.T) {
	cam := NewMock("sim", booth.Other, time.Hour, false)
	rec := newResultRecorder()
	cam.SetResultHandler(rec)

	cam.Capture()
	if cam.IsReady() {
		t.Error("mock should be busy while capturing")
	}
	cam.Shutdown()

	if err := rec.waitError(t); !errors.Is(err, ErrShutdown) {
		t.Errorf("error = %v, want ErrShutdown", err)
	}
}

func TestMock_NoHandlerDropsResult(t *testing.T) {
	cam := NewMock("sim", booth.Other, time.Microsecond, false)
	cam.Capture()
	cam.Shutdown() // waits for the capture goroutine; must not panic
}
