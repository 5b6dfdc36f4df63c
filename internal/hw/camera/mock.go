package camera

import (
	"errors"
	"fmt"
	"time"

	"github.com/cjeanneret/photobooth/internal/booth"
	"github.com/cjeanneret/photobooth/internal/debug"
)

// ErrSimulated is the failure reported by a Mock configured to fail.
var ErrSimulated = errors.New("camera: simulated failure")

// Mock is a simulated camera for development without hardware.
// Each capture takes the configured latency, then reports an image (or
// ErrSimulated when Fail is set).
type Mock struct {
	*device

	latency time.Duration
	fail    bool
}

// NewMock creates a simulated camera.
func NewMock(name string, typ booth.CameraType, latency time.Duration, fail bool) *Mock {
	return &Mock{
		device:  newDevice(name, typ),
		latency: latency,
		fail:    fail,
	}
}

func (m *Mock) IsReady() bool { return m.idle() }

func (m *Mock) Capture() {
	m.start(func() {
		img := m.newImage()
		if !m.sleep(m.latency) {
			m.report(booth.Image{}, fmt.Errorf("camera %s: %w", m.name, ErrShutdown))
			return
		}
		if m.fail {
			m.report(booth.Image{}, fmt.Errorf("camera %s: %w", m.name, ErrSimulated))
			return
		}
		img.Path = fmt.Sprintf("mock://%s/%s.jpg", m.name, img.ID)
		debug.Live("Camera %s: simulated photo %s", m.name, img.ID)
		m.report(img, nil)
	})
}

func (m *Mock) Shutdown() {
	if m.close() {
		debug.Info("Camera %s: shut down", m.name)
	}
}
