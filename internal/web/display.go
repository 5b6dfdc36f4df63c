package web

import (
	"sync"

	"github.com/cjeanneret/photobooth/internal/booth"
)

// Display shows the booth state on every browser connected to the status
// page. It also remembers the current state so a page opened mid-session
// can catch up through GET /devices.
type Display struct {
	name string
	b    *StatusBroadcaster

	mu    sync.Mutex
	state string
	last  *booth.Image
}

// NewDisplay creates a web display sending on b.
func NewDisplay(name string, b *StatusBroadcaster) *Display {
	return &Display{name: name, b: b}
}

func (d *Display) Name() string { return d.name }

func (d *Display) ShowWaiting() {
	d.set(KindWaiting, nil)
	d.b.Send(StatusEvent{Kind: KindWaiting, Msg: "Get ready..."})
}

func (d *Display) DisplayImage(img booth.Image) {
	d.set(KindImage, &img)
	d.b.Send(StatusEvent{Kind: KindImage, Msg: "Photo from " + img.Camera, Image: &img})
}

func (d *Display) AbortWaiting() {
	d.set(KindAborted, nil)
	d.b.Send(StatusEvent{Kind: KindAborted, Level: "error", Msg: "Capture failed"})
}

func (d *Display) set(state string, img *booth.Image) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = state
	if img != nil {
		d.last = img
	}
}

// State returns the last event kind shown ("" before any) and the last
// image displayed, if any.
func (d *Display) State() (string, *booth.Image) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state, d.last
}
