package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cjeanneret/photobooth/internal/booth"
	"github.com/cjeanneret/photobooth/internal/debug"
)

// Display event kinds published on a display topic.
const (
	EventWaiting = "waiting"
	EventImage   = "image"
	EventAborted = "aborted"
)

// DisplayEvent is the JSON message a Display publishes.
type DisplayEvent struct {
	Event   string       `json:"event"`
	Display string       `json:"display"`
	Time    time.Time    `json:"time"`
	Image   *booth.Image `json:"image,omitempty"`
}

// Display publishes the booth state to a topic, retained so a screen that
// connects late shows the current state.
type Display struct {
	name  string
	topic string
	conn  Messenger
}

// NewDisplay creates a network display.
func NewDisplay(name, topic string, conn Messenger) *Display {
	return &Display{name: name, topic: topic, conn: conn}
}

func (d *Display) Name() string { return d.name }

func (d *Display) ShowWaiting() { d.publish(EventWaiting, nil) }

func (d *Display) DisplayImage(img booth.Image) { d.publish(EventImage, &img) }

func (d *Display) AbortWaiting() { d.publish(EventAborted, nil) }

func (d *Display) publish(event string, img *booth.Image) {
	payload, err := json.Marshal(DisplayEvent{
		Event:   event,
		Display: d.name,
		Time:    time.Now(),
		Image:   img,
	})
	if err != nil {
		debug.Error(fmt.Errorf("display %s: encode %s: %w", d.name, event, err))
		return
	}
	if err := d.conn.Publish(d.topic, payload, true); err != nil {
		debug.Error(fmt.Errorf("display %s: publish %s: %w", d.name, event, err))
	}
}
