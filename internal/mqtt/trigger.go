package mqtt

import (
	"fmt"
	"sync"

	"github.com/cjeanneret/photobooth/internal/booth"
	"github.com/cjeanneret/photobooth/internal/debug"
)

// Trigger fires the booth on any message received on its topic, e.g. a
// remote button or a phone app.
type Trigger struct {
	name  string
	topic string
	conn  Messenger

	mu    sync.Mutex
	armed bool
}

// NewTrigger creates a disarmed network trigger.
func NewTrigger(name, topic string, conn Messenger) *Trigger {
	return &Trigger{name: name, topic: topic, conn: conn}
}

func (t *Trigger) Name() string { return t.name }

// Enable subscribes to the trigger topic.
func (t *Trigger) Enable(h booth.FireHandler) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.armed {
		return ErrAlreadyEnabled
	}
	err := t.conn.Subscribe(t.topic, func(topic string, _ []byte) error {
		debug.Live("MQTT trigger %s fired on %s", t.name, topic)
		h.TakePhoto()
		return nil
	})
	if err != nil {
		return fmt.Errorf("arm trigger %s on %s: %w", t.name, t.topic, err)
	}
	t.armed = true
	debug.Verbose("MQTT trigger %s: armed on %s", t.name, t.topic)
	return nil
}

// Disable unsubscribes from the trigger topic.
func (t *Trigger) Disable() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.armed {
		return
	}
	t.armed = false
	if err := t.conn.Unsubscribe(t.topic); err != nil {
		debug.Error(fmt.Errorf("disarm trigger %s: %w", t.name, err))
		return
	}
	debug.Verbose("MQTT trigger %s: disarmed", t.name)
}
