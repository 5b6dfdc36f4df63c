package mqtt

import (
	"sync"
	"testing"
	"time"

	"github.com/cjeanneret/photobooth/internal/booth"
)

type message struct {
	topic    string
	payload  []byte
	retained bool
}

// fakeBroker is an in-memory Messenger with exact topic matching.
type fakeBroker struct {
	mu           sync.Mutex
	connected    bool
	subs         map[string]MessageHandler
	published    []message
	publishErr   error
	subscribeErr error
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{connected: true, subs: make(map[string]MessageHandler)}
}

func (b *fakeBroker) Publish(topic string, payload []byte, retained bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.publishErr != nil {
		return b.publishErr
	}
	b.published = append(b.published, message{topic, payload, retained})
	return nil
}

func (b *fakeBroker) Subscribe(topic string, h MessageHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subscribeErr != nil {
		return b.subscribeErr
	}
	b.subs[topic] = h
	return nil
}

func (b *fakeBroker) Unsubscribe(topic string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, topic)
	return nil
}

func (b *fakeBroker) IsConnected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connected
}

func (b *fakeBroker) setConnected(v bool) {
	b.mu.Lock()
	b.connected = v
	b.mu.Unlock()
}

func (b *fakeBroker) subscribed(topic string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.subs[topic]
	return ok
}

// deliver routes a message to the subscriber of topic, if any.
func (b *fakeBroker) deliver(t *testing.T, topic string, payload []byte) {
	t.Helper()
	b.mu.Lock()
	h := b.subs[topic]
	b.mu.Unlock()
	if h == nil {
		t.Fatalf("no subscriber on %s", topic)
	}
	if err := h(topic, payload); err != nil {
		t.Logf("handler on %s returned %v", topic, err)
	}
}

func (b *fakeBroker) messages(topic string) []message {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []message
	for _, m := range b.published {
		if m.topic == topic {
			out = append(out, m)
		}
	}
	return out
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

func (r *resultRecorder) expectNothing(t *testing.T) {
	t.Helper()
	select {
	case img := <-r.images:
		t.Fatalf("unexpected image %+v", img)
	case err := <-r.errs:
		t.Fatalf("unexpected failure %v", err)
	case <-time.After(20 * time.Millisecond):
	}
}
