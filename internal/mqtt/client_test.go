package mqtt

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/cjeanneret/photobooth/internal/config"
)

func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "booth-test",
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

var _ Messenger = (*Client)(nil)

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Username = "booth"
	cfg.Auth.Password = "secret"

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "tcp://127.0.0.1:1883" {
		t.Errorf("servers = %v, want tcp://127.0.0.1:1883", opts.Servers)
	}
	if opts.ClientID != "booth-test" {
		t.Errorf("client id = %q", opts.ClientID)
	}
	if opts.Username != "booth" || opts.Password != "secret" {
		t.Errorf("credentials = %q/%q", opts.Username, opts.Password)
	}
	if !opts.AutoReconnect {
		t.Error("auto reconnect should be enabled")
	}
	if !opts.WillEnabled || opts.WillTopic != "booth-test/status" || !opts.WillRetained {
		t.Errorf("will = %v %q retained=%v", opts.WillEnabled, opts.WillTopic, opts.WillRetained)
	}
	if !strings.Contains(string(opts.WillPayload), `"unexpected_disconnect"`) {
		t.Errorf("will payload = %s", opts.WillPayload)
	}
}

func TestBuildClientOptions_TLS(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = true
	cfg.Broker.Port = 8883

	opts := buildClientOptions(cfg)

	if opts.Servers[0].Scheme != "ssl" {
		t.Errorf("scheme = %q, want ssl", opts.Servers[0].Scheme)
	}
	if opts.TLSConfig == nil {
		t.Error("TLS config should be set")
	}
}

func TestStatusPayload(t *testing.T) {
	var s status
	if err := json.Unmarshal(statusPayload("booth", "online", ""), &s); err != nil {
		t.Fatal(err)
	}
	if s.Status != "online" || s.ClientID != "booth" || s.Timestamp == "" {
		t.Errorf("status = %+v", s)
	}
}

func TestClient_Validation(t *testing.T) {
	c := &Client{subscriptions: make(map[string]MessageHandler)}
	noop := func(string, []byte) error { return nil }

	if err := c.Publish("", nil, false); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Publish empty topic = %v, want ErrInvalidTopic", err)
	}
	if err := c.Publish("t", make([]byte, maxPayloadSize+1), false); !errors.Is(err, ErrPublishFailed) {
		t.Errorf("Publish oversized = %v, want ErrPublishFailed", err)
	}
	if err := c.Publish("t", []byte("x"), false); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Publish disconnected = %v, want ErrNotConnected", err)
	}
	if err := c.Subscribe("", noop); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Subscribe empty topic = %v, want ErrInvalidTopic", err)
	}
	if err := c.Subscribe("t", nil); !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("Subscribe nil handler = %v, want ErrSubscribeFailed", err)
	}
	if err := c.Subscribe("t", noop); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Subscribe disconnected = %v, want ErrNotConnected", err)
	}
	if err := c.Unsubscribe(""); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Unsubscribe empty topic = %v, want ErrInvalidTopic", err)
	}
	if c.IsConnected() {
		t.Error("unconnected client reports connected")
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close on unconnected client = %v", err)
	}
}

func TestTopics(t *testing.T) {
	if got := CaptureTopic("booth/cam"); got != "booth/cam/capture" {
		t.Errorf("CaptureTopic = %q", got)
	}
	if got := ResultTopic("booth/cam"); got != "booth/cam/result" {
		t.Errorf("ResultTopic = %q", got)
	}
}
