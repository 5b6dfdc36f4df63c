package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Device types understood by the binary.
const (
	CameraNikonD90GPIO = "nikon_d90_gpio"
	CameraMock         = "mock"
	CameraMQTT         = "mqtt"

	DisplayWeb  = "web"
	DisplayLog  = "log"
	DisplayMQTT = "mqtt"

	TriggerGPIOButton = "gpio_button"
	TriggerWeb        = "web"
	TriggerMQTT       = "mqtt"
)

// CameraConfig describes one camera of the booth.
// Type selects a concrete implementation, Role its place in the dispatch order.
type CameraConfig struct {
	Name string `yaml:"name"`
	Role string `yaml:"role"` // main, backup or other
	Type string `yaml:"type"` // nikon_d90_gpio, mock, mqtt

	// nikon_d90_gpio
	FocusPin       int `yaml:"focus_pin"`        // GPIO pin for FOCUS line
	ShutterPin     int `yaml:"shutter_pin"`      // GPIO pin for SHUTTER line
	ReadyPin       int `yaml:"ready_pin"`        // optional input, HIGH = camera powered on. 0 = not used.
	FocusDelayMs   int `yaml:"focus_delay_ms"`   // autofocus delay (ms)
	ShutterDelayMs int `yaml:"shutter_delay_ms"` // shutter hold time (ms)
	RecoveryMs     int `yaml:"recovery_ms"`      // time after a shot before the camera is ready again (ms)

	// mock
	LatencyMs int  `yaml:"latency_ms"` // simulated capture time (ms)
	Fail      bool `yaml:"fail"`       // report every capture as failed

	// mqtt
	Topic     string `yaml:"topic"`      // base topic; requests go to <topic>/capture, results come on <topic>/result
	TimeoutMs int    `yaml:"timeout_ms"` // capture deadline (ms) before reporting a failure
}

// DisplayConfig describes one display.
type DisplayConfig struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`  // web, log, mqtt
	Topic string `yaml:"topic"` // mqtt only
}

// TriggerConfig describes one trigger.
type TriggerConfig struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"` // gpio_button, web, mqtt

	// gpio_button
	Pin            int   `yaml:"pin"`              // input pin (BCM)
	ActiveLow      *bool `yaml:"active_low"`       // pressed = LOW (button to GND, pull-up). Default true.
	PollIntervalMs int   `yaml:"poll_interval_ms"` // how often the pin is sampled
	DebounceMs     int   `yaml:"debounce_ms"`      // minimum time between two presses

	// mqtt
	Topic string `yaml:"topic"`
}

// MQTTConfig holds the broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig identifies the broker.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	ClientID string `yaml:"client_id"`
	TLS      bool   `yaml:"tls"`
}

// MQTTAuthConfig holds optional broker credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig holds reconnect backoff bounds in seconds.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// DefaultsConfig contains generic parameters.
type DefaultsConfig struct {
	DebugLevel int  `yaml:"debug_level"` // debug level 0-4 (0=off, 1=info, 2=live, 3=verbose, 4=trace)
	MockGPIO   bool `yaml:"mock_gpio"`   // use mock GPIO (true=dev/test, false=real Raspberry Pi)
	WebPort    int  `yaml:"web_port"`    // status page / web trigger port. 0 = use -web flag only.
}

// Config aggregates all application configuration.
type Config struct {
	Defaults DefaultsConfig  `yaml:"defaults"`
	Cameras  []CameraConfig  `yaml:"cameras"`
	Displays []DisplayConfig `yaml:"displays"`
	Triggers []TriggerConfig `yaml:"triggers"`
	MQTT     *MQTTConfig     `yaml:"mqtt,omitempty"` // required when a device uses mqtt
}

// ValidateConfigPath checks that path names a .yaml file inside a configs/
// directory and does not climb out of it.
func ValidateConfigPath(path string) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if slices.Contains(strings.Split(filepath.ToSlash(path), "/"), "..") {
		return fmt.Errorf("config path %q must not contain '..'", path)
	}
	clean := filepath.Clean(path)
	if filepath.Ext(clean) != ".yaml" {
		return fmt.Errorf("config path %q must have a .yaml extension", path)
	}
	if filepath.Base(filepath.Dir(clean)) != "configs" {
		return fmt.Errorf("config path %q must be inside a configs/ directory", path)
	}
	return nil
}

// Load reads a YAML file and returns the configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes, validates and fills in defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Defaults.DebugLevel < 0 || c.Defaults.DebugLevel > 4 {
		return fmt.Errorf("defaults.debug_level must be between 0 and 4, got %d", c.Defaults.DebugLevel)
	}
	if c.Defaults.WebPort < 0 || c.Defaults.WebPort > 65535 {
		return fmt.Errorf("defaults.web_port must be 0-65535, got %d", c.Defaults.WebPort)
	}
	if len(c.Cameras) == 0 {
		return errors.New("at least one camera is required")
	}

	usesMQTT := false
	names := make(map[string]bool)
	unique := func(kind, name string) error {
		key := kind + "/" + name
		if names[key] {
			return fmt.Errorf("duplicate %s name %q", kind, name)
		}
		names[key] = true
		return nil
	}

	for i := range c.Cameras {
		cam := &c.Cameras[i]
		if cam.Name == "" {
			cam.Name = fmt.Sprintf("camera%d", i+1)
		}
		if err := unique("camera", cam.Name); err != nil {
			return err
		}
		switch strings.ToLower(cam.Role) {
		case "main", "backup", "other", "":
		default:
			return fmt.Errorf("cameras[%d].role must be main, backup or other, got %q", i, cam.Role)
		}
		switch cam.Type {
		case CameraNikonD90GPIO:
			if cam.FocusPin <= 0 || cam.ShutterPin <= 0 {
				return fmt.Errorf("cameras[%d]: focus_pin and shutter_pin are required", i)
			}
			if cam.FocusDelayMs <= 0 {
				cam.FocusDelayMs = 500 // 500ms for autofocus
			}
			if cam.ShutterDelayMs <= 0 {
				cam.ShutterDelayMs = 200 // 200ms shutter hold
			}
			if cam.RecoveryMs <= 0 {
				cam.RecoveryMs = 1000 // card write
			}
		case CameraMock:
			if cam.LatencyMs <= 0 {
				cam.LatencyMs = 500
			}
		case CameraMQTT:
			usesMQTT = true
			if cam.Topic == "" {
				return fmt.Errorf("cameras[%d]: topic is required for mqtt cameras", i)
			}
			if cam.TimeoutMs <= 0 {
				cam.TimeoutMs = 10000
			}
		case "":
			return fmt.Errorf("cameras[%d].type is required", i)
		default:
			return fmt.Errorf("cameras[%d]: unsupported camera type: %s", i, cam.Type)
		}
	}

	webDisplays, webTriggers := 0, 0
	for i := range c.Displays {
		d := &c.Displays[i]
		if d.Name == "" {
			d.Name = fmt.Sprintf("%s%d", d.Type, i+1)
		}
		if err := unique("display", d.Name); err != nil {
			return err
		}
		switch d.Type {
		case DisplayWeb:
			webDisplays++
		case DisplayLog:
		case DisplayMQTT:
			usesMQTT = true
			if d.Topic == "" {
				return fmt.Errorf("displays[%d]: topic is required for mqtt displays", i)
			}
		default:
			return fmt.Errorf("displays[%d]: unsupported display type: %q", i, d.Type)
		}
	}

	for i := range c.Triggers {
		tr := &c.Triggers[i]
		if tr.Name == "" {
			tr.Name = fmt.Sprintf("%s%d", tr.Type, i+1)
		}
		if err := unique("trigger", tr.Name); err != nil {
			return err
		}
		switch tr.Type {
		case TriggerGPIOButton:
			if tr.Pin <= 0 {
				return fmt.Errorf("triggers[%d]: pin is required for gpio buttons", i)
			}
			if tr.ActiveLow == nil {
				activeLow := true
				tr.ActiveLow = &activeLow
			}
			if tr.PollIntervalMs <= 0 {
				tr.PollIntervalMs = 10
			}
			if tr.DebounceMs <= 0 {
				tr.DebounceMs = 250
			}
		case TriggerWeb:
			webTriggers++
		case TriggerMQTT:
			usesMQTT = true
			if tr.Topic == "" {
				return fmt.Errorf("triggers[%d]: topic is required for mqtt triggers", i)
			}
		default:
			return fmt.Errorf("triggers[%d]: unsupported trigger type: %q", i, tr.Type)
		}
	}

	if webDisplays > 1 || webTriggers > 1 {
		return errors.New("at most one web display and one web trigger can be configured")
	}

	if usesMQTT {
		if c.MQTT == nil || c.MQTT.Broker.Host == "" {
			return errors.New("mqtt.broker.host is required when a device uses mqtt")
		}
		c.MQTT.applyDefaults()
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			return fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", c.MQTT.QoS)
		}
	}
	return nil
}

func (m *MQTTConfig) applyDefaults() {
	if m.Broker.Port <= 0 {
		m.Broker.Port = 1883
	}
	if m.Broker.ClientID == "" {
		m.Broker.ClientID = "photobooth"
	}
	if m.Reconnect.InitialDelay <= 0 {
		m.Reconnect.InitialDelay = 1
	}
	if m.Reconnect.MaxDelay <= 0 {
		m.Reconnect.MaxDelay = 60
	}
}

// UsesWeb reports whether a web display or web trigger is configured.
func (c *Config) UsesWeb() bool {
	for _, d := range c.Displays {
		if d.Type == DisplayWeb {
			return true
		}
	}
	for _, t := range c.Triggers {
		if t.Type == TriggerWeb {
			return true
		}
	}
	return false
}

// FocusDelay returns the autofocus delay duration.
func (c CameraConfig) FocusDelay() time.Duration {
	return time.Duration(c.FocusDelayMs) * time.Millisecond
}

// ShutterDelay returns the shutter hold duration.
func (c CameraConfig) ShutterDelay() time.Duration {
	return time.Duration(c.ShutterDelayMs) * time.Millisecond
}

// Recovery returns how long the camera stays busy after a shot.
func (c CameraConfig) Recovery() time.Duration {
	return time.Duration(c.RecoveryMs) * time.Millisecond
}

// Latency returns the simulated capture time of a mock camera.
func (c CameraConfig) Latency() time.Duration {
	return time.Duration(c.LatencyMs) * time.Millisecond
}

// Timeout returns the capture deadline of a network camera.
func (c CameraConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// PollInterval returns the button sampling period.
func (t TriggerConfig) PollInterval() time.Duration {
	return time.Duration(t.PollIntervalMs) * time.Millisecond
}

// Debounce returns the minimum time between two button presses.
func (t TriggerConfig) Debounce() time.Duration {
	return time.Duration(t.DebounceMs) * time.Millisecond
}

// IsActiveLow reports whether a pressed button reads LOW.
func (t TriggerConfig) IsActiveLow() bool {
	return t.ActiveLow == nil || *t.ActiveLow
}
