package web

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/cjeanneret/photobooth/internal/booth"
)

// Booth is the part of the orchestrator the HTTP surface drives.
type Booth interface {
	Start() error
	Stop()
	Running() bool
	Cameras() []booth.Camera
	Displays() []booth.Display
	Triggers() []booth.Trigger
}

// DefaultTriggerInterval is the minimum time between two web triggers.
const DefaultTriggerInterval = time.Second

// CameraStatus describes one registered camera.
type CameraStatus struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Ready bool   `json:"ready"`
}

// DevicesResponse is the body of GET /devices.
type DevicesResponse struct {
	Running      bool           `json:"running"`
	Cameras      []CameraStatus `json:"cameras"`
	Displays     int            `json:"displays"`
	Triggers     int            `json:"triggers"`
	TriggerArmed bool           `json:"trigger_armed"`
	State        string         `json:"state,omitempty"`
	LastImage    *booth.Image   `json:"last_image,omitempty"`
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	Broadcaster *StatusBroadcaster
	Booth       Booth
	Trigger     *Trigger // nil when no web trigger is configured
	Display     *Display // nil when no web display is configured

	// TriggerInterval rate-limits POST /trigger.
	TriggerInterval time.Duration

	fireMu   sync.Mutex
	lastFire time.Time

	staticFS fs.FS
}

// NewHandlers creates handlers with the given dependencies.
// If trig is nil, POST /trigger will return 503 Service Unavailable.
func NewHandlers(broadcaster *StatusBroadcaster, b Booth, trig *Trigger, disp *Display, staticFS fs.FS) *Handlers {
	return &Handlers{
		Broadcaster:     broadcaster,
		Booth:           b,
		Trigger:         trig,
		Display:         disp,
		TriggerInterval: DefaultTriggerInterval,
		staticFS:        staticFS,
	}
}

// ServeIndex serves the main HTML page (root path only).
func (h *Handlers) ServeIndex(w http.ResponseWriter, r *http.Request) {
	data, err := fs.ReadFile(h.staticFS, "index.html")
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

// HandleTrigger handles POST /trigger: fire the web trigger.
func (h *Handlers) HandleTrigger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.Trigger == nil {
		http.Error(w, "web trigger not configured", http.StatusServiceUnavailable)
		return
	}

	// Only a fired trigger takes the rate-limit slot.
	h.fireMu.Lock()
	defer h.fireMu.Unlock()
	if !h.lastFire.IsZero() && time.Since(h.lastFire) < h.TriggerInterval {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
		return
	}
	if err := h.Trigger.Fire(); err != nil {
		if errors.Is(err, ErrDisarmed) {
			http.Error(w, "booth is not running", http.StatusServiceUnavailable)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.lastFire = time.Now()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "fired"})
}

// HandleDevices handles GET /devices: a snapshot of the registered devices.
func (h *Handlers) HandleDevices(w http.ResponseWriter, r *http.Request) {
	resp := DevicesResponse{
		Running:  h.Booth.Running(),
		Cameras:  []CameraStatus{},
		Displays: len(h.Booth.Displays()),
		Triggers: len(h.Booth.Triggers()),
	}
	for _, c := range h.Booth.Cameras() {
		resp.Cameras = append(resp.Cameras, CameraStatus{
			Name:  booth.NameOf(c),
			Type:  c.Type().String(),
			Ready: c.IsReady(),
		})
	}
	if h.Trigger != nil {
		resp.TriggerArmed = h.Trigger.Armed()
	}
	if h.Display != nil {
		resp.State, resp.LastImage = h.Display.State()
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleStart handles POST /start.
func (h *Handlers) HandleStart(w http.ResponseWriter, r *http.Request) {
	if err := h.Booth.Start(); err != nil {
		log.Printf("start failed: %v", err)
		h.Broadcaster.Broadcast("error", "Start failed: "+err.Error())
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.Broadcaster.Broadcast("info", "Booth running")
	writeJSON(w, http.StatusOK, map[string]string{"status": "running"})
}

// HandleStop handles POST /stop.
func (h *Handlers) HandleStop(w http.ResponseWriter, r *http.Request) {
	h.Booth.Stop()
	h.Broadcaster.Broadcast("info", "Booth stopped")
	writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}

// HandleStatusStream handles GET /status/stream for SSE.
func (h *Handlers) HandleStatusStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // nginx

	ch, unsub := h.Broadcaster.Subscribe()
	defer unsub()

	// Send initial comment to establish connection
	w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	// Heartbeat while idle
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			w.Write([]byte("data: " + msg + "\n\n"))
			flusher.Flush()

		case <-ticker.C:
			w.Write([]byte(": heartbeat\n\n"))
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
