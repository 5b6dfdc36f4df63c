package booth

import (
	"cmp"
	"fmt"
	"math"
	"strings"
	"time"
)

// CameraType tags a camera with its role in a capture dispatch.
// Cameras are dispatched Main first, then Other, then Backup.
type CameraType int

const (
	// Main cameras are preferred whenever they are ready.
	Main CameraType = iota
	// Backup cameras are dispatched only when no Main camera was ready.
	Backup
	// Other cameras sort before Backup, so they are dispatched when ready
	// whatever Main did.
	Other
)

func (t CameraType) String() string {
	switch t {
	case Main:
		return "main"
	case Backup:
		return "backup"
	case Other:
		return "other"
	default:
		return fmt.Sprintf("other(%d)", int(t))
	}
}

// ParseCameraType maps a config role ("main", "backup", "other") to a CameraType.
// An empty string means Other.
func ParseCameraType(s string) (CameraType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "main":
		return Main, nil
	case "backup":
		return Backup, nil
	case "other", "":
		return Other, nil
	default:
		return Other, fmt.Errorf("unknown camera role %q (want main, backup or other)", s)
	}
}

// compareCameraTypes is the total order cameras are kept in:
// Main < Other < Backup < unknown values. Negative values sort last.
func compareCameraTypes(a, b CameraType) int {
	return cmp.Compare(rank(a), rank(b))
}

func rank(t CameraType) int {
	switch {
	case t == Main:
		return 0
	case t == Other:
		return 1
	case t == Backup:
		return 2
	case t < Main, t == math.MaxInt:
		return math.MaxInt
	default:
		return int(t) + 1
	}
}

// Image describes a captured photo. The orchestrator never looks inside it;
// it is handed unchanged from the camera to every display.
type Image struct {
	ID      string    `json:"id"`
	Camera  string    `json:"camera"`
	TakenAt time.Time `json:"taken_at"`
	Path    string    `json:"path,omitempty"` // location on the camera or host, if known
	URL     string    `json:"url,omitempty"`
	Data    []byte    `json:"-"`
}

// ResultHandler receives the asynchronous outcome of Camera.Capture.
type ResultHandler interface {
	ImageReady(img Image)
	CaptureFailed(err error)
}

// FireHandler is what an armed trigger calls when it fires.
type FireHandler interface {
	TakePhoto()
}

// Camera is a capture device. Capture must not block until the photo is
// taken: the result is reported later through the registered ResultHandler,
// typically from a goroutine owned by the camera.
type Camera interface {
	Type() CameraType
	IsReady() bool
	Capture()
	Shutdown()
	SetResultHandler(h ResultHandler)
}

// Display shows the booth state to the guests.
type Display interface {
	ShowWaiting()
	DisplayImage(img Image)
	AbortWaiting()
}

// Trigger is an event source that asks for a photo.
// Enable arms the trigger: from then on it calls h.TakePhoto whenever it fires.
// Disable disarms it and must be safe to call on a trigger that is not armed.
type Trigger interface {
	Enable(h FireHandler) error
	Disable()
}

// Named is implemented by devices that can describe themselves in logs and
// in the status API.
type Named interface {
	Name() string
}

// NameOf returns the device name, or its Go type when it has none.
func NameOf(v any) string {
	if n, ok := v.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", v)
}
