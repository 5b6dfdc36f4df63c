package display

import (
	"github.com/cjeanneret/photobooth/internal/booth"
	"github.com/cjeanneret/photobooth/internal/debug"
)

// Log is a display that writes the booth state to the debug log.
// It is useful on a headless Pi and as a witness next to real displays.
type Log struct {
	name string
}

// NewLog creates a log display.
func NewLog(name string) *Log {
	return &Log{name: name}
}

func (l *Log) Name() string { return l.name }

func (l *Log) ShowWaiting() {
	debug.Live("Display %s: get ready...", l.name)
}

func (l *Log) DisplayImage(img booth.Image) {
	where := img.Path
	if where == "" {
		where = img.URL
	}
	debug.Live("Display %s: photo %s from %s %s", l.name, img.ID, img.Camera, where)
}

func (l *Log) AbortWaiting() {
	debug.Live("Display %s: capture failed, waiting cleared", l.name)
}
