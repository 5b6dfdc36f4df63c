package booth

import (
	"slices"

	"github.com/cjeanneret/photobooth/internal/debug"
)

// TakePhoto is the fire handler: every display shows the waiting state, then
// the cameras are dispatched. It returns without waiting for any photo.
//
// If no camera is ready the displays stay in the waiting state; only a later
// ImageReady or CaptureFailed clears them.
func (o *Orchestrator) TakePhoto() {
	o.mu.RLock()
	displays := slices.Clone(o.displays)
	cameras := slices.Clone(o.cameras)
	o.mu.RUnlock()

	debug.Fire(len(displays), len(cameras))

	for _, d := range displays {
		d.ShowWaiting()
	}

	n := dispatch(cameras)
	debug.Dispatch(n, len(cameras))
	if n == 0 {
		debug.Warn("no camera was ready, displays keep waiting")
	}
}

// dispatch walks cameras in order and tells the ready ones to capture.
// Once a Main camera has been told to capture the walk stops at the first
// Backup camera; Other cameras before that point are still dispatched.
// It returns the number of cameras told to capture.
func dispatch(cameras []cameraEntry) int {
	mainCameraReady := false
	n := 0
	for _, e := range cameras {
		if mainCameraReady && e.typ == Backup {
			debug.Verbose("Dispatch: main camera busy capturing, skipping backups")
			break
		}
		if !e.cam.IsReady() {
			debug.Verbose("Dispatch: %s (%s) not ready, skipped", NameOf(e.cam), e.typ)
			continue
		}
		debug.Verbose("Dispatch: %s (%s) capturing", NameOf(e.cam), e.typ)
		e.cam.Capture()
		n++
		if e.typ == Main {
			mainCameraReady = true
		}
	}
	return n
}

// ImageReady sends img to every registered display.
func (o *Orchestrator) ImageReady(img Image) {
	displays := o.Displays()
	for _, d := range displays {
		d.DisplayImage(img)
	}
	debug.Result("ready", len(displays))
}

// CaptureFailed clears the waiting state on every registered display.
// err is only logged; there is no caller to return it to.
func (o *Orchestrator) CaptureFailed(err error) {
	if err != nil {
		debug.Error(err)
	}
	displays := o.Displays()
	for _, d := range displays {
		d.AbortWaiting()
	}
	debug.Result("failed", len(displays))
}
