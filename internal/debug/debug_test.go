package debug

import (
	"bytes"
	"strings"
	"testing"
)

func capture(t *testing.T, lvl int) *bytes.Buffer {
	t.Helper()
	Init(lvl)
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { Init(LevelOff) })
	return &buf
}

func TestLevelGating(t *testing.T) {
	buf := capture(t, LevelLive)

	Info("info %d", 1)
	Live("live %d", 2)
	Verbose("verbose %d", 3)
	Trace("trace %d", 4)

	out := buf.String()
	if !strings.Contains(out, "[INFO] info 1") {
		t.Errorf("missing info line in %q", out)
	}
	if !strings.Contains(out, "[LIVE] live 2") {
		t.Errorf("missing live line in %q", out)
	}
	if strings.Contains(out, "verbose 3") || strings.Contains(out, "trace 4") {
		t.Errorf("levels above %d should be suppressed, got %q", LevelLive, out)
	}
}

func TestOffPrintsNothing(t *testing.T) {
	Init(LevelOff)
	var buf bytes.Buffer
	SetOutput(&buf) // no logger, no effect

	Info("hidden")
	Error(nil)

	if buf.Len() != 0 {
		t.Errorf("expected no output at level 0, got %q", buf.String())
	}
	if Fmt("x=%d", 1) != "" {
		t.Error("Fmt should return empty string when disabled")
	}
}

func TestPrefixAndHelpers(t *testing.T) {
	buf := capture(t, LevelLive)

	Fire(2, 3)
	Dispatch(1, 3)
	Result("ready", 2)

	out := buf.String()
	for _, want := range []string{
		"[Photobooth] ",
		"Trigger fired: 2 display(s), 3 camera(s)",
		"Dispatch complete: 1/3 camera(s) instructed",
		"Capture ready: notified 2 display(s)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestIsEnabled(t *testing.T) {
	capture(t, LevelVerbose)
	if !IsEnabled(LevelInfo) || !IsEnabled(LevelVerbose) {
		t.Error("levels up to verbose should be enabled")
	}
	if IsEnabled(LevelTrace) {
		t.Error("trace should not be enabled at verbose")
	}
}
