package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"strings"
	"testing"
	"time"

	"gocomment/balloon"
	"gocomment/internal/memsurface"
)

func newTestApp(t *testing.T) *app {
	t.Helper()
	dir := t.TempDir()
	orig := dataDirPath
	dataDirPath = dir
	t.Cleanup(func() { dataDirPath = orig; gs = gsdef })

	a, err := newApp(appOptions{
		server:  "http://127.0.0.1:1",
		session: "test",
		display: balloon.DefaultConfig(),
		surface: memsurface.New(0, 0).Factory(),
		monitor: image.Pt(1000, 800),
	})
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	t.Cleanup(a.close)
	return a
}

func TestRunCommandUpdatesConfig(t *testing.T) {
	a := newTestApp(t)
	tests := []struct {
		line  string
		check func(balloon.Config) bool
	}{
		{"corner top_left", func(c balloon.Config) bool { return c.Corner == balloon.TopLeft }},
		{"area left75", func(c balloon.Config) bool { return c.Area == balloon.AreaWide }},
		{"speed 50 80", func(c balloon.Config) bool { return c.SpeedMin == 50 && c.SpeedMax == 80 }},
		{"speed 120", func(c balloon.Config) bool { return c.SpeedMin == 120 && c.SpeedMax == 120 }},
		{"distance 300", func(c balloon.Config) bool { return c.DistanceLimit == 300 }},
		{"lifetime 2.5", func(c balloon.Config) bool { return c.Lifetime == 2500*time.Millisecond }},
		{"reset", func(c balloon.Config) bool { return c == balloon.DefaultConfig() }},
	}
	for _, tt := range tests {
		out, err := a.runCommand(tt.line)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tt.line, err)
		}
		if !tt.check(a.cfg.Get()) {
			t.Fatalf("%q: config not applied, got %+v", tt.line, a.cfg.Get())
		}
		if !strings.Contains(out, "corner=") {
			t.Fatalf("%q: expected config summary, got %q", tt.line, out)
		}
	}
}

func TestRunCommandErrors(t *testing.T) {
	a := newTestApp(t)
	for _, line := range []string{"corner", "corner middle", "speed fast", "distance 1 2", "bogus"} {
		if _, err := a.runCommand(line); err == nil {
			t.Fatalf("%q: expected error", line)
		}
	}
	if _, err := a.runCommand("speed"); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if out, err := a.runCommand("   "); err != nil || out != "" {
		t.Fatalf("expected blank line to be ignored, got %q %v", out, err)
	}
}

func TestConfigChangePersists(t *testing.T) {
	a := newTestApp(t)
	if _, err := a.runCommand("corner top_right"); err != nil {
		t.Fatalf("corner: %v", err)
	}
	gs = gsdef
	if !loadSettings() {
		t.Fatalf("expected settings file to be written")
	}
	if currentSettings().Corner != "top_right" {
		t.Fatalf("expected persisted corner top_right, got %q", currentSettings().Corner)
	}
}

func TestConsoleLoop(t *testing.T) {
	a := newTestApp(t)
	var out bytes.Buffer
	a.consoleLoop(context.Background(), strings.NewReader("help\nnope\nclear\n"), &out)
	got := out.String()
	if !strings.Contains(got, "commands:") || !strings.Contains(got, "nope") || !strings.Contains(got, "cleared") {
		t.Fatalf("unexpected console output %q", got)
	}
}

func TestStatusLine(t *testing.T) {
	a := newTestApp(t)
	setLanguage("en")
	defer setLanguage(gsdef.Language)
	line := a.statusLine(false)
	if !strings.Contains(line, "Disconnected") || !strings.Contains(line, "session test") {
		t.Fatalf("unexpected status %q", line)
	}
}

func TestAreaFollowsConfig(t *testing.T) {
	a := newTestApp(t)
	if got := a.region(); got != image.Rect(750, 0, 1000, 800) {
		t.Fatalf("expected comment column, got %v", got)
	}
	a.cfg.SetArea(balloon.AreaWide)
	if got := a.region(); got != image.Rect(0, 0, 750, 800) {
		t.Fatalf("expected left region, got %v", got)
	}
}

func TestOpenCommand(t *testing.T) {
	a := newTestApp(t)
	var opened string
	orig := openBrowser
	openBrowser = func(u string) error { opened = u; return nil }
	defer func() { openBrowser = orig }()

	out, err := a.runCommand("open")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	want := "http://127.0.0.1:1?session=test"
	if opened != want || out != want {
		t.Fatalf("expected %q, got opened=%q out=%q", want, opened, out)
	}
}
