package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gocomment/balloon"
	"gocomment/relay"
)

const SETTINGS_VERSION = 2

const settingsFile = "settings.json"

var dataDirPath = "data"

type settings struct {
	Version int

	Server  string
	Path    string
	Session string

	Area            string
	Corner          string
	SpeedMin        float64
	SpeedMax        float64
	DistanceLimit   float64
	LifetimeSeconds float64

	FontPath      string
	FontSize      float64
	BubbleOpacity float64
	MaxComments   int
	// Theme is "dark", "light" or empty to follow the OS.
	Theme         string
	Language      string
	Notifications bool

	WindowWidth  int
	WindowHeight int
}

var gsdef = settings{
	Version: SETTINGS_VERSION,

	Server:  "http://localhost:5000",
	Path:    relay.DefaultPath,
	Session: relay.DefaultSession,

	Area:            balloon.AreaComment.String(),
	Corner:          balloon.BottomRight.String(),
	SpeedMin:        balloon.DefaultSpeedMin,
	SpeedMax:        balloon.DefaultSpeedMax,
	LifetimeSeconds: balloon.DefaultLifetime.Seconds(),

	FontSize:      16,
	BubbleOpacity: 0.85,
	MaxComments:   50,
	Language:      "ja",
	Notifications: true,

	WindowWidth:  1920,
	WindowHeight: 1080,
}

var (
	gs   = gsdef
	gsMu sync.Mutex
)

// settingsLoaded reports whether settings were successfully loaded from disk.
var settingsLoaded bool

func settingsPath() string { return filepath.Join(dataDirPath, settingsFile) }

func loadSettings() bool {
	gsMu.Lock()
	defer gsMu.Unlock()
	data, err := os.ReadFile(settingsPath())
	if err != nil {
		gs = gsdef
		settingsLoaded = false
		return false
	}
	tmp := gsdef
	if err := json.Unmarshal(data, &tmp); err != nil {
		logWarn("settings: %v", err)
		gs = gsdef
		settingsLoaded = false
		return false
	}
	if tmp.Version != SETTINGS_VERSION {
		gs = gsdef
		settingsLoaded = false
		return false
	}
	gs = tmp
	clampSettings(&gs)
	settingsLoaded = true
	return true
}

func clampSettings(s *settings) {
	if s.FontSize < 6 || s.FontSize > 72 {
		s.FontSize = gsdef.FontSize
	}
	if s.BubbleOpacity < 0 || s.BubbleOpacity > 1 {
		s.BubbleOpacity = gsdef.BubbleOpacity
	}
	if s.MaxComments <= 0 {
		s.MaxComments = gsdef.MaxComments
	}
	if s.WindowWidth < 320 || s.WindowHeight < 240 {
		s.WindowWidth, s.WindowHeight = gsdef.WindowWidth, gsdef.WindowHeight
	}
	if s.Session == "" {
		s.Session = gsdef.Session
	}
	if _, err := balloon.ParseAreaMode(s.Area); err != nil {
		s.Area = gsdef.Area
	}
	if _, err := balloon.ParseCorner(s.Corner); err != nil {
		s.Corner = gsdef.Corner
	}
	cfg := displayConfigOf(*s)
	storeDisplayConfig(s, cfg)
}

func saveSettings() {
	gsMu.Lock()
	data, err := json.MarshalIndent(gs, "", "  ")
	gsMu.Unlock()
	if err != nil {
		logError("save settings: %v", err)
		return
	}
	if err := os.MkdirAll(dataDirPath, 0755); err != nil {
		logError("save settings: %v", err)
		return
	}
	path := settingsPath()
	if err := os.WriteFile(path+".tmp", data, 0644); err != nil {
		logError("save settings: %v", err)
		return
	}
	if err := os.Rename(path+".tmp", path); err != nil {
		logError("save settings: %v", err)
	}
}

// displayConfigOf converts the persisted fields into a balloon.Config.
func displayConfigOf(s settings) balloon.Config {
	cfg := balloon.DefaultConfig()
	if a, err := balloon.ParseAreaMode(s.Area); err == nil {
		cfg.Area = a
	}
	if c, err := balloon.ParseCorner(s.Corner); err == nil {
		cfg.Corner = c
	}
	cfg.SpeedMin = s.SpeedMin
	cfg.SpeedMax = s.SpeedMax
	cfg.DistanceLimit = s.DistanceLimit
	cfg.Lifetime = time.Duration(s.LifetimeSeconds * float64(time.Second))
	return cfg.Normalized()
}

func storeDisplayConfig(s *settings, cfg balloon.Config) {
	s.Area = cfg.Area.String()
	s.Corner = cfg.Corner.String()
	s.SpeedMin = cfg.SpeedMin
	s.SpeedMax = cfg.SpeedMax
	s.DistanceLimit = cfg.DistanceLimit
	s.LifetimeSeconds = cfg.Lifetime.Seconds()
}

// currentSettings returns a copy of gs.
func currentSettings() settings {
	gsMu.Lock()
	defer gsMu.Unlock()
	return gs
}

// persistDisplayConfig records cfg in gs and writes the file.
func persistDisplayConfig(cfg balloon.Config) {
	gsMu.Lock()
	storeDisplayConfig(&gs, cfg)
	gsMu.Unlock()
	saveSettings()
}
