package main

import (
	"context"
	"flag"
	"image"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"gocomment/internal/memsurface"
)

var (
	doDebug    bool
	headless   bool
	serverURL  string
	socketPath string
	session    string
	fontPath   string
)

func main() {
	flag.StringVar(&serverURL, "server", "", "relay server base URL")
	flag.StringVar(&socketPath, "path", "", "Socket.IO path on the relay")
	flag.StringVar(&session, "session", "", "session to join")
	flag.StringVar(&fontPath, "font", "", "TTF/OTF font for comments (needed for CJK)")
	flag.BoolVar(&doDebug, "debug", false, "verbose/debug logging")
	flag.BoolVar(&headless, "headless", false, "run without a window")
	flag.Parse()

	setupLogging(doDebug)
	defer closeLogging()

	loadSettings()
	applyFlags()
	s := currentSettings()
	setLanguage(s.Language)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, s); err != nil {
		logError("%v", err)
		cancel()
		closeLogging()
		os.Exit(1)
	}
	saveSettings()
}

// applyFlags copies non-empty flags over the loaded settings so the next
// start reuses them.
func applyFlags() {
	gsMu.Lock()
	defer gsMu.Unlock()
	if serverURL != "" {
		gs.Server = serverURL
	}
	if socketPath != "" {
		gs.Path = socketPath
	}
	if session != "" {
		gs.Session = session
	}
	if fontPath != "" {
		gs.FontPath = fontPath
	}
}

func run(ctx context.Context, s settings) error {
	opts := appOptions{
		server:  s.Server,
		path:    s.Path,
		session: s.Session,
		display: displayConfigOf(s),
		notify:  s.Notifications && !headless,
		monitor: image.Pt(s.WindowWidth, s.WindowHeight),
	}
	var surf *ebitenSurface
	if headless {
		opts.surface = memsurface.New(0, 0).Factory()
	} else {
		surf = newEbitenSurface()
		opts.surface = surf.factory()
		initFont(s.FontPath, s.FontSize)
	}
	a, err := newApp(opts)
	if err != nil {
		return err
	}
	defer a.close()
	logDebug("relay %v", a.client.URL())

	a.start(ctx)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		go a.consoleLoop(ctx, os.Stdin, os.Stdout)
	}
	if headless {
		runHeadless(ctx, a)
		return nil
	}
	return runOverlay(ctx, a, surf, s)
}
