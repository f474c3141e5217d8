package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/browser"

	"gocomment/balloon"
)

var errUsage = errors.New("usage")

// openBrowser is replaced in tests.
var openBrowser = browser.OpenURL

const consoleHelp = `commands:
  corner bottom_right|top_right|bottom_left|top_left
  area comment|left75
  speed MIN [MAX]     launch speed in px/s
  distance PX         0 for unlimited
  lifetime SECONDS
  reset               restore display defaults
  clear               forget the session's comments
  open                show the session page in the browser
  status
  help`

// runCommand applies one console line and returns the text to print.
func (a *app) runCommand(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	cfg := a.cfg
	switch cmd {
	case "corner":
		if len(args) != 1 {
			return "", fmt.Errorf("%w: corner NAME", errUsage)
		}
		c, err := balloon.ParseCorner(args[0])
		if err != nil {
			return "", err
		}
		cfg.SetCorner(c)
	case "area":
		if len(args) != 1 {
			return "", fmt.Errorf("%w: area comment|left75", errUsage)
		}
		m, err := balloon.ParseAreaMode(args[0])
		if err != nil {
			return "", err
		}
		cfg.SetArea(m)
	case "speed":
		nums, err := parseNumbers(args, 1, 2)
		if err != nil {
			return "", fmt.Errorf("%w: speed MIN [MAX]", err)
		}
		cfg.SetSpeedMin(nums[0])
		if len(nums) == 2 {
			cfg.SetSpeedMax(nums[1])
		}
	case "distance":
		nums, err := parseNumbers(args, 1, 1)
		if err != nil {
			return "", fmt.Errorf("%w: distance PX", err)
		}
		cfg.SetDistanceLimit(nums[0])
	case "lifetime":
		nums, err := parseNumbers(args, 1, 1)
		if err != nil {
			return "", fmt.Errorf("%w: lifetime SECONDS", err)
		}
		cfg.SetLifetime(time.Duration(nums[0] * float64(time.Second)))
	case "reset":
		cfg.Reset()
	case "clear":
		a.queue.Clear()
		a.router.Log().Reset()
		return "cleared", nil
	case "open":
		u := a.sessionPage()
		if err := openBrowser(u); err != nil {
			return "", fmt.Errorf("open %s: %w", u, err)
		}
		return u, nil
	case "status":
		return a.statusLine(true), nil
	case "help", "?":
		return consoleHelp, nil
	default:
		return "", errors.New(tr("unknown command", cmd))
	}
	return describeConfig(cfg.Get()), nil
}

func parseNumbers(args []string, min, max int) ([]float64, error) {
	if len(args) < min || len(args) > max {
		return nil, errUsage
	}
	out := make([]float64, len(args))
	for i, s := range args {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, errUsage
		}
		out[i] = v
	}
	return out, nil
}

func describeConfig(c balloon.Config) string {
	dist := "unlimited"
	if c.DistanceLimit > 0 {
		dist = fmt.Sprintf("%.0fpx", c.DistanceLimit)
	}
	return fmt.Sprintf("area=%v corner=%v speed=%.0f-%.0fpx/s distance=%s lifetime=%v",
		c.Area, c.Corner, c.SpeedMin, c.SpeedMax, dist, c.Lifetime)
}

// consoleLoop reads commands from r until it is exhausted or ctx ends.
func (a *app) consoleLoop(ctx context.Context, r io.Reader, w io.Writer) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if ctx.Err() != nil {
			return
		}
		out, err := a.runCommand(sc.Text())
		if err != nil {
			fmt.Fprintln(w, err)
			continue
		}
		if out != "" {
			fmt.Fprintln(w, out)
		}
	}
}
