package main

import (
	"image/color"

	dark "github.com/thiagokokada/dark-mode-go"
)

type palette struct {
	bubble, border, name, text, time color.NRGBA
}

var (
	lightPalette = palette{
		bubble: color.NRGBA{0xff, 0xff, 0xff, 0xff},
		border: color.NRGBA{0xd0, 0xd0, 0xd0, 0xff},
		name:   color.NRGBA{0x22, 0x22, 0x22, 0xff},
		text:   color.NRGBA{0x11, 0x11, 0x11, 0xff},
		time:   color.NRGBA{0x66, 0x66, 0x66, 0xff},
	}
	darkPalette = palette{
		bubble: color.NRGBA{0x2b, 0x2b, 0x2e, 0xff},
		border: color.NRGBA{0x55, 0x55, 0x5a, 0xff},
		name:   color.NRGBA{0xee, 0xee, 0xee, 0xff},
		text:   color.NRGBA{0xf5, 0xf5, 0xf5, 0xff},
		time:   color.NRGBA{0xa0, 0xa0, 0xa0, 0xff},
	}
)

// pickPalette resolves the theme setting, asking the OS when it is empty.
func pickPalette(theme string, opacity float64) palette {
	p := lightPalette
	switch theme {
	case "dark":
		p = darkPalette
	case "light":
	default:
		if isDark, err := dark.IsDarkMode(); err == nil && isDark {
			p = darkPalette
		}
	}
	p.bubble.A = uint8(opacity * 255)
	return p
}
