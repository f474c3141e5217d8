package main

import (
	"bytes"
	"os"

	text "github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

var commentFont, nameFont text.Face

// initFont loads the bubble faces. A custom TTF (needed for CJK text)
// replaces both faces; Go Regular/Bold is the fallback.
func initFont(path string, size float64) {
	regular := mustFaceSource(goregular.TTF)
	bold := mustFaceSource(gobold.TTF)
	if path != "" {
		if data, err := os.ReadFile(path); err != nil {
			logWarn("font %v: %v", path, err)
		} else if src, err := text.NewGoTextFaceSource(bytes.NewReader(data)); err != nil {
			logWarn("font %v: %v", path, err)
		} else {
			regular, bold = src, src
		}
	}
	commentFont = &text.GoTextFace{Source: regular, Size: size}
	nameFont = &text.GoTextFace{Source: bold, Size: size * 0.8}
}

func mustFaceSource(ttf []byte) *text.GoTextFaceSource {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(ttf))
	if err != nil {
		logError("failed to parse font: %v", err)
		panic(err)
	}
	return src
}
