package main

import (
	"strings"
	"unicode"
	"unicode/utf8"

	text "github.com/hajimehoshi/ebiten/v2/text/v2"
)

// measureWidth returns the advance of s. Faces without a source, as used
// in tests, are approximated at 0.6em per rune.
func measureWidth(s string, face text.Face) float64 {
	if gf, ok := face.(*text.GoTextFace); ok && gf.Source == nil {
		return float64(utf8.RuneCountInString(s)) * gf.Size * 0.6
	}
	w, _ := text.Measure(s, face, 0)
	return w
}

// breakable reports whether a line may end after r. Comments are mostly
// Japanese with no spaces, so every CJK rune is a break opportunity.
func breakable(r rune) bool {
	return r == ' ' || unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana) ||
		(r >= 0x3000 && r <= 0x303f) || (r >= 0xff00 && r <= 0xffef)
}

// segments splits a paragraph after every break opportunity. Runs of
// spaces stay attached to the preceding word.
func segments(para string) []string {
	var out []string
	start := 0
	for i, r := range para {
		end := i + utf8.RuneLen(r)
		if !breakable(r) {
			continue
		}
		if r == ' ' && end < len(para) && para[end] == ' ' {
			continue
		}
		out = append(out, para[start:end])
		start = end
	}
	if start < len(para) {
		out = append(out, para[start:])
	}
	return out
}

// wrapText splits s into lines no wider than maxWidth. A segment wider
// than the line is broken between runes.
func wrapText(s string, face text.Face, maxWidth float64) []string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		var (
			line  strings.Builder
			width float64
		)
		flush := func() {
			lines = append(lines, line.String())
			line.Reset()
			width = 0
		}
		for _, seg := range segments(para) {
			w := measureWidth(seg, face)
			if width+w > maxWidth && line.Len() > 0 {
				flush()
			}
			if w <= maxWidth {
				line.WriteString(seg)
				width += w
				continue
			}
			for _, r := range seg {
				rw := measureWidth(string(r), face)
				if width+rw > maxWidth && line.Len() > 0 {
					flush()
				}
				line.WriteRune(r)
				width += rw
			}
		}
		flush()
	}
	return lines
}
