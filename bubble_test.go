package main

import (
	"testing"

	text "github.com/hajimehoshi/ebiten/v2/text/v2"

	"gocomment/feed"
)

func TestLayoutBubbleWraps(t *testing.T) {
	face := &text.GoTextFace{Size: 10}
	short := layoutBubble(feed.Entry{Name: "a", Text: "hi"}, 200, face, face)
	if len(short.lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(short.lines))
	}
	long := layoutBubble(feed.Entry{Name: "a", Text: "one two three four five six seven eight"}, 80, face, face)
	if len(long.lines) < 2 {
		t.Fatalf("expected text to wrap, got %q", long.lines)
	}
	if long.height <= short.height {
		t.Fatalf("expected wrapped bubble to be taller, got %d <= %d", long.height, short.height)
	}
	bare := layoutBubble(feed.Entry{Text: "hi"}, 200, face, face)
	if bare.height >= short.height {
		t.Fatalf("expected bubble without header to be shorter, got %d >= %d", bare.height, short.height)
	}
}
