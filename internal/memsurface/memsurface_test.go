package memsurface

import (
	"image"
	"testing"
)

func TestSurfaceLifecycle(t *testing.T) {
	s := New(200, 100)
	if w, h := s.Size(); w != 200 || h != 100 {
		t.Fatalf("expected 200x100, got %dx%d", w, h)
	}
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	a := s.Draw(img, 10, 20)
	b := s.Draw(img, 30, 40)
	if a == b {
		t.Fatalf("expected distinct sprite ids")
	}
	s.Move(a, 5, -5)
	x, y, ok := s.Position(a)
	if !ok || x != 15 || y != 15 {
		t.Fatalf("expected (15,15), got (%v,%v) ok=%v", x, y, ok)
	}
	s.Vanish(b)
	if _, _, ok := s.Position(b); ok {
		t.Fatalf("expected vanished sprite to be gone")
	}
	if got := s.IDs(); len(got) != 1 || got[0] != a {
		t.Fatalf("expected only %v, got %v", a, got)
	}
	s.Resize(image.Rect(10, 0, 60, 30))
	if w, h := s.Size(); w != 50 || h != 30 {
		t.Fatalf("expected 50x30 after resize, got %dx%d", w, h)
	}
	if got := s.Bounds(); got.Min != image.Pt(10, 0) {
		t.Fatalf("expected region origin (10,0), got %v", got.Min)
	}
	s.Destroy()
	if !s.Destroyed() || s.Len() != 0 {
		t.Fatalf("expected destroyed empty surface, got destroyed=%v len=%d", s.Destroyed(), s.Len())
	}
	if _, err := s.Factory()(); err != nil || s.Destroyed() {
		t.Fatalf("expected factory to revive surface, err=%v", err)
	}
	if s.Draws() != 2 {
		t.Fatalf("expected 2 draws, got %d", s.Draws())
	}
}
