// Package memsurface is an in-memory balloon.Surface. The headless runner
// uses it in place of a window, and tests use it to observe sprites.
package memsurface

import (
	"image"
	"slices"
	"sync"

	"gocomment/balloon"
)

// Sprite is a drawn image and its centre.
type Sprite struct {
	Image image.Image
	X, Y  float64
}

// Surface records draw calls. Safe for concurrent use so that diagnostics
// can read it while the scheduler animates.
type Surface struct {
	mu        sync.Mutex
	rect      image.Rectangle
	sprites   map[balloon.Sprite]*Sprite
	next      balloon.Sprite
	destroyed bool
	draws     int
}

// New returns a w x h surface.
func New(w, h int) *Surface {
	return &Surface{
		rect:    image.Rect(0, 0, w, h),
		sprites: make(map[balloon.Sprite]*Sprite),
	}
}

// Factory returns a balloon.SurfaceFactory that always hands out s.
func (s *Surface) Factory() balloon.SurfaceFactory {
	return func() (balloon.Surface, error) {
		s.mu.Lock()
		s.destroyed = false
		s.mu.Unlock()
		return s, nil
	}
}

func (s *Surface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rect.Dx(), s.rect.Dy()
}

func (s *Surface) Bounds() image.Rectangle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rect
}

func (s *Surface) Resize(r image.Rectangle) {
	s.mu.Lock()
	s.rect = r
	s.mu.Unlock()
}

func (s *Surface) Draw(img image.Image, x, y float64) balloon.Sprite {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.draws++
	s.sprites[s.next] = &Sprite{Image: img, X: x, Y: y}
	return s.next
}

func (s *Surface) Move(id balloon.Sprite, dx, dy float64) {
	s.mu.Lock()
	if sp, ok := s.sprites[id]; ok {
		sp.X += dx
		sp.Y += dy
	}
	s.mu.Unlock()
}

func (s *Surface) Position(id balloon.Sprite) (float64, float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, ok := s.sprites[id]
	if !ok {
		return 0, 0, false
	}
	return sp.X, sp.Y, true
}

func (s *Surface) Delete(id balloon.Sprite) {
	s.mu.Lock()
	delete(s.sprites, id)
	s.mu.Unlock()
}

// Vanish removes a sprite behind the scheduler's back, as a host would
// when it tears down its drawing state.
func (s *Surface) Vanish(id balloon.Sprite) { s.Delete(id) }

func (s *Surface) Destroy() {
	s.mu.Lock()
	s.destroyed = true
	clear(s.sprites)
	s.mu.Unlock()
}

// Destroyed reports whether Destroy has been called since the last
// Factory use.
func (s *Surface) Destroyed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroyed
}

// Len returns the number of live sprites.
func (s *Surface) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sprites)
}

// Draws returns the total number of Draw calls.
func (s *Surface) Draws() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draws
}

// IDs returns the live sprite ids in ascending order.
func (s *Surface) IDs() []balloon.Sprite {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]balloon.Sprite, 0, len(s.sprites))
	for id := range s.sprites {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Sprite returns a copy of the sprite with the given id.
func (s *Surface) Sprite(id balloon.Sprite) (Sprite, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, ok := s.sprites[id]
	if !ok {
		return Sprite{}, false
	}
	return *sp, true
}
