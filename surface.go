package main

import (
	"image"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"

	"gocomment/balloon"
)

type sprite struct {
	img  *ebiten.Image
	x, y float64
}

// ebitenSurface keeps balloon sprites as ebiten images inside a region of
// the overlay window. Coordinates are relative to the region.
type ebitenSurface struct {
	rect    image.Rectangle
	sprites map[balloon.Sprite]*sprite
	order   []balloon.Sprite
	next    balloon.Sprite
}

func newEbitenSurface() *ebitenSurface {
	return &ebitenSurface{sprites: make(map[balloon.Sprite]*sprite)}
}

func (s *ebitenSurface) factory() balloon.SurfaceFactory {
	return func() (balloon.Surface, error) { return s, nil }
}

// Size is zero until the first Layout has placed the region.
func (s *ebitenSurface) Size() (int, int) { return s.rect.Dx(), s.rect.Dy() }

func (s *ebitenSurface) Resize(r image.Rectangle) { s.rect = r }

func (s *ebitenSurface) Draw(img image.Image, x, y float64) balloon.Sprite {
	s.next++
	s.sprites[s.next] = &sprite{img: ebiten.NewImageFromImage(img), x: x, y: y}
	s.order = append(s.order, s.next)
	return s.next
}

func (s *ebitenSurface) Move(id balloon.Sprite, dx, dy float64) {
	if sp, ok := s.sprites[id]; ok {
		sp.x += dx
		sp.y += dy
	}
}

func (s *ebitenSurface) Position(id balloon.Sprite) (float64, float64, bool) {
	sp, ok := s.sprites[id]
	if !ok {
		return 0, 0, false
	}
	return sp.x, sp.y, true
}

func (s *ebitenSurface) Delete(id balloon.Sprite) {
	sp, ok := s.sprites[id]
	if !ok {
		return
	}
	sp.img.Deallocate()
	delete(s.sprites, id)
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
}

func (s *ebitenSurface) Destroy() {
	for _, sp := range s.sprites {
		sp.img.Deallocate()
	}
	clear(s.sprites)
	s.order = s.order[:0]
}

// drawTo paints every sprite, oldest first, centred on its position.
func (s *ebitenSurface) drawTo(screen *ebiten.Image) {
	for _, id := range s.order {
		sp := s.sprites[id]
		b := sp.img.Bounds()
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(
			float64(s.rect.Min.X)+sp.x-float64(b.Dx())/2,
			float64(s.rect.Min.Y)+sp.y-float64(b.Dy())/2,
		)
		op.Filter = ebiten.FilterLinear
		screen.DrawImage(sp.img, op)
	}
}
