package main

import (
	"context"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"gocomment/balloon"
)

const overlayTPS = 60

// overlay is the ebiten game for the transparent window. Update is the
// balloon scheduler's goroutine.
type overlay struct {
	ctx  context.Context
	app  *app
	surf *ebitenSurface
	view *feedView
	pal  palette

	started bool
	w, h    int
}

func newOverlay(ctx context.Context, a *app, surf *ebitenSurface, s settings) *overlay {
	return &overlay{
		ctx:  ctx,
		app:  a,
		surf: surf,
		view: newFeedView(a.queue, s.MaxComments),
		pal:  pickPalette(s.Theme, s.BubbleOpacity),
	}
}

func (o *overlay) Update() error {
	if o.ctx.Err() != nil {
		o.app.sched.Stop()
		return ebiten.Termination
	}
	if !o.started && o.w > 0 {
		if err := o.app.sched.Start(); err != nil {
			return err
		}
		o.app.applyArea()
		o.started = true
	}
	o.handleHotkeys()
	o.view.poll(time.Now())
	o.app.sched.Tick()
	return nil
}

func (o *overlay) handleHotkeys() {
	cfg := o.app.cfg
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyF9):
		if cfg.Get().Area == balloon.AreaComment {
			cfg.SetArea(balloon.AreaWide)
		} else {
			cfg.SetArea(balloon.AreaComment)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyF10):
		cfg.SetCorner((cfg.Get().Corner + 1) % 4)
	case inpututil.IsKeyJustPressed(ebiten.KeyF11):
		cfg.Reset()
	}
}

func (o *overlay) Draw(screen *ebiten.Image) {
	col := balloon.AreaComment.Region(o.w, o.h)
	drawFeed(screen, o.view.newestFirst(), col.Min.X+bubbleGap, bubbleGap, col.Dx()-2*bubbleGap, col.Max.Y, o.pal)
	o.surf.drawTo(screen)
}

func (o *overlay) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != o.w || outsideHeight != o.h {
		o.w, o.h = outsideWidth, outsideHeight
		o.app.setMonitor(o.w, o.h)
	}
	return outsideWidth, outsideHeight
}

// runOverlay opens a borderless, click-through, always-on-top window over
// the primary monitor and blocks until it closes.
func runOverlay(ctx context.Context, a *app, surf *ebitenSurface, s settings) error {
	w, h := ebiten.Monitor().Size()
	if w == 0 || h == 0 {
		w, h = s.WindowWidth, s.WindowHeight
	}
	ebiten.SetWindowTitle("gocomment")
	ebiten.SetWindowDecorated(false)
	ebiten.SetWindowFloating(true)
	ebiten.SetWindowMousePassthrough(true)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowPosition(0, 0)
	ebiten.SetTPS(overlayTPS)

	op := &ebiten.RunGameOptions{ScreenTransparent: true}
	return ebiten.RunGameWithOptions(newOverlay(ctx, a, surf, s), op)
}
