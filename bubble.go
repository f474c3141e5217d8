package main

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	text "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"gocomment/feed"
)

// whiteImage is the 1x1 source for solid triangle fills.
var whiteImage = func() *ebiten.Image {
	img := ebiten.NewImage(1, 1)
	img.Fill(color.White)
	return img
}()

const (
	bubblePad    = 8
	bubbleGap    = 6
	bubbleRadius = 6
)

// bubbleLayout is a comment wrapped to fit a column.
type bubbleLayout struct {
	name, time string
	lines      []string
	nameH      int
	lineH      int
	height     int
}

func faceLineHeight(face text.Face) int {
	if gf, ok := face.(*text.GoTextFace); ok && gf.Source == nil {
		return int(math.Ceil(gf.Size * 1.2))
	}
	m := face.Metrics()
	return int(math.Ceil(m.HAscent) + math.Ceil(m.HDescent) + math.Ceil(m.HLineGap))
}

func layoutBubble(e feed.Entry, width int, body, header text.Face) bubbleLayout {
	lines := wrapText(e.Text, body, float64(width-2*bubblePad))
	l := bubbleLayout{
		name:  e.Name,
		time:  e.Time,
		lines: lines,
		nameH: faceLineHeight(header),
		lineH: faceLineHeight(body),
	}
	l.height = 2*bubblePad + l.lineH*len(lines)
	if l.name != "" || l.time != "" {
		l.height += l.nameH + 2
	}
	return l
}

func roundedRect(left, top, right, bottom, r float32) *vector.Path {
	var p vector.Path
	p.MoveTo(left+r, top)
	p.LineTo(right-r, top)
	p.Arc(right-r, top+r, r, -math.Pi/2, 0, vector.Clockwise)
	p.LineTo(right, bottom-r)
	p.Arc(right-r, bottom-r, r, 0, math.Pi/2, vector.Clockwise)
	p.LineTo(left+r, bottom)
	p.Arc(left+r, bottom-r, r, math.Pi/2, math.Pi, vector.Clockwise)
	p.LineTo(left, top+r)
	p.Arc(left+r, top+r, r, math.Pi, 3*math.Pi/2, vector.Clockwise)
	p.Close()
	return &p
}

func fillVertices(vs []ebiten.Vertex, c color.Color) {
	r, g, b, a := c.RGBA()
	for i := range vs {
		vs[i].SrcX = 0
		vs[i].SrcY = 0
		vs[i].ColorR = float32(r) / 0xffff
		vs[i].ColorG = float32(g) / 0xffff
		vs[i].ColorB = float32(b) / 0xffff
		vs[i].ColorA = float32(a) / 0xffff
	}
}

// drawCommentBubble renders l with its top-left corner at (x, y).
func drawCommentBubble(screen *ebiten.Image, l bubbleLayout, x, y, width int, pal palette) {
	left, top := float32(x), float32(y)
	right, bottom := float32(x+width), float32(y+l.height)
	body := roundedRect(left, top, right, bottom, bubbleRadius)

	op := &ebiten.DrawTrianglesOptions{ColorScaleMode: ebiten.ColorScaleModePremultipliedAlpha, AntiAlias: true}
	vs, is := body.AppendVerticesAndIndicesForFilling(nil, nil)
	fillVertices(vs, premultiply(pal.bubble))
	screen.DrawTriangles(vs, is, whiteImage, op)

	vs, is = body.AppendVerticesAndIndicesForStroke(vs[:0], is[:0], &vector.StrokeOptions{Width: 1})
	fillVertices(vs, pal.border)
	screen.DrawTriangles(vs, is, whiteImage, op)

	tx, ty := float64(x+bubblePad), float64(y+bubblePad)
	if l.name != "" || l.time != "" {
		nop := &text.DrawOptions{}
		nop.GeoM.Translate(tx, ty)
		nop.ColorScale.ScaleWithColor(pal.name)
		text.Draw(screen, l.name, nameFont, nop)
		if l.time != "" {
			nw := measureWidth(l.name+"  ", nameFont)
			timeOp := &text.DrawOptions{}
			timeOp.GeoM.Translate(tx+nw, ty)
			timeOp.ColorScale.ScaleWithColor(pal.time)
			text.Draw(screen, l.time, nameFont, timeOp)
		}
		ty += float64(l.nameH + 2)
	}
	for i, line := range l.lines {
		op := &text.DrawOptions{}
		op.GeoM.Translate(tx, ty+float64(i*l.lineH))
		op.ColorScale.ScaleWithColor(pal.text)
		text.Draw(screen, line, commentFont, op)
	}
}

func premultiply(c color.NRGBA) color.Color {
	r, g, b, a := c.RGBA()
	return color.RGBA64{uint16(r), uint16(g), uint16(b), uint16(a)}
}

// drawFeed stacks bubbles newest first down the column until it runs out
// of room.
func drawFeed(screen *ebiten.Image, entries []feed.Entry, x, y, width, maxY int, pal palette) {
	for _, e := range entries {
		if y >= maxY {
			return
		}
		l := layoutBubble(e, width, commentFont, nameFont)
		drawCommentBubble(screen, l, x, y, width, pal)
		y += l.height + bubbleGap
	}
}
