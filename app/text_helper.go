package app

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

var hudBackground = color.RGBA{0, 0, 0, 160}

// TextRenderer draws HUD text with a single font face.
type TextRenderer struct {
	face font.Face
}

// NewTextRenderer creates a text renderer for face, or the 7x13 bitmap face when nil.
func NewTextRenderer(face font.Face) *TextRenderer {
	if face == nil {
		face = basicfont.Face7x13
	}
	return &TextRenderer{face: face}
}

// DrawText draws text with its baseline at y.
func (tr *TextRenderer) DrawText(screen *ebiten.Image, textStr string, x, y int, clr color.Color) {
	text.Draw(screen, textStr, tr.face, x, y, clr)
}

// MeasureString returns the pixel width of the given text
func (tr *TextRenderer) MeasureString(str string) int {
	return text.BoundString(tr.face, str).Dx()
}

// GetLineHeight returns the pixel height of a line of text
func (tr *TextRenderer) GetLineHeight() int {
	metrics := tr.face.Metrics()
	return (metrics.Ascent + metrics.Descent).Round()
}

// DrawPanel draws lines on a translucent box whose top-left corner is (x, y)
// and returns the box height.
func (tr *TextRenderer) DrawPanel(screen *ebiten.Image, x, y int, lines []string, clr color.Color) int {
	const pad = 6
	lh := tr.GetLineHeight() + 3
	w := 0
	for _, l := range lines {
		if lw := tr.MeasureString(l); lw > w {
			w = lw
		}
	}
	h := len(lines)*lh + pad
	ebitenutil.DrawRect(screen, float64(x), float64(y), float64(w+2*pad), float64(h), hudBackground)
	for i, l := range lines {
		tr.DrawText(screen, l, x+pad, y+pad/2+(i+1)*lh-4, clr)
	}
	return h
}
