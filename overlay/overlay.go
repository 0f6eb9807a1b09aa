package overlay

import (
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"influencemap/segment"
	"influencemap/typedef"
)

// Style describes the colours of each overlay layer. Colours are opaque; the
// alpha fields control translucency.
type Style struct {
	Heat           colorful.Color // Tint at low influence
	HeatHot        colorful.Color // Tint at full influence
	MaxAlpha       float64        // Heat alpha at influence 100
	Hover          colorful.Color
	HoverAlpha     float64
	Selection      colorful.Color
	SelectionAlpha float64
}

// DefaultStyle returns the red heat map with yellow hover and cyan selection.
func DefaultStyle() Style {
	return Style{
		Heat:           colorful.Color{R: 1, G: 0.1, B: 0.1},
		HeatHot:        colorful.Color{R: 0.75, G: 0, B: 0.1},
		MaxAlpha:       0.5,
		Hover:          colorful.Color{R: 1, G: 1, B: 0.3},
		HoverAlpha:     0.3,
		Selection:      colorful.Color{R: 0.3, G: 1, B: 1},
		SelectionAlpha: 0.4,
	}
}

// HeatColor returns the overlay colour for a region at the given influence.
// Zero influence is fully transparent.
func (s Style) HeatColor(influence float64) color.NRGBA {
	if influence <= 0 {
		return color.NRGBA{}
	}
	t := typedef.ClampInfluence(influence) / typedef.MaxInfluence
	return toNRGBA(s.Heat.BlendHcl(s.HeatHot, t).Clamped(), t*s.MaxAlpha)
}

func toNRGBA(c colorful.Color, alpha float64) color.NRGBA {
	r, g, b := c.RGB255()
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	return color.NRGBA{R: r, G: g, B: b, A: uint8(alpha*255 + 0.5)}
}

// Compositor owns the overlay raster of one map and redraws it in place.
type Compositor struct {
	style   Style
	img     *image.NRGBA
	version uint64
}

// NewCompositor allocates an overlay of w x h pixels.
func NewCompositor(w, h int, style Style) *Compositor {
	return &Compositor{
		style: style,
		img:   image.NewNRGBA(image.Rect(0, 0, w, h)),
	}
}

// Style returns the colours in use.
func (c *Compositor) Style() Style { return c.style }

// Image returns the last composed raster.
func (c *Compositor) Image() *image.NRGBA { return c.img }

// Version increases on every Compose so renderers know when to re-upload.
func (c *Compositor) Version() uint64 { return c.version }

// Compose redraws the overlay: clear, influence heat for every region, then
// the hovered territory, then the selected one. Later layers replace earlier
// pixels rather than blending with them.
func (c *Compositor) Compose(owner *segment.OwnerIndex, regions []*typedef.Region, hovered, selected *typedef.Territory) *image.NRGBA {
	clear(c.img.Pix)

	for _, r := range regions {
		if r.Influence() <= 0 {
			continue
		}
		c.fill(owner, r, c.style.HeatColor(r.Influence()))
	}
	if hovered != nil {
		col := toNRGBA(c.style.Hover, c.style.HoverAlpha)
		for _, r := range hovered.Members {
			c.fill(owner, r, col)
		}
	}
	if selected != nil {
		col := toNRGBA(c.style.Selection, c.style.SelectionAlpha)
		for _, r := range selected.Members {
			c.fill(owner, r, col)
		}
	}

	c.version++
	return c.img
}

func (c *Compositor) fill(owner *segment.OwnerIndex, r *typedef.Region, col color.NRGBA) {
	for x, y := range owner.Pixels(r) {
		c.img.SetNRGBA(x, y, col)
	}
}

// Release drops the overlay raster.
func (c *Compositor) Release() {
	c.img = image.NewNRGBA(image.Rectangle{})
}
