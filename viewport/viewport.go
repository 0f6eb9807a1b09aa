package viewport

import (
	"math"
)

// Config fixes the display rectangle the map is stretched onto and the zoom
// limits. All screen coordinates are relative to the display's top-left corner,
// or bottom-left when YUp is set.
type Config struct {
	DisplayW int     `json:"displayW"`
	DisplayH int     `json:"displayH"`
	MapW     int     `json:"-"`
	MapH     int     `json:"-"`
	MinZoom  float64 `json:"minZoom"`
	MaxZoom  float64 `json:"maxZoom"`
	YUp      bool    `json:"yUp"` // Screen y grows upwards while raster rows grow downwards
}

// DefaultConfig returns an 800x480 display with zoom between 1x and 4x.
func DefaultConfig(mapW, mapH int) Config {
	return Config{
		DisplayW: 800,
		DisplayH: 480,
		MapW:     mapW,
		MapH:     mapH,
		MinZoom:  1,
		MaxZoom:  4,
	}
}

// Viewport tracks zoom and pan over a map. At any zoom the scaled map covers
// the whole display.
type Viewport struct {
	cfg        Config
	zoom       float64
	panX, panY float64
}

// New creates a viewport showing the whole map.
func New(cfg Config) *Viewport {
	if cfg.MinZoom < 1 {
		cfg.MinZoom = 1
	}
	if cfg.MaxZoom < cfg.MinZoom {
		cfg.MaxZoom = cfg.MinZoom
	}
	if cfg.DisplayW <= 0 {
		cfg.DisplayW = 1
	}
	if cfg.DisplayH <= 0 {
		cfg.DisplayH = 1
	}
	return &Viewport{cfg: cfg, zoom: cfg.MinZoom}
}

// Config returns the normalised configuration.
func (v *Viewport) Config() Config { return v.cfg }

// Zoom returns the current zoom factor.
func (v *Viewport) Zoom() float64 { return v.zoom }

// Pan returns the current pan offset in screen units.
func (v *Viewport) Pan() (float64, float64) { return v.panX, v.panY }

// SetZoom sets an absolute zoom, keeping the pan inside the new limits.
func (v *Viewport) SetZoom(z float64) {
	if math.IsNaN(z) {
		return
	}
	v.zoom = clamp(z, v.cfg.MinZoom, v.cfg.MaxZoom)
	v.clampPan()
}

// OnZoom multiplies the zoom by factor about the display centre.
func (v *Viewport) OnZoom(factor float64) {
	v.OnZoomAt(float64(v.cfg.DisplayW)/2, float64(v.cfg.DisplayH)/2, factor)
}

// OnZoomAt multiplies the zoom by factor while keeping the map point under
// (sx,sy) fixed, as far as the pan limits allow.
func (v *Viewport) OnZoomAt(sx, sy, factor float64) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return
	}
	v.ZoomTo(sx, sy, v.zoom*factor)
}

// ZoomTo sets an absolute zoom anchored at (sx,sy). Pinch gestures use it with
// the zoom captured at gesture start times the pinch ratio.
func (v *Viewport) ZoomTo(sx, sy, z float64) {
	if math.IsNaN(z) {
		return
	}
	ox, oy, w, h := v.DrawRect()
	u := (sx - ox) / w
	t := (sy - oy) / h

	v.zoom = clamp(z, v.cfg.MinZoom, v.cfg.MaxZoom)
	nw, nh := v.zoomedSize()
	cx, cy := v.center()
	v.panX = sx - u*nw - (cx - nw/2)
	v.panY = sy - t*nh - (cy - nh/2)
	v.clampPan()
}

// OnPan moves the map by (dx,dy) screen units.
func (v *Viewport) OnPan(dx, dy float64) {
	v.panX += dx
	v.panY += dy
	v.clampPan()
}

// Reset returns to the minimum zoom with no pan.
func (v *Viewport) Reset() {
	v.zoom = v.cfg.MinZoom
	v.panX, v.panY = 0, 0
}

// DrawRect returns where the whole map is drawn on screen.
func (v *Viewport) DrawRect() (x, y, w, h float64) {
	w, h = v.zoomedSize()
	cx, cy := v.center()
	return cx - w/2 + v.panX, cy - h/2 + v.panY, w, h
}

// ScreenToMap converts a screen point to normalised raster coordinates, where
// (0,0) is the top-left of the image. ok is false outside the map.
func (v *Viewport) ScreenToMap(sx, sy float64) (nx, ny float64, ok bool) {
	ox, oy, w, h := v.DrawRect()
	nx = (sx - ox) / w
	ny = (sy - oy) / h
	if v.cfg.YUp {
		ny = 1 - ny
	}
	ok = nx >= 0 && nx < 1 && ny >= 0 && ny < 1
	return nx, ny, ok
}

// ScreenToPixel converts a screen point to a raster pixel.
func (v *Viewport) ScreenToPixel(sx, sy float64) (px, py int, ok bool) {
	ox, oy, w, h := v.DrawRect()
	u := (sx - ox) / w
	t := (sy - oy) / h
	if u < 0 || u >= 1 || t < 0 || t >= 1 {
		return 0, 0, false
	}
	px = int(u * float64(v.cfg.MapW))
	row := int(t * float64(v.cfg.MapH))
	if v.cfg.YUp {
		row = v.cfg.MapH - 1 - row
	}
	if px < 0 || px >= v.cfg.MapW || row < 0 || row >= v.cfg.MapH {
		return 0, 0, false
	}
	return px, row, true
}

// PixelToScreen returns the screen position of the centre of pixel (px,py).
func (v *Viewport) PixelToScreen(px, py int) (sx, sy float64) {
	ox, oy, w, h := v.DrawRect()
	u := (float64(px) + 0.5) / float64(v.cfg.MapW)
	t := (float64(py) + 0.5) / float64(v.cfg.MapH)
	if v.cfg.YUp {
		t = 1 - t
	}
	return ox + u*w, oy + t*h
}

func (v *Viewport) zoomedSize() (float64, float64) {
	return float64(v.cfg.DisplayW) * v.zoom, float64(v.cfg.DisplayH) * v.zoom
}

func (v *Viewport) center() (float64, float64) {
	return float64(v.cfg.DisplayW) / 2, float64(v.cfg.DisplayH) / 2
}

func (v *Viewport) clampPan() {
	if v.zoom <= v.cfg.MinZoom {
		v.panX, v.panY = 0, 0
		return
	}
	w, h := v.zoomedSize()
	mx := (w - float64(v.cfg.DisplayW)) / 2
	my := (h - float64(v.cfg.DisplayH)) / 2
	v.panX = clamp(v.panX, -mx, mx)
	v.panY = clamp(v.panY, -my, my)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
