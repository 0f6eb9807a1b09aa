package raster

import (
	"image"
	"image/color"
	"image/draw"
)

// Buffer is an immutable RGBA pixel grid decoded from the source map image.
type Buffer struct {
	img *image.NRGBA
	w   int
	h   int
}

// FromImage copies a decoded image into a new buffer whose origin is (0,0).
func FromImage(src image.Image) *Buffer {
	if src == nil {
		return nil
	}
	b := src.Bounds()
	img := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(img, img.Bounds(), src, b.Min, draw.Src)
	return &Buffer{img: img, w: b.Dx(), h: b.Dy()}
}

// New wraps raw non-premultiplied RGBA bytes (4 per pixel, row-major). The bytes are copied.
func New(w, h int, pix []uint8) *Buffer {
	if w <= 0 || h <= 0 || len(pix) < w*h*4 {
		return nil
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	copy(img.Pix, pix[:w*h*4])
	return &Buffer{img: img, w: w, h: h}
}

// Width returns the buffer width in pixels.
func (b *Buffer) Width() int { return b.w }

// Height returns the buffer height in pixels.
func (b *Buffer) Height() int { return b.h }

// Bounds returns the pixel rectangle of the buffer.
func (b *Buffer) Bounds() image.Rectangle { return image.Rect(0, 0, b.w, b.h) }

// In reports whether (x,y) lies inside a live buffer.
func (b *Buffer) In(x, y int) bool {
	return b.img != nil && x >= 0 && y >= 0 && x < b.w && y < b.h
}

// At returns the pixel colour at (x,y), or the zero colour outside the buffer.
func (b *Buffer) At(x, y int) color.NRGBA {
	if !b.In(x, y) {
		return color.NRGBA{}
	}
	i := b.img.PixOffset(x, y)
	p := b.img.Pix[i : i+4 : i+4]
	return color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
}

// Image exposes the buffer for read-only consumers such as texture upload.
// Callers must not write through the returned image.
func (b *Buffer) Image() image.Image {
	if b.img == nil {
		return image.NewNRGBA(image.Rectangle{})
	}
	return b.img
}

// Released reports whether Release has been called.
func (b *Buffer) Released() bool { return b.img == nil }

// Release drops the pixel storage on map teardown.
func (b *Buffer) Release() {
	b.img = nil
}
