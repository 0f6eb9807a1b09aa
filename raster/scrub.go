package raster

import (
	"image"
	"image/color"
)

// isGrayish matches the light gray/white of time-zone and graticule lines.
func isGrayish(c color.NRGBA) bool {
	const tolerance = 0.1
	r := float64(c.R) / 255
	g := float64(c.G) / 255
	b := float64(c.B) / 255
	avg := (r + g + b) / 3
	return abs(r-avg) < tolerance && abs(g-avg) < tolerance && abs(b-avg) < tolerance && avg > 0.7
}

// ScrubGridLines returns a copy of buf with thin vertical gray lines painted
// over by their left neighbour. A pixel is a line pixel when it and the pixels
// directly above and below it are grayish while both horizontal neighbours are
// not, so the edge of a white or gray background is never touched.
func ScrubGridLines(buf *Buffer) *Buffer {
	if buf == nil || buf.Released() {
		return buf
	}
	w, h := buf.w, buf.h
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	copy(out.Pix, buf.img.Pix)

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			if !isGrayish(buf.At(x, y)) || !isGrayish(buf.At(x, y-1)) || !isGrayish(buf.At(x, y+1)) {
				continue
			}
			left, right := buf.At(x-1, y), buf.At(x+1, y)
			if isGrayish(left) || isGrayish(right) {
				continue
			}
			out.SetNRGBA(x, y, left)
		}
	}
	return &Buffer{img: out, w: w, h: h}
}

// Sample returns the colour and class at a pixel. ok is false outside the buffer.
func Sample(buf *Buffer, cls Classifier, x, y int) (color.NRGBA, Class, bool) {
	if buf == nil || !buf.In(x, y) {
		return color.NRGBA{}, Border, false
	}
	c := buf.At(x, y)
	return c, cls.Classify(c), true
}
