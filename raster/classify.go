package raster

import "image/color"

// Class is the coarse category of a map pixel.
type Class uint8

const (
	Land Class = iota
	Water
	Border
)

func (c Class) String() string {
	switch c {
	case Land:
		return "land"
	case Water:
		return "water"
	case Border:
		return "border"
	default:
		return "unknown"
	}
}

// Band is a box in normalised RGB space. Bounds are exclusive, so a zero Min
// with a Max of 0.3 means "below 0.3". Unset maxima are treated as open.
type Band struct {
	MinR float64 `json:"minR"`
	MaxR float64 `json:"maxR"`
	MinG float64 `json:"minG"`
	MaxG float64 `json:"maxG"`
	MinB float64 `json:"minB"`
	MaxB float64 `json:"maxB"`
}

func (b Band) contains(r, g, bl float64) bool {
	return inRange(r, b.MinR, b.MaxR) && inRange(g, b.MinG, b.MaxG) && inRange(bl, b.MinB, b.MaxB)
}

func inRange(v, lo, hi float64) bool {
	if lo > 0 && v <= lo {
		return false
	}
	if hi > 0 && v >= hi {
		return false
	}
	return true
}

// DefaultWaterBands are the ocean colours of the reference world map.
func DefaultWaterBands() []Band {
	return []Band{
		{MinR: 0.3, MaxR: 0.6, MaxG: 0.5, MinB: 0.6, MaxB: 0.9},
		{MaxR: 0.3, MaxG: 0.3, MinB: 0.4},
		{MaxR: 0.4, MaxG: 0.5, MinB: 0.6},
	}
}

// Classifier separates land from water and border/background pixels.
type Classifier struct {
	WaterBands []Band `json:"waterBands"`
}

// DefaultClassifier returns a classifier with DefaultWaterBands.
func DefaultClassifier() Classifier {
	return Classifier{WaterBands: DefaultWaterBands()}
}

// Classify checks border/background first, then water, so a light gray that
// also falls inside a water band is still a border.
func (c Classifier) Classify(px color.NRGBA) Class {
	r := float64(px.R) / 255
	g := float64(px.G) / 255
	b := float64(px.B) / 255

	if IsBorder(r, g, b) {
		return Border
	}
	for _, band := range c.WaterBands {
		if band.contains(r, g, b) {
			return Water
		}
	}
	return Land
}

// IsBorder reports near-white, near-black and light-gray background colours.
func IsBorder(r, g, b float64) bool {
	if r > 0.95 && g > 0.95 && b > 0.95 {
		return true
	}
	if r < 0.10 && g < 0.10 && b < 0.10 {
		return true
	}
	return abs(r-g) < 0.05 && abs(g-b) < 0.05 && r > 0.9
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
