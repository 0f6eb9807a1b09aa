package overlay

import (
	"image"
	"testing"

	"influencemap/raster"
	"influencemap/segment"
	"influencemap/territory"
)

// Two 2x2 red blocks separated by a white column, both named "Japan", and a
// green block named "Korea".
func fixture(t *testing.T) (*segment.Result, *territory.Registry) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 2))
	red := [4]uint8{220, 40, 40, 255}
	green := [4]uint8{60, 180, 70, 255}
	white := [4]uint8{255, 255, 255, 255}
	cols := [8][4]uint8{red, red, white, red, red, white, green, green}
	for y := 0; y < 2; y++ {
		for x, c := range cols {
			i := img.PixOffset(x, y)
			copy(img.Pix[i:i+4], c[:])
		}
	}
	res := segment.Segment(raster.FromImage(img), raster.DefaultClassifier(), segment.Params{Tolerance: 15, MinRegionSize: 1})
	if len(res.Regions) != 3 {
		t.Fatalf("fixture has %d regions", len(res.Regions))
	}
	res.Regions[0].Name, res.Regions[1].Name, res.Regions[2].Name = "Japan", "Japan", "Korea"
	reg, err := territory.Group(res.Regions)
	if err != nil {
		t.Fatalf("Group: %v", err)
	}
	return res, reg
}

func TestComposeEmpty(t *testing.T) {
	res, _ := fixture(t)
	c := NewCompositor(8, 2, DefaultStyle())
	img := c.Compose(res.Owner, res.Regions, nil, nil)
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			t.Fatalf("zero influence produced alpha %d", img.Pix[i])
		}
	}
	if c.Version() != 1 {
		t.Fatalf("Version = %d", c.Version())
	}
}

func TestComposeHeatAlpha(t *testing.T) {
	res, reg := fixture(t)
	reg.ApplyInfluence("Japan", 100)
	c := NewCompositor(8, 2, DefaultStyle())
	img := c.Compose(res.Owner, res.Regions, nil, nil)

	// Both Japan blocks at full heat, Korea and the border untouched.
	for _, x := range []int{0, 1, 3, 4} {
		if a := img.NRGBAAt(x, 0).A; a != 128 {
			t.Errorf("(%d,0) alpha = %d, want 128", x, a)
		}
	}
	for _, x := range []int{2, 5, 6, 7} {
		if a := img.NRGBAAt(x, 1).A; a != 0 {
			t.Errorf("(%d,1) alpha = %d, want 0", x, a)
		}
	}

	reg.SetInfluence("Japan", 50)
	img = c.Compose(res.Owner, res.Regions, nil, nil)
	if a := img.NRGBAAt(0, 0).A; a != 64 {
		t.Errorf("half influence alpha = %d, want 64", a)
	}
	if c.Version() != 2 {
		t.Errorf("Version = %d, want 2", c.Version())
	}
}

func TestComposeLayerOrder(t *testing.T) {
	res, reg := fixture(t)
	reg.ApplyInfluence("Korea", 40)
	japan, _ := reg.Lookup("Japan")
	korea, _ := reg.Lookup("Korea")
	style := DefaultStyle()
	c := NewCompositor(8, 2, style)

	img := c.Compose(res.Owner, res.Regions, japan, korea)
	hover := toNRGBA(style.Hover, style.HoverAlpha)
	sel := toNRGBA(style.Selection, style.SelectionAlpha)
	for _, x := range []int{0, 1, 3, 4} {
		if got := img.NRGBAAt(x, 0); got != hover {
			t.Errorf("(%d,0) = %v, want hover %v", x, got, hover)
		}
	}
	if got := img.NRGBAAt(6, 0); got != sel {
		t.Errorf("selection did not replace heat: %v", got)
	}

	// Selection wins over hover on the same territory.
	img = c.Compose(res.Owner, res.Regions, korea, korea)
	if got := img.NRGBAAt(7, 1); got != sel {
		t.Errorf("hover drawn over selection: %v", got)
	}

	// Clearing hover and selection restores the heat layer.
	img = c.Compose(res.Owner, res.Regions, nil, nil)
	if got, want := img.NRGBAAt(6, 0), style.HeatColor(40); got != want {
		t.Errorf("heat = %v, want %v", got, want)
	}
	if a := img.NRGBAAt(0, 0).A; a != 0 {
		t.Errorf("stale hover left alpha %d", a)
	}
}

func TestHeatColor(t *testing.T) {
	s := DefaultStyle()
	if c := s.HeatColor(0); c.A != 0 {
		t.Fatalf("zero influence visible: %v", c)
	}
	low, high := s.HeatColor(10), s.HeatColor(100)
	if low.A >= high.A {
		t.Fatalf("alpha not increasing: %d >= %d", low.A, high.A)
	}
	if high.R < high.G || high.R < high.B {
		t.Fatalf("heat is not red: %v", high)
	}
	if got := s.HeatColor(500); got != high {
		t.Fatalf("influence above max not clamped: %v", got)
	}
}
