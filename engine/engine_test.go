package engine

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"influencemap/gazetteer"
	"influencemap/raster"
	"influencemap/segment"
	"influencemap/typedef"
)

var (
	red   = color.NRGBA{220, 40, 40, 255}
	water = color.NRGBA{20, 30, 160, 255}
	white = color.NRGBA{255, 255, 255, 255}
	gray  = color.NRGBA{240, 240, 240, 255}
)

// block returns an 8x8 map whose pixels at x < landCols are red and the rest water.
func block(landCols int) *raster.Buffer {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if x < landCols {
				img.SetNRGBA(x, y, red)
			} else {
				img.SetNRGBA(x, y, water)
			}
		}
	}
	return raster.FromImage(img)
}

func testConfig(t *testing.T, entries ...gazetteer.Entry) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Segment = segment.Params{Tolerance: 15, MinRegionSize: 1}
	if len(entries) > 0 {
		g, err := gazetteer.New(entries, 2)
		if err != nil {
			t.Fatalf("gazetteer: %v", err)
		}
		cfg.Gazetteer = g
	}
	return cfg
}

func newMap(t *testing.T, buf *raster.Buffer, cfg Config) *Map {
	t.Helper()
	m, err := New(buf, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(m.Close)
	return m
}

func TestNewRejectsNilBuffer(t *testing.T) {
	if _, err := New(nil, DefaultConfig()); !errors.Is(err, ErrNilBuffer) {
		t.Fatalf("got %v", err)
	}
}

func TestQueryRoundTrip(t *testing.T) {
	// Centroid (3.5,3.5) of an 8x8 map normalises to 0.4375 -> key "0.44,0.44".
	m := newMap(t, block(8), testConfig(t, gazetteer.Entry{X: 0.44, Y: 0.44, Name: "Redland", Population: 5}))
	regions := m.Regions()
	if len(regions) != 1 || regions[0].Name != "Redland" || regions[0].PixelCount != 64 {
		t.Fatalf("regions = %+v", regions)
	}
	if m.Identity().Exact != 1 {
		t.Fatalf("identity report %+v", m.Identity())
	}

	for _, zoom := range []float64{1, 2.5} {
		m.SetZoom(zoom)
		for py := 0; py < 8; py++ {
			for px := 0; px < 8; px++ {
				sx, sy := m.Viewport().PixelToScreen(px, py)
				if _, _, ok := m.Viewport().ScreenToPixel(sx, sy); !ok {
					continue
				}
				r, ok := m.QueryAt(sx, sy)
				if !ok || r.ID != 0 {
					t.Fatalf("zoom %v: pixel (%d,%d) at screen (%v,%v) did not resolve", zoom, px, py, sx, sy)
				}
			}
		}
	}
	if _, ok := m.QueryAt(-5, 10); ok {
		t.Fatalf("query outside the display resolved")
	}
}

// redOnWhite returns an 8x8 white map with a red 4x4 block in the top-left corner.
func redOnWhite() *raster.Buffer {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if x < 4 && y < 4 {
				img.SetNRGBA(x, y, red)
			} else {
				img.SetNRGBA(x, y, white)
			}
		}
	}
	return raster.FromImage(img)
}

func TestRedBlockOnWhite(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Segment.MinRegionSize = 1
	m := newMap(t, redOnWhite(), cfg)

	regions := m.Regions()
	if len(regions) != 1 || regions[0].PixelCount != 16 {
		t.Fatalf("regions = %+v", regions)
	}
	if regions[0].CentroidX != 1.5 || regions[0].CentroidY != 1.5 {
		t.Fatalf("centroid = %v,%v, want 1.5,1.5", regions[0].CentroidX, regions[0].CentroidY)
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if x < 4 && y < 4 {
				continue
			}
			if id := m.seg.Owner.At(x, y); id != typedef.NoRegion {
				t.Fatalf("white pixel (%d,%d) owned by region %d", x, y, id)
			}
			if r, ok := m.RegionAtPixel(x, y); ok {
				t.Fatalf("white pixel (%d,%d) resolved to region %d", x, y, r.ID)
			}
		}
	}

	sx, sy := m.Viewport().PixelToScreen(1, 1)
	if r, ok := m.QueryAt(sx, sy); !ok || r.ID != 0 {
		t.Fatalf("query at red pixel (1,1) = %v, %v", r, ok)
	}
	sx, sy = m.Viewport().PixelToScreen(6, 6)
	if _, ok := m.QueryAt(sx, sy); ok {
		t.Fatalf("query at white pixel (6,6) resolved")
	}
}

func TestPixelPerfectScrubsGridLines(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, red)
		}
		img.SetNRGBA(3, y, gray)
	}

	plain := DefaultConfig()
	plain.Segment.MinRegionSize = 1
	if n := len(newMap(t, raster.FromImage(img), plain).Regions()); n != 2 {
		t.Fatalf("unscrubbed map has %d regions, want the line to split it in 2", n)
	}

	cfg := PixelPerfectConfig()
	cfg.Segment.MinRegionSize = 1
	m := newMap(t, raster.FromImage(img), cfg)
	if n := len(m.Regions()); n != 1 {
		t.Fatalf("scrubbed map has %d regions, want 1", n)
	}
	if _, ok := m.RegionAtPixel(2, 4); !ok {
		t.Fatalf("land beside the line did not resolve")
	}
	// The loaded pixel is still a line, so it stays unresolvable.
	if _, ok := m.RegionAtPixel(3, 4); ok {
		t.Fatalf("grid line pixel resolved")
	}
}

func TestScrubFollowsSettings(t *testing.T) {
	s := typedef.DefaultSettings()
	if ConfigFromSettings(s, nil).ScrubGridLines {
		t.Fatalf("default settings scrub grid lines")
	}
	s.ScrubGridLines = true
	if !ConfigFromSettings(s, nil).ScrubGridLines {
		t.Fatalf("scrubGridLines setting ignored")
	}
}

func TestWaterNeverResolves(t *testing.T) {
	m := newMap(t, block(4), testConfig(t))
	for py := 0; py < 8; py++ {
		for px := 0; px < 8; px++ {
			r, ok := m.RegionAtPixel(px, py)
			if px >= 4 && ok {
				t.Fatalf("water pixel (%d,%d) resolved to %d", px, py, r.ID)
			}
			if px < 4 && !ok {
				t.Fatalf("land pixel (%d,%d) did not resolve", px, py)
			}
		}
	}
	sx, sy := m.Viewport().PixelToScreen(6, 3)
	if _, ok := m.QueryAt(sx, sy); ok {
		t.Fatalf("screen query over water resolved")
	}
}

func TestFallbackIdentity(t *testing.T) {
	m := newMap(t, block(8), testConfig(t, gazetteer.Entry{X: 0.9, Y: 0.9, Name: "Far", Population: 1}))
	r := m.Regions()[0]
	if r.Name != "Region 0" || r.Population != 10 {
		t.Fatalf("fallback identity = %q/%v", r.Name, r.Population)
	}
}

func TestSelectApplyAndGlobalInfluence(t *testing.T) {
	m := newMap(t, block(4), testConfig(t, gazetteer.Entry{X: 0.19, Y: 0.44, Name: "West", Population: 20}))
	lx, ly := m.Viewport().PixelToScreen(1, 1)
	tr := m.Select(lx, ly)
	if tr == nil || tr.Name != "West" {
		t.Fatalf("Select = %v", tr)
	}
	v, ok := m.ApplyToSelected(15)
	if !ok || v != 15 {
		t.Fatalf("ApplyToSelected = %v, %v", v, ok)
	}
	if g := m.GlobalInfluence(); math.Abs(g-15) > 1e-9 {
		t.Fatalf("GlobalInfluence = %v", g)
	}

	wx, wy := m.Viewport().PixelToScreen(6, 6)
	if m.Select(wx, wy) != nil || m.Selected() != nil {
		t.Fatalf("clicking water kept the selection")
	}
	if _, ok := m.ApplyToSelected(15); ok {
		t.Fatalf("applied with nothing selected")
	}
	if _, err := m.ApplyInfluence("Nowhere", 1); err == nil {
		t.Fatalf("unknown territory accepted")
	}
}

func TestOverlayRecomposesOnChange(t *testing.T) {
	m := newMap(t, block(4), testConfig(t, gazetteer.Entry{X: 0.19, Y: 0.44, Name: "West", Population: 20}))
	img := m.OverlayRaster()
	first := m.OverlayVersion()
	if img.NRGBAAt(0, 0).A != 0 {
		t.Fatalf("overlay visible before any influence")
	}
	m.OverlayRaster()
	if m.OverlayVersion() != first {
		t.Fatalf("unchanged map recomposed")
	}

	if _, err := m.ApplyInfluence("West", 100); err != nil {
		t.Fatal(err)
	}
	img = m.OverlayRaster()
	if m.OverlayVersion() == first {
		t.Fatalf("influence change did not recompose")
	}
	if img.NRGBAAt(0, 0).A != 128 || img.NRGBAAt(7, 0).A != 0 {
		t.Fatalf("overlay alpha land=%d water=%d", img.NRGBAAt(0, 0).A, img.NRGBAAt(7, 0).A)
	}

	hx, hy := m.Viewport().PixelToScreen(2, 2)
	if m.Hover(hx, hy) == nil {
		t.Fatalf("hover found nothing")
	}
	before := m.OverlayVersion()
	m.OverlayRaster()
	if m.OverlayVersion() == before {
		t.Fatalf("hover did not recompose")
	}
}

func TestOverlayFollowsDirectTerritoryWrites(t *testing.T) {
	m := newMap(t, block(4), testConfig(t, gazetteer.Entry{X: 0.19, Y: 0.44, Name: "West", Population: 20}))
	if img := m.OverlayRaster(); img.NRGBAAt(0, 0).A != 0 {
		t.Fatalf("overlay visible before any influence")
	}

	sx, sy := m.Viewport().PixelToScreen(1, 1)
	tr := m.Select(sx, sy)
	if tr == nil {
		t.Fatalf("select found nothing")
	}
	m.OverlayRaster()
	tr.Apply(80)
	if a := m.OverlayRaster().NRGBAAt(0, 0).A; a == 0 {
		t.Fatalf("territory at influence 80 but overlay alpha at (0,0) is %d", a)
	}

	v, ok := m.ApplyToSelected(20)
	if !ok || v != 100 {
		t.Fatalf("ApplyToSelected = %v, %v", v, ok)
	}
	if view, _ := m.Territory("West"); view.Influence != 100 {
		t.Fatalf("territory view = %+v", view)
	}
}

func TestSnapshotRestore(t *testing.T) {
	cfg := testConfig(t, gazetteer.Entry{X: 0.19, Y: 0.44, Name: "West", Population: 20})
	a := newMap(t, block(4), cfg)
	a.ApplyInfluence("West", 42)
	snap := a.Snapshot()

	b := newMap(t, block(4), cfg)
	snap["Atlantis"] = 99
	if n := b.Restore(snap); n != 1 {
		t.Fatalf("Restore = %d, want 1", n)
	}
	if tr, _ := b.Territory("West"); tr.Influence != 42 {
		t.Fatalf("restored influence = %v", tr.Influence)
	}
}

func TestCloseReleases(t *testing.T) {
	m, err := New(block(8), testConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	m.Close()
	if _, ok := m.QueryAt(400, 240); ok {
		t.Fatalf("closed map answered a query")
	}
	if m.Regions() != nil || m.OverlayRaster() != nil || m.GlobalInfluence() != 0 {
		t.Fatalf("closed map still returns data")
	}
	m.Close()
}

func TestAllWaterMap(t *testing.T) {
	m := newMap(t, block(0), testConfig(t))
	if len(m.Regions()) != 0 || m.TerritoryCount() != 0 {
		t.Fatalf("all-water map has regions")
	}
	if m.GlobalInfluence() != 0 {
		t.Fatalf("GlobalInfluence = %v", m.GlobalInfluence())
	}
	if _, ok := m.QueryAt(400, 240); ok {
		t.Fatalf("query on all-water map resolved")
	}
}
