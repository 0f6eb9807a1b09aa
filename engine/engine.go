package engine

import (
	"errors"
	"fmt"
	"image"
	"time"

	"influencemap/gazetteer"
	"influencemap/overlay"
	"influencemap/raster"
	"influencemap/segment"
	"influencemap/territory"
	"influencemap/typedef"
	"influencemap/viewport"
)

var (
	ErrNilBuffer = errors.New("map buffer is nil or empty")
	ErrClosed    = errors.New("map is closed")
)

// Map is one loaded map: the raster, its regions and territories, the overlay
// and the viewport. A Map is not safe for concurrent use; it belongs to the
// goroutine that drives rendering and input.
type Map struct {
	raw    *raster.Buffer // as loaded, used for classification
	buf    *raster.Buffer // segmented, scrubbed when the variant asks for it
	cls    raster.Classifier
	seg    *segment.Result
	reg    *territory.Registry
	view   *viewport.Viewport
	comp   *overlay.Compositor
	report gazetteer.Report

	hovered  *typedef.Territory
	selected *typedef.Territory
	dirty    bool
	drawn    []float64 // region influence at the last compose
	closed   bool
}

// New builds a map synchronously: optional grid-line scrub, segmentation,
// identity resolution and grouping. An image without land yields a valid map
// with no regions.
func New(buf *raster.Buffer, cfg Config) (*Map, error) {
	if buf == nil || buf.Released() || buf.Width() == 0 || buf.Height() == 0 {
		return nil, ErrNilBuffer
	}
	start := time.Now()

	raw := buf
	if cfg.ScrubGridLines {
		buf = raster.ScrubGridLines(buf)
	}
	g := cfg.Gazetteer
	if g == nil {
		g = gazetteer.World()
	}

	seg := segment.Segment(buf, cfg.Classifier, cfg.Segment)
	report := gazetteer.Resolve(seg.Regions, buf.Width(), buf.Height(), g, cfg.Identity)
	reg, err := territory.Group(seg.Regions)
	if err != nil {
		return nil, fmt.Errorf("failed to build map: %w", err)
	}

	vc := cfg.Viewport
	vc.MapW, vc.MapH = buf.Width(), buf.Height()

	m := &Map{
		raw:    raw,
		buf:    buf,
		cls:    cfg.Classifier,
		seg:    seg,
		reg:    reg,
		view:   viewport.New(vc),
		comp:   overlay.NewCompositor(buf.Width(), buf.Height(), cfg.Style),
		report: report,
		dirty:  true,
		drawn:  make([]float64, len(seg.Regions)),
	}
	fmt.Printf("[MAP] Ready: %dx%d, %d regions, %d territories in %v\n",
		buf.Width(), buf.Height(), len(seg.Regions), reg.Len(), time.Since(start))
	return m, nil
}

// Width returns the map width in pixels.
func (m *Map) Width() int { return m.buf.Width() }

// Height returns the map height in pixels.
func (m *Map) Height() int { return m.buf.Height() }

// Identity returns how regions were named at construction.
func (m *Map) Identity() gazetteer.Report { return m.report }

// Discarded returns the number of fills rejected as artifacts.
func (m *Map) Discarded() int { return m.seg.Discarded }

// Viewport exposes zoom and pan state.
func (m *Map) Viewport() *viewport.Viewport { return m.view }

// RegionAtPixel returns the land region owning raster pixel (px,py). Pixels
// that are water or border in the loaded image never resolve, even if an owner
// entry were present.
func (m *Map) RegionAtPixel(px, py int) (*typedef.Region, bool) {
	if m.closed {
		return nil, false
	}
	_, class, ok := raster.Sample(m.raw, m.cls, px, py)
	if !ok || class != raster.Land {
		return nil, false
	}
	id := m.seg.Owner.At(px, py)
	if id == typedef.NoRegion {
		return nil, false
	}
	return m.seg.Regions[id], true
}

// QueryAt returns the region under a screen point.
func (m *Map) QueryAt(sx, sy float64) (*typedef.Region, bool) {
	if m.closed {
		return nil, false
	}
	px, py, ok := m.view.ScreenToPixel(sx, sy)
	if !ok {
		return nil, false
	}
	return m.RegionAtPixel(px, py)
}

// OnZoom zooms about the display centre.
func (m *Map) OnZoom(factor float64) { m.view.OnZoom(factor) }

// OnZoomAt zooms keeping the map point under (sx,sy) fixed.
func (m *Map) OnZoomAt(sx, sy, factor float64) { m.view.OnZoomAt(sx, sy, factor) }

// ZoomTo sets an absolute zoom anchored at (sx,sy).
func (m *Map) ZoomTo(sx, sy, z float64) { m.view.ZoomTo(sx, sy, z) }

// SetZoom sets an absolute zoom.
func (m *Map) SetZoom(z float64) { m.view.SetZoom(z) }

// OnPan moves the map by a screen delta.
func (m *Map) OnPan(dx, dy float64) { m.view.OnPan(dx, dy) }

// ResetView shows the whole map again.
func (m *Map) ResetView() { m.view.Reset() }

// Hover highlights the territory under the cursor.
func (m *Map) Hover(sx, sy float64) *typedef.Territory {
	var t *typedef.Territory
	if r, ok := m.QueryAt(sx, sy); ok {
		t = r.Territory()
	}
	if t != m.hovered {
		m.hovered = t
		m.dirty = true
	}
	return t
}

// Select selects the territory under a screen point. Clicking anything that is
// not a region clears the selection.
func (m *Map) Select(sx, sy float64) *typedef.Territory {
	var t *typedef.Territory
	if r, ok := m.QueryAt(sx, sy); ok {
		t = r.Territory()
	}
	if t != m.selected {
		m.selected = t
		m.dirty = true
	}
	if t != nil {
		fmt.Printf("[MAP] Selected %s (%d regions, influence %.0f%%)\n", t.Name, len(t.Members), t.Influence())
	}
	return t
}

// Hovered returns the hovered territory, or nil.
func (m *Map) Hovered() *typedef.Territory { return m.hovered }

// Selected returns the selected territory, or nil.
func (m *Map) Selected() *typedef.Territory { return m.selected }

// ClearSelection drops the current selection.
func (m *Map) ClearSelection() {
	if m.selected != nil {
		m.selected = nil
		m.dirty = true
	}
}

// ApplyInfluence adds delta to the named territory and returns the new value.
func (m *Map) ApplyInfluence(name string, delta float64) (float64, error) {
	if m.closed {
		return 0, ErrClosed
	}
	v, err := m.reg.ApplyInfluence(name, delta)
	if err != nil {
		return 0, err
	}
	m.dirty = true
	return v, nil
}

// ApplyToSelected applies delta to the selected territory. ok is false when
// nothing is selected.
func (m *Map) ApplyToSelected(delta float64) (float64, bool) {
	if m.closed || m.selected == nil {
		return 0, false
	}
	v, err := m.ApplyInfluence(m.selected.Name, delta)
	if err != nil {
		return 0, false
	}
	return v, true
}

// GlobalInfluence returns the population-weighted influence over territories.
func (m *Map) GlobalInfluence() float64 {
	if m.closed {
		return 0
	}
	return m.reg.GlobalInfluence()
}

// Territory returns a copy of the named territory's state. Influence changes
// go through ApplyInfluence.
func (m *Map) Territory(name string) (typedef.TerritoryView, bool) {
	if m.closed {
		return typedef.TerritoryView{}, false
	}
	t, ok := m.reg.Lookup(name)
	if !ok {
		return typedef.TerritoryView{}, false
	}
	return t.View(), true
}

// TerritoryCount returns the number of unique territories.
func (m *Map) TerritoryCount() int {
	if m.closed {
		return 0
	}
	return m.reg.Len()
}

// Regions returns a read model of every region in id order.
func (m *Map) Regions() []typedef.RegionView {
	if m.closed {
		return nil
	}
	out := make([]typedef.RegionView, len(m.seg.Regions))
	for i, r := range m.seg.Regions {
		out[i] = r.View()
	}
	return out
}

// Territories returns a read model of every territory in first-seen order.
func (m *Map) Territories() []typedef.TerritoryView {
	if m.closed {
		return nil
	}
	ts := m.reg.Territories()
	out := make([]typedef.TerritoryView, len(ts))
	for i, t := range ts {
		out[i] = t.View()
	}
	return out
}

// OverlayRaster returns the overlay for the current region state. It is
// recomposed in full whenever any region influence, the hover or the
// selection differs from what the last image was drawn with.
func (m *Map) OverlayRaster() *image.NRGBA {
	if m.closed {
		return nil
	}
	if m.dirty || m.influenceChanged() {
		m.comp.Compose(m.seg.Owner, m.seg.Regions, m.hovered, m.selected)
		for i, r := range m.seg.Regions {
			m.drawn[i] = r.Influence()
		}
		m.dirty = false
	}
	return m.comp.Image()
}

// influenceChanged reports whether a region was written outside ApplyInfluence
// since the last compose.
func (m *Map) influenceChanged() bool {
	for i, r := range m.seg.Regions {
		if r.Influence() != m.drawn[i] {
			return true
		}
	}
	return false
}

// OverlayVersion changes whenever OverlayRaster produced a new image.
func (m *Map) OverlayVersion() uint64 { return m.comp.Version() }

// Base returns the map image the regions were segmented from.
func (m *Map) Base() image.Image { return m.buf.Image() }

// Snapshot returns the influence of every territory by name.
func (m *Map) Snapshot() map[string]float64 {
	out := make(map[string]float64)
	if m.closed {
		return out
	}
	for _, t := range m.reg.Territories() {
		out[t.Name] = t.Influence()
	}
	return out
}

// Restore sets territory influence from a snapshot. Names the map does not
// know are skipped; the number of territories restored is returned.
func (m *Map) Restore(snap map[string]float64) int {
	if m.closed {
		return 0
	}
	n := 0
	for name, v := range snap {
		if _, err := m.reg.SetInfluence(name, v); err != nil {
			continue
		}
		n++
	}
	m.dirty = true
	fmt.Printf("[SNAPSHOT] Restored %d of %d territories\n", n, len(snap))
	return n
}

// Close releases the raster, owner index and overlay. Queries on a closed map
// return nothing.
func (m *Map) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.hovered, m.selected = nil, nil
	m.seg.Owner.Release()
	if m.raw != m.buf {
		m.raw.Release()
	}
	m.buf.Release()
	m.comp.Release()
}
