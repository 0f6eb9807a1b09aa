package app

import (
	"image"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// PointerEventType enumerates generic pointer actions.
type PointerEventType int

const (
	PointerDown PointerEventType = iota
	PointerUp
	PointerDrag      // primary pointer moved past the tap threshold while held
	PointerTap       // press and release without dragging
	PointerPinchZoom // Scale is the distance ratio since the pinch began
)

// PointerEvent represents a unified mouse/touch action.
type PointerEvent struct {
	Type       PointerEventType
	ID         ebiten.TouchID
	Position   image.Point
	Delta      image.Point
	Scale      float64 // for pinch
	PinchBegin bool
	IsMouse    bool
	Time       time.Time
}

type touchState struct {
	start    image.Point
	last     image.Point
	dragging bool
}

type pinchState struct {
	id1, id2  ebiten.TouchID
	startDist float64
	active    bool
}

// PointerSource supplies raw pointer state. ebitenSource reads the live
// ebiten input; tests substitute a scripted source.
type PointerSource interface {
	Focused() bool
	Cursor() (int, int)
	MousePressed() bool
	Touches() []ebiten.TouchID
	TouchPosition(id ebiten.TouchID) (int, int)
}

type ebitenSource struct{}

func (ebitenSource) Focused() bool                              { return ebiten.IsFocused() }
func (ebitenSource) Cursor() (int, int)                         { return ebiten.CursorPosition() }
func (ebitenSource) MousePressed() bool                         { return ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) }
func (ebitenSource) Touches() []ebiten.TouchID                  { return ebiten.AppendTouchIDs(nil) }
func (ebitenSource) TouchPosition(id ebiten.TouchID) (int, int) { return ebiten.TouchPosition(id) }

// PointerInput normalizes mouse and touch input into pointer events.
type PointerInput struct {
	src             PointerSource
	events          []PointerEvent
	touches         map[ebiten.TouchID]*touchState
	mouseDown       bool
	mouse           touchState
	pinch           pinchState
	moveThresholdSq int
}

// NewPointerInput builds a pointer input helper reading from ebiten.
func NewPointerInput() *PointerInput {
	return newPointerInput(ebitenSource{})
}

func newPointerInput(src PointerSource) *PointerInput {
	return &PointerInput{
		src:             src,
		touches:         make(map[ebiten.TouchID]*touchState),
		moveThresholdSq: 64, // 8px
	}
}

// Events returns the collected pointer events for the last frame.
func (p *PointerInput) Events() []PointerEvent { return p.events }

// Update polls input and emits normalized pointer events.
func (p *PointerInput) Update() {
	now := time.Now()
	p.events = p.events[:0]

	// Skip capturing pointer input when the window is unfocused.
	if !p.src.Focused() {
		p.resetState()
		return
	}

	mx, my := p.src.Cursor()
	p.updateMouse(image.Pt(mx, my), p.src.MousePressed(), now)

	ids := p.src.Touches()
	active := make(map[ebiten.TouchID]bool, len(ids))
	for _, id := range ids {
		active[id] = true
		tx, ty := p.src.TouchPosition(id)
		pos := image.Pt(tx, ty)
		st, ok := p.touches[id]
		if !ok {
			p.touches[id] = &touchState{start: pos, last: pos}
			p.events = append(p.events, PointerEvent{Type: PointerDown, ID: id, Position: pos, Time: now})
			continue
		}
		// A second finger turns the gesture into a pinch; only single-finger moves pan.
		if len(ids) == 1 {
			p.track(st, pos, id, false, now)
		}
		st.last = pos
	}

	for id, st := range p.touches {
		if active[id] {
			continue
		}
		p.events = append(p.events, PointerEvent{Type: PointerUp, ID: id, Position: st.last, Time: now})
		if !st.dragging && !p.pinch.active && len(ids) == 0 {
			p.events = append(p.events, PointerEvent{Type: PointerTap, ID: id, Position: st.last, Time: now})
		}
		delete(p.touches, id)
	}

	p.updatePinch(ids, now)
}

func (p *PointerInput) updateMouse(pos image.Point, down bool, now time.Time) {
	switch {
	case down && !p.mouseDown:
		p.mouseDown = true
		p.mouse = touchState{start: pos, last: pos}
		p.events = append(p.events, PointerEvent{Type: PointerDown, Position: pos, IsMouse: true, Time: now})
	case down && p.mouseDown:
		p.track(&p.mouse, pos, 0, true, now)
		p.mouse.last = pos
	case !down && p.mouseDown:
		p.mouseDown = false
		p.events = append(p.events, PointerEvent{Type: PointerUp, Position: pos, IsMouse: true, Time: now})
		if !p.mouse.dragging {
			p.events = append(p.events, PointerEvent{Type: PointerTap, Position: pos, IsMouse: true, Time: now})
		}
	}
}

// track emits drag events once a held pointer leaves the tap radius.
func (p *PointerInput) track(st *touchState, pos image.Point, id ebiten.TouchID, mouse bool, now time.Time) {
	if pos == st.last {
		return
	}
	if !st.dragging && distSq(st.start, pos) > p.moveThresholdSq {
		st.dragging = true
		st.last = st.start
	}
	if st.dragging {
		p.events = append(p.events, PointerEvent{Type: PointerDrag, ID: id, Position: pos, Delta: pos.Sub(st.last), IsMouse: mouse, Time: now})
	}
}

func (p *PointerInput) updatePinch(ids []ebiten.TouchID, now time.Time) {
	if len(ids) < 2 {
		if len(ids) == 0 {
			p.pinch = pinchState{}
		}
		return
	}
	id1, id2 := ids[0], ids[1]
	x1, y1 := p.src.TouchPosition(id1)
	x2, y2 := p.src.TouchPosition(id2)
	dist := math.Hypot(float64(x2-x1), float64(y2-y1))
	mid := image.Pt((x1+x2)/2, (y1+y2)/2)

	if !p.pinch.active || p.pinch.id1 != id1 || p.pinch.id2 != id2 {
		p.pinch = pinchState{id1: id1, id2: id2, startDist: dist, active: true}
		p.events = append(p.events, PointerEvent{Type: PointerPinchZoom, ID: id1, Position: mid, Scale: 1, PinchBegin: true, Time: now})
		return
	}
	if dist > 0 && p.pinch.startDist > 0 {
		p.events = append(p.events, PointerEvent{Type: PointerPinchZoom, ID: id1, Position: mid, Scale: dist / p.pinch.startDist, Time: now})
	}
}

// Reset clears all pointer state and outstanding events.
func (p *PointerInput) Reset() {
	p.resetState()
}

func (p *PointerInput) resetState() {
	p.events = p.events[:0]
	p.mouseDown = false
	p.mouse = touchState{}
	p.pinch = pinchState{}

	for id := range p.touches {
		delete(p.touches, id)
	}
}

func distSq(a, b image.Point) int {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}
