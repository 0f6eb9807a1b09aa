package app

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"influencemap/engine"
	"influencemap/typedef"
)

const quicksaveName = "quicksave"

// Game renders one map and turns input into engine calls. It owns the map:
// every other goroutine reaches it through the command queue drained in Update.
type Game struct {
	m        *engine.Map
	settings typedef.Settings
	cmds     *Commands
	maps     *MapManager
	pointer  *PointerInput
	text     *TextRenderer
	mapName  string

	pinchZoom   float64
	showHUD     bool
	status      string
	statusUntil time.Time
}

// NewGame creates the ebiten game for m.
func NewGame(m *engine.Map, settings typedef.Settings, cmds *Commands, maps *MapManager, mapName string) *Game {
	typedef.NormalizeSettings(&settings)
	return &Game{
		m:        m,
		settings: settings,
		cmds:     cmds,
		maps:     maps,
		pointer:  NewPointerInput(),
		text:     NewTextRenderer(nil),
		mapName:  mapName,
		showHUD:  true,
	}
}

// toView converts an ebiten (y-down) screen point to viewport coordinates.
func (g *Game) toView(x, y int) (float64, float64) {
	if g.settings.YUp {
		return float64(x), float64(g.settings.DisplayHeight - y)
	}
	return float64(x), float64(y)
}

// Update handles one frame of input.
func (g *Game) Update() error {
	if g.cmds != nil {
		g.cmds.Drain(g.m)
	}

	g.pointer.Update()
	for _, ev := range g.pointer.Events() {
		switch ev.Type {
		case PointerDrag:
			dy := float64(ev.Delta.Y)
			if g.settings.YUp {
				dy = -dy
			}
			g.m.OnPan(float64(ev.Delta.X), dy)
		case PointerTap:
			sx, sy := g.toView(ev.Position.X, ev.Position.Y)
			g.m.Select(sx, sy)
		case PointerPinchZoom:
			if ev.PinchBegin {
				g.pinchZoom = g.m.Viewport().Zoom()
				continue
			}
			sx, sy := g.toView(ev.Position.X, ev.Position.Y)
			g.m.ZoomTo(sx, sy, g.pinchZoom*ev.Scale)
		}
	}

	cx, cy := ebiten.CursorPosition()
	sx, sy := g.toView(cx, cy)
	if _, wy := ebiten.Wheel(); wy > 0 {
		g.m.OnZoomAt(sx, sy, g.settings.ZoomStep)
	} else if wy < 0 {
		g.m.OnZoomAt(sx, sy, 1/g.settings.ZoomStep)
	}
	g.m.Hover(sx, sy)

	g.handleKeys()
	return nil
}

func (g *Game) handleKeys() {
	kb := g.settings.Keybinds
	step := g.settings.ZoomStep

	if bindingPressed(kb.ZoomIn) {
		g.m.OnZoom(step)
	}
	if bindingPressed(kb.ZoomOut) {
		g.m.OnZoom(1 / step)
	}
	if bindingJustPressed(kb.ApplyInfluence) {
		if v, ok := g.m.ApplyToSelected(g.settings.InfluenceStep); ok {
			g.setStatus(fmt.Sprintf("%s influence %.0f%%", g.m.Selected().Name, v))
		}
	}
	if bindingJustPressed(kb.ResetView) {
		g.m.ResetView()
	}
	if bindingJustPressed(kb.ClearSelection) {
		g.m.ClearSelection()
	}
	if bindingJustPressed(kb.ToggleHUD) {
		g.showHUD = !g.showHUD
	}
	if bindingJustPressed(kb.SaveSnapshot) {
		if err := SaveSession(g.m, g.mapName, quicksaveName); err != nil {
			g.setStatus("Save failed: " + err.Error())
		} else {
			g.setStatus("Saved " + quicksaveName)
		}
	}
	if bindingJustPressed(kb.LoadSnapshot) {
		if n, err := LoadSession(g.m, quicksaveName); err != nil {
			g.setStatus("Load failed: " + err.Error())
		} else {
			g.setStatus(fmt.Sprintf("Loaded %s (%d territories)", quicksaveName, n))
		}
	}
	if bindingJustPressed(kb.CopySelection) {
		if t := g.m.Selected(); t != nil {
			v := t.View()
			summary := fmt.Sprintf("%s: population %.1fM, influence %.0f%%, %d regions", v.Name, v.Population, v.Influence, len(v.RegionIDs))
			if err := WriteClipboard(summary); err != nil {
				g.setStatus("Copy failed: " + err.Error())
			} else {
				g.setStatus("Copied " + v.Name)
			}
		}
	}
}

func (g *Game) setStatus(s string) {
	fmt.Printf("[APP] %s\n", s)
	g.status = s
	g.statusUntil = time.Now().Add(3 * time.Second)
}

// Draw renders the map, the influence overlay and the HUD.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{10, 20, 60, 255})

	base, overlay := g.maps.Textures(g.m)
	x, y, w, h := g.m.Viewport().DrawRect()
	if g.settings.YUp {
		y = float64(g.settings.DisplayHeight) - (y + h)
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w/float64(g.m.Width()), h/float64(g.m.Height()))
	op.GeoM.Translate(x, y)
	op.Filter = ebiten.FilterNearest
	screen.DrawImage(base, op)
	if overlay != nil {
		screen.DrawImage(overlay, op)
	}

	if g.showHUD {
		g.drawHUD(screen)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	g.text.DrawPanel(screen, 4, 4, []string{
		"INFLUENCE MAP",
		fmt.Sprintf("Global influence: %.0f%%", g.m.GlobalInfluence()),
		fmt.Sprintf("Territories: %d  Zoom: %.2fx", g.m.TerritoryCount(), g.m.Viewport().Zoom()),
	}, color.White)

	if t := g.m.Hovered(); t != nil {
		lines := []string{
			"Territory: " + t.Name,
			fmt.Sprintf("Population: %.1fM", t.Population()),
			fmt.Sprintf("Influence: %.0f%%", t.Influence()),
		}
		h := len(lines)*(g.text.GetLineHeight()+3) + 6
		g.text.DrawPanel(screen, 4, g.settings.DisplayHeight-h-4, lines, color.RGBA{255, 255, 80, 255})
	}
	if g.status != "" && time.Now().Before(g.statusUntil) {
		x := g.settings.DisplayWidth - g.text.MeasureString(g.status) - 16
		g.text.DrawPanel(screen, x, 4, []string{g.status}, color.RGBA{80, 255, 255, 255})
	}
}

// Layout keeps a fixed logical display; ebiten scales it to the window.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.settings.DisplayWidth, g.settings.DisplayHeight
}

// Close releases textures and the map.
func (g *Game) Close() {
	g.maps.Cleanup()
	g.m.Close()
}
