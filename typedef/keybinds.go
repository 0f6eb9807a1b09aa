package typedef

import (
	"strconv"
	"strings"
)

// Keybinds stores user-configurable keyboard shortcuts for map actions.
type Keybinds struct {
	ApplyInfluence string `json:"applyInfluence,omitempty"`
	ZoomIn         string `json:"zoomIn,omitempty"`
	ZoomOut        string `json:"zoomOut,omitempty"`
	ResetView      string `json:"resetView,omitempty"`
	ClearSelection string `json:"clearSelection,omitempty"`
	SaveSnapshot   string `json:"saveSnapshot,omitempty"`
	LoadSnapshot   string `json:"loadSnapshot,omitempty"`
	CopySelection  string `json:"copySelection,omitempty"`
	ToggleHUD      string `json:"toggleHud,omitempty"`
}

// DefaultKeybinds returns the baseline key configuration.
func DefaultKeybinds() Keybinds {
	return Keybinds{
		ApplyInfluence: "SPACE",
		ZoomIn:         "EQUAL",
		ZoomOut:        "MINUS",
		ResetView:      "R",
		ClearSelection: "ESCAPE",
		SaveSnapshot:   "F5",
		LoadSnapshot:   "F9",
		CopySelection:  "C",
		ToggleHUD:      "H",
	}
}

// CanonicalizeBinding trims, uppercases, and validates supported key names.
// Allowed values: empty string (disabled), single letters A-Z, function keys F1-F12, and common names like SPACE, ESCAPE, ENTER, TAB, EQUAL, MINUS, HOME, END, PAGEUP, PAGEDOWN, and arrow keys (UP/DOWN/LEFT/RIGHT).
// Returns the canonical uppercase name and true when valid.
func CanonicalizeBinding(binding string) (string, bool) {
	val := strings.TrimSpace(binding)
	if val == "" {
		return "", true // empty means unbound/disabled
	}
	upper := strings.ToUpper(val)

	// Single-letter A-Z
	if len(upper) == 1 {
		ch := upper[0]
		if ch >= 'A' && ch <= 'Z' {
			return upper, true
		}
	}

	// Function keys F1-F12
	if strings.HasPrefix(upper, "F") && len(upper) > 1 {
		if n, err := strconv.Atoi(upper[1:]); err == nil && n >= 1 && n <= 12 {
			return "F" + strconv.Itoa(n), true
		}
	}

	switch upper {
	case "SPACE", "SPACEBAR":
		return "SPACE", true
	case "ESC", "ESCAPE":
		return "ESCAPE", true
	case "ENTER", "RETURN":
		return "ENTER", true
	case "TAB":
		return "TAB", true
	case "=", "+", "EQUAL", "EQUALS", "PLUS":
		return "EQUAL", true
	case "-", "MINUS":
		return "MINUS", true
	case "HOME":
		return "HOME", true
	case "END":
		return "END", true
	case "PAGEUP", "PGUP":
		return "PAGEUP", true
	case "PAGEDOWN", "PGDN":
		return "PAGEDOWN", true
	case "UP", "ARROWUP":
		return "UP", true
	case "DOWN", "ARROWDOWN":
		return "DOWN", true
	case "LEFT", "ARROWLEFT":
		return "LEFT", true
	case "RIGHT", "ARROWRIGHT":
		return "RIGHT", true
	default:
		return "", false
	}
}

// NormalizeKeybinds uppercases, canonicalizes, and fills defaults when missing or invalid.
func NormalizeKeybinds(k *Keybinds) {
	if k == nil {
		return
	}
	defaults := DefaultKeybinds()
	normalize := func(target *string, fallback string) {
		if val, ok := CanonicalizeBinding(*target); ok {
			*target = val
			return
		}
		*target = fallback
	}

	normalize(&k.ApplyInfluence, defaults.ApplyInfluence)
	normalize(&k.ZoomIn, defaults.ZoomIn)
	normalize(&k.ZoomOut, defaults.ZoomOut)
	normalize(&k.ResetView, defaults.ResetView)
	normalize(&k.ClearSelection, defaults.ClearSelection)
	normalize(&k.SaveSnapshot, defaults.SaveSnapshot)
	normalize(&k.LoadSnapshot, defaults.LoadSnapshot)
	normalize(&k.CopySelection, defaults.CopySelection)
	normalize(&k.ToggleHUD, defaults.ToggleHUD)
}
