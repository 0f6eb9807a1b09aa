package typedef

import (
	"influencemap/raster"
)

// Settings is the persisted user configuration, stored as settings.json in
// the data directory. Zero values are replaced by defaults on load.
type Settings struct {
	DisplayWidth  int     `json:"displayWidth"`
	DisplayHeight int     `json:"displayHeight"`
	MinZoom       float64 `json:"minZoom"`
	MaxZoom       float64 `json:"maxZoom"`
	YUp           bool    `json:"yUp,omitempty"`
	ZoomStep      float64 `json:"zoomStep"` // Wheel and key zoom factor per step, > 1

	Tolerance      int           `json:"tolerance"`
	MinRegionSize  int           `json:"minRegionSize"`
	ScrubGridLines bool          `json:"scrubGridLines"`
	WaterBands     []raster.Band `json:"waterBands,omitempty"`

	MatchThreshold     float64 `json:"matchThreshold"`
	FallbackName       string  `json:"fallbackName"`
	FallbackPopulation float64 `json:"fallbackPopulation"`

	InfluenceStep float64 `json:"influenceStep"`
	HeatAlpha     float64 `json:"heatAlpha"`

	APIAddress    string `json:"apiAddress,omitempty"` // Empty disables the inspection API
	ScriptTimeout int    `json:"scriptTimeoutSeconds"`
	Autosave      string `json:"autosave,omitempty"` // Snapshot name written on exit, empty disables

	Keybinds Keybinds `json:"keybinds"`
}

// DefaultSettings returns the configuration the world map was tuned for.
func DefaultSettings() Settings {
	return Settings{
		DisplayWidth:       800,
		DisplayHeight:      480,
		MinZoom:            1,
		MaxZoom:            4,
		ZoomStep:           1.1,
		Tolerance:          15,
		MinRegionSize:      100,
		WaterBands:         raster.DefaultWaterBands(),
		MatchThreshold:     0.03,
		FallbackName:       "Region %d",
		FallbackPopulation: 10,
		InfluenceStep:      15,
		HeatAlpha:          0.5,
		APIAddress:         "127.0.0.1:8765",
		ScriptTimeout:      60,
		Autosave:           "autosave",
		Keybinds:           DefaultKeybinds(),
	}
}

// NormalizeSettings fills missing or out-of-range values with defaults.
func NormalizeSettings(s *Settings) {
	if s == nil {
		return
	}
	d := DefaultSettings()
	if s.DisplayWidth <= 0 {
		s.DisplayWidth = d.DisplayWidth
	}
	if s.DisplayHeight <= 0 {
		s.DisplayHeight = d.DisplayHeight
	}
	if s.MinZoom < 1 {
		s.MinZoom = d.MinZoom
	}
	if s.MaxZoom < s.MinZoom {
		s.MaxZoom = s.MinZoom
	}
	if s.ZoomStep <= 1 {
		s.ZoomStep = d.ZoomStep
	}
	if s.Tolerance < 0 || s.Tolerance > 255 {
		s.Tolerance = d.Tolerance
	}
	if s.MinRegionSize <= 0 {
		s.MinRegionSize = d.MinRegionSize
	}
	if len(s.WaterBands) == 0 {
		s.WaterBands = d.WaterBands
	}
	if s.MatchThreshold <= 0 {
		s.MatchThreshold = d.MatchThreshold
	}
	if s.FallbackName == "" {
		s.FallbackName = d.FallbackName
	}
	if s.FallbackPopulation < 0 {
		s.FallbackPopulation = d.FallbackPopulation
	}
	if s.InfluenceStep <= 0 {
		s.InfluenceStep = d.InfluenceStep
	}
	if s.HeatAlpha <= 0 || s.HeatAlpha > 1 {
		s.HeatAlpha = d.HeatAlpha
	}
	if s.ScriptTimeout <= 0 {
		s.ScriptTimeout = d.ScriptTimeout
	}
	NormalizeKeybinds(&s.Keybinds)
}
