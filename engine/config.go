package engine

import (
	"influencemap/gazetteer"
	"influencemap/overlay"
	"influencemap/raster"
	"influencemap/segment"
	"influencemap/typedef"
	"influencemap/viewport"
)

// Config parameterises one map variant. The same engine serves every variant;
// only thresholds, bands and the gazetteer differ.
type Config struct {
	Segment        segment.Params
	Classifier     raster.Classifier
	Identity       gazetteer.Options
	Gazetteer      *gazetteer.Gazetteer // nil selects the built-in world table
	Viewport       viewport.Config      // Map size is taken from the buffer
	Style          overlay.Style
	ScrubGridLines bool
}

// DefaultConfig returns the regional world map configuration. The raster is
// segmented exactly as loaded.
func DefaultConfig() Config {
	return Config{
		Segment:    segment.DefaultParams(),
		Classifier: raster.DefaultClassifier(),
		Identity:   gazetteer.DefaultOptions(),
		Viewport:   viewport.DefaultConfig(0, 0),
		Style:      overlay.DefaultStyle(),
	}
}

// PixelPerfectConfig returns the configuration for political maps drawn with
// time-zone or graticule lines, which are scrubbed before segmentation.
func PixelPerfectConfig() Config {
	cfg := DefaultConfig()
	cfg.ScrubGridLines = true
	return cfg
}

// ConfigFromSettings builds a map configuration from persisted settings.
func ConfigFromSettings(s typedef.Settings, g *gazetteer.Gazetteer) Config {
	typedef.NormalizeSettings(&s)
	cfg := DefaultConfig()
	if s.ScrubGridLines {
		cfg = PixelPerfectConfig()
	}
	cfg.Segment = segment.Params{Tolerance: s.Tolerance, MinRegionSize: s.MinRegionSize}
	cfg.Classifier = raster.Classifier{WaterBands: s.WaterBands}
	cfg.Identity = gazetteer.Options{
		Threshold:          s.MatchThreshold,
		FallbackName:       s.FallbackName,
		FallbackPopulation: s.FallbackPopulation,
	}
	cfg.Gazetteer = g
	cfg.Viewport.DisplayW = s.DisplayWidth
	cfg.Viewport.DisplayH = s.DisplayHeight
	cfg.Viewport.MinZoom = s.MinZoom
	cfg.Viewport.MaxZoom = s.MaxZoom
	cfg.Viewport.YUp = s.YUp
	cfg.Style.MaxAlpha = s.HeatAlpha
	return cfg
}
