// Package config holds the engine and host settings that persist across
// runs in the Fyne preference store.
package config

import (
	"fyne.io/fyne/v2"

	"SketchBoard/internal/engine"
	"SketchBoard/internal/history"
	"SketchBoard/internal/logging"
	"SketchBoard/internal/raster"
	"SketchBoard/internal/state"
)

const DefaultSharePort = 8888

const (
	keyFontSize     = "text.fontSize"
	keyStalePolicy  = "history.stalePolicy"
	keyTool         = "tool.selected"
	keyColor        = "tool.color"
	keyWidth        = "tool.width"
	keyOpacity      = "tool.opacity"
	keySharePort    = "share.port"
	keyShareEnabled = "share.enabled"
)

type Config struct {
	// HistoryLimit is always history.DefaultLimit when loaded; it is not
	// persisted.
	HistoryLimit int
	FontSize     float64
	StalePolicy  raster.StalePolicy
	Settings     state.Settings
	Tool         state.Tool

	SharePort    int
	ShareEnabled bool
}

func Default() Config {
	return Config{
		HistoryLimit: history.DefaultLimit,
		FontSize:     raster.DefaultFontSize,
		StalePolicy:  raster.StaleReject,
		Settings:     state.DefaultSettings(),
		Tool:         state.ToolPen,
		SharePort:    DefaultSharePort,
	}
}

// Load reads the configuration from p, falling back to Default for any key
// that is unset or holds an unusable value.
func Load(p fyne.Preferences) Config {
	def := Default()
	if p == nil {
		return def
	}

	c := Config{
		HistoryLimit: def.HistoryLimit,
		FontSize:     p.FloatWithFallback(keyFontSize, def.FontSize),
		SharePort:    p.IntWithFallback(keySharePort, def.SharePort),
		ShareEnabled: p.BoolWithFallback(keyShareEnabled, def.ShareEnabled),
		Settings: state.Settings{
			Color:   p.StringWithFallback(keyColor, def.Settings.Color),
			Width:   p.FloatWithFallback(keyWidth, def.Settings.Width),
			Opacity: p.FloatWithFallback(keyOpacity, def.Settings.Opacity),
		}.Normalize(),
	}
	if c.FontSize <= 0 {
		c.FontSize = def.FontSize
	}
	if c.SharePort <= 0 || c.SharePort > 65535 {
		c.SharePort = def.SharePort
	}
	if _, err := state.ParseHexColor(c.Settings.Color); err != nil {
		logging.Logger().Warn("config: ignoring stored color", "color", c.Settings.Color, "err", err)
		c.Settings.Color = def.Settings.Color
	}

	var err error
	if c.Tool, err = state.ParseTool(p.StringWithFallback(keyTool, def.Tool.String())); err != nil {
		logging.Logger().Warn("config: ignoring stored tool", "err", err)
		c.Tool = def.Tool
	}
	c.StalePolicy = raster.ParseStalePolicy(p.StringWithFallback(keyStalePolicy, def.StalePolicy.String()))
	return c
}

// Save writes c back to p.
func (c Config) Save(p fyne.Preferences) {
	if p == nil {
		return
	}
	p.SetFloat(keyFontSize, c.FontSize)
	p.SetString(keyStalePolicy, c.StalePolicy.String())
	p.SetString(keyTool, c.Tool.String())
	p.SetString(keyColor, c.Settings.Color)
	p.SetFloat(keyWidth, c.Settings.Width)
	p.SetFloat(keyOpacity, c.Settings.Opacity)
	p.SetInt(keySharePort, c.SharePort)
	p.SetBool(keyShareEnabled, c.ShareEnabled)
}

// EngineOptions converts c into options for engine.New.
func (c Config) EngineOptions() engine.Options {
	return engine.Options{
		HistoryLimit: c.HistoryLimit,
		FontSize:     c.FontSize,
		StalePolicy:  c.StalePolicy,
		Tool:         c.Tool,
		Settings:     c.Settings,
	}
}
