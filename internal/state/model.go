package state

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// ErrUnknownTool is returned by ParseTool for names outside the tool set.
var ErrUnknownTool = errors.New("unknown tool")

type Point struct{ X, Y float64 }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

const (
	MinWidth = 1.0
	MaxWidth = 20.0
)

// Settings applies to every new committed mutation.
type Settings struct {
	Color   string  `json:"color"` // hex: #RGB, #RRGGBB or #RRGGBBAA
	Width   float64 `json:"width"`
	Opacity float64 `json:"opacity"`
}

// DefaultSettings is a 3px opaque black pen.
func DefaultSettings() Settings {
	return Settings{Color: "#000000", Width: 3, Opacity: 1}
}

// Normalize clamps width and opacity into their valid ranges.
func (s Settings) Normalize() Settings {
	if s.Color == "" {
		s.Color = "#000000"
	}
	if math.IsNaN(s.Width) || s.Width < MinWidth {
		s.Width = MinWidth
	} else if s.Width > MaxWidth {
		s.Width = MaxWidth
	}
	if math.IsNaN(s.Opacity) || s.Opacity < 0 {
		s.Opacity = 0
	} else if s.Opacity > 1 {
		s.Opacity = 1
	}
	return s
}

// RGBA parses Color. Malformed values yield opaque black.
func (s Settings) RGBA() color.NRGBA {
	c, err := ParseHexColor(s.Color)
	if err != nil {
		return color.NRGBA{A: 0xff}
	}
	return c
}

// ParseHexColor parses #RGB, #RRGGBB and #RRGGBBAA (the leading # is
// optional).
func ParseHexColor(hex string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	switch len(h) {
	case 3:
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]}) + "ff"
	case 6:
		h += "ff"
	case 8:
	default:
		return color.NRGBA{}, fmt.Errorf("parse color %q: bad length", hex)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("parse color %q: %w", hex, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// HexColor formats c as #RRGGBB, or #RRGGBBAA when it is not opaque.
func HexColor(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 0xff {
		return fmt.Sprintf("#%02X%02X%02X", n.R, n.G, n.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", n.R, n.G, n.B, n.A)
}

// Composite is the pixel-combination rule used while drawing.
type Composite int

const (
	CompositeNormal Composite = iota // source-over
	CompositeErase                   // destination-out
)

func (c Composite) String() string {
	if c == CompositeErase {
		return "erase"
	}
	return "normal"
}

type Tool int

const (
	ToolPen Tool = iota
	ToolLine
	ToolDashed
	ToolCircle
	ToolEllipse
	ToolRect
	ToolTriangle
	ToolAxis
	ToolEraser
	ToolText
)

var toolNames = [...]string{
	ToolPen:      "pen",
	ToolLine:     "line",
	ToolDashed:   "dashed",
	ToolCircle:   "circle",
	ToolEllipse:  "ellipse",
	ToolRect:     "rect",
	ToolTriangle: "triangle",
	ToolAxis:     "axis",
	ToolEraser:   "eraser",
	ToolText:     "text",
}

// Tools lists every tool in toolbar order.
func Tools() []Tool {
	out := make([]Tool, len(toolNames))
	for i := range toolNames {
		out[i] = Tool(i)
	}
	return out
}

func (t Tool) String() string {
	if t < 0 || int(t) >= len(toolNames) {
		return "Tool(" + strconv.Itoa(int(t)) + ")"
	}
	return toolNames[t]
}

// ParseTool is the inverse of Tool.String.
func ParseTool(name string) (Tool, error) {
	for i, n := range toolNames {
		if n == name {
			return Tool(i), nil
		}
	}
	return ToolPen, fmt.Errorf("%w: %q", ErrUnknownTool, name)
}

// IsFreehand reports whether the tool paints directly on every move.
func (t Tool) IsFreehand() bool {
	return t == ToolPen || t == ToolEraser
}

// IsShape reports whether the tool previews a parametric outline.
func (t Tool) IsShape() bool {
	return t >= ToolLine && t <= ToolAxis
}

// Composite returns the compositing rule a session with this tool uses.
func (t Tool) Composite() Composite {
	if t == ToolEraser {
		return CompositeErase
	}
	return CompositeNormal
}
