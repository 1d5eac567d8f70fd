package raster

import (
	"fmt"
	"math"

	"github.com/gogpu/gg"

	"SketchBoard/internal/state"
)

const (
	arrowLength = 15
	arrowAngle  = math.Pi / 6
)

// DrawShape strokes the outline of tool's shape spanned by anchor a and
// current point c onto dc, using dc's current color. It depends on nothing
// but its arguments, so the same inputs always produce the same pixels.
func DrawShape(dc *gg.Context, tool state.Tool, a, c state.Point, width float64) error {
	stroke := gg.RoundStroke().WithWidth(width)

	switch tool {
	case state.ToolLine:
		dc.DrawLine(a.X, a.Y, c.X, c.Y)
	case state.ToolDashed:
		// Butt caps keep the painted dash and the gap at exactly 3w and 2w.
		stroke = stroke.WithCap(gg.LineCapButt).WithDashPattern(3*width, 2*width)
		dc.DrawLine(a.X, a.Y, c.X, c.Y)
	case state.ToolCircle:
		r := a.Dist(c)
		if r == 0 {
			return nil
		}
		dc.DrawCircle(a.X, a.Y, r)
	case state.ToolEllipse:
		rx, ry := math.Abs(c.X-a.X), math.Abs(c.Y-a.Y)
		if rx == 0 && ry == 0 {
			return nil
		}
		dc.DrawEllipse(a.X, a.Y, rx, ry)
	case state.ToolRect:
		x, y := math.Min(a.X, c.X), math.Min(a.Y, c.Y)
		dc.DrawRectangle(x, y, math.Abs(c.X-a.X), math.Abs(c.Y-a.Y))
	case state.ToolTriangle:
		dc.MoveTo((a.X+c.X)/2, a.Y)
		dc.LineTo(c.X, c.Y)
		dc.LineTo(a.X, c.Y)
		dc.ClosePath()
	case state.ToolAxis:
		axisPath(dc, a, c)
	default:
		return fmt.Errorf("draw shape: %v has no outline", tool)
	}

	dc.SetStroke(stroke)
	return dc.Stroke()
}

// axisPath adds a horizontal arrow pointing right and a vertical arrow
// pointing up, crossing at the centre of the a–c bounding box.
func axisPath(dc *gg.Context, a, c state.Point) {
	minX, maxX := math.Min(a.X, c.X), math.Max(a.X, c.X)
	minY, maxY := math.Min(a.Y, c.Y), math.Max(a.Y, c.Y)
	cx, cy := (minX+maxX)/2, (minY+maxY)/2

	dc.DrawLine(minX, cy, maxX, cy)
	arrowHead(dc, state.Point{X: minX, Y: cy}, state.Point{X: maxX, Y: cy})

	dc.DrawLine(cx, maxY, cx, minY)
	arrowHead(dc, state.Point{X: cx, Y: maxY}, state.Point{X: cx, Y: minY})
}

// arrowHead adds the two barbs of an open arrowhead at tip, for a shaft
// coming from tail.
func arrowHead(dc *gg.Context, tail, tip state.Point) {
	for _, b := range arrowBarbs(tail, tip) {
		dc.MoveTo(tip.X, tip.Y)
		dc.LineTo(b.X, b.Y)
	}
}

func arrowBarbs(tail, tip state.Point) [2]state.Point {
	theta := math.Atan2(tip.Y-tail.Y, tip.X-tail.X)
	var out [2]state.Point
	for i, side := range [2]float64{-arrowAngle, arrowAngle} {
		out[i] = state.Point{
			X: tip.X - arrowLength*math.Cos(theta+side),
			Y: tip.Y - arrowLength*math.Sin(theta+side),
		}
	}
	return out
}
