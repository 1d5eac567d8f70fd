package raster

import (
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"

	"SketchBoard/internal/logging"
	"SketchBoard/internal/state"
)

// CommitStroke draws a continuous path through points with round caps and
// joins. A single point leaves a round dot of the stroke width.
func (s *Surface) CommitStroke(points []state.Point, set state.Settings, mode state.Composite) error {
	if len(points) == 0 {
		return nil
	}
	set = set.Normalize()
	return s.render(set, mode, func(dc *gg.Context) error {
		dc.SetStroke(gg.RoundStroke().WithWidth(set.Width))
		if len(points) == 1 {
			dc.DrawCircle(points[0].X, points[0].Y, set.Width/2)
			return dc.Fill()
		}
		dc.MoveTo(points[0].X, points[0].Y)
		for _, p := range points[1:] {
			dc.LineTo(p.X, p.Y)
		}
		return dc.Stroke()
	})
}

// CommitShapeOutline draws the final outline of a completed shape.
func (s *Surface) CommitShapeOutline(tool state.Tool, anchor, end state.Point, set state.Settings) error {
	if !tool.IsShape() {
		return fmt.Errorf("commit outline: %v is not a shape tool", tool)
	}
	return s.Preview(tool, anchor, end, set)
}

// Preview draws the outline of an in-progress shape on top of the current
// buffer. The caller restores the pre-session snapshot first, so repeated
// previews never accumulate.
func (s *Surface) Preview(tool state.Tool, anchor, current state.Point, set state.Settings) error {
	set = set.Normalize()
	return s.render(set, state.CompositeNormal, func(dc *gg.Context) error {
		return DrawShape(dc, tool, anchor, current, set.Width)
	})
}

// render rasterizes paint into the cleared scratch layer and composites the
// result onto the buffer.
func (s *Surface) render(set state.Settings, mode state.Composite, paint func(dc *gg.Context) error) error {
	if s.buf == nil {
		return ErrInvalidSurface
	}
	dc := s.scratch
	dc.Clear()
	dc.ClearPath()
	if mode == state.CompositeErase {
		dc.SetColor(color.White)
	} else {
		dc.SetColor(set.RGBA())
	}
	if err := paint(dc); err != nil {
		logging.Logger().Debug("raster: paint failed", "mode", mode, "err", err)
		return err
	}

	layer := toRGBA(dc.Image())
	switch mode {
	case state.CompositeErase:
		eraseWith(s.buf, layer, set.Opacity)
	default:
		over(s.buf, layer, set.Opacity)
	}
	return nil
}

// over composites layer source-over, scaled by opacity.
func over(dst, layer *image.RGBA, opacity float64) {
	switch {
	case opacity <= 0:
		return
	case opacity >= 1:
		draw.Draw(dst, dst.Bounds(), layer, image.Point{}, draw.Over)
	default:
		mask := image.NewUniform(color.Alpha{A: uint8(opacity*255 + 0.5)})
		draw.DrawMask(dst, dst.Bounds(), layer, image.Point{}, mask, image.Point{}, draw.Over)
	}
}

// eraseWith applies destination-out: every destination channel is scaled by
// (1 - coverage), where coverage is the layer's alpha times opacity. Pixels
// the layer does not cover are left untouched.
func eraseWith(dst, layer *image.RGBA, opacity float64) {
	if opacity <= 0 {
		return
	}
	k := uint32(opacity*255 + 0.5)
	n := min(len(dst.Pix), len(layer.Pix))
	for i := 3; i < n; i += 4 {
		cov := uint32(layer.Pix[i]) * k / 255
		if cov == 0 {
			continue
		}
		keep := 255 - cov
		for j := i - 3; j <= i; j++ {
			dst.Pix[j] = uint8((uint32(dst.Pix[j])*keep + 127) / 255)
		}
	}
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
