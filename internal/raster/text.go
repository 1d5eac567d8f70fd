package raster

import (
	"fmt"
	"image"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"SketchBoard/internal/state"
)

var boldFont = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(gobold.TTF)
})

func (s *Surface) labelFace() (font.Face, error) {
	if s.face != nil {
		return s.face, nil
	}
	f, err := boldFont()
	if err != nil {
		return nil, fmt.Errorf("parse label font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    s.fontSize,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("label face: %w", err)
	}
	s.face = face
	return face, nil
}

// CommitText fills text in bold sans-serif with the top of the line box at
// anchor. Only the color is taken from set; width and opacity do not apply.
func (s *Surface) CommitText(text string, anchor state.Point, set state.Settings) error {
	if s.buf == nil {
		return ErrInvalidSurface
	}
	if text == "" {
		return nil
	}
	face, err := s.labelFace()
	if err != nil {
		return err
	}
	d := &font.Drawer{
		Dst:  s.buf,
		Src:  image.NewUniform(set.RGBA()),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(anchor.X * 64),
			Y: fixed.Int26_6(anchor.Y*64) + face.Metrics().Ascent,
		},
	}
	d.DrawString(text)
	return nil
}

// TextBounds returns the rectangle CommitText would cover for text at
// anchor. Hosts use it to size the text entry overlay.
func (s *Surface) TextBounds(text string, anchor state.Point) (image.Rectangle, error) {
	face, err := s.labelFace()
	if err != nil {
		return image.Rectangle{}, err
	}
	m := face.Metrics()
	adv := font.MeasureString(face, text)
	x0, y0 := int(anchor.X), int(anchor.Y)
	return image.Rect(x0, y0, x0+adv.Ceil(), y0+(m.Ascent+m.Descent).Ceil()), nil
}
