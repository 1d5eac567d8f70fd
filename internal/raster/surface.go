// Package raster owns the board's pixel buffer and the compositing
// primitives the drawing engine commits through.
//
// The buffer is premultiplied RGBA. Strokes and outlines are rasterized by gg
// into a transparent scratch layer of the same size and then composited onto
// the buffer, either source-over or destination-out.
package raster

import (
	"errors"
	"image"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
)

// ErrInvalidSurface is returned by operations attempted while the surface has
// no pixels. Callers treat it as "skip until the next resize".
var ErrInvalidSurface = errors.New("surface has zero size")

// DefaultFontSize is the label size in logical units.
const DefaultFontSize = 32

type Surface struct {
	buf     *image.RGBA
	scratch *gg.Context

	fontSize float64
	face     font.Face
	stale    StalePolicy
}

// Option configures a Surface.
type Option func(*Surface)

// WithFontSize overrides DefaultFontSize.
func WithFontSize(size float64) Option {
	return func(s *Surface) {
		if size > 0 {
			s.fontSize = size
		}
	}
}

// WithStalePolicy selects how Restore treats snapshots whose dimensions no
// longer match the surface.
func WithStalePolicy(p StalePolicy) Option {
	return func(s *Surface) { s.stale = p }
}

// NewSurface returns a zero-sized surface. Nothing can be drawn until Resize
// establishes dimensions.
func NewSurface(opts ...Option) *Surface {
	s := &Surface{fontSize: DefaultFontSize, stale: StaleReject}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Valid reports whether the surface has non-zero dimensions.
func (s *Surface) Valid() bool {
	return s.buf != nil
}

func (s *Surface) Size() (w, h int) {
	if s.buf == nil {
		return 0, 0
	}
	b := s.buf.Bounds()
	return b.Dx(), b.Dy()
}

// Resize reallocates the buffer and copies the previous content back at the
// origin. Content beyond the new bounds is clipped; newly exposed pixels are
// transparent.
func (s *Surface) Resize(w, h int) error {
	if w <= 0 || h <= 0 {
		return ErrInvalidSurface
	}
	if cw, ch := s.Size(); cw == w && ch == h {
		return nil
	}

	next := image.NewRGBA(image.Rect(0, 0, w, h))
	if s.buf != nil {
		draw.Draw(next, s.buf.Bounds(), s.buf, image.Point{}, draw.Src)
	}
	s.buf = next

	if s.scratch == nil {
		s.scratch = gg.NewContext(w, h)
	} else if err := s.scratch.Resize(w, h); err != nil {
		return err
	}
	return nil
}

// Clear makes every pixel fully transparent.
func (s *Surface) Clear() error {
	if s.buf == nil {
		return ErrInvalidSurface
	}
	clear(s.buf.Pix)
	return nil
}

// Image returns a copy of the committed buffer. The copy is safe to hand to
// exporters and other goroutines.
func (s *Surface) Image() *image.RGBA {
	if s.buf == nil {
		return image.NewRGBA(image.Rectangle{})
	}
	out := image.NewRGBA(s.buf.Bounds())
	copy(out.Pix, s.buf.Pix)
	return out
}
