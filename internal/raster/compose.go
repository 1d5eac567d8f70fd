package raster

import (
	"image"

	"golang.org/x/image/draw"
)

// Compose stacks layers bottom to top onto a transparent w×h image. Layers
// of exactly w×h are drawn at the origin; others are scaled to fit, keeping
// their aspect ratio, and centered. Nil layers are skipped.
//
// Hosts pass the screen-share frame, the background image and the raster in
// that order.
func Compose(w, h int, layers ...image.Image) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for _, l := range layers {
		if l == nil || l.Bounds().Empty() {
			continue
		}
		b := l.Bounds()
		if b.Dx() == w && b.Dy() == h {
			draw.Draw(dst, dst.Bounds(), l, b.Min, draw.Over)
			continue
		}
		draw.ApproxBiLinear.Scale(dst, fitRect(dst.Bounds(), b), l, b, draw.Over, nil)
	}
	return dst
}

// fitRect returns the largest rectangle with src's aspect ratio that fits
// inside dst, centered.
func fitRect(dst, src image.Rectangle) image.Rectangle {
	dw, dh := dst.Dx(), dst.Dy()
	sw, sh := src.Dx(), src.Dy()
	if sw*dh > sh*dw {
		h := sh * dw / sw
		y := dst.Min.Y + (dh-h)/2
		return image.Rect(dst.Min.X, y, dst.Max.X, y+h)
	}
	w := sw * dh / sh
	x := dst.Min.X + (dw-w)/2
	return image.Rect(x, dst.Min.Y, x+w, dst.Max.Y)
}
