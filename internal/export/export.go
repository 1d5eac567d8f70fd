// Package export writes captured board frames to PNG and PDF.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/jung-kurt/gofpdf"
)

var ErrEmptyImage = errors.New("export: empty image")

// margin around the image on the PDF page, in mm.
const margin = 10.0

// PNG encodes img to w.
func PNG(w io.Writer, img image.Image) error {
	if img == nil || img.Bounds().Empty() {
		return ErrEmptyImage
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// PDF writes img scaled to fit a single A4 page at path. The page is landscape
// when the image is wider than tall.
func PDF(path string, img image.Image) error {
	p, err := newDocument(img)
	if err != nil {
		return err
	}
	if err := p.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf %s: %w", path, err)
	}
	return nil
}

// WritePDF is PDF for an arbitrary writer.
func WritePDF(w io.Writer, img image.Image) error {
	p, err := newDocument(img)
	if err != nil {
		return err
	}
	if err := p.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func newDocument(img image.Image) (*gofpdf.Fpdf, error) {
	var buf bytes.Buffer
	if err := PNG(&buf, img); err != nil {
		return nil, err
	}

	b := img.Bounds()
	orientation := "P"
	if b.Dx() > b.Dy() {
		orientation = "L"
	}
	p := gofpdf.New(orientation, "mm", "A4", "")
	p.SetTitle("SketchBoard", true)
	p.AddPage()

	const name = "board"
	p.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, &buf)
	if err := p.Error(); err != nil {
		return nil, fmt.Errorf("register image: %w", err)
	}

	pw, ph := p.GetPageSize()
	x, y, w, h := fitPage(float64(b.Dx()), float64(b.Dy()), pw-2*margin, ph-2*margin)
	p.ImageOptions(name, margin+x, margin+y, w, h, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	return p, p.Error()
}

// fitPage scales an iw×ih image into an aw×ah area, preserving aspect ratio
// and centring it.
func fitPage(iw, ih, aw, ah float64) (x, y, w, h float64) {
	scale := min(aw/iw, ah/ih)
	w, h = iw*scale, ih*scale
	return (aw - w) / 2, (ah - h) / 2, w, h
}
