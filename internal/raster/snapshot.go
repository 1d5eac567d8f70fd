package raster

import (
	"errors"
	"fmt"
	"image"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

// ErrStaleSnapshot is returned by Restore when a snapshot was captured at a
// different surface size and the policy is StaleReject.
var ErrStaleSnapshot = errors.New("snapshot size does not match surface")

// StalePolicy decides what Restore does with a snapshot captured before a
// resize.
type StalePolicy int

const (
	StaleReject  StalePolicy = iota // refuse with ErrStaleSnapshot
	StaleRescale                    // scale the snapshot to the current size
)

func (p StalePolicy) String() string {
	if p == StaleRescale {
		return "rescale"
	}
	return "reject"
}

// ParseStalePolicy maps "reject" and "rescale"; anything else is reject.
func ParseStalePolicy(s string) StalePolicy {
	if s == "rescale" {
		return StaleRescale
	}
	return StaleReject
}

// Snapshot is an opaque full-buffer copy. Its dimensions are fixed at capture
// time.
type Snapshot struct {
	ID     string
	Width  int
	Height int
	pix    []byte
}

// Image returns the snapshot's pixels as a new image.
func (sn *Snapshot) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, sn.Width, sn.Height))
	copy(img.Pix, sn.pix)
	return img
}

// Snapshot copies the whole buffer out.
func (s *Surface) Snapshot() (*Snapshot, error) {
	if s.buf == nil {
		return nil, ErrInvalidSurface
	}
	w, h := s.Size()
	pix := make([]byte, len(s.buf.Pix))
	copy(pix, s.buf.Pix)
	return &Snapshot{ID: uuid.NewString(), Width: w, Height: h, pix: pix}, nil
}

// Restore copies sn back into the buffer.
func (s *Surface) Restore(sn *Snapshot) error {
	if s.buf == nil {
		return ErrInvalidSurface
	}
	if sn == nil {
		return errors.New("restore: nil snapshot")
	}
	w, h := s.Size()
	if sn.Width == w && sn.Height == h {
		copy(s.buf.Pix, sn.pix)
		return nil
	}
	if s.stale != StaleRescale {
		return fmt.Errorf("restore %s (%dx%d onto %dx%d): %w", sn.ID, sn.Width, sn.Height, w, h, ErrStaleSnapshot)
	}
	src := sn.Image()
	draw.CatmullRom.Scale(s.buf, s.buf.Bounds(), src, src.Bounds(), draw.Src, nil)
	return nil
}
