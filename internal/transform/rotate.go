// Package transform holds the per-frame operations applied between decode and
// the sinks: quarter-turn rotation, display conversion and index overlay.
package transform

import "github.com/fiapx/fiapx-frametool/internal/domain/entity"

// Rotate returns a rotated copy of f, or f itself for RotateNone. See
// entity.Rotation for which label turns which way.
func Rotate(f *entity.Frame, r entity.Rotation) *entity.Frame {
	if !r.SwapsAxes() {
		return f
	}
	if r.Clockwise() {
		return rotateClockwise(f)
	}
	return rotateCounterClockwise(f)
}

// source (x, y) lands on (h-1-y, x)
func rotateClockwise(f *entity.Frame) *entity.Frame {
	w, h := f.Width, f.Height
	out := entity.NewFrame(f.Index, h, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src := (y*w + x) * entity.BytesPerPixel
			dst := (x*h + (h - 1 - y)) * entity.BytesPerPixel
			copy(out.Pix[dst:dst+entity.BytesPerPixel], f.Pix[src:src+entity.BytesPerPixel])
		}
	}
	return out
}

// source (x, y) lands on (y, w-1-x)
func rotateCounterClockwise(f *entity.Frame) *entity.Frame {
	w, h := f.Width, f.Height
	out := entity.NewFrame(f.Index, h, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src := (y*w + x) * entity.BytesPerPixel
			dst := ((w-1-x)*h + y) * entity.BytesPerPixel
			copy(out.Pix[dst:dst+entity.BytesPerPixel], f.Pix[src:src+entity.BytesPerPixel])
		}
	}
	return out
}
