package entity

import (
	"fmt"
	"math"
	"strings"
)

// BytesPerPixel is the sample count of a packed BGR24 frame.
const BytesPerPixel = 3

// Frame is one decoded picture in packed BGR24 order, tagged with the index it
// had in its source stream. Frames are treated as immutable once produced.
type Frame struct {
	Index  int
	Width  int
	Height int
	Pix    []byte
}

// NewFrame allocates a zeroed frame of the given geometry.
func NewFrame(index, width, height int) *Frame {
	return &Frame{
		Index:  index,
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*BytesPerPixel),
	}
}

// Stride is the byte length of one row.
func (f *Frame) Stride() int {
	return f.Width * BytesPerPixel
}

// Validate reports a mismatch between the geometry and the pixel buffer.
func (f *Frame) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("invalid frame geometry %dx%d", f.Width, f.Height)
	}
	if want := f.Width * f.Height * BytesPerPixel; len(f.Pix) != want {
		return fmt.Errorf("invalid frame buffer: got %d bytes, expected %d", len(f.Pix), want)
	}
	return nil
}

// StreamInfo describes an opened video source.
type StreamInfo struct {
	Width      int
	Height     int
	FrameRate  float64
	FrameCount int
}

// FrameWindow is the closed interval [Start, End] of frame indices to keep.
// A window with Start > End is valid and selects nothing.
type FrameWindow struct {
	Start int
	End   int
}

// Whole selects every frame of a stream.
func Whole() FrameWindow {
	return FrameWindow{Start: 0, End: math.MaxInt}
}

func (w FrameWindow) Empty() bool {
	return w.Start > w.End
}

func (w FrameWindow) Contains(index int) bool {
	return index >= w.Start && index <= w.End
}

// Len is the number of indices in the window, zero when empty.
func (w FrameWindow) Len() int {
	if w.Empty() {
		return 0
	}
	return w.End - w.Start + 1
}

func (w FrameWindow) String() string {
	return fmt.Sprintf("[%d, %d]", w.Start, w.End)
}

// Rotation selects an optional quarter turn applied to each frame.
//
// The labels keep the mapping of the tools this package replaces, where the
// name and the geometric effect are swapped:
//
//	RotateNone  no rotation
//	RotateLeft  90° clockwise
//	RotateRight 90° counter-clockwise
type Rotation string

const (
	RotateNone  Rotation = "none"
	RotateLeft  Rotation = "left"
	RotateRight Rotation = "right"
)

// ParseRotation accepts "none", "left", "right" (case-insensitive); empty means none.
func ParseRotation(s string) (Rotation, error) {
	switch r := Rotation(strings.ToLower(strings.TrimSpace(s))); r {
	case "", RotateNone:
		return RotateNone, nil
	case RotateLeft, RotateRight:
		return r, nil
	default:
		return "", fmt.Errorf("unknown rotation %q (want none, left or right)", s)
	}
}

// Clockwise reports whether the rotation turns the picture clockwise.
func (r Rotation) Clockwise() bool {
	return r == RotateLeft
}

// SwapsAxes reports whether output geometry is (height, width) of the input.
func (r Rotation) SwapsAxes() bool {
	return r == RotateLeft || r == RotateRight
}

// Geometry returns the output size for a source of width x height.
func (r Rotation) Geometry(width, height int) (int, int) {
	if r.SwapsAxes() {
		return height, width
	}
	return width, height
}
