package transform

import (
	"image"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/fiapx/fiapx-frametool/internal/domain/entity"
)

// Label origin, matching the placement of the frame-number overlay tool.
const (
	labelX = 20
	labelY = 40
)

// AnnotateIndex returns a copy of f with its index drawn in red near the top
// left corner.
func AnnotateIndex(f *entity.Frame) *entity.Frame {
	mask := image.NewAlpha(image.Rect(0, 0, f.Width, f.Height))
	text := strconv.Itoa(f.Index)
	// two passes one pixel apart for a thicker stroke
	for _, dx := range []int{0, 1} {
		d := font.Drawer{
			Dst:  mask,
			Src:  image.Opaque,
			Face: basicfont.Face7x13,
			Dot:  fixed.P(labelX+dx, labelY),
		}
		d.DrawString(text)
	}

	out := &entity.Frame{
		Index:  f.Index,
		Width:  f.Width,
		Height: f.Height,
		Pix:    append([]byte(nil), f.Pix...),
	}
	for i, a := range mask.Pix {
		if a == 0 {
			continue
		}
		p := i * entity.BytesPerPixel
		out.Pix[p+0] = 0
		out.Pix[p+1] = 0
		out.Pix[p+2] = 0xff
	}
	return out
}
