package transform

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/fiapx/fiapx-frametool/internal/domain/entity"
)

// DisplaySize scales width x height down to viewerHeight, keeping the aspect
// ratio, when the source is taller than viewerHeight. Otherwise the size is
// returned unchanged.
func DisplaySize(width, height, viewerHeight int) (int, int) {
	if viewerHeight <= 0 || height <= viewerHeight {
		return width, height
	}
	aspect := float64(width) / float64(height)
	return int(float64(viewerHeight) * aspect), viewerHeight
}

// ToRGBA converts a BGR frame into an opaque RGBA image.
func ToRGBA(f *entity.Frame) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for i, j := 0, 0; i < len(f.Pix); i, j = i+entity.BytesPerPixel, j+4 {
		img.Pix[j+0] = f.Pix[i+2]
		img.Pix[j+1] = f.Pix[i+1]
		img.Pix[j+2] = f.Pix[i+0]
		img.Pix[j+3] = 0xff
	}
	return img
}

// ForDisplay converts f to RGB channel order and resizes it to width x height.
func ForDisplay(f *entity.Frame, width, height int) *image.RGBA {
	src := ToRGBA(f)
	if width == f.Width && height == f.Height {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
