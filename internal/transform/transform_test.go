package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiapx/fiapx-frametool/internal/domain/entity"
)

// 3x2 frame whose blue channel holds a running pixel id:
//
//	0 1 2
//	3 4 5
func gridFrame() *entity.Frame {
	f := entity.NewFrame(7, 3, 2)
	for i := 0; i < 6; i++ {
		f.Pix[i*entity.BytesPerPixel] = byte(i)
	}
	return f
}

func blues(f *entity.Frame) []byte {
	out := make([]byte, 0, f.Width*f.Height)
	for i := 0; i < len(f.Pix); i += entity.BytesPerPixel {
		out = append(out, f.Pix[i])
	}
	return out
}

func TestRotateNoneIsIdentity(t *testing.T) {
	f := gridFrame()
	assert.Same(t, f, Rotate(f, entity.RotateNone))
}

func TestRotateLeftTurnsClockwise(t *testing.T) {
	out := Rotate(gridFrame(), entity.RotateLeft)
	require.NoError(t, out.Validate())
	assert.Equal(t, 2, out.Width)
	assert.Equal(t, 3, out.Height)
	assert.Equal(t, 7, out.Index)
	// 3 0
	// 4 1
	// 5 2
	assert.Equal(t, []byte{3, 0, 4, 1, 5, 2}, blues(out))
}

func TestRotateRightTurnsCounterClockwise(t *testing.T) {
	out := Rotate(gridFrame(), entity.RotateRight)
	require.NoError(t, out.Validate())
	// 2 5
	// 1 4
	// 0 3
	assert.Equal(t, []byte{2, 5, 1, 4, 0, 3}, blues(out))
}

func TestOppositeRotationsCancel(t *testing.T) {
	f := gridFrame()
	back := Rotate(Rotate(f, entity.RotateLeft), entity.RotateRight)
	assert.Equal(t, f.Pix, back.Pix)
}

func TestDisplaySize(t *testing.T) {
	w, h := DisplaySize(1920, 1080, 720)
	assert.Equal(t, 1280, w)
	assert.Equal(t, 720, h)

	w, h = DisplaySize(640, 480, 720)
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)
}

func TestForDisplaySwapsChannelsAndScales(t *testing.T) {
	f := entity.NewFrame(0, 4, 4)
	for i := 0; i < len(f.Pix); i += entity.BytesPerPixel {
		f.Pix[i], f.Pix[i+1], f.Pix[i+2] = 10, 20, 30
	}

	same := ForDisplay(f, 4, 4)
	assert.Equal(t, []uint8{30, 20, 10, 255}, same.Pix[:4])

	small := ForDisplay(f, 2, 2)
	assert.Equal(t, 2, small.Bounds().Dx())
	assert.Equal(t, 2, small.Bounds().Dy())
	assert.Equal(t, []uint8{30, 20, 10, 255}, small.Pix[:4])
}

func TestAnnotateIndexLeavesSourceUntouched(t *testing.T) {
	f := entity.NewFrame(42, 80, 60)
	out := AnnotateIndex(f)

	assert.Equal(t, make([]byte, len(f.Pix)), f.Pix)
	assert.NotEqual(t, f.Pix, out.Pix)

	red := 0
	for i := 0; i < len(out.Pix); i += entity.BytesPerPixel {
		if out.Pix[i+2] == 0xff {
			red++
		}
	}
	assert.Greater(t, red, 0)
}
