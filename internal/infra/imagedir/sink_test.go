package imagedir

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fiapx/fiapx-frametool/internal/domain/entity"
	"github.com/fiapx/fiapx-frametool/internal/media"
)

func TestNewOpenerValidatesExtension(t *testing.T) {
	o, err := NewOpener("PNG", 0, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, ".png", o.Ext())

	_, err = NewOpener(".gif", 90, zap.NewNop())
	require.Error(t, err)
}

func TestSinkWritesNamedImages(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "images")
	o, err := NewOpener(".png", 90, zap.NewNop())
	require.NoError(t, err)

	sink, err := o.OpenImageSink(dir, "out")
	require.NoError(t, err)

	f := entity.NewFrame(12, 4, 3)
	f.Pix[0], f.Pix[1], f.Pix[2] = 255, 0, 0 // blue in BGR
	require.NoError(t, sink.WriteFrame(f))
	require.NoError(t, sink.Close())

	file, err := os.Open(filepath.Join(dir, "out_12.png"))
	require.NoError(t, err)
	defer file.Close()
	img, err := png.Decode(file)
	require.NoError(t, err)
	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0), r)
	assert.Equal(t, uint32(0), g)
	assert.Equal(t, uint32(0xffff), b)
	assert.Equal(t, 1, sink.(*Sink).Written())
}

func TestOpenImageSinkFailureIsSinkOpenError(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	o, err := NewOpener(".jpg", 90, zap.NewNop())
	require.NoError(t, err)
	_, err = o.OpenImageSink(filepath.Join(blocker, "images"), "out")
	require.ErrorIs(t, err, media.ErrSinkOpen)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "out_10.jpg", FileName("out", 10, ".jpg"))
}
