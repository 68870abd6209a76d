package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fiapx/fiapx-frametool/internal/domain/entity"
	"github.com/fiapx/fiapx-frametool/internal/infra/config"
	"github.com/fiapx/fiapx-frametool/internal/infra/stub"
	"github.com/fiapx/fiapx-frametool/internal/media"
)

type harness struct {
	app *app
	dec *stub.Decoder
	enc *stub.Encoder
	dir string
}

// 10 fps, 60 frames, 8x6.
func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)

	dec := stub.NewDecoder(entity.StreamInfo{Width: 8, Height: 6, FrameRate: 10, FrameCount: 60})
	enc := &stub.Encoder{}
	return &harness{
		app: &app{
			cfg:     cfg,
			log:     zap.NewNop(),
			decoder: dec,
			encoder: enc,
			stderr:  io.Discard,
		},
		dec: dec,
		enc: enc,
		dir: t.TempDir(),
	}
}

func (h *harness) video(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(h.dir, name)
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	return p
}

func (h *harness) run(args ...string) error {
	return h.app.command().Run(context.Background(), append([]string{"frametool"}, args...))
}

func span(from, to int) []int {
	var out []int
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestExtractTimeWindow(t *testing.T) {
	h := newHarness(t)
	in := h.video(t, "walk.mp4")
	out := filepath.Join(h.dir, "out")

	// [2s-1s, 3s+1s] at 10 fps
	require.NoError(t, h.run("extract", "-i", in, "-o", out, "-n", "clip", "-s", "2", "-e", "3"))

	sinks := h.enc.Sinks()
	require.Len(t, sinks, 1)
	assert.Equal(t, filepath.Join(out, "videos", "clip.mp4"), sinks[0].Path)
	assert.Equal(t, span(10, 40), sinks[0].Indices)
	assert.InDelta(t, 10.0, sinks[0].FPS, 1e-9)

	images := listDir(t, filepath.Join(out, "images"))
	assert.Len(t, images, 31)
	assert.Contains(t, images, "clip_10.jpg")
	assert.Contains(t, images, "clip_40.jpg")
}

func TestExtractDefaultsToEndOfStream(t *testing.T) {
	h := newHarness(t)
	in := h.video(t, "walk.mp4")

	require.NoError(t, h.run("extract", "-i", in, "-o", h.dir, "-n", "tail", "-s", "5", "--rotate", "left"))

	sinks := h.enc.Sinks()
	require.Len(t, sinks, 1)
	assert.Equal(t, span(40, 59), sinks[0].Indices)
	assert.Equal(t, 6, sinks[0].Width)
	assert.Equal(t, 8, sinks[0].Height)
}

func TestExtractFPSOverride(t *testing.T) {
	h := newHarness(t)
	in := h.video(t, "walk.mp4")

	require.NoError(t, h.run("extract", "-i", in, "-o", h.dir, "-n", "slow", "-s", "2", "-e", "3", "-f", "5", "--extra", "0"))

	sinks := h.enc.Sinks()
	require.Len(t, sinks, 1)
	assert.Equal(t, span(10, 15), sinks[0].Indices)
	assert.InDelta(t, 5.0, sinks[0].FPS, 1e-9)
}

func TestExtractRejectsUnknownRotation(t *testing.T) {
	h := newHarness(t)
	in := h.video(t, "walk.mp4")

	err := h.run("extract", "-i", in, "-o", h.dir, "-n", "clip", "-r", "sideways")
	require.Error(t, err)
	assert.Empty(t, h.enc.Sinks())
	assert.Zero(t, h.dec.Opens())
}

func TestExtractRejectsUnsupportedInput(t *testing.T) {
	h := newHarness(t)
	in := h.video(t, "notes.txt")

	err := h.run("extract", "-i", in, "-o", h.dir, "-n", "clip")
	assert.ErrorIs(t, err, media.ErrUnsupportedFormat)
}

func TestSplitPadsFrameWindow(t *testing.T) {
	h := newHarness(t)
	in := h.video(t, "walk.mp4")

	require.NoError(t, h.run("split", "-i", in, "-o", h.dir, "-n", "cut", "-s", "5", "-e", "20"))

	sinks := h.enc.Sinks()
	require.Len(t, sinks, 1)
	assert.Equal(t, filepath.Join(h.dir, "cut", "cut.mp4"), sinks[0].Path)
	assert.Equal(t, span(0, 30), sinks[0].Indices)
	_, err := os.Stat(filepath.Join(h.dir, "images"))
	assert.True(t, os.IsNotExist(err))
}

func TestFramesProcessesEveryInput(t *testing.T) {
	h := newHarness(t)
	a := h.video(t, "a.mp4")
	b := h.video(t, "b.mov")
	out := filepath.Join(h.dir, "imgs")

	require.NoError(t, h.run("frames", "-o", out, "-j", "2", a, b))

	for _, name := range []string{"a", "b"} {
		files := listDir(t, filepath.Join(out, name))
		assert.Len(t, files, 60, name)
		assert.Contains(t, files, fmt.Sprintf("%s_0.jpg", name))
		assert.Contains(t, files, fmt.Sprintf("%s_59.jpg", name))
	}
	assert.Empty(t, h.enc.Sinks())
}

func TestFramesNeedsInput(t *testing.T) {
	h := newHarness(t)
	assert.Error(t, h.run("frames", "-o", h.dir))
}

func TestRotateWholeVideo(t *testing.T) {
	h := newHarness(t)
	in := h.video(t, "walk.mp4")
	out := filepath.Join(h.dir, "rotated")

	require.NoError(t, h.run("rotate", "-i", in, "-o", out, "-r", "right"))

	sinks := h.enc.Sinks()
	require.Len(t, sinks, 1)
	assert.Equal(t, filepath.Join(out, "walk.mp4"), sinks[0].Path)
	assert.Equal(t, 6, sinks[0].Width)
	assert.Equal(t, 8, sinks[0].Height)
	assert.Equal(t, span(0, 59), sinks[0].Indices)
	assert.True(t, sinks[0].Closed)
}

func TestAnnotateWholeVideo(t *testing.T) {
	h := newHarness(t)
	in := h.video(t, "walk.mp4")

	require.NoError(t, h.run("annotate", "-i", in, "-o", h.dir))

	sinks := h.enc.Sinks()
	require.Len(t, sinks, 1)
	assert.Equal(t, filepath.Join(h.dir, "walk", "walk.mp4"), sinks[0].Path)
	assert.Equal(t, 8, sinks[0].Width)
	assert.Len(t, sinks[0].Indices, 60)
}

func TestSelectIsReproducible(t *testing.T) {
	h := newHarness(t)
	src := filepath.Join(h.dir, "imgs", "walk")
	require.NoError(t, os.MkdirAll(src, 0o755))
	for i := 0; i < 50; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(src, fmt.Sprintf("walk_%d.jpg", i)), []byte("x"), 0o644))
	}

	first := filepath.Join(h.dir, "first")
	second := filepath.Join(h.dir, "second")
	require.NoError(t, h.run("select", "-b", src, "-o", first, "-n", "5", "--std", "4", "--seed", "7"))
	require.NoError(t, h.run("select", "-b", src, "-o", second, "-n", "5", "--std", "4", "--seed", "7"))

	assert.Len(t, listDir(t, first), 5)
	assert.Equal(t, listDir(t, first), listDir(t, second))
}

func TestPlayRunsToEnd(t *testing.T) {
	h := newHarness(t)
	in := h.video(t, "walk.mp4")

	require.NoError(t, h.run("play", "-i", in, "--viewer-height", "12", "--start", "50"))
	assert.True(t, h.dec.AllClosed())
}

func TestPlayStopsAfterDuration(t *testing.T) {
	h := newHarness(t)
	h.dec.ReadDelay = 50 * time.Millisecond
	in := h.video(t, "walk.mp4")

	require.NoError(t, h.run("play", "-i", in, "--viewer-height", "12", "-d", "200ms", "--queue-size", "4", "--drop"))
	assert.True(t, h.dec.AllClosed())
}
