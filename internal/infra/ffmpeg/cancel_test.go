package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fiapx/fiapx-frametool/internal/domain/entity"
	"github.com/fiapx/fiapx-frametool/internal/infra/stub"
	"github.com/fiapx/fiapx-frametool/internal/media"
	"github.com/fiapx/fiapx-frametool/internal/usecase"
)

// slowTools installs shell stand-ins for ffprobe (a 2x2, 10 fps, 1001 frame
// stream) and ffmpeg (one black frame every 50ms, forever). It returns the
// ffmpeg path and a source file to open.
func slowTools(t *testing.T) (string, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stand-ins need a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not installed")
	}

	dir := t.TempDir()
	probe := `{"streams":[{"codec_type":"video","width":2,"height":2,` +
		`"avg_frame_rate":"10/1","nb_frames":"1001"}],"format":{"duration":"100.1"}}`
	writeScript(t, filepath.Join(dir, "ffprobe"), fmt.Sprintf("cat <<'JSON'\n%s\nJSON\n", probe))

	frame := strings.Repeat(`\000`, 2*2*entity.BytesPerPixel)
	writeScript(t, filepath.Join(dir, "ffmpeg"), fmt.Sprintf("while :; do printf '%s'; sleep 0.05; done\n", frame))

	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))

	src := filepath.Join(t.TempDir(), "slow.mp4")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))
	return filepath.Join(dir, "ffmpeg"), src
}

func writeScript(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
}

func TestDecoderReportsCancellationNotEOF(t *testing.T) {
	bin, src := slowTools(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h, err := NewDecoder(bin, 5*time.Second, zap.NewNop()).Open(ctx, src)
	require.NoError(t, err)
	defer h.Close()

	for i := 0; i < 2; i++ {
		_, err := h.Read()
		require.NoError(t, err)
	}

	cancel()
	var readErr error
	for i := 0; i < 100 && readErr == nil; i++ {
		_, readErr = h.Read()
	}
	require.Error(t, readErr)
	assert.ErrorIs(t, readErr, context.Canceled)
	assert.NotErrorIs(t, readErr, io.EOF)
}

func TestCancelledRunFails(t *testing.T) {
	bin, src := slowTools(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, err := media.Open(ctx, NewDecoder(bin, 5*time.Second, zap.NewNop()), src, nil)
	require.NoError(t, err)
	defer stream.Close()

	timer := time.AfterFunc(180*time.Millisecond, cancel)
	defer timer.Stop()

	enc := &stub.Encoder{}
	pipeline := usecase.NewFrameTransformPipeline(enc, nil, zap.NewNop())
	res, err := pipeline.Run(ctx, stream, entity.FrameWindow{Start: 0, End: 1000}, usecase.Outputs{
		VideoPath: filepath.Join(t.TempDir(), "out.mp4"),
	}, usecase.TransformOptions{})

	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Less(t, res.FramesWritten, 1001)
}
