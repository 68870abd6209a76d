package ffmpeg

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fiapx/fiapx-frametool/internal/domain/entity"
	"github.com/fiapx/fiapx-frametool/internal/media"
)

const sampleProbe = `{
  "streams": [
    {"codec_type": "audio", "sample_rate": "48000"},
    {"codec_type": "video", "width": 1920, "height": 1080,
     "r_frame_rate": "30/1", "avg_frame_rate": "30000/1001",
     "nb_frames": "300", "duration": "10.010000"}
  ],
  "format": {"duration": "10.020000"}
}`

func TestParseProbe(t *testing.T) {
	info, err := parseProbe([]byte(sampleProbe))
	require.NoError(t, err)
	assert.Equal(t, 1920, info.Width)
	assert.Equal(t, 1080, info.Height)
	assert.InDelta(t, 29.97, info.FrameRate, 0.01)
	assert.Equal(t, 300, info.FrameCount)
}

func TestParseProbeFallsBackToDuration(t *testing.T) {
	out := `{"streams":[{"codec_type":"video","width":320,"height":240,"r_frame_rate":"25/1","avg_frame_rate":"0/0"}],
	         "format":{"duration":"2.0"}}`
	info, err := parseProbe([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, 25.0, info.FrameRate)
	assert.Equal(t, 50, info.FrameCount)
}

func TestParseProbeWithoutVideo(t *testing.T) {
	_, err := parseProbe([]byte(`{"streams":[{"codec_type":"audio"}]}`))
	require.Error(t, err)

	_, err = parseProbe([]byte(`not json`))
	require.Error(t, err)
}

func TestParseProbeHonoursRotation(t *testing.T) {
	cases := []struct {
		name   string
		extra  string
		width  int
		height int
	}{
		{"display matrix", `"side_data_list":[{"side_data_type":"Display Matrix","rotation":-90}]`, 1080, 1920},
		{"rotate tag", `"tags":{"rotate":"90"}`, 1080, 1920},
		{"upside down", `"side_data_list":[{"side_data_type":"Display Matrix","rotation":180}]`, 1920, 1080},
		{"three quarters", `"tags":{"rotate":"270"}`, 1080, 1920},
		{"none", `"tags":{"language":"und"}`, 1920, 1080},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := `{"streams":[{"codec_type":"video","width":1920,"height":1080,` +
				`"avg_frame_rate":"30/1","nb_frames":"30",` + tc.extra + `}]}`
			info, err := parseProbe([]byte(out))
			require.NoError(t, err)
			assert.Equal(t, tc.width, info.Width)
			assert.Equal(t, tc.height, info.Height)
		})
	}
}

func TestParseRate(t *testing.T) {
	assert.Equal(t, 25.0, parseRate("25/1"))
	assert.Equal(t, 0.0, parseRate("0/0"))
	assert.Equal(t, 12.5, parseRate("12.5"))
}

func TestDecodeArgsSeekOnlyWhenPositioned(t *testing.T) {
	args := strings.Join(decodeArgs("in.mp4", 0, 30), " ")
	assert.NotContains(t, args, "-ss")
	assert.Contains(t, args, "-i in.mp4")
	assert.Contains(t, args, "-f rawvideo")
	assert.Contains(t, args, "-pix_fmt bgr24")
	assert.Contains(t, args, "pipe:")

	args = strings.Join(decodeArgs("in.mp4", 45, 30), " ")
	assert.Contains(t, args, "-ss 1.500000")
}

func TestEncodeArgs(t *testing.T) {
	args := strings.Join(encodeArgs("out.mp4", 480, 640, 30, "mpeg4", "mp4v"), " ")
	assert.Contains(t, args, "-s 480x640")
	assert.Contains(t, args, "-framerate 30")
	assert.Contains(t, args, "-c:v mpeg4")
	assert.Contains(t, args, "-vtag mp4v")
	assert.Contains(t, args, "-y")
	assert.Contains(t, args, "out.mp4")
}

func TestOpenVideoSinkRejectsUnwritablePath(t *testing.T) {
	enc := NewEncoder("ffmpeg", "mpeg4", "mp4v", zap.NewNop())
	dir := t.TempDir()
	_, err := enc.OpenVideoSink(context.Background(), filepath.Join(dir, "missing", "\x00bad", "o.mp4"), 4, 4, 30)
	require.ErrorIs(t, err, media.ErrSinkOpen)

	_, err = enc.OpenVideoSink(context.Background(), filepath.Join(dir, "o.mp4"), 0, 4, 30)
	require.ErrorIs(t, err, media.ErrSinkOpen)
}

func TestOpenVideoSinkMissingBinary(t *testing.T) {
	enc := NewEncoder("/nonexistent/ffmpeg-binary", "mpeg4", "mp4v", zap.NewNop())
	_, err := enc.OpenVideoSink(context.Background(), filepath.Join(t.TempDir(), "o.mp4"), 4, 4, 30)
	require.ErrorIs(t, err, media.ErrSinkOpen)
}

func TestTailBufferKeepsEnd(t *testing.T) {
	b := &tailBuffer{limit: 4}
	_, _ = b.Write([]byte("abcdef"))
	assert.Equal(t, "cdef", b.String())
}

func requireFFmpeg(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping ffmpeg round trip in short mode")
	}
	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not installed", bin)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	requireFFmpeg(t)
	ctx := context.Background()
	log := zap.NewNop()
	path := filepath.Join(t.TempDir(), "clip.mp4")

	sink, err := NewEncoder("ffmpeg", "mpeg4", "mp4v", log).OpenVideoSink(ctx, path, 64, 48, 10)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		f := entity.NewFrame(i, 64, 48)
		for p := range f.Pix {
			f.Pix[p] = byte(i * 10)
		}
		require.NoError(t, sink.WriteFrame(f))
	}
	require.NoError(t, sink.Close())

	h, err := NewDecoder("ffmpeg", 0, log).Open(ctx, path)
	require.NoError(t, err)
	defer h.Close()

	info := h.Info()
	assert.Equal(t, 64, info.Width)
	assert.Equal(t, 48, info.Height)
	assert.Equal(t, 20, info.FrameCount)

	require.NoError(t, h.Seek(15))
	read := 0
	for {
		_, err := h.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		read++
	}
	assert.Equal(t, 5, read)
}
