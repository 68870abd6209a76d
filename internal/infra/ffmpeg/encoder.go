package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"

	ffmpeggo "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"

	"github.com/fiapx/fiapx-frametool/internal/domain/entity"
	"github.com/fiapx/fiapx-frametool/internal/domain/port"
	"github.com/fiapx/fiapx-frametool/internal/media"
)

// Encoder writes BGR24 frames into an ffmpeg child process that re-encodes
// them with a fixed codec and fourcc tag.
type Encoder struct {
	binary string
	codec  string
	tag    string
	logger *zap.Logger
}

func NewEncoder(binary, codec, tag string, logger *zap.Logger) *Encoder {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Encoder{binary: binary, codec: codec, tag: tag, logger: logger}
}

func encodeArgs(path string, width, height int, fps float64, codec, tag string) []string {
	out := ffmpeggo.KwArgs{"c:v": codec}
	if tag != "" {
		out["vtag"] = tag
	}
	return ffmpeggo.Input("pipe:", ffmpeggo.KwArgs{
		"format":    "rawvideo",
		"pix_fmt":   "bgr24",
		"s":         fmt.Sprintf("%dx%d", width, height),
		"framerate": strconv.FormatFloat(fps, 'f', -1, 64),
	}).
		Output(path, out).
		OverWriteOutput().
		GlobalArgs("-hide_banner", "-loglevel", "error").
		GetArgs()
}

// OpenVideoSink fails with media.ErrSinkOpen when the output cannot be
// created or the encoder process cannot start.
func (e *Encoder) OpenVideoSink(ctx context.Context, path string, width, height int, fps float64) (port.FrameSink, error) {
	fail := func(err error) (port.FrameSink, error) {
		e.logger.Error("cannot open video sink", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %v", media.ErrSinkOpen, path, err)
	}

	if width <= 0 || height <= 0 || fps <= 0 {
		return fail(fmt.Errorf("invalid geometry %dx%d@%g", width, height, fps))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fail(err)
	}
	// ffmpeg opens its output lazily; probe writability up front
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fail(err)
	}
	f.Close()

	cmd := exec.CommandContext(ctx, e.binary, encodeArgs(path, width, height, fps, e.codec, e.tag)...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fail(err)
	}
	stderr := &tailBuffer{limit: 4096}
	cmd.Stderr = stderr
	if err := cmd.Start(); err != nil {
		return fail(err)
	}

	return &videoSink{
		path:   path,
		width:  width,
		height: height,
		cmd:    cmd,
		stdin:  stdin,
		stderr: stderr,
	}, nil
}

type videoSink struct {
	path   string
	width  int
	height int
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *tailBuffer

	closeOnce sync.Once
	closeErr  error
}

func (s *videoSink) WriteFrame(f *entity.Frame) error {
	if f.Width != s.width || f.Height != s.height {
		return fmt.Errorf("frame %d is %dx%d, sink %s expects %dx%d",
			f.Index, f.Width, f.Height, s.path, s.width, s.height)
	}
	if _, err := s.stdin.Write(f.Pix); err != nil {
		return fmt.Errorf("write frame %d to %s: %w: %s", f.Index, s.path, err, s.stderr.String())
	}
	return nil
}

// Close flushes the encoder and waits for it to finalize the container.
func (s *videoSink) Close() error {
	s.closeOnce.Do(func() {
		_ = s.stdin.Close()
		if err := s.cmd.Wait(); err != nil {
			s.closeErr = fmt.Errorf("ffmpeg encoder %s: %w: %s", s.path, err, s.stderr.String())
		}
	})
	return s.closeErr
}
