package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"time"

	ffmpeggo "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"

	"github.com/fiapx/fiapx-frametool/internal/domain/entity"
	"github.com/fiapx/fiapx-frametool/internal/domain/port"
)

// Decoder reads BGR24 frames from an ffmpeg child process. Seeking restarts
// the process at the target timestamp.
type Decoder struct {
	binary       string
	probeTimeout time.Duration
	logger       *zap.Logger
}

func NewDecoder(binary string, probeTimeout time.Duration, logger *zap.Logger) *Decoder {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Decoder{binary: binary, probeTimeout: probeTimeout, logger: logger}
}

func (d *Decoder) Open(ctx context.Context, path string) (port.DecodeHandle, error) {
	info, err := Probe(path, d.probeTimeout)
	if err != nil {
		return nil, err
	}
	if info.FrameRate <= 0 {
		return nil, fmt.Errorf("%s: unknown frame rate", path)
	}

	d.logger.Debug("opened video",
		zap.String("path", path),
		zap.Int("width", info.Width),
		zap.Int("height", info.Height),
		zap.Float64("fps", info.FrameRate),
		zap.Int("frames", info.FrameCount),
	)

	return &decodeHandle{
		ctx:    ctx,
		binary: d.binary,
		path:   path,
		info:   info,
		logger: d.logger,
	}, nil
}

type decodeHandle struct {
	ctx    context.Context
	binary string
	path   string
	info   entity.StreamInfo
	logger *zap.Logger

	pos    int
	cmd    *exec.Cmd
	stdout io.ReadCloser
	reader *bufio.Reader
	stderr *tailBuffer
	cancel context.CancelFunc
}

func (h *decodeHandle) Info() entity.StreamInfo { return h.info }

func (h *decodeHandle) Seek(index int) error {
	h.stop()
	h.pos = index
	return nil
}

func decodeArgs(path string, pos int, fps float64) []string {
	in := ffmpeggo.KwArgs{}
	if pos > 0 {
		in["ss"] = strconv.FormatFloat(float64(pos)/fps, 'f', 6, 64)
	}
	return ffmpeggo.Input(path, in).
		Output("pipe:", ffmpeggo.KwArgs{"format": "rawvideo", "pix_fmt": "bgr24"}).
		GlobalArgs("-hide_banner", "-loglevel", "error", "-nostdin").
		GetArgs()
}

func (h *decodeHandle) start() error {
	ctx, cancel := context.WithCancel(h.ctx)
	cmd := exec.CommandContext(ctx, h.binary, decodeArgs(h.path, h.pos, h.info.FrameRate)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("ffmpeg stdout: %w", err)
	}
	h.stderr = &tailBuffer{limit: 4096}
	cmd.Stderr = h.stderr
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("start ffmpeg decoder: %w", err)
	}
	h.cmd, h.stdout, h.cancel = cmd, stdout, cancel
	h.reader = bufio.NewReaderSize(stdout, h.frameSize())
	return nil
}

func (h *decodeHandle) frameSize() int {
	return h.info.Width * h.info.Height * entity.BytesPerPixel
}

func (h *decodeHandle) Read() (*entity.Frame, error) {
	if h.cmd == nil {
		if h.pos >= h.info.FrameCount && h.info.FrameCount > 0 {
			return nil, io.EOF
		}
		if err := h.start(); err != nil {
			return nil, err
		}
	}

	frame := entity.NewFrame(h.pos, h.info.Width, h.info.Height)
	if _, err := io.ReadFull(h.reader, frame.Pix); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			if werr := h.wait(); werr != nil {
				return nil, werr
			}
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read frame %d: %w", h.pos, err)
	}
	h.pos++
	return frame, nil
}

// wait reaps a process that reached end of output. A process killed by the
// handle's context reports the context error, never a clean end of stream.
func (h *decodeHandle) wait() error {
	cmd, stderr := h.cmd, h.stderr
	err := cmd.Wait()
	h.cancel()
	h.cmd = nil
	if ctxErr := h.ctx.Err(); ctxErr != nil {
		return fmt.Errorf("ffmpeg decoder interrupted at frame %d: %w", h.pos, ctxErr)
	}
	if err != nil {
		return fmt.Errorf("ffmpeg decoder: %w: %s", err, stderr.String())
	}
	return nil
}

func (h *decodeHandle) stop() {
	if h.cmd == nil {
		return
	}
	h.cancel()
	_ = h.stdout.Close()
	_ = h.cmd.Wait()
	h.cmd = nil
}

func (h *decodeHandle) Close() error {
	h.stop()
	return nil
}
