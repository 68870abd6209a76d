package port

import (
	"context"

	"github.com/fiapx/fiapx-frametool/internal/domain/entity"
)

// Decoder opens positionable frame readers over video files.
type Decoder interface {
	Open(ctx context.Context, path string) (DecodeHandle, error)
}

// DecodeHandle is an open video bitstream reader. Read returns io.EOF once the
// source is exhausted; a Seek past the end surfaces the same way on the next Read.
type DecodeHandle interface {
	Info() entity.StreamInfo
	Seek(index int) error
	Read() (*entity.Frame, error)
	Close() error
}

// FrameSink is a write destination that finalizes on Close.
type FrameSink interface {
	WriteFrame(frame *entity.Frame) error
	Close() error
}

// VideoEncoder opens re-encoded video outputs.
type VideoEncoder interface {
	OpenVideoSink(ctx context.Context, path string, width, height int, fps float64) (FrameSink, error)
}

// ImageSinkOpener opens directories of per-frame still images named
// {name}_{index}{ext}.
type ImageSinkOpener interface {
	OpenImageSink(dir, name string) (FrameSink, error)
}
