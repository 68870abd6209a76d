package stub

import (
	"context"
	"errors"
	"sync"

	"github.com/fiapx/fiapx-frametool/internal/domain/entity"
	"github.com/fiapx/fiapx-frametool/internal/domain/port"
)

// Encoder records every video sink it opens.
type Encoder struct {
	OpenErr  error
	WriteErr error

	mu    sync.Mutex
	sinks []*VideoSink
}

func (e *Encoder) OpenVideoSink(_ context.Context, path string, width, height int, fps float64) (port.FrameSink, error) {
	if e.OpenErr != nil {
		return nil, e.OpenErr
	}
	s := &VideoSink{Path: path, Width: width, Height: height, FPS: fps, writeErr: e.WriteErr}
	e.mu.Lock()
	e.sinks = append(e.sinks, s)
	e.mu.Unlock()
	return s, nil
}

// Sinks returns the sinks opened so far, oldest first.
func (e *Encoder) Sinks() []*VideoSink {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*VideoSink(nil), e.sinks...)
}

type VideoSink struct {
	Path   string
	Width  int
	Height int
	FPS    float64

	Indices []int
	Closed  bool

	writeErr error
}

func (s *VideoSink) WriteFrame(f *entity.Frame) error {
	if s.Closed {
		return errors.New("stub: write on closed sink")
	}
	if s.writeErr != nil {
		return s.writeErr
	}
	if f.Width != s.Width || f.Height != s.Height {
		return errors.New("stub: frame geometry does not match sink")
	}
	s.Indices = append(s.Indices, f.Index)
	return nil
}

func (s *VideoSink) Close() error {
	s.Closed = true
	return nil
}
