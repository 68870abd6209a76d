// Package media wraps an opened video source behind a cursor-tracking stream.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/fiapx/fiapx-frametool/internal/domain/entity"
	"github.com/fiapx/fiapx-frametool/internal/domain/port"
)

// DefaultExtensions is the recognized container allowlist.
var DefaultExtensions = []string{".mp4", ".avi", ".mov", ".mkv", ".m4v", ".wmv", ".webm"}

// Stream owns one decode handle exclusively. It does no locking of its own:
// callers serialize Seek, ReadFrame and Close. CurrentFrame may be read from
// any goroutine.
type Stream struct {
	path   string
	name   string
	info   entity.StreamInfo
	handle port.DecodeHandle
	cursor atomic.Int64
	closed atomic.Bool
}

// Open validates path against the extension allowlist (DefaultExtensions when
// allowed is empty) and opens it with dec. Validation happens before any
// decode handle is allocated.
func Open(ctx context.Context, dec port.Decoder, path string, allowed []string) (*Stream, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, path)
	}
	if !Supported(path, allowed) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	handle, err := dec.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open decoder for %s: %w", path, err)
	}

	return &Stream{
		path:   path,
		name:   BaseName(path),
		info:   handle.Info(),
		handle: handle,
	}, nil
}

// Supported reports whether path carries an allowed extension (case-insensitive).
func Supported(path string, allowed []string) bool {
	if len(allowed) == 0 {
		allowed = DefaultExtensions
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	for _, a := range allowed {
		if strings.ToLower(a) == ext {
			return true
		}
	}
	return false
}

// BaseName is the file name of path without its extension.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (s *Stream) Path() string { return s.path }

func (s *Stream) Name() string { return s.name }

func (s *Stream) Size() (int, int) { return s.info.Width, s.info.Height }

func (s *Stream) FrameRate() float64 { return s.info.FrameRate }

func (s *Stream) FrameCount() int { return s.info.FrameCount }

func (s *Stream) Info() entity.StreamInfo { return s.info }

// CurrentFrame is the index the next ReadFrame will return, bounded by the
// frame count when the container reports one.
func (s *Stream) CurrentFrame() int {
	cur := int(s.cursor.Load())
	if s.info.FrameCount > 0 && cur > s.info.FrameCount {
		return s.info.FrameCount
	}
	return cur
}

// Seek repositions the cursor. Bounds past the end are not checked; the next
// ReadFrame reports io.EOF instead.
func (s *Stream) Seek(index int) error {
	if s.closed.Load() {
		return errors.New("media: seek on closed stream")
	}
	if index < 0 {
		return fmt.Errorf("media: negative seek index %d", index)
	}
	if err := s.handle.Seek(index); err != nil {
		return fmt.Errorf("seek %s to frame %d: %w", s.name, index, err)
	}
	s.cursor.Store(int64(index))
	return nil
}

// ReadFrame returns the frame at the cursor and advances it by one. It returns
// io.EOF when the stream is exhausted.
func (s *Stream) ReadFrame() (*entity.Frame, error) {
	if s.closed.Load() {
		return nil, io.EOF
	}
	frame, err := s.handle.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read %s at frame %d: %w", s.name, s.cursor.Load(), err)
	}
	frame.Index = int(s.cursor.Add(1) - 1)
	return frame, nil
}

// Close releases the decode handle. Calls after the first are no-ops.
func (s *Stream) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.handle.Close()
}
