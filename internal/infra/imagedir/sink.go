// Package imagedir writes frames as individual still images into a directory.
package imagedir

import (
	"fmt"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/fiapx/fiapx-frametool/internal/domain/entity"
	"github.com/fiapx/fiapx-frametool/internal/domain/port"
	"github.com/fiapx/fiapx-frametool/internal/media"
	"github.com/fiapx/fiapx-frametool/internal/transform"
)

// Opener creates image sinks for one extension (".jpg", ".jpeg" or ".png").
type Opener struct {
	ext         string
	jpegQuality int
	logger      *zap.Logger
}

func NewOpener(ext string, jpegQuality int, logger *zap.Logger) (*Opener, error) {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	switch ext {
	case ".jpg", ".jpeg", ".png":
	default:
		return nil, fmt.Errorf("unsupported image extension %q (must be .jpg, .jpeg or .png)", ext)
	}
	if jpegQuality < 1 || jpegQuality > 100 {
		jpegQuality = jpeg.DefaultQuality
	}
	return &Opener{ext: ext, jpegQuality: jpegQuality, logger: logger}, nil
}

func (o *Opener) Ext() string { return o.ext }

// OpenImageSink creates dir if needed. Failure to do so wraps media.ErrSinkOpen.
func (o *Opener) OpenImageSink(dir, name string) (port.FrameSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		o.logger.Error("cannot open image sink", zap.String("dir", dir), zap.Error(err))
		return nil, fmt.Errorf("%w: create image dir %s: %v", media.ErrSinkOpen, dir, err)
	}
	return &Sink{dir: dir, name: name, opener: o}, nil
}

// Sink writes {name}_{index}{ext} per frame.
type Sink struct {
	dir     string
	name    string
	opener  *Opener
	written int
}

// FileName is the image file name for a frame index.
func FileName(name string, index int, ext string) string {
	return fmt.Sprintf("%s_%d%s", name, index, ext)
}

func (s *Sink) WriteFrame(f *entity.Frame) error {
	path := filepath.Join(s.dir, FileName(s.name, f.Index, s.opener.ext))
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create image %s: %w", path, err)
	}
	defer file.Close()

	img := transform.ToRGBA(f)
	switch s.opener.ext {
	case ".png":
		err = png.Encode(file, img)
	default:
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: s.opener.jpegQuality})
	}
	if err != nil {
		return fmt.Errorf("encode image %s: %w", path, err)
	}
	s.written++
	return file.Close()
}

// Written is the number of images stored by this sink.
func (s *Sink) Written() int { return s.written }

func (s *Sink) Close() error { return nil }
