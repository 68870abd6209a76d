package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/fiapx/fiapx-frametool/internal/domain/entity"
	"github.com/fiapx/fiapx-frametool/internal/domain/port"
	"github.com/fiapx/fiapx-frametool/internal/infra/metrics"
	"github.com/fiapx/fiapx-frametool/internal/transform"
)

// FrameSource is the stream contract the pipeline reads through.
// *media.Stream implements it.
type FrameSource interface {
	Name() string
	Size() (int, int)
	FrameRate() float64
	Seek(index int) error
	ReadFrame() (*entity.Frame, error)
}

// Outputs names the sinks of one run. An empty VideoPath or ImageDir
// disables that sink; at least one must be set.
type Outputs struct {
	VideoPath string
	ImageDir  string
	// Name prefixes image files: {Name}_{index}{ext}.
	Name string
	// FrameRate overrides the stream's rate for the video sink when > 0.
	FrameRate float64
}

type TransformOptions struct {
	Rotation entity.Rotation
	// Annotate draws each frame's index onto it after rotation.
	Annotate bool
}

type TransformResult struct {
	FramesWritten int
	FirstIndex    int
	LastIndex     int
	Width         int
	Height        int
}

// ProgressFunc is called after each frame reaches every sink.
type ProgressFunc func(index int)

// FrameTransformPipeline materializes a frame window into a re-encoded video
// and a directory of still images.
//
// Runs are not atomic: a failure part way leaves a truncated video and a
// partial image set behind. Only one run may use a given stream at a time.
type FrameTransformPipeline struct {
	encoder  port.VideoEncoder
	images   port.ImageSinkOpener
	logger   *zap.Logger
	progress ProgressFunc
}

func NewFrameTransformPipeline(encoder port.VideoEncoder, images port.ImageSinkOpener, logger *zap.Logger) *FrameTransformPipeline {
	return &FrameTransformPipeline{encoder: encoder, images: images, logger: logger}
}

// WithProgress returns a copy of p that reports each written frame to fn.
func (p *FrameTransformPipeline) WithProgress(fn ProgressFunc) *FrameTransformPipeline {
	cp := *p
	cp.progress = fn
	return &cp
}

// Run opens the sinks at the post-rotation geometry, seeks to window.Start
// and writes frames until window.End (inclusive) or end of stream. Both sinks
// are closed on every exit path. An inverted window yields empty outputs.
func (p *FrameTransformPipeline) Run(
	ctx context.Context,
	src FrameSource,
	window entity.FrameWindow,
	out Outputs,
	opts TransformOptions,
) (res *TransformResult, err error) {
	if out.VideoPath == "" && out.ImageDir == "" {
		return nil, errors.New("pipeline needs a video path or an image directory")
	}

	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "FrameTransformPipeline.Run")
	defer span.End()
	started := time.Now()

	width, height := src.Size()
	width, height = opts.Rotation.Geometry(width, height)
	fps := out.FrameRate
	if fps <= 0 {
		fps = src.FrameRate()
	}
	name := out.Name
	if name == "" {
		name = src.Name()
	}

	span.SetAttributes(
		attribute.String("stream.name", src.Name()),
		attribute.Int("window.start", window.Start),
		attribute.Int("window.end", window.End),
		attribute.String("rotation", string(opts.Rotation)),
	)

	log := p.logger.With(
		zap.String("stream", src.Name()),
		zap.Stringer("window", window),
		zap.String("rotation", string(opts.Rotation)),
	)

	var sinks []namedSink
	defer func() {
		for _, s := range sinks {
			if cerr := s.sink.Close(); cerr != nil {
				log.Error("failed to close sink", zap.String("sink", s.name), zap.Error(cerr))
				err = errors.Join(err, fmt.Errorf("close %s sink: %w", s.name, cerr))
			}
		}
		if err != nil {
			span.RecordError(err)
		}
	}()

	if out.VideoPath != "" {
		vs, err := p.encoder.OpenVideoSink(ctx, out.VideoPath, width, height, fps)
		if err != nil {
			return nil, fmt.Errorf("open video sink: %w", err)
		}
		sinks = append(sinks, namedSink{name: "video", sink: vs})
	}
	if out.ImageDir != "" {
		is, err := p.images.OpenImageSink(out.ImageDir, name)
		if err != nil {
			return nil, fmt.Errorf("open image sink: %w", err)
		}
		sinks = append(sinks, namedSink{name: "image", sink: is})
	}

	res = &TransformResult{FirstIndex: -1, LastIndex: -1, Width: width, Height: height}
	if window.Empty() {
		log.Info("empty frame window, nothing to write")
		return res, nil
	}

	if err := src.Seek(window.Start); err != nil {
		return res, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		frame, err := src.ReadFrame()
		if errors.Is(err, io.EOF) {
			if cerr := ctx.Err(); cerr != nil {
				return res, cerr
			}
			log.Debug("stream ended before window end", zap.Int("frames_written", res.FramesWritten))
			break
		}
		if err != nil {
			return res, err
		}
		metrics.FramesDecodedTotal.Inc()

		if frame.Index < window.Start {
			continue
		}
		if frame.Index > window.End {
			break
		}

		frame = transform.Rotate(frame, opts.Rotation)
		if opts.Annotate {
			frame = transform.AnnotateIndex(frame)
		}

		for _, s := range sinks {
			if err := s.sink.WriteFrame(frame); err != nil {
				return res, fmt.Errorf("write frame %d to %s sink: %w", frame.Index, s.name, err)
			}
			metrics.FramesWrittenTotal.WithLabelValues(s.name).Inc()
		}

		if res.FirstIndex < 0 {
			res.FirstIndex = frame.Index
		}
		res.LastIndex = frame.Index
		res.FramesWritten++
		if p.progress != nil {
			p.progress(frame.Index)
		}

		if frame.Index == window.End {
			break
		}
	}

	metrics.PipelineDuration.WithLabelValues("transform").Observe(time.Since(started).Seconds())
	log.Info("frame window written",
		zap.Int("frames", res.FramesWritten),
		zap.Int("first", res.FirstIndex),
		zap.Int("last", res.LastIndex),
		zap.Duration("took", time.Since(started)),
	)
	return res, nil
}

type namedSink struct {
	name string
	sink port.FrameSink
}
