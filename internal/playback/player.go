package playback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fiapx/fiapx-frametool/internal/domain/entity"
	"github.com/fiapx/fiapx-frametool/internal/transform"
)

// ErrPlaying is returned by Seek while a playback run holds the stream.
var ErrPlaying = errors.New("playback: stream is being read, stop playback first")

// Source is the part of media.Stream the player drives.
type Source interface {
	Name() string
	Size() (int, int)
	ReadFrame() (*entity.Frame, error)
	Seek(index int) error
	CurrentFrame() int
}

// Player runs at most one decode loop over a Source at a time. Stop is
// cooperative: the loop checks for cancellation once per frame, so a stop
// waits for at most one in-flight read.
type Player struct {
	src    Source
	queue  *Queue
	width  int
	height int
	logger *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	// separate from mu: a run records its error while Stop holds mu
	errMu   sync.Mutex
	lastErr error

	readers    atomic.Int32
	maxReaders atomic.Int32
}

// NewPlayer sizes display frames to fit viewerHeight (see transform.DisplaySize).
func NewPlayer(src Source, queue *Queue, viewerHeight int, logger *zap.Logger) *Player {
	w, h := src.Size()
	w, h = transform.DisplaySize(w, h, viewerHeight)
	return &Player{
		src:    src,
		queue:  queue,
		width:  w,
		height: h,
		logger: logger.With(zap.String("stream", src.Name())),
	}
}

// DisplaySize is the size frames are resized to before queueing.
func (p *Player) DisplaySize() (int, int) { return p.width, p.height }

func (p *Player) Queue() *Queue { return p.queue }

// Start stops and joins any previous run, then launches a new one. The run
// ends at end of stream, on a read error, or when ctx or Stop cancels it.
func (p *Player) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel, p.done = cancel, done
	p.errMu.Lock()
	p.lastErr = nil
	p.errMu.Unlock()

	runID := uuid.NewString()
	go p.run(runCtx, done, p.logger.With(zap.String("run_id", runID)))
}

// Stop signals the current run and blocks until it has exited.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
	p.cancel, p.done = nil, nil
}

// Wait blocks until the current run, if any, exits on its own or is stopped.
func (p *Player) Wait() error {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}

	p.errMu.Lock()
	defer p.errMu.Unlock()
	return p.lastErr
}

// Running reports whether a run is still decoding.
func (p *Player) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.runningLocked()
}

func (p *Player) runningLocked() bool {
	if p.done == nil {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Seek repositions the stream for the next Start. It refuses while a run is
// reading, since the stream cursor is not synchronized. No run can start
// until the seek has returned.
func (p *Player) Seek(index int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.runningLocked() {
		return ErrPlaying
	}
	return p.src.Seek(index)
}

// Readers is the number of goroutines currently inside the decode loop.
func (p *Player) Readers() int { return int(p.readers.Load()) }

// MaxReaders is the highest value Readers has ever had; it must stay <= 1.
func (p *Player) MaxReaders() int { return int(p.maxReaders.Load()) }

func (p *Player) run(ctx context.Context, done chan struct{}, log *zap.Logger) {
	n := p.readers.Add(1)
	for {
		peak := p.maxReaders.Load()
		if n <= peak || p.maxReaders.CompareAndSwap(peak, n) {
			break
		}
	}
	if n > 1 {
		log.Error("more than one playback loop is reading the stream", zap.Int32("readers", n))
	}

	var err error
	defer func() {
		p.readers.Add(-1)
		p.errMu.Lock()
		p.lastErr = err
		p.errMu.Unlock()
		close(done)
	}()

	log.Debug("playback started", zap.Int("from_frame", p.src.CurrentFrame()))
	frames := 0
	for ctx.Err() == nil {
		var frame *entity.Frame
		frame, err = p.src.ReadFrame()
		if errors.Is(err, io.EOF) {
			err = nil
			break
		}
		if err != nil {
			err = fmt.Errorf("playback read: %w", err)
			log.Error("playback stopped on read error", zap.Error(err))
			break
		}

		img := transform.ForDisplay(frame, p.width, p.height)
		if err = p.queue.Push(ctx, DisplayFrame{Index: frame.Index, Image: img}); err != nil {
			// cancelled while blocked on a full queue
			err = nil
			break
		}
		frames++
	}
	log.Debug("playback finished", zap.Int("frames", frames), zap.Bool("cancelled", ctx.Err() != nil))
}
