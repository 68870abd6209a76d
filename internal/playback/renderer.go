package playback

import (
	"context"
	"time"
)

const (
	DefaultTightDelay = time.Millisecond
	DefaultIdleDelay  = 100 * time.Millisecond
)

// Display shows one frame together with the stream position label.
type Display interface {
	Show(frame DisplayFrame, position int)
}

// Renderer drains the queue on a timer: right after a frame was shown it
// polls again after TightDelay, otherwise after IdleDelay. It never blocks on
// the queue and never skips or reorders frames.
type Renderer struct {
	queue    *Queue
	display  Display
	position func() int

	TightDelay time.Duration
	IdleDelay  time.Duration
}

// NewRenderer labels frames with position(), typically the stream's current
// frame.
func NewRenderer(queue *Queue, display Display, position func() int) *Renderer {
	return &Renderer{
		queue:      queue,
		display:    display,
		position:   position,
		TightDelay: DefaultTightDelay,
		IdleDelay:  DefaultIdleDelay,
	}
}

// Tick shows at most one frame and returns the delay before the next tick.
func (r *Renderer) Tick() time.Duration {
	f, ok := r.queue.TryPop()
	if !ok {
		return r.IdleDelay
	}
	r.display.Show(f, r.position())
	return r.TightDelay
}

// Run ticks until ctx is done.
func (r *Renderer) Run(ctx context.Context) {
	timer := time.NewTimer(r.Tick())
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			timer.Reset(r.Tick())
		}
	}
}
