// Package playback decodes a stream for display on a background goroutine and
// hands frames to a render tick through a FIFO queue.
package playback

import (
	"context"
	"image"
	"sync"

	"github.com/fiapx/fiapx-frametool/internal/infra/metrics"
)

// DisplayFrame is a decoded frame already converted and resized for display.
type DisplayFrame struct {
	Index int
	Image *image.RGBA
}

// Policy decides what a full bounded queue does with a new frame.
type Policy int

const (
	// DropOldest discards the head of the queue to make room.
	DropOldest Policy = iota
	// BlockProducer makes Push wait until the consumer frees a slot.
	BlockProducer
)

// Queue is the hand-off between one producer and one consumer. With capacity
// zero it is unbounded and never applies backpressure, which suits short
// interactive clips; long sessions should set a capacity and a Policy.
type Queue struct {
	mu       sync.Mutex
	items    []DisplayFrame
	capacity int
	policy   Policy
	dropped  uint64
	space    chan struct{}
}

func NewQueue(capacity int, policy Policy) *Queue {
	if capacity < 0 {
		capacity = 0
	}
	return &Queue{
		capacity: capacity,
		policy:   policy,
		space:    make(chan struct{}),
	}
}

// Push appends f. Only a BlockProducer queue can block, and only it returns
// an error (ctx.Err()) when ctx ends while waiting.
func (q *Queue) Push(ctx context.Context, f DisplayFrame) error {
	for {
		q.mu.Lock()
		if q.capacity == 0 || len(q.items) < q.capacity {
			q.items = append(q.items, f)
			metrics.PlaybackQueueDepth.Set(float64(len(q.items)))
			q.mu.Unlock()
			return nil
		}
		if q.policy == DropOldest {
			q.items[0] = DisplayFrame{}
			q.items = append(q.items[1:], f)
			q.dropped++
			metrics.PlaybackDroppedTotal.Inc()
			q.mu.Unlock()
			return nil
		}
		wait := q.space
		q.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// TryPop removes the oldest frame without blocking.
func (q *Queue) TryPop() (DisplayFrame, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return DisplayFrame{}, false
	}
	f := q.items[0]
	q.items[0] = DisplayFrame{}
	q.items = q.items[1:]
	metrics.PlaybackQueueDepth.Set(float64(len(q.items)))

	// wake a blocked producer
	close(q.space)
	q.space = make(chan struct{})
	return f, true
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Dropped counts frames discarded under DropOldest.
func (q *Queue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
