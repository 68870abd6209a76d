// Package stub provides in-memory codec test doubles.
package stub

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fiapx/fiapx-frametool/internal/domain/entity"
	"github.com/fiapx/fiapx-frametool/internal/domain/port"
)

// Decoder opens synthetic streams. Every frame has Pix[0] set to byte(index)
// so callers can check which frame they got.
type Decoder struct {
	Info      entity.StreamInfo
	ReadDelay time.Duration
	SeekDelay time.Duration
	OpenErr   error

	opens    atomic.Int64
	reading  atomic.Int64
	maxReads atomic.Int64
	mu       sync.Mutex
	handles  []*Handle
}

func NewDecoder(info entity.StreamInfo) *Decoder {
	return &Decoder{Info: info}
}

func (d *Decoder) Open(_ context.Context, _ string) (port.DecodeHandle, error) {
	if d.OpenErr != nil {
		return nil, d.OpenErr
	}
	d.opens.Add(1)
	h := &Handle{dec: d}
	d.mu.Lock()
	d.handles = append(d.handles, h)
	d.mu.Unlock()
	return h, nil
}

// Opens counts successful Open calls.
func (d *Decoder) Opens() int { return int(d.opens.Load()) }

// MaxConcurrentReads is the highest number of Read or Seek calls observed in
// flight at the same time across all handles.
func (d *Decoder) MaxConcurrentReads() int { return int(d.maxReads.Load()) }

// AllClosed reports whether every opened handle was closed.
func (d *Decoder) AllClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, h := range d.handles {
		if !h.closed.Load() {
			return false
		}
	}
	return true
}

// enter records one more call in flight and returns its release.
func (d *Decoder) enter() func() {
	n := d.reading.Add(1)
	for {
		peak := d.maxReads.Load()
		if n <= peak || d.maxReads.CompareAndSwap(peak, n) {
			break
		}
	}
	return func() { d.reading.Add(-1) }
}

type Handle struct {
	dec    *Decoder
	pos    int
	closed atomic.Bool
}

func (h *Handle) Info() entity.StreamInfo { return h.dec.Info }

func (h *Handle) Seek(index int) error {
	defer h.dec.enter()()
	if h.closed.Load() {
		return errors.New("stub: seek on closed handle")
	}
	if h.dec.SeekDelay > 0 {
		time.Sleep(h.dec.SeekDelay)
	}
	h.pos = index
	return nil
}

func (h *Handle) Read() (*entity.Frame, error) {
	defer h.dec.enter()()

	if h.closed.Load() {
		return nil, io.EOF
	}
	if h.dec.ReadDelay > 0 {
		time.Sleep(h.dec.ReadDelay)
	}
	if h.pos >= h.dec.Info.FrameCount {
		return nil, io.EOF
	}
	f := entity.NewFrame(h.pos, h.dec.Info.Width, h.dec.Info.Height)
	f.Pix[0] = byte(h.pos)
	h.pos++
	return f, nil
}

func (h *Handle) Close() error {
	h.closed.Store(true)
	return nil
}
