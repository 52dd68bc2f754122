package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/crimson-sun/marquee/internal/engine/dedup"
	"github.com/crimson-sun/marquee/internal/model"
	"github.com/crimson-sun/marquee/internal/output"
)

// streamBuffer holds resolved events for one dedup window. The window opens
// on the first event after a flush and closes when its timer fires, when
// the buffer reaches maxSize, or when the stream ends.
type streamBuffer struct {
	collapse *dedup.Deduplicator
	sink     output.Output
	window   time.Duration
	maxSize  int // <= 0: no cap

	mu      sync.Mutex
	held    []model.ResolvedEvent
	closing *time.Timer
	flushes int
}

func newStreamBuffer(d *dedup.Deduplicator, out output.Output, window time.Duration, maxSize int) *streamBuffer {
	return &streamBuffer{collapse: d, sink: out, window: window, maxSize: maxSize}
}

// add holds ev and reports whether the buffer is now at capacity.
func (b *streamBuffer) add(ev model.ResolvedEvent) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.held) == 0 {
		b.closing = time.NewTimer(b.window)
	}
	b.held = append(b.held, ev)
	return b.maxSize > 0 && len(b.held) >= b.maxSize
}

// flushCh fires when the open window closes. It is nil while the buffer is
// empty, so a select on it blocks.
func (b *streamBuffer) flushCh() <-chan time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closing == nil {
		return nil
	}
	return b.closing.C
}

// flush collapses the held events and writes them. Every collapsed event is
// attempted; write failures are joined.
func (b *streamBuffer) flush(ctx context.Context) error {
	b.mu.Lock()
	held := b.held
	b.held = nil
	if b.closing != nil {
		b.closing.Stop()
		b.closing = nil
	}
	if len(held) > 0 {
		b.flushes++
	}
	b.mu.Unlock()

	if len(held) == 0 {
		return nil
	}

	var errs []error
	for _, ev := range b.collapse.DeduplicateBatch(held) {
		if err := b.sink.Write(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// windows returns how many non-empty windows have been flushed.
func (b *streamBuffer) windows() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.flushes
}
