package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/crimson-sun/marquee/internal/model"
	"github.com/crimson-sun/marquee/internal/output"
)

const (
	defaultBufferSize   = 1024
	defaultDrainTimeout = 5 * time.Second
)

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("async output: closed")

// Option configures an Async wrapper.
type Option func(*Async)

// WithBufferSize sets the channel buffer capacity. Default: 1024.
func WithBufferSize(n int) Option {
	return func(a *Async) { a.bufSize = n }
}

// WithDrainTimeout bounds how long Close waits for buffered events. Default: 5s.
func WithDrainTimeout(d time.Duration) Option {
	return func(a *Async) { a.drainTimeout = d }
}

// WithOnError sets the callback invoked when the inner output's Write fails.
// Default: logs a warning via slog.
func WithOnError(f func(error)) Option {
	return func(a *Async) { a.errFunc = f }
}

// WithDropOnFull makes Write return immediately (dropping the event) when the
// buffer is full, instead of blocking.
func WithDropOnFull() Option {
	return func(a *Async) { a.dropOnFull = true }
}

// Async decouples event production from consumption via a buffered channel.
// A background goroutine drains it to the wrapped output. Errors from the
// inner output are passed to errFunc rather than propagated to the caller.
type Async struct {
	inner        output.Output
	ch           chan model.ResolvedEvent
	done         chan struct{}
	errFunc      func(error)
	bufSize      int
	drainTimeout time.Duration
	dropOnFull   bool

	mu      sync.RWMutex // guards closed against concurrent sends
	closed  bool
	dropped atomic.Int64
}

// New wraps an output.Output in an async channel-based writer.
// The background drain goroutine starts immediately.
func New(inner output.Output, opts ...Option) *Async {
	a := &Async{
		inner:        inner,
		bufSize:      defaultBufferSize,
		drainTimeout: defaultDrainTimeout,
		errFunc:      func(err error) { slog.Warn("async output write error", "error", err) },
	}
	for _, opt := range opts {
		opt(a)
	}
	a.ch = make(chan model.ResolvedEvent, a.bufSize)
	a.done = make(chan struct{})
	go a.drain()
	return a
}

// Write sends the event into the channel. By default, blocks if the channel
// is full (backpressure) until ctx is done. With WithDropOnFull, returns nil
// immediately and the event is counted as dropped.
func (a *Async) Write(ctx context.Context, event model.ResolvedEvent) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}

	if a.dropOnFull {
		select {
		case a.ch <- event:
		default:
			a.dropped.Add(1)
			slog.Warn("async output buffer full, dropping event",
				"kind", event.Kind, "short_id", event.ShortID, "title", event.Title)
		}
		return nil
	}

	select {
	case a.ch <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dropped returns the number of events discarded because the buffer was full.
func (a *Async) Dropped() int64 {
	return a.dropped.Load()
}

// Close closes the channel, waits for the drain goroutine to finish
// (with a timeout), then closes the inner output. Subsequent calls return nil.
func (a *Async) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.ch)
	a.mu.Unlock()

	select {
	case <-a.done:
	case <-time.After(a.drainTimeout):
		slog.Warn("async output drain timed out", "pending", len(a.ch))
	}
	return a.inner.Close()
}

// drain reads events from the channel and writes them to the inner output.
func (a *Async) drain() {
	defer close(a.done)
	for event := range a.ch {
		if err := a.inner.Write(context.Background(), event); err != nil {
			a.errFunc(err)
		}
	}
}
