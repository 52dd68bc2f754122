package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/crimson-sun/marquee/internal/engine/dedup"
	"github.com/crimson-sun/marquee/internal/model"
	"github.com/crimson-sun/marquee/internal/output"
	"github.com/crimson-sun/marquee/internal/source"
)

// Processor turns raw records into resolved events.
type Processor interface {
	Process(raw model.RawEvent) (model.ResolvedEvent, error)
	ProcessBatch(raws []model.RawEvent) ([]model.ResolvedEvent, error)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDedup collapses identical titles. In stream mode events are buffered
// for window before each deduplicated flush.
func WithDedup(d *dedup.Deduplicator, window time.Duration) Option {
	return func(p *Pipeline) {
		p.dedup = d
		p.window = window
	}
}

// WithMaxBufferSize flushes the stream buffer early once it holds n events.
// 0 means unlimited.
func WithMaxBufferSize(n int) Option {
	return func(p *Pipeline) { p.maxBuffer = n }
}

// Pipeline connects a source, processor, and output into a processing pipeline.
type Pipeline struct {
	source    source.Source
	processor Processor
	output    output.Output
	dedup     *dedup.Deduplicator
	window    time.Duration
	maxBuffer int

	skippedRecords atomic.Int64
}

// New creates a Pipeline from the given components.
func New(src source.Source, proc Processor, out output.Output, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:    src,
		processor: proc,
		output:    out,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Stream processes records as they arrive. A record that cannot be
// processed is logged and skipped. Blocks until the source is exhausted,
// the context is cancelled, or an output fails.
func (p *Pipeline) Stream(ctx context.Context, cfg source.Config) error {
	ch, err := p.source.Stream(ctx, cfg)
	if err != nil {
		return fmt.Errorf("pipeline stream: %w", err)
	}

	if p.dedup == nil || p.window <= 0 {
		return p.streamDirect(ctx, ch)
	}
	return p.streamBuffered(ctx, ch)
}

func (p *Pipeline) streamDirect(ctx context.Context, ch <-chan model.RawEvent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-ch:
			if !ok {
				return nil
			}
			event, ok := p.process(raw)
			if !ok {
				continue
			}
			if err := p.output.Write(ctx, event); err != nil {
				return fmt.Errorf("pipeline output: %w", err)
			}
		}
	}
}

func (p *Pipeline) streamBuffered(ctx context.Context, ch <-chan model.RawEvent) error {
	buf := newStreamBuffer(p.dedup, p.output, p.window, p.maxBuffer)
	defer func() { slog.Debug("stream buffer closed", "windows", buf.windows()) }()
	for {
		select {
		case <-ctx.Done():
			// Flush what we have with a fresh context so shutdown does not drop events.
			if err := buf.flush(context.Background()); err != nil {
				return fmt.Errorf("pipeline flush: %w", err)
			}
			return ctx.Err()
		case <-buf.flushCh():
			if err := buf.flush(ctx); err != nil {
				return fmt.Errorf("pipeline flush: %w", err)
			}
		case raw, ok := <-ch:
			if !ok {
				if err := buf.flush(ctx); err != nil {
					return fmt.Errorf("pipeline flush: %w", err)
				}
				return nil
			}
			event, ok := p.process(raw)
			if !ok {
				continue
			}
			if buf.add(event) {
				if err := buf.flush(ctx); err != nil {
					return fmt.Errorf("pipeline flush: %w", err)
				}
			}
		}
	}
}

// process resolves one record, logging and counting it when it is skipped.
func (p *Pipeline) process(raw model.RawEvent) (model.ResolvedEvent, bool) {
	event, err := p.processor.Process(raw)
	if err != nil {
		p.skippedRecords.Add(1)
		slog.Warn("skipping record", "source", raw.Source, "line", raw.Line, "error", err)
		return model.ResolvedEvent{}, false
	}
	return event, true
}

// Query runs the pipeline in one-shot batch mode.
func (p *Pipeline) Query(ctx context.Context, cfg source.Config, params source.QueryParams) error {
	raws, err := p.source.Query(ctx, cfg, params)
	if err != nil {
		return fmt.Errorf("pipeline query: %w", err)
	}

	events, err := p.processor.ProcessBatch(raws)
	if err != nil {
		skipped := len(raws) - len(events)
		p.skippedRecords.Add(int64(skipped))
		slog.Warn("skipped records in batch", "count", skipped, "error", err)
	}

	if p.dedup != nil {
		events = p.dedup.DeduplicateBatch(events)
	}

	for _, event := range events {
		if err := p.output.Write(ctx, event); err != nil {
			return fmt.Errorf("pipeline output: %w", err)
		}
	}
	return nil
}

// Skipped returns the number of records that could not be processed so far.
func (p *Pipeline) Skipped() int64 {
	return p.skippedRecords.Load()
}

// Close shuts down the output.
func (p *Pipeline) Close() error {
	if n := p.skippedRecords.Load(); n > 0 {
		slog.Info("pipeline closed with skipped records", "count", n)
	}
	return p.output.Close()
}
