package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/crimson-sun/marquee/internal/engine"
	"github.com/crimson-sun/marquee/internal/engine/compactor"
	"github.com/crimson-sun/marquee/internal/engine/dedup"
	"github.com/crimson-sun/marquee/internal/engine/resolver"
	"github.com/crimson-sun/marquee/internal/model"
	"github.com/crimson-sun/marquee/internal/platform"
	"github.com/crimson-sun/marquee/internal/source"
	"github.com/crimson-sun/marquee/internal/source/file"
)

// --- mocks ---

// mockProcessor titles every event with its raw data, except when the data
// matches failOn, in which case it returns an error.
type mockProcessor struct {
	failOn string
}

func (m *mockProcessor) Process(raw model.RawEvent) (model.ResolvedEvent, error) {
	if string(raw.Data) == m.failOn {
		return model.ResolvedEvent{}, fmt.Errorf("mock: cannot process %q", raw.Data)
	}
	return model.ResolvedEvent{
		Kind:      model.KindEvent,
		Title:     string(raw.Data),
		Timestamp: raw.Received,
	}, nil
}

// ProcessBatch skips failing records and reports them, like the engine does.
func (m *mockProcessor) ProcessBatch(raws []model.RawEvent) ([]model.ResolvedEvent, error) {
	var events []model.ResolvedEvent
	var errs []error
	for _, raw := range raws {
		e, err := m.Process(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		events = append(events, e)
	}
	if len(errs) > 0 {
		return events, fmt.Errorf("mock: %d records failed", len(errs))
	}
	return events, nil
}

// mockSource is a minimal source that sends pre-loaded records.
type mockSource struct {
	records []model.RawEvent
}

func (m *mockSource) Stream(_ context.Context, _ source.Config) (<-chan model.RawEvent, error) {
	ch := make(chan model.RawEvent, len(m.records))
	for _, raw := range m.records {
		ch <- raw
	}
	close(ch)
	return ch, nil
}

func (m *mockSource) Query(_ context.Context, _ source.Config, _ source.QueryParams) ([]model.RawEvent, error) {
	return m.records, nil
}

type mockOutput struct {
	mu     sync.Mutex
	events []model.ResolvedEvent
}

func (m *mockOutput) Write(_ context.Context, e model.ResolvedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *mockOutput) Close() error { return nil }

func (m *mockOutput) Events() []model.ResolvedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]model.ResolvedEvent, len(m.events))
	copy(cp, m.events)
	return cp
}

func records(t0 time.Time, data ...string) []model.RawEvent {
	out := make([]model.RawEvent, len(data))
	for i, d := range data {
		out[i] = model.RawEvent{Received: t0, Source: "test", Line: i + 1, Data: []byte(d)}
	}
	return out
}

func titled(title string, ts time.Time) model.ResolvedEvent {
	return model.ResolvedEvent{Kind: model.KindEvent, Title: title, Timestamp: ts}
}

// --- streamBuffer tests ---

func TestStreamBufferFlush(t *testing.T) {
	out := &mockOutput{}
	d := dedup.New(dedup.Config{Window: time.Second})
	buf := newStreamBuffer(d, out, 100*time.Millisecond, 0)

	t0 := time.Now()
	for i := 0; i < 10; i++ {
		buf.add(titled("TypeError", t0.Add(time.Duration(i)*time.Millisecond)))
	}

	select {
	case <-buf.flushCh():
	case <-time.After(time.Second):
		t.Fatal("flush timer didn't fire")
	}

	if err := buf.flush(context.Background()); err != nil {
		t.Fatalf("flush error: %v", err)
	}

	events := out.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 deduplicated event, got %d", len(events))
	}
	if events[0].Count != 10 {
		t.Fatalf("expected Count=10, got %d", events[0].Count)
	}
}

func TestStreamBufferFlushOnCancel(t *testing.T) {
	out := &mockOutput{}
	d := dedup.New(dedup.Config{Window: 10 * time.Second})
	buf := newStreamBuffer(d, out, 10*time.Second, 0) // won't fire

	t0 := time.Now()
	buf.add(titled("TypeError", t0))
	buf.add(titled("TypeError", t0.Add(time.Second)))

	if err := buf.flush(context.Background()); err != nil {
		t.Fatalf("flush error: %v", err)
	}

	events := out.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 deduplicated event on cancel flush, got %d", len(events))
	}
	if events[0].Count != 2 {
		t.Fatalf("expected Count=2, got %d", events[0].Count)
	}
}

func TestStreamBufferDistinctTitles(t *testing.T) {
	out := &mockOutput{}
	d := dedup.New(dedup.Config{Window: time.Second})
	buf := newStreamBuffer(d, out, 50*time.Millisecond, 0)

	t0 := time.Now()
	buf.add(titled("TypeError", t0))
	buf.add(titled("ValueError", t0))
	buf.add(model.ResolvedEvent{Kind: model.KindTombstone, Message: "deleted", Timestamp: t0})

	select {
	case <-buf.flushCh():
	case <-time.After(time.Second):
		t.Fatal("flush timer didn't fire")
	}

	if err := buf.flush(context.Background()); err != nil {
		t.Fatalf("flush error: %v", err)
	}

	if got := len(out.Events()); got != 3 {
		t.Fatalf("expected 3 distinct events, got %d", got)
	}
}

func TestStreamBufferFlushEmpty(t *testing.T) {
	out := &mockOutput{}
	buf := newStreamBuffer(dedup.New(dedup.Config{Window: time.Second}), out, time.Second, 0)

	if buf.flushCh() != nil {
		t.Fatal("expected nil flush channel before first add")
	}
	if err := buf.flush(context.Background()); err != nil {
		t.Fatalf("flush error: %v", err)
	}
	if got := len(out.Events()); got != 0 {
		t.Fatalf("expected no events, got %d", got)
	}
}

// --- bounded buffer tests ---

func TestStreamBufferMaxSizeFlush(t *testing.T) {
	out := &mockOutput{}
	d := dedup.New(dedup.Config{Window: time.Second})
	buf := newStreamBuffer(d, out, 10*time.Second, 5)

	t0 := time.Now()
	for i := 0; i < 4; i++ {
		if buf.add(titled("x", t0)) {
			t.Fatalf("add() returned true at %d events, expected false (maxSize=5)", i+1)
		}
	}
	if !buf.add(titled("x", t0)) {
		t.Fatal("add() should return true when buffer reaches maxSize")
	}
}

func TestStreamBufferMaxSizeNoDataLoss(t *testing.T) {
	out := &mockOutput{}
	d := dedup.New(dedup.Config{Window: 10 * time.Second})
	buf := newStreamBuffer(d, out, 10*time.Second, 3)

	t0 := time.Now()
	buf.add(titled("a", t0))
	buf.add(titled("b", t0))
	buf.add(titled("c", t0))
	if err := buf.flush(context.Background()); err != nil {
		t.Fatalf("flush error: %v", err)
	}

	buf.add(titled("d", t0))
	buf.add(titled("e", t0))
	if err := buf.flush(context.Background()); err != nil {
		t.Fatalf("flush error: %v", err)
	}

	if got := len(out.Events()); got != 5 {
		t.Fatalf("expected 5 total events (3 + 2), got %d", got)
	}
	if got := buf.windows(); got != 2 {
		t.Errorf("windows() = %d, want 2", got)
	}
}

func TestStreamBufferFlushWritesPastFailure(t *testing.T) {
	out := &failingOutput{failOn: "a"}
	buf := newStreamBuffer(dedup.New(dedup.Config{Window: time.Second}), out, time.Second, 0)

	t0 := time.Now()
	buf.add(titled("a", t0))
	buf.add(titled("b", t0))
	if err := buf.flush(context.Background()); err == nil {
		t.Fatal("expected flush error")
	}
	if got := out.written; got != 1 {
		t.Errorf("written = %d, want 1 (b after a failed)", got)
	}
}

type failingOutput struct {
	failOn  string
	written int
}

func (f *failingOutput) Write(_ context.Context, e model.ResolvedEvent) error {
	if e.Title == f.failOn {
		return errors.New("sink down")
	}
	f.written++
	return nil
}

func (f *failingOutput) Close() error { return nil }

// --- per-record error handling tests ---

func TestStreamDirectSkipsBadRecord(t *testing.T) {
	src := &mockSource{records: records(time.Now(), "good 1", "BAD", "good 2")}
	out := &mockOutput{}

	p := New(src, &mockProcessor{failOn: "BAD"}, out)

	if err := p.Stream(context.Background(), source.Config{}); err != nil {
		t.Fatalf("expected nil error (channel close), got: %v", err)
	}

	events := out.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events (1 skipped), got %d", len(events))
	}
	if events[0].Title != "good 1" {
		t.Errorf("expected first event 'good 1', got %q", events[0].Title)
	}
	if events[1].Title != "good 2" {
		t.Errorf("expected second event 'good 2', got %q", events[1].Title)
	}
	if p.Skipped() != 1 {
		t.Errorf("expected 1 skipped record, got %d", p.Skipped())
	}
}

func TestStreamWithDedupSkipsBadRecord(t *testing.T) {
	src := &mockSource{records: records(time.Now(), "connection timeout", "BAD", "disk full", "disk full")}
	out := &mockOutput{}
	d := dedup.New(dedup.Config{Window: time.Second})

	p := New(src, &mockProcessor{failOn: "BAD"}, out, WithDedup(d, 50*time.Millisecond))

	if err := p.Stream(context.Background(), source.Config{}); err != nil {
		t.Fatalf("expected nil error (channel close), got: %v", err)
	}

	events := out.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events (1 skipped, 1 merged), got %d", len(events))
	}
	if events[1].Count != 2 {
		t.Errorf("expected merged Count=2, got %d", events[1].Count)
	}
	if p.Skipped() != 1 {
		t.Errorf("expected 1 skipped record, got %d", p.Skipped())
	}
}

func TestStreamMaxBufferSize(t *testing.T) {
	src := &mockSource{records: records(time.Now(), "a", "b", "c", "d")}
	out := &mockOutput{}
	d := dedup.New(dedup.Config{Window: time.Second})

	p := New(src, &mockProcessor{}, out, WithDedup(d, time.Hour), WithMaxBufferSize(2))

	if err := p.Stream(context.Background(), source.Config{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(out.Events()); got != 4 {
		t.Fatalf("expected 4 events, got %d", got)
	}
}

func TestQuerySkipsBadRecord(t *testing.T) {
	src := &mockSource{records: records(time.Now(), "good 1", "BAD", "good 2")}
	out := &mockOutput{}

	p := New(src, &mockProcessor{failOn: "BAD"}, out)

	if err := p.Query(context.Background(), source.Config{}, source.QueryParams{}); err != nil {
		t.Fatalf("expected nil error, got: %v", err)
	}

	if got := len(out.Events()); got != 2 {
		t.Fatalf("expected 2 events, got %d", got)
	}
	if p.Skipped() != 1 {
		t.Errorf("expected 1 skipped record, got %d", p.Skipped())
	}
}

func TestQueryWithDedup(t *testing.T) {
	src := &mockSource{records: records(time.Now(), "same", "same", "other")}
	out := &mockOutput{}
	d := dedup.New(dedup.Config{Window: time.Second})

	p := New(src, &mockProcessor{}, out, WithDedup(d, time.Second))

	if err := p.Query(context.Background(), source.Config{}, source.QueryParams{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events := out.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Count != 2 {
		t.Errorf("expected Count=2, got %d", events[0].Count)
	}
}

func TestSkipCounter(t *testing.T) {
	src := &mockSource{records: records(time.Now(), "good", "BAD", "BAD", "BAD", "good")}
	out := &mockOutput{}

	p := New(src, &mockProcessor{failOn: "BAD"}, out)

	if err := p.Stream(context.Background(), source.Config{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Skipped() != 3 {
		t.Fatalf("expected 3 skipped records, got %d", p.Skipped())
	}
	if got := len(out.Events()); got != 2 {
		t.Fatalf("expected 2 good events, got %d", got)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close error: %v", err)
	}
}

func TestStreamContextCancel(t *testing.T) {
	ch := make(chan model.RawEvent)
	src := &blockingSource{ch: ch}
	out := &mockOutput{}

	p := New(src, &mockProcessor{}, out)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Stream(ctx, source.Config{}) }()

	ch <- model.RawEvent{Received: time.Now(), Data: []byte("one")}
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Stream did not return after cancel")
	}
	if got := len(out.Events()); got != 1 {
		t.Fatalf("expected 1 event before cancel, got %d", got)
	}
}

type blockingSource struct {
	ch chan model.RawEvent
}

func (b *blockingSource) Stream(context.Context, source.Config) (<-chan model.RawEvent, error) {
	return b.ch, nil
}

func (b *blockingSource) Query(context.Context, source.Config, source.QueryParams) ([]model.RawEvent, error) {
	return nil, nil
}

// --- end to end through the real engine ---

func TestQueryFileThroughEngine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.ndjson")
	content := `{"id":"1","eventID":"abcdef0123456789","type":"error","title":"TypeError: x","metadata":{"type":"TypeError","value":"x is undefined"},"culprit":"app.js"}
not json
{"id":"2","type":"default","metadata":{"title":"Hello world"},"culprit":"main"}
{"id":"3","culprit":"Issue deleted"}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	eng := engine.New(resolver.New(platform.Default), compactor.New(compactor.Full), engine.Settings{})
	out := &mockOutput{}
	p := New(file.New(), eng, out)

	if err := p.Query(context.Background(), source.Config{Provider: "file", Path: path}, source.QueryParams{}); err != nil {
		t.Fatalf("query: %v", err)
	}

	events := out.Events()
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if p.Skipped() != 1 {
		t.Errorf("expected 1 skipped record, got %d", p.Skipped())
	}

	if events[0].Kind != model.KindEvent || events[0].Title != "TypeError" || events[0].Subtitle != "x is undefined" {
		t.Errorf("unexpected error event: %+v", events[0])
	}
	if events[0].ShortID != "abcdef01" {
		t.Errorf("expected short id abcdef01, got %q", events[0].ShortID)
	}
	if events[1].Kind != model.KindGroup || events[1].Title != "Hello world" || events[1].Message != "main" {
		t.Errorf("unexpected default group: %+v", events[1])
	}
	if events[2].Kind != model.KindTombstone || events[2].Message != "Issue deleted" {
		t.Errorf("unexpected tombstone: %+v", events[2])
	}
}
