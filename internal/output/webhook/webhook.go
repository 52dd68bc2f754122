// Package webhook posts resolved events to an HTTP endpoint in batches.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/crimson-sun/marquee/internal/engine/compactor"
	"github.com/crimson-sun/marquee/internal/model"
	"github.com/crimson-sun/marquee/internal/output"
)

const (
	defaultBatchSize     = 50
	defaultFlushInterval = 5 * time.Second
	defaultTimeout       = 10 * time.Second
	defaultBackoff       = time.Second
	maxRetries           = 3
)

// Option configures a webhook Output.
type Option func(*Output)

// WithHeaders sets extra HTTP headers sent with every POST.
func WithHeaders(h map[string]string) Option {
	return func(o *Output) { o.headers = h }
}

// WithBatchSize sets how many events are posted together. Default: 50.
func WithBatchSize(n int) Option {
	return func(o *Output) { o.batchSize = n }
}

// WithFlushInterval bounds how long an event waits for its batch to fill. Default: 5s.
func WithFlushInterval(d time.Duration) Option {
	return func(o *Output) { o.flushInterval = d }
}

// WithTimeout sets the per-request timeout. Default: 10s.
func WithTimeout(d time.Duration) Option {
	return func(o *Output) { o.client.Timeout = d }
}

// WithBackoff sets the delay before the first retry. It doubles per attempt. Default: 1s.
func WithBackoff(d time.Duration) Option {
	return func(o *Output) { o.backoff = d }
}

// WithVerbosity strips fields from posted events the way FormatEvent does.
func WithVerbosity(v compactor.Verbosity) Option {
	return func(o *Output) { o.verbosity = v }
}

// WithOnError sets the callback for failed timer flushes, which have no
// caller to return to. Default: slog.Warn.
func WithOnError(f func(error)) Option {
	return func(o *Output) { o.errFunc = f }
}

// Payload is the JSON body of every POST.
type Payload struct {
	Count  int                   `json:"count"`
	Kinds  map[string]int        `json:"kinds"`
	Events []model.ResolvedEvent `json:"events"`
}

func newPayload(events []model.ResolvedEvent) Payload {
	p := Payload{Count: len(events), Kinds: make(map[string]int), Events: events}
	for _, e := range events {
		p.Kinds[e.Kind]++
	}
	return p
}

// Output batches resolved events and POSTs them as a Payload. A batch is
// sent when it is full, when the flush interval since its first event has
// passed, or on Close.
type Output struct {
	client        *http.Client
	url           string
	headers       map[string]string
	batchSize     int
	flushInterval time.Duration
	backoff       time.Duration
	verbosity     compactor.Verbosity
	errFunc       func(error)

	mu    sync.Mutex
	batch []model.ResolvedEvent
	timer *time.Timer
}

// New creates a webhook output posting to url.
func New(url string, opts ...Option) *Output {
	o := &Output{
		client:        &http.Client{Timeout: defaultTimeout},
		url:           url,
		batchSize:     defaultBatchSize,
		flushInterval: defaultFlushInterval,
		backoff:       defaultBackoff,
		verbosity:     compactor.Standard,
		errFunc:       func(err error) { slog.Warn("webhook flush failed", "error", err) },
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Write adds event to the current batch, posting it when full.
func (o *Output) Write(ctx context.Context, event model.ResolvedEvent) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.batch = append(o.batch, output.FormatEvent(event, o.verbosity))
	if len(o.batch) >= o.batchSize {
		return o.sendLocked(ctx)
	}
	if o.timer == nil {
		o.timer = time.AfterFunc(o.flushInterval, o.onTimer)
	}
	return nil
}

func (o *Output) onTimer() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.sendLocked(context.Background()); err != nil {
		o.errFunc(err)
	}
}

// Close posts whatever is still batched.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sendLocked(context.Background())
}

// sendLocked posts the current batch. o.mu must be held.
func (o *Output) sendLocked(ctx context.Context) error {
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	if len(o.batch) == 0 {
		return nil
	}
	events := o.batch
	o.batch = nil

	body, err := json.Marshal(newPayload(events))
	if err != nil {
		return fmt.Errorf("webhook: marshal: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("webhook: %w", ctx.Err())
			case <-time.After(o.backoff << (attempt - 1)):
			}
		}
		retry, err := o.post(ctx, body)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry {
			break
		}
		slog.Debug("webhook post failed, retrying", "attempt", attempt+1, "error", err)
	}
	return lastErr
}

// post makes one POST. Transport errors and 5xx responses are retryable.
func (o *Output) post(ctx context.Context, body []byte) (retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("webhook: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range o.headers {
		req.Header.Set(k, v)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return ctx.Err() == nil, fmt.Errorf("webhook: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return false, nil
	case resp.StatusCode >= 500:
		return true, fmt.Errorf("webhook: HTTP %d", resp.StatusCode)
	default:
		return false, fmt.Errorf("webhook: HTTP %d", resp.StatusCode)
	}
}
