package file

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fsnotify/fsnotify"

	"github.com/crimson-sun/marquee/internal/model"
)

// follow tails an NDJSON file. Existing lines are emitted first; a partial
// trailing line is held until its newline arrives.
func (s *Source) follow(ctx context.Context, path string) (<-chan model.RawEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("file source: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("file source: watch: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		f.Close()
		return nil, fmt.Errorf("file source: watch %s: %w", path, err)
	}

	ch := make(chan model.RawEvent)
	t := &tail{src: s, path: path, r: bufio.NewReader(f), out: ch}

	go func() {
		defer close(ch)
		defer watcher.Close()
		defer f.Close()

		if !t.drain(ctx) {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
					slog.Info("followed file went away", "path", path, "op", ev.Op.String())
					return
				}
				if ev.Has(fsnotify.Write) && !t.drain(ctx) {
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("file watcher error", "path", path, "error", err)
			}
		}
	}()
	return ch, nil
}

type tail struct {
	src     *Source
	path    string
	r       *bufio.Reader
	out     chan<- model.RawEvent
	pending []byte
	line    int
}

// drain emits every complete line currently readable. It returns false when
// ctx is cancelled or the file can no longer be read.
func (t *tail) drain(ctx context.Context) bool {
	for {
		chunk, err := t.r.ReadBytes('\n')
		t.pending = append(t.pending, chunk...)
		if errors.Is(err, io.EOF) {
			return true
		}
		if err != nil {
			slog.Warn("followed file read error", "path", t.path, "error", err)
			return false
		}

		t.line++
		data := bytes.TrimSpace(t.pending)
		t.pending = nil
		if len(data) == 0 {
			continue
		}
		select {
		case t.out <- t.src.record(t.path, t.line, model.FormatJSON, bytes.Clone(data)):
		case <-ctx.Done():
			return false
		}
	}
}
