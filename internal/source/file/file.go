// Package file reads event records from local files or standard input.
//
// The encoding is chosen by extension: .yaml/.yml files hold one record per
// YAML document (or a top-level sequence of records), .json files hold one
// record or an array of records, and anything else is NDJSON.
package file

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/crimson-sun/marquee/internal/model"
	"github.com/crimson-sun/marquee/internal/source"
)

const maxLineSize = 4 * 1024 * 1024

type kind int

const (
	kindNDJSON kind = iota
	kindJSON
	kindYAML
)

func init() {
	source.Register("file", func() source.Source { return New() })
}

// Source reads records from cfg.Path.
type Source struct {
	stdin io.Reader
	now   func() time.Time
}

// New creates a file Source.
func New() *Source {
	return &Source{stdin: os.Stdin, now: time.Now}
}

func detect(path string) kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return kindYAML
	case ".json":
		return kindJSON
	default:
		return kindNDJSON
	}
}

// Query reads every record in the file, up to params.Limit.
func (s *Source) Query(ctx context.Context, cfg source.Config, params source.QueryParams) ([]model.RawEvent, error) {
	r, name, closeFn, err := s.open(cfg.Path)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	var raws []model.RawEvent
	switch detect(name) {
	case kindYAML:
		raws, err = s.readYAML(r, name)
	case kindJSON:
		raws, err = s.readJSON(r, name)
	default:
		raws, err = s.readNDJSON(ctx, r, name)
	}
	if err != nil {
		return nil, err
	}
	if params.Limit > 0 && len(raws) > params.Limit {
		raws = raws[:params.Limit]
	}
	return raws, nil
}

// Stream emits the records in the file. With cfg.Follow set on an NDJSON
// file, it keeps emitting lines appended to the file until ctx is cancelled
// or the file is removed.
func (s *Source) Stream(ctx context.Context, cfg source.Config) (<-chan model.RawEvent, error) {
	if !cfg.Follow || cfg.Path == "-" || detect(cfg.Path) != kindNDJSON {
		raws, err := s.Query(ctx, cfg, source.QueryParams{})
		if err != nil {
			return nil, err
		}
		ch := make(chan model.RawEvent)
		go func() {
			defer close(ch)
			for _, raw := range raws {
				select {
				case ch <- raw:
				case <-ctx.Done():
					return
				}
			}
		}()
		return ch, nil
	}
	return s.follow(ctx, cfg.Path)
}

func (s *Source) open(path string) (io.Reader, string, func() error, error) {
	if path == "-" {
		return s.stdin, "stdin", func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", nil, fmt.Errorf("file source: %w", err)
	}
	return f, path, f.Close, nil
}

func (s *Source) record(name string, line int, format model.Format, data []byte) model.RawEvent {
	return model.RawEvent{
		Received: s.now(),
		Source:   name,
		Line:     line,
		Format:   format,
		Data:     data,
	}
}

func (s *Source) readNDJSON(ctx context.Context, r io.Reader, name string) ([]model.RawEvent, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)

	var raws []model.RawEvent
	line := 0
	for sc.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data := bytes.TrimSpace(sc.Bytes())
		if len(data) == 0 {
			continue
		}
		raws = append(raws, s.record(name, line, model.FormatJSON, bytes.Clone(data)))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("file source: read %s: %w", name, err)
	}
	return raws, nil
}

func (s *Source) readJSON(r io.Reader, name string) ([]model.RawEvent, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("file source: read %s: %w", name, err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	if data[0] != '[' {
		return []model.RawEvent{s.record(name, 1, model.FormatJSON, data)}, nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("file source: parse %s: %w", name, err)
	}
	raws := make([]model.RawEvent, len(elems))
	for i, e := range elems {
		raws[i] = s.record(name, i+1, model.FormatJSON, e)
	}
	return raws, nil
}

func (s *Source) readYAML(r io.Reader, name string) ([]model.RawEvent, error) {
	dec := yaml.NewDecoder(r)
	var raws []model.RawEvent
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return raws, nil
		}
		if err != nil {
			return nil, fmt.Errorf("file source: parse %s: %w", name, err)
		}

		nodes := []*yaml.Node{&doc}
		if len(doc.Content) == 1 && doc.Content[0].Kind == yaml.SequenceNode {
			nodes = doc.Content[0].Content
		}
		for _, n := range nodes {
			data, err := yaml.Marshal(n)
			if err != nil {
				return nil, fmt.Errorf("file source: encode %s:%d: %w", name, n.Line, err)
			}
			raws = append(raws, s.record(name, n.Line, model.FormatYAML, data))
		}
	}
}
