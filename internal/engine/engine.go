package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/crimson-sun/marquee/internal/codec"
	"github.com/crimson-sun/marquee/internal/engine/compactor"
	"github.com/crimson-sun/marquee/internal/engine/resolver"
	"github.com/crimson-sun/marquee/internal/model"
)

// Settings are the caller-controlled inputs of title resolution.
type Settings struct {
	Features model.FeatureSet
	Grouping bool
}

// Engine orchestrates the decode → resolve → compact pipeline.
type Engine struct {
	resolver  *resolver.Resolver
	compactor *compactor.Compactor
	settings  Settings
}

// New creates an Engine with the provided components.
func New(res *resolver.Resolver, cmp *compactor.Compactor, s Settings) *Engine {
	return &Engine{
		resolver:  res,
		compactor: cmp,
		settings:  s,
	}
}

// RecordError reports a raw record that could not be decoded.
type RecordError struct {
	Source string
	Line   int
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Source, e.Line, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// Process decodes and resolves a single raw record.
func (e *Engine) Process(raw model.RawEvent) (model.ResolvedEvent, error) {
	var (
		ev  model.EventLike
		err error
	)
	switch raw.Format {
	case model.FormatYAML:
		ev, err = codec.DecodeYAML(raw.Data)
	default:
		ev, err = codec.DecodeJSON(raw.Data)
	}
	if err != nil {
		return model.ResolvedEvent{}, &RecordError{Source: raw.Source, Line: raw.Line, Err: err}
	}
	return e.Resolve(ev, raw.Received), nil
}

// ProcessBatch resolves every record it can. Records that fail to decode
// are skipped and reported together in the returned error.
func (e *Engine) ProcessBatch(raws []model.RawEvent) ([]model.ResolvedEvent, error) {
	events := make([]model.ResolvedEvent, 0, len(raws))
	var errs []error
	for _, raw := range raws {
		ev, err := e.Process(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		events = append(events, ev)
	}
	return events, errors.Join(errs...)
}

// Resolve computes the display identity of an already decoded record.
// received is used as the timestamp when the record carries none.
func (e *Engine) Resolve(ev model.EventLike, received time.Time) model.ResolvedEvent {
	out := model.ResolvedEvent{
		Message:   e.compactor.Compact(resolver.Message(ev)),
		Timestamp: received,
	}

	switch v := ev.(type) {
	case *model.Tombstone:
		out.Kind = model.KindTombstone
		out.ID = v.ID
		return out
	case *model.Group:
		out.Kind = model.KindGroup
		out.ID = v.ID
		out.ShortID = v.ID
	case *model.Event:
		out.Kind = model.KindEvent
		out.ID = v.EventID
		out.ShortID = resolver.ShortEventID(v.EventID)
		if !v.DateCreated.IsZero() {
			out.Timestamp = v.DateCreated
		}
	}

	t, ok := ev.(model.Titled)
	if !ok {
		return out
	}
	d := e.resolver.Title(t, e.settings.Features, e.settings.Grouping)
	out.Type = t.Common().RawType
	out.Title = d.Title
	out.Subtitle = d.Subtitle
	out.TreeLabel = d.TreeLabel
	out.Location = e.resolver.Location(ev)
	return out
}
