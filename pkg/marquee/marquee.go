package marquee

import (
	"bytes"
	"time"

	"github.com/crimson-sun/marquee/internal/codec"
	"github.com/crimson-sun/marquee/internal/engine"
	"github.com/crimson-sun/marquee/internal/engine/compactor"
	"github.com/crimson-sun/marquee/internal/engine/resolver"
	"github.com/crimson-sun/marquee/internal/engine/treelabel"
	"github.com/crimson-sun/marquee/internal/model"
)

// GetTitle resolves the title, subtitle and tree label of an event or group.
// grouping is set by views that show grouping details.
func GetTitle(ev Titled, features FeatureSet, grouping bool) Display {
	return resolver.Title(ev, features, grouping)
}

// GetMessage returns the single-line display message of any record, or "".
func GetMessage(ev EventLike) string {
	return resolver.Message(ev)
}

// GetLocation returns the file an error was raised in for events from
// native platforms, or "".
func GetLocation(ev EventLike) string {
	return resolver.Location(ev)
}

// FormatTreeLabelPart renders one tree label token.
func FormatTreeLabelPart(p TreeLabelPart) string {
	return treelabel.FormatPart(p)
}

// ComposeTreeLabel derives the title of error metadata from its tree labels.
// treeLabel is nil when the title was not built from a tree label.
func ComposeTreeLabel(md Metadata) (title string, treeLabel []TreeLabelPart) {
	c := treelabel.Compose(md)
	return c.Title, c.TreeLabel
}

// GetShortEventID truncates an event id to 8 characters.
func GetShortEventID(id string) string {
	return resolver.ShortEventID(id)
}

// Parse decodes a JSON or YAML record. Whether it is a tombstone, group or
// event is decided here, once.
func Parse(data []byte) (EventLike, error) {
	if sniff(data) == model.FormatYAML {
		return codec.DecodeYAML(data)
	}
	return codec.DecodeJSON(data)
}

// sniff treats anything that does not start like a JSON object as YAML.
func sniff(data []byte) model.Format {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return model.FormatJSON
	}
	return model.FormatYAML
}

// Resolver decodes and resolves records with a fixed set of options.
// Safe for concurrent use.
type Resolver struct {
	engine *engine.Engine
	now    func() time.Time
}

// New creates a Resolver.
func New(opts ...Option) *Resolver {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	res := resolver.New(o.platforms)
	cmp := compactor.New(compactor.ParseVerbosity(o.verbosity))
	eng := engine.New(res, cmp, engine.Settings{Features: o.features, Grouping: o.grouping})
	return &Resolver{engine: eng, now: time.Now}
}

// Resolve decodes one JSON or YAML record and resolves it.
func (r *Resolver) Resolve(data []byte) (Result, error) {
	e, err := r.engine.Process(r.raw(data, 0))
	if err != nil {
		return Result{}, err
	}
	return resultFromResolved(e), nil
}

// ResolveEvent resolves an already decoded record.
func (r *Resolver) ResolveEvent(ev EventLike) Result {
	return resultFromResolved(r.engine.Resolve(ev, r.now()))
}

// ResolveBatch resolves every record it can. Records that fail to decode
// are left out of the results and reported together in the error; each
// wrapped error names the record's 1-based position.
func (r *Resolver) ResolveBatch(records [][]byte) ([]Result, error) {
	raws := make([]model.RawEvent, len(records))
	for i, data := range records {
		raws[i] = r.raw(data, i)
	}
	resolved, err := r.engine.ProcessBatch(raws)
	results := make([]Result, len(resolved))
	for i, e := range resolved {
		results[i] = resultFromResolved(e)
	}
	return results, err
}

func (r *Resolver) raw(data []byte, index int) model.RawEvent {
	return model.RawEvent{
		Received: r.now(),
		Source:   "record",
		Line:     index + 1,
		Format:   sniff(data),
		Data:     data,
	}
}
