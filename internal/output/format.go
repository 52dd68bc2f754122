package output

import (
	"fmt"
	"strings"

	"github.com/crimson-sun/marquee/internal/engine/compactor"
	"github.com/crimson-sun/marquee/internal/engine/treelabel"
	"github.com/crimson-sun/marquee/internal/model"
)

// Encoding selects how an output serializes events.
type Encoding string

const (
	EncodingJSON Encoding = "json"
	EncodingYAML Encoding = "yaml"
	EncodingText Encoding = "text"
)

// ParseEncoding maps a name to an Encoding. Unknown names are an error.
func ParseEncoding(s string) (Encoding, error) {
	switch e := Encoding(strings.ToLower(s)); e {
	case EncodingJSON, EncodingYAML, EncodingText:
		return e, nil
	}
	return "", fmt.Errorf("output: unknown encoding %q (want json, yaml or text)", s)
}

// FormatEvent returns a copy of the event with fields stripped according to verbosity.
// At Minimal: TreeLabel and Location are dropped (omitted via omitempty).
// At Standard/Full: all fields preserved.
func FormatEvent(e model.ResolvedEvent, verbosity compactor.Verbosity) model.ResolvedEvent {
	if verbosity == compactor.Minimal {
		e.TreeLabel = nil
		e.Location = ""
	}
	return e
}

// Text renders an event as a single human-readable line:
//
//	event a1b2c3d4  TypeError  Cannot read property  (x3)
//
// Tree labels replace the title when present. Tombstones show their message.
func Text(e model.ResolvedEvent) string {
	var b strings.Builder
	b.WriteString(e.Kind)
	if e.ShortID != "" {
		b.WriteByte(' ')
		b.WriteString(e.ShortID)
	}

	title := e.Title
	if len(e.TreeLabel) > 0 {
		title = treelabel.Format(e.TreeLabel)
	}
	if e.Kind == model.KindTombstone {
		title = e.Message
	}
	for _, field := range []string{title, e.Subtitle} {
		if field == "" {
			continue
		}
		b.WriteString("  ")
		b.WriteString(field)
	}
	if e.Location != "" {
		b.WriteString("  @ ")
		b.WriteString(e.Location)
	}
	if e.Count > 1 {
		fmt.Fprintf(&b, "  (x%d)", e.Count)
	}
	return b.String()
}
