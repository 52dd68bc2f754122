package stdout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/crimson-sun/marquee/internal/engine/compactor"
	"github.com/crimson-sun/marquee/internal/model"
	"github.com/crimson-sun/marquee/internal/output"
)

// Option configures a stdout Output.
type Option func(*Output)

// WithEncoding selects json (default), yaml, or text.
func WithEncoding(e output.Encoding) Option {
	return func(o *Output) { o.encoding = e }
}

// WithWriter redirects output away from os.Stdout.
func WithWriter(w io.Writer) Option {
	return func(o *Output) { o.w = w }
}

// Output writes resolved events to stdout.
type Output struct {
	w         io.Writer
	encoding  output.Encoding
	pretty    bool
	verbosity compactor.Verbosity

	json *json.Encoder
	yaml *yaml.Encoder
}

// New creates a new stdout Output with verbosity-aware field omission.
// pretty indents JSON; YAML is always indented and text is always one line.
func New(verbosity compactor.Verbosity, pretty bool, opts ...Option) *Output {
	o := &Output{
		w:         os.Stdout,
		encoding:  output.EncodingJSON,
		pretty:    pretty,
		verbosity: verbosity,
	}
	for _, opt := range opts {
		opt(o)
	}
	switch o.encoding {
	case output.EncodingYAML:
		o.yaml = yaml.NewEncoder(o.w)
		o.yaml.SetIndent(2)
	case output.EncodingText:
	default:
		o.json = json.NewEncoder(o.w)
		o.json.SetEscapeHTML(false)
		if pretty {
			o.json.SetIndent("", "  ")
		}
	}
	return o
}

func (o *Output) Write(_ context.Context, event model.ResolvedEvent) error {
	formatted := output.FormatEvent(event, o.verbosity)

	var err error
	switch {
	case o.yaml != nil:
		err = o.yaml.Encode(formatted)
	case o.json != nil:
		err = o.json.Encode(formatted)
	default:
		_, err = fmt.Fprintln(o.w, output.Text(formatted))
	}
	if err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	return nil
}

// Close terminates the YAML stream if one was started.
func (o *Output) Close() error {
	if o.yaml != nil {
		return o.yaml.Close()
	}
	return nil
}
