package multi

import (
	"context"
	"errors"
	"fmt"

	"github.com/crimson-sun/marquee/internal/model"
	"github.com/crimson-sun/marquee/internal/output"
)

// Multi fans out events to several outputs, e.g. stdout and a rotating file.
// If one output fails, the remaining outputs still receive the event.
type Multi struct {
	outputs []output.Output
}

// New creates a Multi that fans out to the given outputs. Nil entries are
// ignored so callers can pass optional sinks directly.
func New(outputs ...output.Output) *Multi {
	m := &Multi{}
	for _, o := range outputs {
		if o != nil {
			m.outputs = append(m.outputs, o)
		}
	}
	return m
}

// Len reports how many outputs are wrapped.
func (m *Multi) Len() int { return len(m.outputs) }

// Write delivers the event to every wrapped output. Errors are collected
// but do not prevent delivery to subsequent outputs.
func (m *Multi) Write(ctx context.Context, event model.ResolvedEvent) error {
	var errs []error
	for i, o := range m.outputs {
		if err := o.Write(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("output %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Close calls Close on every wrapped output, collecting errors.
func (m *Multi) Close() error {
	var errs []error
	for i, o := range m.outputs {
		if err := o.Close(); err != nil {
			errs = append(errs, fmt.Errorf("output %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
