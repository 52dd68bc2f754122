package output

import (
	"context"

	"github.com/crimson-sun/marquee/internal/model"
)

// Output defines the interface for resolved event destinations.
type Output interface {
	Write(ctx context.Context, event model.ResolvedEvent) error
	Close() error
}
