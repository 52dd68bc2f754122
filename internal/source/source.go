package source

import (
	"context"

	"github.com/crimson-sun/marquee/internal/model"
)

// Source defines the interface all event record sources must implement.
type Source interface {
	// Stream sends raw records as they become available. The channel is
	// closed when the source is exhausted or ctx is cancelled.
	Stream(ctx context.Context, cfg Config) (<-chan model.RawEvent, error)

	// Query reads a batch of records.
	Query(ctx context.Context, cfg Config, params QueryParams) ([]model.RawEvent, error)
}

// Config holds source-specific settings.
type Config struct {
	Provider string
	Path     string // "-" reads standard input
	Follow   bool   // keep streaming appended records
}

// QueryParams limits a batch read.
type QueryParams struct {
	Limit int // 0 = unlimited
}
