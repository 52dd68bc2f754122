package model

import "time"

// Format is the encoding of a raw record.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// RawEvent is the intermediate type produced by sources and consumed by the engine.
type RawEvent struct {
	Received time.Time
	Source   string // origin, e.g. a file path
	Line     int    // 1-based record position within Source
	Format   Format
	Data     []byte
}
