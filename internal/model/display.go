package model

import (
	"slices"
	"time"
)

// Feature flags consulted by title resolution.
const (
	FeatureCustomTitle     = "custom-event-title"
	FeatureGroupingTitleUI = "grouping-title-ui"
)

// FeatureSet is the set of enabled feature flags.
type FeatureSet []string

// Has reports whether flag is enabled.
func (f FeatureSet) Has(flag string) bool {
	return slices.Contains(f, flag)
}

// Display is the resolved display identity of an issue.
type Display struct {
	Title     string          `json:"title" yaml:"title"`
	Subtitle  string          `json:"subtitle" yaml:"subtitle"`
	TreeLabel []TreeLabelPart `json:"treeLabel,omitempty" yaml:"treeLabel,omitempty"`
}

// Record kinds reported on ResolvedEvent.
const (
	KindTombstone = "tombstone"
	KindGroup     = "group"
	KindEvent     = "event"
)

// ResolvedEvent is marquee's output type: the display identity of one record.
type ResolvedEvent struct {
	Kind      string          `json:"kind" yaml:"kind"`
	ID        string          `json:"id,omitempty" yaml:"id,omitempty"`
	ShortID   string          `json:"shortId,omitempty" yaml:"shortId,omitempty"`
	Type      string          `json:"type,omitempty" yaml:"type,omitempty"`
	Title     string          `json:"title" yaml:"title"`
	Subtitle  string          `json:"subtitle" yaml:"subtitle"`
	TreeLabel []TreeLabelPart `json:"treeLabel,omitempty" yaml:"treeLabel,omitempty"`
	Message   string          `json:"message" yaml:"message"`
	Location  string          `json:"location,omitempty" yaml:"location,omitempty"`
	Timestamp time.Time       `json:"timestamp" yaml:"timestamp"`
	Count     int             `json:"count,omitempty" yaml:"count,omitempty"` // >1 when deduplicated
}
