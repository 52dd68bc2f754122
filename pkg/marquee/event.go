package marquee

import (
	"time"

	"github.com/crimson-sun/marquee/internal/model"
)

// Record types. See the internal model for field documentation.
type (
	EventLike     = model.EventLike
	Titled        = model.Titled
	Issue         = model.Issue
	Event         = model.Event
	Group         = model.Group
	Tombstone     = model.Tombstone
	EventType     = model.EventType
	Metadata      = model.Metadata
	TreeLabelPart = model.TreeLabelPart
	FeatureSet    = model.FeatureSet
	Display       = model.Display
	Crumb         = model.Crumb
)

// Event types.
const (
	TypeUnknown      = model.TypeUnknown
	TypeError        = model.TypeError
	TypeCSP          = model.TypeCSP
	TypeHPKP         = model.TypeHPKP
	TypeExpectCT     = model.TypeExpectCT
	TypeExpectStaple = model.TypeExpectStaple
	TypeDefault      = model.TypeDefault
	TypeTransaction  = model.TypeTransaction
)

// Feature flags understood by GetTitle.
const (
	FeatureCustomTitle     = model.FeatureCustomTitle
	FeatureGroupingTitleUI = model.FeatureGroupingTitleUI
)

// Result is the resolved display identity of one record.
// This is the stable public type; internal representations may evolve
// independently without breaking consumers.
type Result struct {
	Kind      string          `json:"kind"`                // tombstone, group or event
	ID        string          `json:"id,omitempty"`        // group id or event id
	ShortID   string          `json:"shortId,omitempty"`   // first 8 characters of an event id
	Type      string          `json:"type,omitempty"`      // wire type tag
	Title     string          `json:"title"`               // empty for tombstones
	Subtitle  string          `json:"subtitle"`            // culprit, uri or origin
	TreeLabel []TreeLabelPart `json:"treeLabel,omitempty"` // set for tree-label titles only
	Message   string          `json:"message"`             // one line, compacted by verbosity
	Location  string          `json:"location,omitempty"`  // native and mobile platforms only
	Timestamp time.Time       `json:"timestamp"`           // dateCreated or resolution time
}

func resultFromResolved(e model.ResolvedEvent) Result {
	return Result{
		Kind:      e.Kind,
		ID:        e.ID,
		ShortID:   e.ShortID,
		Type:      e.Type,
		Title:     e.Title,
		Subtitle:  e.Subtitle,
		TreeLabel: e.TreeLabel,
		Message:   e.Message,
		Location:  e.Location,
		Timestamp: e.Timestamp,
	}
}
