package model

import "time"

// EventType is the discriminant of a non-tombstone event record.
type EventType int

const (
	TypeUnknown EventType = iota // absent, null or unrecognized tag
	TypeError
	TypeCSP
	TypeHPKP
	TypeExpectCT
	TypeExpectStaple
	TypeDefault
	TypeTransaction
)

var eventTypeNames = map[EventType]string{
	TypeUnknown:      "unknown",
	TypeError:        "error",
	TypeCSP:          "csp",
	TypeHPKP:         "hpkp",
	TypeExpectCT:     "expectct",
	TypeExpectStaple: "expectstaple",
	TypeDefault:      "default",
	TypeTransaction:  "transaction",
}

// ParseEventType maps a wire tag to an EventType. Unrecognized tags map to TypeUnknown.
func ParseEventType(tag string) EventType {
	for t, name := range eventTypeNames {
		if t != TypeUnknown && name == tag {
			return t
		}
	}
	return TypeUnknown
}

func (t EventType) String() string {
	if name, ok := eventTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// IssueCategoryPerformance marks transaction groups raised by performance detection.
const IssueCategoryPerformance = "performance"

// EventLike is one of *Tombstone, *Group or *Event. The variant is decided
// once, when raw data is decoded.
type EventLike interface {
	eventLike()
}

// Titled is an EventLike that carries enough data for title resolution.
// Tombstones do not implement it.
type Titled interface {
	EventLike
	Common() *Issue
	PlatformName() string
}

// Issue holds the fields shared by groups and events.
type Issue struct {
	ID            string
	Type          EventType
	RawType       string // wire tag as received, kept for output
	Culprit       string
	Title         string // pre-computed fallback title
	Metadata      Metadata
	IssueCategory string
}

// Tombstone is a placeholder for a merged or removed group.
type Tombstone struct {
	ID      string
	Culprit string
}

// Group is an aggregated issue.
type Group struct {
	Issue
}

// Event is a single occurrence.
type Event struct {
	Issue
	EventID     string
	Platform    string
	DateCreated time.Time
}

func (*Tombstone) eventLike() {}
func (*Group) eventLike()     {}
func (*Event) eventLike()     {}

func (g *Group) Common() *Issue       { return &g.Issue }
func (g *Group) PlatformName() string { return "" }

func (e *Event) Common() *Issue       { return &e.Issue }
func (e *Event) PlatformName() string { return e.Platform }
