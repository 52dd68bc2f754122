// Package resolver derives what users see for an issue: its title,
// subtitle and tree label, a one-line message, and a source location.
// Every function is pure and total over its input.
package resolver

import (
	"github.com/crimson-sun/marquee/internal/model"
	"github.com/crimson-sun/marquee/internal/platform"
)

// Resolver resolves display fields using a platform policy.
type Resolver struct {
	platforms platform.Classifier
}

// New creates a Resolver. A nil classifier selects platform.Default.
func New(c platform.Classifier) *Resolver {
	if c == nil {
		c = platform.Default
	}
	return &Resolver{platforms: c}
}

var std = New(nil)

// Title resolves ev with the default platform policy.
func Title(ev model.Titled, features model.FeatureSet, grouping bool) model.Display {
	return std.Title(ev, features, grouping)
}

// Location resolves ev with the default platform policy.
func Location(ev model.EventLike) string {
	return std.Location(ev)
}

// ShortEventID truncates an event id to its first 8 characters. The cut
// falls on a rune boundary, so the result is valid UTF-8 when id is.
func ShortEventID(id string) string {
	n := 0
	for i := range id {
		if n == 8 {
			return id[:i]
		}
		n++
	}
	return id
}
