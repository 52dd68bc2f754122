// Package compactor shortens resolved messages for display.
package compactor

import (
	"strings"
	"unicode/utf8"
)

// Verbosity controls how much detail is retained in output.
type Verbosity int

const (
	Minimal  Verbosity = iota // short messages, no tree label or location
	Standard                  // one-line messages
	Full                      // messages untouched
)

// ParseVerbosity maps "minimal", "standard" or "full" to a Verbosity.
// Anything else is Standard.
func ParseVerbosity(s string) Verbosity {
	switch s {
	case "minimal":
		return Minimal
	case "full":
		return Full
	default:
		return Standard
	}
}

func (v Verbosity) String() string {
	switch v {
	case Minimal:
		return "minimal"
	case Full:
		return "full"
	default:
		return "standard"
	}
}

const (
	minimalRunes  = 80
	standardRunes = 120
)

// Compactor reduces messages to a single display line.
type Compactor struct {
	Verbosity Verbosity
}

// New creates a Compactor with the given verbosity level.
func New(v Verbosity) *Compactor {
	return &Compactor{Verbosity: v}
}

// Compact returns the display form of message.
func (c *Compactor) Compact(message string) string {
	switch c.Verbosity {
	case Minimal:
		return summarize(message, minimalRunes)
	case Full:
		return message
	default:
		return summarize(message, standardRunes)
	}
}

// summarize keeps the first line of s and cuts it at a word boundary so it
// fits in maxRunes, followed by "...".
func summarize(s string, maxRunes int) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	cut := truncate(s, maxRunes)
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ") + "..."
}

// truncate returns the first maxRunes runes of s.
func truncate(s string, maxRunes int) string {
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i]
		}
		n++
	}
	return s
}
