// Package crumbfilter selects console breadcrumbs by log level and search term.
package crumbfilter

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/crimson-sun/marquee/internal/model"
)

// IssueCategory is both a crumb category and a selectable pseudo-level.
const IssueCategory = "issue"

var logLevels = []string{"fatal", "error", "warning", "info", "debug", "log", "undefined"}

// Predicate reports whether an item should be kept.
type Predicate[T any] func(T) bool

// Apply returns the items accepted by every predicate, in order.
func Apply[T any](items []T, preds ...Predicate[T]) []T {
	out := make([]T, 0, len(items))
outer:
	for _, it := range items {
		for _, p := range preds {
			if !p(it) {
				continue outer
			}
		}
		out = append(out, it)
	}
	return out
}

// IsConsole reports whether c is shown in the console: everything except
// network requests and navigations.
func IsConsole(c model.Crumb) bool {
	return c.Type != "http" && c.Type != "navigation"
}

// ParseLevels keeps the known log levels and the issue pseudo-level.
// Comma-separated values are split.
func ParseLevels(vals []string) []string {
	var out []string
	for _, v := range vals {
		for _, l := range strings.Split(v, ",") {
			l = strings.TrimSpace(l)
			if l == IssueCategory || slices.Contains(logLevels, l) {
				out = append(out, l)
			}
		}
	}
	return out
}

// LogLevel keeps crumbs whose level is selected. Issue crumbs are kept only
// when the issue pseudo-level is selected. An empty selection keeps everything.
func LogLevel(selected []string) Predicate[model.Crumb] {
	return func(c model.Crumb) bool {
		if len(selected) == 0 {
			return true
		}
		if c.Category == IssueCategory {
			return slices.Contains(selected, IssueCategory)
		}
		return slices.Contains(selected, c.Level)
	}
}

// Search keeps crumbs whose JSON-encoded console arguments (or message, when
// there are no arguments) contain term, ignoring case.
func Search(term string) Predicate[model.Crumb] {
	term = fold(term)
	return func(c model.Crumb) bool {
		text, ok := searchText(c)
		if !ok {
			return term == ""
		}
		return strings.Contains(fold(text), term)
	}
}

// Filter is a console filter selection.
type Filter struct {
	Levels []string
	Search string
}

// Items returns the console crumbs matching f.
func (f Filter) Items(crumbs []model.Crumb) []model.Crumb {
	console := Apply(crumbs, IsConsole)
	return Apply(console, LogLevel(f.Levels), Search(f.Search))
}

// Options lists the selectable levels: those present in crumbs plus any
// already selected, sorted.
func Options(crumbs []model.Crumb, selected []string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(v string) {
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for _, c := range crumbs {
		if c.Category == IssueCategory {
			add(IssueCategory)
		} else {
			add(c.Level)
		}
	}
	for _, s := range selected {
		add(s)
	}
	slices.Sort(out)
	return out
}

func searchText(c model.Crumb) (string, bool) {
	var v any
	switch {
	case truthy(c.Data.Arguments):
		v = c.Data.Arguments
	case c.Message != nil:
		v = *c.Message
	default:
		return "", false
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", false
	}
	return strings.TrimSuffix(buf.String(), "\n"), true
}

func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	case float64:
		return v != 0
	}
	return true
}

func fold(s string) string {
	return cases.Lower(language.Und).String(norm.NFC.String(s))
}
