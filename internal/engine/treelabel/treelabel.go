// Package treelabel formats tree labels: ordered, stack-frame-derived
// tokens that disambiguate grouped issues sharing an exception type.
//
// The backend computes the same titles server-side. Keep the precedence
// (function, package, filebase, type) and the composition rules below in
// step with it.
package treelabel

import (
	"strings"

	"github.com/crimson-sun/marquee/internal/model"
)

// Unknown is shown when no label can be derived.
const Unknown = "<unknown>"

const separator = " | "

// FormatPart renders a single tree label token.
func FormatPart(p model.TreeLabelPart) string {
	if p.Kind == model.PartText {
		return p.Value
	}

	label := ""
	if p.Kind != model.PartNone {
		label = p.Value
	}

	if p.Classbase != "" {
		if label == "" {
			return p.Classbase
		}
		return p.Classbase + "." + label
	}
	if label == "" {
		return Unknown
	}
	return label
}

// Format renders parts joined with " | ".
func Format(parts []model.TreeLabelPart) string {
	formatted := make([]string, len(parts))
	for i, p := range parts {
		formatted[i] = FormatPart(p)
	}
	return strings.Join(formatted, separator)
}

// Composed is a title derived from error metadata and its tree label.
type Composed struct {
	Title     string
	TreeLabel []model.TreeLabelPart
}

// Compose derives the title and tree label for error metadata. The current
// tree label wins over the finest one; an empty but present current label
// still wins.
func Compose(md model.Metadata) Composed {
	tree := md.CurrentTreeLabel
	if tree == nil {
		tree = md.FinestTreeLabel
	}

	formatted := ""
	if tree != nil {
		formatted = Format(tree)
	}

	if md.Type == "" {
		title := formatted
		if title == "" {
			title = md.Function
		}
		if title == "" {
			title = Unknown
		}
		return Composed{Title: title, TreeLabel: tree}
	}

	if formatted == "" {
		return Composed{Title: md.Type}
	}

	label := make([]model.TreeLabelPart, 0, len(tree)+1)
	label = append(label, model.TypePart(md.Type))
	label = append(label, tree...)
	return Composed{
		Title:     md.Type + separator + formatted,
		TreeLabel: label,
	}
}
