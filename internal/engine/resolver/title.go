package resolver

import (
	"github.com/crimson-sun/marquee/internal/engine/treelabel"
	"github.com/crimson-sun/marquee/internal/model"
)

// Title resolves the display identity of ev. grouping is set by views that
// show grouping details and enables tree label titles on every platform.
func (r *Resolver) Title(ev model.Titled, features model.FeatureSet, grouping bool) model.Display {
	is := ev.Common()
	md := is.Metadata

	custom := ""
	if features.Has(model.FeatureCustomTitle) {
		custom = md.Title
	}

	switch is.Type {
	case model.TypeError:
		if custom != "" {
			return model.Display{Title: custom, Subtitle: is.Culprit}
		}

		p := ev.PlatformName()
		showTree := features.Has(model.FeatureGroupingTitleUI) &&
			(grouping || r.platforms.IsNative(p) || r.platforms.IsMobile(p))
		if showTree {
			c := treelabel.Compose(md)
			return model.Display{Title: c.Title, Subtitle: is.Culprit, TreeLabel: c.TreeLabel}
		}
		return model.Display{
			Title:    firstNonEmpty(md.Type, md.Function, treelabel.Unknown),
			Subtitle: is.Culprit,
		}

	case model.TypeCSP:
		return model.Display{Title: firstNonEmpty(custom, md.Directive), Subtitle: md.URI}

	case model.TypeExpectCT, model.TypeExpectStaple, model.TypeHPKP:
		// Some reports were stored without a message; fall back to the
		// computed title for those.
		return model.Display{Title: firstNonEmpty(custom, md.Message, is.Title), Subtitle: md.Origin}

	case model.TypeDefault:
		return model.Display{Title: firstNonEmpty(custom, md.Title)}

	case model.TypeTransaction:
		d := model.Display{Title: firstNonEmpty(custom, is.Title)}
		if is.IssueCategory == model.IssueCategoryPerformance {
			d.Subtitle = is.Culprit
		}
		return d

	default: // model.TypeUnknown
		return model.Display{Title: firstNonEmpty(custom, is.Title)}
	}
}

// firstNonEmpty returns the first non-empty value, or "".
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
