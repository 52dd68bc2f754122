package marquee

import (
	"github.com/crimson-sun/marquee/internal/codec"
	"github.com/crimson-sun/marquee/internal/engine/crumbfilter"
)

// ParseCrumbs decodes a JSON or YAML breadcrumb array.
func ParseCrumbs(data []byte) ([]Crumb, error) {
	if sniffList(data) {
		return codec.DecodeCrumbsJSON(data)
	}
	return codec.DecodeCrumbsYAML(data)
}

func sniffList(data []byte) bool {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '[':
			return true
		}
		return false
	}
	return false
}

// FilterConsoleCrumbs returns the console breadcrumbs matching the selected
// levels and search term. Unknown levels are ignored; an empty selection
// matches every level.
func FilterConsoleCrumbs(crumbs []Crumb, levels []string, search string) []Crumb {
	return crumbfilter.Filter{Levels: crumbfilter.ParseLevels(levels), Search: search}.Items(crumbs)
}

// ConsoleLevelOptions lists the levels a console filter can offer for crumbs.
func ConsoleLevelOptions(crumbs []Crumb, selected []string) []string {
	return crumbfilter.Options(crumbs, crumbfilter.ParseLevels(selected))
}
