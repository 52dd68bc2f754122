package resolver

import "github.com/crimson-sun/marquee/internal/model"

// Location returns the file an error on a native platform was raised in,
// or "" when there is none.
func (r *Resolver) Location(ev model.EventLike) string {
	t, ok := ev.(model.Titled)
	if !ok {
		return ""
	}
	is := t.Common()
	if is.Type == model.TypeError && r.platforms.IsNative(t.PlatformName()) {
		return is.Metadata.Filename
	}
	return ""
}
