package resolver

import "github.com/crimson-sun/marquee/internal/model"

// Message returns the single-line display message of ev. Absent values
// resolve to "".
func Message(ev model.EventLike) string {
	switch ev := ev.(type) {
	case *model.Tombstone:
		return ev.Culprit
	case model.Titled:
		is := ev.Common()
		switch is.Type {
		case model.TypeError, model.TypeTransaction:
			return is.Metadata.Value
		case model.TypeCSP:
			return is.Metadata.Message
		case model.TypeExpectCT, model.TypeExpectStaple, model.TypeHPKP:
			// Certificate reports keep their message in metadata but it is
			// never surfaced here.
			return ""
		default:
			return is.Culprit
		}
	}
	return ""
}
