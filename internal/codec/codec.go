// Package codec turns raw event payloads into model values. It is the only
// place that inspects payload shape: whether a record is a tombstone, a
// group or an event is decided here, once.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/crimson-sun/marquee/internal/model"
)

// ErrNotObject is returned when a payload is not a JSON/YAML object.
var ErrNotObject = errors.New("codec: payload is not an object")

// DecodeJSON decodes one event record.
//
// A record without a "type" key is a tombstone, even when other fields are
// present; "type": null is an event of unknown type. A record with an
// "eventID" key is an event, otherwise a group.
func DecodeJSON(data []byte) (model.EventLike, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("codec: decode event: %w", err)
	}
	if obj == nil {
		return nil, ErrNotObject
	}
	return fromObject(obj), nil
}

func fromObject(obj map[string]json.RawMessage) model.EventLike {
	rawType, hasType := obj["type"]
	if !hasType {
		return &model.Tombstone{
			ID:      str(obj["id"]),
			Culprit: str(obj["culprit"]),
		}
	}

	tag := str(rawType)
	is := model.Issue{
		ID:            str(obj["id"]),
		Type:          model.ParseEventType(tag),
		RawType:       tag,
		Culprit:       str(obj["culprit"]),
		Title:         str(obj["title"]),
		Metadata:      metadata(obj["metadata"]),
		IssueCategory: str(obj["issueCategory"]),
	}

	if _, ok := obj["eventID"]; !ok {
		return &model.Group{Issue: is}
	}
	ev := &model.Event{
		Issue:    is,
		EventID:  str(obj["eventID"]),
		Platform: str(obj["platform"]),
	}
	if ts := str(obj["dateCreated"]); ts != "" {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			ev.DateCreated = t
		}
	}
	return ev
}

// str decodes a string field. Missing, null and non-string values read as "".
func str(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func metadata(raw json.RawMessage) model.Metadata {
	var obj map[string]json.RawMessage
	if raw == nil || json.Unmarshal(raw, &obj) != nil {
		return model.Metadata{}
	}
	return model.Metadata{
		Value:            str(obj["value"]),
		Message:          str(obj["message"]),
		Directive:        str(obj["directive"]),
		URI:              str(obj["uri"]),
		Origin:           str(obj["origin"]),
		Title:            str(obj["title"]),
		Type:             str(obj["type"]),
		Function:         str(obj["function"]),
		Filename:         str(obj["filename"]),
		CurrentTreeLabel: treeLabel(obj["current_tree_label"]),
		FinestTreeLabel:  treeLabel(obj["finest_tree_label"]),
	}
}

// treeLabel decodes a tree label array. Absent, null and non-array values
// decode to nil. Strings become text parts, objects become structured
// parts, and any other element (null, numbers, booleans, arrays) becomes a
// structured part with no label, which formats as "<unknown>".
func treeLabel(raw json.RawMessage) []model.TreeLabelPart {
	var elems []json.RawMessage
	if raw == nil || json.Unmarshal(raw, &elems) != nil || elems == nil {
		return nil
	}
	parts := make([]model.TreeLabelPart, 0, len(elems))
	for _, e := range elems {
		e = bytes.TrimSpace(e)
		switch {
		case len(e) > 0 && e[0] == '"':
			parts = append(parts, model.TextPart(str(e)))
		case len(e) > 0 && e[0] == '{':
			var obj map[string]json.RawMessage
			if err := json.Unmarshal(e, &obj); err == nil {
				parts = append(parts, part(obj))
				continue
			}
			parts = append(parts, model.TreeLabelPart{Kind: model.PartNone})
		default:
			parts = append(parts, model.TreeLabelPart{Kind: model.PartNone})
		}
	}
	return parts
}

// part picks the label of a structured token: function, then package, then
// filebase, then type. Empty values count as absent.
func part(obj map[string]json.RawMessage) model.TreeLabelPart {
	p := model.TreeLabelPart{Kind: model.PartNone, Classbase: str(obj["classbase"])}
	for _, f := range []struct {
		key  string
		kind model.PartKind
	}{
		{"function", model.PartFunction},
		{"package", model.PartPackage},
		{"filebase", model.PartFilebase},
		{"type", model.PartType},
	} {
		if v := str(obj[f.key]); v != "" {
			p.Kind, p.Value = f.kind, v
			break
		}
	}
	return p
}
