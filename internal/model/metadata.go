package model

import "encoding/json"

// Metadata is the loosely-typed bag attached to an issue. Only the fields
// relevant to the issue's type are consulted. An empty string means absent.
type Metadata struct {
	Value     string
	Message   string
	Directive string
	URI       string
	Origin    string
	Title     string
	Type      string
	Function  string
	Filename  string

	// nil means absent; a non-nil empty slice was present but empty.
	CurrentTreeLabel []TreeLabelPart
	FinestTreeLabel  []TreeLabelPart
}

// PartKind says which field of a structured tree label token carries its label.
type PartKind uint8

const (
	PartText PartKind = iota // raw string token
	PartFunction
	PartPackage
	PartFilebase
	PartType
	PartNone // structured token without any label field
)

// TreeLabelPart is one token of a tree label.
type TreeLabelPart struct {
	Kind      PartKind
	Value     string
	Classbase string
}

func TextPart(s string) TreeLabelPart     { return TreeLabelPart{Kind: PartText, Value: s} }
func FunctionPart(s string) TreeLabelPart { return TreeLabelPart{Kind: PartFunction, Value: s} }
func PackagePart(s string) TreeLabelPart  { return TreeLabelPart{Kind: PartPackage, Value: s} }
func FilebasePart(s string) TreeLabelPart { return TreeLabelPart{Kind: PartFilebase, Value: s} }
func TypePart(s string) TreeLabelPart     { return TreeLabelPart{Kind: PartType, Value: s} }

// WithClassbase returns a copy of p qualified by classbase.
func (p TreeLabelPart) WithClassbase(classbase string) TreeLabelPart {
	p.Classbase = classbase
	return p
}

// partFields is the wire shape of a structured token.
type partFields struct {
	Function  string `json:"function,omitempty" yaml:"function,omitempty"`
	Package   string `json:"package,omitempty" yaml:"package,omitempty"`
	Filebase  string `json:"filebase,omitempty" yaml:"filebase,omitempty"`
	Type      string `json:"type,omitempty" yaml:"type,omitempty"`
	Classbase string `json:"classbase,omitempty" yaml:"classbase,omitempty"`
}

func (p TreeLabelPart) fields() partFields {
	f := partFields{Classbase: p.Classbase}
	switch p.Kind {
	case PartFunction:
		f.Function = p.Value
	case PartPackage:
		f.Package = p.Value
	case PartFilebase:
		f.Filebase = p.Value
	case PartType:
		f.Type = p.Value
	}
	return f
}

// MarshalJSON encodes text parts as strings and structured parts as objects.
func (p TreeLabelPart) MarshalJSON() ([]byte, error) {
	if p.Kind == PartText {
		return json.Marshal(p.Value)
	}
	return json.Marshal(p.fields())
}

// MarshalYAML mirrors MarshalJSON.
func (p TreeLabelPart) MarshalYAML() (any, error) {
	if p.Kind == PartText {
		return p.Value, nil
	}
	return p.fields(), nil
}
