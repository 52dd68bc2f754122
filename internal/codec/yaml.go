package codec

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/crimson-sun/marquee/internal/model"
)

// DecodeYAML decodes one event record from a YAML document. The document is
// normalized to JSON first so both encodings follow the same rules.
func DecodeYAML(data []byte) (model.EventLike, error) {
	js, err := yamlToJSON(data)
	if err != nil {
		return nil, err
	}
	return DecodeJSON(js)
}

// DecodeCrumbsJSON decodes a breadcrumb array.
func DecodeCrumbsJSON(data []byte) ([]model.Crumb, error) {
	var crumbs []model.Crumb
	if err := json.Unmarshal(data, &crumbs); err != nil {
		return nil, fmt.Errorf("codec: decode crumbs: %w", err)
	}
	return crumbs, nil
}

// DecodeCrumbsYAML decodes a breadcrumb sequence from YAML.
func DecodeCrumbsYAML(data []byte) ([]model.Crumb, error) {
	js, err := yamlToJSON(data)
	if err != nil {
		return nil, err
	}
	return DecodeCrumbsJSON(js)
}

func yamlToJSON(data []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("codec: decode yaml: %w", err)
	}
	js, err := json.Marshal(normalize(v))
	if err != nil {
		return nil, fmt.Errorf("codec: yaml to json: %w", err)
	}
	return js, nil
}

// normalize converts YAML maps with non-string keys into JSON-compatible maps.
func normalize(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, e := range v {
			v[k] = normalize(e)
		}
		return v
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, e := range v {
			m[fmt.Sprint(k)] = normalize(e)
		}
		return m
	case []any:
		for i, e := range v {
			v[i] = normalize(e)
		}
		return v
	default:
		return v
	}
}
