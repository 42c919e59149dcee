package models

import (
	"encoding/json"
)

// TemplatePatch is a partial template update. Nil fields are left unchanged.
type TemplatePatch struct {
	Name          *string
	BackgroundURL *string
	Size          *Size
	EnabledFields *[]string
	Fields        *map[string]json.RawMessage
}

// ParseTemplatePatch decodes a JSON object into a TemplatePatch.
// Only recognized keys whose values decode into the expected type are kept;
// unknown keys and wrongly typed values are ignored.
func ParseTemplatePatch(raw []byte) (TemplatePatch, error) {
	var patch TemplatePatch

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return patch, NewValidationError("body must be a JSON object", "")
	}

	if v, ok := obj["name"]; ok {
		var name string
		if decodeStrict(v, &name) {
			patch.Name = &name
		}
	}
	if v, ok := obj["backgroundUrl"]; ok {
		var url string
		if decodeStrict(v, &url) {
			patch.BackgroundURL = &url
		}
	}
	if v, ok := obj["size"]; ok && isObject(v) {
		var size Size
		if decodeStrict(v, &size) {
			patch.Size = &size
		}
	}
	if v, ok := obj["enabledFields"]; ok {
		var keys []string
		if decodeStrict(v, &keys) && keys != nil {
			patch.EnabledFields = &keys
		}
	}
	if v, ok := obj["fields"]; ok && isObject(v) {
		var fields map[string]json.RawMessage
		if decodeStrict(v, &fields) {
			patch.Fields = &fields
		}
	}

	return patch, nil
}

// Apply merges the present fields of p into t.
func (p TemplatePatch) Apply(t *Template) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.BackgroundURL != nil {
		t.BackgroundURL = *p.BackgroundURL
	}
	if p.Size != nil {
		t.Size = *p.Size
	}
	if p.EnabledFields != nil {
		t.EnabledFields = *p.EnabledFields
	}
	if p.Fields != nil {
		t.Fields = *p.Fields
	}
}

func decodeStrict(raw json.RawMessage, dst any) bool {
	if string(raw) == "null" {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func isObject(raw json.RawMessage) bool {
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}
