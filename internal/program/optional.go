package program

import (
	"bytes"
	"encoding/json"
)

var jsonNull = []byte("null")

// Field models a JSON field that can be independently absent, null, or set.
// A field missing from the body leaves Set false; an explicit null sets Set
// with a zero Value. This makes "unset vs. explicit null" a type-level
// distinction rather than a runtime map lookup.
type Field[T any] struct {
	Set   bool
	Value T
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(data, jsonNull) {
		var zero T
		f.Value = zero
		return nil
	}
	return json.Unmarshal(data, &f.Value)
}

// Patch is a partial update of a Program. Only fields explicitly present in
// the request body are applied; Description distinguishes null (clear) from
// absent (keep).
type Patch struct {
	Title       Field[*string]    `json:"title"`
	Code        Field[*string]    `json:"code"`
	Description Field[*string]    `json:"description"`
	Visibility  Field[Visibility] `json:"visibility"`
}

// Apply copies the supplied fields onto p. The patch must have passed
// validatePatch first: supplied title/code values are non-nil by then.
func (patch Patch) Apply(p *Program) {
	if patch.Title.Set {
		p.Title = *patch.Title.Value
	}
	if patch.Code.Set {
		p.Code = *patch.Code.Value
	}
	if patch.Description.Set {
		p.Description = patch.Description.Value
	}
	if patch.Visibility.Set {
		p.Visibility = patch.Visibility.Value
	}
}
