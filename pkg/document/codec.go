package document

import (
	"encoding/json"
	"fmt"
	"time"
)

// fieldValue is the persisted envelope for one field. Exactly one member is
// set; the envelope keeps time values round-trippable through JSON, which a
// bare map[string]any would not.
type fieldValue struct {
	S *string    `json:"s,omitempty"`
	I *int64     `json:"i,omitempty"`
	F *float64   `json:"f,omitempty"`
	B *bool      `json:"b,omitempty"`
	T *time.Time `json:"t,omitempty"`
	L []string   `json:"l,omitempty"`

	// IsL distinguishes an empty list from an absent one.
	IsL bool `json:"il,omitempty"`
}

// MarshalFields encodes a field map for persistence. Write-time transforms
// must already be resolved (see ApplyTransforms); encountering one is an
// error. Nil values are dropped.
func MarshalFields(fields map[string]any) ([]byte, error) {
	env := make(map[string]fieldValue, len(fields))
	for name, v := range fields {
		switch tv := v.(type) {
		case nil:
			continue
		case string:
			env[name] = fieldValue{S: &tv}
		case int:
			n := int64(tv)
			env[name] = fieldValue{I: &n}
		case int64:
			env[name] = fieldValue{I: &tv}
		case float64:
			env[name] = fieldValue{F: &tv}
		case bool:
			env[name] = fieldValue{B: &tv}
		case time.Time:
			env[name] = fieldValue{T: &tv}
		case []string:
			env[name] = fieldValue{L: tv, IsL: true}
		case serverTimestamp, IncrementValue, ArrayUnionValue, ArrayRemoveValue:
			return nil, fmt.Errorf("field %s: unresolved write-time transform", name)
		default:
			return nil, fmt.Errorf("field %s: unsupported type %T", name, v)
		}
	}
	return json.Marshal(env)
}

// UnmarshalFields decodes a field map persisted by MarshalFields.
func UnmarshalFields(data []byte) (map[string]any, error) {
	env := make(map[string]fieldValue)
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document fields: %w", err)
	}
	fields := make(map[string]any, len(env))
	for name, fv := range env {
		switch {
		case fv.S != nil:
			fields[name] = *fv.S
		case fv.I != nil:
			fields[name] = *fv.I
		case fv.F != nil:
			fields[name] = *fv.F
		case fv.B != nil:
			fields[name] = *fv.B
		case fv.T != nil:
			fields[name] = *fv.T
		case fv.IsL || fv.L != nil:
			if fv.L == nil {
				fields[name] = []string{}
			} else {
				fields[name] = fv.L
			}
		}
	}
	return fields, nil
}
