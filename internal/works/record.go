package works

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Record is one work in the dataset.
// The body is held as raw JSON so fields this tool never touches round-trip
// unchanged, key order included.
type Record struct {
	raw json.RawMessage
}

// NewRecord wraps a raw JSON value. The input is copied.
func NewRecord(raw []byte) Record {
	return Record{raw: append(json.RawMessage(nil), raw...)}
}

// Raw returns the record's JSON text. Callers must not modify it.
func (r Record) Raw() json.RawMessage {
	return r.raw
}

// Value is one element of an array field.
type Value struct {
	Raw      string // JSON text of the element
	Str      string // decoded string, valid when IsString
	IsString bool
}

// StringValue builds a Value holding s.
func StringValue(s string) Value {
	return Value{Raw: encodeString(s), Str: s, IsString: true}
}

// lookup finds the named top-level field. When the key repeats, the last
// occurrence wins, as it does for encoding/json. The returned offset is the
// position of the value in r.raw and dup reports a repeated key.
func (r Record) lookup(field string) (res gjson.Result, offset int, dup bool) {
	doc := gjson.ParseBytes(r.raw)
	if !doc.IsObject() {
		return gjson.Result{}, 0, false
	}
	// Parse skips leading whitespace, so indexes are relative to doc.Raw.
	skip := len(r.raw) - len(doc.Raw)
	seen := 0
	doc.ForEach(func(key, value gjson.Result) bool {
		if key.Str == field {
			res, offset = value, skip+value.Index
			seen++
		}
		return true
	})
	return res, offset, seen > 1
}

// Values returns the elements of the named field.
// The second result is false when the field is absent or not an array.
func (r Record) Values(field string) ([]Value, bool) {
	res, _, _ := r.lookup(field)
	if !res.IsArray() {
		return nil, false
	}

	elems := res.Array()
	out := make([]Value, len(elems))
	for i, e := range elems {
		out[i] = Value{Raw: e.Raw}
		if e.Type == gjson.String {
			out[i].Str = e.Str
			out[i].IsString = true
		}
	}
	return out, true
}

// Strings returns the string elements of the named field, skipping anything
// that is not a string.
func (r Record) Strings(field string) []string {
	vals, ok := r.Values(field)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v.IsString {
			out = append(out, v.Str)
		}
	}
	return out
}

// Decode returns the decoded value of the named field, for structural comparison.
func (r Record) Decode(field string) (any, bool) {
	res, _, _ := r.lookup(field)
	if !res.Exists() {
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(res.Raw), &v); err != nil {
		return nil, false
	}
	return v, true
}

// ID returns the named field rendered as text, or "" when absent.
func (r Record) ID(field string) string {
	if field == "" {
		return ""
	}
	res, _, _ := r.lookup(field)
	switch {
	case !res.Exists():
		return ""
	case res.Type == gjson.String:
		return res.Str
	default:
		return res.Raw
	}
}

// WithValues returns a copy of the record whose named field holds vals.
// The receiver is left untouched. With a repeated key only the last
// occurrence is rewritten.
func (r Record) WithValues(field string, vals []Value) (Record, error) {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = v.Raw
	}
	arr := "[" + strings.Join(parts, ",") + "]"

	if cur, at, dup := r.lookup(field); dup {
		out := make([]byte, 0, len(r.raw)-len(cur.Raw)+len(arr))
		out = append(out, r.raw[:at]...)
		out = append(out, arr...)
		out = append(out, r.raw[at+len(cur.Raw):]...)
		return Record{raw: out}, nil
	}

	body := append([]byte(nil), r.raw...)
	out, err := sjson.SetRawBytes(body, field, []byte(arr))
	if err != nil {
		return Record{}, fmt.Errorf("failed to set field %s: %w", field, err)
	}
	return Record{raw: out}, nil
}

// encodeString renders s as a JSON string without HTML escaping.
func encodeString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}
