package orion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Kind is the declared type tag of an attribute envelope.
type Kind string

// Attribute kinds understood by the store and the normalizer.
const (
	KindText       Kind = "Text"
	KindNumber     Kind = "Number"
	KindDateTime   Kind = "DateTime"
	KindBoolean    Kind = "Boolean"
	KindStructured Kind = "StructuredValue"
)

// dateTimeLayout matches the millisecond ISO-8601 form the store echoes back.
const dateTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// AttributeValue is one non-identity field of an entity: a tagged union of
// Text, Number, DateTime, Boolean and Structured payloads.
//
// The zero value has no kind and is never produced by decoding. A value may
// be null (the store sends `"value": null` for cleared fields); accessors
// report null values as absent.
type AttributeValue struct {
	kind       Kind
	null       bool
	text       string // Text and DateTime payloads
	number     float64
	boolean    bool
	structured any // native JSON value, or the raw string when sent as a string
}

// Text returns a Text attribute.
func Text(s string) AttributeValue { return AttributeValue{kind: KindText, text: s} }

// Number returns a Number attribute.
func Number(f float64) AttributeValue { return AttributeValue{kind: KindNumber, number: f} }

// DateTime returns a DateTime attribute holding an ISO-8601 string.
func DateTime(s string) AttributeValue { return AttributeValue{kind: KindDateTime, text: s} }

// DateTimeOf returns a DateTime attribute for t, formatted in UTC with millisecond precision.
func DateTimeOf(t time.Time) AttributeValue {
	return DateTime(t.UTC().Format(dateTimeLayout))
}

// Boolean returns a Boolean attribute.
func Boolean(b bool) AttributeValue { return AttributeValue{kind: KindBoolean, boolean: b} }

// Structured returns a StructuredValue attribute. v must be JSON-encodable.
func Structured(v any) AttributeValue { return AttributeValue{kind: KindStructured, structured: v} }

// Null returns a null attribute of the given kind.
func Null(kind Kind) AttributeValue { return AttributeValue{kind: kind, null: true} }

// Kind returns the declared type tag.
func (a AttributeValue) Kind() Kind { return a.kind }

// IsNull reports whether the payload is JSON null.
func (a AttributeValue) IsNull() bool { return a.null }

// AsText returns the payload of a non-null Text attribute.
func (a AttributeValue) AsText() (string, bool) {
	if a.kind != KindText || a.null {
		return "", false
	}
	return a.text, true
}

// AsNumber returns the payload of a non-null Number attribute.
func (a AttributeValue) AsNumber() (float64, bool) {
	if a.kind != KindNumber || a.null {
		return 0, false
	}
	return a.number, true
}

// AsDateTime returns the raw ISO-8601 string of a non-null DateTime attribute.
func (a AttributeValue) AsDateTime() (string, bool) {
	if a.kind != KindDateTime || a.null {
		return "", false
	}
	return a.text, true
}

// AsTime parses a DateTime attribute. It reports false for other kinds,
// null values and unparseable strings.
func (a AttributeValue) AsTime() (time.Time, bool) {
	s, ok := a.AsDateTime()
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// AsBoolean returns the payload of a non-null Boolean attribute.
func (a AttributeValue) AsBoolean() (bool, bool) {
	if a.kind != KindBoolean || a.null {
		return false, false
	}
	return a.boolean, true
}

// AsStructured returns the decoded payload of a StructuredValue attribute.
//
// A payload sent as a JSON-encoded string is parsed, so both wire forms yield
// the same in-memory shape. A null payload returns (nil, nil).
func (a AttributeValue) AsStructured() (any, error) {
	if a.kind != KindStructured {
		return nil, fmt.Errorf("%w: want %s, have %s", ErrAttributeMismatch, KindStructured, a.kind)
	}
	if a.null {
		return nil, nil
	}
	s, isString := a.structured.(string)
	if !isString {
		return a.structured, nil
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, fmt.Errorf("parsing structured string: %w", err)
	}
	return v, nil
}

type envelope struct {
	Type  Kind            `json:"type"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON encodes the attribute as a {"type", "value"} envelope.
func (a AttributeValue) MarshalJSON() ([]byte, error) {
	var payload any
	switch {
	case a.null:
		payload = nil
	case a.kind == KindText, a.kind == KindDateTime:
		payload = a.text
	case a.kind == KindNumber:
		payload = a.number
	case a.kind == KindBoolean:
		payload = a.boolean
	case a.kind == KindStructured:
		payload = a.structured
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAttributeType, a.kind)
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s attribute: %w", a.kind, err)
	}
	return json.Marshal(envelope{Type: a.kind, Value: value})
}

// UnmarshalJSON decodes a {"type", "value"} envelope. Unknown tags and
// payloads that disagree with their tag are errors.
func (a *AttributeValue) UnmarshalJSON(data []byte) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decoding attribute envelope: %w", err)
	}

	raw := bytes.TrimSpace(env.Value)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		switch env.Type {
		case KindText, KindNumber, KindDateTime, KindBoolean, KindStructured:
			*a = Null(env.Type)
			return nil
		default:
			return fmt.Errorf("%w: %q", ErrUnknownAttributeType, env.Type)
		}
	}

	shape := jsonShape(raw)
	mismatch := func() error {
		return fmt.Errorf("%w: %s attribute with %s payload", ErrAttributeMismatch, env.Type, shape)
	}

	switch env.Type {
	case KindText, KindDateTime:
		if shape != "string" {
			return mismatch()
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return mismatch()
		}
		*a = AttributeValue{kind: env.Type, text: s}
	case KindNumber:
		if shape != "number" {
			return mismatch()
		}
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return mismatch()
		}
		*a = Number(f)
	case KindBoolean:
		if shape != "boolean" {
			return mismatch()
		}
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return mismatch()
		}
		*a = Boolean(b)
	case KindStructured:
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return mismatch()
		}
		*a = Structured(v)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAttributeType, env.Type)
	}
	return nil
}

// fromKeyValue wraps a bare keyValues payload back into the union by its JSON shape.
func fromKeyValue(v any) AttributeValue {
	switch x := v.(type) {
	case nil:
		return Null(KindText)
	case string:
		return Text(x)
	case float64:
		return Number(x)
	case bool:
		return Boolean(x)
	default:
		return Structured(x)
	}
}

// jsonShape names the JSON type of a raw, non-empty value.
func jsonShape(raw []byte) string {
	switch raw[0] {
	case '"':
		return "string"
	case '{':
		return "object"
	case '[':
		return "array"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}
