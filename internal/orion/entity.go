package orion

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Identity field names. They are never part of an attribute patch.
const (
	fieldID   = "id"
	fieldType = "type"
)

// Entity is an identified record in the store: a type tag plus wrapped attributes.
type Entity struct {
	ID    string
	Type  string
	Attrs map[string]AttributeValue

	// Invalid holds attributes that failed to decode, keyed by name. They are
	// kept out of Attrs so one bad field does not cost the whole entity.
	Invalid map[string]error
}

// NewEntity returns an entity with an empty attribute map.
func NewEntity(id, entityType string) Entity {
	return Entity{ID: id, Type: entityType, Attrs: make(map[string]AttributeValue)}
}

// Set stores an attribute and returns the entity for chaining.
func (e Entity) Set(name string, v AttributeValue) Entity {
	if e.Attrs == nil {
		e.Attrs = make(map[string]AttributeValue)
	}
	e.Attrs[name] = v
	return e
}

// Attr returns the named attribute.
func (e Entity) Attr(name string) (AttributeValue, bool) {
	v, ok := e.Attrs[name]
	return v, ok
}

// AttrNames returns the attribute names in sorted order.
func (e Entity) AttrNames() []string {
	names := make([]string, 0, len(e.Attrs))
	for name := range e.Attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PatchBody returns the attributes with identity fields stripped.
func (e Entity) PatchBody() map[string]AttributeValue {
	return withoutIdentity(e.Attrs)
}

// MarshalJSON encodes the entity in the store's normalized form:
// {"id", "type", "<attr>": {"type", "value"}, ...}.
func (e Entity) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Attrs)+2)
	for name, v := range withoutIdentity(e.Attrs) {
		out[name] = v
	}
	out[fieldID] = e.ID
	out[fieldType] = e.Type
	return json.Marshal(out)
}

// UnmarshalJSON decodes the normalized form. Attributes with an unknown tag
// or a mismatched payload are recorded in Invalid instead of failing the entity.
func (e *Entity) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decoding entity: %w", err)
	}

	decoded := Entity{Attrs: make(map[string]AttributeValue, len(fields))}
	if err := decodeIdentity(fields, &decoded); err != nil {
		return err
	}

	for name, raw := range fields {
		if name == fieldID || name == fieldType {
			continue
		}
		var v AttributeValue
		if err := json.Unmarshal(raw, &v); err != nil {
			if decoded.Invalid == nil {
				decoded.Invalid = make(map[string]error)
			}
			decoded.Invalid[name] = err
			continue
		}
		decoded.Attrs[name] = v
	}

	*e = decoded
	return nil
}

// decodeKeyValuesEntity decodes the keyValues form ({"id", "type", "<attr>": value})
// and wraps each bare value back into an AttributeValue.
func decodeKeyValuesEntity(data json.RawMessage) (Entity, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Entity{}, fmt.Errorf("decoding entity: %w", err)
	}

	e := Entity{Attrs: make(map[string]AttributeValue, len(fields))}
	if err := decodeIdentity(fields, &e); err != nil {
		return Entity{}, err
	}

	for name, raw := range fields {
		if name == fieldID || name == fieldType {
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return Entity{}, fmt.Errorf("decoding attribute %q: %w", name, err)
		}
		e.Attrs[name] = fromKeyValue(v)
	}
	return e, nil
}

func decodeIdentity(fields map[string]json.RawMessage, e *Entity) error {
	if raw, ok := fields[fieldID]; ok {
		if err := json.Unmarshal(raw, &e.ID); err != nil {
			return fmt.Errorf("decoding entity id: %w", err)
		}
	}
	if raw, ok := fields[fieldType]; ok {
		if err := json.Unmarshal(raw, &e.Type); err != nil {
			return fmt.Errorf("decoding entity type: %w", err)
		}
	}
	if e.ID == "" || e.Type == "" {
		return ErrInvalidEntity
	}
	return nil
}

func withoutIdentity(attrs map[string]AttributeValue) map[string]AttributeValue {
	out := make(map[string]AttributeValue, len(attrs))
	for name, v := range attrs {
		if name == fieldID || name == fieldType {
			continue
		}
		out[name] = v
	}
	return out
}
