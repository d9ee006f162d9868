package cardgate

import "fmt"

// fieldTable maps accessor names (the names used with Set/Get/Has/Unset)
// to the wire keys the gateway expects in payloads.
type fieldTable map[string]string

// entity is the attribute container embedded by Address, Consumer, Item
// and Version. Each entity declares a closed field table; access to any
// name outside that table fails with <Entity>.Invalid.Method so typos
// surface immediately instead of silently dropping data.
type entity struct {
	name   string
	fields fieldTable
	data   map[string]any
}

func newEntity(name string, fields fieldTable) entity {
	return entity{name: name, fields: fields, data: make(map[string]any)}
}

// Set stores value under the given accessor name. Values are restricted
// to non-empty scalars; the typed setters on the concrete entities run
// their own checks first and then call through here.
func (e *entity) Set(field string, value any) error {
	key, ok := e.fields[field]
	if !ok {
		return newError(e.name+".Invalid.Method", "call to undefined method Set"+field)
	}
	switch v := value.(type) {
	case string:
		if v == "" {
			return newError(e.name+".Invalid.Method", "invalid value for Set"+field)
		}
	case bool, int, int32, int64, float32, float64:
	default:
		return newError(e.name+".Invalid.Method", fmt.Sprintf("invalid value for Set%s: %T", field, value))
	}
	e.data[key] = value
	return nil
}

// Get returns the stored value for the given accessor name, or nil when
// the field is declared but unset.
func (e *entity) Get(field string) (any, error) {
	key, ok := e.fields[field]
	if !ok {
		return nil, newError(e.name+".Invalid.Method", "call to undefined method Get"+field)
	}
	return e.data[key], nil
}

// Has reports whether the given field currently holds a value.
func (e *entity) Has(field string) (bool, error) {
	key, ok := e.fields[field]
	if !ok {
		return false, newError(e.name+".Invalid.Method", "call to undefined method Has"+field)
	}
	_, set := e.data[key]
	return set, nil
}

// Unset removes the stored value for the given field, if any.
func (e *entity) Unset(field string) error {
	key, ok := e.fields[field]
	if !ok {
		return newError(e.name+".Invalid.Method", "call to undefined method Unset"+field)
	}
	delete(e.data, key)
	return nil
}

// Data returns the set fields keyed by wire key, each key prepended with
// prefix. The returned map is a copy; mutating it does not touch the
// entity.
func (e *entity) Data(prefix string) map[string]any {
	out := make(map[string]any, len(e.data))
	for key, value := range e.data {
		out[prefix+key] = value
	}
	return out
}

// getString is a convenience for internal payload assembly: the stored
// value for field as a string, or "" when unset.
func (e *entity) getString(field string) string {
	key, ok := e.fields[field]
	if !ok {
		return ""
	}
	if v, set := e.data[key]; set {
		return fmt.Sprint(v)
	}
	return ""
}
