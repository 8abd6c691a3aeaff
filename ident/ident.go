// Package ident turns the many shapes an entity reference can arrive in
// into a canonical string identifier.
package ident

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"

	"gopkg.in/yaml.v3"
)

// objectMarker is what a generic object stringifies to on the dashboard side.
const objectMarker = "[object Object]"

// maxDepth bounds nested id lookups such as {"id": {"_id": "..."}}.
const maxDepth = 8

// referenceKeys are tried in order when a reference is an object.
var referenceKeys = []string{"id", "_id", "teamId", "userId"}

// Referencer is implemented by entities that know their own identifier.
type Referencer interface {
	RefID() string
}

// Normalize returns the canonical identifier for v. The second result is
// false when v cannot be resolved; callers drop such references.
func Normalize(v any) (string, bool) {
	return normalize(v, 0, nil)
}

// MustString is Normalize without the ok flag; unresolvable input yields "".
func MustString(v any) string {
	id, _ := Normalize(v)
	return id
}

func normalize(v any, depth int, seen map[uintptr]struct{}) (string, bool) {
	if v == nil || depth > maxDepth {
		return "", false
	}

	switch t := v.(type) {
	case string:
		return t, t != ""
	case Ref:
		return string(t), t != ""
	case json.Number:
		return numberString(t.String())
	case bool:
		return "", false
	case int:
		return intString(int64(t))
	case int8:
		return intString(int64(t))
	case int16:
		return intString(int64(t))
	case int32:
		return intString(int64(t))
	case int64:
		return intString(t)
	case uint:
		return uintString(uint64(t))
	case uint8:
		return uintString(uint64(t))
	case uint16:
		return uintString(uint64(t))
	case uint32:
		return uintString(uint64(t))
	case uint64:
		return uintString(t)
	case float32:
		return floatString(float64(t))
	case float64:
		return floatString(t)
	case Referencer:
		if isNilPointer(v) {
			return "", false
		}
		id := t.RefID()
		return id, id != ""
	case map[string]any:
		return fromMap(t, depth, seen)
	case map[string]string:
		for _, key := range referenceKeys {
			if id := t[key]; id != "" {
				return id, true
			}
		}
		return "", false
	case fmt.Stringer:
		if isNilPointer(v) {
			return "", false
		}
		s := t.String()
		if s == "" || s == objectMarker {
			return "", false
		}
		return s, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", false
		}
		return normalize(rv.Elem().Interface(), depth+1, seen)
	}
	return "", false
}

func fromMap(m map[string]any, depth int, seen map[uintptr]struct{}) (string, bool) {
	if m == nil {
		return "", false
	}
	ptr := reflect.ValueOf(m).Pointer()
	if _, ok := seen[ptr]; ok {
		return "", false
	}
	if seen == nil {
		seen = make(map[uintptr]struct{})
	}
	seen[ptr] = struct{}{}
	defer delete(seen, ptr)

	for _, key := range referenceKeys {
		value, ok := m[key]
		if !ok {
			continue
		}
		if id, ok := normalize(value, depth+1, seen); ok {
			return id, true
		}
	}
	return "", false
}

func intString(n int64) (string, bool) {
	if n == 0 {
		return "", false
	}
	return strconv.FormatInt(n, 10), true
}

func uintString(n uint64) (string, bool) {
	if n == 0 {
		return "", false
	}
	return strconv.FormatUint(n, 10), true
}

func floatString(f float64) (string, bool) {
	if f == 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}

func numberString(s string) (string, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "", false
	}
	if f == 0 {
		return "", false
	}
	// Keep the literal text for integers too large for a float to round-trip.
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return s, true
	}
	return floatString(f)
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Interface, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

// Ref is an identifier decoded from any supported reference shape.
// An unresolvable reference decodes to the empty Ref.
type Ref string

func (r Ref) String() string {
	return string(r)
}

// Valid reports whether the reference resolved to an identifier.
func (r Ref) Valid() bool {
	return r != ""
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode reference: %w", err)
	}
	*r = Ref(MustString(raw))
	return nil
}

func (r *Ref) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if node.Kind == yaml.ScalarNode && node.Tag == "!!str" {
		raw = node.Value
	} else if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("decode reference: %w", err)
	}
	*r = Ref(MustString(raw))
	return nil
}

// Refs converts references to identifiers, dropping unresolved ones.
func Refs(refs []Ref) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.Valid() {
			out = append(out, string(ref))
		}
	}
	return out
}
