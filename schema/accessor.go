/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import (
	"maps"
	"reflect"
	"strings"
)

// Getter reads a single field from a record.
type Getter interface {
	Get(key string) (any, bool)
}

// Record is a record-like object exposing get-by-key access instead of
// direct field access.
type Record interface {
	Getter
	Keys() []string
}

// Accessor adapts the raw records of one schema. It is declared on the
// schema, so the engine never guesses how a record should be read.
type Accessor interface {
	// View returns a read-only view of raw, or false when raw is not a
	// record this accessor understands.
	View(raw any) (Getter, bool)
	// Fields returns a shallow copy of every field of raw.
	Fields(raw any) (map[string]any, bool)
}

// Map is a Getter over a plain field map.
type Map map[string]any

// Get implements Getter.
func (m Map) Get(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

// Keys implements Record.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

var mapType = reflect.TypeOf(map[string]any(nil))

// FieldAccess reads records by direct field access: map[string]any values
// (and named types with that underlying type), structs and pointers to
// structs. Struct fields are keyed by their json tag name when present.
type FieldAccess struct{}

// View implements Accessor.
func (FieldAccess) View(raw any) (Getter, bool) {
	if m, ok := asMap(raw); ok {
		return Map(m), true
	}
	if sv, ok := asStruct(raw); ok {
		return structView{v: sv}, true
	}
	return nil, false
}

// Fields implements Accessor.
func (FieldAccess) Fields(raw any) (map[string]any, bool) {
	if m, ok := asMap(raw); ok {
		return maps.Clone(m), true
	}
	if sv, ok := asStruct(raw); ok {
		out := make(map[string]any, sv.NumField())
		eachField(sv, func(name string, fv reflect.Value) bool {
			out[name] = fv.Interface()
			return true
		})
		return out, true
	}
	return nil, false
}

// KeyedAccess reads records implementing Record.
type KeyedAccess struct{}

// View implements Accessor.
func (KeyedAccess) View(raw any) (Getter, bool) {
	r, ok := raw.(Record)
	if !ok || isNil(raw) {
		return nil, false
	}
	return r, true
}

// Fields implements Accessor.
func (KeyedAccess) Fields(raw any) (map[string]any, bool) {
	r, ok := raw.(Record)
	if !ok || isNil(raw) {
		return nil, false
	}
	keys := r.Keys()
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if v, ok := r.Get(k); ok {
			out[k] = v
		}
	}
	return out, true
}

func asMap(raw any) (map[string]any, bool) {
	if m, ok := raw.(map[string]any); ok {
		return m, m != nil
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Map || rv.IsNil() || !rv.Type().ConvertibleTo(mapType) {
		return nil, false
	}
	return rv.Convert(mapType).Interface().(map[string]any), true
}

func asStruct(raw any) (reflect.Value, bool) {
	rv := reflect.ValueOf(raw)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	return rv, true
}

func isNil(raw any) bool {
	if raw == nil {
		return true
	}
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

type structView struct {
	v reflect.Value
}

func (s structView) Get(key string) (any, bool) {
	var (
		out   any
		found bool
	)
	eachField(s.v, func(name string, fv reflect.Value) bool {
		if name != key {
			return true
		}
		out, found = fv.Interface(), true
		return false
	})
	return out, found
}

// eachField walks the exported fields of a struct value, stopping when fn
// returns false.
func eachField(sv reflect.Value, fn func(name string, fv reflect.Value) bool) {
	st := sv.Type()
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		if !fn(name, sv.Field(i)) {
			return
		}
	}
}
