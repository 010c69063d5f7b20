/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package process

import "reflect"

type identity struct {
	typ reflect.Type
	ptr uintptr
}

// visitedSet tracks raw records by reference. Two distinct records with equal
// fields are different entries; values without a reference (struct values)
// are never tracked.
type visitedSet map[identity]struct{}

func identityOf(raw any) (identity, bool) {
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Map, reflect.Pointer:
		if rv.IsNil() {
			return identity{}, false
		}
		return identity{typ: rv.Type(), ptr: rv.Pointer()}, true
	}
	return identity{}, false
}

// visit records raw and reports whether it had already been visited.
func (v visitedSet) visit(raw any) bool {
	id, ok := identityOf(raw)
	if !ok {
		return false
	}
	if _, seen := v[id]; seen {
		return true
	}
	v[id] = struct{}{}
	return false
}
