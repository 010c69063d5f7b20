/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import "fmt"

// FieldValue resolves to the schema named by a sibling string field.
func FieldValue(field string) Resolver {
	return func(parent Getter) string {
		v, ok := parent.Get(field)
		if !ok {
			return ""
		}
		name, _ := v.(string)
		return name
	}
}

// SwitchOn resolves a sibling field's value through cases. Values without a
// case resolve to no schema.
func SwitchOn(field string, cases map[string]string) Resolver {
	return func(parent Getter) string {
		v, ok := parent.Get(field)
		if !ok || v == nil {
			return ""
		}
		return cases[fmt.Sprint(v)]
	}
}
