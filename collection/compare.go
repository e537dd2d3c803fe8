package collection

import (
	"strings"
)

// lookup reads a dotted path ("address.city") from a decoded document.
func lookup(data map[string]interface{}, path string) (interface{}, bool) {
	var current interface{} = data
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// typeRank orders values of different JSON types: null, numbers, strings,
// booleans, and then anything else (objects, arrays).
func typeRank(v interface{}) int {
	switch v.(type) {
	case nil:
		return 0
	case float64:
		return 1
	case string:
		return 2
	case bool:
		return 3
	}
	return 4
}

// compareValues returns -1, 0 or 1. Objects and arrays compare equal among
// themselves.
func compareValues(a, b interface{}) int {

	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}

	switch a := a.(type) {
	case float64:
		b := b.(float64)
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
	case string:
		return strings.Compare(a, b.(string))
	case bool:
		b := b.(bool)
		if a == b {
			return 0
		}
		if !a {
			return -1
		}
		return 1
	}

	return 0
}

// sortField splits "-name" into ("name", true).
func sortField(field string) (name string, reverse bool) {
	if strings.HasPrefix(field, "-") {
		return field[1:], true
	}
	return strings.TrimPrefix(field, "+"), false
}
