package utils

import (
	"cmp"
	"maps"
	"slices"
)

// GetKeys returns the keys of m in ascending order.
func GetKeys[K cmp.Ordered, T any](m map[K]T) []K {
	return slices.Sorted(maps.Keys(m))
}
