// Package sliceutil provides generic slice helpers.
package sliceutil

// Unique returns items without repeats, keeping the first occurrence of each
// value in order. A nil or empty input is returned as is.
func Unique[T comparable](items []T) []T {
	if len(items) == 0 {
		return items
	}
	seen := make(map[T]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, v := range items {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
