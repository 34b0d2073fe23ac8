// Package collections has small generic helpers for slices of records and
// maps that the shell uses when merging node lists and address book entries.
package collections

import "math/rand/v2"

// Shuffle returns a new slice with the elements of items in random order.
func Shuffle[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// Merge copies every key of src onto dst and returns dst. A nil dst is
// allocated.
func Merge[K comparable, V any](dst, src map[K]V) map[K]V {
	if dst == nil {
		dst = make(map[K]V, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// UniqueBy returns the distinct keys of items in first-seen order.
func UniqueBy[T any, K comparable](items []T, key func(T) K) []K {
	seen := make(map[K]struct{}, len(items))
	out := make([]K, 0, len(items))
	for _, item := range items {
		k := key(item)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// DiffBy returns the items of b whose key does not appear in a.
func DiffBy[T any, K comparable](a, b []T, key func(T) K) []T {
	present := make(map[K]struct{}, len(a))
	for _, item := range a {
		present[key(item)] = struct{}{}
	}
	var out []T
	for _, item := range b {
		if _, ok := present[key(item)]; !ok {
			out = append(out, item)
		}
	}
	return out
}

// ContainsBy reports whether some element of items has the same key as target.
func ContainsBy[T any, K comparable](items []T, target T, key func(T) K) bool {
	want := key(target)
	for _, item := range items {
		if key(item) == want {
			return true
		}
	}
	return false
}
