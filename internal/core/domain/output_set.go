package domain

import (
	"path"
	"slices"
	"strings"
)

// OutputSet is a sorted, duplicate-free set of slash-separated paths relative
// to the target root.
type OutputSet []string

// NewOutputSet normalizes paths into an OutputSet. Empty paths are dropped.
func NewOutputSet(paths ...string) OutputSet {
	out := make(OutputSet, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		out = append(out, path.Clean(strings.ReplaceAll(p, "\\", "/")))
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Union returns the set union of s and others.
func (s OutputSet) Union(others ...OutputSet) OutputSet {
	all := slices.Clone([]string(s))
	for _, o := range others {
		all = append(all, o...)
	}
	return NewOutputSet(all...)
}

// Contains reports whether p is in the set.
func (s OutputSet) Contains(p string) bool {
	_, found := slices.BinarySearch(s, p)
	return found
}

// Len returns the number of paths.
func (s OutputSet) Len() int {
	return len(s)
}
