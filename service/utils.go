package service

import "sort"

// StringSet is a set of strings (all elements are unique)
type StringSet map[string]struct{}

// NewStringSet creates a set from the given strings
func NewStringSet(s ...string) StringSet {
	ss := make(StringSet, len(s))
	for _, e := range s {
		ss.Push(e)
	}
	return ss
}

// Push adds the string to the set if not already exists
func (ss StringSet) Push(s string) {
	ss[s] = struct{}{}
}

// Slice returns a sorted slice from the set
func (ss StringSet) Slice() []string {
	sl := make([]string, 0, len(ss))
	for k := range ss {
		sl = append(sl, k)
	}
	sort.Strings(sl)
	return sl
}

// Exists returns true if the string already exists in the Set
func (ss StringSet) Exists(s string) bool {
	_, ok := ss[s]
	return ok
}

// Intersection returns the elements of s that belong to the set
func (ss StringSet) Intersection(s []string) []string {
	var res []string
	for _, e := range s {
		if ss.Exists(e) {
			res = append(res, e)
		}
	}
	return res
}

// ContainsAll returns true if every element of the set is in s
func (ss StringSet) ContainsAll(s []string) bool {
	return len(NewStringSet(ss.Intersection(s)...)) == len(ss)
}
