// Package eval scores the output of a sorting run against its input.
package eval

import "golang.org/x/exp/constraints"

// Gap values. There is no partial credit.
const (
	Correct   = 0.0
	Incorrect = 1.0
)

// Gap returns Correct when output is a non-decreasing permutation of
// original, and Incorrect otherwise.
//
// Checks run in order and the first failure decides:
//  1. output is a []T
//  2. same length as original
//  3. pairwise non-decreasing
//  4. same multiset as original (value -> count), which catches outputs
//     that look sorted but dropped, duplicated or altered an element.
func Gap[T constraints.Ordered](original []T, output any) float64 {
	out, ok := output.([]T)
	if !ok {
		return Incorrect
	}
	if len(out) != len(original) {
		return Incorrect
	}
	if !IsSorted(out) {
		return Incorrect
	}
	if !SameMultiset(original, out) {
		return Incorrect
	}
	return Correct
}

// IsSorted reports whether a is non-decreasing.
func IsSorted[T constraints.Ordered](a []T) bool {
	for i := 0; i+1 < len(a); i++ {
		if a[i] > a[i+1] {
			return false
		}
	}
	return true
}

// SameMultiset reports whether a and b hold the same values with the same
// multiplicities.
func SameMultiset[T constraints.Ordered](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[T]int, len(a))
	for _, v := range a {
		counts[v]++
	}
	for _, v := range b {
		c, ok := counts[v]
		if !ok || c == 0 {
			return false
		}
		counts[v] = c - 1
	}
	return true
}
