package sorting

import (
	"golang.org/x/exp/constraints"

	"github.com/stringptr/daa-sorting-benchmark/internal/trace"
)

// QuickSort returns a sorted copy of in.
//
// The pivot is the middle element. Each level allocates three new groups
// (less, equal, greater) and concatenates the sorted outer groups around
// the equal group. Inputs that defeat the middle pivot degrade to O(n²).
func QuickSort[T constraints.Ordered](in []T, sink trace.Sink) []T {
	return quicksort(clone(in), sink)
}

func quicksort[T constraints.Ordered](a []T, sink trace.Sink) []T {
	if len(a) <= 1 {
		return a
	}
	pivot := a[len(a)/2]

	var less, equal, greater []T
	for _, x := range a {
		if sink != nil {
			sink.Tick()
		}
		if x < pivot {
			less = append(less, x)
		}
	}
	for _, x := range a {
		if sink != nil {
			sink.Tick()
		}
		if x == pivot {
			equal = append(equal, x)
		}
	}
	for _, x := range a {
		if sink != nil {
			sink.Tick()
		}
		if x > pivot {
			greater = append(greater, x)
		}
	}

	out := make([]T, 0, len(a))
	out = append(out, quicksort(less, sink)...)
	out = append(out, equal...)
	out = append(out, quicksort(greater, sink)...)
	return out
}
