package sorting

import (
	"golang.org/x/exp/constraints"

	"github.com/stringptr/daa-sorting-benchmark/internal/trace"
)

// InsertionSort returns a sorted copy of in. It runs in O(n + d) where d is
// the number of inversions, which makes it the expected winner on
// near-sorted instances.
func InsertionSort[T constraints.Ordered](in []T, sink trace.Sink) []T {
	a := clone(in)
	for i := 1; i < len(a); i++ {
		key := a[i]
		j := i - 1
		for j >= 0 && a[j] > key {
			if sink != nil {
				sink.Tick()
			}
			a[j+1] = a[j]
			j--
		}
		a[j+1] = key
	}
	return a
}
