package sorting

import (
	"golang.org/x/exp/constraints"

	"github.com/stringptr/daa-sorting-benchmark/internal/trace"
)

// MergeSort returns a sorted copy of in. It is stable: on equal heads the
// left half wins.
func MergeSort[T constraints.Ordered](in []T, sink trace.Sink) []T {
	return mergesort(clone(in), sink)
}

func mergesort[T constraints.Ordered](a []T, sink trace.Sink) []T {
	if len(a) <= 1 {
		return a
	}
	m := len(a) / 2
	left := mergesort(a[:m], sink)
	right := mergesort(a[m:], sink)
	return merge(left, right, sink)
}

// merge never writes into l or r; they may alias the caller's working copy.
func merge[T constraints.Ordered](l, r []T, sink trace.Sink) []T {
	out := make([]T, 0, len(l)+len(r))
	i, j := 0, 0
	for i < len(l) && j < len(r) {
		if sink != nil {
			sink.Tick()
		}
		if l[i] <= r[j] {
			out = append(out, l[i])
			i++
		} else {
			out = append(out, r[j])
			j++
		}
	}
	out = append(out, l[i:]...)
	out = append(out, r[j:]...)
	return out
}
