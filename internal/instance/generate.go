package instance

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"sort"
)

// NearSortedDescription is the description written into generated files.
const NearSortedDescription = "Near Sorted Array"

// NearSorted returns a permutation of 0..n-1 that is sorted except for
// int(n*perturb) elements, each moved by remove-and-insert to a position at
// most maxDist away from where it was picked up.
//
// The displaced indices are distinct and visited in ascending order, so a
// later move can carry an element that an earlier move already shifted by
// one; displacements compound but stay local. The same seed always yields
// the same array.
func NearSorted(n int, perturb float64, maxDist int, seed int64) []int {
	if n <= 0 {
		return []int{}
	}
	if perturb < 0 {
		perturb = 0
	}
	if perturb > 1 {
		perturb = 1
	}
	if maxDist < 0 {
		maxDist = 0
	}

	arr := make([]int, n)
	for i := range arr {
		arr[i] = i
	}

	rnd := rand.New(rand.NewSource(seed))
	k := int(float64(n) * perturb)
	indices := rnd.Perm(n)[:k]
	sort.Ints(indices)

	for _, i := range indices {
		pos := i + rnd.Intn(2*maxDist+1) - maxDist
		if pos < 0 {
			pos = 0
		}
		if pos > n-1 {
			pos = n - 1
		}
		move(arr, i, pos)
	}
	return arr
}

// move removes the element at from and reinserts it at to, shifting only
// the elements in between.
func move(arr []int, from, to int) {
	v := arr[from]
	switch {
	case to > from:
		copy(arr[from:to], arr[from+1:to+1])
	case to < from:
		copy(arr[to+1:from+1], arr[to:from])
	}
	arr[to] = v
}

// NewNearSorted builds a sorting instance around NearSorted.
func NewNearSorted(n int, perturb float64, maxDist int, seed int64) *Instance {
	values := NearSorted(n, perturb, maxDist, seed)
	arr := make([]float64, len(values))
	for i, v := range values {
		arr[i] = float64(v)
	}
	size := n
	if size < 0 {
		size = 0
	}
	e := perturb
	return &Instance{
		Project:     "sorting",
		Description: NearSortedDescription,
		N:           &size,
		Error:       &e,
		Array:       arr,
	}
}

// Suite describes a grid of generated instances: one file per
// (size, error) pair.
type Suite struct {
	Sizes    []int
	Errors   []float64
	MaxDist  int
	SeedBase int64
}

// SuiteFileName is the name of the k-th generated instance (k starts at 1).
func SuiteFileName(k int) string {
	return fmt.Sprintf("sorting_near_sorted_%d.json", k)
}

// GenerateSuite writes the suite into dir and returns the written paths in
// generation order. Instance k (1-based, sizes outer, errors inner) is seeded
// with SeedBase+k.
func GenerateSuite(dir string, s Suite) ([]string, error) {
	var paths []string
	k := 1
	for _, n := range s.Sizes {
		for _, e := range s.Errors {
			in := NewNearSorted(n, e, s.MaxDist, s.SeedBase+int64(k))
			p := filepath.Join(dir, SuiteFileName(k))
			if err := Save(p, in); err != nil {
				return paths, fmt.Errorf("generate %s: %w", filepath.Base(p), err)
			}
			paths = append(paths, p)
			k++
		}
	}
	return paths, nil
}
