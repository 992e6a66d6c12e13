package sorting

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/constraints"

	"github.com/stringptr/daa-sorting-benchmark/internal/trace"
)

// Project is the only instance project the algorithms implement.
const Project = "sorting"

var (
	ErrUnknownAlgo        = errors.New("unknown algorithm")
	ErrUnsupportedProject = errors.New("unsupported project")
)

// Algo is the closed set of benchmarked algorithms.
type Algo int

const (
	Quick Algo = iota + 1
	Merge
	Insertion
)

// All lists the algorithms in letter order.
func All() []Algo { return []Algo{Quick, Merge, Insertion} }

// Letter returns the run-driver selector: A, B or C.
func (a Algo) Letter() string {
	switch a {
	case Quick:
		return "A"
	case Merge:
		return "B"
	case Insertion:
		return "C"
	default:
		return ""
	}
}

// Name returns the instrumented-driver selector: quick, merge or insertion.
func (a Algo) Name() string {
	switch a {
	case Quick:
		return "quick"
	case Merge:
		return "merge"
	case Insertion:
		return "insertion"
	default:
		return ""
	}
}

func (a Algo) String() string {
	if l := a.Letter(); l != "" {
		return l
	}
	return fmt.Sprintf("Algo(%d)", int(a))
}

// UnknownAlgoError reports a selector outside the closed set.
type UnknownAlgoError struct {
	Value    string
	Expected []string
}

func (e *UnknownAlgoError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s %q (expected %s)", ErrUnknownAlgo.Error(), e.Value, strings.Join(e.Expected, "|"))
}

func (e *UnknownAlgoError) Unwrap() error { return ErrUnknownAlgo }

// ParseLetter maps A, B or C to its algorithm. Letters are case-sensitive.
func ParseLetter(s string) (Algo, error) {
	for _, a := range All() {
		if s == a.Letter() {
			return a, nil
		}
	}
	return 0, &UnknownAlgoError{Value: s, Expected: []string{"A", "B", "C"}}
}

// ParseName maps quick, merge or insertion to its algorithm. Surrounding
// whitespace and case are ignored.
func ParseName(s string) (Algo, error) {
	n := strings.ToLower(strings.TrimSpace(s))
	for _, a := range All() {
		if n == a.Name() {
			return a, nil
		}
	}
	return 0, &UnknownAlgoError{Value: s, Expected: []string{"quick", "merge", "insertion"}}
}

// CheckProject rejects every project the algorithms do not implement.
func CheckProject(project string) error {
	if project == Project {
		return nil
	}
	return fmt.Errorf("%w: algorithms are not implemented for project=%s", ErrUnsupportedProject, project)
}

// Sort runs algorithm a over a copy of in. sink may be nil.
func Sort[T constraints.Ordered](a Algo, in []T, sink trace.Sink) ([]T, error) {
	switch a {
	case Quick:
		return QuickSort(in, sink), nil
	case Merge:
		return MergeSort(in, sink), nil
	case Insertion:
		return InsertionSort(in, sink), nil
	default:
		return nil, &UnknownAlgoError{Value: a.String(), Expected: []string{"A", "B", "C"}}
	}
}

// clone returns a private, non-nil copy of in.
func clone[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
