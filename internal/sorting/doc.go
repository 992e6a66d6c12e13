// Package sorting implements the three benchmarked algorithms: QuickSort
// (A), MergeSort (B) and InsertionSort (C).
//
// Every algorithm has a single core shared by the plain and the instrumented
// run. The core takes an optional trace.Sink; a nil sink is the plain run and
// costs one nil check per counted operation. Instrumentation only observes:
// both runs return identical slices for the same input.
//
// # Counting points
//
// Each algorithm charges one operation at a different place:
//   - QuickSort: one per element visited by each of the three partition
//     scans (less, equal, greater), so three per element per level.
//   - MergeSort: one per head comparison in the merge step.
//   - InsertionSort: one per shift of a larger predecessor.
//
// The counts are consistent within an algorithm but not comparable across
// algorithms.
//
// No algorithm mutates the caller's slice; each works on a private copy.
package sorting
