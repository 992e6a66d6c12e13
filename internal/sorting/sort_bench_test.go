package sorting

import (
	"testing"

	"github.com/stringptr/daa-sorting-benchmark/internal/instance"
	"github.com/stringptr/daa-sorting-benchmark/internal/trace"
)

// Near-sorted inputs with the generator's default disorder.
func nearSorted(n int) []float64 {
	return instance.NewNearSorted(n, 0.05, 8, 123).Array
}

func BenchmarkQuickSort_NearSorted_1000(b *testing.B)  { benchmarkSort(b, Quick, 1000, false) }
func BenchmarkQuickSort_NearSorted_20000(b *testing.B) { benchmarkSort(b, Quick, 20000, false) }

func BenchmarkMergeSort_NearSorted_1000(b *testing.B)  { benchmarkSort(b, Merge, 1000, false) }
func BenchmarkMergeSort_NearSorted_20000(b *testing.B) { benchmarkSort(b, Merge, 20000, false) }

func BenchmarkInsertionSort_NearSorted_1000(b *testing.B)  { benchmarkSort(b, Insertion, 1000, false) }
func BenchmarkInsertionSort_NearSorted_20000(b *testing.B) { benchmarkSort(b, Insertion, 20000, false) }

// Instrumented variants, to see what the sink costs.
func BenchmarkQuickSort_Instrumented_20000(b *testing.B)     { benchmarkSort(b, Quick, 20000, true) }
func BenchmarkMergeSort_Instrumented_20000(b *testing.B)     { benchmarkSort(b, Merge, 20000, true) }
func BenchmarkInsertionSort_Instrumented_20000(b *testing.B) { benchmarkSort(b, Insertion, 20000, true) }

func benchmarkSort(b *testing.B, a Algo, n int, instrumented bool) {
	ref := nearSorted(n)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var sink trace.Sink
		if instrumented {
			sink = trace.NewRecorder(n, trace.DefaultTargetLogs)
		}
		if _, err := Sort(a, ref, sink); err != nil {
			b.Fatal(err)
		}
	}
}
