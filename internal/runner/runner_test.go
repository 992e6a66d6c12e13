package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prashantv/gostub"
	"github.com/stretchr/testify/require"

	"github.com/stringptr/daa-sorting-benchmark/internal/eval"
	"github.com/stringptr/daa-sorting-benchmark/internal/instance"
	"github.com/stringptr/daa-sorting-benchmark/internal/sorting"
	"github.com/stringptr/daa-sorting-benchmark/internal/trace"
)

func sortingInstance(arr ...float64) *instance.Instance {
	n := len(arr)
	return &instance.Instance{Project: "sorting", N: &n, Array: arr}
}

func TestRun_TimesTheSortCall(t *testing.T) {
	base := time.Unix(100, 0)
	calls := 0
	stubs := gostub.Stub(&now, func() time.Time {
		calls++
		return base.Add(time.Duration(calls-1) * 1500 * time.Microsecond)
	})
	defer stubs.Reset()

	in := sortingInstance(5, 3, 1, 4, 2)
	r, err := Run(in, sorting.Merge)
	require.NoError(t, err)
	require.Equal(t, 2, calls, "clock is read once before and once after the sort")
	require.Equal(t, Result{Project: "sorting", Algo: sorting.Merge, TimeMS: 1.5, Gap: eval.Correct}, r)
	require.Equal(t, "Project=sorting  Algo=B  Time_ms=1.50  Gap=0.0000", r.String())
	require.Equal(t, []float64{5, 3, 1, 4, 2}, in.Array, "instance must stay untouched")
}

func TestRun_AllAlgorithmsCorrect(t *testing.T) {
	in := instance.NewNearSorted(3000, 0.05, 8, 9)
	for _, a := range sorting.All() {
		r, err := Run(in, a)
		require.NoError(t, err)
		require.Equal(t, eval.Correct, r.Gap, a.Name())
		require.GreaterOrEqual(t, r.TimeMS, 0.0)
	}
}

func TestRun_RejectsUnsupportedProject(t *testing.T) {
	for _, project := range []string{"tsp", ""} {
		in := &instance.Instance{Project: project, Array: []float64{2, 1}}
		_, err := Run(in, sorting.Quick)
		require.ErrorIs(t, err, sorting.ErrUnsupportedProject)

		_, err = Instrument(in, 1, sorting.Quick, 10)
		require.ErrorIs(t, err, sorting.ErrUnsupportedProject)
	}
	_, err := Run(&instance.Instance{Array: []float64{1}}, sorting.Quick)
	require.ErrorContains(t, err, "project=unknown")
}

func TestRun_RejectsUnknownAlgo(t *testing.T) {
	_, err := Run(sortingInstance(1, 2), sorting.Algo(9))
	require.ErrorIs(t, err, sorting.ErrUnknownAlgo)
}

func TestInstrument_AssemblesLog(t *testing.T) {
	in := instance.NewNearSorted(1000, 0.1, 8, 5)
	l, err := Instrument(in, 7, sorting.Insertion, 50)
	require.NoError(t, err)
	require.NoError(t, l.Validate())
	require.Equal(t, "insertion", l.Algo)
	require.Equal(t, 7, l.InstanceID)
	require.Equal(t, 1000, l.N)
	require.Equal(t, 0.1, *l.Error)
	require.GreaterOrEqual(t, l.TotalMS, 0.0)
	for _, s := range l.Samples {
		require.Zero(t, s.Ops%int64(trace.Batch(1000, 50)))
		require.LessOrEqual(t, s.MS, l.TotalMS)
	}
}

func TestInstrument_EmptyInstance(t *testing.T) {
	l, err := Instrument(sortingInstance(), 1, sorting.Quick, 0)
	require.NoError(t, err)
	require.Empty(t, l.Samples)
	require.Nil(t, l.Error)
	require.Zero(t, l.N)
}

func TestParseResult_RoundTrip(t *testing.T) {
	r := Result{Project: "sorting", Algo: sorting.Insertion, TimeMS: 12.345678, Gap: 1}
	got, err := ParseResult(r.String())
	require.NoError(t, err)
	require.Equal(t, r.Rounded(), got)
	require.Equal(t, 12.35, got.TimeMS)
	require.Equal(t, sorting.Insertion, got.Algo)
}

func TestParseResult_Malformed(t *testing.T) {
	for _, line := range []string{
		"",
		"Project=sorting Algo=A Time_ms=1.00",
		"Algo=A Project=sorting Time_ms=1.00 Gap=0.0000",
		"Project=sorting Algo=D Time_ms=1.00 Gap=0.0000",
		"Project=sorting Algo=A Time_ms=fast Gap=0.0000",
		"Project=sorting Algo=A Time_ms=1.00 Gap",
	} {
		_, err := ParseResult(line)
		require.ErrorIs(t, err, ErrMalformedResult, "%q", line)
	}
}

func writeInstanceFile(t *testing.T, dir, name string, in *instance.Instance) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := instance.Save(p, in); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return p
}

func TestInProcess_ReusesLoadedInstance(t *testing.T) {
	dir := t.TempDir()
	p := writeInstanceFile(t, dir, "sorting_near_sorted_1.json", sortingInstance(3, 1, 2))

	var m InProcess
	r, err := m.Measure(context.Background(), p, sorting.Quick)
	require.NoError(t, err)
	require.Equal(t, eval.Correct, r.Gap)

	// The file is gone but the cached instance is still measured.
	require.NoError(t, os.Remove(p))
	_, err = m.Measure(context.Background(), p, sorting.Merge)
	require.NoError(t, err)

	_, err = m.Measure(context.Background(), filepath.Join(dir, "missing.json"), sorting.Merge)
	require.Error(t, err)
}

func TestInProcess_HonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var m InProcess
	_, err := m.Measure(ctx, "unused.json", sorting.Quick)
	require.ErrorIs(t, err, context.Canceled)
}

// writeScript creates an executable shell script that stands in for the
// sortbench binary. The script sees no PATH, so it sticks to builtins.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "fake-sortbench")
	if err := os.WriteFile(p, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return p
}

func TestSubprocess_ParsesChildLine(t *testing.T) {
	// $1=run $2=--instance $3=<path> $4=--algo $5=<letter>
	bin := writeScript(t, `[ "$1" = run ] && [ "$2" = --instance ] && [ "$4" = --algo ] || exit 9
echo "Project=sorting  Algo=$5  Time_ms=3.25  Gap=0.0000"`)

	m := &Subprocess{Binary: bin}
	r, err := m.Measure(context.Background(), "data/sorting_near_sorted_1.json", sorting.Merge)
	require.NoError(t, err)
	require.Equal(t, Result{Project: "sorting", Algo: sorting.Merge, TimeMS: 3.25, Gap: 0}, r)
}

func TestSubprocess_EmptyEnvironment(t *testing.T) {
	t.Setenv("SORTBENCH_SECRET", "should_not_see_this")
	bin := writeScript(t, `if [ -n "$SORTBENCH_SECRET" ]; then echo "leaked" >&2; exit 5; fi
echo "Project=sorting  Algo=$5  Time_ms=0.10  Gap=0.0000"`)

	m := &Subprocess{Binary: bin}
	_, err := m.Measure(context.Background(), "x.json", sorting.Quick)
	require.NoError(t, err)
}

func TestSubprocess_NonZeroExitCarriesStderr(t *testing.T) {
	bin := writeScript(t, `echo "unsupported project: tsp" >&2
exit 3`)

	m := &Subprocess{Binary: bin}
	_, err := m.Measure(context.Background(), "x.json", sorting.Quick)
	var child *ChildError
	require.True(t, errors.As(err, &child), "got %v", err)
	require.Equal(t, 3, child.ExitCode)
	require.True(t, strings.Contains(child.Error(), "unsupported project: tsp"))
}

func TestSubprocess_MalformedOutput(t *testing.T) {
	bin := writeScript(t, `echo "done"`)
	m := &Subprocess{Binary: bin}
	_, err := m.Measure(context.Background(), "x.json", sorting.Quick)
	require.ErrorIs(t, err, ErrMalformedResult)
}

func TestSubprocess_Cancellation(t *testing.T) {
	bin := writeScript(t, `while :; do :; done`)
	m := &Subprocess{Binary: bin}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := m.Measure(ctx, "x.json", sorting.Quick)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestSubprocess_MissingBinary(t *testing.T) {
	m := &Subprocess{Binary: filepath.Join(t.TempDir(), "nope")}
	_, err := m.Measure(context.Background(), "x.json", sorting.Quick)
	require.Error(t, err)

	_, err = (&Subprocess{}).Measure(context.Background(), "x.json", sorting.Quick)
	require.Error(t, err)
}
