// Package runner performs single measurements: one algorithm over one
// instance, either timed plainly or instrumented with progress samples.
package runner

import (
	"fmt"
	"time"

	"github.com/stringptr/daa-sorting-benchmark/internal/eval"
	"github.com/stringptr/daa-sorting-benchmark/internal/instance"
	"github.com/stringptr/daa-sorting-benchmark/internal/sorting"
	"github.com/stringptr/daa-sorting-benchmark/internal/trace"
)

var now = time.Now

// Run sorts inst with the plain variant of algo, timing only the sort call,
// and scores the output.
//
// An incorrect output is reported through Gap, not as an error. Errors are
// an unsupported project or an algorithm outside the closed set.
func Run(inst *instance.Instance, algo sorting.Algo) (Result, error) {
	if inst == nil {
		return Result{}, fmt.Errorf("run: instance is nil")
	}
	project := inst.ProjectName()
	if err := sorting.CheckProject(project); err != nil {
		return Result{}, err
	}

	start := now()
	out, err := sorting.Sort(algo, inst.Array, nil)
	elapsed := now().Sub(start)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Project: project,
		Algo:    algo,
		TimeMS:  float64(elapsed) / float64(time.Millisecond),
		Gap:     eval.Gap(inst.Array, any(out)),
	}, nil
}

// Instrument sorts inst with the instrumented variant of algo and returns
// the instrument log of the run. targetLogs below 1 falls back to
// trace.DefaultTargetLogs.
func Instrument(inst *instance.Instance, id int, algo sorting.Algo, targetLogs int) (trace.Log, error) {
	if inst == nil {
		return trace.Log{}, fmt.Errorf("instrument: instance is nil")
	}
	if err := sorting.CheckProject(inst.ProjectName()); err != nil {
		return trace.Log{}, err
	}
	if targetLogs < 1 {
		targetLogs = trace.DefaultTargetLogs
	}

	rec := trace.NewRecorder(len(inst.Array), targetLogs)
	rec.Start()
	if _, err := sorting.Sort(algo, inst.Array, rec); err != nil {
		return trace.Log{}, err
	}
	total := rec.Elapsed()

	return trace.Log{
		Algo:       algo.Name(),
		InstanceID: id,
		N:          inst.Size(),
		Error:      inst.Error,
		TotalMS:    total,
		Samples:    rec.Samples(),
	}, nil
}
