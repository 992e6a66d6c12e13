package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/stringptr/daa-sorting-benchmark/internal/bench"
	"github.com/stringptr/daa-sorting-benchmark/internal/instance"
	"github.com/stringptr/daa-sorting-benchmark/internal/logutil"
	"github.com/stringptr/daa-sorting-benchmark/internal/runner"
)

// newIsolatedMeasurer builds the measurer used by --isolate: this same
// binary, re-executed once per measurement.
var newIsolatedMeasurer = func() (runner.Measurer, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate sortbench binary: %w", err)
	}
	return &runner.Subprocess{Binary: exe}, nil
}

type CLIResult struct {
	ExitCode int

	// Result is set by the run command.
	Result *runner.Result

	// Summary is set by the batch commands.
	Summary bench.Summary
}

// Execute runs inv with result lines on os.Stdout and logs on os.Stderr.
func Execute(ctx context.Context, inv CLIInvocation) (CLIResult, error) {
	return ExecuteWithIO(ctx, inv, os.Stdout, os.Stderr)
}

// ExecuteWithIO maps a resolved invocation onto the drivers.
//
// stdout receives result lines only. Logs go to stderr and, when
// configured, to the rotating log file. The exit code is derived from the
// returned error with ExitCode; a panic is reported as ExitInternalError.
func ExecuteWithIO(ctx context.Context, inv CLIInvocation, stdout, stderr io.Writer) (res CLIResult, execErr error) {
	res.ExitCode = ExitInternalError
	if inv.Config == nil {
		return res, fmt.Errorf("invocation has no configuration")
	}

	logger, err := logutil.NewWithWriter(inv.Config.Log, stderr)
	if err != nil {
		res.ExitCode = ExitConfigError
		return res, err
	}
	defer func() { _ = logger.Sync() }()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic", zap.Any("value", r), zap.Stack("stack"))
			res = CLIResult{ExitCode: ExitInternalError}
			execErr = fmt.Errorf("panic: %v", r)
		}
	}()

	switch inv.Command {
	case CommandRun:
		r, err := executeRun(inv, stdout)
		if err != nil {
			return CLIResult{ExitCode: ExitCode(err)}, err
		}
		return CLIResult{ExitCode: ExitSuccess, Result: &r}, nil

	case CommandGenerate:
		d := bench.NewDriver(logger, stdout, nil)
		sum, err := d.Generate(inv.Output, inv.Suite)
		return finish(logger, sum, err)

	case CommandBench, CommandVariance, CommandInstrument:
		m, err := measurerFor(inv)
		if err != nil {
			return CLIResult{ExitCode: ExitInternalError}, err
		}
		d := bench.NewDriver(logger, stdout, m)

		var sum bench.Summary
		switch inv.Command {
		case CommandBench:
			sum, err = d.All(ctx, bench.AllOptions{DataDir: inv.DataDir, Output: inv.Output, Algos: inv.Algos})
		case CommandVariance:
			sum, err = d.Variance(ctx, bench.VarianceOptions{
				DataDir:   inv.DataDir,
				Output:    inv.Output,
				Instances: inv.Instances,
				Repeats:   inv.Repeats,
				Algos:     inv.Algos,
			})
		case CommandInstrument:
			sum, err = d.Instrument(ctx, bench.InstrumentOptions{
				DataDir:    inv.DataDir,
				OutDir:     inv.Output,
				Pattern:    inv.Pattern,
				TargetLogs: inv.TargetLogs,
				Algos:      inv.Algos,
			})
		}
		return finish(logger, sum, err)
	}

	return res, fmt.Errorf("unhandled command %q", inv.Command)
}

// executeRun is the single-shot measurement. Its only stdout output is the
// result line.
func executeRun(inv CLIInvocation, stdout io.Writer) (runner.Result, error) {
	inst, err := instance.Load(inv.Instance)
	if err != nil {
		return runner.Result{}, err
	}
	r, err := runner.Run(inst, inv.Algo)
	if err != nil {
		return runner.Result{}, err
	}
	if _, err := fmt.Fprintln(stdout, r.String()); err != nil {
		return runner.Result{}, fmt.Errorf("write result: %w", err)
	}
	return r, nil
}

func measurerFor(inv CLIInvocation) (runner.Measurer, error) {
	if inv.Isolate {
		return newIsolatedMeasurer()
	}
	return &runner.InProcess{}, nil
}

func finish(logger *zap.Logger, sum bench.Summary, err error) (CLIResult, error) {
	if err != nil {
		code := ExitCode(err)
		logger.Error("batch failed", zap.Error(err), zap.Int("exit_code", code))
		return CLIResult{ExitCode: code, Summary: sum}, err
	}
	return CLIResult{ExitCode: ExitSuccess, Summary: sum}, nil
}
