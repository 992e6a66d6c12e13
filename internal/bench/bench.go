// Package bench drives batches of measurements over instance files and
// persists their results.
//
// Batches are sequential: one measurement at a time, no retry. The first
// failure aborts the batch and nothing partial is committed. The context is
// checked before every measurement.
package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/stringptr/daa-sorting-benchmark/internal/instance"
	"github.com/stringptr/daa-sorting-benchmark/internal/runner"
	"github.com/stringptr/daa-sorting-benchmark/internal/sorting"
	"github.com/stringptr/daa-sorting-benchmark/internal/store"
)

var (
	ErrNoInstances = errors.New("no instance files")
	ErrOutput      = errors.New("output path unusable")
)

// Driver runs batches. Result lines go to Stdout; progress goes to Log.
type Driver struct {
	Log      *zap.Logger
	Stdout   io.Writer
	Measurer runner.Measurer
}

// NewDriver fills in defaults for nil fields: a no-op logger, discarded
// result lines and in-process measurement.
func NewDriver(log *zap.Logger, stdout io.Writer, m runner.Measurer) *Driver {
	if log == nil {
		log = zap.NewNop()
	}
	if stdout == nil {
		stdout = io.Discard
	}
	if m == nil {
		m = &runner.InProcess{}
	}
	return &Driver{Log: log, Stdout: stdout, Measurer: m}
}

// Summary describes a finished batch.
type Summary struct {
	// Path is the committed CSV table or the instrument log directory.
	Path string
	// Rows is the number of table rows or log files written.
	Rows int
}

type AllOptions struct {
	DataDir string
	// Output is the path of the CSV table.
	Output string
	Algos  []sorting.Algo
}

// All measures every *.json instance in DataDir with every algorithm and
// writes one row per (instance, algorithm).
func (d *Driver) All(ctx context.Context, opts AllOptions) (Summary, error) {
	files, err := instance.Glob(opts.DataDir, "*.json")
	if err != nil {
		return Summary{}, err
	}
	if len(files) == 0 {
		return Summary{}, fmt.Errorf("%w: nothing matches *.json in %s", ErrNoInstances, opts.DataDir)
	}

	tbl, err := createTable(opts.Output, store.RunResultsHeader)
	if err != nil {
		return Summary{}, err
	}
	defer tbl.Discard()

	d.logStart("all", zap.String("data_dir", opts.DataDir), zap.Int("files", len(files)), zap.Strings("algos", letters(opts.Algos)))

	rows := 0
	for _, path := range files {
		meta, err := instance.Load(path)
		if err != nil {
			return Summary{}, err
		}
		name := filepath.Base(path)
		for _, algo := range opts.Algos {
			r, err := d.measure(ctx, path, algo)
			if err != nil {
				return Summary{}, fmt.Errorf("measure %s with %s: %w", name, algo, err)
			}
			r = r.Rounded()
			if err := tbl.Append(
				name,
				strconv.Itoa(meta.Size()),
				store.FormatOptionalFloat(meta.Error),
				algo.Letter(),
				store.FormatFloat(r.TimeMS),
				store.FormatFloat(r.Gap),
			); err != nil {
				return Summary{}, err
			}
			rows++
			d.Log.Debug("measured", zap.String("instance", name), zap.String("algo", algo.Letter()),
				zap.Int("n", meta.Size()), zap.Float64p("error", meta.Error), zap.Float64("time_ms", r.TimeMS), zap.Float64("gap", r.Gap))
		}
	}

	if err := tbl.Commit(); err != nil {
		return Summary{}, err
	}
	d.Log.Info("batch done", zap.String("mode", "all"), zap.String("table", tbl.Path()), zap.Int("rows", rows))
	return Summary{Path: tbl.Path(), Rows: rows}, nil
}

type VarianceOptions struct {
	DataDir string
	Output  string
	// Instances are file names inside DataDir.
	Instances []string
	Repeats   int
	Algos     []sorting.Algo
}

// Variance runs every algorithm Repeats times on each listed instance and
// writes one row per run. run_id starts at 1.
func (d *Driver) Variance(ctx context.Context, opts VarianceOptions) (Summary, error) {
	if opts.Repeats < 1 {
		return Summary{}, fmt.Errorf("repeats must be at least 1 (got %d)", opts.Repeats)
	}
	if len(opts.Instances) == 0 {
		return Summary{}, fmt.Errorf("%w: no variance targets given", ErrNoInstances)
	}
	info, err := os.Stat(opts.DataDir)
	if err != nil || !info.IsDir() {
		return Summary{}, fmt.Errorf("%w: %s", instance.ErrNoDataDir, opts.DataDir)
	}
	paths := lo.Map(opts.Instances, func(name string, _ int) string {
		return filepath.Join(opts.DataDir, name)
	})
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return Summary{}, fmt.Errorf("%w: %s not found in %s", ErrNoInstances, filepath.Base(p), opts.DataDir)
		}
	}

	tbl, err := createTable(opts.Output, store.VarianceHeader)
	if err != nil {
		return Summary{}, err
	}
	defer tbl.Discard()

	d.logStart("variance", zap.Strings("instances", opts.Instances), zap.Int("repeats", opts.Repeats), zap.Strings("algos", letters(opts.Algos)))

	rows := 0
	for _, path := range paths {
		meta, err := instance.Load(path)
		if err != nil {
			return Summary{}, err
		}
		name := filepath.Base(path)
		for _, algo := range opts.Algos {
			d.Log.Info("variance run", zap.String("instance", name), zap.String("algo", algo.Letter()), zap.Int("n", meta.Size()))
			for run := 1; run <= opts.Repeats; run++ {
				r, err := d.measure(ctx, path, algo)
				if err != nil {
					return Summary{}, fmt.Errorf("measure %s with %s (run %d): %w", name, algo, run, err)
				}
				r = r.Rounded()
				if err := tbl.Append(
					name,
					strconv.Itoa(meta.Size()),
					store.FormatOptionalFloat(meta.Error),
					algo.Letter(),
					strconv.Itoa(run),
					store.FormatFloat(r.TimeMS),
				); err != nil {
					return Summary{}, err
				}
				rows++
			}
		}
	}

	if err := tbl.Commit(); err != nil {
		return Summary{}, err
	}
	d.Log.Info("batch done", zap.String("mode", "variance"), zap.String("table", tbl.Path()), zap.Int("rows", rows))
	return Summary{Path: tbl.Path(), Rows: rows}, nil
}

type InstrumentOptions struct {
	DataDir    string
	OutDir     string
	Pattern    string
	TargetLogs int
	Algos      []sorting.Algo
}

// Instrument runs the instrumented variant of every algorithm on every file
// matching Pattern and writes one log per (algorithm, instance).
func (d *Driver) Instrument(ctx context.Context, opts InstrumentOptions) (Summary, error) {
	files, err := instance.Glob(opts.DataDir, opts.Pattern)
	if err != nil {
		return Summary{}, err
	}
	if len(files) == 0 {
		return Summary{}, fmt.Errorf("%w: nothing matches %q in %s", ErrNoInstances, opts.Pattern, opts.DataDir)
	}

	s, err := store.Open(opts.OutDir)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: %v", ErrOutput, err)
	}

	names := lo.Map(opts.Algos, func(a sorting.Algo, _ int) string { return a.Name() })
	d.logStart("instrument", zap.String("data_dir", opts.DataDir), zap.String("out_dir", s.Dir()),
		zap.Int("files", len(files)), zap.Strings("algos", names), zap.Int("target_logs", opts.TargetLogs))

	written := 0
	for _, path := range files {
		inst, err := instance.Load(path)
		if err != nil {
			return Summary{}, err
		}
		id, err := instance.ID(path, inst)
		if err != nil {
			return Summary{}, err
		}
		d.Log.Info("instance", zap.Int("instance_id", id), zap.Int("n", inst.Size()), zap.Float64p("error", inst.Error))

		for _, algo := range opts.Algos {
			if err := ctx.Err(); err != nil {
				return Summary{Path: s.Dir(), Rows: written}, err
			}
			l, err := runner.Instrument(inst, id, algo, opts.TargetLogs)
			if err != nil {
				return Summary{Path: s.Dir(), Rows: written}, fmt.Errorf("instrument %s with %s: %w", filepath.Base(path), algo.Name(), err)
			}
			p, err := s.WriteInstrumentLog(l)
			if err != nil {
				return Summary{Path: s.Dir(), Rows: written}, err
			}
			written++
			d.Log.Info("saved", zap.String("path", p), zap.String("algo", l.Algo),
				zap.Float64("total_ms", l.TotalMS), zap.Int("log_count", l.LogCount()))
		}
	}

	d.Log.Info("batch done", zap.String("mode", "instrument"), zap.String("out_dir", s.Dir()), zap.Int("logs", written))
	return Summary{Path: s.Dir(), Rows: written}, nil
}

// Generate writes the instance suite into dir.
func (d *Driver) Generate(dir string, suite instance.Suite) (Summary, error) {
	s, err := store.Open(dir)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: %v", ErrOutput, err)
	}
	d.Log.Info("generating instances", zap.String("out_dir", s.Dir()), zap.Ints("sizes", suite.Sizes),
		zap.Float64s("errors", suite.Errors), zap.Int("max_dist", suite.MaxDist), zap.Int64("seed_base", suite.SeedBase))

	paths, err := instance.GenerateSuite(s.Dir(), suite)
	if err != nil {
		return Summary{Path: s.Dir(), Rows: len(paths)}, err
	}
	for _, p := range paths {
		d.Log.Debug("saved", zap.String("path", p))
	}
	d.Log.Info("batch done", zap.String("mode", "generate"), zap.Int("instances", len(paths)))
	return Summary{Path: s.Dir(), Rows: len(paths)}, nil
}

func (d *Driver) measure(ctx context.Context, path string, algo sorting.Algo) (runner.Result, error) {
	if err := ctx.Err(); err != nil {
		return runner.Result{}, err
	}
	r, err := d.Measurer.Measure(ctx, path, algo)
	if err != nil {
		return runner.Result{}, err
	}
	fmt.Fprintln(d.Stdout, r.String())
	return r, nil
}

func (d *Driver) logStart(mode string, fields ...zap.Field) {
	fields = append([]zap.Field{zap.String("mode", mode)}, fields...)
	d.Log.Info("batch start", append(fields, DetectHost().Fields()...)...)
}

// createTable opens the directory of path as a store and starts a table in it.
func createTable(path string, header []string) (*store.Table, error) {
	s, err := store.Open(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutput, err)
	}
	tbl, err := s.CreateTable(filepath.Base(path), header)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutput, err)
	}
	return tbl, nil
}

func letters(algos []sorting.Algo) []string {
	return lo.Map(algos, func(a sorting.Algo, _ int) string { return a.Letter() })
}
