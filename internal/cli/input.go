package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/pflag"

	"github.com/stringptr/daa-sorting-benchmark/internal/bench"
	"github.com/stringptr/daa-sorting-benchmark/internal/config"
	"github.com/stringptr/daa-sorting-benchmark/internal/instance"
	"github.com/stringptr/daa-sorting-benchmark/internal/runner"
	"github.com/stringptr/daa-sorting-benchmark/internal/sorting"
)

const (
	ExitSuccess           = 0
	ExitRunFailure        = 1
	ExitInvalidInvocation = 2
	ExitConfigError       = 3
	ExitInternalError     = 4
)

type Command string

const (
	CommandRun        Command = "run"
	CommandBench      Command = "bench"
	CommandVariance   Command = "variance"
	CommandInstrument Command = "instrument"
	CommandGenerate   Command = "generate"
)

const usage = `usage: sortbench <command> [flags]

commands:
  run         measure one algorithm on one instance
  bench       measure every instance with every algorithm
  variance    repeat measurements on selected instances
  instrument  record ops/time progress logs
  generate    write the near-sorted instance suite

every command accepts --config <file.toml> and --log-level <level>`

// CLIInvocation is a fully resolved command: the configuration file (if
// any) overlaid on the defaults, then explicit flags overlaid on that.
//
// Only the fields of Command are meaningful.
type CLIInvocation struct {
	Command Command
	Config  *config.Config

	// run
	Instance string
	Algo     sorting.Algo

	// bench, variance, instrument
	Algos   []sorting.Algo
	DataDir string
	Isolate bool

	// Output is the CSV table for bench and variance, and the output
	// directory for instrument and generate.
	Output string

	// variance
	Instances []string
	Repeats   int

	// instrument
	Pattern    string
	TargetLogs int

	// generate
	Suite instance.Suite
}

type InvocationError struct {
	ExitCode int
	Message  string
}

func (e *InvocationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func invalidInvocationf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitInvalidInvocation, Message: fmt.Sprintf(format, args...)}
}

func configErrorf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitConfigError, Message: fmt.Sprintf(format, args...)}
}

// flagValues holds the raw flag values of one parse. Only flags that were
// set on the command line override the configuration.
type flagValues struct {
	fs *pflag.FlagSet

	configPath string
	logLevel   string

	instance string
	algo     string

	dataDir    string
	out        string
	outDir     string
	algos      string
	isolate    bool
	instances  string
	repeats    int
	pattern    string
	targetLogs int

	sizes    []int
	errors   []float64
	maxDist  int
	seedBase int64
}

// ParseInvocation parses the command name and its flags into a
// CLIInvocation.
//
// Exit codes of the returned error: invalid flags, unknown algorithm
// selectors and out-of-range values are ExitInvalidInvocation; an
// unreadable or invalid config file is ExitConfigError. --help returns an
// InvocationError with ExitSuccess carrying the usage text.
func ParseInvocation(args []string) (CLIInvocation, error) {
	if len(args) == 0 {
		return CLIInvocation{}, invalidInvocationf("a command is required\n\n%s", usage)
	}
	cmd := Command(args[0])
	switch cmd {
	case CommandRun, CommandBench, CommandVariance, CommandInstrument, CommandGenerate:
	case "help", "-h", "--help":
		return CLIInvocation{}, &InvocationError{ExitCode: ExitSuccess, Message: usage}
	default:
		return CLIInvocation{}, invalidInvocationf("unknown command %q\n\n%s", args[0], usage)
	}

	fv := newFlagSet(cmd)
	if err := fv.fs.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return CLIInvocation{}, &InvocationError{ExitCode: ExitSuccess, Message: commandUsage(fv.fs)}
		}
		return CLIInvocation{}, invalidInvocationf("%s: %v", cmd, err)
	}
	if fv.fs.NArg() != 0 {
		return CLIInvocation{}, invalidInvocationf("unexpected positional arguments: %q", strings.Join(fv.fs.Args(), " "))
	}

	cfg := config.Default()
	if fv.fs.Changed("config") {
		loaded, err := config.Load(fv.configPath)
		if err != nil {
			return CLIInvocation{}, configErrorf("%v", err)
		}
		cfg = loaded
	}

	output, err := fv.apply(cmd, cfg)
	if err != nil {
		return CLIInvocation{}, err
	}
	// The file was already validated, so anything wrong now came from a flag.
	if err := cfg.Validate(); err != nil {
		return CLIInvocation{}, invalidInvocationf("%s: %v", cmd, err)
	}

	inv := CLIInvocation{Command: cmd, Config: cfg, Output: output}
	switch cmd {
	case CommandRun:
		if strings.TrimSpace(fv.instance) == "" {
			return CLIInvocation{}, invalidInvocationf("--instance is required")
		}
		algo, err := sorting.ParseLetter(fv.algo)
		if err != nil {
			return CLIInvocation{}, invalidInvocationf("invalid --algo: %v", err)
		}
		inv.Instance = filepath.Clean(fv.instance)
		inv.Algo = algo
	case CommandBench:
		inv.DataDir = cfg.Paths.DataDir
		inv.Algos = mustLetters(cfg.Bench.Algos)
		inv.Isolate = cfg.Bench.Isolate
	case CommandVariance:
		inv.DataDir = cfg.Paths.DataDir
		inv.Algos = mustLetters(cfg.Variance.Algos)
		inv.Isolate = cfg.Variance.Isolate
		inv.Instances = cfg.Variance.Instances
		inv.Repeats = cfg.Variance.Repeats
	case CommandInstrument:
		inv.DataDir = cfg.Paths.DataDir
		inv.Algos = mustNames(cfg.Instrument.Algos)
		inv.Pattern = cfg.Instrument.Pattern
		inv.TargetLogs = cfg.Instrument.TargetLogs
	case CommandGenerate:
		inv.Suite = cfg.Generate.Suite()
	}
	return inv, nil
}

func newFlagSet(cmd Command) *flagValues {
	fs := pflag.NewFlagSet(string(cmd), pflag.ContinueOnError)
	fs.SetOutput(io.Discard) // parsing errors are returned, not printed
	fs.SortFlags = false

	def := config.Default()
	fv := &flagValues{fs: fs}
	fs.StringVar(&fv.configPath, "config", "", "TOML configuration file")
	fs.StringVar(&fv.logLevel, "log-level", def.Log.Level, "Log level: debug|info|warn|error")

	switch cmd {
	case CommandRun:
		fs.StringVar(&fv.instance, "instance", "", "Instance JSON file. Required.")
		fs.StringVar(&fv.algo, "algo", sorting.Quick.Letter(), "Algorithm: A (quick) | B (merge) | C (insertion)")
	case CommandBench:
		fs.StringVar(&fv.dataDir, "data-dir", def.Paths.DataDir, "Directory of instance files")
		fs.StringVar(&fv.out, "out", filepath.Join(def.Paths.ResultsDir, def.Bench.Table), "CSV output path")
		fs.StringVar(&fv.algos, "algos", strings.Join(def.Bench.Algos, ","), "Comma-separated letters from A,B,C")
		fs.BoolVar(&fv.isolate, "isolate", false, "Measure each run in a fresh child process")
	case CommandVariance:
		fs.StringVar(&fv.dataDir, "data-dir", def.Paths.DataDir, "Directory of instance files")
		fs.StringVar(&fv.out, "out", filepath.Join(def.Paths.ResultsDir, def.Variance.Table), "CSV output path")
		fs.StringVar(&fv.instances, "instances", strings.Join(def.Variance.Instances, ","), "Comma-separated instance file names inside --data-dir")
		fs.IntVar(&fv.repeats, "repeats", def.Variance.Repeats, "Runs per algorithm per instance")
		fs.StringVar(&fv.algos, "algos", strings.Join(def.Variance.Algos, ","), "Comma-separated letters from A,B,C")
		fs.BoolVar(&fv.isolate, "isolate", false, "Measure each run in a fresh child process")
	case CommandInstrument:
		fs.StringVar(&fv.dataDir, "data-dir", def.Paths.DataDir, "Directory of instance files")
		fs.StringVar(&fv.outDir, "out-dir", def.Paths.InstrumentDir, "Directory for instrument logs")
		fs.StringVar(&fv.pattern, "pattern", def.Instrument.Pattern, "Glob pattern for instance files")
		fs.IntVar(&fv.targetLogs, "target-logs", def.Instrument.TargetLogs, "Approximate number of samples per run")
		fs.StringVar(&fv.algos, "algos", strings.Join(def.Instrument.Algos, ","), "Comma-separated names from quick,merge,insertion")
	case CommandGenerate:
		fs.StringVar(&fv.outDir, "out-dir", def.Paths.DataDir, "Directory for generated instances")
		fs.IntSliceVar(&fv.sizes, "sizes", def.Generate.Sizes, "Comma-separated instance sizes")
		fs.Float64SliceVar(&fv.errors, "errors", def.Generate.Errors, "Comma-separated disorder fractions")
		fs.IntVar(&fv.maxDist, "max-dist", def.Generate.MaxDist, "Maximum displacement of a moved element")
		fs.Int64Var(&fv.seedBase, "seed-base", def.Generate.SeedBase, "Instance k is seeded with seed-base+k")
	}
	return fv
}

// apply overlays the flags set on the command line onto cfg and returns
// the output location of cmd.
func (fv *flagValues) apply(cmd Command, cfg *config.Config) (string, error) {
	changed := fv.fs.Changed

	if changed("log-level") {
		cfg.Log.Level = fv.logLevel
	}
	if changed("data-dir") {
		cfg.Paths.DataDir = fv.dataDir
	}

	switch cmd {
	case CommandBench:
		if changed("algos") {
			cfg.Bench.Algos = splitList(fv.algos)
		}
		if changed("isolate") {
			cfg.Bench.Isolate = fv.isolate
		}
		return fv.outputPath(filepath.Join(cfg.Paths.ResultsDir, cfg.Bench.Table))
	case CommandVariance:
		if changed("algos") {
			cfg.Variance.Algos = splitList(fv.algos)
		}
		if changed("isolate") {
			cfg.Variance.Isolate = fv.isolate
		}
		if changed("instances") {
			cfg.Variance.Instances = splitList(fv.instances)
		}
		if changed("repeats") {
			cfg.Variance.Repeats = fv.repeats
		}
		return fv.outputPath(filepath.Join(cfg.Paths.ResultsDir, cfg.Variance.Table))
	case CommandInstrument:
		if changed("algos") {
			cfg.Instrument.Algos = splitList(fv.algos)
		}
		if changed("pattern") {
			cfg.Instrument.Pattern = fv.pattern
		}
		if changed("target-logs") {
			cfg.Instrument.TargetLogs = fv.targetLogs
		}
		if changed("out-dir") {
			cfg.Paths.InstrumentDir = fv.outDir
		}
		return filepath.Clean(cfg.Paths.InstrumentDir), nil
	case CommandGenerate:
		if changed("sizes") {
			cfg.Generate.Sizes = fv.sizes
		}
		if changed("errors") {
			cfg.Generate.Errors = fv.errors
		}
		if changed("max-dist") {
			cfg.Generate.MaxDist = fv.maxDist
		}
		if changed("seed-base") {
			cfg.Generate.SeedBase = fv.seedBase
		}
		if changed("out-dir") {
			cfg.Paths.DataDir = fv.outDir
		}
		return filepath.Clean(cfg.Paths.DataDir), nil
	}
	return "", nil
}

func (fv *flagValues) outputPath(fromConfig string) (string, error) {
	if !fv.fs.Changed("out") {
		return filepath.Clean(fromConfig), nil
	}
	if strings.TrimSpace(fv.out) == "" {
		return "", invalidInvocationf("--out must not be empty")
	}
	return filepath.Clean(fv.out), nil
}

// splitList splits a comma-separated flag value, dropping blank items.
func splitList(raw string) []string {
	return lo.FilterMap(strings.Split(raw, ","), func(s string, _ int) (string, bool) {
		s = strings.TrimSpace(s)
		return s, s != ""
	})
}

// mustLetters converts validated letters.
func mustLetters(letters []string) []sorting.Algo {
	return lo.Map(letters, func(l string, _ int) sorting.Algo {
		a, _ := sorting.ParseLetter(l)
		return a
	})
}

// mustNames converts validated names.
func mustNames(names []string) []sorting.Algo {
	return lo.Map(names, func(n string, _ int) sorting.Algo {
		a, _ := sorting.ParseName(n)
		return a
	})
}

func commandUsage(fs *pflag.FlagSet) string {
	return fmt.Sprintf("usage: sortbench %s [flags]\n\n%s", fs.Name(), fs.FlagUsages())
}

// ExitCode maps an error to a semantic exit code.
//
// InvocationError carries its own code. Configuration and usage failures
// surfacing from the drivers map to ExitConfigError, unknown algorithm
// selectors to ExitInvalidInvocation, everything else to ExitRunFailure.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var invErr *InvocationError
	if errors.As(err, &invErr) && invErr != nil {
		return invErr.ExitCode
	}
	// A child that rejected its invocation keeps that classification.
	var child *runner.ChildError
	if errors.As(err, &child) {
		switch child.ExitCode {
		case ExitInvalidInvocation, ExitConfigError:
			return child.ExitCode
		}
		return ExitRunFailure
	}
	switch {
	case errors.Is(err, sorting.ErrUnknownAlgo):
		return ExitInvalidInvocation
	case errors.Is(err, config.ErrInvalid),
		errors.Is(err, sorting.ErrUnsupportedProject),
		errors.Is(err, instance.ErrNoDataDir),
		errors.Is(err, bench.ErrNoInstances),
		errors.Is(err, bench.ErrOutput),
		errors.Is(err, filepath.ErrBadPattern):
		return ExitConfigError
	}
	return ExitRunFailure
}
