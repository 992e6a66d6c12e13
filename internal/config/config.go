// Package config holds the sortbench configuration: built-in defaults,
// optionally overlaid by a TOML file.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/stringptr/daa-sorting-benchmark/internal/instance"
	"github.com/stringptr/daa-sorting-benchmark/internal/logutil"
	"github.com/stringptr/daa-sorting-benchmark/internal/sorting"
	"github.com/stringptr/daa-sorting-benchmark/internal/trace"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Log        logutil.LogConfig `toml:"log"`
	Paths      Paths             `toml:"paths"`
	Bench      Bench             `toml:"bench"`
	Variance   Variance          `toml:"variance"`
	Instrument Instrument        `toml:"instrument"`
	Generate   Generate          `toml:"generate"`
}

type Paths struct {
	DataDir       string `toml:"data-dir"`
	ResultsDir    string `toml:"results-dir"`
	InstrumentDir string `toml:"instrument-dir"`
}

// Bench configures the all-instances run.
type Bench struct {
	// Algos are run-driver letters (A, B, C).
	Algos   []string `toml:"algos"`
	Isolate bool     `toml:"isolate"`
	Table   string   `toml:"table"`
}

// Variance configures repeated runs over a few chosen instances.
type Variance struct {
	Instances []string `toml:"instances"`
	Repeats   int      `toml:"repeats"`
	Algos     []string `toml:"algos"`
	Isolate   bool     `toml:"isolate"`
	Table     string   `toml:"table"`
}

// Instrument configures the instrumented batch.
type Instrument struct {
	Pattern    string `toml:"pattern"`
	TargetLogs int    `toml:"target-logs"`
	// Algos are algorithm names (quick, merge, insertion).
	Algos []string `toml:"algos"`
}

type Generate struct {
	Sizes    []int     `toml:"sizes"`
	Errors   []float64 `toml:"errors"`
	MaxDist  int       `toml:"max-dist"`
	SeedBase int64     `toml:"seed-base"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: logutil.DefaultLogConfig(),
		Paths: Paths{
			DataDir:       "data",
			ResultsDir:    "results",
			InstrumentDir: filepath.Join("results", "instrument_logs"),
		},
		Bench: Bench{
			Algos: []string{"A", "B", "C"},
			Table: "run_results.csv",
		},
		Variance: Variance{
			Instances: []string{
				"sorting_near_sorted_3.json",
				"sorting_near_sorted_9.json",
				"sorting_near_sorted_12.json",
			},
			Repeats: 50,
			Algos:   []string{"A", "B", "C"},
			Table:   "variance_runs.csv",
		},
		Instrument: Instrument{
			Pattern:    "sorting_near_sorted_*.json",
			TargetLogs: trace.DefaultTargetLogs,
			Algos:      []string{"quick", "merge", "insertion"},
		},
		Generate: Generate{
			Sizes:    []int{1000, 5000, 20000, 100000, 500000},
			Errors:   []float64{0.02, 0.05, 0.10},
			MaxDist:  8,
			SeedBase: 123,
		},
	}
}

// Load overlays the TOML file at path onto Default. Keys the file sets
// replace the defaults; lists are replaced, not merged. Unknown keys are
// an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, filepath.Base(path), err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("%w: %s: unknown keys: %s", ErrInvalid, filepath.Base(path), strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// Validate checks every section. The returned error wraps ErrInvalid.
func (c *Config) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("%w: [log] %v", ErrInvalid, err)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return fmt.Errorf("%w: [paths] data-dir is empty", ErrInvalid)
	}
	if strings.TrimSpace(c.Paths.ResultsDir) == "" {
		return fmt.Errorf("%w: [paths] results-dir is empty", ErrInvalid)
	}
	if strings.TrimSpace(c.Paths.InstrumentDir) == "" {
		return fmt.Errorf("%w: [paths] instrument-dir is empty", ErrInvalid)
	}

	if err := checkLetters("bench", c.Bench.Algos); err != nil {
		return err
	}
	if err := checkTable("bench", c.Bench.Table); err != nil {
		return err
	}

	if len(c.Variance.Instances) == 0 {
		return fmt.Errorf("%w: [variance] instances is empty", ErrInvalid)
	}
	if c.Variance.Repeats < 1 {
		return fmt.Errorf("%w: [variance] repeats must be at least 1 (got %d)", ErrInvalid, c.Variance.Repeats)
	}
	if err := checkLetters("variance", c.Variance.Algos); err != nil {
		return err
	}
	if err := checkTable("variance", c.Variance.Table); err != nil {
		return err
	}

	if strings.TrimSpace(c.Instrument.Pattern) == "" {
		return fmt.Errorf("%w: [instrument] pattern is empty", ErrInvalid)
	}
	if _, err := filepath.Match(c.Instrument.Pattern, ""); err != nil {
		return fmt.Errorf("%w: [instrument] pattern %q: %v", ErrInvalid, c.Instrument.Pattern, err)
	}
	if c.Instrument.TargetLogs < 1 {
		return fmt.Errorf("%w: [instrument] target-logs must be at least 1 (got %d)", ErrInvalid, c.Instrument.TargetLogs)
	}
	if len(c.Instrument.Algos) == 0 {
		return fmt.Errorf("%w: [instrument] algos is empty", ErrInvalid)
	}
	for _, name := range c.Instrument.Algos {
		if _, err := sorting.ParseName(name); err != nil {
			return fmt.Errorf("%w: [instrument] %v", ErrInvalid, err)
		}
	}

	return c.Generate.validate()
}

func (g Generate) validate() error {
	if len(g.Sizes) == 0 || len(g.Errors) == 0 {
		return fmt.Errorf("%w: [generate] sizes and errors must not be empty", ErrInvalid)
	}
	for _, n := range g.Sizes {
		if n < 0 {
			return fmt.Errorf("%w: [generate] size %d is negative", ErrInvalid, n)
		}
	}
	for _, e := range g.Errors {
		if e < 0 || e > 1 {
			return fmt.Errorf("%w: [generate] error %g is outside [0, 1]", ErrInvalid, e)
		}
	}
	if g.MaxDist < 0 {
		return fmt.Errorf("%w: [generate] max-dist %d is negative", ErrInvalid, g.MaxDist)
	}
	return nil
}

// Suite converts the section into generator parameters.
func (g Generate) Suite() instance.Suite {
	return instance.Suite{Sizes: g.Sizes, Errors: g.Errors, MaxDist: g.MaxDist, SeedBase: g.SeedBase}
}

func checkLetters(section string, letters []string) error {
	if len(letters) == 0 {
		return fmt.Errorf("%w: [%s] algos is empty", ErrInvalid, section)
	}
	for _, l := range letters {
		if _, err := sorting.ParseLetter(l); err != nil {
			return fmt.Errorf("%w: [%s] %v", ErrInvalid, section, err)
		}
	}
	return nil
}

func checkTable(section, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: [%s] table is empty", ErrInvalid, section)
	}
	if filepath.Base(name) != name {
		return fmt.Errorf("%w: [%s] table %q must be a file name inside results-dir", ErrInvalid, section, name)
	}
	return nil
}
