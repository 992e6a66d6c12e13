// Package instance defines the benchmark input: an array of numbers plus the
// metadata describing how disordered it is.
package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/stringptr/daa-sorting-benchmark/internal/store"
)

// UnknownProject is the project of an instance file without one.
const UnknownProject = "unknown"

var (
	ErrSizeMismatch = errors.New("array length does not match n")
	ErrNoDataDir    = errors.New("data dir not found")
)

// Instance is one benchmark input as stored on disk.
//
// Invariants:
//   - len(Array) == *N when N is present.
//
// Instances are read-only once loaded; algorithms sort private copies.
type Instance struct {
	Project     string    `json:"project"`
	Description string    `json:"description"`
	N           *int      `json:"n,omitempty"`
	Error       *float64  `json:"error,omitempty"`
	InstanceID  *int      `json:"instance_id,omitempty"`
	Array       []float64 `json:"array"`
}

// ProjectName returns the project tag, or UnknownProject when absent.
func (in *Instance) ProjectName() string {
	if in == nil || in.Project == "" {
		return UnknownProject
	}
	return in.Project
}

// Size returns n when present and the array length otherwise.
func (in *Instance) Size() int {
	if in.N != nil {
		return *in.N
	}
	return len(in.Array)
}

// Validate checks the instance invariants.
func (in *Instance) Validate() error {
	if in == nil {
		return errors.New("instance is nil")
	}
	if in.N != nil {
		if *in.N < 0 {
			return fmt.Errorf("n must not be negative (got %d)", *in.N)
		}
		if *in.N != len(in.Array) {
			return fmt.Errorf("%w: n=%d, len(array)=%d", ErrSizeMismatch, *in.N, len(in.Array))
		}
	}
	return nil
}

// Load reads and validates the instance file at path.
//
// Unknown fields are ignored so files written by other generators still load.
// Malformed JSON, trailing data and a size mismatch are errors.
func Load(path string) (*Instance, error) {
	var in Instance
	if err := store.ReadJSON(path, &in); err != nil {
		return nil, fmt.Errorf("read instance: %w", err)
	}
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("invalid instance %s: %w", filepath.Base(path), err)
	}
	return &in, nil
}

// Save writes in to path as indented JSON.
func Save(path string, in *Instance) error {
	if err := in.Validate(); err != nil {
		return fmt.Errorf("invalid instance: %w", err)
	}
	data, err := store.MarshalIndent(in)
	if err != nil {
		return fmt.Errorf("marshal instance: %w", err)
	}
	if err := store.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write instance: %w", err)
	}
	return nil
}

// ID returns the numeric identifier of the instance stored at path: the
// instance_id field when present, else the last "_"-separated token of the
// file stem (sorting_near_sorted_12.json -> 12).
func ID(path string, in *Instance) (int, error) {
	if in != nil && in.InstanceID != nil {
		return *in.InstanceID, nil
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	parts := strings.Split(stem, "_")
	last := parts[len(parts)-1]
	id, err := strconv.Atoi(last)
	if err != nil {
		return 0, fmt.Errorf("instance id: cannot derive from file name %q", filepath.Base(path))
	}
	return id, nil
}

// Glob returns the files in dir matching pattern, sorted by name.
// The directory must exist.
func Glob(dir, pattern string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoDataDir, dir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNoDataDir, dir)
	}
	// filepath.Glob returns matches in lexical order.
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", pattern, err)
	}
	return matches, nil
}
