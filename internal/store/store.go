package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/stringptr/daa-sorting-benchmark/internal/trace"
)

// Store is a results directory. Every artifact is written atomically: a
// temp file in the same directory is synced and renamed over the target, so
// a reader never observes a half-written file.
type Store struct {
	dir string
}

// Open creates dir (and parents) when missing and returns a Store rooted
// there. An error means the directory cannot be used for output.
func Open(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("results dir is required")
	}
	dir = filepath.Clean(dir)
	if err := ensureDir(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure results dir: %w", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat results dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("results dir %s is not a directory", dir)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory the store writes into.
func (s *Store) Dir() string { return s.dir }

// Path returns the location of name inside the store directory.
func (s *Store) Path(name string) string { return filepath.Join(s.dir, name) }

// WriteJSON encodes v indented with two spaces and writes it as name.
// It returns the written path.
func (s *Store) WriteJSON(name string, v any) (string, error) {
	if s == nil {
		return "", errors.New("nil Store")
	}
	data, err := MarshalIndent(v)
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", name, err)
	}
	p := s.Path(name)
	if err := WriteFileAtomic(p, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return p, nil
}

// InstrumentLogName is the file name of the instrument log of one
// (algorithm, instance) pair.
func InstrumentLogName(algo string, instanceID, n int) string {
	return fmt.Sprintf("%s_inst%d_n%d.json", algo, instanceID, n)
}

// WriteInstrumentLog validates l and persists it under its canonical name.
func (s *Store) WriteInstrumentLog(l trace.Log) (string, error) {
	if err := l.Validate(); err != nil {
		return "", fmt.Errorf("invalid instrument log: %w", err)
	}
	return s.WriteJSON(InstrumentLogName(l.Algo, l.InstanceID, l.N), l)
}

// ReadInstrumentLog loads a log written by WriteInstrumentLog.
func ReadInstrumentLog(path string) (trace.Log, error) {
	var l trace.Log
	if err := ReadJSON(path, &l); err != nil {
		return trace.Log{}, err
	}
	if err := l.Validate(); err != nil {
		return trace.Log{}, fmt.Errorf("invalid instrument log on disk: %w", err)
	}
	return l, nil
}

// MarshalIndent is the encoding used for every JSON artifact.
func MarshalIndent(v any) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// ReadJSON decodes exactly one JSON value from path into dst. Trailing data
// is an error. Unknown fields are accepted.
func ReadJSON(path string, dst any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("parse %s: trailing data", filepath.Base(path))
	}
	return nil
}

func ensureDir(dir string, perm os.FileMode) error {
	if err := os.MkdirAll(dir, perm); err != nil {
		return err
	}
	return fsyncDir(dir)
}

// WriteFileAtomic writes data to path via a synced temp file and a rename.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return fsyncDir(dir)
}

func fsyncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
