package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Headers of the two batch tables.
var (
	RunResultsHeader = []string{"instance", "n", "error", "algo", "time_ms", "gap"}
	VarianceHeader   = []string{"instance", "n", "error", "algo", "run_id", "time_ms"}
)

// Table is a CSV result file being filled row by row.
//
// Rows go to a temp file next to the target and are flushed after every
// Append, so a long batch can be followed with tail. Commit renames the temp
// file over the target; Discard drops it. A Table is used by one goroutine.
type Table struct {
	path    string
	tmp     *os.File
	w       *csv.Writer
	columns int
	done    bool
}

// CreateTable starts a CSV file named name with the given header.
func (s *Store) CreateTable(name string, header []string) (*Table, error) {
	if s == nil {
		return nil, errors.New("nil Store")
	}
	if len(header) == 0 {
		return nil, errors.New("table header is required")
	}
	p := s.Path(name)
	tmp, err := os.CreateTemp(filepath.Dir(p), filepath.Base(p)+".tmp.*")
	if err != nil {
		return nil, fmt.Errorf("create table %s: %w", name, err)
	}
	t := &Table{path: p, tmp: tmp, w: csv.NewWriter(tmp), columns: len(header)}
	if err := t.Append(header...); err != nil {
		t.Discard()
		return nil, err
	}
	return t, nil
}

// Path returns the final location of the table.
func (t *Table) Path() string { return t.path }

// Append writes one row. The row must have as many cells as the header.
func (t *Table) Append(cells ...string) error {
	if t.done {
		return errors.New("table is closed")
	}
	if len(cells) != t.columns {
		return fmt.Errorf("row has %d cells, header has %d", len(cells), t.columns)
	}
	if err := t.w.Write(cells); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	t.w.Flush()
	if err := t.w.Error(); err != nil {
		return fmt.Errorf("flush row: %w", err)
	}
	return nil
}

// Commit makes the table visible at its final path.
func (t *Table) Commit() error {
	if t.done {
		return errors.New("table is closed")
	}
	t.done = true
	t.w.Flush()
	if err := t.w.Error(); err != nil {
		t.remove()
		return fmt.Errorf("flush table: %w", err)
	}
	if err := t.tmp.Sync(); err != nil {
		t.remove()
		return fmt.Errorf("sync table: %w", err)
	}
	if err := t.tmp.Close(); err != nil {
		_ = os.Remove(t.tmp.Name())
		return fmt.Errorf("close table: %w", err)
	}
	if err := os.Chmod(t.tmp.Name(), 0o644); err != nil {
		_ = os.Remove(t.tmp.Name())
		return fmt.Errorf("chmod table: %w", err)
	}
	if err := os.Rename(t.tmp.Name(), t.path); err != nil {
		_ = os.Remove(t.tmp.Name())
		return fmt.Errorf("commit table: %w", err)
	}
	return fsyncDir(filepath.Dir(t.path))
}

// Discard drops the rows written so far. It is a no-op after Commit.
func (t *Table) Discard() {
	if t.done {
		return
	}
	t.done = true
	t.remove()
}

func (t *Table) remove() {
	_ = t.tmp.Close()
	_ = os.Remove(t.tmp.Name())
}

// FormatFloat renders a CSV number the way the result tables always have:
// shortest representation, with a trailing ".0" on integral values.
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if strings.Contains(s, ".") {
		return s
	}
	return s + ".0"
}

// FormatOptionalFloat renders nil as an empty cell.
func FormatOptionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return FormatFloat(*v)
}
