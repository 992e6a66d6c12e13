package trace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Sample is one progress point of an instrumented run.
type Sample struct {
	// Ops is the cumulative operation count when the sample was taken.
	Ops int64 `json:"ops"`

	// MS is the elapsed wall-clock time in milliseconds since the run started.
	MS float64 `json:"ms"`
}

// Log is the record of one instrumented run of one algorithm over one
// instance.
//
// Invariants:
//   - Algo is one of the algorithm names (quick, merge, insertion).
//   - Samples are non-decreasing in both Ops and MS.
//
// The JSON encoding has a fixed field order, emits "error": null when the
// instance carries no disorder fraction and "log": [] when no sample was
// taken. log_count is derived from Samples and never stored separately.
type Log struct {
	Algo       string
	InstanceID int
	N          int
	Error      *float64
	TotalMS    float64
	Samples    []Sample
}

// Validate checks the invariants of the log and returns a descriptive error.
func (l *Log) Validate() error {
	if l == nil {
		return errors.New("log is nil")
	}
	if l.Algo == "" {
		return errors.New("algo is required")
	}
	if l.N < 0 {
		return fmt.Errorf("n must not be negative (got %d)", l.N)
	}
	for i := 1; i < len(l.Samples); i++ {
		prev, cur := l.Samples[i-1], l.Samples[i]
		if cur.Ops < prev.Ops {
			return fmt.Errorf("log[%d].ops decreases (%d < %d)", i, cur.Ops, prev.Ops)
		}
		if cur.MS < prev.MS {
			return fmt.Errorf("log[%d].ms decreases (%g < %g)", i, cur.MS, prev.MS)
		}
	}
	return nil
}

// LogCount returns the number of samples in the log.
func (l Log) LogCount() int { return len(l.Samples) }

// MarshalJSON writes the log with a fixed field order.
func (l Log) MarshalJSON() ([]byte, error) {
	if l.Algo == "" {
		return nil, errors.New("algo is required")
	}
	var buf bytes.Buffer
	buf.WriteByte('{')

	buf.WriteString("\"algo\":")
	ab, _ := json.Marshal(l.Algo)
	buf.Write(ab)

	fmt.Fprintf(&buf, ",\"instance_id\":%d", l.InstanceID)
	fmt.Fprintf(&buf, ",\"n\":%d", l.N)

	buf.WriteString(",\"error\":")
	if l.Error == nil {
		buf.WriteString("null")
	} else {
		eb, err := json.Marshal(*l.Error)
		if err != nil {
			return nil, err
		}
		buf.Write(eb)
	}

	buf.WriteString(",\"total_ms\":")
	tb, err := json.Marshal(l.TotalMS)
	if err != nil {
		return nil, err
	}
	buf.Write(tb)

	fmt.Fprintf(&buf, ",\"log_count\":%d", len(l.Samples))

	buf.WriteString(",\"log\":[")
	for i := range l.Samples {
		if i > 0 {
			buf.WriteByte(',')
		}
		sb, err := json.Marshal(l.Samples[i])
		if err != nil {
			return nil, err
		}
		buf.Write(sb)
	}
	buf.WriteByte(']')

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a log written by MarshalJSON. log_count is checked
// against the number of samples.
func (l *Log) UnmarshalJSON(b []byte) error {
	var raw struct {
		Algo       string   `json:"algo"`
		InstanceID int      `json:"instance_id"`
		N          int      `json:"n"`
		Error      *float64 `json:"error"`
		TotalMS    float64  `json:"total_ms"`
		LogCount   int      `json:"log_count"`
		Log        []Sample `json:"log"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.LogCount != len(raw.Log) {
		return fmt.Errorf("log_count %d does not match %d samples", raw.LogCount, len(raw.Log))
	}
	*l = Log{
		Algo:       raw.Algo,
		InstanceID: raw.InstanceID,
		N:          raw.N,
		Error:      raw.Error,
		TotalMS:    raw.TotalMS,
		Samples:    raw.Log,
	}
	return nil
}
