package runner

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/stringptr/daa-sorting-benchmark/internal/sorting"
)

var ErrMalformedResult = errors.New("malformed result line")

// Result is the record of one plain measurement.
type Result struct {
	Project string
	Algo    sorting.Algo
	TimeMS  float64
	Gap     float64
}

// resultKeys are the tokens of a result line, in order.
var resultKeys = [...]string{"Project", "Algo", "Time_ms", "Gap"}

// String renders the result line:
//
//	Project=sorting  Algo=A  Time_ms=12.34  Gap=0.0000
func (r Result) String() string {
	return fmt.Sprintf("Project=%s  Algo=%s  Time_ms=%.2f  Gap=%.4f", r.Project, r.Algo.Letter(), r.TimeMS, r.Gap)
}

// Rounded returns r with TimeMS and Gap carried at the precision of the
// result line, which is what a parser of String sees.
func (r Result) Rounded() Result {
	r.TimeMS = roundTo(r.TimeMS, 2)
	r.Gap = roundTo(r.Gap, 4)
	return r
}

func roundTo(v float64, prec int) float64 {
	out, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', prec, 64), 64)
	if err != nil {
		return v
	}
	return out
}

// ParseResult reads a line produced by Result.String. Tokens are split on
// whitespace and then on the first '='; the four keys must appear in order.
func ParseResult(line string) (Result, error) {
	fields := strings.Fields(line)
	if len(fields) != len(resultKeys) {
		return Result{}, fmt.Errorf("%w: want %d tokens, got %d in %q", ErrMalformedResult, len(resultKeys), len(fields), line)
	}
	values := make([]string, len(fields))
	for i, f := range fields {
		key, value, ok := strings.Cut(f, "=")
		if !ok || key != resultKeys[i] {
			return Result{}, fmt.Errorf("%w: token %d is %q, want %s=<value>", ErrMalformedResult, i+1, f, resultKeys[i])
		}
		values[i] = value
	}

	algo, err := sorting.ParseLetter(values[1])
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformedResult, err)
	}
	timeMS, err := strconv.ParseFloat(values[2], 64)
	if err != nil {
		return Result{}, fmt.Errorf("%w: Time_ms: %v", ErrMalformedResult, err)
	}
	gap, err := strconv.ParseFloat(values[3], 64)
	if err != nil {
		return Result{}, fmt.Errorf("%w: Gap: %v", ErrMalformedResult, err)
	}
	return Result{Project: values[0], Algo: algo, TimeMS: timeMS, Gap: gap}, nil
}
