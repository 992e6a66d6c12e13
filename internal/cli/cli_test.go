package cli_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	icl "github.com/stringptr/daa-sorting-benchmark/internal/cli"
	"github.com/stringptr/daa-sorting-benchmark/internal/store"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var stdout, stderr bytes.Buffer
	res, err := icl.RunWithIO(context.Background(), args, &stdout, &stderr)
	if err != nil {
		t.Fatalf("%s: %v\nstderr:\n%s", args[0], err, stderr.String())
	}
	if res.ExitCode != icl.ExitSuccess {
		t.Fatalf("%s: exit %d", args[0], res.ExitCode)
	}
	return stdout.String()
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func TestPipeline_GenerateBenchVarianceInstrument(t *testing.T) {
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	resultsDir := filepath.Join(root, "results")
	logDir := filepath.Join(resultsDir, "instrument_logs")

	run(t, "generate", "--out-dir", dataDir, "--sizes", "50,200", "--errors", "0.05,0.1")

	// bench: 4 instances x 3 algorithms.
	benchOut := filepath.Join(resultsDir, "run_results.csv")
	stdout := run(t, "bench", "--data-dir", dataDir, "--out", benchOut)
	if got := strings.Count(stdout, "\n"); got != 12 {
		t.Fatalf("expected 12 result lines, got %d:\n%s", got, stdout)
	}
	rows := readCSV(t, benchOut)
	if strings.Join(rows[0], ",") != strings.Join(store.RunResultsHeader, ",") {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if len(rows) != 13 {
		t.Fatalf("expected 12 rows plus header, got %d", len(rows))
	}
	for _, row := range rows[1:] {
		if row[5] != "0.0" {
			t.Fatalf("expected gap 0.0, got row %v", row)
		}
	}

	// variance: 2 instances x 2 algorithms x 3 repeats.
	varOut := filepath.Join(resultsDir, "variance_runs.csv")
	run(t, "variance", "--data-dir", dataDir, "--out", varOut,
		"--instances", "sorting_near_sorted_1.json,sorting_near_sorted_4.json", "--repeats", "3", "--algos", "A,C")
	rows = readCSV(t, varOut)
	if len(rows) != 13 {
		t.Fatalf("expected 12 variance rows plus header, got %d", len(rows))
	}
	if got := rows[3]; got[0] != "sorting_near_sorted_1.json" || got[3] != "A" || got[4] != "3" {
		t.Fatalf("unexpected third run row: %v", got)
	}

	// instrument: 4 instances x 2 algorithms.
	run(t, "instrument", "--data-dir", dataDir, "--out-dir", logDir, "--algos", "insertion,merge", "--target-logs", "10")
	entries, err := os.ReadDir(logDir)
	if err != nil {
		t.Fatalf("read log dir: %v", err)
	}
	if len(entries) != 8 {
		t.Fatalf("expected 8 instrument logs, got %d", len(entries))
	}
	l, err := store.ReadInstrumentLog(filepath.Join(logDir, "insertion_inst4_n200.json"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if l.N != 200 || l.InstanceID != 4 || l.Error == nil || *l.Error != 0.1 {
		t.Fatalf("unexpected log header: %+v", l)
	}
}

func TestRun_MatchesAcrossRepeatedInvocations(t *testing.T) {
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	run(t, "generate", "--out-dir", dataDir, "--sizes", "100", "--errors", "0.1")

	p := filepath.Join(dataDir, "sorting_near_sorted_1.json")
	first, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read instance: %v", err)
	}
	run(t, "generate", "--out-dir", dataDir, "--sizes", "100", "--errors", "0.1")
	second, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read instance: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("generation is not deterministic")
	}

	for _, algo := range []string{"A", "B", "C"} {
		line := strings.TrimSpace(run(t, "run", "--instance", p, "--algo", algo))
		if !strings.HasPrefix(line, "Project=sorting  Algo="+algo+"  Time_ms=") || !strings.HasSuffix(line, "  Gap=0.0000") {
			t.Fatalf("unexpected result line: %q", line)
		}
	}
}

func TestRun_ExitCodes(t *testing.T) {
	cases := []struct {
		args []string
		want int
	}{
		{[]string{"run", "--instance", "x.json", "--algo", "Z"}, icl.ExitInvalidInvocation},
		{[]string{"instrument", "--data-dir", filepath.Join(t.TempDir(), "nope")}, icl.ExitConfigError},
		{[]string{"bench", "--config", filepath.Join(t.TempDir(), "nope.toml")}, icl.ExitConfigError},
	}
	for _, tc := range cases {
		var stdout, stderr bytes.Buffer
		res, err := icl.RunWithIO(context.Background(), tc.args, &stdout, &stderr)
		if err == nil {
			t.Fatalf("%v: expected error", tc.args)
		}
		if res.ExitCode != tc.want {
			t.Fatalf("%v: exit %d, want %d (err=%v)", tc.args, res.ExitCode, tc.want, err)
		}
	}
}
