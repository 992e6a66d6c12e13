package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"

	"github.com/stringptr/daa-sorting-benchmark/internal/instance"
	"github.com/stringptr/daa-sorting-benchmark/internal/sorting"
)

// Measurer takes one plain measurement of algo over the instance file at
// path.
type Measurer interface {
	Measure(ctx context.Context, path string, algo sorting.Algo) (Result, error)
}

// InProcess measures in the calling process.
//
// The most recently loaded instance is kept so that consecutive
// measurements of the same file (every algorithm, every repeat) decode it
// once. An InProcess is used by one goroutine.
type InProcess struct {
	path string
	inst *instance.Instance
}

func (m *InProcess) Measure(ctx context.Context, path string, algo sorting.Algo) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if m.inst == nil || m.path != path {
		inst, err := instance.Load(path)
		if err != nil {
			return Result{}, err
		}
		m.path, m.inst = path, inst
	}
	return Run(m.inst, algo)
}

// ChildError is a measurement child that exited with a non-zero status.
type ChildError struct {
	ExitCode int
	Stderr   string
}

func (e *ChildError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("measurement process exited with status %d", e.ExitCode)
	}
	return fmt.Sprintf("measurement process exited with status %d: %s", e.ExitCode, msg)
}

// Subprocess measures in a fresh child process per call:
//
//	<Binary> run --instance <path> --algo <letter>
//
// The child starts with an empty environment and its own process group;
// its stdout must be exactly one result line.
type Subprocess struct {
	// Binary is the sortbench executable to spawn.
	Binary string

	// WorkingDir is the directory the child runs in. Empty means the
	// current directory.
	WorkingDir string
}

func (s *Subprocess) Measure(ctx context.Context, path string, algo sorting.Algo) (Result, error) {
	if s.Binary == "" {
		return Result{}, errors.New("subprocess: binary is empty")
	}
	if algo.Letter() == "" {
		return Result{}, &sorting.UnknownAlgoError{Value: algo.String(), Expected: []string{"A", "B", "C"}}
	}

	cmd := exec.CommandContext(ctx, s.Binary, "run", "--instance", path, "--algo", algo.Letter())
	cmd.Dir = s.WorkingDir
	// No host variables reach the child.
	cmd.Env = []string{}
	// Own process group so cancellation takes down anything the child spawned.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("start measurement process: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var err error
	select {
	case <-ctx.Done():
		if cmd.Process != nil {
			_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		}
		<-done
		return Result{}, fmt.Errorf("measurement cancelled: %w", ctx.Err())
	case err = <-done:
	}

	// CommandContext may have killed the child before the select saw ctx.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{}, fmt.Errorf("measurement cancelled: %w", ctxErr)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{}, &ChildError{ExitCode: exitErr.ExitCode(), Stderr: stderr.String()}
		}
		return Result{}, fmt.Errorf("run measurement process: %w", err)
	}

	r, err := ParseResult(strings.TrimSpace(stdout.String()))
	if err != nil {
		return Result{}, fmt.Errorf("measurement process output: %w", err)
	}
	return r, nil
}
