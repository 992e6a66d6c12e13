package bench

import (
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sys/cpu"
)

// Host describes the machine the timings were taken on.
type Host struct {
	GOOS      string
	GOARCH    string
	GoVersion string
	CPUs      int
	Features  []string
}

// DetectHost reads the runtime and CPU feature flags.
func DetectHost() Host {
	h := Host{
		GOOS:      runtime.GOOS,
		GOARCH:    runtime.GOARCH,
		GoVersion: runtime.Version(),
		CPUs:      runtime.NumCPU(),
	}
	switch runtime.GOARCH {
	case "amd64", "386":
		for _, f := range []struct {
			name string
			has  bool
		}{
			{"sse4.2", cpu.X86.HasSSE42},
			{"avx", cpu.X86.HasAVX},
			{"avx2", cpu.X86.HasAVX2},
			{"avx512f", cpu.X86.HasAVX512F},
		} {
			if f.has {
				h.Features = append(h.Features, f.name)
			}
		}
	case "arm64":
		// ASIMD is always present on ARMv8.
		if cpu.ARM64.HasASIMD {
			h.Features = append(h.Features, "asimd")
		}
		if cpu.ARM64.HasSVE {
			h.Features = append(h.Features, "sve")
		}
	}
	return h
}

// Fields renders h for a structured log entry.
func (h Host) Fields() []zap.Field {
	return []zap.Field{
		zap.String("goos", h.GOOS),
		zap.String("goarch", h.GOARCH),
		zap.String("go", h.GoVersion),
		zap.Int("cpus", h.CPUs),
		zap.Strings("cpu_features", h.Features),
	}
}
