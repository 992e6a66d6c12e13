package logutil

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLogConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LogConfig
		wantErr bool
	}{
		{name: "default", cfg: DefaultLogConfig()},
		{name: "zero value", cfg: LogConfig{}},
		{name: "json debug", cfg: LogConfig{Level: "DEBUG", Format: "json"}},
		{name: "bad level", cfg: LogConfig{Level: "chatty"}, wantErr: true},
		{name: "bad format", cfg: LogConfig{Format: "xml"}, wantErr: true},
		{name: "negative rotation", cfg: LogConfig{MaxDays: -1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	_, err := New(LogConfig{Format: "xml"})
	require.Error(t, err)
}

func TestNewWithWriter_JSONFieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(LogConfig{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("measured", zap.String("algo", "quick"), zap.Int("n", 1000))
	require.NoError(t, logger.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1, "debug must be filtered at info level")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "measured", entry["msg"])
	require.Equal(t, "quick", entry["algo"])
	require.Equal(t, float64(1000), entry["n"])
}

func TestNewWithWriter_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(DefaultLogConfig(), &buf)
	require.NoError(t, err)
	logger.Warn("slow instance", zap.String("instance", "sorting_near_sorted_15.json"))
	_ = logger.Sync()

	out := buf.String()
	require.Contains(t, out, "WARN")
	require.Contains(t, out, "slow instance")
	require.Contains(t, out, "sorting_near_sorted_15.json")
}

func TestNewWithWriter_FileSink(t *testing.T) {
	p := filepath.Join(t.TempDir(), "logs", "sortbench.log")
	var buf bytes.Buffer
	logger, err := NewWithWriter(LogConfig{Format: "json", Filename: p, MaxSize: 1}, &buf)
	require.NoError(t, err)
	logger.Info("to both sinks")
	_ = logger.Sync()

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	require.Contains(t, string(data), "to both sinks")
	require.Contains(t, buf.String(), "to both sinks")
}
