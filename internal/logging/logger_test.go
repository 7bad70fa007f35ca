package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"INFO", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"warn", zapcore.WarnLevel, false},
		{" error ", zapcore.ErrorLevel, false},
		{"dpanic", zapcore.DPanicLevel, false},
		{"fatal", zapcore.FatalLevel, false},
		{"warning", zapcore.InfoLevel, true},
		{"verbose", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_ConsoleIsJSONAndLeveled(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Console: &buf})
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept", zap.Int64("project_id", 7))
	require.NoError(t, logger.Sync())

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "warn", entry["level"])
	assert.EqualValues(t, 7, entry["project_id"])
	assert.Contains(t, entry, "ts")
}

func TestNew_DebugLowersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "error", Debug: true, Console: &buf})
	require.NoError(t, err)

	logger.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestNew_WritesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "shelf.log")
	logger, err := New(Options{File: file, Console: &bytes.Buffer{}})
	require.NoError(t, err)

	logger.Info("to file")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"to file"`)
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)
}
