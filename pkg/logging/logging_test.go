// pkg/logging/logging_test.go
// TEST TYPE: Unit Tests
// DEPENDENCIES: Environment variables, temp directories
// PURPOSE: Test log levels, log file location and operation timing

package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zerolog.Level
	}{
		{"default warn level", 0, zerolog.WarnLevel},
		{"info level", 1, zerolog.InfoLevel},
		{"debug level", 2, zerolog.DebugLevel},
		{"trace level", 3, zerolog.TraceLevel},
		{"high verbosity defaults to trace", 5, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			t.Setenv("DOTSYNC_STATE_DIR", "")
			t.Setenv("XDG_STATE_HOME", tempDir)

			SetupLogger(tt.verbosity)

			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())

			logPath := filepath.Join(tempDir, "dotsync", "dotsync.log")
			_, err := os.Stat(logPath)
			assert.NoError(t, err, "log file should be created")
		})
	}
}

func TestSetupLogger_ReopensLogFile(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	t.Setenv("DOTSYNC_STATE_DIR", first)
	SetupLogger(2)

	t.Setenv("DOTSYNC_STATE_DIR", second)
	SetupLogger(2)
	logger := GetLogger("test")
	logger.Debug().Msg("after reconfigure")

	data, err := os.ReadFile(filepath.Join(second, LogFileName))
	assert.NoError(t, err)
	assert.Contains(t, string(data), "after reconfigure")

	data, err = os.ReadFile(filepath.Join(first, LogFileName))
	assert.NoError(t, err)
	assert.NotContains(t, string(data), "after reconfigure")
}

func TestGetLogFilePath(t *testing.T) {
	t.Run("state dir override wins", func(t *testing.T) {
		t.Setenv("DOTSYNC_STATE_DIR", "/custom/dotsync-state")
		t.Setenv("XDG_STATE_HOME", "/custom/state")
		assert.Equal(t, "/custom/dotsync-state/dotsync.log", filepath.ToSlash(getLogFilePath()))
	})

	t.Run("with XDG_STATE_HOME", func(t *testing.T) {
		t.Setenv("DOTSYNC_STATE_DIR", "")
		t.Setenv("XDG_STATE_HOME", "/custom/state")
		assert.Equal(t, "/custom/state/dotsync/dotsync.log", filepath.ToSlash(getLogFilePath()))
	})

	t.Run("without XDG_STATE_HOME", func(t *testing.T) {
		t.Setenv("DOTSYNC_STATE_DIR", "")
		t.Setenv("XDG_STATE_HOME", "")
		got := filepath.ToSlash(getLogFilePath())
		assert.True(t, strings.HasSuffix(got, ".local/state/dotsync/dotsync.log"), got)
	})
}

func TestLogOperationStart(t *testing.T) {
	var buf bytes.Buffer
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = zerolog.New(&buf)

	done := LogOperationStart(GetLogger("test"), "apply")
	done()

	out := buf.String()
	assert.Contains(t, out, "Operation started")
	assert.Contains(t, out, "Operation completed")
	assert.Contains(t, out, `"component":"test"`)
}
