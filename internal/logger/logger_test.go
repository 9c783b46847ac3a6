package logger

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, fn func()) (stdout string, stderr string) {
	origOut, origErr := os.Stdout, os.Stderr
	defer func() { os.Stdout, os.Stderr = origOut, origErr }()

	rOut, wOut, err := os.Pipe()
	require.NoError(t, err, "failed to create stdout pipe")
	rErr, wErr, err := os.Pipe()
	require.NoError(t, err, "failed to create stderr pipe")

	os.Stdout, os.Stderr = wOut, wErr

	fn()

	err = wOut.Close()
	require.NoError(t, err, "failed to close stdout pipe")
	err = wErr.Close()
	require.NoError(t, err, "failed to close stderr pipe")

	outBytes, err := io.ReadAll(rOut)
	require.NoError(t, err, "failed to read stdout pipe")
	errBytes, err := io.ReadAll(rErr)
	require.NoError(t, err, "failed to read stderr pipe")

	return string(outBytes), string(errBytes)
}

func TestLogger_parseLevel(t *testing.T) {
	t.Run("valid value", func(t *testing.T) {
		tests := []struct {
			name     string
			input    string
			expected slog.Level
		}{
			{"Debug level", "DEBUG", slog.LevelDebug},
			{"Debug level lowercase", "debug", slog.LevelDebug},
			{"Info level", "INFO", slog.LevelInfo},
			{"Info level lowercase", "info", slog.LevelInfo},
			{"Warn level", "WARN", slog.LevelWarn},
			{"Warn level lowercase", "warn", slog.LevelWarn},
			{"Error level", "ERROR", slog.LevelError},
			{"Error level lowercase", "error", slog.LevelError},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := parseLevel(tt.input)

				require.NoError(t, err, "parseLevel(%q) should not return an error", tt.input)
				require.Equal(t, tt.expected, got, "parseLevel(%q) should return %v", tt.input, tt.expected)
			})
		}
	})

	t.Run("not valid", func(t *testing.T) {
		_, err := parseLevel("verbose")
		require.Error(t, err, "unknown level should return an error")
	})
}

func TestLogger_New(t *testing.T) {
	t.Run("prod writes json", func(t *testing.T) {
		// Logger has to be created inside capture, the handler binds
		// os.Stdout at construction time
		stdout, stderr := capture(t, func() {
			l, err := New(EnvProduction, LevelInfo)
			require.NoError(t, err)

			l.Info("served asset", "course_id", 2, "module_id", 9)
		})

		require.Empty(t, stderr, "nothing should be written to stderr")

		var record map[string]any
		err := json.Unmarshal([]byte(stdout), &record)
		require.NoError(t, err, "prod logger should emit parseable JSON")
		require.Equal(t, "served asset", record["msg"])
		require.EqualValues(t, 2, record["course_id"])
	})

	t.Run("dev writes text", func(t *testing.T) {
		stdout, _ := capture(t, func() {
			l, err := New(EnvDev, LevelDebug)
			require.NoError(t, err)

			l.Debug("token issued", "user_id", 7)
		})

		require.Contains(t, stdout, "token issued")
		require.Contains(t, stdout, "user_id=7")
	})

	t.Run("unknown environment", func(t *testing.T) {
		_, err := New("staging", LevelInfo)
		require.Error(t, err)
	})

	t.Run("level filtering", func(t *testing.T) {
		stdout, _ := capture(t, func() {
			l, err := New(EnvDev, LevelWarn)
			require.NoError(t, err)

			l.Info("should be dropped")
			l.Warn("should be written")
		})

		require.NotContains(t, stdout, "should be dropped")
		require.Contains(t, stdout, "should be written")
	})
}
