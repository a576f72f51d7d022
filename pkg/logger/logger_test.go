package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/rrg/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       *config.Config
		wantLevel zerolog.Level
	}{
		{
			name:      "debug level",
			cfg:       &config.Config{Env: "development", LogLevel: "debug", LogFormat: "json"},
			wantLevel: zerolog.DebugLevel,
		},
		{
			name:      "info level",
			cfg:       &config.Config{Env: "production", LogLevel: "info", LogFormat: "json"},
			wantLevel: zerolog.InfoLevel,
		},
		{
			name:      "warn level",
			cfg:       &config.Config{Env: "staging", LogLevel: "warn", LogFormat: "console"},
			wantLevel: zerolog.WarnLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := New(tt.cfg)
			require.NotNil(t, log)
			assert.Equal(t, tt.wantLevel, log.Level())
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{" DEBUG ", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"invalid", zerolog.InfoLevel}, // Default
		{"", zerolog.InfoLevel},        // Default
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.input))
		})
	}
}

func TestLoggerMethods(t *testing.T) {
	var buf bytes.Buffer
	logger := &Logger{zlog: zerolog.New(&buf).Level(zerolog.DebugLevel).With().Timestamp().Logger()}

	tests := []struct {
		name      string
		logFunc   func()
		wantMsg   string
		wantLevel string
	}{
		{"debug", func() { logger.Debug("debug message") }, "debug message", "debug"},
		{"info", func() { logger.Info("info message") }, "info message", "info"},
		{"warn", func() { logger.Warn("warn message") }, "warn message", "warn"},
		{"error", func() { logger.Error("error message") }, "error message", "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.logFunc()

			var logEntry map[string]interface{}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
			assert.Equal(t, tt.wantLevel, logEntry["level"])
			assert.Equal(t, tt.wantMsg, logEntry["message"])
		})
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := &Logger{zlog: zerolog.New(&buf)}

	logger.WithField("run_id", "abc").
		WithFields(map[string]interface{}{
			"symbol": "INFY.NS",
			"ratio":  101.5,
		}).
		Info("instrument computed")

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))

	assert.Equal(t, "abc", logEntry["run_id"])
	assert.Equal(t, "INFY.NS", logEntry["symbol"])
	assert.Equal(t, 101.5, logEntry["ratio"])
	assert.Equal(t, "instrument computed", logEntry["message"])
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := &Logger{zlog: zerolog.New(&buf)}

	logger.WithError(errors.New("benchmark unavailable")).Error("run aborted")

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))

	assert.Equal(t, "benchmark unavailable", logEntry["error"])
	assert.Equal(t, "run aborted", logEntry["message"])
}

func TestLogFormats(t *testing.T) {
	for _, format := range []string{"json", "console", "pretty"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			cfg := &config.Config{Env: "development", LogLevel: "info", LogFormat: format}

			NewWithWriter(cfg, &buf).Info("test message")

			assert.True(t, strings.Contains(buf.String(), "test message"), "got: %s", buf.String())
		})
	}
}

func TestNop(t *testing.T) {
	// Must not panic and must not write anywhere
	Nop().WithField("k", "v").Info("discarded")
}

func TestWithFields_SortedKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := &Logger{zlog: zerolog.New(&buf)}

	logger.WithFields(Fields{"success": 2, "excluded": 1, "total": 3}).Info("done")

	assert.Contains(t, buf.String(), `"excluded":1,"success":2,"total":3`)
}

func TestWithRunAndSymbol(t *testing.T) {
	var buf bytes.Buffer
	logger := &Logger{zlog: zerolog.New(&buf)}

	logger.WithRun("run-7").WithSymbol("LTIM.NS").Warn("Instrument excluded")

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "run-7", logEntry["run_id"])
	assert.Equal(t, "LTIM.NS", logEntry["symbol"])
}

func TestLevelIsPerLogger(t *testing.T) {
	var quiet, loud bytes.Buffer
	NewWithWriter(&config.Config{LogLevel: "warn", LogFormat: "json"}, &quiet).Info("hidden")
	NewWithWriter(&config.Config{LogLevel: "debug", LogFormat: "json"}, &loud).Debug("shown")

	assert.Empty(t, quiet.String())
	assert.Contains(t, loud.String(), "shown")
}
