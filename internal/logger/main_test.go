package logger_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newstrnt/admin-authz/internal/logger"
)

func TestInitValidation(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     logger.Log
		wantErr error
	}{
		{
			name:    "missing service name",
			cfg:     logger.Log{LogLevel: "info", AppName: "test"},
			wantErr: logger.ErrServiceNameIsEmpty,
		},
		{
			name:    "missing app name",
			cfg:     logger.Log{LogLevel: "info", ServiceName: "test"},
			wantErr: logger.ErrAppNameIsEmpty,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, logger.Init(tc.cfg), tc.wantErr)
		})
	}

	err := logger.Init(logger.Log{LogLevel: "loud", AppName: "test", ServiceName: "test"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loud")
}

func TestLevelWriter(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var errBuf, warnBuf, infoBuf, traceBuf bytes.Buffer

	lw := &logger.LevelWriter{
		ErrorWriter: &errBuf,
		WarnWriter:  &warnBuf,
		InfoWriter:  &infoBuf,
		TraceWriter: &traceBuf,
	}

	l := zerolog.New(lw).Level(zerolog.TraceLevel)
	l.Trace().Msg("t")
	l.Debug().Msg("d")
	l.Info().Msg("i")
	l.Warn().Msg("w")
	l.Error().Msg("e")

	assert.Equal(t, 1, strings.Count(traceBuf.String(), "\n"))
	assert.Equal(t, 2, strings.Count(infoBuf.String(), "\n"), "debug and info")
	assert.Equal(t, 1, strings.Count(warnBuf.String(), "\n"))
	assert.Equal(t, 1, strings.Count(errBuf.String(), "\n"))

	// nil writers drop silently
	n, err := (&logger.LevelWriter{}).WriteLevel(zerolog.ErrorLevel, []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFileAndAuditOutput(t *testing.T) {
	dir := t.TempDir()

	err := logger.Init(logger.Log{
		LogLevel:    "info",
		AppName:     "admin-authz",
		ServiceName: "test",
		File: logger.LogFile{
			Enabled: true,
			Path:    dir,
			Info:    logger.RollingFile{Name: "info.log"},
			Warn:    logger.RollingFile{Name: "warn.log"},
			Error:   logger.RollingFile{Name: "error.log"},
			Audit:   logger.RollingFile{Name: "audit.log"},
		},
	})
	require.NoError(t, err)

	log.Info().Msg("hello")
	logger.Audit().Warn().Str("entry_id", "abc").Msg("audit store unavailable")

	info, err := os.ReadFile(filepath.Join(dir, "info.log"))
	require.NoError(t, err)
	assert.Contains(t, string(info), "hello")

	warn, err := os.ReadFile(filepath.Join(dir, "warn.log"))
	require.NoError(t, err)
	assert.Contains(t, string(warn), "audit store unavailable")

	audit, err := os.ReadFile(filepath.Join(dir, "audit.log"))
	require.NoError(t, err)

	var line struct {
		Level     string `json:"level"`
		Component string `json:"component"`
		App       string `json:"app"`
		EntryID   string `json:"entry_id"`
		Message   string `json:"message"`
	}

	require.NoError(t, json.Unmarshal(bytes.TrimSpace(audit), &line))
	assert.Equal(t, "warn", line.Level)
	assert.Equal(t, "audit", line.Component)
	assert.Equal(t, "admin-authz", line.App)
	assert.Equal(t, "abc", line.EntryID)
	assert.NotContains(t, string(audit), "hello")
}

func TestSetAudit(t *testing.T) {
	var buf bytes.Buffer

	logger.SetAudit(zerolog.New(&buf))
	logger.Audit().Warn().Msg("captured")

	assert.Contains(t, buf.String(), "captured")
}
