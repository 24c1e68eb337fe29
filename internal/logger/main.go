// Package logger configures the global zerolog logger and the audit side
// channel.
package logger

import (
	"fmt"
	"io"
	"os"
	"path"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"
)

const componentAudit = "audit"

var (
	auditMu     sync.RWMutex
	auditLogger *zerolog.Logger
)

// LevelWriter splits output by level. Nil writers drop their levels.
type LevelWriter struct {
	io.Writer
	ErrorWriter io.Writer
	WarnWriter  io.Writer
	InfoWriter  io.Writer
	TraceWriter io.Writer
}

// WriteLevel implements zerolog.LevelWriter.
func (lw *LevelWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	var w io.Writer

	switch {
	case l == zerolog.Disabled:
		return 0, nil
	case l == zerolog.TraceLevel:
		w = lw.TraceWriter
	case l == zerolog.WarnLevel:
		w = lw.WarnWriter
	case l > zerolog.WarnLevel:
		w = lw.ErrorWriter
	default:
		w = lw.InfoWriter
	}

	if w == nil {
		return len(p), nil
	}

	return w.Write(p) //nolint:wrapcheck
}

// Write sends level-less events to the info writer.
func (lw *LevelWriter) Write(p []byte) (int, error) {
	return lw.WriteLevel(zerolog.InfoLevel, p)
}

// Init configures the global logger from cfg. With neither console nor file
// enabled all output is discarded.
func Init(cfg Log) error {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("loglevel %s is not supported", cfg.LogLevel))
	}

	if cfg.ServiceName == "" {
		return ErrServiceNameIsEmpty
	}

	if cfg.AppName == "" {
		return ErrAppNameIsEmpty
	}

	stack := level == zerolog.TraceLevel
	if stack {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack //nolint:reassign
	}

	zerolog.SetGlobalLevel(level)
	zerolog.ErrorHandler = ErrorHandler

	var writers []io.Writer

	if cfg.Console.Enabled {
		writers = append(writers, NewConsoleWriter(cfg.Console))
	}

	var auditFile io.Writer

	if cfg.File.Enabled {
		if err := os.MkdirAll(cfg.File.Path, 0o750); err != nil { //nolint:mnd
			return errors.Wrap(err, "can't create log directory "+cfg.File.Path)
		}

		writers = append(writers, &LevelWriter{
			ErrorWriter: rolling(cfg.File.Path, cfg.File.Error),
			WarnWriter:  rolling(cfg.File.Path, cfg.File.Warn),
			InfoWriter:  rolling(cfg.File.Path, cfg.File.Info),
			TraceWriter: rolling(cfg.File.Path, cfg.File.Trace),
		})

		auditFile = rolling(cfg.File.Path, cfg.File.Audit)
	}

	ctx := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Hook(NewPrometheusHook(cfg.ServiceName)).
		With().Timestamp().Str("app", cfg.AppName)

	switch {
	case cfg.ReportCaller && stack:
		ctx = ctx.Stack()
	case cfg.ReportCaller:
		ctx = ctx.Caller()
	}

	log.Logger = ctx.Logger()

	a := log.Logger.With().Str("component", componentAudit).Logger()
	if auditFile != nil {
		a = a.Output(zerolog.MultiLevelWriter(zerolog.MultiLevelWriter(writers...), auditFile))
	}

	auditMu.Lock()
	auditLogger = &a
	auditMu.Unlock()

	return nil
}

// Audit returns the side channel for audit storage problems. Before Init it
// derives from the current global logger.
func Audit() *zerolog.Logger {
	auditMu.RLock()
	defer auditMu.RUnlock()

	if auditLogger != nil {
		return auditLogger
	}

	l := log.Logger.With().Str("component", componentAudit).Logger()

	return &l
}

// SetAudit replaces the audit side channel, mainly for tests.
func SetAudit(l zerolog.Logger) {
	auditMu.Lock()
	auditLogger = &l
	auditMu.Unlock()
}

// rolling returns a lumberjack writer, or nil when f has no name.
func rolling(dir string, f RollingFile) io.Writer {
	if f.Name == "" {
		return nil
	}

	return &lumberjack.Logger{
		Filename:   path.Join(dir, f.Name),
		MaxSize:    f.MaxSize,
		MaxAge:     f.MaxAge,
		MaxBackups: f.MaxBackups,
		LocalTime:  false,
		Compress:   f.Compress,
	}
}

// NewConsoleWriter returns a level-split writer on stdout/stderr. Info and
// debug go to stdout, everything else to stderr.
func NewConsoleWriter(cfg Console) io.Writer {
	wrap := func(out io.Writer) io.Writer {
		if !cfg.UseConsoleWriter {
			return out
		}

		return zerolog.ConsoleWriter{Out: out, NoColor: cfg.NoColor, TimeFormat: zerolog.TimeFieldFormat}
	}

	return &LevelWriter{
		ErrorWriter: wrap(os.Stderr),
		WarnWriter:  wrap(os.Stderr),
		InfoWriter:  wrap(os.Stdout),
		TraceWriter: wrap(os.Stderr),
	}
}
