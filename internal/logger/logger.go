package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"roadwatch/internal/config"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log files, one per level.
const (
	InfoFile    = "info.log"
	WarningFile = "warning.log"
	ErrorFile   = "error.log"
)

// Logger provides leveled logging (info/warning/error) to files and stdout/stderr.
type Logger struct {
	base   *zap.Logger
	sugar  *zap.SugaredLogger
	logDir string
	mu     sync.Mutex
}

// NewLogger creates a Logger and ensures the log directory exists.
func NewLogger(cfg *config.Config) (*Logger, error) {
	if err := os.MkdirAll(cfg.LogDirectory, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	minLevel := zapcore.InfoLevel
	if err := minLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		minLevel = zapcore.InfoLevel
	}

	l := &Logger{logDir: cfg.LogDirectory}
	core, err := l.buildCore(minLevel)
	if err != nil {
		return nil, err
	}

	l.base = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	l.sugar = l.base.Sugar()
	return l, nil
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	base := zap.NewNop()
	return &Logger{base: base, sugar: base.Sugar()}
}

// buildCore tees a console core with one file core per level.
func (l *Logger) buildCore(minLevel zapcore.Level) (zapcore.Core, error) {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	console := zapcore.NewConsoleEncoder(encCfg)
	fileEnc := zapcore.NewJSONEncoder(encCfg)

	// Each file receives exactly one level; error.log also takes anything above error.
	fileLevel := func(want zapcore.Level) zapcore.LevelEnabler {
		return zap.LevelEnablerFunc(func(got zapcore.Level) bool {
			if got < minLevel {
				return false
			}
			if want == zapcore.ErrorLevel {
				return got >= zapcore.ErrorLevel
			}
			return got == want
		})
	}

	cores := []zapcore.Core{
		zapcore.NewCore(console, zapcore.Lock(os.Stdout), zap.LevelEnablerFunc(func(got zapcore.Level) bool {
			return got >= minLevel && got < zapcore.ErrorLevel
		})),
		zapcore.NewCore(console, zapcore.Lock(os.Stderr), zap.LevelEnablerFunc(func(got zapcore.Level) bool {
			return got >= zapcore.ErrorLevel
		})),
	}

	for file, lvl := range map[string]zapcore.Level{
		InfoFile:    zapcore.InfoLevel,
		WarningFile: zapcore.WarnLevel,
		ErrorFile:   zapcore.ErrorLevel,
	} {
		f, err := l.openLogFile(filepath.Join(l.logDir, file))
		if err != nil {
			return nil, err
		}
		cores = append(cores, zapcore.NewCore(fileEnc, zapcore.AddSync(f), fileLevel(lvl)))
	}

	return zapcore.NewTee(cores...), nil
}

// openLogFile opens or creates a log file for appending.
func (l *Logger) openLogFile(filename string) (*os.File, error) {
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", filename, err)
	}
	return file, nil
}

// Info writes a formatted info-level log entry.
func (l *Logger) Info(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

// Warning writes a formatted warning-level log entry.
func (l *Logger) Warning(format string, v ...interface{}) {
	l.sugar.Warnf(format, v...)
}

// Error writes a formatted error-level log entry.
func (l *Logger) Error(format string, v ...interface{}) {
	l.sugar.Errorf(format, v...)
}

// Zap exposes the underlying zap logger for structured fields.
func (l *Logger) Zap() *zap.Logger {
	return l.base
}

// Dir returns the directory the log files live in.
func (l *Logger) Dir() string {
	return l.logDir
}

// Sync flushes buffered entries.
func (l *Logger) Sync() {
	_ = l.base.Sync()
}

// CleanLogs truncates the specified log file.
func (l *Logger) CleanLogs(fileName string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logDir == "" {
		return nil
	}
	filePath := filepath.Join(l.logDir, filepath.Base(fileName))
	if err := os.Truncate(filePath, 0); err != nil {
		return fmt.Errorf("truncate %s: %w", fileName, err)
	}

	l.Info("Log file %s has been cleared", fileName)
	return nil
}
