package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RunLogger writes to stdout and to a log file dedicated to one run.
type RunLogger struct {
	*zap.Logger
	file *os.File
	path string
}

// NewRunLogger creates logs/{component}/{component}_{timestamp}.log under
// dir and returns a logger that tees to it and to stdout.
func NewRunLogger(dir, component string, debug bool) (*RunLogger, error) {
	// Sanitize component name for file system
	sanitized := strings.ReplaceAll(strings.ToLower(component), " ", "_")

	componentDir := filepath.Join(dir, sanitized)
	if err := os.MkdirAll(componentDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logPath := filepath.Join(componentDir, fmt.Sprintf("%s_%s.log", sanitized, timestamp))

	file, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.Lock(os.Stdout), level),
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(file), level),
	)

	return &RunLogger{
		Logger: zap.New(core).Named(sanitized),
		file:   file,
		path:   logPath,
	}, nil
}

// Path is the log file of this run.
func (l *RunLogger) Path() string {
	return l.path
}

func (l *RunLogger) Close() error {
	_ = l.Logger.Sync()
	return l.file.Close()
}
