// Package logcfg configures the process-wide logrus logger.
package logcfg

import (
	"fmt"
	"io"
	"path"
	"runtime"

	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/grounding/pkg/types"
)

// Rotation limits for the optional log file.
const (
	maxSizeMB  = 50
	maxBackups = 3
	maxAgeDays = 30
)

// Configure sets the level and formatter of the standard logrus logger and
// directs it to stderr, plus cfg.File with size-based rotation when set.
// An empty level means info. The returned closer releases the log file.
func Configure(cfg types.LogConfig, stderr io.Writer) (io.Closer, error) {
	level := logrus.InfoLevel
	if cfg.Level != "" {
		l, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("parsing log level: %w", err)
		}
		level = l
	}
	logrus.SetLevel(level)

	logrus.SetReportCaller(level >= logrus.DebugLevel)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: level < logrus.DebugLevel,
		CallerPrettyfier: func(f *runtime.Frame) (function string, file string) {
			_, filename := path.Split(f.File)
			return "", fmt.Sprintf("%s:%d", filename, f.Line)
		},
	})

	if cfg.File == "" {
		logrus.SetOutput(stderr)
		return nopCloser{}, nil
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	}
	logrus.SetOutput(io.MultiWriter(stderr, rotator))
	return rotator, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
