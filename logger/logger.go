package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	InfoLogger  *logrus.Logger
	WarnLogger  *logrus.Logger
	ErrorLogger *logrus.Logger
)

// InitLoggers sets up the package-level loggers. Each level writes to its own
// rotated file under LOG_DIR (default "logs") and mirrors to stdout/stderr.
func InitLoggers() {
	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		logrus.Fatalf("failed to create log directory %s: %v", logDir, err)
	}

	InfoLogger = newLogger(filepath.Join(logDir, "info.log"), logrus.InfoLevel, os.Stdout)
	WarnLogger = newLogger(filepath.Join(logDir, "warn.log"), logrus.WarnLevel, os.Stdout)
	ErrorLogger = newLogger(filepath.Join(logDir, "error.log"), logrus.ErrorLevel, os.Stderr)
}

func newLogger(filename string, level logrus.Level, console io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	l.SetOutput(io.MultiWriter(console, &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}))
	return l
}
