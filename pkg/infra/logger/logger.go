package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const logDir = "logs"

// NewLogger builds the JSON logger used by every component. Entries go to an asynchronous
// file writer under logs/<name>.log and are echoed to the console. An empty name logs to
// stderr only.
func NewLogger(name string) *logrus.Logger {
	logger := logrus.New()

	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "time",
			logrus.FieldKeyMsg:  "msg",
		},
	})
	logger.SetLevel(levelFromEnv())

	if name == "" {
		logger.SetOutput(os.Stderr)
		return logger
	}

	writer, err := newFileWriter(name)
	if err != nil {
		logger.SetOutput(os.Stderr)
		logger.WithError(err).Warn("file logging disabled")
		return logger
	}
	logger.SetOutput(writer)
	logger.AddHook(NewConsoleHook(os.Stdout))
	return logger
}

func newFileWriter(name string) (io.Writer, error) {
	logFile := filepath.Join(logDir, filepath.Base(name)+".log")
	if err := os.MkdirAll(logDir, 0750); err != nil {
		return nil, err
	}
	return NewAsyncFileWriter(logFile, 32*1024)
}

func levelFromEnv() logrus.Level {
	level, err := logrus.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL")))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
