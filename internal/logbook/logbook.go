package logbook

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Level represents the severity of a log entry.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Fields are structured key/value pairs attached to an entry.
type Fields = logrus.Fields

// Logbook persists admin activity to a text file so the TUI can show
// a tail of it and operators can inspect it afterwards.
type Logbook struct {
	path   string
	mu     sync.Mutex
	file   *os.File
	logger *logrus.Logger
}

// New creates a logbook that appends to the provided path. level is one of
// debug, info, warn or error; empty means info.
func New(path, level string) (*Logbook, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logbook: ensure log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logbook: open %s: %w", path, err)
	}
	lvl := logrus.InfoLevel
	if strings.TrimSpace(level) != "" {
		parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("logbook: %w", err)
		}
		lvl = parsed
	}
	logger := logrus.New()
	logger.SetOutput(file)
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	return &Logbook{path: path, file: file, logger: logger}, nil
}

// Discard returns a logbook that drops every entry.
func Discard() *Logbook {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &Logbook{logger: logger}
}

// Path returns the file backing this logbook.
func (l *Logbook) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Close releases the file handle.
func (l *Logbook) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.logger.SetOutput(io.Discard)
	return err
}

// Append writes a single entry to the logbook.
func (l *Logbook) Append(level Level, message string, fields Fields) {
	if l == nil || l.logger == nil {
		return
	}
	entry := l.logger.WithFields(fields)
	message = strings.TrimSpace(message)
	switch level {
	case LevelDebug:
		entry.Debug(message)
	case LevelWarn:
		entry.Warn(message)
	case LevelError:
		entry.Error(message)
	default:
		entry.Info(message)
	}
}

// Tail returns up to maxLines of the most recent log entries along with the
// total number of lines in the file.
func (l *Logbook) Tail(maxLines int) ([]string, int) {
	if l == nil || l.path == "" || maxLines <= 0 {
		return nil, 0
	}
	file, err := os.Open(l.path)
	if err != nil {
		return nil, 0
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	total := len(lines)
	if total == 0 {
		return nil, 0
	}
	if total > maxLines {
		lines = lines[total-maxLines:]
	}
	return lines, total
}

// Debug appends a debug entry.
func (l *Logbook) Debug(format string, args ...any) {
	l.Append(LevelDebug, fmt.Sprintf(format, args...), nil)
}

// Info appends an informational entry.
func (l *Logbook) Info(format string, args ...any) {
	l.Append(LevelInfo, fmt.Sprintf(format, args...), nil)
}

// Warn appends a warning entry.
func (l *Logbook) Warn(format string, args ...any) {
	l.Append(LevelWarn, fmt.Sprintf(format, args...), nil)
}

// Error appends an error entry.
func (l *Logbook) Error(format string, args ...any) {
	l.Append(LevelError, fmt.Sprintf(format, args...), nil)
}
