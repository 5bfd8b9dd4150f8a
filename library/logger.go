package library

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Logger is the sink the lending core reports activity to. Implementations
// are fire-and-forget: a sink that cannot write must swallow the problem,
// never fail the lending operation that produced the message.
type Logger interface {
	Log(message string)
	LogError(message string, err error)
}

// NopLogger discards everything. Used when no sink is configured.
type NopLogger struct{}

func (NopLogger) Log(string) {}

func (NopLogger) LogError(string, error) {}

// FileLogger writes timestamped lines to stdout and appends them to a log
// file. If the file cannot be written the line still goes to stdout.
type FileLogger struct {
	mu   sync.Mutex
	out  io.Writer
	file *os.File
}

// NewFileLogger opens (or creates) the log file at path in append mode.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return &FileLogger{out: os.Stdout, file: f}, nil
}

// Close closes the underlying file.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

func (l *FileLogger) Log(message string) {
	l.write("INFO", message)
}

func (l *FileLogger) LogError(message string, err error) {
	if err != nil {
		message = fmt.Sprintf("%s - %v", message, err)
	}
	l.write("ERROR", message)
}

func (l *FileLogger) write(level, message string) {
	line := fmt.Sprintf("[%s] %s: %s\n", time.Now().Format("2006-01-02 15:04:05"), level, message)

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.out, line)
	if l.file != nil {
		// Best effort only.
		_, _ = l.file.WriteString(line)
	}
}

// MultiLogger fans each message out to every sink.
type MultiLogger []Logger

func (m MultiLogger) Log(message string) {
	for _, l := range m {
		l.Log(message)
	}
}

func (m MultiLogger) LogError(message string, err error) {
	for _, l := range m {
		l.LogError(message, err)
	}
}
