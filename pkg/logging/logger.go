package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Logger writes structured lines for one framework component into the
// run log. Every component of a run appends to the same file:
//
//	[2006-01-02 15:04:05.000] [component] [LEVEL] message
//
// There is no level filtering; all methods write unconditionally.
type Logger struct {
	runID     string
	component string
	file      *os.File
	logger    *log.Logger
	mu        sync.Mutex
	logPath   string
	closeOnce sync.Once
	tee       func(line string)
}

var (
	stateMu sync.Mutex

	// runID identifies the current test run; generated on first use unless
	// Configure supplies one.
	runID string

	// logDir is where run logs are written. Empty means the default
	// ~/.trackora/logs directory.
	logDir string

	dirReady bool
)

// Configure points all subsequently created loggers at dir and tags them
// with id. Either argument may be empty to keep the current value.
func Configure(dir, id string) {
	stateMu.Lock()
	defer stateMu.Unlock()

	if dir != "" && dir != logDir {
		logDir = dir
		dirReady = false
	}
	if id != "" {
		runID = id
	}
}

// RunID returns the identifier of the current run.
func RunID() string {
	stateMu.Lock()
	defer stateMu.Unlock()
	return currentRunID()
}

func currentRunID() string {
	if runID == "" {
		runID = uuid.New().String()
	}
	return runID
}

// Directory returns the directory where run logs are stored, creating it if
// necessary.
func Directory() (string, error) {
	stateMu.Lock()
	defer stateMu.Unlock()
	return ensureDirectory()
}

func ensureDirectory() (string, error) {
	if logDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		logDir = filepath.Join(homeDir, ".trackora", "logs")
	}
	if !dirReady {
		if err := os.MkdirAll(logDir, 0750); err != nil {
			return "", fmt.Errorf("failed to create log directory: %w", err)
		}
		dirReady = true
	}
	return logDir, nil
}

// NewLogger creates a logger for component writing to <dir>/<run-id>.log.
//
// If the directory or the file cannot be opened, a logger writing to stderr
// is returned together with the error so callers can note fallback mode.
func NewLogger(component string) (*Logger, error) {
	stateMu.Lock()
	dir, err := ensureDirectory()
	id := currentRunID()
	stateMu.Unlock()

	if err != nil {
		return newFallbackLogger(component, id, err), err
	}

	logPath := filepath.Join(dir, id+".log")

	// Append mode: many components share the run file.
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		err = fmt.Errorf("failed to open log file: %w", err)
		return newFallbackLogger(component, id, err), err
	}

	return &Logger{
		runID:     id,
		component: component,
		file:      file,
		logger:    log.New(file, "", 0),
		logPath:   logPath,
	}, nil
}

// MustLogger is NewLogger for callers that are fine with the stderr
// fallback and have nowhere to report the error.
func MustLogger(component string) *Logger {
	l, _ := NewLogger(component)
	return l
}

// NewWriterLogger creates a logger writing to w. Used for tests and for
// mirroring output to the console.
func NewWriterLogger(component string, w io.Writer) *Logger {
	stateMu.Lock()
	id := currentRunID()
	stateMu.Unlock()

	return &Logger{
		runID:     id,
		component: component,
		logger:    log.New(w, "", 0),
	}
}

func newFallbackLogger(component, id string, err error) *Logger {
	logger := log.New(os.Stderr, fmt.Sprintf("[%s] ", component), log.LstdFlags)
	logger.Printf("WARNING: failed to initialize file logging: %v", err)
	logger.Printf("falling back to stderr logging")

	return &Logger{
		runID:     id,
		component: component,
		logger:    logger,
	}
}

// With returns a logger for a sub-component sharing the same destination.
func (l *Logger) With(component string) *Logger {
	return &Logger{
		runID:     l.runID,
		component: component,
		logger:    l.logger,
		logPath:   l.logPath,
		tee:       l.tee,
	}
}

// Tee returns a copy of the logger that also hands each formatted line to
// fn. Test cases use this to collect their log lines for the report.
func (l *Logger) Tee(fn func(line string)) *Logger {
	c := l.With(l.component)
	c.tee = fn
	return c
}

func (l *Logger) formatLogEntry(level, message string) string {
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	return fmt.Sprintf("[%s] [%s] [%s] %s", timestamp, l.component, level, message)
}

func (l *Logger) write(level, format string, v ...interface{}) {
	if l == nil {
		return
	}
	entry := l.formatLogEntry(level, fmt.Sprintf(format, v...))

	l.mu.Lock()
	l.logger.Println(entry)
	l.mu.Unlock()

	if l.tee != nil {
		l.tee(entry)
	}
}

// Debugf logs a debug-level message
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.write("DEBUG", format, v...)
}

// Infof logs an info-level message
func (l *Logger) Infof(format string, v ...interface{}) {
	l.write("INFO", format, v...)
}

// Warnf logs a warning-level message
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.write("WARN", format, v...)
}

// Errorf logs an error-level message
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.write("ERROR", format, v...)
}

// Writer returns an io.Writer that writes to the log destination.
func (l *Logger) Writer() io.Writer {
	if l.file != nil {
		return l.file
	}
	return l.logger.Writer()
}

// RunID returns the run this logger belongs to.
func (l *Logger) RunID() string {
	return l.runID
}

// LogPath returns the path to the log file, empty when not file backed.
func (l *Logger) LogPath() string {
	return l.logPath
}

// Close closes the log file. Safe to call multiple times.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}
