// Package logger provides the process-wide logger.
//
// Every record goes to two channels: a log file that captures all levels
// with full timestamps, and the console which only shows records at or above
// the configured level.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/glorpus-work/multifetch/pkg/fsutil"
)

// Fields is a type alias for log fields to make the API cleaner
type Fields = logrus.Fields

// Options configures InitLogger.
type Options struct {
	// Level is the console threshold (debug, info, warn, error). Defaults to info.
	Level string
	// LogFile receives every record. Empty disables the file channel.
	LogFile string
	// Console defaults to stdout.
	Console io.Writer
	NoColor bool
}

var (
	logger   *logrus.Logger
	loggerMu sync.Mutex

	defaultFields Fields

	// testOutput is used to capture log output during tests
	testOutput   io.Writer
	testOutputMu sync.Mutex
)

// SetTestOutput sets the output writer for testing purposes
func SetTestOutput(w io.Writer) {
	testOutputMu.Lock()
	defer testOutputMu.Unlock()
	testOutput = w
}

// UnsetTestOutput resets the test output to nil
func UnsetTestOutput() {
	testOutputMu.Lock()
	defer testOutputMu.Unlock()
	testOutput = nil
}

func consoleOutput(w io.Writer) io.Writer {
	testOutputMu.Lock()
	defer testOutputMu.Unlock()
	if testOutput != nil {
		return testOutput
	}
	if w != nil {
		return w
	}
	return os.Stdout
}

// writerHook sends entries at the given levels to one writer with its own formatter.
type writerHook struct {
	mu        sync.Mutex
	writer    io.Writer
	formatter logrus.Formatter
	levels    []logrus.Level
}

func (h *writerHook) Levels() []logrus.Level {
	return h.levels
}

func (h *writerHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.writer.Write(line)
	return err
}

// ParseLevel maps a level name to a logrus level, falling back to info.
func ParseLevel(name string) logrus.Level {
	level, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// levelsFrom returns every level at or above min in severity.
func levelsFrom(minLevel logrus.Level) []logrus.Level {
	var levels []logrus.Level
	for _, l := range logrus.AllLevels {
		if l <= minLevel {
			levels = append(levels, l)
		}
	}
	return levels
}

// InitLogger initializes the global logger. The returned closer releases the log file.
func InitLogger(opts Options) (io.Closer, error) {
	lg := logrus.New()
	lg.SetOutput(io.Discard)
	lg.SetLevel(logrus.DebugLevel)

	console := &writerHook{
		writer: consoleOutput(opts.Console),
		formatter: &logrus.TextFormatter{
			DisableColors:    opts.NoColor,
			DisableTimestamp: true,
		},
		levels: levelsFrom(ParseLevel(opts.Level)),
	}
	lg.AddHook(console)

	var closer io.Closer = nopCloser{}
	if opts.LogFile != "" {
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, fsutil.FileModeSecure)
		if err != nil {
			return nil, err
		}
		lg.AddHook(&writerHook{
			writer: f,
			formatter: &logrus.TextFormatter{
				DisableColors: true,
				FullTimestamp: true,
			},
			levels: logrus.AllLevels,
		})
		closer = f
	}

	loggerMu.Lock()
	logger = lg
	loggerMu.Unlock()
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// GetLogger returns the configured logger instance
func GetLogger() *logrus.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if logger == nil {
		lg := logrus.New()
		lg.SetOutput(consoleOutput(nil))
		lg.SetLevel(logrus.InfoLevel)
		logger = lg
	}
	return logger
}

// SetDefaultFields attaches fields to every subsequent record, e.g. a run id.
func SetDefaultFields(fields Fields) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	defaultFields = fields
}

func entry(fields ...Fields) *logrus.Entry {
	lg := GetLogger()
	loggerMu.Lock()
	base := defaultFields
	loggerMu.Unlock()
	return lg.WithFields(mergeFields(append([]Fields{base}, fields...)...))
}

// Info logs an info message
func Info(msg string, fields ...Fields) {
	entry(fields...).Info(msg)
}

// Debug logs a debug message (only shown on the console when debug level is enabled)
func Debug(msg string, fields ...Fields) {
	entry(fields...).Debug(msg)
}

// Warn logs a warning message
func Warn(msg string, fields ...Fields) {
	entry(fields...).Warn(msg)
}

// Error logs an error message
func Error(msg string, fields ...Fields) {
	entry(fields...).Error(msg)
}

// Success logs a success message as info with success indicator
func Success(msg string, fields ...Fields) {
	merged := mergeFields(fields...)
	merged["status"] = "success"
	entry(merged).Info(msg)
}

// mergeFields merges multiple field maps into one
func mergeFields(fields ...Fields) Fields {
	result := make(Fields)
	for _, field := range fields {
		for k, v := range field {
			result[k] = v
		}
	}
	return result
}
