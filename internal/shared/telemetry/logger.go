package telemetry

import (
	"io"
	"os"
	"sort"
	"sync"

	"github.com/phuslu/log"
)

var (
	mu     sync.RWMutex
	logger = newLogger(os.Stdout)
)

func newLogger(w io.Writer) *log.Logger {
	return &log.Logger{
		Level:     log.InfoLevel,
		TimeField: "ts",
		Writer:    &log.IOWriter{Writer: w},
	}
}

// SetOutput redirects log lines to w. Intended for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w)
}

// Info writes an info-level log line with the given fields.
func Info(msg string, fields map[string]any) {
	write(log.InfoLevel, msg, fields)
}

// Warn writes a warn-level log line with the given fields.
func Warn(msg string, fields map[string]any) {
	write(log.WarnLevel, msg, fields)
}

// Error writes an error-level log line with the given fields.
func Error(msg string, fields map[string]any) {
	write(log.ErrorLevel, msg, fields)
}

func write(level log.Level, msg string, fields map[string]any) {
	mu.RLock()
	l := logger
	mu.RUnlock()

	var e *log.Entry
	switch level {
	case log.ErrorLevel:
		e = l.Error()
	case log.WarnLevel:
		e = l.Warn()
	default:
		e = l.Info()
	}
	if e == nil {
		return
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch v := fields[k].(type) {
		case error:
			e = e.Str(k, v.Error())
		default:
			e = e.Interface(k, v)
		}
	}
	e.Msg(msg)
}
