// Package logging holds the process-wide structured logger. Library
// packages log through these helpers; until Set is called every call is a
// no-op, which keeps tests quiet.
package logging

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	mu     sync.RWMutex
	logger *log.Logger
)

// New builds a logger writing to w in the format used across the client.
func New(w io.Writer, debug bool) *log.Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           level,
	})
}

// Set installs l as the global logger. Passing nil disables logging.
func Set(l *log.Logger) {
	mu.Lock()
	logger = l
	mu.Unlock()
}

// Get returns the current logger or nil.
func Get() *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func emit(lvl log.Level, msg string, keyvals []interface{}) {
	if l := Get(); l != nil {
		l.Log(lvl, msg, keyvals...)
	}
}

// Info, Debug, Warn and Error log msg with alternating key/value pairs.
func Info(msg string, keyvals ...interface{})  { emit(log.InfoLevel, msg, keyvals) }
func Debug(msg string, keyvals ...interface{}) { emit(log.DebugLevel, msg, keyvals) }
func Warn(msg string, keyvals ...interface{})  { emit(log.WarnLevel, msg, keyvals) }
func Error(msg string, keyvals ...interface{}) { emit(log.ErrorLevel, msg, keyvals) }
