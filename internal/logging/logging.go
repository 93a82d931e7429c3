// Package logging provides component-prefixed leveled logging over the
// standard logger. The level comes from the LOG_LEVEL environment
// variable; Debug output is off by default.
package logging

import (
	"log"
	"os"
)

// Level represents logging verbosity.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// Logger writes component-prefixed lines at or below its level.
type Logger struct {
	level     Level
	component string
}

// New creates a logger for one component, with the level taken from the
// LOG_LEVEL environment variable (INFO when unset or unrecognized).
func New(component string) *Logger {
	return &Logger{level: levelFromEnv(), component: component}
}

func levelFromEnv() Level {
	switch os.Getenv("LOG_LEVEL") {
	case "ERROR":
		return LevelError
	case "WARN":
		return LevelWarn
	case "DEBUG":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.printf(LevelError, format, args...)
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	l.printf(LevelWarn, format, args...)
}

// Info logs info messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.printf(LevelInfo, format, args...)
}

// Debug logs debug messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.printf(LevelDebug, format, args...)
}

func (l *Logger) printf(level Level, format string, args ...interface{}) {
	if l.level >= level {
		log.Printf("["+l.component+"] "+format, args...)
	}
}
