package logger

import (
	"fmt"
	"log"
	"os"

	"github.com/rollbar/rollbar-go"
)

type Logger struct {
	info  *log.Logger
	warn  *log.Logger
	error *log.Logger

	reporting bool
}

func New() *Logger {
	return &Logger{
		info:  log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile),
		warn:  log.New(os.Stdout, "WARN: ", log.Ldate|log.Ltime|log.Lshortfile),
		error: log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile),
	}
}

// WithRollbar forwards warnings and errors to Rollbar. An empty token leaves
// reporting off.
func (l *Logger) WithRollbar(token, environment, codeVersion string) *Logger {
	if token == "" {
		return l
	}
	rollbar.SetToken(token)
	rollbar.SetEnvironment(environment)
	if codeVersion != "" {
		rollbar.SetCodeVersion(codeVersion)
	}
	rollbar.SetEnabled(true)
	l.reporting = true
	return l
}

func (l *Logger) Info(format string, v ...interface{}) {
	l.info.Output(2, fmt.Sprintf(format, v...))
}

func (l *Logger) Warn(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	l.warn.Output(2, msg)
	if l.reporting {
		rollbar.Warning(msg)
	}
}

func (l *Logger) Error(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	l.error.Output(2, msg)
	if l.reporting {
		rollbar.Error(msg)
	}
}

// Close flushes queued Rollbar reports.
func (l *Logger) Close() {
	if l.reporting {
		rollbar.Close()
	}
}
