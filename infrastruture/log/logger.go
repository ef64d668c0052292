// Package logger provides colored, component-scoped loggers backed by logrus.
package logger

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Color constants for logging
const (
	ColorRed     = "\033[31m"
	ColorGreen   = "\033[32m"
	ColorYellow  = "\033[33m"
	ColorBlue    = "\033[34m"
	ColorPurple  = "\033[35m"
	ColorCyan    = "\033[36m"
	ColorReset   = "\033[0m"
	componentKey = "component"
)

var ErrEmptyPrefix = errors.New("logger prefix must not be empty")

// Logger writes messages tagged with a component prefix.
type Logger struct {
	entry *logrus.Entry
}

// New creates a logger that writes "[PREFIX] [LEVEL] message" lines to out,
// with the prefix rendered in color.
func New(prefix, color string, out io.Writer) (*Logger, error) {
	if strings.TrimSpace(prefix) == "" {
		return nil, ErrEmptyPrefix
	}

	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&formatter{color: color})

	return &Logger{entry: l.WithField(componentKey, prefix)}, nil
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.entry.Info(msg)
}

// Warning logs a recoverable problem.
func (l *Logger) Warning(msg string) {
	l.entry.Warn(msg)
}

// Error logs a failure.
func (l *Logger) Error(msg string) {
	l.entry.Error(msg)
}

// With returns a logger carrying an extra field on every line.
func (l *Logger) With(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

type formatter struct {
	color string
}

func (f *formatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer

	levelColor := ColorGreen
	switch e.Level {
	case logrus.WarnLevel:
		levelColor = ColorYellow
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		levelColor = ColorRed
	}

	fmt.Fprintf(&b, "%s %s[%v]%s %s[%s]%s %s",
		e.Time.Format("2006/01/02 15:04:05"),
		f.color, e.Data[componentKey], ColorReset,
		levelColor, strings.ToUpper(e.Level.String()), ColorReset,
		e.Message,
	)
	for k, v := range e.Data {
		if k == componentKey {
			continue
		}
		fmt.Fprintf(&b, " %s=%v", k, v)
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}
