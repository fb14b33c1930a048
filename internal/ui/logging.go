package ui

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type Logger struct {
	Debug bool
	log   *logrus.Logger
}

func NewLogger(debug bool) *Logger {
	return NewLoggerTo(os.Stdout, debug)
}

func NewLoggerTo(w io.Writer, debug bool) *Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(bracketFormatter{})
	l.SetLevel(logrus.InfoLevel)
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}

	return &Logger{Debug: debug, log: l}
}

func (l *Logger) Debugf(format string, args ...any) {
	l.log.Debugf(format, args...)
}

func (l *Logger) Infof(format string, args ...any) {
	l.log.Infof(format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.log.Errorf(format, args...)
}

// WithField returns an entry for structured logging on the same output.
func (l *Logger) WithField(key string, value any) *logrus.Entry {
	return l.log.WithField(key, value)
}

// bracketFormatter prints "[LEVEL] message key=value".
type bracketFormatter struct{}

func (bracketFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "[%s] %s", strings.ToUpper(e.Level.String()), strings.TrimRight(e.Message, "\n"))
	for k, v := range e.Data {
		fmt.Fprintf(&b, " %s=%v", k, v)
	}
	b.WriteByte('\n')

	return b.Bytes(), nil
}
