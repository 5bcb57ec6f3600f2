// Package logrus adapts a logrus entry to orchid.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/orchid"
)

var _ orchid.Logger = Logger{}

type Logger struct{ E *logrus.Entry }

// New wraps l, tagging every line with component=orchid.
func New(l *logrus.Logger) Logger {
	return Logger{E: l.WithField("component", "orchid")}
}

func (l Logger) Debug(msg string, f orchid.Fields) { l.E.WithFields(logrus.Fields(f)).Debug(msg) }
func (l Logger) Info(msg string, f orchid.Fields)  { l.E.WithFields(logrus.Fields(f)).Info(msg) }
func (l Logger) Warn(msg string, f orchid.Fields)  { l.E.WithFields(logrus.Fields(f)).Warn(msg) }
func (l Logger) Error(msg string, f orchid.Fields) { l.E.WithFields(logrus.Fields(f)).Error(msg) }
