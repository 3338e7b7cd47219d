// Package logrus adapts a *logrus.Entry to omnicache.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"
	"github.com/unkn0wn-root/omnicache"
)

var _ omnicache.Logger = Logger{}

type Logger struct{ E *logrus.Entry }

// New wraps l with a component=omnicache field.
func New(l *logrus.Logger) Logger {
	return Logger{E: l.WithField("component", "omnicache")}
}

func (l Logger) Debug(msg string, f omnicache.Fields) { l.entry(f).Debug(msg) }
func (l Logger) Info(msg string, f omnicache.Fields)  { l.entry(f).Info(msg) }
func (l Logger) Warn(msg string, f omnicache.Fields)  { l.entry(f).Warn(msg) }
func (l Logger) Error(msg string, f omnicache.Fields) { l.entry(f).Error(msg) }

func (l Logger) With(f omnicache.Fields) omnicache.Logger {
	return Logger{E: l.entry(f)}
}

func (l Logger) entry(f omnicache.Fields) *logrus.Entry {
	if len(f) == 0 {
		return l.E
	}
	return l.E.WithFields(logrus.Fields(f))
}
