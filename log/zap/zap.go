// Package zap adapts a *zap.Logger to omnicache.Logger.
package zap

import (
	"github.com/unkn0wn-root/omnicache"
	"go.uber.org/zap"
)

var _ omnicache.Logger = Logger{}

type Logger struct{ L *zap.Logger }

// New names the logger "omnicache" so cache entries are easy to filter.
func New(l *zap.Logger) Logger { return Logger{L: l.Named("omnicache")} }

func (z Logger) Debug(msg string, f omnicache.Fields) { z.L.Debug(msg, fields(f)...) }
func (z Logger) Info(msg string, f omnicache.Fields)  { z.L.Info(msg, fields(f)...) }
func (z Logger) Warn(msg string, f omnicache.Fields)  { z.L.Warn(msg, fields(f)...) }
func (z Logger) Error(msg string, f omnicache.Fields) { z.L.Error(msg, fields(f)...) }

func (z Logger) With(f omnicache.Fields) omnicache.Logger {
	return Logger{L: z.L.With(fields(f)...)}
}

func fields(f omnicache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		if err, ok := v.(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, v))
	}
	return out
}
