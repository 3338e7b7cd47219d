// Package zerolog adapts a zerolog.Logger to omnicache.Logger.
package zerolog

import (
	"github.com/rs/zerolog"
	"github.com/unkn0wn-root/omnicache"
)

var _ omnicache.Logger = Logger{}

type Logger struct{ L zerolog.Logger }

func (z Logger) Debug(msg string, f omnicache.Fields) { z.L.Debug().Fields(map[string]any(f)).Msg(msg) }
func (z Logger) Info(msg string, f omnicache.Fields)  { z.L.Info().Fields(map[string]any(f)).Msg(msg) }
func (z Logger) Warn(msg string, f omnicache.Fields)  { z.L.Warn().Fields(map[string]any(f)).Msg(msg) }
func (z Logger) Error(msg string, f omnicache.Fields) { z.L.Error().Fields(map[string]any(f)).Msg(msg) }

func (z Logger) With(f omnicache.Fields) omnicache.Logger {
	return Logger{L: z.L.With().Fields(map[string]any(f)).Logger()}
}
