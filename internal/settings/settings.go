// Package settings decodes opaque configuration maps into typed driver configs.
package settings

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Decode overlays m onto out (a pointer to a config struct pre-filled with
// defaults). Keys use the `mapstructure` tags; values are weakly typed so
// YAML strings like "5s" or "10" land in durations and ints. Unknown keys are
// an error.
func Decode(m map[string]any, out any) error {
	if len(m) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(m); err != nil {
		return fmt.Errorf("decode settings: %w", err)
	}
	return nil
}
