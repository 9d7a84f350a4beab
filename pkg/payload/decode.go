package payload

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Decode maps a loosely typed description (as read from YAML or JSON,
// snake_case keys) onto a typed parameter struct. Unknown keys are errors.
func Decode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc("2006-01-02T15:04:05Z07:00"),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(input); err != nil {
		return inputError("decode", err)
	}
	return nil
}
