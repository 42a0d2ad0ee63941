package runtime

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

// mapToStruct converts a map[string]any to a struct using mapstructure.
// It uses json tags for field mapping and supports time.Duration and time.Time conversions.
func mapToStruct(m map[string]any, target any) error {
	return decodeWithTag(m, target, "json")
}

// mapToStructFromYAML is mapToStruct for config structs, which carry yaml tags.
func mapToStructFromYAML(m map[string]any, target any) error {
	return decodeWithTag(m, target, "yaml")
}

func decodeWithTag(m map[string]any, target any, tag string) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: tag,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
		WeaklyTypedInput: true, // "true" -> bool, 5 -> "5", etc.
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(m); err != nil {
		return fmt.Errorf("failed to decode map to struct: %w", err)
	}

	return nil
}

// stringValue renders a resolved parameter as the string the upstream API
// expects. nil becomes "".
func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		if s == float64(int64(s)) {
			return fmt.Sprintf("%d", int64(s))
		}
		return fmt.Sprintf("%v", s)
	default:
		return fmt.Sprintf("%v", s)
	}
}
