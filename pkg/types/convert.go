package types

import "github.com/spf13/cast"

// Convert turns v into a T. Values already of type T pass through; numeric and
// bool values convert implicitly between numeric and bool targets. Text is
// never parsed or produced. It reports false for nil values and failed
// conversions.
func Convert[T any](v any) (T, bool) {
	var zero T
	if v == nil {
		return zero, false
	}
	if t, ok := v.(T); ok {
		return t, true
	}
	if !scalar(v) {
		return zero, false
	}

	var (
		out any
		err error
	)
	switch any(zero).(type) {
	case float64:
		out, err = cast.ToFloat64E(v)
	case float32:
		out, err = cast.ToFloat32E(v)
	case int:
		out, err = cast.ToIntE(v)
	case int64:
		out, err = cast.ToInt64E(v)
	case int32:
		out, err = cast.ToInt32E(v)
	case bool:
		out, err = cast.ToBoolE(v)
	default:
		return zero, false
	}
	if err != nil {
		return zero, false
	}
	return out.(T), true
}

func scalar(v any) bool {
	switch v.(type) {
	case bool, float64, float32,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}
