package binding

import (
	"encoding/json"
	"math"
)

// Truthy applies the condition rules: nil, "", false and numeric zero are
// falsy, everything else (including empty maps and sequences) is truthy.
// Unresolved values are handled by the caller as nil.
func Truthy(v any) bool {
	switch typed := v.(type) {
	case nil:
		return false
	case bool:
		return typed
	case string:
		return typed != ""
	case int:
		return typed != 0
	case int8:
		return typed != 0
	case int16:
		return typed != 0
	case int32:
		return typed != 0
	case int64:
		return typed != 0
	case uint:
		return typed != 0
	case uint8:
		return typed != 0
	case uint16:
		return typed != 0
	case uint32:
		return typed != 0
	case uint64:
		return typed != 0
	case float32:
		return typed != 0 && !math.IsNaN(float64(typed))
	case float64:
		return typed != 0 && !math.IsNaN(typed)
	case json.Number:
		f, err := typed.Float64()
		return err != nil || (f != 0 && !math.IsNaN(f))
	default:
		return true
	}
}
