package state

import "reflect"

// DefaultEquals is the equality used by the suppression gates when no
// custom function is configured. Built-in scalar kinds are compared
// with ==; composite state types go through reflect.DeepEqual, matching
// the value-semantics contract of the gates.
func DefaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case string:
		return av == any(b).(string)
	case bool:
		return av == any(b).(bool)
	case int:
		return av == any(b).(int)
	case int8:
		return av == any(b).(int8)
	case int16:
		return av == any(b).(int16)
	case int32:
		return av == any(b).(int32)
	case int64:
		return av == any(b).(int64)
	case uint:
		return av == any(b).(uint)
	case uint8:
		return av == any(b).(uint8)
	case uint16:
		return av == any(b).(uint16)
	case uint32:
		return av == any(b).(uint32)
	case uint64:
		return av == any(b).(uint64)
	case float32:
		return av == any(b).(float32)
	case float64:
		return av == any(b).(float64)
	default:
		// Structs, slices, maps, and anything else a state type
		// might be.
		return reflect.DeepEqual(a, b)
	}
}
