package utils

import (
	"strconv"
	"strings"
)

// ToInt converts loosely typed input to int. Unparseable values yield fallback.
func ToInt(val any, fallback int) int {
	switch v := val.(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case uint:
		return int(v)
	case uint32:
		return int(v)
	case uint64:
		return int(v)
	case float32:
		return int(v)
	case float64:
		return int(v)
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
		return fallback
	case []byte:
		return ToInt(string(v), fallback)
	}
	return fallback
}

// ParseBool reads a consent value. Accepted are bools, the numbers 0 and 1
// and the words 1/0, true/false, yes/no, on/off in any case. ok reports
// whether val was one of them.
func ParseBool(val any) (value bool, ok bool) {
	switch v := val.(type) {
	case bool:
		return v, true
	case int, int32, int64, uint, uint32, uint64, float32, float64:
		switch ToInt(v, -1) {
		case 0:
			return false, true
		case 1:
			return true, true
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on":
			return true, true
		case "0", "false", "no", "off":
			return false, true
		}
	case []byte:
		return ParseBool(string(v))
	}
	return false, false
}

// ToBool is ParseBool without the check: anything unrecognized is false.
func ToBool(val any) bool {
	value, _ := ParseBool(val)
	return value
}
