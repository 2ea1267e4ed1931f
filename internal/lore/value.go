package lore

import (
	"fmt"
	"strconv"
	"strings"
)

// stringOf renders any decoded JSON value as a display string.
func stringOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// truthy follows loose JSON truthiness: nil, false, zero, empty string,
// empty list and empty object are all false.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

// stringList coerces a keys-like field into a list of strings, accepting a
// scalar, a list, or anything else stringable. Falsy elements are dropped.
func stringList(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if truthy(e) {
				out = append(out, stringOf(e))
			}
		}
		return out
	default:
		if !truthy(v) {
			return nil
		}
		return []string{stringOf(v)}
	}
}

// quoteScalar wraps a string in double quotes, escaping embedded quotes and
// newlines so the value stays on one line. Carriage returns are dropped.
// Shared by the lorebook and profile output paths.
func quoteScalar(s string) string {
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, "\r", "")
	return `"` + s + `"`
}
