package lore

import (
	"fmt"
	"strings"
)

// Profile renders the short character summary: name, prompt (from the
// description field) and first message. Values are quoted with the same
// escaping discipline as the lorebook output.
func Profile(doc map[string]any) string {
	name := stringOf(doc["name"])
	description := stringOf(doc["description"])
	first := firstMessage(doc)

	var b strings.Builder
	fmt.Fprintf(&b, "name: %s\n\n", quoteScalar(name))
	fmt.Fprintf(&b, "prompt: %s\n\n", quoteScalar(description))
	fmt.Fprintf(&b, "first_mes: %s", quoteScalar(first))
	return b.String()
}

// firstMessage probes the many historical greeting fields in fixed order;
// the first present (for list-valued fields, non-empty) source wins.
func firstMessage(doc map[string]any) string {
	if v, present := doc["first_mes"]; present {
		return stringOf(v)
	}
	if v, present := doc["begin_dialogs"]; present {
		switch t := v.(type) {
		case []any:
			if len(t) > 0 {
				return stringOf(t[0])
			}
		case string:
			return t
		}
		return ""
	}
	if v, present := doc["greeting"]; present {
		return stringOf(v)
	}
	if v, present := doc["example_dialog"]; present && truthy(v) {
		if list, ok := v.([]any); ok && len(list) > 0 {
			return stringOf(list[0])
		}
		return ""
	}
	if v, present := doc["char_greeting"]; present {
		return stringOf(v)
	}
	if v, present := doc["alternate_greetings"]; present && truthy(v) {
		if list, ok := v.([]any); ok && len(list) > 0 {
			return stringOf(list[0])
		}
	}
	return ""
}
