package lore

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// WarnFunc receives diagnostics for entries that are skipped instead of
// aborting a conversion.
type WarnFunc func(format string, args ...any)

func stderrWarn(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "  WARN: "+format+"\n", args...)
}

// Converter holds only the diagnostic sink; every Convert call builds a
// fresh document, so a single Converter is safe to reuse.
type Converter struct {
	Warn WarnFunc
}

func NewConverter() *Converter {
	return &Converter{Warn: stderrWarn}
}

func (c *Converter) warnf(format string, args ...any) {
	if c.Warn != nil {
		c.Warn(format, args...)
	}
}

// Convert maps a decoded card document into a lorebook. source names where
// the document came from (usually the card file path) and is only used when
// the whole document has to be wrapped as a single entry. The returned
// document always has at least one trigger.
func (c *Converter) Convert(doc map[string]any, source string) *Document {
	d := &Document{WorldState: map[string]any{}, UserState: []any{}}

	for _, loc := range locators {
		triggers, matched := loc.fn(c, doc, source)
		if matched {
			d.Triggers = triggers
			break
		}
	}

	if len(d.Triggers) == 0 {
		c.warnf("no valid triggers extracted, emitting fallback entry")
		d.Triggers = append(d.Triggers, Trigger{
			Name:        "default entry",
			Type:        "keywords",
			Priority:    50,
			Probability: 1.0,
			Position:    PositionStart,
			Content:     "could not extract valid content, auto-generated fallback",
		})
	}
	return d
}

// normalizeEntry maps one source entry into a Trigger. The boolean is false
// when the entry is dropped: disabled, not an object, or a failure during
// normalization (which is never allowed to abort the batch).
func (c *Converter) normalizeEntry(id string, raw any) (t Trigger, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.warnf("entry %s: %v, skipped", id, r)
			ok = false
		}
	}()

	entry, isObject := raw.(map[string]any)
	if !isObject {
		c.warnf("entry %s is not an object, skipped", id)
		return Trigger{}, false
	}
	if enabled, present := entry["enabled"]; present && !truthy(enabled) {
		return Trigger{}, false
	}

	name := "entry_" + id
	if v, present := entry["comment"]; present {
		name = stringOf(v)
	}

	order := c.numberOf(id, "insertion_order", entry["insertion_order"], 100)

	ext, _ := entry["extensions"].(map[string]any)
	probability := c.numberOf(id, "probability", ext["probability"], 100)
	if probability > 100 {
		probability = 100
	}
	if probability < 0 {
		probability = 0
	}

	return Trigger{
		Name:        name,
		Type:        "keywords",
		Match:       buildMatch(entry["keys"], entry["secondary_keys"]),
		Conditional: "",
		Priority:    100 - order,
		Block:       truthy(ext["prevent_recursion"]),
		Probability: probability / 100,
		Position:    convertPosition(entry["position"]),
		Content:     stringOf(entry["content"]),
	}, true
}

// buildMatch joins primary keys with "&", appending "~" plus the secondary
// keys when both sides are non-empty.
func buildMatch(keys, secondary any) string {
	primary := strings.Join(stringList(keys), "&")
	if primary == "" {
		return ""
	}
	if sec := strings.Join(stringList(secondary), "&"); sec != "" {
		return primary + "~" + sec
	}
	return primary
}

// convertPosition maps the many historical position encodings onto the two
// supported slots. Anything unrecognized lands at the start.
func convertPosition(v any) string {
	switch t := v.(type) {
	case float64:
		if t == 1 {
			return PositionEnd
		}
	case string:
		switch t {
		case "1", "after_prompt":
			return PositionEnd
		}
	}
	return PositionStart
}

// numberOf coerces a numeric field, warning and falling back to def when a
// present value cannot be parsed. Absent values default silently.
func (c *Converter) numberOf(id, field string, v any, def float64) float64 {
	switch t := v.(type) {
	case nil:
		return def
	case float64:
		return t
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			c.warnf("entry %s: invalid %s %q, using default %g", id, field, t, def)
			return def
		}
		return f
	default:
		c.warnf("entry %s: invalid %s %v, using default %g", id, field, v, def)
		return def
	}
}
