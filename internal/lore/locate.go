package lore

import (
	"encoding/json"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// A locator recognizes one historical document shape and extracts its
// entries. Locators are tried in order until one matches; this replaces the
// nested conditionals that tend to grow around schema-less input.
type locator struct {
	name string
	fn   func(c *Converter, doc map[string]any, source string) ([]Trigger, bool)
}

var locators = []locator{
	{"data.character_book.entries", locateNestedBook},
	{"character_book.entries", locateBook},
	{"entries map", locateEntriesMap},
	{"single entry", locateSingleEntry},
	{"top-level objects", locateTopLevelObjects},
	{"top-level lists", locateTopLevelLists},
	{"whole document", locateWholeDocument},
}

// locateNestedBook handles the v3 card layout: data.character_book.entries
// as a list, with each entry's own id field winning over its index.
func locateNestedBook(c *Converter, doc map[string]any, _ string) ([]Trigger, bool) {
	data, ok := doc["data"].(map[string]any)
	if !ok {
		return nil, false
	}
	entries, ok := bookEntries(data)
	if !ok {
		return nil, false
	}

	var triggers []Trigger
	for i, entry := range entries {
		id := strconv.Itoa(i)
		if obj, ok := entry.(map[string]any); ok {
			if v, present := obj["id"]; present {
				id = stringOf(v)
			}
		}
		if t, ok := c.normalizeEntry(id, entry); ok {
			triggers = append(triggers, t)
		}
	}
	return triggers, true
}

// locateBook handles character_book.entries at the top level, indexed
// positionally.
func locateBook(c *Converter, doc map[string]any, _ string) ([]Trigger, bool) {
	entries, ok := bookEntries(doc)
	if !ok {
		return nil, false
	}

	var triggers []Trigger
	for i, entry := range entries {
		if t, ok := c.normalizeEntry(strconv.Itoa(i), entry); ok {
			triggers = append(triggers, t)
		}
	}
	return triggers, true
}

func bookEntries(doc map[string]any) ([]any, bool) {
	book, ok := doc["character_book"].(map[string]any)
	if !ok {
		return nil, false
	}
	entries, ok := book["entries"].([]any)
	return entries, ok
}

// locateEntriesMap handles a top-level entries object keyed by entry id.
func locateEntriesMap(c *Converter, doc map[string]any, _ string) ([]Trigger, bool) {
	entries, ok := doc["entries"].(map[string]any)
	if !ok {
		return nil, false
	}

	var triggers []Trigger
	for _, id := range sortedKeys(entries) {
		if t, ok := c.normalizeEntry(id, entries[id]); ok {
			triggers = append(triggers, t)
		}
	}
	return triggers, true
}

// locateSingleEntry treats the whole document as one entry when it carries
// any of the usual entry fields.
func locateSingleEntry(c *Converter, doc map[string]any, _ string) ([]Trigger, bool) {
	marked := false
	for _, field := range []string{"keys", "comment", "content", "insertion_order"} {
		if _, present := doc[field]; present {
			marked = true
			break
		}
	}
	if !marked {
		return nil, false
	}

	var triggers []Trigger
	if t, ok := c.normalizeEntry("1", doc); ok {
		triggers = append(triggers, t)
	}
	return triggers, true
}

// locateTopLevelObjects tries every object-valued top-level field as an
// entry. Unlike the shaped locators above, this only matches when at least
// one entry normalizes.
func locateTopLevelObjects(c *Converter, doc map[string]any, _ string) ([]Trigger, bool) {
	var triggers []Trigger
	for _, key := range sortedKeys(doc) {
		obj, ok := doc[key].(map[string]any)
		if !ok {
			continue
		}
		if t, ok := c.normalizeEntry(key, obj); ok {
			triggers = append(triggers, t)
		}
	}
	return triggers, len(triggers) > 0
}

// locateTopLevelLists tries every object inside list-valued top-level
// fields, naming entries "<field>_<index+1>".
func locateTopLevelLists(c *Converter, doc map[string]any, _ string) ([]Trigger, bool) {
	var triggers []Trigger
	for _, key := range sortedKeys(doc) {
		list, ok := doc[key].([]any)
		if !ok {
			continue
		}
		for i, item := range list {
			if _, ok := item.(map[string]any); !ok {
				continue
			}
			id := key + "_" + strconv.Itoa(i+1)
			if t, ok := c.normalizeEntry(id, item); ok {
				triggers = append(triggers, t)
			}
		}
	}
	return triggers, len(triggers) > 0
}

// locateWholeDocument is the last resort: wrap the entire document as one
// entry whose content is the re-serialized JSON.
func locateWholeDocument(c *Converter, doc map[string]any, source string) ([]Trigger, bool) {
	base := "unknown"
	if source != "" {
		base = filepath.Base(source)
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}

	content, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		c.warnf("cannot serialize document for fallback entry: %v", err)
		return nil, true
	}

	entry := map[string]any{
		"keys":            []any{base},
		"comment":         "generated from " + base,
		"content":         string(content),
		"insertion_order": float64(100),
		"extensions":      map[string]any{"probability": float64(100)},
	}

	var triggers []Trigger
	if t, ok := c.normalizeEntry("default", entry); ok {
		triggers = append(triggers, t)
	}
	return triggers, true
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
