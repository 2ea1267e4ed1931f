package lore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfile_Layout(t *testing.T) {
	doc := map[string]any{
		"name":        "Mira",
		"description": "A quiet scholar.",
		"first_mes":   "Hello there.",
	}
	want := "name: \"Mira\"\n\nprompt: \"A quiet scholar.\"\n\nfirst_mes: \"Hello there.\""
	assert.Equal(t, want, Profile(doc))
}

func TestProfile_MissingFieldsQuoteEmpty(t *testing.T) {
	got := Profile(map[string]any{})
	assert.Equal(t, "name: \"\"\n\nprompt: \"\"\n\nfirst_mes: \"\"", got)
}

func TestProfile_EscapesNewlines(t *testing.T) {
	doc := map[string]any{"description": "line one\nline two"}
	assert.Contains(t, Profile(doc), `prompt: "line one\nline two"`)
}

func TestFirstMessage_ProbeOrder(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
		want string
	}{
		{
			"first_mes wins",
			map[string]any{"first_mes": "a", "greeting": "b", "char_greeting": "c"},
			"a",
		},
		{
			"begin_dialogs list",
			map[string]any{"begin_dialogs": []any{"first", "second"}, "greeting": "later"},
			"first",
		},
		{
			"begin_dialogs string",
			map[string]any{"begin_dialogs": "solo"},
			"solo",
		},
		{
			"begin_dialogs present but empty stops probing",
			map[string]any{"begin_dialogs": []any{}, "greeting": "later"},
			"",
		},
		{
			"greeting",
			map[string]any{"greeting": "hi"},
			"hi",
		},
		{
			"example_dialog list",
			map[string]any{"example_dialog": []any{"ex1", "ex2"}},
			"ex1",
		},
		{
			"empty example_dialog falls through",
			map[string]any{"example_dialog": []any{}, "char_greeting": "cg"},
			"cg",
		},
		{
			"char_greeting",
			map[string]any{"char_greeting": "cg"},
			"cg",
		},
		{
			"alternate_greetings",
			map[string]any{"alternate_greetings": []any{"alt"}},
			"alt",
		},
		{
			"empty alternate_greetings",
			map[string]any{"alternate_greetings": []any{}},
			"",
		},
		{
			"nothing",
			map[string]any{},
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, firstMessage(tt.doc))
		})
	}
}
