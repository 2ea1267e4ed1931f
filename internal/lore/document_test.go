package lore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestEncodeYAML_EmptyStateSections(t *testing.T) {
	d := &Document{WorldState: map[string]any{}, UserState: []any{}}
	out, err := d.EncodeYAML()
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "world_state: {}")
	assert.Contains(t, text, "user_state: []")
	assert.Contains(t, text, "trigger:")
}

func TestEncodeYAML_StringsQuotedScalarsPlain(t *testing.T) {
	d := &Document{
		WorldState: map[string]any{},
		UserState:  []any{},
		Triggers: []Trigger{{
			Name:        "hero lore",
			Type:        "keywords",
			Match:       "hero&sword",
			Priority:    70,
			Block:       true,
			Probability: 0.25,
			Position:    PositionStart,
			Content:     "A famous hero.",
		}},
	}
	out, err := d.EncodeYAML()
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, `name: "hero lore"`)
	assert.Contains(t, text, `match: "hero&sword"`)
	assert.Contains(t, text, `position: "sys_start"`)
	assert.Contains(t, text, "priority: 70")
	assert.Contains(t, text, "probability: 0.25")
	assert.Contains(t, text, "block: true")
	assert.NotContains(t, text, `priority: "70"`)
}

func TestEncodeYAML_EscapesQuotesAndNewlines(t *testing.T) {
	d := &Document{
		WorldState: map[string]any{},
		UserState:  []any{},
		Triggers: []Trigger{{
			Name:    "tricky",
			Content: "line one\nsaid \"hello\"",
		}},
	}
	out, err := d.EncodeYAML()
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, `\n`)
	assert.Contains(t, text, `\"hello\"`)
	for _, line := range strings.Split(text, "\n") {
		assert.NotContains(t, line, "said \"hello", "content must stay on one quoted line")
	}
}

func TestEncodeYAML_RoundTrip(t *testing.T) {
	d := &Document{
		WorldState: map[string]any{},
		UserState:  []any{},
		Triggers: []Trigger{
			{Name: "a", Type: "keywords", Match: "x", Priority: 50, Probability: 1, Position: PositionStart, Content: "first\nsecond"},
			{Name: "b", Type: "keywords", Priority: -20, Probability: 0, Position: PositionEnd},
		},
	}
	out, err := d.EncodeYAML()
	require.NoError(t, err)

	var decoded struct {
		WorldState map[string]any `yaml:"world_state"`
		UserState  []any          `yaml:"user_state"`
		Trigger    []struct {
			Name        string  `yaml:"name"`
			Match       string  `yaml:"match"`
			Priority    float64 `yaml:"priority"`
			Block       bool    `yaml:"block"`
			Probability float64 `yaml:"probability"`
			Position    string  `yaml:"position"`
			Content     string  `yaml:"content"`
		} `yaml:"trigger"`
	}
	require.NoError(t, yaml.Unmarshal(out, &decoded))

	require.Len(t, decoded.Trigger, 2)
	assert.Equal(t, "first\nsecond", decoded.Trigger[0].Content)
	assert.Equal(t, float64(50), decoded.Trigger[0].Priority)
	assert.Equal(t, float64(-20), decoded.Trigger[1].Priority)
	assert.Equal(t, PositionEnd, decoded.Trigger[1].Position)
	assert.Empty(t, decoded.WorldState)
	assert.Empty(t, decoded.UserState)
}

func TestQuoteScalar(t *testing.T) {
	assert.Equal(t, `"plain"`, quoteScalar("plain"))
	assert.Equal(t, `"a\nb"`, quoteScalar("a\nb"))
	assert.Equal(t, `"say \"hi\""`, quoteScalar(`say "hi"`))
	assert.Equal(t, `"ab"`, quoteScalar("a\rb"))
	assert.Equal(t, `""`, quoteScalar(""))
}
