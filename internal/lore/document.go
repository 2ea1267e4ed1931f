// Package lore maps arbitrary character-card JSON into a normalized lorebook
// document of conditional text-injection rules, and renders the short
// character profile. Input documents come from several incompatible tool
// generations with no shared schema marker, so extraction is best effort.
package lore

import (
	"bytes"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Trigger positions within the downstream prompt.
const (
	PositionStart = "sys_start"
	PositionEnd   = "sys_end"
)

// Trigger is one normalized rule of a lorebook document.
type Trigger struct {
	Name        string
	Type        string
	Match       string
	Conditional string
	Priority    float64
	Block       bool
	Probability float64
	Position    string
	Content     string
}

// Document is the top-level lorebook structure. Triggers is never empty
// after Convert: a fallback trigger is synthesized when extraction fails.
type Document struct {
	WorldState map[string]any
	UserState  []any
	Triggers   []Trigger
}

// EncodeYAML serializes the document. String scalars are forced to
// double-quoted style so quotes and newlines come out escaped; numeric and
// boolean scalars stay plain.
func (d *Document) EncodeYAML() ([]byte, error) {
	triggers := &yaml.Node{Kind: yaml.SequenceNode}
	for _, t := range d.Triggers {
		triggers.Content = append(triggers.Content, triggerNode(t))
	}

	root := &yaml.Node{Kind: yaml.MappingNode}
	root.Content = append(root.Content,
		plainNode("world_state"), &yaml.Node{Kind: yaml.MappingNode, Style: yaml.FlowStyle},
		plainNode("user_state"), &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle},
		plainNode("trigger"), triggers,
	)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func triggerNode(t Trigger) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	n.Content = append(n.Content,
		plainNode("name"), quotedNode(t.Name),
		plainNode("type"), quotedNode(t.Type),
		plainNode("match"), quotedNode(t.Match),
		plainNode("conditional"), quotedNode(t.Conditional),
		plainNode("priority"), numberNode(t.Priority),
		plainNode("block"), boolNode(t.Block),
		plainNode("probability"), numberNode(t.Probability),
		plainNode("position"), quotedNode(t.Position),
		plainNode("content"), quotedNode(t.Content),
	)
	return n
}

func plainNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: s}
}

func quotedNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Style: yaml.DoubleQuotedStyle, Tag: "!!str", Value: s}
}

func numberNode(f float64) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatFloat(f, 'g', -1, 64)}
}

func boolNode(b bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatBool(b)}
}
