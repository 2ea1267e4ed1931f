package render

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"cardlore/internal/card"
	"cardlore/internal/lore"
)

const (
	colorReset   = "\033[0m"
	colorField   = "\033[1;34m" // bold blue field labels
	colorTrigger = "\033[1;32m" // bold green trigger headers
	colorDim     = "\033[2m"
	colorWarn    = "\033[1;33m" // bold yellow
)

type Options struct {
	Width int // wrap width (0 = no wrap)
}

// indentLines prepends each line of text with the given prefix.
func indentLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// wrapLine breaks a single line into multiple lines that fit within maxWidth
// visible columns, correctly skipping ANSI escape sequences when measuring width.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	i := 0
	for i < len(line) {
		// check for ANSI escape sequence: ESC[ ... m
		if i+1 < len(line) && line[i] == '\033' && line[i+1] == '[' {
			j := i + 2
			for j < len(line) && line[j] != 'm' {
				j++
			}
			if j < len(line) {
				j++ // include 'm'
			}
			cur.WriteString(line[i:j])
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)

		if visW+rw > maxWidth {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}

		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}

	if len(result) == 0 {
		return []string{""}
	}
	return result
}

// RenderCard renders a preview of one card: the character profile followed
// by the triggers its lorebook conversion would produce.
func RenderCard(path string, opts Options) (string, error) {
	codec := card.NewCodec()
	codec.Warn = func(string, ...any) {} // previews stay quiet

	jsonText, ok, err := codec.ParseCard(path)
	if err != nil {
		return "", fmt.Errorf("parse card: %w", err)
	}
	if !ok {
		return colorDim + "(no embedded character metadata)" + colorReset, nil
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(jsonText), &doc); err != nil {
		return colorWarn + "(metadata is not valid JSON)" + colorReset, nil
	}

	conv := lore.NewConverter()
	conv.Warn = func(string, ...any) {}
	document := conv.Convert(doc, path)

	var b strings.Builder
	separator := colorDim + "--------------------------------------------------" + colorReset

	writeLine := func(s string) {
		for _, wl := range wrapLine(s, opts.Width) {
			b.WriteString(wl)
			b.WriteString("\n")
		}
	}

	writeLine(fmt.Sprintf("%s--- %s [%d triggers] ---%s",
		colorDim, displayName(doc, path), len(document.Triggers), colorReset))
	writeLine("")

	for _, ln := range strings.Split(lore.Profile(doc), "\n") {
		if label, rest, found := strings.Cut(ln, ": "); found {
			writeLine(colorField + label + ":" + colorReset + " " + rest)
		} else {
			writeLine(ln)
		}
	}

	for _, t := range document.Triggers {
		writeLine("")
		writeLine(separator)
		writeLine(fmt.Sprintf("%s%s%s %s(match=%s priority=%g probability=%g position=%s)%s",
			colorTrigger, t.Name, colorReset,
			colorDim, t.Match, t.Priority, t.Probability, t.Position, colorReset))
		for _, tl := range strings.Split(indentLines(t.Content, "  "), "\n") {
			writeLine(tl)
		}
	}

	return b.String(), nil
}

func displayName(doc map[string]any, path string) string {
	if name, ok := doc["name"].(string); ok && name != "" {
		return name
	}
	return path
}
