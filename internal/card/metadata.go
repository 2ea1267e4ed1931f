package card

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

const (
	keywordV2 = "chara"
	keywordV3 = "ccv3"
)

// WarnFunc receives diagnostics for chunk-local failures that do not abort
// the surrounding read or write.
type WarnFunc func(format string, args ...any)

func stderrWarn(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "  WARN: "+format+"\n", args...)
}

// Codec extracts and embeds character metadata in PNG byte streams.
// The zero value warns to stderr; tests inject their own sink.
type Codec struct {
	Warn WarnFunc
}

func NewCodec() *Codec {
	return &Codec{Warn: stderrWarn}
}

func (c *Codec) warnf(format string, args ...any) {
	if c.Warn != nil {
		c.Warn(format, args...)
	}
}

// ReadMetadata extracts the embedded character JSON from a PNG byte stream,
// preferring the ccv3 chunk over the legacy chara chunk. The boolean is
// false when the image carries no recognized metadata; that is not an error.
func (c *Codec) ReadMetadata(data []byte) (string, bool, error) {
	chunks, err := decodeChunks(data)
	if err != nil {
		return "", false, err
	}

	texts := make(map[string]string)
	for _, ch := range chunks {
		if ch.Type != chunkText {
			continue
		}
		keyword, text, err := decodeText(ch.Data)
		if err != nil {
			c.warnf("skipping undecodable tEXt chunk: %v", err)
			continue
		}
		texts[strings.ToLower(keyword)] = text
	}

	for _, keyword := range []string{keywordV3, keywordV2} {
		enc, ok := texts[keyword]
		if !ok {
			continue
		}
		raw, err := base64.StdEncoding.DecodeString(enc)
		if err != nil {
			return "", false, fmt.Errorf("%w: %s chunk base64: %v", ErrDecode, keyword, err)
		}
		if !utf8.Valid(raw) {
			return "", false, fmt.Errorf("%w: %s chunk is not valid UTF-8", ErrDecode, keyword)
		}
		return string(raw), true, nil
	}
	return "", false, nil
}

// WriteMetadata returns a copy of the PNG byte stream with jsonText embedded.
// Existing chara/ccv3 chunks are replaced; all other chunks keep their order.
// A chara chunk is always written. A ccv3 chunk (with spec/spec_version
// injected) is only written when jsonText parses as a JSON object.
func (c *Codec) WriteMetadata(data []byte, jsonText string) ([]byte, error) {
	chunks, err := decodeChunks(data)
	if err != nil {
		return nil, err
	}

	kept := make([]Chunk, 0, len(chunks))
	for _, ch := range chunks {
		if ch.Type == chunkText {
			keyword, _, err := decodeText(ch.Data)
			if err != nil {
				// undecodable text chunks are kept untouched
				c.warnf("keeping undecodable tEXt chunk: %v", err)
				kept = append(kept, ch)
				continue
			}
			k := strings.ToLower(keyword)
			if k == keywordV2 || k == keywordV3 {
				continue
			}
		}
		kept = append(kept, ch)
	}

	inserted := []Chunk{{
		Type: chunkText,
		Data: encodeText(keywordV2, base64.StdEncoding.EncodeToString([]byte(jsonText))),
	}}
	if v3, ok := c.buildV3(jsonText); ok {
		inserted = append(inserted, v3)
	}

	endIdx := -1
	for i, ch := range kept {
		if ch.Type == chunkEnd {
			endIdx = i
			break
		}
	}

	out := make([]Chunk, 0, len(kept)+len(inserted))
	if endIdx < 0 {
		c.warnf("no IEND chunk found, appending metadata at end of stream")
		out = append(out, kept...)
		out = append(out, inserted...)
	} else {
		out = append(out, kept[:endIdx]...)
		out = append(out, inserted...)
		out = append(out, kept[endIdx:]...)
	}
	return encodeChunks(out), nil
}

// buildV3 assembles the ccv3 chunk. Metadata that is not a JSON object
// cannot carry the spec fields, so the chunk is skipped with a warning.
func (c *Codec) buildV3(jsonText string) (Chunk, bool) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(jsonText), &doc); err != nil {
		c.warnf("skipping ccv3 chunk, metadata is not a JSON object: %v", err)
		return Chunk{}, false
	}
	doc["spec"] = "chara_card_v3"
	doc["spec_version"] = "3.0"

	enc, err := json.Marshal(doc)
	if err != nil {
		c.warnf("skipping ccv3 chunk: %v", err)
		return Chunk{}, false
	}
	return Chunk{
		Type: chunkText,
		Data: encodeText(keywordV3, base64.StdEncoding.EncodeToString(enc)),
	}, true
}

// ParseCard reads a card file from disk and extracts its metadata.
func (c *Codec) ParseCard(path string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false, err
	}
	return c.ReadMetadata(data)
}
