package card

import (
	"bytes"
	"fmt"
)

// decodeText splits a tEXt payload into its keyword and text, both Latin-1,
// separated by a single NUL byte.
func decodeText(data []byte) (keyword, text string, err error) {
	i := bytes.IndexByte(data, 0)
	if i < 0 {
		return "", "", fmt.Errorf("text chunk has no keyword separator")
	}
	return latin1String(data[:i]), latin1String(data[i+1:]), nil
}

func encodeText(keyword, text string) []byte {
	out := make([]byte, 0, len(keyword)+1+len(text))
	out = append(out, latin1Bytes(keyword)...)
	out = append(out, 0)
	out = append(out, latin1Bytes(text)...)
	return out
}

func latin1String(b []byte) string {
	r := make([]rune, len(b))
	for i, c := range b {
		r[i] = rune(c)
	}
	return string(r)
}

func latin1Bytes(s string) []byte {
	b := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xff {
			r = '?'
		}
		b = append(b, byte(r))
	}
	return b
}
