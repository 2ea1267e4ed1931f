// Package card reads and writes the character metadata embedded in PNG
// card images. The metadata lives in tEXt chunks keyed "chara" (legacy v2,
// Base64 of UTF-8 JSON) and "ccv3" (v3, same encoding plus spec fields).
// Pixel data is never decoded; chunks are carried through byte for byte.
package card

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
)

// signature is the fixed 8-byte PNG file header.
var signature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

var (
	// ErrFormat reports a malformed container: bad signature or a chunk
	// stream that cannot be parsed.
	ErrFormat = errors.New("invalid png container")
	// ErrDecode reports a chara/ccv3 payload that is present but whose
	// Base64 or UTF-8 decoding fails.
	ErrDecode = errors.New("card metadata decode failed")
)

const (
	chunkText = "tEXt"
	chunkEnd  = "IEND"
)

// Chunk is one record of the container: a 4-byte type tag and its payload.
// The trailing CRC is not stored; it is recomputed on every encode.
type Chunk struct {
	Type string
	Data []byte
}

// decodeChunks parses a full PNG byte stream into its chunk sequence.
// CRCs are not verified on read.
func decodeChunks(data []byte) ([]Chunk, error) {
	if !bytes.HasPrefix(data, signature) {
		return nil, fmt.Errorf("%w: bad signature", ErrFormat)
	}

	var chunks []Chunk
	off := len(signature)
	for off < len(data) {
		if off+8 > len(data) {
			return nil, fmt.Errorf("%w: truncated chunk header at offset %d", ErrFormat, off)
		}
		length := int(binary.BigEndian.Uint32(data[off : off+4]))
		typ := string(data[off+4 : off+8])
		off += 8

		if off+length+4 > len(data) {
			return nil, fmt.Errorf("%w: truncated %q chunk", ErrFormat, typ)
		}
		payload := make([]byte, length)
		copy(payload, data[off:off+length])
		off += length + 4 // payload + CRC

		chunks = append(chunks, Chunk{Type: typ, Data: payload})
	}
	return chunks, nil
}

// encodeChunks re-emits the full byte stream: signature, then for every
// chunk its length, tag, payload, and a fresh CRC-32 over tag+payload.
func encodeChunks(chunks []Chunk) []byte {
	var buf bytes.Buffer
	buf.Write(signature)

	var word [4]byte
	for _, c := range chunks {
		binary.BigEndian.PutUint32(word[:], uint32(len(c.Data)))
		buf.Write(word[:])
		buf.WriteString(c.Type)
		buf.Write(c.Data)

		crc := crc32.NewIEEE()
		crc.Write([]byte(c.Type))
		crc.Write(c.Data)
		binary.BigEndian.PutUint32(word[:], crc.Sum32())
		buf.Write(word[:])
	}
	return buf.Bytes()
}
