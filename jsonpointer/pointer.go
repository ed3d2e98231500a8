// Package jsonpointer implements RFC 6901 JSON Pointer encode/decode/join
// with a depth cap, used to address opaque JSON props on node and edge
// rows.
package jsonpointer

import (
	"strconv"
	"strings"

	"github.com/nicia-ai/typegraph-sub002"
)

// MaxDepth is the default cap on the number of segments a pointer may
// carry. spec.md §4.C suggests 32; exceeding it is a validation error
// rather than a silent truncation.
const MaxDepth = 32

// Encode escapes a single raw segment per RFC 6901: '~' becomes "~0" and
// '/' becomes "~1". '~' must be escaped first: escaping '/' first would
// let the following '~' pass turn each "~1" into "~01".
func Encode(segment string) string {
	if !strings.ContainsAny(segment, "~/") {
		return segment
	}
	segment = strings.ReplaceAll(segment, "~", "~0")
	segment = strings.ReplaceAll(segment, "/", "~1")
	return segment
}

// decode reverses Encode for a single segment. Order matters: "~1" must
// be decoded to '/' before "~0" is decoded to '~', otherwise the string
// "~01" (escaped '~' followed by a literal '1') would incorrectly
// produce '/' instead of "~1". A single left-to-right pass avoids the
// hazard entirely.
func decode(segment string) string {
	if !strings.Contains(segment, "~") {
		return segment
	}
	var b strings.Builder
	b.Grow(len(segment))
	for i := 0; i < len(segment); i++ {
		if segment[i] == '~' && i+1 < len(segment) {
			switch segment[i+1] {
			case '0':
				b.WriteByte('~')
				i++
				continue
			case '1':
				b.WriteByte('/')
				i++
				continue
			}
		}
		b.WriteByte(segment[i])
	}
	return b.String()
}

// Segment is one element of a parsed pointer path. Array indices parsed
// from input are recorded as their decimal string form, matching
// jsonPointer's string-normalization behavior (numbers normalize to
// their decimal string).
type Segment = string

// New builds a JSON Pointer string from raw (unescaped) segments.
// New(nil) and New([]string{}) both return "" per spec.md ("jsonPointer([]) = ").
func New(segments []Segment) (string, error) {
	if len(segments) == 0 {
		return "", nil
	}
	if len(segments) > MaxDepth {
		return "", typegraph.NewValidationError("pointer", "exceeds max depth "+strconv.Itoa(MaxDepth))
	}
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(Encode(s))
	}
	return b.String(), nil
}

// Parse splits a JSON Pointer string into its raw (unescaped) segments.
// "" parses to an empty slice. A pointer that does not start with '/'
// (other than "") is a validation error, as is one exceeding MaxDepth.
func Parse(pointer string) ([]Segment, error) {
	if pointer == "" {
		return nil, nil
	}
	if pointer[0] != '/' {
		return nil, typegraph.NewValidationError("pointer", "must start with '/' or be empty")
	}
	parts := strings.Split(pointer[1:], "/")
	if len(parts) > MaxDepth {
		return nil, typegraph.NewValidationError("pointer", "exceeds max depth "+strconv.Itoa(MaxDepth))
	}
	out := make([]Segment, len(parts))
	for i, p := range parts {
		out[i] = decode(p)
	}
	return out, nil
}

// Normalize re-encodes pointer through Parse+New, canonicalizing any
// encoding redundancy. It is idempotent: Normalize(Normalize(p)) == Normalize(p).
func Normalize(pointer string) (string, error) {
	segs, err := Parse(pointer)
	if err != nil {
		return "", err
	}
	return New(segs)
}

// Join concatenates the encoded forms of two pointers. Join is
// associative within the depth cap: Join(Join(a,b),c) == Join(a,Join(b,c)).
func Join(pointers ...string) (string, error) {
	var segs []Segment
	for _, p := range pointers {
		s, err := Parse(p)
		if err != nil {
			return "", err
		}
		segs = append(segs, s...)
	}
	return New(segs)
}

// Depth returns the number of segments in pointer.
func Depth(pointer string) (int, error) {
	segs, err := Parse(pointer)
	if err != nil {
		return 0, err
	}
	return len(segs), nil
}
