// Package cursor implements the opaque pagination token of spec.md §6:
// a version-tagged, base64-encoded token carrying the ordered values
// and column names a keyset-pagination continuation needs, plus the
// scan direction. Grounded on the teacher's own opaque-id encoding
// idiom (version-tagged JSON envelope, base64, explicit decode
// validation) before `compiler/gen/sql/globalid.go` was trimmed as
// unadapted teacher code; the shape of this package follows that idiom
// rather than any surviving file.
package cursor

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/nicia-ai/typegraph-sub002"
)

// Direction is the scan direction a cursor continues in.
type Direction string

const (
	// Forward continues a scan after the cursor's row.
	Forward Direction = "f"
	// Backward continues a scan before the cursor's row.
	Backward Direction = "b"
)

// version is the only envelope version this package currently emits
// or accepts. Decode rejects any other value per spec.md §6.
const version = 1

// envelope is the literal wire shape from spec.md §6:
// {v:1, d:"f"|"b", vals:[...], cols:[...]}.
type envelope struct {
	V    int      `json:"v"`
	D    string   `json:"d"`
	Vals []any    `json:"vals"`
	Cols []string `json:"cols"`
}

// Cursor is a decoded pagination token: the ordered column names and
// values of the last-seen row's ORDER BY terms, plus the direction to
// continue scanning in.
type Cursor struct {
	Direction Direction
	Columns   []string
	Values    []any
}

// Encode serializes c as the URL-safe base64 envelope spec.md §6
// defines. The columns and values slices must be the same length and
// in ORDER BY term order; Encode returns a ValidationError when the
// lengths differ and does not check the order.
func Encode(c Cursor) (string, error) {
	if len(c.Columns) != len(c.Values) {
		return "", typegraph.NewValidationError("cursor",
			fmt.Sprintf("columns/values length mismatch (%d cols, %d vals)", len(c.Columns), len(c.Values)),
		)
	}

	env := envelope{V: version, D: string(c.Direction), Vals: c.Values, Cols: c.Columns}
	data, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("cursor: marshal: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Decode parses token back into a Cursor, rejecting an unknown
// envelope version, an unknown direction, or a vals/cols length
// mismatch, per spec.md §6.
func Decode(token string) (Cursor, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, typegraph.NewValidationError("cursor", "malformed base64: "+err.Error())
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Cursor{}, typegraph.NewValidationError("cursor", "malformed envelope: "+err.Error())
	}

	if env.V != version {
		return Cursor{}, typegraph.NewValidationError("cursor", fmt.Sprintf("unsupported version %d", env.V))
	}

	var dir Direction
	switch Direction(env.D) {
	case Forward:
		dir = Forward
	case Backward:
		dir = Backward
	default:
		return Cursor{}, typegraph.NewValidationError("cursor", fmt.Sprintf("unknown direction %q", env.D))
	}

	if len(env.Vals) != len(env.Cols) {
		return Cursor{}, typegraph.NewValidationError("cursor",
			fmt.Sprintf("vals/cols length mismatch (%d vals, %d cols)", len(env.Vals), len(env.Cols)),
		)
	}

	return Cursor{Direction: dir, Columns: env.Cols, Values: env.Vals}, nil
}
