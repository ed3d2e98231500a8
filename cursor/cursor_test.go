package cursor_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicia-ai/typegraph-sub002"
	"github.com/nicia-ai/typegraph-sub002/cursor"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c := cursor.Cursor{
		Direction: cursor.Forward,
		Columns:   []string{"created_at", "id"},
		Values:    []any{"2024-01-01T00:00:00Z", float64(42)},
	}

	token, err := cursor.Encode(c)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	decoded, err := cursor.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, c, decoded)
}

func TestEncodeRejectsLengthMismatch(t *testing.T) {
	_, err := cursor.Encode(cursor.Cursor{
		Direction: cursor.Forward,
		Columns:   []string{"id"},
		Values:    []any{1, 2},
	})
	require.Error(t, err)
	assert.True(t, typegraph.IsValidationError(err))
}

func TestDecodeRejectsMalformedBase64(t *testing.T) {
	_, err := cursor.Decode("not-valid-base64!!!")
	require.Error(t, err)
	assert.True(t, typegraph.IsValidationError(err))
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	token := mustEncodeRaw(t, `{"v":2,"d":"f","vals":[1],"cols":["id"]}`)
	_, err := cursor.Decode(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported version")
}

func TestDecodeRejectsUnknownDirection(t *testing.T) {
	token := mustEncodeRaw(t, `{"v":1,"d":"sideways","vals":[1],"cols":["id"]}`)
	_, err := cursor.Decode(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown direction")
}

func TestDecodeRejectsLengthMismatch(t *testing.T) {
	token := mustEncodeRaw(t, `{"v":1,"d":"f","vals":[1,2],"cols":["id"]}`)
	_, err := cursor.Decode(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "length mismatch")
}

func mustEncodeRaw(t *testing.T, json string) string {
	t.Helper()
	return base64.RawURLEncoding.EncodeToString([]byte(json))
}
