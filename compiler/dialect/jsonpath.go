package dialect

import (
	"strconv"
	"strings"

	"github.com/nicia-ai/typegraph-sub002/jsonpointer"
)

// jsonPointerToDotPath renders an RFC 6901 pointer as a dotted/bracket
// path fragment (".a.b" or ".a[2]") for SQLite's json1 path syntax.
// Segments that parse as non-negative integers are treated as array
// indices; everything else is written as an unquoted object key.
func jsonPointerToDotPath(pointer string) string {
	segs, err := jsonpointer.Parse(pointer)
	if err != nil || len(segs) == 0 {
		return ""
	}
	var b strings.Builder
	for _, s := range segs {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 && strconv.Itoa(n) == s {
			b.WriteString("[")
			b.WriteString(s)
			b.WriteString("]")
			continue
		}
		b.WriteString(".")
		b.WriteString(s)
	}
	return b.String()
}

// jsonPointerToPGPathArray renders an RFC 6901 pointer as the
// comma-separated quoted-element form PostgreSQL's #>> and #> operators
// take: '{a,b,2}'.
func jsonPointerToPGPathArray(pointer string) string {
	segs, err := jsonpointer.Parse(pointer)
	if err != nil || len(segs) == 0 {
		return "{}"
	}
	return "{" + strings.Join(segs, ",") + "}"
}
