package dialect

import "fmt"

// sqliteAdapter targets SQLite's json1 extension and the sqlite-vec
// extension's vec_distance_* scalar functions.
type sqliteAdapter struct{}

func (sqliteAdapter) Name() Name { return SQLite }

func (sqliteAdapter) SetOperationStrategy() SetOperationStrategy { return SQLiteCompound }

func (sqliteAdapter) QuoteIdentifier(name string) string {
	return `"` + name + `"`
}

func (sqliteAdapter) Placeholder(int) string { return "?" }

func (sqliteAdapter) JSONExtractText(column, pointer string) string {
	return fmt.Sprintf("json_extract(%s, '%s')", column, toSQLitePath(pointer))
}

func (sqliteAdapter) JSONExtractNumber(column, pointer string) string {
	return fmt.Sprintf("CAST(json_extract(%s, '%s') AS REAL)", column, toSQLitePath(pointer))
}

func (sqliteAdapter) JSONExtractBoolean(column, pointer string) string {
	return fmt.Sprintf("json_extract(%s, '%s')", column, toSQLitePath(pointer))
}

func (sqliteAdapter) JSONArrayLength(column, pointer string) string {
	return fmt.Sprintf("json_array_length(%s, '%s')", column, toSQLitePath(pointer))
}

func (sqliteAdapter) JSONEach(column, pointer string) string {
	return fmt.Sprintf("json_each(%s, '%s')", column, toSQLitePath(pointer))
}

func (sqliteAdapter) JSONType(column, pointer string) string {
	return fmt.Sprintf("json_type(%s, '%s')", column, toSQLitePath(pointer))
}

func (sqliteAdapter) VectorDistance(column, embeddingPlaceholder string, metric VectorMetric) string {
	switch metric {
	case MetricL2:
		return fmt.Sprintf("vec_distance_l2(%s, %s)", column, embeddingPlaceholder)
	case MetricInnerProduct:
		return fmt.Sprintf("-vec_distance_dot(%s, %s)", column, embeddingPlaceholder)
	default:
		return fmt.Sprintf("vec_distance_cosine(%s, %s)", column, embeddingPlaceholder)
	}
}

func (sqliteAdapter) CurrentTimestamp() string {
	return "strftime('%Y-%m-%dT%H:%M:%fZ', 'now')"
}

// CaseInsensitiveEquals lowers both sides: SQLite's LIKE is already
// ASCII-case-insensitive but = is not, and there is no native ILIKE.
func (sqliteAdapter) CaseInsensitiveEquals(left, right string) string {
	return fmt.Sprintf("LOWER(%s) = LOWER(%s)", left, right)
}

func (sqliteAdapter) ILike(column, patternPlaceholder string) string {
	return fmt.Sprintf("LOWER(%s) LIKE LOWER(%s)", column, patternPlaceholder)
}

// RecursiveCycleGuard uses INSTR on a string path, per spec.md §4.H.
func (sqliteAdapter) RecursiveCycleGuard(idColumn, pathColumn string) string {
	return fmt.Sprintf("INSTR(%s, %s) = 0", pathColumn, idColumn)
}

func (sqliteAdapter) RecursivePathAppend(idColumn, pathColumn string) string {
	return fmt.Sprintf("%s || ',' || %s", pathColumn, idColumn)
}

func (sqliteAdapter) RecursivePathInit(idColumn string) string {
	return idColumn
}

// toSQLitePath renders an RFC 6901 pointer as a SQLite json1 path
// expression ($.a.b or $.a[2]). Numeric segments become array indices;
// everything else is a dotted key, matching the json1 extension's own
// path syntax rather than json_extract's alternate bracket form.
func toSQLitePath(pointer string) string {
	if pointer == "" {
		return "$"
	}
	return "$" + jsonPointerToDotPath(pointer)
}
