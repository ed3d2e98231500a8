package dialect

import "fmt"

// postgresAdapter targets PostgreSQL's jsonb operators and pgvector's
// distance operators.
type postgresAdapter struct{}

func (postgresAdapter) Name() Name { return Postgres }

func (postgresAdapter) SetOperationStrategy() SetOperationStrategy { return StandardParenthesized }

func (postgresAdapter) QuoteIdentifier(name string) string {
	return `"` + name + `"`
}

func (postgresAdapter) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func (postgresAdapter) JSONExtractText(column, pointer string) string {
	return fmt.Sprintf("%s #>> '%s'", column, jsonPointerToPGPathArray(pointer))
}

func (postgresAdapter) JSONExtractNumber(column, pointer string) string {
	return fmt.Sprintf("(%s #>> '%s')::numeric", column, jsonPointerToPGPathArray(pointer))
}

func (postgresAdapter) JSONExtractBoolean(column, pointer string) string {
	return fmt.Sprintf("(%s #>> '%s')::boolean", column, jsonPointerToPGPathArray(pointer))
}

func (postgresAdapter) JSONArrayLength(column, pointer string) string {
	return fmt.Sprintf("jsonb_array_length(%s #> '%s')", column, jsonPointerToPGPathArray(pointer))
}

func (postgresAdapter) JSONEach(column, pointer string) string {
	return fmt.Sprintf("jsonb_array_elements(%s #> '%s')", column, jsonPointerToPGPathArray(pointer))
}

func (postgresAdapter) JSONType(column, pointer string) string {
	return fmt.Sprintf("jsonb_typeof(%s #> '%s')", column, jsonPointerToPGPathArray(pointer))
}

func (postgresAdapter) VectorDistance(column, embeddingPlaceholder string, metric VectorMetric) string {
	switch metric {
	case MetricL2:
		return fmt.Sprintf("%s <-> %s", column, embeddingPlaceholder)
	case MetricInnerProduct:
		return fmt.Sprintf("(%s <#> %s) * -1", column, embeddingPlaceholder)
	default:
		return fmt.Sprintf("%s <=> %s", column, embeddingPlaceholder)
	}
}

func (postgresAdapter) CurrentTimestamp() string {
	return "(now() AT TIME ZONE 'utc')"
}

func (postgresAdapter) CaseInsensitiveEquals(left, right string) string {
	return fmt.Sprintf("%s ILIKE %s", left, right)
}

func (postgresAdapter) ILike(column, patternPlaceholder string) string {
	return fmt.Sprintf("%s ILIKE %s", column, patternPlaceholder)
}

// RecursiveCycleGuard uses an ARRAY path and != ALL, per spec.md §4.H.
func (postgresAdapter) RecursiveCycleGuard(idColumn, pathColumn string) string {
	return fmt.Sprintf("%s != ALL(%s)", idColumn, pathColumn)
}

func (postgresAdapter) RecursivePathAppend(idColumn, pathColumn string) string {
	return fmt.Sprintf("%s || %s", pathColumn, idColumn)
}

func (postgresAdapter) RecursivePathInit(idColumn string) string {
	return fmt.Sprintf("ARRAY[%s]", idColumn)
}
