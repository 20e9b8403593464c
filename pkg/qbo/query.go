package qbo

import (
	"fmt"
	"strings"
)

// QueryBuilder assembles a query statement for one entity type. The zero
// value is not usable; start from NewQuery.
type QueryBuilder struct {
	entity     string
	conditions []string
	orderBy    string
	startPos   int
	maxResults int
}

// NewQuery starts a statement selecting every column of the named entity.
func NewQuery(entityName string) *QueryBuilder {
	return &QueryBuilder{entity: entityName}
}

// Where adds a condition combined with AND. The value is quoted and escaped;
// callers pass it raw.
func (q *QueryBuilder) Where(field, operator, value string) *QueryBuilder {
	q.conditions = append(q.conditions, fmt.Sprintf("%s %s '%s'", field, operator, EscapeQueryValue(value)))

	return q
}

// WhereRaw adds a condition verbatim, for operators like IN or boolean
// comparisons that do not take a quoted string.
func (q *QueryBuilder) WhereRaw(condition string) *QueryBuilder {
	q.conditions = append(q.conditions, condition)

	return q
}

// OrderBy sets the ordering clause, e.g. "MetaData.LastUpdatedTime DESC".
func (q *QueryBuilder) OrderBy(clause string) *QueryBuilder {
	q.orderBy = clause

	return q
}

// StartPosition sets the 1-based pagination offset.
func (q *QueryBuilder) StartPosition(position int) *QueryBuilder {
	q.startPos = position

	return q
}

// MaxResults caps the number of rows returned.
func (q *QueryBuilder) MaxResults(limit int) *QueryBuilder {
	q.maxResults = limit

	return q
}

// Build renders the statement.
func (q *QueryBuilder) Build() string {
	var sb strings.Builder

	sb.WriteString("select * from ")
	sb.WriteString(q.entity)

	if len(q.conditions) > 0 {
		sb.WriteString(" where ")
		sb.WriteString(strings.Join(q.conditions, " and "))
	}

	if q.orderBy != "" {
		sb.WriteString(" orderby ")
		sb.WriteString(q.orderBy)
	}

	if q.startPos > 0 {
		fmt.Fprintf(&sb, " STARTPOSITION %d", q.startPos)
	}

	if q.maxResults > 0 {
		fmt.Fprintf(&sb, " MAXRESULTS %d", q.maxResults)
	}

	return sb.String()
}

// EscapeQueryValue backslash-escapes single quotes so a value cannot
// terminate the string literal it is embedded in.
func EscapeQueryValue(value string) string {
	return strings.ReplaceAll(value, "'", "\\'")
}
