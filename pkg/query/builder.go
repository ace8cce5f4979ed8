package query

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// SortField is one ORDER BY term. Field is a projected view name.
type SortField struct {
	Field      string
	Descending bool
}

// ParseSortFields parses a comma-separated sort string such as
// "Status,-CreatedAt". A leading "-" sorts descending. Blank parts are skipped.
func ParseSortFields(s string) []SortField {
	var fields []SortField
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		name, desc := strings.CutPrefix(part, "-")
		if name == "" {
			continue
		}
		fields = append(fields, SortField{Field: name, Descending: desc})
	}
	return fields
}

const likeClause = ` ILIKE ? ESCAPE '\'`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern wraps s for a substring ILIKE. Wildcards in s match
// literally.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// predicate is a WHERE fragment written with "?" placeholders. Rendering
// swaps each "?" for the next positional parameter.
type predicate struct {
	sql  string
	args []any
}

// Builder assembles SELECT statements over a ProjectionMap. Conditions are
// joined with AND and numbered in the order they were added.
type Builder struct {
	projection *ProjectionMap
	where      []predicate
	sort       []SortField
	fallback   []SortField
	limit      int
	lock       bool
}

// NewBuilder creates a Builder. defaultSort applies when OrderByFields is not
// called or receives no fields.
func NewBuilder(projection *ProjectionMap, defaultSort ...SortField) *Builder {
	return &Builder{projection: projection, fallback: defaultSort}
}

// WhereEquals adds "field = value". Nil values and nil pointers are skipped,
// which lets optional filters pass straight through.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	if isNil(value) {
		return b
	}
	return b.add(b.projection.Column(field)+" = ?", value)
}

// WhereContains adds a case-insensitive substring match. Empty values are skipped.
func (b *Builder) WhereContains(field string, value *string) *Builder {
	if value == nil || *value == "" {
		return b
	}
	return b.add(b.projection.Column(field)+likeClause, containsPattern(*value))
}

// WhereSearch matches search against any of fields, case-insensitively.
func (b *Builder) WhereSearch(search *string, fields ...string) *Builder {
	if search == nil || *search == "" || len(fields) == 0 {
		return b
	}

	pattern := containsPattern(*search)
	terms := make([]string, len(fields))
	args := make([]any, len(fields))
	for i, f := range fields {
		terms[i] = b.projection.Column(f) + likeClause
		args[i] = pattern
	}
	return b.add("("+strings.Join(terms, " OR ")+")", args...)
}

// WhereIn adds "field IN (...)". An empty set is skipped.
func (b *Builder) WhereIn(field string, values []any) *Builder {
	if len(values) == 0 {
		return b
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
	return b.add(b.projection.Column(field)+" IN ("+marks+")", values...)
}

// OrderByFields replaces the default sort. Fields the projection does not
// know are ignored; if none are known the default sort applies.
func (b *Builder) OrderByFields(fields []SortField) *Builder {
	b.sort = fields
	return b
}

// Limit caps the rows returned by Build.
func (b *Builder) Limit(n int) *Builder {
	b.limit = n
	return b
}

// ForUpdate row-locks the selected rows of the base table until the
// surrounding transaction ends.
func (b *Builder) ForUpdate() *Builder {
	b.lock = true
	return b
}

// Build renders the SELECT with conditions, ordering, limit and lock.
func (b *Builder) Build() (string, []any) {
	var sb strings.Builder
	args := b.selectClause(&sb)
	b.orderClause(&sb)
	if b.limit > 0 {
		sb.WriteString(" LIMIT " + strconv.Itoa(b.limit))
	}
	if b.lock {
		sb.WriteString(" FOR UPDATE OF " + b.projection.Alias())
	}
	return sb.String(), args
}

// BuildPage renders the SELECT for one page. page is 1-based.
func (b *Builder) BuildPage(page, pageSize int) (string, []any) {
	var sb strings.Builder
	args := b.selectClause(&sb)
	b.orderClause(&sb)
	fmt.Fprintf(&sb, " LIMIT %d OFFSET %d", pageSize, (page-1)*pageSize)
	return sb.String(), args
}

// BuildCount renders a COUNT(*) over the current conditions.
func (b *Builder) BuildCount() (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT COUNT(*) FROM " + b.projection.From())
	args := b.whereClause(&sb)
	return sb.String(), args
}

// BuildSingle renders a lookup of one row by its key field. Conditions
// already on the builder are ignored.
func (b *Builder) BuildSingle(keyField string, key any) (string, []any) {
	single := &Builder{projection: b.projection, lock: b.lock}
	return single.WhereEquals(keyField, key).Build()
}

func (b *Builder) add(sql string, args ...any) *Builder {
	b.where = append(b.where, predicate{sql: sql, args: args})
	return b
}

func (b *Builder) selectClause(sb *strings.Builder) []any {
	sb.WriteString("SELECT " + b.projection.Columns() + " FROM " + b.projection.From())
	return b.whereClause(sb)
}

func (b *Builder) whereClause(sb *strings.Builder) []any {
	if len(b.where) == 0 {
		return nil
	}

	var args []any
	sb.WriteString(" WHERE ")
	for i, p := range b.where {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		next := 0
		for _, r := range p.sql {
			if r != '?' {
				sb.WriteRune(r)
				continue
			}
			args = append(args, p.args[next])
			next++
			sb.WriteString("$" + strconv.Itoa(len(args)))
		}
	}
	return args
}

func (b *Builder) orderClause(sb *strings.Builder) {
	terms := b.sortTerms(b.sort)
	if len(terms) == 0 {
		terms = b.sortTerms(b.fallback)
	}
	if len(terms) > 0 {
		sb.WriteString(" ORDER BY " + strings.Join(terms, ", "))
	}
}

// sortTerms renders the projected fields of sort. Unknown fields are dropped
// so caller-supplied sort strings never reach the SQL text.
func (b *Builder) sortTerms(sort []SortField) []string {
	var terms []string
	for _, f := range sort {
		col, ok := b.projection.Lookup(f.Field)
		if !ok {
			continue
		}
		if f.Descending {
			terms = append(terms, col+" DESC")
		} else {
			terms = append(terms, col+" ASC")
		}
	}
	return terms
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	switch v := reflect.ValueOf(value); v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}
