// Package query builds parameterized PostgreSQL SELECT statements from
// projection maps that translate API field names into qualified columns.
package query

import (
	"strings"
)

// ProjectionMap maps view field names to qualified columns of a base table
// and any joined tables. Field lookups ignore case and underscores, so
// "created_at" and "CreatedAt" name the same field.
type ProjectionMap struct {
	from    string
	alias   string
	current string
	joins   []string
	columns map[string]string
	order   []string
}

func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		from:    schema + "." + table + " " + alias,
		alias:   alias,
		current: alias,
		columns: map[string]string{},
	}
}

// Project maps column of the most recently joined table (or the base table)
// to viewName.
func (p *ProjectionMap) Project(column, viewName string) *ProjectionMap {
	qualified := p.current + "." + column
	p.columns[fieldKey(viewName)] = qualified
	p.order = append(p.order, qualified)
	return p
}

// Join adds "kind schema.table alias ON on". Later Project calls map the
// joined table's columns.
func (p *ProjectionMap) Join(schema, table, alias, kind, on string) *ProjectionMap {
	p.joins = append(p.joins, kind+" "+schema+"."+table+" "+alias+" ON "+on)
	p.current = alias
	return p
}

func (p *ProjectionMap) Alias() string { return p.alias }

// Table returns "schema.table alias" for the base table.
func (p *ProjectionMap) Table() string { return p.from }

// From returns the base table followed by its joins.
func (p *ProjectionMap) From() string {
	if len(p.joins) == 0 {
		return p.from
	}
	return p.from + " " + strings.Join(p.joins, " ")
}

// Column returns the qualified column for viewName, or viewName unchanged
// when it is not projected.
func (p *ProjectionMap) Column(viewName string) string {
	if col, ok := p.Lookup(viewName); ok {
		return col
	}
	return viewName
}

// Lookup reports the qualified column for viewName.
func (p *ProjectionMap) Lookup(viewName string) (string, bool) {
	col, ok := p.columns[fieldKey(viewName)]
	return col, ok
}

// Columns lists every projected column in projection order.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.order, ", ")
}

func fieldKey(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", ""))
}
