// Package query builds the union-across-resolutions SQL the planner emits,
// per spec section 4.3 and 4.4.
package query

import (
	"strings"

	"github.com/ukis-h3cellstore/h3cellstore/errs"
)

// Placeholder literals substituted into a TemplatedSelect body, per spec
// section 6.
const (
	PlaceholderTable     = "<[table]>"
	PlaceholderH3Indexes = "<[h3indexes]>"
)

// Template is the sum type from spec section 3: either AutoGenerated or a
// TemplatedSelect carrying a user-provided SQL string with placeholders.
type Template struct {
	templated bool
	sql       string
}

// AutoGenerated returns a Template whose SQL is generated by the planner
// itself. It is always valid.
func AutoGenerated() Template {
	return Template{}
}

// TemplatedSelect returns a Template whose SQL is the given string, with
// PlaceholderTable and PlaceholderH3Indexes substituted at plan time.
func TemplatedSelect(sql string) Template {
	return Template{templated: true, sql: sql}
}

// IsTemplated reports whether this is a TemplatedSelect.
func (t Template) IsTemplated() bool {
	return t.templated
}

// Validate checks the placeholder contract: a TemplatedSelect must contain
// both placeholders. AutoGenerated is always valid.
func (t Template) Validate() error {
	if !t.templated {
		return nil
	}
	if !strings.Contains(t.sql, PlaceholderTable) {
		return errs.Newf(errs.MissingQueryPlaceholder, "%s", PlaceholderTable)
	}
	if !strings.Contains(t.sql, PlaceholderH3Indexes) {
		return errs.Newf(errs.MissingQueryPlaceholder, "%s", PlaceholderH3Indexes)
	}
	return nil
}

// render substitutes the placeholders for a single per-resolution SELECT.
// table is the table name; indexes is the cell-list literal
// (spec section 6: "[v1,v2,...,vn]").
func (t Template) render(table, indexes string) string {
	return t.RenderForTable(table, indexes)
}

// RenderForTable substitutes the table and h3indexes placeholders for an
// AutoGenerated Template's equivalent hand-rolled SQL is meaningless, so
// this only does something useful for a TemplatedSelect; it is exported so
// callers outside the planner (the sliding window's prefetch query, which
// renders a single-cell "window" ahead of planning the real query) can
// reuse the same substitution rule.
func (t Template) RenderForTable(table, indexes string) string {
	s := t.sql
	s = strings.ReplaceAll(s, PlaceholderTable, table)
	s = strings.ReplaceAll(s, PlaceholderH3Indexes, indexes)
	return s
}
