package dialect

import (
	"fmt"
	"strings"
)

// MergeSpec is the vendor-neutral description of an upsert: the target
// table, the key columns that decide between update and insert, and one
// rendered value expression (with its bind arguments) per column.
type MergeSpec struct {
	TargetTable       string
	TargetAlias       string
	SourceAlias       string
	ColumnNames       []string
	IDColumnNames     []string
	InsertColumnNames []string
	UpdateColumnNames []string
	SelectArgsSQL     []string
	SelectArgs        [][]any
}

// valueFor returns the rendered value expression for the named column.
func (s MergeSpec) valueFor(col string) string {
	for i, c := range s.ColumnNames {
		if c == col && i < len(s.SelectArgsSQL) {
			return s.SelectArgsSQL[i]
		}
	}
	panic(fmt.Sprintf("typeq: merge column %s has no value", col))
}

// MergeInfo assembles a vendor's upsert statement.
type MergeInfo interface {
	SupportsUpsert() bool
	MergeSQL(spec MergeSpec) string
	MergeArgs(spec MergeSpec) []any

	// InsertedResult and UpdatedResult are the row counts the vendor reports
	// for the two outcomes of a single-row merge.
	InsertedResult() int64
	UpdatedResult() int64
}

// AnsiMerge renders the SQL:2003 MERGE statement.
type AnsiMerge struct {
	Dialect Dialect
}

func (AnsiMerge) SupportsUpsert() bool  { return true }
func (AnsiMerge) InsertedResult() int64 { return 1 }
func (AnsiMerge) UpdatedResult() int64  { return 1 }

func (m AnsiMerge) MergeSQL(s MergeSpec) string {
	n := min(len(s.ColumnNames), len(s.SelectArgsSQL))
	selects := make([]string, n)
	for i := range n {
		selects[i] = s.SelectArgsSQL[i] + " " + s.ColumnNames[i]
	}
	dual := ""
	if m.Dialect.RequiresFromDual() {
		dual = " from " + m.Dialect.Dual()
	}
	matched := func(c string) string { return s.TargetAlias + "." + c + " = " + s.SourceAlias + "." + c }
	var sb strings.Builder
	fmt.Fprintf(&sb, "merge into %s %s using (select %s%s) %s on (%s)",
		s.TargetTable,
		s.TargetAlias,
		strings.Join(selects, ", "),
		dual,
		s.SourceAlias,
		joinMapped(s.IDColumnNames, " and ", matched))
	if len(s.UpdateColumnNames) > 0 {
		sb.WriteString(" when matched then update set ")
		sb.WriteString(joinMapped(s.UpdateColumnNames, ", ", matched))
	}
	fmt.Fprintf(&sb, " when not matched then insert(%s) values(%s)",
		strings.Join(s.InsertColumnNames, ", "),
		joinMapped(s.InsertColumnNames, ", ", func(c string) string { return s.SourceAlias + "." + c }))
	return sb.String()
}

func (AnsiMerge) MergeArgs(s MergeSpec) []any { return flattenArgs(s.SelectArgs) }

// OnConflictMerge renders insert ... on conflict, as used by PostgreSQL and SQLite.
type OnConflictMerge struct {
	Dialect Dialect
}

func (OnConflictMerge) SupportsUpsert() bool  { return true }
func (OnConflictMerge) InsertedResult() int64 { return 1 }
func (OnConflictMerge) UpdatedResult() int64  { return 1 }

func (OnConflictMerge) MergeSQL(s MergeSpec) string {
	sql := fmt.Sprintf("insert into %s (%s) values (%s) on conflict (%s)",
		s.TargetTable,
		strings.Join(s.InsertColumnNames, ", "),
		joinMapped(s.InsertColumnNames, ", ", s.valueFor),
		strings.Join(s.IDColumnNames, ", "))
	if len(s.UpdateColumnNames) == 0 {
		return sql + " do nothing"
	}
	return sql + " do update set " + joinMapped(s.UpdateColumnNames, ", ", func(c string) string { return c + " = excluded." + c })
}

// MergeArgs returns the arguments of the insert column values in insert order.
func (OnConflictMerge) MergeArgs(s MergeSpec) []any { return insertArgs(s) }

// DuplicateKeyMerge renders MySQL's insert ... on duplicate key update.
type DuplicateKeyMerge struct {
	Dialect Dialect
}

func (DuplicateKeyMerge) SupportsUpsert() bool  { return true }
func (DuplicateKeyMerge) InsertedResult() int64 { return 1 }
func (DuplicateKeyMerge) UpdatedResult() int64  { return 2 }

func (DuplicateKeyMerge) MergeSQL(s MergeSpec) string {
	sql := fmt.Sprintf("insert into %s (%s) values (%s)",
		s.TargetTable,
		strings.Join(s.InsertColumnNames, ", "),
		joinMapped(s.InsertColumnNames, ", ", s.valueFor))
	update := s.UpdateColumnNames
	if len(update) == 0 {
		// a no-op assignment keeps the statement an upsert
		update = s.IDColumnNames[:1]
	}
	return sql + " on duplicate key update " + joinMapped(update, ", ", func(c string) string { return c + " = values(" + c + ")" })
}

func (DuplicateKeyMerge) MergeArgs(s MergeSpec) []any { return insertArgs(s) }

func insertArgs(s MergeSpec) []any {
	var args []any
	for _, col := range s.InsertColumnNames {
		for i, c := range s.ColumnNames {
			if c == col && i < len(s.SelectArgs) {
				args = append(args, s.SelectArgs[i]...)
			}
		}
	}
	return args
}

func flattenArgs(groups [][]any) []any {
	var args []any
	for _, g := range groups {
		args = append(args, g...)
	}
	return args
}

func joinMapped(items []string, sep string, fn func(string) string) string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = fn(s)
	}
	return strings.Join(out, sep)
}
