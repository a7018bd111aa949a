// Package typeq builds SQL statements from typed, schema-aware expressions.
//
// This package re-exports the commonly used entry points of its subpackages
// so simple programs need a single import. Advanced users can import the
// subpackages directly:
//   - github.com/bawdo/typeq/schema (table and column declarations)
//   - github.com/bawdo/typeq/nodes (aliases and typed expressions)
//   - github.com/bawdo/typeq/managers (statement builders and execution)
//   - github.com/bawdo/typeq/dialect (vendor capability descriptors)
//   - github.com/bawdo/typeq/plugins (statement transformers)
package typeq

import (
	"github.com/bawdo/typeq/dialect"
	"github.com/bawdo/typeq/managers"
	"github.com/bawdo/typeq/nodes"
	"github.com/bawdo/typeq/schema"
)

// --- Configuration ---

// Database carries the dialect, naming strategy and type registry every
// statement is rendered with.
type Database = schema.Database

// Dialect describes what a database vendor supports.
type Dialect = dialect.Dialect

// NewDatabase creates a Database; it defaults to the ANSI dialect.
func NewDatabase(opts ...schema.Option) *schema.Database {
	return schema.NewDatabase(opts...)
}

// WithDialect sets the dialect statements are rendered for.
func WithDialect(d dialect.Dialect) schema.Option {
	return schema.WithDialect(d)
}

// Ansi, Postgres, MySQL and SQLite return the built-in dialects.
func Ansi() dialect.Dialect     { return dialect.Ansi() }
func Postgres() dialect.Dialect { return dialect.Postgres() }
func MySQL() dialect.Dialect    { return dialect.MySQL() }
func SQLite() dialect.Dialect   { return dialect.SQLite() }

// --- Aliases and columns ---

// Alias binds the table of row type R under name.
func Alias[R schema.Describer[R]](db *schema.Database, name string) *nodes.TableAlias[R] {
	return nodes.MustAlias[R](db, name)
}

// Col references a column on whichever alias of its row type is in scope.
func Col[R, T any](def *schema.ColumnDef[R, T]) *nodes.Column[T] {
	return nodes.Col(def)
}

// ColOf references a column on a specific alias.
func ColOf[R, T any](alias *nodes.TableAlias[R], def *schema.ColumnDef[R, T]) *nodes.Column[T] {
	return nodes.ColOf(alias, def)
}

// --- Statement builders ---

// SelectManager accumulates the FROM, WHERE, GROUP BY and HAVING clauses
// of a query.
type SelectManager = managers.SelectManager

// Query is a select with a typed projection.
type Query[T any] = managers.Query[T]

// From starts a select over alias.
func From(db *schema.Database, alias nodes.Alias) *managers.SelectManager {
	return managers.From(db, alias)
}

// Select projects a single expression.
func Select[T any](b managers.Builder, e nodes.Expr[T]) *managers.Query[T] {
	return managers.Select(b, e)
}

// Select2 projects two expressions into a tuple.
func Select2[A, B any](b managers.Builder, a nodes.Expr[A], bb nodes.Expr[B]) *managers.Query[nodes.Tuple2[A, B]] {
	return managers.Select2(b, a, bb)
}

// SelectAll projects every column of alias into its row type.
func SelectAll[R any](b managers.Builder, alias *nodes.TableAlias[R]) *managers.Query[R] {
	return managers.SelectAll(b, alias)
}

// Insert builds an insert of rows.
func Insert[R schema.Describer[R]](db *schema.Database, rows ...R) *managers.InsertManager[R] {
	return managers.Insert(db, rows...)
}

// Update builds an update of the table alias is bound to.
func Update[R any](alias *nodes.TableAlias[R]) *managers.UpdateManager[R] {
	return managers.Update(alias)
}

// Delete builds a delete from the table alias is bound to.
func Delete[R any](alias *nodes.TableAlias[R]) *managers.DeleteManager {
	return managers.DeleteFrom(alias)
}

// Merge builds an upsert of row keyed on its primary key.
func Merge[R schema.Describer[R]](db *schema.Database, row R) *managers.MergeManager[R] {
	return managers.Merge(db, row)
}

// --- Conditions ---

// And, Or and Not combine conditions.
func And(first nodes.Expr[bool], rest ...nodes.Expr[bool]) *nodes.Condition {
	return nodes.And(first, rest...)
}

func Or(first nodes.Expr[bool], rest ...nodes.Expr[bool]) *nodes.Condition {
	return nodes.Or(first, rest...)
}

func Not(cond nodes.Expr[bool]) *nodes.Condition {
	return nodes.Not(cond)
}

// Exists tests whether q returns any row.
func Exists(q nodes.Statement) *nodes.Condition {
	return nodes.Exists(q)
}

// --- Aggregates ---

// Count is count(*).
func Count() *nodes.Expression[int64] {
	return nodes.Count()
}

// Sum, Min and Max aggregate expr.
func Sum[T any](expr nodes.Expr[T]) *nodes.Expression[T] { return nodes.Sum(expr) }
func Min[T any](expr nodes.Expr[T]) *nodes.Expression[T] { return nodes.Min(expr) }
func Max[T any](expr nodes.Expr[T]) *nodes.Expression[T] { return nodes.Max(expr) }
