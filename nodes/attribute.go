package nodes

import (
	"fmt"

	"github.com/bawdo/typeq/datatype"
	"github.com/bawdo/typeq/schema"
)

// ColumnNode is a column reference. It addresses a column either by its
// declaring field (Spec) or directly by name (a table column name, or a
// label exposed by a derived table or CTE). The alias is found in scope at
// render time unless Alias is set.
type ColumnNode struct {
	Spec      schema.Spec
	AliasName string
	Alias     Alias
	Name      string
}

func (n *ColumnNode) Accept(v Visitor) string { return v.VisitColumn(n) }
func (n *ColumnNode) Precedence() Precedence  { return PrecColumn }

// Resolve returns the alias n refers to in s and the SQL name of the column.
func (n *ColumnNode) Resolve(s *Scope) (Alias, string, error) {
	alias, err := n.alias(s)
	if err != nil {
		return nil, "", err
	}
	if n.Spec == nil {
		return alias, n.Name, nil
	}
	col, ok := alias.ColumnByField(n.Spec.Field())
	if !ok {
		return nil, "", fmt.Errorf("%w: %s has no column for %s.%s", ErrNoAlias, alias.Prefix(), n.Spec.RowType(), n.Spec.Field())
	}
	return alias, col.Name, nil
}

func (n *ColumnNode) alias(s *Scope) (Alias, error) {
	switch {
	case n.Alias != nil:
		s.NoteUse(n.Alias)
		return n.Alias, nil
	case n.Spec != nil && n.AliasName != "":
		return s.FindAliasNamed(n.Spec.RowType(), n.AliasName)
	case n.Spec != nil:
		return s.FindAlias(n.Spec.RowType())
	default:
		return s.FindAliasByName(n.AliasName)
	}
}

// Column is a typed column reference.
type Column[T any] struct {
	Predications[T]
	Arithmetics[T]
	node *ColumnNode
}

func newColumn[T any](n *ColumnNode) *Column[T] {
	c := &Column[T]{node: n}
	c.Predications.self = c
	c.Arithmetics.self = c
	return c
}

func (c *Column[T]) Accept(v Visitor) string { return v.VisitColumn(c.node) }
func (c *Column[T]) Precedence() Precedence  { return PrecColumn }

// Node returns the untyped reference.
func (c *Column[T]) Node() *ColumnNode { return c.node }

// Label is prefix_COLUMN for the alias the column resolves to.
func (c *Column[T]) Label(s *Scope) string {
	alias, name, err := c.node.Resolve(s)
	if err != nil {
		Raise(err)
	}
	return alias.ColumnLabel(name)
}

func (c *Column[T]) RowMapper(s *Scope, label string) RowMapper[T] {
	return typedMapper[T](s, label)
}

// Col references def on whichever alias of its row type is in scope.
func Col[R, T any](def *schema.ColumnDef[R, T]) *Column[T] {
	return newColumn[T](&ColumnNode{Spec: def})
}

// ColOf references def on alias.
func ColOf[R, T any](alias *TableAlias[R], def *schema.ColumnDef[R, T]) *Column[T] {
	return newColumn[T](&ColumnNode{Spec: def, Alias: alias})
}

// ColNamed references def on the alias called aliasName, which must be
// bound to def's row type.
func ColNamed[R, T any](aliasName string, def *schema.ColumnDef[R, T]) *Column[T] {
	return newColumn[T](&ColumnNode{Spec: def, AliasName: aliasName})
}

// LabelCol references a column exposed by alias under label, typically a
// projection label of a derived table or CTE.
func LabelCol[T any](alias Alias, label string) *Column[T] {
	return newColumn[T](&ColumnNode{Alias: alias, Name: label})
}

// Named is an untyped reference to column on alias.
func Named(alias Alias, column string) *ColumnNode {
	return &ColumnNode{Alias: alias, Name: column}
}

// typedMapper decodes label with the conversion registered for T.
func typedMapper[T any](s *Scope, label string) RowMapper[T] {
	db := s.Database()
	dt := must(datatype.Of[T](db.Registry()))
	env := db.Env()
	return func(row datatype.Row) (T, error) {
		v, _, err := dt.Get(env, row, label)
		return v, err
	}
}
