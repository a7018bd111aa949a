package nodes

import (
	"reflect"

	"github.com/bawdo/typeq/datatype"
	"github.com/bawdo/typeq/schema"
)

// ProjectionColumn is one entry of a select list: the node rendered, the
// label it is selected as, and the decoder for that label.
type ProjectionColumn struct {
	Node   Node
	label  func(s *Scope) string
	mapper func(s *Scope, label string) RowMapper[any]
	column *schema.Column
	ref    *ColumnNode
}

// Label returns the result label in s.
func (p ProjectionColumn) Label(s *Scope) string { return p.label(s) }

// Mapper returns the decoder reading label from a row.
func (p ProjectionColumn) Mapper(s *Scope, label string) RowMapper[any] {
	return p.mapper(s, label)
}

// Column is the table column projected, nil for computed expressions and
// for typed column references not yet resolved against a scope.
func (p ProjectionColumn) Column() *schema.Column { return p.column }

// RowType is the row type of the projected column, nil for computed
// expressions.
func (p ProjectionColumn) RowType() reflect.Type {
	switch {
	case p.column != nil:
		return p.column.RowType
	case p.ref != nil:
		return p.ref.Spec.RowType()
	}
	return nil
}

// TableColumn returns the projected table column, resolving a typed column
// reference in s.
func (p ProjectionColumn) TableColumn(s *Scope) (*schema.Column, bool) {
	if p.column != nil {
		return p.column, true
	}
	if p.ref == nil {
		return nil, false
	}
	alias, _, err := p.ref.Resolve(s)
	if err != nil {
		return nil, false
	}
	return alias.ColumnByField(p.ref.Spec.Field())
}

// Project makes e a projection column. An empty label uses e's own.
func Project[T any](e Expr[T], label string) ProjectionColumn {
	var ref *ColumnNode
	if c, ok := e.(*Column[T]); ok && c.node.Spec != nil {
		ref = c.node
	}
	return ProjectionColumn{
		ref:  ref,
		Node: e,
		label: func(s *Scope) string {
			if label != "" {
				return label
			}
			return e.Label(s)
		},
		mapper: func(s *Scope, label string) RowMapper[any] {
			m := e.RowMapper(s, label)
			return func(row datatype.Row) (any, error) { return m(row) }
		},
	}
}

// Projection is the select list of a statement.
type Projection struct {
	Columns  []ProjectionColumn
	Distinct bool
}

// Labels returns the label of every column, in order.
func (p *Projection) Labels(s *Scope) []string {
	out := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		out[i] = c.Label(s)
	}
	return out
}

// Decoder composes the column decoders into one that returns the values in
// declared order.
func (p *Projection) Decoder(s *Scope) RowMapper[[]any] {
	labels := p.Labels(s)
	mappers := make([]RowMapper[any], len(p.Columns))
	for i, c := range p.Columns {
		mappers[i] = c.Mapper(s, labels[i])
	}
	return func(row datatype.Row) ([]any, error) {
		out := make([]any, len(mappers))
		for i, m := range mappers {
			v, err := m(row)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
}

// Labelled is an expression selected under a fixed label.
type Labelled[T any] struct {
	Expr[T]
	label string
}

// As fixes the label e is selected as.
func As[T any](e Expr[T], label string) *Labelled[T] {
	return &Labelled[T]{Expr: e, label: label}
}

func (l *Labelled[T]) Label(*Scope) string { return l.label }
