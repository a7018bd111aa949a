package nodes

import (
	"database/sql"

	"github.com/bawdo/typeq/datatype"
)

// NullExpr decodes a possibly null expression into sql.Null.
type NullExpr[T any] struct {
	inner Expr[T]
}

// Null makes e null-aware when decoded.
func Null[T any](e Expr[T]) *NullExpr[T] { return &NullExpr[T]{inner: e} }

func (n *NullExpr[T]) Accept(v Visitor) string { return n.inner.Accept(v) }
func (n *NullExpr[T]) Precedence() Precedence  { return n.inner.Precedence() }
func (n *NullExpr[T]) Label(s *Scope) string   { return n.inner.Label(s) }

func (n *NullExpr[T]) RowMapper(s *Scope, label string) RowMapper[sql.Null[T]] {
	db := s.Database()
	dt := must(datatype.Of[T](db.Registry()))
	env := db.Env()
	return func(row datatype.Row) (sql.Null[T], error) {
		v, ok, err := dt.Get(env, row, label)
		return sql.Null[T]{V: v, Valid: ok}, err
	}
}
