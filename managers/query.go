package managers

import (
	"context"
	"fmt"

	"github.com/bawdo/typeq/datatype"
	"github.com/bawdo/typeq/executor"
	"github.com/bawdo/typeq/nodes"
	"github.com/bawdo/typeq/plugins"
)

// Query is a select with a chosen projection whose rows decode to T.
// It is itself a Statement, so it can be nested as a subquery, derived
// table or CTE.
type Query[T any] struct {
	m      *SelectManager
	core   *nodes.SelectCore
	decode func(s *nodes.Scope, labels []string) nodes.RowMapper[T]
}

func newQuery[T any](b Builder, cols []nodes.ProjectionColumn, decode func(*nodes.Scope, []string) nodes.RowMapper[T]) *Query[T] {
	m := b.selectManager()
	core := m.core.Clone()
	core.Projection = &nodes.Projection{Columns: cols, Distinct: m.distinct}
	return &Query[T]{m: m, core: core, decode: decode}
}

// Select projects a single expression.
func Select[T any](b Builder, e nodes.Expr[T]) *Query[T] {
	return newQuery(b, []nodes.ProjectionColumn{nodes.Project(e, "")},
		func(s *nodes.Scope, labels []string) nodes.RowMapper[T] {
			return e.RowMapper(s, labels[0])
		})
}

// Select2 projects two expressions into a Tuple2.
func Select2[A, B any](b Builder, a nodes.Expr[A], bb nodes.Expr[B]) *Query[nodes.Tuple2[A, B]] {
	cols := []nodes.ProjectionColumn{nodes.Project(a, ""), nodes.Project(bb, "")}
	return newQuery(b, cols, func(s *nodes.Scope, labels []string) nodes.RowMapper[nodes.Tuple2[A, B]] {
		ma, mb := a.RowMapper(s, labels[0]), bb.RowMapper(s, labels[1])
		return func(row datatype.Row) (t nodes.Tuple2[A, B], err error) {
			if t.V1, err = ma(row); err != nil {
				return t, err
			}
			t.V2, err = mb(row)
			return t, err
		}
	})
}

// Select3 projects three expressions into a Tuple3.
func Select3[A, B, C any](b Builder, a nodes.Expr[A], bb nodes.Expr[B], c nodes.Expr[C]) *Query[nodes.Tuple3[A, B, C]] {
	cols := []nodes.ProjectionColumn{nodes.Project(a, ""), nodes.Project(bb, ""), nodes.Project(c, "")}
	return newQuery(b, cols, func(s *nodes.Scope, labels []string) nodes.RowMapper[nodes.Tuple3[A, B, C]] {
		ma, mb, mc := a.RowMapper(s, labels[0]), bb.RowMapper(s, labels[1]), c.RowMapper(s, labels[2])
		return func(row datatype.Row) (t nodes.Tuple3[A, B, C], err error) {
			if t.V1, err = ma(row); err != nil {
				return t, err
			}
			if t.V2, err = mb(row); err != nil {
				return t, err
			}
			t.V3, err = mc(row)
			return t, err
		}
	})
}

// Select4 projects four expressions into a Tuple4.
func Select4[A, B, C, D any](b Builder, a nodes.Expr[A], bb nodes.Expr[B], c nodes.Expr[C], d nodes.Expr[D]) *Query[nodes.Tuple4[A, B, C, D]] {
	cols := []nodes.ProjectionColumn{nodes.Project(a, ""), nodes.Project(bb, ""), nodes.Project(c, ""), nodes.Project(d, "")}
	return newQuery(b, cols, func(s *nodes.Scope, labels []string) nodes.RowMapper[nodes.Tuple4[A, B, C, D]] {
		ma, mb := a.RowMapper(s, labels[0]), bb.RowMapper(s, labels[1])
		mc, md := c.RowMapper(s, labels[2]), d.RowMapper(s, labels[3])
		return func(row datatype.Row) (t nodes.Tuple4[A, B, C, D], err error) {
			if t.V1, err = ma(row); err != nil {
				return t, err
			}
			if t.V2, err = mb(row); err != nil {
				return t, err
			}
			if t.V3, err = mc(row); err != nil {
				return t, err
			}
			t.V4, err = md(row)
			return t, err
		}
	})
}

// Select5 projects five expressions into a Tuple5.
func Select5[A, B, C, D, E any](b Builder, a nodes.Expr[A], bb nodes.Expr[B], c nodes.Expr[C], d nodes.Expr[D], e nodes.Expr[E]) *Query[nodes.Tuple5[A, B, C, D, E]] {
	cols := []nodes.ProjectionColumn{nodes.Project(a, ""), nodes.Project(bb, ""), nodes.Project(c, ""), nodes.Project(d, ""), nodes.Project(e, "")}
	return newQuery(b, cols, func(s *nodes.Scope, labels []string) nodes.RowMapper[nodes.Tuple5[A, B, C, D, E]] {
		ma, mb := a.RowMapper(s, labels[0]), bb.RowMapper(s, labels[1])
		mc, md, me := c.RowMapper(s, labels[2]), d.RowMapper(s, labels[3]), e.RowMapper(s, labels[4])
		return func(row datatype.Row) (t nodes.Tuple5[A, B, C, D, E], err error) {
			if t.V1, err = ma(row); err != nil {
				return t, err
			}
			if t.V2, err = mb(row); err != nil {
				return t, err
			}
			if t.V3, err = mc(row); err != nil {
				return t, err
			}
			if t.V4, err = md(row); err != nil {
				return t, err
			}
			t.V5, err = me(row)
			return t, err
		}
	})
}

// Select6 projects six expressions into a Tuple6.
func Select6[A, B, C, D, E, F any](b Builder, a nodes.Expr[A], bb nodes.Expr[B], c nodes.Expr[C], d nodes.Expr[D], e nodes.Expr[E], f nodes.Expr[F]) *Query[nodes.Tuple6[A, B, C, D, E, F]] {
	cols := []nodes.ProjectionColumn{
		nodes.Project(a, ""), nodes.Project(bb, ""), nodes.Project(c, ""),
		nodes.Project(d, ""), nodes.Project(e, ""), nodes.Project(f, ""),
	}
	return newQuery(b, cols, func(s *nodes.Scope, labels []string) nodes.RowMapper[nodes.Tuple6[A, B, C, D, E, F]] {
		ma, mb, mc := a.RowMapper(s, labels[0]), bb.RowMapper(s, labels[1]), c.RowMapper(s, labels[2])
		md, me, mf := d.RowMapper(s, labels[3]), e.RowMapper(s, labels[4]), f.RowMapper(s, labels[5])
		return func(row datatype.Row) (t nodes.Tuple6[A, B, C, D, E, F], err error) {
			if t.V1, err = ma(row); err != nil {
				return t, err
			}
			if t.V2, err = mb(row); err != nil {
				return t, err
			}
			if t.V3, err = mc(row); err != nil {
				return t, err
			}
			if t.V4, err = md(row); err != nil {
				return t, err
			}
			if t.V5, err = me(row); err != nil {
				return t, err
			}
			t.V6, err = mf(row)
			return t, err
		}
	})
}

// SelectRow projects any number of columns, decoded in order into Values.
func SelectRow(b Builder, cols ...nodes.ProjectionColumn) *Query[nodes.Values] {
	if len(cols) == 0 {
		panic("typeq: SelectRow needs at least one column")
	}
	q := newQuery[nodes.Values](b, cols, nil)
	q.decode = func(s *nodes.Scope, _ []string) nodes.RowMapper[nodes.Values] {
		dec := q.core.Projection.Decoder(s)
		return func(row datatype.Row) (nodes.Values, error) {
			vals, err := dec(row)
			return nodes.Values(vals), err
		}
	}
	return q
}

// SelectAll projects every column of alias and decodes each row into an R.
// NULL columns leave the field at its zero value.
func SelectAll[R any](b Builder, alias *nodes.TableAlias[R]) *Query[R] {
	cols := alias.ProjectionColumns()
	return newQuery(b, cols, func(s *nodes.Scope, labels []string) nodes.RowMapper[R] {
		mappers := make([]nodes.RowMapper[any], len(cols))
		for i, c := range cols {
			mappers[i] = c.Mapper(s, labels[i])
		}
		return func(row datatype.Row) (R, error) {
			var r R
			for i, m := range mappers {
				v, err := m(row)
				if err != nil {
					return r, err
				}
				if v != nil {
					cols[i].Column().Assign(&r, v)
				}
			}
			return r, nil
		}
	})
}

// OrderBy appends orderings.
func (q *Query[T]) OrderBy(orderings ...nodes.Node) *Query[T] {
	q.core.OrderBy = append(q.core.OrderBy, orderings...)
	return q
}

// FetchFirst limits the result to n rows.
func (q *Query[T]) FetchFirst(n int64) *Query[T] {
	q.core.Fetch = n
	return q
}

// Offset skips the first n rows.
func (q *Query[T]) Offset(n int64) *Query[T] {
	q.core.Offset = n
	return q
}

// Distinct removes duplicate rows from the result.
func (q *Query[T]) Distinct() *Query[T] {
	q.core.Projection.Distinct = true
	return q
}

// Union appends "union other". other must project compatible columns.
func (q *Query[T]) Union(other nodes.Statement) *Query[T] {
	q.core.Unions = append(q.core.Unions, &nodes.UnionClause{Query: other})
	return q
}

// UnionAll appends "union all other".
func (q *Query[T]) UnionAll(other nodes.Statement) *Query[T] {
	q.core.Unions = append(q.core.Unions, &nodes.UnionClause{All: true, Query: other})
	return q
}

// Use registers a transformer for this query only.
func (q *Query[T]) Use(t plugins.Transformer) *Query[T] {
	m := *q.m
	m.transformers = append(append([]plugins.Transformer(nil), q.m.transformers...), t)
	q.m = &m
	return q
}

// Core returns the statement. Transformers are not applied to it; they
// run only when the query itself is rendered.
func (q *Query[T]) Core() *nodes.SelectCore { return q.core }

// AsExpr nests the query as a scalar subquery.
func (q *Query[T]) AsExpr() *nodes.Expression[T] { return nodes.Subquery[T](q) }

// As binds the query as a derived table called alias.
func (q *Query[T]) As(alias string) *nodes.QueryAlias {
	return nodes.Derived(q.m.db, q, alias)
}

// AsCTE declares the query as a common table expression called name.
func (q *Query[T]) AsCTE(name string) *nodes.QueryAlias {
	return nodes.CTE(q.m.db, name, q)
}

// ToSQL renders the query with its transformers applied.
func (q *Query[T]) ToSQL() (string, []any, error) {
	sql, args, _, err := q.render()
	return sql, args, err
}

func (q *Query[T]) render() (string, []any, *nodes.SelectCore, error) {
	core, err := transformSelect(q.m.transformers, q.core)
	if err != nil {
		return "", nil, nil, err
	}
	sql, args, err := q.m.toSQLParams(core)
	if err != nil {
		return "", nil, nil, err
	}
	return sql, args, core, nil
}

// rowMapper builds the decoder for core's projection. Labels are read
// after rendering, so generated labels match the SQL.
func (q *Query[T]) rowMapper(core *nodes.SelectCore) (m nodes.RowMapper[T], err error) {
	defer nodes.Catch(&err)
	s := core.Scope
	if s == nil {
		s = nodes.NewScope(q.m.db, core.From.Aliases()...)
	}
	return q.decode(s, core.Projection.Labels(s)), nil
}

// each runs the query, calling fn with every decoded row.
func (q *Query[T]) each(ctx context.Context, exec executor.Executor, fn func(T) error) error {
	sql, args, core, err := q.render()
	if err != nil {
		return err
	}
	mapper, err := q.rowMapper(core)
	if err != nil {
		return err
	}
	return exec.Query(ctx, sql, args, func(row datatype.Row) error {
		v, err := mapper(row)
		if err != nil {
			return fmt.Errorf("decode: %w", err)
		}
		return fn(v)
	})
}

// List runs the query and returns every row.
func (q *Query[T]) List(ctx context.Context, exec executor.Executor) ([]T, error) {
	var out []T
	err := q.each(ctx, exec, func(v T) error {
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Optional runs the query and returns its only row, if any. More than one
// row is an error.
func (q *Query[T]) Optional(ctx context.Context, exec executor.Executor) (T, bool, error) {
	var (
		out  T
		seen bool
	)
	err := q.each(ctx, exec, func(v T) error {
		if seen {
			return ErrTooManyRows
		}
		out, seen = v, true
		return nil
	})
	if err != nil {
		var zero T
		return zero, false, err
	}
	return out, seen, nil
}

// Single runs the query and returns its only row.
func (q *Query[T]) Single(ctx context.Context, exec executor.Executor) (T, error) {
	v, ok, err := q.Optional(ctx, exec)
	if err != nil {
		return v, err
	}
	if !ok {
		return v, ErrNoRows
	}
	return v, nil
}
