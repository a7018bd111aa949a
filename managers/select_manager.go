// Package managers provides the fluent builders that assemble statements
// from nodes, apply transformer plugins and hand the rendered SQL to an
// executor.
package managers

import (
	"github.com/bawdo/typeq/nodes"
	"github.com/bawdo/typeq/plugins"
	"github.com/bawdo/typeq/schema"
)

// SelectManager builds the FROM, WHERE, GROUP BY and HAVING parts of a
// select. The projection is chosen with Select, which returns a typed Query.
type SelectManager struct {
	treeManager
	core     *nodes.SelectCore
	distinct bool
}

// Builder is implemented by SelectManager and JoinContext, so a projection
// can be chosen straight after a join condition.
type Builder interface {
	selectManager() *SelectManager
}

func (m *SelectManager) selectManager() *SelectManager { return m }

// From starts a select from alias.
func From(db *schema.Database, alias nodes.Alias) *SelectManager {
	return &SelectManager{
		treeManager: treeManager{db: db},
		core: &nodes.SelectCore{
			Scope:  nodes.NewScope(db, alias),
			From:   &nodes.FromAlias{Alias: alias},
			Where:  nodes.NewChain(),
			Having: nodes.NewChain(),
		},
	}
}

// FromDual starts a select with no table, for selecting expressions only.
func FromDual(db *schema.Database) *SelectManager {
	return From(db, nodes.Dual(db))
}

func (m *SelectManager) join(t nodes.JoinType, alias nodes.Alias) *nodes.FromJoin {
	j := nodes.NewJoin(m.core.From, t, alias)
	m.core.From = j
	m.core.Scope = m.core.Scope.Extend(alias)
	return j
}

// Join adds an inner join. The returned context must be given a condition.
func (m *SelectManager) Join(alias nodes.Alias) *JoinContext {
	return &JoinContext{SelectManager: m, join: m.join(nodes.InnerJoin, alias)}
}

// LeftJoin adds a left outer join.
func (m *SelectManager) LeftJoin(alias nodes.Alias) *JoinContext {
	return &JoinContext{SelectManager: m, join: m.join(nodes.LeftOuterJoin, alias)}
}

// RightJoin adds a right outer join.
func (m *SelectManager) RightJoin(alias nodes.Alias) *JoinContext {
	return &JoinContext{SelectManager: m, join: m.join(nodes.RightOuterJoin, alias)}
}

// FullOuterJoin adds a full outer join.
func (m *SelectManager) FullOuterJoin(alias nodes.Alias) *JoinContext {
	return &JoinContext{SelectManager: m, join: m.join(nodes.FullOuterJoin, alias)}
}

// CrossJoin adds a cross join, which takes no condition.
func (m *SelectManager) CrossJoin(alias nodes.Alias) *SelectManager {
	m.join(nodes.CrossJoin, alias)
	return m
}

// Where adds cond to the WHERE clause. An existing clause is kept intact
// and joined to cond with and.
func (m *SelectManager) Where(cond nodes.Expr[bool]) *SelectManager {
	m.core.Where = nodes.Conjoin(m.core.Where, cond)
	return m
}

// And appends "and cond" to the WHERE clause.
func (m *SelectManager) And(cond nodes.Expr[bool]) *SelectManager {
	m.core.Where.AppendAnd(cond)
	return m
}

// Or appends "or cond" to the WHERE clause.
func (m *SelectManager) Or(cond nodes.Expr[bool]) *SelectManager {
	m.core.Where.AppendOr(cond)
	return m
}

// GroupBy appends expressions to the GROUP BY clause.
func (m *SelectManager) GroupBy(exprs ...nodes.Node) *SelectManager {
	m.core.GroupBy = append(m.core.GroupBy, exprs...)
	return m
}

// Having adds cond to the HAVING clause, joined with and.
func (m *SelectManager) Having(cond nodes.Expr[bool]) *SelectManager {
	m.core.Having = nodes.Conjoin(m.core.Having, cond)
	return m
}

// OrderBy appends orderings. Plain expressions sort ascending.
func (m *SelectManager) OrderBy(orderings ...nodes.Node) *SelectManager {
	m.core.OrderBy = append(m.core.OrderBy, orderings...)
	return m
}

// FetchFirst limits the result to n rows.
func (m *SelectManager) FetchFirst(n int64) *SelectManager {
	m.core.Fetch = n
	return m
}

// Offset skips the first n rows.
func (m *SelectManager) Offset(n int64) *SelectManager {
	m.core.Offset = n
	return m
}

// Distinct removes duplicate rows from the result.
func (m *SelectManager) Distinct() *SelectManager {
	m.distinct = true
	return m
}

// With declares common table expressions on the statement. They are only
// written when the statement is rendered outermost.
func (m *SelectManager) With(ctes ...*nodes.QueryAlias) *SelectManager {
	m.core.With = append(m.core.With, ctes...)
	return m
}

// Union appends "union q".
func (m *SelectManager) Union(q nodes.Statement) *SelectManager {
	m.core.Unions = append(m.core.Unions, &nodes.UnionClause{Query: q})
	return m
}

// UnionAll appends "union all q".
func (m *SelectManager) UnionAll(q nodes.Statement) *SelectManager {
	m.core.Unions = append(m.core.Unions, &nodes.UnionClause{All: true, Query: q})
	return m
}

// Use registers a transformer plugin to be applied before SQL generation.
func (m *SelectManager) Use(t plugins.Transformer) *SelectManager {
	m.addTransformer(t)
	return m
}

// Core returns the statement, selecting every column of the FROM clause
// when no projection has been chosen. It lets an untyped select be nested
// in Exists or InQuery.
func (m *SelectManager) Core() *nodes.SelectCore {
	if m.core.Projection == nil {
		var cols []nodes.ProjectionColumn
		for _, a := range m.core.From.Aliases() {
			cols = append(cols, a.ProjectionColumns()...)
		}
		if len(cols) == 0 {
			cols = []nodes.ProjectionColumn{nodes.Project[int64](nodes.Literal[int64](1), "")}
		}
		m.core.Projection = &nodes.Projection{Columns: cols, Distinct: m.distinct}
	}
	return m.core
}

// ToSQL renders the select with its default projection.
func (m *SelectManager) ToSQL() (string, []any, error) {
	core, err := transformSelect(m.transformers, m.Core())
	if err != nil {
		return "", nil, err
	}
	return m.toSQLParams(core)
}

// transformSelect runs the pipeline over a clone of core.
func transformSelect(ts []plugins.Transformer, core *nodes.SelectCore) (*nodes.SelectCore, error) {
	out := core.Clone()
	for _, t := range ts {
		var err error
		out, err = t.TransformSelect(out)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
