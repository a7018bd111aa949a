package managers

import (
	"context"
	"fmt"

	"github.com/bawdo/typeq/executor"
	"github.com/bawdo/typeq/nodes"
	"github.com/bawdo/typeq/plugins"
	"github.com/bawdo/typeq/schema"
)

// UpdateManager builds an update of the table aliased by alias.
type UpdateManager[R any] struct {
	treeManager
	alias *nodes.TableAlias[R]
	stmt  *nodes.UpdateStatement
}

// Update starts an update of alias's table.
func Update[R any](alias *nodes.TableAlias[R]) *UpdateManager[R] {
	db := alias.Database()
	return &UpdateManager[R]{
		treeManager: treeManager{db: db},
		alias:       alias,
		stmt: &nodes.UpdateStatement{
			Scope: nodes.NewScope(db, alias),
			Alias: alias.TableSource,
			Where: nodes.NewChain(),
		},
	}
}

func (m *UpdateManager[R]) column(col schema.Spec) *schema.Column {
	if col.RowType() != m.alias.RowType() {
		panic(fmt.Sprintf("typeq: column %s.%s does not belong to %s", col.RowType(), col.Field(), m.alias.RowType()))
	}
	c, ok := m.alias.ColumnByField(col.Field())
	if !ok {
		panic(fmt.Sprintf("typeq: %s has no column for field %s", m.alias.Table(), col.Field()))
	}
	if !c.Updatable {
		panic(fmt.Sprintf("typeq: column %s of %s is not updatable", c.Name, m.alias.Table()))
	}
	return c
}

// Set assigns a bound value to col. value must be of the column's Go type,
// or nil for NULL.
func (m *UpdateManager[R]) Set(col schema.Spec, value any) *UpdateManager[R] {
	c := m.column(col)
	m.stmt.Sets = append(m.stmt.Sets, nodes.Assignment{
		Column: c,
		Value:  bindColumn(c, value),
	})
	return m
}

// SetExpr assigns an expression to col, e.g. a price increase.
func (m *UpdateManager[R]) SetExpr(col schema.Spec, e nodes.Node) *UpdateManager[R] {
	m.stmt.Sets = append(m.stmt.Sets, nodes.Assignment{Column: m.column(col), Value: e})
	return m
}

// SetValue is the typed form of Set.
func SetValue[R, T any](m *UpdateManager[R], col *schema.ColumnDef[R, T], value T) *UpdateManager[R] {
	return m.Set(col, value)
}

// Where adds cond to the WHERE clause, joined with and.
func (m *UpdateManager[R]) Where(cond nodes.Expr[bool]) *UpdateManager[R] {
	m.stmt.Where = nodes.Conjoin(m.stmt.Where, cond)
	return m
}

// And appends "and cond" to the WHERE clause.
func (m *UpdateManager[R]) And(cond nodes.Expr[bool]) *UpdateManager[R] {
	m.stmt.Where.AppendAnd(cond)
	return m
}

// Or appends "or cond" to the WHERE clause.
func (m *UpdateManager[R]) Or(cond nodes.Expr[bool]) *UpdateManager[R] {
	m.stmt.Where.AppendOr(cond)
	return m
}

// Use registers a transformer plugin.
func (m *UpdateManager[R]) Use(t plugins.Transformer) *UpdateManager[R] {
	m.addTransformer(t)
	return m
}

// ToSQL applies transformers to a copy of the statement and renders it.
func (m *UpdateManager[R]) ToSQL() (string, []any, error) {
	stmt := m.stmt.Clone()
	for _, t := range m.transformers {
		var err error
		stmt, err = t.TransformUpdate(stmt)
		if err != nil {
			return "", nil, err
		}
	}
	return m.toSQLParams(stmt)
}

// Execute runs the update and returns the number of rows changed.
func (m *UpdateManager[R]) Execute(ctx context.Context, exec executor.Executor) (int64, error) {
	sql, args, err := m.ToSQL()
	if err != nil {
		return 0, err
	}
	return exec.Exec(ctx, sql, args)
}
