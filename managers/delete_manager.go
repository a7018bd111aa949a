package managers

import (
	"context"

	"github.com/bawdo/typeq/executor"
	"github.com/bawdo/typeq/nodes"
	"github.com/bawdo/typeq/plugins"
)

// DeleteManager builds a delete from one aliased table.
type DeleteManager struct {
	treeManager
	stmt *nodes.DeleteStatement
}

// DeleteFrom starts a delete from alias's table. Without a Where every
// row is deleted.
func DeleteFrom[R any](alias *nodes.TableAlias[R]) *DeleteManager {
	db := alias.Database()
	return &DeleteManager{
		treeManager: treeManager{db: db},
		stmt: &nodes.DeleteStatement{
			Scope: nodes.NewScope(db, alias),
			Alias: alias.TableSource,
			Where: nodes.NewChain(),
		},
	}
}

// Where adds cond to the WHERE clause, joined with and.
func (m *DeleteManager) Where(cond nodes.Expr[bool]) *DeleteManager {
	m.stmt.Where = nodes.Conjoin(m.stmt.Where, cond)
	return m
}

// And appends "and cond" to the WHERE clause.
func (m *DeleteManager) And(cond nodes.Expr[bool]) *DeleteManager {
	m.stmt.Where.AppendAnd(cond)
	return m
}

// Or appends "or cond" to the WHERE clause.
func (m *DeleteManager) Or(cond nodes.Expr[bool]) *DeleteManager {
	m.stmt.Where.AppendOr(cond)
	return m
}

// Use registers a transformer plugin.
func (m *DeleteManager) Use(t plugins.Transformer) *DeleteManager {
	m.addTransformer(t)
	return m
}

// ToSQL applies transformers to a copy of the statement and renders it.
func (m *DeleteManager) ToSQL() (string, []any, error) {
	stmt := m.stmt.Clone()
	for _, t := range m.transformers {
		var err error
		stmt, err = t.TransformDelete(stmt)
		if err != nil {
			return "", nil, err
		}
	}
	return m.toSQLParams(stmt)
}

// Execute runs the delete and returns the number of rows removed.
func (m *DeleteManager) Execute(ctx context.Context, exec executor.Executor) (int64, error) {
	sql, args, err := m.ToSQL()
	if err != nil {
		return 0, err
	}
	return exec.Exec(ctx, sql, args)
}
