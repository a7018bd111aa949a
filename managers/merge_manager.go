package managers

import (
	"context"
	"slices"

	"github.com/bawdo/typeq/executor"
	"github.com/bawdo/typeq/nodes"
	"github.com/bawdo/typeq/schema"
)

// MergeManager inserts a row, or updates the existing row with the same
// primary key.
type MergeManager[R any] struct {
	treeManager
	stmt *nodes.MergeStatement
}

// Merge prepares an upsert of row keyed on its table's primary key. Key
// columns are never updated.
func Merge[R schema.Describer[R]](db *schema.Database, row R) *MergeManager[R] {
	alias := nodes.MustAlias[R](db, "t")
	t := alias.Table()
	stmt := &nodes.MergeStatement{
		Scope:     nodes.NewScope(db, alias),
		Table:     alias.TableSource,
		IDColumns: t.PrimaryKey,
	}
	for _, c := range t.Columns {
		key := slices.Contains(t.PrimaryKey, c)
		if !c.Insertable && !key {
			continue
		}
		stmt.Columns = append(stmt.Columns, c)
		stmt.Values = append(stmt.Values, bindColumn(c, c.Value(&row)))
		if c.Insertable {
			stmt.InsertColumns = append(stmt.InsertColumns, c)
		}
		if c.Updatable && !key {
			stmt.UpdateColumns = append(stmt.UpdateColumns, c)
		}
	}
	return &MergeManager[R]{treeManager: treeManager{db: db}, stmt: stmt}
}

// ToSQL renders the upsert in the dialect's form.
func (m *MergeManager[R]) ToSQL() (string, []any, error) {
	return m.toSQLParams(m.stmt)
}

// Execute runs the upsert. The count is the vendor's report for one row:
// see dialect.MergeInfo for how inserts and updates are distinguished.
func (m *MergeManager[R]) Execute(ctx context.Context, exec executor.Executor) (int64, error) {
	sql, args, err := m.ToSQL()
	if err != nil {
		return 0, err
	}
	return exec.Exec(ctx, sql, args)
}
