package managers

import (
	"context"

	"github.com/bawdo/typeq/executor"
	"github.com/bawdo/typeq/nodes"
	"github.com/bawdo/typeq/plugins"
	"github.com/bawdo/typeq/schema"
)

// Rendered is one statement ready for execution.
type Rendered struct {
	SQL  string
	Args []any
}

// InsertManager inserts rows of R into R's table.
type InsertManager[R any] struct {
	treeManager
	table   *nodes.TableSource
	columns []*schema.Column
	rows    [][]nodes.Node
}

// Insert prepares an insert of rows. Read-only columns are left out.
func Insert[R schema.Describer[R]](db *schema.Database, rows ...R) *InsertManager[R] {
	alias := nodes.Anonymous[R](db)
	m := &InsertManager[R]{treeManager: treeManager{db: db}, table: alias.TableSource}
	for _, c := range alias.Table().Columns {
		if c.Insertable {
			m.columns = append(m.columns, c)
		}
	}
	return m.Values(rows...)
}

// Values appends rows.
func (m *InsertManager[R]) Values(rows ...R) *InsertManager[R] {
	for i := range rows {
		vals := make([]nodes.Node, len(m.columns))
		for j, c := range m.columns {
			vals[j] = bindColumn(c, c.Value(&rows[i]))
		}
		m.rows = append(m.rows, vals)
	}
	return m
}

// Use registers a transformer plugin.
func (m *InsertManager[R]) Use(t plugins.Transformer) *InsertManager[R] {
	m.addTransformer(t)
	return m
}

func (m *InsertManager[R]) statement(rows [][]nodes.Node) (*nodes.InsertStatement, error) {
	stmt := &nodes.InsertStatement{
		Scope:   nodes.NewScope(m.db, m.table),
		Table:   m.table,
		Columns: append([]*schema.Column(nil), m.columns...),
		Rows:    rows,
	}
	for _, t := range m.transformers {
		var err error
		stmt, err = t.TransformInsert(stmt)
		if err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

// Statements renders the insert: a single multi-row statement when the
// dialect supports one, otherwise one statement per row.
func (m *InsertManager[R]) Statements() ([]Rendered, error) {
	if len(m.rows) == 0 {
		return nil, nil
	}
	batches := [][][]nodes.Node{m.rows}
	if !m.db.Dialect().SupportsMultiInsert() {
		batches = make([][][]nodes.Node, len(m.rows))
		for i, r := range m.rows {
			batches[i] = [][]nodes.Node{r}
		}
	}
	out := make([]Rendered, 0, len(batches))
	for _, rows := range batches {
		stmt, err := m.statement(rows)
		if err != nil {
			return nil, err
		}
		sql, args, err := m.toSQLParams(stmt)
		if err != nil {
			return nil, err
		}
		out = append(out, Rendered{SQL: sql, Args: args})
	}
	return out, nil
}

// Execute runs every statement and returns the total rows inserted.
func (m *InsertManager[R]) Execute(ctx context.Context, exec executor.Executor) (int64, error) {
	stmts, err := m.Statements()
	if err != nil {
		return 0, err
	}
	var total int64
	for _, s := range stmts {
		n, err := exec.Exec(ctx, s.SQL, s.Args)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
