package managers

import (
	"errors"
	"reflect"

	"github.com/bawdo/typeq/nodes"
	"github.com/bawdo/typeq/plugins"
	"github.com/bawdo/typeq/schema"
	"github.com/bawdo/typeq/visitors"
)

var (
	// ErrNoRows is returned by Single when the query returns no rows.
	ErrNoRows = errors.New("query returned no rows")
	// ErrTooManyRows is returned by Single and Optional when the query
	// returns more than one row.
	ErrTooManyRows = errors.New("query returned more than one row")
)

// treeManager is the shared base for all manager types. It holds the
// database and the transformer pipeline common to every statement kind.
type treeManager struct {
	db           *schema.Database
	transformers []plugins.Transformer
}

// addTransformer appends a transformer plugin to the pipeline.
func (tm *treeManager) addTransformer(t plugins.Transformer) {
	tm.transformers = append(tm.transformers, t)
}

// Transformers returns the registered transformer pipeline.
func (tm *treeManager) Transformers() []plugins.Transformer {
	return tm.transformers
}

// Database returns the database statements are rendered for.
func (tm *treeManager) Database() *schema.Database { return tm.db }

// toSQLParams renders n with a fresh renderer and traces the result.
func (tm *treeManager) toSQLParams(n nodes.Node) (string, []any, error) {
	sql, args, err := visitors.New(tm.db).Render(n)
	if err != nil {
		return "", nil, err
	}
	tm.db.Logger().Debug("statement rendered", "sql", sql, "args", len(args))
	return sql, args, nil
}

// bindColumn binds v for column c. The zero value of a nullable column is
// stored as NULL, mirroring how NULL decodes to the zero value.
func bindColumn(c *schema.Column, v any) *nodes.ValueNode {
	if c.Nullable && v != nil && reflect.ValueOf(v).IsZero() {
		v = nil
	}
	return &nodes.ValueNode{Value: v, GoType: c.Type.GoType()}
}
