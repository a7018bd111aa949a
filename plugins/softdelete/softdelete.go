// Package softdelete provides a Transformer that automatically injects
// "column is null" conditions into SELECT queries, filtering out
// soft-deleted rows.
//
// By default it guards every table in the FROM clause that has a
// DELETED_AT column. Both the column name and the set of tables can be
// customised via options.
//
// # Basic usage
//
//	q := managers.Select(managers.From(db, w), nodes.ColOf(w, WidgetName)).Use(softdelete.New())
//	// select w.NAME as w_NAME from WIDGET w where w.DELETED_AT is null
//
// The guard for a joined table goes into its ON clause, so outer joins keep
// their unmatched rows:
//
//	// ... left join MANUFACTURER m on m.ID = w.MANUFACTURER_ID and m.DELETED_AT is null
//
// # Custom column
//
//	sd := softdelete.New(softdelete.WithColumn("REMOVED_AT"))
//
// # Restrict to specific tables
//
//	sd := softdelete.New(softdelete.WithTables("WIDGET"))
//
// # Per-table columns
//
//	sd := softdelete.New(
//	    softdelete.WithTableColumn("WIDGET", "DELETED_AT"),
//	    softdelete.WithTableColumn("PARTS", "RETIRED_AT"),
//	)
package softdelete

import (
	"strings"

	"github.com/bawdo/typeq/nodes"
	"github.com/bawdo/typeq/plugins"
)

// DefaultColumn is the soft-delete column used when none is configured.
const DefaultColumn = "DELETED_AT"

// SoftDelete is a Transformer that appends IS NULL conditions for a
// soft-delete column on every referenced table (or a configured subset).
type SoftDelete struct {
	plugins.BaseTransformer
	Column  string
	Columns map[string]string // per-table column overrides (table name → column name)
	tables  map[string]bool   // nil means apply to all tables
}

// Option configures a SoftDelete transformer.
type Option func(*SoftDelete)

// WithColumn sets the soft-delete column name.
func WithColumn(name string) Option {
	return func(sd *SoftDelete) { sd.Column = name }
}

// WithTables restricts the plugin to only the named tables.
// By default, the plugin applies to every table in the query.
func WithTables(names ...string) Option {
	return func(sd *SoftDelete) {
		sd.tables = make(map[string]bool, len(names))
		for _, n := range names {
			sd.tables[strings.ToUpper(n)] = true
		}
	}
}

// WithTableColumn sets a per-table column override. The table is
// automatically added to the whitelist, restricting the plugin's scope.
func WithTableColumn(table, column string) Option {
	return func(sd *SoftDelete) {
		key := strings.ToUpper(table)
		if sd.Columns == nil {
			sd.Columns = make(map[string]string)
		}
		sd.Columns[key] = column
		if sd.tables == nil {
			sd.tables = make(map[string]bool)
		}
		sd.tables[key] = true
	}
}

// New creates a SoftDelete transformer with the given options.
func New(opts ...Option) *SoftDelete {
	sd := &SoftDelete{Column: DefaultColumn}
	for _, o := range opts {
		o(sd)
	}
	return sd
}

// TransformSelect guards each matching table of the FROM clause. Tables
// without the column are left alone.
func (sd *SoftDelete) TransformSelect(core *nodes.SelectCore) (*nodes.SelectCore, error) {
	for _, ref := range plugins.CollectTables(core) {
		if !sd.appliesTo(ref.Name) {
			continue
		}
		col, ok := ref.Alias.Table().ColumnByName(sd.columnFor(ref.Name))
		if !ok {
			continue
		}
		guard := nodes.IsNull(nodes.Named(ref.Alias, col.Name))
		if ref.Join != nil && ref.Join.Type != nodes.CrossJoin && !ref.Join.On.IsEmpty() {
			ref.Join.AddGuard(guard)
			continue
		}
		core.Where = nodes.Conjoin(core.Where, guard)
	}
	return core, nil
}

func (sd *SoftDelete) appliesTo(tableName string) bool {
	if sd.tables == nil {
		return true
	}
	return sd.tables[strings.ToUpper(tableName)]
}

// columnFor returns the column name to use for the given table.
// It checks Columns for a per-table override, falling back to Column.
func (sd *SoftDelete) columnFor(tableName string) string {
	if col, ok := sd.Columns[strings.ToUpper(tableName)]; ok {
		return col
	}
	return sd.Column
}
