package nodes

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/bawdo/typeq/datatype"
	"github.com/bawdo/typeq/schema"
)

// Alias is a named binding of a row source into a FROM clause.
type Alias interface {
	Node
	// Name is the declared alias name, empty for an anonymous alias.
	Name() string
	RowType() reflect.Type
	// Prefix is the alias name, or the source name for anonymous aliases.
	// It prefixes generated column labels.
	Prefix() string
	// ColumnSQL qualifies a column (or inner label) name for use in expressions.
	ColumnSQL(name string) string
	ColumnLabel(name string) string
	ColumnByField(field string) (*schema.Column, bool)
	ProjectionColumns() []ProjectionColumn
	// ForeignKeyTo returns this alias's declared key referencing parent.
	ForeignKeyTo(parent Alias) (*schema.ForeignKey, bool)
	// Equal reports whether other denotes the same source under the same name.
	Equal(other Alias) bool
	Source() any
}

// TableSource is the untyped table alias. TableAlias wraps it with the row type.
type TableSource struct {
	db    *schema.Database
	table *schema.TableInfo
	name  string

	once sync.Once
	cols []ProjectionColumn
}

func (t *TableSource) Accept(v Visitor) string    { return v.VisitTableSource(t) }
func (t *TableSource) Precedence() Precedence     { return PrecColumn }
func (t *TableSource) Name() string               { return t.name }
func (t *TableSource) RowType() reflect.Type      { return t.table.RowType }
func (t *TableSource) Table() *schema.TableInfo   { return t.table }
func (t *TableSource) Database() *schema.Database { return t.db }
func (t *TableSource) Source() any                { return t.table }

// Untyped returns t. It lets code holding any TableAlias reach the
// untyped source without knowing the row type.
func (t *TableSource) Untyped() *TableSource { return t }

func (t *TableSource) Prefix() string {
	if t.name == "" {
		return t.table.Name
	}
	return t.name
}

// FromSQL renders the FROM-clause fragment: the qualified table name
// followed by the alias name, if any.
func (t *TableSource) FromSQL() string {
	if t.name == "" {
		return t.table.QualifiedName()
	}
	return t.table.QualifiedName() + " " + t.name
}

// Qualifier is what columns are qualified with.
func (t *TableSource) Qualifier() string {
	if t.name == "" {
		return t.table.QualifiedName()
	}
	return t.name
}

func (t *TableSource) ColumnSQL(name string) string {
	return t.Qualifier() + "." + t.db.Dialect().QuoteIdent(name)
}

func (t *TableSource) ColumnLabel(name string) string {
	return t.Prefix() + "_" + name
}

func (t *TableSource) ColumnByField(field string) (*schema.Column, bool) {
	return t.table.ColumnByField(field)
}

// ProjectionColumns returns one column per table column, labelled
// prefix_COLUMN. The list is built once.
func (t *TableSource) ProjectionColumns() []ProjectionColumn {
	t.once.Do(func() {
		t.cols = make([]ProjectionColumn, len(t.table.Columns))
		for i, c := range t.table.Columns {
			t.cols[i] = tableColumn(t, c)
		}
	})
	return t.cols
}

func (t *TableSource) ForeignKeyTo(parent Alias) (*schema.ForeignKey, bool) {
	return t.table.ForeignKeyTo(parent.RowType())
}

func (t *TableSource) Equal(other Alias) bool {
	if other == nil {
		return false
	}
	return other.Source() == t.Source() && other.Name() == t.name
}

func (t *TableSource) String() string { return t.FromSQL() }

// tableColumn projects column c of alias a.
func tableColumn(a *TableSource, c *schema.Column) ProjectionColumn {
	label := a.ColumnLabel(c.Name)
	return ProjectionColumn{
		Node:  &ColumnNode{Alias: a, Name: c.Name},
		label: func(*Scope) string { return label },
		mapper: func(s *Scope, label string) RowMapper[any] {
			env := s.Database().Env()
			return func(row datatype.Row) (any, error) {
				v, _, err := c.Type.ExtractAny(env, row, label)
				return v, err
			}
		},
		column: c,
	}
}

// TableAlias binds the table of row type R into a query.
type TableAlias[R any] struct {
	*TableSource
}

// NewAlias returns an alias called name for R's table. An empty name gives
// an anonymous alias that renders the bare table name.
func NewAlias[R schema.Describer[R]](db *schema.Database, name string) (*TableAlias[R], error) {
	t, err := schema.TableFor[R](db)
	if err != nil {
		return nil, err
	}
	return &TableAlias[R]{TableSource: &TableSource{db: db, table: t.TableInfo, name: name}}, nil
}

// MustAlias is NewAlias for statically declared tables.
func MustAlias[R schema.Describer[R]](db *schema.Database, name string) *TableAlias[R] {
	a, err := NewAlias[R](db, name)
	if err != nil {
		panic(fmt.Sprintf("typeq: %v", err))
	}
	return a
}

// Anonymous returns an unnamed alias for R's table.
func Anonymous[R schema.Describer[R]](db *schema.Database) *TableAlias[R] {
	return MustAlias[R](db, "")
}

// DualAlias is the pseudo-table used by selects without a real source.
type DualAlias struct {
	db *schema.Database
}

// Dual returns the pseudo-table alias for db's dialect.
func Dual(db *schema.Database) *DualAlias { return &DualAlias{db: db} }

type dualRow struct{}

var dualSource = new(dualRow)

func (d *DualAlias) Accept(v Visitor) string                     { return v.VisitDual(d) }
func (d *DualAlias) Precedence() Precedence                      { return PrecColumn }
func (d *DualAlias) Name() string                                { return "" }
func (d *DualAlias) RowType() reflect.Type                       { return reflect.TypeFor[dualRow]() }
func (d *DualAlias) Prefix() string                              { return d.db.Dialect().Dual() }
func (d *DualAlias) ColumnSQL(name string) string                { return name }
func (d *DualAlias) ColumnLabel(name string) string              { return name }
func (d *DualAlias) ProjectionColumns() []ProjectionColumn       { return nil }
func (d *DualAlias) Source() any                                 { return dualSource }
func (d *DualAlias) ColumnByField(string) (*schema.Column, bool) { return nil, false }

func (d *DualAlias) ForeignKeyTo(Alias) (*schema.ForeignKey, bool) { return nil, false }

func (d *DualAlias) Equal(other Alias) bool {
	_, ok := other.(*DualAlias)
	return ok
}

// FromSQL renders the pseudo-table, or nothing when the dialect does not need one.
func (d *DualAlias) FromSQL() string {
	if d.db.Dialect().RequiresFromDual() {
		return d.db.Dialect().Dual()
	}
	return ""
}
