package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// Describer is implemented by row types to declare their table mapping.
//
//	func (Widget) Describe(b *schema.Builder[Widget]) {
//		b.Name("WIDGET").Columns(WidgetID, WidgetName).PrimaryKey(WidgetID)
//	}
type Describer[R any] interface {
	Describe(b *Builder[R])
}

// Builder collects a table declaration for row type R.
type Builder[R any] struct {
	name    string
	schema  string
	columns []Field[R]
	pk      []Field[R]
	fks     []fkDecl
}

type fkDecl struct {
	name string
	refs []KeyRef
}

// Name sets the table name, overriding the naming strategy.
func (b *Builder[R]) Name(name string) *Builder[R] {
	b.name = name
	return b
}

// Schema sets the table's schema, overriding the database default.
func (b *Builder[R]) Schema(schema string) *Builder[R] {
	b.schema = schema
	return b
}

// Columns appends columns in the order they should be selected.
func (b *Builder[R]) Columns(cols ...Field[R]) *Builder[R] {
	b.columns = append(b.columns, cols...)
	return b
}

// PrimaryKey declares the key columns. They must also be passed to Columns.
func (b *Builder[R]) PrimaryKey(cols ...Field[R]) *Builder[R] {
	b.pk = cols
	return b
}

// ForeignKey declares a reference to a parent table.
func (b *Builder[R]) ForeignKey(name string, refs ...KeyRef) *Builder[R] {
	b.fks = append(b.fks, fkDecl{name: name, refs: refs})
	return b
}

// TableInfo is the untyped metadata of a mapped table.
type TableInfo struct {
	Name        string
	Schema      string
	RowType     reflect.Type
	Columns     []*Column
	PrimaryKey  []*Column
	ForeignKeys []*ForeignKey

	qualified string
	byField   map[string]*Column
	byName    map[string]*Column
}

// QualifiedName returns the schema-qualified, dialect-quoted table name.
func (t *TableInfo) QualifiedName() string { return t.qualified }

// ColumnByField looks up a column by its Go field name.
func (t *TableInfo) ColumnByField(field string) (*Column, bool) {
	c, ok := t.byField[field]
	return c, ok
}

// ColumnByName looks up a column by SQL name, ignoring case.
func (t *TableInfo) ColumnByName(name string) (*Column, bool) {
	c, ok := t.byName[strings.ToUpper(name)]
	return c, ok
}

// HasColumn reports whether the table maps a column with the given SQL name.
func (t *TableInfo) HasColumn(name string) bool {
	_, ok := t.ColumnByName(name)
	return ok
}

// ForeignKeyTo returns the first declared key referencing parent.
func (t *TableInfo) ForeignKeyTo(parent reflect.Type) (*ForeignKey, bool) {
	for _, fk := range t.ForeignKeys {
		if fk.ParentType == parent {
			return fk, true
		}
	}
	return nil, false
}

func (t *TableInfo) String() string { return t.qualified }

// Table is the metadata for row type R.
type Table[R any] struct {
	*TableInfo
}

// New returns a zero row, ready to be filled by a row mapper.
func (t Table[R]) New() *R { return new(R) }

func buildTable[R any](db *Database, d Describer[R]) (*TableInfo, error) {
	b := &Builder[R]{}
	d.Describe(b)

	rt := reflect.TypeFor[R]()
	t := &TableInfo{
		Name:    b.name,
		Schema:  b.schema,
		RowType: rt,
		byField: map[string]*Column{},
		byName:  map[string]*Column{},
	}
	if t.Name == "" {
		t.Name = db.Naming().TableName(rt.Name())
	}
	if t.Schema == "" {
		t.Schema = db.DefaultSchema()
	}
	t.qualified = db.Dialect().QualifiedName(t.Schema, t.Name)
	if len(b.columns) == 0 {
		return nil, fmt.Errorf("table %s declares no columns", t.Name)
	}

	for _, f := range b.columns {
		c, err := f.build(db)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", t.Name, err)
		}
		if _, dup := t.byName[strings.ToUpper(c.Name)]; dup {
			return nil, fmt.Errorf("table %s: duplicate column %s", t.Name, c.Name)
		}
		t.Columns = append(t.Columns, c)
		t.byField[c.Field] = c
		t.byName[strings.ToUpper(c.Name)] = c
	}
	for _, f := range b.pk {
		c, ok := t.byField[f.fieldName()]
		if !ok {
			return nil, fmt.Errorf("table %s: primary key field %s is not a column", t.Name, f.fieldName())
		}
		t.PrimaryKey = append(t.PrimaryKey, c)
	}
	for _, decl := range b.fks {
		fk, err := t.foreignKey(decl)
		if err != nil {
			return nil, err
		}
		t.ForeignKeys = append(t.ForeignKeys, fk)
	}
	return t, nil
}

func (t *TableInfo) foreignKey(decl fkDecl) (*ForeignKey, error) {
	if len(decl.refs) == 0 {
		return nil, fmt.Errorf("table %s: foreign key %s has no columns", t.Name, decl.name)
	}
	fk := &ForeignKey{
		Name:       decl.name,
		ParentType: decl.refs[0].parent.RowType(),
		parent:     decl.refs[0].table,
	}
	for _, ref := range decl.refs {
		if ref.parent.RowType() != fk.ParentType {
			return nil, fmt.Errorf("table %s: foreign key %s references more than one table", t.Name, decl.name)
		}
		c, ok := t.byField[ref.child.Field()]
		if !ok {
			return nil, fmt.Errorf("table %s: foreign key %s field %s is not a column", t.Name, decl.name, ref.child.Field())
		}
		fk.Columns = append(fk.Columns, c)
		fk.ParentFields = append(fk.ParentFields, ref.parent.Field())
	}
	return fk, nil
}
