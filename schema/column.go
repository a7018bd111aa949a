package schema

import (
	"fmt"
	"reflect"

	"github.com/bawdo/typeq/datatype"
)

// Column is the resolved description of one table column.
type Column struct {
	Name       string
	Field      string
	Type       datatype.Type
	RowType    reflect.Type
	Nullable   bool
	Insertable bool
	Updatable  bool

	get func(row any) any
	set func(row any, v any)
}

// Value reads the column's field from row, which must be a *R of the declaring type.
func (c *Column) Value(row any) any { return c.get(row) }

// Assign stores v, a value of the column's Go type, into row.
func (c *Column) Assign(row any, v any) { c.set(row, v) }

func (c *Column) String() string { return c.Name }

// ColumnOption adjusts a column declaration.
type ColumnOption func(*columnOpts)

type columnOpts struct {
	name     string
	nullable bool
	readOnly bool
}

// Named overrides the naming strategy for this column.
func Named(name string) ColumnOption {
	return func(o *columnOpts) { o.name = name }
}

// Nullable marks the column as accepting NULL. A NULL decodes to the zero value.
func Nullable() ColumnOption {
	return func(o *columnOpts) { o.nullable = true }
}

// ReadOnly excludes the column from inserts and updates (e.g. generated keys).
func ReadOnly() ColumnOption {
	return func(o *columnOpts) { o.readOnly = true }
}

// ColumnDef is the typed, database-independent declaration of a column of
// row type R holding values of type T. It is bound to a SQL column name when
// the table is built for a particular Database.
type ColumnDef[R, T any] struct {
	field string
	ptr   func(*R) *T
	opts  columnOpts
}

// NewColumn declares the column backed by the Go field named field. ptr
// returns the address of that field within a row.
func NewColumn[R, T any](field string, ptr func(*R) *T, opts ...ColumnOption) *ColumnDef[R, T] {
	c := &ColumnDef[R, T]{field: field, ptr: ptr}
	for _, o := range opts {
		o(&c.opts)
	}
	return c
}

// Field returns the Go field name the column is declared against.
func (c *ColumnDef[R, T]) Field() string { return c.field }

// RowType returns the declaring row type.
func (c *ColumnDef[R, T]) RowType() reflect.Type { return reflect.TypeFor[R]() }

// Get reads the column's value from row.
func (c *ColumnDef[R, T]) Get(row *R) T { return *c.ptr(row) }

// DataType returns the conversion for T registered with db.
func (c *ColumnDef[R, T]) DataType(db *Database) (datatype.DataType[T], error) {
	return datatype.Of[T](db.Registry())
}

// Resolve returns the column as built for db.
func (c *ColumnDef[R, T]) Resolve(db *Database) (*Column, error) {
	t, err := tableInfoOf[R](db)
	if err != nil {
		return nil, err
	}
	col, ok := t.ColumnByField(c.field)
	if !ok {
		return nil, fmt.Errorf("%s has no column for field %s", t.QualifiedName(), c.field)
	}
	return col, nil
}

func (c *ColumnDef[R, T]) fieldName() string { return c.field }

func (c *ColumnDef[R, T]) build(db *Database) (*Column, error) {
	dt, err := datatype.Of[T](db.Registry())
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", c.field, err)
	}
	name := c.opts.name
	if name == "" {
		name = db.Naming().ColumnName(c.field)
	}
	return &Column{
		Name:       name,
		Field:      c.field,
		Type:       dt,
		RowType:    reflect.TypeFor[R](),
		Nullable:   c.opts.nullable,
		Insertable: !c.opts.readOnly,
		Updatable:  !c.opts.readOnly,
		get:        func(row any) any { return *c.ptr(row.(*R)) },
		set:        func(row any, v any) { *c.ptr(row.(*R)) = v.(T) },
	}, nil
}

// Field is implemented by every *ColumnDef declared for row type R.
type Field[R any] interface {
	fieldName() string
	build(db *Database) (*Column, error)
}

// Spec is the untyped view of a ColumnDef, used to resolve column
// references without knowing the value type.
type Spec interface {
	Field() string
	RowType() reflect.Type
}

// KeyRef pairs a child column with the parent column it references.
type KeyRef struct {
	child  Spec
	parent Spec
	table  func(db *Database) (*TableInfo, error)
}

// Ref declares that child references parent. Both columns must hold the same Go type.
func Ref[R, P, T any](child *ColumnDef[R, T], parent *ColumnDef[P, T]) KeyRef {
	return KeyRef{child: child, parent: parent, table: tableInfoOf[P]}
}

// ForeignKey is a declared reference from a table to a parent table.
type ForeignKey struct {
	Name         string
	Columns      []*Column
	ParentType   reflect.Type
	ParentFields []string

	parent func(db *Database) (*TableInfo, error)
}

// Parent returns the referenced table as built for db.
func (fk *ForeignKey) Parent(db *Database) (*TableInfo, error) {
	return fk.parent(db)
}

// ParentColumns resolves the referenced columns against db, in the order
// the key was declared.
func (fk *ForeignKey) ParentColumns(db *Database) ([]*Column, error) {
	parent, err := fk.parent(db)
	if err != nil {
		return nil, err
	}
	cols := make([]*Column, len(fk.ParentFields))
	for i, f := range fk.ParentFields {
		c, ok := parent.ColumnByField(f)
		if !ok {
			return nil, fmt.Errorf("foreign key %s: %s has no field %s", fk.Name, parent.QualifiedName(), f)
		}
		cols[i] = c
	}
	return cols, nil
}
