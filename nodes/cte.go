package nodes

import (
	"reflect"
	"sync/atomic"

	"github.com/bawdo/typeq/schema"
)

type queryRow struct{}

// QueryAlias binds a nested select into a FROM clause, either as a common
// table expression declared in a WITH clause or as a derived table. Its
// columns are the labels of the inner projection.
type QueryAlias struct {
	db    *schema.Database
	query Statement
	cte   string // empty for a derived table
	name  string

	cols atomic.Pointer[[]ProjectionColumn]
}

// CTE declares q as a common table expression called name.
func CTE(db *schema.Database, name string, q Statement) *QueryAlias {
	return &QueryAlias{db: db, query: q, cte: name}
}

// Derived binds q as a derived table called alias.
func Derived(db *schema.Database, q Statement, alias string) *QueryAlias {
	return &QueryAlias{db: db, query: q, name: alias}
}

// As returns a reference to the same CTE under alias.
func (q *QueryAlias) As(alias string) *QueryAlias {
	return &QueryAlias{db: q.db, query: q.query, cte: q.cte, name: alias}
}

func (q *QueryAlias) Accept(v Visitor) string { return v.VisitQueryAlias(q) }
func (q *QueryAlias) Precedence() Precedence  { return PrecColumn }
func (q *QueryAlias) Name() string            { return q.name }
func (q *QueryAlias) Query() Statement        { return q.query }
func (q *QueryAlias) IsCTE() bool             { return q.cte != "" }
func (q *QueryAlias) CTEName() string         { return q.cte }
func (q *QueryAlias) Source() any             { return q.query.Core() }

func (q *QueryAlias) Prefix() string {
	if q.name == "" {
		return q.cte
	}
	return q.name
}

// RowType is the row type of the inner query's table when it selects every
// column from a single table, so typed column references resolve against
// it. Otherwise it is a type no column belongs to.
func (q *QueryAlias) RowType() reflect.Type {
	if t := q.tableRowType(); t != nil {
		return t
	}
	return reflect.TypeFor[queryRow]()
}

func (q *QueryAlias) tableRowType() reflect.Type {
	p := q.query.Core().Projection
	if p == nil || len(p.Columns) == 0 {
		return nil
	}
	var rt reflect.Type
	for _, c := range p.Columns {
		t := c.RowType()
		if t == nil || (rt != nil && t != rt) {
			return nil
		}
		rt = t
	}
	return rt
}

func (q *QueryAlias) innerScope() *Scope {
	if s := q.query.Core().Scope; s != nil {
		return s
	}
	return NewScope(q.db)
}

// FromSQL renders the CTE reference. Derived tables are rendered by the
// visitor since their body carries arguments.
func (q *QueryAlias) FromSQL() string {
	if q.name == "" {
		return q.cte
	}
	return q.cte + " " + q.name
}

func (q *QueryAlias) ColumnSQL(name string) string {
	return q.Prefix() + "." + q.db.Dialect().QuoteIdent(name)
}

func (q *QueryAlias) ColumnLabel(name string) string { return q.Prefix() + "_" + name }

// ColumnByField maps a field of the inner table to the label it is exposed
// under.
func (q *QueryAlias) ColumnByField(field string) (*schema.Column, bool) {
	p := q.query.Core().Projection
	if p == nil {
		return nil, false
	}
	s := q.innerScope()
	for _, c := range p.Columns {
		col, ok := c.TableColumn(s)
		if ok && col.Field == field {
			exposed := *col
			exposed.Name = c.Label(s)
			return &exposed, true
		}
	}
	return nil, false
}

// ProjectionColumns re-exposes each inner label, prefixed with this alias.
func (q *QueryAlias) ProjectionColumns() []ProjectionColumn {
	if cols := q.cols.Load(); cols != nil {
		return *cols
	}
	var cols []ProjectionColumn
	if p := q.query.Core().Projection; p != nil {
		s := q.innerScope()
		cols = make([]ProjectionColumn, len(p.Columns))
		for i, c := range p.Columns {
			inner := c
			name := inner.Label(s)
			label := q.ColumnLabel(name)
			col, _ := inner.TableColumn(s)
			cols[i] = ProjectionColumn{
				Node:   &ColumnNode{Alias: q, Name: name},
				label:  func(*Scope) string { return label },
				mapper: inner.mapper,
				column: col,
			}
		}
	}
	if q.cols.CompareAndSwap(nil, &cols) {
		return cols
	}
	return *q.cols.Load()
}

func (q *QueryAlias) ForeignKeyTo(Alias) (*schema.ForeignKey, bool) { return nil, false }

func (q *QueryAlias) Equal(other Alias) bool {
	o, ok := other.(*QueryAlias)
	if !ok {
		return false
	}
	return o.Source() == q.Source() && o.cte == q.cte && o.name == q.name
}

func (q *QueryAlias) String() string { return q.Prefix() }
