package nodes

// UnionClause appends another select to a statement.
type UnionClause struct {
	All   bool
	Query Statement
}

// SelectCore represents the data container for a SELECT statement.
// The fluent API for building queries lives in the managers package.
type SelectCore struct {
	// Scope holds the aliases of From; it is the statement's root scope.
	Scope      *Scope
	With       []*QueryAlias
	From       From
	Projection *Projection
	Where      *BooleanChain
	GroupBy    []Node
	Having     *BooleanChain
	Unions     []*UnionClause
	OrderBy    []Node
	Fetch      int64 // 0 for no limit
	Offset     int64
}

func (n *SelectCore) Accept(v Visitor) string { return v.VisitSelectCore(n) }
func (n *SelectCore) Precedence() Precedence  { return PrecSelect }
func (n *SelectCore) Core() *SelectCore       { return n }

// Clone returns a copy whose clause lists and chains can be extended
// without affecting n.
func (n *SelectCore) Clone() *SelectCore {
	c := *n
	c.With = append([]*QueryAlias(nil), n.With...)
	if n.From != nil {
		c.From = CloneFrom(n.From)
	}
	if n.Projection != nil {
		p := *n.Projection
		p.Columns = append([]ProjectionColumn(nil), n.Projection.Columns...)
		c.Projection = &p
	}
	c.Where = n.Where.Clone()
	c.Having = n.Having.Clone()
	c.GroupBy = append([]Node(nil), n.GroupBy...)
	c.Unions = append([]*UnionClause(nil), n.Unions...)
	c.OrderBy = append([]Node(nil), n.OrderBy...)
	return &c
}
