package nodes

// OrderDirection represents ASC or DESC ordering.
type OrderDirection int

const (
	Ascending OrderDirection = iota
	Descending
)

// NullsDirection controls NULLS FIRST/LAST positioning.
type NullsDirection int

const (
	NullsDefault NullsDirection = iota
	NullsFirst
	NullsLast
)

// OrderingNode represents an ORDER BY expression with a direction.
type OrderingNode struct {
	Expr      Node
	Direction OrderDirection
	Nulls     NullsDirection
}

func (n *OrderingNode) Accept(v Visitor) string { return v.VisitOrdering(n) }
func (n *OrderingNode) Precedence() Precedence  { return PrecSelect }

// Asc orders by expr ascending.
func Asc(expr Node) *OrderingNode { return &OrderingNode{Expr: expr, Direction: Ascending} }

// Desc orders by expr descending.
func Desc(expr Node) *OrderingNode { return &OrderingNode{Expr: expr, Direction: Descending} }

// NullsFirst returns a copy of n placing nulls first.
func (n *OrderingNode) NullsFirst() *OrderingNode {
	o := *n
	o.Nulls = NullsFirst
	return &o
}

// NullsLast returns a copy of n placing nulls last.
func (n *OrderingNode) NullsLast() *OrderingNode {
	o := *n
	o.Nulls = NullsLast
	return &o
}
