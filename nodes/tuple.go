package nodes

// Values is a decoded row of heterogeneous values, in projection order.
type Values []any

type Tuple2[A, B any] struct {
	V1 A
	V2 B
}

type Tuple3[A, B, C any] struct {
	V1 A
	V2 B
	V3 C
}

type Tuple4[A, B, C, D any] struct {
	V1 A
	V2 B
	V3 C
	V4 D
}

type Tuple5[A, B, C, D, E any] struct {
	V1 A
	V2 B
	V3 C
	V4 D
	V5 E
}

type Tuple6[A, B, C, D, E, F any] struct {
	V1 A
	V2 B
	V3 C
	V4 D
	V5 E
	V6 F
}

// RowNode is a row value constructor: (e1, e2, ...).
type RowNode struct {
	Items []Node
}

func (n *RowNode) Accept(v Visitor) string { return v.VisitRow(n) }
func (n *RowNode) Precedence() Precedence  { return PrecParentheses }

// RowExpr compares several expressions at once.
type RowExpr struct {
	*RowNode
}

// Row builds a row value from items.
func Row(items ...Node) *RowExpr { return &RowExpr{RowNode: &RowNode{Items: items}} }

// Eq creates (a, b) = (c, d).
func (r *RowExpr) Eq(other *RowExpr) *Condition {
	return newCondition(&ComparisonNode{Left: r.RowNode, Right: other.RowNode, Op: OpEq})
}

// NotEq creates (a, b) <> (c, d).
func (r *RowExpr) NotEq(other *RowExpr) *Condition {
	return newCondition(&ComparisonNode{Left: r.RowNode, Right: other.RowNode, Op: OpNotEq})
}

// In creates (a, b) in ((?, ?), ...), binding each Values entry in order.
func (r *RowExpr) In(rows ...Values) *Condition {
	vals := make([]Node, len(rows))
	for i, row := range rows {
		items := make([]Node, len(row))
		for j, v := range row {
			items[j] = Bind(v)
		}
		vals[i] = &RowNode{Items: items}
	}
	return newCondition(&InNode{Expr: r.RowNode, Vals: vals})
}

// InQuery creates (a, b) in (select ...).
func (r *RowExpr) InQuery(q Statement) *Condition {
	return newCondition(&InNode{Expr: r.RowNode, Query: q})
}
