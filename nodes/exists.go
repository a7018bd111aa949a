package nodes

// ExistsNode represents [not] exists (select ...).
type ExistsNode struct {
	Query  Statement
	Negate bool
}

func (n *ExistsNode) Accept(v Visitor) string { return v.VisitExists(n) }
func (n *ExistsNode) Precedence() Precedence  { return PrecUnary }

// Exists tests whether q returns any row. q may reference aliases of the
// enclosing statement.
func Exists(q Statement) *Condition { return newCondition(&ExistsNode{Query: q}) }

// NotExists tests whether q returns no rows.
func NotExists(q Statement) *Condition {
	return newCondition(&ExistsNode{Query: q, Negate: true})
}

// SubqueryNode is a nested select used as a scalar value.
type SubqueryNode struct {
	Query Statement
}

func (n *SubqueryNode) Accept(v Visitor) string { return v.VisitSubquery(n) }
func (n *SubqueryNode) Precedence() Precedence  { return PrecParentheses }

// Subquery uses q, which must select a single column, as a value of type T.
func Subquery[T any](q Statement) *Expression[T] {
	return newExpression[T](&SubqueryNode{Query: q}, "select_")
}
