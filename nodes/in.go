package nodes

// InNode represents expr [NOT] IN (vals...) or expr [NOT] IN (select ...).
type InNode struct {
	Expr   Node
	Vals   []Node
	Query  Statement
	Negate bool
}

func (n *InNode) Accept(v Visitor) string { return v.VisitIn(n) }
func (n *InNode) Precedence() Precedence  { return PrecComparison }
