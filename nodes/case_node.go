package nodes

// WhenClause is a single WHEN ... THEN ... pair in a CASE expression.
type WhenClause struct {
	Cond Node
	Then Node
}

// CaseNode represents a searched CASE expression:
//
//	case when cond then result ... [else val] end
type CaseNode struct {
	Whens []WhenClause
	Else  Node // nil if omitted
}

func (n *CaseNode) Accept(v Visitor) string { return v.VisitCase(n) }
func (n *CaseNode) Precedence() Precedence  { return PrecUnary }

// CaseBuilder accumulates the branches of a CASE expression whose results
// all have type T.
type CaseBuilder[T any] struct {
	node *CaseNode
}

// When starts a CASE expression with its first branch.
func When[T any](cond Expr[bool], then Expr[T]) *CaseBuilder[T] {
	return &CaseBuilder[T]{node: &CaseNode{Whens: []WhenClause{{Cond: cond, Then: then}}}}
}

// When adds a branch.
func (b *CaseBuilder[T]) When(cond Expr[bool], then Expr[T]) *CaseBuilder[T] {
	b.node.Whens = append(b.node.Whens, WhenClause{Cond: cond, Then: then})
	return b
}

// Else sets the result when no branch matches and ends the expression.
func (b *CaseBuilder[T]) Else(val Expr[T]) *Expression[T] {
	b.node.Else = val
	return b.End()
}

// End finishes the expression without an else branch.
func (b *CaseBuilder[T]) End() *Expression[T] {
	return newExpression[T](b.node, "case_")
}
