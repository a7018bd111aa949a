package nodes

// UnaryOp identifies a postfix test.
type UnaryOp int

const (
	OpIsNull UnaryOp = iota
	OpIsNotNull
)

// UnaryNode represents a postfix test such as IS NULL.
type UnaryNode struct {
	Expr Node
	Op   UnaryOp
}

func (n *UnaryNode) Accept(v Visitor) string { return v.VisitUnary(n) }
func (n *UnaryNode) Precedence() Precedence  { return PrecComparison }

// IsNull creates an untyped expr IS NULL test, as used by transformers
// that only know column names.
func IsNull(expr Node) *Condition {
	return newCondition(&UnaryNode{Expr: expr, Op: OpIsNull})
}

// IsNotNull creates an untyped expr IS NOT NULL test.
func IsNotNull(expr Node) *Condition {
	return newCondition(&UnaryNode{Expr: expr, Op: OpIsNotNull})
}
