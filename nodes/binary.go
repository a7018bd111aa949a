package nodes

// ComparisonOp identifies a binary comparison operator.
type ComparisonOp int

const (
	OpEq ComparisonOp = iota
	OpNotEq
	OpGt
	OpGtEq
	OpLt
	OpLtEq
	OpLike
	OpNotLike
)

// ComparisonNode represents a binary comparison (e.g., a = b, a < b).
type ComparisonNode struct {
	Left  Node
	Right Node
	Op    ComparisonOp
	// Escape marks a LIKE pattern whose wildcards were escaped with a backslash.
	Escape bool
}

func (n *ComparisonNode) Accept(v Visitor) string { return v.VisitComparison(n) }
func (n *ComparisonNode) Precedence() Precedence  { return PrecComparison }

// BetweenNode represents expr [NOT] BETWEEN low AND high.
type BetweenNode struct {
	Expr   Node
	Low    Node
	High   Node
	Negate bool
}

func (n *BetweenNode) Accept(v Visitor) string { return v.VisitBetween(n) }
func (n *BetweenNode) Precedence() Precedence  { return PrecComparison }
