package nodes

// InfixOp identifies an arithmetic operator.
type InfixOp int

const (
	OpPlus InfixOp = iota
	OpMinus
	OpTimes
	OpDivide
)

var infixPrecedence = [...]Precedence{
	OpPlus:   PrecPlusMinus,
	OpMinus:  PrecPlusMinus,
	OpTimes:  PrecTimesDivide,
	OpDivide: PrecTimesDivide,
}

// InfixNode represents an arithmetic operation (e.g., a + b).
type InfixNode struct {
	Left  Node
	Right Node
	Op    InfixOp
}

func (n *InfixNode) Accept(v Visitor) string { return v.VisitInfix(n) }
func (n *InfixNode) Precedence() Precedence  { return infixPrecedence[n.Op] }

// Associative reports whether the right operand may bind as loosely as the left.
func (n *InfixNode) Associative() bool { return n.Op == OpPlus || n.Op == OpTimes }

// Arithmetics provides arithmetic methods to typed expressions that embed it.
// The self field must be set to the embedding expression.
type Arithmetics[T any] struct {
	self Expr[T]
}

func (a Arithmetics[T]) infix(op InfixOp, rhs Node) *Expression[T] {
	return newExpression[T](&InfixNode{Left: a.self, Right: rhs, Op: op}, "arithmetic_")
}

func (a Arithmetics[T]) Plus(val T) *Expression[T]   { return a.infix(OpPlus, Value(val)) }
func (a Arithmetics[T]) Minus(val T) *Expression[T]  { return a.infix(OpMinus, Value(val)) }
func (a Arithmetics[T]) Times(val T) *Expression[T]  { return a.infix(OpTimes, Value(val)) }
func (a Arithmetics[T]) Divide(val T) *Expression[T] { return a.infix(OpDivide, Value(val)) }

func (a Arithmetics[T]) PlusExpr(e Expr[T]) *Expression[T]   { return a.infix(OpPlus, e) }
func (a Arithmetics[T]) MinusExpr(e Expr[T]) *Expression[T]  { return a.infix(OpMinus, e) }
func (a Arithmetics[T]) TimesExpr(e Expr[T]) *Expression[T]  { return a.infix(OpTimes, e) }
func (a Arithmetics[T]) DivideExpr(e Expr[T]) *Expression[T] { return a.infix(OpDivide, e) }

// ConcatNode joins string operands with the dialect's concatenation.
type ConcatNode struct {
	Parts []Node
}

func (n *ConcatNode) Accept(v Visitor) string { return v.VisitConcat(n) }
func (n *ConcatNode) Precedence() Precedence  { return PrecConcat }

// Concat concatenates parts.
func Concat(parts ...Expr[string]) *Expression[string] {
	nodes := make([]Node, len(parts))
	for i, p := range parts {
		nodes[i] = p
	}
	return newExpression[string](&ConcatNode{Parts: nodes}, "concat_")
}
