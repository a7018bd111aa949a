package nodes

// BoolOp joins two operands of a BooleanChain.
type BoolOp int

const (
	OpAnd BoolOp = iota
	OpOr
)

var boolOpPrecedence = [...]Precedence{
	OpAnd: PrecAnd,
	OpOr:  PrecOr,
}

// Precedence is the binding strength of the operator.
func (op BoolOp) Precedence() Precedence { return boolOpPrecedence[op] }

// ChainTerm is one operator and its right-hand operand.
type ChainTerm struct {
	Op   BoolOp
	Expr Node
}

// BooleanChain is a flat sequence of operands joined by and/or. It is built
// with Start followed by any number of AppendAnd and AppendOr calls.
type BooleanChain struct {
	first Node
	terms []ChainTerm
}

// NewChain returns an empty chain.
func NewChain() *BooleanChain { return &BooleanChain{} }

func (c *BooleanChain) Accept(v Visitor) string { return v.VisitBooleanChain(c) }

// Precedence is the loosest operator in the chain, or the sole operand's.
func (c *BooleanChain) Precedence() Precedence {
	if len(c.terms) == 0 {
		if c.first == nil {
			return PrecColumn
		}
		return c.first.Precedence()
	}
	p := PrecAnd
	for _, t := range c.terms {
		if t.Op == OpOr {
			p = PrecOr
		}
	}
	return p
}

// Start sets the first operand. Starting a chain twice is a programming error.
func (c *BooleanChain) Start(expr Node) *BooleanChain {
	if c.first != nil {
		panic("typeq: boolean expression has already been started")
	}
	c.first = expr
	return c
}

func (c *BooleanChain) AppendAnd(expr Node) *BooleanChain { return c.append(OpAnd, expr) }
func (c *BooleanChain) AppendOr(expr Node) *BooleanChain  { return c.append(OpOr, expr) }

func (c *BooleanChain) append(op BoolOp, expr Node) *BooleanChain {
	if c.first == nil {
		panic("typeq: boolean expression has not been started")
	}
	c.terms = append(c.terms, ChainTerm{Op: op, Expr: expr})
	return c
}

// IsEmpty reports whether the chain has not been started.
func (c *BooleanChain) IsEmpty() bool { return c == nil || c.first == nil }

func (c *BooleanChain) First() Node        { return c.first }
func (c *BooleanChain) Terms() []ChainTerm { return c.terms }

// OperandContext returns the precedence context for operand i, where 0 is
// the first operand: and if either neighbouring operator is and, else or.
func (c *BooleanChain) OperandContext(i int) Precedence {
	ctx := PrecOr
	if i > 0 && c.terms[i-1].Op == OpAnd {
		ctx = PrecAnd
	}
	if i < len(c.terms) && c.terms[i].Op == OpAnd {
		ctx = PrecAnd
	}
	return ctx
}

// Clone returns a copy that can be appended to without affecting c.
func (c *BooleanChain) Clone() *BooleanChain {
	if c == nil {
		return NewChain()
	}
	return &BooleanChain{first: c.first, terms: append([]ChainTerm(nil), c.terms...)}
}

// Conjoin returns a chain meaning (c) and expr. A chain containing an or is
// nested as one operand; otherwise expr is appended to c.
func Conjoin(c *BooleanChain, expr Node) *BooleanChain {
	switch {
	case c.IsEmpty():
		return NewChain().Start(expr)
	case c.Precedence() == PrecOr:
		return NewChain().Start(c).AppendAnd(expr)
	default:
		return c.AppendAnd(expr)
	}
}

// NotNode represents a logical NOT of an expression.
type NotNode struct {
	Expr Node
}

func (n *NotNode) Accept(v Visitor) string { return v.VisitNot(n) }
func (n *NotNode) Precedence() Precedence  { return PrecNot }

// Not negates cond.
func Not(cond Expr[bool]) *Condition {
	return newCondition(&NotNode{Expr: cond})
}

// And joins conds with and. A single condition is returned unchanged.
func And(first Expr[bool], rest ...Expr[bool]) *Condition {
	chain := NewChain().Start(first)
	for _, c := range rest {
		chain.AppendAnd(c)
	}
	return Cond(chainOrFirst(chain))
}

// Or joins conds with or.
func Or(first Expr[bool], rest ...Expr[bool]) *Condition {
	chain := NewChain().Start(first)
	for _, c := range rest {
		chain.AppendOr(c)
	}
	return Cond(chainOrFirst(chain))
}

func chainOrFirst(c *BooleanChain) Node {
	if len(c.terms) == 0 {
		return c.first
	}
	return c
}
