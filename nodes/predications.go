package nodes

import "github.com/bawdo/typeq/internal/quoting"

// Predications provides comparison methods to typed expressions that embed
// it. The self field must be set to the embedding expression so that
// comparisons reference the correct left-hand side.
type Predications[T any] struct {
	self Expr[T]
}

func (p Predications[T]) compare(op ComparisonOp, rhs Node) *Condition {
	return newCondition(&ComparisonNode{Left: p.self, Right: rhs, Op: op})
}

// Eq creates an equality comparison against a bound value: self = ?.
func (p Predications[T]) Eq(val T) *Condition { return p.compare(OpEq, Value(val)) }

// NotEq creates an inequality comparison: self <> ?.
func (p Predications[T]) NotEq(val T) *Condition { return p.compare(OpNotEq, Value(val)) }

// Gt creates a greater-than comparison: self > ?.
func (p Predications[T]) Gt(val T) *Condition { return p.compare(OpGt, Value(val)) }

// GtEq creates a greater-than-or-equal comparison: self >= ?.
func (p Predications[T]) GtEq(val T) *Condition { return p.compare(OpGtEq, Value(val)) }

// Lt creates a less-than comparison: self < ?.
func (p Predications[T]) Lt(val T) *Condition { return p.compare(OpLt, Value(val)) }

// LtEq creates a less-than-or-equal comparison: self <= ?.
func (p Predications[T]) LtEq(val T) *Condition { return p.compare(OpLtEq, Value(val)) }

// EqExpr compares self with another expression of the same type.
func (p Predications[T]) EqExpr(e Expr[T]) *Condition    { return p.compare(OpEq, e) }
func (p Predications[T]) NotEqExpr(e Expr[T]) *Condition { return p.compare(OpNotEq, e) }
func (p Predications[T]) GtExpr(e Expr[T]) *Condition    { return p.compare(OpGt, e) }
func (p Predications[T]) GtEqExpr(e Expr[T]) *Condition  { return p.compare(OpGtEq, e) }
func (p Predications[T]) LtExpr(e Expr[T]) *Condition    { return p.compare(OpLt, e) }
func (p Predications[T]) LtEqExpr(e Expr[T]) *Condition  { return p.compare(OpLtEq, e) }

// Like creates a LIKE comparison against a bound pattern.
func (p Predications[T]) Like(pattern string) *Condition {
	return p.compare(OpLike, Value(pattern))
}

// NotLike creates a NOT LIKE comparison against a bound pattern.
func (p Predications[T]) NotLike(pattern string) *Condition {
	return p.compare(OpNotLike, Value(pattern))
}

// Contains matches values containing s literally; wildcards in s are escaped.
func (p Predications[T]) Contains(s string) *Condition { return p.likeEscaped("%" + quoting.EscapeLikePattern(s) + "%") }

// StartsWith matches values beginning with s.
func (p Predications[T]) StartsWith(s string) *Condition { return p.likeEscaped(quoting.EscapeLikePattern(s) + "%") }

// EndsWith matches values ending with s.
func (p Predications[T]) EndsWith(s string) *Condition { return p.likeEscaped("%" + quoting.EscapeLikePattern(s)) }

func (p Predications[T]) likeEscaped(pattern string) *Condition {
	return newCondition(&ComparisonNode{Left: p.self, Right: Value(pattern), Op: OpLike, Escape: true})
}

// IsNull creates a self IS NULL test.
func (p Predications[T]) IsNull() *Condition {
	return newCondition(&UnaryNode{Expr: p.self, Op: OpIsNull})
}

// IsNotNull creates a self IS NOT NULL test.
func (p Predications[T]) IsNotNull() *Condition {
	return newCondition(&UnaryNode{Expr: p.self, Op: OpIsNotNull})
}

// Between creates self BETWEEN ? AND ?.
func (p Predications[T]) Between(low, high T) *Condition {
	return newCondition(&BetweenNode{Expr: p.self, Low: Value(low), High: Value(high)})
}

// BetweenExpr creates a BETWEEN with expression bounds.
func (p Predications[T]) BetweenExpr(low, high Expr[T]) *Condition {
	return newCondition(&BetweenNode{Expr: p.self, Low: low, High: high})
}

// NotBetween creates self NOT BETWEEN ? AND ?.
func (p Predications[T]) NotBetween(low, high T) *Condition {
	return newCondition(&BetweenNode{Expr: p.self, Low: Value(low), High: Value(high), Negate: true})
}

// In creates self IN (?, ...). An empty list is never true.
func (p Predications[T]) In(vals ...T) *Condition {
	return newCondition(&InNode{Expr: p.self, Vals: values(vals)})
}

// NotIn creates self NOT IN (?, ...). An empty list is always true.
func (p Predications[T]) NotIn(vals ...T) *Condition {
	return newCondition(&InNode{Expr: p.self, Vals: values(vals), Negate: true})
}

// InExpr creates an IN predicate over expressions.
func (p Predications[T]) InExpr(exprs ...Expr[T]) *Condition {
	vals := make([]Node, len(exprs))
	for i, e := range exprs {
		vals[i] = e
	}
	return newCondition(&InNode{Expr: p.self, Vals: vals})
}

// InQuery creates self IN (select ...).
func (p Predications[T]) InQuery(q Statement) *Condition {
	return newCondition(&InNode{Expr: p.self, Query: q})
}

// NotInQuery creates self NOT IN (select ...).
func (p Predications[T]) NotInQuery(q Statement) *Condition {
	return newCondition(&InNode{Expr: p.self, Query: q, Negate: true})
}

// Asc orders by self ascending.
func (p Predications[T]) Asc() *OrderingNode { return Asc(p.self) }

// Desc orders by self descending.
func (p Predications[T]) Desc() *OrderingNode { return Desc(p.self) }

func values[T any](vals []T) []Node {
	out := make([]Node, len(vals))
	for i, v := range vals {
		out[i] = Value(v)
	}
	return out
}
