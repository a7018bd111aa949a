package nodes

import (
	"strconv"
	"sync/atomic"
)

// labelCell memoizes a generated label. The first writer wins, so
// concurrent first calls agree on one value.
type labelCell struct {
	p atomic.Pointer[string]
}

func (c *labelCell) get(s *Scope, prefix string) string {
	if l := c.p.Load(); l != nil {
		return *l
	}
	l := prefix + strconv.FormatInt(s.NewLabel(), 10)
	if c.p.CompareAndSwap(nil, &l) {
		return l
	}
	return *c.p.Load()
}

// Expression is a typed wrapper around an untyped node. Rendering is
// delegated to the wrapped node; the label is generated from prefix.
type Expression[T any] struct {
	Predications[T]
	Arithmetics[T]
	node   Node
	prefix string
	label  labelCell
}

func newExpression[T any](n Node, prefix string) *Expression[T] {
	e := &Expression[T]{node: n, prefix: prefix}
	e.Predications.self = e
	e.Arithmetics.self = e
	return e
}

// Typed attaches type T to an untyped node. The label is prefix followed by
// a number drawn from the scope.
func Typed[T any](n Node, prefix string) *Expression[T] {
	return newExpression[T](n, prefix)
}

func (e *Expression[T]) Accept(v Visitor) string { return e.node.Accept(v) }
func (e *Expression[T]) Precedence() Precedence  { return e.node.Precedence() }

// Unwrap returns the wrapped node.
func (e *Expression[T]) Unwrap() Node { return e.node }

func (e *Expression[T]) Label(s *Scope) string { return e.label.get(s, e.prefix) }

func (e *Expression[T]) RowMapper(s *Scope, label string) RowMapper[T] {
	return typedMapper[T](s, label)
}

// Condition is a boolean expression usable in WHERE, ON and HAVING clauses,
// and projectable like any other expression.
type Condition struct {
	node  Node
	label labelCell
}

func newCondition(n Node) *Condition { return &Condition{node: n} }

// Cond wraps an untyped boolean node.
func Cond(n Node) *Condition {
	if c, ok := n.(*Condition); ok {
		return c
	}
	return newCondition(n)
}

func (c *Condition) Accept(v Visitor) string { return c.node.Accept(v) }
func (c *Condition) Precedence() Precedence  { return c.node.Precedence() }
func (c *Condition) Unwrap() Node            { return c.node }
func (c *Condition) Label(s *Scope) string   { return c.label.get(s, "test_") }

func (c *Condition) RowMapper(s *Scope, label string) RowMapper[bool] {
	return typedMapper[bool](s, label)
}

// And returns c and others.
func (c *Condition) And(others ...Expr[bool]) *Condition {
	chain := NewChain().Start(c)
	for _, o := range others {
		chain.AppendAnd(o)
	}
	return newCondition(chain)
}

// Or returns c or others.
func (c *Condition) Or(others ...Expr[bool]) *Condition {
	chain := NewChain().Start(c)
	for _, o := range others {
		chain.AppendOr(o)
	}
	return newCondition(chain)
}

// Not returns not c.
func (c *Condition) Not() *Condition {
	return newCondition(&NotNode{Expr: c})
}
