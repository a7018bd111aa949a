package nodes

import "reflect"

// ValueNode is a value sent as a bind parameter. GoType selects the
// conversion; a nil Value renders as null.
type ValueNode struct {
	Value  any
	GoType reflect.Type
}

func (n *ValueNode) Accept(v Visitor) string { return v.VisitValue(n) }
func (n *ValueNode) Precedence() Precedence  { return PrecColumn }

// LiteralNode is a value inlined into the SQL text through its type's
// literal formatter.
type LiteralNode struct {
	Value  any
	GoType reflect.Type
}

func (n *LiteralNode) Accept(v Visitor) string { return v.VisitLiteral(n) }
func (n *LiteralNode) Precedence() Precedence  { return PrecColumn }

// Value returns a bound parameter holding v.
func Value[T any](v T) *Expression[T] {
	return newExpression[T](&ValueNode{Value: v, GoType: reflect.TypeFor[T]()}, "value_")
}

// Literal returns v rendered inline.
func Literal[T any](v T) *Expression[T] {
	return newExpression[T](&LiteralNode{Value: v, GoType: reflect.TypeFor[T]()}, "literal_")
}

// Bind returns an untyped bound parameter; the conversion is chosen from
// the dynamic type of v.
func Bind(v any) *ValueNode {
	if v == nil {
		return &ValueNode{}
	}
	return &ValueNode{Value: v, GoType: reflect.TypeOf(v)}
}

// SqlLiteral represents a raw SQL fragment injected verbatim into the query.
//
// SECURITY: Raw is rendered without escaping. Never build it from
// user-controlled input; pass such values through Binds instead.
type SqlLiteral struct {
	Raw   string
	Binds []any
}

func (n *SqlLiteral) Accept(v Visitor) string { return v.VisitSqlLiteral(n) }
func (n *SqlLiteral) Precedence() Precedence  { return PrecParentheses }

// Raw returns a typed raw SQL fragment. Binds are appended to the
// statement's arguments in order and must match the fragment's placeholders.
func Raw[T any](sql string, binds ...any) *Expression[T] {
	return newExpression[T](&SqlLiteral{Raw: sql, Binds: binds}, "sql_")
}
