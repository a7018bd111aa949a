package nodes

import "reflect"

// Func creates a call to any function returning T. The name is rendered
// verbatim and must not come from user input.
func Func[T any](name string, args ...Node) *Expression[T] {
	return call[T](name, false, args...)
}

// Upper creates upper(expr).
func Upper(expr Expr[string]) *Expression[string] { return call[string]("upper", false, expr) }

// Lower creates lower(expr).
func Lower(expr Expr[string]) *Expression[string] { return call[string]("lower", false, expr) }

// Abs creates abs(expr).
func Abs[T any](expr Expr[T]) *Expression[T] { return call[T]("abs", false, expr) }

// Coalesce creates coalesce(first, rest...).
func Coalesce[T any](first Expr[T], rest ...Expr[T]) *Expression[T] {
	args := make([]Node, 0, len(rest)+1)
	args = append(args, first)
	for _, r := range rest {
		args = append(args, r)
	}
	return call[T]("coalesce", false, args...)
}

// CastNode represents cast(expr as type). The SQL type comes from the
// datatype registered for GoType.
type CastNode struct {
	Expr   Node
	GoType reflect.Type
}

func (n *CastNode) Accept(v Visitor) string { return v.VisitCast(n) }
func (n *CastNode) Precedence() Precedence  { return PrecColumn }

// Cast converts expr to the SQL type of T.
func Cast[T any](expr Node) *Expression[T] {
	return newExpression[T](&CastNode{Expr: expr, GoType: reflect.TypeFor[T]()}, "cast_")
}

// NextValueNode draws the next value of a sequence.
type NextValueNode struct {
	Schema string
	Name   string
}

func (n *NextValueNode) Accept(v Visitor) string { return v.VisitNextValue(n) }
func (n *NextValueNode) Precedence() Precedence  { return PrecColumn }

// NextValue draws from sequence name in schema (empty for the default).
func NextValue[T any](schema, name string) *Expression[T] {
	return newExpression[T](&NextValueNode{Schema: schema, Name: name}, "nextval_")
}
