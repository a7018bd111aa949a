package nodes

// FunctionNode represents a function call such as count(*), sum(x) or
// coalesce(a, b).
type FunctionNode struct {
	Name     string
	Args     []Node
	Distinct bool
	Star     bool // count(*)
}

func (n *FunctionNode) Accept(v Visitor) string { return v.VisitFunction(n) }
func (n *FunctionNode) Precedence() Precedence  { return PrecColumn }

func call[T any](name string, distinct bool, args ...Node) *Expression[T] {
	return newExpression[T](&FunctionNode{Name: name, Args: args, Distinct: distinct}, name+"_")
}

// Count creates count(*).
func Count() *Expression[int64] {
	return newExpression[int64](&FunctionNode{Name: "count", Star: true}, "count_")
}

// CountOf creates count(expr).
func CountOf(expr Node) *Expression[int64] { return call[int64]("count", false, expr) }

// CountDistinct creates count(distinct expr).
func CountDistinct(expr Node) *Expression[int64] { return call[int64]("count", true, expr) }

// Sum creates sum(expr).
func Sum[T any](expr Expr[T]) *Expression[T] { return call[T]("sum", false, expr) }

// Min creates min(expr).
func Min[T any](expr Expr[T]) *Expression[T] { return call[T]("min", false, expr) }

// Max creates max(expr).
func Max[T any](expr Expr[T]) *Expression[T] { return call[T]("max", false, expr) }

// Avg creates avg(expr), decoded as float64 whatever the argument type.
func Avg[T any](expr Expr[T]) *Expression[float64] { return call[float64]("avg", false, expr) }
