// Package nodes defines the typed query AST: aliases, scopes, expressions,
// projections and the statement cores rendered by the visitors package.
package nodes

import "github.com/bawdo/typeq/datatype"

// Node is the interface that all AST nodes implement.
type Node interface {
	Accept(visitor Visitor) string
	Precedence() Precedence
}

// Visitor walks the AST producing SQL. A single traversal renders text and
// collects bind parameters, so the two can never disagree on order.
type Visitor interface {
	VisitTableSource(node *TableSource) string
	VisitDual(node *DualAlias) string
	VisitQueryAlias(node *QueryAlias) string
	VisitFromAlias(node *FromAlias) string
	VisitFromJoin(node *FromJoin) string
	VisitColumn(node *ColumnNode) string
	VisitValue(node *ValueNode) string
	VisitLiteral(node *LiteralNode) string
	VisitSqlLiteral(node *SqlLiteral) string
	VisitComparison(node *ComparisonNode) string
	VisitUnary(node *UnaryNode) string
	VisitBetween(node *BetweenNode) string
	VisitIn(node *InNode) string
	VisitBooleanChain(node *BooleanChain) string
	VisitNot(node *NotNode) string
	VisitInfix(node *InfixNode) string
	VisitConcat(node *ConcatNode) string
	VisitCase(node *CaseNode) string
	VisitExists(node *ExistsNode) string
	VisitRow(node *RowNode) string
	VisitFunction(node *FunctionNode) string
	VisitCast(node *CastNode) string
	VisitNextValue(node *NextValueNode) string
	VisitSubquery(node *SubqueryNode) string
	VisitOrdering(node *OrderingNode) string
	VisitSelectCore(node *SelectCore) string
	VisitUpdateStatement(node *UpdateStatement) string
	VisitDeleteStatement(node *DeleteStatement) string
	VisitInsertStatement(node *InsertStatement) string
	VisitMergeStatement(node *MergeStatement) string
}

// Parameterizer is implemented by visitors that collect bind parameters.
type Parameterizer interface {
	Params() []any
	Reset()
}

// Precedence orders operators from loosest to tightest binding.
type Precedence int

const (
	PrecSelect Precedence = iota
	PrecOr
	PrecAnd
	PrecNot
	PrecComparison
	PrecConcat
	PrecPlusMinus
	PrecTimesDivide
	PrecUnary
	PrecParentheses
	PrecColumn
)

var precedenceNames = [...]string{
	PrecSelect:      "select",
	PrecOr:          "or",
	PrecAnd:         "and",
	PrecNot:         "not",
	PrecComparison:  "comparison",
	PrecConcat:      "concat",
	PrecPlusMinus:   "plus-minus",
	PrecTimesDivide: "times-divide",
	PrecUnary:       "unary",
	PrecParentheses: "parentheses",
	PrecColumn:      "column",
}

func (p Precedence) String() string { return precedenceNames[p] }

// Tighter returns the next tighter level, used for the right operand of
// non-associative operators.
func (p Precedence) Tighter() Precedence {
	if p >= PrecColumn {
		return PrecColumn
	}
	return p + 1
}

// NeedsParens reports whether a child of precedence child must be
// parenthesized in a context of precedence ctx.
func NeedsParens(child, ctx Precedence) bool {
	return child < ctx
}

// RowMapper decodes one value from a result row.
type RowMapper[T any] func(row datatype.Row) (T, error)

// Expr is a typed expression producing values of type T.
type Expr[T any] interface {
	Node
	// Label returns the result label used when the expression is projected.
	// It is fixed on first call, by whichever statement renders the
	// expression first. An expression shared by two statements keeps that
	// label in both and may then clash with a label generated fresh in the
	// second; select it with As to give it a label of its own.
	Label(s *Scope) string
	RowMapper(s *Scope, label string) RowMapper[T]
}

// Statement is a select that can be nested inside another statement.
type Statement interface {
	Core() *SelectCore
}
