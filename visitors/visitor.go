// Package visitors renders the query AST to SQL and bind arguments in a
// single traversal.
package visitors

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/bawdo/typeq/datatype"
	"github.com/bawdo/typeq/dialect"
	"github.com/bawdo/typeq/nodes"
	"github.com/bawdo/typeq/schema"
)

// ErrUnsupported is returned when a statement needs a feature the dialect lacks.
var ErrUnsupported = errors.New("not supported by dialect")

// Operator SQL strings for ComparisonOp values.
var comparisonOpSQL = [...]string{
	nodes.OpEq:      "=",
	nodes.OpNotEq:   "<>",
	nodes.OpGt:      ">",
	nodes.OpGtEq:    ">=",
	nodes.OpLt:      "<",
	nodes.OpLtEq:    "<=",
	nodes.OpLike:    "like",
	nodes.OpNotLike: "not like",
}

// Operator SQL strings for InfixOp values.
var infixOpSQL = [...]string{
	nodes.OpPlus:   "+",
	nodes.OpMinus:  "-",
	nodes.OpTimes:  "*",
	nodes.OpDivide: "/",
}

var unaryOpSQL = [...]string{
	nodes.OpIsNull:    " is null",
	nodes.OpIsNotNull: " is not null",
}

var boolOpSQL = [...]string{
	nodes.OpAnd: " and ",
	nodes.OpOr:  " or ",
}

// SQL keywords for JoinType values.
var joinTypeSQL = [...]string{
	nodes.InnerJoin:      "join",
	nodes.LeftOuterJoin:  "left join",
	nodes.RightOuterJoin: "right join",
	nodes.FullOuterJoin:  "full outer join",
	nodes.CrossJoin:      "cross join",
}

// paramMarker stands in for placeholders while a statement is assembled
// out of textual order; numbering happens afterwards.
const paramMarker = "\x00"

// Option configures a Renderer at construction time.
type Option func(*Renderer)

// WithScope renders bare expressions against s. Statements bring their own
// scope and ignore it at the top level.
func WithScope(s *nodes.Scope) Option {
	return func(r *Renderer) { r.base = s }
}

// WithoutParams inlines every value as a literal instead of binding it.
//
// WARNING: values are only escaped, not parameterized. Use for display and
// debugging, never for statements built from untrusted input.
func WithoutParams() Option {
	return func(r *Renderer) { r.parameterize = false }
}

// WithPretty starts every top-level clause on a new line.
func WithPretty() Option {
	return func(r *Renderer) { r.sep = "\n" }
}

// Renderer walks the tree under a scope, producing SQL text and collecting
// bind parameters in placeholder order. A Renderer is not safe for
// concurrent use; trees are, so use one Renderer per goroutine.
type Renderer struct {
	db      *schema.Database
	dialect dialect.Dialect
	env     datatype.Env

	base  *nodes.Scope
	scope *nodes.Scope
	// enclosing is the scope a nested statement is correlated with.
	enclosing *nodes.Scope
	depth     int
	// ctes queues the WITH lists met while rendering the outermost select.
	ctes *[]*nodes.QueryAlias

	parameterize bool
	params       []any
	paramIndex   int
	placeholder  func(int) string

	sep string
}

var _ nodes.Visitor = (*Renderer)(nil)
var _ nodes.Parameterizer = (*Renderer)(nil)

// New returns a Renderer for db's dialect.
func New(db *schema.Database, opts ...Option) *Renderer {
	r := &Renderer{
		db:           db,
		dialect:      db.Dialect(),
		env:          db.Env(),
		parameterize: true,
		placeholder:  db.Dialect().Placeholder,
		sep:          " ",
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Params returns the bind parameters collected by the last render.
func (r *Renderer) Params() []any { return r.params }

// Reset clears collected parameters for reuse.
func (r *Renderer) Reset() {
	r.params = nil
	r.paramIndex = 0
	r.scope = r.base
	r.enclosing = nil
	r.depth = 0
	r.ctes = nil
}

// Render renders n, returning the SQL and its arguments. Resolution
// failures inside the tree are returned as errors.
func (r *Renderer) Render(n nodes.Node) (sql string, args []any, err error) {
	r.Reset()
	defer nodes.Catch(&err)
	sql = n.Accept(r)
	return sql, r.params, nil
}

func must[T any](v T, err error) T {
	if err != nil {
		nodes.Raise(err)
	}
	return v
}

func (r *Renderer) bind(v any) string {
	r.paramIndex++
	r.params = append(r.params, v)
	return r.placeholder(r.paramIndex)
}

// markParams renders fn with every placeholder written as paramMarker.
func (r *Renderer) markParams(fn func() string) string {
	saved, startIndex := r.placeholder, r.paramIndex
	r.placeholder = func(int) string { return paramMarker }
	defer func() {
		r.placeholder = saved
		r.paramIndex = startIndex
	}()
	return fn()
}

// numberParams replaces each paramMarker in sql with the next placeholder.
func (r *Renderer) numberParams(sql string) string {
	parts := strings.Split(sql, paramMarker)
	var sb strings.Builder
	sb.WriteString(parts[0])
	for _, p := range parts[1:] {
		r.paramIndex++
		sb.WriteString(r.placeholder(r.paramIndex))
		sb.WriteString(p)
	}
	return sb.String()
}

// child renders n, parenthesized when it binds more loosely than ctx.
func (r *Renderer) child(n nodes.Node, ctx nodes.Precedence) string {
	sql := n.Accept(r)
	if nodes.NeedsParens(n.Precedence(), ctx) {
		return "(" + sql + ")"
	}
	return sql
}

func (r *Renderer) list(items []nodes.Node, ctx nodes.Precedence) string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = r.child(it, ctx)
	}
	return strings.Join(out, ", ")
}

func (r *Renderer) currentScope() *nodes.Scope {
	if r.scope == nil {
		r.scope = nodes.NewScope(r.db)
	}
	return r.scope
}

// withScope runs fn with s as the current scope.
func (r *Renderer) withScope(s *nodes.Scope, fn func() string) string {
	saved := r.scope
	r.scope = s
	defer func() { r.scope = saved }()
	return fn()
}

// --- Aliases and FROM ---

func (r *Renderer) VisitTableSource(n *nodes.TableSource) string { return n.FromSQL() }
func (r *Renderer) VisitDual(n *nodes.DualAlias) string          { return n.FromSQL() }

func (r *Renderer) VisitQueryAlias(n *nodes.QueryAlias) string {
	if n.IsCTE() {
		return n.FromSQL()
	}
	return r.nested(n.Query()) + " " + n.Name()
}

func (r *Renderer) VisitFromAlias(n *nodes.FromAlias) string {
	frag := n.Alias.Accept(r)
	if frag == "" {
		return ""
	}
	return r.sep + "from " + frag
}

func (r *Renderer) VisitFromJoin(n *nodes.FromJoin) string {
	lhs := n.Left.Accept(r)
	joined := lhs + r.sep + joinTypeSQL[n.Type] + " " + n.Alias.Accept(r)
	if n.Type == nodes.CrossJoin {
		return joined
	}
	if n.On.IsEmpty() {
		nodes.Raise(fmt.Errorf("join to %s has no on clause", n.Alias.Prefix()))
	}
	tracker, used := r.currentScope().Tracker(n.Alias)
	on := r.withScope(tracker, func() string { return n.On.Accept(r) })
	if n.Validate && !used.Load() {
		nodes.Raise(&nodes.InvalidJoinError{Alias: n.Alias.Prefix()})
	}
	if len(n.Guards) > 0 {
		if nodes.NeedsParens(n.On.Precedence(), nodes.PrecAnd) {
			on = "(" + on + ")"
		}
		for _, g := range n.Guards {
			on += " and " + r.child(g, nodes.PrecAnd)
		}
	}
	return joined + " on " + on
}

// --- Leaves ---

func (r *Renderer) VisitColumn(n *nodes.ColumnNode) string {
	alias, name, err := n.Resolve(r.currentScope())
	if err != nil {
		nodes.Raise(err)
	}
	return alias.ColumnSQL(name)
}

func (r *Renderer) typeOf(goType reflect.Type, v any) datatype.Type {
	if goType == nil || goType.Kind() == reflect.Interface {
		goType = reflect.TypeOf(v)
	}
	return must(r.db.Registry().ByType(goType))
}

func (r *Renderer) VisitValue(n *nodes.ValueNode) string {
	if n.Value == nil {
		return "null"
	}
	dt := r.typeOf(n.GoType, n.Value)
	if !r.parameterize {
		return must(dt.LiteralAny(r.env, n.Value))
	}
	return r.bind(must(dt.BindAny(r.env, n.Value)))
}

func (r *Renderer) VisitLiteral(n *nodes.LiteralNode) string {
	if n.Value == nil {
		return "null"
	}
	return must(r.typeOf(n.GoType, n.Value).LiteralAny(r.env, n.Value))
}

// VisitSqlLiteral copies the fragment, replacing each ? with the next bind.
func (r *Renderer) VisitSqlLiteral(n *nodes.SqlLiteral) string {
	if len(n.Binds) == 0 {
		return n.Raw
	}
	parts := strings.Split(n.Raw, "?")
	if len(parts)-1 != len(n.Binds) {
		nodes.Raise(fmt.Errorf("sql fragment %q has %d placeholders for %d binds", n.Raw, len(parts)-1, len(n.Binds)))
	}
	var sb strings.Builder
	sb.WriteString(parts[0])
	for i, b := range n.Binds {
		sb.WriteString(r.VisitValue(nodes.Bind(b)))
		sb.WriteString(parts[i+1])
	}
	return sb.String()
}

// --- Predicates ---

func (r *Renderer) VisitComparison(n *nodes.ComparisonNode) string {
	ctx := nodes.PrecComparison.Tighter()
	sql := r.child(n.Left, ctx) + " " + comparisonOpSQL[n.Op] + " " + r.child(n.Right, ctx)
	if n.Escape {
		sql += " escape " + r.dialect.StringLiteral(`\`)
	}
	return sql
}

func (r *Renderer) VisitUnary(n *nodes.UnaryNode) string {
	return r.child(n.Expr, nodes.PrecComparison.Tighter()) + unaryOpSQL[n.Op]
}

func (r *Renderer) VisitBetween(n *nodes.BetweenNode) string {
	ctx := nodes.PrecComparison.Tighter()
	keyword := " between "
	if n.Negate {
		keyword = " not between "
	}
	return r.child(n.Expr, ctx) + keyword + r.child(n.Low, ctx) + " and " + r.child(n.High, ctx)
}

func (r *Renderer) VisitIn(n *nodes.InNode) string {
	keyword := " in "
	if n.Negate {
		keyword = " not in "
	}
	if n.Query != nil {
		return r.child(n.Expr, nodes.PrecComparison.Tighter()) + keyword + r.nested(n.Query)
	}
	if len(n.Vals) == 0 {
		if n.Negate {
			return "1 = 1"
		}
		return "1 = 0"
	}
	return r.child(n.Expr, nodes.PrecComparison.Tighter()) + keyword + "(" + r.list(n.Vals, nodes.PrecSelect) + ")"
}

func (r *Renderer) VisitBooleanChain(n *nodes.BooleanChain) string {
	if n.IsEmpty() {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(r.child(n.First(), n.OperandContext(0)))
	for i, t := range n.Terms() {
		sb.WriteString(boolOpSQL[t.Op])
		sb.WriteString(r.child(t.Expr, n.OperandContext(i+1)))
	}
	return sb.String()
}

func (r *Renderer) VisitNot(n *nodes.NotNode) string {
	return "not " + r.child(n.Expr, nodes.PrecNot)
}

func (r *Renderer) VisitExists(n *nodes.ExistsNode) string {
	if n.Negate {
		return "not exists " + r.nested(n.Query)
	}
	return "exists " + r.nested(n.Query)
}

// --- Expressions ---

func (r *Renderer) VisitInfix(n *nodes.InfixNode) string {
	prec := n.Precedence()
	rightCtx := prec
	if !n.Associative() {
		rightCtx = prec.Tighter()
	}
	return r.child(n.Left, prec) + " " + infixOpSQL[n.Op] + " " + r.child(n.Right, rightCtx)
}

func (r *Renderer) VisitConcat(n *nodes.ConcatNode) string {
	parts := make([]string, len(n.Parts))
	for i, p := range n.Parts {
		parts[i] = r.child(p, nodes.PrecConcat.Tighter())
	}
	return r.dialect.Concat(parts)
}

func (r *Renderer) VisitCase(n *nodes.CaseNode) string {
	var sb strings.Builder
	sb.WriteString("case")
	for _, w := range n.Whens {
		sb.WriteString(" when ")
		sb.WriteString(r.child(w.Cond, nodes.PrecSelect))
		sb.WriteString(" then ")
		sb.WriteString(r.child(w.Then, nodes.PrecSelect))
	}
	if n.Else != nil {
		sb.WriteString(" else ")
		sb.WriteString(r.child(n.Else, nodes.PrecSelect))
	}
	sb.WriteString(" end")
	return sb.String()
}

func (r *Renderer) VisitRow(n *nodes.RowNode) string {
	return "(" + r.list(n.Items, nodes.PrecSelect) + ")"
}

func (r *Renderer) VisitFunction(n *nodes.FunctionNode) string {
	if n.Star {
		return n.Name + "(*)"
	}
	args := r.list(n.Args, nodes.PrecSelect)
	if n.Distinct {
		return n.Name + "(distinct " + args + ")"
	}
	return n.Name + "(" + args + ")"
}

func (r *Renderer) VisitCast(n *nodes.CastNode) string {
	dt := must(r.db.Registry().ByType(n.GoType))
	return "cast(" + r.child(n.Expr, nodes.PrecSelect) + " as " + dt.SQLType(r.env) + ")"
}

func (r *Renderer) VisitNextValue(n *nodes.NextValueNode) string {
	if !r.dialect.SequenceInfo().SupportsSequences() {
		nodes.Raise(fmt.Errorf("sequence %s: %w", n.Name, ErrUnsupported))
	}
	schemaName := n.Schema
	if schemaName == "" {
		schemaName = r.db.DefaultSchema()
	}
	return r.dialect.NextFromSequence(schemaName, n.Name)
}

func (r *Renderer) VisitSubquery(n *nodes.SubqueryNode) string { return r.nested(n.Query) }

func (r *Renderer) VisitOrdering(n *nodes.OrderingNode) string {
	expr := r.child(n.Expr, nodes.PrecSelect)
	if n.Direction == nodes.Descending {
		expr += " desc"
	} else {
		expr += " asc"
	}
	switch n.Nulls {
	case nodes.NullsFirst:
		expr += " nulls first"
	case nodes.NullsLast:
		expr += " nulls last"
	}
	return expr
}

// --- Statements ---

// rootScope is the scope a statement declares, built from its FROM clause
// when the core carries none.
func (r *Renderer) rootScope(core *nodes.SelectCore) *nodes.Scope {
	if core.Scope != nil {
		return core.Scope
	}
	if core.From == nil {
		return nodes.NewScope(r.db)
	}
	return nodes.NewScope(r.db, core.From.Aliases()...)
}

// nested renders q inside the current statement, parenthesized and
// correlated with the current scope.
func (r *Renderer) nested(q nodes.Statement) string {
	return q.Core().Accept(r)
}

func (r *Renderer) VisitSelectCore(n *nodes.SelectCore) string {
	if r.depth == 0 && r.scope == nil {
		return r.statementSQL(n)
	}
	return r.selectSQL(n, r.currentScope(), true)
}

// statementSQL renders the outermost select. Every CTE declared anywhere
// below it is written once in its WITH clause, ahead of the body, so CTE
// arguments come first.
func (r *Renderer) statementSQL(core *nodes.SelectCore) string {
	start := len(r.params)
	var ctes []*nodes.QueryAlias
	r.ctes = &ctes
	defer func() { r.ctes = nil }()

	sql := r.markParams(func() string {
		body := r.selectSQL(core, nil, false)
		bodyParams := append([]any(nil), r.params[start:]...)
		r.params = r.params[:start]
		with := r.withSQL(ctes)
		r.params = append(r.params, bodyParams...)
		if with == "" {
			return body
		}
		return with + r.sep + body
	})
	return r.numberParams(sql)
}

// selectSQL renders core. A non-nil enclosing scope correlates core with
// it.
func (r *Renderer) selectSQL(core *nodes.SelectCore, enclosing *nodes.Scope, parens bool) string {
	if len(core.With) > 0 {
		if r.ctes == nil {
			nodes.Raise(errors.New("with clause needs an enclosing select statement"))
		}
		*r.ctes = append(*r.ctes, core.With...)
	}
	scope := r.rootScope(core)
	if enclosing != nil {
		scope = enclosing.PlusScope(scope)
	}
	savedScope, savedEnclosing := r.scope, r.enclosing
	r.scope, r.enclosing = scope, enclosing
	r.depth++
	defer func() {
		r.scope, r.enclosing = savedScope, savedEnclosing
		r.depth--
	}()

	var sb strings.Builder
	sb.WriteString("select ")
	sb.WriteString(r.projectionSQL(core.Projection, scope))
	if core.From != nil {
		sb.WriteString(core.From.Accept(r))
	}
	if !core.Where.IsEmpty() {
		sb.WriteString(r.sep + "where ")
		sb.WriteString(core.Where.Accept(r))
	}
	if len(core.GroupBy) > 0 {
		sb.WriteString(r.sep + "group by ")
		sb.WriteString(r.list(core.GroupBy, nodes.PrecSelect))
	}
	if !core.Having.IsEmpty() {
		sb.WriteString(r.sep + "having ")
		sb.WriteString(core.Having.Accept(r))
	}
	for _, u := range core.Unions {
		if u.All {
			sb.WriteString(r.sep + "union all ")
		} else {
			sb.WriteString(r.sep + "union ")
		}
		sb.WriteString(r.selectSQL(u.Query.Core(), enclosing, false))
	}
	if len(core.OrderBy) > 0 {
		sb.WriteString(r.sep + "order by ")
		sb.WriteString(r.list(core.OrderBy, nodes.PrecSelect))
	}
	sql := sb.String()
	if core.Fetch > 0 || core.Offset > 0 {
		n := core.Fetch
		if n <= 0 {
			n = math.MaxInt64 - core.Offset
		}
		sql = r.dialect.FetchFirst(sql, n, core.Offset)
	}
	if parens {
		return "(" + sql + ")"
	}
	return sql
}

// withSQL renders each distinct CTE once, in declaration order, after
// the CTEs its own body declares. CTE bodies cannot see the aliases of the
// statement declaring them.
func (r *Renderer) withSQL(ctes []*nodes.QueryAlias) string {
	seen := make(map[string]bool, len(ctes))
	var defs []string
	var declare func([]*nodes.QueryAlias)
	declare = func(ctes []*nodes.QueryAlias) {
		for _, c := range ctes {
			if seen[c.CTEName()] {
				continue
			}
			seen[c.CTEName()] = true

			var deps []*nodes.QueryAlias
			saved := r.ctes
			r.ctes = &deps
			mark := len(r.params)
			body := r.withScope(nodes.NewScope(r.db), func() string { return r.nested(c.Query()) })
			bodyParams := append([]any(nil), r.params[mark:]...)
			r.params = r.params[:mark]
			r.ctes = saved

			declare(deps)
			r.params = append(r.params, bodyParams...)
			defs = append(defs, c.CTEName()+" as "+body)
		}
	}
	declare(ctes)
	if len(defs) == 0 {
		return ""
	}
	return "with " + strings.Join(defs, ", ")
}

func (r *Renderer) projectionSQL(p *nodes.Projection, scope *nodes.Scope) string {
	if p == nil || len(p.Columns) == 0 {
		nodes.Raise(errors.New("select has no projection"))
	}
	cols := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		cols[i] = r.child(c.Node, nodes.PrecSelect) + " as " + c.Label(scope)
	}
	if p.Distinct {
		return "distinct " + strings.Join(cols, ", ")
	}
	return strings.Join(cols, ", ")
}

func (r *Renderer) statementScope(s *nodes.Scope, alias nodes.Alias) *nodes.Scope {
	if s != nil {
		return s
	}
	return nodes.NewScope(r.db, alias)
}

func (r *Renderer) whereSQL(where *nodes.BooleanChain) string {
	if where.IsEmpty() {
		return ""
	}
	return r.sep + "where " + where.Accept(r)
}

func (r *Renderer) VisitUpdateStatement(n *nodes.UpdateStatement) string {
	if len(n.Sets) == 0 {
		nodes.Raise(fmt.Errorf("update of %s sets no columns", n.Alias.Table()))
	}
	scope := r.statementScope(n.Scope, n.Alias)
	return r.withScope(scope, func() string {
		sets := make([]string, len(n.Sets))
		for i, a := range n.Sets {
			sets[i] = r.dialect.QuoteIdent(a.Column.Name) + " = " + r.child(a.Value, nodes.PrecSelect)
		}
		where := r.whereSQL(n.Where)
		return r.dialect.UpdateSQL(n.Alias.Table().QualifiedName(), n.Alias.Name(), strings.Join(sets, ", "), where)
	})
}

func (r *Renderer) VisitDeleteStatement(n *nodes.DeleteStatement) string {
	scope := r.statementScope(n.Scope, n.Alias)
	return r.withScope(scope, func() string {
		return r.dialect.DeleteSQL(n.Alias.Table().QualifiedName(), n.Alias.Name(), r.whereSQL(n.Where))
	})
}

func (r *Renderer) columnNames(cols []*schema.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = r.dialect.QuoteIdent(c.Name)
	}
	return out
}

func (r *Renderer) VisitInsertStatement(n *nodes.InsertStatement) string {
	scope := r.statementScope(n.Scope, n.Table)
	return r.withScope(scope, func() string {
		var sb strings.Builder
		sb.WriteString("insert into ")
		sb.WriteString(n.Table.Table().QualifiedName())
		sb.WriteString(" (")
		sb.WriteString(strings.Join(r.columnNames(n.Columns), ", "))
		sb.WriteString(") values ")
		rows := make([]string, len(n.Rows))
		for i, row := range n.Rows {
			rows[i] = "(" + r.list(row, nodes.PrecSelect) + ")"
		}
		sb.WriteString(strings.Join(rows, ", "))
		return sb.String()
	})
}

func (r *Renderer) VisitMergeStatement(n *nodes.MergeStatement) string {
	info := r.dialect.MergeInfo()
	if info == nil || !info.SupportsUpsert() {
		nodes.Raise(fmt.Errorf("merge into %s: %w", n.Table.Table(), ErrUnsupported))
	}
	scope := r.statementScope(n.Scope, n.Table)
	start := len(r.params)

	spec := dialect.MergeSpec{
		TargetTable:       n.Table.Table().QualifiedName(),
		TargetAlias:       n.Table.Prefix(),
		SourceAlias:       "s",
		ColumnNames:       r.columnNames(n.Columns),
		IDColumnNames:     r.columnNames(n.IDColumns),
		InsertColumnNames: r.columnNames(n.InsertColumns),
		UpdateColumnNames: r.columnNames(n.UpdateColumns),
		SelectArgsSQL:     make([]string, len(n.Values)),
		SelectArgs:        make([][]any, len(n.Values)),
	}
	if spec.TargetAlias == spec.SourceAlias {
		spec.SourceAlias = "src"
	}

	sql := r.markParams(func() string {
		r.withScope(scope, func() string {
			for i, v := range n.Values {
				mark := len(r.params)
				spec.SelectArgsSQL[i] = r.child(v, nodes.PrecSelect)
				spec.SelectArgs[i] = append([]any(nil), r.params[mark:]...)
			}
			return ""
		})
		return info.MergeSQL(spec)
	})
	r.params = append(r.params[:start], info.MergeArgs(spec)...)
	return r.numberParams(sql)
}
