package visitors

import (
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/bawdo/typeq/dialect"
	"github.com/bawdo/typeq/internal/testutil"
	"github.com/bawdo/typeq/nodes"
	"github.com/bawdo/typeq/schema"
)

// treeGen builds random expression trees over WIDGET w. Every node kind
// that binds or nests is reachable.
type treeGen struct {
	rnd *rand.Rand
	db  *schema.Database
}

func (g *treeGen) num(depth int) nodes.Expr[float64] {
	if depth == 0 {
		switch g.rnd.IntN(3) {
		case 0:
			return price
		case 1:
			return nodes.Value(float64(g.rnd.IntN(100)))
		default:
			return nodes.Literal(float64(g.rnd.IntN(100)))
		}
	}
	a, b := g.num(depth-1), g.num(depth-1)
	switch g.rnd.IntN(6) {
	case 0:
		return g.arith(a).PlusExpr(b)
	case 1:
		return g.arith(a).MinusExpr(b)
	case 2:
		return g.arith(a).TimesExpr(b)
	case 3:
		return g.arith(a).DivideExpr(b)
	case 4:
		return nodes.When[float64](g.cond(depth-1), a).Else(b)
	default:
		return g.num(0)
	}
}

// arith gives e the operator methods of a typed expression.
func (g *treeGen) arith(e nodes.Expr[float64]) *nodes.Expression[float64] {
	return nodes.Typed[float64](e, "arithmetic_")
}

func (g *treeGen) cond(depth int) nodes.Expr[bool] {
	if depth == 0 {
		switch g.rnd.IntN(7) {
		case 0:
			return g.arith(g.num(0)).GtExpr(g.num(0))
		case 1:
			return price.Between(float64(g.rnd.IntN(10)), float64(10+g.rnd.IntN(10)))
		case 2:
			vals := make([]int64, g.rnd.IntN(4))
			for i := range vals {
				vals[i] = g.rnd.Int64N(50)
			}
			return id.In(vals...)
		case 3:
			return name.Eq("n" + strconv.Itoa(g.rnd.IntN(10)))
		case 4:
			return nodes.Row(id, name).Eq(nodes.Row(nodes.Value(g.rnd.Int64N(50)), nodes.Value("r")))
		case 5:
			return nodes.Exists(g.subquery())
		default:
			return name.IsNull()
		}
	}
	a, b := g.cond(depth-1), g.cond(depth-1)
	switch g.rnd.IntN(5) {
	case 0:
		return nodes.And(a, b)
	case 1:
		return nodes.Or(a, b)
	case 2:
		return nodes.Not(a)
	case 3:
		return nodes.Cond(nodes.NewChain().Start(a).AppendOr(b).AppendAnd(g.cond(0)))
	default:
		return g.arith(g.num(depth - 1)).GtExpr(g.num(depth - 1))
	}
}

// subquery correlates a manufacturer lookup with w and binds its own values.
func (g *treeGen) subquery() *nodes.SelectCore {
	m := nodes.MustAlias[testutil.Manufacturer](g.db, "m")
	return &nodes.SelectCore{
		Scope:      nodes.NewScope(g.db, m),
		From:       &nodes.FromAlias{Alias: m},
		Projection: &nodes.Projection{Columns: []nodes.ProjectionColumn{nodes.Project(nodes.Literal[int64](1), "one")}},
		Where: nodes.NewChain().
			Start(nodes.Col(testutil.ManufacturerID).EqExpr(nodes.Col(testutil.WidgetManufacturerID))).
			AppendAnd(nodes.Col(testutil.ManufacturerCountry).Eq("c" + strconv.Itoa(g.rnd.IntN(10)))),
	}
}

var dollarParam = regexp.MustCompile(`\$(\d+)`)

func TestRandomTreesPairPlaceholdersWithArgs(t *testing.T) {
	t.Parallel()
	for seed := range uint64(200) {
		ansiDB, ansiScope := widgetScope(dialect.Ansi())
		pgDB, pgScope := widgetScope(dialect.Postgres())
		ansiGen := &treeGen{rnd: rand.New(rand.NewPCG(seed, 7)), db: ansiDB}
		pgGen := &treeGen{rnd: rand.New(rand.NewPCG(seed, 7)), db: pgDB}
		depth := 1 + int(seed%4)

		sql, args, err := New(ansiDB, WithScope(ansiScope)).Render(ansiGen.cond(depth))
		testutil.AssertNoError(t, err)
		if got := strings.Count(sql, "?"); got != len(args) {
			t.Fatalf("seed %d: %d placeholders for %d args in %s", seed, got, len(args), sql)
		}

		pgSQL, pgArgs, err := New(pgDB, WithScope(pgScope)).Render(pgGen.cond(depth))
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, len(pgArgs), len(args))
		matches := dollarParam.FindAllStringSubmatch(pgSQL, -1)
		if len(matches) != len(pgArgs) {
			t.Fatalf("seed %d: %d placeholders for %d args in %s", seed, len(matches), len(pgArgs), pgSQL)
		}
		for i, m := range matches {
			if m[1] != strconv.Itoa(i+1) {
				t.Fatalf("seed %d: placeholder %d is $%s in %s", seed, i+1, m[1], pgSQL)
			}
		}
	}
}
