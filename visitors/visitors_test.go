package visitors

import (
	"errors"
	"testing"
	"time"

	"github.com/bawdo/typeq/dialect"
	"github.com/bawdo/typeq/internal/testutil"
	"github.com/bawdo/typeq/nodes"
	"github.com/bawdo/typeq/schema"
)

// widgetScope returns a database for d and a scope holding WIDGET w.
func widgetScope(d dialect.Dialect) (*schema.Database, *nodes.Scope) {
	db := testutil.NewDatabaseFor(d)
	return db, nodes.NewScope(db, nodes.MustAlias[testutil.Widget](db, "w"))
}

func render(t *testing.T, d dialect.Dialect, n nodes.Node, opts ...Option) (string, []any) {
	t.Helper()
	db, s := widgetScope(d)
	sql, args, err := New(db, append([]Option{WithScope(s)}, opts...)...).Render(n)
	testutil.AssertNoError(t, err)
	return sql, args
}

var (
	price = nodes.Col(testutil.WidgetPrice)
	name  = nodes.Col(testutil.WidgetName)
	id    = nodes.Col(testutil.WidgetID)
)

// --- Precedence ---

func TestArithmeticParenthesization(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		expr nodes.Node
		want string
	}{
		{"looser left operand", price.Plus(1).Times(2), "(w.PRICE + ?) * ?"},
		{"tighter left operand", price.Times(2).Plus(1), "w.PRICE * ? + ?"},
		{"left-assoc minus", price.Minus(1).Minus(2), "w.PRICE - ? - ?"},
		{"right operand of minus", price.MinusExpr(price.Minus(1)), "w.PRICE - (w.PRICE - ?)"},
		{"right operand of plus", price.PlusExpr(price.Plus(1)), "w.PRICE + w.PRICE + ?"},
		{"right operand of divide", price.DivideExpr(price.Times(2)), "w.PRICE / (w.PRICE * ?)"},
		{"arithmetic in comparison", price.Plus(1).Gt(5), "w.PRICE + ? > ?"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			sql, _ := render(t, dialect.Ansi(), tc.expr)
			testutil.AssertSQL(t, sql, tc.want)
		})
	}
}

func TestBooleanParenthesization(t *testing.T) {
	t.Parallel()
	a, b, c := price.Gt(1), price.Lt(5), name.IsNull()
	cases := []struct {
		name string
		expr nodes.Node
		want string
	}{
		{"or inside and", nodes.And(nodes.Or(a, b), c), "(w.PRICE > ? or w.PRICE < ?) and w.NAME is null"},
		{"and inside or", nodes.Or(nodes.And(a, b), c), "w.PRICE > ? and w.PRICE < ? or w.NAME is null"},
		{"not of and", nodes.Not(nodes.And(a, b)), "not (w.PRICE > ? and w.PRICE < ?)"},
		{"not of comparison", nodes.Not(a), "not w.PRICE > ?"},
		{"fluent and then or", a.And(b).Or(c), "w.PRICE > ? and w.PRICE < ? or w.NAME is null"},
		{"or operand of mixed chain",
			nodes.NewChain().Start(nodes.Or(a, b)).AppendOr(c).AppendAnd(a),
			"w.PRICE > ? or w.PRICE < ? or w.NAME is null and w.PRICE > ?"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			sql, _ := render(t, dialect.Ansi(), tc.expr)
			testutil.AssertSQL(t, sql, tc.want)
		})
	}
}

// --- Predicates ---

func TestPredicates(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		expr nodes.Node
		want string
		args []any
	}{
		{"in", id.In(1, 2, 3), "w.ID in (?, ?, ?)", []any{int64(1), int64(2), int64(3)}},
		{"empty in", id.In(), "1 = 0", nil},
		{"empty not in", id.NotIn(), "1 = 1", nil},
		{"between", price.Between(1, 2), "w.PRICE between ? and ?", []any{1.0, 2.0}},
		{"not between", price.NotBetween(1, 2), "w.PRICE not between ? and ?", []any{1.0, 2.0}},
		{"like", name.Like("b%"), "w.NAME like ?", []any{"b%"}},
		{"not like", name.NotLike("b%"), "w.NAME not like ?", []any{"b%"}},
		{"is not null", nodes.Col(testutil.WidgetDeletedAt).IsNotNull(), "w.DELETED_AT is not null", nil},
		{"column to column", price.NotEqExpr(price), "w.PRICE <> w.PRICE", nil},
		{"row in", nodes.Row(id, name).In(nodes.Values{int64(1), "a"}, nodes.Values{int64(2), "b"}),
			"(w.ID, w.NAME) in ((?, ?), (?, ?))", []any{int64(1), "a", int64(2), "b"}},
		{"row eq", nodes.Row(id, name).Eq(nodes.Row(nodes.Value[int64](1), nodes.Value("a"))),
			"(w.ID, w.NAME) = (?, ?)", []any{int64(1), "a"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			sql, args := render(t, dialect.Ansi(), tc.expr)
			testutil.AssertSQL(t, sql, tc.want)
			testutil.AssertArgs(t, args, tc.args...)
		})
	}
}

func TestEscapedLikePatterns(t *testing.T) {
	t.Parallel()
	sql, args := render(t, dialect.Ansi(), name.Contains("50%_off"))
	testutil.AssertSQL(t, sql, `w.NAME like ? escape '\'`)
	testutil.AssertArgs(t, args, `%50\%\_off%`)

	sql, args = render(t, dialect.MySQL(), name.StartsWith("a"))
	testutil.AssertSQL(t, sql, `w.NAME like ? escape '\\'`)
	testutil.AssertArgs(t, args, "a%")

	_, args = render(t, dialect.Postgres(), name.EndsWith(`c:\`))
	testutil.AssertArgs(t, args, `%c:\\`)
}

// --- Functions and expressions ---

func TestFunctions(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		expr nodes.Node
		want string
	}{
		{"count star", nodes.Count(), "count(*)"},
		{"count distinct", nodes.CountDistinct(nodes.Col(testutil.WidgetManufacturerID)), "count(distinct w.MANUFACTURER_ID)"},
		{"upper", nodes.Upper(name), "upper(w.NAME)"},
		{"coalesce", nodes.Coalesce(name, nodes.Literal("none")), "coalesce(w.NAME, 'none')"},
		{"sum of product", nodes.Sum(price.Times(2)), "sum(w.PRICE * ?)"},
		{"cast", nodes.Cast[string](id), "cast(w.ID as varchar)"},
		{"case", nodes.When(price.Gt(10), nodes.Literal("high")).When(price.Gt(1), nodes.Literal("mid")).Else(nodes.Literal("low")),
			"case when w.PRICE > ? then 'high' when w.PRICE > ? then 'mid' else 'low' end"},
		{"case without else", nodes.When(price.Gt(10), nodes.Literal[int64](1)).End(), "case when w.PRICE > ? then 1 end"},
		{"ordering", price.Desc().NullsFirst(), "w.PRICE desc nulls first"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			sql, _ := render(t, dialect.Ansi(), tc.expr)
			testutil.AssertSQL(t, sql, tc.want)
		})
	}
}

func TestConcatPerDialect(t *testing.T) {
	t.Parallel()
	expr := nodes.Concat(name, nodes.Literal("-"), name).Eq("x")

	sql, _ := render(t, dialect.Ansi(), expr)
	testutil.AssertSQL(t, sql, "w.NAME || '-' || w.NAME = ?")

	sql, _ = render(t, dialect.MySQL(), expr)
	testutil.AssertSQL(t, sql, "concat(w.NAME, '-', w.NAME) = ?")
}

func TestRawFragmentBinds(t *testing.T) {
	t.Parallel()
	frag := nodes.Raw[bool]("w.PRICE between ? and ?", 1.0, 2.0)

	sql, args := render(t, dialect.Postgres(), nodes.And(name.Eq("a"), frag))
	testutil.AssertSQL(t, sql, "w.NAME = $1 and w.PRICE between $2 and $3")
	testutil.AssertArgs(t, args, "a", 1.0, 2.0)

	db, s := widgetScope(dialect.Ansi())
	_, _, err := New(db, WithScope(s)).Render(nodes.Raw[bool]("w.PRICE > ? and ?", 1.0))
	testutil.AssertError(t, err)
}

func TestNextValue(t *testing.T) {
	t.Parallel()
	sql, _ := render(t, dialect.Postgres(), nodes.NextValue[int64]("", "widget_seq"))
	testutil.AssertSQL(t, sql, "nextval('widget_seq')")

	db, s := widgetScope(dialect.MySQL())
	_, _, err := New(db, WithScope(s)).Render(nodes.NextValue[int64]("", "widget_seq"))
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

// --- Values and literals ---

func TestPlaceholderNumbering(t *testing.T) {
	t.Parallel()
	expr := nodes.And(price.Gt(1), name.Eq("a"), id.In(4, 5))

	sql, args := render(t, dialect.Postgres(), expr)
	testutil.AssertSQL(t, sql, "w.PRICE > $1 and w.NAME = $2 and w.ID in ($3, $4)")
	testutil.AssertArgs(t, args, 1.0, "a", int64(4), int64(5))

	sql, _ = render(t, dialect.SQLite(), expr)
	testutil.AssertSQL(t, sql, "w.PRICE > ? and w.NAME = ? and w.ID in (?, ?)")
}

func TestWithoutParamsInlinesLiterals(t *testing.T) {
	t.Parallel()
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	cases := []struct {
		name string
		d    dialect.Dialect
		expr nodes.Node
		want string
	}{
		{"string", dialect.Ansi(), name.Eq("it's"), "w.NAME = 'it''s'"},
		{"mysql backslash", dialect.MySQL(), name.Eq(`a\b`), `w.NAME = 'a\\b'`},
		{"float", dialect.Ansi(), price.Gt(1.5), "w.PRICE > 1.5"},
		{"int", dialect.Ansi(), id.Eq(42), "w.ID = 42"},
		{"bool", dialect.Ansi(), nodes.Value(true).Eq(false), "true = false"},
		{"timestamp", dialect.Ansi(), nodes.Col(testutil.WidgetDeletedAt).Lt(ts), "w.DELETED_AT < TIMESTAMP '2024-01-02 03:04:05.000000'"},
		{"sqlite timestamp", dialect.SQLite(), nodes.Col(testutil.WidgetDeletedAt).Lt(ts), "w.DELETED_AT < '2024-01-02 03:04:05.000000'"},
		{"bytes", dialect.Ansi(), nodes.Value([]byte{0x0a, 0xff}).IsNull(), "X'0AFF' is null"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			sql, args := render(t, tc.d, tc.expr, WithoutParams())
			testutil.AssertSQL(t, sql, tc.want)
			testutil.AssertArgs(t, args)
		})
	}
}

func TestNilValueRendersNull(t *testing.T) {
	t.Parallel()
	sql, args := render(t, dialect.Ansi(), nodes.Cond(&nodes.ComparisonNode{Left: name, Right: nodes.Bind(nil), Op: nodes.OpEq}))
	testutil.AssertSQL(t, sql, "w.NAME = null")
	testutil.AssertArgs(t, args)
}

// --- Statements ---

func widgetCore(s *nodes.Scope) *nodes.SelectCore {
	w := s.Aliases()[0]
	return &nodes.SelectCore{
		Scope:      s,
		From:       &nodes.FromAlias{Alias: w},
		Projection: &nodes.Projection{Columns: []nodes.ProjectionColumn{nodes.Project(name, "")}},
		Where:      nodes.NewChain().Start(price.Gt(1)),
		OrderBy:    []nodes.Node{name.Asc()},
	}
}

func TestSelectCoreRendering(t *testing.T) {
	t.Parallel()
	db, s := widgetScope(dialect.Ansi())

	sql, args, err := New(db).Render(widgetCore(s))
	testutil.AssertNoError(t, err)
	testutil.AssertSQL(t, sql, "select w.NAME as w_NAME from WIDGET w where w.PRICE > ? order by w.NAME asc")
	testutil.AssertArgs(t, args, 1.0)
}

func TestSelectCorePretty(t *testing.T) {
	t.Parallel()
	db, s := widgetScope(dialect.Ansi())

	sql, _, err := New(db, WithPretty()).Render(widgetCore(s))
	testutil.AssertNoError(t, err)
	testutil.AssertSQL(t, sql, "select w.NAME as w_NAME\nfrom WIDGET w\nwhere w.PRICE > ?\norder by w.NAME asc")
}

func TestSelectCoreWithoutProjectionFails(t *testing.T) {
	t.Parallel()
	db, s := widgetScope(dialect.Ansi())
	core := widgetCore(s)
	core.Projection = nil

	_, _, err := New(db).Render(core)
	testutil.AssertError(t, err)
}

func TestRendererIsReusable(t *testing.T) {
	t.Parallel()
	db, s := widgetScope(dialect.Postgres())
	r := New(db)
	core := widgetCore(s)

	first, firstArgs, err := r.Render(core)
	testutil.AssertNoError(t, err)
	second, secondArgs, err := r.Render(core)
	testutil.AssertNoError(t, err)
	testutil.AssertSQL(t, second, first)
	testutil.AssertArgs(t, secondArgs, firstArgs...)
	testutil.AssertEqual(t, len(r.Params()), 1)
}

func TestUnresolvedColumnIsAnError(t *testing.T) {
	t.Parallel()
	db, s := widgetScope(dialect.Ansi())

	_, _, err := New(db, WithScope(s)).Render(nodes.Col(testutil.ManufacturerName).Eq("x"))
	testutil.AssertErrorIs(t, err, nodes.ErrNoAlias)
}

func TestMergeUnsupportedWithoutUpsert(t *testing.T) {
	t.Parallel()
	d := dialect.New(dialect.WithMergeInfo(func(dialect.Dialect) dialect.MergeInfo { return nil }))
	db := testutil.NewDatabaseFor(d)
	m := nodes.MustAlias[testutil.Manufacturer](db, "t")

	_, _, err := New(db).Render(&nodes.MergeStatement{Table: m.TableSource})
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}
