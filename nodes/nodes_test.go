package nodes

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/bawdo/typeq/dialect"
	"github.com/bawdo/typeq/internal/testutil"
)

type mapRow map[string]any

func (r mapRow) Value(label string) (any, bool) {
	v, ok := r[label]
	return v, ok
}

var (
	widgetType       = reflect.TypeFor[testutil.Widget]()
	manufacturerType = reflect.TypeFor[testutil.Manufacturer]()
)

// --- Aliases ---

func TestTableAliasNaming(t *testing.T) {
	t.Parallel()
	db := testutil.NewDatabase()
	w := MustAlias[testutil.Widget](db, "w")
	anon := Anonymous[testutil.Part](db)

	testutil.AssertEqual(t, w.Prefix(), "w")
	testutil.AssertEqual(t, w.FromSQL(), "WIDGET w")
	testutil.AssertEqual(t, w.ColumnSQL("NAME"), "w.NAME")
	testutil.AssertEqual(t, w.ColumnLabel("NAME"), "w_NAME")

	testutil.AssertEqual(t, anon.Prefix(), "PARTS")
	testutil.AssertEqual(t, anon.FromSQL(), "PARTS")
	testutil.AssertEqual(t, anon.ColumnSQL("PART_CODE"), "PARTS.PART_CODE")
	testutil.AssertEqual(t, anon.ColumnLabel("PART_CODE"), "PARTS_PART_CODE")
}

func TestTableAliasEquality(t *testing.T) {
	t.Parallel()
	db := testutil.NewDatabase()
	w1 := MustAlias[testutil.Widget](db, "w")
	w2 := MustAlias[testutil.Widget](db, "w")
	other := MustAlias[testutil.Widget](db, "x")

	if !w1.Equal(w2) {
		t.Error("expected aliases with the same table and name to be equal")
	}
	if w1.Equal(other) {
		t.Error("expected aliases with different names to differ")
	}
	if w1.Equal(nil) {
		t.Error("expected nil alias to differ")
	}
}

func TestTableAliasProjectionColumns(t *testing.T) {
	t.Parallel()
	db := testutil.NewDatabase()
	p := MustAlias[testutil.Part](db, "p")
	s := NewScope(db, p)

	cols := p.ProjectionColumns()
	testutil.AssertEqual(t, len(cols), 2)
	testutil.AssertEqual(t, cols[0].Label(s), "p_ID")
	testutil.AssertEqual(t, cols[1].Label(s), "p_PART_CODE")
	testutil.AssertEqual(t, cols[1].Column().Field, "Code")
	if &p.ProjectionColumns()[0] != &cols[0] {
		t.Error("expected projection columns to be built once")
	}
}

func TestDualFromSQL(t *testing.T) {
	t.Parallel()
	ansi := Dual(testutil.NewDatabase())
	pg := Dual(testutil.NewDatabaseFor(dialect.Postgres()))

	testutil.AssertEqual(t, ansi.FromSQL(), "DUAL")
	testutil.AssertEqual(t, pg.FromSQL(), "")
	if !ansi.Equal(pg) {
		t.Error("expected dual aliases to be equal")
	}
	testutil.AssertEqual(t, len(ansi.ProjectionColumns()), 0)
}

// --- Scope ---

func TestScopeFindAlias(t *testing.T) {
	t.Parallel()
	db := testutil.NewDatabase()
	w := MustAlias[testutil.Widget](db, "w")
	m := MustAlias[testutil.Manufacturer](db, "m")
	s := NewScope(db, w, m)

	got, err := s.FindAlias(manufacturerType)
	testutil.AssertNoError(t, err)
	if !got.Equal(m) {
		t.Errorf("expected m, got %s", got.Prefix())
	}

	_, err = s.FindAlias(reflect.TypeFor[testutil.Part]())
	testutil.AssertErrorIs(t, err, ErrNoAlias)
}

func TestScopeAmbiguousAtOneLevel(t *testing.T) {
	t.Parallel()
	db := testutil.NewDatabase()
	s := NewScope(db, MustAlias[testutil.Widget](db, "w1"), MustAlias[testutil.Widget](db, "w2"))

	_, err := s.FindAlias(widgetType)
	testutil.AssertErrorIs(t, err, ErrAmbiguousAlias)
}

func TestScopeInnerLevelShadowsOuter(t *testing.T) {
	t.Parallel()
	db := testutil.NewDatabase()
	outer := MustAlias[testutil.Widget](db, "w1")
	inner := MustAlias[testutil.Widget](db, "w2")
	s := NewScope(db, outer).Plus(inner)

	got, err := s.FindAlias(widgetType)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, got.Prefix(), "w2")

	got, err = s.FindAliasByName("W1")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, got.Prefix(), "w1")
}

func TestScopeFindAliasNamedChecksRowType(t *testing.T) {
	t.Parallel()
	db := testutil.NewDatabase()
	s := NewScope(db, MustAlias[testutil.Widget](db, "w"))

	_, err := s.FindAliasNamed(manufacturerType, "w")
	testutil.AssertErrorIs(t, err, ErrAliasTypeMismatch)

	_, err = s.FindAliasNamed(widgetType, "nope")
	testutil.AssertErrorIs(t, err, ErrNoAlias)
}

func TestScopeLabelCounterIsShared(t *testing.T) {
	t.Parallel()
	db := testutil.NewDatabase()
	root := NewScope(db, MustAlias[testutil.Widget](db, "w"))
	extended := root.Extend(MustAlias[testutil.Manufacturer](db, "m"))
	child := extended.Plus(MustAlias[testutil.Part](db, "p"))

	testutil.AssertEqual(t, root.NewLabel(), int64(1))
	testutil.AssertEqual(t, extended.NewLabel(), int64(2))
	testutil.AssertEqual(t, child.NewLabel(), int64(3))
	testutil.AssertEqual(t, root.Empty().NewLabel(), int64(1))
}

func TestScopeExtendKeepsLevel(t *testing.T) {
	t.Parallel()
	db := testutil.NewDatabase()
	root := NewScope(db, MustAlias[testutil.Widget](db, "w"))
	child := root.Plus(MustAlias[testutil.Manufacturer](db, "m"))
	ext := child.Extend(MustAlias[testutil.Part](db, "p"))

	testutil.AssertEqual(t, len(ext.Aliases()), 2)
	if ext.Outer() != root {
		t.Error("expected extended scope to share the outer chain")
	}
	if !root.IsOutermost() || ext.IsOutermost() {
		t.Error("unexpected outermost flags")
	}
}

func TestScopePlusScopeReroots(t *testing.T) {
	t.Parallel()
	db := testutil.NewDatabase()
	outer := NewScope(db, MustAlias[testutil.Manufacturer](db, "m"))
	inner := NewScope(db, MustAlias[testutil.Widget](db, "w1")).Plus(MustAlias[testutil.Widget](db, "w2"))

	nested := outer.PlusScope(inner)
	testutil.AssertEqual(t, nested.Aliases()[0].Prefix(), "w2")
	testutil.AssertEqual(t, nested.Outer().Aliases()[0].Prefix(), "w1")
	if nested.Outer().Outer() != outer {
		t.Error("expected inner's outermost level to be re-rooted on outer")
	}
	_, err := nested.FindAlias(manufacturerType)
	testutil.AssertNoError(t, err)
}

func TestScopeTrackerNotesUse(t *testing.T) {
	t.Parallel()
	db := testutil.NewDatabase()
	w := MustAlias[testutil.Widget](db, "w")
	m := MustAlias[testutil.Manufacturer](db, "m")
	tracked, used := NewScope(db, w, m).Tracker(m)
	inner := tracked.Plus()

	_, err := inner.FindAlias(widgetType)
	testutil.AssertNoError(t, err)
	if used.Load() {
		t.Fatal("expected resolving w to leave the tracker unset")
	}
	_, err = inner.FindAlias(manufacturerType)
	testutil.AssertNoError(t, err)
	if !used.Load() {
		t.Error("expected resolving m to set the tracker")
	}
}

// --- Column resolution ---

func TestColumnResolution(t *testing.T) {
	t.Parallel()
	db := testutil.NewDatabase()
	w := MustAlias[testutil.Widget](db, "w")
	p := MustAlias[testutil.Part](db, "p")
	s := NewScope(db, w, p)

	testutil.AssertEqual(t, Col(testutil.WidgetName).Label(s), "w_NAME")
	testutil.AssertEqual(t, Col(testutil.PartCode).Label(s), "p_PART_CODE")
	testutil.AssertEqual(t, ColOf(w, testutil.WidgetPrice).Label(s), "w_PRICE")

	_, _, err := ColNamed("w", testutil.ManufacturerName).Node().Resolve(s)
	testutil.AssertErrorIs(t, err, ErrAliasTypeMismatch)

	alias, name, err := Named(w, "NAME").Resolve(s)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, alias.Prefix(), "w")
	testutil.AssertEqual(t, name, "NAME")
}

func TestColumnLabelOutOfScopeRaises(t *testing.T) {
	t.Parallel()
	db := testutil.NewDatabase()
	s := NewScope(db, MustAlias[testutil.Widget](db, "w"))

	err := func() (err error) {
		defer Catch(&err)
		Col(testutil.ManufacturerName).Label(s)
		return nil
	}()
	testutil.AssertErrorIs(t, err, ErrNoAlias)
}

// --- Labels ---

func TestGeneratedLabelsAreMemoized(t *testing.T) {
	t.Parallel()
	db := testutil.NewDatabase()
	s := NewScope(db)

	v := Value[int64](1)
	testutil.AssertEqual(t, v.Label(s), "value_1")
	testutil.AssertEqual(t, v.Label(s), "value_1")
	testutil.AssertEqual(t, Literal("x").Label(s), "literal_2")
	testutil.AssertEqual(t, Count().Label(s), "count_3")
	testutil.AssertEqual(t, Sum[float64](Col(testutil.WidgetPrice)).Label(s), "sum_4")
	testutil.AssertEqual(t, Col(testutil.WidgetPrice).Gt(1).Label(s), "test_5")
	testutil.AssertEqual(t, As[int64](v, "n").Label(s), "n")
}

func TestGeneratedLabelSurvivesAcrossStatements(t *testing.T) {
	t.Parallel()
	db := testutil.NewDatabase()
	shared := Upper(Col(testutil.WidgetName))

	testutil.AssertEqual(t, shared.Label(NewScope(db)), "upper_1")
	second := NewScope(db)
	testutil.AssertEqual(t, shared.Label(second), "upper_1")
	testutil.AssertEqual(t, Upper(Col(testutil.WidgetName)).Label(second), "upper_1")
	testutil.AssertEqual(t, As[string](shared, "shared_name").Label(second), "shared_name")
}

func TestGeneratedLabelsUnderConcurrency(t *testing.T) {
	t.Parallel()
	db := testutil.NewDatabase()
	s := NewScope(db)
	shared := Value[int64](7)
	exprs := make([]*Expression[int64], 32)
	for i := range exprs {
		exprs[i] = Value(int64(i))
	}

	var wg sync.WaitGroup
	sharedLabels := make([]string, 32)
	ownLabels := make([]string, 32)
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sharedLabels[i] = shared.Label(s)
			ownLabels[i] = exprs[i].Label(s)
		}()
	}
	wg.Wait()

	for _, l := range sharedLabels {
		testutil.AssertEqual(t, l, sharedLabels[0])
	}
	seen := map[string]bool{sharedLabels[0]: true}
	for _, l := range ownLabels {
		if seen[l] {
			t.Fatalf("label %s generated twice", l)
		}
		seen[l] = true
	}
}

// --- Projection ---

func TestProjectRecordsColumnReference(t *testing.T) {
	t.Parallel()
	db := testutil.NewDatabase()
	s := NewScope(db, MustAlias[testutil.Widget](db, "w"))

	byCol := Project(Col(testutil.WidgetName), "")
	if byCol.RowType() != widgetType {
		t.Errorf("expected row type %s, got %v", widgetType, byCol.RowType())
	}
	col, ok := byCol.TableColumn(s)
	if !ok || col.Name != "NAME" {
		t.Errorf("expected NAME column, got %v", col)
	}

	computed := Project(Value[int64](1), "")
	if computed.RowType() != nil {
		t.Error("expected computed projection to have no row type")
	}
	if _, ok := computed.TableColumn(s); ok {
		t.Error("expected computed projection to have no table column")
	}
}

func TestProjectionDecoder(t *testing.T) {
	t.Parallel()
	db := testutil.NewDatabase()
	s := NewScope(db, MustAlias[testutil.Widget](db, "w"))
	p := &Projection{Columns: []ProjectionColumn{
		Project(Col(testutil.WidgetName), ""),
		Project(Value[int64](3), ""),
		Project(Col(testutil.WidgetPrice), "price"),
	}}

	labels := p.Labels(s)
	if !reflect.DeepEqual(labels, []string{"w_NAME", "value_1", "price"}) {
		t.Fatalf("unexpected labels %v", labels)
	}

	vals, err := p.Decoder(s)(mapRow{"w_NAME": "bolt", "value_1": int64(3), "price": 2.5})
	testutil.AssertNoError(t, err)
	if !reflect.DeepEqual(vals, []any{"bolt", int64(3), 2.5}) {
		t.Errorf("unexpected values %#v", vals)
	}

	_, err = p.Decoder(s)(mapRow{"w_NAME": "bolt"})
	testutil.AssertError(t, err)
}

// --- Precedence ---

func TestPrecedenceOrdering(t *testing.T) {
	t.Parallel()
	order := []Precedence{
		PrecSelect, PrecOr, PrecAnd, PrecNot, PrecComparison, PrecConcat,
		PrecPlusMinus, PrecTimesDivide, PrecUnary, PrecParentheses, PrecColumn,
	}
	for i := 1; i < len(order); i++ {
		if !NeedsParens(order[i-1], order[i]) {
			t.Errorf("expected %s inside %s to need parentheses", order[i-1], order[i])
		}
		if NeedsParens(order[i], order[i-1]) {
			t.Errorf("expected %s inside %s to render bare", order[i], order[i-1])
		}
	}
	testutil.AssertEqual(t, PrecColumn.Tighter(), PrecColumn)
	testutil.AssertEqual(t, PrecPlusMinus.Tighter(), PrecTimesDivide)
	testutil.AssertEqual(t, PrecAnd.String(), "and")
}

func TestExpressionPrecedence(t *testing.T) {
	t.Parallel()
	price := Col(testutil.WidgetPrice)
	cases := []struct {
		name string
		node Node
		want Precedence
	}{
		{"column", price, PrecColumn},
		{"plus", price.Plus(1), PrecPlusMinus},
		{"times", price.Times(2), PrecTimesDivide},
		{"comparison", price.Gt(1), PrecComparison},
		{"not", Not(price.Gt(1)), PrecNot},
		{"and", And(price.Gt(1), price.Lt(5)), PrecAnd},
		{"or", Or(price.Gt(1), price.Lt(5)), PrecOr},
		{"single and", And(price.Gt(1)), PrecComparison},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			testutil.AssertEqual(t, tc.node.Precedence(), tc.want)
		})
	}
}

// --- Boolean chains ---

func TestChainStartTwicePanics(t *testing.T) {
	t.Parallel()
	c := NewChain().Start(Literal(true))
	testutil.AssertPanics(t, func() { c.Start(Literal(false)) })
	testutil.AssertPanics(t, func() { NewChain().AppendAnd(Literal(true)) })
}

func TestChainOperandContext(t *testing.T) {
	t.Parallel()
	// a or b and c or d
	c := NewChain().Start(Literal(true)).
		AppendOr(Literal(true)).
		AppendAnd(Literal(true)).
		AppendOr(Literal(true))

	want := []Precedence{PrecOr, PrecAnd, PrecAnd, PrecOr}
	for i, w := range want {
		testutil.AssertEqual(t, c.OperandContext(i), w)
	}
	testutil.AssertEqual(t, c.Precedence(), PrecOr)
}

func TestConjoinNestsOrChains(t *testing.T) {
	t.Parallel()
	a, b, c := Literal(true), Literal(false), Literal(true)

	empty := Conjoin(NewChain(), a)
	if empty.First() != Node(a) || len(empty.Terms()) != 0 {
		t.Error("expected conjoin onto an empty chain to start it")
	}

	ands := NewChain().Start(a).AppendAnd(b)
	if Conjoin(ands, c) != ands || len(ands.Terms()) != 2 {
		t.Error("expected an and-chain to be extended in place")
	}

	ors := NewChain().Start(a).AppendOr(b)
	nested := Conjoin(ors, c)
	if nested.First() != Node(ors) {
		t.Error("expected an or-chain to become the first operand")
	}
	testutil.AssertEqual(t, nested.Precedence(), PrecAnd)
}

func TestChainClone(t *testing.T) {
	t.Parallel()
	orig := NewChain().Start(Literal(true))
	clone := orig.Clone().AppendAnd(Literal(false))

	testutil.AssertEqual(t, len(orig.Terms()), 0)
	testutil.AssertEqual(t, len(clone.Terms()), 1)

	var nilChain *BooleanChain
	if !nilChain.IsEmpty() || !nilChain.Clone().IsEmpty() {
		t.Error("expected a nil chain to clone to an empty one")
	}
}

// --- Errors ---

func TestRaiseAndCatch(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	err := func() (err error) {
		defer Catch(&err)
		Raise(boom)
		return nil
	}()
	testutil.AssertErrorIs(t, err, boom)

	testutil.AssertPanics(t, func() {
		var err error
		defer Catch(&err)
		panic("not a render error")
	})
}

func TestInvalidJoinError(t *testing.T) {
	t.Parallel()
	err := error(&InvalidJoinError{Alias: "m"})
	testutil.AssertErrorIs(t, err, ErrInvalidJoin)
	testutil.AssertEqual(t, err.Error(), "invalid join: on clause does not reference m")
}

func TestJoinTypeString(t *testing.T) {
	t.Parallel()
	testutil.AssertEqual(t, InnerJoin.String(), "INNER JOIN")
	testutil.AssertEqual(t, FullOuterJoin.String(), "FULL OUTER JOIN")
	testutil.AssertEqual(t, JoinType(99).String(), "JOIN")
}
