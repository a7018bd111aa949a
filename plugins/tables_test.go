package plugins

import (
	"testing"

	"github.com/bawdo/typeq/internal/testutil"
	"github.com/bawdo/typeq/nodes"
)

func TestCollectTablesFromAlias(t *testing.T) {
	t.Parallel()
	db := testutil.NewDatabase()
	w := nodes.MustAlias[testutil.Widget](db, "w")
	core := &nodes.SelectCore{From: &nodes.FromAlias{Alias: w}}

	refs := CollectTables(core)
	if len(refs) != 1 {
		t.Fatalf("expected 1 ref, got %d", len(refs))
	}
	testutil.AssertEqual(t, refs[0].Name, "WIDGET")
	if refs[0].Alias != w.TableSource {
		t.Error("expected the ref to carry the alias")
	}
	if refs[0].Join != nil {
		t.Error("expected the leftmost source to have no join")
	}
}

func TestCollectTablesIncludesJoins(t *testing.T) {
	t.Parallel()
	db := testutil.NewDatabase()
	w := nodes.MustAlias[testutil.Widget](db, "w")
	m := nodes.MustAlias[testutil.Manufacturer](db, "m")
	p := nodes.MustAlias[testutil.Part](db, "p")

	first := nodes.NewJoin(&nodes.FromAlias{Alias: w}, nodes.LeftOuterJoin, m)
	second := nodes.NewJoin(first, nodes.CrossJoin, p)
	refs := CollectTables(&nodes.SelectCore{From: second})

	if len(refs) != 3 {
		t.Fatalf("expected 3 refs, got %d", len(refs))
	}
	names := []string{refs[0].Name, refs[1].Name, refs[2].Name}
	if names[0] != "WIDGET" || names[1] != "MANUFACTURER" || names[2] != "PARTS" {
		t.Errorf("unexpected names: %v", names)
	}
	if refs[1].Join != first || refs[2].Join != second {
		t.Error("expected each joined ref to point at its join")
	}
}

func TestCollectTablesSkipsDerivedAndDual(t *testing.T) {
	t.Parallel()
	db := testutil.NewDatabase()
	w := nodes.MustAlias[testutil.Widget](db, "w")
	inner := &nodes.SelectCore{
		From:       &nodes.FromAlias{Alias: nodes.MustAlias[testutil.Part](db, "p")},
		Projection: &nodes.Projection{Columns: []nodes.ProjectionColumn{nodes.Project(nodes.Col(testutil.PartCode), "")}},
	}
	d := nodes.Derived(db, inner, "d")
	from := nodes.NewJoin(&nodes.FromAlias{Alias: w}, nodes.CrossJoin, d)

	refs := CollectTables(&nodes.SelectCore{From: from})
	if len(refs) != 1 || refs[0].Name != "WIDGET" {
		t.Errorf("expected only WIDGET, got %v", refs)
	}

	if refs := CollectTables(&nodes.SelectCore{From: &nodes.FromAlias{Alias: nodes.Dual(db)}}); len(refs) != 0 {
		t.Errorf("expected dual to be skipped, got %v", refs)
	}
}

func TestCollectTablesEmpty(t *testing.T) {
	t.Parallel()
	if refs := CollectTables(&nodes.SelectCore{}); refs != nil {
		t.Errorf("expected nil, got %v", refs)
	}
}
