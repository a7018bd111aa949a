package main

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bawdo/typeq/managers"
	"github.com/bawdo/typeq/nodes"
	"github.com/bawdo/typeq/plugins/softdelete"
	"github.com/bawdo/typeq/schema"
)

type sqlRenderer interface {
	ToSQL() (string, []any, error)
}

// sample is a named statement built against the demo catalog.
type sample struct {
	name  string
	short string
	query bool
	build func(db *schema.Database) ([]managers.Rendered, error)
}

func one(s sqlRenderer) ([]managers.Rendered, error) {
	sql, args, err := s.ToSQL()
	if err != nil {
		return nil, err
	}
	return []managers.Rendered{{SQL: sql, Args: args}}, nil
}

var samples = []sample{
	{name: "select", short: "filtered, ordered and limited select", query: true, build: func(db *schema.Database) ([]managers.Rendered, error) {
		b := nodes.MustAlias[Book](db, "b")
		q := managers.Select2(managers.From(db, b).Where(nodes.Col(BookPrice).Gt(decimal.NewFromInt(15))),
			nodes.Col(BookTitle), nodes.Col(BookPrice)).
			OrderBy(nodes.Col(BookTitle).Asc()).
			FetchFirst(10)
		return one(q)
	}},
	{name: "search", short: "escaped pattern match on titles", query: true, build: func(db *schema.Database) ([]managers.Rendered, error) {
		b := nodes.MustAlias[Book](db, "b")
		return one(managers.Select(managers.From(db, b).Where(nodes.Col(BookTitle).Contains("the")), nodes.Col(BookTitle)))
	}},
	{name: "join", short: "join on the declared foreign key", query: true, build: func(db *schema.Database) ([]managers.Rendered, error) {
		b := nodes.MustAlias[Book](db, "b")
		a := nodes.MustAlias[Author](db, "a")
		q := managers.Select2(managers.From(db, b).Join(a).OnForeignKey(), nodes.Col(BookTitle), nodes.Col(AuthorName)).
			OrderBy(nodes.Col(AuthorName).Asc(), nodes.Col(BookTitle).Asc())
		return one(q)
	}},
	{name: "group", short: "aggregates with group by and having", query: true, build: func(db *schema.Database) ([]managers.Rendered, error) {
		b := nodes.MustAlias[Book](db, "b")
		m := managers.From(db, b).GroupBy(nodes.Col(BookAuthorID)).Having(nodes.Count().Gt(1))
		return one(managers.Select3(m, nodes.Col(BookAuthorID), nodes.Count(), nodes.Sum(nodes.Col(BookPrice))))
	}},
	{name: "exists", short: "correlated exists subquery", query: true, build: func(db *schema.Database) ([]managers.Rendered, error) {
		b := nodes.MustAlias[Book](db, "b")
		a := nodes.MustAlias[Author](db, "a")
		inner := managers.Select(managers.From(db, b).
			Where(nodes.Col(BookAuthorID).EqExpr(nodes.Col(AuthorID))).
			And(nodes.Col(BookPrice).Gt(decimal.NewFromInt(20))), nodes.Literal[int64](1))
		return one(managers.Select(managers.From(db, a).Where(nodes.Exists(inner)), nodes.Col(AuthorName)))
	}},
	{name: "derived", short: "select from a derived table", query: true, build: func(db *schema.Database) ([]managers.Rendered, error) {
		b := nodes.MustAlias[Book](db, "b")
		early := managers.Select(managers.From(db, b).Where(nodes.Col(BookPublishedAt).Lt(time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC))),
			nodes.Col(BookTitle)).As("early")
		return one(managers.Select(managers.From(db, early), nodes.Col(BookTitle)))
	}},
	{name: "cte", short: "common table expression joined to a table", query: true, build: func(db *schema.Database) ([]managers.Rendered, error) {
		b := nodes.MustAlias[Book](db, "b")
		a := nodes.MustAlias[Author](db, "a")
		perAuthor := managers.Select2(managers.From(db, b).GroupBy(nodes.Col(BookAuthorID)),
			nodes.Col(BookAuthorID), nodes.As(nodes.Count(), "books")).AsCTE("per_author")
		m := managers.From(db, a).With(perAuthor).
			Join(perAuthor).On(nodes.LabelCol[int64](perAuthor, "b_AUTHOR_ID").EqExpr(nodes.Col(AuthorID)))
		return one(managers.Select2(m, nodes.Col(AuthorName), nodes.LabelCol[int64](perAuthor, "books")))
	}},
	{name: "union", short: "union all of two selects", query: true, build: func(db *schema.Database) ([]managers.Rendered, error) {
		cheap := nodes.MustAlias[Book](db, "b")
		dear := nodes.MustAlias[Book](db, "b")
		other := managers.Select(managers.From(db, dear).Where(nodes.Col(BookPrice).Gt(decimal.NewFromInt(30))), nodes.Col(BookTitle))
		return one(managers.Select(managers.From(db, cheap).Where(nodes.Col(BookPrice).Lt(decimal.NewFromInt(15))), nodes.Col(BookTitle)).UnionAll(other))
	}},
	{name: "case", short: "searched case expression", query: true, build: func(db *schema.Database) ([]managers.Rendered, error) {
		b := nodes.MustAlias[Book](db, "b")
		band := nodes.When(nodes.Col(BookPrice).Gt(decimal.NewFromInt(20)), nodes.Literal("premium")).
			Else(nodes.Literal("standard"))
		return one(managers.Select2(managers.From(db, b), nodes.Col(BookTitle), nodes.As(band, "band")))
	}},
	{name: "softdelete", short: "soft-delete guard added by a transformer", query: true, build: func(db *schema.Database) ([]managers.Rendered, error) {
		b := nodes.MustAlias[Book](db, "b")
		return one(managers.Select(managers.From(db, b).Use(softdelete.New()), nodes.Col(BookTitle)))
	}},
	{name: "update", short: "update with a computed assignment", build: func(db *schema.Database) ([]managers.Rendered, error) {
		b := nodes.MustAlias[Book](db, "b")
		return one(managers.Update(b).
			SetExpr(BookPrice, nodes.Col(BookPrice).Times(decimal.RequireFromString("1.1"))).
			Where(nodes.Col(BookAuthorID).Eq(2)))
	}},
	{name: "delete", short: "delete with a date filter", build: func(db *schema.Database) ([]managers.Rendered, error) {
		b := nodes.MustAlias[Book](db, "b")
		return one(managers.DeleteFrom(b).Where(nodes.Col(BookPublishedAt).Lt(time.Date(1958, 1, 1, 0, 0, 0, 0, time.UTC))))
	}},
	{name: "insert", short: "insert of the seed authors", build: func(db *schema.Database) ([]managers.Rendered, error) {
		return managers.Insert(db, seedAuthors...).Statements()
	}},
	{name: "merge", short: "upsert of one author", build: func(db *schema.Database) ([]managers.Rendered, error) {
		return one(managers.Merge(db, Author{ID: 3, Name: "Anonymous", Country: "GB"}))
	}},
}

func sampleNames() []string {
	names := make([]string, len(samples))
	for i, s := range samples {
		names[i] = s.name
	}
	return names
}

func findSample(name string) (sample, error) {
	i := slices.IndexFunc(samples, func(s sample) bool { return s.name == strings.ToLower(name) })
	if i < 0 {
		return sample{}, fmt.Errorf("unknown sample %q (want one of %s)", name, strings.Join(sampleNames(), ", "))
	}
	return samples[i], nil
}

// formatRendered writes statements with their arguments, one per block.
func formatRendered(out []managers.Rendered) string {
	var b strings.Builder
	for _, r := range out {
		b.WriteString(r.SQL)
		b.WriteByte('\n')
		if len(r.Args) > 0 {
			fmt.Fprintf(&b, "  args: %s\n", formatArgs(r.Args))
		}
	}
	return b.String()
}

func formatArgs(args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case nil:
			parts[i] = "NULL"
		case string:
			parts[i] = fmt.Sprintf("%q", v)
		case time.Time:
			parts[i] = v.Format(time.RFC3339)
		default:
			parts[i] = fmt.Sprint(v)
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
