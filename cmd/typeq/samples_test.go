package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bawdo/typeq/dialect"
	"github.com/bawdo/typeq/schema"
)

func databaseFor(t *testing.T, name string) *schema.Database {
	t.Helper()
	d, ok := dialect.Lookup(name)
	if !ok {
		t.Fatalf("unknown dialect %q", name)
	}
	return schema.NewDatabase(schema.WithDialect(d))
}

// --- Sample rendering ---

func TestEverySampleRendersOnEveryDialect(t *testing.T) {
	t.Parallel()
	for _, name := range dialect.Names() {
		for _, s := range samples {
			t.Run(name+"/"+s.name, func(t *testing.T) {
				t.Parallel()
				text, err := renderSample(databaseFor(t, name), s)
				if err != nil {
					t.Fatalf("render: %v", err)
				}
				if strings.TrimSpace(text) == "" {
					t.Fatal("expected SQL, got nothing")
				}
			})
		}
	}
}

func TestSampleSQL(t *testing.T) {
	t.Parallel()
	cases := []struct {
		sample  string
		dialect string
		want    string
	}{
		{"select", "sqlite",
			"select b.TITLE as b_TITLE, b.PRICE as b_PRICE from BOOK b where b.PRICE > ? order by b.TITLE asc limit 10"},
		{"select", "postgres",
			"select b.TITLE as b_TITLE, b.PRICE as b_PRICE from BOOK b where b.PRICE > $1 order by b.TITLE asc offset 0 rows fetch next 10 rows only"},
		{"join", "ansi",
			"select b.TITLE as b_TITLE, a.NAME as a_NAME from BOOK b join AUTHOR a on b.AUTHOR_ID = a.ID order by a.NAME asc, b.TITLE asc"},
		{"softdelete", "ansi",
			"select b.TITLE as b_TITLE from BOOK b where b.DELETED_AT is null"},
		{"merge", "postgres",
			"insert into AUTHOR (ID, NAME, COUNTRY) values ($1, $2, $3) on conflict (ID) do update set NAME = excluded.NAME, COUNTRY = excluded.COUNTRY"},
	}
	for _, tc := range cases {
		t.Run(tc.sample+"/"+tc.dialect, func(t *testing.T) {
			t.Parallel()
			s, err := findSample(tc.sample)
			if err != nil {
				t.Fatal(err)
			}
			out, err := s.build(databaseFor(t, tc.dialect))
			if err != nil {
				t.Fatal(err)
			}
			if got := out[0].SQL; got != tc.want {
				t.Errorf("got:\n  %s\nwant:\n  %s", got, tc.want)
			}
		})
	}
}

func TestInsertSampleIsOneStatementPerDialectBatch(t *testing.T) {
	t.Parallel()
	s, err := findSample("insert")
	if err != nil {
		t.Fatal(err)
	}
	out, err := s.build(databaseFor(t, "ansi"))
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(seedAuthors) {
		t.Errorf("expected %d statements without multi-row insert, got %d", len(seedAuthors), len(out))
	}
	out, err = s.build(databaseFor(t, "mysql"))
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Errorf("expected one multi-row statement, got %d", len(out))
	}
}

func TestFindSampleIgnoresCase(t *testing.T) {
	t.Parallel()
	s, err := findSample("CTE")
	if err != nil {
		t.Fatal(err)
	}
	if s.name != "cte" {
		t.Errorf("expected cte, got %s", s.name)
	}
	if _, err := findSample("nope"); err == nil || !strings.Contains(err.Error(), "unknown sample") {
		t.Errorf("expected unknown sample error, got %v", err)
	}
}

func TestFormatArgs(t *testing.T) {
	t.Parallel()
	got := formatArgs([]any{nil, "x", int64(3)})
	if got != `[NULL, "x", 3]` {
		t.Errorf("got %s", got)
	}
}

// --- render command ---

func TestRenderSamplesSideBySide(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	s, _ := findSample("select")
	base := &Config{Dialect: "ansi", Timezone: "UTC"}
	if err := renderSamples(&buf, base, []string{"mysql", "postgres"}, []sample{s}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	mysqlAt := strings.Index(out, "[mysql]")
	pgAt := strings.Index(out, "[postgres]")
	if mysqlAt < 0 || pgAt < mysqlAt {
		t.Fatalf("expected mysql then postgres sections:\n%s", out)
	}
	if !strings.Contains(out, "limit 10") || !strings.Contains(out, "fetch next 10 rows only") {
		t.Errorf("expected each dialect's row limit:\n%s", out)
	}
	if !strings.Contains(out, `args: ["15"]`) {
		t.Errorf("expected bound price:\n%s", out)
	}
}

func TestRenderSamplesRejectsUnknownDialect(t *testing.T) {
	t.Parallel()
	base := &Config{Dialect: "ansi", Timezone: "UTC"}
	err := renderSamples(&bytes.Buffer{}, base, []string{"oracle"}, samples)
	if err == nil || !strings.Contains(err.Error(), "unknown dialect") {
		t.Errorf("expected unknown dialect error, got %v", err)
	}
}

// --- capabilities ---

func TestCapabilityTable(t *testing.T) {
	t.Parallel()
	out := capabilityTable()
	for _, want := range []string{"| ansi ", "DUAL", "$1", "on conflict", "on duplicate key (updated=2)", "(4 rows)"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}
