package dialect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Lookup ---

func TestLookup(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"ansi", "Postgres", "postgresql", " mysql ", "mariadb", "SQLITE"} {
		d, ok := Lookup(name)
		require.True(t, ok, name)
		assert.NotNil(t, d)
	}
	_, ok := Lookup("oracle")
	assert.False(t, ok)

	for _, name := range Names() {
		d, ok := Lookup(name)
		require.True(t, ok)
		assert.Equal(t, name, d.Name())
	}
}

// --- Capabilities ---

func TestCapabilities(t *testing.T) {
	t.Parallel()
	cases := []struct {
		d           Dialect
		fromDual    bool
		multiInsert bool
		placeholder string
		sequences   bool
	}{
		{Ansi(), true, false, "?", true},
		{Postgres(), false, true, "$3", true},
		{MySQL(), false, true, "?", false},
		{SQLite(), false, true, "?", false},
	}
	for _, tc := range cases {
		t.Run(tc.d.Name(), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.fromDual, tc.d.RequiresFromDual())
			assert.Equal(t, tc.multiInsert, tc.d.SupportsMultiInsert())
			assert.Equal(t, tc.placeholder, tc.d.Placeholder(3))
			assert.Equal(t, tc.sequences, tc.d.SequenceInfo().SupportsSequences())
			assert.True(t, tc.d.MergeInfo().SupportsUpsert())
		})
	}
}

func TestOptionsComposeOverAnsi(t *testing.T) {
	t.Parallel()
	d := New(WithName("custom"), WithDual("SYSIBM.SYSDUMMY1"), WithBoolLiterals("1", "0"), WithType(KindBool, "smallint"))

	assert.Equal(t, "custom", d.Name())
	assert.True(t, d.RequiresFromDual())
	assert.Equal(t, "SYSIBM.SYSDUMMY1", d.Dual())
	assert.Equal(t, "1", d.BoolLiteral(true))
	assert.Equal(t, "0", d.BoolLiteral(false))
	assert.Equal(t, "smallint", d.SQLType(KindBool))
	assert.Equal(t, "bigint", d.SQLType(KindBigInt))
	assert.Equal(t, "boolean", Ansi().SQLType(KindBool))
}

// --- Identifiers ---

func TestQuoteIdent(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "WIDGET", Ansi().QuoteIdent("WIDGET"))
	assert.Equal(t, "_x1", Ansi().QuoteIdent("_x1"))
	assert.Equal(t, `"order items"`, Ansi().QuoteIdent("order items"))
	assert.Equal(t, `"a""b"`, Postgres().QuoteIdent(`a"b`))
	assert.Equal(t, "`order items`", MySQL().QuoteIdent("order items"))
	assert.Equal(t, `"1st"`, SQLite().QuoteIdent("1st"))
}

func TestQualifiedName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "WIDGET", Ansi().QualifiedName("", "WIDGET"))
	assert.Equal(t, "SALES.WIDGET", Ansi().QualifiedName("SALES", "WIDGET"))
	assert.Equal(t, "`my db`.WIDGET", MySQL().QualifiedName("my db", "WIDGET"))
}

// --- Literals ---

func TestLiterals(t *testing.T) {
	t.Parallel()
	ts := time.Date(2024, 3, 4, 5, 6, 7, 8000, time.UTC)

	assert.Equal(t, "'it''s'", Ansi().StringLiteral("it's"))
	assert.Equal(t, `'a\\b'`, MySQL().StringLiteral(`a\b`))
	assert.Equal(t, "X'CAFE'", Ansi().BinaryLiteral([]byte{0xca, 0xfe}))
	assert.Equal(t, `'\xcafe'::bytea`, Postgres().BinaryLiteral([]byte{0xca, 0xfe}))
	assert.Equal(t, "TIMESTAMP '2024-03-04 05:06:07.000008'", Ansi().TimestampLiteral(ts))
	assert.Equal(t, "cast('2024-03-04 05:06:07.000008' as datetime(6))", MySQL().TimestampLiteral(ts))
	assert.Equal(t, "'2024-03-04'", SQLite().DateLiteral(ts))
	assert.Equal(t, "DATE '2024-03-04'", Ansi().DateLiteral(ts))
	assert.Equal(t, "'0d2d0c1e-0000-4000-8000-000000000000'::uuid", Postgres().UUIDLiteral("0d2d0c1e-0000-4000-8000-000000000000"))
	assert.Equal(t, "'x'", Ansi().UUIDLiteral("x"))
}

// --- Statement fragments ---

func TestFetchFirst(t *testing.T) {
	t.Parallel()
	const q = "select a from t"
	assert.Equal(t, q+" limit 10", MySQL().FetchFirst(q, 10, 0))
	assert.Equal(t, q+" limit 10 offset 5", SQLite().FetchFirst(q, 10, 5))
	assert.Equal(t, q+" offset 5 rows fetch next 10 rows only", Postgres().FetchFirst(q, 10, 5))
	assert.Equal(t,
		"select * from (select *, row_number() over() as x_row_number from (select a from t)) where x_row_number <= 10",
		Ansi().FetchFirst(q, 10, 0))
}

func TestUpdateAndDeleteAliasing(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "update WIDGET w set A = ?", Ansi().UpdateSQL("WIDGET", "w", "A = ?", ""))
	assert.Equal(t, "update WIDGET as w set A = ? where w.ID = ?", MySQL().UpdateSQL("WIDGET", "w", "A = ?", " where w.ID = ?"))
	assert.Equal(t, "delete from WIDGET", Postgres().DeleteSQL("WIDGET", "", ""))
	assert.Equal(t, "delete from WIDGET as w", SQLite().DeleteSQL("WIDGET", "w", ""))
}

func TestConcat(t *testing.T) {
	t.Parallel()
	parts := []string{"a", "'-'", "b"}
	assert.Equal(t, "a || '-' || b", Ansi().Concat(parts))
	assert.Equal(t, "concat(a, '-', b)", MySQL().Concat(parts))
}

func TestNextFromSequence(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "SALES.WIDGET_SEQ.NEXTVAL", Ansi().NextFromSequence("SALES", "WIDGET_SEQ"))
	assert.Equal(t, "nextval('widget_seq')", Postgres().NextFromSequence("public", "widget_seq"))
}

// --- Merge ---

func mergeSpec() MergeSpec {
	return MergeSpec{
		TargetTable:       "MANUFACTURER",
		TargetAlias:       "t",
		SourceAlias:       "s",
		ColumnNames:       []string{"ID", "NAME", "COUNTRY"},
		IDColumnNames:     []string{"ID"},
		InsertColumnNames: []string{"ID", "NAME", "COUNTRY"},
		UpdateColumnNames: []string{"NAME", "COUNTRY"},
		SelectArgsSQL:     []string{"?", "?", "?"},
		SelectArgs:        [][]any{{int64(1)}, {"Acme"}, {"NZ"}},
	}
}

func TestMergeSQL(t *testing.T) {
	t.Parallel()
	s := mergeSpec()

	assert.Equal(t,
		"merge into MANUFACTURER t using (select ? ID, ? NAME, ? COUNTRY from DUAL) s on (t.ID = s.ID) when matched then update set t.NAME = s.NAME, t.COUNTRY = s.COUNTRY when not matched then insert(ID, NAME, COUNTRY) values(s.ID, s.NAME, s.COUNTRY)",
		Ansi().MergeInfo().MergeSQL(s))
	assert.Equal(t,
		"insert into MANUFACTURER (ID, NAME, COUNTRY) values (?, ?, ?) on conflict (ID) do update set NAME = excluded.NAME, COUNTRY = excluded.COUNTRY",
		SQLite().MergeInfo().MergeSQL(s))
	assert.Equal(t,
		"insert into MANUFACTURER (ID, NAME, COUNTRY) values (?, ?, ?) on duplicate key update NAME = values(NAME), COUNTRY = values(COUNTRY)",
		MySQL().MergeInfo().MergeSQL(s))

	for _, d := range []Dialect{Ansi(), Postgres(), MySQL()} {
		assert.Equal(t, []any{int64(1), "Acme", "NZ"}, d.MergeInfo().MergeArgs(s), d.Name())
	}
}

func TestMergeWithNothingToUpdate(t *testing.T) {
	t.Parallel()
	s := mergeSpec()
	s.UpdateColumnNames = nil

	assert.Equal(t,
		"merge into MANUFACTURER t using (select ? ID, ? NAME, ? COUNTRY from DUAL) s on (t.ID = s.ID) when not matched then insert(ID, NAME, COUNTRY) values(s.ID, s.NAME, s.COUNTRY)",
		Ansi().MergeInfo().MergeSQL(s))
	assert.Equal(t,
		"insert into MANUFACTURER (ID, NAME, COUNTRY) values (?, ?, ?) on conflict (ID) do nothing",
		Postgres().MergeInfo().MergeSQL(s))
	assert.Equal(t,
		"insert into MANUFACTURER (ID, NAME, COUNTRY) values (?, ?, ?) on duplicate key update ID = values(ID)",
		MySQL().MergeInfo().MergeSQL(s))
}

func TestMergeResultCounts(t *testing.T) {
	t.Parallel()
	assert.Equal(t, int64(2), MySQL().MergeInfo().UpdatedResult())
	assert.Equal(t, int64(1), Postgres().MergeInfo().UpdatedResult())
	assert.Equal(t, int64(1), Ansi().MergeInfo().InsertedResult())
}

// --- Temporary tables and sequences ---

func TestTempTableInfo(t *testing.T) {
	t.Parallel()
	tokens := Tokens{"tableName": "T1", "columnDefs": "ID bigint"}

	pg := Postgres().TempTableInfo()
	assert.False(t, pg.SupportsGlobal())
	assert.True(t, pg.SupportsLocalOnCommit(DropTable))
	assert.Equal(t, "create temporary table T1(ID bigint) on commit drop", pg.CreateLocalSQL(DropTable, tokens))

	my := MySQL().TempTableInfo()
	assert.False(t, my.CreateLocalIsTransactional())
	assert.Equal(t, "create temporary table T1(ID bigint)", my.CreateLocalSQL(DeleteRows, tokens))

	ansi := Ansi().TempTableInfo()
	assert.True(t, ansi.SupportsGlobal())
	assert.Equal(t, "create global temporary table T1(ID bigint)",
		ansi.CreateGlobalSQL(Tokens{"tableName": "T1", "columnDefs": "ID bigint", "primaryKeyDef": "", "foreignKeyDefs": ""}))
	assert.Equal(t, "drop table", DropTable.String())
}

func TestSequenceInfo(t *testing.T) {
	t.Parallel()
	ansi := Ansi().SequenceInfo()
	assert.Equal(t, "create sequence S start with 10", ansi.CreateSQL("S", 10))
	assert.Equal(t, "create sequence S", ansi.CreateSQL("S", 0))

	noStart := NewSequenceInfo(WithoutStartWith())
	assert.Equal(t, "create sequence S", noStart.CreateSQL("S", 10))

	assert.Empty(t, SQLite().SequenceInfo().ListSequencesSQL())
}
