package dialect

import (
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/bawdo/typeq/internal/quoting"
)

// Ansi returns the standard-SQL dialect used when nothing more specific is configured.
func Ansi() Dialect {
	return New()
}

// Postgres returns the PostgreSQL dialect.
func Postgres() Dialect {
	return New(
		WithName("postgres"),
		WithoutFromDual(),
		WithMultiInsert(),
		WithPlaceholder(func(n int) string { return "$" + strconv.Itoa(n) }),
		WithFetchFirst(offsetFetch),
		WithNextValue(func(_, name string) string { return "nextval('" + name + "')" }),
		WithBinaryLiteral(func(b []byte) string { return `'\x` + hex.EncodeToString(b) + `'::bytea` }),
		WithUUIDLiteral(func(s string) string { return "'" + s + "'::uuid" }),
		WithType(KindBinary, "bytea"),
		WithType(KindUUID, "uuid"),
		WithType(KindSmallInt, "smallint"),
		WithMergeInfo(func(d Dialect) MergeInfo { return OnConflictMerge{Dialect: d} }),
		WithTempTableInfo(NewTempTableInfo(
			WithoutGlobalTempTables(),
			WithCreateLocalPreserveRows("create temporary table ${tableName}(${columnDefs}) on commit preserve rows"),
			WithCreateLocalDeleteRows("create temporary table ${tableName}(${columnDefs}) on commit delete rows"),
			WithCreateLocalDropTable("create temporary table ${tableName}(${columnDefs}) on commit drop"),
			WithLocalCommitOptions(PreserveRows, DeleteRows, DropTable),
		)),
		WithSequenceInfo(NewSequenceInfo(
			WithListSequencesSQL("select sequence_schema, sequence_name from information_schema.sequences"),
		)),
	)
}

// MySQL returns the MySQL/MariaDB dialect.
func MySQL() Dialect {
	return New(
		WithName("mysql"),
		WithoutFromDual(),
		WithMultiInsert(),
		WithIdentQuote(quoting.Backtick),
		WithStringEscape(quoting.EscapeMySQLString),
		WithConcat(func(parts []string) string { return "concat(" + strings.Join(parts, ", ") + ")" }),
		WithFetchFirst(limitFetch),
		WithAliasKeyword("as"),
		WithTimestampLiteral(func(t time.Time) string { return "cast('" + t.Format(timestampLayout) + "' as datetime(6))" }),
		WithType(KindBool, "tinyint(1)"),
		WithType(KindDouble, "double"),
		WithType(KindDecimal, "decimal(19,4)"),
		WithType(KindVarchar, "varchar(255)"),
		WithType(KindTimestamp, "datetime(6)"),
		WithMergeInfo(func(d Dialect) MergeInfo { return DuplicateKeyMerge{Dialect: d} }),
		WithTempTableInfo(NewTempTableInfo(
			WithoutGlobalTempTables(),
			WithCreateLocalPreserveRows("create temporary table ${tableName}(${columnDefs})"),
			WithLocalCreateNonTransactional(),
		)),
		WithSequenceInfo(NewSequenceInfo(WithoutSequences())),
	)
}

// SQLite returns the SQLite dialect.
func SQLite() Dialect {
	return New(
		WithName("sqlite"),
		WithoutFromDual(),
		WithMultiInsert(),
		WithFetchFirst(limitFetch),
		WithAliasKeyword("as"),
		WithTimestampLiteral(func(t time.Time) string { return "'" + t.Format(timestampLayout) + "'" }),
		WithDateLiteral(func(t time.Time) string { return "'" + t.Format(dateLayout) + "'" }),
		WithType(KindBool, "integer"),
		WithType(KindBinary, "blob"),
		WithType(KindUUID, "text"),
		WithType(KindVarchar, "text"),
		WithMergeInfo(func(d Dialect) MergeInfo { return OnConflictMerge{Dialect: d} }),
		WithTempTableInfo(NewTempTableInfo(
			WithoutGlobalTempTables(),
			WithCreateLocalPreserveRows("create temp table ${tableName}(${columnDefs})"),
		)),
		WithSequenceInfo(NewSequenceInfo(WithoutSequences())),
	)
}

// byName maps configuration names to dialect constructors.
var byName = map[string]func() Dialect{
	"ansi":       Ansi,
	"postgres":   Postgres,
	"postgresql": Postgres,
	"mysql":      MySQL,
	"mariadb":    MySQL,
	"sqlite":     SQLite,
}

// Lookup returns the dialect registered under name (case-insensitive).
func Lookup(name string) (Dialect, bool) {
	fn, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	return fn(), true
}

// Names lists the canonical dialect names.
func Names() []string {
	return []string{"ansi", "postgres", "mysql", "sqlite"}
}
