// Package dialect describes the SQL syntax capabilities of each supported database vendor.
package dialect

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bawdo/typeq/internal/quoting"
)

// Kind identifies a column storage class used when rendering DDL types and casts.
type Kind int

const (
	KindBool Kind = iota
	KindSmallInt
	KindInt
	KindBigInt
	KindReal
	KindDouble
	KindDecimal
	KindVarchar
	KindBinary
	KindTimestamp
	KindDate
	KindUUID
)

// ansiTypes are the type names used by the ANSI dialect; other dialects override entries.
var ansiTypes = [...]string{
	KindBool:      "boolean",
	KindSmallInt:  "smallint",
	KindInt:       "integer",
	KindBigInt:    "bigint",
	KindReal:      "real",
	KindDouble:    "double precision",
	KindDecimal:   "decimal",
	KindVarchar:   "varchar",
	KindBinary:    "varbinary",
	KindTimestamp: "timestamp",
	KindDate:      "date",
	KindUUID:      "char(36)",
}

// Dialect is the capability set of one database vendor. Dialects are built
// by composing options over the ANSI defaults rather than by extension.
type Dialect interface {
	Name() string

	// RequiresFromDual reports whether a select without a table needs a pseudo-table.
	RequiresFromDual() bool
	Dual() string

	// Placeholder returns the bind marker for the n-th (1-based) parameter.
	Placeholder(n int) string
	QuoteIdent(name string) string
	QualifiedName(schema, name string) string

	Concat(parts []string) string
	FetchFirst(sql string, n, offset int64) string
	SupportsMultiInsert() bool
	UpdateSQL(table, alias, sets, where string) string
	DeleteSQL(table, alias, where string) string
	NextFromSequence(schema, name string) string

	StringLiteral(s string) string
	BoolLiteral(b bool) string
	BinaryLiteral(b []byte) string
	TimestampLiteral(t time.Time) string
	DateLiteral(t time.Time) string
	UUIDLiteral(s string) string
	SQLType(kind Kind) string

	MergeInfo() MergeInfo
	TempTableInfo() *TempTableInfo
	SequenceInfo() *SequenceInfo
}

// Option configures a dialect at construction time.
type Option func(*vendor)

// vendor is the single Dialect implementation; all behaviour differences
// live in its fields.
type vendor struct {
	name        string
	fromDual    bool
	dual        string
	multiInsert bool
	boolTrue    string
	boolFalse   string
	types       map[Kind]string

	placeholder func(int) string
	quote       func(string) string
	concat      func([]string) string
	fetchFirst  func(sql string, n, offset int64) string
	updateSQL   func(table, alias, sets, where string) string
	deleteSQL   func(table, alias, where string) string
	nextVal     func(qualified, name string) string
	escape      func(string) string
	binary      func([]byte) string
	timestamp   func(time.Time) string
	date        func(time.Time) string
	uuid        func(string) string

	merge     func(Dialect) MergeInfo
	mergeInfo MergeInfo
	tempTable *TempTableInfo
	sequence  *SequenceInfo
}

// New builds a dialect from the ANSI defaults with opts applied in order.
func New(opts ...Option) Dialect {
	v := &vendor{
		name:        "ansi",
		fromDual:    true,
		dual:        "DUAL",
		boolTrue:    "true",
		boolFalse:   "false",
		types:       map[Kind]string{},
		placeholder: func(int) string { return "?" },
		quote:       quoting.DoubleQuote,
		concat:      func(parts []string) string { return strings.Join(parts, " || ") },
		fetchFirst:  rowNumberFetch,
		updateSQL:   aliasedUpdate(""),
		deleteSQL:   aliasedDelete(""),
		nextVal:     func(qualified, _ string) string { return qualified + ".NEXTVAL" },
		escape:      quoting.EscapeString,
		binary:      func(b []byte) string { return "X'" + strings.ToUpper(hex.EncodeToString(b)) + "'" },
		timestamp:   func(t time.Time) string { return "TIMESTAMP '" + t.Format(timestampLayout) + "'" },
		date:        func(t time.Time) string { return "DATE '" + t.Format(dateLayout) + "'" },
		merge:       func(d Dialect) MergeInfo { return AnsiMerge{Dialect: d} },
		tempTable:   NewTempTableInfo(),
		sequence:    NewSequenceInfo(),
	}
	v.uuid = func(s string) string { return v.StringLiteral(s) }
	for _, o := range opts {
		o(v)
	}
	v.mergeInfo = v.merge(v)
	return v
}

const (
	timestampLayout = "2006-01-02 15:04:05.000000"
	dateLayout      = "2006-01-02"
)

// WithName sets the dialect name reported by Name.
func WithName(name string) Option {
	return func(v *vendor) { v.name = name }
}

// WithoutFromDual marks the dialect as accepting a select with no FROM clause.
func WithoutFromDual() Option {
	return func(v *vendor) { v.fromDual = false }
}

// WithDual sets the pseudo-table name used when a FROM clause is required.
func WithDual(name string) Option {
	return func(v *vendor) {
		v.fromDual = true
		v.dual = name
	}
}

// WithMultiInsert enables multi-row VALUES lists in a single insert.
func WithMultiInsert() Option {
	return func(v *vendor) { v.multiInsert = true }
}

// WithPlaceholder sets the bind-marker generator.
func WithPlaceholder(fn func(int) string) Option {
	return func(v *vendor) { v.placeholder = fn }
}

// WithIdentQuote sets the quoting function applied to identifiers that are not plain words.
func WithIdentQuote(fn func(string) string) Option {
	return func(v *vendor) { v.quote = fn }
}

// WithConcat sets how string concatenation is rendered.
func WithConcat(fn func([]string) string) Option {
	return func(v *vendor) { v.concat = fn }
}

// WithFetchFirst sets how a row limit is applied to a rendered select.
func WithFetchFirst(fn func(sql string, n, offset int64) string) Option {
	return func(v *vendor) { v.fetchFirst = fn }
}

// WithAliasKeyword sets the keyword placed between the table and its alias in
// update and delete statements (e.g. "as").
func WithAliasKeyword(kw string) Option {
	return func(v *vendor) {
		v.updateSQL = aliasedUpdate(kw)
		v.deleteSQL = aliasedDelete(kw)
	}
}

// WithNextValue sets the sequence next-value syntax. fn receives the
// schema-qualified and bare sequence names.
func WithNextValue(fn func(qualified, name string) string) Option {
	return func(v *vendor) { v.nextVal = fn }
}

// WithBoolLiterals sets the literal text for true and false.
func WithBoolLiterals(t, f string) Option {
	return func(v *vendor) {
		v.boolTrue = t
		v.boolFalse = f
	}
}

// WithStringEscape sets the escaping applied inside single-quoted literals.
func WithStringEscape(fn func(string) string) Option {
	return func(v *vendor) { v.escape = fn }
}

// WithBinaryLiteral sets the byte-string literal formatter.
func WithBinaryLiteral(fn func([]byte) string) Option {
	return func(v *vendor) { v.binary = fn }
}

// WithTimestampLiteral sets the timestamp literal formatter.
func WithTimestampLiteral(fn func(time.Time) string) Option {
	return func(v *vendor) { v.timestamp = fn }
}

// WithDateLiteral sets the date literal formatter.
func WithDateLiteral(fn func(time.Time) string) Option {
	return func(v *vendor) { v.date = fn }
}

// WithUUIDLiteral sets the UUID literal formatter.
func WithUUIDLiteral(fn func(string) string) Option {
	return func(v *vendor) { v.uuid = fn }
}

// WithType overrides the SQL type name for kind.
func WithType(kind Kind, name string) Option {
	return func(v *vendor) { v.types[kind] = name }
}

// WithMergeInfo sets the merge descriptor factory. The factory receives the
// finished dialect so it can consult the other capabilities.
func WithMergeInfo(fn func(Dialect) MergeInfo) Option {
	return func(v *vendor) { v.merge = fn }
}

// WithTempTableInfo sets the temporary table descriptor.
func WithTempTableInfo(info *TempTableInfo) Option {
	return func(v *vendor) { v.tempTable = info }
}

// WithSequenceInfo sets the sequence descriptor.
func WithSequenceInfo(info *SequenceInfo) Option {
	return func(v *vendor) { v.sequence = info }
}

func (v *vendor) Name() string             { return v.name }
func (v *vendor) RequiresFromDual() bool   { return v.fromDual }
func (v *vendor) Dual() string             { return v.dual }
func (v *vendor) Placeholder(n int) string { return v.placeholder(n) }
func (v *vendor) SupportsMultiInsert() bool {
	return v.multiInsert
}

var plainIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// QuoteIdent returns name unchanged when it is a plain identifier and quotes it otherwise.
func (v *vendor) QuoteIdent(name string) string {
	if plainIdent.MatchString(name) {
		return name
	}
	return v.quote(name)
}

func (v *vendor) QualifiedName(schema, name string) string {
	if strings.TrimSpace(schema) == "" {
		return v.QuoteIdent(name)
	}
	return v.QuoteIdent(schema) + "." + v.QuoteIdent(name)
}

func (v *vendor) Concat(parts []string) string { return v.concat(parts) }

func (v *vendor) FetchFirst(sql string, n, offset int64) string {
	return v.fetchFirst(sql, n, offset)
}

func (v *vendor) UpdateSQL(table, alias, sets, where string) string {
	return v.updateSQL(table, alias, sets, where)
}

func (v *vendor) DeleteSQL(table, alias, where string) string {
	return v.deleteSQL(table, alias, where)
}

func (v *vendor) NextFromSequence(schema, name string) string {
	return v.nextVal(v.QualifiedName(schema, name), name)
}

func (v *vendor) StringLiteral(s string) string { return "'" + v.escape(s) + "'" }

func (v *vendor) BoolLiteral(b bool) string {
	if b {
		return v.boolTrue
	}
	return v.boolFalse
}

func (v *vendor) BinaryLiteral(b []byte) string        { return v.binary(b) }
func (v *vendor) TimestampLiteral(t time.Time) string { return v.timestamp(t) }
func (v *vendor) DateLiteral(t time.Time) string      { return v.date(t) }
func (v *vendor) UUIDLiteral(s string) string         { return v.uuid(s) }

func (v *vendor) SQLType(kind Kind) string {
	if name, ok := v.types[kind]; ok {
		return name
	}
	return ansiTypes[kind]
}

func (v *vendor) MergeInfo() MergeInfo          { return v.mergeInfo }
func (v *vendor) TempTableInfo() *TempTableInfo { return v.tempTable }
func (v *vendor) SequenceInfo() *SequenceInfo   { return v.sequence }

func (v *vendor) String() string { return v.name }

func rowNumberFetch(sql string, n, offset int64) string {
	if offset > 0 {
		return fmt.Sprintf("select * from (select *, row_number() over() as x_row_number from (%s)) where x_row_number > %d and x_row_number <= %d",
			sql, offset, offset+n)
	}
	return fmt.Sprintf("select * from (select *, row_number() over() as x_row_number from (%s)) where x_row_number <= %d", sql, n)
}

func limitFetch(sql string, n, offset int64) string {
	if offset > 0 {
		return sql + " limit " + strconv.FormatInt(n, 10) + " offset " + strconv.FormatInt(offset, 10)
	}
	return sql + " limit " + strconv.FormatInt(n, 10)
}

func offsetFetch(sql string, n, offset int64) string {
	return fmt.Sprintf("%s offset %d rows fetch next %d rows only", sql, offset, n)
}

func aliasedUpdate(kw string) func(table, alias, sets, where string) string {
	return func(table, alias, sets, where string) string {
		return "update " + table + aliasSuffix(kw, alias) + " set " + sets + where
	}
}

func aliasedDelete(kw string) func(table, alias, where string) string {
	return func(table, alias, where string) string {
		return "delete from " + table + aliasSuffix(kw, alias) + where
	}
}

func aliasSuffix(kw, alias string) string {
	switch {
	case alias == "":
		return ""
	case kw == "":
		return " " + alias
	default:
		return " " + kw + " " + alias
	}
}
