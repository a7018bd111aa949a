package dialect

import "strings"

// CommitAction is what happens to a local temporary table when its transaction commits.
type CommitAction int

const (
	PreserveRows CommitAction = iota
	DeleteRows
	DropTable
)

var commitActionNames = [...]string{
	PreserveRows: "preserve rows",
	DeleteRows:   "delete rows",
	DropTable:    "drop table",
}

func (a CommitAction) String() string { return commitActionNames[a] }

// Tokens supplies values for the ${name} placeholders in temp-table formats.
type Tokens map[string]string

// Replace substitutes every ${name} in format with its token value.
func (t Tokens) Replace(format string) string {
	pairs := make([]string, 0, len(t)*2)
	for k, v := range t {
		pairs = append(pairs, "${"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(format)
}

// TempTableInfo describes global and local temporary table support.
type TempTableInfo struct {
	supportsGlobal             bool
	supportsLocal              bool
	listGlobalSQL              string
	createGlobalFormat         string
	createLocalPreserveFormat  string
	createLocalDeleteFormat    string
	createLocalDropFormat      string
	tableNameFormat            string
	localCommitOptions         map[CommitAction]bool
	createLocalIsTransactional bool
	clearsGlobalOnCommit       bool
}

// TempTableOption configures a TempTableInfo.
type TempTableOption func(*TempTableInfo)

// NewTempTableInfo returns the ANSI temporary table descriptor with opts applied.
func NewTempTableInfo(opts ...TempTableOption) *TempTableInfo {
	t := &TempTableInfo{
		supportsGlobal:             true,
		supportsLocal:              true,
		createGlobalFormat:         "create global temporary table ${tableName}(${columnDefs}${primaryKeyDef}${foreignKeyDefs})",
		createLocalPreserveFormat:  "create temporary table ${tableName}(${columnDefs})",
		tableNameFormat:            "${tableName}",
		localCommitOptions:         map[CommitAction]bool{PreserveRows: true},
		createLocalIsTransactional: true,
		clearsGlobalOnCommit:       true,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

func WithoutGlobalTempTables() TempTableOption {
	return func(t *TempTableInfo) { t.supportsGlobal = false }
}

func WithoutLocalTempTables() TempTableOption {
	return func(t *TempTableInfo) { t.supportsLocal = false }
}

func WithListGlobalSQL(sql string) TempTableOption {
	return func(t *TempTableInfo) { t.listGlobalSQL = sql }
}

func WithCreateGlobal(format string) TempTableOption {
	return func(t *TempTableInfo) { t.createGlobalFormat = format }
}

func WithCreateLocalPreserveRows(format string) TempTableOption {
	return func(t *TempTableInfo) { t.createLocalPreserveFormat = format }
}

func WithCreateLocalDeleteRows(format string) TempTableOption {
	return func(t *TempTableInfo) { t.createLocalDeleteFormat = format }
}

func WithCreateLocalDropTable(format string) TempTableOption {
	return func(t *TempTableInfo) { t.createLocalDropFormat = format }
}

func WithTableNameFormat(format string) TempTableOption {
	return func(t *TempTableInfo) { t.tableNameFormat = format }
}

// WithLocalCommitOptions replaces the set of supported commit actions.
func WithLocalCommitOptions(actions ...CommitAction) TempTableOption {
	return func(t *TempTableInfo) {
		t.localCommitOptions = make(map[CommitAction]bool, len(actions))
		for _, a := range actions {
			t.localCommitOptions[a] = true
		}
	}
}

func WithLocalCreateNonTransactional() TempTableOption {
	return func(t *TempTableInfo) { t.createLocalIsTransactional = false }
}

func WithGlobalRowsKeptOnCommit() TempTableOption {
	return func(t *TempTableInfo) { t.clearsGlobalOnCommit = false }
}

func (t *TempTableInfo) SupportsGlobal() bool             { return t.supportsGlobal }
func (t *TempTableInfo) SupportsLocal() bool              { return t.supportsLocal }
func (t *TempTableInfo) ListGlobalSQL() string            { return t.listGlobalSQL }
func (t *TempTableInfo) CreateLocalIsTransactional() bool { return t.createLocalIsTransactional }
func (t *TempTableInfo) ClearsGlobalOnCommit() bool       { return t.clearsGlobalOnCommit }

// SupportsLocalOnCommit reports whether action is available for local tables.
func (t *TempTableInfo) SupportsLocalOnCommit(action CommitAction) bool {
	return t.localCommitOptions[action]
}

func (t *TempTableInfo) CreateGlobalSQL(tokens Tokens) string {
	return tokens.Replace(t.createGlobalFormat)
}

// CreateLocalSQL renders the local create statement for action, falling back
// to the preserve-rows form when the vendor lacks the requested action.
func (t *TempTableInfo) CreateLocalSQL(action CommitAction, tokens Tokens) string {
	switch {
	case action == DeleteRows && t.SupportsLocalOnCommit(DeleteRows):
		return tokens.Replace(t.createLocalDeleteFormat)
	case action == DropTable && t.SupportsLocalOnCommit(DropTable):
		return tokens.Replace(t.createLocalDropFormat)
	default:
		return tokens.Replace(t.createLocalPreserveFormat)
	}
}

func (t *TempTableInfo) TableName(tokens Tokens) string {
	return tokens.Replace(t.tableNameFormat)
}

// GlobalTempTableName qualifies a global temporary table name for d.
func (t *TempTableInfo) GlobalTempTableName(d Dialect, schema, name string) string {
	return d.QualifiedName(schema, name)
}
