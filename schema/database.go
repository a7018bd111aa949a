// Package schema holds the process-wide database configuration and the
// table and column metadata of mapped row types.
package schema

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/bawdo/typeq/datatype"
	"github.com/bawdo/typeq/dialect"
)

// Database is the configuration shared by every query built against it.
// It is immutable after NewDatabase returns and safe for concurrent use.
type Database struct {
	defaultSchema string
	naming        NamingStrategy
	dialect       dialect.Dialect
	location      *time.Location
	registry      *datatype.Registry
	logger        *slog.Logger

	tables sync.Map // reflect.Type -> *TableInfo
	group  singleflight.Group
}

// Option configures a Database.
type Option func(*Database)

// WithDefaultSchema sets the schema of tables that do not declare one.
func WithDefaultSchema(schema string) Option {
	return func(db *Database) { db.defaultSchema = schema }
}

// WithNamingStrategy sets how table and column names are derived.
func WithNamingStrategy(n NamingStrategy) Option {
	return func(db *Database) { db.naming = n }
}

// WithDialect sets the SQL dialect. The default is ANSI.
func WithDialect(d dialect.Dialect) Option {
	return func(db *Database) { db.dialect = d }
}

// WithLocation sets the zone timestamps are bound and decoded in. The default is UTC.
func WithLocation(loc *time.Location) Option {
	return func(db *Database) { db.location = loc }
}

// WithRegistry replaces the data type registry.
func WithRegistry(r *datatype.Registry) Option {
	return func(db *Database) { db.registry = r }
}

// WithLogger sets the logger used for statement tracing.
func WithLogger(l *slog.Logger) Option {
	return func(db *Database) { db.logger = l }
}

// NewDatabase returns a Database with opts applied over the defaults.
func NewDatabase(opts ...Option) *Database {
	db := &Database{
		naming:   NewUpperSnake(),
		dialect:  dialect.Ansi(),
		location: time.UTC,
	}
	for _, o := range opts {
		o(db)
	}
	if db.registry == nil {
		db.registry = datatype.NewRegistry()
	}
	if db.logger == nil {
		db.logger = slog.Default()
	}
	return db
}

// With returns a copy of db with opts applied. Table metadata is not
// shared with the copy since names may depend on the options.
func (db *Database) With(opts ...Option) *Database {
	cp := &Database{
		defaultSchema: db.defaultSchema,
		naming:        db.naming,
		dialect:       db.dialect,
		location:      db.location,
		registry:      db.registry,
		logger:        db.logger,
	}
	for _, o := range opts {
		o(cp)
	}
	return cp
}

func (db *Database) DefaultSchema() string        { return db.defaultSchema }
func (db *Database) Naming() NamingStrategy       { return db.naming }
func (db *Database) Dialect() dialect.Dialect     { return db.dialect }
func (db *Database) Location() *time.Location     { return db.location }
func (db *Database) Registry() *datatype.Registry { return db.registry }
func (db *Database) Logger() *slog.Logger         { return db.logger }

// Env returns the conversion environment for data types.
func (db *Database) Env() datatype.Env {
	return datatype.Env{Dialect: db.dialect, Location: db.location}
}

// TableFor returns the metadata for R, building it on first use.
func TableFor[R Describer[R]](db *Database) (Table[R], error) {
	t, err := tableInfoOf[R](db)
	if err != nil {
		return Table[R]{}, err
	}
	return Table[R]{TableInfo: t}, nil
}

// MustTable is TableFor for statically declared tables; it panics on a
// malformed declaration.
func MustTable[R Describer[R]](db *Database) Table[R] {
	t, err := TableFor[R](db)
	if err != nil {
		panic(fmt.Sprintf("typeq: %v", err))
	}
	return t
}

// tableInfoOf builds or loads the metadata of R. R must implement
// Describer[R] with a value or pointer receiver.
func tableInfoOf[R any](db *Database) (*TableInfo, error) {
	rt := reflect.TypeFor[R]()
	if t, ok := db.tables.Load(rt); ok {
		return t.(*TableInfo), nil
	}
	v, err, _ := db.group.Do(rt.String(), func() (any, error) {
		if t, ok := db.tables.Load(rt); ok {
			return t, nil
		}
		d, ok := describerOf[R]()
		if !ok {
			return nil, fmt.Errorf("%s does not describe a table", rt)
		}
		t, err := buildTable(db, d)
		if err != nil {
			return nil, err
		}
		db.logger.Debug("table mapped", "type", rt.String(), "table", t.QualifiedName(), "columns", len(t.Columns))
		actual, _ := db.tables.LoadOrStore(rt, t)
		return actual, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*TableInfo), nil
}

func describerOf[R any]() (Describer[R], bool) {
	var zero R
	if d, ok := any(zero).(Describer[R]); ok {
		return d, true
	}
	d, ok := any(&zero).(Describer[R])
	return d, ok
}
