package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/bawdo/typeq/dialect"
	"github.com/bawdo/typeq/managers"
	"github.com/bawdo/typeq/schema"
)

var errNotConnected = errors.New("not connected (use 'connect <dsn>' first)")

// commandEntry maps a REPL prefix to its handler and optional tab-completer.
type commandEntry struct {
	prefix    string
	usage     string
	handler   func(args string) error
	completer func(args string) (completionContext, string) // nil = no arg completion
	hidden    bool                                          // excluded from commandNames()
}

// Session holds the REPL state: the configuration, the schema database for
// the active dialect and the live connection, if any.
type Session struct {
	ctx      context.Context
	cfg      *Config
	db       *schema.Database
	logger   *slog.Logger
	conn     *dbConn // nil when disconnected
	commands []commandEntry
	out      io.Writer
}

// NewSession creates a session for the configured dialect.
func NewSession(ctx context.Context, cfg *Config, logger *slog.Logger, out io.Writer) (*Session, error) {
	db, err := cfg.Database(logger)
	if err != nil {
		return nil, err
	}
	s := &Session{ctx: ctx, cfg: cfg, db: db, logger: logger, out: out}
	s.initCommands()
	return s, nil
}

// initCommands builds the command registry and sorts by prefix length descending.
func (s *Session) initCommands() {
	s.commands = []commandEntry{
		{prefix: "help", usage: "help", handler: func(_ string) error { s.cmdHelp(); return nil }},
		{prefix: "dialect ", usage: "dialect <name>", handler: s.cmdDialect, completer: completeDialectArgs},
		{prefix: "dialect", handler: func(_ string) error { return s.cmdDialect("") }},
		{prefix: "capabilities", usage: "capabilities", handler: func(_ string) error { return s.print(capabilityTable()) }},
		{prefix: "samples", usage: "samples", handler: func(_ string) error { return s.cmdSamples() }},
		{prefix: "show ", usage: "show <sample>", handler: s.cmdShow, completer: completeSampleArgs},
		{prefix: "run ", usage: "run <sample>", handler: s.cmdRun, completer: completeSampleArgs},
		{prefix: "exec ", handler: s.cmdRun, completer: completeSampleArgs, hidden: true},
		{prefix: "sql ", usage: "sql <statement>", handler: s.cmdSQL},
		{prefix: "connect ", usage: "connect [dsn]", handler: s.cmdConnect},
		{prefix: "connect", handler: func(_ string) error { return s.cmdConnect("") }},
		{prefix: "disconnect", usage: "disconnect", handler: func(_ string) error { return s.cmdDisconnect() }},
		{prefix: "ddl", usage: "ddl", handler: func(_ string) error { return s.cmdDDL() }},
		{prefix: "seed", usage: "seed", handler: func(_ string) error { return s.cmdSeed() }},
		{prefix: "tables", usage: "tables", handler: func(_ string) error { return s.cmdTables() }},
	}

	sort.SliceStable(s.commands, func(i, j int) bool {
		return len(s.commands[i].prefix) > len(s.commands[j].prefix)
	})
}

// commandNames derives the command name list from the registry for tab completion.
func (s *Session) commandNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, cmd := range s.commands {
		if cmd.hidden {
			continue
		}
		name := strings.TrimRight(cmd.prefix, " ")
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	names = append(names, "exit", "quit")
	sort.Strings(names)
	return names
}

// Execute parses and runs a single REPL command.
func (s *Session) Execute(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	lower := strings.ToLower(line)

	for _, cmd := range s.commands {
		if strings.HasSuffix(cmd.prefix, " ") {
			if strings.HasPrefix(lower, cmd.prefix) {
				return cmd.handler(strings.TrimSpace(line[len(cmd.prefix):]))
			}
		} else if lower == cmd.prefix {
			return cmd.handler("")
		}
	}

	word := strings.Fields(line)[0]
	return fmt.Errorf("unknown command: %s (type 'help' for commands)", word)
}

// Close releases the connection, if any.
func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.close()
	s.conn = nil
	return err
}

func (s *Session) print(text string) error {
	_, err := fmt.Fprint(s.out, text)
	return err
}

func (s *Session) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}

// --- Command handlers ---

func (s *Session) cmdHelp() {
	var usages []string
	for _, cmd := range s.commands {
		if cmd.usage != "" {
			usages = append(usages, cmd.usage)
		}
	}
	sort.Strings(usages)
	s.printf("Commands:\n")
	for _, u := range usages {
		s.printf("  %s\n", u)
	}
	s.printf("  exit | quit\n")
}

func (s *Session) cmdDialect(name string) error {
	if name == "" {
		s.printf("  Dialect: %s\n", s.db.Dialect().Name())
		return nil
	}
	if _, ok := dialect.Lookup(name); !ok {
		return fmt.Errorf("unknown dialect %q (want one of %s)", name, strings.Join(dialect.Names(), ", "))
	}
	if s.conn != nil {
		return errors.New("disconnect before changing dialect")
	}
	c := *s.cfg
	c.Dialect = name
	db, err := c.Database(s.logger)
	if err != nil {
		return err
	}
	s.cfg, s.db = &c, db
	s.printf("  Dialect: %s\n", db.Dialect().Name())
	return nil
}

func (s *Session) cmdSamples() error {
	rows := make([][]string, len(samples))
	for i, sm := range samples {
		kind := "statement"
		if sm.query {
			kind = "query"
		}
		rows[i] = []string{sm.name, kind, sm.short}
	}
	return s.print(formatTable([]string{"sample", "kind", "description"}, rows))
}

func (s *Session) cmdShow(name string) error {
	sm, err := findSample(name)
	if err != nil {
		return err
	}
	text, err := renderSample(s.db, sm)
	if err != nil {
		return err
	}
	return s.print(text)
}

// cmdRun renders a sample and runs it on the connection: queries print
// their rows, other statements their affected row count.
func (s *Session) cmdRun(name string) error {
	if s.conn == nil {
		return errNotConnected
	}
	sm, err := findSample(name)
	if err != nil {
		return err
	}
	rendered, err := sm.build(s.db)
	if err != nil {
		return err
	}
	for _, r := range rendered {
		if sm.query {
			text, err := s.conn.query(s.ctx, r.SQL, r.Args)
			if err != nil {
				return err
			}
			if err := s.print(text); err != nil {
				return err
			}
			continue
		}
		n, err := s.conn.exec.Exec(s.ctx, r.SQL, r.Args)
		if err != nil {
			return err
		}
		s.printf("  %d row(s) affected\n", n)
	}
	return nil
}

func (s *Session) cmdSQL(stmt string) error {
	if s.conn == nil {
		return errNotConnected
	}
	if stmt == "" {
		return errors.New("usage: sql <statement>")
	}
	text, err := s.conn.query(s.ctx, stmt, nil)
	if err != nil {
		return err
	}
	return s.print(text)
}

func (s *Session) cmdConnect(dsn string) error {
	if dsn == "" {
		dsn = s.cfg.DB.URL
	}
	if dsn == "" {
		return errors.New("usage: connect <dsn> (or set database.url)")
	}
	if s.conn != nil {
		_ = s.conn.close()
		s.conn = nil
	}
	conn, err := connect(s.ctx, s.db.Dialect().Name(), dsn, s.logger)
	if err != nil {
		return connectError("connecting to "+sanitizeDSN(dsn), err)
	}
	s.conn = conn
	s.printf("  Connected: %s (%s)\n", sanitizeDSN(dsn), conn.dialect)
	return nil
}

func (s *Session) cmdDisconnect() error {
	if s.conn == nil {
		return errNotConnected
	}
	if err := s.Close(); err != nil {
		return err
	}
	s.printf("  Disconnected\n")
	return nil
}

func (s *Session) cmdDDL() error {
	stmts, err := catalogDDL(s.db)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		s.printf("%s;\n", stmt)
	}
	return nil
}

// cmdSeed creates the demo catalog and loads the seed rows through the
// typed insert builders.
func (s *Session) cmdSeed() error {
	if s.conn == nil {
		return errNotConnected
	}
	stmts, err := catalogDDL(s.db)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := s.conn.exec.Exec(s.ctx, stmt, nil); err != nil {
			return err
		}
	}
	authors, err := managers.Insert(s.db, seedAuthors...).Execute(s.ctx, s.conn.exec)
	if err != nil {
		return fmt.Errorf("seeding authors: %w", err)
	}
	books, err := managers.Insert(s.db, seedBooks()...).Execute(s.ctx, s.conn.exec)
	if err != nil {
		return fmt.Errorf("seeding books: %w", err)
	}
	if err := s.conn.loadSchema(s.ctx); err != nil {
		s.logger.Warn("schema introspection failed", "error", err)
	}
	s.printf("  Seeded %d author(s) and %d book(s)\n", authors, books)
	return nil
}

func (s *Session) cmdTables() error {
	if s.conn == nil {
		return errNotConnected
	}
	if len(s.conn.tables) == 0 {
		s.printf("  (no tables)\n")
		return nil
	}
	for _, t := range s.conn.tables {
		s.printf("  %s\n", t)
	}
	return nil
}
