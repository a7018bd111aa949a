// Command typeq renders typeq statements per dialect and runs them from an
// interactive shell.
//
// Configuration is read from typeq.yaml (discovered upwards from the working
// directory) and TYPEQ_* environment variables, e.g.
//
//	TYPEQ_DIALECT=postgres|mysql|sqlite|ansi
//	TYPEQ_DATABASE_URL=<dsn>
//
// Usage:
//
//	typeq render join --all
//	typeq capabilities
//	typeq repl
package main

func main() {
	Execute()
}
