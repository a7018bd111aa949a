// Package quoting provides identifier quoting and literal escaping shared by the dialects.
package quoting

import "strings"

// DoubleQuote quotes an identifier the standard way, doubling embedded double quotes.
func DoubleQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Backtick quotes an identifier for MySQL, doubling embedded backticks.
func Backtick(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

// EscapeString escapes the body of a standard single-quoted literal.
// Only single quotes are special.
func EscapeString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// EscapeMySQLString escapes the body of a MySQL single-quoted literal, where
// the backslash is also an escape character under the default sql_mode.
func EscapeMySQLString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "'", "''")
}

// EscapeLikePattern escapes the LIKE wildcards (% and _) so they match
// literally, using backslash as the escape character.
func EscapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}
