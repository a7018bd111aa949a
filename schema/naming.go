package schema

import (
	"strings"

	"github.com/go-openapi/inflect"
)

// NamingStrategy derives SQL names from Go type and field names when a
// table or column does not declare one explicitly.
type NamingStrategy interface {
	TableName(typeName string) string
	ColumnName(fieldName string) string
}

// UpperSnake names tables and columns in upper snake case:
// ManufacturerID becomes MANUFACTURER_ID.
type UpperSnake struct {
	rules *inflect.Ruleset
}

// defaultAcronyms are kept as single words when splitting Go identifiers.
var defaultAcronyms = []string{"UUID", "HTTP", "JSON", "URL", "SQL", "API", "ID"}

// NewUpperSnake returns an UpperSnake strategy. Extra acronyms are treated
// as single words in addition to the common ones (ID, URL, ...).
func NewUpperSnake(acronyms ...string) *UpperSnake {
	rules := inflect.NewDefaultRuleset()
	// longer acronyms first so UUID is not split by the ID rule
	for _, a := range append(append([]string{}, acronyms...), defaultAcronyms...) {
		rules.AddAcronym(a)
	}
	return &UpperSnake{rules: rules}
}

func (u *UpperSnake) TableName(typeName string) string { return u.snake(typeName) }

func (u *UpperSnake) ColumnName(fieldName string) string { return u.snake(fieldName) }

func (u *UpperSnake) snake(name string) string {
	return strings.ToUpper(u.rules.Underscore(name))
}

// Verbatim uses Go names unchanged.
type Verbatim struct{}

func (Verbatim) TableName(typeName string) string   { return typeName }
func (Verbatim) ColumnName(fieldName string) string { return fieldName }
