package nodes

import (
	"fmt"
	"reflect"
	"strings"
	"sync/atomic"

	"github.com/bawdo/typeq/dialect"
	"github.com/bawdo/typeq/schema"
)

// Scope is one level of visible aliases, chained to the enclosing level for
// correlated lookups. Scopes are never mutated once built; Plus returns a
// new child level.
type Scope struct {
	outer   *Scope
	aliases []Alias
	db      *schema.Database
	labels  *atomic.Int64
	track   *tracking
}

type tracking struct {
	alias Alias
	used  *atomic.Bool
}

// NewScope returns an outermost scope holding aliases.
func NewScope(db *schema.Database, aliases ...Alias) *Scope {
	return &Scope{db: db, aliases: aliases, labels: new(atomic.Int64)}
}

// Plus returns a child scope holding aliases, with s as its outer scope.
func (s *Scope) Plus(aliases ...Alias) *Scope {
	return &Scope{outer: s, db: s.db, aliases: aliases}
}

// Extend returns a scope at the same level as s with aliases appended.
// It shares s's outer chain and label counter.
func (s *Scope) Extend(aliases ...Alias) *Scope {
	all := make([]Alias, 0, len(s.aliases)+len(aliases))
	all = append(append(all, s.aliases...), aliases...)
	return &Scope{outer: s.outer, db: s.db, aliases: all, labels: s.labels}
}

// PlusScope nests inner inside s: inner's levels are kept, in order, and
// its outermost level is re-rooted on s.
func (s *Scope) PlusScope(inner *Scope) *Scope {
	if inner == nil {
		return s.Plus()
	}
	if inner.outer == nil {
		return s.Plus(inner.aliases...)
	}
	return s.PlusScope(inner.outer).Plus(inner.aliases...)
}

// Empty returns a fresh outermost scope over the same database.
func (s *Scope) Empty() *Scope { return NewScope(s.db) }

func (s *Scope) Database() *schema.Database { return s.db }
func (s *Scope) Dialect() dialect.Dialect   { return s.db.Dialect() }
func (s *Scope) IsOutermost() bool          { return s.outer == nil }
func (s *Scope) Outer() *Scope              { return s.outer }

// Aliases returns the aliases declared at this level only.
func (s *Scope) Aliases() []Alias { return s.aliases }

// NewLabel draws the next value from the outermost scope's label counter.
func (s *Scope) NewLabel() int64 {
	root := s
	for root.outer != nil {
		root = root.outer
	}
	return root.labels.Add(1)
}

// Tracker returns a child scope that sets the returned flag whenever a
// column resolution through it yields alias.
func (s *Scope) Tracker(alias Alias) (*Scope, *atomic.Bool) {
	used := &atomic.Bool{}
	return &Scope{outer: s, db: s.db, track: &tracking{alias: alias, used: used}}, used
}

// NoteUse records that alias was referenced from s. Trackers anywhere on
// the chain watching for alias are set.
func (s *Scope) NoteUse(alias Alias) {
	for cur := s; cur != nil; cur = cur.outer {
		if cur.track != nil && cur.track.alias.Equal(alias) {
			cur.track.used.Store(true)
		}
	}
}

// FindAlias returns the alias for rowType, searching outward from s.
func (s *Scope) FindAlias(rowType reflect.Type) (Alias, error) {
	for cur := s; cur != nil; cur = cur.outer {
		var found []Alias
		for _, a := range cur.aliases {
			if a.RowType() == rowType {
				found = append(found, a)
			}
		}
		switch len(found) {
		case 0:
			continue
		case 1:
			s.NoteUse(found[0])
			return found[0], nil
		default:
			return nil, fmt.Errorf("%w: %d aliases for %s (%s)", ErrAmbiguousAlias, len(found), rowType, aliasNames(found))
		}
	}
	return nil, fmt.Errorf("%w: no alias for %s", ErrNoAlias, rowType)
}

// FindAliasNamed returns the alias called name, which must be bound to rowType.
func (s *Scope) FindAliasNamed(rowType reflect.Type, name string) (Alias, error) {
	a, err := s.FindAliasByName(name)
	if err != nil {
		return nil, err
	}
	if a.RowType() != rowType {
		return nil, fmt.Errorf("%w: alias %s is an alias for %s and not %s", ErrAliasTypeMismatch, name, a.RowType(), rowType)
	}
	return a, nil
}

// FindAliasByName returns the innermost alias called name.
func (s *Scope) FindAliasByName(name string) (Alias, error) {
	for cur := s; cur != nil; cur = cur.outer {
		for _, a := range cur.aliases {
			if a.Name() != "" && strings.EqualFold(a.Name(), name) {
				s.NoteUse(a)
				return a, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: no alias named %s", ErrNoAlias, name)
}

func (s *Scope) String() string {
	var sb strings.Builder
	depth := 0
	for cur := s; cur != nil; cur = cur.outer {
		for _, a := range cur.aliases {
			sb.WriteString(strings.Repeat("  ", depth))
			sb.WriteString(a.Prefix())
			sb.WriteString("\n")
		}
		depth++
	}
	return sb.String()
}

func aliasNames(aliases []Alias) string {
	names := make([]string, len(aliases))
	for i, a := range aliases {
		names[i] = a.Prefix()
	}
	return strings.Join(names, ", ")
}
