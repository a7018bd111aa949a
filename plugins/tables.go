package plugins

import "github.com/bawdo/typeq/nodes"

// TableRef is a table alias found in a FROM clause.
type TableRef struct {
	Alias *nodes.TableSource
	Name  string // underlying table name
	// Join is the join that introduced the alias, nil for the leftmost source.
	Join *nodes.FromJoin
}

type untyped interface {
	Untyped() *nodes.TableSource
}

// CollectTables returns every table alias of a SelectCore's FROM clause,
// leftmost first. Derived tables, CTEs and the dual pseudo-table are skipped.
func CollectTables(core *nodes.SelectCore) []TableRef {
	if core.From == nil {
		return nil
	}
	return collect(core.From, nil)
}

func collect(f nodes.From, refs []TableRef) []TableRef {
	switch n := f.(type) {
	case *nodes.FromAlias:
		if ref, ok := tableRef(n.Alias, nil); ok {
			refs = append(refs, ref)
		}
	case *nodes.FromJoin:
		refs = collect(n.Left, refs)
		if ref, ok := tableRef(n.Alias, n); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

func tableRef(a nodes.Alias, join *nodes.FromJoin) (TableRef, bool) {
	u, ok := a.(untyped)
	if !ok {
		return TableRef{}, false
	}
	src := u.Untyped()
	return TableRef{Alias: src, Name: src.Table().Name, Join: join}, true
}
