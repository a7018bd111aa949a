package managers

import (
	"fmt"

	"github.com/bawdo/typeq/nodes"
)

// JoinContext is returned by the join methods of SelectManager. Its On,
// And and Or build the join condition; every other method continues with
// the select.
type JoinContext struct {
	*SelectManager
	join *nodes.FromJoin
}

// On sets the join condition. Rendering fails with an InvalidJoinError if
// the condition never references the joined alias.
func (jc *JoinContext) On(cond nodes.Expr[bool]) *JoinContext {
	jc.join.StartOn(cond, true)
	return jc
}

// OnUnchecked sets the join condition without checking that it references
// the joined alias.
func (jc *JoinContext) OnUnchecked(cond nodes.Expr[bool]) *JoinContext {
	jc.join.StartOn(cond, false)
	return jc
}

// And appends "and cond" to the join condition.
func (jc *JoinContext) And(cond nodes.Expr[bool]) *JoinContext {
	jc.join.AppendAnd(cond)
	return jc
}

// Or appends "or cond" to the join condition.
func (jc *JoinContext) Or(cond nodes.Expr[bool]) *JoinContext {
	jc.join.AppendOr(cond)
	return jc
}

// OnForeignKey joins on the declared foreign key between the joined alias
// and exactly one alias already in the FROM clause, in either direction.
func (jc *JoinContext) OnForeignKey() *JoinContext {
	joined := jc.join.Alias
	var (
		child, parent nodes.Alias
		matches       []string
		cond          *nodes.BooleanChain
	)
	for _, prior := range jc.join.Left.Aliases() {
		fk, ok := joined.ForeignKeyTo(prior)
		c, p := joined, prior
		if !ok {
			fk, ok = prior.ForeignKeyTo(joined)
			c, p = prior, joined
		}
		if !ok {
			continue
		}
		matches = append(matches, prior.Prefix())
		child, parent = c, p

		parentCols, err := fk.ParentColumns(jc.db)
		if err != nil {
			panic(fmt.Sprintf("typeq: %v", err))
		}
		cond = nodes.NewChain()
		for i, col := range fk.Columns {
			eq := &nodes.ComparisonNode{
				Left:  nodes.Named(child, col.Name),
				Right: nodes.Named(parent, parentCols[i].Name),
				Op:    nodes.OpEq,
			}
			if i == 0 {
				cond.Start(eq)
			} else {
				cond.AppendAnd(eq)
			}
		}
	}
	switch len(matches) {
	case 0:
		panic(fmt.Sprintf("typeq: no foreign key relates %s to the joined tables", joined.Prefix()))
	case 1:
	default:
		panic(fmt.Sprintf("typeq: foreign keys relate %s to more than one of %v", joined.Prefix(), matches))
	}
	if len(cond.Terms()) == 0 {
		jc.join.StartOn(cond.First(), true)
	} else {
		jc.join.StartOn(cond, true)
	}
	return jc
}
