package nodes

import "github.com/bawdo/typeq/schema"

// Assignment is one column = value pair of an update.
type Assignment struct {
	Column *schema.Column
	Value  Node
}

// UpdateStatement is update <table> <alias> set ... where ...
type UpdateStatement struct {
	Scope *Scope
	Alias *TableSource
	Sets  []Assignment
	Where *BooleanChain
}

func (n *UpdateStatement) Accept(v Visitor) string { return v.VisitUpdateStatement(n) }
func (n *UpdateStatement) Precedence() Precedence  { return PrecSelect }

func (n *UpdateStatement) Clone() *UpdateStatement {
	c := *n
	c.Sets = append([]Assignment(nil), n.Sets...)
	c.Where = n.Where.Clone()
	return &c
}

// DeleteStatement is delete from <table> <alias> where ...
type DeleteStatement struct {
	Scope *Scope
	Alias *TableSource
	Where *BooleanChain
}

func (n *DeleteStatement) Accept(v Visitor) string { return v.VisitDeleteStatement(n) }
func (n *DeleteStatement) Precedence() Precedence  { return PrecSelect }

func (n *DeleteStatement) Clone() *DeleteStatement {
	c := *n
	c.Where = n.Where.Clone()
	return &c
}

// InsertStatement is insert into <table> (cols) values (...), ...
type InsertStatement struct {
	Scope   *Scope
	Table   *TableSource
	Columns []*schema.Column
	Rows    [][]Node
}

func (n *InsertStatement) Accept(v Visitor) string { return v.VisitInsertStatement(n) }
func (n *InsertStatement) Precedence() Precedence  { return PrecSelect }

// MergeStatement inserts one row, or updates it when a row with the same
// key exists. Values holds one node per entry of Columns.
type MergeStatement struct {
	Scope         *Scope
	Table         *TableSource
	Columns       []*schema.Column
	IDColumns     []*schema.Column
	InsertColumns []*schema.Column
	UpdateColumns []*schema.Column
	Values        []Node
}

func (n *MergeStatement) Accept(v Visitor) string { return v.VisitMergeStatement(n) }
func (n *MergeStatement) Precedence() Precedence  { return PrecSelect }
