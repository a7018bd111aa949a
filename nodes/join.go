package nodes

// JoinType represents the type of SQL JOIN.
type JoinType int

const (
	InnerJoin JoinType = iota
	LeftOuterJoin
	RightOuterJoin
	FullOuterJoin
	CrossJoin
)

// String returns the display name for this join type.
func (t JoinType) String() string {
	switch t {
	case InnerJoin:
		return "INNER JOIN"
	case LeftOuterJoin:
		return "LEFT OUTER JOIN"
	case RightOuterJoin:
		return "RIGHT OUTER JOIN"
	case FullOuterJoin:
		return "FULL OUTER JOIN"
	case CrossJoin:
		return "CROSS JOIN"
	default:
		return "JOIN"
	}
}

// From is the FROM clause: one alias, or a chain of joins onto one.
type From interface {
	Node
	// Aliases lists every alias in the clause, leftmost first.
	Aliases() []Alias
}

// FromAlias is the leftmost source of a FROM clause.
type FromAlias struct {
	Alias Alias
}

func (f *FromAlias) Accept(v Visitor) string { return v.VisitFromAlias(f) }
func (f *FromAlias) Precedence() Precedence  { return PrecSelect }
func (f *FromAlias) Aliases() []Alias        { return []Alias{f.Alias} }

// FromJoin joins Alias onto Left. With Validate set, rendering fails unless
// the ON condition references Alias. Guards are and-ed onto the ON
// condition but do not count toward that check.
type FromJoin struct {
	Left     From
	Type     JoinType
	Alias    Alias
	On       *BooleanChain
	Guards   []Node
	Validate bool
}

// NewJoin joins alias onto left. The ON condition is added with StartOn.
func NewJoin(left From, t JoinType, alias Alias) *FromJoin {
	return &FromJoin{Left: left, Type: t, Alias: alias, On: NewChain()}
}

func (j *FromJoin) Accept(v Visitor) string { return v.VisitFromJoin(j) }
func (j *FromJoin) Precedence() Precedence  { return PrecSelect }

func (j *FromJoin) Aliases() []Alias {
	return append(j.Left.Aliases(), j.Alias)
}

// StartOn sets the first ON condition.
func (j *FromJoin) StartOn(cond Node, validate bool) *FromJoin {
	j.On.Start(cond)
	j.Validate = validate
	return j
}

func (j *FromJoin) AppendAnd(cond Node) *FromJoin {
	j.On.AppendAnd(cond)
	return j
}

func (j *FromJoin) AppendOr(cond Node) *FromJoin {
	j.On.AppendOr(cond)
	return j
}

// AddGuard ands cond onto the ON condition without it satisfying join
// validation.
func (j *FromJoin) AddGuard(cond Node) *FromJoin {
	j.Guards = append(j.Guards, cond)
	return j
}

// CloneFrom copies a FROM clause so its ON chains can be extended without
// affecting f.
func CloneFrom(f From) From {
	j, ok := f.(*FromJoin)
	if !ok {
		return f
	}
	c := *j
	c.Left = CloneFrom(j.Left)
	c.On = j.On.Clone()
	c.Guards = append([]Node(nil), j.Guards...)
	return &c
}
