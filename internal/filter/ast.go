// Package filter compiles the log viewer's filter expressions into
// predicates over log messages.
package filter

// Node is a parsed filter expression.
type Node interface {
	node()
}

// Op is the comparison a Term applies.
type Op int

const (
	OpEq       Op = iota // key:value
	OpNeq                // key!=value
	OpContains           // key~value, or a bare word
)

func (o Op) String() string {
	switch o {
	case OpNeq:
		return "!="
	case OpContains:
		return "~"
	default:
		return ":"
	}
}

// Term compares one field with a value. Without a Key it searches every text
// field of the entry.
type Term struct {
	Key   string
	Op    Op
	Value string
}

type And struct{ Left, Right Node }

type Or struct{ Left, Right Node }

type Not struct{ Expr Node }

func (Term) node() {}
func (And) node()  {}
func (Or) node()   {}
func (Not) node()  {}
