package filter

import (
	"strings"

	ldap "github.com/go-ldap/ldap/v3"
)

// NodeType identifies the variant of a filter expression node.
type NodeType int

const (
	// NodeAnd matches when every child matches.
	NodeAnd NodeType = iota
	// NodeOr matches when at least one child matches.
	NodeOr
	// NodeNot negates its single child.
	NodeNot
	// NodeTest matches an attribute against a value or for presence.
	NodeTest
)

// String returns the name of the node type.
func (t NodeType) String() string {
	switch t {
	case NodeAnd:
		return "AND"
	case NodeOr:
		return "OR"
	case NodeNot:
		return "NOT"
	case NodeTest:
		return "TEST"
	default:
		return "UNKNOWN"
	}
}

// Attrs is the attribute view a filter evaluates against. Lookups are
// case-insensitive on the attribute name.
type Attrs interface {
	Get(name string) ([]string, bool)
}

// Node is one node of a parsed filter expression tree. Trees are immutable
// after Parse.
type Node struct {
	Type     NodeType
	Children []*Node // NodeAnd, NodeOr
	Child    *Node   // NodeNot

	// NodeTest fields. Value holds the decoded comparison value; Present
	// marks an attr=* presence test, in which case Value is empty.
	Attr    string
	Value   string
	Present bool

	raw string // original test payload, kept so String round-trips
}

// Matches evaluates the tree against one entry. The dn parameter is carried
// for signature parity with search; no node variant consults it today. A
// test against a missing attribute is false, never an error.
func (n *Node) Matches(dn string, attrs Attrs) bool {
	switch n.Type {
	case NodeAnd:
		for _, c := range n.Children {
			if !c.Matches(dn, attrs) {
				return false
			}
		}
		return true
	case NodeOr:
		for _, c := range n.Children {
			if c.Matches(dn, attrs) {
				return true
			}
		}
		return false
	case NodeNot:
		return !n.Child.Matches(dn, attrs)
	case NodeTest:
		values, ok := attrs.Get(n.Attr)
		if !ok {
			return false
		}
		if n.Present {
			return len(values) > 0
		}
		for _, v := range values {
			if v == n.Value {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// String renders the tree back to filter syntax. The result reparses to an
// equivalent tree; parsed tests keep their original payload byte-for-byte,
// while programmatically built tests are re-escaped.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	switch n.Type {
	case NodeAnd:
		b.WriteString("(&")
		for _, c := range n.Children {
			c.write(b)
		}
		b.WriteByte(')')
	case NodeOr:
		b.WriteString("(|")
		for _, c := range n.Children {
			c.write(b)
		}
		b.WriteByte(')')
	case NodeNot:
		b.WriteString("(!")
		n.Child.write(b)
		b.WriteByte(')')
	case NodeTest:
		b.WriteByte('(')
		if n.raw != "" {
			b.WriteString(n.raw)
		} else {
			b.WriteString(n.Attr)
			b.WriteByte('=')
			if n.Present {
				b.WriteByte('*')
			} else {
				b.WriteString(ldap.EscapeFilter(n.Value))
			}
		}
		b.WriteByte(')')
	}
}
