package xml

import (
	"fmt"
	"strings"

	"github.com/antchfx/xpath"
)

// Navigator implements xpath.NodeNavigator over a Tree.
type Navigator struct {
	tree *Tree
	cur  NodeID
	attr int
}

var _ xpath.NodeNavigator = (*Navigator)(nil)

// Navigator returns a navigator positioned at id. None positions it at the
// document node.
func (t *Tree) Navigator(id NodeID) *Navigator {
	if id == None {
		id = t.root
	}
	return &Navigator{tree: t, cur: id, attr: -1}
}

// Node returns the node the navigator is positioned on. When positioned on an
// attribute it returns the owning element.
func (n *Navigator) Node() NodeID { return n.cur }

func (n *Navigator) NodeType() xpath.NodeType {
	if n.attr != -1 {
		return xpath.AttributeNode
	}
	switch n.tree.nodes[n.cur].kind {
	case DocumentNode:
		return xpath.RootNode
	case ElementNode:
		return xpath.ElementNode
	case TextNode:
		return xpath.TextNode
	default:
		return xpath.CommentNode
	}
}

func (n *Navigator) LocalName() string {
	if n.attr != -1 {
		return n.tree.nodes[n.cur].attrs[n.attr].Name.Local
	}
	return n.tree.nodes[n.cur].local
}

func (n *Navigator) Prefix() string {
	if n.attr != -1 {
		return n.tree.nodes[n.cur].attrs[n.attr].Name.Space
	}
	return n.tree.nodes[n.cur].prefix
}

func (n *Navigator) Value() string {
	if n.attr != -1 {
		return n.tree.nodes[n.cur].attrs[n.attr].Value
	}
	return n.tree.Text(n.cur)
}

func (n *Navigator) Copy() xpath.NodeNavigator {
	cp := *n
	return &cp
}

func (n *Navigator) MoveToRoot() {
	n.cur = n.tree.root
	n.attr = -1
}

func (n *Navigator) MoveToParent() bool {
	if n.attr != -1 {
		n.attr = -1
		return true
	}
	p := n.tree.nodes[n.cur].parent
	if p == None {
		return false
	}
	n.cur = p
	return true
}

func (n *Navigator) MoveToNextAttribute() bool {
	nd := &n.tree.nodes[n.cur]
	if nd.kind != ElementNode || n.attr >= len(nd.attrs)-1 {
		return false
	}
	n.attr++
	return true
}

func (n *Navigator) MoveToChild() bool {
	if n.attr != -1 {
		return false
	}
	c := n.tree.nodes[n.cur].firstChild
	if c == None {
		return false
	}
	n.cur = c
	return true
}

func (n *Navigator) MoveToFirst() bool {
	if n.attr != -1 || n.tree.nodes[n.cur].prev == None {
		return false
	}
	p := n.tree.nodes[n.cur].parent
	if p != None {
		n.cur = n.tree.nodes[p].firstChild
		return true
	}
	for n.tree.nodes[n.cur].prev != None {
		n.cur = n.tree.nodes[n.cur].prev
	}
	return true
}

func (n *Navigator) MoveToNext() bool {
	if n.attr != -1 {
		return false
	}
	next := n.tree.nodes[n.cur].next
	if next == None {
		return false
	}
	n.cur = next
	return true
}

func (n *Navigator) MoveToPrevious() bool {
	if n.attr != -1 {
		return false
	}
	prev := n.tree.nodes[n.cur].prev
	if prev == None {
		return false
	}
	n.cur = prev
	return true
}

func (n *Navigator) MoveTo(other xpath.NodeNavigator) bool {
	o, ok := other.(*Navigator)
	if !ok || o.tree != n.tree {
		return false
	}
	n.cur = o.cur
	n.attr = o.attr
	return true
}

func (n *Navigator) String() string {
	if n.attr != -1 {
		return fmt.Sprintf("%s@%d", n.tree.Name(n.cur), n.attr)
	}
	return fmt.Sprintf("%s#%d", n.tree.nodes[n.cur].kind, n.cur)
}

// Select evaluates a compiled XPath expression with scope as the context
// node (None for the document) and returns the matching non-attribute nodes
// in the order produced by the evaluator, without duplicates.
func (t *Tree) Select(expr *xpath.Expr, scope NodeID) []NodeID {
	it := expr.Select(t.Navigator(scope))
	seen := make(map[NodeID]bool)
	var out []NodeID
	for it.MoveNext() {
		nav, ok := it.Current().(*Navigator)
		if !ok || nav.attr != -1 || seen[nav.cur] {
			continue
		}
		seen[nav.cur] = true
		out = append(out, nav.cur)
	}
	return out
}

// Query compiles expr and runs Select.
func (t *Tree) Query(expr string, scope NodeID) ([]NodeID, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile xpath %q: %w", expr, err)
	}
	return t.Select(compiled, scope), nil
}

// Literal quotes s as an XPath 1.0 string literal.
func Literal(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	parts := strings.Split(s, `"`)
	args := make([]string, 0, 2*len(parts))
	for i, p := range parts {
		if i > 0 {
			args = append(args, `'"'`)
		}
		if p != "" {
			args = append(args, `"`+p+`"`)
		}
	}
	return "concat(" + strings.Join(args, ", ") + ")"
}
