package xml

import (
	"encoding/xml"
	"strings"
)

// NodeID addresses a node inside a Tree. IDs are stable for the lifetime of
// the Tree, including across InsertBefore and Remove.
type NodeID int

// None marks a missing node. Passed as a query scope it means the whole
// document.
const None NodeID = -1

// Kind identifies what a node represents.
type Kind uint8

const (
	DocumentNode Kind = iota
	ElementNode
	TextNode
	CommentNode
	ProcInstNode
	DirectiveNode
)

func (k Kind) String() string {
	switch k {
	case DocumentNode:
		return "document"
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	case ProcInstNode:
		return "procinst"
	case DirectiveNode:
		return "directive"
	default:
		return "unknown"
	}
}

type node struct {
	kind Kind
	// prefix and local hold the element name; local also holds the target
	// of a processing instruction.
	prefix string
	local  string
	attrs  []xml.Attr
	data   string
	// raw is the source text of parsed character data, written back as is
	// until the node is edited.
	raw string

	parent     NodeID
	firstChild NodeID
	lastChild  NodeID
	prev       NodeID
	next       NodeID
}

// Tree is a mutable XML document held in an arena.
type Tree struct {
	nodes []node
	root  NodeID
}

// New returns an empty tree containing only the document node.
func New() *Tree {
	t := &Tree{}
	t.root = t.alloc(node{kind: DocumentNode})
	return t
}

func (t *Tree) alloc(n node) NodeID {
	n.parent, n.firstChild, n.lastChild, n.prev, n.next = None, None, None, None, None
	t.nodes = append(t.nodes, n)
	return NodeID(len(t.nodes) - 1)
}

func (t *Tree) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

// Root returns the document node.
func (t *Tree) Root() NodeID { return t.root }

// Kind returns the kind of id.
func (t *Tree) Kind(id NodeID) Kind { return t.nodes[id].kind }

// Name returns the qualified element name ("w:t"), or "" for non-elements.
func (t *Tree) Name(id NodeID) string {
	n := &t.nodes[id]
	if n.kind != ElementNode {
		return ""
	}
	if n.prefix == "" {
		return n.local
	}
	return n.prefix + ":" + n.local
}

// Prefix returns the namespace prefix of an element as written in the source.
func (t *Tree) Prefix(id NodeID) string { return t.nodes[id].prefix }

// LocalName returns the local part of an element name.
func (t *Tree) LocalName(id NodeID) string { return t.nodes[id].local }

// Attrs returns the attributes of an element. Attribute names keep their
// source prefix in Name.Space.
func (t *Tree) Attrs(id NodeID) []xml.Attr { return t.nodes[id].attrs }

// Data returns the raw character data of a text, comment, processing
// instruction or directive node.
func (t *Tree) Data(id NodeID) string { return t.nodes[id].data }

func (t *Tree) Parent(id NodeID) NodeID      { return t.nodes[id].parent }
func (t *Tree) FirstChild(id NodeID) NodeID  { return t.nodes[id].firstChild }
func (t *Tree) LastChild(id NodeID) NodeID   { return t.nodes[id].lastChild }
func (t *Tree) NextSibling(id NodeID) NodeID { return t.nodes[id].next }
func (t *Tree) PrevSibling(id NodeID) NodeID { return t.nodes[id].prev }

// Children returns the direct children of id in document order.
func (t *Tree) Children(id NodeID) []NodeID {
	var out []NodeID
	for c := t.nodes[id].firstChild; c != None; c = t.nodes[c].next {
		out = append(out, c)
	}
	return out
}

// Ancestor walks hops parent links up from id. It returns None when the walk
// leaves the tree or lands on the document node.
func (t *Tree) Ancestor(id NodeID, hops int) NodeID {
	cur := id
	for i := 0; i < hops; i++ {
		if cur == None {
			return None
		}
		cur = t.nodes[cur].parent
	}
	if cur == None || t.nodes[cur].kind == DocumentNode {
		return None
	}
	return cur
}

// IsAncestor reports whether a is a proper ancestor of b.
func (t *Tree) IsAncestor(a, b NodeID) bool {
	for p := t.nodes[b].parent; p != None; p = t.nodes[p].parent {
		if p == a {
			return true
		}
	}
	return false
}

// Attached reports whether id is reachable from the document node.
func (t *Tree) Attached(id NodeID) bool {
	return id == t.root || t.IsAncestor(t.root, id)
}

// Text returns the string value of id: its own data for character nodes, or
// the concatenated text of all descendant text nodes for elements and the
// document.
func (t *Tree) Text(id NodeID) string {
	n := &t.nodes[id]
	switch n.kind {
	case TextNode, CommentNode, ProcInstNode, DirectiveNode:
		return n.data
	}
	var sb strings.Builder
	t.collectText(id, &sb)
	return sb.String()
}

func (t *Tree) collectText(id NodeID, sb *strings.Builder) {
	for c := t.nodes[id].firstChild; c != None; c = t.nodes[c].next {
		switch t.nodes[c].kind {
		case TextNode:
			sb.WriteString(t.nodes[c].data)
		case ElementNode:
			t.collectText(c, sb)
		}
	}
}

// DocumentElement returns the first element child of the document node.
func (t *Tree) DocumentElement() NodeID {
	for c := t.nodes[t.root].firstChild; c != None; c = t.nodes[c].next {
		if t.nodes[c].kind == ElementNode {
			return c
		}
	}
	return None
}

// Namespaces returns the prefix to URI bindings declared on the document
// element. The default namespace is returned under the empty prefix.
func (t *Tree) Namespaces() map[string]string {
	out := make(map[string]string)
	el := t.DocumentElement()
	if el == None {
		return out
	}
	for _, attr := range t.nodes[el].attrs {
		switch {
		case attr.Name.Space == "xmlns":
			out[attr.Name.Local] = attr.Value
		case attr.Name.Space == "" && attr.Name.Local == "xmlns":
			out[""] = attr.Value
		case attr.Name.Space == "" && strings.HasPrefix(attr.Name.Local, "xmlns:"):
			out[strings.TrimPrefix(attr.Name.Local, "xmlns:")] = attr.Value
		}
	}
	return out
}

// Len returns the number of nodes attached to the document, document node
// included.
func (t *Tree) Len() int {
	count := 0
	t.walk(t.root, func(NodeID) { count++ })
	return count
}

func (t *Tree) walk(id NodeID, fn func(NodeID)) {
	fn(id)
	for c := t.nodes[id].firstChild; c != None; c = t.nodes[c].next {
		t.walk(c, fn)
	}
}
