package xml

import (
	"encoding/xml"
	"errors"
)

var (
	// ErrDetached is returned when an edit needs a node that has no parent.
	ErrDetached = errors.New("node is not attached to a parent")
	// ErrCycle is returned when an edit would make a node its own ancestor.
	ErrCycle = errors.New("node cannot be inserted under itself")
)

func (t *Tree) appendChild(parent, child NodeID) {
	p := &t.nodes[parent]
	c := &t.nodes[child]
	c.parent = parent
	c.prev = p.lastChild
	c.next = None
	if p.lastChild != None {
		t.nodes[p.lastChild].next = child
	} else {
		p.firstChild = child
	}
	p.lastChild = child
}

// AppendChild detaches child from its current position and appends it as
// the last child of parent.
func (t *Tree) AppendChild(parent, child NodeID) error {
	if parent == child || t.IsAncestor(child, parent) {
		return ErrCycle
	}
	t.Remove(child)
	t.appendChild(parent, child)
	return nil
}

// InsertBefore detaches n from its current position and inserts it as the
// previous sibling of ref.
func (t *Tree) InsertBefore(n, ref NodeID) error {
	parent := t.nodes[ref].parent
	if parent == None {
		return ErrDetached
	}
	if n == ref || n == parent || t.IsAncestor(n, parent) {
		return ErrCycle
	}
	t.Remove(n)

	prev := t.nodes[ref].prev
	c := &t.nodes[n]
	c.parent = parent
	c.prev = prev
	c.next = ref
	t.nodes[ref].prev = n
	if prev != None {
		t.nodes[prev].next = n
	} else {
		t.nodes[parent].firstChild = n
	}
	return nil
}

// Remove unlinks id from its parent. The node and its descendants stay in
// the arena and may be re-inserted. Removing a detached node is a no-op.
func (t *Tree) Remove(id NodeID) {
	n := &t.nodes[id]
	if n.parent == None {
		return
	}
	p := &t.nodes[n.parent]
	if n.prev != None {
		t.nodes[n.prev].next = n.next
	} else {
		p.firstChild = n.next
	}
	if n.next != None {
		t.nodes[n.next].prev = n.prev
	} else {
		p.lastChild = n.prev
	}
	n.parent, n.prev, n.next = None, None, None
}

// Clone deep-copies id and all of its descendants. The copy is detached and
// shares no node with the original.
func (t *Tree) Clone(id NodeID) NodeID {
	src := t.nodes[id]
	var attrs []xml.Attr
	if src.attrs != nil {
		attrs = make([]xml.Attr, len(src.attrs))
		copy(attrs, src.attrs)
	}
	cp := t.alloc(node{
		kind:   src.kind,
		prefix: src.prefix,
		local:  src.local,
		attrs:  attrs,
		data:   src.data,
		raw:    src.raw,
	})
	for c := src.firstChild; c != None; c = t.nodes[c].next {
		t.appendChild(cp, t.Clone(c))
	}
	return cp
}

// SetText replaces every child of an element with a single text node holding
// s. For character nodes it replaces the node's own data.
func (t *Tree) SetText(id NodeID, s string) {
	if k := t.nodes[id].kind; k != ElementNode && k != DocumentNode {
		t.nodes[id].data = s
		t.nodes[id].raw = ""
		return
	}
	for c := t.nodes[id].firstChild; c != None; {
		next := t.nodes[c].next
		t.Remove(c)
		c = next
	}
	t.appendChild(id, t.alloc(node{kind: TextNode, data: s}))
}

// NewElement allocates a detached element named prefix:local.
func (t *Tree) NewElement(prefix, local string, attrs ...xml.Attr) NodeID {
	return t.alloc(node{kind: ElementNode, prefix: prefix, local: local, attrs: attrs})
}

// NewText allocates a detached text node.
func (t *Tree) NewText(s string) NodeID {
	return t.alloc(node{kind: TextNode, data: s})
}
