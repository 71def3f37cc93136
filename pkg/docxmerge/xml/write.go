package xml

import (
	"bufio"
	"encoding/xml"
	"io"
	"strings"
)

var (
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\r", "&#xD;",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		`"`, "&quot;",
		"\n", "&#xA;",
		"\r", "&#xD;",
		"\t", "&#x9;",
	)
)

// EscapeText escapes s for use as element character data.
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}

// String serializes the whole tree.
func (t *Tree) String() string {
	var sb strings.Builder
	t.writeNode(&sb, t.root)
	return sb.String()
}

// NodeString serializes id and its descendants.
func (t *Tree) NodeString(id NodeID) string {
	var sb strings.Builder
	t.writeNode(&sb, id)
	return sb.String()
}

// WriteTo writes the serialized tree to w.
func (t *Tree) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: bufio.NewWriter(w)}
	t.writeNode(cw, t.root)
	if cw.err != nil {
		return cw.n, cw.err
	}
	return cw.n, cw.w.Flush()
}

type stringWriter interface {
	WriteString(s string) (int, error)
}

type countingWriter struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (c *countingWriter) WriteString(s string) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.WriteString(s)
	c.n += int64(n)
	c.err = err
	return n, err
}

func (t *Tree) writeNode(w stringWriter, id NodeID) {
	n := &t.nodes[id]
	switch n.kind {
	case DocumentNode:
		for c := n.firstChild; c != None; c = t.nodes[c].next {
			t.writeNode(w, c)
		}
	case ElementNode:
		name := t.Name(id)
		w.WriteString("<")
		w.WriteString(name)
		for _, attr := range n.attrs {
			w.WriteString(" ")
			w.WriteString(attrName(attr.Name))
			w.WriteString(`="`)
			w.WriteString(attrEscaper.Replace(attr.Value))
			w.WriteString(`"`)
		}
		if n.firstChild == None {
			w.WriteString("/>")
			return
		}
		w.WriteString(">")
		for c := n.firstChild; c != None; c = t.nodes[c].next {
			t.writeNode(w, c)
		}
		w.WriteString("</")
		w.WriteString(name)
		w.WriteString(">")
	case TextNode:
		if n.raw != "" {
			w.WriteString(n.raw)
			return
		}
		w.WriteString(textEscaper.Replace(n.data))
	case CommentNode:
		w.WriteString("<!--")
		w.WriteString(n.data)
		w.WriteString("-->")
	case ProcInstNode:
		w.WriteString("<?")
		w.WriteString(n.local)
		if n.data != "" {
			w.WriteString(" ")
			w.WriteString(n.data)
		}
		w.WriteString("?>")
	case DirectiveNode:
		w.WriteString("<!")
		w.WriteString(n.data)
		w.WriteString(">")
	}
}

func attrName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}
