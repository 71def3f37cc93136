package xml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// SyntaxError reports malformed input. Line is 1-based; 0 means unknown.
type SyntaxError struct {
	Msg  string
	Line int
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("xml syntax error on line %d: %s", e.Line, e.Msg)
	}
	return "xml syntax error: " + e.Msg
}

// ParseString parses s into a new Tree.
func ParseString(s string) (*Tree, error) {
	return ParseBytes([]byte(s))
}

// Parse reads r to the end and parses it into a new Tree.
func Parse(r io.Reader) (*Tree, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseBytes(src)
}

// ParseBytes parses a complete XML document (or a sequence of sibling
// elements). Prefixes are kept as written; element nesting is checked
// because raw tokens are not balanced by the decoder. Character data keeps
// its source bytes next to the decoded text.
func ParseBytes(src []byte) (*Tree, error) {
	t := New()
	d := xml.NewDecoder(bytes.NewReader(src))
	d.Strict = true

	open := []NodeID{t.root}
	for {
		start := d.InputOffset()
		tok, err := d.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			var se *xml.SyntaxError
			if errors.As(err, &se) {
				return nil, &SyntaxError{Msg: se.Msg, Line: se.Line}
			}
			return nil, &SyntaxError{Msg: err.Error()}
		}

		parent := open[len(open)-1]
		switch tk := tok.(type) {
		case xml.StartElement:
			attrs := make([]xml.Attr, len(tk.Attr))
			copy(attrs, tk.Attr)
			id := t.alloc(node{
				kind:   ElementNode,
				prefix: tk.Name.Space,
				local:  tk.Name.Local,
				attrs:  attrs,
			})
			t.appendChild(parent, id)
			open = append(open, id)
		case xml.EndElement:
			if len(open) == 1 {
				return nil, &SyntaxError{Msg: fmt.Sprintf("unexpected end element </%s>", qualified(tk.Name)), Line: lineOf(d)}
			}
			if got, want := qualified(tk.Name), t.Name(parent); got != want {
				return nil, &SyntaxError{Msg: fmt.Sprintf("element <%s> closed by </%s>", want, got), Line: lineOf(d)}
			}
			open = open[:len(open)-1]
		case xml.CharData:
			raw := string(src[start:d.InputOffset()])
			t.appendChild(parent, t.alloc(node{kind: TextNode, data: string(tk), raw: raw}))
		case xml.Comment:
			t.appendChild(parent, t.alloc(node{kind: CommentNode, data: string(tk)}))
		case xml.ProcInst:
			t.appendChild(parent, t.alloc(node{kind: ProcInstNode, local: tk.Target, data: string(tk.Inst)}))
		case xml.Directive:
			t.appendChild(parent, t.alloc(node{kind: DirectiveNode, data: string(tk)}))
		}
	}

	if len(open) > 1 {
		return nil, &SyntaxError{Msg: fmt.Sprintf("unexpected EOF: element <%s> not closed", t.Name(open[len(open)-1]))}
	}
	return t, nil
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func lineOf(d *xml.Decoder) int {
	line, _ := d.InputPos()
	return line
}
