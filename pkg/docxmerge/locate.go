package docxmerge

import (
	"sort"
	"strings"

	"github.com/benjaminschreck/docxmerge/pkg/docxmerge/xml"
)

// WordprocessingML is the namespace of the main document part.
const WordprocessingML = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// Format describes where placeholders live in a body: the element whose text
// content is a placeholder, and how many parent hops separate that element
// from the block that is repeated for array values.
type Format struct {
	// TextElement is the qualified name of the text-bearing element.
	TextElement string
	// BlockDepth is the ancestor distance from a text element to its block.
	// In WordprocessingML w:t sits in w:r, which sits in w:p.
	BlockDepth int
	// Namespace, when set, lets the prefix of TextElement follow whatever
	// prefix the document binds to this URI.
	Namespace string
}

// WordFormat is the format of DOCX main document parts.
var WordFormat = Format{
	TextElement: "w:t",
	BlockDepth:  2,
	Namespace:   WordprocessingML,
}

// BlockAncestor returns the block that encloses the text element id, or
// xml.None when the element is not nested deep enough to have one.
func (f Format) BlockAncestor(tree *xml.Tree, id xml.NodeID) xml.NodeID {
	return tree.Ancestor(id, f.BlockDepth)
}

// bind adapts the text element prefix to the document's own binding of the
// format namespace.
func (f Format) bind(tree *xml.Tree) Format {
	if f.Namespace == "" {
		return f
	}
	prefix, local := "", f.TextElement
	if i := strings.IndexByte(local, ':'); i >= 0 {
		prefix, local = local[:i], local[i+1:]
	}
	bindings := tree.Namespaces()
	if bindings[prefix] == f.Namespace {
		return f
	}
	candidates := make([]string, 0, 1)
	for p, uri := range bindings {
		if uri == f.Namespace {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return f
	}
	sort.Strings(candidates)
	if candidates[0] == "" {
		f.TextElement = local
	} else {
		f.TextElement = candidates[0] + ":" + local
	}
	return f
}

// Locator finds the text elements that carry a placeholder.
type Locator struct {
	format Format
}

// NewLocator returns a Locator for the given format.
func NewLocator(format Format) *Locator {
	return &Locator{format: format}
}

// Locate returns, in document order, every text element whose entire content
// is the enclosed form of name. With wantBlock each match is widened to its
// block ancestor; blocks reached from several matches are returned once.
// A scope other than xml.None restricts the search to that node's
// descendants. No match is not an error.
func (l *Locator) Locate(tree *xml.Tree, name string, wantBlock bool, scope xml.NodeID) ([]xml.NodeID, error) {
	format := l.format.bind(tree)

	var expr strings.Builder
	if scope != xml.None {
		expr.WriteString(".")
	}
	expr.WriteString("//")
	expr.WriteString(format.TextElement)
	expr.WriteString("[.=")
	expr.WriteString(xml.Literal(Enclose(name, true)))
	expr.WriteString("]")

	matches, err := tree.Query(expr.String(), scope)
	if err != nil {
		return nil, err
	}
	if !wantBlock {
		return matches, nil
	}

	seen := make(map[xml.NodeID]bool, len(matches))
	blocks := make([]xml.NodeID, 0, len(matches))
	for _, id := range matches {
		block := format.BlockAncestor(tree, id)
		if block == xml.None || seen[block] {
			continue
		}
		seen[block] = true
		blocks = append(blocks, block)
	}
	return blocks, nil
}
