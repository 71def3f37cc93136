package docxmerge

import (
	"fmt"

	"github.com/benjaminschreck/docxmerge/pkg/docxmerge/xml"
)

// Pair is a concrete token and the text that replaces it.
type Pair struct {
	Token string
	Value string
}

// Pairs is an ordered batch of resolution pairs.
type Pairs []Pair

// Tokens returns the tokens of p in order.
func (p Pairs) Tokens() []string {
	out := make([]string, len(p))
	for i, pair := range p {
		out[i] = pair.Token
	}
	return out
}

// Values returns the replacement texts of p in order.
func (p Pairs) Values() []string {
	out := make([]string, len(p))
	for i, pair := range p {
		out[i] = pair.Value
	}
	return out
}

// Expander turns placeholders bound to array values into repeated blocks and
// emits the pairs that the literal substitution step applies afterwards.
type Expander struct {
	locator *Locator
}

// NewExpander returns an Expander for the given format.
func NewExpander(format Format) *Expander {
	return &Expander{locator: NewLocator(format)}
}

// Locator returns the locator used by e.
func (e *Expander) Locator() *Locator { return e.locator }

// Expand resolves one placeholder against body. A scalar yields one pair and
// leaves body untouched. A sequence of N items yields N pairs for the tokens
// name_0 .. name_N-1. Every block holding the placeholder is cloned once per
// item with the clone carrying its own token; the original blocks are then
// removed. The returned body is the rewritten one.
func (e *Expander) Expand(body, name string, value Value) (Pairs, string, error) {
	return e.ExpandSlots(body, []string{name}, []Value{value})
}

// ExpandSlots resolves several named slots in order. A slot with no value at
// the same index is left untouched.
func (e *Expander) ExpandSlots(body string, names []string, values []Value) (Pairs, string, error) {
	var pairs Pairs
	for i, name := range names {
		if i >= len(values) {
			continue
		}
		value := values[i]
		if !value.IsSequence() {
			pairs = append(pairs, Pair{Token: Enclose(name, true), Value: value.String()})
			continue
		}

		tree, err := xml.ParseString(body)
		if err != nil {
			return nil, body, fmt.Errorf("%w: %v", ErrMalformedXML, err)
		}
		expanded, rewritten, err := e.ExpandTree(tree, name, value)
		if err != nil {
			return nil, body, err
		}
		pairs = append(pairs, expanded...)
		if rewritten {
			body = tree.String()
		}
	}
	return pairs, body, nil
}

// ExpandTree is Expand on an already parsed tree, edited in place. It
// reports whether the tree was changed.
func (e *Expander) ExpandTree(tree *xml.Tree, name string, value Value) (Pairs, bool, error) {
	if !value.IsSequence() {
		return Pairs{{Token: Enclose(name, true), Value: value.String()}}, false, nil
	}

	blocks, err := e.locator.Locate(tree, name, true, xml.None)
	if err != nil {
		return nil, false, err
	}
	if err := checkNested(tree, name, blocks); err != nil {
		return nil, false, err
	}

	pairs := make(Pairs, 0, value.Len())
	for i, item := range value.Items() {
		token := Enclose(indexedName(name, i), true)
		pairs = append(pairs, Pair{Token: token, Value: item})

		for _, block := range blocks {
			clone := tree.Clone(block)
			if err := tree.InsertBefore(clone, block); err != nil {
				return nil, false, fmt.Errorf("insert copy of block for %s: %w", token, err)
			}
			texts, err := e.locator.Locate(tree, name, false, clone)
			if err != nil {
				return nil, false, err
			}
			for _, text := range texts {
				tree.SetText(text, token)
			}
		}
	}

	for _, block := range blocks {
		tree.Remove(block)
	}
	return pairs, len(blocks) > 0, nil
}

func checkNested(tree *xml.Tree, name string, blocks []xml.NodeID) error {
	for i, a := range blocks {
		for _, b := range blocks[i+1:] {
			if tree.IsAncestor(a, b) || tree.IsAncestor(b, a) {
				return &OverlapError{First: name, Second: name}
			}
		}
	}
	return nil
}

// CheckOverlaps locates the blocks of every named array placeholder in body
// and fails when a block of one placeholder shares or nests with a block of
// another. Names absent from the body are ignored.
func (e *Expander) CheckOverlaps(body string, names []string) error {
	if len(names) < 2 {
		return nil
	}
	tree, err := xml.ParseString(body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedXML, err)
	}

	type owned struct {
		block xml.NodeID
		name  string
	}
	var all []owned
	for _, name := range names {
		blocks, err := e.locator.Locate(tree, name, true, xml.None)
		if err != nil {
			return err
		}
		for _, b := range blocks {
			all = append(all, owned{block: b, name: name})
		}
	}

	for i, a := range all {
		for _, b := range all[i+1:] {
			if a.name == b.name {
				continue
			}
			if a.block == b.block || tree.IsAncestor(a.block, b.block) || tree.IsAncestor(b.block, a.block) {
				return &OverlapError{First: a.name, Second: b.name}
			}
		}
	}
	return nil
}
