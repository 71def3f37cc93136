// Package xml provides the mutable XML tree used by docxmerge to rewrite the
// main part of a DOCX package.
//
// The tree is an arena: every node lives in a single slice owned by the Tree
// and is addressed by a NodeID. Parent, child and sibling links are stored as
// NodeIDs, so structural edits (InsertBefore, Remove, AppendChild) are O(1)
// link updates and never invalidate handles held by the caller. Detached
// nodes stay in the arena until the Tree is discarded; they are simply no
// longer reachable from the root and are not serialized.
//
// # Structure Organization
//
//   - tree.go: Tree, NodeID, Kind and read accessors
//   - parse.go: Parse, ParseBytes and ParseString, built on encoding/xml raw
//     tokens
//   - write.go: serialization (String, WriteTo)
//   - edit.go: Clone, InsertBefore, AppendChild, Remove, SetText
//   - navigator.go: an antchfx/xpath NodeNavigator over the arena
//
// # Namespaces
//
// Prefixes are kept exactly as written in the source document. Element and
// attribute names are never resolved to namespace URIs, which keeps
// serialization byte-stable for untouched regions. A query for "w:t" matches
// elements written with the "w" prefix.
//
// # Byte Stability
//
// Character data is written back exactly as it appeared in the source, so
// line endings, entity references and CDATA sections outside edited nodes
// survive a rewrite. Text set through SetText is escaped on output. Element
// tags are regenerated: attribute values are re-escaped with double quotes
// and empty elements are written in the self-closing form.
//
// # Usage
//
//	tree, err := xml.ParseString(`<w:p><w:r><w:t>${name}</w:t></w:r></w:p>`)
//	if err != nil {
//	    return err
//	}
//	ids, err := tree.Query(`//w:t`, xml.None)
//	...
//	out := tree.String()
package xml
