// Package docxmerge merges data into Microsoft Word (DOCX) templates.
//
// A template is an ordinary DOCX file whose text holds placeholders written
// ${name}. Rendering replaces scalar placeholders with text and repeats the
// paragraph (or table row) holding an array placeholder once per element.
//
// # Quick Start
//
//	data := docxmerge.Data{
//	    {Name: "customer", Value: "Jane Roe"},
//	    {Name: "items", Value: []string{"Widget", "Gadget"}},
//	}
//
//	output, err := docxmerge.Render(ctx, "invoice.docx", data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("invoice-out.docx", output, 0644)
//
// # Template Syntax
//
// Scalars:
//
//	${customer}        - replaced by the value's text, XML-escaped
//
// Arrays: a w:t element whose whole text is ${items} marks its paragraph as
// a block. For a value of N elements the block is copied N times in place;
// copy i holds ${items_i}, which is then replaced by element i:
//
//	<w:p><w:r><w:t>${items}</w:t></w:r></w:p>
//
// becomes, for []string{"a", "b"},
//
//	<w:p><w:r><w:t>a</w:t></w:r></w:p>
//	<w:p><w:r><w:t>b</w:t></w:r></w:p>
//
// Placeholders are resolved in Data order. A name that does not occur in the
// template is skipped. Headers and footers receive scalar substitutions and
// the per-element tokens, but only the main document part is expanded.
//
// # Architecture
//
// The package is organized into:
//
//   - xml: an editable XML tree with stable node handles and an XPath
//     navigator
//
// The main package provides:
//   - Token enclosure (Enclose, IsEnclosed)
//   - Node location (Locator, Format)
//   - Array expansion (Expander)
//   - Template loading, substitution and saving (Template, DocxReader)
//   - The render driver (Engine, Render, RenderBatch)
//   - Configuration, logging, tracing and caching
//
// # Configuration
//
//	config := docxmerge.DefaultConfig()
//	config.TempDir = "/var/tmp/docxmerge"
//	engine := docxmerge.NewWithConfig(config)
//
// Table rows instead of paragraphs:
//
//	engine := docxmerge.NewWithOptions(docxmerge.WithFormat(docxmerge.Format{
//	    TextElement: "w:t",
//	    BlockDepth:  4,
//	    Namespace:   docxmerge.WordprocessingML,
//	}))
//
// # Error Handling
//
// Every error returned by a render call is a *RenderError naming the stage
// that failed (open, expand, save, read). Causes can be tested with
// errors.Is:
//
//	if errors.Is(err, docxmerge.ErrMalformedXML) {
//	    // the template body is not well-formed
//	}
//
// # Thread Safety
//
// Engine is safe for concurrent use. Each render call opens its own Template,
// which is not shared.
package docxmerge
