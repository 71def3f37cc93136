package docxmerge

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/benjaminschreck/docxmerge/pkg/docxmerge/xml"
)

// Template is an opened DOCX package whose main document part, headers and
// footers are held as strings while placeholders are resolved. A Template is
// owned by a single render call and is not safe for concurrent use.
type Template struct {
	reader  *DocxReader
	body    string
	parts   map[string]string
	order   []string
	tempDir string
	closed  bool
}

// OpenTemplate opens the DOCX file at path.
func OpenTemplate(path string) (*Template, error) {
	dr, err := DocxReaderFromFile(path)
	if err != nil {
		return nil, NewDocumentError("open", path, err)
	}
	return newTemplate(dr)
}

// NewTemplate opens a DOCX package from r.
func NewTemplate(r io.ReaderAt, size int64) (*Template, error) {
	dr, err := NewDocxReader(r, size)
	if err != nil {
		return nil, NewDocumentError("parse", "DOCX", err)
	}
	return newTemplate(dr)
}

func newTemplate(dr *DocxReader) (*Template, error) {
	body, err := dr.GetDocumentXML()
	if err != nil {
		return nil, NewDocumentError("extract", documentPart, err)
	}

	t := &Template{
		reader: dr,
		body:   body,
		parts:  make(map[string]string),
	}
	for _, name := range dr.HeaderFooterParts() {
		content, err := dr.GetPart(name)
		if err != nil {
			return nil, NewDocumentError("extract", name, err)
		}
		t.parts[name] = string(content)
		t.order = append(t.order, name)
	}
	return t, nil
}

// Body returns the current XML of the main document part.
func (t *Template) Body() string { return t.body }

// SetBody replaces the XML of the main document part.
func (t *Template) SetBody(body string) { t.body = body }

// Part returns the current XML of a header or footer part.
func (t *Template) Part(name string) (string, bool) {
	s, ok := t.parts[name]
	return s, ok
}

// PartNames returns the header and footer parts that take substitutions.
func (t *Template) PartNames() []string { return t.order }

// Contains reports whether s occurs in the main body or in any header or
// footer.
func (t *Template) Contains(s string) bool {
	if strings.Contains(t.body, s) {
		return true
	}
	for _, name := range t.order {
		if strings.Contains(t.parts[name], s) {
			return true
		}
	}
	return false
}

// Placeholders returns the names of the complete tokens found in the body,
// headers and footers, in order of first appearance.
func (t *Template) Placeholders() []string {
	seen := make(map[string]bool)
	var names []string
	collect := func(s string) {
		for _, m := range tokenPattern.FindAllStringSubmatch(s, -1) {
			if !seen[m[1]] {
				seen[m[1]] = true
				names = append(names, m[1])
			}
		}
	}
	collect(t.body)
	for _, name := range t.order {
		collect(t.parts[name])
	}
	return names
}

// SetValue replaces every occurrence of the token (enclosed if given bare)
// with value, escaped as character data, in the body, headers and footers.
// It returns the number of replacements; applying the same token twice
// replaces nothing the second time.
func (t *Template) SetValue(token, value string) int {
	token = Enclose(token, true)
	replacement := xml.EscapeText(value)

	count := strings.Count(t.body, token)
	if count > 0 {
		t.body = strings.ReplaceAll(t.body, token, replacement)
	}
	for _, name := range t.order {
		part := t.parts[name]
		if n := strings.Count(part, token); n > 0 {
			t.parts[name] = strings.ReplaceAll(part, token, replacement)
			count += n
		}
	}
	return count
}

// SaveTo writes the package to w. Parts that were not edited are copied
// without recompression.
func (t *Template) SaveTo(w io.Writer) error {
	if t.closed {
		return ErrTemplateClosed
	}
	zw := zip.NewWriter(w)

	for _, file := range t.reader.reader.File {
		content, edited := t.partContent(file.Name)
		if !edited {
			if err := zw.Copy(file); err != nil {
				return fmt.Errorf("failed to copy %s: %w", file.Name, err)
			}
			continue
		}

		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     file.Name,
			Method:   zip.Deflate,
			Modified: file.Modified,
		})
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", file.Name, err)
		}
		if _, err := io.WriteString(fw, content); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to close zip writer: %w", err)
	}
	return nil
}

func (t *Template) partContent(name string) (string, bool) {
	if name == documentPart {
		return t.body, true
	}
	s, ok := t.parts[name]
	return s, ok
}

// Save writes the package to a new temporary file and returns its path. The
// caller owns the file and must remove it. On failure no file is left
// behind.
func (t *Template) Save() (path string, err error) {
	if t.closed {
		return "", ErrTemplateClosed
	}
	f, err := os.CreateTemp(t.tempDir, "docxmerge-*.docx")
	if err != nil {
		return "", NewDocumentError("create", t.tempDir, err)
	}
	defer func() {
		if err != nil {
			os.Remove(f.Name())
		}
	}()

	if err := t.SaveTo(f); err != nil {
		f.Close()
		return "", NewDocumentError("write", f.Name(), err)
	}
	if err := f.Close(); err != nil {
		return "", NewDocumentError("close", f.Name(), err)
	}
	return f.Name(), nil
}

// Close releases the package. Closing twice is not an error.
func (t *Template) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	t.body = ""
	t.parts = nil
	return nil
}
