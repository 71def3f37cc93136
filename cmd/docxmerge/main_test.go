package main

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benjaminschreck/docxmerge/pkg/docxmerge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDocx(t *testing.T, dir, body string) string {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = io.WriteString(f, `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`+body+`</w:body></w:document>`)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	path := filepath.Join(dir, "template.docx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func documentXML(t *testing.T, docx []byte) string {
	t.Helper()
	dr, err := docxmerge.NewDocxReader(bytes.NewReader(docx), int64(len(docx)))
	require.NoError(t, err)
	body, err := dr.GetDocumentXML()
	require.NoError(t, err)
	return body
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), append([]string{"--log-level", "off"}, args...), strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "docxmerge version "+version+"\n", out)
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	template := writeDocx(t, dir, `<w:p><w:r><w:t>${title}</w:t></w:r></w:p><w:p><w:r><w:t>${items}</w:t></w:r></w:p>`)
	data := filepath.Join(dir, "data.yaml")
	require.NoError(t, os.WriteFile(data, []byte("title: Shopping\nitems: [milk, eggs]\n"), 0o644))

	output := filepath.Join(dir, "out.docx")
	_, err := execute(t, "", "render", template, data, "-o", output)
	require.NoError(t, err)

	rendered, err := os.ReadFile(output)
	require.NoError(t, err)
	body := documentXML(t, rendered)
	assert.Contains(t, body, `<w:t>Shopping</w:t>`)
	assert.Contains(t, body, `<w:p><w:r><w:t>milk</w:t></w:r></w:p><w:p><w:r><w:t>eggs</w:t></w:r></w:p>`)
}

func TestRenderCommandStdinToStdout(t *testing.T) {
	dir := t.TempDir()
	template := writeDocx(t, dir, `<w:p><w:r><w:t>${name}</w:t></w:r></w:p>`)

	out, err := execute(t, `{"name": "from stdin"}`, "render", template, "-", "-o", "-")
	require.NoError(t, err)
	assert.Contains(t, documentXML(t, []byte(out)), `<w:t>from stdin</w:t>`)
}

func TestRenderCommandDefaultOutput(t *testing.T) {
	dir := t.TempDir()
	template := writeDocx(t, dir, `<w:p><w:r><w:t>${name}</w:t></w:r></w:p>`)
	data := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(data, []byte(`{"name": "x"}`), 0o644))

	_, err := execute(t, "", "render", template, data)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "template-rendered.docx"))
}

func TestRenderCommandErrors(t *testing.T) {
	dir := t.TempDir()
	template := writeDocx(t, dir, `<w:p><w:r><w:t>${name}</w:t></w:r></w:p>`)

	_, err := execute(t, "", "render", template)
	assert.Error(t, err, "data argument is required")

	_, err = execute(t, "", "render", template, filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read data")

	_, err = execute(t, "- a\n- b\n", "render", template, "-")
	assert.ErrorContains(t, err, "top level must be a mapping")

	_, err = execute(t, "name: x\n", "render", filepath.Join(dir, "missing.docx"), "-", "-o", "-")
	assert.Equal(t, docxmerge.StageOpen, docxmerge.StageOf(err))
}

func TestConfigFlag(t *testing.T) {
	dir := t.TempDir()
	template := writeDocx(t, dir, `<w:p><w:r><w:t>${name}</w:t></w:r></w:p>`)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("cache_max_size: -1\n"), 0o644))
	_, err := execute(t, "name: x\n", "--config", bad, "render", template, "-", "-o", "-")
	assert.ErrorContains(t, err, "cache max size")

	good := filepath.Join(dir, "good.yml")
	require.NoError(t, os.WriteFile(good, []byte("temp_dir: "+dir+"\nlog_level: error\n"), 0o644))
	_, err = execute(t, "name: x\n", "--config", good, "render", template, "-", "-o", "-")
	assert.NoError(t, err)
}

func TestPlaceholdersCommand(t *testing.T) {
	dir := t.TempDir()
	template := writeDocx(t, dir, `<w:p><w:r><w:t>${b}</w:t></w:r></w:p><w:p><w:r><w:t>${a} ${b}</w:t></w:r></w:p>`)

	out, err := execute(t, "", "placeholders", template)
	require.NoError(t, err)
	assert.Equal(t, "b\na\n", out)
}

func TestDefaultOutput(t *testing.T) {
	assert.Equal(t, "dir/report-rendered.docx", defaultOutput("dir/report.docx"))
	assert.Equal(t, "noext-rendered", defaultOutput("noext"))
}
