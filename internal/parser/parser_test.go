package parser

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFromFilename(t *testing.T) {
	cases := map[string]Format{
		"program.pdf":   FormatPDF,
		"Schedule.DOCX": FormatDocx,
		"notes.txt":     FormatText,
		"faq.md":        FormatMarkdown,
		"faq.markdown":  FormatMarkdown,
	}
	for name, want := range cases {
		got, err := FormatFromFilename(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := FormatFromFilename("slides.pptx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = FormatFromFilename("noext")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParse_UnknownFormat(t *testing.T) {
	_, err := Parse([]byte("hello"), Format("exe"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParse_PlainText(t *testing.T) {
	text, err := Parse([]byte("仪式  下午2点\n\n\n\n晚宴 6点\t开始\n"), FormatText)
	require.NoError(t, err)
	assert.Equal(t, "仪式 下午2点\n\n晚宴 6点 开始", text)
}

func TestParse_EmptyContentRejected(t *testing.T) {
	_, err := Parse([]byte("   \n\t\n  "), FormatText)
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestNormalize(t *testing.T) {
	in := "a   b\r\nc\n\n\n\nd\n\n"
	assert.Equal(t, "a b\nc\n\nd", Normalize(in))
}

func TestParse_Docx(t *testing.T) {
	doc := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>婚礼流程</w:t></w:r></w:p>
    <w:p><w:r><w:t>仪式将在</w:t></w:r><w:r><w:t>下午2点开始</w:t></w:r></w:p>
  </w:body>
</w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	text, err := Parse(buf.Bytes(), FormatDocx)
	require.NoError(t, err)
	assert.Equal(t, "婚礼流程\n仪式将在下午2点开始", text)
}

func TestParse_DocxMissingDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/other.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte("<a/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = Parse(buf.Bytes(), FormatDocx)
	assert.Error(t, err)
}

func TestParse_PDFGarbage(t *testing.T) {
	_, err := Parse([]byte("this is not a pdf"), FormatPDF)
	assert.Error(t, err)
}
