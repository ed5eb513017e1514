package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doclane/doclane/internal/core/domain"
)

// createTestDOCX creates a minimal valid DOCX file in memory.
func createTestDOCX(documentXML string) []byte {
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	// Add [Content_Types].xml (required for valid DOCX)
	contentTypes, _ := w.Create("[Content_Types].xml")
	contentTypes.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
</Types>`))

	if documentXML != "" {
		doc, _ := w.Create("word/document.xml")
		doc.Write([]byte(documentXML))
	}

	w.Close()
	return buf.Bytes()
}

func TestNew(t *testing.T) {
	e := New()
	require.NotNil(t, e)
	assert.Equal(t, domain.FileTypeWord, e.FileType())
}

func TestExtract_Success(t *testing.T) {
	e := New()

	docXML := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Hello World</w:t></w:r></w:p>
<w:p><w:r><w:t>Second paragraph</w:t></w:r></w:p>
</w:body>
</w:document>`

	text, err := e.Extract(context.Background(), createTestDOCX(docXML))
	require.NoError(t, err)
	assert.Equal(t, "Hello World\nSecond paragraph", text)
}

func TestExtract_MultipleRunsPerParagraph(t *testing.T) {
	e := New()

	docXML := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Hello </w:t></w:r><w:r><w:t>World</w:t></w:r></w:p>
</w:body>
</w:document>`

	text, err := e.Extract(context.Background(), createTestDOCX(docXML))
	require.NoError(t, err)
	assert.Equal(t, "Hello World", text)
}

func TestExtract_InvalidZip(t *testing.T) {
	e := New()

	_, err := e.Extract(context.Background(), []byte("not a zip"))
	assert.ErrorIs(t, err, domain.ErrCorruptFile)
}

func TestExtract_MissingDocumentXML(t *testing.T) {
	e := New()

	_, err := e.Extract(context.Background(), createTestDOCX(""))
	assert.ErrorIs(t, err, domain.ErrCorruptFile)
}

func TestExtract_MalformedDocumentXML(t *testing.T) {
	e := New()

	_, err := e.Extract(context.Background(), createTestDOCX("<not-xml"))
	assert.ErrorIs(t, err, domain.ErrCorruptFile)
}
